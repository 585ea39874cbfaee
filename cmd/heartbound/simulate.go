package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/session"
	"github.com/cory-johannsen/heartbound/internal/game/world"
)

// startingMoney is the purse of players created by simulate and play.
const startingMoney = 100

func simulateCmd(configPath *string) *cobra.Command {
	var contentRoot string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run automated battles or random walks against the content",
	}
	cmd.PersistentFlags().StringVar(&contentRoot, "content", "", "content root (overrides content.root)")
	cmd.AddCommand(simulateBattleCmd(configPath, &contentRoot))
	cmd.AddCommand(simulateWalkCmd(configPath, &contentRoot))
	cmd.AddCommand(simulateDuelCmd(configPath, &contentRoot))
	return cmd
}

// streams hands every simulated session its own source; with a configured
// seed the whole run is reproducible.
func (a *app) streams() func() dice.Source {
	var n atomic.Uint64
	return func() dice.Source {
		return newSource(a.cfg.Engine.Seed, n.Add(1))
	}
}

func simulateBattleCmd(configPath, contentRoot *string) *cobra.Command {
	var (
		npcID   string
		runs    int
		random  bool
		maxTurn int
	)
	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Fight an NPC repeatedly with a fresh player and tally the outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", runs)
			}
			a, err := newApp(*configPath, *contentRoot)
			if err != nil {
				return err
			}
			defer a.close()

			arena := arenaFor(a.content.Map, npcID)
			if arena == nil {
				return fmt.Errorf("no location offers a battle against %q", npcID)
			}
			mgr := session.NewManager(a.content, a.sessionOptions(nil), a.streams())
			defer mgr.CloseAll()

			tally := make(map[combat.Status]int)
			turns, limited := 0, 0
			for i := range runs {
				p := session.NewPlayer(a.content, fmt.Sprintf("sim-%d", i+1), startingMoney)
				p.Location = arena.ID
				s, err := mgr.Open(p)
				if err != nil {
					return err
				}
				var chooser combat.Chooser = combat.GreedyChooser{}
				if random {
					chooser = combat.RandomChooser{Source: newSource(a.cfg.Engine.Seed, uint64(runs+i+1))}
				}
				rep, err := s.StartBattle(npcID, session.Self)
				if err != nil {
					return fmt.Errorf("run %d: %w", i+1, err)
				}
				if rep.Settlement == nil {
					more, err := s.AutoBattle(chooser, maxTurn)
					switch {
					case errors.Is(err, combat.ErrTurnLimit):
						limited++
						_ = s.Flee()
					case err != nil:
						return fmt.Errorf("run %d: %w", i+1, err)
					}
					rep.Entries = append(rep.Entries, more.Entries...)
					rep.Settlement = more.Settlement
				}
				turns += len(rep.Entries)
				if rep.Settlement != nil {
					tally[rep.Settlement.Status]++
				}
				if err := mgr.Close(s.ID()); err != nil {
					a.logger.Warn("closing session", zap.Error(err))
				}
			}
			printTally(cmd.OutOrStdout(), npcID, runs, tally, limited, turns)
			return nil
		},
	}
	cmd.Flags().StringVar(&npcID, "npc", "", "NPC template id to fight")
	cmd.Flags().IntVar(&runs, "runs", 100, "number of battles")
	cmd.Flags().BoolVar(&random, "random", false, "pick player skills at random instead of greedily")
	cmd.Flags().IntVar(&maxTurn, "max-turns", 0, "player turns before a battle is abandoned (0 = engine default)")
	_ = cmd.MarkFlagRequired("npc")
	return cmd
}

// arenaFor returns the first location, by id, where npcID can be challenged.
func arenaFor(m *world.Map, npcID string) *world.Location {
	for _, loc := range m.All() {
		if slices.Contains(loc.Opponents, npcID) {
			return loc
		}
	}
	return nil
}

func printTally(w io.Writer, npcID string, runs int, tally map[combat.Status]int, limited, turns int) {
	pct := func(n int) float64 { return 100 * float64(n) / float64(runs) }
	fmt.Fprintf(w, "%d battles against %s\n", runs, npcID)
	for _, st := range []combat.Status{combat.StatusVictory, combat.StatusDefeat, combat.StatusDraw} {
		fmt.Fprintf(w, "  %-8s %5d  %5.1f%%\n", st, tally[st], pct(tally[st]))
	}
	if limited > 0 {
		fmt.Fprintf(w, "  %-8s %5d  %5.1f%%\n", "fled", limited, pct(limited))
	}
	fmt.Fprintf(w, "  average actions per battle: %.1f\n", float64(turns)/float64(runs))
}

func simulateDuelCmd(configPath, contentRoot *string) *cobra.Command {
	var (
		first, second string
		runs          int
		maxTurns      int
	)
	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Pit two NPC templates against each other, each playing its own tactics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", runs)
			}
			if maxTurns < 1 {
				return fmt.Errorf("--max-turns must be at least 1, got %d", maxTurns)
			}
			a, err := newApp(*configPath, *contentRoot)
			if err != nil {
				return err
			}
			defer a.close()

			left, ok := a.content.NPCs.Get(first)
			if !ok {
				return fmt.Errorf("unknown npc %q", first)
			}
			right, ok := a.content.NPCs.Get(second)
			if !ok {
				return fmt.Errorf("unknown npc %q", second)
			}
			tally := make(map[combat.Status]int)
			turns, limited := 0, 0
			for i := range runs {
				src := newSource(a.cfg.Engine.Seed, uint64(i+1))
				l, err := left.Combatant("a:"+left.ID, a.content.Skills)
				if err != nil {
					return err
				}
				r, err := right.Combatant("b:"+right.ID, a.content.Skills)
				if err != nil {
					return err
				}
				b, err := combat.NewBattle(fmt.Sprintf("duel-%d", i+1), l, r, combat.Options{MaxRounds: a.cfg.Engine.MaxRounds})
				if err != nil {
					return err
				}
				if err := b.Start(); err != nil {
					return err
				}
				n, err := combat.Run(b, left.Chooser(src), right.Chooser(src), maxTurns)
				switch {
				case errors.Is(err, combat.ErrTurnLimit):
					limited++
				case err != nil:
					return fmt.Errorf("duel %d: %w", i+1, err)
				default:
					tally[b.Status]++
				}
				turns += n
			}
			w := cmd.OutOrStdout()
			pct := func(n int) float64 { return 100 * float64(n) / float64(runs) }
			fmt.Fprintf(w, "%d duels, %s vs %s\n", runs, first, second)
			fmt.Fprintf(w, "  %-14s %5d  %5.1f%%\n", first+" wins", tally[combat.StatusVictory], pct(tally[combat.StatusVictory]))
			fmt.Fprintf(w, "  %-14s %5d  %5.1f%%\n", second+" wins", tally[combat.StatusDefeat], pct(tally[combat.StatusDefeat]))
			fmt.Fprintf(w, "  %-14s %5d  %5.1f%%\n", "draws", tally[combat.StatusDraw], pct(tally[combat.StatusDraw]))
			if limited > 0 {
				fmt.Fprintf(w, "  %-14s %5d  %5.1f%%\n", "unfinished", limited, pct(limited))
			}
			fmt.Fprintf(w, "  average turns per duel: %.1f\n", float64(turns)/float64(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "a", "", "NPC template id on the first side")
	cmd.Flags().StringVar(&second, "b", "", "NPC template id on the second side")
	cmd.Flags().IntVar(&runs, "runs", 100, "number of duels")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 1000, "turns before a duel is called unfinished")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

func simulateWalkCmd(configPath, contentRoot *string) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Wander the map at random, answering events, and print what happened",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *contentRoot)
			if err != nil {
				return err
			}
			defer a.close()

			src := newSource(a.cfg.Engine.Seed, 0)
			s, err := session.New(a.content, session.NewPlayer(a.content, "Wanderer", startingMoney), a.sessionOptions(src))
			if err != nil {
				return err
			}
			defer s.Close()
			return walk(cmd.OutOrStdout(), s, src, steps)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 50, "number of moves")
	return cmd
}

// walk moves s at random for steps moves. Pending events are answered with a
// random enabled choice, or dismissed when every choice is gated.
func walk(w io.Writer, s *session.Session, src dice.Source, steps int) error {
	for range steps {
		if e, ok := s.CurrentEvent(); ok {
			opts, err := s.Present()
			if err != nil {
				return err
			}
			var enabled []int
			for _, o := range opts {
				if o.Enabled {
					enabled = append(enabled, o.Index)
				}
			}
			if len(enabled) == 0 {
				fmt.Fprintf(w, "day %d: dismissed %q\n", s.Player().Day, e.Title)
				if err := s.Dismiss(); err != nil {
					return err
				}
				continue
			}
			pick := enabled[dice.Pick(src, len(enabled))]
			out, err := s.Choose(pick)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "day %d: %q -> %q\n", s.Player().Day, e.Title, opts[pick].Text)
			for _, m := range out.Report.Messages {
				fmt.Fprintf(w, "    %s\n", m)
			}
			continue
		}

		loc := s.Location()
		p := s.Player()
		var open []string
		for _, id := range loc.Exits {
			if dest, ok := s.Content().Map.Location(id); ok && dest.OpenAt(p.Time) {
				open = append(open, id)
			}
		}
		if len(open) == 0 {
			if _, err := s.Wait(); err != nil {
				return err
			}
			continue
		}
		to := open[dice.Pick(src, len(open))]
		if _, err := s.MoveTo(to); err != nil {
			return err
		}
		fmt.Fprintf(w, "day %d %-9s %s\n", s.Player().Day, s.Player().Time, to)
		// Every few moves let the clock run so the day advances.
		if _, pending := s.CurrentEvent(); !pending && dice.Chance(src, 0.25) {
			if _, err := s.Wait(); err != nil {
				return err
			}
		}
	}
	p := s.Player()
	fmt.Fprintf(w, "\nafter %d steps: day %d, %s, level %d\n", steps, p.Day, formatUnlocked(p), p.Level)
	return nil
}

func formatUnlocked(p player.Player) string {
	ids := p.UnlockedIDs()
	if len(ids) == 0 {
		return "no one met"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s %d", id, p.AffectionFor(id))
	}
	return strings.Join(parts, ", ")
}
