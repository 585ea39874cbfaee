package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/inventory"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/game/session"
)

var (
	// ErrQuit is returned by Execute when the player asks to stop.
	ErrQuit = errors.New("quit")
	// ErrUnknownCommand is returned for input that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command is missing arguments or has malformed ones.
	ErrUsage = errors.New("usage")
	// ErrNoStore is returned by save commands when no store is configured.
	ErrNoStore = errors.New("saving is not configured")
)

// Prompt is printed before each line is read.
const Prompt = "> "

// nothingHappens answers commands that lenient sessions ignore.
const nothingHappens = "Nothing happens."

// Loop dispatches parsed commands to one session and renders the results as text.
type Loop struct {
	s      *session.Session
	reg    *Registry
	store  save.Store
	slot   string
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewLoop creates a Loop. store may be nil, which disables save commands;
// slot is the default save slot.
//
// Precondition: s, reg, out and logger must be non-nil.
func NewLoop(s *session.Session, reg *Registry, store save.Store, slot string, out io.Writer, logger *zap.Logger) *Loop {
	return &Loop{s: s, reg: reg, store: store, slot: slot, out: out, logger: logger, now: time.Now}
}

// Run reads commands from in until quit, end of input or ctx is done. Game
// errors are printed and do not stop the loop.
//
// Postcondition: Returns nil on quit or end of input.
func (l *Loop) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	l.describeLocation()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(l.out, Prompt)
		if !sc.Scan() {
			fmt.Fprintln(l.out)
			return sc.Err()
		}
		err := l.Execute(ctx, sc.Text())
		switch {
		case errors.Is(err, ErrQuit):
			fmt.Fprintln(l.out, "Goodbye.")
			return nil
		case err != nil:
			l.logger.Debug("command failed", zap.String("input", sc.Text()), zap.Error(err))
			fmt.Fprintf(l.out, "! %v\n", err)
		}
	}
}

// Execute runs one input line.
func (l *Loop) Execute(ctx context.Context, line string) error {
	in := Parse(line)
	if in.Command == "" {
		return nil
	}
	cmd, ok := l.reg.Resolve(in.Command)
	if !ok {
		return fmt.Errorf("%w %q (try help)", ErrUnknownCommand, in.Command)
	}
	if len(in.Args) < cmd.MinArgs {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}

	switch cmd.Handler {
	case HandlerGo:
		a, err := l.s.MoveTo(in.Arg(0))
		if err != nil {
			return err
		}
		l.arrived(a)
	case HandlerWait:
		a, err := l.s.Wait()
		if err != nil {
			return err
		}
		p := l.s.Player()
		fmt.Fprintf(l.out, "Time passes. It is day %d, %s.\n", p.Day, p.Time)
		if a.Event != nil {
			l.showEvent()
		}
	case HandlerLook:
		l.describeLocation()
	case HandlerStatus:
		l.status()
	case HandlerInventory:
		l.inventory()
	case HandlerParty:
		l.party()
	case HandlerEvent:
		return l.showEvent()
	case HandlerChoose:
		n, err := strconv.Atoi(in.Arg(0))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
		}
		out, err := l.s.Choose(n - 1)
		if err != nil {
			return err
		}
		if out.Blocked != nil {
			fmt.Fprintf(l.out, "You can't do that: %s\n", out.Blocked.Message())
			return nil
		}
		l.report(out.Report)
	case HandlerDismiss:
		if err := l.s.Dismiss(); err != nil {
			return err
		}
		fmt.Fprintln(l.out, "You walk away.")
	case HandlerTalk:
		d, err := l.s.Talk(in.Arg(0))
		if err != nil {
			return err
		}
		name := l.characterName(in.Arg(0))
		if d.Line == "" {
			fmt.Fprintf(l.out, "%s has nothing to say.\n", name)
		} else {
			fmt.Fprintf(l.out, "%s: %q\n", name, d.Line)
		}
		if d.Secret != "" {
			fmt.Fprintf(l.out, "%s confides: %s\n", name, d.Secret)
		}
	case HandlerGift:
		res, err := l.s.Gift(in.Arg(0), in.Arg(1))
		if err != nil {
			return err
		}
		if res.Character == "" {
			fmt.Fprintln(l.out, nothingHappens)
			return nil
		}
		fmt.Fprintf(l.out, "%s's affection: %d -> %d (%+d)\n",
			l.characterName(res.Character), res.Change.Before, res.Change.After, res.Delta)
	case HandlerRecruit:
		slot, err := l.s.Recruit(in.Arg(0))
		if err != nil {
			return err
		}
		if slot < 0 {
			fmt.Fprintln(l.out, nothingHappens)
			return nil
		}
		fmt.Fprintf(l.out, "%s joins the party in slot %d.\n", l.characterName(in.Arg(0)), slot+1)
	case HandlerLeave:
		slot, err := l.slotArg(in, 0, cmd)
		if err != nil {
			return err
		}
		m, err := l.s.LeaveParty(slot)
		if err != nil {
			return err
		}
		fmt.Fprintf(l.out, "%s leaves the party.\n", m.Combatant.Name)
	case HandlerSwap:
		i, err := l.slotArg(in, 0, cmd)
		if err != nil {
			return err
		}
		j, err := l.slotArg(in, 1, cmd)
		if err != nil {
			return err
		}
		if err := l.s.SwapSlots(i, j); err != nil {
			return err
		}
		l.party()
	case HandlerShop:
		return l.shop()
	case HandlerBuy:
		qty := 1
		if len(in.Args) > 1 {
			n, err := strconv.Atoi(in.Arg(1))
			if err != nil || n < 1 {
				return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
			}
			qty = n
		}
		if _, err := l.s.Buy(in.Arg(0), qty); err != nil {
			return err
		}
		if _, ok := l.s.Content().Items.Item(in.Arg(0)); !ok {
			fmt.Fprintln(l.out, nothingHappens)
			return nil
		}
		fmt.Fprintf(l.out, "Bought %d x %s. You have %s left.\n", qty, in.Arg(0), inventory.FormatMoney(l.s.Player().Money))
	case HandlerUse:
		rep, err := l.s.Use(in.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintf(l.out, "You use the %s.\n", in.Arg(0))
		l.report(rep)
	case HandlerFight:
		slot := session.Self
		if len(in.Args) > 1 {
			var err error
			if slot, err = l.slotArg(in, 1, cmd); err != nil {
				return err
			}
		}
		rep, err := l.s.StartBattle(in.Arg(0), slot)
		if err != nil {
			return err
		}
		fmt.Fprintln(l.out, "The battle begins!")
		l.turns(rep)
	case HandlerSkill:
		rep, err := l.s.Act(in.Arg(0))
		if err != nil {
			return err
		}
		l.turns(rep)
	case HandlerAuto:
		rep, err := l.s.AutoBattle(combat.GreedyChooser{}, 0)
		l.turns(rep)
		return err
	case HandlerFlee:
		if err := l.s.Flee(); err != nil {
			return err
		}
		fmt.Fprintln(l.out, "You got away.")
	case HandlerSave:
		slot := l.slot
		if len(in.Args) > 0 {
			slot = in.Arg(0)
		}
		return l.save(ctx, slot)
	case HandlerSaves:
		return l.saves(ctx)
	case HandlerHelp:
		fmt.Fprint(l.out, l.reg.HelpText())
	case HandlerQuit:
		return ErrQuit
	default:
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	return nil
}

// slotArg parses a 1-based slot argument into a 0-based index.
func (l *Loop) slotArg(in ParseResult, i int, cmd *Command) (int, error) {
	n, err := strconv.Atoi(in.Arg(i))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}
	return n - 1, nil
}

func (l *Loop) characterName(id string) string {
	if ch, ok := l.s.Content().Characters.Get(id); ok {
		return ch.Name
	}
	return id
}

func (l *Loop) arrived(a session.Arrival) {
	if a.Location == nil {
		return
	}
	l.describeLocation()
	if a.Event != nil {
		_ = l.showEvent()
	}
}

func (l *Loop) describeLocation() {
	loc := l.s.Location()
	p := l.s.Player()
	if loc == nil {
		fmt.Fprintf(l.out, "You are nowhere in particular. Day %d, %s.\n", p.Day, p.Time)
		return
	}
	fmt.Fprintf(l.out, "== %s == (day %d, %s)\n", loc.Name, p.Day, p.Time)
	if loc.Description != "" {
		fmt.Fprintln(l.out, loc.Description)
	}
	exits := make([]string, 0, len(loc.Exits))
	for _, id := range loc.Exits {
		label := id
		if dest, ok := l.s.Content().Map.Location(id); ok && !dest.OpenAt(p.Time) {
			label += " (closed)"
		}
		exits = append(exits, label)
	}
	fmt.Fprintf(l.out, "Exits: %s\n", strings.Join(exits, ", "))
	if loc.Shop {
		fmt.Fprintln(l.out, "There is a shop here.")
	}
	if len(loc.Opponents) > 0 {
		fmt.Fprintf(l.out, "Challengers: %s\n", strings.Join(loc.Opponents, ", "))
	}
}

func (l *Loop) status() {
	p := l.s.Player()
	fmt.Fprintf(l.out, "%s  Lv %d  EXP %d  Rank %d\n", p.Name, p.Level, p.Experience, p.RankPoints)
	fmt.Fprintf(l.out, "HP %d/%d  MP %d/%d  %s\n", p.HP, p.MaxHP, p.MP, p.MaxMP, inventory.FormatMoney(p.Money))
	stats := make([]string, 0, len(player.AllStats))
	for _, st := range player.AllStats {
		stats = append(stats, fmt.Sprintf("%s %d", st, p.Stats.Get(st)))
	}
	fmt.Fprintf(l.out, "Stats: %s\n", strings.Join(stats, ", "))
	for _, id := range p.UnlockedIDs() {
		fmt.Fprintf(l.out, "  %-12s affection %d\n", l.characterName(id), p.AffectionFor(id))
	}
}

func (l *Loop) inventory() {
	p := l.s.Player()
	ids := make([]string, 0, len(p.Inventory))
	for id, n := range p.Inventory {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		fmt.Fprintln(l.out, "You carry nothing.")
	}
	for _, id := range ids {
		name := id
		if it, ok := l.s.Content().Items.Item(id); ok {
			name = it.Name
		}
		fmt.Fprintf(l.out, "  %-20s x%d\n", name, p.Inventory[id])
	}
	fmt.Fprintf(l.out, "Purse: %s\n", inventory.FormatMoney(p.Money))
}

func (l *Loop) party() {
	pt := l.s.Party()
	for i, m := range pt.Slots() {
		if m == nil {
			fmt.Fprintf(l.out, "  %d. (empty)\n", i+1)
			continue
		}
		c := m.Combatant
		fmt.Fprintf(l.out, "  %d. %-10s %-8s HP %d/%d  MP %d/%d\n", i+1, c.Name, c.Role, c.HP, c.MaxHP, c.MP, c.MaxMP)
	}
	fmt.Fprintf(l.out, "Synergy: %d\n", pt.Synergy())
}

func (l *Loop) showEvent() error {
	e, ok := l.s.CurrentEvent()
	if !ok {
		return session.ErrNoEvent
	}
	opts, err := l.s.Present()
	if err != nil {
		return err
	}
	fmt.Fprintf(l.out, "* %s *\n", e.Title)
	if e.Description != "" {
		fmt.Fprintln(l.out, e.Description)
	}
	for _, o := range opts {
		if o.Enabled {
			fmt.Fprintf(l.out, "  %d) %s\n", o.Index+1, o.Text)
		} else {
			fmt.Fprintf(l.out, "  %d) %s [%s]\n", o.Index+1, o.Text, o.Reason)
		}
	}
	return nil
}

func (l *Loop) report(rep effect.Report) {
	for _, m := range rep.Messages {
		fmt.Fprintln(l.out, m)
	}
	for _, id := range rep.Unlocked {
		fmt.Fprintf(l.out, "You got to know %s.\n", l.characterName(id))
	}
	for _, ch := range rep.AffectionChanges {
		fmt.Fprintf(l.out, "%s's affection: %d -> %d\n", l.characterName(ch.Character), ch.Before, ch.After)
	}
	for _, id := range rep.NotRemoved {
		fmt.Fprintf(l.out, "(you had no %s to hand over)\n", id)
	}
	if rep.LevelsGained > 0 {
		fmt.Fprintf(l.out, "Level up! You are now level %d.\n", l.s.Player().Level)
	}
}

func (l *Loop) turns(rep session.TurnReport) {
	for _, taunt := range rep.Taunts {
		fmt.Fprintf(l.out, "\"%s\"\n", taunt)
	}
	for _, e := range rep.Entries {
		switch e.Kind {
		case combat.KindDamage:
			fmt.Fprintf(l.out, "%s uses %s: %d damage (%d HP left)\n", e.ActorName, e.Skill, e.Applied, e.TargetHP)
		case combat.KindHeal:
			fmt.Fprintf(l.out, "%s uses %s and recovers %d HP\n", e.ActorName, e.Skill, e.Applied)
		default:
			fmt.Fprintf(l.out, "%s can do nothing and passes\n", e.ActorName)
		}
	}
	st := rep.Settlement
	if st == nil {
		return
	}
	switch st.Status {
	case combat.StatusVictory:
		fmt.Fprintln(l.out, "Victory!")
	case combat.StatusDefeat:
		fmt.Fprintln(l.out, "Defeat...")
	default:
		fmt.Fprintln(l.out, "The battle ends in a draw.")
	}
	if !st.Reward.IsZero() {
		fmt.Fprintf(l.out, "Rank %+d, %s, %d EXP\n", st.Reward.RankPoints, inventory.FormatMoney(st.Reward.Gold), st.Reward.Experience)
	}
	l.report(st.Report)
}

func (l *Loop) shop() error {
	loc := l.s.Location()
	if loc == nil || !loc.Shop {
		return session.ErrNoShop
	}
	for _, it := range l.s.Content().Items.Shop() {
		fmt.Fprintf(l.out, "  %-14s %-20s %s\n", it.ID, it.Name, inventory.FormatMoney(it.Price))
	}
	return nil
}

func (l *Loop) save(ctx context.Context, slot string) error {
	if l.store == nil {
		return ErrNoStore
	}
	if err := l.store.Save(ctx, slot, l.s.Snapshot(l.now())); err != nil {
		return err
	}
	fmt.Fprintf(l.out, "Saved to %q.\n", slot)
	return nil
}

func (l *Loop) saves(ctx context.Context) error {
	if l.store == nil {
		return ErrNoStore
	}
	slots, err := l.store.List(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(l.out, "No saves yet.")
	}
	for _, sl := range slots {
		fmt.Fprintf(l.out, "  %-12s %s, day %d, saved %s\n", sl.Name, sl.PlayerName, sl.Day, sl.SavedAt.Local().Format(time.DateTime))
	}
	return nil
}
