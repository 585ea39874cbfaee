package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/command"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/game/session"
	"github.com/cory-johannsen/heartbound/internal/server"
)

func playCmd(configPath *string) *cobra.Command {
	var (
		contentRoot string
		name        string
		load        string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(*configPath, contentRoot)
			if err != nil {
				return err
			}
			defer a.close()

			store, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			s, err := openSession(ctx, a, store, name, load)
			if err != nil {
				return err
			}
			defer s.Close()

			slot := a.cfg.Autosave.Slot
			if load != "" {
				slot = load
			}
			loop := command.NewLoop(s, command.DefaultRegistry(), store, slot, cmd.OutOrStdout(), a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. Type help for commands.\n", s.Player().Name)

			replCtx, stopRepl := context.WithCancel(ctx)
			lc := server.NewLifecycle(a.logger)
			lc.Add("repl", &server.FuncService{
				StartFn: func() error {
					err := loop.Run(replCtx, os.Stdin)
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				},
				StopFn: stopRepl,
			})
			lc.Add("autosave", server.NewAutosaver(store, s, a.cfg.Autosave.Slot, a.cfg.Autosave.Interval, a.logger))
			return lc.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&contentRoot, "content", "", "content root (overrides content.root)")
	cmd.Flags().StringVar(&name, "name", "Player", "name of a new player")
	cmd.Flags().StringVar(&load, "load", "", "resume from this save slot instead of starting fresh")
	return cmd
}

// openSession resumes the snapshot in slot load, or starts a new game when
// load is empty.
func openSession(ctx context.Context, a *app, store save.Store, name, load string) (*session.Session, error) {
	opts := a.sessionOptions(newSource(a.cfg.Engine.Seed, 0))
	if load == "" {
		return session.New(a.content, session.NewPlayer(a.content, name, startingMoney), opts)
	}
	snap, err := store.Load(ctx, load)
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", load, err)
	}
	a.logger.Info("resuming game",
		zap.String("slot", load),
		zap.String("player", snap.Player.Name),
		zap.Time("saved_at", snap.SavedAt),
	)
	return session.Restore(a.content, snap, opts)
}
