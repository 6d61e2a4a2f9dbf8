package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/alejandrodnm/stockbot/internal/application/reconcile"
)

func (a *app) reconciler() *reconcile.Engine {
	return reconcile.New(a.ledger, a.feed, a.store, reconcile.Config{FeedTimeout: a.cfg.FeedTimeout()})
}

func newReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Mark every position to the current feed price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.reconciler().Run(cmd.Context())
			a.console.Reconcile(report)
			return err
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				spec = a.cfg.Schedule.Reconcile
			}
			ctx := cmd.Context()
			eng := a.reconciler()

			c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
			_, err := c.AddFunc(spec, func() {
				_, err := eng.Run(ctx)
				if err != nil {
					slog.Warn("watch: reconcile failed", "err", err)
				}
				a.console.Tick(time.Now(), err)
			})
			if err != nil {
				return fmt.Errorf("schedule %q: %w", spec, err)
			}

			slog.Info("watch: started", "schedule", spec)
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			slog.Info("watch: stopped cleanly")
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "schedule", "", "cron spec (overrides config), e.g. \"@every 5m\"")
	return cmd
}

func newQuotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quotes [TICKER...]",
		Short: "Show price and today's change for the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers := args
			if len(tickers) == 0 {
				tickers = a.cfg.Acquisition.Watchlist
			}
			if len(tickers) == 0 {
				return fmt.Errorf("no tickers: pass them as arguments or set acquisition.watchlist")
			}
			quotes, failed := a.reconciler().Quotes(cmd.Context(), tickers)
			a.console.Quotes(quotes, failed)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reconciliations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.store.GetReconciliations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.console.Reconciliations(entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max entries (0 = all)")
	return cmd
}
