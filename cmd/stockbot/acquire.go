package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/stockbot/internal/adapters/features"
	"github.com/alejandrodnm/stockbot/internal/adapters/model"
	"github.com/alejandrodnm/stockbot/internal/application/acquisition"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

func newAcquireCmd(a *app) *cobra.Command {
	var (
		topN     int
		qty      map[string]int
		rankOnly bool
	)
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Rank candidates with the model and buy the top N",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			acq := a.cfg.Acquisition
			p := acquisition.New(a.ledger, a.feed, a.featureSource(), model.NewRidge(acq.RidgeLambda), a.store,
				acquisition.Config{
					TopN:            acq.TopN,
					DefaultQuantity: acq.DefaultQuantity,
					FeedTimeout:     a.cfg.FeedTimeout(),
				})

			if rankOnly {
				ranked, err := p.Score(cmd.Context())
				if err != nil {
					return err
				}
				n := topN
				if n <= 0 {
					n = acq.TopN
				}
				a.console.Ranking(ranked, n)
				return nil
			}

			quantities := make(map[string]int, len(qty))
			for t, q := range qty {
				quantities[strings.ToUpper(t)] = q
			}
			res, err := p.Run(cmd.Context(), acquisition.Request{TopN: topN, Quantities: quantities})
			if res != nil {
				a.console.Acquisition(res)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&topN, "top", 0, "how many candidates to buy (default from config)")
	cmd.Flags().StringToIntVar(&qty, "qty", nil, "per-ticker quantities, e.g. NVDA=3,AMD=2")
	cmd.Flags().BoolVar(&rankOnly, "rank-only", false, "print the ranking without buying")
	return cmd
}

func (a *app) featureSource() ports.FeatureSource {
	acq := a.cfg.Acquisition
	if acq.FeatureSource == "csv" {
		return features.NewCSVSource(acq.WatchlistCSV, acq.CandidatesCSV)
	}
	return features.NewHistorySource(a.feed, features.HistoryOptions{
		Watchlist:  upper(acq.Watchlist),
		Candidates: upper(acq.Candidates),
		Window:     a.cfg.HistoryWindow(),
		Timeout:    a.cfg.FeedTimeout(),
	})
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}
