// Package features assembles the feature matrices scored by the predictor.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

// Columns produced by HistorySource, in row order.
var Columns = []string{"change_1d", "change_5d", "sma5_ratio", "volatility"}

const (
	smaPeriod = 5
	// minFeaturePoints is the shortest series the indicators can be computed on.
	minFeaturePoints = smaPeriod + 1

	defaultWindow  = 30 * 24 * time.Hour
	defaultTimeout = 10 * time.Second
)

// HistoryOptions configures HistorySource.
type HistoryOptions struct {
	Watchlist  []string
	Candidates []string
	Window     time.Duration
	Timeout    time.Duration
}

// HistorySource builds indicators from daily closes served by a PriceFeed.
// Watchlist rows are computed on the series without its last point and
// labeled with that last day's percent change; candidate rows use the whole
// series.
type HistorySource struct {
	feed ports.PriceFeed
	opts HistoryOptions
}

// NewHistorySource creates a HistorySource.
func NewHistorySource(feed ports.PriceFeed, opts HistoryOptions) *HistorySource {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &HistorySource{feed: feed, opts: opts}
}

// Watchlist returns labeled rows for the configured watchlist.
func (s *HistorySource) Watchlist(ctx context.Context) (domain.FeatureMatrix, error) {
	m, err := s.build(ctx, s.opts.Watchlist, true)
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("features.HistorySource.Watchlist: %w", err)
	}
	return m, nil
}

// Candidates returns unlabeled rows for the configured candidates.
func (s *HistorySource) Candidates(ctx context.Context) (domain.FeatureMatrix, error) {
	m, err := s.build(ctx, s.opts.Candidates, false)
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("features.HistorySource.Candidates: %w", err)
	}
	return m, nil
}

func (s *HistorySource) build(ctx context.Context, tickers []string, labeled bool) (domain.FeatureMatrix, error) {
	m := domain.FeatureMatrix{Columns: Columns}
	need := minFeaturePoints
	if labeled {
		need++
	}

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return domain.FeatureMatrix{}, err
		}
		closes, err := s.closes(ctx, ticker)
		if err != nil {
			slog.Warn("features: history unavailable", "ticker", ticker, "err", err)
			continue
		}
		if len(closes) < need {
			slog.Warn("features: history too short", "ticker", ticker, "points", len(closes), "need", need)
			continue
		}

		series := closes
		if labeled {
			series = closes[:len(closes)-1]
			m.Labels = append(m.Labels, pctChange(closes[len(closes)-2], closes[len(closes)-1]))
		}
		m.Tickers = append(m.Tickers, ticker)
		m.Rows = append(m.Rows, Indicators(series))
	}

	if err := m.Validate(labeled); err != nil {
		return domain.FeatureMatrix{}, err
	}
	return m, nil
}

func (s *HistorySource) closes(ctx context.Context, ticker string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	points, err := s.feed.History(ctx, ticker, s.opts.Window)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Price > 0 {
			out = append(out, p.Price)
		}
	}
	return out, nil
}

// Indicators computes one row of Columns from a series of daily closes,
// oldest first. The series must hold at least six points.
func Indicators(closes []float64) []float64 {
	n := len(closes)
	last := closes[n-1]

	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		returns = append(returns, pctChange(closes[i-1], closes[i]))
	}
	vol := 0.0
	if len(returns) > 1 {
		vol = stat.StdDev(returns, nil)
	}

	return []float64{
		pctChange(closes[n-2], last),
		pctChange(closes[n-1-smaPeriod], last),
		last / stat.Mean(closes[n-smaPeriod:], nil),
		vol,
	}
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return math.NaN()
	}
	return 100*(to/from) - 100
}
