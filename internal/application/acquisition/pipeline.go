// Package acquisition turns predictor scores into ledger purchases.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/stockbot/internal/application/engine"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

const (
	DefaultTopN     = 25
	DefaultQuantity = 1

	defaultTimeout = 10 * time.Second
)

// Config holds pipeline defaults. Request fields override them per run.
type Config struct {
	TopN             int
	DefaultQuantity  int
	FeedTimeout      time.Duration
	PredictorTimeout time.Duration
	Now              func() time.Time
}

// Request parameterizes one run.
type Request struct {
	// TopN <= 0 uses the configured default.
	TopN int
	// Quantities maps ticker to rows to buy. Missing tickers use the default;
	// a present value is passed to the ledger as is.
	Quantities map[string]int
}

// Ranked is a candidate with its score.
type Ranked struct {
	Ticker string
	Score  float64
}

// Purchase is one successful buy and the ticker summary right after it.
type Purchase struct {
	Ranked
	Price    float64
	Quantity int
	Position domain.Position
	Summary  domain.StockSummary
}

// Skip is a selected ticker that was not bought.
type Skip struct {
	Ranked
	Err error
}

// Result reports everything a run did.
type Result struct {
	RunID    string
	At       time.Time
	Ranked   []Ranked
	Selected []Ranked
	Bought   []Purchase
	Skipped  []Skip
}

// Pipeline runs feature assembly, scoring and selection.
type Pipeline struct {
	ledger    engine.LedgerService
	feed      ports.PriceFeed
	source    ports.FeatureSource
	predictor ports.Predictor
	journal   ports.Journal
	cfg       Config
}

// New creates a Pipeline. journal may be nil.
func New(
	ledger engine.LedgerService,
	feed ports.PriceFeed,
	source ports.FeatureSource,
	predictor ports.Predictor,
	journal ports.Journal,
	cfg Config,
) *Pipeline {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.DefaultQuantity <= 0 {
		cfg.DefaultQuantity = DefaultQuantity
	}
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = defaultTimeout
	}
	if cfg.PredictorTimeout <= 0 {
		cfg.PredictorTimeout = defaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		ledger:    ledger,
		feed:      feed,
		source:    source,
		predictor: predictor,
		journal:   journal,
		cfg:       cfg,
	}
}

// Rank sorts tickers by score, highest first. Equal scores keep input order.
func Rank(tickers []string, scores []float64) ([]Ranked, error) {
	if len(tickers) != len(scores) {
		return nil, fmt.Errorf("acquisition.Rank: %w: %d tickers, %d scores",
			domain.ErrInvalidShape, len(tickers), len(scores))
	}
	out := make([]Ranked, len(tickers))
	for i := range tickers {
		out[i] = Ranked{Ticker: tickers[i], Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Score runs feature assembly and scoring and returns every candidate ranked.
// Any failure aborts with ErrPredictorUnavailable.
func (p *Pipeline) Score(ctx context.Context) ([]Ranked, error) {
	watch, err := p.source.Watchlist(ctx)
	if err != nil {
		return nil, stageError("features", err)
	}
	cands, err := p.source.Candidates(ctx)
	if err != nil {
		return nil, stageError("features", err)
	}

	scaler, err := domain.FitScaler(watch)
	if err != nil {
		return nil, stageError("scale", err)
	}
	watch, err = scaler.Transform(watch)
	if err != nil {
		return nil, stageError("scale", err)
	}
	cands, err = scaler.Transform(cands)
	if err != nil {
		return nil, stageError("scale", err)
	}

	pctx, cancel := context.WithTimeout(ctx, p.cfg.PredictorTimeout)
	defer cancel()
	if err := p.predictor.Fit(pctx, watch); err != nil {
		return nil, stageError("fit", err)
	}
	scores, err := p.predictor.Score(pctx, cands)
	if err != nil {
		return nil, stageError("score", err)
	}

	ranked, err := Rank(cands.Tickers, scores)
	if err != nil {
		return nil, stageError("rank", err)
	}
	slog.Debug("acquisition: scored", "watchlist", watch.Len(), "candidates", cands.Len())
	return ranked, nil
}

// Run scores the candidates and buys the top N. A ticker whose price or buy
// fails is skipped and reported; earlier purchases stay. A persistence
// failure stops the run since no later buy could be saved either.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), At: p.cfg.Now()}

	ranked, err := p.Score(ctx)
	if err != nil {
		return res, err
	}
	res.Ranked = ranked

	topN := req.TopN
	if topN <= 0 {
		topN = p.cfg.TopN
	}
	res.Selected = ranked[:min(topN, len(ranked))]

	slog.Info("acquisition: run started",
		"run_id", res.RunID,
		"candidates", len(ranked),
		"selected", len(res.Selected),
	)

	var runErr error
	for _, cand := range res.Selected {
		qty := p.quantity(req, cand.Ticker)

		price, err := p.price(ctx, cand.Ticker)
		if err != nil {
			slog.Warn("acquisition: skipped", "ticker", cand.Ticker, "err", err)
			res.Skipped = append(res.Skipped, Skip{Ranked: cand, Err: err})
			continue
		}

		pos, err := p.ledger.Buy(ctx, cand.Ticker, price, qty)
		if err != nil {
			slog.Warn("acquisition: buy failed", "ticker", cand.Ticker, "err", err)
			res.Skipped = append(res.Skipped, Skip{Ranked: cand, Err: err})
			if errors.Is(err, domain.ErrPersistence) {
				runErr = fmt.Errorf("acquisition.Run: %w", err)
				break
			}
			continue
		}

		summary, err := p.ledger.StockSummary(cand.Ticker)
		if err != nil {
			slog.Warn("acquisition: summary failed", "ticker", cand.Ticker, "err", err)
		}
		res.Bought = append(res.Bought, Purchase{
			Ranked:   cand,
			Price:    price,
			Quantity: qty,
			Position: pos,
			Summary:  summary,
		})
	}

	slog.Info("acquisition: run finished",
		"run_id", res.RunID,
		"bought", len(res.Bought),
		"skipped", len(res.Skipped),
		"balance", p.ledger.Balance(),
	)

	p.record(ctx, res)
	return res, runErr
}

func (p *Pipeline) quantity(req Request, ticker string) int {
	if q, ok := req.Quantities[ticker]; ok {
		return q
	}
	return p.cfg.DefaultQuantity
}

func (p *Pipeline) price(ctx context.Context, ticker string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.FeedTimeout)
	defer cancel()

	price, err := p.feed.Price(ctx, ticker)
	if err != nil {
		if !errors.Is(err, domain.ErrFeedUnavailable) {
			err = domain.FeedError("acquisition.price", ticker, err)
		}
		return 0, err
	}
	return price, nil
}

func (p *Pipeline) record(ctx context.Context, res *Result) {
	if p.journal == nil {
		return
	}
	records := make([]domain.AcquisitionRecord, 0, len(res.Bought)+len(res.Skipped))
	for _, b := range res.Bought {
		records = append(records, domain.AcquisitionRecord{
			RunID:    res.RunID,
			At:       res.At,
			Ticker:   b.Ticker,
			Score:    b.Score,
			Price:    b.Price,
			Quantity: b.Quantity,
			Status:   domain.AcquisitionBought,
		})
	}
	for _, s := range res.Skipped {
		records = append(records, domain.AcquisitionRecord{
			RunID:  res.RunID,
			At:     res.At,
			Ticker: s.Ticker,
			Score:  s.Score,
			Status: domain.AcquisitionSkipped,
			Reason: s.Err.Error(),
		})
	}
	if err := p.journal.SaveAcquisitions(ctx, records); err != nil {
		slog.Warn("acquisition: journal write failed", "run_id", res.RunID, "err", err)
	}
}

func stageError(stage string, err error) error {
	if errors.Is(err, domain.ErrPredictorUnavailable) {
		return fmt.Errorf("acquisition.%s: %w", stage, err)
	}
	return fmt.Errorf("acquisition.%s: %w: %w", stage, domain.ErrPredictorUnavailable, err)
}
