package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/stockbot/internal/application/engine"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

const (
	defaultFeedTimeout = 10 * time.Second
	quoteWindow        = 7 * 24 * time.Hour
)

// Config holds reconciliation settings.
type Config struct {
	// FeedTimeout bounds each PriceFeed call.
	FeedTimeout time.Duration
	Now         func() time.Time
}

// Engine marks the ledger to market using a PriceFeed.
type Engine struct {
	ledger  engine.LedgerService
	feed    ports.PriceFeed
	journal ports.Journal
	cfg     Config
}

// New creates a reconciliation engine. journal may be nil.
func New(ledger engine.LedgerService, feed ports.PriceFeed, journal ports.Journal, cfg Config) *Engine {
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = defaultFeedTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{ledger: ledger, feed: feed, journal: journal, cfg: cfg}
}

// Report contains everything produced by one reconciliation.
type Report struct {
	At            time.Time
	Prices        map[string]float64
	Failed        map[string]error
	Positions     []domain.Position
	BalanceBefore float64
	BalanceAfter  float64
}

// BalanceDelta returns how much the refresh moved the balance.
func (r *Report) BalanceDelta() float64 {
	return r.BalanceAfter - r.BalanceBefore
}

// Run queries the feed once per distinct held ticker and refreshes the ledger
// with the resulting prices. A ticker whose price could not be fetched makes
// the ledger reject the whole refresh; the returned report still lists the
// prices that were obtained and the failures. The caller may retry.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		At:            e.cfg.Now(),
		Prices:        make(map[string]float64),
		Failed:        make(map[string]error),
		BalanceBefore: e.ledger.Balance(),
	}

	tickers := domain.DistinctTickers(e.ledger.Positions())
	var feedErrs []error
	for _, ticker := range tickers {
		price, err := e.price(ctx, ticker)
		if err != nil {
			slog.Warn("reconcile: price unavailable", "ticker", ticker, "err", err)
			report.Failed[ticker] = err
			feedErrs = append(feedErrs, err)
			continue
		}
		report.Prices[ticker] = price
	}

	positions, err := e.ledger.Refresh(ctx, report.Prices)
	if err != nil {
		report.BalanceAfter = report.BalanceBefore
		return report, fmt.Errorf("reconcile.Run: %w", errors.Join(append([]error{err}, feedErrs...)...))
	}
	report.Positions = positions
	report.BalanceAfter = e.ledger.Balance()

	slog.Info("reconcile: ledger refreshed",
		"tickers", len(tickers),
		"positions", len(positions),
		"balance", report.BalanceAfter,
		"delta", report.BalanceDelta(),
	)

	e.record(ctx, report, tickers)
	return report, nil
}

// Quotes returns the latest price and today's change for each ticker. Tickers
// the feed cannot serve are reported in the failure map.
func (e *Engine) Quotes(ctx context.Context, tickers []string) ([]domain.Quote, map[string]error) {
	var quotes []domain.Quote
	failed := make(map[string]error)
	for _, ticker := range tickers {
		price, err := e.price(ctx, ticker)
		if err != nil {
			failed[ticker] = err
			continue
		}
		prev := 0.0
		hctx, cancel := context.WithTimeout(ctx, e.cfg.FeedTimeout)
		points, err := e.feed.History(hctx, ticker, quoteWindow)
		cancel()
		if err != nil {
			slog.Debug("reconcile: no history for quote", "ticker", ticker, "err", err)
		} else if len(points) >= 2 {
			prev = points[len(points)-2].Price
		}
		quotes = append(quotes, domain.NewQuote(ticker, price, prev))
	}
	return quotes, failed
}

func (e *Engine) price(ctx context.Context, ticker string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.FeedTimeout)
	defer cancel()

	price, err := e.feed.Price(ctx, ticker)
	if err != nil {
		if !errors.Is(err, domain.ErrFeedUnavailable) {
			err = domain.FeedError("reconcile.price", ticker, err)
		}
		return 0, err
	}
	return price, nil
}

// record writes the journal entry. Journal failures are logged, not returned:
// the ledger itself is already durable at this point.
func (e *Engine) record(ctx context.Context, report *Report, tickers []string) {
	if e.journal == nil {
		return
	}
	entry := domain.Reconciliation{
		At:        report.At,
		Tickers:   tickers,
		Positions: len(report.Positions),
		Balance:   report.BalanceAfter,
	}
	for _, p := range report.Positions {
		entry.ValueOwned += p.CurrentPrice
		entry.ValuePaid += p.PricePurchased
	}
	if err := e.journal.SaveReconciliation(ctx, entry); err != nil {
		slog.Warn("reconcile: journal write failed", "err", err)
	}
}
