package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

// Config holds ledger behavior settings.
type Config struct {
	StartingBalance float64
	SellMode        domain.SellMode
	RefreshMode     domain.RefreshMode
	Now             func() time.Time
}

// Ledger owns the positions and the cash balance. Every mutation is staged on
// a copy, persisted, and only then made visible; a failed save leaves the
// in-memory state untouched. All access is serialized by one mutex.
type Ledger struct {
	mu    sync.Mutex
	store ports.LedgerStorage
	cfg   Config
	state domain.LedgerState
}

// LoadOrInitialize loads the ledger from store, or creates and persists a new
// one holding the starting balance when no balance record exists yet.
func LoadOrInitialize(ctx context.Context, store ports.LedgerStorage, cfg Config) (*Ledger, domain.LoadResult, error) {
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = domain.DefaultStartingBalance
	}
	if cfg.SellMode == "" {
		cfg.SellMode = domain.SellExact
	}
	if cfg.RefreshMode == "" {
		cfg.RefreshMode = domain.RefreshIncremental
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	state, found, err := store.LoadLedger(ctx)
	if err != nil {
		return nil, domain.Loaded, fmt.Errorf("ledger.LoadOrInitialize: %w", err)
	}
	domain.SortByID(state.Positions)
	if n := len(state.Positions); n > 0 && state.Positions[n-1].ID >= state.NextID {
		state.NextID = state.Positions[n-1].ID + 1
	}

	l := &Ledger{store: store, cfg: cfg, state: state}
	if found {
		slog.Debug("ledger: loaded", "positions", len(state.Positions), "balance", state.Balance)
		return l, domain.Loaded, nil
	}

	fresh := state.Clone()
	fresh.Balance = cfg.StartingBalance
	if err := l.commit(ctx, fresh); err != nil {
		return nil, domain.Initialized, fmt.Errorf("ledger.LoadOrInitialize: %w", err)
	}
	slog.Info("ledger: initialized", "balance", cfg.StartingBalance)
	return l, domain.Initialized, nil
}

// Buy opens quantity rows of ticker at price, charging the balance once per
// row. It returns the last row created.
func (l *Ledger) Buy(ctx context.Context, ticker string, price float64, quantity int) (domain.Position, error) {
	if ticker == "" {
		return domain.Position{}, domain.NewTickerError("ledger.Buy", ticker, domain.ErrInvalidTicker)
	}
	if quantity <= 0 {
		return domain.Position{}, domain.NewTickerError("ledger.Buy", ticker,
			fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity))
	}
	if price <= 0 {
		return domain.Position{}, domain.NewTickerError("ledger.Buy", ticker,
			fmt.Errorf("%w: got %v", domain.ErrInvalidPrice, price))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.cfg.Now()
	next := l.state.Clone()
	var last domain.Position
	for i := 0; i < quantity; i++ {
		last = domain.NewPosition(next.NextID, ticker, price, now)
		next.NextID++
		next.Positions = append(next.Positions, last)
		next.AddBalance(-price)
	}

	if err := l.commit(ctx, next); err != nil {
		return domain.Position{}, domain.NewTickerError("ledger.Buy", ticker, err)
	}
	slog.Info("ledger: buy", "ticker", ticker, "price", price, "quantity", quantity, "balance", next.Balance)
	return last, nil
}

// Sell closes rows of ticker, crediting each row's current price. The holdings
// check always uses quantity; how many rows are removed depends on the
// configured sell mode. It returns the remaining positions.
func (l *Ledger) Sell(ctx context.Context, ticker string, quantity int) ([]domain.Position, error) {
	if ticker == "" {
		return nil, domain.NewTickerError("ledger.Sell", ticker, domain.ErrInvalidTicker)
	}
	if quantity <= 0 {
		return nil, domain.NewTickerError("ledger.Sell", ticker,
			fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	owned := domain.CountTicker(l.state.Positions, ticker)
	if owned < quantity {
		return nil, domain.NewTickerError("ledger.Sell", ticker,
			fmt.Errorf("%w: own %d, selling %d", domain.ErrInsufficientHoldings, owned, quantity))
	}

	toRemove := quantity
	if l.cfg.SellMode == domain.SellAll {
		toRemove = owned
	}

	next := l.state.Clone()
	kept := next.Positions[:0]
	removed := 0
	for _, p := range next.Positions {
		if p.Ticker == ticker && removed < toRemove {
			next.AddBalance(p.CurrentPrice)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	next.Positions = kept

	if err := l.commit(ctx, next); err != nil {
		return nil, domain.NewTickerError("ledger.Sell", ticker, err)
	}
	slog.Info("ledger: sell", "ticker", ticker, "requested", quantity, "removed", removed, "balance", next.Balance)
	return clonePositions(next.Positions), nil
}

// Refresh marks every open row to the price in prices and moves the balance
// according to the refresh mode. A ticker without a price fails the whole
// refresh before anything is written.
func (l *Ledger) Refresh(ctx context.Context, prices map[string]float64) ([]domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.state.Positions {
		price, ok := prices[p.Ticker]
		if !ok {
			return nil, domain.NewTickerError("ledger.Refresh", p.Ticker, domain.ErrMissingPrice)
		}
		if price <= 0 {
			return nil, domain.NewTickerError("ledger.Refresh", p.Ticker,
				fmt.Errorf("%w: got %v", domain.ErrInvalidPrice, price))
		}
	}

	now := l.cfg.Now()
	next := l.state.Clone()
	for i, p := range next.Positions {
		marked := p.Mark(prices[p.Ticker], now)
		// Cumulative credits the unrounded change; only the stored value is rounded.
		delta := marked.CurrentPrice - marked.PricePurchased
		if l.cfg.RefreshMode == domain.RefreshIncremental {
			delta = marked.ValueIncrease - p.ValueIncrease
		}
		next.AddBalance(delta)
		next.Positions[i] = marked
	}

	if err := l.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("ledger.Refresh: %w", err)
	}
	slog.Info("ledger: refreshed", "positions", len(next.Positions), "balance", next.Balance)
	return clonePositions(next.Positions), nil
}

// Save persists the current state as a single unit.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.SaveLedger(ctx, l.state); err != nil {
		return fmt.Errorf("ledger.Save: %w", err)
	}
	return nil
}

// Snapshot returns a consistent copy of positions and balance.
func (l *Ledger) Snapshot() domain.LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Positions returns a copy of the open positions in ledger order.
func (l *Ledger) Positions() []domain.Position {
	return l.Snapshot().Positions
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Balance
}

// StockSummary aggregates the rows of ticker on a consistent snapshot.
func (l *Ledger) StockSummary(ticker string) (domain.StockSummary, error) {
	return domain.SummarizeStock(l.Positions(), ticker)
}

// PortfolioSummary summarizes the whole ledger on a consistent snapshot.
func (l *Ledger) PortfolioSummary() (domain.PortfolioSummary, error) {
	return domain.SummarizePortfolio(l.Positions())
}

// commit persists next and swaps it in. Must be called with mu held.
func (l *Ledger) commit(ctx context.Context, next domain.LedgerState) error {
	if err := l.store.SaveLedger(ctx, next); err != nil {
		return err
	}
	l.state = next
	return nil
}

func clonePositions(in []domain.Position) []domain.Position {
	out := make([]domain.Position, len(in))
	copy(out, in)
	return out
}
