package domain

import "fmt"

// StockSummary aggregates every row of one ticker.
type StockSummary struct {
	Ticker                 string
	TotalValuePurchased    float64
	TotalQuantityPurchased int
	TotalValueOwned        float64
	TotalQuantityOwned     int
	TotalValueIncrease     float64
	TotalValueIncreasePct  float64
}

// PositionPerformance describes a single row for best/worst reporting.
type PositionPerformance struct {
	ID            int64
	Ticker        string
	BuyPrice      float64
	CurrentPrice  float64
	Change        float64
	PercentChange float64
}

// PortfolioSummary is the whole-ledger view.
type PortfolioSummary struct {
	Best               PositionPerformance
	Worst              PositionPerformance
	TotalValueOwned    float64
	TotalValuePaid     float64
	TotalChange        float64
	TotalPercentChange float64
	Positions          int
}

// SummarizeStock aggregates positions matching ticker. It fails with
// ErrDivisionByZero when nothing matches, since the percent change would
// divide by a zero purchase value.
func SummarizeStock(positions []Position, ticker string) (StockSummary, error) {
	s := StockSummary{Ticker: ticker}
	for _, p := range positions {
		if p.Ticker != ticker {
			continue
		}
		s.TotalValuePurchased += p.PricePurchased
		s.TotalQuantityPurchased++
		s.TotalValueOwned += p.CurrentPrice
		s.TotalQuantityOwned++
		s.TotalValueIncrease += p.ValueIncrease
	}
	if s.TotalValuePurchased == 0 {
		return StockSummary{}, NewTickerError("summary.Stock", ticker,
			fmt.Errorf("%w: no purchase value", ErrDivisionByZero))
	}
	s.TotalValueIncrease = RoundCents(s.TotalValueIncrease)
	s.TotalValueIncreasePct = 100*(s.TotalValueOwned/s.TotalValuePurchased) - 100
	return s, nil
}

// SummarizePortfolio reports the best and worst single rows and the totals.
// Ties keep the first row in ledger order (lowest id).
func SummarizePortfolio(positions []Position) (PortfolioSummary, error) {
	if len(positions) == 0 {
		return PortfolioSummary{}, ErrEmptyPortfolio
	}

	ordered := make([]Position, len(positions))
	copy(ordered, positions)
	SortByID(ordered)

	best, worst := ordered[0], ordered[0]
	var owned, paid float64
	for _, p := range ordered {
		if p.ValueIncrease > best.ValueIncrease {
			best = p
		}
		if p.ValueIncrease < worst.ValueIncrease {
			worst = p
		}
		owned += p.CurrentPrice
		paid += p.PricePurchased
	}
	if paid == 0 {
		return PortfolioSummary{}, fmt.Errorf("summary.Portfolio: %w: no purchase value", ErrDivisionByZero)
	}

	return PortfolioSummary{
		Best:               performance(best),
		Worst:              performance(worst),
		TotalValueOwned:    owned,
		TotalValuePaid:     paid,
		TotalChange:        RoundCents(owned - paid),
		TotalPercentChange: 100*(owned/paid) - 100,
		Positions:          len(ordered),
	}, nil
}

func performance(p Position) PositionPerformance {
	return PositionPerformance{
		ID:            p.ID,
		Ticker:        p.Ticker,
		BuyPrice:      p.PricePurchased,
		CurrentPrice:  p.CurrentPrice,
		Change:        p.ValueIncrease,
		PercentChange: p.PercentChange(),
	}
}
