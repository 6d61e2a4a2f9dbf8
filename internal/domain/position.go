package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Position is one purchased unit of an instrument. Quantity is expressed by
// row multiplicity: buying 3 shares creates 3 positions.
type Position struct {
	ID                int64
	Ticker            string
	DatePurchased     time.Time
	PricePurchased    float64
	DateLastRefreshed time.Time
	CurrentPrice      float64
	ValueIncrease     float64
}

// NewPosition opens a row priced at price. The mark-to-market fields start
// equal to the purchase fields.
func NewPosition(id int64, ticker string, price float64, at time.Time) Position {
	return Position{
		ID:                id,
		Ticker:            ticker,
		DatePurchased:     at,
		PricePurchased:    price,
		DateLastRefreshed: at,
		CurrentPrice:      price,
		ValueIncrease:     0,
	}
}

// Mark applies a fresh market price and returns the updated row.
// ValueIncrease is rounded to cents.
func (p Position) Mark(price float64, at time.Time) Position {
	p.DateLastRefreshed = at
	p.CurrentPrice = price
	p.ValueIncrease = RoundCents(price - p.PricePurchased)
	return p
}

// PercentChange returns 100*(current/purchased) - 100.
func (p Position) PercentChange() float64 {
	if p.PricePurchased == 0 {
		return 0
	}
	return 100*(p.CurrentPrice/p.PricePurchased) - 100
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SortByID orders positions by ascending id (ledger order).
func SortByID(positions []Position) {
	sort.Slice(positions, func(i, j int) bool { return positions[i].ID < positions[j].ID })
}

// DistinctTickers returns the tickers held, in ledger order, without duplicates.
func DistinctTickers(positions []Position) []string {
	seen := make(map[string]bool, len(positions))
	var out []string
	for _, p := range positions {
		if seen[p.Ticker] {
			continue
		}
		seen[p.Ticker] = true
		out = append(out, p.Ticker)
	}
	return out
}

// CountTicker returns how many open rows hold ticker.
func CountTicker(positions []Position, ticker string) int {
	n := 0
	for _, p := range positions {
		if p.Ticker == ticker {
			n++
		}
	}
	return n
}
