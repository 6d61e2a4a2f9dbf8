package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int64, ticker string, buy, cur float64) domain.Position {
	return domain.NewPosition(id, ticker, buy, time.Now()).Mark(cur, time.Now())
}

func TestSummarizePortfolio_TwoRows(t *testing.T) {
	positions := []domain.Position{
		row(0, "A", 10, 12),
		row(1, "B", 10, 8),
	}

	s, err := domain.SummarizePortfolio(positions)
	require.NoError(t, err)

	assert.Equal(t, "A", s.Best.Ticker)
	assert.InDelta(t, 2, s.Best.Change, 1e-9)
	assert.InDelta(t, 20, s.Best.PercentChange, 1e-9)
	assert.InDelta(t, 10, s.Best.BuyPrice, 1e-9)
	assert.InDelta(t, 12, s.Best.CurrentPrice, 1e-9)

	assert.Equal(t, "B", s.Worst.Ticker)
	assert.InDelta(t, -2, s.Worst.Change, 1e-9)
	assert.InDelta(t, -20, s.Worst.PercentChange, 1e-9)

	assert.InDelta(t, 20, s.TotalValueOwned, 1e-9)
	assert.InDelta(t, 20, s.TotalValuePaid, 1e-9)
	assert.Zero(t, s.TotalChange)
	assert.InDelta(t, 0, s.TotalPercentChange, 1e-9)
	assert.Equal(t, 2, s.Positions)
}

func TestSummarizePortfolio_TiesKeepLowestID(t *testing.T) {
	// Out of order on purpose: ledger order is by id.
	positions := []domain.Position{
		row(3, "C", 10, 15),
		row(1, "A", 10, 15),
		row(2, "B", 10, 5),
		row(0, "Z", 10, 5),
	}

	s, err := domain.SummarizePortfolio(positions)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Best.ID)
	assert.Equal(t, "A", s.Best.Ticker)
	assert.Equal(t, int64(0), s.Worst.ID)
	assert.Equal(t, "Z", s.Worst.Ticker)
}

func TestSummarizePortfolio_AllEqual(t *testing.T) {
	positions := []domain.Position{row(5, "X", 10, 10), row(6, "Y", 10, 10)}

	s, err := domain.SummarizePortfolio(positions)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Best.ID)
	assert.Equal(t, int64(5), s.Worst.ID)
}

func TestSummarizePortfolio_Empty(t *testing.T) {
	_, err := domain.SummarizePortfolio(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestSummarizeStock(t *testing.T) {
	positions := []domain.Position{
		row(0, "AAPL", 100, 110),
		row(1, "AAPL", 100, 110),
		row(2, "MSFT", 300, 270),
	}

	s, err := domain.SummarizeStock(positions, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Ticker)
	assert.InDelta(t, 200, s.TotalValuePurchased, 1e-9)
	assert.Equal(t, 2, s.TotalQuantityPurchased)
	assert.InDelta(t, 220, s.TotalValueOwned, 1e-9)
	assert.Equal(t, 2, s.TotalQuantityOwned)
	assert.InDelta(t, 20, s.TotalValueIncrease, 1e-9)
	assert.InDelta(t, 10, s.TotalValueIncreasePct, 1e-9)

	s, err = domain.SummarizeStock(positions, "MSFT")
	require.NoError(t, err)
	assert.InDelta(t, -10, s.TotalValueIncreasePct, 1e-9)
}

func TestSummarizeStock_NoMatchIsDivisionByZero(t *testing.T) {
	positions := []domain.Position{row(0, "AAPL", 100, 110)}

	s, err := domain.SummarizeStock(positions, "TSLA")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
	assert.False(t, math.IsNaN(s.TotalValueIncreasePct))
	assert.False(t, math.IsInf(s.TotalValueIncreasePct, 0))

	var te *domain.TickerError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "TSLA", te.Ticker)

	_, err = domain.SummarizeStock(nil, "AAPL")
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestPosition_Mark(t *testing.T) {
	bought := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	p := domain.NewPosition(9, "AAPL", 100, bought)
	assert.Equal(t, bought, p.DateLastRefreshed)
	assert.Equal(t, 100.0, p.CurrentPrice)
	assert.Zero(t, p.ValueIncrease)

	later := bought.Add(24 * time.Hour)
	m := p.Mark(93.333, later)
	assert.Equal(t, bought, m.DatePurchased)
	assert.Equal(t, 100.0, m.PricePurchased)
	assert.Equal(t, later, m.DateLastRefreshed)
	assert.Equal(t, -6.67, m.ValueIncrease)
}

func TestDistinctTickers(t *testing.T) {
	positions := []domain.Position{row(0, "B", 1, 1), row(1, "A", 1, 1), row(2, "B", 1, 1)}
	assert.Equal(t, []string{"B", "A"}, domain.DistinctTickers(positions))
	assert.Equal(t, 2, domain.CountTicker(positions, "B"))
}

func TestLedgerState_AddBalanceAvoidsDrift(t *testing.T) {
	s := domain.NewLedgerState(0)
	for i := 0; i < 10; i++ {
		s.AddBalance(0.1)
	}
	assert.Equal(t, 1.0, s.Balance)
}
