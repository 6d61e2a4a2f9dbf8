package notify_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/stockbot/internal/adapters/notify"
	"github.com/alejandrodnm/stockbot/internal/application/acquisition"
	"github.com/alejandrodnm/stockbot/internal/application/reconcile"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

var at = time.Date(2026, 10, 15, 15, 4, 5, 0, time.UTC)

func samplePositions() []domain.Position {
	a := domain.NewPosition(0, "AAPL", 100, at).Mark(110, at)
	b := domain.NewPosition(1, "MSFT", 50, at).Mark(45, at)
	return []domain.Position{a, b}
}

func TestConsole_Positions(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).Positions(samplePositions(), 9850)

	out := buf.String()
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "+10.00%")
	assert.Contains(t, out, "-$5.00")
	assert.Contains(t, out, "Balance: $9850.00")
}

func TestConsole_Positions_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).Positions(nil, 10000)
	assert.Contains(t, buf.String(), "No open positions")
}

func TestConsole_Positions_Compact(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).Positions(samplePositions(), 9850)
	assert.Contains(t, buf.String(), "#1 MSFT buy $50.00 cur $45.00 -10.00%")
}

func TestConsole_PortfolioSummary(t *testing.T) {
	s, err := domain.SummarizePortfolio(samplePositions())
	assert.NoError(t, err)

	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PortfolioSummary(s, 9850)

	out := buf.String()
	assert.Contains(t, out, "Best:  #0 AAPL")
	assert.Contains(t, out, "Worst: #1 MSFT")
	assert.Contains(t, out, "$155.00")
	assert.Contains(t, out, "$5.00 (+3.33%)")
}

func TestConsole_Reconcile(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).Reconcile(&reconcile.Report{
		At:            at,
		Prices:        map[string]float64{"AAPL": 110},
		Failed:        map[string]error{"GONE": domain.ErrNotFound},
		BalanceBefore: 100,
		BalanceAfter:  90,
	})

	out := buf.String()
	assert.Contains(t, out, "FAILED: not found")
	assert.Contains(t, out, "$110.00")
	assert.Contains(t, out, "(-$10.00)")
}

func TestConsole_Acquisition(t *testing.T) {
	res := &acquisition.Result{
		RunID:    "run-1",
		Ranked:   []acquisition.Ranked{{Ticker: "NVDA", Score: 1.5}, {Ticker: "AMD", Score: 0.5}},
		Selected: []acquisition.Ranked{{Ticker: "NVDA", Score: 1.5}, {Ticker: "AMD", Score: 0.5}},
		Bought: []acquisition.Purchase{{
			Ranked:   acquisition.Ranked{Ticker: "NVDA", Score: 1.5},
			Price:    120,
			Quantity: 2,
			Summary:  domain.StockSummary{Ticker: "NVDA", TotalQuantityOwned: 2, TotalValuePurchased: 240, TotalValueOwned: 240},
		}},
		Skipped: []acquisition.Skip{{
			Ranked: acquisition.Ranked{Ticker: "AMD", Score: 0.5},
			Err:    errors.New("feed down"),
		}},
	}

	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).Acquisition(res)

	out := buf.String()
	assert.Contains(t, out, "Run run-1: 2 ranked, 2 selected")
	assert.Contains(t, out, "$240.00")
	assert.Contains(t, out, "skipped AMD (score 0.5000): feed down")
}

func TestConsole_Quotes(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).Quotes(
		[]domain.Quote{domain.NewQuote("AAPL", 110, 100), domain.NewQuote("NEW", 5, 0)},
		map[string]error{"ZZZ": domain.ErrTimeout},
	)

	out := buf.String()
	assert.Contains(t, out, "+10.00%")
	assert.Contains(t, out, "ZZZ unavailable: timeout")
}

func TestConsole_Reconciliations(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	c.Reconciliations(nil)
	assert.Contains(t, buf.String(), "No reconciliations")

	buf.Reset()
	c.Reconciliations([]domain.Reconciliation{{
		At:      at,
		Tickers: []string{"AAPL", "MSFT"},
		Balance: 9675,
	}})
	assert.Contains(t, buf.String(), "AAPL,MSFT")
	assert.Contains(t, buf.String(), "$9675.00")
}
