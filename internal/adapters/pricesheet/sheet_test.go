package pricesheet_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/stockbot/internal/adapters/pricesheet"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetYAML = `
prices:
  aapl: 187.44
history:
  MSFT:
    - {date: 2026-10-14, price: 412.3}
    - {date: 2026-10-01, price: 400.0}
    - {date: 2026-10-13, price: 410.1}
`

func writeSheet(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_PricesAndHistory(t *testing.T) {
	s, err := pricesheet.Load(writeSheet(t, sheetYAML))
	require.NoError(t, err)
	ctx := context.Background()

	p, err := s.Price(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 187.44, p, 1e-9)

	// MSFT has no explicit price: last close wins.
	p, err = s.Price(ctx, "msft")
	require.NoError(t, err)
	assert.InDelta(t, 412.3, p, 1e-9)

	points, err := s.History(ctx, "MSFT", 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 410.1, points[0].Price, 1e-9)

	all, err := s.History(ctx, "MSFT", 365*24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.InDelta(t, 400.0, all[0].Price, 1e-9)
}

func TestSheet_NotFound(t *testing.T) {
	s := pricesheet.New(map[string]float64{"AAPL": 1}, nil)

	_, err := s.Price(context.Background(), "TSLA")
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.History(context.Background(), "AAPL", time.Hour)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSheet_ExpiredContextIsTimeout(t *testing.T) {
	s := pricesheet.New(map[string]float64{"AAPL": 1}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := s.Price(ctx, "AAPL")
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestLoad_BadDate(t *testing.T) {
	_, err := pricesheet.Load(writeSheet(t, "history:\n  A:\n    - {date: yesterday, price: 1}\n"))
	assert.Error(t, err)
}
