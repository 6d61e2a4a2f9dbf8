package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// PriceFeed obtiene precios de mercado para un ticker.
type PriceFeed interface {
	// Price returns the latest price. Failures wrap domain.ErrFeedUnavailable
	// together with domain.ErrNotFound or domain.ErrTimeout.
	Price(ctx context.Context, ticker string) (float64, error)

	// History returns closing prices over the trailing window, oldest first.
	History(ctx context.Context, ticker string, window time.Duration) ([]domain.PricePoint, error)
}
