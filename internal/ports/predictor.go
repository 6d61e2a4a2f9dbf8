package ports

import (
	"context"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// Predictor scores candidates after being fitted on the labeled watchlist.
type Predictor interface {
	Fit(ctx context.Context, features domain.FeatureMatrix) error
	Score(ctx context.Context, features domain.FeatureMatrix) ([]float64, error)
}

// FeatureSource assembles the watchlist and candidate matrices.
type FeatureSource interface {
	// Watchlist returns labeled rows used to fit the predictor.
	Watchlist(ctx context.Context) (domain.FeatureMatrix, error)
	// Candidates returns unlabeled rows with the same columns.
	Candidates(ctx context.Context) (domain.FeatureMatrix, error)
}
