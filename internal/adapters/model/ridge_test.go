package model_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/stockbot/internal/adapters/model"
	"github.com/alejandrodnm/stockbot/internal/domain"
)

func linearWatchlist() domain.FeatureMatrix {
	// y = 2*a - b + 1
	rows := [][]float64{{0, 0}, {1, 0}, {0, 1}, {2, 1}, {3, 2}, {1, 3}}
	m := domain.FeatureMatrix{Columns: []string{"a", "b"}}
	for i, row := range rows {
		m.Tickers = append(m.Tickers, string(rune('A'+i)))
		m.Rows = append(m.Rows, row)
		m.Labels = append(m.Labels, 2*row[0]-row[1]+1)
	}
	return m
}

func TestRidge_RecoversLinearRelation(t *testing.T) {
	r := model.NewRidge(1e-9)
	require.NoError(t, r.Fit(context.Background(), linearWatchlist()))

	w, b, ok := r.Weights()
	require.True(t, ok)
	assert.InDelta(t, 2.0, w[0], 1e-6)
	assert.InDelta(t, -1.0, w[1], 1e-6)
	assert.InDelta(t, 1.0, b, 1e-6)

	scores, err := r.Score(context.Background(), domain.FeatureMatrix{
		Tickers: []string{"X", "Y"},
		Columns: []string{"a", "b"},
		Rows:    [][]float64{{5, 0}, {0, 5}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, scores[0], 1e-6)
	assert.InDelta(t, -4.0, scores[1], 1e-6)
}

func TestRidge_PenaltyShrinksWeights(t *testing.T) {
	loose := model.NewRidge(1e-9)
	tight := model.NewRidge(100)
	require.NoError(t, loose.Fit(context.Background(), linearWatchlist()))
	require.NoError(t, tight.Fit(context.Background(), linearWatchlist()))

	wl, _, _ := loose.Weights()
	wt, _, _ := tight.Weights()
	assert.Less(t, wt[0], wl[0])
	assert.Greater(t, wt[0], 0.0, "shrinks toward zero without flipping sign")
}

func TestRidge_ScoreBeforeFit(t *testing.T) {
	_, err := model.NewRidge(1).Score(context.Background(), linearWatchlist())
	assert.ErrorIs(t, err, domain.ErrPredictorUnavailable)
}

func TestRidge_ShapeErrors(t *testing.T) {
	r := model.NewRidge(1)

	unlabeled := linearWatchlist()
	unlabeled.Labels = nil
	assert.ErrorIs(t, r.Fit(context.Background(), unlabeled), domain.ErrInvalidShape)

	require.NoError(t, r.Fit(context.Background(), linearWatchlist()))
	_, err := r.Score(context.Background(), domain.FeatureMatrix{
		Tickers: []string{"X"},
		Columns: []string{"a"},
		Rows:    [][]float64{{1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidShape)

	_, err = r.Score(context.Background(), domain.FeatureMatrix{
		Tickers: []string{"X"},
		Columns: []string{"a", "b"},
		Rows:    [][]float64{{1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidShape)
}

func TestRidge_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := model.NewRidge(1)
	assert.ErrorIs(t, r.Fit(ctx, linearWatchlist()), domain.ErrPredictorUnavailable)
	assert.ErrorIs(t, r.Fit(ctx, linearWatchlist()), context.Canceled)

	_, _, ok := r.Weights()
	assert.False(t, ok)
}

func TestRidge_FailedRefitKeepsPreviousModel(t *testing.T) {
	r := model.NewRidge(1e-9)
	require.NoError(t, r.Fit(context.Background(), linearWatchlist()))

	bad := linearWatchlist()
	bad.Labels = bad.Labels[:2]
	require.Error(t, r.Fit(context.Background(), bad))

	w, _, ok := r.Weights()
	require.True(t, ok)
	assert.InDelta(t, 2.0, w[0], 1e-6)
}
