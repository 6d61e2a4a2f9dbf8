// Package model implements the predictor used by the acquisition pipeline.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// DefaultLambda is the L2 penalty used when none is configured.
const DefaultLambda = 1.0

// Ridge is a linear regressor with L2 regularization solved in closed form.
// The intercept is not penalized. Safe for concurrent use.
type Ridge struct {
	lambda float64

	mu        sync.RWMutex
	columns   []string
	weights   []float64
	intercept float64
	fitted    bool
}

// NewRidge creates an unfitted model. lambda <= 0 selects DefaultLambda.
func NewRidge(lambda float64) *Ridge {
	if lambda <= 0 {
		lambda = DefaultLambda
	}
	return &Ridge{lambda: lambda}
}

// Fit solves (XᵀX + λI)β = Xᵀy on the labeled rows. A previous fit is
// replaced only if the new one succeeds.
func (r *Ridge) Fit(ctx context.Context, features domain.FeatureMatrix) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("model.Ridge.Fit: %w: %w", domain.ErrPredictorUnavailable, err)
	}
	if err := features.Validate(true); err != nil {
		return fmt.Errorf("model.Ridge.Fit: %w", err)
	}

	n, p := features.Len(), len(features.Columns)
	x := mat.NewDense(n, p+1, nil)
	for i, row := range features.Rows {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), features.Labels...))

	var a mat.Dense
	a.Mul(x.T(), x)
	for j := 1; j <= p; j++ {
		a.Set(j, j, a.At(j, j)+r.lambda)
	}
	var b mat.VecDense
	b.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&a, &b); err != nil {
		return fmt.Errorf("model.Ridge.Fit: %w: solve: %w", domain.ErrPredictorUnavailable, err)
	}

	weights := make([]float64, p)
	for j := range weights {
		weights[j] = beta.AtVec(j + 1)
	}

	r.mu.Lock()
	r.columns = append([]string(nil), features.Columns...)
	r.weights = weights
	r.intercept = beta.AtVec(0)
	r.fitted = true
	r.mu.Unlock()

	slog.Debug("model: ridge fitted", "rows", n, "columns", p, "lambda", r.lambda)
	return nil
}

// Score returns one predicted value per row, in row order.
func (r *Ridge) Score(ctx context.Context, features domain.FeatureMatrix) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("model.Ridge.Score: %w: %w", domain.ErrPredictorUnavailable, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.fitted {
		return nil, fmt.Errorf("model.Ridge.Score: %w: not fitted", domain.ErrPredictorUnavailable)
	}
	if len(features.Columns) != len(r.weights) {
		return nil, fmt.Errorf("model.Ridge.Score: %w: %d columns, model fitted on %d",
			domain.ErrInvalidShape, len(features.Columns), len(r.weights))
	}
	if err := features.Validate(false); err != nil {
		return nil, fmt.Errorf("model.Ridge.Score: %w", err)
	}

	x := mat.NewDense(features.Len(), len(r.weights), nil)
	for i, row := range features.Rows {
		x.SetRow(i, row)
	}
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(len(r.weights), r.weights))

	scores := make([]float64, features.Len())
	for i := range scores {
		scores[i] = out.AtVec(i) + r.intercept
	}
	return scores, nil
}

// Weights returns the fitted coefficients and intercept.
func (r *Ridge) Weights() (weights []float64, intercept float64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.weights...), r.intercept, r.fitted
}
