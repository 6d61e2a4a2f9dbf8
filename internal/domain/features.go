package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FeatureMatrix holds one row of numeric indicators per ticker. Labels are
// set for the watchlist (known outcome) and nil for candidates.
type FeatureMatrix struct {
	Tickers []string
	Columns []string
	Rows    [][]float64
	Labels  []float64
}

// Len returns the number of rows.
func (m FeatureMatrix) Len() int { return len(m.Rows) }

// Validate checks that every row has one value per column and, when labeled
// is true, that there is one label per row.
func (m FeatureMatrix) Validate(labeled bool) error {
	if len(m.Rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidShape)
	}
	if len(m.Tickers) != len(m.Rows) {
		return fmt.Errorf("%w: %d tickers for %d rows", ErrInvalidShape, len(m.Tickers), len(m.Rows))
	}
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			return fmt.Errorf("%w: row %d (%s) has %d values, want %d",
				ErrInvalidShape, i, m.Tickers[i], len(row), len(m.Columns))
		}
	}
	if labeled && len(m.Labels) != len(m.Rows) {
		return fmt.Errorf("%w: %d labels for %d rows", ErrInvalidShape, len(m.Labels), len(m.Rows))
	}
	return nil
}

// Scaler standardizes columns with statistics fitted once. It is fitted on the
// watchlist only and then applied unchanged to candidates.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes the population mean and standard deviation of every
// column. Constant columns get a scale of 1.
func FitScaler(m FeatureMatrix) (*Scaler, error) {
	if err := m.Validate(false); err != nil {
		return nil, fmt.Errorf("domain.FitScaler: %w", err)
	}
	s := &Scaler{
		Mean:  make([]float64, len(m.Columns)),
		Scale: make([]float64, len(m.Columns)),
	}
	col := make([]float64, len(m.Rows))
	for j := range m.Columns {
		for i, row := range m.Rows {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// Transform returns a standardized copy of m. Labels and tickers are kept.
func (s *Scaler) Transform(m FeatureMatrix) (FeatureMatrix, error) {
	if len(m.Columns) != len(s.Mean) {
		return FeatureMatrix{}, fmt.Errorf("domain.Scaler.Transform: %w: %d columns, scaler fitted on %d",
			ErrInvalidShape, len(m.Columns), len(s.Mean))
	}
	if err := m.Validate(false); err != nil {
		return FeatureMatrix{}, fmt.Errorf("domain.Scaler.Transform: %w", err)
	}
	out := FeatureMatrix{
		Tickers: m.Tickers,
		Columns: m.Columns,
		Labels:  m.Labels,
		Rows:    make([][]float64, len(m.Rows)),
	}
	for i, row := range m.Rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out.Rows[i] = scaled
	}
	return out, nil
}
