package features

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// CSVSource reads feature matrices from two exported files.
//
// Watchlist layout: Symbol, indicator columns, one ignored column, label.
// Candidates layout: Symbol, indicator columns, one ignored column.
type CSVSource struct {
	WatchlistPath  string
	CandidatesPath string
}

// NewCSVSource creates a CSVSource.
func NewCSVSource(watchlistPath, candidatesPath string) *CSVSource {
	return &CSVSource{WatchlistPath: watchlistPath, CandidatesPath: candidatesPath}
}

// Watchlist reads the labeled watchlist file.
func (s *CSVSource) Watchlist(ctx context.Context) (domain.FeatureMatrix, error) {
	m, err := readFile(ctx, s.WatchlistPath, true)
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("features.CSVSource.Watchlist: %w", err)
	}
	return m, nil
}

// Candidates reads the unlabeled candidates file.
func (s *CSVSource) Candidates(ctx context.Context) (domain.FeatureMatrix, error) {
	m, err := readFile(ctx, s.CandidatesPath, false)
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("features.CSVSource.Candidates: %w", err)
	}
	return m, nil
}

func readFile(ctx context.Context, path string, labeled bool) (domain.FeatureMatrix, error) {
	if err := ctx.Err(); err != nil {
		return domain.FeatureMatrix{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, labeled)
}

// ReadCSV parses a feature file. The first record is the header.
func ReadCSV(r io.Reader, labeled bool) (domain.FeatureMatrix, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return domain.FeatureMatrix{}, fmt.Errorf("%w: %w", domain.ErrInvalidShape, err)
	}
	if len(records) < 2 {
		return domain.FeatureMatrix{}, fmt.Errorf("%w: no data rows", domain.ErrInvalidShape)
	}

	header := records[0]
	// Symbol + ignored column, plus the label for the watchlist.
	trailing := 1
	if labeled {
		trailing = 2
	}
	end := len(header) - trailing
	if end < 2 {
		return domain.FeatureMatrix{}, fmt.Errorf("%w: %d columns is too few", domain.ErrInvalidShape, len(header))
	}

	m := domain.FeatureMatrix{Columns: trimAll(header[1:end])}
	for i, rec := range records[1:] {
		line := i + 2
		row := make([]float64, 0, end-1)
		for j := 1; j < end; j++ {
			v, err := parseFloat(rec[j])
			if err != nil {
				return domain.FeatureMatrix{}, fmt.Errorf("%w: line %d column %q: %w",
					domain.ErrInvalidShape, line, header[j], err)
			}
			row = append(row, v)
		}
		if labeled {
			label, err := parseFloat(rec[len(rec)-1])
			if err != nil {
				return domain.FeatureMatrix{}, fmt.Errorf("%w: line %d label: %w", domain.ErrInvalidShape, line, err)
			}
			m.Labels = append(m.Labels, label)
		}
		m.Tickers = append(m.Tickers, strings.ToUpper(strings.TrimSpace(rec[0])))
		m.Rows = append(m.Rows, row)
	}

	if err := m.Validate(labeled); err != nil {
		return domain.FeatureMatrix{}, err
	}
	return m, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
