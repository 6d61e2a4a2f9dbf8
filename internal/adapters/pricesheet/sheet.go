// Package pricesheet implements ports.PriceFeed over a static YAML file. It
// backs offline runs and tests.
package pricesheet

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type fileFormat struct {
	Prices  map[string]float64     `yaml:"prices"`
	History map[string][]pointYAML `yaml:"history"`
}

type pointYAML struct {
	Date  string  `yaml:"date"`
	Price float64 `yaml:"price"`
}

// Sheet serves prices from memory.
type Sheet struct {
	prices  map[string]float64
	history map[string][]domain.PricePoint
}

// Load reads a YAML price sheet:
//
//	prices:
//	  AAPL: 187.44
//	history:
//	  AAPL:
//	    - {date: 2026-10-13, price: 180.5}
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricesheet.Load: read %q: %w", path, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("pricesheet.Load: parse YAML: %w", err)
	}

	history := make(map[string][]domain.PricePoint, len(f.History))
	for ticker, points := range f.History {
		for _, p := range points {
			d, err := time.Parse(dateLayout, p.Date)
			if err != nil {
				return nil, fmt.Errorf("pricesheet.Load: %s date %q: %w", ticker, p.Date, err)
			}
			history[ticker] = append(history[ticker], domain.PricePoint{Date: d, Price: p.Price})
		}
	}
	return New(f.Prices, history), nil
}

// New builds a sheet from in-memory data. Tickers are case-insensitive.
func New(prices map[string]float64, history map[string][]domain.PricePoint) *Sheet {
	s := &Sheet{
		prices:  make(map[string]float64, len(prices)),
		history: make(map[string][]domain.PricePoint, len(history)),
	}
	for t, p := range prices {
		s.prices[normalize(t)] = p
	}
	for t, points := range history {
		sorted := make([]domain.PricePoint, len(points))
		copy(sorted, points)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
		s.history[normalize(t)] = sorted
	}
	return s
}

// Price returns the sheet price, or the last history close when the ticker has
// no explicit price.
func (s *Sheet) Price(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.FeedError("pricesheet.Price", ticker, fmt.Errorf("%w: %w", domain.ErrTimeout, err))
	}
	key := normalize(ticker)
	if p, ok := s.prices[key]; ok && p > 0 {
		return p, nil
	}
	if points := s.history[key]; len(points) > 0 {
		return points[len(points)-1].Price, nil
	}
	return 0, domain.FeedError("pricesheet.Price", ticker, domain.ErrNotFound)
}

// History returns the points within window of the latest one.
func (s *Sheet) History(ctx context.Context, ticker string, window time.Duration) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.FeedError("pricesheet.History", ticker, fmt.Errorf("%w: %w", domain.ErrTimeout, err))
	}
	points := s.history[normalize(ticker)]
	if len(points) == 0 {
		return nil, domain.FeedError("pricesheet.History", ticker, domain.ErrNotFound)
	}
	cutoff := points[len(points)-1].Date.Add(-window)
	var out []domain.PricePoint
	for _, p := range points {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
