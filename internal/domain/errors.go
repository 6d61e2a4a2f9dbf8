package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the offending ticker is
// available through *TickerError.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	ErrInvalidPrice    = fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	ErrInvalidTicker   = fmt.Errorf("%w: ticker must not be empty", ErrInvalidInput)

	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrMissingPrice         = errors.New("missing price")

	ErrEmptyPortfolio = errors.New("empty portfolio")
	ErrDivisionByZero = errors.New("division by zero")

	ErrFeedUnavailable = errors.New("price feed unavailable")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")

	ErrPredictorUnavailable = errors.New("predictor unavailable")
	ErrInvalidShape         = errors.New("invalid shape")

	ErrPersistence = errors.New("persistence failure")
)

// TickerError ties an error kind to the operation and ticker that caused it.
type TickerError struct {
	Op     string
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error { return e.Err }

// NewTickerError wraps err with op and ticker.
func NewTickerError(op, ticker string, err error) error {
	return &TickerError{Op: op, Ticker: ticker, Err: err}
}

// FeedError marks err as a price feed failure for ticker. Timeouts and
// not-found results stay matchable through errors.Is.
func FeedError(op, ticker string, err error) error {
	return NewTickerError(op, ticker, fmt.Errorf("%w: %w", ErrFeedUnavailable, err))
}
