package domain

import "time"

// PricePoint is one observation of a price series.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Quote is a watchlist line: latest price against the previous close.
type Quote struct {
	Ticker        string
	Price         float64
	PreviousClose float64
	TodayChange   float64 // percent
}

// NewQuote computes TodayChange as 100*price/previousClose - 100.
func NewQuote(ticker string, price, previousClose float64) Quote {
	q := Quote{Ticker: ticker, Price: price, PreviousClose: previousClose}
	if previousClose > 0 {
		q.TodayChange = 100*(price/previousClose) - 100
	}
	return q
}
