package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

const chartPath = "/v8/finance/chart/"

// Price returns the regular market price, falling back to the last non-null
// intraday close when the meta block has none.
func (c *Client) Price(ctx context.Context, ticker string) (float64, error) {
	ticker = normalize(ticker)
	if ticker == "" {
		return 0, domain.NewTickerError("yahoo.Price", ticker, domain.ErrInvalidTicker)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.chart(ctx, ticker, url.Values{"interval": {"1m"}, "range": {"1d"}})
	if err != nil {
		return 0, domain.FeedError("yahoo.Price", ticker, err)
	}

	price := res.Meta.RegularMarketPrice
	if price <= 0 {
		points := closes(res)
		if len(points) > 0 {
			price = points[len(points)-1].Price
		}
	}
	if price <= 0 {
		return 0, domain.FeedError("yahoo.Price", ticker, fmt.Errorf("%w: no price in response", domain.ErrNotFound))
	}

	slog.Debug("yahoo: price", "ticker", ticker, "price", price)
	return price, nil
}

// History returns daily closes covering window, oldest first.
func (c *Client) History(ctx context.Context, ticker string, window time.Duration) ([]domain.PricePoint, error) {
	ticker = normalize(ticker)
	if ticker == "" {
		return nil, domain.NewTickerError("yahoo.History", ticker, domain.ErrInvalidTicker)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	end := time.Now().UTC()
	start := end.Add(-window)
	res, err := c.chart(ctx, ticker, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprintf("%d", start.Unix())},
		"period2":  {fmt.Sprintf("%d", end.Unix())},
	})
	if err != nil {
		return nil, domain.FeedError("yahoo.History", ticker, err)
	}

	points := closes(res)
	if len(points) == 0 {
		return nil, domain.FeedError("yahoo.History", ticker, fmt.Errorf("%w: empty series", domain.ErrNotFound))
	}
	return points, nil
}

func (c *Client) chart(ctx context.Context, ticker string, q url.Values) (chartResult, error) {
	u := c.baseURL + chartPath + url.PathEscape(ticker) + "?" + q.Encode()

	var resp chartResponse
	if err := c.get(ctx, u, &resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return chartResult{}, fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return chartResult{}, classify(err)
	}
	if resp.Chart.Error != nil {
		return chartResult{}, fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return chartResult{}, fmt.Errorf("%w: no result", domain.ErrNotFound)
	}
	return resp.Chart.Result[0], nil
}

// closes pairs timestamps with non-null close values.
func closes(r chartResult) []domain.PricePoint {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	series := r.Indicators.Quote[0].Close
	var out []domain.PricePoint
	for i, ts := range r.Timestamp {
		if i >= len(series) || series[i] == nil || *series[i] <= 0 {
			continue
		}
		out = append(out, domain.PricePoint{Date: time.Unix(ts, 0).UTC(), Price: *series[i]})
	}
	return out
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
