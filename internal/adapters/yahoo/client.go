package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/alejandrodnm/stockbot/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"

	// Yahoo no documenta límites; 5 req/s con burst 2 no dispara 429 en la práctica.
	defaultRatePerSec = 5
	defaultBurst      = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
	userAgent     = "stockbot/1.0"
)

// errNotFound distingue 404 de otros errores de cliente dentro de doWithRetry.
var errNotFound = errors.New("http 404")

// Client es el HTTP client de Yahoo Finance con rate limiting y retries.
// Implementa ports.PriceFeed.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	timeout time.Duration
}

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	BaseURL       string
	RatePerSecond float64
	Burst         int
	// Timeout bounds every Price/History call, retries included.
	Timeout time.Duration
}

// NewClient crea un Client. Si BaseURL está vacío usa el endpoint de producción.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = defaultRatePerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: opts.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		timeout: opts.Timeout,
	}
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if ctx.Err() != nil || attempt == maxRetries {
				return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by Yahoo", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return errNotFound
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// classify maps transport failures onto the feed error kinds.
func classify(err error) error {
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}
