package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/stockbot/internal/adapters/yahoo"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartOK = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","regularMarketPrice":187.44,"regularMarketTime":1760536800},
	"timestamp":[1760277600,1760364000,1760450400],
	"indicators":{"quote":[{"close":[180.5,null,185.25]}]}
}],"error":null}}`

const chartNoMeta = `{"chart":{"result":[{
	"meta":{"symbol":"MSFT","regularMarketPrice":0},
	"timestamp":[1760277600,1760364000],
	"indicators":{"quote":[{"close":[410.1,412.3]}]}
}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(srv *httptest.Server, timeout time.Duration) *yahoo.Client {
	return yahoo.NewClient(yahoo.Options{
		BaseURL:       srv.URL,
		RatePerSecond: 1000,
		Burst:         10,
		Timeout:       timeout,
	})
}

func TestPrice_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartOK))
	}))
	defer srv.Close()

	price, err := newTestClient(srv, time.Second).Price(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.InDelta(t, 187.44, price, 1e-9)
}

func TestPrice_FallsBackToLastClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartNoMeta))
	}))
	defer srv.Close()

	price, err := newTestClient(srv, time.Second).Price(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.InDelta(t, 412.3, price, 1e-9)
}

func TestPrice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(chartNotFound))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, time.Second).Price(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var te *domain.TickerError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "ZZZZ", te.Ticker)
}

func TestPrice_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartNotFound))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, time.Second).Price(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrice_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestClient(srv, 100*time.Millisecond).Price(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPrice_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(chartOK))
	}))
	defer srv.Close()

	price, err := newTestClient(srv, 5*time.Second).Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 187.44, price, 1e-9)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHistory_SkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		w.Write([]byte(chartOK))
	}))
	defer srv.Close()

	points, err := newTestClient(srv, time.Second).History(context.Background(), "AAPL", 30*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 180.5, points[0].Price, 1e-9)
	assert.InDelta(t, 185.25, points[1].Price, 1e-9)
	assert.True(t, points[0].Date.Before(points[1].Date))
}
