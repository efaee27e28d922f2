package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/services"
	"salesboard/internal/store/memory"
	"salesboard/internal/store/storetest"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: discardHandler{}})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	st := memory.New()
	_, err := st.ReplaceAll(context.Background(), storetest.Fixture())
	require.NoError(t, err)

	resolver := core.Resolver{
		Now:      func() time.Time { return time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	srv := NewServer(":0", services.NewQueryService(st, resolver, services.NewReportCache(16, time.Minute)), opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = do(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestTransactions(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/api/transactions?month=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	txs := decode[[]core.Transaction](t, rec)
	assert.Len(t, txs, 7)

	rec = do(t, srv, http.MethodGet, "/api/transactions?month=3&search=JACKET")
	require.Equal(t, http.StatusOK, rec.Code)
	txs = decode[[]core.Transaction](t, rec)
	require.Len(t, txs, 2)
	assert.Equal(t, "Men's Cotton Jacket", txs[0].Title)
	assert.Equal(t, "Rain Jacket Women", txs[1].Title)

	rec = do(t, srv, http.MethodGet, "/api/transactions?month=3&search=999.99")
	require.Equal(t, http.StatusOK, rec.Code)
	txs = decode[[]core.Transaction](t, rec)
	require.Len(t, txs, 1)
	assert.Equal(t, "Samsung 49-Inch Monitor", txs[0].Title)

	rec = do(t, srv, http.MethodGet, "/api/transactions?month=3&page=2&per_page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Transaction](t, rec), 2)
}

func TestTransactions_EmptyResultIsArray(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/api/transactions?month=3&search=nothing-matches-this")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestReports(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/api/statistics?month=3")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[core.Statistics](t, rec)
	assert.InDelta(t, 2020.98, stats.TotalSales, 1e-6)
	assert.EqualValues(t, 4, stats.TotalSoldItems)
	assert.EqualValues(t, 3, stats.TotalNotSoldItems)

	rec = do(t, srv, http.MethodGet, "/api/barchart?month=3")
	require.Equal(t, http.StatusOK, rec.Code)
	bars := decode[[]core.BarChartEntry](t, rec)
	require.Len(t, bars, 10)
	assert.Equal(t, core.BarChartEntry{Range: "0-100", Count: 2}, bars[0])
	assert.Equal(t, core.BarChartEntry{Range: "101-200", Count: 1}, bars[1])
	assert.Equal(t, core.BarChartEntry{Range: "901-above", Count: 2}, bars[9])

	rec = do(t, srv, http.MethodGet, "/api/piechart?month=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []core.CategoryCount{
		{Category: "electronics", Count: 2},
		{Category: "jewelery", Count: 2},
		{Category: "men's clothing", Count: 1},
		{Category: "women's clothing", Count: 2},
	}, decode[[]core.CategoryCount](t, rec))
}

func TestCombinedEqualsIndividualReports(t *testing.T) {
	srv := newTestServer(t, Options{})

	combined := decode[core.Combined](t, do(t, srv, http.MethodGet, "/api/combined?month=3"))
	assert.Equal(t, decode[core.Statistics](t, do(t, srv, http.MethodGet, "/api/statistics?month=3")), combined.Statistics)
	assert.Equal(t, decode[[]core.BarChartEntry](t, do(t, srv, http.MethodGet, "/api/barchart?month=3")), combined.BarChart)
	assert.Equal(t, decode[[]core.CategoryCount](t, do(t, srv, http.MethodGet, "/api/piechart?month=3")), combined.PieChart)
}

func TestBadParametersReturn400(t *testing.T) {
	srv := newTestServer(t, Options{})

	targets := []string{
		"/api/transactions",
		"/api/transactions?month=13",
		"/api/transactions?month=3&page=0",
		"/api/transactions?month=3&per_page=1000",
		"/api/statistics",
		"/api/statistics?month=abc",
		"/api/barchart?month=0",
		"/api/piechart?month=",
		"/api/combined?month=-4",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[ErrorBody](t, rec)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestWrongMethodReturns405(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := do(t, srv, method, "/api/statistics?month=3")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	}
}

func TestUnknownAPIPathReturns404(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[ErrorBody](t, rec).Error)
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/statistics?month=3", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Options{CORS: corsConfig("http://localhost:3000")})

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/statistics?month=3").Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/statistics?month=3")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// probes are not limited
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz").Code)
}

type blockingQueries struct{ Queries }

func (blockingQueries) Statistics(ctx context.Context, _ int) (core.Statistics, error) {
	<-ctx.Done()
	return core.Statistics{}, ctx.Err()
}

type brokenQueries struct{ Queries }

func (brokenQueries) PieChart(context.Context, int) ([]core.CategoryCount, error) {
	return nil, errors.New("disk on fire")
}

func TestQueryTimeoutReturns504(t *testing.T) {
	srv := NewServer(":0", blockingQueries{}, Options{QueryTimeout: 20 * time.Millisecond, Logger: quietLogger()})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodGet, "/api/statistics?month=3")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestStoreFailureReturns500WithoutDetails(t *testing.T) {
	srv := NewServer(":0", brokenQueries{}, Options{Logger: quietLogger()})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodGet, "/api/piechart?month=3")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[ErrorBody](t, rec).Error)
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 10})
	srv.SetReady(true)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.False(t, srv.Ready())
}

func TestRejectedParametersAreLoggedAsValidation(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{
		Handler: slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	srv := newTestServer(t, Options{Logger: logger})

	rec := do(t, srv, http.MethodGet, "/api/barchart?month=13")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var found map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "Rejected query parameters" {
			found = entry
		}
	}
	require.NotNil(t, found, buf.String())
	assert.Equal(t, applog.ErrorTypeValidation, found[applog.FieldErrorType])
	assert.Equal(t, applog.OpBarChart, found[applog.FieldOperation])
	assert.NotEmpty(t, found[applog.FieldRequestID])
}

func TestTraceMetricsCountRequests(t *testing.T) {
	srv := newTestServer(t, Options{})

	do(t, srv, http.MethodGet, "/healthz")
	do(t, srv, http.MethodGet, "/api/statistics?month=3")
	do(t, srv, http.MethodGet, "/api/statistics")

	m := srv.TraceMetrics()
	assert.EqualValues(t, 3, m.TotalRequests)
	assert.EqualValues(t, 0, m.InFlight)
}
