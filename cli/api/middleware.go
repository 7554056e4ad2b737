package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/TechHubXperts/project-AnuAleMagar/datastores"
	"github.com/TechHubXperts/project-AnuAleMagar/handlers"
)

// ctxlog is the [context.Context] key of the request logger.
type ctxlog struct{}

// logger returns the request logger of ctx, or fallback outside a request.
func (key ctxlog) logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(key).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

// loggerMiddleware tags each request with an id, taken from the
// X-Request-Id header or generated, stores a logger carrying it in the
// request context and writes one access log line once the request is done.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetHeader("X-Request-Id", requestID)

		op := ctx.Operation()
		logger := parent.With("x-request-id", requestID)
		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", op.OperationID)))

		logger.LogAttrs(context.Background(), slog.LevelInfo,
			op.Method+" "+op.Path+" "+ctx.Version().Proto,
			slog.String("from", ctx.RemoteAddr()),
			slog.String("ref", ctx.Header("Referer")),
			slog.String("ua", ctx.Header("User-Agent")),
			slog.Int("status", ctx.Status()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// recoverMiddleware turns a panic in a handler or a store into a 500.
func (key ctxlog) recoverMiddleware(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			key.logger(ctx.Context(), fallback).LogAttrs(context.Background(), slog.LevelError, "panic occurred",
				slog.Any("recovered", v),
				slog.String("stack", string(debug.Stack())),
			)
			ctx.SetStatus(http.StatusInternalServerError)
		}()
		next(ctx)
	}
}

// errorHandler logs handler errors with the request logger. Client errors
// are warnings, and the entry id or the invalid field are logged when the
// error carries them.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []slog.Attr{slog.Any("err", err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			status := statusErr.GetStatus()
			if status < http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			attrs = append(attrs, slog.Int("status", status))
		}
		var entryErr *handlers.EntryError
		if errors.As(err, &entryErr) {
			attrs = append(attrs, slog.String("entry", entryErr.ID))
		}
		var validationErr *datastores.ValidationError
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.String("field", validationErr.Field))
		}

		key.logger(ctx, fallback).LogAttrs(context.Background(), level, "error occurred", attrs...)
	}
}

// requestMetrics are the series of one operation answered with one status.
type requestMetrics struct {
	total    *metrics.Counter
	duration *metrics.PrometheusHistogram
}

type requestKey struct {
	operation string
	status    int
}

// meterRequests counts requests and observes their duration per
// operation and status in set.
func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	var (
		mu      sync.Mutex
		series  = map[requestKey]requestMetrics{}
		buckets = metrics.ExponentialBuckets(0.001, 5, 6)
	)
	lookup := func(op *huma.Operation, status int) requestMetrics {
		mu.Lock()
		defer mu.Unlock()
		k := requestKey{operation: op.OperationID, status: status}
		m, ok := series[k]
		if !ok {
			labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, op.Method, op.Path, status)
			m = requestMetrics{
				total:    set.NewCounter("http_requests_total" + labels),
				duration: set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, buckets),
			}
			series[k] = m
		}
		return m
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		m := lookup(ctx.Operation(), ctx.Status())
		m.total.Inc()
		m.duration.UpdateDuration(start)
	}
}
