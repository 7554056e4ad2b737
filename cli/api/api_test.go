package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechHubXperts/project-AnuAleMagar/datastores"
)

func newTestRouter(store datastores.EntriesStore, logs io.Writer) http.Handler {
	return NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, "Phonebook API", "test", "deadbeef", "today",
		store, slog.New(slog.NewJSONHandler(logs, nil)))
}

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterPhonebook(t *testing.T) {
	var logs bytes.Buffer
	h := newTestRouter(datastores.NewEntriesInmem(), &logs)

	rec := do(h, http.MethodPost, "/api/phonebook", `{"name":"Alice","phoneNumber":"+1-555-0001"}`, "X-Request-Id", "req-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))

	rec = do(h, http.MethodGet, "/api/phonebook", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Alice"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(h, http.MethodGet, "/api/phonebook/nonexistent-id-12345", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPost, "/api/phonebook", `{"email":"only-email@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Contains(t, logs.String(), `"x-request-id":"req-1"`)
	assert.Contains(t, logs.String(), `"msg":"POST /api/phonebook HTTP/1.1"`)
	assert.Contains(t, logs.String(), `"level":"WARN","msg":"error occurred"`)
	assert.Contains(t, logs.String(), `"status":404`)
	assert.Contains(t, logs.String(), `"entry":"nonexistent-id-12345"`)
	assert.Contains(t, logs.String(), `"field":"name"`)

	rec = do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := rec.Body.String()
	assert.Contains(t, metrics, `build_info{goversion="`)
	assert.Contains(t, metrics, `http_requests_total{method="POST",path="/api/phonebook",status="200"} 1`)
	assert.Contains(t, metrics, `http_requests_total{method="GET",path="/api/phonebook/{id}",status="404"} 1`)
	assert.Contains(t, metrics, `http_requests_total{method="POST",path="/api/phonebook",status="400"} 1`)
	assert.Contains(t, metrics, "phonebook_entries 1\n")
}

func TestRouterProbes(t *testing.T) {
	h := newTestRouter(datastores.NewEntriesInmem(), io.Discard)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/liveness", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/readiness", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/openapi.json", "").Code)
}

type unreachableStore struct {
	*datastores.EntriesInmem
	err error
}

func (s unreachableStore) Ping(context.Context) error { return s.err }

func TestRouterReadiness(t *testing.T) {
	var logs bytes.Buffer
	store := &unreachableStore{EntriesInmem: datastores.NewEntriesInmem()}
	h := newTestRouter(store, &logs)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/readiness", "").Code)

	store.err = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/readiness", "").Code)
	assert.Contains(t, logs.String(), "store is not ready")
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/liveness", "").Code)
}

// uncountedStore fails to list but still counts its entries.
type uncountedStore struct {
	*datastores.EntriesInmem
	countErr error
}

func (s *uncountedStore) List(context.Context) ([]*datastores.Entry, error) {
	return nil, errors.New("list is not available")
}

func (s *uncountedStore) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.EntriesInmem.Count(ctx)
}

func TestRouterEntriesGauge(t *testing.T) {
	var logs bytes.Buffer
	store := &uncountedStore{EntriesInmem: datastores.NewEntriesInmem()}
	h := newTestRouter(store, &logs)

	for _, name := range []string{"Alice", "Bob"} {
		rec := do(h, http.MethodPost, "/api/phonebook", `{"name":"`+name+`","phoneNumber":"1"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Contains(t, do(h, http.MethodGet, "/metrics", "").Body.String(), "phonebook_entries 2\n")

	store.countErr = errors.New("connection reset")
	assert.Contains(t, do(h, http.MethodGet, "/metrics", "").Body.String(), "phonebook_entries NaN\n")
	assert.Contains(t, logs.String(), "could not count entries")
}

type panickingStore struct{ datastores.EntriesStore }

func (panickingStore) List(context.Context) ([]*datastores.Entry, error) { panic("corrupted index") }

func TestRouterRecover(t *testing.T) {
	var logs bytes.Buffer
	h := newTestRouter(panickingStore{datastores.NewEntriesInmem()}, &logs)

	rec := do(h, http.MethodGet, "/api/phonebook", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), `"msg":"panic occurred"`)
	assert.Contains(t, logs.String(), "corrupted index")
}
