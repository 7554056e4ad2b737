package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{}

func (ping) RegisterPing(api huma.API) {
	huma.Get(api, "/ping", func(context.Context, *struct{}) (*struct{ Body string }, error) {
		return &struct{ Body string }{Body: "pong"}, nil
	})
}

func TestNew(t *testing.T) {
	var seen []string
	h := New("Test API", "0.0.1",
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		func(w http.ResponseWriter, _ *http.Request) { fmt.Fprintln(w, "up 1") },
		OptUseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			seen = append(seen, ctx.Operation().Path)
			next(ctx)
		}),
		OptGroup("/api", OptGroup("/v1", OptAutoRegister(ping{}))),
	)

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{path: "/liveness", status: http.StatusOK},
		{path: "/readiness", status: http.StatusServiceUnavailable},
		{path: "/metrics", status: http.StatusOK, body: "up 1"},
		{path: "/api/v1/ping", status: http.StatusOK, body: `"pong"`},
		{path: "/openapi.json", status: http.StatusOK},
		{path: "/ping", status: http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
			require.Equal(t, c.status, rec.Code)
			if c.body != "" {
				assert.Contains(t, rec.Body.String(), c.body)
			}
		})
	}
	assert.Equal(t, []string{"/api/v1/ping"}, seen)
}
