package kit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ProductLogs/pkg/kit"
)

func newRouter(log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(kit.RequestID)
	r.Use(kit.Logging(log))
	r.Use(kit.Recoverer(log))

	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		kit.WriteJSON(w, http.StatusOK, map[string]string{"rid": chimw.GetReqID(r.Context())})
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	return r
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	rid := rec.Header().Get(kit.RequestIDHeader)
	require.NotEmpty(t, rid)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, rid, body["rid"])

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, rid, ctx["request_id"])
	assert.Equal(t, "/items/{id}", ctx["route"])
	assert.Equal(t, int64(http.StatusOK), ctx["status"])
}

func TestRequestID_PropagatesCallerValue(t *testing.T) {
	r := newRouter(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(kit.RequestIDHeader, "corr-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", rec.Header().Get(kit.RequestIDHeader))
}

func TestRecoverer_LogsAndHidesPanic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "kaboom")

	var body kit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "server error", body.Error)
	assert.Equal(t, rec.Header().Get(kit.RequestIDHeader), body.RequestID)

	panics := logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "kaboom", panics[0].ContextMap()["panic"])

	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), access[0].ContextMap()["status"])
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "valid", token: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "wrong", token: "s3cret", header: "Bearer nope", want: http.StatusForbidden},
		{name: "no scheme", token: "s3cret", header: "s3cret", want: http.StatusForbidden},
		{name: "missing", token: "s3cret", want: http.StatusForbidden},
		{name: "unconfigured", token: "", header: "Bearer ", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			kit.MetricsAuth(tt.token)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
