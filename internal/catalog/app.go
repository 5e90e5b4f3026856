package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"

	"ProductLogs/api"
	"ProductLogs/internal/diag"
	"ProductLogs/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
	DocsEnabled    bool
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupDocs(r, deps)

	r.Get("/log/generate", diag.GenerateLogs(deps.Log))
	r.Mount("/", s.Routes())
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(kit.RequestID)
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.Recoverer(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	h := promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	if deps.MetricsToken != "" {
		r.With(kit.MetricsAuth(deps.MetricsToken)).Handle("/metrics", h)
		return
	}
	r.Handle("/metrics", h)
}

func setupDocs(r *chi.Mux, deps HTTPDeps) {
	if !deps.DocsEnabled {
		return
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	r.Handle("/docs/*", v5emb.New("Product Catalog", "/openapi.yaml", "/docs/"))
}
