package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ProductLogs/pkg/kit"
)

const (
	opCreate = "create_product"
	opList   = "list_products"
	opGet    = "get_product"
	opUpdate = "update_product"
	opDelete = "delete_product"
	opStats  = "product_stats"
)

type Server struct {
	Store   Store
	Log     *zap.Logger
	Events  EventPublisher
	Metrics *StoreMetrics
	// Limiter, when set, guards the mutating routes.
	Limiter *kit.RateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger(r, "readyz").Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Get("/stats", s.stats)
		pr.Get("/{id}", s.get)

		pr.Group(func(mr chi.Router) {
			if s.Limiter != nil {
				mr.Use(s.Limiter.Middleware)
			}
			mr.Post("/", s.create)
			mr.Put("/{id}", s.update)
			mr.Delete("/{id}", s.delete)
		})
	})

	return r
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r, opCreate)
	log.Info("create request received", zap.String("path", r.URL.Path))

	var req CreateRequest
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		log.Warn("create request has malformed body", zap.Error(err))
		s.Metrics.observe(opCreate, outcomeInvalid)
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	log.Info("creating product",
		zap.String("name", req.Name),
		zap.String("category", req.Category),
		zap.String("brand", req.Brand),
	)

	p, err := s.Store.Create(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, r, log.With(zap.String("name", req.Name), zap.String("category", req.Category)), opCreate, err)
		return
	}

	log.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
		zap.Stringer("price", p.Price),
		zap.Int("stock_quantity", p.StockQuantity),
		zap.String("category", p.Category),
	)
	s.Metrics.observe(opCreate, outcomeSuccess)
	s.publish(r, log, EventProductCreated, p.ID, &p)

	w.Header().Set("Location", "/products/"+p.ID)
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r, opList)

	f := Filter{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
	}
	log.Info("listing products", zap.String("category", f.Category), zap.String("brand", f.Brand))

	products, err := s.Store.List(r.Context(), f)
	if err != nil {
		s.writeStoreError(w, r, log, opList, err)
		return
	}

	log.Info("products listed", zap.Int("total", len(products)), zap.Bool("filtered", f.Active()))
	s.Metrics.observe(opList, outcomeSuccess)
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := s.logger(r, opGet).With(zap.String("product_id", id))
	log.Info("fetching product")

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, log, opGet, err)
		return
	}

	log.Info("product found", zap.String("name", p.Name), zap.String("category", p.Category))
	s.Metrics.observe(opGet, outcomeSuccess)
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := s.logger(r, opUpdate).With(zap.String("product_id", id))
	log.Info("updating product")

	var req UpdateRequest
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		log.Warn("update request has malformed body", zap.Error(err))
		s.Metrics.observe(opUpdate, outcomeInvalid)
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Store.Update(r.Context(), id, req)
	if err != nil {
		s.writeStoreError(w, r, log, opUpdate, err)
		return
	}

	log.Info("product updated",
		zap.String("name", p.Name),
		zap.Stringer("price", p.Price),
		zap.Int("stock_quantity", p.StockQuantity),
		zap.Strings("changed", req.Changed()),
	)
	s.Metrics.observe(opUpdate, outcomeSuccess)
	s.publish(r, log, EventProductUpdated, p.ID, &p)

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := s.logger(r, opDelete).With(zap.String("product_id", id))
	log.Info("deleting product")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, log, opDelete, err)
		return
	}

	log.Info("product deleted")
	s.Metrics.observe(opDelete, outcomeSuccess)
	s.publish(r, log, EventProductDeleted, id, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r, opStats)
	log.Info("computing product stats")

	st, err := s.Store.Stats(r.Context())
	if err != nil {
		s.writeStoreError(w, r, log, opStats, err)
		return
	}

	log.Info("product stats computed",
		zap.Int("total_products", st.TotalProducts),
		zap.Stringer("average_price", st.AveragePrice),
		zap.Int("total_stock", st.TotalStock),
		zap.Int("low_stock_products", st.LowStockProducts),
	)
	s.Metrics.observe(opStats, outcomeSuccess)
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn("validation failed", zap.Any("errors", verr.Fields))
		s.Metrics.observe(op, outcomeInvalid)
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, ErrNotFound):
		log.Warn("product not found")
		s.Metrics.observe(op, outcomeNotFound)
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
	default:
		log.Error("store operation failed", zap.Error(err))
		s.Metrics.observe(op, outcomeError)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) publish(r *http.Request, log *zap.Logger, typ EventType, id string, p *Product) {
	if s.Events == nil {
		return
	}

	ev := Event{
		Type:       typ,
		ProductID:  id,
		Product:    p,
		RequestID:  chimw.GetReqID(r.Context()),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.Publish(r.Context(), ev); err != nil {
		log.Warn("publish product event failed", zap.String("event", string(typ)), zap.Error(err))
	}
}

func (s *Server) logger(r *http.Request, op string) *zap.Logger {
	l := s.Log
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("operation", op),
	)
}
