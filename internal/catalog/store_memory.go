package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemStore keeps products in insertion order behind a single RWMutex. Every
// operation runs entirely inside one critical section, so readers always see
// a whole snapshot and writers never interleave.
type MemStore struct {
	mu    sync.RWMutex
	order []string
	m     map[string]Product

	now   func() time.Time
	newID func() string
}

type MemStoreOption func(*MemStore)

func WithClock(now func() time.Time) MemStoreOption {
	return func(s *MemStore) { s.now = now }
}

func WithIDGenerator(gen func() string) MemStoreOption {
	return func(s *MemStore) { s.newID = gen }
}

func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		m:     map[string]Product{},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, req CreateRequest) (Product, error) {
	if err := req.Validate(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.exists(id) {
		id = s.newID()
	}

	p := Product{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Brand:         req.Brand,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Size:          req.Size,
		Color:         req.Color,
		CreatedAt:     s.now().UTC(),
	}

	s.m[id] = p
	s.order = append(s.order, id)
	return p, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) List(ctx context.Context, f Filter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		p := s.m[id]
		if !matches(p.Category, f.Category) || !matches(p.Brand, f.Brand) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, id string, req UpdateRequest) (Product, error) {
	if err := req.Validate(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}

	mergeString(&p.Name, req.Name)
	mergeString(&p.Description, req.Description)
	mergeString(&p.Category, req.Category)
	mergeString(&p.Brand, req.Brand)
	mergeString(&p.Size, req.Size)
	mergeString(&p.Color, req.Color)
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}

	now := s.now().UTC()
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = &now

	s.m[id] = p
	return p, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}

	delete(s.m, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

func (s *MemStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalProducts:   len(s.order),
		TotalByCategory: map[string]int{},
		TotalByBrand:    map[string]int{},
		AveragePrice:    decimal.Zero,
	}

	sum := decimal.Zero
	for _, id := range s.order {
		p := s.m[id]
		st.TotalByCategory[p.Category]++
		st.TotalByBrand[p.Brand]++
		st.TotalStock += p.StockQuantity
		if p.StockQuantity < LowStockThreshold {
			st.LowStockProducts++
		}
		sum = sum.Add(p.Price)
	}

	if st.TotalProducts > 0 {
		st.AveragePrice = sum.Div(decimal.NewFromInt(int64(st.TotalProducts)))
	}
	return st, nil
}

func (s *MemStore) exists(id string) bool {
	_, ok := s.m[id]
	return ok
}

func matches(value, filter string) bool {
	if isBlank(filter) {
		return true
	}
	return strings.EqualFold(value, filter)
}

func mergeString(dst *string, v *string) {
	if v == nil || isBlank(*v) {
		return
	}
	*dst = *v
}
