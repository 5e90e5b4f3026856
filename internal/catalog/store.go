package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const LowStockThreshold = 10

// Prices are bounded so that sums and averages over the whole catalog stay
// cheap to compute.
const (
	MaxPriceScale           = 18
	maxPriceExponent        = 12
	maxPriceCoefficientBits = 128
)

var MaxPrice = decimal.New(1, 12)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

type CreateRequest struct {
	Name          string          `json:"name" validate:"notblank,max=200"`
	Description   string          `json:"description" validate:"max=1000"`
	Category      string          `json:"category" validate:"max=100"`
	Brand         string          `json:"brand" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"nonnegative,price_range"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	Size          string          `json:"size" validate:"max=50"`
	Color         string          `json:"color" validate:"max=50"`
}

// UpdateRequest is a partial update. Nil fields are left untouched; string
// fields that are present but blank are left untouched as well.
type UpdateRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Brand         *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Price         *decimal.Decimal `json:"price,omitempty" validate:"omitempty,nonnegative,price_range"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
	Size          *string          `json:"size,omitempty" validate:"omitempty,max=50"`
	Color         *string          `json:"color,omitempty" validate:"omitempty,max=50"`
}

// Filter values are matched case-insensitively; blank values match everything.
// Changed names the fields the request would overwrite, using their JSON
// names. Blank strings are left out since they do not change anything.
func (r UpdateRequest) Changed() []string {
	var out []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"name", r.Name != nil && !isBlank(*r.Name)},
		{"description", r.Description != nil && !isBlank(*r.Description)},
		{"category", r.Category != nil && !isBlank(*r.Category)},
		{"brand", r.Brand != nil && !isBlank(*r.Brand)},
		{"price", r.Price != nil},
		{"stockQuantity", r.StockQuantity != nil},
		{"size", r.Size != nil && !isBlank(*r.Size)},
		{"color", r.Color != nil && !isBlank(*r.Color)},
	} {
		if f.set {
			out = append(out, f.name)
		}
	}
	return out
}

type Filter struct {
	Category string
	Brand    string
}

func (f Filter) Active() bool {
	return !isBlank(f.Category) || !isBlank(f.Brand)
}

type Stats struct {
	TotalProducts    int             `json:"totalProducts"`
	TotalByCategory  map[string]int  `json:"totalByCategory"`
	TotalByBrand     map[string]int  `json:"totalByBrand"`
	AveragePrice     decimal.Decimal `json:"averagePrice"`
	TotalStock       int             `json:"totalStock"`
	LowStockProducts int             `json:"lowStockProducts"`
}

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, req CreateRequest) (Product, error)
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Product, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}
