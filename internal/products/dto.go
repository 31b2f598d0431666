package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

// Image is the canonical image shape exposed by the API regardless of how
// the upstream feed stored it.
type Image struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Position int    `json:"position"`
}

// ProductDTO is the detail view of a catalog listing.
type ProductDTO struct {
	ID                  uuid.UUID      `json:"id"`
	SKU                 string         `json:"sku"`
	Title               string         `json:"title"`
	Subtitle            *string        `json:"subtitle,omitempty"`
	Description         *string        `json:"description,omitempty"`
	Category            string         `json:"category"`
	Tags                []string       `json:"tags"`
	PriceCents          int64          `json:"price_cents"`
	CompareAtPriceCents *int64         `json:"compare_at_price_cents,omitempty"`
	Currency            enums.Currency `json:"currency"`
	Images              []Image        `json:"images"`
	PrimaryImageURL     *string        `json:"primary_image_url,omitempty"`
	Rating              *float64       `json:"rating,omitempty"`
	ReviewCount         int            `json:"review_count"`
	StockQty            int            `json:"stock_qty"`
	IsActive            bool           `json:"is_active"`
	IsFeatured          bool           `json:"is_featured"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ProductSummary is the lighter row used by search results and lists.
type ProductSummary struct {
	ID                  uuid.UUID      `json:"id"`
	SKU                 string         `json:"sku"`
	Title               string         `json:"title"`
	Subtitle            *string        `json:"subtitle,omitempty"`
	Category            string         `json:"category"`
	PriceCents          int64          `json:"price_cents"`
	CompareAtPriceCents *int64         `json:"compare_at_price_cents,omitempty"`
	Currency            enums.Currency `json:"currency"`
	PrimaryImageURL     *string        `json:"primary_image_url,omitempty"`
	Rating              *float64       `json:"rating,omitempty"`
	ReviewCount         int            `json:"review_count"`
	IsFeatured          bool           `json:"is_featured"`
	CreatedAt           time.Time      `json:"created_at"`
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Query         string   `json:"q,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Tag           *string  `json:"tag,omitempty"`
	PriceMinCents *int64   `json:"price_min_cents,omitempty"`
	PriceMaxCents *int64   `json:"price_max_cents,omitempty"`
	MinRating     *float64 `json:"min_rating,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one page of catalog rows plus the cursor for the next page.
type ListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
