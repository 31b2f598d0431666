package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lumencart/storefront-backend/pkg/enums"
)

// Product represents a canonical catalog listing. Images is kept as raw
// JSONB because upstream feeds disagree on its shape; normalization happens
// at the repository boundary.
type Product struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU                 string          `gorm:"column:sku;not null;uniqueIndex:products_sku_key"`
	Title               string          `gorm:"column:title;not null"`
	Subtitle            *string         `gorm:"column:subtitle"`
	Description         *string         `gorm:"column:description"`
	Category            string          `gorm:"column:category;not null"`
	Tags                pq.StringArray  `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents          int64           `gorm:"column:price_cents;not null"`
	CompareAtPriceCents *int64          `gorm:"column:compare_at_price_cents"`
	Currency            enums.Currency  `gorm:"column:currency;not null;default:'USD'"`
	Images              json.RawMessage `gorm:"column:images;type:jsonb"`
	Rating              *float64        `gorm:"column:rating;type:numeric(3,2)"`
	ReviewCount         int             `gorm:"column:review_count;not null;default:0"`
	StockQty            int             `gorm:"column:stock_qty;not null;default:0"`
	IsActive            bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured          bool            `gorm:"column:is_featured;not null;default:false"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
