package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine snapshots one product inside a cart. Price and title are copied
// at add time so the cart stays renderable if the listing changes.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_lines_cart_product_key"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_lines_cart_product_key"`
	SKU            string    `gorm:"column:sku;not null"`
	Title          string    `gorm:"column:title;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
