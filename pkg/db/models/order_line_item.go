package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the snapshot of each cart line at submission.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	SKU            string     `gorm:"column:sku;not null"`
	Title          string     `gorm:"column:title;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	TotalCents     int64      `gorm:"column:total_cents;not null"`
	ImageURL       *string    `gorm:"column:image_url"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
