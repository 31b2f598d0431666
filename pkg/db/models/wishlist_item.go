package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a customer to a saved product.
type WishlistItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index:wishlist_items_customer_id_idx;uniqueIndex:wishlist_items_customer_product_key"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:wishlist_items_product_id_idx;uniqueIndex:wishlist_items_customer_product_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
