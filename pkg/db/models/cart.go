package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// Cart is the server-authoritative cart for a customer or guest session.
// Exactly one of CustomerID and SessionID is set. Version increments on
// every committed mutation so clients can detect stale snapshots.
type Cart struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID     *uuid.UUID            `gorm:"column:customer_id;type:uuid;uniqueIndex:carts_customer_active_key,where:status = 'active'"`
	SessionID      *string               `gorm:"column:session_id;uniqueIndex:carts_session_active_key,where:status = 'active'"`
	Status         enums.CartStatus      `gorm:"column:status;not null;default:'active'"`
	Version        int64                 `gorm:"column:version;not null;default:1"`
	Currency       enums.Currency        `gorm:"column:currency;not null;default:'USD'"`
	AppliedCoupon  *types.AppliedCoupon  `gorm:"column:applied_coupon;type:jsonb"`
	ShippingMethod *enums.ShippingMethod `gorm:"column:shipping_method"`
	Lines          []CartLine            `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
