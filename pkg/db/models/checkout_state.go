package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// CheckoutState tracks the in-progress checkout flow for a cart. One row per
// cart. PendingOrderID is set once submission creates an order; the row moves
// to the confirmed step when that order's payment settles.
type CheckoutState struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID             `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:checkout_states_cart_id_key"`
	Step            enums.CheckoutStep    `gorm:"column:step;not null;default:'shipping_info'"`
	Email           *string               `gorm:"column:email"`
	ShippingAddress *types.Address        `gorm:"column:shipping_address;type:jsonb"`
	ShippingMethod  *enums.ShippingMethod `gorm:"column:shipping_method"`
	PendingOrderID  *uuid.UUID            `gorm:"column:pending_order_id;type:uuid"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
