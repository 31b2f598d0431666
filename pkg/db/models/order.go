package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// Order is the immutable record produced when a checkout is submitted.
// Monetary fields are the totals computed at submission time.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number           string               `gorm:"column:number;not null;uniqueIndex:orders_number_key"`
	CartID           uuid.UUID            `gorm:"column:cart_id;type:uuid;not null"`
	CustomerID       *uuid.UUID           `gorm:"column:customer_id;type:uuid;index:orders_customer_id_idx"`
	SessionID        *string              `gorm:"column:session_id;index:orders_session_id_idx"`
	Email            string               `gorm:"column:email;not null"`
	Status           enums.OrderStatus    `gorm:"column:status;not null;default:'pending_payment'"`
	PaymentStatus    enums.PaymentStatus  `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentSessionID *string              `gorm:"column:payment_session_id;index:orders_payment_session_idx"`
	IdempotencyKey   *string              `gorm:"column:idempotency_key;uniqueIndex:orders_idempotency_key"`
	Currency         enums.Currency       `gorm:"column:currency;not null;default:'USD'"`
	SubtotalCents    int64                `gorm:"column:subtotal_cents;not null"`
	DiscountCents    int64                `gorm:"column:discount_cents;not null;default:0"`
	ShippingCents    int64                `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents         int64                `gorm:"column:tax_cents;not null;default:0"`
	TotalCents       int64                `gorm:"column:total_cents;not null"`
	AppliedCoupon    *types.AppliedCoupon `gorm:"column:applied_coupon;type:jsonb"`
	ShippingAddress  *types.Address       `gorm:"column:shipping_address;type:jsonb"`
	ShippingMethod   enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	Lines            []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt         time.Time            `gorm:"column:placed_at;not null"`
	CanceledAt       *time.Time           `gorm:"column:canceled_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
