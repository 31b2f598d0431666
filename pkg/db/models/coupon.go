package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/enums"
)

// Coupon is a redeemable discount code. Value is a whole percentage for
// percentage coupons and cents for fixed coupons.
type Coupon struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code              string           `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Kind              enums.CouponKind `gorm:"column:kind;not null"`
	Value             int64            `gorm:"column:value;not null"`
	MinSubtotalCents  *int64           `gorm:"column:min_subtotal_cents"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true"`
	ExpiresAt         *time.Time       `gorm:"column:expires_at"`
	MaxRedemptions    *int             `gorm:"column:max_redemptions"`
	TimesRedeemed     int              `gorm:"column:times_redeemed;not null;default:0"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
