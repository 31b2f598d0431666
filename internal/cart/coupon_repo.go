package cart

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/pkg/db/models"
)

// CouponRepository resolves coupon codes against the coupons table.
type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) WithTx(tx *gorm.DB) *CouponRepository {
	if tx == nil {
		return r
	}
	return &CouponRepository{db: tx}
}

// FindByCode matches codes case-insensitively. Callers decide whether an
// inactive or expired coupon is an error.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("upper(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementRedemptions bumps times_redeemed after an order converts.
func (r *CouponRepository) IncrementRedemptions(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("upper(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		UpdateColumn("times_redeemed", gorm.Expr("times_redeemed + 1")).Error
}
