package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumencart/storefront-backend/pkg/enums"
)

// Line is one cart line fed into the calculator.
type Line struct {
	ProductID      uuid.UUID
	UnitPriceCents int64
	Quantity       int
}

// Coupon is the discount definition applied against the subtotal.
type Coupon struct {
	Code             string
	Kind             enums.CouponKind
	Value            int64
	MinSubtotalCents *int64
}

// Input bundles everything the calculator needs. The calculator never loads
// data itself; callers pass the cart snapshot they already hold.
type Input struct {
	Lines         []Line
	Coupon        *Coupon
	ShippingCents int64
	TaxRateBPS    int64
}

// Warning flags a line that could not contribute to the subtotal.
type Warning struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

// Totals is the complete price breakdown for a cart.
type Totals struct {
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	ShippingCents int64     `json:"shipping_cents"`
	TaxCents      int64     `json:"tax_cents"`
	TotalCents    int64     `json:"total_cents"`
	Warnings      []Warning `json:"warnings,omitempty"`
}

// Calculate produces the totals for the given input. Lines with a negative
// price or non-positive quantity contribute zero and are reported as
// warnings rather than failing the whole cart. The grand total is clamped
// at zero.
func Calculate(input Input) Totals {
	totals := Totals{ShippingCents: input.ShippingCents}
	if totals.ShippingCents < 0 {
		totals.ShippingCents = 0
	}

	subtotal := decimal.Zero
	for _, line := range input.Lines {
		if reason := lineIntegrityIssue(line); reason != "" {
			totals.Warnings = append(totals.Warnings, Warning{
				ProductID: line.ProductID,
				Reason:    reason,
			})
			continue
		}
		lineTotal := decimal.NewFromInt(line.UnitPriceCents).
			Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}
	totals.SubtotalCents = subtotal.IntPart()

	if input.Coupon != nil {
		totals.DiscountCents = couponDiscount(*input.Coupon, subtotal)
	}

	taxable := subtotal.Sub(decimal.NewFromInt(totals.DiscountCents))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	if input.TaxRateBPS > 0 {
		tax := taxable.Mul(decimal.NewFromInt(input.TaxRateBPS)).Div(decimal.NewFromInt(10000))
		totals.TaxCents = tax.Round(0).IntPart()
	}

	total := taxable.
		Add(decimal.NewFromInt(totals.ShippingCents)).
		Add(decimal.NewFromInt(totals.TaxCents))
	if total.IsNegative() {
		total = decimal.Zero
	}
	totals.TotalCents = total.IntPart()
	return totals
}

func lineIntegrityIssue(line Line) string {
	if line.UnitPriceCents < 0 {
		return fmt.Sprintf("negative unit price %d", line.UnitPriceCents)
	}
	if line.Quantity <= 0 {
		return fmt.Sprintf("non-positive quantity %d", line.Quantity)
	}
	return ""
}

// couponDiscount returns the discount in cents, never exceeding the subtotal.
func couponDiscount(coupon Coupon, subtotal decimal.Decimal) int64 {
	if coupon.Value <= 0 || subtotal.Sign() <= 0 {
		return 0
	}
	if coupon.MinSubtotalCents != nil &&
		subtotal.LessThan(decimal.NewFromInt(*coupon.MinSubtotalCents)) {
		return 0
	}

	var discount decimal.Decimal
	switch coupon.Kind {
	case enums.CouponKindPercentage:
		pct := decimal.NewFromInt(coupon.Value).Div(decimal.NewFromInt(100))
		discount = subtotal.Mul(pct).Round(0)
	case enums.CouponKindFixed:
		discount = decimal.NewFromInt(coupon.Value)
	default:
		return 0
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.IntPart()
}
