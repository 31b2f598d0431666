package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// LineItemDTO is the API-facing view of one order line.
type LineItemDTO struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	SKU            string     `json:"sku"`
	Title          string     `json:"title"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	TotalCents     int64      `json:"total_cents"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

// OrderDTO is the API-facing view of an order with its frozen totals.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	Number          string               `json:"number"`
	Status          enums.OrderStatus    `json:"status"`
	PaymentStatus   enums.PaymentStatus  `json:"payment_status"`
	Currency        enums.Currency       `json:"currency"`
	Email           string               `json:"email"`
	SubtotalCents   int64                `json:"subtotal_cents"`
	DiscountCents   int64                `json:"discount_cents"`
	ShippingCents   int64                `json:"shipping_cents"`
	TaxCents        int64                `json:"tax_cents"`
	TotalCents      int64                `json:"total_cents"`
	Coupon          *types.AppliedCoupon `json:"coupon,omitempty"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	ShippingMethod  enums.ShippingMethod `json:"shipping_method"`
	Lines           []LineItemDTO        `json:"lines"`
	PlacedAt        time.Time            `json:"placed_at"`
	CanceledAt      *time.Time           `json:"canceled_at,omitempty"`
}

// SummaryDTO is the list-view projection of an order.
type SummaryDTO struct {
	ID            uuid.UUID           `json:"id"`
	Number        string              `json:"number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Currency      enums.Currency      `json:"currency"`
	TotalCents    int64               `json:"total_cents"`
	LineCount     int                 `json:"line_count"`
	PlacedAt      time.Time           `json:"placed_at"`
}

// ListResult is one page of an owner's order history.
type ListResult struct {
	Orders     []SummaryDTO `json:"orders"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// ToDTO converts a persisted order into its API view.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	lines := make([]LineItemDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LineItemDTO{
			ProductID:      line.ProductID,
			SKU:            line.SKU,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			TotalCents:     line.TotalCents,
			ImageURL:       line.ImageURL,
		})
	}
	return &OrderDTO{
		ID:              order.ID,
		Number:          order.Number,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		Currency:        order.Currency,
		Email:           order.Email,
		SubtotalCents:   order.SubtotalCents,
		DiscountCents:   order.DiscountCents,
		ShippingCents:   order.ShippingCents,
		TaxCents:        order.TaxCents,
		TotalCents:      order.TotalCents,
		Coupon:          order.AppliedCoupon,
		ShippingAddress: order.ShippingAddress,
		ShippingMethod:  order.ShippingMethod,
		Lines:           lines,
		PlacedAt:        order.PlacedAt,
		CanceledAt:      order.CanceledAt,
	}
}

func toSummary(order models.Order) SummaryDTO {
	return SummaryDTO{
		ID:            order.ID,
		Number:        order.Number,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Currency:      order.Currency,
		TotalCents:    order.TotalCents,
		LineCount:     len(order.Lines),
		PlacedAt:      order.PlacedAt,
	}
}
