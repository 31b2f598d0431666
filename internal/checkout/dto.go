package checkout

import (
	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/orders"
	"github.com/lumencart/storefront-backend/internal/pricing"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// CheckoutDTO is the API-facing view of an in-progress checkout.
type CheckoutDTO struct {
	CartID          uuid.UUID             `json:"cart_id"`
	Step            enums.CheckoutStep    `json:"step"`
	Email           *string               `json:"email,omitempty"`
	ShippingAddress *types.Address        `json:"shipping_address,omitempty"`
	ShippingMethod  *enums.ShippingMethod `json:"shipping_method,omitempty"`
	PendingOrderID  *uuid.UUID            `json:"pending_order_id,omitempty"`
	Totals          pricing.Totals        `json:"totals"`
}

// ShippingInfoInput carries the contact and delivery details collected on the
// first checkout step.
type ShippingInfoInput struct {
	Email   string               `json:"email"`
	Address types.Address        `json:"address"`
	Method  enums.ShippingMethod `json:"method"`
}

// SubmitInput carries the submission request. The idempotency key makes
// double-clicks and retries return the original order instead of a duplicate.
type SubmitInput struct {
	IdempotencyKey string
}

// SubmitResult is the outcome of a successful submission: the frozen order
// plus the hosted payment page the customer is redirected to.
type SubmitResult struct {
	Order       *orders.OrderDTO `json:"order"`
	RedirectURL string           `json:"redirect_url"`
}

func toDTO(state *models.CheckoutState, totals pricing.Totals) *CheckoutDTO {
	return &CheckoutDTO{
		CartID:          state.CartID,
		Step:            state.Step,
		Email:           state.Email,
		ShippingAddress: state.ShippingAddress,
		ShippingMethod:  state.ShippingMethod,
		PendingOrderID:  state.PendingOrderID,
		Totals:          totals,
	}
}
