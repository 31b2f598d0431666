package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/cart"
	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/orders"
	"github.com/lumencart/storefront-backend/internal/pricing"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
	"github.com/lumencart/storefront-backend/pkg/outbox"
	"github.com/lumencart/storefront-backend/pkg/payment"
)

var validate = validator.New()

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type paymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input payment.CreateSessionInput) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error)
}

type couponRedeemer interface {
	IncrementRedemptions(ctx context.Context, code string) error
}

// Service drives the checkout flow: a per-cart state machine that walks
// shipping_info -> payment_method -> confirmed, freezes the cart into an
// order on submit, and hands the customer to the hosted payment page.
type Service interface {
	StartCheckout(ctx context.Context, owner identity.Owner) (*CheckoutDTO, error)
	GetCheckout(ctx context.Context, owner identity.Owner) (*CheckoutDTO, error)
	SetShippingInfo(ctx context.Context, owner identity.Owner, input ShippingInfoInput) (*CheckoutDTO, error)
	SetStep(ctx context.Context, owner identity.Owner, step enums.CheckoutStep) (*CheckoutDTO, error)
	Submit(ctx context.Context, owner identity.Owner, input SubmitInput) (*SubmitResult, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*orders.OrderDTO, error)
}

type service struct {
	carts    cart.CartRepository
	states   CheckoutRepository
	orders   orders.OrderRepository
	payments paymentGateway
	events   eventEmitter
	coupons  couponRedeemer
	tx       txRunner
	shipping config.ShippingConfig
	tax      config.TaxConfig
	logg     *logger.Logger
}

// NewService builds a checkout service backed by the provided stack.
func NewService(
	carts cart.CartRepository,
	states CheckoutRepository,
	orderRepo orders.OrderRepository,
	payments paymentGateway,
	events eventEmitter,
	coupons couponRedeemer,
	tx txRunner,
	shipping config.ShippingConfig,
	tax config.TaxConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil || states == nil || orderRepo == nil {
		return nil, fmt.Errorf("cart, checkout, and order repositories required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon redeemer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		carts:    carts,
		states:   states,
		orders:   orderRepo,
		payments: payments,
		events:   events,
		coupons:  coupons,
		tx:       tx,
		shipping: shipping,
		tax:      tax,
		logg:     logg,
	}, nil
}

// StartCheckout opens (or resumes) the checkout flow for the owner's active
// cart. The cart must have at least one line.
func (s *service) StartCheckout(ctx context.Context, owner identity.Owner) (*CheckoutDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var dto *CheckoutDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRow, err := s.lockedCart(ctx, tx, owner)
		if err != nil {
			return err
		}
		if len(cartRow.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		txStates := s.states.WithTx(tx)
		state, err := txStates.FindByCartID(ctx, cartRow.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			state, err = txStates.Create(ctx, &models.CheckoutState{
				CartID: cartRow.ID,
				Step:   enums.CheckoutStepShippingInfo,
			})
			if err != nil {
				return err
			}
		}

		dto = toDTO(state, s.cartTotals(cartRow))
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err, "start checkout")
	}
	return dto, nil
}

// GetCheckout returns the current flow state for the owner's active cart.
func (s *service) GetCheckout(ctx context.Context, owner identity.Owner) (*CheckoutDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	cartRow, err := s.carts.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	state, err := s.states.FindByCartID(ctx, cartRow.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not started")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	return toDTO(state, s.cartTotals(cartRow)), nil
}

// SetShippingInfo records the contact and delivery details and advances the
// flow to the payment step.
func (s *service) SetShippingInfo(ctx context.Context, owner identity.Owner, input ShippingInfoInput) (*CheckoutDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if err := input.Address.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping method")
	}

	var dto *CheckoutDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRow, err := s.lockedCart(ctx, tx, owner)
		if err != nil {
			return err
		}

		txStates := s.states.WithTx(tx)
		state, err := txStates.FindByCartID(ctx, cartRow.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not started")
			}
			return err
		}

		address := input.Address
		method := input.Method
		state.Email = &email
		state.ShippingAddress = &address
		state.ShippingMethod = &method
		if state.Step.Index() < enums.CheckoutStepPaymentMethod.Index() {
			state.Step = enums.CheckoutStepPaymentMethod
		}
		if state, err = txStates.Save(ctx, state); err != nil {
			return err
		}

		// Keep the cart's method in sync so cart totals match checkout totals.
		txCarts := s.carts.WithTx(tx)
		cartRow.ShippingMethod = &method
		cartRow.Version++
		if _, err := txCarts.Save(ctx, cartRow); err != nil {
			return err
		}

		dto = toDTO(state, s.cartTotals(cartRow))
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err, "save shipping info")
	}
	return dto, nil
}

// SetStep moves the flow to an earlier step so the customer can edit prior
// input. Forward jumps are rejected: payment_method requires shipping info
// and confirmed is only reachable through Submit.
func (s *service) SetStep(ctx context.Context, owner identity.Owner, step enums.CheckoutStep) (*CheckoutDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !step.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout step")
	}
	if step == enums.CheckoutStepConfirmed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmed is reached by submitting the order")
	}

	var dto *CheckoutDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRow, err := s.lockedCart(ctx, tx, owner)
		if err != nil {
			return err
		}

		txStates := s.states.WithTx(tx)
		state, err := txStates.FindByCartID(ctx, cartRow.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not started")
			}
			return err
		}

		if step.Index() > state.Step.Index() {
			if step == enums.CheckoutStepPaymentMethod && !shippingInfoComplete(state) {
				return pkgerrors.New(pkgerrors.CodeValidation, "shipping info must be completed first")
			}
		}
		state.Step = step
		if state, err = txStates.Save(ctx, state); err != nil {
			return err
		}

		dto = toDTO(state, s.cartTotals(cartRow))
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err, "set checkout step")
	}
	return dto, nil
}

// Submit freezes the cart into an order and opens the hosted payment
// session. Re-submitting with the same idempotency key returns the original
// order instead of creating another.
func (s *service) Submit(ctx context.Context, owner identity.Owner, input SubmitInput) (*SubmitResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, key)
		if err == nil {
			return s.replaySubmission(ctx, existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
		}
	}

	var created *models.Order
	var redirect string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRow, err := s.lockedCart(ctx, tx, owner)
		if err != nil {
			return err
		}
		if len(cartRow.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		txStates := s.states.WithTx(tx)
		state, err := txStates.FindByCartID(ctx, cartRow.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not started")
			}
			return err
		}
		if !shippingInfoComplete(state) {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping info must be completed first")
		}
		if state.PendingOrderID != nil {
			pending, err := s.orders.WithTx(tx).FindByID(ctx, *state.PendingOrderID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && pending.Status != enums.OrderStatusCanceled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already has a pending order")
			}
			// A canceled pending order reopens the checkout.
			state.PendingOrderID = nil
		}

		totals := s.cartTotals(cartRow)
		order := buildOrder(cartRow, state, totals, key)
		order.Number = NewOrderNumber(time.Now())

		txOrders := s.orders.WithTx(tx)
		if created, err = txOrders.Create(ctx, order); err != nil {
			return err
		}

		// The session create rides inside the transaction: a gateway
		// failure rolls the order back, the cart and checkout state are
		// untouched, and the submission can be retried.
		session, err := s.payments.CreateCheckoutSession(ctx, sessionInput(created))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open payment session")
		}
		created.PaymentSessionID = &session.ID
		if created, err = txOrders.Save(ctx, created); err != nil {
			return err
		}
		redirect = session.RedirectURL

		state.PendingOrderID = &created.ID
		if _, err := txStates.Save(ctx, state); err != nil {
			return err
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderSubmitted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Owner:         ownerRef(owner),
			Data: map[string]any{
				"order_number": created.Number,
				"total_cents":  created.TotalCents,
				"currency":     created.Currency.String(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.asAppError(err, "submit order")
	}

	return &SubmitResult{Order: orders.ToDTO(created), RedirectURL: redirect}, nil
}

// ConfirmPayment reconciles an order against the hosted session's outcome.
// It is called from the return URL handler and is safe to repeat.
func (s *service) ConfirmPayment(ctx context.Context, sessionID string) (*orders.OrderDTO, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment session id is required")
	}

	session, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment session")
	}

	var confirmed *models.Order
	var transitionedToPaid bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.orders.WithTx(tx)
		order, err := txOrders.FindByPaymentSessionID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for payment session")
			}
			return err
		}

		// Already settled: repeated confirmations are no-ops.
		if order.PaymentStatus == enums.PaymentStatusPaid {
			confirmed = order
			return nil
		}

		switch session.Status {
		case enums.PaymentStatusPaid:
			// The provider is the source of truth for what was charged;
			// a mismatch against the order total must never settle.
			if session.AmountCents != order.TotalCents {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "paid session amount does not match order total").
					WithDetails(map[string]any{
						"session_cents": session.AmountCents,
						"order_cents":   order.TotalCents,
					})
			}
			order.PaymentStatus = enums.PaymentStatusPaid
			order.Status = enums.OrderStatusPaid
			transitionedToPaid = true
			if _, err := txOrders.Save(ctx, order); err != nil {
				return err
			}

			// A paid session is the point of conversion: the cart closes
			// and the checkout moves to its terminal step.
			if err := s.carts.WithTx(tx).UpdateStatus(ctx, order.CartID, enums.CartStatusConverted); err != nil {
				return err
			}
			txStates := s.states.WithTx(tx)
			state, err := txStates.FindByCartID(ctx, order.CartID)
			if err == nil {
				state.Step = enums.CheckoutStepConfirmed
				if _, err := txStates.Save(ctx, state); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: map[string]any{
					"order_number": order.Number,
					"total_cents":  order.TotalCents,
				},
				Version: 1,
			}); err != nil {
				return err
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventCheckoutConverted,
				AggregateType: enums.AggregateCheckout,
				AggregateID:   order.CartID,
				Data: map[string]any{
					"order_id": order.ID.String(),
				},
				Version: 1,
			}); err != nil {
				return err
			}
		case enums.PaymentStatusFailed:
			order.PaymentStatus = enums.PaymentStatusFailed
			if _, err := txOrders.Save(ctx, order); err != nil {
				return err
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentFailed,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: map[string]any{
					"order_number": order.Number,
				},
				Version: 1,
			}); err != nil {
				return err
			}
		}

		confirmed = order
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err, "confirm payment")
	}

	if transitionedToPaid && confirmed.AppliedCoupon != nil {
		if err := s.coupons.IncrementRedemptions(ctx, confirmed.AppliedCoupon.Code); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "coupon", confirmed.AppliedCoupon.Code), "coupon redemption count not incremented")
		}
	}

	return orders.ToDTO(confirmed), nil
}

func (s *service) replaySubmission(ctx context.Context, order *models.Order) (*SubmitResult, error) {
	result := &SubmitResult{Order: orders.ToDTO(order)}
	if order.PaymentSessionID != nil && order.PaymentStatus == enums.PaymentStatusPending {
		session, err := s.payments.GetCheckoutSession(ctx, *order.PaymentSessionID)
		if err == nil {
			result.RedirectURL = session.RedirectURL
		}
	}
	return result, nil
}

func (s *service) lockedCart(ctx context.Context, tx *gorm.DB, owner identity.Owner) (*models.Cart, error) {
	cartRow, err := s.carts.WithTx(tx).FindActiveByOwnerForUpdate(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, err
	}
	return cartRow, nil
}

func (s *service) cartTotals(cartRow *models.Cart) pricing.Totals {
	return cart.ToDTO(cartRow, s.shipping, s.tax.RateBPS).Totals
}

func (s *service) asAppError(err error, action string) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func shippingInfoComplete(state *models.CheckoutState) bool {
	return state.Email != nil && state.ShippingAddress != nil && state.ShippingMethod != nil
}

func buildOrder(cartRow *models.Cart, state *models.CheckoutState, totals pricing.Totals, idempotencyKey string) *models.Order {
	lines := make([]models.OrderLineItem, 0, len(cartRow.Lines))
	for _, line := range cartRow.Lines {
		productID := line.ProductID
		lines = append(lines, models.OrderLineItem{
			ProductID:      &productID,
			SKU:            line.SKU,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			TotalCents:     line.UnitPriceCents * int64(line.Quantity),
			ImageURL:       line.ImageURL,
		})
	}

	order := &models.Order{
		CartID:          cartRow.ID,
		CustomerID:      cartRow.CustomerID,
		SessionID:       cartRow.SessionID,
		Email:           *state.Email,
		Status:          enums.OrderStatusPendingPayment,
		PaymentStatus:   enums.PaymentStatusPending,
		Currency:        cartRow.Currency,
		SubtotalCents:   totals.SubtotalCents,
		DiscountCents:   totals.DiscountCents,
		ShippingCents:   totals.ShippingCents,
		TaxCents:        totals.TaxCents,
		TotalCents:      totals.TotalCents,
		AppliedCoupon:   cartRow.AppliedCoupon,
		ShippingAddress: state.ShippingAddress,
		ShippingMethod:  *state.ShippingMethod,
		Lines:           lines,
		PlacedAt:        time.Now(),
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		order.IdempotencyKey = &key
	}
	return order
}

func sessionInput(order *models.Order) payment.CreateSessionInput {
	lines := make([]payment.SessionLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, payment.SessionLine{
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	return payment.CreateSessionInput{
		OrderID:       order.ID,
		Email:         order.Email,
		Currency:      order.Currency,
		Lines:         lines,
		ShippingCents: order.ShippingCents,
		DiscountCents: order.DiscountCents,
		TaxCents:      order.TaxCents,
	}
}

func ownerRef(owner identity.Owner) *outbox.OwnerRef {
	ref := &outbox.OwnerRef{SessionID: owner.SessionID}
	if owner.CustomerID != nil {
		id := owner.CustomerID.String()
		ref.CustomerID = &id
	}
	return ref
}
