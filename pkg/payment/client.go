package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/coupon"

	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("payment api key is required")
	errInvalidStripeEnv = fmt.Errorf("payment environment must be %q or %q", testEnv, liveEnv)
)

// SessionLine is one display line forwarded to the hosted payment page.
type SessionLine struct {
	Title          string
	UnitPriceCents int64
	Quantity       int
}

// CreateSessionInput carries everything needed to open a hosted checkout
// session for an order. The session must charge exactly
// subtotal - discount + shipping + tax so the paid amount can be reconciled
// against the order total on confirmation.
type CreateSessionInput struct {
	OrderID       uuid.UUID
	Email         string
	Currency      enums.Currency
	Lines         []SessionLine
	ShippingCents int64
	DiscountCents int64
	TaxCents      int64
}

// Session is the provider-neutral view of a hosted payment session.
type Session struct {
	ID          string
	RedirectURL string
	Status      enums.PaymentStatus
	AmountCents int64
	Currency    string
	Email       string
	OrderRef    string
}

// Client wraps Stripe's hosted checkout API plus env-specific metadata.
type Client struct {
	environment string
	successURL  string
	cancelURL   string
}

// NewClient initializes Stripe once with the configured secret and env.
func NewClient(ctx context.Context, cfg config.PaymentConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" || strings.TrimSpace(cfg.CancelURL) == "" {
		return nil, errors.New("payment success and cancel urls are required")
	}

	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("payment client initialized (%s)", env))
	}

	return &Client{
		environment: env,
		successURL:  cfg.SuccessURL,
		cancelURL:   cfg.CancelURL,
	}, nil
}

// Environment reports the normalized payment environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateCheckoutSession opens a hosted payment page for the given order and
// returns the session id plus the URL the customer is redirected to.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	if len(input.Lines) == 0 {
		return nil, errors.New("checkout session requires at least one line")
	}

	currency := strings.ToLower(input.Currency.String())

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         buildLineItems(input, currency),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(input.OrderID.String()),
	}
	params.Context = ctx
	if input.Email != "" {
		params.CustomerEmail = stripe.String(input.Email)
	}

	if input.DiscountCents > 0 {
		cpn, err := newDiscountCoupon(ctx, currency, input.DiscountCents)
		if err != nil {
			return nil, fmt.Errorf("creating discount coupon: %w", err)
		}
		params.Discounts = discountParams(cpn.ID)
	}

	created, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	return fromStripeSession(created), nil
}

func buildLineItems(input CreateSessionInput, currency string) []*stripe.CheckoutSessionLineItemParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines)+2)
	for _, line := range input.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(line.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Title),
				},
			},
		})
	}
	if input.ShippingCents > 0 {
		lineItems = append(lineItems, chargeLine("Shipping", currency, input.ShippingCents))
	}
	if input.TaxCents > 0 {
		lineItems = append(lineItems, chargeLine("Tax", currency, input.TaxCents))
	}
	return lineItems
}

func chargeLine(name, currency string, amountCents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(amountCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

// newDiscountCoupon mints a single-use amount-off coupon so the session
// charges the discounted order total.
func newDiscountCoupon(ctx context.Context, currency string, amountCents int64) (*stripe.Coupon, error) {
	params := &stripe.CouponParams{
		AmountOff: stripe.Int64(amountCents),
		Currency:  stripe.String(currency),
		Duration:  stripe.String(string(stripe.CouponDurationOnce)),
		Name:      stripe.String("Discount"),
	}
	params.Context = ctx
	return coupon.New(params)
}

func discountParams(couponID string) []*stripe.CheckoutSessionDiscountParams {
	return []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(couponID)}}
}

// GetCheckoutSession fetches the current state of a hosted session.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("session id is required")
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	fetched, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("fetching checkout session: %w", err)
	}
	return fromStripeSession(fetched), nil
}

// NewIdempotencyKey returns a unique key for payment operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := uuid.NewString()
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s-%s", prefix, key)
}

func fromStripeSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:          s.ID,
		RedirectURL: s.URL,
		Status:      mapSessionStatus(s),
		AmountCents: s.AmountTotal,
		Currency:    strings.ToUpper(string(s.Currency)),
		OrderRef:    s.ClientReferenceID,
	}
	if s.CustomerDetails != nil {
		out.Email = s.CustomerDetails.Email
	} else if s.CustomerEmail != "" {
		out.Email = s.CustomerEmail
	}
	return out
}

func mapSessionStatus(s *stripe.CheckoutSession) enums.PaymentStatus {
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return enums.PaymentStatusPaid
	}
	if s.Status == stripe.CheckoutSessionStatusExpired {
		return enums.PaymentStatusFailed
	}
	return enums.PaymentStatusPending
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("payment environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("payment environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
