package enums

import "fmt"

// CheckoutStep is the ordered position of a checkout flow. Steps advance
// shipping_info -> payment_method -> confirmed; moving back to an earlier
// step is allowed until the order is submitted.
type CheckoutStep string

const (
	CheckoutStepShippingInfo  CheckoutStep = "shipping_info"
	CheckoutStepPaymentMethod CheckoutStep = "payment_method"
	CheckoutStepConfirmed     CheckoutStep = "confirmed"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepShippingInfo,
	CheckoutStepPaymentMethod,
	CheckoutStepConfirmed,
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	for _, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// Index returns the zero-based position of the step in the flow, or -1 when
// the step is unknown.
func (s CheckoutStep) Index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
