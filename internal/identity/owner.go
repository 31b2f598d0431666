package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Owner identifies who a cart, order, or list belongs to: a signed-in
// customer or an anonymous guest session. Exactly one side is set.
type Owner struct {
	CustomerID *uuid.UUID
	SessionID  *string
}

// ForCustomer builds an owner for a signed-in customer.
func ForCustomer(id uuid.UUID) Owner {
	return Owner{CustomerID: &id}
}

// ForSession builds an owner for a guest session.
func ForSession(sessionID string) Owner {
	trimmed := strings.TrimSpace(sessionID)
	return Owner{SessionID: &trimmed}
}

// IsCustomer reports whether the owner is a signed-in customer.
func (o Owner) IsCustomer() bool {
	return o.CustomerID != nil && *o.CustomerID != uuid.Nil
}

// IsZero reports whether neither identity is present.
func (o Owner) IsZero() bool {
	if o.IsCustomer() {
		return false
	}
	return o.SessionID == nil || strings.TrimSpace(*o.SessionID) == ""
}

// Validate enforces that exactly one identity side is usable.
func (o Owner) Validate() error {
	if o.IsZero() {
		return fmt.Errorf("owner requires a customer id or session id")
	}
	return nil
}

// Key returns a stable string identity, usable as a redis key segment.
func (o Owner) Key() string {
	if o.IsCustomer() {
		return "customer:" + o.CustomerID.String()
	}
	if o.SessionID != nil {
		return "guest:" + strings.TrimSpace(*o.SessionID)
	}
	return ""
}
