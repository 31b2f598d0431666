package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/identity"
)

type contextKey string

const (
	ctxCustomerID contextKey = "customer_id"
	ctxSessionID  contextKey = "session_id"
)

func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerID).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// OwnerFromContext rebuilds the request owner seeded by the Session
// middleware. The zero Owner means the middleware did not run.
func OwnerFromContext(ctx context.Context) identity.Owner {
	if raw := CustomerIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return identity.ForCustomer(id)
		}
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		return identity.ForSession(sid)
	}
	return identity.Owner{}
}

// WithCustomerID injects the customer identifier into the context.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerID, customerID)
}

// WithSessionID injects the guest session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}
