package middleware

import (
	"net/http"
	"strings"

	"github.com/lumencart/storefront-backend/api/responses"
	pkgauth "github.com/lumencart/storefront-backend/pkg/auth"
	"github.com/lumencart/storefront-backend/pkg/config"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the request owner: a bearer token identifies a signed-in
// customer, otherwise the X-Session-Id header identifies a guest. Requests
// with neither are rejected; the storefront always has a session.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw != "" {
				token := raw
				if strings.HasPrefix(strings.ToLower(token), "bearer ") {
					token = strings.TrimSpace(token[7:])
				}
				if token == "" {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}

				claims, err := pkgauth.ParseCustomerToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}

				ctx = WithCustomerID(ctx, claims.CustomerID.String())
				if logg != nil {
					ctx = logg.WithCustomerID(ctx, claims.CustomerID.String())
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "a bearer token or X-Session-Id header is required"))
				return
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
