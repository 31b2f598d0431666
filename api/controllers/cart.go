package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumencart/storefront-backend/api/middleware"
	"github.com/lumencart/storefront-backend/api/responses"
	"github.com/lumencart/storefront-backend/api/validators"
	"github.com/lumencart/storefront-backend/internal/cart"
	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

type addLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateLineRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type shippingMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		view, err := svc.GetCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func AddCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		var req addLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddLine(r.Context(), owner, cart.AddLineInput{ProductID: productID, Quantity: req.Quantity})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func UpdateCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateLine(r.Context(), owner, productID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func RemoveCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveLine(r.Context(), owner, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		view, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ApplyCoupon(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		var req applyCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ApplyCoupon(r.Context(), owner, req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func RemoveCoupon(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		view, err := svc.RemoveCoupon(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func SetCartShippingMethod(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "cart")
		if !ok {
			return
		}

		var req shippingMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetShippingMethod(r.Context(), owner, enums.ShippingMethod(req.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// requireOwner resolves the request's owner and handles the two failure
// modes every owner-scoped handler shares: an unwired service and a request
// that slipped past the session middleware.
func requireOwner(w http.ResponseWriter, r *http.Request, svcReady bool, logg *logger.Logger, name string) (identity.Owner, bool) {
	if !svcReady {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
		return identity.Owner{}, false
	}

	owner := middleware.OwnerFromContext(r.Context())
	if owner.IsZero() {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "a session is required"))
		return identity.Owner{}, false
	}
	return owner, true
}
