package controllers

import (
	"net/http"
	"strings"

	"github.com/lumencart/storefront-backend/api/responses"
	"github.com/lumencart/storefront-backend/api/validators"
	"github.com/lumencart/storefront-backend/internal/checkout"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
	"github.com/lumencart/storefront-backend/pkg/types"
)

type shippingInfoRequest struct {
	Email   string        `json:"email" validate:"required,email"`
	Address types.Address `json:"address"`
	Method  string        `json:"method" validate:"required"`
}

type setStepRequest struct {
	Step string `json:"step" validate:"required"`
}

type confirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

func StartCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "checkout")
		if !ok {
			return
		}

		state, err := svc.StartCheckout(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func GetCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "checkout")
		if !ok {
			return
		}

		state, err := svc.GetCheckout(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func SetShippingInfo(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "checkout")
		if !ok {
			return
		}

		var req shippingInfoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetShippingInfo(r.Context(), owner, checkout.ShippingInfoInput{
			Email:   req.Email,
			Address: req.Address,
			Method:  enums.ShippingMethod(req.Method),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func SetCheckoutStep(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "checkout")
		if !ok {
			return
		}

		var req setStepRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetStep(r.Context(), owner, enums.CheckoutStep(req.Step))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func SubmitCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "checkout")
		if !ok {
			return
		}

		input := checkout.SubmitInput{
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		}

		result, err := svc.Submit(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ConfirmPayment is the return leg of the hosted payment handoff. The
// provider's session is re-fetched server side, so a forged session id
// cannot mark an order paid.
func ConfirmPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var req confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPayment(r.Context(), req.SessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
