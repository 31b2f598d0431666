package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumencart/storefront-backend/api/responses"
	"github.com/lumencart/storefront-backend/api/validators"
	"github.com/lumencart/storefront-backend/internal/sessionlists"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

type recordViewRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type comparisonRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type recordSearchRequest struct {
	Query string `json:"query" validate:"required"`
}

type searchAlertRequest struct {
	Query string `json:"query" validate:"required"`
	Label string `json:"label"`
}

type removeAlertRequest struct {
	Query string `json:"query" validate:"required"`
}

func RecordProductView(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		var req recordViewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RecordProductView(r.Context(), owner, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

func RecentlyViewed(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		items, err := svc.RecentlyViewed(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": items})
	}
}

func AddToComparison(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		var req comparisonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AddToComparison(r.Context(), owner, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "added"})
	}
}

func RemoveFromComparison(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFromComparison(r.Context(), owner, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func Comparison(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		items, err := svc.Comparison(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": items})
	}
}

func RecordSearch(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		var req recordSearchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RecordSearch(r.Context(), owner, req.Query); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

func SearchHistory(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		entries, err := svc.SearchHistory(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"searches": entries})
	}
}

func ClearSearchHistory(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		if err := svc.ClearSearchHistory(r.Context(), owner); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func SaveSearchAlert(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		var req searchAlertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry := sessionlists.SearchEntry{Query: req.Query, Label: req.Label}
		if err := svc.SaveSearchAlert(r.Context(), owner, entry); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "saved"})
	}
}

func RemoveSearchAlert(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		var req removeAlertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveSearchAlert(r.Context(), owner, req.Query); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func SearchAlerts(svc sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := requireOwner(w, r, svc != nil, logg, "session list")
		if !ok {
			return
		}

		entries, err := svc.SearchAlerts(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"alerts": entries})
	}
}
