package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lumencart/storefront-backend/api/middleware"
	"github.com/lumencart/storefront-backend/api/responses"
	"github.com/lumencart/storefront-backend/api/validators"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/internal/sessionlists"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

func GetProduct(svc products.Service, lists sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Viewing a product feeds the recently-viewed list. Best effort;
		// a list failure never blocks the product response.
		if lists != nil {
			owner := middleware.OwnerFromContext(r.Context())
			if !owner.IsZero() {
				if err := lists.RecordProductView(r.Context(), owner, productID); err != nil && logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "product view not recorded")
				}
			}
		}

		responses.WriteSuccess(w, product)
	}
}

func SearchProducts(svc products.Service, lists sessionlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseSearchInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if lists != nil && input.Filters.Query != "" {
			owner := middleware.OwnerFromContext(r.Context())
			if !owner.IsZero() {
				if err := lists.RecordSearch(r.Context(), owner, input.Filters.Query); err != nil && logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "search not recorded")
				}
			}
		}

		responses.WriteSuccess(w, result)
	}
}

func parseSearchInput(r *http.Request) (*products.ListInput, error) {
	values := r.URL.Query()

	limit, err := validators.ParseQueryInt(values, "limit", pagination.DefaultLimit)
	if err != nil {
		return nil, err
	}

	filters := products.ListFilters{
		Query:    strings.TrimSpace(values.Get("q")),
		Category: validators.ParseQueryString(values, "category"),
		Tag:      validators.ParseQueryString(values, "tag"),
	}

	if filters.PriceMinCents, err = parseQueryInt64Ptr(values.Get("price_min_cents"), "price_min_cents"); err != nil {
		return nil, err
	}
	if filters.PriceMaxCents, err = parseQueryInt64Ptr(values.Get("price_max_cents"), "price_max_cents"); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(values.Get("min_rating")); raw != "" {
		rating, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_rating must be a number")
		}
		filters.MinRating = &rating
	}
	if raw := strings.TrimSpace(values.Get("featured")); raw != "" {
		featured, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "featured must be true or false")
		}
		filters.Featured = &featured
	}

	return &products.ListInput{
		Filters: filters,
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(values.Get("cursor")),
		},
	}, nil
}

func parseQueryInt64Ptr(raw, name string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be an integer")
	}
	return &parsed, nil
}
