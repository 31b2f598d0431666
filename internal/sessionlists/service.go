package sessionlists

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/pkg/config"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

const (
	kindRecentlyViewed = "recently_viewed"
	kindComparison     = "comparison"
	kindSearchHistory  = "search_history"
	kindSearchAlerts   = "search_alerts"

	// Guest lists expire with the session; customers keep theirs longer.
	guestTTL    = 30 * 24 * time.Hour
	customerTTL = 90 * 24 * time.Hour
)

type listStore interface {
	ListKey(kind, owner string) string
	PushCapped(ctx context.Context, key, value string, cap int, ttl time.Duration) error
	ListRange(ctx context.Context, key string, count int) ([]string, error)
	ListRemove(ctx context.Context, key, value string) error
}

type productLister interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]products.ProductSummary, error)
}

// SearchEntry is one remembered search. Alerts reuse the same shape with a
// label the storefront shows alongside the query.
type SearchEntry struct {
	Query     string    `json:"query"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service maintains the per-owner capped lists: recently viewed products,
// the comparison tray, search history, and saved search alerts. Lists are
// FIFO with de-duplication, so re-adding an entry moves it to the front.
type Service interface {
	RecordProductView(ctx context.Context, owner identity.Owner, productID uuid.UUID) error
	RecentlyViewed(ctx context.Context, owner identity.Owner) ([]products.ProductSummary, error)

	AddToComparison(ctx context.Context, owner identity.Owner, productID uuid.UUID) error
	RemoveFromComparison(ctx context.Context, owner identity.Owner, productID uuid.UUID) error
	Comparison(ctx context.Context, owner identity.Owner) ([]products.ProductSummary, error)

	RecordSearch(ctx context.Context, owner identity.Owner, query string) error
	SearchHistory(ctx context.Context, owner identity.Owner) ([]SearchEntry, error)
	ClearSearchHistory(ctx context.Context, owner identity.Owner) error

	SaveSearchAlert(ctx context.Context, owner identity.Owner, entry SearchEntry) error
	RemoveSearchAlert(ctx context.Context, owner identity.Owner, query string) error
	SearchAlerts(ctx context.Context, owner identity.Owner) ([]SearchEntry, error)
}

type listCleaner interface {
	Del(ctx context.Context, keys ...string) error
}

type service struct {
	store    listStore
	cleaner  listCleaner
	products productLister
	caps     config.ListsConfig
}

// NewService builds a session list service backed by redis.
func NewService(store listStore, cleaner listCleaner, productRepo productLister, caps config.ListsConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("list store required")
	}
	if cleaner == nil {
		return nil, fmt.Errorf("list cleaner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &service{store: store, cleaner: cleaner, products: productRepo, caps: caps}, nil
}

func (s *service) RecordProductView(ctx context.Context, owner identity.Owner, productID uuid.UUID) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	key := s.store.ListKey(kindRecentlyViewed, owner.Key())
	if err := s.store.PushCapped(ctx, key, productID.String(), s.caps.RecentlyViewedCap, ttlFor(owner)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record product view")
	}
	return nil
}

func (s *service) RecentlyViewed(ctx context.Context, owner identity.Owner) ([]products.ProductSummary, error) {
	return s.productList(ctx, owner, kindRecentlyViewed, s.caps.RecentlyViewedCap)
}

func (s *service) AddToComparison(ctx context.Context, owner identity.Owner, productID uuid.UUID) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	key := s.store.ListKey(kindComparison, owner.Key())
	if err := s.store.PushCapped(ctx, key, productID.String(), s.caps.ComparisonCap, ttlFor(owner)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add to comparison")
	}
	return nil
}

func (s *service) RemoveFromComparison(ctx context.Context, owner identity.Owner, productID uuid.UUID) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	key := s.store.ListKey(kindComparison, owner.Key())
	if err := s.store.ListRemove(ctx, key, productID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove from comparison")
	}
	return nil
}

func (s *service) Comparison(ctx context.Context, owner identity.Owner) ([]products.ProductSummary, error) {
	return s.productList(ctx, owner, kindComparison, s.caps.ComparisonCap)
}

func (s *service) RecordSearch(ctx context.Context, owner identity.Owner, query string) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	payload, err := json.Marshal(SearchEntry{Query: query, CreatedAt: time.Now().UTC()})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode search entry")
	}
	key := s.store.ListKey(kindSearchHistory, owner.Key())
	if err := s.store.PushCapped(ctx, key, string(payload), s.caps.SearchHistoryCap, ttlFor(owner)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record search")
	}
	return nil
}

func (s *service) SearchHistory(ctx context.Context, owner identity.Owner) ([]SearchEntry, error) {
	return s.entryList(ctx, owner, kindSearchHistory, s.caps.SearchHistoryCap)
}

func (s *service) ClearSearchHistory(ctx context.Context, owner identity.Owner) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	key := s.store.ListKey(kindSearchHistory, owner.Key())
	if err := s.cleaner.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear search history")
	}
	return nil
}

func (s *service) SaveSearchAlert(ctx context.Context, owner identity.Owner, entry SearchEntry) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	entry.Query = strings.TrimSpace(entry.Query)
	if entry.Query == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert query is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	// Dedupe by query: drop any existing alert for the same query first.
	key := s.store.ListKey(kindSearchAlerts, owner.Key())
	if existing, err := s.findAlert(ctx, owner, entry.Query); err == nil && existing != "" {
		if err := s.store.ListRemove(ctx, key, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace search alert")
		}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode search alert")
	}
	if err := s.store.PushCapped(ctx, key, string(payload), s.caps.SearchAlertsCap, ttlFor(owner)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save search alert")
	}
	return nil
}

func (s *service) RemoveSearchAlert(ctx context.Context, owner identity.Owner, query string) error {
	if err := owner.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	raw, err := s.findAlert(ctx, owner, strings.TrimSpace(query))
	if err != nil {
		return err
	}
	if raw == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "search alert not found")
	}

	key := s.store.ListKey(kindSearchAlerts, owner.Key())
	if err := s.store.ListRemove(ctx, key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove search alert")
	}
	return nil
}

func (s *service) SearchAlerts(ctx context.Context, owner identity.Owner) ([]SearchEntry, error) {
	return s.entryList(ctx, owner, kindSearchAlerts, s.caps.SearchAlertsCap)
}

func (s *service) productList(ctx context.Context, owner identity.Owner, kind string, limit int) ([]products.ProductSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	key := s.store.ListKey(kind, owner.Key())
	raw, err := s.store.ListRange(ctx, key, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read list")
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []products.ProductSummary{}, nil
	}

	summaries, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load list products")
	}
	return summaries, nil
}

func (s *service) entryList(ctx context.Context, owner identity.Owner, kind string, limit int) ([]SearchEntry, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	key := s.store.ListKey(kind, owner.Key())
	raw, err := s.store.ListRange(ctx, key, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read list")
	}

	entries := make([]SearchEntry, 0, len(raw))
	for _, value := range raw {
		var entry SearchEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *service) findAlert(ctx context.Context, owner identity.Owner, query string) (string, error) {
	key := s.store.ListKey(kindSearchAlerts, owner.Key())
	raw, err := s.store.ListRange(ctx, key, s.caps.SearchAlertsCap)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read search alerts")
	}
	for _, value := range raw {
		var entry SearchEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			continue
		}
		if strings.EqualFold(entry.Query, query) {
			return value, nil
		}
	}
	return "", nil
}

func ttlFor(owner identity.Owner) time.Duration {
	if owner.IsCustomer() {
		return customerTTL
	}
	return guestTTL
}
