package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

// OrderRepository is the persistence surface for orders.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForOwner(ctx context.Context, id uuid.UUID, owner identity.Owner) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	FindByPaymentSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	ListByOwner(ctx context.Context, owner identity.Owner, params pagination.Params) ([]models.Order, *string, error)
}

// Repository implements OrderRepository on gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Lines").Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner identity.Owner) (*models.Order, error) {
	var order models.Order
	err := ownerScope(r.db.WithContext(ctx), owner).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("idempotency_key = ?", key).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByPaymentSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("payment_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByOwner pages the owner's order history newest first.
func (r *Repository) ListByOwner(ctx context.Context, owner identity.Owner, params pagination.Params) ([]models.Order, *string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)

	query := ownerScope(r.db.WithContext(ctx), owner).
		Preload("Lines").
		Order("placed_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(placed_at < ?) OR (placed_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var nextCursor *string
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.PlacedAt, ID: last.ID})
		nextCursor = &encoded
	}
	return rows, nextCursor, nil
}

func ownerScope(db *gorm.DB, owner identity.Owner) *gorm.DB {
	if owner.IsCustomer() {
		return db.Where("customer_id = ?", *owner.CustomerID)
	}
	if owner.SessionID != nil {
		return db.Where("session_id = ?", *owner.SessionID)
	}
	return db.Where("1 = 0")
}
