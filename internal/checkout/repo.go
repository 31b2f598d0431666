package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/pkg/db/models"
)

// CheckoutRepository is the persistence surface for checkout flow state.
// One row exists per cart while a checkout is in flight.
type CheckoutRepository interface {
	WithTx(tx *gorm.DB) CheckoutRepository
	FindByCartID(ctx context.Context, cartID uuid.UUID) (*models.CheckoutState, error)
	Create(ctx context.Context, state *models.CheckoutState) (*models.CheckoutState, error)
	Save(ctx context.Context, state *models.CheckoutState) (*models.CheckoutState, error)
}

// Repository implements CheckoutRepository on gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) CheckoutRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByCartID(ctx context.Context, cartID uuid.UUID) (*models.CheckoutState, error) {
	var state models.CheckoutState
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *Repository) Create(ctx context.Context, state *models.CheckoutState) (*models.CheckoutState, error) {
	if err := r.db.WithContext(ctx).Create(state).Error; err != nil {
		return nil, err
	}
	return state, nil
}

func (r *Repository) Save(ctx context.Context, state *models.CheckoutState) (*models.CheckoutState, error) {
	if err := r.db.WithContext(ctx).Save(state).Error; err != nil {
		return nil, err
	}
	return state, nil
}
