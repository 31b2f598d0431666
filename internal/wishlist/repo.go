package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumencart/storefront-backend/pkg/db/models"
)

// WishlistRepository is the persistence surface for saved products.
type WishlistRepository interface {
	Add(ctx context.Context, item *models.WishlistItem) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.WishlistItem, error)
	Contains(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// Repository implements WishlistRepository on gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the pairing, silently ignoring duplicates so re-saving a
// product is a no-op.
func (r *Repository) Add(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

func (r *Repository) Remove(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) Contains(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
