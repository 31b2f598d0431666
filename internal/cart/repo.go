package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
)

// CartRepository is the persistence surface the cart service depends on.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByOwner(ctx context.Context, owner identity.Owner) (*models.Cart, error)
	FindActiveByOwnerForUpdate(ctx context.Context, owner identity.Owner) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	UpsertLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteLines(ctx context.Context, cartID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
}

// Repository exposes persistence operations for carts and cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByOwner loads the active cart with its lines for the owner.
func (r *Repository) FindActiveByOwner(ctx context.Context, owner identity.Owner) (*models.Cart, error) {
	return r.findActive(ctx, owner, false)
}

// FindActiveByOwnerForUpdate loads the active cart for the owner holding a
// row lock. Must be called inside a transaction; concurrent mutations on the
// same cart serialize on this lock.
func (r *Repository) FindActiveByOwnerForUpdate(ctx context.Context, owner identity.Owner) (*models.Cart, error) {
	return r.findActive(ctx, owner, true)
}

func (r *Repository) findActive(ctx context.Context, owner identity.Owner, forUpdate bool) (*models.Cart, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "carts"}})
	}
	query = query.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_lines.created_at ASC")
	})
	if owner.IsCustomer() {
		query = query.Where("customer_id = ?", *owner.CustomerID)
	} else {
		query = query.Where("session_id = ?", *owner.SessionID)
	}

	var cart models.Cart
	err := query.Where("status = ?", enums.CartStatusActive).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_lines.created_at ASC")
		}).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	if cart.Version == 0 {
		cart.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Save persists the cart header fields. Lines are managed separately.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Omit("Lines").Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// UpsertLine inserts the line or, when the product is already in the cart,
// replaces its quantity and snapshot fields.
func (r *Repository) UpsertLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "unit_price_cents", "sku", "title", "image_url", "updated_at",
			}),
		}).
		Create(line).Error
}

// DeleteLine removes a single product line from the cart.
func (r *Repository) DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartLine{}).Error
}

// DeleteLines removes every line from the cart.
func (r *Repository) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error
}

// UpdateStatus updates the status of the cart.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("status", status).Error
}
