package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

// Repository wires together product read paths for the storefront.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the raw product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByID loads the product and converts it into its canonical API shape.
// Image normalization happens here so no raw feed shapes escape the
// repository boundary.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(product), nil
}

// ListByIDs loads summaries for the given ids, preserving input order.
// Missing ids are skipped.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSummary, error) {
	if len(ids) == 0 {
		return []ProductSummary{}, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	summaries := make([]ProductSummary, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			summaries = append(summaries, toSummary(product))
		}
	}
	return summaries, nil
}

// ListSummaries pages through active products matching the filters, newest
// first.
func (r *Repository) ListSummaries(ctx context.Context, input ListInput) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	filter := input.Filters
	if filter.Category != nil {
		qb = qb.Where("category = ?", *filter.Category)
	}
	if filter.Tag != nil {
		qb = qb.Where("? = ANY(tags)", *filter.Tag)
	}
	if filter.PriceMinCents != nil {
		qb = qb.Where("price_cents >= ?", *filter.PriceMinCents)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where("price_cents <= ?", *filter.PriceMaxCents)
	}
	if filter.MinRating != nil {
		qb = qb.Where("rating >= ?", *filter.MinRating)
	}
	if filter.Featured != nil {
		qb = qb.Where("is_featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(title) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(category) LIKE ?)", pattern, pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var rows []models.Product
	if err := qb.Find(&rows).Error; err != nil {
		return nil, err
	}

	resultRows := rows
	nextCursor := ""
	if len(rows) > pageSize {
		resultRows = rows[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ProductSummary, 0, len(resultRows))
	for i := range resultRows {
		summaries = append(summaries, toSummary(&resultRows[i]))
	}

	return &ListResult{
		Products:   summaries,
		NextCursor: nextCursor,
	}, nil
}

func toDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:                  product.ID,
		SKU:                 product.SKU,
		Title:               product.Title,
		Subtitle:            product.Subtitle,
		Description:         product.Description,
		Category:            product.Category,
		Tags:                append([]string{}, product.Tags...),
		PriceCents:          product.PriceCents,
		CompareAtPriceCents: product.CompareAtPriceCents,
		Currency:            product.Currency,
		Images:              NormalizeImages(product.Images),
		PrimaryImageURL:     PrimaryImageURL(product.Images),
		Rating:              product.Rating,
		ReviewCount:         product.ReviewCount,
		StockQty:            product.StockQty,
		IsActive:            product.IsActive,
		IsFeatured:          product.IsFeatured,
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
}

func toSummary(product *models.Product) ProductSummary {
	return ProductSummary{
		ID:                  product.ID,
		SKU:                 product.SKU,
		Title:               product.Title,
		Subtitle:            product.Subtitle,
		Category:            product.Category,
		PriceCents:          product.PriceCents,
		CompareAtPriceCents: product.CompareAtPriceCents,
		Currency:            product.Currency,
		PrimaryImageURL:     PrimaryImageURL(product.Images),
		Rating:              product.Rating,
		ReviewCount:         product.ReviewCount,
		IsFeatured:          product.IsFeatured,
		CreatedAt:           product.CreatedAt,
	}
}
