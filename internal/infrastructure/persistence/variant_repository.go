package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/shared"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// Save persists the variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.Variant) error {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return mapWriteError(err)
	}
	return nil
}

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	return r.findOne(ctx, r.db, "id = ?", id)
}

// FindByExternalID finds a variant by its external variant id
func (r *GormVariantRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Variant, error) {
	return r.findOne(ctx, r.db, "external_id = ?", externalID)
}

// FindByInventoryItemID finds a variant by its external inventory item id
func (r *GormVariantRepository) FindByInventoryItemID(ctx context.Context, itemID string) (*catalog.Variant, error) {
	return r.findOne(ctx, r.db, "external_inventory_item_id = ?", itemID)
}

// FindBySKU finds a variant by SKU
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	return r.findOne(ctx, r.db, "sku = ?", sku)
}

// FindByInventoryItemIDForUpdate locks the variant row until the
// surrounding transaction ends.
func (r *GormVariantRepository) FindByInventoryItemIDForUpdate(ctx context.Context, itemID string) (*catalog.Variant, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(ctx, locked, "external_inventory_item_id = ?", itemID)
}

// FindByIDForUpdate locks the variant row by primary key
func (r *GormVariantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(ctx, locked, "id = ?", id)
}

func (r *GormVariantRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg interface{}) (*catalog.Variant, error) {
	var variant catalog.Variant
	if err := db.WithContext(ctx).Where(query, arg).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
