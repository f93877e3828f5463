package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByExternalID(ctx context.Context, externalID string) (*Product, error)
	// FindByExternalIDForUpdate locks the product row and its variant rows
	// for the remainder of the transaction.
	FindByExternalIDForUpdate(ctx context.Context, externalID string) (*Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, offset, limit int) ([]*Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VariantRepository defines persistence operations for variants.
// Single-variant lookups are the entry points of identity resolution.
type VariantRepository interface {
	Save(ctx context.Context, variant *Variant) error
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	FindByExternalID(ctx context.Context, externalID string) (*Variant, error)
	FindByInventoryItemID(ctx context.Context, itemID string) (*Variant, error)
	FindBySKU(ctx context.Context, sku string) (*Variant, error)
	// FindByInventoryItemIDForUpdate locks the variant row for the
	// remainder of the transaction.
	FindByInventoryItemIDForUpdate(ctx context.Context, itemID string) (*Variant, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Variant, error)
}
