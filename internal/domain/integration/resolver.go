package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/shared"
)

// MatchKind names the identifier that resolved an incoming entity
type MatchKind string

const (
	MatchedByVariantExternalID MatchKind = "variant_external_id"
	MatchedByInventoryItemID   MatchKind = "inventory_item_id"
	MatchedBySKU               MatchKind = "sku"
	MatchedByProductExternalID MatchKind = "product_external_id"
	MatchedNone                MatchKind = "none"
)

// Resolution is the outcome of an identity lookup. Product and Variant
// are nil when nothing matched; that is a normal outcome meaning a new
// local entity should be created, never an error.
type Resolution struct {
	Product   *catalog.Product
	Variant   *catalog.Variant
	MatchedBy MatchKind
}

// Resolver maps external identifiers onto local entities. Lookups run
// against the repositories bound to the caller's transaction so that a
// resolution holds for the rest of the unit of work.
type Resolver struct {
	products catalog.ProductRepository
	variants catalog.VariantRepository
}

// NewResolver creates a resolver over the given repositories
func NewResolver(products catalog.ProductRepository, variants catalog.VariantRepository) *Resolver {
	return &Resolver{products: products, variants: variants}
}

// ResolveProduct finds the local product for an external product id
func (r *Resolver) ResolveProduct(ctx context.Context, externalID string) (Resolution, error) {
	if externalID == "" {
		return Resolution{MatchedBy: MatchedNone}, nil
	}
	product, err := r.products.FindByExternalID(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		return Resolution{MatchedBy: MatchedNone}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving product %s: %w", externalID, err)
	}
	return Resolution{Product: product, MatchedBy: MatchedByProductExternalID}, nil
}

// ResolveVariant finds the local variant for a variant snapshot, trying
// identifiers in priority order: external variant id, then inventory
// item id, then SKU. The first identifier that matches wins; weaker
// identifiers are not consulted after a stronger one hits.
func (r *Resolver) ResolveVariant(ctx context.Context, snap VariantSnapshot) (Resolution, error) {
	if snap.ExternalID != "" {
		res, err := r.lookupVariant(ctx, MatchedByVariantExternalID, snap.ExternalID)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	if snap.ExternalInventoryItemID != nil && *snap.ExternalInventoryItemID != "" {
		res, err := r.lookupVariant(ctx, MatchedByInventoryItemID, *snap.ExternalInventoryItemID)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	if snap.SKU != nil && *snap.SKU != "" {
		res, err := r.lookupVariant(ctx, MatchedBySKU, *snap.SKU)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	return Resolution{MatchedBy: MatchedNone}, nil
}

// ResolveStockTarget finds the variant a stock instruction applies to,
// using the same priority order as variant resolution.
func (r *Resolver) ResolveStockTarget(ctx context.Context, instr StockInstruction) (Resolution, error) {
	if instr.ExternalVariantID != "" {
		res, err := r.lookupVariant(ctx, MatchedByVariantExternalID, instr.ExternalVariantID)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	if instr.InventoryItemID != "" {
		res, err := r.lookupVariant(ctx, MatchedByInventoryItemID, instr.InventoryItemID)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	if instr.SKU != "" {
		res, err := r.lookupVariant(ctx, MatchedBySKU, instr.SKU)
		if err != nil || res.MatchedBy != MatchedNone {
			return res, err
		}
	}
	return Resolution{MatchedBy: MatchedNone}, nil
}

func (r *Resolver) lookupVariant(ctx context.Context, kind MatchKind, key string) (Resolution, error) {
	var (
		variant *catalog.Variant
		err     error
	)
	switch kind {
	case MatchedByVariantExternalID:
		variant, err = r.variants.FindByExternalID(ctx, key)
	case MatchedByInventoryItemID:
		variant, err = r.variants.FindByInventoryItemID(ctx, key)
	case MatchedBySKU:
		variant, err = r.variants.FindBySKU(ctx, key)
	default:
		return Resolution{}, fmt.Errorf("unknown match kind %q", kind)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return Resolution{MatchedBy: MatchedNone}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving variant by %s %s: %w", kind, key, err)
	}
	return Resolution{Variant: variant, MatchedBy: kind}, nil
}
