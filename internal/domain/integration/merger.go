package integration

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/shared"
)

// Merger folds an incoming product snapshot into a local product. Two
// rules govern it: identifier bindings are permanent and rebinding is a
// conflict, and descriptive fields follow last-write-wins but only when
// the snapshot carries them. Stock is never written here; stock changes
// flow exclusively through the ledger.
type Merger struct{}

// NewMerger creates a merger
func NewMerger() *Merger {
	return &Merger{}
}

// MergeProduct applies a snapshot onto an existing product. On any
// error the product must be considered dirty and the transaction
// rolled back.
func (m *Merger) MergeProduct(product *catalog.Product, snap *ProductSnapshot) error {
	if err := product.BindExternalID(snap.ExternalID); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return fmt.Errorf("product %s: %v: %w", product.ID, err, ErrIdentityConflict)
		}
		return err
	}

	if snap.Title != nil {
		if *snap.Title == "" {
			return fmt.Errorf("product title cannot be cleared: %w", ErrValidation)
		}
		product.Title = *snap.Title
	}
	if snap.BodyHTML != nil {
		product.BodyHTML = *snap.BodyHTML
	}
	if snap.ProductType != nil {
		product.ProductType = *snap.ProductType
	}
	if snap.Vendor != nil {
		product.Vendor = *snap.Vendor
	}
	if snap.Status != nil {
		if err := product.SetStatus(catalog.ProductStatus(*snap.Status)); err != nil {
			return fmt.Errorf("product status %q: %w", *snap.Status, ErrValidation)
		}
	}

	for i := range snap.Variants {
		if err := m.mergeVariantInto(product, &snap.Variants[i]); err != nil {
			return err
		}
	}
	product.IncrementVersion()
	return nil
}

// NewProductFromSnapshot builds a fresh local product when resolution
// found no match.
func (m *Merger) NewProductFromSnapshot(snap *ProductSnapshot) (*catalog.Product, error) {
	title := ""
	if snap.Title != nil {
		title = *snap.Title
	}
	if title == "" {
		return nil, fmt.Errorf("new product requires a title: %w", ErrValidation)
	}
	product, err := catalog.NewProduct(title)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	// Remotely-sourced products are live unless the snapshot says otherwise.
	product.Status = catalog.ProductStatusActive
	if err := m.MergeProduct(product, snap); err != nil {
		return nil, err
	}
	return product, nil
}

// mergeVariantInto matches the snapshot variant against the product's
// variants by external id, never by position, creating a new variant
// when nothing matches.
func (m *Merger) mergeVariantInto(product *catalog.Product, snap *VariantSnapshot) error {
	target := product.VariantByExternalID(snap.ExternalID)
	if target == nil && snap.SKU != nil && *snap.SKU != "" {
		candidate := product.VariantBySKU(*snap.SKU)
		if candidate != nil {
			if candidate.ExternalID != nil {
				return fmt.Errorf("sku %s belongs to variant %s already bound to external id %s: %w",
					*snap.SKU, candidate.ID, *candidate.ExternalID, ErrIdentityConflict)
			}
			target = candidate
		}
	}
	if target == nil {
		nv := catalog.NewVariant(product.ID)
		product.AddVariant(nv)
		target = &product.Variants[len(product.Variants)-1]
	}
	return m.MergeVariant(target, snap)
}

// MergeVariant applies a variant snapshot onto a local variant
func (m *Merger) MergeVariant(variant *catalog.Variant, snap *VariantSnapshot) error {
	if err := variant.BindExternalID(snap.ExternalID); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return fmt.Errorf("variant %s: %v: %w", variant.ID, err, ErrIdentityConflict)
		}
		return err
	}
	if snap.ExternalInventoryItemID != nil && *snap.ExternalInventoryItemID != "" {
		if err := variant.BindInventoryItemID(*snap.ExternalInventoryItemID); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				return fmt.Errorf("variant %s: %v: %w", variant.ID, err, ErrIdentityConflict)
			}
			return err
		}
	}
	if snap.SKU != nil && *snap.SKU != "" {
		if variant.SKU != nil && *variant.SKU != *snap.SKU {
			return fmt.Errorf("variant %s sku %s cannot be rebound to %s: %w",
				variant.ID, *variant.SKU, *snap.SKU, ErrIdentityConflict)
		}
		if variant.SKU == nil {
			sku := *snap.SKU
			variant.SKU = &sku
		}
	}

	if snap.Title != nil {
		variant.Title = *snap.Title
	}
	if snap.Option1 != nil {
		variant.Option1 = *snap.Option1
	}
	if snap.Option2 != nil {
		variant.Option2 = *snap.Option2
	}
	if snap.Option3 != nil {
		variant.Option3 = *snap.Option3
	}
	if snap.Price != nil {
		price, err := decimal.NewFromString(*snap.Price)
		if err != nil {
			return fmt.Errorf("variant %s price %q: %w", snap.ExternalID, *snap.Price, ErrValidation)
		}
		if err := variant.SetPrice(price); err != nil {
			return fmt.Errorf("variant %s: %v: %w", snap.ExternalID, err, ErrValidation)
		}
	}
	if snap.CompareAtPrice != nil {
		if *snap.CompareAtPrice == "" {
			variant.CompareAtPrice = nil
		} else {
			cmp, err := decimal.NewFromString(*snap.CompareAtPrice)
			if err != nil {
				return fmt.Errorf("variant %s compare-at price %q: %w", snap.ExternalID, *snap.CompareAtPrice, ErrValidation)
			}
			variant.CompareAtPrice = &cmp
		}
	}
	if snap.Weight != nil {
		w, err := decimal.NewFromString(*snap.Weight)
		if err != nil || w.IsNegative() {
			return fmt.Errorf("variant %s weight %q: %w", snap.ExternalID, *snap.Weight, ErrValidation)
		}
		variant.Weight = w
	}
	if snap.WeightUnit != nil {
		variant.WeightUnit = *snap.WeightUnit
	}
	if snap.ImageURL != nil {
		variant.ImageURL = *snap.ImageURL
	}
	variant.Touch()
	return nil
}
