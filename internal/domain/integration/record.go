package integration

import (
	"fmt"
)

// Origin identifies how a sync record entered the system
type Origin string

const (
	// OriginWebhook marks records produced by push deliveries
	OriginWebhook Origin = "webhook"
	// OriginImport marks records produced by pull imports
	OriginImport Origin = "import"
)

// StockKind distinguishes the two stock instruction semantics
type StockKind string

const (
	// StockAbsolute replaces the on-hand quantity. Idempotent.
	StockAbsolute StockKind = "absolute"
	// StockDelta adjusts the on-hand quantity by a signed amount.
	StockDelta StockKind = "delta"
)

// VariantSnapshot is the normalized variant portion of an incoming event.
// Pointer fields distinguish "absent" from "zero value": absent fields
// never overwrite local data.
type VariantSnapshot struct {
	ExternalID              string
	ExternalInventoryItemID *string
	SKU                     *string
	Title                   *string
	Option1                 *string
	Option2                 *string
	Option3                 *string
	Price                   *string
	CompareAtPrice          *string
	Weight                  *string
	WeightUnit              *string
	ImageURL                *string
}

// ProductSnapshot is the normalized product portion of an incoming event
type ProductSnapshot struct {
	ExternalID  string
	Title       *string
	BodyHTML    *string
	ProductType *string
	Vendor      *string
	Status      *string
	Variants    []VariantSnapshot
}

// StockInstruction is a normalized stock change. Exactly one of the
// identifying fields is used to resolve the target variant, in priority
// order: external variant id, inventory item id, SKU.
type StockInstruction struct {
	Kind              StockKind
	InventoryItemID   string
	ExternalVariantID string
	SKU               string
	Quantity          int64
}

// SyncRecord is the unit of work flowing through the pipeline. One
// record corresponds to one webhook delivery or one pulled entity.
type SyncRecord struct {
	Origin            Origin
	EventID           string
	Topic             string
	ExternalProductID string
	Product           *ProductSnapshot
	Stock             []StockInstruction
	Delete            bool
}

// Validate checks structural invariants before the record enters the
// pipeline. Signature verification has already happened by this point.
func (r *SyncRecord) Validate() error {
	if r.Origin != OriginWebhook && r.Origin != OriginImport {
		return fmt.Errorf("unknown origin %q: %w", r.Origin, ErrValidation)
	}
	if r.Product == nil && len(r.Stock) == 0 && !r.Delete {
		return fmt.Errorf("record carries no product, stock, or delete: %w", ErrValidation)
	}
	if r.Product != nil && r.Product.ExternalID == "" {
		return fmt.Errorf("product snapshot missing external id: %w", ErrValidation)
	}
	if r.Delete && r.ExternalProductID == "" {
		return fmt.Errorf("delete record missing external product id: %w", ErrValidation)
	}
	if r.Product != nil {
		seen := make(map[string]struct{}, len(r.Product.Variants))
		for _, v := range r.Product.Variants {
			if v.ExternalID == "" {
				return fmt.Errorf("variant snapshot missing external id: %w", ErrValidation)
			}
			if _, dup := seen[v.ExternalID]; dup {
				return fmt.Errorf("duplicate variant external id %s: %w", v.ExternalID, ErrValidation)
			}
			seen[v.ExternalID] = struct{}{}
		}
	}
	for _, s := range r.Stock {
		if s.Kind != StockAbsolute && s.Kind != StockDelta {
			return fmt.Errorf("unknown stock kind %q: %w", s.Kind, ErrValidation)
		}
		if s.InventoryItemID == "" && s.ExternalVariantID == "" && s.SKU == "" {
			return fmt.Errorf("stock instruction has no identifier: %w", ErrValidation)
		}
		if s.Kind == StockAbsolute && s.Quantity < 0 {
			return fmt.Errorf("absolute stock quantity cannot be negative: %w", ErrValidation)
		}
	}
	return nil
}
