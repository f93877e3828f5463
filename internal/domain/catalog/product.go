package catalog

import (
	"fmt"

	"github.com/shopsync/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle state of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// IsValid checks if the status is a known value
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// Product is the catalog aggregate root. A product owns its variants;
// variants are always loaded and saved through the product.
type Product struct {
	shared.BaseAggregateRoot
	ExternalID  *string       `gorm:"type:varchar(64);uniqueIndex"`
	Title       string        `gorm:"type:varchar(255);not null"`
	BodyHTML    string        `gorm:"type:text"`
	ProductType string        `gorm:"type:varchar(255)"`
	Vendor      string        `gorm:"type:varchar(255)"`
	Status      ProductStatus `gorm:"type:varchar(16);not null;default:'draft'"`
	Variants    []Variant     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product in draft status
func NewProduct(title string) (*Product, error) {
	if title == "" {
		return nil, fmt.Errorf("catalog: product title is required: %w", shared.ErrInvalidInput)
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Status:            ProductStatusDraft,
	}, nil
}

// BindExternalID records the external platform identifier. Once bound the
// identifier is permanent; binding a different value is a conflict.
func (p *Product) BindExternalID(externalID string) error {
	if externalID == "" {
		return fmt.Errorf("catalog: external id cannot be empty: %w", shared.ErrInvalidInput)
	}
	if p.ExternalID != nil {
		if *p.ExternalID == externalID {
			return nil
		}
		return fmt.Errorf("catalog: product %s already bound to external id %s: %w",
			p.ID, *p.ExternalID, shared.ErrConcurrencyConflict)
	}
	p.ExternalID = &externalID
	return nil
}

// SetStatus transitions the product to a new status
func (p *Product) SetStatus(status ProductStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("catalog: invalid product status %q: %w", status, shared.ErrInvalidInput)
	}
	p.Status = status
	return nil
}

// VariantByExternalID returns the variant already bound to the given
// external variant id, or nil if none is.
func (p *Product) VariantByExternalID(externalID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ExternalID != nil && *p.Variants[i].ExternalID == externalID {
			return &p.Variants[i]
		}
	}
	return nil
}

// VariantBySKU returns the variant with the given SKU, or nil
func (p *Product) VariantBySKU(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU != nil && *p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

// AddVariant appends a variant to the product
func (p *Product) AddVariant(v Variant) {
	v.ProductID = p.ID
	p.Variants = append(p.Variants, v)
}
