package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsync/backend/internal/domain/shared"
)

// Variant is a sellable unit of a product. Stock lives here.
type Variant struct {
	shared.BaseEntity
	ProductID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	ExternalID              *string          `gorm:"type:varchar(64);uniqueIndex"`
	ExternalInventoryItemID *string          `gorm:"type:varchar(64);uniqueIndex"`
	SKU                     *string          `gorm:"type:varchar(128);uniqueIndex"`
	Title                   string           `gorm:"type:varchar(255)"`
	Option1                 string           `gorm:"type:varchar(255)"`
	Option2                 string           `gorm:"type:varchar(255)"`
	Option3                 string           `gorm:"type:varchar(255)"`
	Price                   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CompareAtPrice          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StockQuantity           int64            `gorm:"not null;default:0;check:stock_quantity >= 0"`
	Weight                  decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0"`
	WeightUnit              string           `gorm:"type:varchar(8);default:'kg'"`
	ImageURL                string           `gorm:"type:varchar(1024)"`
}

// TableName specifies the table name
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a variant with zero stock
func NewVariant(productID uuid.UUID) Variant {
	return Variant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		WeightUnit: "kg",
	}
}

// BindExternalID records the external variant identifier, permanently
func (v *Variant) BindExternalID(externalID string) error {
	if externalID == "" {
		return fmt.Errorf("catalog: external variant id cannot be empty: %w", shared.ErrInvalidInput)
	}
	if v.ExternalID != nil {
		if *v.ExternalID == externalID {
			return nil
		}
		return fmt.Errorf("catalog: variant %s already bound to external id %s: %w",
			v.ID, *v.ExternalID, shared.ErrConcurrencyConflict)
	}
	v.ExternalID = &externalID
	return nil
}

// BindInventoryItemID records the external inventory item identifier, permanently
func (v *Variant) BindInventoryItemID(itemID string) error {
	if itemID == "" {
		return fmt.Errorf("catalog: inventory item id cannot be empty: %w", shared.ErrInvalidInput)
	}
	if v.ExternalInventoryItemID != nil {
		if *v.ExternalInventoryItemID == itemID {
			return nil
		}
		return fmt.Errorf("catalog: variant %s already bound to inventory item %s: %w",
			v.ID, *v.ExternalInventoryItemID, shared.ErrConcurrencyConflict)
	}
	v.ExternalInventoryItemID = &itemID
	return nil
}

// SetPrice updates the price. Negative prices are rejected.
func (v *Variant) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("catalog: price cannot be negative: %w", shared.ErrInvalidInput)
	}
	v.Price = price
	return nil
}
