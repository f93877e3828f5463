package shopify

import (
	"strconv"

	"github.com/shopsync/backend/internal/domain/integration"
)

// Wire types for the REST Admin API. Numeric identifiers stay int64 on
// the wire and are converted to strings at the port boundary.

type productWire struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	BodyHTML    string        `json:"body_html"`
	ProductType string        `json:"product_type"`
	Vendor      string        `json:"vendor"`
	Status      string        `json:"status"`
	Variants    []variantWire `json:"variants"`
}

type variantWire struct {
	ID                int64   `json:"id,omitempty"`
	ProductID         int64   `json:"product_id,omitempty"`
	InventoryItemID   int64   `json:"inventory_item_id,omitempty"`
	SKU               string  `json:"sku,omitempty"`
	Title             string  `json:"title,omitempty"`
	Option1           string  `json:"option1,omitempty"`
	Option2           string  `json:"option2,omitempty"`
	Option3           string  `json:"option3,omitempty"`
	Price             string  `json:"price,omitempty"`
	CompareAtPrice    string  `json:"compare_at_price,omitempty"`
	Weight            float64 `json:"weight,omitempty"`
	WeightUnit        string  `json:"weight_unit,omitempty"`
	InventoryQuantity *int64  `json:"inventory_quantity,omitempty"`
}

type productEnvelope struct {
	Product productWire `json:"product"`
}

type productsEnvelope struct {
	Products []productWire `json:"products"`
}

type locationWire struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type locationsEnvelope struct {
	Locations []locationWire `json:"locations"`
}

type inventoryLevelSetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int64 `json:"available"`
}

type inventoryLevelAdjustRequest struct {
	LocationID          int64 `json:"location_id"`
	InventoryItemID     int64 `json:"inventory_item_id"`
	AvailableAdjustment int64 `json:"available_adjustment"`
}

type apiErrorEnvelope struct {
	Errors interface{} `json:"errors"`
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func (p productWire) toRemote() integration.RemoteProduct {
	remote := integration.RemoteProduct{
		ID:          formatID(p.ID),
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		ProductType: p.ProductType,
		Vendor:      p.Vendor,
		Status:      p.Status,
		Variants:    make([]integration.RemoteVariant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		remote.Variants = append(remote.Variants, v.toRemote())
	}
	return remote
}

func (v variantWire) toRemote() integration.RemoteVariant {
	rv := integration.RemoteVariant{
		ID:              formatID(v.ID),
		InventoryItemID: formatID(v.InventoryItemID),
		SKU:             v.SKU,
		Title:           v.Title,
		Option1:         v.Option1,
		Option2:         v.Option2,
		Option3:         v.Option3,
		Price:           v.Price,
		CompareAtPrice:  v.CompareAtPrice,
		WeightUnit:      v.WeightUnit,
		InventoryQty:    v.InventoryQuantity,
	}
	if v.Weight != 0 {
		rv.Weight = strconv.FormatFloat(v.Weight, 'f', -1, 64)
	}
	return rv
}

func exportToWire(export integration.ProductExport) (productWire, error) {
	wire := productWire{
		Title:       export.Title,
		BodyHTML:    export.BodyHTML,
		ProductType: export.ProductType,
		Vendor:      export.Vendor,
		Status:      export.Status,
	}
	if export.ExternalID != "" {
		id, err := strconv.ParseInt(export.ExternalID, 10, 64)
		if err != nil {
			return productWire{}, err
		}
		wire.ID = id
	}
	for _, v := range export.Variants {
		vw := variantWire{
			SKU:            v.SKU,
			Title:          v.Title,
			Option1:        v.Option1,
			Option2:        v.Option2,
			Option3:        v.Option3,
			Price:          v.Price,
			CompareAtPrice: v.CompareAtPrice,
			WeightUnit:     v.WeightUnit,
		}
		if v.ExternalID != "" {
			id, err := strconv.ParseInt(v.ExternalID, 10, 64)
			if err != nil {
				return productWire{}, err
			}
			vw.ID = id
		}
		if v.Weight != "" {
			w, err := strconv.ParseFloat(v.Weight, 64)
			if err != nil {
				return productWire{}, err
			}
			vw.Weight = w
		}
		wire.Variants = append(wire.Variants, vw)
	}
	return wire, nil
}
