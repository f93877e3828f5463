package integration

import "context"

// RemoteVariant is a variant as the external platform reports it.
// Prices arrive as strings on the wire and are parsed during
// normalization so one malformed price fails one entity, not a batch.
type RemoteVariant struct {
	ID              string
	InventoryItemID string
	SKU             string
	Title           string
	Option1         string
	Option2         string
	Option3         string
	Price           string
	CompareAtPrice  string
	Weight          string
	WeightUnit      string
	ImageURL        string
	InventoryQty    *int64
}

// RemoteProduct is a product as the external platform reports it
type RemoteProduct struct {
	ID          string
	Title       string
	BodyHTML    string
	ProductType string
	Vendor      string
	Status      string
	Variants    []RemoteVariant
}

// PageRequest asks for one page of a remote listing
type PageRequest struct {
	Limit    int
	PageInfo string
}

// ProductPage is one page of remote products plus the cursor for the next
type ProductPage struct {
	Products     []RemoteProduct
	NextPageInfo string
}

// VariantExport carries a local variant to the platform
type VariantExport struct {
	ExternalID     string
	SKU            string
	Title          string
	Option1        string
	Option2        string
	Option3        string
	Price          string
	CompareAtPrice string
	Weight         string
	WeightUnit     string
}

// ProductExport carries a local product to the platform
type ProductExport struct {
	ExternalID  string
	Title       string
	BodyHTML    string
	ProductType string
	Vendor      string
	Status      string
	Variants    []VariantExport
}

// Location is a remote stock location
type Location struct {
	ID     string
	Name   string
	Active bool
}

// Platform is the outbound port to the external commerce platform.
// Implementations classify transport failures into the remote error
// sentinels of this package.
type Platform interface {
	FetchProduct(ctx context.Context, externalID string) (*RemoteProduct, error)
	ListProducts(ctx context.Context, req PageRequest) (*ProductPage, error)

	// CreateProduct returns the remote representation with the
	// identifiers the platform minted.
	CreateProduct(ctx context.Context, export ProductExport) (*RemoteProduct, error)
	UpdateProduct(ctx context.Context, export ProductExport) (*RemoteProduct, error)
	DeleteProduct(ctx context.Context, externalID string) error

	SetInventoryLevel(ctx context.Context, inventoryItemID, locationID string, quantity int64) error
	AdjustInventoryLevel(ctx context.Context, inventoryItemID, locationID string, delta int64) error

	ListLocations(ctx context.Context) ([]Location, error)
}
