package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/inventory"
	"github.com/shopsync/backend/internal/domain/shared"
)

// CreateVariantInput describes one variant of an operator-created product
type CreateVariantInput struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Option1        string `json:"option1"`
	Option2        string `json:"option2"`
	Option3        string `json:"option3"`
	Price          string `json:"price" binding:"required"`
	CompareAtPrice string `json:"compare_at_price"`
	Weight         string `json:"weight"`
	WeightUnit     string `json:"weight_unit"`
}

// CreateProductInput describes an operator-created product
type CreateProductInput struct {
	Title       string               `json:"title" binding:"required"`
	BodyHTML    string               `json:"body_html"`
	ProductType string               `json:"product_type"`
	Vendor      string               `json:"vendor"`
	Status      string               `json:"status"`
	Variants    []CreateVariantInput `json:"variants" binding:"required,min=1,dive"`
}

// ExportService is the operator-initiated outbound path: local changes
// pushed to the platform. Remote calls stay outside row locks, with one
// exception: creation asks the platform to mint identifiers before the
// local insert commits, so a half-created product can never exist
// locally without its external ids.
type ExportService struct {
	uow      integration.UnitOfWork
	platform integration.Platform
	ledger   *inventory.Ledger
	logger   *zap.Logger
}

// NewExportService creates an export service
func NewExportService(uow integration.UnitOfWork, platform integration.Platform, ledger *inventory.Ledger, logger *zap.Logger) *ExportService {
	return &ExportService{uow: uow, platform: platform, ledger: ledger, logger: logger}
}

// CreateProduct creates the product remotely and locally in one unit.
// A remote failure aborts before anything is written; a local failure
// after the remote create rolls the transaction back and surfaces both
// ids so the operator can reconcile by import.
func (s *ExportService) CreateProduct(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	product, err := buildLocalProduct(input)
	if err != nil {
		return nil, err
	}

	export := productToExport(product)
	var created *catalog.Product
	err = s.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		remote, err := s.platform.CreateProduct(ctx, export)
		if err != nil {
			return fmt.Errorf("remote create for local product %s: %w", product.ID, err)
		}
		if err := bindMintedIDs(product, remote); err != nil {
			return fmt.Errorf("remote product %s, local product %s: %w", remote.ID, product.ID, err)
		}
		if err := repos.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("remote product %s created but local save failed: %v: %w",
				remote.ID, err, integration.ErrPersistence)
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProduct pushes the current local state of a product to the
// platform. The product must already be bound to an external id.
func (s *ExportService) UpdateProduct(ctx context.Context, productID uuid.UUID) error {
	var export integration.ProductExport
	err := s.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		product, err := repos.Products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.ExternalID == nil {
			return fmt.Errorf("product %s is not bound to the platform: %w", productID, shared.ErrInvalidState)
		}
		export = productToExport(product)
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.platform.UpdateProduct(ctx, export); err != nil {
		return fmt.Errorf("remote update for product %s (external %s): %w", productID, export.ExternalID, err)
	}
	return nil
}

// DeleteProduct deletes the product remotely, then locally. A product
// already gone remotely still gets deleted locally.
func (s *ExportService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	var externalID string
	err := s.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		product, err := repos.Products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.ExternalID != nil {
			externalID = *product.ExternalID
		}
		return nil
	})
	if err != nil {
		return err
	}

	if externalID != "" {
		if err := s.platform.DeleteProduct(ctx, externalID); err != nil && !errors.Is(err, integration.ErrRemoteNotFound) {
			return fmt.Errorf("remote delete for product %s (external %s): %w", productID, externalID, err)
		}
	}

	return s.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		return repos.Products.Delete(ctx, productID)
	})
}

// SetStock sets the local on-hand quantity under a row lock and then
// mirrors it to the platform. A variant without an inventory item id is
// still sync-pending; the local write succeeds and the remote push is
// skipped with a warning.
func (s *ExportService) SetStock(ctx context.Context, variantID uuid.UUID, quantity int64) error {
	var inventoryItemID string
	err := s.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		variant, err := repos.Variants.FindByIDForUpdate(ctx, variantID)
		if err != nil {
			return err
		}
		if err := s.ledger.SetAbsolute(ctx, variant, quantity); err != nil {
			return err
		}
		if variant.ExternalInventoryItemID != nil {
			inventoryItemID = *variant.ExternalInventoryItemID
		}
		return repos.Variants.Save(ctx, variant)
	})
	if err != nil {
		return err
	}

	if inventoryItemID == "" {
		s.logger.Warn("variant has no inventory item id, remote stock not pushed",
			zap.String("variant_id", variantID.String()))
		return nil
	}
	if err := s.platform.SetInventoryLevel(ctx, inventoryItemID, "", quantity); err != nil {
		return fmt.Errorf("remote stock push for variant %s (inventory item %s): %w",
			variantID, inventoryItemID, err)
	}
	return nil
}

func buildLocalProduct(input CreateProductInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(input.Title)
	if err != nil {
		return nil, err
	}
	product.BodyHTML = input.BodyHTML
	product.ProductType = input.ProductType
	product.Vendor = input.Vendor
	if input.Status != "" {
		if err := product.SetStatus(catalog.ProductStatus(input.Status)); err != nil {
			return nil, err
		}
	}

	for _, vi := range input.Variants {
		variant := catalog.NewVariant(product.ID)
		if vi.SKU != "" {
			sku := vi.SKU
			variant.SKU = &sku
		}
		variant.Title = vi.Title
		variant.Option1 = vi.Option1
		variant.Option2 = vi.Option2
		variant.Option3 = vi.Option3

		price, err := decimal.NewFromString(vi.Price)
		if err != nil {
			return nil, fmt.Errorf("variant %q price %q: %w", vi.SKU, vi.Price, shared.ErrInvalidInput)
		}
		if err := variant.SetPrice(price); err != nil {
			return nil, err
		}
		if vi.CompareAtPrice != "" {
			cmp, err := decimal.NewFromString(vi.CompareAtPrice)
			if err != nil {
				return nil, fmt.Errorf("variant %q compare-at price %q: %w", vi.SKU, vi.CompareAtPrice, shared.ErrInvalidInput)
			}
			variant.CompareAtPrice = &cmp
		}
		if vi.Weight != "" {
			w, err := decimal.NewFromString(vi.Weight)
			if err != nil || w.IsNegative() {
				return nil, fmt.Errorf("variant %q weight %q: %w", vi.SKU, vi.Weight, shared.ErrInvalidInput)
			}
			variant.Weight = w
		}
		if vi.WeightUnit != "" {
			variant.WeightUnit = vi.WeightUnit
		}
		product.AddVariant(variant)
	}
	return product, nil
}

func productToExport(product *catalog.Product) integration.ProductExport {
	export := integration.ProductExport{
		Title:       product.Title,
		BodyHTML:    product.BodyHTML,
		ProductType: product.ProductType,
		Vendor:      product.Vendor,
		Status:      string(product.Status),
	}
	if product.ExternalID != nil {
		export.ExternalID = *product.ExternalID
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		ve := integration.VariantExport{
			Title:      v.Title,
			Option1:    v.Option1,
			Option2:    v.Option2,
			Option3:    v.Option3,
			Price:      v.Price.StringFixed(2),
			WeightUnit: v.WeightUnit,
		}
		if v.ExternalID != nil {
			ve.ExternalID = *v.ExternalID
		}
		if v.SKU != nil {
			ve.SKU = *v.SKU
		}
		if v.CompareAtPrice != nil {
			ve.CompareAtPrice = v.CompareAtPrice.StringFixed(2)
		}
		if !v.Weight.IsZero() {
			ve.Weight = v.Weight.String()
		}
		export.Variants = append(export.Variants, ve)
	}
	return export
}

// bindMintedIDs copies platform-minted identifiers onto the local
// product. Variants are matched by SKU when present, falling back to
// submission order, which the platform preserves for creates.
func bindMintedIDs(product *catalog.Product, remote *integration.RemoteProduct) error {
	if err := product.BindExternalID(remote.ID); err != nil {
		return err
	}

	bySKU := make(map[string]*integration.RemoteVariant, len(remote.Variants))
	for i := range remote.Variants {
		if remote.Variants[i].SKU != "" {
			bySKU[remote.Variants[i].SKU] = &remote.Variants[i]
		}
	}

	for i := range product.Variants {
		local := &product.Variants[i]
		var rv *integration.RemoteVariant
		if local.SKU != nil {
			rv = bySKU[*local.SKU]
		}
		if rv == nil && i < len(remote.Variants) {
			rv = &remote.Variants[i]
		}
		if rv == nil {
			continue
		}
		if rv.ID != "" {
			if err := local.BindExternalID(rv.ID); err != nil {
				return err
			}
		}
		if rv.InventoryItemID != "" {
			if err := local.BindInventoryItemID(rv.InventoryItemID); err != nil {
				return err
			}
		}
	}
	return nil
}
