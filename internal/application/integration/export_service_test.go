package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/inventory"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
)

func newExportFixture(t *testing.T, platform *fakePlatform) (*pipelineFixture, *ExportService) {
	t.Helper()
	f := newPipelineFixture(t)
	ledger := inventory.NewLedger(5, nil, zap.NewNop())
	svc := NewExportService(persistence.NewGormUnitOfWork(f.db), platform, ledger, zap.NewNop())
	return f, svc
}

func createInput() CreateProductInput {
	return CreateProductInput{
		Title:  "Canvas Tote",
		Vendor: "Acme",
		Status: "active",
		Variants: []CreateVariantInput{
			{SKU: "CT-NAT", Option1: "Natural", Price: "18.00"},
			{SKU: "CT-BLK", Option1: "Black", Price: "18.00", CompareAtPrice: "24.00"},
		},
	}
}

func TestExportCreateProductMintsIdentifiers(t *testing.T) {
	platform := &fakePlatform{
		createFn: func(export integration.ProductExport) (*integration.RemoteProduct, error) {
			remote := &integration.RemoteProduct{ID: "9001", Title: export.Title}
			for i, v := range export.Variants {
				remote.Variants = append(remote.Variants, integration.RemoteVariant{
					ID:              "950" + string(rune('1'+i)),
					InventoryItemID: "960" + string(rune('1'+i)),
					SKU:             v.SKU,
				})
			}
			return remote, nil
		},
	}
	f, svc := newExportFixture(t, platform)

	created, err := svc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)
	require.NotNil(t, created.ExternalID)
	assert.Equal(t, "9001", *created.ExternalID)

	p := f.findProduct(t, "9001")
	require.Len(t, p.Variants, 2)
	for _, v := range p.Variants {
		require.NotNil(t, v.ExternalID)
		require.NotNil(t, v.ExternalInventoryItemID)
	}
	black := p.VariantBySKU("CT-BLK")
	require.NotNil(t, black)
	assert.Equal(t, "9502", *black.ExternalID)
	assert.Equal(t, "9602", *black.ExternalInventoryItemID)
}

func TestExportCreateProductRemoteFailureWritesNothing(t *testing.T) {
	platform := &fakePlatform{
		createFn: func(integration.ProductExport) (*integration.RemoteProduct, error) {
			return nil, integration.ErrUnavailable
		},
	}
	f, svc := newExportFixture(t, platform)

	_, err := svc.CreateProduct(context.Background(), createInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrUnavailable)

	products, total, listErr := persistence.NewGormProductRepository(f.db).List(context.Background(), 0, 10)
	require.NoError(t, listErr)
	assert.Empty(t, products)
	assert.Equal(t, int64(0), total)
}

func TestExportCreateProductRejectsBadInput(t *testing.T) {
	_, svc := newExportFixture(t, &fakePlatform{})

	input := createInput()
	input.Variants[0].Price = "free"
	_, err := svc.CreateProduct(context.Background(), input)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	input = createInput()
	input.Status = "discontinued"
	_, err = svc.CreateProduct(context.Background(), input)
	assert.Error(t, err)
}

func TestExportUpdateProduct(t *testing.T) {
	platform := &fakePlatform{}
	f, svc := newExportFixture(t, platform)
	v := f.seedVariant(t, "700", "701", "702", "UP-1", 3)

	require.NoError(t, svc.UpdateProduct(context.Background(), v.ProductID))
	require.Len(t, platform.updates, 1)
	export := platform.updates[0]
	assert.Equal(t, "700", export.ExternalID)
	require.Len(t, export.Variants, 1)
	assert.Equal(t, "701", export.Variants[0].ExternalID)
	assert.Equal(t, "10.00", export.Variants[0].Price)
}

func TestExportUpdateUnboundProduct(t *testing.T) {
	platform := &fakePlatform{}
	f, svc := newExportFixture(t, platform)

	repo := persistence.NewGormProductRepository(f.db)
	p, err := buildLocalProduct(createInput())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))

	err = svc.UpdateProduct(context.Background(), p.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Empty(t, platform.updates)
}

func TestExportDeleteProduct(t *testing.T) {
	t.Run("deletes remotely then locally", func(t *testing.T) {
		platform := &fakePlatform{}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "710", "711", "712", "DEL-1", 0)

		require.NoError(t, svc.DeleteProduct(context.Background(), v.ProductID))
		assert.Equal(t, []string{"710"}, platform.deleted)
		_, err := persistence.NewGormProductRepository(f.db).FindByID(context.Background(), v.ProductID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("tolerates product already gone remotely", func(t *testing.T) {
		platform := &fakePlatform{deleteErr: integration.ErrRemoteNotFound}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "720", "721", "722", "DEL-2", 0)

		require.NoError(t, svc.DeleteProduct(context.Background(), v.ProductID))
		_, err := persistence.NewGormProductRepository(f.db).FindByID(context.Background(), v.ProductID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("keeps local product on remote failure", func(t *testing.T) {
		platform := &fakePlatform{deleteErr: integration.ErrUnavailable}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "730", "731", "732", "DEL-3", 0)

		err := svc.DeleteProduct(context.Background(), v.ProductID)
		assert.ErrorIs(t, err, integration.ErrUnavailable)
		_, err = persistence.NewGormProductRepository(f.db).FindByID(context.Background(), v.ProductID)
		assert.NoError(t, err)
	})
}

func TestExportSetStock(t *testing.T) {
	t.Run("writes locally and pushes remotely", func(t *testing.T) {
		platform := &fakePlatform{}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "740", "741", "742", "ST-1", 3)

		require.NoError(t, svc.SetStock(context.Background(), v.ID, 12))

		got, err := persistence.NewGormVariantRepository(f.db).FindByID(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(12), got.StockQuantity)
		require.Len(t, platform.sets, 1)
		assert.Equal(t, "742", platform.sets[0].InventoryItemID)
		assert.Equal(t, int64(12), platform.sets[0].Quantity)
	})

	t.Run("skips remote push for sync-pending variant", func(t *testing.T) {
		platform := &fakePlatform{}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "750", "751", "", "ST-2", 3)

		require.NoError(t, svc.SetStock(context.Background(), v.ID, 9))

		got, err := persistence.NewGormVariantRepository(f.db).FindByID(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.StockQuantity)
		assert.Empty(t, platform.sets)
	})

	t.Run("keeps local write on remote failure", func(t *testing.T) {
		platform := &fakePlatform{setErr: integration.ErrRateLimited}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "760", "761", "762", "ST-3", 3)

		err := svc.SetStock(context.Background(), v.ID, 4)
		assert.ErrorIs(t, err, integration.ErrRateLimited)

		got, err := persistence.NewGormVariantRepository(f.db).FindByID(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.StockQuantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		platform := &fakePlatform{}
		f, svc := newExportFixture(t, platform)
		v := f.seedVariant(t, "770", "771", "772", "ST-4", 3)

		err := svc.SetStock(context.Background(), v.ID, -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
