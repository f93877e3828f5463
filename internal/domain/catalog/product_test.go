package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsync/backend/internal/domain/shared"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates draft product", func(t *testing.T) {
		p, err := NewProduct("Widget")
		require.NoError(t, err)
		assert.Equal(t, "Widget", p.Title)
		assert.Equal(t, ProductStatusDraft, p.Status)
		assert.Nil(t, p.ExternalID)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewProduct("")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestProductBindExternalID(t *testing.T) {
	t.Run("binds once", func(t *testing.T) {
		p, _ := NewProduct("Widget")
		require.NoError(t, p.BindExternalID("gid-100"))
		require.NotNil(t, p.ExternalID)
		assert.Equal(t, "gid-100", *p.ExternalID)
	})

	t.Run("rebinding same value is a no-op", func(t *testing.T) {
		p, _ := NewProduct("Widget")
		require.NoError(t, p.BindExternalID("gid-100"))
		assert.NoError(t, p.BindExternalID("gid-100"))
	})

	t.Run("rebinding different value conflicts", func(t *testing.T) {
		p, _ := NewProduct("Widget")
		require.NoError(t, p.BindExternalID("gid-100"))
		err := p.BindExternalID("gid-200")
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, "gid-100", *p.ExternalID)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		p, _ := NewProduct("Widget")
		err := p.BindExternalID("")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestProductSetStatus(t *testing.T) {
	p, _ := NewProduct("Widget")
	require.NoError(t, p.SetStatus(ProductStatusActive))
	assert.Equal(t, ProductStatusActive, p.Status)

	err := p.SetStatus(ProductStatus("published"))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.Equal(t, ProductStatusActive, p.Status)
}

func TestProductVariantLookup(t *testing.T) {
	p, _ := NewProduct("Widget")

	v1 := NewVariant(p.ID)
	ext := "var-1"
	sku := "SKU-1"
	v1.ExternalID = &ext
	v1.SKU = &sku
	p.AddVariant(v1)

	v2 := NewVariant(p.ID)
	p.AddVariant(v2)

	t.Run("by external id", func(t *testing.T) {
		found := p.VariantByExternalID("var-1")
		require.NotNil(t, found)
		assert.Equal(t, v1.ID, found.ID)
		assert.Nil(t, p.VariantByExternalID("var-9"))
	})

	t.Run("by sku", func(t *testing.T) {
		found := p.VariantBySKU("SKU-1")
		require.NotNil(t, found)
		assert.Equal(t, v1.ID, found.ID)
		assert.Nil(t, p.VariantBySKU("SKU-9"))
	})
}

func TestVariantBinding(t *testing.T) {
	p, _ := NewProduct("Widget")
	v := NewVariant(p.ID)

	t.Run("external id is permanent", func(t *testing.T) {
		require.NoError(t, v.BindExternalID("var-1"))
		assert.NoError(t, v.BindExternalID("var-1"))
		err := v.BindExternalID("var-2")
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("inventory item id is permanent", func(t *testing.T) {
		require.NoError(t, v.BindInventoryItemID("inv-1"))
		assert.NoError(t, v.BindInventoryItemID("inv-1"))
		err := v.BindInventoryItemID("inv-2")
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})
}

func TestVariantSetPrice(t *testing.T) {
	p, _ := NewProduct("Widget")
	v := NewVariant(p.ID)

	require.NoError(t, v.SetPrice(decimal.NewFromFloat(19.99)))
	assert.True(t, v.Price.Equal(decimal.NewFromFloat(19.99)))

	err := v.SetPrice(decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.True(t, v.Price.Equal(decimal.NewFromFloat(19.99)))
}
