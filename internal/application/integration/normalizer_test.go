package integration

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
)

func mustBody(t *testing.T, payload interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestNormalizerProductCreate(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id":           42,
		"title":        "Desk Lamp",
		"body_html":    "<p>warm light</p>",
		"product_type": "lighting",
		"vendor":       "Lumen",
		"status":       "draft",
		"variants": []map[string]interface{}{
			{
				"id":                7,
				"inventory_item_id": 9,
				"sku":               "DL-1",
				"option1":           "Brass",
				"price":             "39.00",
				"compare_at_price":  "49.00",
				"weight":            1.25,
				"weight_unit":       "kg",
			},
		},
	})

	rec, err := n.FromWebhook(TopicProductsCreate, "evt-1", body)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, integration.OriginWebhook, rec.Origin)
	assert.Equal(t, "evt-1", rec.EventID)
	assert.Equal(t, "42", rec.ExternalProductID)
	require.NotNil(t, rec.Product)
	assert.Equal(t, "42", rec.Product.ExternalID)
	assert.Equal(t, "Desk Lamp", *rec.Product.Title)
	assert.Equal(t, "draft", *rec.Product.Status)

	require.Len(t, rec.Product.Variants, 1)
	v := rec.Product.Variants[0]
	assert.Equal(t, "7", v.ExternalID)
	assert.Equal(t, "9", *v.ExternalInventoryItemID)
	assert.Equal(t, "DL-1", *v.SKU)
	assert.Equal(t, "39.00", *v.Price)
	assert.Equal(t, "49.00", *v.CompareAtPrice)
	assert.Equal(t, "1.25", *v.Weight)
	assert.Empty(t, rec.Stock)
}

func TestNormalizerProductUpdateOmitsAbsentFields(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id":     42,
		"vendor": "Lumen",
	})

	rec, err := n.FromWebhook(TopicProductsUpdate, "evt-2", body)
	require.NoError(t, err)
	require.NotNil(t, rec.Product)
	assert.Nil(t, rec.Product.Title)
	assert.Nil(t, rec.Product.Status)
	assert.Equal(t, "Lumen", *rec.Product.Vendor)
}

func TestNormalizerProductMissingID(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	_, err := n.FromWebhook(TopicProductsCreate, "evt-3", mustBody(t, map[string]interface{}{"title": "No ID"}))
	assert.True(t, errors.Is(err, integration.ErrValidation))

	_, err = n.FromWebhook(TopicProductsCreate, "evt-4", mustBody(t, map[string]interface{}{
		"id":       5,
		"variants": []map[string]interface{}{{"sku": "orphan"}},
	}))
	assert.True(t, errors.Is(err, integration.ErrValidation))
}

func TestNormalizerProductDelete(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	rec, err := n.FromWebhook(TopicProductsDelete, "evt-5", mustBody(t, map[string]interface{}{"id": 42}))
	require.NoError(t, err)
	assert.True(t, rec.Delete)
	assert.Equal(t, "42", rec.ExternalProductID)
	assert.Nil(t, rec.Product)
}

func TestNormalizerOrderCreate(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id": 555,
		"line_items": []map[string]interface{}{
			{"variant_id": 7, "quantity": 2},
			{"sku": "DL-2", "quantity": 1},
			{"quantity": 3}, // no reference, skipped
		},
	})

	rec, err := n.FromWebhook(TopicOrdersCreate, "evt-6", body)
	require.NoError(t, err)
	require.Len(t, rec.Stock, 2)
	assert.Equal(t, integration.StockDelta, rec.Stock[0].Kind)
	assert.Equal(t, "7", rec.Stock[0].ExternalVariantID)
	assert.Equal(t, int64(-2), rec.Stock[0].Quantity)
	assert.Equal(t, "DL-2", rec.Stock[1].SKU)
	assert.Equal(t, int64(-1), rec.Stock[1].Quantity)
}

func TestNormalizerOrderCancelledRestocks(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id":         555,
		"line_items": []map[string]interface{}{{"variant_id": 7, "quantity": 2}},
	})

	rec, err := n.FromWebhook(TopicOrdersCancelled, "evt-7", body)
	require.NoError(t, err)
	require.Len(t, rec.Stock, 1)
	assert.Equal(t, int64(+2), rec.Stock[0].Quantity)
}

func TestNormalizerOrderWithoutUsableItems(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id":         556,
		"line_items": []map[string]interface{}{{"quantity": 1}},
	})

	rec, err := n.FromWebhook(TopicOrdersCreate, "evt-8", body)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNormalizerOrderRejectsNonPositiveQuantity(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id":         557,
		"line_items": []map[string]interface{}{{"variant_id": 7, "quantity": 0}},
	})

	_, err := n.FromWebhook(TopicOrdersCreate, "evt-9", body)
	assert.True(t, errors.Is(err, integration.ErrValidation))
}

func TestNormalizerRefund(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id": 900,
		"refund_line_items": []map[string]interface{}{
			{"quantity": 2, "line_item": map[string]interface{}{"variant_id": 7}},
			{"quantity": 1, "restock_type": "no_restock", "line_item": map[string]interface{}{"variant_id": 8}},
		},
	})

	rec, err := n.FromWebhook(TopicRefundsCreate, "evt-10", body)
	require.NoError(t, err)
	require.Len(t, rec.Stock, 1)
	assert.Equal(t, "7", rec.Stock[0].ExternalVariantID)
	assert.Equal(t, int64(+2), rec.Stock[0].Quantity)
}

func TestNormalizerRefundAllNoRestock(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	body := mustBody(t, map[string]interface{}{
		"id": 901,
		"refund_line_items": []map[string]interface{}{
			{"quantity": 1, "restock_type": "no_restock", "line_item": map[string]interface{}{"variant_id": 8}},
		},
	})

	rec, err := n.FromWebhook(TopicRefundsCreate, "evt-11", body)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNormalizerInventoryLevel(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	t.Run("sets absolute quantity", func(t *testing.T) {
		body := mustBody(t, map[string]interface{}{"inventory_item_id": 9, "location_id": 1, "available": 17})
		rec, err := n.FromWebhook(TopicInventoryLevelsUpdate, "evt-12", body)
		require.NoError(t, err)
		require.Len(t, rec.Stock, 1)
		assert.Equal(t, integration.StockAbsolute, rec.Stock[0].Kind)
		assert.Equal(t, "9", rec.Stock[0].InventoryItemID)
		assert.Equal(t, int64(17), rec.Stock[0].Quantity)
	})

	t.Run("clamps negative available", func(t *testing.T) {
		body := mustBody(t, map[string]interface{}{"inventory_item_id": 9, "available": -3})
		rec, err := n.FromWebhook(TopicInventoryLevelsUpdate, "evt-13", body)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.Stock[0].Quantity)
	})

	t.Run("rejects null available", func(t *testing.T) {
		body := mustBody(t, map[string]interface{}{"inventory_item_id": 9, "available": nil})
		_, err := n.FromWebhook(TopicInventoryLevelsUpdate, "evt-14", body)
		assert.True(t, errors.Is(err, integration.ErrValidation))
	})
}

func TestNormalizerUnknownTopic(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	rec, err := n.FromWebhook("customers/create", "evt-15", []byte(`{}`))
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNormalizerMalformedBody(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	_, err := n.FromWebhook(TopicProductsCreate, "evt-16", []byte(`{"id": `))
	assert.True(t, errors.Is(err, integration.ErrValidation))
}

func TestNormalizerFromRemoteProduct(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	qty := int64(12)
	oversold := int64(-4)
	remote := &integration.RemoteProduct{
		ID:     "42",
		Title:  "Desk Lamp",
		Status: "active",
		Variants: []integration.RemoteVariant{
			{ID: "7", InventoryItemID: "9", SKU: "DL-1", Price: "39.00", InventoryQty: &qty},
			{ID: "8", SKU: "DL-2", Price: "29.00", InventoryQty: &oversold},
			{ID: "9", SKU: "DL-3", Price: "19.00"},
		},
	}

	rec, err := n.FromRemoteProduct(remote)
	require.NoError(t, err)
	assert.Equal(t, integration.OriginImport, rec.Origin)
	assert.Equal(t, "42", rec.ExternalProductID)
	require.Len(t, rec.Product.Variants, 3)

	require.Len(t, rec.Stock, 2)
	assert.Equal(t, integration.StockAbsolute, rec.Stock[0].Kind)
	assert.Equal(t, "7", rec.Stock[0].ExternalVariantID)
	assert.Equal(t, "9", rec.Stock[0].InventoryItemID)
	assert.Equal(t, int64(12), rec.Stock[0].Quantity)
	assert.Equal(t, int64(0), rec.Stock[1].Quantity)
}

func TestNormalizerFromRemoteProductMissingIDs(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	_, err := n.FromRemoteProduct(&integration.RemoteProduct{Title: "No ID"})
	assert.True(t, errors.Is(err, integration.ErrValidation))

	_, err = n.FromRemoteProduct(&integration.RemoteProduct{
		ID:       "42",
		Variants: []integration.RemoteVariant{{SKU: "orphan"}},
	})
	assert.True(t, errors.Is(err, integration.ErrValidation))
}
