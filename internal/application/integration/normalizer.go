package integration

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
)

// Normalizer turns wire payloads and remote API responses into
// SyncRecords, the one shape the pipeline processes. Prices stay
// strings here; parsing belongs to the merger so one malformed price
// fails one entity.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// FromWebhook decodes and normalizes one webhook delivery. An unknown
// topic returns (nil, nil); the caller acknowledges it without work.
func (n *Normalizer) FromWebhook(topic, eventID string, body []byte) (*integration.SyncRecord, error) {
	switch topic {
	case TopicProductsCreate, TopicProductsUpdate:
		return n.productRecord(topic, eventID, body)
	case TopicProductsDelete:
		return n.productDeleteRecord(topic, eventID, body)
	case TopicOrdersCreate:
		return n.orderRecord(topic, eventID, body, -1)
	case TopicOrdersCancelled:
		return n.orderRecord(topic, eventID, body, +1)
	case TopicRefundsCreate:
		return n.refundRecord(topic, eventID, body)
	case TopicInventoryLevelsUpdate:
		return n.inventoryLevelRecord(topic, eventID, body)
	default:
		n.logger.Warn("unhandled webhook topic", zap.String("topic", topic), zap.String("event_id", eventID))
		return nil, nil
	}
}

// FromRemoteProduct normalizes a pulled product into a record carrying
// the snapshot plus absolute stock instructions for every variant that
// reports a quantity.
func (n *Normalizer) FromRemoteProduct(remote *integration.RemoteProduct) (*integration.SyncRecord, error) {
	if remote.ID == "" {
		return nil, fmt.Errorf("remote product missing id: %w", integration.ErrValidation)
	}

	snap := &integration.ProductSnapshot{
		ExternalID:  remote.ID,
		Title:       optString(remote.Title),
		BodyHTML:    optString(remote.BodyHTML),
		ProductType: optString(remote.ProductType),
		Vendor:      optString(remote.Vendor),
		Status:      optString(remote.Status),
	}

	rec := &integration.SyncRecord{
		Origin:            integration.OriginImport,
		ExternalProductID: remote.ID,
		Product:           snap,
	}

	for _, rv := range remote.Variants {
		if rv.ID == "" {
			return nil, fmt.Errorf("remote variant of product %s missing id: %w", remote.ID, integration.ErrValidation)
		}
		vs := integration.VariantSnapshot{
			ExternalID:              rv.ID,
			ExternalInventoryItemID: optString(rv.InventoryItemID),
			SKU:                     optString(rv.SKU),
			Title:                   optString(rv.Title),
			Option1:                 optString(rv.Option1),
			Option2:                 optString(rv.Option2),
			Option3:                 optString(rv.Option3),
			Price:                   optString(rv.Price),
			CompareAtPrice:          optString(rv.CompareAtPrice),
			Weight:                  optString(rv.Weight),
			WeightUnit:              optString(rv.WeightUnit),
			ImageURL:                optString(rv.ImageURL),
		}
		snap.Variants = append(snap.Variants, vs)

		if rv.InventoryQty != nil {
			qty := *rv.InventoryQty
			if qty < 0 {
				// The platform reports oversold variants as negative.
				qty = 0
			}
			rec.Stock = append(rec.Stock, integration.StockInstruction{
				Kind:              integration.StockAbsolute,
				ExternalVariantID: rv.ID,
				InventoryItemID:   rv.InventoryItemID,
				SKU:               rv.SKU,
				Quantity:          qty,
			})
		}
	}
	return rec, nil
}

func (n *Normalizer) productRecord(topic, eventID string, body []byte) (*integration.SyncRecord, error) {
	var payload productPayload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("%s payload missing product id: %w", topic, integration.ErrValidation)
	}

	snap := &integration.ProductSnapshot{
		ExternalID:  formatID(payload.ID),
		Title:       payload.Title,
		BodyHTML:    payload.BodyHTML,
		ProductType: payload.ProductType,
		Vendor:      payload.Vendor,
		Status:      payload.Status,
	}
	for _, vp := range payload.Variants {
		if vp.ID == 0 {
			return nil, fmt.Errorf("%s payload variant missing id: %w", topic, integration.ErrValidation)
		}
		vs := integration.VariantSnapshot{
			ExternalID:     formatID(vp.ID),
			SKU:            vp.SKU,
			Title:          vp.Title,
			Option1:        vp.Option1,
			Option2:        vp.Option2,
			Option3:        vp.Option3,
			Price:          vp.Price,
			CompareAtPrice: vp.CompareAtPrice,
			WeightUnit:     vp.WeightUnit,
		}
		if vp.InventoryItemID != 0 {
			vs.ExternalInventoryItemID = optString(formatID(vp.InventoryItemID))
		}
		if vp.Weight != nil {
			vs.Weight = optString(strconv.FormatFloat(*vp.Weight, 'f', -1, 64))
		}
		snap.Variants = append(snap.Variants, vs)
	}

	return &integration.SyncRecord{
		Origin:            integration.OriginWebhook,
		EventID:           eventID,
		Topic:             topic,
		ExternalProductID: snap.ExternalID,
		Product:           snap,
	}, nil
}

func (n *Normalizer) productDeleteRecord(topic, eventID string, body []byte) (*integration.SyncRecord, error) {
	var payload productDeletePayload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("%s payload missing product id: %w", topic, integration.ErrValidation)
	}
	return &integration.SyncRecord{
		Origin:            integration.OriginWebhook,
		EventID:           eventID,
		Topic:             topic,
		ExternalProductID: formatID(payload.ID),
		Delete:            true,
	}, nil
}

// orderRecord turns order line items into stock deltas, sign -1 for a
// placed order and +1 for a cancellation restock.
func (n *Normalizer) orderRecord(topic, eventID string, body []byte, sign int64) (*integration.SyncRecord, error) {
	var payload orderPayload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("%s payload missing order id: %w", topic, integration.ErrValidation)
	}

	rec := &integration.SyncRecord{
		Origin:  integration.OriginWebhook,
		EventID: eventID,
		Topic:   topic,
	}
	for _, item := range payload.LineItems {
		if item.VariantID == 0 && item.SKU == "" {
			n.logger.Warn("order line item carries no variant reference",
				zap.String("topic", topic), zap.Int64("order_id", payload.ID))
			continue
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%s line item quantity %d: %w", topic, item.Quantity, integration.ErrValidation)
		}
		rec.Stock = append(rec.Stock, integration.StockInstruction{
			Kind:              integration.StockDelta,
			ExternalVariantID: formatID(item.VariantID),
			SKU:               item.SKU,
			Quantity:          sign * item.Quantity,
		})
	}
	if len(rec.Stock) == 0 {
		n.logger.Warn("order carries no resolvable line items",
			zap.String("topic", topic), zap.Int64("order_id", payload.ID))
		return nil, nil
	}
	return rec, nil
}

func (n *Normalizer) refundRecord(topic, eventID string, body []byte) (*integration.SyncRecord, error) {
	var payload refundPayload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("%s payload missing refund id: %w", topic, integration.ErrValidation)
	}

	rec := &integration.SyncRecord{
		Origin:  integration.OriginWebhook,
		EventID: eventID,
		Topic:   topic,
	}
	for _, item := range payload.RefundLineItems {
		if item.RestockType == "no_restock" {
			continue
		}
		if item.LineItem.VariantID == 0 && item.LineItem.SKU == "" {
			n.logger.Warn("refund line item carries no variant reference",
				zap.Int64("refund_id", payload.ID))
			continue
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%s refund quantity %d: %w", topic, item.Quantity, integration.ErrValidation)
		}
		rec.Stock = append(rec.Stock, integration.StockInstruction{
			Kind:              integration.StockDelta,
			ExternalVariantID: formatID(item.LineItem.VariantID),
			SKU:               item.LineItem.SKU,
			Quantity:          item.Quantity,
		})
	}
	if len(rec.Stock) == 0 {
		n.logger.Info("refund restocks nothing", zap.Int64("refund_id", payload.ID))
		return nil, nil
	}
	return rec, nil
}

func (n *Normalizer) inventoryLevelRecord(topic, eventID string, body []byte) (*integration.SyncRecord, error) {
	var payload inventoryLevelPayload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, err
	}
	if payload.InventoryItemID == 0 {
		return nil, fmt.Errorf("%s payload missing inventory item id: %w", topic, integration.ErrValidation)
	}
	if payload.Available == nil {
		return nil, fmt.Errorf("%s payload missing available quantity: %w", topic, integration.ErrValidation)
	}
	qty := *payload.Available
	if qty < 0 {
		qty = 0
	}
	return &integration.SyncRecord{
		Origin:  integration.OriginWebhook,
		EventID: eventID,
		Topic:   topic,
		Stock: []integration.StockInstruction{{
			Kind:            integration.StockAbsolute,
			InventoryItemID: formatID(payload.InventoryItemID),
			Quantity:        qty,
		}},
	}, nil
}

func decodeStrict(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed payload: %v: %w", err, integration.ErrValidation)
	}
	return nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
