package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/inventory"
)

// LogNotifier emits inventory signals to the structured log. It stands
// in for an alerting integration; the ledger treats delivery as
// best-effort either way.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier writing to the given logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("inventory")}
}

// LowStock logs a low stock warning for the variant
func (n *LogNotifier) LowStock(_ context.Context, variant *catalog.Variant, threshold int64) {
	fields := []zap.Field{
		zap.String("variant_id", variant.ID.String()),
		zap.Int64("stock_quantity", variant.StockQuantity),
		zap.Int64("threshold", threshold),
	}
	if variant.SKU != nil {
		fields = append(fields, zap.String("sku", *variant.SKU))
	}
	n.logger.Warn("variant stock at or below threshold", fields...)
}

var _ inventory.SignalSink = (*LogNotifier)(nil)
