package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/shared"
)

// SignalSink receives advisory inventory signals. Delivery is
// fire-and-forget; a sink failure never fails the stock write.
type SignalSink interface {
	LowStock(ctx context.Context, variant *catalog.Variant, threshold int64)
}

// Ledger applies stock changes to variants. SetAbsolute is idempotent,
// ApplyDelta clamps at zero. The caller holds the row lock; the ledger
// only mutates the in-memory variant.
type Ledger struct {
	threshold int64
	sink      SignalSink
	logger    *zap.Logger
}

// NewLedger creates a ledger. A nil sink disables low-stock signals.
func NewLedger(lowStockThreshold int64, sink SignalSink, logger *zap.Logger) *Ledger {
	return &Ledger{threshold: lowStockThreshold, sink: sink, logger: logger}
}

// SetAbsolute replaces the variant's on-hand quantity. Applying the
// same quantity twice leaves the variant unchanged.
func (l *Ledger) SetAbsolute(ctx context.Context, variant *catalog.Variant, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("inventory: absolute quantity %d is negative: %w", quantity, shared.ErrInvalidInput)
	}
	if variant.StockQuantity == quantity {
		return nil
	}
	variant.StockQuantity = quantity
	variant.Touch()
	l.checkLowStock(ctx, variant)
	return nil
}

// ApplyDelta adjusts the on-hand quantity by a signed amount. A delta
// that would take the quantity below zero clamps to zero instead of
// failing, since the remote side is authoritative for oversell.
func (l *Ledger) ApplyDelta(ctx context.Context, variant *catalog.Variant, delta int64) error {
	next := variant.StockQuantity + delta
	if next < 0 {
		l.logger.Warn("stock delta clamped at zero",
			zap.String("variant_id", variant.ID.String()),
			zap.Int64("current", variant.StockQuantity),
			zap.Int64("delta", delta))
		next = 0
	}
	if next == variant.StockQuantity {
		return nil
	}
	variant.StockQuantity = next
	variant.Touch()
	l.checkLowStock(ctx, variant)
	return nil
}

func (l *Ledger) checkLowStock(ctx context.Context, variant *catalog.Variant) {
	if l.sink == nil || l.threshold <= 0 {
		return
	}
	if variant.StockQuantity > l.threshold {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("low stock sink panicked", zap.Any("panic", r))
		}
	}()
	l.sink.LowStock(ctx, variant, l.threshold)
}
