package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/shared"
)

type captureSink struct {
	calls []int64
}

func (s *captureSink) LowStock(_ context.Context, variant *catalog.Variant, _ int64) {
	s.calls = append(s.calls, variant.StockQuantity)
}

type panicSink struct{}

func (panicSink) LowStock(context.Context, *catalog.Variant, int64) {
	panic("sink down")
}

func newTestVariant(qty int64) *catalog.Variant {
	p, _ := catalog.NewProduct("Widget")
	v := catalog.NewVariant(p.ID)
	v.StockQuantity = qty
	return &v
}

func TestLedgerSetAbsolute(t *testing.T) {
	ledger := NewLedger(0, nil, zap.NewNop())
	ctx := context.Background()

	t.Run("replaces quantity", func(t *testing.T) {
		v := newTestVariant(5)
		require.NoError(t, ledger.SetAbsolute(ctx, v, 12))
		assert.Equal(t, int64(12), v.StockQuantity)
	})

	t.Run("idempotent on repeat", func(t *testing.T) {
		v := newTestVariant(5)
		require.NoError(t, ledger.SetAbsolute(ctx, v, 12))
		before := v.UpdatedAt
		require.NoError(t, ledger.SetAbsolute(ctx, v, 12))
		assert.Equal(t, int64(12), v.StockQuantity)
		assert.Equal(t, before, v.UpdatedAt)
	})

	t.Run("rejects negative", func(t *testing.T) {
		v := newTestVariant(5)
		err := ledger.SetAbsolute(ctx, v, -1)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Equal(t, int64(5), v.StockQuantity)
	})
}

func TestLedgerApplyDelta(t *testing.T) {
	ledger := NewLedger(0, nil, zap.NewNop())
	ctx := context.Background()

	t.Run("adds and subtracts", func(t *testing.T) {
		v := newTestVariant(10)
		require.NoError(t, ledger.ApplyDelta(ctx, v, -3))
		assert.Equal(t, int64(7), v.StockQuantity)
		require.NoError(t, ledger.ApplyDelta(ctx, v, 5))
		assert.Equal(t, int64(12), v.StockQuantity)
	})

	t.Run("clamps at zero", func(t *testing.T) {
		v := newTestVariant(2)
		require.NoError(t, ledger.ApplyDelta(ctx, v, -9))
		assert.Equal(t, int64(0), v.StockQuantity)
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		v := newTestVariant(4)
		before := v.UpdatedAt
		require.NoError(t, ledger.ApplyDelta(ctx, v, 0))
		assert.Equal(t, int64(4), v.StockQuantity)
		assert.Equal(t, before, v.UpdatedAt)
	})
}

func TestLedgerLowStockSignal(t *testing.T) {
	ctx := context.Background()

	t.Run("fires at or below threshold", func(t *testing.T) {
		sink := &captureSink{}
		ledger := NewLedger(5, sink, zap.NewNop())
		v := newTestVariant(10)
		require.NoError(t, ledger.ApplyDelta(ctx, v, -6))
		require.Len(t, sink.calls, 1)
		assert.Equal(t, int64(4), sink.calls[0])
	})

	t.Run("silent above threshold", func(t *testing.T) {
		sink := &captureSink{}
		ledger := NewLedger(5, sink, zap.NewNop())
		v := newTestVariant(10)
		require.NoError(t, ledger.SetAbsolute(ctx, v, 6))
		assert.Empty(t, sink.calls)
	})

	t.Run("sink panic does not fail the write", func(t *testing.T) {
		ledger := NewLedger(5, panicSink{}, zap.NewNop())
		v := newTestVariant(10)
		require.NoError(t, ledger.SetAbsolute(ctx, v, 1))
		assert.Equal(t, int64(1), v.StockQuantity)
	})
}
