package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/inventory"
	"github.com/shopsync/backend/internal/domain/shared"
)

// errAlreadyProcessed aborts the transaction when the durable dedup
// insert finds the event id already recorded. Nothing was written, so
// the rollback it triggers is a no-op.
var errAlreadyProcessed = errors.New("event already processed")

// Orchestrator runs one sync record through the pipeline inside a
// single database transaction: record the event id, resolve identities,
// merge the snapshot, apply stock, commit. Any failure rolls the whole
// unit back and leaves local state untouched.
type Orchestrator struct {
	uow         integration.UnitOfWork
	idempotency shared.IdempotencyStore
	merger      *integration.Merger
	ledger      *inventory.Ledger
	eventTTL    time.Duration
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator. The idempotency store is
// advisory and may be nil; the durable event record is the authority.
func NewOrchestrator(
	uow integration.UnitOfWork,
	idempotency shared.IdempotencyStore,
	ledger *inventory.Ledger,
	eventTTL time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		uow:         uow,
		idempotency: idempotency,
		merger:      integration.NewMerger(),
		ledger:      ledger,
		eventTTL:    eventTTL,
		logger:      logger,
	}
}

// Run processes one record and reports its terminal state. Run never
// returns an error; failures are carried in the result so bulk callers
// can aggregate them.
func (o *Orchestrator) Run(ctx context.Context, rec *integration.SyncRecord) integration.UnitResult {
	// Webhook records arrive here with their signature already
	// verified; imports never pass through authentication.
	state := integration.StateAuthenticated
	if rec.Origin == integration.OriginImport {
		state = integration.StateReceived
	}
	result := integration.UnitResult{
		EventID:    rec.EventID,
		ExternalID: rec.ExternalProductID,
		State:      state,
	}

	if err := rec.Validate(); err != nil {
		return o.fail(result, err)
	}

	// Advisory fast path. A store error here is logged and ignored;
	// the in-transaction insert below still guarantees dedup.
	if rec.EventID != "" && o.idempotency != nil {
		seen, err := o.idempotency.IsProcessed(ctx, rec.EventID)
		if err != nil {
			o.logger.Warn("idempotency pre-check failed", zap.String("event_id", rec.EventID), zap.Error(err))
		} else if seen {
			result.State = integration.StateCommitted
			result.Deduplicated = true
			return result
		}
	}

	err := o.uow.Execute(ctx, func(ctx context.Context, repos integration.Repositories) error {
		if rec.EventID != "" {
			inserted, err := repos.Events.Insert(ctx, integration.NewProcessedWebhookEvent(rec.EventID, rec.Topic))
			if err != nil {
				return fmt.Errorf("%v: %w", err, integration.ErrPersistence)
			}
			if !inserted {
				return errAlreadyProcessed
			}
		}

		resolver := integration.NewResolver(repos.Products, repos.Variants)

		if rec.Delete {
			if err := o.applyDelete(ctx, repos, rec.ExternalProductID); err != nil {
				return err
			}
			result.State = integration.StateResolved
			return nil
		}

		if rec.Product != nil {
			if err := o.applyProduct(ctx, repos, resolver, rec, &result); err != nil {
				return err
			}
		}

		if len(rec.Stock) > 0 {
			if err := o.applyStock(ctx, repos, resolver, rec); err != nil {
				return err
			}
			result.State = integration.StateStockApplied
		}
		return nil
	})

	switch {
	case err == nil:
		result.State = integration.StateCommitted
		o.markProcessed(ctx, rec)
		return result
	case errors.Is(err, errAlreadyProcessed):
		result.State = integration.StateCommitted
		result.Deduplicated = true
		return result
	default:
		return o.fail(result, err)
	}
}

func (o *Orchestrator) fail(result integration.UnitResult, err error) integration.UnitResult {
	o.logger.Error("sync unit failed",
		zap.String("event_id", result.EventID),
		zap.String("external_id", result.ExternalID),
		zap.String("from_state", string(result.State)),
		zap.Error(err))
	result.State = integration.StateFailed
	result.Error = err.Error()
	return result
}

// markProcessed reflects a committed event into the advisory store
func (o *Orchestrator) markProcessed(ctx context.Context, rec *integration.SyncRecord) {
	if rec.EventID == "" || o.idempotency == nil {
		return
	}
	if _, err := o.idempotency.MarkProcessed(ctx, rec.EventID, o.eventTTL); err != nil {
		o.logger.Warn("idempotency mark failed", zap.String("event_id", rec.EventID), zap.Error(err))
	}
}

// applyDelete removes the local product bound to the external id.
// Deleting an unknown product is a no-op.
func (o *Orchestrator) applyDelete(ctx context.Context, repos integration.Repositories, externalID string) error {
	product, err := repos.Products.FindByExternalIDForUpdate(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		o.logger.Info("delete for unknown product ignored", zap.String("external_id", externalID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%v: %w", err, integration.ErrPersistence)
	}
	if err := repos.Products.Delete(ctx, product.ID); err != nil {
		return fmt.Errorf("%v: %w", err, integration.ErrPersistence)
	}
	return nil
}

// applyProduct resolves the target product under a row lock, merges the
// snapshot, and saves. An unknown product becomes a create; a snapshot
// whose variants already belong to a different product is a conflict.
func (o *Orchestrator) applyProduct(ctx context.Context, repos integration.Repositories, resolver *integration.Resolver, rec *integration.SyncRecord, result *integration.UnitResult) error {
	snap := rec.Product

	product, err := o.lockProduct(ctx, repos, resolver, snap)
	if err != nil {
		return err
	}
	result.State = integration.StateResolved

	if product == nil {
		product, err = o.merger.NewProductFromSnapshot(snap)
		if err != nil {
			return err
		}
	} else {
		if err := o.guardVariantBindings(ctx, resolver, product, snap); err != nil {
			return err
		}
		if err := o.merger.MergeProduct(product, snap); err != nil {
			return err
		}
	}

	if err := repos.Products.Save(ctx, product); err != nil {
		return fmt.Errorf("saving product %s: %v: %w", snap.ExternalID, err, integration.ErrPersistence)
	}
	result.State = integration.StateMerged
	return nil
}

// guardVariantBindings rejects a snapshot whose variant identifiers
// already belong to variants of another product. The merger only sees
// the target product's own variants, so the cross-product check has to
// happen here before any new variant is created.
func (o *Orchestrator) guardVariantBindings(ctx context.Context, resolver *integration.Resolver, product *catalog.Product, snap *integration.ProductSnapshot) error {
	for _, vs := range snap.Variants {
		res, err := resolver.ResolveVariant(ctx, vs)
		if err != nil {
			return fmt.Errorf("%v: %w", err, integration.ErrPersistence)
		}
		if res.Variant != nil && res.Variant.ProductID != product.ID {
			return fmt.Errorf("variant %s is already bound to product %s: %w",
				vs.ExternalID, res.Variant.ProductID, integration.ErrIdentityConflict)
		}
	}
	return nil
}

// lockProduct finds and row-locks the product the snapshot targets.
// When the product external id is unknown, the snapshot's variant
// identifiers may still point at an existing product (update-as-create
// of a partially-synced record); all variant hits must agree on one
// product or the record conflicts.
func (o *Orchestrator) lockProduct(ctx context.Context, repos integration.Repositories, resolver *integration.Resolver, snap *integration.ProductSnapshot) (*catalog.Product, error) {
	product, err := repos.Products.FindByExternalIDForUpdate(ctx, snap.ExternalID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%v: %w", err, integration.ErrPersistence)
	}
	if product != nil {
		return product, nil
	}

	var adoptedID uuid.UUID
	for _, vs := range snap.Variants {
		res, err := resolver.ResolveVariant(ctx, vs)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, integration.ErrPersistence)
		}
		if res.Variant == nil {
			continue
		}
		if adoptedID != uuid.Nil && res.Variant.ProductID != adoptedID {
			return nil, fmt.Errorf("snapshot %s spans products %s and %s: %w",
				snap.ExternalID, adoptedID, res.Variant.ProductID, integration.ErrIdentityConflict)
		}
		adoptedID = res.Variant.ProductID
	}
	if adoptedID == uuid.Nil {
		return nil, nil
	}

	// The snapshot belongs to a product we know only by its variants.
	// Merging will bind the product external id, and the first-writer
	// rule turns a mismatch into a conflict.
	product, err = repos.Products.FindByIDForUpdate(ctx, adoptedID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, integration.ErrPersistence)
	}
	return product, nil
}

// applyStock resolves each instruction to a row-locked variant and
// runs it through the ledger. Instructions for unknown variants are
// logged and skipped; they cannot be applied until the variant syncs.
func (o *Orchestrator) applyStock(ctx context.Context, repos integration.Repositories, resolver *integration.Resolver, rec *integration.SyncRecord) error {
	for _, instr := range rec.Stock {
		res, err := resolver.ResolveStockTarget(ctx, instr)
		if err != nil {
			return fmt.Errorf("%v: %w", err, integration.ErrPersistence)
		}
		if res.Variant == nil {
			o.logger.Warn("stock instruction for unknown variant skipped",
				zap.String("topic", rec.Topic),
				zap.String("external_variant_id", instr.ExternalVariantID),
				zap.String("inventory_item_id", instr.InventoryItemID),
				zap.String("sku", instr.SKU))
			continue
		}

		variant, err := repos.Variants.FindByIDForUpdate(ctx, res.Variant.ID)
		if err != nil {
			return fmt.Errorf("locking variant %s: %v: %w", res.Variant.ID, err, integration.ErrPersistence)
		}

		switch instr.Kind {
		case integration.StockAbsolute:
			err = o.ledger.SetAbsolute(ctx, variant, instr.Quantity)
		case integration.StockDelta:
			err = o.ledger.ApplyDelta(ctx, variant, instr.Quantity)
		default:
			err = fmt.Errorf("unknown stock kind %q: %w", instr.Kind, integration.ErrValidation)
		}
		if err != nil {
			return err
		}

		if err := repos.Variants.Save(ctx, variant); err != nil {
			return fmt.Errorf("saving variant %s: %v: %w", variant.ID, err, integration.ErrPersistence)
		}
	}
	return nil
}
