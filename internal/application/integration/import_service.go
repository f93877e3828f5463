package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
)

// ImportFailure records why one pulled entity could not be committed
type ImportFailure struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

// ImportSummary aggregates a bulk import run. Per-entity commits are
// independent; one failure never rolls back its siblings.
type ImportSummary struct {
	Status       string          `json:"status"`
	TotalCount   int             `json:"total_count"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	FailedItems  []ImportFailure `json:"failed_items,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// Import run status values
const (
	ImportStatusCompleted = "completed"
	ImportStatusPartial   = "partial"
	ImportStatusFailed    = "failed"
)

// ImportService pulls products from the platform and reconciles them
// through the shared pipeline. Remote fetches happen outside any lock.
type ImportService struct {
	platform   integration.Platform
	normalizer *Normalizer
	orch       *Orchestrator
	pageSize   int
	workers    int
	logger     *zap.Logger
}

// NewImportService creates an import service
func NewImportService(platform integration.Platform, orch *Orchestrator, pageSize, workers int, logger *zap.Logger) *ImportService {
	if pageSize < 1 {
		pageSize = 50
	}
	if workers < 1 {
		workers = 1
	}
	return &ImportService{
		platform:   platform,
		normalizer: NewNormalizer(logger),
		orch:       orch,
		pageSize:   pageSize,
		workers:    workers,
		logger:     logger,
	}
}

// ImportProduct pulls one product by external id and reconciles it
func (s *ImportService) ImportProduct(ctx context.Context, externalID string) (integration.UnitResult, error) {
	remote, err := s.platform.FetchProduct(ctx, externalID)
	if err != nil {
		return integration.UnitResult{}, fmt.Errorf("fetching product %s: %w", externalID, err)
	}
	rec, err := s.normalizer.FromRemoteProduct(remote)
	if err != nil {
		return integration.UnitResult{}, err
	}
	return s.orch.Run(ctx, rec), nil
}

// ImportAll walks the remote product listing page by page and
// reconciles every product under a bounded worker pool. Each product
// commits in its own transaction; the summary reports the stragglers.
func (s *ImportService) ImportAll(ctx context.Context) (*ImportSummary, error) {
	summary := &ImportSummary{StartedAt: time.Now()}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)

	record := func(externalID string, result integration.UnitResult) {
		mu.Lock()
		defer mu.Unlock()
		summary.TotalCount++
		if result.State == integration.StateCommitted {
			summary.SuccessCount++
			return
		}
		summary.FailedCount++
		summary.FailedItems = append(summary.FailedItems, ImportFailure{
			ExternalID: externalID,
			Reason:     result.Error,
		})
	}

	pageInfo := ""
	for {
		page, err := s.platform.ListProducts(ctx, integration.PageRequest{
			Limit:    s.pageSize,
			PageInfo: pageInfo,
		})
		if err != nil {
			wg.Wait()
			summary.FinishedAt = time.Now()
			summary.Status = ImportStatusFailed
			return summary, fmt.Errorf("listing products: %w", err)
		}

		for i := range page.Products {
			remote := page.Products[i]

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				summary.FinishedAt = time.Now()
				summary.Status = ImportStatusFailed
				return summary, ctx.Err()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				rec, err := s.normalizer.FromRemoteProduct(&remote)
				if err != nil {
					record(remote.ID, integration.UnitResult{
						State: integration.StateFailed,
						Error: err.Error(),
					})
					return
				}
				record(remote.ID, s.orch.Run(ctx, rec))
			}()
		}

		if page.NextPageInfo == "" {
			break
		}
		pageInfo = page.NextPageInfo
	}

	wg.Wait()
	summary.FinishedAt = time.Now()
	switch {
	case summary.FailedCount == 0:
		summary.Status = ImportStatusCompleted
	case summary.SuccessCount > 0:
		summary.Status = ImportStatusPartial
	default:
		summary.Status = ImportStatusFailed
	}

	s.logger.Info("bulk import finished",
		zap.String("status", summary.Status),
		zap.Int("total", summary.TotalCount),
		zap.Int("succeeded", summary.SuccessCount),
		zap.Int("failed", summary.FailedCount))
	return summary, nil
}
