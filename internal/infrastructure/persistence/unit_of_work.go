package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopsync/backend/internal/domain/integration"
)

// GormUnitOfWork runs pipeline work inside one database transaction,
// handing the callback repositories bound to that transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute opens a transaction, builds transaction-scoped repositories,
// and commits if fn returns nil. Any error rolls the whole unit back.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos integration.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := integration.Repositories{
			Products: NewGormProductRepository(tx),
			Variants: NewGormVariantRepository(tx),
			Events:   NewGormWebhookEventRepository(tx),
		}
		return fn(ctx, repos)
	})
}

var _ integration.UnitOfWork = (*GormUnitOfWork)(nil)
