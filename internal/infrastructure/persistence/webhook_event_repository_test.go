package persistence

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/shared"
)

// newMockWebhookEventRepository creates a GormWebhookEventRepository with a mocked SQL connection
func newMockWebhookEventRepository(t *testing.T) (*GormWebhookEventRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWebhookEventRepository(gormDB), mock, mockDB
}

func TestWebhookEventRepository_Insert(t *testing.T) {
	t.Run("first insert is recorded", func(t *testing.T) {
		repo, mock, mockDB := newMockWebhookEventRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "processed_webhook_events"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		inserted, err := repo.Insert(context.Background(), integration.NewProcessedWebhookEvent("evt-1", "products/update"))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflicting insert reports duplicate", func(t *testing.T) {
		repo, mock, mockDB := newMockWebhookEventRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "processed_webhook_events"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		inserted, err := repo.Insert(context.Background(), integration.NewProcessedWebhookEvent("evt-1", "products/update"))
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors propagate", func(t *testing.T) {
		repo, mock, mockDB := newMockWebhookEventRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "processed_webhook_events"`)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.Insert(context.Background(), integration.NewProcessedWebhookEvent("evt-2", "products/create"))
		assert.Error(t, err)
	})
}

func TestWebhookEventRepository_FindByEventID(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockWebhookEventRepository(t)
		defer mockDB.Close()

		event := integration.NewProcessedWebhookEvent("evt-3", "orders/create")
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "event_id", "topic", "processed_at"}).
			AddRow(event.ID, event.CreatedAt, event.UpdatedAt, event.EventID, event.Topic, event.ProcessedAt)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "processed_webhook_events"`)).
			WithArgs("evt-3", 1).
			WillReturnRows(rows)

		found, err := repo.FindByEventID(context.Background(), "evt-3")
		require.NoError(t, err)
		assert.Equal(t, "evt-3", found.EventID)
		assert.Equal(t, "orders/create", found.Topic)
	})

	t.Run("missing record maps to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockWebhookEventRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "processed_webhook_events"`)).
			WithArgs("evt-missing", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByEventID(context.Background(), "evt-missing")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestWebhookEventRepository_DeleteOlderThan(t *testing.T) {
	repo, mock, mockDB := newMockWebhookEventRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "processed_webhook_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 7))

	pruned, err := repo.DeleteOlderThan(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pruned)
}

func TestWebhookEventDedupViaSQLite(t *testing.T) {
	// End-to-end dedup behavior against a real conflict target.
	db := setupCatalogTestDB(t)
	repo := NewGormWebhookEventRepository(db)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, integration.NewProcessedWebhookEvent("evt-real", "products/update"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, integration.NewProcessedWebhookEvent("evt-real", "products/update"))
	require.NoError(t, err)
	assert.False(t, inserted)

	found, err := repo.FindByEventID(ctx, "evt-real")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), found.ProcessedAt, time.Minute)
}
