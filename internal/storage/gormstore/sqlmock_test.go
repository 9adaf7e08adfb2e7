package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// newMockStore returns a postgres-dialect Store over sqlmock.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "sqlmock new")
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "gorm open")

	return &Store{db: gdb, dialect: DialectPostgres}, mock
}

func TestPostgresErrorPropagation(t *testing.T) {
	ctx := context.Background()

	t.Run("driver error is wrapped, not masked", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

		_, err := store.GetUserByID(ctx, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "customers"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := store.GetCustomer(ctx, "c1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of missing row is ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM "invoices"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.DeleteInvoice(ctx, "i1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed list surfaces the error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "payments"`).WillReturnError(errors.New("timeout"))

		_, err := store.ListPayments(ctx, storage.PaymentFilter{UserID: "u1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list payments")
	})

	t.Run("update of missing row is ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE "customers" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateCustomer(ctx, &models.Customer{ID: "c1", Name: "x", Email: "x@example.com", Type: models.CustomerTypeClient})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
