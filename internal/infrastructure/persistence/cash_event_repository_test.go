package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock, shared by the
// repository tests in this package
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

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

	return gormDB, mock, mockDB
}

func TestCashEventRepository_MarkCollected(t *testing.T) {
	t.Run("flips a pending event exactly once", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		mock.ExpectExec(`UPDATE "cash_events" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkCollected(context.Background(), uuid.New(), uuid.New(), time.Now())

		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false when another accept won the race", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		// Row already COLLECTED, the status guard in the WHERE clause
		// matches nothing
		mock.ExpectExec(`UPDATE "cash_events" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkCollected(context.Background(), uuid.New(), uuid.New(), time.Now())

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		mock.ExpectExec(`UPDATE "cash_events" SET`).
			WillReturnError(assert.AnError)

		ok, err := repo.MarkCollected(context.Background(), uuid.New(), uuid.New(), time.Now())

		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCashEventRepository_FindByRef(t *testing.T) {
	t.Run("returns nil without error when no row matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "cash_events" WHERE source`).
			WillReturnError(gorm.ErrRecordNotFound)

		event, err := repo.FindByRef(context.Background(), treasury.EventRef{
			Source:   treasury.CashSourceMessenger,
			SourceID: uuid.New(),
		})

		require.NoError(t, err)
		assert.Nil(t, event)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCashEventRepository_SumAccepted(t *testing.T) {
	t.Run("sums collected events of the given sources", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		rows := sqlmock.NewRows([]string{"sum"}).AddRow("175000")
		mock.ExpectQuery(`SELECT SUM\(declared_amount\) FROM "cash_events"`).
			WillReturnRows(rows)

		total, err := repo.SumAccepted(context.Background(),
			[]treasury.CashSource{treasury.CashSourceMessenger, treasury.CashSourceAdhoc}, nil, nil)

		require.NoError(t, err)
		assert.True(t, total.Amount().Equal(decimal.NewFromInt(175_000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when nothing has been accepted", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashEventRepository(gormDB)

		// SUM over an empty set is NULL
		rows := sqlmock.NewRows([]string{"sum"}).AddRow(nil)
		mock.ExpectQuery(`SELECT SUM\(declared_amount\) FROM "cash_events"`).
			WillReturnRows(rows)

		total, err := repo.SumAccepted(context.Background(),
			[]treasury.CashSource{treasury.CashSourceWarehouse}, nil, nil)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
