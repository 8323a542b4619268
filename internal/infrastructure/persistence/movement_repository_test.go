package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementRepository_MarkApproved(t *testing.T) {
	t.Run("approves a pending withdrawal", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormMovementRepository(gormDB)

		mock.ExpectExec(`UPDATE "cash_movements" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkApproved(context.Background(), uuid.New(), uuid.New(), time.Now())

		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false for an already approved movement", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormMovementRepository(gormDB)

		// The WHERE clause pins type and approval status, so a second
		// approval matches no rows and the first approver is preserved
		mock.ExpectExec(`UPDATE "cash_movements" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkApproved(context.Background(), uuid.New(), uuid.New(), time.Now())

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMovementRepository_SumApprovedByType(t *testing.T) {
	t.Run("sums only approved movements of the type", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormMovementRepository(gormDB)

		rows := sqlmock.NewRows([]string{"sum"}).AddRow("50000")
		mock.ExpectQuery(`SELECT SUM\(amount\) FROM "cash_movements"`).
			WillReturnRows(rows)

		total, err := repo.SumApprovedByType(context.Background(), treasury.MovementTypeWithdrawal, nil, nil)

		require.NoError(t, err)
		assert.True(t, total.Amount().Equal(decimal.NewFromInt(50_000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero for an empty ledger", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormMovementRepository(gormDB)

		rows := sqlmock.NewRows([]string{"sum"}).AddRow(nil)
		mock.ExpectQuery(`SELECT SUM\(amount\) FROM "cash_movements"`).
			WillReturnRows(rows)

		total, err := repo.SumApprovedByType(context.Background(), treasury.MovementTypeExtraIncome, nil, nil)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
