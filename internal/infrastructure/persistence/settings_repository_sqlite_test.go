package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SettingModelSQLite is a SQLite-compatible version of SettingModel for testing
type SettingModelSQLite struct {
	ID        string `gorm:"primaryKey"`
	Key       string `gorm:"not null;uniqueIndex"`
	Value     string `gorm:"not null"`
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SettingModelSQLite) TableName() string {
	return "settings"
}

// BaseBalanceAuditModelSQLite is a SQLite-compatible version of
// BaseBalanceAuditModel for testing
type BaseBalanceAuditModelSQLite struct {
	ID            string          `gorm:"primaryKey"`
	PreviousValue decimal.Decimal `gorm:"column:previous_value;not null"`
	NewValue      decimal.Decimal `gorm:"column:new_value;not null"`
	ChangedBy     string          `gorm:"not null"`
	ChangedAt     time.Time       `gorm:"not null;index"`
}

func (BaseBalanceAuditModelSQLite) TableName() string {
	return "base_balance_audits"
}

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&SettingModelSQLite{}, &BaseBalanceAuditModelSQLite{})
	require.NoError(t, err)

	return db
}

func TestSettingsRepository_RoundTrip(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	t.Run("set then get returns the stored value", func(t *testing.T) {
		changedBy := uuid.New()

		err := repo.SetNumber(ctx, settings.KeyDepositTolerance, decimal.NewFromInt(2_500), changedBy)
		require.NoError(t, err)

		value, err := repo.GetNumber(ctx, settings.KeyDepositTolerance, settings.DefaultDepositTolerance)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromInt(2_500)))
	})

	t.Run("second set overwrites instead of duplicating", func(t *testing.T) {
		changedBy := uuid.New()

		require.NoError(t, repo.SetNumber(ctx, settings.KeyWithdrawalApprovalThreshold, decimal.NewFromInt(100_000), changedBy))
		require.NoError(t, repo.SetNumber(ctx, settings.KeyWithdrawalApprovalThreshold, decimal.NewFromInt(250_000), changedBy))

		value, err := repo.GetNumber(ctx, settings.KeyWithdrawalApprovalThreshold, settings.DefaultWithdrawalApprovalThreshold)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromInt(250_000)))

		var count int64
		require.NoError(t, db.Model(&SettingModelSQLite{}).
			Where("key = ?", settings.KeyWithdrawalApprovalThreshold).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown key falls back to the default", func(t *testing.T) {
		value, err := repo.GetNumber(ctx, settings.KeyBaseBalance, settings.DefaultBaseBalance)
		require.NoError(t, err)
		assert.True(t, value.Equal(settings.DefaultBaseBalance))
	})
}

func TestSettingsRepository_BaseBalanceAudit(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	firstUser := uuid.New()
	secondUser := uuid.New()

	require.NoError(t, repo.SetNumber(ctx, settings.KeyBaseBalance, decimal.NewFromInt(500_000), firstUser))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.SetNumber(ctx, settings.KeyBaseBalance, decimal.NewFromInt(750_000), secondUser))

	t.Run("every base balance write appends an audit row", func(t *testing.T) {
		trail, err := repo.BaseBalanceAuditTrail(ctx, 10)
		require.NoError(t, err)
		require.Len(t, trail, 2)
	})

	t.Run("trail is newest first and chains previous to new", func(t *testing.T) {
		trail, err := repo.BaseBalanceAuditTrail(ctx, 10)
		require.NoError(t, err)
		require.Len(t, trail, 2)

		assert.True(t, trail[0].NewValue.Equal(decimal.NewFromInt(750_000)))
		assert.True(t, trail[0].PreviousValue.Equal(decimal.NewFromInt(500_000)))
		assert.Equal(t, secondUser, trail[0].ChangedBy)

		assert.True(t, trail[1].NewValue.Equal(decimal.NewFromInt(500_000)))
		assert.True(t, trail[1].PreviousValue.Equal(settings.DefaultBaseBalance))
		assert.Equal(t, firstUser, trail[1].ChangedBy)
	})

	t.Run("limit caps the trail length", func(t *testing.T) {
		trail, err := repo.BaseBalanceAuditTrail(ctx, 1)
		require.NoError(t, err)
		require.Len(t, trail, 1)
		assert.True(t, trail[0].NewValue.Equal(decimal.NewFromInt(750_000)))
	})
}
