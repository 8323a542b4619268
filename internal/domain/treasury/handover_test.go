package treasury

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createHandoverMembers(t *testing.T, amounts []int64, collected int) []CashEvent {
	members := make([]CashEvent, 0, len(amounts))
	for i, amount := range amounts {
		ev := createTestCashEvent(t, CashSourceMessenger)
		ev.ExpectedAmount = valueobject.NewMoneyFromInt(amount)
		ev.DeclaredAmount = valueobject.NewMoneyFromInt(amount)
		if i < collected {
			require.NoError(t, ev.Accept(uuid.New()))
		}
		members = append(members, *ev)
	}
	return members
}

func TestPeriodKeyFor(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 535, time.UTC)
	key := PeriodKeyFor(ts)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), key)
}

func TestHandover_Recompute_StatusDerivation(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		collected int
		want      HandoverStatus
	}{
		{"no members accepted", 3, 0, HandoverStatusPending},
		{"some members accepted", 3, 1, HandoverStatusPartial},
		{"almost all accepted", 3, 2, HandoverStatusPartial},
		{"all members accepted", 3, 3, HandoverStatusCompleted},
		{"single member accepted", 1, 1, HandoverStatusCompleted},
		{"empty member set", 0, 0, HandoverStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			custodian := uuid.New()
			h := NewHandover(&custodian, time.Now())
			amounts := make([]int64, tt.total)
			for i := range amounts {
				amounts[i] = 10_000
			}
			members := createHandoverMembers(t, amounts, tt.collected)

			require.NoError(t, h.Recompute(members))
			assert.Equal(t, tt.want, h.Status)
		})
	}
}

func TestHandover_Recompute_DerivesAmounts(t *testing.T) {
	custodian := uuid.New()
	h := NewHandover(&custodian, time.Now())
	members := createHandoverMembers(t, []int64{20_000, 30_000, 50_000}, 2)

	require.NoError(t, h.Recompute(members))
	assert.Equal(t, "100000", h.ExpectedAmount.String())
	assert.Equal(t, "100000", h.DeclaredAmount.String())
}

func TestHandover_Close_Completed(t *testing.T) {
	custodian := uuid.New()
	approver := uuid.New()
	h := NewHandover(&custodian, time.Now())
	members := createHandoverMembers(t, []int64{20_000, 30_000}, 2)

	require.NoError(t, h.Close(approver, members))

	assert.Equal(t, HandoverStatusCompleted, h.Status)
	assert.True(t, h.IsClosed())
	require.NotNil(t, h.ApprovedBy)
	assert.Equal(t, approver, *h.ApprovedBy)
	assert.NotNil(t, h.ApprovedAt)

	events := h.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "HandoverClosed", events[0].EventType())
}

func TestHandover_Close_ForcedDiscrepancy(t *testing.T) {
	// Closing with 2 of 3 members accepted is a forced close: the books
	// are closed anyway but the handover is flagged for audit.
	custodian := uuid.New()
	h := NewHandover(&custodian, time.Now())
	members := createHandoverMembers(t, []int64{20_000, 30_000, 50_000}, 2)

	require.NoError(t, h.Close(uuid.New(), members))

	assert.Equal(t, HandoverStatusDiscrepancy, h.Status)
	assert.True(t, h.IsClosed())
	assert.Equal(t, "100000", h.ExpectedAmount.String())
}

func TestHandover_Close_EmptyFails(t *testing.T) {
	custodian := uuid.New()
	h := NewHandover(&custodian, time.Now())

	err := h.Close(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrHandoverEmpty)
	assert.False(t, h.IsClosed())
}

func TestHandover_Close_Terminal(t *testing.T) {
	custodian := uuid.New()
	h := NewHandover(&custodian, time.Now())
	members := createHandoverMembers(t, []int64{20_000}, 0)

	require.NoError(t, h.Close(uuid.New(), members))
	require.Equal(t, HandoverStatusDiscrepancy, h.Status)

	// Second close and any recomputation must both be rejected
	assert.ErrorIs(t, h.Close(uuid.New(), members), ErrHandoverClosed)
	assert.ErrorIs(t, h.Recompute(members), ErrHandoverClosed)
}

func TestVirtualHandover_AlwaysCompleted(t *testing.T) {
	v := VirtualHandover{
		Class:          WarehouseClassCounter,
		PeriodKey:      PeriodKeyFor(time.Now()),
		ExpectedAmount: valueobject.NewMoneyFromInt(75_000),
		DeclaredAmount: valueobject.NewMoneyFromInt(75_000),
		EventCount:     3,
	}
	assert.Equal(t, HandoverStatusCompleted, v.Status())
}

func TestWarehouseClass_IsValid(t *testing.T) {
	assert.True(t, WarehouseClassCounter.IsValid())
	assert.True(t, WarehouseClassAdmin.IsValid())
	assert.False(t, WarehouseClass("DRIVER").IsValid())
}
