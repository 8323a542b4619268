package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newHandoverService(handovers *MockHandoverRepository, events *MockCashEventRepository) *HandoverService {
	return NewHandoverService(handovers, events, stubTxManager{}, nil, nil, zap.NewNop())
}

func TestHandoverService_Close_AllAccepted(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()
	approver := uuid.New()

	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	member := pendingMessengerEvent(t, custodianID, 60_000)
	member.AssignToHandover(handover.ID)
	assert.NoError(t, member.Accept(approver))

	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)
	events.On("FindByHandover", ctx, handover.ID).Return([]treasury.CashEvent{*member}, nil)
	handovers.On("Save", ctx, handover).Return(nil)

	closed, err := service.Close(ctx, handover.ID, approver)

	assert.NoError(t, err)
	assert.Equal(t, treasury.HandoverStatusCompleted, closed.Status)
	assert.True(t, closed.IsClosed())
	assert.Equal(t, approver, *closed.ApprovedBy)
	handovers.AssertExpectations(t)
}

func TestHandoverService_Close_ForcedWithPendingMembers(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()
	approver := uuid.New()

	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	accepted := pendingMessengerEvent(t, custodianID, 30_000)
	assert.NoError(t, accepted.Accept(approver))
	pending := pendingMessengerEvent(t, custodianID, 20_000)

	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)
	events.On("FindByHandover", ctx, handover.ID).Return([]treasury.CashEvent{*accepted, *pending}, nil)
	handovers.On("Save", ctx, handover).Return(nil)

	closed, err := service.Close(ctx, handover.ID, approver)

	assert.NoError(t, err)
	assert.Equal(t, treasury.HandoverStatusDiscrepancy, closed.Status)
	assert.True(t, closed.IsClosed())
}

func TestHandoverService_Close_NotFound(t *testing.T) {
	ctx := context.Background()
	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	id := uuid.New()
	handovers.On("FindByID", ctx, id).Return(nil, nil)

	closed, err := service.Close(ctx, id, uuid.New())

	assert.ErrorIs(t, err, treasury.ErrHandoverNotFound)
	assert.Nil(t, closed)
}

func TestHandoverService_Close_AlreadyClosed(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()

	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	member := pendingMessengerEvent(t, custodianID, 10_000)
	assert.NoError(t, member.Accept(uuid.New()))
	assert.NoError(t, handover.Close(uuid.New(), []treasury.CashEvent{*member}))

	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)
	events.On("FindByHandover", ctx, handover.ID).Return([]treasury.CashEvent{*member}, nil)

	closed, err := service.Close(ctx, handover.ID, uuid.New())

	assert.ErrorIs(t, err, treasury.ErrHandoverClosed)
	assert.Nil(t, closed)
	handovers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandoverService_GetHandover_RecomputesStatus(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()

	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	accepted := pendingMessengerEvent(t, custodianID, 45_000)
	assert.NoError(t, accepted.Accept(uuid.New()))
	pending := pendingMessengerEvent(t, custodianID, 15_000)

	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)
	events.On("FindByHandover", ctx, handover.ID).Return([]treasury.CashEvent{*accepted, *pending}, nil)

	got, members, err := service.GetHandover(ctx, handover.ID)

	assert.NoError(t, err)
	assert.Len(t, members, 2)
	// Status is derived from the members on read, not trusted from storage
	assert.Equal(t, treasury.HandoverStatusPartial, got.Status)
	assert.True(t, got.ExpectedAmount.Equals(accepted.ExpectedAmount.Add(pending.ExpectedAmount)))
}

func TestHandoverService_VirtualWarehouseHandovers(t *testing.T) {
	ctx := context.Background()
	handovers := new(MockHandoverRepository)
	events := new(MockCashEventRepository)
	service := newHandoverService(handovers, events)

	day := treasury.PeriodKeyFor(time.Now())
	groups := []treasury.VirtualHandover{
		{Class: treasury.WarehouseClassCounter, PeriodKey: day, EventCount: 3},
		{Class: treasury.WarehouseClassAdmin, PeriodKey: day, EventCount: 1},
	}
	handovers.On("VirtualWarehouseHandovers", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(groups, nil)

	got, err := service.VirtualWarehouseHandovers(ctx, nil, nil)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, treasury.HandoverStatusCompleted, got[0].Status())
}
