package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =============================================================================
// Test Helper Functions
// =============================================================================

func newAcceptanceService(
	events *MockCashEventRepository,
	handovers *MockHandoverRepository,
	facts *MockOrderFactsProvider,
) *AcceptanceService {
	return NewAcceptanceService(events, handovers, facts, stubTxManager{}, nil, nil, zap.NewNop())
}

func pendingMessengerEvent(t *testing.T, custodianID uuid.UUID, amount float64) *treasury.CashEvent {
	t.Helper()
	orderID := uuid.New()
	money := valueobject.NewMoneyFromFloat(amount)
	event, err := treasury.NewCashEvent(
		treasury.EventRef{Source: treasury.CashSourceMessenger, SourceID: orderID},
		&custodianID, &orderID, money, money,
	)
	assert.NoError(t, err)
	return event
}

func messengerFacts(courierID uuid.UUID, productAmount float64) *treasury.OrderCashFacts {
	return &treasury.OrderCashFacts{
		OrderID:           uuid.New(),
		CourierID:         &courierID,
		ProductAmount:     valueobject.NewMoneyFromFloat(productAmount),
		ProductMethod:     treasury.PaymentSubMethodCash,
		DeliveryFeeAmount: valueobject.Zero(),
		DeliveryFeeMethod: treasury.PaymentSubMethodCash,
		PaymentClass:      treasury.OrderPaymentClassStandard,
		TrackedAt:         time.Now(),
	}
}

// =============================================================================
// Test Cases for Accept
// =============================================================================

func TestAcceptanceService_Accept_PendingEvent(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()
	acceptingUser := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	facts := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, facts)

	event := pendingMessengerEvent(t, custodianID, 50_000)
	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	event.AssignToHandover(handover.ID)

	events.On("FindByRef", ctx, event.Ref()).Return(event, nil)
	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)
	events.On("MarkCollected", ctx, event.ID, acceptingUser, mock.AnythingOfType("time.Time")).Return(true, nil)
	events.On("FindByHandover", ctx, handover.ID).Return([]treasury.CashEvent{*event}, nil)
	handovers.On("Save", ctx, mock.AnythingOfType("*treasury.Handover")).Return(nil)

	result, err := service.Accept(ctx, event.Ref().String(), acceptingUser)

	assert.NoError(t, err)
	assert.Equal(t, AcceptStatusAccepted, result.Status)
	assert.Equal(t, handover.ID, *result.HandoverID)
	assert.True(t, event.IsCollected())
	assert.Equal(t, acceptingUser, *event.AcceptedBy)
	events.AssertExpectations(t)
	handovers.AssertExpectations(t)
}

func TestAcceptanceService_Accept_AlreadyCollected(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()
	firstAcceptor := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	facts := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, facts)

	event := pendingMessengerEvent(t, custodianID, 50_000)
	assert.NoError(t, event.Accept(firstAcceptor))

	events.On("FindByRef", ctx, event.Ref()).Return(event, nil)

	result, err := service.Accept(ctx, event.Ref().String(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, AcceptStatusAlreadyAccepted, result.Status)
	// The first acceptance stands untouched
	assert.Equal(t, firstAcceptor, *event.AcceptedBy)
	events.AssertNotCalled(t, "MarkCollected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_LosesConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()
	acceptingUser := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	facts := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, facts)

	event := pendingMessengerEvent(t, custodianID, 25_000)

	events.On("FindByRef", ctx, event.Ref()).Return(event, nil)
	// A concurrent accept committed between the read and the update
	events.On("MarkCollected", ctx, event.ID, acceptingUser, mock.AnythingOfType("time.Time")).Return(false, nil)

	result, err := service.Accept(ctx, event.Ref().String(), acceptingUser)

	assert.NoError(t, err)
	assert.Equal(t, AcceptStatusAlreadyAccepted, result.Status)
	handovers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_MaterializesMessengerDeclaration(t *testing.T) {
	ctx := context.Background()
	courierID := uuid.New()
	acceptingUser := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	factsProvider := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, factsProvider)

	facts := messengerFacts(courierID, 80_000)
	ref := treasury.EventRef{Source: treasury.CashSourceMessenger, SourceID: facts.OrderID}
	periodKey := treasury.PeriodKeyFor(facts.TrackedAt)

	events.On("FindByRef", ctx, ref).Return(nil, nil)
	factsProvider.On("FactsByOrder", ctx, facts.OrderID).Return(facts, nil)
	handovers.On("FindByCustodianAndPeriod", ctx, courierID, periodKey).Return(nil, nil)
	handovers.On("Create", ctx, mock.AnythingOfType("*treasury.Handover")).Return(nil)
	events.On("Create", ctx, mock.AnythingOfType("*treasury.CashEvent")).Return(nil)
	events.On("MarkCollected", ctx, mock.AnythingOfType("uuid.UUID"), acceptingUser, mock.AnythingOfType("time.Time")).Return(true, nil)
	handovers.On("FindByID", ctx, mock.AnythingOfType("uuid.UUID")).Return(treasury.NewHandover(&courierID, periodKey), nil)
	events.On("FindByHandover", ctx, mock.AnythingOfType("uuid.UUID")).Return([]treasury.CashEvent{}, nil)
	handovers.On("Save", ctx, mock.AnythingOfType("*treasury.Handover")).Return(nil)

	result, err := service.Accept(ctx, ref.String(), acceptingUser)

	assert.NoError(t, err)
	assert.Equal(t, AcceptStatusAccepted, result.Status)
	assert.NotNil(t, result.HandoverID)
	events.AssertExpectations(t)
	handovers.AssertExpectations(t)
}

func TestAcceptanceService_Accept_ReplacementOrderRejected(t *testing.T) {
	ctx := context.Background()
	courierID := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	factsProvider := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, factsProvider)

	facts := messengerFacts(courierID, 40_000)
	facts.PaymentClass = treasury.OrderPaymentClassReplacement
	ref := treasury.EventRef{Source: treasury.CashSourceMessenger, SourceID: facts.OrderID}

	events.On("FindByRef", ctx, ref).Return(nil, nil)
	factsProvider.On("FactsByOrder", ctx, facts.OrderID).Return(facts, nil)

	result, err := service.Accept(ctx, ref.String(), uuid.New())

	assert.ErrorIs(t, err, treasury.ErrReplacementOrder)
	assert.Nil(t, result)
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_MissingWarehouseEvent(t *testing.T) {
	ctx := context.Background()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	factsProvider := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, factsProvider)

	ref := treasury.EventRef{Source: treasury.CashSourceWarehouse, SourceID: uuid.New()}
	events.On("FindByRef", ctx, ref).Return(nil, nil)

	result, err := service.Accept(ctx, ref.String(), uuid.New())

	// Warehouse rows are inserted upstream; they are never materialized here
	assert.ErrorIs(t, err, treasury.ErrEventNotFound)
	assert.Nil(t, result)
	factsProvider.AssertNotCalled(t, "FactsByOrder", mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_ClosedHandoverRejected(t *testing.T) {
	ctx := context.Background()
	custodianID := uuid.New()

	events := new(MockCashEventRepository)
	handovers := new(MockHandoverRepository)
	factsProvider := new(MockOrderFactsProvider)
	service := newAcceptanceService(events, handovers, factsProvider)

	event := pendingMessengerEvent(t, custodianID, 30_000)
	handover := treasury.NewHandover(&custodianID, treasury.PeriodKeyFor(time.Now()))
	event.AssignToHandover(handover.ID)
	approver := uuid.New()
	now := time.Now()
	handover.ApprovedBy = &approver
	handover.ApprovedAt = &now

	events.On("FindByRef", ctx, event.Ref()).Return(event, nil)
	handovers.On("FindByID", ctx, handover.ID).Return(handover, nil)

	result, err := service.Accept(ctx, event.Ref().String(), uuid.New())

	assert.ErrorIs(t, err, treasury.ErrHandoverClosed)
	assert.Nil(t, result)
	assert.False(t, event.IsCollected())
	events.AssertNotCalled(t, "MarkCollected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_InvalidRef(t *testing.T) {
	service := newAcceptanceService(new(MockCashEventRepository), new(MockHandoverRepository), new(MockOrderFactsProvider))

	result, err := service.Accept(context.Background(), "not-a-ref", uuid.New())

	assert.Error(t, err)
	assert.Nil(t, result)
}
