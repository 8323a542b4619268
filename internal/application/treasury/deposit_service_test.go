package treasury

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newDepositService(
	deposits *MockDepositRepository,
	facts *MockOrderFactsProvider,
	settings *MockSettingsProvider,
) *DepositService {
	return NewDepositService(deposits, facts, settings, nil, stubTxManager{}, nil, nil, zap.NewNop())
}

func toleranceOf(amount int64) valueobject.Money {
	return valueobject.NewMoneyFromInt(amount)
}

func TestDepositService_Create_WithMatchedDetails(t *testing.T) {
	ctx := context.Background()
	depositedBy := uuid.New()

	deposits := new(MockDepositRepository)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, new(MockOrderFactsProvider), settings)

	orderA := uuid.New()
	orderB := uuid.New()

	settings.On("DepositTolerance", ctx).Return(toleranceOf(1_000), nil)
	deposits.On("ExistsRecentDuplicate", ctx, mock.Anything, "DEP-001", depositedBy, duplicateWindow).Return(false, nil)
	deposits.On("OrdersAlreadyAssigned", ctx, []uuid.UUID{orderA, orderB}).Return([]uuid.UUID{}, nil)
	deposits.On("CreateWithDetails", ctx, mock.AnythingOfType("*treasury.Deposit")).Return(nil)

	deposit, err := service.Create(ctx, CreateDepositRequest{
		Amount:          100_500,
		BankName:        "Bancolombia",
		ReferenceNumber: "DEP-001",
		Details: []DepositDetailRequest{
			{OrderID: orderA, AssignedAmount: 60_000},
			{OrderID: orderB, AssignedAmount: 40_000},
		},
	}, depositedBy)

	assert.NoError(t, err)
	assert.Len(t, deposit.Details, 2)
	// Difference of 500 sits inside the 1000 tolerance band
	assert.True(t, deposit.Difference().Equals(valueobject.NewMoneyFromInt(500)))
	deposits.AssertExpectations(t)
}

func TestDepositService_Create_ToleranceExceeded(t *testing.T) {
	ctx := context.Background()

	deposits := new(MockDepositRepository)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, new(MockOrderFactsProvider), settings)

	settings.On("DepositTolerance", ctx).Return(toleranceOf(1_000), nil)

	deposit, err := service.Create(ctx, CreateDepositRequest{
		Amount:          100_000,
		BankName:        "Bancolombia",
		ReferenceNumber: "DEP-002",
		Details: []DepositDetailRequest{
			{OrderID: uuid.New(), AssignedAmount: 95_000},
		},
	}, uuid.New())

	assert.Error(t, err)
	assert.Nil(t, deposit)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DEPOSIT_TOLERANCE_EXCEEDED", domainErr.Code)
	deposits.AssertNotCalled(t, "CreateWithDetails", mock.Anything, mock.Anything)
}

func TestDepositService_Create_DuplicateGuard(t *testing.T) {
	ctx := context.Background()
	depositedBy := uuid.New()

	deposits := new(MockDepositRepository)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, new(MockOrderFactsProvider), settings)

	settings.On("DepositTolerance", ctx).Return(toleranceOf(1_000), nil)
	deposits.On("ExistsRecentDuplicate", ctx, mock.Anything, "DEP-003", depositedBy, duplicateWindow).Return(true, nil)

	deposit, err := service.Create(ctx, CreateDepositRequest{
		Amount:          50_000,
		BankName:        "Davivienda",
		ReferenceNumber: "DEP-003",
	}, depositedBy)

	assert.ErrorIs(t, err, treasury.ErrDuplicateDeposit)
	assert.Nil(t, deposit)
	deposits.AssertNotCalled(t, "CreateWithDetails", mock.Anything, mock.Anything)
}

func TestDepositService_Create_OrderAlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	depositedBy := uuid.New()
	orderID := uuid.New()

	deposits := new(MockDepositRepository)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, new(MockOrderFactsProvider), settings)

	settings.On("DepositTolerance", ctx).Return(toleranceOf(1_000), nil)
	deposits.On("ExistsRecentDuplicate", ctx, mock.Anything, "DEP-004", depositedBy, duplicateWindow).Return(false, nil)
	deposits.On("OrdersAlreadyAssigned", ctx, []uuid.UUID{orderID}).Return([]uuid.UUID{orderID}, nil)

	deposit, err := service.Create(ctx, CreateDepositRequest{
		Amount:          30_000,
		BankName:        "Davivienda",
		ReferenceNumber: "DEP-004",
		Details: []DepositDetailRequest{
			{OrderID: orderID, AssignedAmount: 30_000},
		},
	}, depositedBy)

	assert.Error(t, err)
	assert.Nil(t, deposit)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ORDER_ALREADY_ASSIGNED", domainErr.Code)
	deposits.AssertNotCalled(t, "CreateWithDetails", mock.Anything, mock.Anything)
}

func TestDepositService_Create_UnmatchedDepositSkipsToleranceCheck(t *testing.T) {
	ctx := context.Background()
	depositedBy := uuid.New()

	deposits := new(MockDepositRepository)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, new(MockOrderFactsProvider), settings)

	settings.On("DepositTolerance", ctx).Return(toleranceOf(1_000), nil)
	deposits.On("ExistsRecentDuplicate", ctx, mock.Anything, "DEP-005", depositedBy, duplicateWindow).Return(false, nil)
	deposits.On("CreateWithDetails", ctx, mock.AnythingOfType("*treasury.Deposit")).Return(nil)

	deposit, err := service.Create(ctx, CreateDepositRequest{
		Amount:          999_999,
		BankName:        "Bancolombia",
		ReferenceNumber: "DEP-005",
	}, depositedBy)

	assert.NoError(t, err)
	assert.Empty(t, deposit.Details)
	deposits.AssertNotCalled(t, "OrdersAlreadyAssigned", mock.Anything, mock.Anything)
}

func TestDepositService_SetExternalClosure_PropagatesToOrders(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	deposits := new(MockDepositRepository)
	facts := new(MockOrderFactsProvider)
	settings := new(MockSettingsProvider)
	service := newDepositService(deposits, facts, settings)

	orderA := uuid.New()
	orderB := uuid.New()
	deposit, err := treasury.NewDeposit(
		valueobject.NewMoneyFromInt(100_000),
		"Bancolombia", "DEP-006", uuid.New(),
		[]treasury.DetailRequest{
			{OrderID: orderA, AssignedAmount: valueobject.NewMoneyFromInt(60_000)},
			{OrderID: orderB, AssignedAmount: valueobject.NewMoneyFromInt(40_000)},
		},
		toleranceOf(1_000),
	)
	assert.NoError(t, err)

	deposits.On("FindByID", ctx, deposit.ID).Return(deposit, nil)
	deposits.On("Save", ctx, deposit).Return(nil)
	facts.On("SetExternalClosure", ctx, []uuid.UUID{orderA, orderB}, true).Return(nil)

	updated, err := service.SetExternalClosure(ctx, deposit.ID, true, actor)

	assert.NoError(t, err)
	assert.True(t, updated.ClosedInExternalSystem)
	facts.AssertExpectations(t)
}

func TestDepositService_SetExternalClosure_NotFound(t *testing.T) {
	ctx := context.Background()

	deposits := new(MockDepositRepository)
	service := newDepositService(deposits, new(MockOrderFactsProvider), new(MockSettingsProvider))

	id := uuid.New()
	deposits.On("FindByID", ctx, id).Return(nil, nil)

	updated, err := service.SetExternalClosure(ctx, id, true, uuid.New())

	assert.ErrorIs(t, err, treasury.ErrDepositNotFound)
	assert.Nil(t, updated)
}

func TestDepositService_Candidates(t *testing.T) {
	ctx := context.Background()

	deposits := new(MockDepositRepository)
	service := newDepositService(deposits, new(MockOrderFactsProvider), new(MockSettingsProvider))

	orderID := uuid.New()
	deposits.On("Candidates", ctx).Return([]treasury.DepositCandidate{
		{
			OrderID:         orderID,
			AcceptedTotal:   valueobject.NewMoneyFromInt(80_000),
			AssignedTotal:   valueobject.NewMoneyFromInt(30_000),
			AvailableAmount: valueobject.NewMoneyFromInt(50_000),
		},
	}, nil)

	candidates, err := service.Candidates(ctx)

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, orderID, candidates[0].OrderID)
}
