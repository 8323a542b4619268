package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories and Collaborators
// =============================================================================

// stubTxManager runs the function directly; transactional semantics are
// covered by the persistence tests
type stubTxManager struct{}

func (stubTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockCashEventRepository is a mock implementation of CashEventRepository
type MockCashEventRepository struct {
	mock.Mock
}

func (m *MockCashEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.CashEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.CashEvent), args.Error(1)
}

func (m *MockCashEventRepository) FindByRef(ctx context.Context, ref treasury.EventRef) (*treasury.CashEvent, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.CashEvent), args.Error(1)
}

func (m *MockCashEventRepository) FindByHandover(ctx context.Context, handoverID uuid.UUID) ([]treasury.CashEvent, error) {
	args := m.Called(ctx, handoverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.CashEvent), args.Error(1)
}

func (m *MockCashEventRepository) Create(ctx context.Context, event *treasury.CashEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockCashEventRepository) MarkCollected(ctx context.Context, id, acceptedBy uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, acceptedBy, at)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockCashEventRepository) SumAccepted(ctx context.Context, sources []treasury.CashSource, from, to *time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, sources, from, to)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockHandoverRepository is a mock implementation of HandoverRepository
type MockHandoverRepository struct {
	mock.Mock
}

func (m *MockHandoverRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Handover, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Handover), args.Error(1)
}

func (m *MockHandoverRepository) FindByCustodianAndPeriod(ctx context.Context, custodianID uuid.UUID, periodKey time.Time) (*treasury.Handover, error) {
	args := m.Called(ctx, custodianID, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Handover), args.Error(1)
}

func (m *MockHandoverRepository) Create(ctx context.Context, handover *treasury.Handover) error {
	args := m.Called(ctx, handover)
	return args.Error(0)
}

func (m *MockHandoverRepository) Save(ctx context.Context, handover *treasury.Handover) error {
	args := m.Called(ctx, handover)
	return args.Error(0)
}

func (m *MockHandoverRepository) VirtualWarehouseHandovers(ctx context.Context, from, to *time.Time) ([]treasury.VirtualHandover, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.VirtualHandover), args.Error(1)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Movement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Movement), args.Error(1)
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *treasury.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) Save(ctx context.Context, movement *treasury.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) MarkApproved(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, approvedBy, at)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMovementRepository) SumApprovedByType(ctx context.Context, movementType treasury.MovementType, from, to *time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, movementType, from, to)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockDepositRepository is a mock implementation of DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Deposit), args.Error(1)
}

func (m *MockDepositRepository) CreateWithDetails(ctx context.Context, deposit *treasury.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) Save(ctx context.Context, deposit *treasury.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) ExistsRecentDuplicate(ctx context.Context, amount valueobject.Money, referenceNumber string, depositedBy uuid.UUID, window time.Duration) (bool, error) {
	args := m.Called(ctx, amount, referenceNumber, depositedBy, window)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockDepositRepository) OrdersAlreadyAssigned(ctx context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockDepositRepository) SumDeposits(ctx context.Context, from, to *time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockDepositRepository) Candidates(ctx context.Context) ([]treasury.DepositCandidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.DepositCandidate), args.Error(1)
}

// MockOrderFactsProvider is a mock implementation of OrderFactsProvider
type MockOrderFactsProvider struct {
	mock.Mock
}

func (m *MockOrderFactsProvider) FactsByOrder(ctx context.Context, orderID uuid.UUID) (*treasury.OrderCashFacts, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.OrderCashFacts), args.Error(1)
}

func (m *MockOrderFactsProvider) SetExternalClosure(ctx context.Context, orderIDs []uuid.UUID, closed bool) error {
	args := m.Called(ctx, orderIDs, closed)
	return args.Error(0)
}

// MockSettingsProvider is a mock implementation of SettingsProvider
type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) BaseBalance(ctx context.Context) (valueobject.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockSettingsProvider) WithdrawalThreshold(ctx context.Context) (valueobject.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockSettingsProvider) DepositTolerance(ctx context.Context) (valueobject.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockEvidenceStore is a mock implementation of EvidenceStore
type MockEvidenceStore struct {
	mock.Mock
}

func (m *MockEvidenceStore) Put(ctx context.Context, kind string, ownerID uuid.UUID, blob []byte, contentType string) (string, error) {
	args := m.Called(ctx, kind, ownerID, blob, contentType)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockEvidenceStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockAuditSink is a mock implementation of AuditSink
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, entity, action string, actor uuid.UUID, detail string) error {
	args := m.Called(ctx, entity, action, actor, detail)
	return args.Error(0)
}

// MockEventSource is a mock implementation of one collection channel
type MockEventSource struct {
	mock.Mock
	source treasury.CashSource
}

func (m *MockEventSource) Source() treasury.CashSource {
	return m.source
}

func (m *MockEventSource) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.CashEvent), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
