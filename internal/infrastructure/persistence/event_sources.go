package persistence

import (
	"context"

	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// The four upstream channels normalize into pending cash events through
// one adapter each. Warehouse and ad-hoc collections are stored as cash
// event rows the moment they are logged, so their adapters read the
// table directly. Messenger and POS events only exist upstream, in the
// order's delivery tracking, until acceptance materializes them; their
// adapters derive pending events from the latest tracking record per
// order.

// cashPositiveClause matches trackings with at least one positive
// cash-channel component. Amounts moved by transfer never qualify.
const cashPositiveClause = "((product_method = 'CASH' AND product_amount > 0) OR (delivery_fee_method = 'CASH' AND delivery_fee_amount > 0))"

func latestTrackings(db *gorm.DB) *gorm.DB {
	return db.
		Table("delivery_trackings").
		Select("DISTINCT ON (order_id) *").
		Order("order_id, tracked_at DESC")
}

func pendingStoredEvents(ctx context.Context, db *gorm.DB, source treasury.CashSource, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	query := dbFor(ctx, db).
		Where("source = ? AND status = ?", source, treasury.CollectionStatusPending)
	if filter.CustodianID != nil {
		query = query.Where("custodian_id = ?", *filter.CustodianID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var eventModels []models.CashEventModel
	if err := query.Find(&eventModels).Error; err != nil {
		return nil, err
	}
	events := make([]treasury.CashEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events, nil
}

func derivedEvent(m *models.DeliveryTrackingModel, source treasury.CashSource, custodian bool) (treasury.CashEvent, error) {
	facts := trackingToFacts(m)
	var custodianID = facts.CourierID
	if !custodian {
		custodianID = nil
	}
	total := facts.CashTotal()
	orderID := m.OrderID
	event, err := treasury.NewCashEvent(
		treasury.EventRef{Source: source, SourceID: orderID},
		custodianID,
		&orderID,
		total,
		total,
	)
	if err != nil {
		return treasury.CashEvent{}, err
	}
	// Derived events carry the tracking time so the merged queue orders
	// by when the cash actually moved, not by query time.
	event.CreatedAt = m.TrackedAt
	event.UpdatedAt = m.TrackedAt
	return *event, nil
}

// WarehouseEventSource reads pending warehouse counter collections
type WarehouseEventSource struct {
	db *gorm.DB
}

var _ treasury.EventSource = (*WarehouseEventSource)(nil)

// NewWarehouseEventSource creates a new WarehouseEventSource
func NewWarehouseEventSource(db *gorm.DB) *WarehouseEventSource {
	return &WarehouseEventSource{db: db}
}

// Source returns the channel this adapter normalizes
func (s *WarehouseEventSource) Source() treasury.CashSource {
	return treasury.CashSourceWarehouse
}

// PendingEvents returns pending warehouse collections matching the filter
func (s *WarehouseEventSource) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	return pendingStoredEvents(ctx, s.db, treasury.CashSourceWarehouse, filter)
}

// AdhocEventSource reads pending ad-hoc receipts
type AdhocEventSource struct {
	db *gorm.DB
}

var _ treasury.EventSource = (*AdhocEventSource)(nil)

// NewAdhocEventSource creates a new AdhocEventSource
func NewAdhocEventSource(db *gorm.DB) *AdhocEventSource {
	return &AdhocEventSource{db: db}
}

// Source returns the channel this adapter normalizes
func (s *AdhocEventSource) Source() treasury.CashSource {
	return treasury.CashSourceAdhoc
}

// PendingEvents returns pending ad-hoc receipts matching the filter
func (s *AdhocEventSource) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	return pendingStoredEvents(ctx, s.db, treasury.CashSourceAdhoc, filter)
}

// MessengerEventSource derives pending messenger collections from the
// latest delivery tracking per order
type MessengerEventSource struct {
	db *gorm.DB
}

var _ treasury.EventSource = (*MessengerEventSource)(nil)

// NewMessengerEventSource creates a new MessengerEventSource
func NewMessengerEventSource(db *gorm.DB) *MessengerEventSource {
	return &MessengerEventSource{db: db}
}

// Source returns the channel this adapter normalizes
func (s *MessengerEventSource) Source() treasury.CashSource {
	return treasury.CashSourceMessenger
}

// PendingEvents returns uncollected messenger orders as pending events.
// Replacement-class orders carry no collectible cash and never appear.
func (s *MessengerEventSource) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	db := dbFor(ctx, s.db)
	query := db.
		Table("(?) AS t", latestTrackings(db.Session(&gorm.Session{NewDB: true}))).
		Where("t.payment_class <> ?", treasury.OrderPaymentClassReplacement).
		Where("t.courier_id IS NOT NULL").
		Where(cashPositiveClause).
		Where(`NOT EXISTS (
			SELECT 1 FROM cash_events ce
			WHERE ce.source = ? AND ce.source_id = t.order_id AND ce.status = ?)`,
			treasury.CashSourceMessenger, treasury.CollectionStatusCollected)
	if filter.CustodianID != nil {
		query = query.Where("t.courier_id = ?", *filter.CustodianID)
	}
	if filter.From != nil {
		query = query.Where("t.tracked_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("t.tracked_at <= ?", *filter.To)
	}

	var trackings []models.DeliveryTrackingModel
	if err := query.Scan(&trackings).Error; err != nil {
		return nil, err
	}
	events := make([]treasury.CashEvent, 0, len(trackings))
	for i := range trackings {
		event, err := derivedEvent(&trackings[i], treasury.CashSourceMessenger, true)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// POSEventSource derives pending point-of-sale pickups: orders delivered
// at the counter and paid cash whose collection was never explicitly
// logged as a warehouse record. It is the fallback path that keeps such
// cash from escaping the queue.
type POSEventSource struct {
	db *gorm.DB
}

var _ treasury.EventSource = (*POSEventSource)(nil)

// NewPOSEventSource creates a new POSEventSource
func NewPOSEventSource(db *gorm.DB) *POSEventSource {
	return &POSEventSource{db: db}
}

// Source returns the channel this adapter normalizes
func (s *POSEventSource) Source() treasury.CashSource {
	return treasury.CashSourcePOS
}

// PendingEvents returns uncollected counter pickups as pending events
func (s *POSEventSource) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	db := dbFor(ctx, s.db)
	query := db.
		Table("(?) AS t", latestTrackings(db.Session(&gorm.Session{NewDB: true}))).
		Where("t.delivered_at_counter = TRUE").
		Where("t.payment_class <> ?", treasury.OrderPaymentClassReplacement).
		Where(cashPositiveClause).
		Where(`NOT EXISTS (
			SELECT 1 FROM cash_events ce
			WHERE ce.source = ? AND ce.linked_order_id = t.order_id)`,
			treasury.CashSourceWarehouse).
		Where(`NOT EXISTS (
			SELECT 1 FROM cash_events ce
			WHERE ce.source = ? AND ce.source_id = t.order_id AND ce.status = ?)`,
			treasury.CashSourcePOS, treasury.CollectionStatusCollected)
	if filter.From != nil {
		query = query.Where("t.tracked_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("t.tracked_at <= ?", *filter.To)
	}

	var trackings []models.DeliveryTrackingModel
	if err := query.Scan(&trackings).Error; err != nil {
		return nil, err
	}
	events := make([]treasury.CashEvent, 0, len(trackings))
	for i := range trackings {
		event, err := derivedEvent(&trackings[i], treasury.CashSourcePOS, false)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
