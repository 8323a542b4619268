package treasury

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/opsdesk/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// AggregatorService merges the four heterogeneous collection channels
// into one normalized pending queue. Each channel is an EventSource
// adapter; the service itself never branches on channel internals.
type AggregatorService struct {
	sources []treasury.EventSource
	logger  *zap.Logger
}

// NewAggregatorService creates an AggregatorService over the given
// source adapters
func NewAggregatorService(logger *zap.Logger, sources ...treasury.EventSource) *AggregatorService {
	return &AggregatorService{
		sources: sources,
		logger:  logger,
	}
}

// PendingEvents returns the merged pending queue, most recent first.
// When a custodian filter is supplied only the channels tied to an
// individual custodian (messenger, ad-hoc) are consulted: warehouse and
// POS collections belong to the counter, not a person.
func (s *AggregatorService) PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error) {
	var merged []treasury.CashEvent
	for _, source := range s.sources {
		if filter.CustodianID != nil && !source.Source().HasCustodian() {
			continue
		}
		events, err := source.PendingEvents(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("pending events from %s: %w", source.Source(), err)
		}
		merged = append(merged, events...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return eventOrderKey(merged[i]).After(eventOrderKey(merged[j]))
	})

	s.logger.Debug("aggregated pending cash events",
		zap.Int("count", len(merged)),
		zap.Bool("custodian_filter", filter.CustodianID != nil),
	)
	return merged, nil
}

// eventOrderKey picks the timestamp the pending queue is ordered by:
// the collection timestamp when present, the creation timestamp otherwise
func eventOrderKey(e treasury.CashEvent) time.Time {
	if e.CollectedAt != nil {
		return *e.CollectedAt
	}
	return e.CreatedAt
}
