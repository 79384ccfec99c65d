package tick

import (
	"context"
	"fmt"

	"github.com/stellaredge/empire-engine/internal/adapters/metrics"
	"github.com/stellaredge/empire-engine/internal/application/common"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// SweepDueOrdersCommand finalizes every order whose completion time
// has passed. The external scheduler owns the interval; this subsystem
// never self-schedules.
type SweepDueOrdersCommand struct{}

// SweepDueOrdersResponse reports how much the sweep finalized
type SweepDueOrdersResponse struct {
	BuildingsActivated int
	ItemsCompleted     int
}

// SweepDueOrdersHandler is the tick finalizer entry point. Completion
// is the only pending -> completed transition in the system, and each
// flip is a conditional update so a racing cancellation can never be
// overridden: a cancelled item stays cancelled, a completed item can
// no longer cancel.
type SweepDueOrdersHandler struct {
	buildingRepo base.BuildingRepository
	queueRepo    queue.Repository
	techRepo     empire.TechLevelRepository
	stockpiles   base.StockpileRepository
	clock        shared.Clock
}

// NewSweepDueOrdersHandler creates a new sweep handler
func NewSweepDueOrdersHandler(
	buildingRepo base.BuildingRepository,
	queueRepo queue.Repository,
	techRepo empire.TechLevelRepository,
	stockpiles base.StockpileRepository,
	clock shared.Clock,
) *SweepDueOrdersHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SweepDueOrdersHandler{
		buildingRepo: buildingRepo,
		queueRepo:    queueRepo,
		techRepo:     techRepo,
		stockpiles:   stockpiles,
		clock:        clock,
	}
}

// Handle executes one sweep
func (h *SweepDueOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*SweepDueOrdersCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *SweepDueOrdersCommand")
	}

	now := h.clock.Now()
	logger := common.LoggerFromContext(ctx)

	activated, err := h.buildingRepo.ActivateDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to activate due buildings: %w", err)
	}

	due, err := h.queueRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due orders: %w", err)
	}

	completed := 0
	for _, item := range due {
		flipped, err := h.queueRepo.CompleteIfPending(ctx, item.ID())
		if err != nil {
			logger.Error("failed to complete due order", map[string]interface{}{
				"order_id": item.ID(),
				"error":    err.Error(),
			})
			continue
		}
		if !flipped {
			// Cancelled between listing and completion; nothing to apply
			continue
		}

		if err := h.applyEffect(ctx, item); err != nil {
			// The completion already stands; the effect is retried by
			// hand, never by un-completing the order.
			logger.Error("failed to apply completion effect", map[string]interface{}{
				"order_id":    item.ID(),
				"catalog_key": item.CatalogKey(),
				"kind":        string(item.Kind()),
				"error":       err.Error(),
			})
		}
		completed++
	}

	metrics.RecordSweep(activated, completed)
	h.recordQueueDepth(ctx, logger)

	return &SweepDueOrdersResponse{
		BuildingsActivated: activated,
		ItemsCompleted:     completed,
	}, nil
}

// recordQueueDepth refreshes the pending-depth gauges after a sweep.
// Kinds with no pending rows are zeroed explicitly so a drained queue
// does not keep reporting its last non-zero depth.
func (h *SweepDueOrdersHandler) recordQueueDepth(ctx context.Context, logger common.OperationLogger) {
	depths, err := h.queueRepo.PendingDepthByKind(ctx)
	if err != nil {
		logger.Warn("failed to measure pending queue depth", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	for _, kind := range []queue.Kind{queue.KindTech, queue.KindUnit, queue.KindDefense} {
		metrics.SetPendingDepth(string(kind), depths[kind])
	}
}

// applyEffect makes the completed order's outcome visible: a new tech
// level, or one more unit or defense in the base's stockpile
func (h *SweepDueOrdersHandler) applyEffect(ctx context.Context, item *queue.Item) error {
	switch item.Kind() {
	case queue.KindTech:
		return h.techRepo.Increment(ctx, item.EmpireID(), item.CatalogKey())
	case queue.KindUnit, queue.KindDefense:
		return h.stockpiles.Increment(ctx, item.Coordinate(), item.CatalogKey(), 1)
	}
	return fmt.Errorf("no completion effect for queue kind %q", item.Kind())
}
