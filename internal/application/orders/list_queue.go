package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stellaredge/empire-engine/internal/application/common"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// ListQueueQuery lists an empire's pending orders across every queue
// kind, optionally narrowed to one base
type ListQueueQuery struct {
	EmpireID   int
	Coordinate string // optional; empty means all bases
}

// QueueEntry is one pending order in the merged view. Structure orders
// come from the building table, the rest from the queue tables.
type QueueEntry struct {
	OrderID     string
	Kind        queue.Kind
	Coordinate  shared.Coordinate
	CatalogKey  string
	Level       int
	StartedAt   time.Time
	CompletesAt time.Time
	CreditsCost int
}

// ListQueueResponse carries the pending orders ordered by completion
type ListQueueResponse struct {
	Entries []QueueEntry
}

// ListQueueHandler merges the structure slot and the tech/unit/defense
// queues into one completion-ordered pending view
type ListQueueHandler struct {
	empireRepo   empire.Repository
	queueRepo    queue.Repository
	buildingRepo base.BuildingRepository
	clock        shared.Clock
}

// NewListQueueHandler creates a new queue listing handler
func NewListQueueHandler(
	empireRepo empire.Repository,
	queueRepo queue.Repository,
	buildingRepo base.BuildingRepository,
	clock shared.Clock,
) *ListQueueHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListQueueHandler{
		empireRepo:   empireRepo,
		queueRepo:    queueRepo,
		buildingRepo: buildingRepo,
		clock:        clock,
	}
}

// Handle executes the list queue query
func (h *ListQueueHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListQueueQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListQueueQuery")
	}

	empireID, err := shared.NewEmpireID(query.EmpireID)
	if err != nil {
		return nil, shared.NewValidationError("empire_id", err.Error())
	}

	emp, err := h.empireRepo.FindByID(ctx, empireID)
	if err != nil {
		if _, notFound := err.(*shared.EmpireNotFoundError); notFound {
			return nil, NewRejection(CodeEmpireNotFound, "empire %s not found", empireID)
		}
		return nil, fmt.Errorf("failed to load empire: %w", err)
	}

	var coordFilter *shared.Coordinate
	if query.Coordinate != "" {
		coord, err := shared.ParseCoordinate(query.Coordinate)
		if err != nil {
			return nil, shared.NewValidationError("coordinate", err.Error())
		}
		if !emp.Owns(coord) {
			return nil, NewRejection(CodeNotOwner, "empire %s does not own base %s", empireID, coord)
		}
		coordFilter = &coord
	}

	items, err := h.queueRepo.ListPending(ctx, empireID, coordFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	entries := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, QueueEntry{
			OrderID:     item.ID(),
			Kind:        item.Kind(),
			Coordinate:  item.Coordinate(),
			CatalogKey:  item.CatalogKey(),
			Level:       item.Level(),
			StartedAt:   item.StartedAt(),
			CompletesAt: item.CompletesAt(),
			CreditsCost: item.CreditsCost(),
		})
	}

	now := h.clock.Now()
	coords := emp.Bases
	if coordFilter != nil {
		coords = []shared.Coordinate{*coordFilter}
	}
	for _, coord := range coords {
		records, err := h.buildingRepo.ListAt(ctx, coord)
		if err != nil {
			return nil, fmt.Errorf("failed to load buildings: %w", err)
		}
		for _, rec := range records {
			if !base.IsInProgress(rec, now) {
				continue
			}
			level := rec.Level
			if rec.PendingUpgrade {
				level = rec.Level + 1
			}
			entries = append(entries, QueueEntry{
				OrderID:     rec.OrderID,
				Kind:        queue.KindStructure,
				Coordinate:  rec.Coordinate,
				CatalogKey:  rec.CatalogKey,
				Level:       level,
				StartedAt:   rec.StartedAt,
				CompletesAt: rec.CompletesAt,
				CreditsCost: rec.CreditsCost,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CompletesAt.Before(entries[j].CompletesAt)
	})

	return &ListQueueResponse{Entries: entries}, nil
}
