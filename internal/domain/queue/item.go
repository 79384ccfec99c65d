package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Item is one pending/completed/cancelled order in the tech, unit or
// defense queues. Structure orders live in the building table instead;
// the single construction slot is keyed by (empire, base, catalog key).
type Item struct {
	id          string
	kind        Kind
	empireID    shared.EmpireID
	coordinate  shared.Coordinate
	catalogKey  string
	level       int // tech only; zero for units and defenses
	status      Status
	startedAt   time.Time
	completesAt time.Time
	creditsCost int
}

// NewItem creates a pending queue item with a generated id
func NewItem(
	kind Kind,
	empireID shared.EmpireID,
	coordinate shared.Coordinate,
	catalogKey string,
	level int,
	startedAt time.Time,
	completesAt time.Time,
	creditsCost int,
) (*Item, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("invalid queue kind: %s", kind))
	}
	if empireID.IsZero() {
		return nil, shared.NewValidationError("empire_id", "empire_id cannot be zero")
	}
	if catalogKey == "" {
		return nil, shared.NewValidationError("catalog_key", "catalog_key cannot be empty")
	}
	if completesAt.Before(startedAt) {
		return nil, shared.NewValidationError("completes_at", "completion cannot precede start")
	}
	if creditsCost < 0 {
		return nil, shared.NewValidationError("credits_cost", "cost cannot be negative")
	}

	return &Item{
		id:          uuid.New().String(),
		kind:        kind,
		empireID:    empireID,
		coordinate:  coordinate,
		catalogKey:  catalogKey,
		level:       level,
		status:      StatusPending,
		startedAt:   startedAt,
		completesAt: completesAt,
		creditsCost: creditsCost,
	}, nil
}

// Reconstruct rebuilds an item from persistence, bypassing creation
// validation. Used by the repository only.
func Reconstruct(
	id string,
	kind Kind,
	empireID shared.EmpireID,
	coordinate shared.Coordinate,
	catalogKey string,
	level int,
	status Status,
	startedAt time.Time,
	completesAt time.Time,
	creditsCost int,
) *Item {
	return &Item{
		id:          id,
		kind:        kind,
		empireID:    empireID,
		coordinate:  coordinate,
		catalogKey:  catalogKey,
		level:       level,
		status:      status,
		startedAt:   startedAt,
		completesAt: completesAt,
		creditsCost: creditsCost,
	}
}

// Getters (items are immutable outside their state transitions)

func (i *Item) ID() string                    { return i.id }
func (i *Item) Kind() Kind                    { return i.kind }
func (i *Item) EmpireID() shared.EmpireID     { return i.empireID }
func (i *Item) Coordinate() shared.Coordinate { return i.coordinate }
func (i *Item) CatalogKey() string            { return i.catalogKey }
func (i *Item) Level() int                    { return i.level }
func (i *Item) Status() Status                { return i.status }
func (i *Item) StartedAt() time.Time          { return i.startedAt }
func (i *Item) CompletesAt() time.Time        { return i.completesAt }
func (i *Item) CreditsCost() int              { return i.creditsCost }

// IsPending reports whether the item can still complete or cancel
func (i *Item) IsPending() bool {
	return i.status == StatusPending
}

// IsDue reports whether the item's completion time has passed
func (i *Item) IsDue(now time.Time) bool {
	return !i.completesAt.After(now)
}

// Complete transitions the item to COMPLETED. Only the tick sweep
// calls this, and only when the completion time has passed.
func (i *Item) Complete(now time.Time) error {
	if !i.status.CanTransitionTo(StatusCompleted) {
		return NewInvalidStatusError(i.id, i.status, StatusCompleted)
	}
	if !i.IsDue(now) {
		return fmt.Errorf("queue item %s not due until %s", i.id, i.completesAt)
	}
	i.status = StatusCompleted
	return nil
}

// Cancel transitions the item to CANCELLED. Only legal while pending.
func (i *Item) Cancel() error {
	if !i.status.CanTransitionTo(StatusCancelled) {
		return NewInvalidStatusError(i.id, i.status, StatusCancelled)
	}
	i.status = StatusCancelled
	return nil
}

// String provides a human-readable representation
func (i *Item) String() string {
	return fmt.Sprintf("QueueItem[%s, kind=%s, key=%s, status=%s, completes=%s]",
		i.id, i.kind, i.catalogKey, i.status, i.completesAt.Format(time.RFC3339))
}
