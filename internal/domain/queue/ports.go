package queue

import (
	"context"
	"time"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Repository defines queue-item persistence operations for the tech,
// unit and defense queues. Status flips are conditional updates: they
// succeed only while the stored row is still PENDING, so a concurrent
// sweep completion and a cancel can never both win.
type Repository interface {
	// Enqueue persists a new pending item
	Enqueue(ctx context.Context, item *Item) error

	// FindByID retrieves an item by id, ItemNotFoundError when absent
	FindByID(ctx context.Context, id string) (*Item, error)

	// ListPending retrieves pending items for an empire ordered by
	// completion time, optionally narrowed to one base
	ListPending(ctx context.Context, empireID shared.EmpireID, coord *shared.Coordinate) ([]*Item, error)

	// CountPendingByKey returns how many pending items an empire has
	// for one catalog key (used for tech level projection)
	CountPendingByKey(ctx context.Context, empireID shared.EmpireID, catalogKey string) (int, error)

	// ListDue retrieves pending items whose completion time has
	// passed, oldest first
	ListDue(ctx context.Context, now time.Time) ([]*Item, error)

	// PendingDepthByKind counts pending items across all empires,
	// grouped by queue kind
	PendingDepthByKind(ctx context.Context) (map[Kind]int, error)

	// CompleteIfPending flips the row to COMPLETED iff it is still
	// PENDING. Returns false when the row was already terminal.
	CompleteIfPending(ctx context.Context, id string) (bool, error)

	// CancelIfPending flips the row to CANCELLED iff it is still
	// PENDING. Returns false when the row was already terminal.
	CancelIfPending(ctx context.Context, id string) (bool, error)
}
