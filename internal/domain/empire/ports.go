package empire

import (
	"context"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Repository defines empire persistence operations
type Repository interface {
	// FindByID retrieves an empire by its ID, including its owned
	// base coordinates
	FindByID(ctx context.Context, id shared.EmpireID) (*Empire, error)

	// Save persists an empire (upsert)
	Save(ctx context.Context, e *Empire) error

	// AdjustCredits atomically applies a signed delta to the empire's
	// balance. A negative delta that would drive the balance below
	// zero fails with InsufficientCreditsError and leaves the balance
	// untouched. Returns the balance after the adjustment.
	AdjustCredits(ctx context.Context, id shared.EmpireID, delta int) (int, error)
}
