package empire

import (
	"context"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// TechLevelRepository tracks the researched level of each technology
// per empire. Levels only ever increase, and only through the sweep.
type TechLevelRepository interface {
	// Level returns the researched level for a catalog key, zero when
	// the technology has never been researched
	Level(ctx context.Context, empireID shared.EmpireID, catalogKey string) (int, error)

	// Increment raises the researched level by one
	Increment(ctx context.Context, empireID shared.EmpireID, catalogKey string) error
}
