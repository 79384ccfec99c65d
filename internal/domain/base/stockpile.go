package base

import (
	"context"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// StockpileRepository tracks completed unit and defense counts per
// base and catalog key. Counts are incremented by the sweep when a
// production order completes.
type StockpileRepository interface {
	// Count returns how many of a catalog key the base holds
	Count(ctx context.Context, coord shared.Coordinate, catalogKey string) (int, error)

	// Increment adds n to the base's count for a catalog key
	Increment(ctx context.Context, coord shared.Coordinate, catalogKey string, n int) error
}
