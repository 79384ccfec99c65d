package base

import (
	"time"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Base is a player-owned location on the map. Terrain attributes are
// immutable; area and population usage is derived from the buildings
// present, never stored.
type Base struct {
	Coordinate shared.Coordinate
	EmpireID   shared.EmpireID
	Name       string

	// Terrain ratings, fixed at base creation
	SolarRating   int
	GasRating     int
	MetalRating   int
	CrystalRating int
	Fertility     int

	// Totals, fixed at base creation
	Area               int
	PopulationCapacity int
}

// BuildingRecord is one row per (base, catalog key). An active record
// is a fully built structure at Level; a non-active record with a
// future completion time is a queued first build (PendingUpgrade
// false) or an upgrade of an existing structure (PendingUpgrade true,
// Level still the operating level until the sweep bumps it).
type BuildingRecord struct {
	EmpireID       shared.EmpireID
	Coordinate     shared.Coordinate
	CatalogKey     string
	Level          int
	Active         bool
	PendingUpgrade bool
	StartedAt      time.Time
	CompletesAt    time.Time
	CreditsCost    int

	// OrderID identifies the in-flight construction order, empty when
	// nothing is queued for this record. Cancellation resolves it.
	OrderID string
}

// IsEffectivelyActive reports whether the record contributes to the
// base's capacities, energy and usage right now. A building counts
// when its active flag is set, when it is an upgrade in progress (the
// existing structure keeps operating), or when its completion time has
// elapsed but the sweep has not caught up yet. This is the single
// derived-state rule shared by capacity, energy and admission logic.
func IsEffectivelyActive(rec *BuildingRecord, now time.Time) bool {
	if rec.Active || rec.PendingUpgrade {
		return true
	}
	return !rec.CompletesAt.IsZero() && !rec.CompletesAt.After(now)
}

// IsInProgress reports whether the record occupies the base's single
// construction slot: non-active with a completion time still ahead.
func IsInProgress(rec *BuildingRecord, now time.Time) bool {
	return !rec.Active && rec.CompletesAt.After(now)
}
