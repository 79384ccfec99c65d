package base

import (
	"time"

	"github.com/stellaredge/empire-engine/internal/domain/catalog"
)

// CapacitySnapshot is the derived, non-persisted per-base throughput
// in credits/hour. Computed fresh on every request; staleness within a
// single tick window is acceptable.
type CapacitySnapshot struct {
	Construction int
	Production   int
	Research     int
}

// ForKind returns the rate for one capacity domain
func (c CapacitySnapshot) ForKind(kind catalog.CapacityKind) int {
	switch kind {
	case catalog.CapacityConstruction:
		return c.Construction
	case catalog.CapacityProduction:
		return c.Production
	case catalog.CapacityResearch:
		return c.Research
	}
	return 0
}

// Usage is a total/used/free triple for area or population.
// Invariant: Used + Free == Total.
type Usage struct {
	Total int
	Used  int
	Free  int
}

// Stats is the derived area/population view of one base
type Stats struct {
	Area       Usage
	Population Usage
}

// ComputeCapacities derives the base's construction, production and
// research rates from its effectively active buildings. A base always
// has a terrain-derived construction baseline so a fresh colony can
// start its first structure; production and research come entirely
// from buildings.
func ComputeCapacities(b *Base, records []*BuildingRecord, lookup catalog.Lookup, now time.Time) (CapacitySnapshot, error) {
	snapshot := CapacitySnapshot{
		Construction: b.Fertility * baselineConstructionPerFertility,
	}

	for _, rec := range records {
		if !IsEffectivelyActive(rec, now) {
			continue
		}
		spec, err := lookup.GetSpec(rec.CatalogKey)
		if err != nil {
			return CapacitySnapshot{}, err
		}
		snapshot.Construction += spec.ConstructionRate * rec.Level
		snapshot.Production += spec.ProductionRate * rec.Level
		snapshot.Research += spec.ResearchRate * rec.Level
	}

	return snapshot, nil
}

// baselineConstructionPerFertility is the credits/hour of construction
// throughput each point of fertility grants before any buildings.
const baselineConstructionPerFertility = 2

// ComputeStats derives area and population usage. In-progress records
// reserve the space of the level they are building so a queued order
// cannot be over-committed by a second admission.
func ComputeStats(b *Base, records []*BuildingRecord, lookup catalog.Lookup) (Stats, error) {
	usedArea := 0
	usedPopulation := 0

	for _, rec := range records {
		spec, err := lookup.GetSpec(rec.CatalogKey)
		if err != nil {
			return Stats{}, err
		}
		level := reservedLevel(rec)
		usedArea += spec.AreaRequired * level
		usedPopulation += spec.PopulationRequired * level
	}

	return Stats{
		Area: Usage{
			Total: b.Area,
			Used:  usedArea,
			Free:  b.Area - usedArea,
		},
		Population: Usage{
			Total: b.PopulationCapacity,
			Used:  usedPopulation,
			Free:  b.PopulationCapacity - usedPopulation,
		},
	}, nil
}

// reservedLevel is the level a record occupies space for: an upgrade
// in progress reserves the incoming level on top of the operating one.
func reservedLevel(rec *BuildingRecord) int {
	if rec.PendingUpgrade {
		return rec.Level + 1
	}
	return rec.Level
}
