package catalog

import "fmt"

// Kind classifies a catalog entry by the queue it builds through
type Kind string

const (
	KindStructure Kind = "STRUCTURE"
	KindTech      Kind = "TECH"
	KindUnit      Kind = "UNIT"
	KindDefense   Kind = "DEFENSE"
)

// IsValid checks whether the kind is one of the known values
func (k Kind) IsValid() bool {
	switch k {
	case KindStructure, KindTech, KindUnit, KindDefense:
		return true
	}
	return false
}

// CapacityKind names the per-base throughput domain an order draws from
type CapacityKind string

const (
	CapacityConstruction CapacityKind = "CONSTRUCTION"
	CapacityProduction   CapacityKind = "PRODUCTION"
	CapacityResearch     CapacityKind = "RESEARCH"
)

// Spec is the static game-balance record for one catalog key.
// Specs are read-only; the engine never mutates them.
type Spec struct {
	Key          string
	Name         string
	Kind         Kind
	CapacityKind CapacityKind

	// CostByLevel holds the credit cost of each level, index 0 = level 1.
	// Levels past the end of the slice are not buildable.
	CostByLevel []int

	// Per-level resource deltas applied when a level becomes active.
	// EnergyDelta is negative for consumers, positive for producers.
	EnergyDelta        int
	AreaRequired       int
	PopulationRequired int

	// Per-level capacity contributions in credits/hour.
	ConstructionRate int
	ProductionRate   int
	ResearchRate     int

	// Terrain coupling: per-level energy output multiplied by the
	// base's solar or gas rating. Zero for buildings without terrain
	// dependent output.
	SolarEnergyPerRating int
	GasEnergyPerRating   int
}

// MaxLevel returns the highest level with a defined cost
func (s *Spec) MaxLevel() int {
	return len(s.CostByLevel)
}

// CostForLevel returns the credit cost of building the given level
func (s *Spec) CostForLevel(level int) (int, error) {
	if level < 1 || level > len(s.CostByLevel) {
		return 0, NewNoCostDefinedError(s.Key, level)
	}
	return s.CostByLevel[level-1], nil
}

// String provides a human-readable representation
func (s *Spec) String() string {
	return fmt.Sprintf("Spec[%s, kind=%s, maxLevel=%d]", s.Key, s.Kind, s.MaxLevel())
}
