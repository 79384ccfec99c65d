package catalog

import (
	"math"

	"github.com/stellaredge/empire-engine/internal/domain/catalog"
)

// StaticCatalog is an in-memory, read-only catalog.Lookup. The engine
// never mutates specs, so a plain map is safe for concurrent use.
type StaticCatalog struct {
	specs map[string]*catalog.Spec
}

// NewStaticCatalog creates a catalog from explicit specs (tests and
// custom balance data)
func NewStaticCatalog(specs []*catalog.Spec) *StaticCatalog {
	m := make(map[string]*catalog.Spec, len(specs))
	for _, s := range specs {
		m[s.Key] = s
	}
	return &StaticCatalog{specs: m}
}

// NewDefaultCatalog creates a catalog seeded with the standard balance
// table
func NewDefaultCatalog() *StaticCatalog {
	return NewStaticCatalog(defaultSpecs())
}

// GetSpec resolves a catalog key to its static spec
func (c *StaticCatalog) GetSpec(key string) (*catalog.Spec, error) {
	spec, ok := c.specs[key]
	if !ok {
		return nil, catalog.NewSpecNotFoundError(key)
	}
	return spec, nil
}

// CostForLevel returns the credit cost for one level of the keyed entry
func (c *StaticCatalog) CostForLevel(key string, level int) (int, error) {
	spec, err := c.GetSpec(key)
	if err != nil {
		return 0, err
	}
	return spec.CostForLevel(level)
}

// schedule builds a cost table: baseCost at level 1, multiplied by
// growth for each further level, rounded to whole credits
func schedule(baseCost int, growth float64, maxLevel int) []int {
	costs := make([]int, maxLevel)
	cost := float64(baseCost)
	for i := 0; i < maxLevel; i++ {
		costs[i] = int(math.Round(cost))
		cost *= growth
	}
	return costs
}

func defaultSpecs() []*catalog.Spec {
	return []*catalog.Spec{
		// Structures
		{
			Key:              "urban_structures",
			Name:             "Urban Structures",
			Kind:             catalog.KindStructure,
			CapacityKind:     catalog.CapacityConstruction,
			CostByLevel:      schedule(1, 2.0, 30),
			AreaRequired:     1,
			ConstructionRate: 2,
		},
		{
			Key:                  "solar_plants",
			Name:                 "Solar Plants",
			Kind:                 catalog.KindStructure,
			CapacityKind:         catalog.CapacityConstruction,
			CostByLevel:          schedule(1, 2.0, 30),
			AreaRequired:         1,
			PopulationRequired:   1,
			SolarEnergyPerRating: 1,
		},
		{
			Key:                "gas_plants",
			Name:               "Gas Plants",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(1, 2.0, 30),
			AreaRequired:       1,
			PopulationRequired: 1,
			GasEnergyPerRating: 1,
		},
		{
			Key:                "metal_refineries",
			Name:               "Metal Refineries",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(1, 2.0, 30),
			EnergyDelta:        -1,
			AreaRequired:       1,
			PopulationRequired: 1,
			ProductionRate:     1,
		},
		{
			Key:                "crystal_mines",
			Name:               "Crystal Mines",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(2, 2.0, 30),
			EnergyDelta:        -1,
			AreaRequired:       1,
			PopulationRequired: 1,
			ProductionRate:     2,
		},
		{
			Key:                "research_labs",
			Name:               "Research Labs",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(2, 2.0, 30),
			EnergyDelta:        -1,
			AreaRequired:       1,
			PopulationRequired: 1,
			ResearchRate:       8,
		},
		{
			Key:                "shipyards",
			Name:               "Shipyards",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(5, 2.0, 30),
			EnergyDelta:        -1,
			AreaRequired:       1,
			PopulationRequired: 1,
			ProductionRate:     2,
		},
		{
			Key:                "orbital_plants",
			Name:               "Orbital Plants",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        schedule(40, 2.0, 20),
			EnergyDelta:        12,
			PopulationRequired: 1,
		},

		// Technologies
		{
			Key:          "energy_tech",
			Name:         "Energy",
			Kind:         catalog.KindTech,
			CapacityKind: catalog.CapacityResearch,
			CostByLevel:  schedule(2, 2.0, 25),
		},
		{
			Key:          "computer_tech",
			Name:         "Computer",
			Kind:         catalog.KindTech,
			CapacityKind: catalog.CapacityResearch,
			CostByLevel:  schedule(4, 2.0, 25),
		},
		{
			Key:          "armour_tech",
			Name:         "Armour",
			Kind:         catalog.KindTech,
			CapacityKind: catalog.CapacityResearch,
			CostByLevel:  schedule(8, 2.0, 25),
		},
		{
			Key:          "laser_tech",
			Name:         "Laser",
			Kind:         catalog.KindTech,
			CapacityKind: catalog.CapacityResearch,
			CostByLevel:  schedule(4, 2.0, 25),
		},

		// Units
		{
			Key:          "fighters",
			Name:         "Fighters",
			Kind:         catalog.KindUnit,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{5},
		},
		{
			Key:          "corvettes",
			Name:         "Corvettes",
			Kind:         catalog.KindUnit,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{20},
		},
		{
			Key:          "frigates",
			Name:         "Frigates",
			Kind:         catalog.KindUnit,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{80},
		},
		{
			Key:          "outpost_ships",
			Name:         "Outpost Ships",
			Kind:         catalog.KindUnit,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{250},
		},

		// Defenses
		{
			Key:          "barracks",
			Name:         "Barracks",
			Kind:         catalog.KindDefense,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{5},
		},
		{
			Key:          "laser_turrets",
			Name:         "Laser Turrets",
			Kind:         catalog.KindDefense,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{10},
		},
		{
			Key:          "plasma_turrets",
			Name:         "Plasma Turrets",
			Kind:         catalog.KindDefense,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{100},
		},
	}
}
