package base_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// mapLookup is a minimal catalog.Lookup over a fixed spec set
type mapLookup map[string]*catalog.Spec

func (m mapLookup) GetSpec(key string) (*catalog.Spec, error) {
	spec, ok := m[key]
	if !ok {
		return nil, catalog.NewSpecNotFoundError(key)
	}
	return spec, nil
}

func (m mapLookup) CostForLevel(key string, level int) (int, error) {
	spec, err := m.GetSpec(key)
	if err != nil {
		return 0, err
	}
	return spec.CostForLevel(level)
}

var testLookup = mapLookup{
	"construction_yards": {
		Key:              "construction_yards",
		Kind:             catalog.KindStructure,
		CapacityKind:     catalog.CapacityConstruction,
		CostByLevel:      []int{100, 200, 400},
		AreaRequired:     2,
		ConstructionRate: 20,
	},
	"research_labs": {
		Key:                "research_labs",
		Kind:               catalog.KindStructure,
		CapacityKind:       catalog.CapacityConstruction,
		CostByLevel:        []int{150, 300},
		EnergyDelta:        -1,
		AreaRequired:       1,
		PopulationRequired: 2,
		ResearchRate:       8,
	},
	"solar_plants": {
		Key:                  "solar_plants",
		Kind:                 catalog.KindStructure,
		CapacityKind:         catalog.CapacityConstruction,
		CostByLevel:          []int{100, 200},
		AreaRequired:         1,
		PopulationRequired:   1,
		SolarEnergyPerRating: 1,
	},
	"metal_refineries": {
		Key:                "metal_refineries",
		Kind:               catalog.KindStructure,
		CapacityKind:       catalog.CapacityConstruction,
		CostByLevel:        []int{120, 240},
		EnergyDelta:        -2,
		AreaRequired:       1,
		PopulationRequired: 1,
		ProductionRate:     4,
	},
}

func testBase() *base.Base {
	return &base.Base{
		Coordinate:         shared.MustParseCoordinate("1:1:1:1"),
		EmpireID:           shared.MustNewEmpireID(1),
		Name:               "Homeworld",
		SolarRating:        3,
		GasRating:          0,
		Fertility:          5,
		Area:               20,
		PopulationCapacity: 10,
	}
}

func activeRecord(key string, level int) *base.BuildingRecord {
	return &base.BuildingRecord{
		EmpireID:   shared.MustNewEmpireID(1),
		Coordinate: shared.MustParseCoordinate("1:1:1:1"),
		CatalogKey: key,
		Level:      level,
		Active:     true,
	}
}

func TestComputeCapacities_FertilityBaseline(t *testing.T) {
	// Arrange: a fresh base with no buildings at all
	b := testBase()
	now := time.Now().UTC()

	// Act
	capacities, err := base.ComputeCapacities(b, nil, testLookup, now)

	// Assert: fertility 5 grants a construction baseline so the first
	// structure can ever be started; nothing else is free
	require.NoError(t, err)
	assert.Equal(t, 10, capacities.Construction)
	assert.Equal(t, 0, capacities.Production)
	assert.Equal(t, 0, capacities.Research)
}

func TestComputeCapacities_ActiveBuildingsScaleByLevel(t *testing.T) {
	// Arrange
	b := testBase()
	now := time.Now().UTC()
	records := []*base.BuildingRecord{
		activeRecord("construction_yards", 3),
		activeRecord("research_labs", 2),
		activeRecord("metal_refineries", 1),
	}

	// Act
	capacities, err := base.ComputeCapacities(b, records, testLookup, now)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10+20*3, capacities.Construction)
	assert.Equal(t, 4, capacities.Production)
	assert.Equal(t, 16, capacities.Research)
}

func TestComputeCapacities_InProgressBuildDoesNotContribute(t *testing.T) {
	// Arrange: a first build still half an hour from completion
	b := testBase()
	now := time.Now().UTC()
	records := []*base.BuildingRecord{
		{
			EmpireID:    b.EmpireID,
			Coordinate:  b.Coordinate,
			CatalogKey:  "construction_yards",
			Level:       1,
			Active:      false,
			StartedAt:   now.Add(-30 * time.Minute),
			CompletesAt: now.Add(30 * time.Minute),
		},
	}

	// Act
	capacities, err := base.ComputeCapacities(b, records, testLookup, now)

	// Assert: only the fertility baseline
	require.NoError(t, err)
	assert.Equal(t, 10, capacities.Construction)
}

func TestComputeCapacities_ElapsedUnsweptBuildContributes(t *testing.T) {
	// Arrange: completion time passed but the sweep has not run yet
	b := testBase()
	now := time.Now().UTC()
	records := []*base.BuildingRecord{
		{
			EmpireID:    b.EmpireID,
			Coordinate:  b.Coordinate,
			CatalogKey:  "construction_yards",
			Level:       1,
			Active:      false,
			StartedAt:   now.Add(-2 * time.Hour),
			CompletesAt: now.Add(-time.Minute),
		},
	}

	// Act
	capacities, err := base.ComputeCapacities(b, records, testLookup, now)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10+20, capacities.Construction)
}

func TestComputeCapacities_UpgradeKeepsOperatingLevel(t *testing.T) {
	// Arrange: level 2 yards upgrading to 3; the operating level keeps
	// contributing until the sweep bumps it
	b := testBase()
	now := time.Now().UTC()
	records := []*base.BuildingRecord{
		{
			EmpireID:       b.EmpireID,
			Coordinate:     b.Coordinate,
			CatalogKey:     "construction_yards",
			Level:          2,
			Active:         false,
			PendingUpgrade: true,
			StartedAt:      now.Add(-time.Hour),
			CompletesAt:    now.Add(time.Hour),
		},
	}

	// Act
	capacities, err := base.ComputeCapacities(b, records, testLookup, now)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10+20*2, capacities.Construction)
}

func TestComputeStats_UsageConservation(t *testing.T) {
	// Arrange
	b := testBase()
	records := []*base.BuildingRecord{
		activeRecord("construction_yards", 2), // area 4
		activeRecord("research_labs", 1),      // area 1, pop 2
	}

	// Act
	stats, err := base.ComputeStats(b, records, testLookup)

	// Assert: Used + Free == Total on both axes
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Area.Used)
	assert.Equal(t, stats.Area.Total, stats.Area.Used+stats.Area.Free)
	assert.Equal(t, 2, stats.Population.Used)
	assert.Equal(t, stats.Population.Total, stats.Population.Used+stats.Population.Free)
}

func TestComputeStats_UpgradeReservesIncomingLevel(t *testing.T) {
	// Arrange: level 2 yards upgrading to 3 reserve area for level 3
	b := testBase()
	records := []*base.BuildingRecord{
		{
			EmpireID:       b.EmpireID,
			Coordinate:     b.Coordinate,
			CatalogKey:     "construction_yards",
			Level:          2,
			PendingUpgrade: true,
		},
	}

	// Act
	stats, err := base.ComputeStats(b, records, testLookup)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Area.Used)
}

func TestIsEffectivelyActive(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name     string
		rec      *base.BuildingRecord
		expected bool
	}{
		{
			name:     "active structure",
			rec:      &base.BuildingRecord{Active: true},
			expected: true,
		},
		{
			name:     "upgrade in progress keeps operating",
			rec:      &base.BuildingRecord{PendingUpgrade: true, CompletesAt: now.Add(time.Hour)},
			expected: true,
		},
		{
			name:     "elapsed but unswept first build",
			rec:      &base.BuildingRecord{CompletesAt: now.Add(-time.Second)},
			expected: true,
		},
		{
			name:     "first build still running",
			rec:      &base.BuildingRecord{CompletesAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "zero record",
			rec:      &base.BuildingRecord{},
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, base.IsEffectivelyActive(tc.rec, now))
		})
	}
}

func TestIsInProgress(t *testing.T) {
	now := time.Now().UTC()

	assert.True(t, base.IsInProgress(&base.BuildingRecord{CompletesAt: now.Add(time.Minute)}, now))
	assert.False(t, base.IsInProgress(&base.BuildingRecord{Active: true, CompletesAt: now.Add(time.Minute)}, now))
	assert.False(t, base.IsInProgress(&base.BuildingRecord{CompletesAt: now.Add(-time.Minute)}, now))
}
