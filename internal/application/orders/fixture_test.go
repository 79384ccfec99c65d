package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	staticcatalog "github.com/stellaredge/empire-engine/internal/adapters/catalog"
	"github.com/stellaredge/empire-engine/internal/adapters/persistence"
	appledger "github.com/stellaredge/empire-engine/internal/application/ledger"
	"github.com/stellaredge/empire-engine/internal/application/orders"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/test/helpers"
)

// fixture wires the order handlers against real repositories on an
// in-memory database, with a controlled clock and balance table
type fixture struct {
	t            *testing.T
	clock        *shared.MockClock
	empires      *persistence.GormEmpireRepository
	bases        *persistence.GormBaseRepository
	buildings    *persistence.GormBuildingRepository
	queueRepo    *persistence.GormQueueRepository
	techs        *persistence.GormTechLevelRepository
	transactions *persistence.GormTransactionRepository

	start      *orders.StartOrderHandler
	cancel     *orders.CancelOrderHandler
	capacities *orders.GetCapacitiesHandler
	stats      *orders.GetStatsHandler
	listQueue  *orders.ListQueueHandler
}

// testSpecs is a deterministic balance table sized for round numbers
// in the assertions
func testSpecs() []*catalog.Spec {
	return []*catalog.Spec{
		{
			Key:                "construction_yards",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        []int{250, 500, 1000},
			AreaRequired:       2,
			PopulationRequired: 1,
			ConstructionRate:   20,
		},
		{
			Key:          "storage_depots",
			Kind:         catalog.KindStructure,
			CapacityKind: catalog.CapacityConstruction,
			CostByLevel:  []int{100, 200},
			AreaRequired: 1,
		},
		{
			Key:          "fusion_reactors",
			Kind:         catalog.KindStructure,
			CapacityKind: catalog.CapacityConstruction,
			CostByLevel:  []int{100, 200},
			EnergyDelta:  3,
			AreaRequired: 1,
		},
		{
			Key:                "ore_processors",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        []int{100, 200},
			EnergyDelta:        -5,
			AreaRequired:       1,
			PopulationRequired: 1,
		},
		{
			Key:          "habitat_domes",
			Kind:         catalog.KindStructure,
			CapacityKind: catalog.CapacityConstruction,
			CostByLevel:  []int{100},
			AreaRequired: 200,
		},
		{
			Key:                "arcologies",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        []int{100},
			AreaRequired:       1,
			PopulationRequired: 60,
		},
		{
			Key:          "research_labs",
			Kind:         catalog.KindStructure,
			CapacityKind: catalog.CapacityConstruction,
			CostByLevel:  []int{150, 300},
			AreaRequired: 1,
			ResearchRate: 8,
		},
		{
			Key:            "shipyards",
			Kind:           catalog.KindStructure,
			CapacityKind:   catalog.CapacityConstruction,
			CostByLevel:    []int{200},
			AreaRequired:   1,
			ProductionRate: 10,
		},
		{
			Key:          "energy_tech",
			Kind:         catalog.KindTech,
			CapacityKind: catalog.CapacityResearch,
			CostByLevel:  []int{2, 4, 8, 16},
		},
		{
			Key:          "fighters",
			Kind:         catalog.KindUnit,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{5},
		},
		{
			Key:          "laser_turrets",
			Kind:         catalog.KindDefense,
			CapacityKind: catalog.CapacityProduction,
			CostByLevel:  []int{10},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2230, 4, 1, 12, 0, 0, 0, time.UTC))
	lookup := staticcatalog.NewStaticCatalog(testSpecs())

	empires := persistence.NewGormEmpireRepository(db)
	bases := persistence.NewGormBaseRepository(db)
	buildings := persistence.NewGormBuildingRepository(db)
	queueRepo := persistence.NewGormQueueRepository(db)
	techs := persistence.NewGormTechLevelRepository(db)
	transactions := persistence.NewGormTransactionRepository(db)

	creditLedger := appledger.NewService(empires, transactions, clock)
	baseLock := orders.NewBaseLock()

	return &fixture{
		t:            t,
		clock:        clock,
		empires:      empires,
		bases:        bases,
		buildings:    buildings,
		queueRepo:    queueRepo,
		techs:        techs,
		transactions: transactions,
		start:        orders.NewStartOrderHandler(empires, bases, buildings, queueRepo, techs, lookup, creditLedger, baseLock, clock),
		cancel:       orders.NewCancelOrderHandler(queueRepo, buildings, creditLedger, baseLock, clock),
		capacities:   orders.NewGetCapacitiesHandler(bases, buildings, lookup, clock),
		stats:        orders.NewGetStatsHandler(bases, buildings, lookup, clock),
		listQueue:    orders.NewListQueueHandler(empires, queueRepo, buildings, clock),
	}
}

func (fx *fixture) seedEmpire(id, credits int) {
	fx.t.Helper()
	err := fx.empires.Save(context.Background(), &empire.Empire{
		ID:      shared.MustNewEmpireID(id),
		Name:    "Empire",
		Credits: credits,
	})
	require.NoError(fx.t, err)
}

// seedBase creates a base with fertility 50 (construction baseline
// 100 credits/hour), 100 area and 50 population capacity
func (fx *fixture) seedBase(empireID int, coord string) {
	fx.t.Helper()
	err := fx.bases.Save(context.Background(), &base.Base{
		Coordinate:         shared.MustParseCoordinate(coord),
		EmpireID:           shared.MustNewEmpireID(empireID),
		Name:               "Base",
		SolarRating:        2,
		Fertility:          50,
		Area:               100,
		PopulationCapacity: 50,
	})
	require.NoError(fx.t, err)
}

// seedActiveBuilding inserts a finished structure directly
func (fx *fixture) seedActiveBuilding(empireID int, coord, key string, level int) {
	fx.t.Helper()
	now := fx.clock.Now()
	err := fx.buildings.Insert(context.Background(), &base.BuildingRecord{
		EmpireID:    shared.MustNewEmpireID(empireID),
		Coordinate:  shared.MustParseCoordinate(coord),
		CatalogKey:  key,
		Level:       level,
		Active:      true,
		StartedAt:   now.Add(-2 * time.Hour),
		CompletesAt: now.Add(-time.Hour),
	})
	require.NoError(fx.t, err)
}

func (fx *fixture) startOrder(empireID int, coord, key string) (*orders.StartOrderResponse, error) {
	fx.t.Helper()
	resp, err := fx.start.Handle(context.Background(), &orders.StartOrderCommand{
		EmpireID:   empireID,
		Coordinate: coord,
		CatalogKey: key,
	})
	if err != nil {
		return nil, err
	}
	return resp.(*orders.StartOrderResponse), nil
}

func (fx *fixture) cancelOrder(empireID int, orderID string) (*orders.CancelOrderResponse, error) {
	fx.t.Helper()
	resp, err := fx.cancel.Handle(context.Background(), &orders.CancelOrderCommand{
		EmpireID: empireID,
		OrderID:  orderID,
	})
	if err != nil {
		return nil, err
	}
	return resp.(*orders.CancelOrderResponse), nil
}

func (fx *fixture) credits(empireID int) int {
	fx.t.Helper()
	emp, err := fx.empires.FindByID(context.Background(), shared.MustNewEmpireID(empireID))
	require.NoError(fx.t, err)
	return emp.Credits
}
