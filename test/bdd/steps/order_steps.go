package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	staticcatalog "github.com/stellaredge/empire-engine/internal/adapters/catalog"
	"github.com/stellaredge/empire-engine/internal/adapters/persistence"
	appledger "github.com/stellaredge/empire-engine/internal/application/ledger"
	"github.com/stellaredge/empire-engine/internal/application/orders"
	"github.com/stellaredge/empire-engine/internal/application/tick"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/internal/infrastructure/database"
)

// orderContext wires the order pipeline against a fresh in-memory
// database per scenario
type orderContext struct {
	clock     *shared.MockClock
	empires   *persistence.GormEmpireRepository
	bases     *persistence.GormBaseRepository
	buildings *persistence.GormBuildingRepository

	start  *orders.StartOrderHandler
	cancel *orders.CancelOrderHandler
	sweep  *tick.SweepDueOrdersHandler

	lastOrder  *orders.StartOrderResponse
	lastRefund *orders.CancelOrderResponse
	lastErr    error
}

// scenarioSpecs is the balance table the feature files are written
// against: round costs and rates for readable arithmetic
func scenarioSpecs() []*catalog.Spec {
	return []*catalog.Spec{
		{
			Key:                "construction_yards",
			Kind:               catalog.KindStructure,
			CapacityKind:       catalog.CapacityConstruction,
			CostByLevel:        []int{250, 500},
			AreaRequired:       2,
			PopulationRequired: 1,
			ConstructionRate:   20,
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
			Key:          "storage_depots",
			Kind:         catalog.KindStructure,
			CapacityKind: catalog.CapacityConstruction,
			CostByLevel:  []int{100},
			AreaRequired: 1,
		},
	}
}

func (oc *orderContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to create scenario database: %w", err)
	}

	oc.clock = shared.NewMockClock(time.Date(2230, 4, 1, 12, 0, 0, 0, time.UTC))
	lookup := staticcatalog.NewStaticCatalog(scenarioSpecs())

	oc.empires = persistence.NewGormEmpireRepository(db)
	oc.bases = persistence.NewGormBaseRepository(db)
	oc.buildings = persistence.NewGormBuildingRepository(db)
	queueRepo := persistence.NewGormQueueRepository(db)
	techs := persistence.NewGormTechLevelRepository(db)
	stockpiles := persistence.NewGormStockpileRepository(db)
	transactions := persistence.NewGormTransactionRepository(db)

	creditLedger := appledger.NewService(oc.empires, transactions, oc.clock)
	baseLock := orders.NewBaseLock()

	oc.start = orders.NewStartOrderHandler(oc.empires, oc.bases, oc.buildings, queueRepo, techs, lookup, creditLedger, baseLock, oc.clock)
	oc.cancel = orders.NewCancelOrderHandler(queueRepo, oc.buildings, creditLedger, baseLock, oc.clock)
	oc.sweep = tick.NewSweepDueOrdersHandler(oc.buildings, queueRepo, techs, stockpiles, oc.clock)

	oc.lastOrder = nil
	oc.lastRefund = nil
	oc.lastErr = nil
	return nil
}

// Given steps

func (oc *orderContext) anEmpireWithCredits(credits int) error {
	return oc.empires.Save(context.Background(), &empire.Empire{
		ID:      shared.MustNewEmpireID(1),
		Name:    "Empire",
		Credits: credits,
	})
}

func (oc *orderContext) theEmpireOwnsABaseWithFertility(coord string, fertility int) error {
	parsed, err := shared.ParseCoordinate(coord)
	if err != nil {
		return err
	}
	return oc.bases.Save(context.Background(), &base.Base{
		Coordinate:         parsed,
		EmpireID:           shared.MustNewEmpireID(1),
		Name:               "Base",
		SolarRating:        2,
		Fertility:          fertility,
		Area:               100,
		PopulationCapacity: 50,
	})
}

func (oc *orderContext) theBaseHasAnActiveAtLevel(coord, key string, level int) error {
	parsed, err := shared.ParseCoordinate(coord)
	if err != nil {
		return err
	}
	now := oc.clock.Now()
	return oc.buildings.Insert(context.Background(), &base.BuildingRecord{
		EmpireID:    shared.MustNewEmpireID(1),
		Coordinate:  parsed,
		CatalogKey:  key,
		Level:       level,
		Active:      true,
		StartedAt:   now.Add(-2 * time.Hour),
		CompletesAt: now.Add(-time.Hour),
	})
}

// When steps

func (oc *orderContext) theEmpireOrdersAt(key, coord string) error {
	resp, err := oc.start.Handle(context.Background(), &orders.StartOrderCommand{
		EmpireID:   1,
		Coordinate: coord,
		CatalogKey: key,
	})
	oc.lastErr = err
	if err == nil {
		oc.lastOrder = resp.(*orders.StartOrderResponse)
	}
	return nil
}

func (oc *orderContext) theEmpireCancelsTheOrder() error {
	if oc.lastOrder == nil {
		return fmt.Errorf("no admitted order to cancel")
	}
	resp, err := oc.cancel.Handle(context.Background(), &orders.CancelOrderCommand{
		EmpireID: 1,
		OrderID:  oc.lastOrder.OrderID,
	})
	oc.lastErr = err
	if err == nil {
		oc.lastRefund = resp.(*orders.CancelOrderResponse)
	}
	return nil
}

func (oc *orderContext) secondsPass(seconds int) error {
	oc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (oc *orderContext) theSweepRuns() error {
	_, err := oc.sweep.Handle(context.Background(), &tick.SweepDueOrdersCommand{})
	return err
}

// Then steps

func (oc *orderContext) theOrderIsAdmitted() error {
	if oc.lastErr != nil {
		return fmt.Errorf("expected admission, got: %v", oc.lastErr)
	}
	if oc.lastOrder == nil {
		return fmt.Errorf("no order response recorded")
	}
	return nil
}

func (oc *orderContext) theOrderCompletesInSeconds(seconds int) error {
	if oc.lastOrder == nil {
		return fmt.Errorf("no order response recorded")
	}
	actual := int(oc.lastOrder.CompletesAt.Sub(oc.lastOrder.StartedAt) / time.Second)
	if actual != seconds {
		return fmt.Errorf("expected completion in %d seconds, got %d", seconds, actual)
	}
	return nil
}

func (oc *orderContext) theOrderIsRejectedWithCode(code string) error {
	if oc.lastErr == nil {
		return fmt.Errorf("expected rejection %s, but the order was admitted", code)
	}
	rejection := orders.AsRejection(oc.lastErr)
	if rejection == nil {
		return fmt.Errorf("expected a rejection, got: %v", oc.lastErr)
	}
	if string(rejection.Code) != code {
		return fmt.Errorf("expected rejection %s, got %s", code, rejection.Code)
	}
	return nil
}

func (oc *orderContext) theShortfallIsCredits(shortfall int) error {
	rejection := orders.AsRejection(oc.lastErr)
	if rejection == nil {
		return fmt.Errorf("expected a rejection, got: %v", oc.lastErr)
	}
	if rejection.Shortfall != shortfall {
		return fmt.Errorf("expected shortfall %d, got %d", shortfall, rejection.Shortfall)
	}
	return nil
}

func (oc *orderContext) theEmpireBalanceIsCredits(credits int) error {
	emp, err := oc.empires.FindByID(context.Background(), shared.MustNewEmpireID(1))
	if err != nil {
		return err
	}
	if emp.Credits != credits {
		return fmt.Errorf("expected balance %d, got %d", credits, emp.Credits)
	}
	return nil
}

func (oc *orderContext) theRefundIsCredits(credits int) error {
	if oc.lastRefund == nil {
		return fmt.Errorf("no cancellation response recorded")
	}
	if oc.lastRefund.RefundedCredits != credits {
		return fmt.Errorf("expected refund %d, got %d", credits, oc.lastRefund.RefundedCredits)
	}
	return nil
}

func (oc *orderContext) theBuildingAtIsActiveAtLevel(key, coord string, level int) error {
	parsed, err := shared.ParseCoordinate(coord)
	if err != nil {
		return err
	}
	rec, err := oc.buildings.FindAt(context.Background(), parsed, key)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no building %s at %s", key, coord)
	}
	if !rec.Active || rec.Level != level {
		return fmt.Errorf("expected active level %d, got active=%v level=%d", level, rec.Active, rec.Level)
	}
	return nil
}

// InitializeOrderScenario registers the order pipeline step definitions
func InitializeOrderScenario(sc *godog.ScenarioContext) {
	oc := &orderContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		return ctx, oc.reset()
	})

	sc.Step(`^an empire with (\d+) credits$`, oc.anEmpireWithCredits)
	sc.Step(`^the empire owns a base "([^"]*)" with fertility (\d+)$`, oc.theEmpireOwnsABaseWithFertility)
	sc.Step(`^the base "([^"]*)" has an active "([^"]*)" at level (\d+)$`, oc.theBaseHasAnActiveAtLevel)

	sc.Step(`^the empire orders "([^"]*)" at "([^"]*)"$`, oc.theEmpireOrdersAt)
	sc.Step(`^the empire cancels the order$`, oc.theEmpireCancelsTheOrder)
	sc.Step(`^(\d+) seconds pass$`, oc.secondsPass)
	sc.Step(`^the sweep runs$`, oc.theSweepRuns)

	sc.Step(`^the order is admitted$`, oc.theOrderIsAdmitted)
	sc.Step(`^the order completes in (\d+) seconds$`, oc.theOrderCompletesInSeconds)
	sc.Step(`^the order is rejected with code "([^"]*)"$`, oc.theOrderIsRejectedWithCode)
	sc.Step(`^the shortfall is (\d+) credits$`, oc.theShortfallIsCredits)
	sc.Step(`^the empire balance is (\d+) credits$`, oc.theEmpireBalanceIsCredits)
	sc.Step(`^the refund is (\d+) credits$`, oc.theRefundIsCredits)
	sc.Step(`^the building "([^"]*)" at "([^"]*)" is active at level (\d+)$`, oc.theBuildingAtIsActiveAtLevel)
}
