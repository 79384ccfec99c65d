package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stellaredge/empire-engine/internal/adapters/metrics"
	"github.com/stellaredge/empire-engine/internal/application/common"
	appledger "github.com/stellaredge/empire-engine/internal/application/ledger"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/pkg/utils"
)

// StartOrderCommand requests a new construction, research, production
// or defense order at a base
type StartOrderCommand struct {
	EmpireID   int
	Coordinate string
	CatalogKey string
}

// StartOrderResponse is the admitted order
type StartOrderResponse struct {
	OrderID     string
	Kind        queue.Kind
	Level       int
	CreditsCost int
	StartedAt   time.Time
	CompletesAt time.Time
}

// StartOrderHandler is the admission pipeline: the single authority
// for whether an empire may start an order at a base right now. Checks
// run in a fixed order, each with a distinct rejection code; the first
// failure wins. On success the persistent row is written BEFORE the
// credit debit: a debit failure after the row exists under-charges and
// is reconcilable, whereas the reverse order could charge for an order
// that was never persisted.
type StartOrderHandler struct {
	empireRepo   empire.Repository
	baseRepo     base.Repository
	buildingRepo base.BuildingRepository
	queueRepo    queue.Repository
	techRepo     empire.TechLevelRepository
	lookup       catalog.Lookup
	creditLedger *appledger.Service
	baseLock     *BaseLock
	clock        shared.Clock
}

// NewStartOrderHandler creates a new admission pipeline handler
func NewStartOrderHandler(
	empireRepo empire.Repository,
	baseRepo base.Repository,
	buildingRepo base.BuildingRepository,
	queueRepo queue.Repository,
	techRepo empire.TechLevelRepository,
	lookup catalog.Lookup,
	creditLedger *appledger.Service,
	baseLock *BaseLock,
	clock shared.Clock,
) *StartOrderHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if baseLock == nil {
		baseLock = NewBaseLock()
	}
	return &StartOrderHandler{
		empireRepo:   empireRepo,
		baseRepo:     baseRepo,
		buildingRepo: buildingRepo,
		queueRepo:    queueRepo,
		techRepo:     techRepo,
		lookup:       lookup,
		creditLedger: creditLedger,
		baseLock:     baseLock,
		clock:        clock,
	}
}

// Handle executes the start order command
func (h *StartOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartOrderCommand")
	}

	empireID, err := shared.NewEmpireID(cmd.EmpireID)
	if err != nil {
		return nil, shared.NewValidationError("empire_id", err.Error())
	}
	coord, err := shared.ParseCoordinate(cmd.Coordinate)
	if err != nil {
		return nil, shared.NewValidationError("coordinate", err.Error())
	}

	resp, err := h.admit(ctx, empireID, coord, cmd.CatalogKey)
	h.observe(cmd.CatalogKey, resp, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *StartOrderHandler) admit(ctx context.Context, empireID shared.EmpireID, coord shared.Coordinate, catalogKey string) (*StartOrderResponse, error) {
	emp, err := h.empireRepo.FindByID(ctx, empireID)
	if err != nil {
		if _, notFound := err.(*shared.EmpireNotFoundError); notFound {
			return nil, NewRejection(CodeEmpireNotFound, "empire %s not found", empireID)
		}
		return nil, fmt.Errorf("failed to load empire: %w", err)
	}

	b, err := h.baseRepo.FindByCoordinate(ctx, coord)
	if err != nil {
		if _, notFound := err.(*shared.BaseNotFoundError); notFound {
			return nil, NewRejection(CodeBaseNotFound, "base %s not found", coord)
		}
		return nil, fmt.Errorf("failed to load base: %w", err)
	}

	// Check 1: ownership
	if !b.EmpireID.Equals(empireID) {
		return nil, NewRejection(CodeNotOwner, "empire %s does not own base %s", empireID, coord)
	}

	spec, err := h.lookup.GetSpec(catalogKey)
	if err != nil {
		// An unknown key cannot resolve a cost schedule either way
		return nil, NewRejection(CodeNoCostDefined, "unknown catalog key %q", catalogKey)
	}

	if spec.Kind == catalog.KindStructure {
		return h.admitStructure(ctx, emp, b, spec)
	}
	return h.admitQueued(ctx, emp, b, spec)
}

// admitStructure handles the single-slot construction queue. The
// conflict check and the row write run under the per-base lock so two
// concurrent admissions for the same base can never both succeed.
func (h *StartOrderHandler) admitStructure(ctx context.Context, emp *empire.Empire, b *base.Base, spec *catalog.Spec) (*StartOrderResponse, error) {
	unlock := h.baseLock.Lock(b.Coordinate)
	defer unlock()

	now := h.clock.Now()

	records, err := h.buildingRepo.ListAt(ctx, b.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("failed to load buildings: %w", err)
	}

	// Check 2: conflict. One construction slot per base, and the same
	// key may not already be queued.
	for _, rec := range records {
		if !base.IsInProgress(rec, now) {
			continue
		}
		if rec.CatalogKey == spec.Key {
			return nil, NewRejection(CodeAlreadyInProgress, "%s is already being built at %s", spec.Key, b.Coordinate)
		}
		return nil, NewRejection(CodeAlreadyInProgress, "base %s construction slot is occupied by %s", b.Coordinate, rec.CatalogKey)
	}

	// Check 3: capacity
	capacities, err := base.ComputeCapacities(b, records, h.lookup, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute capacities: %w", err)
	}
	rate := capacities.ForKind(spec.CapacityKind)
	if rate <= 0 {
		return nil, NewRejection(CodeNoCapacity, "base %s has no %s capacity", b.Coordinate, spec.CapacityKind)
	}

	// Check 4: cost resolution for the next level
	var existing *base.BuildingRecord
	for _, rec := range records {
		if rec.CatalogKey == spec.Key {
			existing = rec
			break
		}
	}
	nextLevel := 1
	if existing != nil {
		nextLevel = existing.Level + 1
	}
	cost, err := h.lookup.CostForLevel(spec.Key, nextLevel)
	if err != nil {
		return nil, NewRejection(CodeNoCostDefined, "no cost defined for %s level %d", spec.Key, nextLevel)
	}

	// Check 5: credit sufficiency
	if !emp.CanAfford(cost) {
		return nil, &Rejection{
			Code:      CodeInsufficientResources,
			Detail:    fmt.Sprintf("order costs %d, empire %s has %d", cost, emp.ID, emp.Credits),
			Shortfall: emp.Shortfall(cost),
		}
	}

	// Check 6: energy, only for net consumers
	if spec.EnergyDelta < 0 {
		balance, err := base.ComputeEnergyBalance(b, records, h.lookup, now)
		if err != nil {
			return nil, fmt.Errorf("failed to compute energy balance: %w", err)
		}
		if balance.Project(spec.EnergyDelta) < 0 {
			return nil, NewRejection(CodeInsufficientEnergy,
				"%s needs %d energy, base %s balance is %d", spec.Key, -spec.EnergyDelta, b.Coordinate, balance.Balance)
		}
	}

	// Checks 7 and 8: area and population
	stats, err := base.ComputeStats(b, records, h.lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	if stats.Area.Free < spec.AreaRequired {
		return nil, NewRejection(CodeInsufficientArea,
			"%s needs %d area, base %s has %d free", spec.Key, spec.AreaRequired, b.Coordinate, stats.Area.Free)
	}
	if stats.Population.Free < spec.PopulationRequired {
		return nil, NewRejection(CodeInsufficientPopulation,
			"%s needs %d population, base %s has %d free", spec.Key, spec.PopulationRequired, b.Coordinate, stats.Population.Free)
	}

	completesAt := now.Add(etaFor(cost, rate))
	orderID := uuid.New().String()

	// Row write first, debit second (see handler doc)
	if existing != nil {
		err = h.buildingRepo.MarkUpgrading(ctx, b.Coordinate, spec.Key, orderID, now, completesAt, cost)
	} else {
		err = h.buildingRepo.Insert(ctx, &base.BuildingRecord{
			EmpireID:    emp.ID,
			Coordinate:  b.Coordinate,
			CatalogKey:  spec.Key,
			Level:       1,
			Active:      false,
			StartedAt:   now,
			CompletesAt: completesAt,
			CreditsCost: cost,
			OrderID:     orderID,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist construction order: %w", err)
	}

	h.debitAdmitted(ctx, emp.ID, cost, orderID, spec.Key)

	return &StartOrderResponse{
		OrderID:     orderID,
		Kind:        queue.KindStructure,
		Level:       nextLevel,
		CreditsCost: cost,
		StartedAt:   now,
		CompletesAt: completesAt,
	}, nil
}

// admitQueued handles the unbounded tech, unit and defense queues
func (h *StartOrderHandler) admitQueued(ctx context.Context, emp *empire.Empire, b *base.Base, spec *catalog.Spec) (*StartOrderResponse, error) {
	now := h.clock.Now()

	records, err := h.buildingRepo.ListAt(ctx, b.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("failed to load buildings: %w", err)
	}

	// Check 3: capacity (no conflict check; these queues are unbounded)
	capacities, err := base.ComputeCapacities(b, records, h.lookup, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute capacities: %w", err)
	}
	rate := capacities.ForKind(spec.CapacityKind)
	if rate <= 0 {
		return nil, NewRejection(CodeNoCapacity, "base %s has no %s capacity", b.Coordinate, spec.CapacityKind)
	}

	// Check 4: cost resolution. Tech levels project past pending
	// research so queuing twice queues consecutive levels.
	level := 0
	if spec.Kind == catalog.KindTech {
		current, err := h.techRepo.Level(ctx, emp.ID, spec.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load tech level: %w", err)
		}
		pending, err := h.queueRepo.CountPendingByKey(ctx, emp.ID, spec.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending research: %w", err)
		}
		level = current + pending + 1
	}
	costLevel := level
	if costLevel == 0 {
		costLevel = 1 // units and defenses have a flat per-item cost
	}
	cost, err := h.lookup.CostForLevel(spec.Key, costLevel)
	if err != nil {
		return nil, NewRejection(CodeNoCostDefined, "no cost defined for %s level %d", spec.Key, costLevel)
	}

	// Check 5: credit sufficiency
	if !emp.CanAfford(cost) {
		return nil, &Rejection{
			Code:      CodeInsufficientResources,
			Detail:    fmt.Sprintf("order costs %d, empire %s has %d", cost, emp.ID, emp.Credits),
			Shortfall: emp.Shortfall(cost),
		}
	}

	kind, err := queue.KindForCatalog(spec.Kind)
	if err != nil {
		return nil, err
	}

	completesAt := now.Add(etaFor(cost, rate))
	item, err := queue.NewItem(kind, emp.ID, b.Coordinate, spec.Key, level, now, completesAt, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue item: %w", err)
	}

	// Row write first, debit second (see handler doc)
	if err := h.queueRepo.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue order: %w", err)
	}

	h.debitAdmitted(ctx, emp.ID, cost, item.ID(), spec.Key)

	return &StartOrderResponse{
		OrderID:     item.ID(),
		Kind:        kind,
		Level:       level,
		CreditsCost: cost,
		StartedAt:   now,
		CompletesAt: completesAt,
	}, nil
}

// debitAdmitted reserves the credits for an order whose row already
// exists. A failure here is logged as an inconsistency, never rolled
// back and never surfaced to the caller: the order stands.
func (h *StartOrderHandler) debitAdmitted(ctx context.Context, empireID shared.EmpireID, cost int, orderID, catalogKey string) {
	_, err := h.creditLedger.Debit(ctx, empireID, cost, orderID, fmt.Sprintf("order %s", catalogKey))
	if err != nil {
		common.LoggerFromContext(ctx).Error("credit debit failed after order write", map[string]interface{}{
			"empire_id":   empireID.String(),
			"order_id":    orderID,
			"catalog_key": catalogKey,
			"cost":        cost,
			"error":       err.Error(),
		})
	}
}

// etaFor converts a cost and an hourly rate into a completion delay:
// ceil(cost / rate * 3600) seconds, floored at one second
func etaFor(cost, ratePerHour int) time.Duration {
	seconds := utils.CeilDiv(cost*3600, ratePerHour)
	seconds = utils.Max(seconds, 1)
	return time.Duration(seconds) * time.Second
}

func (h *StartOrderHandler) observe(catalogKey string, resp *StartOrderResponse, err error) {
	if err == nil {
		metrics.RecordAdmission(string(resp.Kind), "admitted", "")
		metrics.ObserveOrderETA(string(resp.Kind), resp.CompletesAt.Sub(resp.StartedAt).Seconds())
		return
	}
	if rejection := AsRejection(err); rejection != nil {
		metrics.RecordAdmission("", "rejected", string(rejection.Code))
		return
	}
	metrics.RecordAdmission("", "error", "")
}
