package orders

import (
	"context"
	"fmt"

	"github.com/stellaredge/empire-engine/internal/application/common"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GetCapacitiesQuery asks for a base's current throughput rates
type GetCapacitiesQuery struct {
	EmpireID   int
	Coordinate string
}

// GetCapacitiesResponse carries the derived capacity snapshot
type GetCapacitiesResponse struct {
	Capacities base.CapacitySnapshot
}

// GetCapacitiesHandler computes a fresh capacity snapshot for one
// base. Read-only; safe to call concurrently and arbitrarily often.
type GetCapacitiesHandler struct {
	baseRepo     base.Repository
	buildingRepo base.BuildingRepository
	lookup       catalog.Lookup
	clock        shared.Clock
}

// NewGetCapacitiesHandler creates a new capacities query handler
func NewGetCapacitiesHandler(
	baseRepo base.Repository,
	buildingRepo base.BuildingRepository,
	lookup catalog.Lookup,
	clock shared.Clock,
) *GetCapacitiesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetCapacitiesHandler{
		baseRepo:     baseRepo,
		buildingRepo: buildingRepo,
		lookup:       lookup,
		clock:        clock,
	}
}

// Handle executes the capacities query
func (h *GetCapacitiesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCapacitiesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCapacitiesQuery")
	}

	empireID, err := shared.NewEmpireID(query.EmpireID)
	if err != nil {
		return nil, shared.NewValidationError("empire_id", err.Error())
	}
	coord, err := shared.ParseCoordinate(query.Coordinate)
	if err != nil {
		return nil, shared.NewValidationError("coordinate", err.Error())
	}

	b, err := h.baseRepo.FindByCoordinate(ctx, coord)
	if err != nil {
		if _, notFound := err.(*shared.BaseNotFoundError); notFound {
			return nil, NewRejection(CodeBaseNotFound, "base %s not found", coord)
		}
		return nil, fmt.Errorf("failed to load base: %w", err)
	}
	if !b.EmpireID.Equals(empireID) {
		return nil, NewRejection(CodeNotOwner, "empire %s does not own base %s", empireID, coord)
	}

	records, err := h.buildingRepo.ListAt(ctx, coord)
	if err != nil {
		return nil, fmt.Errorf("failed to load buildings: %w", err)
	}

	capacities, err := base.ComputeCapacities(b, records, h.lookup, h.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute capacities: %w", err)
	}

	return &GetCapacitiesResponse{Capacities: capacities}, nil
}
