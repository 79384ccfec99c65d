package orders

import (
	"context"
	"fmt"

	"github.com/stellaredge/empire-engine/internal/application/common"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/catalog"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GetStatsQuery asks for a base's area, population and energy view
type GetStatsQuery struct {
	EmpireID   int
	Coordinate string
}

// GetStatsResponse carries the derived base statistics
type GetStatsResponse struct {
	Area       base.Usage
	Population base.Usage
	Energy     base.EnergyBalance
}

// GetStatsHandler computes the read-only status view of one base
type GetStatsHandler struct {
	baseRepo     base.Repository
	buildingRepo base.BuildingRepository
	lookup       catalog.Lookup
	clock        shared.Clock
}

// NewGetStatsHandler creates a new stats query handler
func NewGetStatsHandler(
	baseRepo base.Repository,
	buildingRepo base.BuildingRepository,
	lookup catalog.Lookup,
	clock shared.Clock,
) *GetStatsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetStatsHandler{
		baseRepo:     baseRepo,
		buildingRepo: buildingRepo,
		lookup:       lookup,
		clock:        clock,
	}
}

// Handle executes the stats query
func (h *GetStatsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetStatsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatsQuery")
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

	now := h.clock.Now()
	stats, err := base.ComputeStats(b, records, h.lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	energy, err := base.ComputeEnergyBalance(b, records, h.lookup, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute energy balance: %w", err)
	}

	return &GetStatsResponse{
		Area:       stats.Area,
		Population: stats.Population,
		Energy:     energy,
	}, nil
}
