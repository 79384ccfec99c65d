package base

import (
	"context"
	"time"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Repository defines base persistence operations
type Repository interface {
	// FindByCoordinate retrieves a base by its map coordinate
	FindByCoordinate(ctx context.Context, coord shared.Coordinate) (*Base, error)

	// Save persists a base (upsert)
	Save(ctx context.Context, b *Base) error
}

// BuildingRepository defines building-record persistence operations
type BuildingRepository interface {
	// ListAt retrieves every building record at a base
	ListAt(ctx context.Context, coord shared.Coordinate) ([]*BuildingRecord, error)

	// FindAt retrieves the record for one catalog key at a base, or
	// nil when the structure has never been queued there
	FindAt(ctx context.Context, coord shared.Coordinate, catalogKey string) (*BuildingRecord, error)

	// Insert persists a new building record
	Insert(ctx context.Context, rec *BuildingRecord) error

	// FindByOrderID retrieves the record carrying the given in-flight
	// order id, or nil when no record carries it
	FindByOrderID(ctx context.Context, orderID string) (*BuildingRecord, error)

	// MarkUpgrading flips an active record into an upgrade in
	// progress, conditional on it not already being one
	MarkUpgrading(ctx context.Context, coord shared.Coordinate, catalogKey string, orderID string, startedAt, completesAt time.Time, creditsCost int) error

	// ActivateDue finalizes records whose completion time has passed:
	// first builds become active, upgrades bump their level. Returns
	// the number of records finalized.
	ActivateDue(ctx context.Context, now time.Time) (int, error)

	// CancelOrder removes a queued first build or reverts an upgrade
	// in progress, conditional on the order not having completed.
	// Returns the recorded credit cost for the refund.
	CancelOrder(ctx context.Context, orderID string, now time.Time) (int, error)
}
