package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredge/empire-engine/internal/adapters/persistence"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/test/helpers"
)

func insertFirstBuild(t *testing.T, repo *persistence.GormBuildingRepository, key string, completesAt time.Time) *base.BuildingRecord {
	t.Helper()

	rec := &base.BuildingRecord{
		EmpireID:    shared.MustNewEmpireID(1),
		Coordinate:  shared.MustParseCoordinate("1:1:1:1"),
		CatalogKey:  key,
		Level:       1,
		Active:      false,
		StartedAt:   completesAt.Add(-time.Hour),
		CompletesAt: completesAt,
		CreditsCost: 250,
		OrderID:     uuid.New().String(),
	}
	require.NoError(t, repo.Insert(context.Background(), rec))
	return rec
}

func TestBuildingRepository_InsertAndList(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	coord := shared.MustParseCoordinate("1:1:1:1")

	rec := insertFirstBuild(t, repo, "metal_refineries", time.Now().UTC().Add(time.Hour))

	// Act
	records, err := repo.ListAt(ctx, coord)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "metal_refineries", records[0].CatalogKey)
	assert.Equal(t, 1, records[0].Level)
	assert.False(t, records[0].Active)
	assert.Equal(t, 250, records[0].CreditsCost)
	assert.Equal(t, rec.OrderID, records[0].OrderID)
}

func TestBuildingRepository_FindByOrderID(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()

	rec := insertFirstBuild(t, repo, "metal_refineries", time.Now().UTC().Add(time.Hour))

	// Act
	found, err := repo.FindByOrderID(ctx, rec.OrderID)
	require.NoError(t, err)

	missing, err := repo.FindByOrderID(ctx, "no-such-order")
	require.NoError(t, err)

	// Assert
	require.NotNil(t, found)
	assert.Equal(t, rec.CatalogKey, found.CatalogKey)
	assert.Nil(t, missing)
}

func TestBuildingRepository_ActivateDueFirstBuild(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	insertFirstBuild(t, repo, "metal_refineries", now.Add(-time.Minute))
	insertFirstBuild(t, repo, "crystal_mines", now.Add(time.Hour))

	// Act
	activated, err := repo.ActivateDue(ctx, now)

	// Assert: the due build activates at its inserted level, the other
	// keeps running
	require.NoError(t, err)
	assert.Equal(t, 1, activated)

	done, err := repo.FindAt(ctx, shared.MustParseCoordinate("1:1:1:1"), "metal_refineries")
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.True(t, done.Active)
	assert.Equal(t, 1, done.Level)
	assert.Empty(t, done.OrderID)

	running, err := repo.FindAt(ctx, shared.MustParseCoordinate("1:1:1:1"), "crystal_mines")
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.False(t, running.Active)
}

func TestBuildingRepository_UpgradeLifecycle(t *testing.T) {
	// Arrange: an active level 1 structure
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	coord := shared.MustParseCoordinate("1:1:1:1")

	insertFirstBuild(t, repo, "metal_refineries", now.Add(-2*time.Hour))
	_, err := repo.ActivateDue(ctx, now.Add(-time.Hour))
	require.NoError(t, err)

	// Act: mark it upgrading
	orderID := uuid.New().String()
	err = repo.MarkUpgrading(ctx, coord, "metal_refineries", orderID, now, now.Add(time.Hour), 500)
	require.NoError(t, err)

	rec, err := repo.FindAt(ctx, coord, "metal_refineries")
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.True(t, rec.PendingUpgrade)
	assert.Equal(t, 1, rec.Level)
	assert.Equal(t, 500, rec.CreditsCost)

	// A second upgrade on the same row is refused while one is running
	err = repo.MarkUpgrading(ctx, coord, "metal_refineries", uuid.New().String(), now, now.Add(time.Hour), 500)
	assert.Error(t, err)

	// Act: sweep past the completion time
	activated, err := repo.ActivateDue(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, activated)

	// Assert: level bumped, active again, order cleared
	rec, err = repo.FindAt(ctx, coord, "metal_refineries")
	require.NoError(t, err)
	assert.True(t, rec.Active)
	assert.False(t, rec.PendingUpgrade)
	assert.Equal(t, 2, rec.Level)
	assert.Empty(t, rec.OrderID)
}

func TestBuildingRepository_CancelFirstBuildRemovesRow(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	coord := shared.MustParseCoordinate("1:1:1:1")

	rec := insertFirstBuild(t, repo, "metal_refineries", now.Add(time.Hour))

	// Act
	cost, err := repo.CancelOrder(ctx, rec.OrderID, now)

	// Assert: the stored cost comes back and the row is gone
	require.NoError(t, err)
	assert.Equal(t, 250, cost)

	found, err := repo.FindAt(ctx, coord, "metal_refineries")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestBuildingRepository_CancelUpgradeReverts(t *testing.T) {
	// Arrange: active level 1 upgrading to 2
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	coord := shared.MustParseCoordinate("1:1:1:1")

	insertFirstBuild(t, repo, "metal_refineries", now.Add(-2*time.Hour))
	_, err := repo.ActivateDue(ctx, now.Add(-time.Hour))
	require.NoError(t, err)

	orderID := uuid.New().String()
	require.NoError(t, repo.MarkUpgrading(ctx, coord, "metal_refineries", orderID, now, now.Add(time.Hour), 500))

	// Act
	cost, err := repo.CancelOrder(ctx, orderID, now)

	// Assert: the structure keeps operating at its current level
	require.NoError(t, err)
	assert.Equal(t, 500, cost)

	rec, err := repo.FindAt(ctx, coord, "metal_refineries")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Active)
	assert.False(t, rec.PendingUpgrade)
	assert.Equal(t, 1, rec.Level)
	assert.Empty(t, rec.OrderID)
}

func TestBuildingRepository_CancelAfterDueLosesRace(t *testing.T) {
	// Arrange: the build's completion time has already passed
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBuildingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := insertFirstBuild(t, repo, "metal_refineries", now.Add(-time.Minute))

	// Act
	_, err := repo.CancelOrder(ctx, rec.OrderID, now)

	// Assert: not cancellable, the row survives for the sweep
	require.Error(t, err)
	assert.IsType(t, &queue.ItemNotFoundError{}, err)

	found, err := repo.FindAt(ctx, shared.MustParseCoordinate("1:1:1:1"), "metal_refineries")
	require.NoError(t, err)
	assert.NotNil(t, found)
}
