package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredge/empire-engine/internal/adapters/persistence"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/test/helpers"
)

func mustNewItem(t *testing.T, kind queue.Kind, key string, level int, completesAt time.Time) *queue.Item {
	t.Helper()

	item, err := queue.NewItem(
		kind,
		shared.MustNewEmpireID(1),
		shared.MustParseCoordinate("1:1:1:1"),
		key,
		level,
		completesAt.Add(-time.Hour),
		completesAt,
		100,
	)
	require.NoError(t, err)
	return item
}

func TestQueueRepository_EnqueueAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()

	item := mustNewItem(t, queue.KindTech, "energy_tech", 2, time.Now().UTC().Add(time.Hour))

	// Act
	require.NoError(t, repo.Enqueue(ctx, item))
	found, err := repo.FindByID(ctx, item.ID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, item.ID(), found.ID())
	assert.Equal(t, queue.KindTech, found.Kind())
	assert.Equal(t, "energy_tech", found.CatalogKey())
	assert.Equal(t, 2, found.Level())
	assert.Equal(t, queue.StatusPending, found.Status())
	assert.Equal(t, 100, found.CreditsCost())
}

func TestQueueRepository_FindByIDNotFound(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)

	// Act
	_, err := repo.FindByID(context.Background(), "no-such-order")

	// Assert
	require.Error(t, err)
	assert.IsType(t, &queue.ItemNotFoundError{}, err)
}

func TestQueueRepository_CompleteIfPendingFlipsOnce(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()

	item := mustNewItem(t, queue.KindUnit, "fighters", 0, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.Enqueue(ctx, item))

	// Act: first flip wins, second finds no pending row
	flipped, err := repo.CompleteIfPending(ctx, item.ID())
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.CompleteIfPending(ctx, item.ID())
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestQueueRepository_CancelAfterCompleteLosesRace(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()

	item := mustNewItem(t, queue.KindDefense, "laser_turrets", 0, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.Enqueue(ctx, item))

	flipped, err := repo.CompleteIfPending(ctx, item.ID())
	require.NoError(t, err)
	require.True(t, flipped)

	// Act
	flipped, err = repo.CancelIfPending(ctx, item.ID())

	// Assert: the completed row never cancels
	require.NoError(t, err)
	assert.False(t, flipped)

	found, err := repo.FindByID(ctx, item.ID())
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, found.Status())
}

func TestQueueRepository_ListDueAndPending(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	due := mustNewItem(t, queue.KindUnit, "fighters", 0, now.Add(-time.Minute))
	ahead := mustNewItem(t, queue.KindUnit, "corvettes", 0, now.Add(time.Hour))
	cancelled := mustNewItem(t, queue.KindUnit, "frigates", 0, now.Add(-time.Minute))

	for _, item := range []*queue.Item{due, ahead, cancelled} {
		require.NoError(t, repo.Enqueue(ctx, item))
	}
	flipped, err := repo.CancelIfPending(ctx, cancelled.ID())
	require.NoError(t, err)
	require.True(t, flipped)

	// Act
	dueItems, err := repo.ListDue(ctx, now)
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx, shared.MustNewEmpireID(1), nil)
	require.NoError(t, err)

	// Assert: only the pending-and-elapsed item is due; the cancelled
	// one is invisible everywhere
	require.Len(t, dueItems, 1)
	assert.Equal(t, due.ID(), dueItems[0].ID())

	require.Len(t, pending, 2)
	assert.Equal(t, due.ID(), pending[0].ID())
	assert.Equal(t, ahead.ID(), pending[1].ID())
}

func TestQueueRepository_CountPendingByKey(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := mustNewItem(t, queue.KindTech, "energy_tech", 1, now.Add(time.Hour))
	second := mustNewItem(t, queue.KindTech, "energy_tech", 2, now.Add(2*time.Hour))
	other := mustNewItem(t, queue.KindTech, "laser_tech", 1, now.Add(time.Hour))

	for _, item := range []*queue.Item{first, second, other} {
		require.NoError(t, repo.Enqueue(ctx, item))
	}

	// Act
	count, err := repo.CountPendingByKey(ctx, shared.MustNewEmpireID(1), "energy_tech")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueueRepository_PendingDepthByKind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormQueueRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	tech := mustNewItem(t, queue.KindTech, "energy_tech", 1, now.Add(time.Hour))
	firstUnit := mustNewItem(t, queue.KindUnit, "fighters", 0, now.Add(time.Hour))
	secondUnit := mustNewItem(t, queue.KindUnit, "corvettes", 0, now.Add(2*time.Hour))
	completed := mustNewItem(t, queue.KindDefense, "laser_turrets", 0, now.Add(-time.Minute))

	for _, item := range []*queue.Item{tech, firstUnit, secondUnit, completed} {
		require.NoError(t, repo.Enqueue(ctx, item))
	}
	flipped, err := repo.CompleteIfPending(ctx, completed.ID())
	require.NoError(t, err)
	require.True(t, flipped)

	// Act
	depths, err := repo.PendingDepthByKind(ctx)

	// Assert: terminal rows do not count, absent kinds are absent
	require.NoError(t, err)
	assert.Equal(t, 1, depths[queue.KindTech])
	assert.Equal(t, 2, depths[queue.KindUnit])
	assert.Equal(t, 0, depths[queue.KindDefense])
}
