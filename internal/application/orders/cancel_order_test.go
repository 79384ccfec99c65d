package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredge/empire-engine/internal/application/orders"
	"github.com/stellaredge/empire-engine/internal/domain/ledger"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

func TestCancelOrder_FirstBuildRefundsStoredCost(t *testing.T) {
	// Arrange
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedBase(1, homeCoord)

	admitted, err := fx.startOrder(1, homeCoord, "construction_yards")
	require.NoError(t, err)
	require.Equal(t, 750, fx.credits(1))

	fx.clock.Advance(time.Minute)

	// Act
	cancelled, err := fx.cancelOrder(1, admitted.OrderID)

	// Assert: refund equals the debit, the balance round-trips
	require.NoError(t, err)
	assert.Equal(t, admitted.OrderID, cancelled.OrderID)
	assert.Equal(t, 250, cancelled.RefundedCredits)
	assert.Equal(t, 1000, fx.credits(1))

	// The ledger shows both sides of the reservation
	txs, err := fx.transactions.FindByReference(context.Background(), admitted.OrderID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.TypeOrderDebit, txs[0].Type())
	assert.Equal(t, ledger.TypeOrderRefund, txs[1].Type())

	// The queued build is gone
	rec, err := fx.buildings.FindAt(context.Background(), shared.MustParseCoordinate(homeCoord), "construction_yards")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCancelOrder_UpgradeRevertsToOperatingLevel(t *testing.T) {
	// Arrange: level 1 yards upgrading to 2 for 500 credits
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedBase(1, homeCoord)
	fx.seedActiveBuilding(1, homeCoord, "construction_yards", 1)

	admitted, err := fx.startOrder(1, homeCoord, "construction_yards")
	require.NoError(t, err)
	require.Equal(t, 500, fx.credits(1))

	// Act
	cancelled, err := fx.cancelOrder(1, admitted.OrderID)

	// Assert: the structure keeps operating at level 1
	require.NoError(t, err)
	assert.Equal(t, 500, cancelled.RefundedCredits)
	assert.Equal(t, 1000, fx.credits(1))

	rec, err := fx.buildings.FindAt(context.Background(), shared.MustParseCoordinate(homeCoord), "construction_yards")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Active)
	assert.False(t, rec.PendingUpgrade)
	assert.Equal(t, 1, rec.Level)
}

func TestCancelOrder_QueueItemRoundTrip(t *testing.T) {
	// Arrange: a pending research order
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedBase(1, homeCoord)
	fx.seedActiveBuilding(1, homeCoord, "research_labs", 1)

	admitted, err := fx.startOrder(1, homeCoord, "energy_tech")
	require.NoError(t, err)
	require.Equal(t, 998, fx.credits(1))

	// Act
	cancelled, err := fx.cancelOrder(1, admitted.OrderID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled.RefundedCredits)
	assert.Equal(t, 1000, fx.credits(1))

	// A second cancel hits a terminal status
	_, err = fx.cancelOrder(1, admitted.OrderID)
	requireRejection(t, err, orders.CodeInvalidStatus)
	assert.Equal(t, 1000, fx.credits(1))
}

func TestCancelOrder_RejectsForeignOrder(t *testing.T) {
	// Arrange: empire 2 tries to cancel empire 1's order
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedEmpire(2, 1000)
	fx.seedBase(1, homeCoord)

	admitted, err := fx.startOrder(1, homeCoord, "construction_yards")
	require.NoError(t, err)

	// Act
	_, err = fx.cancelOrder(2, admitted.OrderID)

	// Assert
	requireRejection(t, err, orders.CodeNotOwner)
	assert.Equal(t, 750, fx.credits(1))
}

func TestCancelOrder_UnknownOrder(t *testing.T) {
	// Arrange
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)

	// Act
	_, err := fx.cancelOrder(1, "no-such-order")

	// Assert
	requireRejection(t, err, orders.CodeQueueItemNotFound)
}

func TestCancelOrder_StructurePastCompletionIsNotCancellable(t *testing.T) {
	// Arrange: the build finished; only the sweep may finalize it
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedBase(1, homeCoord)

	admitted, err := fx.startOrder(1, homeCoord, "construction_yards")
	require.NoError(t, err)

	fx.clock.Advance(9001 * time.Second)

	// Act
	_, err = fx.cancelOrder(1, admitted.OrderID)

	// Assert: no refund, the row survives for the sweep
	requireRejection(t, err, orders.CodeInvalidStatus)
	assert.Equal(t, 750, fx.credits(1))

	rec, err := fx.buildings.FindAt(context.Background(), shared.MustParseCoordinate(homeCoord), "construction_yards")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestCancelOrder_LosesRaceAgainstCompletion(t *testing.T) {
	// Arrange: a pending unit order that the sweep flips first
	fx := newFixture(t)
	fx.seedEmpire(1, 1000)
	fx.seedBase(1, homeCoord)
	fx.seedActiveBuilding(1, homeCoord, "shipyards", 1)

	admitted, err := fx.startOrder(1, homeCoord, "fighters")
	require.NoError(t, err)

	flipped, err := fx.queueRepo.CompleteIfPending(context.Background(), admitted.OrderID)
	require.NoError(t, err)
	require.True(t, flipped)

	// Act
	_, err = fx.cancelOrder(1, admitted.OrderID)

	// Assert: completed stays completed, nothing refunded
	requireRejection(t, err, orders.CodeInvalidStatus)
	assert.Equal(t, 995, fx.credits(1))
}
