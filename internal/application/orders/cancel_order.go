package orders

import (
	"context"
	"fmt"

	"github.com/stellaredge/empire-engine/internal/adapters/metrics"
	"github.com/stellaredge/empire-engine/internal/application/common"
	appledger "github.com/stellaredge/empire-engine/internal/application/ledger"
	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// CancelOrderCommand cancels a pending order and refunds its cost
type CancelOrderCommand struct {
	EmpireID int
	OrderID  string
}

// CancelOrderResponse reports the refunded amount
type CancelOrderResponse struct {
	OrderID         string
	RefundedCredits int
}

// CancelOrderHandler cancels pending orders. The status flip is a
// conditional update on the stored row, so a cancel racing the tick
// sweep can never cancel a completed order: exactly one of the two
// wins. The refund is the STORED credit cost recorded at admission,
// not a recomputation from the catalog, so refund always equals debit
// even if balance tables change between the two.
type CancelOrderHandler struct {
	queueRepo    queue.Repository
	buildingRepo base.BuildingRepository
	creditLedger *appledger.Service
	baseLock     *BaseLock
	clock        shared.Clock
}

// NewCancelOrderHandler creates a new cancel order handler
func NewCancelOrderHandler(
	queueRepo queue.Repository,
	buildingRepo base.BuildingRepository,
	creditLedger *appledger.Service,
	baseLock *BaseLock,
	clock shared.Clock,
) *CancelOrderHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if baseLock == nil {
		baseLock = NewBaseLock()
	}
	return &CancelOrderHandler{
		queueRepo:    queueRepo,
		buildingRepo: buildingRepo,
		creditLedger: creditLedger,
		baseLock:     baseLock,
		clock:        clock,
	}
}

// Handle executes the cancel order command
func (h *CancelOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelOrderCommand")
	}

	empireID, err := shared.NewEmpireID(cmd.EmpireID)
	if err != nil {
		return nil, shared.NewValidationError("empire_id", err.Error())
	}

	resp, err := h.cancel(ctx, empireID, cmd.OrderID)
	if err != nil {
		if rejection := AsRejection(err); rejection != nil {
			metrics.RecordCancellation("rejected")
		} else {
			metrics.RecordCancellation("error")
		}
		return nil, err
	}
	metrics.RecordCancellation("cancelled")
	return resp, nil
}

func (h *CancelOrderHandler) cancel(ctx context.Context, empireID shared.EmpireID, orderID string) (*CancelOrderResponse, error) {
	item, err := h.queueRepo.FindByID(ctx, orderID)
	if err != nil {
		if _, notFound := err.(*queue.ItemNotFoundError); notFound {
			return h.cancelStructure(ctx, empireID, orderID)
		}
		return nil, fmt.Errorf("failed to load queue item: %w", err)
	}

	if !item.EmpireID().Equals(empireID) {
		return nil, NewRejection(CodeNotOwner, "order %s does not belong to empire %s", orderID, empireID)
	}
	if !item.IsPending() {
		return nil, NewRejection(CodeInvalidStatus, "order %s is %s", orderID, item.Status())
	}

	flipped, err := h.queueRepo.CancelIfPending(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if !flipped {
		// Lost the race against the sweep
		return nil, NewRejection(CodeInvalidStatus, "order %s already completed", orderID)
	}

	return h.refund(ctx, empireID, orderID, item.CreditsCost(), item.CatalogKey())
}

// cancelStructure resolves the order id against the building table.
// Runs under the base lock so the conflict view seen by a concurrent
// admission stays consistent with the cancellation.
func (h *CancelOrderHandler) cancelStructure(ctx context.Context, empireID shared.EmpireID, orderID string) (*CancelOrderResponse, error) {
	rec, err := h.buildingRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load building order: %w", err)
	}
	if rec == nil {
		return nil, NewRejection(CodeQueueItemNotFound, "order %s not found", orderID)
	}
	if !rec.EmpireID.Equals(empireID) {
		return nil, NewRejection(CodeNotOwner, "order %s does not belong to empire %s", orderID, empireID)
	}

	unlock := h.baseLock.Lock(rec.Coordinate)
	defer unlock()

	now := h.clock.Now()
	if !base.IsInProgress(rec, now) {
		return nil, NewRejection(CodeInvalidStatus, "order %s already completed", orderID)
	}

	cost, err := h.buildingRepo.CancelOrder(ctx, orderID, now)
	if err != nil {
		if _, notFound := err.(*queue.ItemNotFoundError); notFound {
			// Lost the race against the sweep
			return nil, NewRejection(CodeInvalidStatus, "order %s already completed", orderID)
		}
		return nil, fmt.Errorf("failed to cancel construction order: %w", err)
	}

	return h.refund(ctx, empireID, orderID, cost, rec.CatalogKey)
}

func (h *CancelOrderHandler) refund(ctx context.Context, empireID shared.EmpireID, orderID string, cost int, catalogKey string) (*CancelOrderResponse, error) {
	if cost > 0 {
		_, err := h.creditLedger.Credit(ctx, empireID, cost, orderID, fmt.Sprintf("refund %s", catalogKey))
		if err != nil {
			// The row is already cancelled; surface the missing refund
			// rather than un-cancelling.
			common.LoggerFromContext(ctx).Error("refund failed after cancellation", map[string]interface{}{
				"empire_id": empireID.String(),
				"order_id":  orderID,
				"cost":      cost,
				"error":     err.Error(),
			})
			return nil, fmt.Errorf("order cancelled but refund failed: %w", err)
		}
	}

	return &CancelOrderResponse{
		OrderID:         orderID,
		RefundedCredits: cost,
	}, nil
}
