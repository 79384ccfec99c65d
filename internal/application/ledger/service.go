package ledger

import (
	"context"
	"fmt"

	"github.com/stellaredge/empire-engine/internal/application/common"
	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/ledger"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Service is the credit ledger: it moves credits on an empire's
// balance and records every movement as an immutable transaction.
type Service struct {
	empireRepo      empire.Repository
	transactionRepo ledger.TransactionRepository
	clock           shared.Clock
}

// NewService creates a new credit ledger service
func NewService(
	empireRepo empire.Repository,
	transactionRepo ledger.TransactionRepository,
	clock shared.Clock,
) *Service {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Service{
		empireRepo:      empireRepo,
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// Debit reserves credits for an admitted order. The balance adjustment
// is conditional: it fails with InsufficientCreditsError rather than
// driving the balance negative.
func (s *Service) Debit(ctx context.Context, empireID shared.EmpireID, amount int, reference, description string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.apply(ctx, empireID, -amount, ledger.TypeOrderDebit, reference, description)
}

// Credit returns credits to an empire (order refund)
func (s *Service) Credit(ctx context.Context, empireID shared.EmpireID, amount int, reference, description string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.apply(ctx, empireID, amount, ledger.TypeOrderRefund, reference, description)
}

func (s *Service) apply(ctx context.Context, empireID shared.EmpireID, delta int, txType ledger.TransactionType, reference, description string) (int, error) {
	balanceAfter, err := s.empireRepo.AdjustCredits(ctx, empireID, delta)
	if err != nil {
		return 0, err
	}

	transaction, err := ledger.NewTransaction(
		empireID,
		s.clock.Now(),
		txType,
		delta,
		balanceAfter-delta,
		balanceAfter,
		reference,
		description,
	)
	if err != nil {
		// The balance already moved; a malformed audit entry must not
		// undo it. Log and carry on.
		common.LoggerFromContext(ctx).Warn("ledger entry rejected", map[string]interface{}{
			"empire_id": empireID.String(),
			"reference": reference,
			"error":     err.Error(),
		})
		return balanceAfter, nil
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		common.LoggerFromContext(ctx).Warn("ledger entry not persisted", map[string]interface{}{
			"empire_id": empireID.String(),
			"reference": reference,
			"error":     err.Error(),
		})
	}

	return balanceAfter, nil
}
