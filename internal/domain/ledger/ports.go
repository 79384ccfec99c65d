package ledger

import (
	"context"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// TransactionRepository defines persistence operations for ledger entries
type TransactionRepository interface {
	// Create persists a new transaction
	Create(ctx context.Context, transaction *Transaction) error

	// FindByReference retrieves the entries settling one order,
	// oldest first
	FindByReference(ctx context.Context, reference string) ([]*Transaction, error)

	// ListByEmpire retrieves an empire's entries, newest first,
	// limited to at most limit rows (0 means no limit)
	ListByEmpire(ctx context.Context, empireID shared.EmpireID, limit int) ([]*Transaction, error)
}
