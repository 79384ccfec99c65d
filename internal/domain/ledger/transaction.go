package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Transaction is one immutable ledger entry recording a credit
// movement on an empire's balance. Amount is positive for credits
// (refunds) and negative for debits (order reservations).
type Transaction struct {
	id            string
	empireID      shared.EmpireID
	timestamp     time.Time
	txType        TransactionType
	amount        int
	balanceBefore int
	balanceAfter  int
	reference     string // queue item / order id this entry settles
	description   string
}

// NewTransaction creates a validated ledger entry with a generated id
func NewTransaction(
	empireID shared.EmpireID,
	timestamp time.Time,
	txType TransactionType,
	amount int,
	balanceBefore int,
	balanceAfter int,
	reference string,
	description string,
) (*Transaction, error) {
	if empireID.IsZero() {
		return nil, &InvalidTransactionError{Field: "empire_id", Reason: "empire_id cannot be zero"}
	}
	if !txType.IsValid() {
		return nil, &InvalidTransactionError{Field: "type", Reason: fmt.Sprintf("invalid transaction type: %s", txType)}
	}
	if amount == 0 {
		return nil, &InvalidTransactionError{Field: "amount", Reason: "amount cannot be zero"}
	}

	t := &Transaction{
		id:            uuid.New().String(),
		empireID:      empireID,
		timestamp:     timestamp,
		txType:        txType,
		amount:        amount,
		balanceBefore: balanceBefore,
		balanceAfter:  balanceAfter,
		reference:     reference,
		description:   description,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReconstructTransaction rebuilds an entry from persistence, bypassing
// validation. Used by the repository only.
func ReconstructTransaction(
	id string,
	empireID shared.EmpireID,
	timestamp time.Time,
	txType TransactionType,
	amount int,
	balanceBefore int,
	balanceAfter int,
	reference string,
	description string,
) *Transaction {
	return &Transaction{
		id:            id,
		empireID:      empireID,
		timestamp:     timestamp,
		txType:        txType,
		amount:        amount,
		balanceBefore: balanceBefore,
		balanceAfter:  balanceAfter,
		reference:     reference,
		description:   description,
	}
}

// Validate checks the entry's invariants
func (t *Transaction) Validate() error {
	expected := t.balanceBefore + t.amount
	if t.balanceAfter != expected {
		return &BalanceInvariantError{
			BalanceBefore: t.balanceBefore,
			Amount:        t.amount,
			BalanceAfter:  t.balanceAfter,
			Expected:      expected,
		}
	}
	if t.balanceAfter < 0 {
		return &InvalidTransactionError{
			Field:  "balance_after",
			Reason: fmt.Sprintf("balance cannot go negative: %d", t.balanceAfter),
		}
	}
	return nil
}

// Getters (all fields are immutable)

func (t *Transaction) ID() string                 { return t.id }
func (t *Transaction) EmpireID() shared.EmpireID  { return t.empireID }
func (t *Transaction) Timestamp() time.Time       { return t.timestamp }
func (t *Transaction) Type() TransactionType      { return t.txType }
func (t *Transaction) Amount() int                { return t.amount }
func (t *Transaction) BalanceBefore() int         { return t.balanceBefore }
func (t *Transaction) BalanceAfter() int          { return t.balanceAfter }
func (t *Transaction) Reference() string          { return t.reference }
func (t *Transaction) Description() string        { return t.description }

// IsDebit reports whether the entry took credits from the empire
func (t *Transaction) IsDebit() bool {
	return t.amount < 0
}

// String provides a human-readable representation
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[%s, type=%s, amount=%d, balance=%d->%d]",
		t.id, t.txType, t.amount, t.balanceBefore, t.balanceAfter)
}
