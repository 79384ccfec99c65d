package ledger

import "fmt"

// TransactionType classifies a ledger entry
type TransactionType string

const (
	// TypeOrderDebit is the reservation taken when an order is admitted
	TypeOrderDebit TransactionType = "ORDER_DEBIT"

	// TypeOrderRefund is the credit returned when a pending order is cancelled
	TypeOrderRefund TransactionType = "ORDER_REFUND"

	// TypeAdjustment covers operator-driven balance corrections
	TypeAdjustment TransactionType = "ADJUSTMENT"
)

// IsValid checks whether the type is one of the known values
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeOrderDebit, TypeOrderRefund, TypeAdjustment:
		return true
	}
	return false
}

// ParseTransactionType parses a stored string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
