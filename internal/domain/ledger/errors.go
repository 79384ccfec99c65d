package ledger

import "fmt"

// InvalidTransactionError represents validation failures on ledger entries
type InvalidTransactionError struct {
	Field  string
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction: %s - %s", e.Field, e.Reason)
}

// BalanceInvariantError represents entries whose balance arithmetic
// does not hold
type BalanceInvariantError struct {
	BalanceBefore int
	Amount        int
	BalanceAfter  int
	Expected      int
}

func (e *BalanceInvariantError) Error() string {
	return fmt.Sprintf("balance invariant violated: balance_before=%d + amount=%d should equal %d, got %d",
		e.BalanceBefore, e.Amount, e.Expected, e.BalanceAfter)
}
