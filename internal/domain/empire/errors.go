package empire

import (
	"fmt"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// InsufficientCreditsError is returned by a debit that would drive the
// balance below zero. The balance is left untouched.
type InsufficientCreditsError struct {
	EmpireID  shared.EmpireID
	Balance   int
	Requested int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("empire %s has %d credits, cannot debit %d (short %d)",
		e.EmpireID, e.Balance, e.Requested, e.Shortfall())
}

// Shortfall returns the number of credits missing
func (e *InsufficientCreditsError) Shortfall() int {
	return e.Requested - e.Balance
}

func NewInsufficientCreditsError(id shared.EmpireID, balance, requested int) *InsufficientCreditsError {
	return &InsufficientCreditsError{EmpireID: id, Balance: balance, Requested: requested}
}
