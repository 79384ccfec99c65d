package orders

import "fmt"

// RejectionCode is the machine-readable reason an order request was
// refused. Every rejection is a typed value surfaced to the caller;
// nothing in the admission path panics for expected refusals.
type RejectionCode string

const (
	CodeNotOwner               RejectionCode = "NOT_OWNER"
	CodeAlreadyInProgress      RejectionCode = "ALREADY_IN_PROGRESS"
	CodeNoCapacity             RejectionCode = "NO_CAPACITY"
	CodeNoCostDefined          RejectionCode = "NO_COST_DEFINED"
	CodeInsufficientResources  RejectionCode = "INSUFFICIENT_RESOURCES"
	CodeInsufficientEnergy     RejectionCode = "INSUFFICIENT_ENERGY"
	CodeInsufficientArea       RejectionCode = "INSUFFICIENT_AREA"
	CodeInsufficientPopulation RejectionCode = "INSUFFICIENT_POPULATION"
	CodeQueueItemNotFound      RejectionCode = "QUEUE_ITEM_NOT_FOUND"
	CodeInvalidStatus          RejectionCode = "INVALID_STATUS"
	CodeBaseNotFound           RejectionCode = "BASE_NOT_FOUND"
	CodeEmpireNotFound         RejectionCode = "EMPIRE_NOT_FOUND"
)

// Rejection is a refused order request: a reason code plus detail.
// Shortfall carries the missing credit amount for
// INSUFFICIENT_RESOURCES and is zero otherwise.
type Rejection struct {
	Code      RejectionCode
	Detail    string
	Shortfall int
}

func (r *Rejection) Error() string {
	if r.Shortfall > 0 {
		return fmt.Sprintf("%s: %s (short %d)", r.Code, r.Detail, r.Shortfall)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Detail)
}

// NewRejection creates a rejection with a formatted detail message
func NewRejection(code RejectionCode, format string, args ...interface{}) *Rejection {
	return &Rejection{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// AsRejection extracts a *Rejection from an error, nil when the error
// is not a rejection
func AsRejection(err error) *Rejection {
	if r, ok := err.(*Rejection); ok {
		return r
	}
	return nil
}
