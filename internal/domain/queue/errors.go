package queue

import "fmt"

// ItemNotFoundError indicates a queue item id that resolves to nothing
type ItemNotFoundError struct {
	ID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("queue item not found: %s", e.ID)
}

func NewItemNotFoundError(id string) *ItemNotFoundError {
	return &ItemNotFoundError{ID: id}
}

// InvalidStatusError indicates an illegal lifecycle transition,
// e.g. cancelling an item that has already completed
type InvalidStatusError struct {
	ID        string
	Current   Status
	Requested Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("queue item %s is %s, cannot transition to %s", e.ID, e.Current, e.Requested)
}

func NewInvalidStatusError(id string, current, requested Status) *InvalidStatusError {
	return &InvalidStatusError{ID: id, Current: current, Requested: requested}
}
