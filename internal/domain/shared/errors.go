package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Not-found errors for the engine's top-level entities

type EmpireNotFoundError struct {
	*DomainError
	EmpireID EmpireID
}

func NewEmpireNotFoundError(empireID EmpireID) *EmpireNotFoundError {
	return &EmpireNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("empire %s not found", empireID)},
		EmpireID:    empireID,
	}
}

type BaseNotFoundError struct {
	*DomainError
	Coordinate Coordinate
}

func NewBaseNotFoundError(coord Coordinate) *BaseNotFoundError {
	return &BaseNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("base %s not found", coord)},
		Coordinate:  coord,
	}
}
