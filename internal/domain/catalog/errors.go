package catalog

import "fmt"

// SpecNotFoundError indicates a catalog key that resolves to nothing
type SpecNotFoundError struct {
	Key string
}

func (e *SpecNotFoundError) Error() string {
	return fmt.Sprintf("catalog spec not found: %s", e.Key)
}

func NewSpecNotFoundError(key string) *SpecNotFoundError {
	return &SpecNotFoundError{Key: key}
}

// NoCostDefinedError indicates a level with no entry in the cost schedule
type NoCostDefinedError struct {
	Key   string
	Level int
}

func (e *NoCostDefinedError) Error() string {
	return fmt.Sprintf("no cost defined for %s level %d", e.Key, e.Level)
}

func NewNoCostDefinedError(key string, level int) *NoCostDefinedError {
	return &NoCostDefinedError{Key: key, Level: level}
}
