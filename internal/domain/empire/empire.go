package empire

import (
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// Empire represents a player's empire: identity, credit balance and
// the coordinates of the bases it owns.
type Empire struct {
	ID      shared.EmpireID
	Name    string
	Credits int
	Bases   []shared.Coordinate
}

// NewEmpire creates a new empire with no bases
func NewEmpire(id shared.EmpireID, name string, credits int) (*Empire, error) {
	if credits < 0 {
		return nil, shared.NewValidationError("credits", "starting credits cannot be negative")
	}
	return &Empire{
		ID:      id,
		Name:    name,
		Credits: credits,
	}, nil
}

// Owns reports whether the empire owns a base at the given coordinate
func (e *Empire) Owns(coord shared.Coordinate) bool {
	for _, c := range e.Bases {
		if c.Equals(coord) {
			return true
		}
	}
	return false
}

// CanAfford reports whether the balance covers the given cost
func (e *Empire) CanAfford(cost int) bool {
	return e.Credits >= cost
}

// Shortfall returns how many credits are missing to cover the cost,
// zero when the balance suffices
func (e *Empire) Shortfall(cost int) int {
	if e.Credits >= cost {
		return 0
	}
	return cost - e.Credits
}
