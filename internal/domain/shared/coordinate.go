package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a value object identifying a base's location on the map.
// The canonical string form is "galaxy:region:system:orbit", e.g. "3:12:44:7".
type Coordinate struct {
	galaxy int
	region int
	system int
	orbit  int
}

// NewCoordinate creates a Coordinate from its four components
func NewCoordinate(galaxy, region, system, orbit int) (Coordinate, error) {
	for _, part := range []struct {
		name  string
		value int
	}{
		{"galaxy", galaxy},
		{"region", region},
		{"system", system},
		{"orbit", orbit},
	} {
		if part.value < 0 {
			return Coordinate{}, fmt.Errorf("coordinate %s cannot be negative: %d", part.name, part.value)
		}
	}
	return Coordinate{galaxy: galaxy, region: region, system: system, orbit: orbit}, nil
}

// ParseCoordinate parses the canonical "galaxy:region:system:orbit" form
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected galaxy:region:system:orbit", s)
	}

	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
		}
		values[i] = v
	}

	return NewCoordinate(values[0], values[1], values[2], values[3])
}

// MustParseCoordinate parses a coordinate, panicking if invalid.
// Use this only for trusted input (e.g., from database)
func MustParseCoordinate(s string) Coordinate {
	coord, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return coord
}

// String returns the canonical string form
func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", c.galaxy, c.region, c.system, c.orbit)
}

// Equals checks if two Coordinates refer to the same location
func (c Coordinate) Equals(other Coordinate) bool {
	return c == other
}

// IsZero checks if the Coordinate is the zero value (uninitialized)
func (c Coordinate) IsZero() bool {
	return c == Coordinate{}
}
