package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

func TestParseCoordinate_Canonical(t *testing.T) {
	// Act
	coord, err := shared.ParseCoordinate("3:12:44:7")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "3:12:44:7", coord.String())
}

func TestParseCoordinate_RoundTrip(t *testing.T) {
	// Arrange
	original, err := shared.NewCoordinate(1, 0, 255, 12)
	require.NoError(t, err)

	// Act
	parsed, err := shared.ParseCoordinate(original.String())

	// Assert
	require.NoError(t, err)
	assert.True(t, original.Equals(parsed))
}

func TestParseCoordinate_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"1:2:3",
		"1:2:3:4:5",
		"1:2:three:4",
		"1:2:-3:4",
	}

	for _, input := range invalid {
		_, err := shared.ParseCoordinate(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}

func TestCoordinate_IsZero(t *testing.T) {
	var zero shared.Coordinate
	assert.True(t, zero.IsZero())

	coord := shared.MustParseCoordinate("1:1:1:1")
	assert.False(t, coord.IsZero())
}

func TestNewEmpireID_RejectsNonPositive(t *testing.T) {
	_, err := shared.NewEmpireID(0)
	assert.Error(t, err)

	_, err = shared.NewEmpireID(-5)
	assert.Error(t, err)

	id, err := shared.NewEmpireID(42)
	require.NoError(t, err)
	assert.Equal(t, 42, id.Value())
	assert.Equal(t, "42", id.String())
}
