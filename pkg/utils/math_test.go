package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stellaredge/empire-engine/pkg/utils"
)

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 3, utils.CeilDiv(9, 3))
	assert.Equal(t, 4, utils.CeilDiv(10, 3))
	assert.Equal(t, 1, utils.CeilDiv(1, 100))
	assert.Equal(t, 0, utils.CeilDiv(0, 5))

	// Duration arithmetic for orders: 250 credits at 100/hour
	assert.Equal(t, 9000, utils.CeilDiv(250*3600, 100))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, utils.Min(2, 5))
	assert.Equal(t, 5, utils.Max(2, 5))
	assert.Equal(t, -5, utils.Min(-5, 0))
	assert.Equal(t, 0, utils.Max(-5, 0))
}
