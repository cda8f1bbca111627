package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateBackoff(time.Second, 0))
	assert.Equal(t, time.Duration(0), CalculateBackoff(0, 3))

	for i := 0; i < 50; i++ {
		d := CalculateBackoff(100*time.Millisecond, 1)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}

	for i := 0; i < 50; i++ {
		d := CalculateBackoff(time.Second, 40)
		assert.LessOrEqual(t, d, 30*time.Second+30*time.Second/4)
		assert.GreaterOrEqual(t, d, 30*time.Second-30*time.Second/4)
	}
}
