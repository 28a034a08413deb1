package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		part  int64
		total int64
		want  float64
	}{
		{"half", 5, 10, 50.0},
		{"third rounds down", 1, 3, 33.33},
		{"two thirds rounds up", 2, 3, 66.67},
		{"sixth rounds half up", 1, 6, 16.67},
		{"all votes", 7, 7, 100.0},
		{"no votes", 0, 9, 0},
		{"zero total", 3, 0, 0},
		{"negative part", -1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.part, tt.total))
		})
	}
}

func TestPercentageIsReproducible(t *testing.T) {
	// Integer arithmetic must yield the same value on repeated calls;
	// results are compared for equality when checking recompute idempotence.
	for i := 0; i < 100; i++ {
		assert.Equal(t, Percentage(1, 3), Percentage(1, 3))
	}
}
