package checked_test

import (
	"math"
	"testing"

	"github.com/farmline/marketplace/internal/pkg/checked"
	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
		ok   bool
	}{
		{"zero", 0, 0, 0, true},
		{"simple", 2, 3, 5, true},
		{"max_plus_zero", math.MaxUint64, 0, math.MaxUint64, true},
		{"overflow", math.MaxUint64, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := checked.Add(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSub(t *testing.T) {
	got, ok := checked.Sub(5, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), got)

	_, ok = checked.Sub(3, 5)
	assert.False(t, ok)
}

func TestMul(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
		ok   bool
	}{
		{"zero_left", 0, 10, 0, true},
		{"zero_right", 10, 0, 0, true},
		{"simple", 7, 6, 42, true},
		{"overflow", math.MaxUint64, 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := checked.Mul(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
