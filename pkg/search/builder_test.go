package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoredBuilder(t *testing.T) {
	b := NewIntBuilder[string]()

	a := Scored[string, int]{Move: "e4"}
	scored := b.InsertValue(a, 42)
	assert.Equal(t, 42, b.ExtractValue(scored))
	assert.Equal(t, "e4", scored.Move)
	// Value semantics, the original is untouched
	assert.Equal(t, 0, a.Value)

	assert.Equal(t, math.MaxInt, b.PosInf())
	assert.Equal(t, math.MinInt, b.NegInf())
	assert.Negative(t, b.Compare(b.NegInf(), -1_000_000))
	assert.Positive(t, b.Compare(b.PosInf(), 1_000_000))
	assert.Zero(t, b.Compare(3, 3))
	assert.Equal(t, scored, b.Clone(scored))
}

func TestFloatBuilder(t *testing.T) {
	b := NewFloatBuilder[int]()
	assert.True(t, math.IsInf(b.PosInf(), 1))
	assert.True(t, math.IsInf(b.NegInf(), -1))
	assert.Negative(t, b.Compare(0.25, 0.5))
	assert.Equal(t, "3 (0.5)", Scored[int, float64]{Move: 3, Value: 0.5}.String())
}
