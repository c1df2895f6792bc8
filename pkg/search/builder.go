package search

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Ready to use action record, a move with an embedded score
type Scored[M any, V constraints.Ordered] struct {
	Move  M
	Value V
}

func (s Scored[M, V]) String() string {
	return fmt.Sprintf("%v (%v)", s.Move, s.Value)
}

// Builder for Scored actions. Clone is a shallow copy,
// so M should be a plain value type.
type ScoredBuilder[M any, V constraints.Ordered] struct {
	Min V
	Max V
}

// Create a builder with given infinity sentinels
func NewScoredBuilder[M any, V constraints.Ordered](negInf, posInf V) ScoredBuilder[M, V] {
	return ScoredBuilder[M, V]{Min: negInf, Max: posInf}
}

// Builder with int values, using the full int range for the infinities
func NewIntBuilder[M any]() ScoredBuilder[M, int] {
	return NewScoredBuilder[M, int](math.MinInt, math.MaxInt)
}

// Builder with float64 values, using -Inf and +Inf
func NewFloatBuilder[M any]() ScoredBuilder[M, float64] {
	return NewScoredBuilder[M, float64](math.Inf(-1), math.Inf(1))
}

func (b ScoredBuilder[M, V]) PosInf() V { return b.Max }
func (b ScoredBuilder[M, V]) NegInf() V { return b.Min }

func (b ScoredBuilder[M, V]) ExtractValue(a Scored[M, V]) V {
	return a.Value
}

func (b ScoredBuilder[M, V]) InsertValue(a Scored[M, V], v V) Scored[M, V] {
	a.Value = v
	return a
}

func (b ScoredBuilder[M, V]) Clone(a Scored[M, V]) Scored[M, V] {
	return a
}

func (b ScoredBuilder[M, V]) Compare(v0, v1 V) int {
	switch {
	case v0 < v1:
		return -1
	case v0 > v1:
		return 1
	}
	return 0
}
