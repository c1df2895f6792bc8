package search

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"testing"

	"github.com/rs/zerolog"
)

// Dummy game used by the tests: every node has 'branch' children, until 'height'
// plies are made. Leaf values are a deterministic hash of the path.

type player int

const (
	maxP player = 1
	minP player = -1
)

type action = Scored[int, int]

type treeState struct {
	path []int
}

func newTreeState() *treeState {
	return &treeState{path: make([]int, 0, 16)}
}

func (t *treeState) Apply(a action) {
	t.path = append(t.path, a.Move)
}

func (t *treeState) Undo(a action) {
	last := len(t.path) - 1
	if last < 0 || t.path[last] != a.Move {
		panic(fmt.Sprintf("undo of %d doesn't match the path %v", a.Move, t.path))
	}
	t.path = t.path[:last]
}

func (t *treeState) Clone() *treeState {
	clone := newTreeState()
	clone.path = append(clone.path, t.path...)
	return clone
}

func hashPath(path []int) int {
	h := uint64(1469598103934665603)
	for _, m := range path {
		h ^= uint64(m + 1)
		h *= 1099511628211
	}
	return int(h%201) - 100
}

// Scores the path from the player's perspective, holds a scratch counter
// to make sure each worker gets its own clone
type treeEval struct {
	calls int
}

func (e *treeEval) Evaluate(state *treeState, p player) int {
	e.calls++
	return hashPath(state.path) * int(p)
}

func (e *treeEval) Clone() Evaluation[*treeState, int, player] {
	return &treeEval{}
}

type span struct{ lo, hi int }

type treeSuccessor struct {
	branch int
	height int
	// size of a partition unit
	unit int
}

func (ts treeSuccessor) Partition(state *treeState, p player, emit func(span)) {
	if len(state.path) >= ts.height {
		return
	}
	unit := max(1, ts.unit)
	for lo := 0; lo < ts.branch; lo += unit {
		emit(span{lo, min(lo+unit, ts.branch)})
	}
}

func (ts treeSuccessor) Expand(state *treeState, p player, unit span, yield func(action) bool) {
	for m := unit.lo; m < unit.hi; m++ {
		if !yield(action{Move: m}) {
			return
		}
	}
}

// Cutoff test, reporting cutoff after 'after' calls (never if negative)
type countingCutoff struct {
	after  int
	calls  int
	begins int
	ends   int
}

func (c *countingCutoff) Begin() { c.begins++; c.calls = 0 }
func (c *countingCutoff) End()   { c.ends++ }
func (c *countingCutoff) Test(*treeState) bool {
	c.calls++
	return c.after >= 0 && c.calls > c.after
}

type treeSearch = Search[*treeState, action, int, span, player]

func newTreeSearch(maxActions int, succ treeSuccessor, cutoff Cutoff[*treeState]) *treeSearch {
	return NewSearch[*treeState, action, int, span, player](
		maxActions, NewIntBuilder[int](), &treeEval{}, succ, cutoff,
	)
}

// Plain minimax, no pruning, no parallelism
func minimax(state *treeState, succ treeSuccessor, depth int, maximizing bool) int {
	if depth == 0 || len(state.path) >= succ.height || succ.branch == 0 {
		return hashPath(state.path)
	}

	best := 1 << 30
	if maximizing {
		best = -best
	}
	for m := 0; m < succ.branch; m++ {
		state.Apply(action{Move: m})
		v := minimax(state, succ, depth-1, !maximizing)
		state.Undo(action{Move: m})
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

// Minimax over the tree, where every node keeps only its 'explorations' best
// children, ranked by their static evaluation for the player to move
func cappedMinimax(state *treeState, succ treeSuccessor, depth int, maximizing bool, explorations int) int {
	if depth == 0 || len(state.path) >= succ.height || succ.branch == 0 {
		return hashPath(state.path)
	}

	p := minP
	if maximizing {
		p = maxP
	}
	scores := make([]int, succ.branch)
	moves := make([]int, succ.branch)
	for m := range moves {
		moves[m] = m
		scores[m] = hashPath(append(slices.Clone(state.path), m)) * int(p)
	}
	slices.SortStableFunc(moves, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	moves = moves[:min(explorations, len(moves))]

	best := 1 << 30
	if maximizing {
		best = -best
	}
	for _, m := range moves {
		state.Apply(action{Move: m})
		v := cappedMinimax(state, succ, depth-1, !maximizing, explorations)
		state.Undo(action{Move: m})
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}
