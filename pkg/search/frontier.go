package search

import (
	"cmp"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Single entry of the results buffer
type slot[A any] struct {
	action A
	// (partition index << 32 | index within the partition), used as a tie breaker
	// so the ranking doesn't depend on the goroutine scheduling
	key uint64
}

// Valid part of the results buffer, generated for a single node
type frontier struct {
	start int
	end   int
	// The buffer ran out of space during generation
	full bool
}

func (f frontier) Len() int {
	return f.end - f.start
}

// Generate, score and rank the actions for the current node, writing them
// into the results buffer starting at 'start'. Each partition unit is expanded
// on its own goroutine, with a state and evaluation clone taken from the caches.
// Blocks until all units are done.
func (s *Search[S, A, V, F, P]) expand(player P, start int) frontier {
	capacity := len(s.buffer)
	if start >= capacity {
		return frontier{start: start, end: start, full: true}
	}

	var (
		next      atomic.Int64
		full      atomic.Bool
		partition uint64
		g         errgroup.Group
	)

	next.Store(int64(start))
	g.SetLimit(max(1, s.limits.NThreads))

	s.Successor.Partition(s.state, player, func(unit F) {
		key := partition << 32
		partition++

		g.Go(func() error {
			state := s.stateCache.Get()
			eval := s.evalCache.Get()

			s.Successor.Expand(state, player, unit, func(action A) bool {
				i := next.Add(1) - 1
				if i >= int64(capacity) {
					full.Store(true)
					return false
				}

				state.Apply(action)
				value := eval.Evaluate(state, player)
				state.Undo(action)

				s.buffer[i] = slot[A]{action: s.Builder.InsertValue(action, value), key: key}
				key++
				return true
			})

			// Both clones are back at the node's position
			s.stateCache.Put(state)
			s.evalCache.Put(eval)
			return nil
		})
	})

	_ = g.Wait()

	end := min(int(next.Load()), capacity)
	s.nodes.Add(uint64(end - start))

	// Most promising first, for the player to move
	slices.SortFunc(s.buffer[start:end], s.rank)

	if s.maxExplorations > 0 && end-start > s.maxExplorations {
		end = start + s.maxExplorations
	}

	return frontier{start: start, end: end, full: full.Load()}
}

// Descending by the embedded value, then ascending by generation key
func (s *Search[S, A, V, F, P]) rank(a, b slot[A]) int {
	if c := s.Builder.Compare(s.Builder.ExtractValue(b.action), s.Builder.ExtractValue(a.action)); c != 0 {
		return c
	}
	return cmp.Compare(a.key, b.key)
}
