package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Iterative deepening minimax search with alpha-beta pruning.
//
// Every node of the tree is expanded in parallel (one goroutine per partition
// unit, see Successor), then its children are searched sequentially,
// in the most promising order. Generated actions are stored in a single
// preallocated buffer shared by the whole tree, running out of it
// is treated like a cutoff.
//
// A Search is not safe for concurrent use, call Decide from a single goroutine.
type Search[S State[A, S], A any, V any, F any, P any] struct {
	Builder    Builder[A, V]
	Evaluation Evaluation[S, V, P]
	Successor  Successor[S, A, F, P]
	Cutoff     Cutoff[S]

	limits          *Limits
	listener        *StatsListener[A, V]
	buffer          []slot[A]
	stateCache      *CloneCache[S]
	evalCache       *CloneCache[Evaluation[S, V, P]]
	initialDepth    int
	maxExplorations int
	timer           *_Timer
	nodes           atomic.Uint64

	// Valid during Decide
	state       S
	maxPlayer   P
	minPlayer   P
	cutoffDepth int
	reachedPly  int
	bestDepth   int
	interrupted bool
	horizon     bool
	reason      StopReason
}

// Create new search, with 'maxActions' slots for the generated actions.
// If cutoff is nil, a Limiter with default limits is used.
func NewSearch[S State[A, S], A any, V any, F any, P any](
	maxActions int,
	builder Builder[A, V],
	evaluation Evaluation[S, V, P],
	successor Successor[S, A, F, P],
	cutoff Cutoff[S],
) *Search[S, A, V, F, P] {
	if maxActions <= 0 {
		panic(fmt.Sprintf("search: maxActions must be positive, got %d", maxActions))
	}
	if builder == nil || evaluation == nil || successor == nil {
		panic("search: builder, evaluation and successor are required")
	}
	if cutoff == nil {
		cutoff = NewLimiter[S]()
	}

	limits := DefaultLimits()
	if limiter, ok := cutoff.(LimiterLike); ok {
		limits = limiter.Limits()
	}

	return &Search[S, A, V, F, P]{
		Builder:         builder,
		Evaluation:      evaluation,
		Successor:       successor,
		Cutoff:          cutoff,
		limits:          limits,
		listener:        &StatsListener[A, V]{},
		buffer:          make([]slot[A], maxActions),
		stateCache:      NewCloneCache[S](nil),
		evalCache:       NewCloneCache[Evaluation[S, V, P]](nil),
		initialDepth:    DefaultInitialDepth,
		maxExplorations: UnlimitedExplorations,
		timer:           _NewTimer(),
	}
}

// Depth the next search starts at, updated after each search
func (s *Search[S, A, V, F, P]) InitialDepth() int {
	return s.initialDepth
}

func (s *Search[S, A, V, F, P]) SetInitialDepth(depth int) {
	s.initialDepth = max(1, depth)
}

// Maximum number of children searched at each node, 0 means no limit.
// Only the best ranked actions are kept.
func (s *Search[S, A, V, F, P]) MaxExplorations() int {
	return s.maxExplorations
}

func (s *Search[S, A, V, F, P]) SetMaxExplorations(n int) {
	s.maxExplorations = max(0, n)
}

// Capacity of the results buffer
func (s *Search[S, A, V, F, P]) MaxActions() int {
	return len(s.buffer)
}

// Set the limits, also passed to the cutoff test, if it's a LimiterLike
func (s *Search[S, A, V, F, P]) SetLimits(limits *Limits) {
	s.limits = limits
	if limiter, ok := s.Cutoff.(LimiterLike); ok {
		limiter.SetLimits(limits)
	}
}

func (s *Search[S, A, V, F, P]) Limits() *Limits {
	return s.limits
}

// Adds custom context to the cutoff test (if supported), enabling cancellation through it
func (s *Search[S, A, V, F, P]) SetContext(ctx context.Context) {
	if c, ok := s.Cutoff.(interface{ SetContext(context.Context) }); ok {
		c.SetContext(ctx)
	}
}

// Ask the running search to stop, works only with LimiterLike cutoff tests
func (s *Search[S, A, V, F, P]) Stop() {
	if limiter, ok := s.Cutoff.(LimiterLike); ok {
		limiter.SetStop(true)
	}
}

// Get the reason why the search was stopped, valid after search ends
func (s *Search[S, A, V, F, P]) StopReason() StopReason {
	return s.reason
}

// Deepest fully explored depth of the last search
func (s *Search[S, A, V, F, P]) Depth() int {
	return s.bestDepth
}

// Number of generated actions in the last search
func (s *Search[S, A, V, F, P]) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Search[S, A, V, F, P]) StatsListener() *StatsListener[A, V] {
	return s.listener
}

func (s *Search[S, A, V, F, P]) SetListener(listener StatsListener[A, V]) {
	*s.listener = listener
}

func (s *Search[S, A, V, F, P]) ResetListener() {
	s.listener.OnDepth(nil).OnStop(nil)
}

func (s *Search[S, A, V, F, P]) invokeListener(f ListenerFunc[A, V], best A) {
	if f == nil {
		return
	}
	elapsed := s.timer.Deltatime()
	nodes := s.nodes.Load()
	f(SearchStats[A, V]{
		Depth:      s.bestDepth,
		Nodes:      nodes,
		TimeMs:     elapsed,
		Nps:        nodes * 1000 / uint64(elapsed),
		Best:       best,
		Value:      s.Builder.ExtractValue(best),
		StopReason: s.reason,
	})
}

// Find the best action for 'maxPlayer' in given state. The state is used as
// the canonical position of the search: it's modified during the search,
// but left as it was when Decide returns.
//
// The result carries the minimax value of the deepest fully explored depth.
// If not even the first depth was completed, the best ranked root action
// (by its static evaluation) is returned. ErrNoActions is returned
// if there are no legal actions in the state.
func (s *Search[S, A, V, F, P]) Decide(state S, maxPlayer, minPlayer P) (A, error) {
	s.setup(state, maxPlayer, minPlayer)
	defer s.teardown()

	var (
		best  A
		zero  A
		found bool
		err   error
	)

	s.Cutoff.Begin()
	for {
		s.reachedPly = 0
		s.horizon = false

		decision := s.value(zero, s.Builder.NegInf(), s.Builder.PosInf(), 0, 0, true)

		// Results of the interrupted passes are not trusted, the cutoff
		// could have happened before exploring the best line
		complete := !s.interrupted
		if complete && s.reachedPly > s.bestDepth {
			s.bestDepth = s.reachedPly
			best, found = decision, true
			s.invokeListener(s.listener.onDepth, best)
		}

		log.Debug().
			Int("depth", s.cutoffDepth).
			Int("reached", s.reachedPly).
			Bool("complete", complete).
			Uint64("nodes", s.nodes.Load()).
			Msg("deepening-iteratively")

		if s.interrupted {
			break
		}
		if !s.horizon {
			// No line reached the depth bound, deeper search won't change anything
			s.reason |= StopExhausted
			break
		}
		if s.cutoffDepth >= s.limits.Depth {
			s.reason |= StopDepth
			break
		}
		s.cutoffDepth++
	}
	s.Cutoff.End()

	if limiter, ok := s.Cutoff.(interface{ StopReason() StopReason }); ok {
		s.reason |= limiter.StopReason()
	} else if s.interrupted && s.reason&StopCapacity == 0 {
		s.reason |= StopInterrupt
	}

	// Next search will start close to the depth reached now
	s.initialDepth = max(s.bestDepth-1, s.initialDepth)

	if !found {
		best, err = s.fallback()
	}

	log.Debug().
		Int("best-depth", s.bestDepth).
		Int("initial-depth", s.initialDepth).
		Bool("fallback", !found).
		Str("stop-reason", s.reason.String()).
		Uint64("nodes", s.nodes.Load()).
		Msg("search-finished")

	if err == nil {
		s.invokeListener(s.listener.onStop, best)
	}
	return best, err
}

func (s *Search[S, A, V, F, P]) setup(state S, maxPlayer, minPlayer P) {
	s.state = state
	s.maxPlayer = maxPlayer
	s.minPlayer = minPlayer
	s.stateCache.SetParent(state)
	s.evalCache.SetParent(s.Evaluation)
	s.cutoffDepth = max(1, min(s.initialDepth, s.limits.Depth))
	s.bestDepth = 0
	s.interrupted = false
	s.reason = StopNone
	s.nodes.Store(0)
	s.timer.Reset()
}

// Reset all values, so the search can be run again
func (s *Search[S, A, V, F, P]) teardown() {
	var (
		state  S
		player P
	)

	s.stateCache.Clear()
	s.stateCache.SetParent(nil)
	s.evalCache.Clear()
	s.evalCache.SetParent(nil)
	clear(s.buffer)
	s.state = state
	s.maxPlayer = player
	s.minPlayer = player
}

// No depth was fully explored, pick the action with the best static evaluation
func (s *Search[S, A, V, F, P]) fallback() (A, error) {
	var zero A
	f := s.expand(s.maxPlayer, 0)
	if f.Len() == 0 {
		return zero, ErrNoActions
	}
	return s.Builder.Clone(s.buffer[f.start].action), nil
}

// Minimax value of the current node (canonical state), with alpha-beta pruning.
// 'parent' is the action that led to this node, 'start' is the first free
// slot in the results buffer. Returns the best child action carrying
// the node's value, or 'parent' with the static evaluation, if it's a leaf.
func (s *Search[S, A, V, F, P]) value(parent A, alpha, beta V, ply, start int, maximizing bool) A {
	s.reachedPly = max(s.reachedPly, ply)

	if s.Cutoff.Test(s.state) {
		// Search was cut off, start ending the search
		s.interrupted = true
		return s.leaf(parent)
	}

	if ply >= s.cutoffDepth {
		// Iterative deepening bound
		s.horizon = true
		return s.leaf(parent)
	}

	player := s.minPlayer
	if maximizing {
		player = s.maxPlayer
	}

	f := s.expand(player, start)
	if f.full {
		// Out of space in the results buffer
		s.interrupted = true
		s.reason |= StopCapacity
		return s.leaf(parent)
	}
	if f.Len() == 0 {
		// No legal actions, terminal node
		return s.leaf(parent)
	}

	b := s.Builder
	v := b.PosInf()
	if maximizing {
		v = b.NegInf()
	}

	var best A
	found := false

	for i := f.start; i < f.end && !s.interrupted; i++ {
		action := s.buffer[i].action

		// All cached states need to be updated with the current action
		s.apply(action)
		child := s.value(action, alpha, beta, ply+1, f.end, !maximizing)
		childValue := b.ExtractValue(child)
		// Go back to this node, so the next action can be applied
		s.undo(action)

		if maximizing {
			if !found || b.Compare(v, childValue) < 0 {
				v, best, found = childValue, action, true
			}
			if b.Compare(v, beta) >= 0 {
				break
			}
			if b.Compare(v, alpha) > 0 {
				alpha = v
			}
		} else {
			if !found || b.Compare(v, childValue) > 0 {
				v, best, found = childValue, action, true
			}
			if b.Compare(v, alpha) <= 0 {
				break
			}
			if b.Compare(v, beta) < 0 {
				beta = v
			}
		}
	}

	return b.InsertValue(b.Clone(best), v)
}

// Static evaluation of the canonical state, from the max player's perspective
func (s *Search[S, A, V, F, P]) leaf(parent A) A {
	return s.Builder.InsertValue(s.Builder.Clone(parent), s.Evaluation.Evaluate(s.state, s.maxPlayer))
}

func (s *Search[S, A, V, F, P]) apply(action A) {
	s.state.Apply(action)
	s.stateCache.Each(func(cached S) {
		cached.Apply(action)
	})
}

func (s *Search[S, A, V, F, P]) undo(action A) {
	s.state.Undo(action)
	s.stateCache.Each(func(cached S) {
		cached.Undo(action)
	})
}
