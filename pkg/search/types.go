package search

// Plugin contracts, implemented by the game (or any other domain) using the engine.
//
// Type parameters used across the package:
//
//	S - state, A - action, V - value, F - partition key, P - player

// Anything that can produce a deep copy of itself, without any shared memory
// with the original object
type Cloner[C any] interface {
	Clone() C
}

// Mutable position. Apply followed by Undo with the same action
// must restore the exact previous state.
//
// Clone may be called concurrently by the worker goroutines, while the
// search goroutine is waiting for them, so it must not mutate the receiver.
type State[A any, S any] interface {
	Cloner[S]
	// Make the action on this state, making it a successor state
	Apply(A)
	// Revert the action, previously made with Apply
	Undo(A)
}

// Manipulates the value slot of the actions, called concurrently,
// so the implementation must not carry any state.
// The zero value of A must be accepted by Clone and InsertValue,
// it's used as the 'parent' action of the root.
type Builder[A any, V any] interface {
	// Value greater than any value the evaluation can return
	PosInf() V
	// Value lower than any value the evaluation can return
	NegInf() V
	// Read the embedded value, without modifying the action
	ExtractValue(A) V
	// Return the action carrying given value
	InsertValue(A, V) A
	// Deep copy of the action
	Clone(A) A
	// Compare two values, returns < 0 if v0 < v1, 0 if equal, > 0 if v0 > v1
	Compare(v0, v1 V) int
}

// Scores a state for the player. Doesn't have to be thread safe,
// each worker goroutine gets its own clone.
type Evaluation[S any, V any, P any] interface {
	Cloner[Evaluation[S, V, P]]
	Evaluate(state S, player P) V
}

// Two-phase move generator.
//
// Partition is called on the search goroutine and should call 'emit' once per
// independent unit of work. Expand is then called concurrently, once per unit,
// on a private clone of the state, and should call 'yield' once per generated
// action. If 'yield' returns false, the engine ran out of space and Expand
// may return early.
//
// Units must not overlap, and the partitioning must be deterministic
// for given state and player.
type Successor[S any, A any, F any, P any] interface {
	Partition(state S, player P, emit func(F))
	Expand(state S, player P, unit F, yield func(A) bool)
}

// Cooperative search limiter, Test is polled at every node of the tree,
// so it must be cheap.
type Cutoff[S any] interface {
	// Invoked when the search starts
	Begin()
	// Returns true if the search should end as soon as possible
	Test(state S) bool
	// Invoked after the search is done
	End()
}
