package search

import "errors"

// Default capacity of the results buffer, shared by the whole search tree
const DefaultMaxActions = 1 << 16

// Default iterative deepening start depth
const DefaultInitialDepth = 1

// No cap on the number of explored children
const UnlimitedExplorations = 0

var (
	// The root position has no legal actions
	ErrNoActions = errors.New("search: no legal actions in the root position")
)
