package search

type SearchStats[A any, V any] struct {
	Depth      int    // deepest fully explored depth
	Nodes      uint64 // generated actions so far
	TimeMs     int
	Nps        uint64
	Best       A // best known action, carrying Value
	Value      V
	StopReason StopReason
}

// Listener function callback, will recieve current search statistics
type ListenerFunc[A any, V any] func(SearchStats[A, V])

type StatsListener[A any, V any] struct {
	// called when a new best decision is recorded, after a full depth pass
	onDepth ListenerFunc[A, V]

	// called when the search stops (either by limiter or 'stop' signal)
	onStop ListenerFunc[A, V]
}

func NewStatsListener[A any, V any]() StatsListener[A, V] {
	return StatsListener[A, V]{}
}

// Attach new depth completion callback, called only by the search goroutine,
// meaning no need for synchronization here
func (listener *StatsListener[A, V]) OnDepth(onDepth ListenerFunc[A, V]) *StatsListener[A, V] {
	listener.onDepth = onDepth
	return listener
}

// Attach 'on search end' callback, called once by the search goroutine,
// makes 'StopReason' available in the stats
func (listener *StatsListener[A, V]) OnStop(onStop ListenerFunc[A, V]) *StatsListener[A, V] {
	listener.onStop = onStop
	return listener
}
