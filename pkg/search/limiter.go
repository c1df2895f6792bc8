package search

import (
	"context"
	"sync/atomic"
	"unsafe"
)

type StopReason int

const (
	StopNone      StopReason = iota
	StopInterrupt            = 1  // Stopped by user, by calling .SetStop(true) or context cancellation
	StopMovetime             = 2  // Time limit reached
	StopNodes                = 4  // Node limit reached
	StopDepth                = 8  // Depth limit reached
	StopCapacity             = 16 // Results buffer is full
	StopExhausted            = 32 // Whole game tree was explored, deeper search can't change the result
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopNodes, "Nodes"},
		{StopDepth, "Depth"},
		{StopCapacity, "Capacity"},
		{StopExhausted, "Exhausted"},
	}

	var result string
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			if result != "" {
				result += "|"
			}
			result += r.name
		}
	}

	return result
}

type LimiterLike interface {
	SetContext(ctx context.Context)
	// Set the limits
	SetLimits(*Limits)
	// Get the limits
	Limits() *Limits
	// Get elapsed time in ms (from the last 'Reset' call)
	Elapsed() uint32
	// Set the stop signal, will cause to exit search if set to true
	SetStop(bool)
	// Get the stop signal
	Stop() bool
	// Reset the limiter's flags, called on search setup
	Reset()
	// Number of visited nodes since the last 'Reset'
	Nodes() uint64
	// Get the reason why the search was stopped, valid after search ends
	StopReason() StopReason
}

// Default cutoff test, stops the search when the time or node budget is spent,
// the stop flag is set, or the context is cancelled.
// Every Test call counts as one visited node.
type Limiter[S any] struct {
	limits *Limits
	Timer  *_Timer
	nodes  atomic.Uint64
	stop   atomic.Bool
	reason StopReason
	ctx    context.Context
}

func NewLimiter[S any]() *Limiter[S] {
	return &Limiter[S]{
		limits: DefaultLimits(),
		Timer:  _NewTimer(),
		ctx:    context.Background(),
	}
}

func (l *Limiter[S]) Reset() {
	l.Timer.Movetime(l.limits.Movetime)
	l.Timer.Reset()
	l.stop.Store(false)
	l.nodes.Store(0)
	l.reason = StopNone
}

// Cutoff implementation

func (l *Limiter[S]) Begin() {
	l.Reset()
}

func (l *Limiter[S]) Test(S) bool {
	mask := l.LimitMask(l.nodes.Add(1))
	if mask != 0 && l.reason == StopNone {
		l.reason = StopReason(mask)
	}
	return mask != 0
}

func (l *Limiter[S]) End() {
	if l.reason == StopNone && l.Stop() {
		l.reason = StopInterrupt
	}
}

func (l *Limiter[S]) StopReason() StopReason {
	return l.reason
}

func (l *Limiter[S]) SetContext(ctx context.Context) {
	l.ctx = ctx
}

func (l *Limiter[S]) SetStop(v bool) {
	l.stop.Store(v)
}

func (l *Limiter[S]) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

func (l *Limiter[S]) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter[S]) Limits() *Limits {
	return l.limits
}

func (l *Limiter[S]) Elapsed() uint32 {
	return uint32(l.Timer.Deltatime())
}

func (l *Limiter[S]) Nodes() uint64 {
	return l.nodes.Load()
}

func toMask(val bool, offset int) int {
	return int(*(*byte)(unsafe.Pointer(&val))) << offset
}

// Bit mask of the reached limits, see StopReason for the bit meaning
func (l *Limiter[S]) LimitMask(nodes uint64) int {
	stop := l.Stop()
	// If infinite, only the stop signal matters
	if l.limits.Infinite {
		return toMask(stop, 0)
	}

	limitMask := 0

	limitMask |= toMask(stop, 0)
	limitMask |= toMask(l.Timer.IsEnd(), 1)
	limitMask |= toMask(l.limits.Nodes <= nodes, 2)

	return limitMask
}
