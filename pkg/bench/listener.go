package bench

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// Arena progress callbacks, called concurrently by the worker goroutines
type ListenerLike[T any] interface {
	OnMoveMade(info VersusWorkerInfo[T])
	OnFinishedGame(info VersusWorkerInfo[T])
	OnFinishedWork(info VersusWorkerInfo[T])
	Summary(info VersusSummaryInfo)
}

type DefaultListener[T any] struct{}

func (DefaultListener[T]) OnMoveMade(VersusWorkerInfo[T])     {}
func (DefaultListener[T]) OnFinishedGame(VersusWorkerInfo[T]) {}
func (DefaultListener[T]) OnFinishedWork(VersusWorkerInfo[T]) {}
func (DefaultListener[T]) Summary(VersusSummaryInfo)          {}

// Prints a line per finished game and the final summary, colored if the
// output supports it
type TerminalListener[T any] struct {
	mu  sync.Mutex
	out *termenv.Output
}

func NewTerminalListener[T any](w io.Writer) *TerminalListener[T] {
	return &TerminalListener[T]{out: termenv.NewOutput(w)}
}

func (tl *TerminalListener[T]) OnMoveMade(VersusWorkerInfo[T]) {}

func (tl *TerminalListener[T]) OnFinishedGame(info VersusWorkerInfo[T]) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	worker := tl.out.String(fmt.Sprintf("[worker %d]", info.WorkerID)).Bold()
	fmt.Fprintf(tl.out, "%s game %d/%d (%d moves) %s %s %s\n",
		worker, info.FinishedGames, info.NGames, info.GameMoveNum,
		tl.out.String(fmt.Sprintf("%s %d", info.P1Name, info.P1Wins)).Foreground(tl.out.Color("2")),
		tl.out.String(fmt.Sprintf("%s %d", info.P2Name, info.P2Wins)).Foreground(tl.out.Color("1")),
		tl.out.String(fmt.Sprintf("draws %d", info.Draws)).Faint(),
	)
}

func (tl *TerminalListener[T]) OnFinishedWork(info VersusWorkerInfo[T]) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	fmt.Fprintf(tl.out, "%s done, %d games\n",
		tl.out.String(fmt.Sprintf("[worker %d]", info.WorkerID)).Bold(), info.FinishedGames)
}

func (tl *TerminalListener[T]) Summary(info VersusSummaryInfo) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	fmt.Fprintln(tl.out, tl.out.String("Summary").Bold().Underline())
	fmt.Fprintf(tl.out, "games: %d (workers: %d)\n", info.TotalGames, info.Workers)
	fmt.Fprintf(tl.out, "%s: %d wins, %.1f±%.1f ms/move, depth %.1f\n", info.P1Name, info.P1Wins,
		info.P1Decisions.MeanTimeMs, info.P1Decisions.StdDevTimeMs, info.P1Decisions.MeanDepth)
	fmt.Fprintf(tl.out, "%s: %d wins, %.1f±%.1f ms/move, depth %.1f\n", info.P2Name, info.P2Wins,
		info.P2Decisions.MeanTimeMs, info.P2Decisions.StdDevTimeMs, info.P2Decisions.MeanDepth)
	fmt.Fprintf(tl.out, "draws: %d, first to move wins: %d, second to move wins: %d\n",
		info.Draws, info.FirstToMoveWins, info.SecondToMoveWins)
}
