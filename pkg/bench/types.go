package bench

import (
	"context"
	"sync/atomic"

	"github.com/IlikeChooros/go-alphabeta/pkg/search"
)

type VersusMatchResult int

const (
	VersusPl1Win VersusMatchResult = 1
	VersusPl2Win VersusMatchResult = -1
	VersusDraw   VersusMatchResult = 0
)

func (r VersusMatchResult) String() string {
	switch r {
	case VersusPl1Win:
		return "player1"
	case VersusPl2Win:
		return "player2"
	}
	return "draw"
}

// Game position the arena plays on
type PositionLike[T any, P any] interface {
	MakeMove(T)
	UndoMove()
	IsTerminated() bool
	IsDraw() bool
	// Used to play the random opening plies
	LegalMoves() []T
	Clone() P
}

// Anything that picks a move in a position, usually a wrapper around a search.Search
type Decider[T any, P any] interface {
	Name() string
	// Pick a move for the side to move, must leave 'pos' unchanged
	Decide(ctx context.Context, pos P) (T, error)
	SetLimits(*search.Limits)
	// Independent copy, used by a single worker
	Clone() Decider[T, P]
}

// Optionally implemented by a Decider, reports the depth of the last decision
type DepthReporter interface {
	Depth() int
}

type VersusArenaStats struct {
	p1Wins           atomic.Uint32
	p2Wins           atomic.Uint32
	draws            atomic.Uint32
	firstToMoveWins  atomic.Uint32
	secondToMoveWins atomic.Uint32
}

func (vas *VersusArenaStats) Total() int {
	return vas.P1Wins() + vas.P2Wins() + vas.Draws()
}

func (vas *VersusArenaStats) P1Wins() int {
	return int(vas.p1Wins.Load())
}

func (vas *VersusArenaStats) P2Wins() int {
	return int(vas.p2Wins.Load())
}

func (vas *VersusArenaStats) Draws() int {
	return int(vas.draws.Load())
}

func (vas *VersusArenaStats) FirstToMoveWins() int {
	return int(vas.firstToMoveWins.Load())
}

func (vas *VersusArenaStats) SecondToMoveWins() int {
	return int(vas.secondToMoveWins.Load())
}

func (vas *VersusArenaStats) reset() {
	vas.p1Wins.Store(0)
	vas.p2Wins.Store(0)
	vas.draws.Store(0)
	vas.firstToMoveWins.Store(0)
	vas.secondToMoveWins.Store(0)
}

func (vas *VersusArenaStats) add(outcome GameOutcome, result VersusMatchResult) {
	switch result {
	case VersusDraw:
		vas.draws.Add(1)
		return
	case VersusPl1Win:
		vas.p1Wins.Add(1)
	case VersusPl2Win:
		vas.p2Wins.Add(1)
	}

	if outcome.FirstPlayerWon {
		vas.firstToMoveWins.Add(1)
	} else {
		vas.secondToMoveWins.Add(1)
	}
}

type VersusWorkerInfo[T any] struct {
	WorkerID      int
	NGames        int
	FinishedGames int
	GameMoveNum   int
	Moves         []T
	P1Wins        int
	P2Wins        int
	Draws         int
	P1Name        string
	P2Name        string
}

// Single played game
type GameRecord struct {
	Worker  int               `yaml:"worker"`
	Game    int               `yaml:"game"`
	P1First bool              `yaml:"player1-first"`
	Result  VersusMatchResult `yaml:"result"`
	Moves   int               `yaml:"moves"`
}

// Decision statistics of a single player, times in milliseconds
type DecisionStats struct {
	Decisions    int     `yaml:"decisions"`
	MeanTimeMs   float64 `yaml:"mean-time-ms"`
	StdDevTimeMs float64 `yaml:"stddev-time-ms"`
	MeanDepth    float64 `yaml:"mean-depth"`
	StdDevDepth  float64 `yaml:"stddev-depth"`
}

type VersusSummaryInfo struct {
	TotalGames       int           `yaml:"total-games"`
	P1Wins           int           `yaml:"player1-wins"`
	P2Wins           int           `yaml:"player2-wins"`
	FirstToMoveWins  int           `yaml:"first-to-move-wins"`
	SecondToMoveWins int           `yaml:"second-to-move-wins"`
	Draws            int           `yaml:"draws"`
	Workers          int           `yaml:"workers"`
	P1Name           string        `yaml:"player1-name"`
	P2Name           string        `yaml:"player2-name"`
	P1Decisions      DecisionStats `yaml:"player1-decisions"`
	P2Decisions      DecisionStats `yaml:"player2-decisions"`
}

// Result from the first-to-move perspective, in a single game
type GameOutcome struct {
	FirstPlayerWon bool
	IsDraw         bool
}

// Maps a game outcome to which agent won, given player assignments
func toAgentResult(outcome GameOutcome, p1WentFirst bool) VersusMatchResult {
	if outcome.IsDraw {
		return VersusDraw
	}

	if p1WentFirst == outcome.FirstPlayerWon {
		return VersusPl1Win
	}
	return VersusPl2Win
}

// Determines the winner, the side that made the last move wins.
// A game that ended in the opening, before any decider moved, is a draw.
func computeOutcome[T any, P PositionLike[T, P]](gamePos P, moveCount int) GameOutcome {
	if !gamePos.IsTerminated() {
		panic("computeOutcome: position not terminated")
	}

	if moveCount == 0 || gamePos.IsDraw() {
		return GameOutcome{IsDraw: true}
	}

	return GameOutcome{FirstPlayerWon: moveCount%2 == 1}
}
