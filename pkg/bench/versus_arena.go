package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/IlikeChooros/go-alphabeta/pkg/search"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"
)

/*
Arena benchmark subpackage, allows to play a series of games between two
different deciders (usually differently configured searches).
*/

var ErrNoGames = errors.New("bench: nothing to play")

type decision struct {
	timeMs float64
	depth  float64
}

type VersusArena[T any, P PositionLike[T, P]] struct {
	VersusArenaStats
	Player1  Decider[T, P]
	Player2  Decider[T, P]
	NGames   int
	NThreads int
	// Random moves played before the deciders take over
	OpeningPlies int
	// Seeds the opening plies and the first mover coin flips,
	// each worker uses Seed+workerID
	Seed     uint64
	Limits   *search.Limits
	Position P

	ctx       context.Context
	mu        sync.Mutex
	records   []GameRecord
	decisions [2][]decision
}

func NewVersusArena[T any, P PositionLike[T, P]](position P, p1, p2 Decider[T, P]) *VersusArena[T, P] {
	return &VersusArena[T, P]{
		Player1:  p1,
		Player2:  p2,
		NGames:   100,
		NThreads: 2,
		Seed:     frand.Uint64n(math.MaxUint64),
		Limits:   search.DefaultLimits().SetMovetime(1000),
		Position: position,
		ctx:      context.Background(),
	}
}

func (va *VersusArena[T, P]) WithContext(ctx context.Context) *VersusArena[T, P] {
	va.ctx = ctx
	return va
}

func (va *VersusArena[T, P]) Setup(limits *search.Limits, nGames, nThreads int) *VersusArena[T, P] {
	va.NGames = nGames
	va.Limits = limits
	va.NThreads = nThreads
	return va
}

// Play all games, blocks until they are done. Games are distributed equally
// between the workers, the first mover of every game is chosen by a coin flip.
// Returns the first decider error, or the context error if it was cancelled.
func (va *VersusArena[T, P]) Run(listener ListenerLike[T]) error {
	if va.NGames <= 0 {
		return ErrNoGames
	}
	if listener == nil {
		listener = DefaultListener[T]{}
	}

	va.reset()
	nThreads := max(1, min(va.NThreads, va.NGames))
	g, ctx := errgroup.WithContext(va.ctx)

	for id, nGames := range splitGames(va.NGames, nThreads) {
		// Always use a clone, each worker owns its players
		p1 := va.Player1.Clone()
		p2 := va.Player2.Clone()
		p1.SetLimits(va.Limits)
		p2.SetLimits(va.Limits)
		pos := va.Position.Clone()

		g.Go(func() error {
			return va.worker(ctx, id, nGames, listener, p1, p2, pos)
		})
	}

	err := g.Wait()
	summary := va.Summary()
	listener.Summary(summary)

	log.Info().
		Int("games", summary.TotalGames).
		Int("p1-wins", summary.P1Wins).
		Int("p2-wins", summary.P2Wins).
		Int("draws", summary.Draws).
		Err(err).
		Msg("arena-finished")
	return err
}

// Number of games per worker, the rest is given to the first workers
func splitGames(nGames, nThreads int) []int {
	return lo.Times(nThreads, func(i int) int {
		n := nGames / nThreads
		if i < nGames%nThreads {
			n++
		}
		return n
	})
}

func (va *VersusArena[T, P]) reset() {
	va.VersusArenaStats.reset()
	va.mu.Lock()
	va.records = va.records[:0]
	va.decisions = [2][]decision{}
	va.mu.Unlock()
}

func (va *VersusArena[T, P]) worker(ctx context.Context, id, nGames int, listener ListenerLike[T], p1, p2 Decider[T, P], gamePos P) error {
	r := rand.New(rand.NewSource(va.Seed + uint64(id)))
	local := &VersusArenaStats{}

	for i := range nGames {
		p1First := r.Intn(2) == 0
		var (
			outcome GameOutcome
			moves   []T
			err     error
		)
		if p1First {
			outcome, moves, err = va.playGame(ctx, [2]Decider[T, P]{p1, p2}, [2]int{0, 1}, gamePos, r, listener, id, nGames, i, local)
		} else {
			outcome, moves, err = va.playGame(ctx, [2]Decider[T, P]{p2, p1}, [2]int{1, 0}, gamePos, r, listener, id, nGames, i, local)
		}
		if err != nil {
			return err
		}

		result := toAgentResult(outcome, p1First)
		va.add(outcome, result)
		local.add(outcome, result)

		va.mu.Lock()
		va.records = append(va.records, GameRecord{
			Worker: id, Game: i, P1First: p1First, Result: result, Moves: len(moves),
		})
		va.mu.Unlock()

		listener.OnFinishedGame(va.workerInfo(id, nGames, i+1, moves, local))
	}

	listener.OnFinishedWork(va.workerInfo(id, nGames, nGames, nil, local))
	return nil
}

func (va *VersusArena[T, P]) workerInfo(id, nGames, finished int, moves []T, local *VersusArenaStats) VersusWorkerInfo[T] {
	return VersusWorkerInfo[T]{
		WorkerID:      id,
		NGames:        nGames,
		FinishedGames: finished,
		GameMoveNum:   len(moves),
		Moves:         moves,
		P1Wins:        local.P1Wins(),
		P2Wins:        local.P2Wins(),
		Draws:         local.Draws(),
		P1Name:        va.Player1.Name(),
		P2Name:        va.Player2.Name(),
	}
}

// Play a single game, players[0] moves first. 'slots' maps the players to
// their decision statistics (0 - Player1, 1 - Player2).
// The position is restored before returning.
func (va *VersusArena[T, P]) playGame(
	ctx context.Context, players [2]Decider[T, P], slots [2]int, gamePos P, r *rand.Rand,
	listener ListenerLike[T], workerId, nGames, game int, local *VersusArenaStats,
) (GameOutcome, []T, error) {
	played := 0
	defer func() {
		for range played {
			gamePos.UndoMove()
		}
	}()

	// Random opening, doesn't count as the players' moves
	for range va.OpeningPlies {
		legal := gamePos.LegalMoves()
		if gamePos.IsTerminated() || len(legal) == 0 {
			break
		}
		gamePos.MakeMove(legal[r.Intn(len(legal))])
		played++
	}

	moves := make([]T, 0, 64)
	for turn := 0; !gamePos.IsTerminated(); turn ^= 1 {
		if err := ctx.Err(); err != nil {
			return GameOutcome{}, moves, err
		}

		start := time.Now()
		m, err := players[turn].Decide(ctx, gamePos)
		if err != nil {
			return GameOutcome{}, moves, fmt.Errorf("%s, game %d, move %d: %w", players[turn].Name(), game, len(moves), err)
		}
		va.record(slots[turn], players[turn], time.Since(start))

		gamePos.MakeMove(m)
		played++
		moves = append(moves, m)
		listener.OnMoveMade(va.workerInfo(workerId, nGames, game, moves, local))
	}

	return computeOutcome[T](gamePos, len(moves)), moves, nil
}

func (va *VersusArena[T, P]) record(slot int, player Decider[T, P], elapsed time.Duration) {
	d := decision{timeMs: float64(elapsed.Microseconds()) / 1000}
	if reporter, ok := player.(DepthReporter); ok {
		d.depth = float64(reporter.Depth())
	}

	va.mu.Lock()
	va.decisions[slot] = append(va.decisions[slot], d)
	va.mu.Unlock()
}

// Games played so far, in completion order
func (va *VersusArena[T, P]) Records() []GameRecord {
	va.mu.Lock()
	defer va.mu.Unlock()
	return append([]GameRecord(nil), va.records...)
}

func decisionStats(decisions []decision) DecisionStats {
	if len(decisions) == 0 {
		return DecisionStats{}
	}

	times := lo.Map(decisions, func(d decision, _ int) float64 { return d.timeMs })
	depths := lo.Map(decisions, func(d decision, _ int) float64 { return d.depth })
	stats := DecisionStats{Decisions: len(decisions)}
	stats.MeanTimeMs, stats.StdDevTimeMs = stat.MeanStdDev(times, nil)
	stats.MeanDepth, stats.StdDevDepth = stat.MeanStdDev(depths, nil)
	return stats
}

func (va *VersusArena[T, P]) Summary() VersusSummaryInfo {
	va.mu.Lock()
	p1, p2 := decisionStats(va.decisions[0]), decisionStats(va.decisions[1])
	va.mu.Unlock()

	return VersusSummaryInfo{
		TotalGames:       va.Total(),
		P1Wins:           va.P1Wins(),
		P2Wins:           va.P2Wins(),
		FirstToMoveWins:  va.FirstToMoveWins(),
		SecondToMoveWins: va.SecondToMoveWins(),
		Draws:            va.Draws(),
		Workers:          max(1, min(va.NThreads, va.NGames)),
		P1Name:           va.Player1.Name(),
		P2Name:           va.Player2.Name(),
		P1Decisions:      p1,
		P2Decisions:      p2,
	}
}

// Write the summary as a YAML document
func (va *VersusArena[T, P]) WriteSummary(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(va.Summary()); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return enc.Close()
}
