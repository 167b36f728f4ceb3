// Package solver finds shortest slide sequences for the N-puzzle. It
// contains a sequential best-first reference solver and a multi-queue
// work-stealing parallel engine that share the same ordering and
// relaxation semantics.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/npuzzle/board"
	"github.com/domino14/npuzzle/heuristic"
)

var (
	ErrInvalidSearchMode = errors.New("invalid search mode")
	ErrInvalidThreads    = errors.New("thread count must be at least 1")
	ErrDimensionMismatch = errors.New("initial and goal dimensions differ")
)

// Mode selects the composite priority used to order the open sets.
type Mode uint8

const (
	// AStar orders by g+h; optimal with an admissible heuristic.
	AStar Mode = iota
	// UCS orders by g alone and ignores the heuristic.
	UCS
	// Greedy orders by h alone; fast but not optimal.
	Greedy
)

func (m Mode) String() string {
	switch m {
	case AStar:
		return "astar"
	case UCS:
		return "ucs"
	case Greedy:
		return "greedy"
	}
	return "unknown"
}

// ParseMode maps the CLI spellings onto search modes.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "astar":
		return AStar, nil
	case "ucs":
		return UCS, nil
	case "greedy":
		return Greedy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSearchMode, s)
}

// priority computes the f-cost for the mode.
func (m Mode) priority(g, h uint32) uint32 {
	switch m {
	case UCS:
		return g
	case Greedy:
		return h
	}
	return g + h
}

// Statistics summarizes a finished search.
type Statistics struct {
	// StatesSelected counts nodes popped from any open set.
	StatesSelected uint64
	// MaxStatesInMemory is the high-water mark of live open+closed nodes.
	MaxStatesInMemory uint64
	// SolutionLength is the number of edges in the returned path.
	SolutionLength int
}

// Solution is a path from the initial board to the goal, inclusive, with
// the search statistics. The path boards are owned by the Solution; they
// outlive the search structures they were found in.
type Solution struct {
	Path  []*board.Board
	Stats Statistics
}

// Solver holds one search problem. It consumes ownership of the initial
// board: the board's cost fields are rewritten during the search.
type Solver struct {
	initial *board.Board
	gt      *heuristic.GoalTable
	hfunc   heuristic.Func
	mode    Mode
	threads int
}

// New validates and assembles a solver. threads == 1 selects the
// sequential reference implementation; more run the parallel engine.
func New(initial *board.Board, gt *heuristic.GoalTable, ht heuristic.Type, mode Mode, threads int) (*Solver, error) {
	if threads < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreads, threads)
	}
	if initial.Dim() != gt.Dim() {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, initial.Dim(), gt.Dim())
	}
	return &Solver{
		initial: initial,
		gt:      gt,
		hfunc:   ht.Func(),
		mode:    mode,
		threads: threads,
	}, nil
}

// Solve runs the search. It returns (nil, nil) when no path from the
// initial board to the goal exists.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	log.Debug().
		Int("dim", s.initial.Dim()).
		Int("threads", s.threads).
		Str("mode", s.mode.String()).
		Msg("solve-config")
	if s.threads == 1 {
		return s.solveSequential(ctx)
	}
	return s.solveParallel(ctx)
}

// heuristicFor evaluates the heuristic for the mode: UCS never consults it.
func (s *Solver) heuristicFor(b *board.Board) uint32 {
	if s.mode == UCS {
		return 0
	}
	return s.hfunc(b, s.gt)
}

// extractPath walks parent links from goalNode back to the root, cloning
// every board into caller-owned storage and rewiring the cloned parents so
// the returned path is self-contained.
func extractPath(goalNode *board.Board) []*board.Board {
	path := []*board.Board{}
	for n := goalNode; n != nil; n = n.Parent() {
		c := n.Clone()
		c.SetParent(nil)
		path = append(path, c)
	}
	path = lo.Reverse(path)
	for i := 1; i < len(path); i++ {
		path[i].SetParent(path[i-1])
	}
	return path
}
