package solver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/npuzzle/board"
	"github.com/domino14/npuzzle/gen"
	"github.com/domino14/npuzzle/heuristic"
)

func mustBoard(t *testing.T, n int, tiles []uint8) *board.Board {
	t.Helper()
	b, err := board.FromTiles(n, tiles)
	require.NoError(t, err)
	return b
}

func snailGoal(t *testing.T, n int) *heuristic.GoalTable {
	t.Helper()
	g, err := gen.SnailBoard(n)
	require.NoError(t, err)
	return heuristic.NewGoalTable(g)
}

// requireLegalPath checks that path is a chain of single-slide moves from
// initial to goal.
func requireLegalPath(t *testing.T, path []*board.Board, initial, goal *board.Board) {
	t.Helper()
	require.NotEmpty(t, path)
	require.True(t, path[0].Equals(initial), "path must start at the initial board")
	require.True(t, path[len(path)-1].Equals(goal), "path must end at the goal")
	scratch := board.New(initial.Dim())
	for i := 1; i < len(path); i++ {
		legal := false
		for _, d := range board.Directions {
			if path[i-1].ApplyMove(d, scratch) && scratch.Equals(path[i]) {
				legal = true
				break
			}
		}
		require.True(t, legal, "step %d is not a single legal slide", i)
	}
}

func solve(t *testing.T, initial *board.Board, gt *heuristic.GoalTable,
	ht heuristic.Type, mode Mode, threads int) *Solution {
	t.Helper()
	s, err := New(initial, gt, ht, mode, threads)
	require.NoError(t, err)
	sol, err := s.Solve(context.Background())
	require.NoError(t, err)
	return sol
}

func TestNewValidation(t *testing.T) {
	gt := snailGoal(t, 3)
	initial := mustBoard(t, 3, []uint8{1, 2, 3, 8, 0, 4, 7, 6, 5})

	_, err := New(initial, gt, heuristic.Manhattan, AStar, 0)
	assert.ErrorIs(t, err, ErrInvalidThreads)

	four := mustBoard(t, 4, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0})
	_, err = New(four, gt, heuristic.Manhattan, AStar, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Mode
	}{
		{"astar", AStar},
		{"ucs", UCS},
		{"greedy", Greedy},
	} {
		m, err := ParseMode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, m)
		assert.Equal(t, tc.in, m.String())
	}
	_, err := ParseMode("bfs")
	assert.ErrorIs(t, err, ErrInvalidSearchMode)
}

func TestAlreadySolved(t *testing.T) {
	gt := snailGoal(t, 3)
	for _, threads := range []int{1, 4} {
		initial := mustBoard(t, 3, []uint8{1, 2, 3, 8, 0, 4, 7, 6, 5})
		sol := solve(t, initial, gt, heuristic.Manhattan, AStar, threads)
		require.NotNil(t, sol)
		assert.Equal(t, 0, sol.Stats.SolutionLength)
		assert.Len(t, sol.Path, 1)
		assert.True(t, sol.Path[0].Equals(gt.Goal()))
	}
}

func TestOneMove(t *testing.T) {
	gt := snailGoal(t, 3)
	for _, threads := range []int{1, 4} {
		initial := mustBoard(t, 3, []uint8{1, 2, 3, 0, 8, 4, 7, 6, 5})
		sol := solve(t, initial, gt, heuristic.Manhattan, AStar, threads)
		require.NotNil(t, sol)
		assert.Equal(t, 1, sol.Stats.SolutionLength)
		requireLegalPath(t, sol.Path, initial, gt.Goal())
	}
}

func TestTwoMovesSortedGoal(t *testing.T) {
	goal := mustBoard(t, 3, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 0})
	gt := heuristic.NewGoalTable(goal)
	initial := mustBoard(t, 3, []uint8{1, 2, 3, 4, 5, 6, 0, 7, 8})
	sol := solve(t, initial, gt, heuristic.Manhattan, AStar, 1)
	require.NotNil(t, sol)
	assert.Equal(t, 2, sol.Stats.SolutionLength)
	requireLegalPath(t, sol.Path, initial, goal)
}

func TestOneMove4x4(t *testing.T) {
	goal := mustBoard(t, 4, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0})
	gt := heuristic.NewGoalTable(goal)
	initial := mustBoard(t, 4, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 0, 15})
	sol := solve(t, initial, gt, heuristic.Manhattan, AStar, 4)
	require.NotNil(t, sol)
	assert.Equal(t, 1, sol.Stats.SolutionLength)
	requireLegalPath(t, sol.Path, initial, goal)
}

func TestStatisticsPopulated(t *testing.T) {
	gt := snailGoal(t, 3)
	initial := mustBoard(t, 3, []uint8{2, 8, 1, 3, 0, 4, 7, 6, 5})
	sol := solve(t, initial, gt, heuristic.Manhattan, AStar, 1)
	require.NotNil(t, sol)
	assert.Greater(t, sol.Stats.StatesSelected, uint64(0))
	assert.Greater(t, sol.Stats.MaxStatesInMemory, uint64(0))
	assert.Equal(t, sol.Stats.SolutionLength, len(sol.Path)-1)
}

func TestUCSMatchesAStarLength(t *testing.T) {
	gt := snailGoal(t, 3)
	for i := 0; i < 5; i++ {
		initial, err := gen.Generate(3, 40, true)
		require.NoError(t, err)
		a := solve(t, initial.Clone(), gt, heuristic.Manhattan, AStar, 1)
		u := solve(t, initial.Clone(), gt, heuristic.Manhattan, UCS, 1)
		require.NotNil(t, a)
		require.NotNil(t, u)
		assert.Equal(t, a.Stats.SolutionLength, u.Stats.SolutionLength)
	}
}

func TestGreedyFindsLegalPath(t *testing.T) {
	gt := snailGoal(t, 3)
	initial, err := gen.Generate(3, 60, true)
	require.NoError(t, err)
	keep := initial.Clone()
	sol := solve(t, initial, gt, heuristic.LinearConflict, Greedy, 1)
	require.NotNil(t, sol)
	requireLegalPath(t, sol.Path, keep, gt.Goal())
}

func TestAllHeuristicsAgreeOnOptimalLength(t *testing.T) {
	gt := snailGoal(t, 3)
	initial := mustBoard(t, 3, []uint8{2, 8, 3, 1, 0, 4, 7, 6, 5})
	var want int
	for i, ht := range []heuristic.Type{heuristic.Manhattan, heuristic.Misplaced, heuristic.LinearConflict} {
		sol := solve(t, initial.Clone(), gt, ht, AStar, 1)
		require.NotNil(t, sol)
		if i == 0 {
			want = sol.Stats.SolutionLength
		} else {
			assert.Equal(t, want, sol.Stats.SolutionLength, "heuristic %v", ht)
		}
	}
}

func TestHeuristicsNeverOverestimate(t *testing.T) {
	gt := snailGoal(t, 3)
	for i := 0; i < 5; i++ {
		initial, err := gen.Generate(3, 30, true)
		require.NoError(t, err)
		sol := solve(t, initial.Clone(), gt, heuristic.Manhattan, AStar, 1)
		require.NotNil(t, sol)
		opt := uint32(sol.Stats.SolutionLength)
		assert.LessOrEqual(t, heuristic.ManhattanDistance(initial, gt), opt)
		assert.LessOrEqual(t, heuristic.MisplacedTiles(initial, gt), opt)
		assert.LessOrEqual(t, heuristic.LinearConflicts(initial, gt), opt)
	}
}

func TestNoSolutionWhenPrecheckSkipped(t *testing.T) {
	// An unsolvable instance fed straight to the engine must drain the
	// open set and report no solution.
	gt := snailGoal(t, 3)
	initial := mustBoard(t, 3, []uint8{2, 1, 3, 8, 0, 4, 7, 6, 5})
	for _, threads := range []int{1, 2} {
		sol := solve(t, initial.Clone(), gt, heuristic.LinearConflict, AStar, threads)
		assert.Nil(t, sol, "threads=%d", threads)
	}
}

func TestSolutionJSON(t *testing.T) {
	gt := snailGoal(t, 3)
	initial := mustBoard(t, 3, []uint8{1, 2, 3, 0, 8, 4, 7, 6, 5})
	sol := solve(t, initial, gt, heuristic.Manhattan, AStar, 1)
	require.NotNil(t, sol)

	raw, err := json.Marshal(sol)
	require.NoError(t, err)

	var decoded struct {
		Success bool `json:"success"`
		Path    []struct {
			Tiles []int `json:"tiles"`
			GCost int   `json:"g_cost"`
		} `json:"path"`
		Statistics struct {
			SolutionLength int `json:"solution_length"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Success)
	require.Len(t, decoded.Path, 2)
	assert.Equal(t, 1, decoded.Statistics.SolutionLength)
	assert.Equal(t, 1, decoded.Path[1].GCost)

	var nosol struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(NoSolutionJSON(), &nosol))
	assert.False(t, nosol.Success)
}

func TestHeapOrdering(t *testing.T) {
	h := &nodeHeap{}
	push := func(g, hc, f uint32) {
		b := board.New(3)
		b.SetCosts(g, hc, f)
		h.Push(b)
	}
	push(3, 4, 7)
	push(1, 4, 5)
	push(2, 3, 5)
	push(0, 9, 9)

	first := h.Pop()
	require.NotNil(t, first)
	assert.Equal(t, uint32(5), first.FCost())
	assert.Equal(t, uint32(3), first.HCost()) // h breaks the f tie

	second := h.Pop()
	assert.Equal(t, uint32(5), second.FCost())
	assert.Equal(t, uint32(4), second.HCost())

	assert.Equal(t, uint32(7), h.Pop().FCost())
	assert.Equal(t, uint32(9), h.Pop().FCost())
	assert.Nil(t, h.Pop())
}
