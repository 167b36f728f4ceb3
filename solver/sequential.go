package solver

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/domino14/npuzzle/board"
)

// solveSequential is the reference best-first search: one open heap, a
// closed set, and a best-known-g map for lazy duplicate handling. No
// decrease-key; a state may be pushed several times and stale copies are
// discarded at pop via the relaxation gate.
func (s *Solver) solveSequential(ctx context.Context) (*Solution, error) {
	goal := s.gt.Goal()

	open := &nodeHeap{}
	closed := make(map[string]struct{})
	bestG := make(map[string]uint32)

	root := s.initial
	h0 := s.heuristicFor(root)
	root.SetCosts(0, h0, s.mode.priority(0, h0))
	root.SetParent(nil)
	open.Push(root)
	bestG[root.Key()] = 0

	var stats Statistics
	maxStates := uint64(1)
	scratch := board.New(root.Dim())

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := open.Pop()
		stats.StatesSelected++

		// Relaxation gate: a cheaper route to this state has already been
		// queued or settled.
		if g, ok := bestG[n.Key()]; ok && g < n.GCost() {
			continue
		}

		if n.Equals(goal) {
			path := extractPath(n)
			stats.SolutionLength = len(path) - 1
			stats.MaxStatesInMemory = maxStates
			log.Debug().
				Uint64("states-selected", stats.StatesSelected).
				Uint64("max-states", maxStates).
				Int("solution-length", stats.SolutionLength).
				Msg("sequential-solve-done")
			return &Solution{Path: path, Stats: stats}, nil
		}

		if _, ok := closed[n.Key()]; ok {
			continue
		}
		closed[n.Key()] = struct{}{}

		for _, d := range board.Directions {
			if !n.ApplyMove(d, scratch) {
				continue
			}
			g := scratch.GCost()
			h := s.heuristicFor(scratch)
			scratch.SetCosts(g, h, s.mode.priority(g, h))

			key := scratch.Key()
			if known, ok := bestG[key]; ok && g >= known {
				continue
			}
			bestG[key] = g
			open.Push(scratch.Clone())
		}

		if live := uint64(open.Len() + len(closed)); live > maxStates {
			maxStates = live
		}
	}

	// Open drained without reaching the goal: only possible when the
	// solvability pre-check was skipped.
	log.Debug().Uint64("states-selected", stats.StatesSelected).Msg("open-set-drained")
	return nil, nil
}
