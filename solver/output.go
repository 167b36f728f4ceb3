package solver

import (
	"encoding/json"

	"github.com/samber/lo"

	"github.com/domino14/npuzzle/board"
)

// The wire form of a solve: a success flag, the path as flat tile arrays
// with per-state costs, and the statistics block.

type jsonState struct {
	Tiles []int  `json:"tiles"`
	GCost uint32 `json:"g_cost"`
	HCost uint32 `json:"h_cost"`
	FCost uint32 `json:"f_cost"`
}

type jsonStatistics struct {
	StatesSelected    uint64 `json:"states_selected"`
	MaxStatesInMemory uint64 `json:"max_states_in_memory"`
	SolutionLength    int    `json:"solution_length"`
}

type jsonResult struct {
	Success    bool            `json:"success"`
	Path       []jsonState     `json:"path,omitempty"`
	Statistics *jsonStatistics `json:"statistics,omitempty"`
}

// MarshalJSON renders the solution in the solver's output format.
func (s *Solution) MarshalJSON() ([]byte, error) {
	path := lo.Map(s.Path, func(b *board.Board, _ int) jsonState {
		return jsonState{
			Tiles: lo.Map(b.Tiles(), func(t uint8, _ int) int { return int(t) }),
			GCost: b.GCost(),
			HCost: b.HCost(),
			FCost: b.FCost(),
		}
	})
	return json.Marshal(jsonResult{
		Success: true,
		Path:    path,
		Statistics: &jsonStatistics{
			StatesSelected:    s.Stats.StatesSelected,
			MaxStatesInMemory: s.Stats.MaxStatesInMemory,
			SolutionLength:    s.Stats.SolutionLength,
		},
	})
}

// NoSolutionJSON is the wire form reported for an unsolvable puzzle.
func NoSolutionJSON() []byte {
	out, _ := json.Marshal(jsonResult{Success: false})
	return out
}
