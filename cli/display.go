package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/domino14/npuzzle/board"
	"github.com/domino14/npuzzle/solver"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiBlue   = "\033[34m"
	ansiOrange = "\033[38;5;208m"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// movedTile returns the tile that slid between two adjacent path states:
// the value now occupying the previous empty cell.
func movedTile(prev, curr *board.Board) uint8 {
	return curr.Tiles()[prev.EmptyIndex()]
}

// DisplaySolution prints every step of the path with its costs and a
// bordered grid. The tile that just moved is highlighted when color is on.
func DisplaySolution(w io.Writer, sol *solver.Solution, color bool) {
	for i, state := range sol.Path {
		var moved uint8
		if i > 0 {
			moved = movedTile(sol.Path[i-1], state)
		}
		fmt.Fprintf(w, "\nStep %d\n", i)
		fmt.Fprintf(w, "g=%d  h=%d  f=%d\n", state.GCost(), state.HCost(), state.FCost())
		printGrid(w, state, moved, color)
	}
}

func printGrid(w io.Writer, b *board.Board, moved uint8, color bool) {
	n := b.Dim()
	width := len(fmt.Sprintf("%d", n*n))
	horizontal := "+" + strings.Repeat(strings.Repeat("-", width+2)+"+", n)

	fmt.Fprintln(w, horizontal)
	for r := 0; r < n; r++ {
		cells := make([]string, n)
		for c := 0; c < n; c++ {
			v := b.Tiles()[b.Index(r, c)]
			if v == 0 {
				cells[c] = strings.Repeat(" ", width)
				continue
			}
			text := fmt.Sprintf("%*d", width, v)
			if color {
				if v == moved && moved != 0 {
					text = ansiBold + ansiOrange + text + ansiReset
				} else {
					text = ansiBold + text + ansiReset
				}
			}
			cells[c] = text
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		fmt.Fprintln(w, horizontal)
	}
}

// DisplayStatistics prints the closing statistics block.
func DisplayStatistics(w io.Writer, stats solver.Statistics) {
	fmt.Fprintln(w, "\nStatistics")
	fmt.Fprintf(w, "States selected      : %d\n", stats.StatesSelected)
	fmt.Fprintf(w, "Max states in memory : %d\n", stats.MaxStatesInMemory)
	fmt.Fprintf(w, "Solution length      : %d\n", stats.SolutionLength)
}
