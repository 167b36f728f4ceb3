// Package parity implements the inversion-parity feasibility check that
// gates the search engine. A slide of the empty cell within its row never
// changes the inversion count; a vertical slide changes it by some parity
// tied to the board width. Comparing the right parity signature of the
// initial and goal boards therefore decides reachability in one pass.
package parity

import "github.com/domino14/npuzzle/board"

// Inversions counts ordered pairs (i, j), i < j, of non-empty tiles where
// the tile at i is greater than the tile at j.
func Inversions(b *board.Board) int {
	tiles := b.Tiles()
	count := 0
	for i := 0; i < len(tiles); i++ {
		if tiles[i] == 0 {
			continue
		}
		for j := i + 1; j < len(tiles); j++ {
			if tiles[j] != 0 && tiles[i] > tiles[j] {
				count++
			}
		}
	}
	return count
}

// EmptyRowFromBottom returns the row of the empty cell counted from the
// bottom of the grid, zero-based.
func EmptyRowFromBottom(b *board.Board) int {
	r, _ := b.Coords(b.EmptyIndex())
	return b.Dim() - 1 - r
}

func signature(b *board.Board) int {
	if b.Dim()%2 == 1 {
		return Inversions(b) % 2
	}
	return (Inversions(b) + EmptyRowFromBottom(b)) % 2
}

// Solvable reports whether goal is reachable from initial. For odd N the
// inversion parities must agree; for even N the parity of inversions plus
// the empty cell's row-from-bottom must agree.
func Solvable(initial, goal *board.Board) bool {
	return signature(initial) == signature(goal)
}
