// Package gen creates random puzzle instances. A generated puzzle starts
// from the snail goal layout and is shuffled by a random walk of legal
// slides, which keeps it solvable; forced-unsolvable generation then flips
// one adjacent pair of non-empty tiles to break the parity invariant.
package gen

import (
	"fmt"
	"strings"

	"lukechampine.com/frand"

	"github.com/domino14/npuzzle/board"
)

// DefaultIterations is the default shuffle length.
const DefaultIterations = 10000

// Snail returns the spiral goal layout for an n x n puzzle: 1..n²-1 walked
// clockwise inward from the top-left, with 0 at the spiral's terminus.
func Snail(n int) []uint8 {
	const unset = 0xff
	grid := make([]uint8, n*n)
	for i := range grid {
		grid[i] = unset
	}

	value := 1
	x, y := 0, 0
	dx, dy := 1, 0
	for {
		grid[x+y*n] = uint8(value)
		if value == 0 {
			break
		}
		value++
		if value == n*n {
			value = 0
		}
		nx, ny := x+dx, y+dy
		turn := nx < 0 || nx >= n || ny < 0 || ny >= n || grid[nx+ny*n] != unset
		if turn {
			dx, dy = -dy, dx
		}
		x += dx
		y += dy
	}
	return grid
}

// SnailBoard returns the spiral goal as a validated board.
func SnailBoard(n int) (*board.Board, error) {
	return board.FromTiles(n, Snail(n))
}

// Puzzle is a randomly generated instance under construction.
type Puzzle struct {
	n        int
	tiles    []uint8
	solvable bool
}

// New creates a generator for an n x n puzzle seeded with the snail goal.
// solvable=false marks the instance for a parity flip in Finalize.
func New(n int, solvable bool) (*Puzzle, error) {
	if n < board.MinDim || n > board.MaxDim {
		return nil, fmt.Errorf("%w: %d", board.ErrInvalidSize, n)
	}
	return &Puzzle{
		n:        n,
		tiles:    Snail(n),
		solvable: solvable,
	}, nil
}

// Shuffle performs iterations random legal slides of the empty cell.
func (p *Puzzle) Shuffle(iterations int) {
	n := p.n
	empty := 0
	for i, v := range p.tiles {
		if v == 0 {
			empty = i
		}
	}
	swaps := make([]int, 0, 4)
	for i := 0; i < iterations; i++ {
		swaps = swaps[:0]
		if empty%n > 0 {
			swaps = append(swaps, empty-1)
		}
		if empty%n < n-1 {
			swaps = append(swaps, empty+1)
		}
		if empty/n > 0 {
			swaps = append(swaps, empty-n)
		}
		if empty/n < n-1 {
			swaps = append(swaps, empty+n)
		}
		pick := swaps[frand.Intn(len(swaps))]
		p.tiles[empty] = p.tiles[pick]
		p.tiles[pick] = 0
		empty = pick
	}
}

// Finalize applies the parity flip when the puzzle was requested
// unsolvable, then validates and returns the board. The flip swaps the
// first two cells, or the last two when the empty cell sits in one of the
// first two positions.
func (p *Puzzle) Finalize() (*board.Board, error) {
	if !p.solvable {
		last := len(p.tiles) - 1
		if p.tiles[0] == 0 || p.tiles[1] == 0 {
			p.tiles[last], p.tiles[last-1] = p.tiles[last-1], p.tiles[last]
		} else {
			p.tiles[0], p.tiles[1] = p.tiles[1], p.tiles[0]
		}
	}
	return board.FromTiles(p.n, p.tiles)
}

// Render emits the puzzle in the input file format: a comment announcing
// solvability, the dimension, then width-aligned rows.
func (p *Puzzle) Render() string {
	var sb strings.Builder
	state := "solvable"
	if !p.solvable {
		state = "unsolvable"
	}
	fmt.Fprintf(&sb, "# This puzzle is %s\n", state)
	fmt.Fprintf(&sb, "%d\n", p.n)

	width := len(fmt.Sprintf("%d", p.n*p.n))
	for r := 0; r < p.n; r++ {
		for c := 0; c < p.n; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%*d", width, p.tiles[c+r*p.n])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Generate is the one-call path the CLI uses: snail seed, shuffle, parity
// adjustment, validation.
func Generate(n, iterations int, solvable bool) (*board.Board, error) {
	p, err := New(n, solvable)
	if err != nil {
		return nil, err
	}
	p.Shuffle(iterations)
	return p.Finalize()
}
