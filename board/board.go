// Package board implements the sliding-tile puzzle board: a square grid
// of N² tiles with a single empty cell, plus the cost bookkeeping that the
// search engine hangs off each board (g/h/f costs and the parent link used
// for path reconstruction).
package board

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
)

const (
	// MinDim and MaxDim bound the supported puzzle sizes. Tiles are stored
	// as bytes, so 16x16 (255 tiles + empty) is the natural ceiling.
	MinDim = 3
	MaxDim = 16
)

var (
	ErrInvalidSize      = errors.New("board dimension out of range")
	ErrInvalidDimension = errors.New("tile count does not match dimension")
	ErrNoEmptyTile      = errors.New("board has no empty tile")
	ErrDuplicateTile    = errors.New("duplicate tile value")
	ErrInvalidTileValue = errors.New("tile value out of range")
	ErrMissingTile      = errors.New("missing tile value")
)

// Direction is one of the four cardinal slides of the empty cell.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions is the fixed successor generation order.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Board is a single puzzle position. The search engine treats a Board as a
// search node: the tile array is the node's identity, while the cost fields
// and parent link describe how the search reached it. poolIndex records
// which worker pool owns the node's storage so that any worker can hand it
// back to its owner; it is -1 for boards that are not pool-resident.
type Board struct {
	n     int
	tiles []uint8
	empty int

	g, h, f uint32
	parent  *Board

	poolIndex int32
}

// New returns an n x n board with all tiles zeroed. The zero board is not a
// valid puzzle position; it is the blank canvas the generator and the pools
// write into.
func New(n int) *Board {
	return &Board{
		n:         n,
		tiles:     make([]uint8, n*n),
		poolIndex: -1,
	}
}

// FromTiles validates tiles as a complete n x n puzzle position and wraps
// it. Every value must be < n², the values 1..n²-1 must each appear exactly
// once, and exactly one cell must hold 0.
func FromTiles(n int, tiles []uint8) (*Board, error) {
	if n < MinDim || n > MaxDim {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if len(tiles) != n*n {
		return nil, fmt.Errorf("%w: got %d tiles for dimension %d", ErrInvalidDimension, len(tiles), n)
	}
	empty := -1
	for i, v := range tiles {
		if int(v) >= n*n {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTileValue, v)
		}
		if v == 0 && empty == -1 {
			empty = i
		}
	}
	if empty == -1 {
		return nil, ErrNoEmptyTile
	}
	seen := make([]bool, n*n)
	for _, v := range tiles {
		if seen[v] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTile, v)
		}
		seen[v] = true
	}
	for v := 1; v < n*n; v++ {
		if !seen[v] {
			return nil, fmt.Errorf("%w: %d", ErrMissingTile, v)
		}
	}
	b := &Board{
		n:         n,
		tiles:     make([]uint8, n*n),
		empty:     empty,
		poolIndex: -1,
	}
	copy(b.tiles, tiles)
	return b, nil
}

func (b *Board) Dim() int        { return b.n }
func (b *Board) Tiles() []uint8  { return b.tiles }
func (b *Board) EmptyIndex() int { return b.empty }

func (b *Board) GCost() uint32 { return b.g }
func (b *Board) HCost() uint32 { return b.h }
func (b *Board) FCost() uint32 { return b.f }

func (b *Board) Parent() *Board          { return b.parent }
func (b *Board) SetParent(parent *Board) { b.parent = parent }

func (b *Board) PoolIndex() int32       { return b.poolIndex }
func (b *Board) SetPoolIndex(idx int32) { b.poolIndex = idx }

// SetCosts assigns the path cost and heuristic estimate along with the
// composite priority. The priority is supplied by the caller since it
// depends on the search mode (g+h, g, or h).
func (b *Board) SetCosts(g, h, f uint32) {
	b.g = g
	b.h = h
	b.f = f
}

// Coords converts a flat tile index into (row, col).
func (b *Board) Coords(i int) (int, int) {
	return i / b.n, i % b.n
}

// Index converts (row, col) into a flat tile index.
func (b *Board) Index(r, c int) int {
	return r*b.n + c
}

// Hash returns a 64-bit digest of the tile content alone. Cost fields do
// not participate; two boards reached by different paths hash identically.
func (b *Board) Hash() uint64 {
	return xxhash.Sum64(b.tiles)
}

// Key returns the tile content as a string, usable as an exact map key.
// The hash selects a shard; the key decides membership.
func (b *Board) Key() string {
	return string(b.tiles)
}

// Equals reports whether o has the same dimension and tile content.
func (b *Board) Equals(o *Board) bool {
	if b.n != o.n {
		return false
	}
	for i := range b.tiles {
		if b.tiles[i] != o.tiles[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the board: tile array, cost fields, and the
// parent reference (the parent itself is shared, not copied).
func (b *Board) Clone() *Board {
	c := &Board{
		n:         b.n,
		tiles:     make([]uint8, len(b.tiles)),
		empty:     b.empty,
		g:         b.g,
		h:         b.h,
		f:         b.f,
		parent:    b.parent,
		poolIndex: -1,
	}
	copy(c.tiles, b.tiles)
	return c
}

// CopyFrom overwrites b's position and costs with o's, reusing b's tile
// storage. The pool index is deliberately left alone: the destination keeps
// its own ownership.
func (b *Board) CopyFrom(o *Board) {
	b.n = o.n
	if len(b.tiles) != len(o.tiles) {
		b.tiles = make([]uint8, len(o.tiles))
	}
	copy(b.tiles, o.tiles)
	b.empty = o.empty
	b.g = o.g
	b.h = o.h
	b.f = o.f
	b.parent = o.parent
}

// InitStorage gives a zero-value board its dimension and tile backing
// without validation. The worker pools use it to carve nodes out of slab
// allocations; the content is filled in later by CopyFrom.
func (b *Board) InitStorage(n int, tiles []uint8) {
	b.n = n
	b.tiles = tiles
	b.poolIndex = -1
}

// neighborIndex returns the tile index the empty cell would move to for d,
// or -1 when the slide runs off the grid.
func (b *Board) neighborIndex(d Direction) int {
	r, c := b.Coords(b.empty)
	switch d {
	case Up:
		r--
	case Down:
		r++
	case Left:
		c--
	case Right:
		c++
	}
	if r < 0 || r >= b.n || c < 0 || c >= b.n {
		return -1
	}
	return b.Index(r, c)
}

// CanMove reports whether the empty cell has an in-bounds neighbor in
// direction d.
func (b *Board) CanMove(d Direction) bool {
	return b.neighborIndex(d) != -1
}

// ApplyMove writes the successor of b in direction d into dst: b's tiles
// with the empty cell swapped toward d, g incremented, and dst's parent
// pointing at b. Heuristic and priority are left for the caller, which
// knows the search mode. It returns false without touching dst when the
// move is out of bounds.
func (b *Board) ApplyMove(d Direction, dst *Board) bool {
	ni := b.neighborIndex(d)
	if ni == -1 {
		return false
	}
	dst.n = b.n
	if len(dst.tiles) != len(b.tiles) {
		dst.tiles = make([]uint8, len(b.tiles))
	}
	copy(dst.tiles, b.tiles)
	dst.tiles[b.empty] = dst.tiles[ni]
	dst.tiles[ni] = 0
	dst.empty = ni
	dst.g = b.g + 1
	dst.h = 0
	dst.f = 0
	dst.parent = b
	return true
}

// String renders the board row by row, mostly for logs and test failures.
func (b *Board) String() string {
	out := ""
	for r := 0; r < b.n; r++ {
		for c := 0; c < b.n; c++ {
			if c > 0 {
				out += " "
			}
			out += fmt.Sprintf("%d", b.tiles[b.Index(r, c)])
		}
		out += "\n"
	}
	return out
}
