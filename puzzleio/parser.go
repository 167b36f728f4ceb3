// Package puzzleio reads puzzle files. The format: '#' starts a comment
// running to end of line, blank lines are skipped, the first remaining
// line holds only the dimension N, and the following lines carry the N² tile
// values in row-major order split across any number of lines.
package puzzleio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/npuzzle/board"
)

var (
	ErrMissingSize       = errors.New("puzzle file has no size line")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidDimensions = errors.New("tile count does not match size")
)

// Parse reads a puzzle from r and returns the validated board.
func Parse(r io.Reader) (*board.Board, error) {
	scanner := bufio.NewScanner(r)
	size := -1
	var tiles []uint8

	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if size == -1 {
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, line)
			}
			if v < board.MinDim || v > board.MaxDim {
				return nil, fmt.Errorf("%w: %d", board.ErrInvalidSize, v)
			}
			size = v
			tiles = make([]uint8, 0, size*size)
			continue
		}

		for _, tok := range strings.Fields(line) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, tok)
			}
			if v < 0 || v >= size*size {
				return nil, fmt.Errorf("%w: %d", board.ErrInvalidTileValue, v)
			}
			if len(tiles) == size*size {
				return nil, fmt.Errorf("%w: more than %d tiles", ErrInvalidDimensions, size*size)
			}
			tiles = append(tiles, uint8(v))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if size == -1 {
		return nil, ErrMissingSize
	}
	if len(tiles) != size*size {
		return nil, fmt.Errorf("%w: got %d tiles for size %d", ErrInvalidDimensions, len(tiles), size)
	}
	return board.FromTiles(size, tiles)
}

// ParseFile reads a puzzle from the file at path.
func ParseFile(path string) (*board.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("dim", b.Dim()).Msg("parsed-puzzle-file")
	return b, nil
}
