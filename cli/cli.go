// Package cli wires the boundary together: argument parsing, puzzle
// acquisition (file or generator), the solvability gate, the solve call,
// and the result display.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog/log"

	"github.com/domino14/npuzzle/board"
	"github.com/domino14/npuzzle/gen"
	"github.com/domino14/npuzzle/heuristic"
	"github.com/domino14/npuzzle/parity"
	"github.com/domino14/npuzzle/puzzleio"
	"github.com/domino14/npuzzle/solver"
)

var (
	ErrConflictingOptions = errors.New("conflicting options")
	ErrMissingArgument    = errors.New("missing argument: need a puzzle file or -g")
)

// Config carries the parsed command line.
type Config struct {
	InputPath  string
	Generate   int
	Heuristic  string
	Search     string
	Threads    int
	Solvable   bool
	Unsolvable bool
	Iterations int
	JSON       bool
	Debug      bool
}

// Load parses args (not including the program name) into the config and
// validates the combination.
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("npuzzle", flag.ContinueOnError)
	fs.IntVar(&c.Generate, "g", 0, "generate a random puzzle of this dimension")
	fs.StringVar(&c.Heuristic, "heuristic", "manhattan", "heuristic: manhattan, misplaced, or linear")
	fs.StringVar(&c.Search, "search", "astar", "search mode: astar, ucs, or greedy")
	fs.IntVar(&c.Threads, "t", runtime.NumCPU(), "number of search threads")
	fs.IntVar(&c.Threads, "threads", runtime.NumCPU(), "number of search threads")
	fs.BoolVar(&c.Solvable, "s", false, "force generation of a solvable puzzle")
	fs.BoolVar(&c.Unsolvable, "u", false, "force generation of an unsolvable puzzle")
	fs.IntVar(&c.Iterations, "i", gen.DefaultIterations, "generator shuffle iterations")
	fs.BoolVar(&c.JSON, "json", false, "emit the solution as JSON")
	fs.BoolVar(&c.Debug, "debug", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		c.InputPath = fs.Arg(0)
	}
	return c.validate()
}

func (c *Config) validate() error {
	if c.Solvable && c.Unsolvable {
		return fmt.Errorf("%w: -s and -u", ErrConflictingOptions)
	}
	if c.InputPath != "" && c.Generate > 0 {
		return fmt.Errorf("%w: puzzle file and -g", ErrConflictingOptions)
	}
	if c.InputPath != "" && c.Unsolvable {
		return fmt.Errorf("%w: -u only applies to generated puzzles", ErrConflictingOptions)
	}
	if c.InputPath == "" && c.Generate == 0 {
		return ErrMissingArgument
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: %d", solver.ErrInvalidThreads, c.Threads)
	}
	if _, err := heuristic.ParseType(c.Heuristic); err != nil {
		return err
	}
	if _, err := solver.ParseMode(c.Search); err != nil {
		return err
	}
	return nil
}

// acquire produces the validated initial board from the file or the
// generator.
func (c *Config) acquire() (*board.Board, error) {
	if c.InputPath != "" {
		return puzzleio.ParseFile(c.InputPath)
	}
	return gen.Generate(c.Generate, c.Iterations, !c.Unsolvable)
}

// Run executes the whole pipeline and returns the process exit code.
// Provable unsolvability is a normal outcome, not an error.
func Run(cfg *Config, out, errw io.Writer) int {
	initial, err := cfg.acquire()
	if err != nil {
		fmt.Fprintf(errw, "Error: %v\n", err)
		return 1
	}

	goal, err := gen.SnailBoard(initial.Dim())
	if err != nil {
		fmt.Fprintf(errw, "Error: %v\n", err)
		return 1
	}
	gt := heuristic.NewGoalTable(goal)

	if !parity.Solvable(initial, goal) {
		log.Debug().Msg("parity-mismatch")
		if cfg.JSON {
			fmt.Fprintf(out, "%s\n", solver.NoSolutionJSON())
		} else {
			fmt.Fprintln(out, "This puzzle is unsolvable.")
		}
		return 0
	}

	ht, _ := heuristic.ParseType(cfg.Heuristic)
	mode, _ := solver.ParseMode(cfg.Search)
	s, err := solver.New(initial, gt, ht, mode, cfg.Threads)
	if err != nil {
		fmt.Fprintf(errw, "Error: %v\n", err)
		return 1
	}

	start := time.Now()
	sol, err := s.Solve(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(errw, "Error: %v\n", err)
		return 1
	}
	if sol == nil {
		// Unreachable behind the parity gate, but the engine's answer is
		// authoritative if we ever get here.
		if cfg.JSON {
			fmt.Fprintf(out, "%s\n", solver.NoSolutionJSON())
		} else {
			fmt.Fprintln(out, "This puzzle is unsolvable.")
		}
		return 0
	}

	if cfg.JSON {
		raw, err := sol.MarshalJSON()
		if err != nil {
			fmt.Fprintf(errw, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "%s\n", raw)
		return 0
	}

	DisplaySolution(out, sol, colorEnabled(out))
	DisplayStatistics(out, sol.Stats)
	fmt.Fprintf(out, "Solver execution time: %s\n", formatDuration(elapsed))
	return 0
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%ds%dms", secs, millis)
}

// colorEnabled turns ANSI colors on only for terminal-backed writers.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
