// genpuzzle emits a random puzzle in the input file format, suitable for
// feeding back into the solver.
package main

import (
	"fmt"
	"os"

	"github.com/namsral/flag"

	"github.com/domino14/npuzzle/gen"
)

func main() {
	fs := flag.NewFlagSet("genpuzzle", flag.ExitOnError)
	size := fs.Int("g", 3, "puzzle dimension")
	iterations := fs.Int("i", gen.DefaultIterations, "shuffle iterations")
	unsolvable := fs.Bool("u", false, "force an unsolvable puzzle")
	fs.Parse(os.Args[1:])

	p, err := gen.New(*size, !*unsolvable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p.Shuffle(*iterations)
	if _, err := p.Finalize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(p.Render())
}
