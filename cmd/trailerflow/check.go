package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/BaSui01/trailerflow/trailer"
)

// =============================================================================
// ✅ check 命令
// =============================================================================

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "Path to breakdown document")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		fmt.Fprintln(stderr, "--input is required")
		return 2
	}

	b, err := trailer.LoadBreakdown(*inputPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	problems := trailer.Check(b)
	for _, p := range problems {
		fmt.Fprintln(stdout, p.String())
	}
	if len(problems) > 0 {
		fmt.Fprintf(stdout, "%d problem(s) found\n", len(problems))
		return 1
	}
	fmt.Fprintf(stdout, "OK: %d character(s), %d scene(s)\n", len(b.CharacterDesigns), len(b.Scenes))
	return 0
}
