// Command wisp evaluates a Lisp source file: `interpreter <path>`, no flags
// beyond the path argument, diagnostics to stderr, display/newline output
// to stdout, exit 0 on success and -1 on any lexing, annotation, parsing,
// or evaluation failure.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	wisp "github.com/giorgioyu125/Wisp"
	"github.com/giorgioyu125/Wisp/internal/lexer"
	"github.com/giorgioyu125/Wisp/internal/source"
)

// theme gates ANSI coloring of stderr diagnostics on whether stderr is a
// terminal.
type theme struct{ enabled bool }

func newTheme() theme {
	return theme{enabled: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())}
}

func (t theme) red(s string) string {
	if !t.enabled {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func main() {
	root := &cobra.Command{
		Use:           "interpreter <path>",
		Short:         "Evaluate a Lisp source file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	if err := root.Execute(); err != nil {
		os.Exit(-1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	th := newTheme()
	path := args[0]

	reader := source.NewReader()
	src, err := reader.ReadFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: can't read %q: %s\n", th.red("error"), path, err)
		os.Exit(-1)
	}

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", th.red("error"), err)
		os.Exit(-1)
	}

	// The pipeline is driven step by step rather than through
	// wisp.Interpret so the failure paths keep access to the VM for
	// diagnostics. An empty file is a valid, empty program.
	if _, aerr := wisp.Annotate(tokens); aerr != nil {
		if code, ok := aerr.(wisp.AnnotationCode); !ok || code != wisp.AnnotationEmptyInput {
			fmt.Fprintf(os.Stderr, "%s: %s\n", th.red("error"), aerr)
			os.Exit(-1)
		}
	}

	flux, ferr := wisp.BuildFlux(tokens)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", th.red("error"), ferr)
		os.Exit(-1)
	}

	vm := wisp.NewVM(flux, wisp.NewConfig())
	if _, werr := vm.RunTopLevel(); werr != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", th.red("error"), werr)
		if werr.Code == wisp.StatusOutOfMemory {
			reportHeapUsage("heap at failure", vm.Heap.BytesUsed())
		}
		os.Exit(-1)
	}

	return nil
}

// reportHeapUsage prints a human-readable byte count for a diagnostic
// label on the out-of-memory failure path.
func reportHeapUsage(label string, bytesUsed uint64) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", label, humanize.Bytes(bytesUsed))
}
