// Command routerbolt is the umbrella binary: it compiles a program, then
// either runs it to completion, lints/cross-references it, or hands it to
// the interactive debugger (CLI or TUI).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/calmofthestorm/routerbolt/codegen"
	"github.com/calmofthestorm/routerbolt/config"
	"github.com/calmofthestorm/routerbolt/debugger"
	"github.com/calmofthestorm/routerbolt/emulator"
	"github.com/calmofthestorm/routerbolt/ir"
	"github.com/calmofthestorm/routerbolt/parser"
	"github.com/calmofthestorm/routerbolt/tools"
)

// Version information -- can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	fs := flag.NewFlagSet("routerbolt", flag.ContinueOnError)

	var (
		showVersion = fs.Bool("version", false, "Show version information")
		debugMode   = fs.Bool("debug", false, "Start in debugger mode (CLI)")
		tuiMode     = fs.Bool("tui", false, "Start in debugger mode (TUI)")
		verboseMode = fs.Bool("verbose", false, "Verbose output")
		lintOnly    = fs.Bool("lint", false, "Lint the program and exit")
		xrefOnly    = fs.Bool("xref", false, "Print a label/function/variable cross-reference and exit")
		configPath  = fs.String("config", "", "Config file path (default: platform config directory)")
		maxSteps    = fs.Uint64("max-steps", 0, "Maximum steps before halting (0: use config default)")
	)

	if err := fs.Parse(argv); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("routerbolt %s (%s)\n", Version, Commit)
		return nil
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program-file>\n", os.Args[0])
		fs.PrintDefaults()
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sourceFile := fs.Arg(0)
	source, err := os.ReadFile(sourceFile) // #nosec G304 -- user-specified source file
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}

	if *verboseMode {
		fmt.Printf("Parsing %s...\n", sourceFile)
	}

	program, err := parser.Parse(string(source))
	if err != nil {
		return fmt.Errorf("parse error:\n%w", err)
	}

	if *xrefOnly {
		symbols := tools.CrossReference(program)
		fmt.Print(tools.Report(symbols))
		return nil
	}

	if issues := tools.Lint(program); len(issues) > 0 || *lintOnly {
		for _, issue := range issues {
			fmt.Println(issue)
		}
		if *lintOnly {
			return nil
		}
	}

	output, annotated, err := codegen.Generate(program)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if *verboseMode {
		fmt.Printf("Generated %d instructions\n", len(output))
	}

	var cell *emulator.Cell
	if program.Backend() == ir.BackendExternal {
		cell = emulator.NewCell(cfg.Execution.CellName)
	}

	emu, err := emulator.New(cell, strings.Join(output, "\n"))
	if err != nil {
		return fmt.Errorf("init emulator: %w", err)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebuggerWithHistorySize(emu, cfg.Debugger.HistorySize)
		dbg.LoadSource(annotatedSource(annotated, output))

		if *tuiMode {
			return debugger.RunTUI(dbg)
		}
		return debugger.RunCLI(dbg)
	}

	steps := int(cfg.Execution.MaxSteps)
	if *maxSteps > 0 {
		steps = int(*maxSteps)
	}

	for _, line := range emu.Run(steps) {
		fmt.Println(line)
	}

	return nil
}

// loadConfig loads path, or the platform default config location when path
// is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// annotatedSource prefers the annotated listing (which carries a source
// line per generated instruction) for "list"/source-context display,
// falling back to the raw generated output.
func annotatedSource(annotated, output []string) []string {
	if len(annotated) > 0 {
		return annotated
	}
	return output
}
