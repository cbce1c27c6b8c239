// Command compiler parses a routerbolt program and writes its generated
// instruction stream, and a parallel annotated listing, alongside it.
package main

import (
	"fmt"
	"os"

	"github.com/calmofthestorm/routerbolt/codegen"
	"github.com/calmofthestorm/routerbolt/parser"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: %s <infile> <outfile>", args[0])
	}

	infile, outfile := args[1], args[2]

	input, err := os.ReadFile(infile) // #nosec G304 -- user-specified source file
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	program, err := parser.Parse(string(input))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	output, annotated, err := codegen.Generate(program)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := writeLines(outfile, output); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	if err := writeLines(outfile+".annotated", annotated); err != nil {
		return fmt.Errorf("write annotated file: %w", err)
	}

	return nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified output file
	if err != nil {
		return err
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}

	return nil
}
