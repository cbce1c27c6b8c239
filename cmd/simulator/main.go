// Command simulator runs a compiled routerbolt instruction stream against an
// emulator.Emulator and prints its trace to stdout.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/calmofthestorm/routerbolt/emulator"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 5 || (args[1] != "stack" && args[1] != "cell") {
		return fmt.Errorf("usage: %s <stack|cell> <size|name> <infile> <max_steps> [watches...]", args[0])
	}

	var cell *emulator.Cell
	if args[1] == "cell" {
		cell = emulator.NewCell(args[2])
	}

	input, err := os.ReadFile(args[3]) // #nosec G304 -- user-specified source file
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	maxSteps, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("max_steps must be an integer: %w", err)
	}

	emu, err := emulator.New(cell, string(input))
	if err != nil {
		return fmt.Errorf("init emulator: %w", err)
	}

	emu.SetWatches(args[5:])

	for _, line := range emu.Run(maxSteps) {
		fmt.Println(line)
	}

	return nil
}
