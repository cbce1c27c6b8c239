package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxContinueSteps bounds a single "continue"/"run" so a runaway loop
// without a breakpoint still returns control to the prompt.
const maxContinueSteps = 1_000_000

// RunCLI runs the command-line debugger interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(routerbolt-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if !dbg.Running {
			continue
		}

		var trace []string
		var reason string
		switch dbg.StepMode {
		case StepSingle:
			trace = dbg.Step()
		default:
			trace, reason = dbg.Continue(maxContinueSteps)
		}

		for _, line := range trace {
			fmt.Println(line)
		}

		dbg.Running = false
		dbg.StepMode = StepNone
		if reason != "" {
			fmt.Printf("Stopped: %s (line %d)\n", reason, dbg.Emu.Counter())
		} else if dbg.Emu.Counter() >= dbg.Emu.NumInstructions() {
			fmt.Println("Program exited")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the TUI (text user interface) debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
