package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calmofthestorm/routerbolt/emulator"
)

// Debugger coordinates breakpoints, watchpoints, and command history around
// a running emulator.Emulator.
type Debugger struct {
	Emu *emulator.Emulator

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running  bool
	StepMode StepMode

	// Source lines, indexed by line number, for "list" and source-context
	// display.
	Source []string

	LastCommand string

	Output strings.Builder
}

// StepMode represents the different ways Continue can be asked to stop.
type StepMode int

const (
	StepNone   StepMode = iota // Not single-stepping; run until breakpoint/end.
	StepSingle                 // Stop after exactly one instruction.
)

// NewDebugger creates a new debugger wrapping emu, with a default-sized
// command history.
func NewDebugger(emu *emulator.Emulator) *Debugger {
	return NewDebuggerWithHistorySize(emu, defaultHistorySize)
}

// NewDebuggerWithHistorySize creates a new debugger wrapping emu, with its
// command history bounded to historySize entries (wired from
// config.Config.Debugger.HistorySize by cmd/routerbolt).
func NewDebuggerWithHistorySize(emu *emulator.Emulator, historySize int) *Debugger {
	return &Debugger{
		Emu:         emu,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistoryWithSize(historySize),
		Evaluator:   NewExpressionEvaluator(),
		StepMode:    StepNone,
	}
}

// LoadSource loads the program's source lines for "list" and source-context
// display.
func (d *Debugger) LoadSource(lines []string) {
	d.Source = lines
}

// ResolveLine parses a line-number argument (a "break 12" style command).
func (d *Debugger) ResolveLine(lineStr string) (int, error) {
	line, err := strconv.Atoi(strings.TrimSpace(lineStr))
	if err != nil {
		return 0, fmt.Errorf("invalid line number: %s", lineStr)
	}
	return line, nil
}

// ExecuteCommand processes and executes a single debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

// handleCommand dispatches a command name to its handler.
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// Step executes exactly one instruction and returns its trace line(s).
func (d *Debugger) Step() []string {
	d.Emu.SetBreakpoints(d.Breakpoints.Lines())
	return d.Emu.Run(1)
}

// Continue runs until a breakpoint with a true (or absent) condition is hit,
// the program ends, or maxSteps trace lines have been produced -- whichever
// comes first. It returns the accumulated trace and a human-readable reason
// for stopping. When no breakpoint stopped it, the reason names a watchpoint
// whose value changed by the time execution stopped, and is empty if none did.
func (d *Debugger) Continue(maxSteps int) (output []string, reason string) {
	d.Emu.SetBreakpoints(d.Breakpoints.Lines())

	remaining := maxSteps
	for remaining > 0 {
		chunk := d.Emu.Run(remaining)
		output = append(output, chunk...)
		if len(chunk) == 0 {
			break
		}
		remaining -= len(chunk)

		last := chunk[len(chunk)-1]
		line, ok := parseBreakpointHitLine(last)
		if !ok {
			break
		}

		bp := d.Breakpoints.GetBreakpoint(line)
		if bp == nil {
			break
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.Emu)
			if err != nil {
				reason = fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
				return output, reason
			}
			if !result {
				continue
			}
		}

		hit := d.Breakpoints.ProcessHit(line)
		reason = fmt.Sprintf("breakpoint %d at line %d", hit.ID, line)
		return output, reason
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Emu); changed {
		reason = fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return output, reason
}

// parseBreakpointHitLine recognizes emulator.Emulator.Run's
// "Hit breakpoint at N" trace line and extracts N.
func parseBreakpointHitLine(line string) (int, bool) {
	const prefix = "Hit breakpoint at "
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(line, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
