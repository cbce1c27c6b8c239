package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// Command handler implementations.

// cmdRun starts program execution from the current counter; it does not reset
// the emulator.
func (d *Debugger) cmdRun(args []string) error {
	d.Running = true
	d.StepMode = StepNone
	d.Emu.SetBreakpoints(d.Breakpoints.Lines())
	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution until the next breakpoint or program end.
// Watchpoints are checked once execution stops, not between instructions.
func (d *Debugger) cmdContinue(args []string) error {
	d.Running = true
	d.StepMode = StepNone
	d.Emu.SetBreakpoints(d.Breakpoints.Lines())
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint at a line, optionally with a condition.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line> [if <condition>]")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(line, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at line %d (condition: %s)\n", bp.ID, line, condition)
	} else {
		d.Printf("Breakpoint %d at line %d\n", bp.ID, line)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit).
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <line>")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(line, true, "")
	d.Printf("Temporary breakpoint %d at line %d\n", bp.ID, line)

	return nil
}

// cmdDelete deletes breakpoint(s) by ID, or all of them with no argument.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint by ID.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint by ID.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a variable or a cell slot (@N).
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <variable>|@<cell-slot>")
	}

	expression := strings.Join(args, " ")

	var wp *Watchpoint
	if strings.HasPrefix(expression, "@") {
		slot, err := strconv.Atoi(expression[1:])
		if err != nil {
			return fmt.Errorf("invalid cell slot: %s", expression)
		}
		wp = d.Watchpoints.AddCellWatchpoint(slot)
	} else {
		wp = d.Watchpoints.AddWatchpoint(expression)
	}

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Emu); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// cmdPrint evaluates and prints an expression.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.Emu)
	if err != nil {
		return err
	}

	d.Printf("$%d = %d\n", d.Evaluator.GetValueNumber(), result)
	return nil
}

// cmdInfo displays information about debugger and emulator state.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <breakpoints|watchpoints|line>")
	}

	switch strings.ToLower(args[0]) {
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "line", "l":
		d.Printf("Current line: %d\n", d.Emu.Counter())
		return nil
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showBreakpoints displays all breakpoints.
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		d.Printf("  %d: line %d %s%s%s (hit %d times)\n",
			bp.ID, bp.Line, status, temp, condition, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints.
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		value := "unset"
		if wp.HasValue {
			value = strconv.FormatUint(wp.LastValue, 10)
		}

		d.Printf("  %d: %s %s (hit %d times, last value: %s)\n",
			wp.ID, wp.Expression, status, wp.HitCount, value)
	}

	return nil
}

// cmdList shows source code around the current line.
func (d *Debugger) cmdList(args []string) error {
	line := d.Emu.Counter()

	if len(d.Source) == 0 {
		d.Println("<no source loaded>")
		return nil
	}

	start := line - CodeContextLinesBeforeCompact
	if start < 0 {
		start = 0
	}
	end := line + CodeContextLinesAfterCompact + 1
	if end > len(d.Source) {
		end = len(d.Source)
	}

	for i := start; i < end; i++ {
		marker := "  "
		if i == line {
			marker = "=>"
		}
		d.Printf("%s %d: %s\n", marker, i, d.Source[i])
	}

	return nil
}

// cmdHelp displays help information.
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s)          - Execute single instruction")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line>  - Set breakpoint")
	d.Println("  tbreak (tb) <line>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch a variable or @cell-slot")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  info (i) <what>   - Show information")
	d.Println("  list (l)          - List source code")
	d.Println()
	d.Println("Control:")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command.
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <line> [if <condition>]\n  Set a breakpoint at the specified line.\n  Optional condition will be evaluated each time.",
		"step":  "step\n  Execute a single instruction.",
		"print": "print <expression>\n  Evaluate and print an expression.\n  Expressions can include variables, cell slots (@N), and arithmetic.",
		"info":  "info <breakpoints|watchpoints|line>\n  Display information about debugger and emulator state.",
		"watch": "watch <variable>|@<cell-slot>\n  Watch a variable or cell slot for value changes.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
