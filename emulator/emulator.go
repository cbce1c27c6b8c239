// Package emulator is a small, deterministic interpreter for the flat
// line-numbered instruction set the compiler emits. It exists to give the
// compiler's control-flow and stack lowering something to run against in
// tests and in the debugger; it is not a general Mindustry logic simulator.
//
// Values are unsigned 64-bit integers (mirroring the original's `usize`) and
// wrap on overflow. A variable that was never assigned, or was explicitly
// cleared by a failed read/set, is simply absent from the variable table --
// there is no separate "null" sentinel value.
package emulator

import (
	"fmt"
	"strconv"
	"strings"
)

const counterVar = "@counter"

// Emulator runs a parsed program one instruction at a time.
type Emulator struct {
	cell         *Cell
	instructions []Instruction
	vars         map[string]uint64
	watches      []string
	breakpoints  []int
	printBuffer  []string
}

// New parses program's text into instructions and returns a ready-to-run
// Emulator. cell may be nil, in which case every read/write is a no-op.
func New(cell *Cell, program string) (*Emulator, error) {
	instructions, err := parseProgram(program)
	if err != nil {
		return nil, err
	}
	return &Emulator{
		cell:         cell,
		instructions: instructions,
		vars:         make(map[string]uint64),
	}, nil
}

// SetBreakpoints replaces the set of instruction addresses that halt Run.
func (e *Emulator) SetBreakpoints(breakpoints []int) {
	e.breakpoints = breakpoints
}

// SetWatches replaces the list of variable names echoed in each trace line.
func (e *Emulator) SetWatches(watches []string) {
	e.watches = watches
}

// GetMem reads a cell slot, or (0, false) if there is no cell or the address
// is out of range.
func (e *Emulator) GetMem(address int) (uint64, bool) {
	if e.cell == nil || address < 0 || address >= len(e.cell.Data) {
		return 0, false
	}
	if e.cell.Data[address] == nil {
		return 0, false
	}
	return *e.cell.Data[address], true
}

// GetVar resolves a name as emulator.resolve does: a literal integer, else a
// variable lookup.
func (e *Emulator) GetVar(name string) (uint64, bool) {
	return resolve(e.vars, name)
}

func (e *Emulator) counter() int {
	v, ok := e.vars[counterVar]
	if !ok {
		return 0
	}
	return int(v)
}

// Counter returns the line number Run will execute next, for callers (the
// debugger) that need to display or compare against the current position.
func (e *Emulator) Counter() int {
	return e.counter()
}

// NumInstructions returns the number of instructions in the loaded program.
func (e *Emulator) NumInstructions() int {
	return len(e.instructions)
}

// Run executes instructions until the program ends (via `end` or running off
// the final instruction), hits a breakpoint, or has taken maxSteps steps --
// whichever comes first. It returns one trace line per step taken, plus any
// lines produced by printflush. The very first step never checks
// breakpoints, so a caller re-entering Run right after a breakpoint can make
// forward progress.
func (e *Emulator) Run(maxSteps int) []string {
	var output []string

	if len(e.instructions) == 0 {
		return output
	}

	firstStep := true
	for len(output) < maxSteps {
		ip := e.counter()
		if !firstStep && containsInt(e.breakpoints, ip) {
			output = append(output, fmt.Sprintf("Hit breakpoint at %d", ip))
			return output
		}
		firstStep = false

		e.vars[counterVar] = uint64(ip + 1)
		instruction := e.instructions[ip]

		var watchOutput strings.Builder
		for _, n := range e.watches {
			if strings.HasPrefix(n, "*") {
				fmt.Fprintf(&watchOutput, "%s:<not_implemented>", n)
			} else if v, ok := e.vars[n]; ok {
				fmt.Fprintf(&watchOutput, "%s:%d ", n, v)
			} else {
				fmt.Fprintf(&watchOutput, "%s:null ", n)
			}
		}
		output = append(output, fmt.Sprintf("%d:\t%s\"%s\"", ip, watchOutput.String(), instruction))

		execute(instruction, e.cell, e.vars, &e.printBuffer)

		if instruction.Kind == kindPrintFlush {
			joined := strings.Join(e.printBuffer, "")
			for _, line := range strings.Split(joined, "\n") {
				output = append(output, fmt.Sprintf("\tPrinted to %s: %s", instruction.Output, line))
			}
			e.printBuffer = nil
		}

		if instruction.Kind == kindEnd || e.counter() >= len(e.instructions) {
			e.vars[counterVar] = 0
			break
		}

		if instruction.Kind == kindPause {
			break
		}
	}

	return output
}

func execute(instruction Instruction, cell *Cell, vars map[string]uint64, printBuffer *[]string) {
	switch instruction.Kind {
	case kindEnd, kindPause, kindPrintFlush:
		// No-op: End/Pause only affect Run's stepping loop; PrintFlush only
		// drains the print buffer, which Run does itself.

	case kindMath:
		op1, _ := resolve(vars, instruction.Arg1)
		op2, _ := resolve(vars, instruction.Arg2)

		var r uint64
		switch instruction.Op {
		case MathAdd:
			r = op1 + op2
		case MathSub:
			r = op1 - op2
		case MathMul:
			r = op1 * op2
		case MathMod:
			if op2 > 0 {
				r = op1 % op2
			} else {
				r = 0
			}
		}
		vars[instruction.Dest] = r

	case kindRead:
		address, addrOK := resolve(vars, instruction.Address)
		var val uint64
		var ok bool
		if addrOK && cell != nil && cell.Name == instruction.CellName && address < uint64(len(cell.Data)) {
			if slot := cell.Data[address]; slot != nil {
				val, ok = *slot, true
			}
		}
		if ok {
			vars[instruction.Name] = val
		} else {
			delete(vars, instruction.Name)
		}

	case kindWrite:
		address, addrOK := resolve(vars, instruction.Address)
		value, valueOK := resolve(vars, instruction.Name)
		if addrOK && cell != nil && cell.Name == instruction.CellName && address < uint64(len(cell.Data)) {
			if valueOK {
				v := value
				cell.Data[address] = &v
			} else {
				cell.Data[address] = nil
			}
		}

	case kindSet:
		if value, ok := resolve(vars, instruction.Source); ok {
			vars[instruction.Dest] = value
		} else {
			delete(vars, instruction.Dest)
		}

	case kindPrint:
		if isQuotedLiteral(instruction.Arg) {
			*printBuffer = append(*printBuffer, unescapePrintLiteral(instruction.Arg[1:len(instruction.Arg)-1]))
		} else if v, ok := resolve(vars, instruction.Arg); ok {
			*printBuffer = append(*printBuffer, strconv.FormatUint(v, 10))
		} else {
			*printBuffer = append(*printBuffer, "null")
		}

	case kindJump:
		v1, ok1 := resolve(vars, instruction.Arg1)
		v2, ok2 := resolve(vars, instruction.Arg2)

		var met bool
		switch instruction.Cond {
		case CondAlways:
			met = true
		case CondEq:
			met = optEqual(v1, ok1, v2, ok2)
		case CondNe:
			met = !optEqual(v1, ok1, v2, ok2)
		case CondLt:
			met = optCompare(v1, ok1, v2, ok2) < 0
		case CondGt:
			met = optCompare(v1, ok1, v2, ok2) > 0
		}

		if met {
			vars[counterVar] = uint64(instruction.JumpDest)
		}
	}
}

// resolve interprets arg as a literal non-negative integer first, falling
// back to a variable lookup. This lets any operand slot accept either a
// constant or a variable name, including `@counter` itself.
func resolve(vars map[string]uint64, arg string) (uint64, bool) {
	if n, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return n, true
	}
	v, ok := vars[arg]
	return v, ok
}

// optEqual compares two resolved operands the way the reference emulator
// does: two absent operands compare equal to each other. This is a deliberate
// divergence from "absent never equals absent" and is preserved rather than
// "fixed".
func optEqual(v1 uint64, ok1 bool, v2 uint64, ok2 bool) bool {
	if ok1 != ok2 {
		return false
	}
	return !ok1 || v1 == v2
}

// optCompare orders an absent operand before every present one (matching
// Option<T>'s derived Ord: None < Some(_)), and otherwise compares by value.
func optCompare(v1 uint64, ok1 bool, v2 uint64, ok2 bool) int {
	if !ok1 && !ok2 {
		return 0
	}
	if !ok1 {
		return -1
	}
	if !ok2 {
		return 1
	}
	switch {
	case v1 < v2:
		return -1
	case v1 > v2:
		return 1
	default:
		return 0
	}
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
