package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// CallProcOp pushes a return address onto the stack and jumps to a label.
// RetProcOp returns from it.
//
// Destroys: MF_acc MF_tmp MF_resume
type CallProcOp struct {
	Target types.LabelName
}

func (op *CallProcOp) CodeSize(backend Backend) types.AddressDelta {
	if backend == BackendInternal {
		return 5
	}
	return 4
}

func (op *CallProcOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// CallProc %s @%d", op.Target, len(out.Lines))

	target, ok := ir.Labels[op.Target]
	if !ok {
		return fmt.Errorf("label %s not found", op.Target)
	}

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op add MF_acc @counter 4")
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PushEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PushTableStart)
		out.Emit("set @counter %d", target)
	} else {
		ext := ir.BackendParams.External
		out.Emit("op add MF_acc @counter 3")
		out.Emit("write MF_acc %s MF_stack_sz", ext.CellName)
		out.Emit("op add MF_stack_sz MF_stack_sz 1")
		out.Emit("set @counter %d", target)
	}

	return nil
}

// RetProcOp pops the top of the stack and jumps to that address.
//
// Destroys: MF_acc MF_tmp MF_resume
type RetProcOp struct{}

func (op *RetProcOp) CodeSize(backend Backend) types.AddressDelta {
	if backend == BackendInternal {
		return 5
	}
	return 2
}

func (op *RetProcOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Ret @%d", len(out.Lines))

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op sub MF_stack_sz MF_stack_sz 1")
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PopEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
		out.Emit("set @counter MF_acc")
	} else {
		ext := ir.BackendParams.External
		out.Emit("op sub MF_stack_sz MF_stack_sz 1")
		out.Emit("read @counter %s MF_stack_sz", ext.CellName)
	}

	return nil
}

// PushOp pushes MF_acc to the stack.
//
// Destroys: MF_tmp MF_resume
// Preserves: MF_acc
type PushOp struct{}

func (op *PushOp) CodeSize(backend Backend) types.AddressDelta {
	if backend == BackendInternal {
		return 3
	}
	return 2
}

func (op *PushOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Push @%d", len(out.Lines))

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PushEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PushTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("write MF_acc %s MF_stack_sz", ext.CellName)
		out.Emit("op add MF_stack_sz MF_stack_sz 1")
	}

	return nil
}

// PopOp pops the top of the stack into MF_acc.
//
// Destroys: MF_tmp MF_resume
// Returns: MF_acc
type PopOp struct{}

func (op *PopOp) CodeSize(backend Backend) types.AddressDelta {
	if backend == BackendInternal {
		return 4
	}
	return 2
}

func (op *PopOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Pop @%d", len(out.Lines))

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op sub MF_stack_sz MF_stack_sz 1")
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PopEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("op sub MF_stack_sz MF_stack_sz 1")
		out.Emit("read MF_acc %s MF_stack_sz", ext.CellName)
	}

	return nil
}

// PeekOp copies the stack entry Depth places from the top into MF_acc.
// Depth=0 peeks the top of the stack.
//
// Destroys: MF_tmp MF_resume
// Returns: MF_acc
type PeekOp struct {
	Depth types.MindustryTerm
}

func (op *PeekOp) CodeSize(backend Backend) types.AddressDelta {
	_, literal := parseUsize(string(op.Depth))
	switch {
	case backend == BackendInternal && literal:
		return 4
	case backend == BackendInternal:
		return 5
	case literal:
		return 2
	default:
		return 3
	}
}

func (op *PeekOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Peek depth %s @%d", op.Depth, len(out.Lines))

	if n, ok := parseUsize(string(op.Depth)); ok {
		out.Emit("op sub MF_tmp MF_stack_sz %d", n+1)
	} else {
		out.Emit("op sub MF_tmp MF_stack_sz %s", op.Depth)
		out.Emit("op sub MF_tmp MF_tmp 1")
	}

	if int := ir.BackendParams.Internal; int != nil {
		// Not an error -- peek and pop use the same table.
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_tmp", int.PopEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("read MF_acc %s MF_tmp", ext.CellName)
	}

	return nil
}

// PokeOp copies MF_acc into the stack entry Depth places from the top.
// Depth=0 pokes the top of the stack.
//
// Destroys: MF_tmp MF_resume
type PokeOp struct {
	Depth types.MindustryTerm
}

func (op *PokeOp) CodeSize(backend Backend) types.AddressDelta {
	_, literal := parseUsize(string(op.Depth))
	switch {
	case backend == BackendInternal && literal:
		return 4
	case backend == BackendInternal:
		return 5
	case literal:
		return 2
	default:
		return 3
	}
}

func (op *PokeOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Poke depth %s @%d", op.Depth, len(out.Lines))

	if n, ok := parseUsize(string(op.Depth)); ok {
		out.Emit("op sub MF_tmp MF_stack_sz %d", n+1)
	} else {
		out.Emit("op sub MF_tmp MF_stack_sz %s", op.Depth)
		out.Emit("op sub MF_tmp MF_tmp 1")
	}

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_tmp", int.PokeEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PokeTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("write MF_acc %s MF_tmp", ext.CellName)
	}

	return nil
}

// SetOp sets Dest to Source.
//
// Preserves: All
type SetOp struct {
	Source types.MindustryTerm
	Dest   types.MindustryTerm
}

func (op *SetOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *SetOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// Set %s %s @%d", op.Dest, op.Source, len(out.Lines))
	out.Emit("set %s %s", op.Dest, op.Source)
	return nil
}

// LabelOp defines a label usable with JumpOp and CallProcOp.
//
// Preserves: All
type LabelOp struct {
	Target types.LabelName
}

func (op *LabelOp) CodeSize(Backend) types.AddressDelta { return 0 }

func (op *LabelOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("%s:", op.Target)
	return nil
}

// JumpOp jumps to a label, identical to Mindustry's built-in jump except that
// a label is given instead of a line number.
//
// Preserves: All
type JumpOp struct {
	Target    types.LabelName
	Condition types.Condition
}

func (op *JumpOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *JumpOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// Jump: %s %s @%d", op.Target, op.Condition, len(out.Lines))

	target, ok := ir.Labels[op.Target]
	if !ok {
		return fmt.Errorf("label %s not found", op.Target)
	}
	out.Emit("jump %d %s", target, op.Condition)
	return nil
}

// MathOp performs a built-in Mindustry `op` computation.
//
// Preserves: All
type MathOp struct {
	Operation string
	Dest      types.MindustryTerm
	Arg1      types.MindustryTerm
	Arg2      types.MindustryTerm
}

func (op *MathOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *MathOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// Op (the Mindustry one): %s %s %s %s @%d", op.Operation, op.Dest, op.Arg1, op.Arg2, len(out.Lines))
	out.Emit("op %s %s %s %s", op.Operation, op.Dest, op.Arg1, op.Arg2)
	return nil
}

// MindustryOp runs a Mindustry command verbatim.
//
// Destroys: all, if stack variables are used or the command writes an MF_
// variable; otherwise preserves everything.
type MindustryOp struct {
	Command types.MindustryCommand
}

func (op *MindustryOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *MindustryOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// Mindustry command @%d", len(out.Lines))
	out.Emit("%s", op.Command)
	return nil
}

// parseUsize reports whether s parses as a non-negative base-10 integer
// (i.e. is a literal rather than a variable name), mirroring the Rust code's
// repeated `s.parse::<usize>()` checks used to decide whether a depth
// argument is constant.
func parseUsize(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
