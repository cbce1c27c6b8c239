package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// There is no AST: structured constructs desugar into plain jumps resolved
// against addresses computed as parsing proceeds. `if`/`else`/loops are
// parsed as single ops that must each occupy their own line; the sugar is
// entirely syntactic.

// IfOp begins an if statement. Only a single condition is supported, using
// the same arguments as Mindustry's `jump`.
//
// `if <cond> { ... }` desugars to IfOp ... `}`. `if <cond> { ... } else {
// ... }` desugars to IfOp ... ElseOp ... `}`.
//
// Preserves: all, unless the condition used a stack variable.
type IfOp struct {
	Condition types.Condition
	end       *types.Address
}

func NewIfOp(condition types.Condition) *IfOp {
	return &IfOp{Condition: condition}
}

// ResolveForward records where execution resumes when the condition is false:
// the first address after the true branch, which with an else branch is the
// start of the else body (just past the ElseOp's jump). May only be called once.
func (op *IfOp) ResolveForward(end types.Address) {
	if op.end != nil {
		panic("if end resolved twice")
	}
	e := end
	op.end = &e
}

func (op *IfOp) CodeSize(Backend) types.AddressDelta { return 2 }

func (op *IfOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	if op.end == nil {
		return fmt.Errorf("internal error: forward reference")
	}

	out.Note("// If: %s @%d", op.Condition, len(out.Lines))

	// 1 for this instruction not yet added, 1 to skip the next jump.
	here := types.Address(len(out.Lines))
	out.Emit("jump %d %s", here.Int()+2, op.Condition)
	out.Emit("jump %d always x false", *op.end)

	return nil
}

// ElseOp is the "else" half of an if statement. See IfOp.
//
// Preserves: all, unless the condition used a stack variable.
type ElseOp struct {
	end *types.Address
}

func DeclareElseOp() *ElseOp { return &ElseOp{} }

func (op *ElseOp) ResolveForward(end types.Address) {
	e := end
	op.end = &e
}

func (op *ElseOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *ElseOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	if op.end == nil {
		return fmt.Errorf("internal error: forward reference")
	}
	out.Note("// Else: %d @%d", *op.end, len(out.Lines))
	out.Emit("jump %d always x false", *op.end)
	return nil
}

// LoopEndOp is the construct generated at the closing `}` of any loop.
//
// Destroys: all
type LoopEndOp struct {
	BodyStart types.Address
	Condition types.Condition
}

func (op *LoopEndOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *LoopEndOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// <loop if>: %s %d @%d", op.Condition, op.BodyStart, len(out.Lines))
	out.Emit("jump %d %s", op.BodyStart, op.Condition)
	return nil
}

// loopTarget is implemented by the three loop-introducing ops so that
// BreakOp/ContinueOp can resolve their target without a forward reference,
// by instead referencing the loop's IR index.
type loopTarget interface {
	EndAddress() (types.Address, error)
	ConditionAddress() (types.Address, error)
}

var errLoopForwardReference = fmt.Errorf("internal error: forward reference")

// WhileOp begins a while loop. Desugars to WhileOp ... LoopEndOp, where the
// WhileOp just jumps to the condition check (an indirect way of negating the
// condition without needing to invert it).
//
// E.g.:
//
//	while lessThan a 7 {
//	  op add a a 1
//	}
type WhileOp struct {
	BodyStart   types.Address
	EndSequence Sequence
	Condition   types.Condition
	forward     *[2]types.Address // [condition check start, loop end]
}

func NewWhileOp(address types.Address, endSequence Sequence, condition types.Condition) *WhileOp {
	return &WhileOp{
		BodyStart:   address.Add(1),
		EndSequence: endSequence,
		Condition:   condition,
	}
}

// ResolveForward appends the loop-end jump to the end sequence and records
// where the condition check starts and where the loop as a whole ends, returning the
// sequence to be emitted at the closing `}`.
func (op *WhileOp) ResolveForward(bodyEnd types.Address, backend Backend) Sequence {
	op.EndSequence = append(op.EndSequence, &LoopEndOp{BodyStart: op.BodyStart, Condition: op.Condition})
	condEnd := bodyEnd.Add(op.EndSequence.CodeSize(backend))
	if op.forward != nil {
		panic("while loop resolved twice")
	}
	op.forward = &[2]types.Address{bodyEnd, condEnd}
	return op.EndSequence
}

func (op *WhileOp) EndAddress() (types.Address, error) {
	if op.forward == nil {
		return 0, errLoopForwardReference
	}
	return op.forward[1], nil
}

func (op *WhileOp) ConditionAddress() (types.Address, error) {
	if op.forward == nil {
		return 0, errLoopForwardReference
	}
	return op.forward[0], nil
}

func (op *WhileOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *WhileOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// While @%d", len(out.Lines))
	cond, err := op.ConditionAddress()
	if err != nil {
		return err
	}
	out.Emit("jump %d always x false", cond)
	return nil
}

// DoWhileOp begins a do-while loop: the condition check is appended directly
// at the closing `}`, which is more efficient than WhileOp since the body
// does not need to jump to it first.
//
//	do {
//	  op add a a 1
//	} while lessThan a 7
type DoWhileOp struct {
	BodyStart types.Address
	forward   *[2]types.Address
}

func NewDoWhileOp(address types.Address) *DoWhileOp {
	return &DoWhileOp{BodyStart: address}
}

func (op *DoWhileOp) ResolveForward(bodyEnd types.Address, endSequence Sequence, condition types.Condition, backend Backend) Sequence {
	endSequence = append(endSequence, &LoopEndOp{BodyStart: op.BodyStart, Condition: condition})
	end := bodyEnd.Add(endSequence.CodeSize(backend))
	if op.forward != nil {
		panic("do-while loop resolved twice")
	}
	op.forward = &[2]types.Address{bodyEnd, end}
	return endSequence
}

func (op *DoWhileOp) EndAddress() (types.Address, error) {
	if op.forward == nil {
		return 0, errLoopForwardReference
	}
	return op.forward[1], nil
}

func (op *DoWhileOp) ConditionAddress() (types.Address, error) {
	if op.forward == nil {
		return 0, errLoopForwardReference
	}
	return op.forward[0], nil
}

func (op *DoWhileOp) CodeSize(Backend) types.AddressDelta { return 0 }

func (op *DoWhileOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// Do-While Loop @%d", len(out.Lines))
	return nil
}

// InfiniteLoopOp begins an infinite loop. Generates the same code as a
// do-while with an "always" condition, but is cheaper than WhileOp.
//
//	loop {
//	  print "hello"
//	}
type InfiniteLoopOp struct {
	BodyStart types.Address
	end       *types.Address
}

func NewInfiniteLoopOp(address types.Address) *InfiniteLoopOp {
	return &InfiniteLoopOp{BodyStart: address}
}

// ResolveForward records the loop's end address and returns the single
// always-true LoopEndOp to append at the closing `}`.
func (op *InfiniteLoopOp) ResolveForward(address types.Address) Sequence {
	loopEnd := &LoopEndOp{BodyStart: op.BodyStart, Condition: types.AlwaysCondition()}
	end := address.Add(loopEnd.CodeSize(BackendInternal))
	if op.end != nil {
		panic("infinite loop resolved twice")
	}
	op.end = &end
	return Sequence{loopEnd}
}

func (op *InfiniteLoopOp) EndAddress() (types.Address, error) {
	if op.end == nil {
		return 0, errLoopForwardReference
	}
	return *op.end, nil
}

func (op *InfiniteLoopOp) ConditionAddress() (types.Address, error) {
	return op.BodyStart, nil
}

func (op *InfiniteLoopOp) CodeSize(Backend) types.AddressDelta { return 0 }

func (op *InfiniteLoopOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// InfiniteLoop @%d", len(out.Lines))
	return nil
}

// BreakOp jumps past the end of the enclosing loop. A compile error to use
// outside a loop; Index avoids needing a forward reference by pointing back
// at the loop op itself.
type BreakOp struct {
	Index types.IrIndex
}

func (op *BreakOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *BreakOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	target, ok := ir.Ops[op.Index.Int()].(loopTarget)
	if !ok {
		return fmt.Errorf("internal error: break not from recognized loop")
	}
	end, err := target.EndAddress()
	if err != nil {
		return err
	}

	out.Note("// Break @%d", len(out.Lines))
	out.Emit("jump %d always x false", end)
	return nil
}

// ContinueOp jumps to the condition check of the enclosing loop, skipping
// the remainder of the current iteration. A compile error to use outside a
// loop.
type ContinueOp struct {
	Index types.IrIndex
}

func (op *ContinueOp) CodeSize(Backend) types.AddressDelta { return 1 }

func (op *ContinueOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	target, ok := ir.Ops[op.Index.Int()].(loopTarget)
	if !ok {
		return fmt.Errorf("internal error: continue not from recognized loop")
	}
	cond, err := target.ConditionAddress()
	if err != nil {
		return err
	}

	out.Note("// Continue @%d", len(out.Lines))
	out.Emit("jump %d always x false", cond)
	return nil
}
