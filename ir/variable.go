package ir

import "github.com/calmofthestorm/routerbolt/types"

// LetOp declares a function-scope variable stored on the stack, e.g.
// `let *my_var`. Variables must be declared before use.
//
// There are only two scopes in this language: global and function body.
// Stack variables are only legal inside a function body (a compile error
// otherwise). Unlike global (Mindustry) variables, they are tied to a
// particular invocation ("frame") of the function, so e.g. each call to a
// recursive function gets its own instance.
//
// Note that although loops, if statements, and so on use {} as syntax, they
// do not introduce a new scope -- only functions do.
//
// Destroys: none
type LetOp struct {
	Name types.StackVar
	Pos  types.FrameIndex
}

func (op *LetOp) CodeSize(Backend) types.AddressDelta { return 0 }

func (op *LetOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("// Let %s (stack offset %d) @%d", op.Name, op.Pos.Int(), len(out.Lines))
	return nil
}

// GetStackOp reads a stack variable into a global, e.g. `set g *my_var`.
//
// Destroys: all
type GetStackOp struct {
	Global   types.MindustryTerm
	Stack    types.StackVar
	Function types.FunctionName
}

func (op *GetStackOp) CodeSize(backend Backend) types.AddressDelta {
	switch {
	case backend == BackendInternal && op.Global != types.Accumulator:
		return 5
	case backend == BackendInternal:
		return 4
	default:
		return 2
	}
}

func (op *GetStackOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// GetStack %s %s in fn %s @%d", op.Global, op.Stack, op.Function, len(out.Lines))

	fn, ok := ir.Functions[op.Function]
	if !ok {
		return functionNotFoundError(op.Function)
	}
	depth, err := fn.StackVarDepth(op.Stack)
	if err != nil {
		return err
	}

	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op add MF_resume @counter 3")
		out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
		out.Emit("op mul MF_tmp %d MF_tmp", int.PopEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
		if op.Global != types.Accumulator {
			out.Emit("set %s MF_acc", op.Global)
		}
	} else {
		ext := ir.BackendParams.External
		out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
		out.Emit("read %s %s MF_tmp", op.Global, ext.CellName)
	}

	return nil
}

// SetStackOp writes a global into a stack variable, e.g. `set *my_var g`.
//
// Destroys: all
type SetStackOp struct {
	Global   types.MindustryTerm
	Stack    types.StackVar
	Function types.FunctionName
}

func (op *SetStackOp) CodeSize(backend Backend) types.AddressDelta {
	switch {
	case backend == BackendInternal && op.Global != types.Accumulator:
		return 5
	case backend == BackendInternal:
		return 4
	default:
		return 2
	}
}

func (op *SetStackOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("// SetStack %s %s in fn %s @%d", op.Stack, op.Global, op.Function, len(out.Lines))

	fn, ok := ir.Functions[op.Function]
	if !ok {
		return functionNotFoundError(op.Function)
	}
	depth, err := fn.StackVarDepth(op.Stack)
	if err != nil {
		return err
	}

	if int := ir.BackendParams.Internal; int != nil {
		if op.Global != types.Accumulator {
			out.Emit("set MF_acc %s", op.Global)
		}
		out.Emit("op add MF_resume @counter 3")
		out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
		out.Emit("op mul MF_tmp %d MF_tmp", int.PokeEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PokeTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
		out.Emit("write %s %s MF_tmp", op.Global, ext.CellName)
	}

	return nil
}
