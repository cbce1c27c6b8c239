package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// ReturnOp returns from a CallOp to a function defined by a FunctionOp.
//
// e.g.: `return`, `return 5 7 v1 *v2`
//
// Explicit return is required from every code path of a function; falling
// off the end instead is undefined behavior, since detecting it would need
// full control-flow analysis this line-oriented parser doesn't do.
//
// Destroys: MF_acc MF_tmp MF_resume
type ReturnOp struct {
	Function types.FunctionName
	Values   []types.Term
	Size     types.AddressDelta
}

// NewReturnOp validates a `return` statement's values against the
// function's declared signature and precomputes its instruction count.
func NewReturnOp(function *FunctionOp, valueNames []string, backend Backend) (*ReturnOp, error) {
	if len(valueNames) != len(function.Returns) {
		return nil, fmt.Errorf("function specifies %d return values but return statement has %d", len(function.Returns), len(valueNames))
	}

	var total types.AddressDelta
	values := make([]types.Term, 0, len(valueNames))
	for j, name := range valueNames {
		v, err := types.ParseTerm(name)
		if err != nil {
			return nil, fmt.Errorf("return value %d %q: %w", j, name, err)
		}
		if _, isStack := v.(types.StackVar); isStack {
			if backend == BackendInternal {
				total += 5
			} else {
				total += 2
			}
		} else {
			total += 1
		}
		values = append(values, v)
	}

	// Remove locals and return address from the stack.
	total += 1

	// Pop return address and jump back.
	if backend == BackendInternal {
		total += 4
	} else {
		total += 1
	}

	return &ReturnOp{Function: function.Name, Values: values, Size: total}, nil
}

func (op *ReturnOp) CodeSize(Backend) types.AddressDelta { return op.Size }

func (op *ReturnOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	function, ok := ir.Functions[op.Function]
	if !ok {
		return functionNotFoundError(op.Function)
	}
	out.Note("%s", formatReturnAnnotation(op, len(out.Lines)))

	if len(op.Values) != len(function.Returns) {
		return fmt.Errorf("function %s specifies %d return values but return statement has %d", op.Function, len(function.Returns), len(op.Values))
	}

	for j, arg := range op.Values {
		switch a := arg.(type) {
		case types.StackVar:
			depth, err := function.StackVarDepth(a)
			if err != nil {
				return err
			}
			if int := ir.BackendParams.Internal; int != nil {
				out.Emit("op add MF_resume @counter 3")
				out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
				out.Emit("op mul MF_tmp %d MF_tmp", int.PopEntrySize)
				out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
				out.Emit("set %s MF_acc", types.ReturnSlotName(j))
			} else {
				ext := ir.BackendParams.External
				out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
				out.Emit("read %s %s MF_tmp", types.ReturnSlotName(j), ext.CellName)
			}
		case types.MindustryTerm:
			out.Emit("set %s %s", types.ReturnSlotName(j), a)
		}
	}

	// Remove locals and return address from the stack.
	out.Emit("op sub MF_stack_sz MF_stack_sz %d", 1+len(function.Locals))

	if int := ir.BackendParams.Internal; int != nil {
		// Same as RetProcOp, except the stack-size subtraction above is rolled in.
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PopEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PopTableStart)
		out.Emit("set @counter MF_acc")
	} else {
		ext := ir.BackendParams.External
		out.Emit("read @counter %s MF_stack_sz", ext.CellName)
	}

	return nil
}

func formatReturnAnnotation(op *ReturnOp, instr int) string {
	var returnsAnn string
	switch len(op.Values) {
	case 0:
		returnsAnn = "()"
	case 1:
		returnsAnn = fmt.Sprintf("(%s)", op.Values[0])
	default:
		returnsAnn = "("
		for _, v := range op.Values {
			returnsAnn += " " + v.String()
		}
		returnsAnn += ")"
	}
	return fmt.Sprintf("// Return %s%s @%d", op.Function, returnsAnn, instr)
}

// CallOp calls a FunctionOp with the given arguments.
//
// e.g.: `call foobar "hello" *a b -> ret1 *ret2`
//
// Destroys: all
type CallOp struct {
	// The function this call is being made from, if any. Used to resolve
	// stack-variable arguments, which are only legal when calling from
	// within another function.
	CallSiteFunction *types.FunctionName
	TargetFunction   types.FunctionName
	Args             []types.Term
	Returns          []types.Term

	// Instructions up to and including the jump to the target function.
	BeforeCallSize types.AddressDelta
	// Total instructions generated by the call, including return handling.
	TotalSize types.AddressDelta
}

// NewCallOp precomputes a call's instruction counts from its argument/return
// term kinds and the callee's declared frame size.
func NewCallOp(args, returns []types.Term, targetFunctionNumLocals int, targetFunction types.FunctionName, callSiteFunction *types.FunctionName, backend Backend) *CallOp {
	var beforeCallSize types.AddressDelta

	// Push return address.
	if backend == BackendInternal {
		beforeCallSize += 4
	} else {
		beforeCallSize += 3
	}

	for _, arg := range args {
		_, isStack := arg.(types.StackVar)
		switch {
		case backend == BackendInternal && isStack:
			beforeCallSize += 7
		case backend == BackendInternal:
			beforeCallSize += 4
		case isStack:
			beforeCallSize += 4
		default:
			beforeCallSize += 2
		}
	}

	// Extra local variables (other than args) must increase the stack pointer.
	if targetFunctionNumLocals != len(args) {
		beforeCallSize += 1
	}

	// Jump to the function entry point.
	beforeCallSize += 1

	totalSize := beforeCallSize
	for _, ret := range returns {
		_, isStack := ret.(types.StackVar)
		switch {
		case backend == BackendInternal && isStack:
			totalSize += 5
		case backend == BackendInternal:
			totalSize += 1
		case isStack:
			totalSize += 2
		default:
			totalSize += 1
		}
	}

	return &CallOp{
		TargetFunction:   targetFunction,
		CallSiteFunction: callSiteFunction,
		Args:             args,
		Returns:          returns,
		BeforeCallSize:   beforeCallSize,
		TotalSize:        totalSize,
	}
}

func (op *CallOp) CodeSize(Backend) types.AddressDelta { return op.TotalSize }

func (op *CallOp) Generate(ir *IntermediateRepresentation, out *Output) error {
	out.Note("%s", formatArrowAnnotation("// Call", string(op.TargetFunction), stringify(op.Args), stringify(op.Returns), len(out.Lines)))

	function, ok := ir.Functions[op.TargetFunction]
	if !ok {
		return functionNotFoundError(op.TargetFunction)
	}
	if len(op.Returns) != len(function.Returns) {
		return fmt.Errorf("call site specifies %d return values but function %s returns %d values", len(op.Returns), function.Name, len(function.Returns))
	}
	if len(op.Args) != len(function.Args) {
		return fmt.Errorf("call site specifies %d arguments but function %s takes %d arguments", len(op.Args), function.Name, len(function.Args))
	}

	// Push the return address: the cleanup code just after the call site.
	if int := ir.BackendParams.Internal; int != nil {
		out.Emit("op add MF_acc @counter %d", op.BeforeCallSize.Sub(1))
		out.Emit("op add MF_resume @counter 2")
		out.Emit("op mul MF_tmp %d MF_stack_sz", int.PushEntrySize)
		out.Emit("op add @counter %d MF_tmp", int.PushTableStart)
	} else {
		ext := ir.BackendParams.External
		out.Emit("op add MF_acc @counter %d", op.BeforeCallSize.Sub(1))
		out.Emit("write MF_acc %s MF_stack_sz", ext.CellName)
		out.Emit("op add MF_stack_sz MF_stack_sz 1")
	}

	for j, arg := range op.Args {
		switch a := arg.(type) {
		case types.StackVar:
			if op.CallSiteFunction == nil {
				return fmt.Errorf("internal error: forward reference")
			}
			callSite, ok := ir.Functions[*op.CallSiteFunction]
			if !ok {
				return functionNotFoundError(*op.CallSiteFunction)
			}
			depth, err := callSite.StackVarDepth(a)
			if err != nil {
				return err
			}
			// We've been pushing to the stack, so the value we target is
			// being pushed down (there is no frame pointer, so everything
			// here is relative to the current stack size).
			d := depth.Int() + j + 1

			// Peek then push.
			if int := ir.BackendParams.Internal; int != nil {
				out.Emit("op add MF_resume @counter 3")
				out.Emit("op sub MF_tmp MF_stack_sz %d", d)
				out.Emit("op mul MF_tmp %d MF_tmp", int.PopEntrySize)
				out.Emit("op add @counter %d MF_tmp", int.PopTableStart)

				out.Emit("op add MF_resume @counter 2")
				out.Emit("op mul MF_tmp %d MF_stack_sz", int.PushEntrySize)
				out.Emit("op add @counter %d MF_tmp", int.PushTableStart)
			} else {
				ext := ir.BackendParams.External
				out.Emit("op sub MF_tmp MF_stack_sz %d", d)
				out.Emit("read MF_acc %s MF_tmp", ext.CellName)
				out.Emit("write MF_acc %s MF_stack_sz", ext.CellName)
				out.Emit("op add MF_stack_sz MF_stack_sz 1")
			}
		case types.MindustryTerm:
			if int := ir.BackendParams.Internal; int != nil {
				out.Emit("set MF_acc %s", a)
				out.Emit("op add MF_resume @counter 2")
				out.Emit("op mul MF_tmp %d MF_stack_sz", int.PushEntrySize)
				out.Emit("op add @counter %d MF_tmp", int.PushTableStart)
			} else {
				ext := ir.BackendParams.External
				out.Emit("write %s %s MF_stack_sz", a, ext.CellName)
				out.Emit("op add MF_stack_sz MF_stack_sz 1")
			}
		}
	}

	// Reserve room on the stack for any stack variables beyond the args.
	if additional := len(function.Locals) - len(function.Args); additional > 0 {
		out.Emit("op add MF_stack_sz MF_stack_sz %d", additional)
	}

	// Jump to the function entry point.
	if function.Address == nil {
		return fmt.Errorf("internal error: forward reference")
	}
	out.Emit("jump %d always x false", *function.Address)

	// The callee's Return should have popped its locals and the return
	// address off the stack and placed return values into MF_ret<n>; map
	// those into the requested destinations.
	for j, arg := range op.Returns {
		switch a := arg.(type) {
		case types.StackVar:
			if op.CallSiteFunction == nil {
				return fmt.Errorf("internal error: forward reference")
			}
			callSite, ok := ir.Functions[*op.CallSiteFunction]
			if !ok {
				return functionNotFoundError(*op.CallSiteFunction)
			}
			depth, err := callSite.StackVarDepth(a)
			if err != nil {
				return err
			}
			if int := ir.BackendParams.Internal; int != nil {
				out.Emit("op add MF_resume @counter 4")
				out.Emit("set MF_acc %s", types.ReturnSlotName(j))
				out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
				out.Emit("op mul MF_tmp %d MF_tmp", int.PokeEntrySize)
				out.Emit("op add @counter %d MF_tmp", int.PokeTableStart)
			} else {
				ext := ir.BackendParams.External
				out.Emit("op sub MF_tmp MF_stack_sz %d", depth.Int())
				out.Emit("write %s %s MF_tmp", types.ReturnSlotName(j), ext.CellName)
			}
		case types.MindustryTerm:
			out.Emit("set %s %s", a, types.ReturnSlotName(j))
		}
	}

	return nil
}
