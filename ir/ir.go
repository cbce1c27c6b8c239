package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// IntermediateRepresentation is the full lowered program: its op sequence,
// stack configuration, resolved label/function tables, and the backend
// parameters codegen needs.
type IntermediateRepresentation struct {
	Ops           []Operation
	StackConfig   StackConfig
	Labels        map[types.LabelName]types.Address
	Functions     map[types.FunctionName]*FunctionOp
	Back          Backend
	BackendParams BackendParams
}

// Backend returns the backend this program was lowered for.
func (ir *IntermediateRepresentation) Backend() Backend { return ir.Back }

// Generate (in package codegen) renders an IntermediateRepresentation to a
// target instruction stream and a parallel annotated listing.

// FunctionOp is a function declaration: its arguments and return names (both
// needed only for signature checking and annotation), its locals (including
// args) mapped to their frame index, and the address its body begins at once
// parsed.
type FunctionOp struct {
	Name    types.FunctionName
	Args    []types.StackVar
	Returns []types.Term
	Locals  map[types.StackVar]types.FrameIndex
	Address *types.Address
}

// DeclareFunction validates a `fn name arg... -> ret...` header and creates
// the FunctionOp tracked for its forward-referenced call sites.
func DeclareFunction(name types.FunctionName, argNames, returnNames []string) (*FunctionOp, error) {
	locals := make(map[types.StackVar]types.FrameIndex)
	args := make([]types.StackVar, 0, len(argNames))

	for j, arg := range argNames {
		v, err := types.ParseStackVar(arg)
		if err != nil {
			return nil, fmt.Errorf("function %s argument %d name %q: %w", name, j, arg, err)
		}
		if _, dup := locals[v]; dup {
			return nil, fmt.Errorf("function %s argument %d duplicate name %q", name, j, v)
		}
		locals[v] = types.FrameIndex(len(locals))
		args = append(args, v)
	}

	returns := make([]types.Term, 0, len(returnNames))
	for j, ret := range returnNames {
		t, err := types.ParseTerm(ret)
		if err != nil {
			return nil, fmt.Errorf("function %s return value %d name %q: %w", name, j, ret, err)
		}
		for _, existing := range returns {
			if existing == t {
				return nil, fmt.Errorf("function %s return value %d duplicate name %s", name, j, t)
			}
		}
		returns = append(returns, t)
	}

	return &FunctionOp{Name: name, Args: args, Returns: returns, Locals: locals}, nil
}

// DeclareLocal adds a `let` binding to the function's frame, returning its
// FrameIndex.
func (f *FunctionOp) DeclareLocal(name types.StackVar) (types.FrameIndex, error) {
	if _, dup := f.Locals[name]; dup {
		return 0, fmt.Errorf("%s is defined a second time in function %s", name, f.Name)
	}
	pos := types.FrameIndex(len(f.Locals))
	f.Locals[name] = pos
	return pos, nil
}

// StartParse records the address the function body begins at. May only be
// called once.
func (f *FunctionOp) StartParse(addr types.Address) {
	if f.Address != nil {
		panic("function address set twice")
	}
	a := addr
	f.Address = &a
}

// StackVarDepth converts a local's FrameIndex into its depth from the top of
// the stack once the frame is fully populated (locals.len() is fixed once
// parsing of the body completes, since all `let`s and args precede use).
func (f *FunctionOp) StackVarDepth(name types.StackVar) (types.StackDepth, error) {
	idx, ok := f.Locals[name]
	if !ok {
		return 0, fmt.Errorf("innermost function definition does not have let variable named %q", name)
	}
	return types.StackDepth(len(f.Locals) - idx.Int()), nil
}

// CodeSize implements Operation: a function header itself emits nothing
// (only its body, the ops between it and the matching `}`, does).
func (f *FunctionOp) CodeSize(Backend) types.AddressDelta { return 0 }

// Generate implements Operation, emitting only the annotated header comment.
func (f *FunctionOp) Generate(_ *IntermediateRepresentation, out *Output) error {
	out.Note("%s", formatArrowAnnotation("// Function", string(f.Name), stringify(f.Args), stringify(f.Returns), len(out.Lines)))
	return nil
}

func functionNotFoundError(name types.FunctionName) error {
	return fmt.Errorf("function %s is not found", name)
}

func stringify[T fmt.Stringer](ts []T) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func formatArrowAnnotation(prefix, funcName string, args, returns []string, irIndex int) string {
	var annotation string
	for _, a := range args {
		annotation += " " + a
	}
	if len(returns) > 0 {
		annotation += " ->"
		for _, r := range returns {
			annotation += " " + r
		}
	}
	return fmt.Sprintf("%s %s %s @%d", prefix, funcName, annotation, irIndex)
}
