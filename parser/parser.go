// Package parser turns program source into an ir.IntermediateRepresentation.
//
// There is no AST. Parsing is line-oriented and two-pass: preparse discovers
// `stack_config` and every function's signature and locals (so forward
// references to a function work at its call sites), then the main pass
// lowers each line into zero or more ir.Operations, using a stack of open
// `{`-scopes to resolve forward references for if/else/loops/functions as it
// goes.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calmofthestorm/routerbolt/ir"
	"github.com/calmofthestorm/routerbolt/types"
)

// Parse compiles program source into its intermediate representation.
func Parse(text string) (*ir.IntermediateRepresentation, error) {
	lines := strings.Split(text, "\n")

	ctx := &parserContext{
		functions: make(map[types.FunctionName]*ir.FunctionOp),
		labels:    make(map[types.LabelName]types.Address),
	}

	var stackConfig *ir.StackConfig
	var preparseFnStack []*types.FunctionName

	for lineNo, line := range lines {
		tok := lexLine(cleanLine(line))
		if err := ctx.preparseLine(tok, &stackConfig, &preparseFnStack); err != nil {
			return nil, NewError(lineNo+1, line, ErrorSyntax, err)
		}
	}

	config := ir.StackConfig{Internal: true, Size: 0}
	if stackConfig != nil {
		config = *stackConfig
	}

	ctx.hasStack = config.HasStack()
	ctx.backend = config.Backend()

	if ctx.hasStack {
		op := &ir.SetOp{Dest: types.StackSize, Source: types.ZeroLiteral}
		ctx.ops = append(ctx.ops, op)
		ctx.instructionCount = ctx.instructionCount.Add(op.CodeSize(ctx.backend))
	}

	for lineNo, line := range lines {
		clean := cleanLine(line)
		tok := lexLine(clean)
		seq, err := ctx.parseLine(clean, tok)
		if err != nil {
			return nil, NewError(lineNo+1, line, ErrorSyntax, err)
		}
		for _, op := range seq {
			ctx.ops = append(ctx.ops, op)
			ctx.instructionCount = ctx.instructionCount.Add(op.CodeSize(ctx.backend))
		}
	}

	if len(ctx.scopeStack) != 0 {
		return nil, fmt.Errorf("missing closing } at end of file")
	}

	backendParams := ir.BackendParams{}
	if config.Internal {
		backendParams.Internal = ir.NewInternalParams(config.Size, ctx.instructionCount)
	} else {
		backendParams.External = &ir.ExternalParams{CellName: config.CellName}
	}

	return &ir.IntermediateRepresentation{
		Ops:           ctx.ops,
		StackConfig:   config,
		Labels:        ctx.labels,
		Functions:     ctx.functions,
		Back:          ctx.backend,
		BackendParams: backendParams,
	}, nil
}

type parserContext struct {
	ops              []ir.Operation
	instructionCount types.Address
	backend          ir.Backend
	scopeStack       []types.IrIndex
	functions        map[types.FunctionName]*ir.FunctionOp
	labels           map[types.LabelName]types.Address
	hasStack         bool
}

// preparseLine is the first pass: it discovers `stack_config`, function
// signatures, and `let` locals, tracking a stack of open braces (nil for
// non-function constructs, a function name when entering that function's
// body) so `let` can find its enclosing function without full parsing.
func (c *parserContext) preparseLine(tok []string, stackConfig **ir.StackConfig, preparseFnStack *[]*types.FunctionName) error {
	if len(tok) == 0 {
		return nil
	}

	switch tok[0] {
	case "fn":
		return c.preparseFunction(tok[1:], preparseFnStack)
	case "let":
		return c.preparseLet(tok[1:], *preparseFnStack)
	case "stack_config":
		return preparseStackConfig(tok[1:], stackConfig)
	case "}":
		if tok[len(tok)-1] == "{" {
			return nil
		}
		if len(*preparseFnStack) == 0 {
			return fmt.Errorf("missing opening {")
		}
		*preparseFnStack = (*preparseFnStack)[:len(*preparseFnStack)-1]
		return nil
	default:
		if tok[len(tok)-1] == "{" {
			*preparseFnStack = append(*preparseFnStack, nil)
		}
		return nil
	}
}

func preparseStackConfig(tok []string, stackConfig **ir.StackConfig) error {
	if len(tok) != 2 || (tok[0] != "size" && tok[0] != "cell") {
		return fmt.Errorf("form is `stack_config [ size <stack_size> | cell <cell_name> ]`")
	}
	if *stackConfig != nil {
		return fmt.Errorf("stack config set for a second time here")
	}

	if tok[0] == "size" {
		size, err := strconv.Atoi(tok[1])
		if err != nil || size < 0 {
			return fmt.Errorf("stack size must be a non-negative integer")
		}
		*stackConfig = &ir.StackConfig{Internal: true, Size: size}
	} else {
		*stackConfig = &ir.StackConfig{Internal: false, CellName: tok[1]}
	}
	return nil
}

func (c *parserContext) preparseFunction(tok []string, preparseFnStack *[]*types.FunctionName) error {
	if len(tok) < 2 || tok[len(tok)-1] != "{" {
		return fmt.Errorf("form is `fn name [arg1 [arg2...]] [-> [return1 [return2...]]] {`")
	}

	name := types.FunctionName(tok[0])
	argNames, returnNames, err := parseArrow(tok[1 : len(tok)-1])
	if err != nil {
		return fmt.Errorf("function %s signature: %w", name, err)
	}
	function, err := ir.DeclareFunction(name, argNames, returnNames)
	if err != nil {
		return err
	}

	if _, dup := c.functions[name]; dup {
		return fmt.Errorf("function %s is defined a second time here", name)
	}
	c.functions[name] = function
	*preparseFnStack = append(*preparseFnStack, &name)
	return nil
}

func (c *parserContext) preparseLet(tok []string, preparseFnStack []*types.FunctionName) error {
	if len(tok) != 1 {
		return fmt.Errorf("form is `let *stack_var_name`")
	}

	var functionName *types.FunctionName
	for i := len(preparseFnStack) - 1; i >= 0; i-- {
		if preparseFnStack[i] != nil {
			functionName = preparseFnStack[i]
			break
		}
	}
	if functionName == nil {
		return fmt.Errorf("let may only be used within a function")
	}

	name, err := types.ParseStackVar(tok[0])
	if err != nil {
		return fmt.Errorf("let binding %q is not a stack var (does not start with '*'): %w", tok[0], err)
	}

	function := c.functions[*functionName]
	if _, err := function.DeclareLocal(name); err != nil {
		return err
	}
	return nil
}

func (c *parserContext) requireStack() error {
	if !c.hasStack {
		return fmt.Errorf("this operation requires that a stack be configured; use `stack_config cell bank1` for an external memory bank or `stack_config size <size>` (size > 0) for an internal jump-table stack")
	}
	return nil
}

func (c *parserContext) parseLine(line string, tok []string) (ir.Sequence, error) {
	if len(tok) == 0 {
		return nil, nil
	}

	switch {
	case tok[0] == "stack_config":
		// Handled entirely in the first pass.
		return nil, nil
	case tok[0] == "callproc":
		return c.parseCallproc(tok[1:])
	case tok[0] == "ret":
		return c.parseRet(tok[1:])
	case strings.HasPrefix(tok[0], "//"):
		return nil, nil
	case len(tok) == 1 && strings.HasSuffix(tok[0], ":"):
		return c.parseLabel(tok[0][:len(tok[0])-1])
	case tok[0] == "push":
		return c.parsePush(tok[1:])
	case tok[0] == "poke":
		return c.parsePoke(tok[1:])
	case tok[0] == "peek":
		return c.parsePeek(tok[1:])
	case tok[0] == "pop":
		return c.parsePop(tok[1:])
	case tok[0] == "jump":
		return c.parseJump(tok[1:])
	case tok[0] == "do":
		return c.parseDo(tok[1:])
	case tok[0] == "while":
		return c.parseWhile(tok[1:])
	case tok[0] == "loop":
		return c.parseLoop(tok[1:])
	case tok[0] == "break":
		return c.parseBreak(tok[1:])
	case tok[0] == "continue":
		return c.parseContinue(tok[1:])
	case tok[0] == "if":
		return c.parseIf(tok[1:])
	case tok[0] == "fn":
		return c.parseFunction(tok[1:])
	case tok[0] == "return":
		return c.parseReturn(tok[1:])
	case tok[0] == "call":
		return c.parseCall(tok[1:])
	case tok[0] == "let":
		return c.parseLet(tok[1:])
	case tok[0] == "}":
		return c.parseClosingBrace(tok[1:])
	case tok[0] == "op":
		return c.parseOp(tok[1:])
	case tok[0] == "set":
		return c.parseSet(line)
	case tok[0] == "print":
		return c.parsePrint(line)
	default:
		return c.parseMindustryCommand(tok)
	}
}

func (c *parserContext) parseCallproc(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	if len(tok) != 1 {
		return nil, fmt.Errorf("form is `callproc label`")
	}
	return ir.Sequence{&ir.CallProcOp{Target: types.LabelName(tok[0])}}, nil
}

func (c *parserContext) parseRet(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	if len(tok) != 0 {
		return nil, fmt.Errorf("form is `ret`")
	}
	return ir.Sequence{&ir.RetProcOp{}}, nil
}

func (c *parserContext) parseLabel(name string) (ir.Sequence, error) {
	target := types.LabelName(name)
	if _, dup := c.labels[target]; dup {
		return nil, fmt.Errorf("label %s is defined a second time here", target)
	}
	c.labels[target] = c.instructionCount
	return ir.Sequence{&ir.LabelOp{Target: target}}, nil
}

func (c *parserContext) parsePush(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	if len(tok) != 0 {
		return nil, fmt.Errorf("form is `push`")
	}
	return ir.Sequence{&ir.PushOp{}}, nil
}

func (c *parserContext) parsePop(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	if len(tok) != 0 {
		return nil, fmt.Errorf("form is `pop`")
	}
	return ir.Sequence{&ir.PopOp{}}, nil
}

func (c *parserContext) parseDepthArg(tok []string, form string) (types.MindustryTerm, error) {
	if err := c.requireStack(); err != nil {
		return "", err
	}
	switch len(tok) {
	case 0:
		return types.ZeroLiteral, nil
	case 1:
		return types.ParseMindustryTerm(tok[0])
	default:
		return "", fmt.Errorf("form is `%s`", form)
	}
}

func (c *parserContext) parsePeek(tok []string) (ir.Sequence, error) {
	depth, err := c.parseDepthArg(tok, "peek [depth]")
	if err != nil {
		return nil, err
	}
	return ir.Sequence{&ir.PeekOp{Depth: depth}}, nil
}

func (c *parserContext) parsePoke(tok []string) (ir.Sequence, error) {
	depth, err := c.parseDepthArg(tok, "poke [depth]")
	if err != nil {
		return nil, err
	}
	return ir.Sequence{&ir.PokeOp{Depth: depth}}, nil
}

func (c *parserContext) parseJump(tok []string) (ir.Sequence, error) {
	if len(tok) < 2 {
		return nil, fmt.Errorf("form is `jump label condition`")
	}

	seq, condition, err := c.parseCondition(tok[1:])
	if err != nil {
		return nil, fmt.Errorf("jump condition: %w", err)
	}

	target := types.LabelName(tok[0])
	seq = append(seq, &ir.JumpOp{Target: target, Condition: condition})
	return seq, nil
}

func (c *parserContext) parseWhile(tok []string) (ir.Sequence, error) {
	if len(tok) == 0 || tok[len(tok)-1] != "{" {
		return nil, fmt.Errorf("form is `while condition {`")
	}

	endSeq, condition, err := c.parseCondition(tok[:len(tok)-1])
	if err != nil {
		return nil, fmt.Errorf("while condition: %w", err)
	}
	op := ir.NewWhileOp(c.instructionCount, endSeq, condition)

	c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)))

	return ir.Sequence{op}, nil
}

func (c *parserContext) parseDo(tok []string) (ir.Sequence, error) {
	if len(tok) != 1 || tok[0] != "{" {
		return nil, fmt.Errorf("form is `do {`")
	}
	c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)))
	return ir.Sequence{ir.NewDoWhileOp(c.instructionCount)}, nil
}

func (c *parserContext) parseLoop(tok []string) (ir.Sequence, error) {
	if len(tok) != 1 || tok[0] != "{" {
		return nil, fmt.Errorf("form is `loop {`")
	}
	c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)))
	return ir.Sequence{ir.NewInfiniteLoopOp(c.instructionCount)}, nil
}

func (c *parserContext) parseBreak(tok []string) (ir.Sequence, error) {
	if len(tok) != 0 {
		return nil, fmt.Errorf("form is `break`")
	}
	index, err := c.findEnclosingLoopIndex()
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, fmt.Errorf("break not valid outside a loop")
	}
	return ir.Sequence{&ir.BreakOp{Index: *index}}, nil
}

func (c *parserContext) parseContinue(tok []string) (ir.Sequence, error) {
	if len(tok) != 0 {
		return nil, fmt.Errorf("form is `continue`")
	}
	index, err := c.findEnclosingLoopIndex()
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, fmt.Errorf("continue not valid outside a loop")
	}
	return ir.Sequence{&ir.ContinueOp{Index: *index}}, nil
}

func (c *parserContext) parseIf(tok []string) (ir.Sequence, error) {
	if len(tok) == 0 || tok[len(tok)-1] != "{" {
		return nil, fmt.Errorf("form is `if condition {`")
	}

	seq, condition, err := c.parseCondition(tok[:len(tok)-1])
	if err != nil {
		return nil, fmt.Errorf("if condition: %w", err)
	}

	c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)+len(seq)))

	seq = append(seq, ir.NewIfOp(condition))
	return seq, nil
}

func (c *parserContext) parseFunction(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	// Signature already validated during the first pass.
	name := types.FunctionName(tok[0])
	function := c.functions[name]
	function.StartParse(c.instructionCount)

	c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)))

	return ir.Sequence{function}, nil
}

func (c *parserContext) parseReturn(valueNames []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	functionName, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}
	if functionName == nil {
		return nil, fmt.Errorf("return may not be used outside a function")
	}
	function := c.functions[*functionName]
	op, err := ir.NewReturnOp(function, valueNames, c.backend)
	if err != nil {
		return nil, fmt.Errorf("in function %s with values %v: %w", functionName, valueNames, err)
	}
	return ir.Sequence{op}, nil
}

// parseCallVariable validates a call argument or return binding name: if it
// names a stack variable, the call site must be inside a function whose
// frame declares it.
func (c *parserContext) parseCallVariable(name string, functionName *types.FunctionName) (types.Term, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	arg, err := types.ParseTerm(name)
	if err != nil {
		return nil, err
	}
	stackArg, isStack := arg.(types.StackVar)
	if !isStack {
		return arg, nil
	}
	if functionName == nil {
		return nil, fmt.Errorf("%s is a stack variable and may only be used inside a function", stackArg)
	}
	function := c.functions[*functionName]
	if _, ok := function.Locals[stackArg]; !ok {
		return nil, fmt.Errorf("function %s does not have stack variable %s", *functionName, stackArg)
	}
	return arg, nil
}

func (c *parserContext) parseCall(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	if len(tok) < 1 {
		return nil, fmt.Errorf("form is `call name [args] [-> return_values]`")
	}

	name := types.FunctionName(tok[0])
	argNames, returnNames, err := parseArrow(tok[1:])
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	callSiteFunction, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}

	args := make([]types.Term, 0, len(argNames))
	for j, arg := range argNames {
		v, err := c.parseCallVariable(arg, callSiteFunction)
		if err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", j, arg, err)
		}
		args = append(args, v)
	}

	returns := make([]types.Term, 0, len(returnNames))
	for j, ret := range returnNames {
		v, err := c.parseCallVariable(ret, callSiteFunction)
		if err != nil {
			return nil, fmt.Errorf("return binding %d %q: %w", j, ret, err)
		}
		for _, existing := range returns {
			if existing == v {
				return nil, fmt.Errorf("return binding %d %q is duplicated", j, ret)
			}
		}
		returns = append(returns, v)
	}

	function, ok := c.functions[name]
	if !ok {
		return nil, fmt.Errorf("function definition for %s not found", name)
	}
	if len(function.Args) != len(args) {
		return nil, fmt.Errorf("function %s takes %d args but called with %d values", name, len(function.Args), len(args))
	}
	if len(function.Returns) != len(returns) {
		return nil, fmt.Errorf("function %s returns %d values but call binds %d", name, len(function.Returns), len(returns))
	}

	op := ir.NewCallOp(args, returns, len(function.Locals), name, callSiteFunction, c.backend)
	return ir.Sequence{op}, nil
}

func (c *parserContext) parseLet(tok []string) (ir.Sequence, error) {
	if err := c.requireStack(); err != nil {
		return nil, err
	}
	// The slot itself was already reserved during the first pass; this
	// merely emits the annotated no-op marking its position.
	functionName, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}
	if functionName == nil {
		return nil, fmt.Errorf("let may not be used outside a function")
	}
	function := c.functions[*functionName]
	name, err := types.ParseStackVar(tok[0])
	if err != nil {
		return nil, err
	}
	pos, ok := function.Locals[name]
	if !ok {
		return nil, fmt.Errorf("internal error: let variable %s not reserved during preparse", name)
	}
	return ir.Sequence{&ir.LetOp{Name: name, Pos: pos}}, nil
}

func (c *parserContext) parseOp(tok []string) (ir.Sequence, error) {
	if len(tok) != 4 {
		return nil, fmt.Errorf("form is `op operation dest arg1 arg2`")
	}
	operation := tok[0]
	dest, err := types.ParseTerm(tok[1])
	if err != nil {
		return nil, fmt.Errorf("op dest: %w", err)
	}
	arg1, err := types.ParseTerm(tok[2])
	if err != nil {
		return nil, fmt.Errorf("op arg1: %w", err)
	}
	arg2, err := types.ParseTerm(tok[3])
	if err != nil {
		return nil, fmt.Errorf("op arg2: %w", err)
	}

	function, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}

	read, mDest, mArg1, mArg2, write, err := ir.ReadTwoWriteOne(dest, arg1, arg2, function)
	if err != nil {
		return nil, err
	}

	seq := append(ir.Sequence{}, read...)
	seq = append(seq, &ir.MathOp{Operation: operation, Dest: mDest, Arg1: mArg1, Arg2: mArg2})
	seq = append(seq, write...)
	return seq, nil
}

func (c *parserContext) parsePrint(line string) (ir.Sequence, error) {
	rest := strings.TrimSpace(line)
	if len(rest) < 5 {
		return nil, fmt.Errorf("form is `print value`")
	}
	valueText := strings.TrimSpace(rest[5:])
	if valueText == "" {
		return nil, fmt.Errorf("form is `print value`")
	}
	value, err := types.ParseTerm(valueText)
	if err != nil {
		return nil, fmt.Errorf("print value: %w", err)
	}

	function, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}

	seq, mValue, err := ir.ReadOneArg(value, function)
	if err != nil {
		return nil, err
	}

	cmd, err := types.NewMindustryCommand([]string{"print", string(mValue)})
	if err != nil {
		return nil, fmt.Errorf("print command: %w", err)
	}
	seq = append(seq, &ir.MindustryOp{Command: cmd})
	return seq, nil
}

func (c *parserContext) parseSet(line string) (ir.Sequence, error) {
	rest := strings.TrimSpace(line)
	if len(rest) < 3 {
		return nil, fmt.Errorf("form is `set dest source`")
	}
	rest = strings.TrimSpace(rest[3:])

	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		return nil, fmt.Errorf("form is `set dest source`")
	}
	destText := rest[:i]
	sourceText := strings.TrimSpace(rest[i+1:])
	if sourceText == "" {
		return nil, fmt.Errorf("form is `set dest source`")
	}

	dest, err := types.ParseTerm(destText)
	if err != nil {
		return nil, fmt.Errorf("set dest: %w", err)
	}
	source, err := types.ParseTerm(sourceText)
	if err != nil {
		return nil, fmt.Errorf("set source: %w", err)
	}

	function, err := c.findEnclosingFunction()
	if err != nil {
		return nil, err
	}
	return ir.CopyArg(dest, source, function)
}

func (c *parserContext) parseClosingBrace(tok []string) (ir.Sequence, error) {
	if len(c.scopeStack) == 0 {
		return nil, fmt.Errorf("unmatched closing }")
	}
	openIndex := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]

	if len(tok) == 0 {
		return c.handleSingleClosingBrace(openIndex)
	}
	return c.handleClosingBraceMore(tok, openIndex)
}

func (c *parserContext) parseMindustryCommand(tok []string) (ir.Sequence, error) {
	cmd, err := types.NewMindustryCommand(tok)
	if err != nil {
		return nil, fmt.Errorf("mindustry command: %w", err)
	}
	return ir.Sequence{&ir.MindustryOp{Command: cmd}}, nil
}

// parseCondition lowers a jump/if/while condition's tokens, reading any
// stack-variable operands into temporaries first.
func (c *parserContext) parseCondition(tok []string) (ir.Sequence, types.Condition, error) {
	function, err := c.findEnclosingFunction()
	if err != nil {
		return nil, types.Condition{}, err
	}
	return parseConditionTokens(function, tok)
}

func parseConditionTokens(function *types.FunctionName, tok []string) (ir.Sequence, types.Condition, error) {
	if len(tok) == 0 {
		return nil, types.Condition{}, fmt.Errorf("condition form is `cond a b`, `always`, or `never`")
	}

	if tok[0] == "always" {
		return nil, types.AlwaysCondition(), nil
	}
	if tok[0] == "never" {
		return nil, types.NeverCondition(), nil
	}

	if len(tok) != 3 {
		return nil, types.Condition{}, fmt.Errorf("condition form is `cond a b`, `always`, or `never`")
	}

	cond := tok[0]
	arg1, err := types.ParseTerm(tok[1])
	if err != nil {
		return nil, types.Condition{}, fmt.Errorf("condition arg1: %w", err)
	}
	arg2, err := types.ParseTerm(tok[2])
	if err != nil {
		return nil, types.Condition{}, fmt.Errorf("condition arg2: %w", err)
	}

	readSeq, mArg1, mArg2, err := ir.ReadTwoArgs(arg1, arg2, function)
	if err != nil {
		return nil, types.Condition{}, err
	}

	condition, err := types.NewCondition(cond, mArg1, mArg2)
	if err != nil {
		return nil, types.Condition{}, fmt.Errorf("condition: %w", err)
	}

	return readSeq, condition, nil
}

// findEnclosingFunction walks the scope stack from the top, skipping
// if/else/loop scopes, to find the innermost function this line is within
// (nil at global scope).
func (c *parserContext) findEnclosingFunction() (*types.FunctionName, error) {
	return findEnclosingFunctionInternal(c.scopeStack, c.ops)
}

func findEnclosingFunctionInternal(scopeStack []types.IrIndex, ops []ir.Operation) (*types.FunctionName, error) {
	for i := len(scopeStack) - 1; i >= 0; i-- {
		switch o := ops[scopeStack[i].Int()].(type) {
		case *ir.InfiniteLoopOp, *ir.DoWhileOp, *ir.WhileOp, *ir.IfOp, *ir.ElseOp:
			// Not a function boundary; keep walking up.
		case *ir.FunctionOp:
			name := o.Name
			return &name, nil
		default:
			return nil, fmt.Errorf("internal error: unexpected op %T on scope stack", o)
		}
	}
	return nil, nil
}

// findEnclosingLoopIndex walks the scope stack from the top, skipping
// if/else scopes, stopping at the nearest enclosing loop or function
// boundary (break/continue may not cross into an enclosing function).
func (c *parserContext) findEnclosingLoopIndex() (*types.IrIndex, error) {
	for i := len(c.scopeStack) - 1; i >= 0; i-- {
		idx := c.scopeStack[i]
		switch c.ops[idx.Int()].(type) {
		case *ir.InfiniteLoopOp, *ir.DoWhileOp, *ir.WhileOp:
			return &idx, nil
		case *ir.IfOp, *ir.ElseOp:
			// Keep walking up.
		case *ir.FunctionOp:
			return nil, nil
		default:
			return nil, fmt.Errorf("internal error: unexpected op on scope stack")
		}
	}
	return nil, nil
}

func (c *parserContext) handleClosingBraceMore(tok []string, openIndex types.IrIndex) (ir.Sequence, error) {
	enclosingFunction, err := findEnclosingFunctionInternal(c.scopeStack, c.ops)
	if err != nil {
		return nil, err
	}

	switch {
	case len(tok) == 2 && tok[0] == "else" && tok[1] == "{":
		ifOp, ok := c.ops[openIndex.Int()].(*ir.IfOp)
		if !ok {
			return nil, fmt.Errorf("else does not match an if statement structurally")
		}
		elseOp := ir.DeclareElseOp()
		ifOp.ResolveForward(c.instructionCount.Add(elseOp.CodeSize(c.backend)))
		c.scopeStack = append(c.scopeStack, types.IrIndex(len(c.ops)))
		return ir.Sequence{elseOp}, nil

	case len(tok) >= 1 && tok[0] == "while":
		doWhileOp, ok := c.ops[openIndex.Int()].(*ir.DoWhileOp)
		if !ok {
			return nil, fmt.Errorf("`} while x y z` is only valid closing a do-while loop")
		}
		endSeq, condition, err := parseConditionTokens(enclosingFunction, tok[1:])
		if err != nil {
			return nil, fmt.Errorf("do-while condition: %w", err)
		}
		return doWhileOp.ResolveForward(c.instructionCount, endSeq, condition, c.backend), nil

	default:
		return nil, fmt.Errorf("unknown form of closing brace: %v", tok)
	}
}

func (c *parserContext) handleSingleClosingBrace(openIndex types.IrIndex) (ir.Sequence, error) {
	switch op := c.ops[openIndex.Int()].(type) {
	case *ir.ElseOp:
		op.ResolveForward(c.instructionCount)
		return nil, nil
	case *ir.InfiniteLoopOp:
		return op.ResolveForward(c.instructionCount), nil
	case *ir.FunctionOp:
		// Nothing checks that every path through a function returns: doing
		// so needs full control-flow analysis this line-oriented parser
		// doesn't do. Falling off the end of a function is undefined
		// behavior, just as in the reference implementation this is ported
		// from. (A return with the wrong arity is rejected by NewReturnOp.)
		return nil, nil
	case *ir.IfOp:
		op.ResolveForward(c.instructionCount)
		return nil, nil
	case *ir.WhileOp:
		return op.ResolveForward(c.instructionCount, c.backend), nil
	default:
		return nil, fmt.Errorf("internal error: unexpected op %T on scope stack", op)
	}
}

// parseArrow splits tokens like `foo bar -> qux` on `->`. Tokens are all
// treated as preceding the arrow if none is present. More than one `->` is a
// syntax error.
func parseArrow(tokens []string) (before, after []string, err error) {
	index := -1
	for i, t := range tokens {
		if t == "->" {
			if index != -1 {
				return nil, nil, fmt.Errorf("at most one -> is allowed")
			}
			index = i
		}
	}
	if index == -1 {
		return tokens, nil, nil
	}
	return tokens[:index], tokens[index+1:], nil
}

// cleanLine trims whitespace and any number of trailing semicolons (a
// convenience for C-like syntax habits; semicolons are never required and
// never ambiguous with anything else in this grammar).
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	for strings.HasSuffix(line, ";") {
		line = strings.TrimSpace(line[:len(line)-1])
	}
	return line
}

func lexLine(line string) []string {
	return strings.Fields(line)
}
