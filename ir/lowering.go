package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// Sequence is a position-independent run of ops, used when lowering a single
// surface-syntax statement (e.g. `op add *a *b *c`) may require reading
// stack operands before the operation and/or writing a stack result after
// it.
type Sequence []Operation

func (s Sequence) CodeSize(backend Backend) types.AddressDelta {
	var total types.AddressDelta
	for _, op := range s {
		total += op.CodeSize(backend)
	}
	return total
}

var errStackVarOutsideFunction = fmt.Errorf("stack variables (start with *) may not be used outside a function")

// CopyArg lowers `set dest source`, where either or both operands may live
// on the stack, into the ops needed to move the value, using the
// accumulator as a relay when both sides are stack-local.
func CopyArg(dest, source types.Term, function *types.FunctionName) (Sequence, error) {
	switch src := source.(type) {
	case types.MindustryTerm:
		switch d := dest.(type) {
		case types.MindustryTerm:
			return Sequence{&SetOp{Dest: d, Source: src}}, nil
		case types.StackVar:
			if function == nil {
				return nil, errStackVarOutsideFunction
			}
			return Sequence{&SetStackOp{Global: src, Stack: d, Function: *function}}, nil
		}
	case types.StackVar:
		switch d := dest.(type) {
		case types.MindustryTerm:
			if function == nil {
				return nil, errStackVarOutsideFunction
			}
			return Sequence{&GetStackOp{Global: d, Stack: src, Function: *function}}, nil
		case types.StackVar:
			if function == nil {
				return nil, errStackVarOutsideFunction
			}
			acc := types.Accumulator
			return Sequence{
				&GetStackOp{Global: acc, Stack: src, Function: *function},
				&SetStackOp{Global: acc, Stack: d, Function: *function},
			}, nil
		}
	}
	return nil, errStackVarOutsideFunction
}

// WriteOne returns the Mindustry-side term to write a computed result into
// (possibly the accumulator, if dest is a stack variable) and the sequence
// that relays the accumulator into the stack afterward.
func WriteOne(dest types.Term, function *types.FunctionName) (types.MindustryTerm, Sequence, error) {
	switch d := dest.(type) {
	case types.MindustryTerm:
		return d, nil, nil
	case types.StackVar:
		if function == nil {
			return "", nil, errStackVarOutsideFunction
		}
		acc := types.Accumulator
		return acc, Sequence{&SetStackOp{Global: acc, Stack: d, Function: *function}}, nil
	}
	return "", nil, errStackVarOutsideFunction
}

// ReadOneArg returns the sequence needed to bring a (possibly stack-local)
// operand into a Mindustry-side term, and that term.
func ReadOneArg(arg types.Term, function *types.FunctionName) (Sequence, types.MindustryTerm, error) {
	switch a := arg.(type) {
	case types.MindustryTerm:
		return nil, a, nil
	case types.StackVar:
		if function == nil {
			return nil, "", errStackVarOutsideFunction
		}
		acc := types.Accumulator
		return Sequence{&GetStackOp{Global: acc, Stack: a, Function: *function}}, acc, nil
	}
	return nil, "", errStackVarOutsideFunction
}

// ReadTwoArgs is like ReadOneArg for two operands at once. When both are
// stack-local, the first is staged through MF_stack_tmp since GetStackOp
// clobbers the accumulator and the second op must be the one that sets it.
func ReadTwoArgs(arg1, arg2 types.Term, function *types.FunctionName) (Sequence, types.MindustryTerm, types.MindustryTerm, error) {
	if arg1 == arg2 {
		seq, a, err := ReadOneArg(arg1, function)
		if err != nil {
			return nil, "", "", err
		}
		return seq, a, a, nil
	}

	m1, isM1 := arg1.(types.MindustryTerm)
	m2, isM2 := arg2.(types.MindustryTerm)
	s1, isS1 := arg1.(types.StackVar)
	s2, isS2 := arg2.(types.StackVar)

	switch {
	case isM1 && isM2:
		return nil, m1, m2, nil
	case isS1 && isM2:
		if function == nil {
			return nil, "", "", errStackVarOutsideFunction
		}
		acc := types.Accumulator
		return Sequence{&GetStackOp{Global: acc, Stack: s1, Function: *function}}, acc, m2, nil
	case isM1 && isS2:
		if function == nil {
			return nil, "", "", errStackVarOutsideFunction
		}
		acc := types.Accumulator
		return Sequence{&GetStackOp{Global: acc, Stack: s2, Function: *function}}, m1, acc, nil
	case isS1 && isS2:
		if function == nil {
			return nil, "", "", errStackVarOutsideFunction
		}
		tmp := types.StackTemp
		acc := types.Accumulator
		seq := Sequence{
			&GetStackOp{Global: tmp, Stack: s1, Function: *function},
			// Careful: GetStackOp uses the accumulator, so the op that sets
			// it must be emitted second.
			&GetStackOp{Global: acc, Stack: s2, Function: *function},
		}
		return seq, tmp, acc, nil
	}
	return nil, "", "", errStackVarOutsideFunction
}

// ReadTwoWriteOne lowers `op <operation> dest arg1 arg2`: read both operands
// (sharing one read if they name the same stack variable), returning the
// Mindustry-side dest/arg1/arg2 to compute with and the sequence that writes
// the result back afterward.
func ReadTwoWriteOne(dest, arg1, arg2 types.Term, function *types.FunctionName) (read Sequence, d, a1, a2 types.MindustryTerm, write Sequence, err error) {
	read, a1, a2, err = ReadTwoArgs(arg1, arg2, function)
	if err != nil {
		return nil, "", "", "", nil, err
	}
	d, write, err = WriteOne(dest, function)
	if err != nil {
		return nil, "", "", "", nil, err
	}
	return read, d, a1, a2, write, nil
}
