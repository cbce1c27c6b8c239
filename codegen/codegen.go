// Package codegen renders a parsed ir.IntermediateRepresentation into the
// flat, line-numbered instruction stream the emulator runs, alongside a
// parallel annotated listing for humans.
package codegen

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/ir"
	"github.com/calmofthestorm/routerbolt/types"
)

// Generate renders program to its target instruction stream and a parallel
// annotated listing. When the backend is internal and the configured stack
// size is nonzero, the internal push/pop/poke dispatch tables are appended
// after a synthesized `end`.
func Generate(program *ir.IntermediateRepresentation) (output []string, annotated []string, err error) {
	out := &ir.Output{}
	instructionCount := types.Address(0)

	for _, op := range program.Ops {
		annotationStart := len(out.Lines)

		if err := op.Generate(program, out); err != nil {
			return nil, nil, err
		}
		if emitted, size := len(out.Lines)-annotationStart, op.CodeSize(program.Backend()).Int(); emitted != size {
			panic(fmt.Sprintf("internal error: %T reported code size %d but emitted %d lines", op, size, emitted))
		}

		for j, line := range out.Lines[annotationStart:] {
			out.Annotated = append(out.Annotated, fmt.Sprintf("%d\t%s", instructionCount.Add(types.AddressDelta(j)), line))
		}
		out.Annotated = append(out.Annotated, "")

		instructionCount = instructionCount.Add(op.CodeSize(program.Backend()))
	}

	if program.Backend() == ir.BackendInternal {
		generateInternalStack(program.StackConfig, out, &instructionCount)
	}

	return out.Lines, out.Annotated, nil
}

func generateInternalStack(config ir.StackConfig, out *ir.Output, ic *types.Address) {
	if !config.Internal || config.Size == 0 {
		return
	}
	size := config.Size

	out.Annotated = append(out.Annotated, fmt.Sprintf("\n Begin stack of size %d", size))

	out.Lines = append(out.Lines, "end")
	out.Annotated = append(out.Annotated,
		"// End before stack table (annotations do not show the actual generated stack because it is so long)",
		"end",
		"")
	*ic = ic.Add(1)

	genTable("push", size, out, ic, genPush)
	genTable("pop", size, out, ic, genPop)
	genTable("poke", size, out, ic, genPoke)
}

func genTable(name string, stackSize int, out *ir.Output, instructionCount *types.Address, generateEntry func(index int, lines *[]string)) {
	for j := 0; j < stackSize; j++ {
		start := len(out.Lines)

		out.Annotated = append(out.Annotated, fmt.Sprintf("// Stack %s table index %d", name, j))

		generateEntry(j, &out.Lines)

		for k, line := range out.Lines[start:] {
			out.Annotated = append(out.Annotated, fmt.Sprintf("%d\t%s", instructionCount.Add(types.AddressDelta(k)), line))
		}
		out.Annotated = append(out.Annotated, "")

		*instructionCount = instructionCount.Add(types.AddressDelta(len(out.Lines) - start))
	}
}

func genPop(index int, lines *[]string) {
	*lines = append(*lines, fmt.Sprintf("set MF_acc MF_stack[%d]", index), "set @counter MF_resume")
}

func genPoke(index int, lines *[]string) {
	*lines = append(*lines, fmt.Sprintf("set MF_stack[%d] MF_acc", index), "set @counter MF_resume")
}

func genPush(index int, lines *[]string) {
	*lines = append(*lines,
		fmt.Sprintf("set MF_stack[%d] MF_acc", index),
		"op add MF_stack_sz MF_stack_sz 1",
		"set @counter MF_resume")
}
