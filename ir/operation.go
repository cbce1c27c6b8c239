// Package ir defines the intermediate representation lowered from parsed
// source: one Operation per IR instruction, each capable of reporting how
// many target-program lines it will emit and of emitting them.
package ir

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/types"
)

// Output accumulates the generated target program alongside a parallel,
// human-readable annotated listing. Operations append to both through Emit
// and Note; the line-number annotations themselves are stitched in by
// Generate, once each Operation has reported how many lines it produced.
type Output struct {
	Lines     []string
	Annotated []string
}

// Emit appends one line to the generated target program.
func (o *Output) Emit(format string, args ...interface{}) {
	o.Lines = append(o.Lines, fmt.Sprintf(format, args...))
}

// Note appends a descriptive comment to the annotated listing, ahead of the
// numbered lines Generate will attach for this operation.
func (o *Output) Note(format string, args ...interface{}) {
	o.Annotated = append(o.Annotated, fmt.Sprintf(format, args...))
}

// Operation is one node of the intermediate representation. There is no AST:
// the flat op sequence doubles as it, and structured constructs (if/while/
// function) desugar into plain jumps resolved against addresses computed as
// parsing proceeds.
type Operation interface {
	// CodeSize reports how many lines of target program this op will emit
	// under the given backend.
	CodeSize(backend Backend) types.AddressDelta

	// Generate appends this op's target-program lines (and annotated
	// comments) to out.
	Generate(ir *IntermediateRepresentation, out *Output) error
}
