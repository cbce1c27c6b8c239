package types

import "fmt"

// FrameIndex is a local variable's position relative to the start of a
// function's stack frame, counting from the first argument.
type FrameIndex int

func (f FrameIndex) String() string { return fmt.Sprintf("%d", int(f)) }

// Int returns the index as a plain int.
func (f FrameIndex) Int() int { return int(f) }

// StackDepth is the distance of a value from the top of the stack, used once
// a FrameIndex has been resolved against the frame size.
type StackDepth int

func (d StackDepth) String() string { return fmt.Sprintf("%d", int(d)) }

// Int returns the depth as a plain int.
func (d StackDepth) Int() int { return int(d) }

// IrIndex indexes into an IntermediateRepresentation's op list, used by
// Break/Continue to refer back to their enclosing loop without a forward
// reference.
type IrIndex int

func (i IrIndex) Int() int { return int(i) }
