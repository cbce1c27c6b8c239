package ir

import "github.com/calmofthestorm/routerbolt/types"

// Backend selects how the compiled stack is implemented.
type Backend int

const (
	// BackendInternal stores the stack in a jump table synthesized into the
	// program itself.
	BackendInternal Backend = iota
	// BackendExternal stores the stack in a named memory bank/cell.
	BackendExternal
)

// StackConfig is the parsed `stack_config` directive (or its default, an
// internal stack of size 0, i.e. disabled).
type StackConfig struct {
	// Internal is true for `stack_config size N`, false for
	// `stack_config cell NAME`.
	Internal bool
	Size     int
	CellName string
}

// HasStack reports whether any stack operation (push/pop/peek/poke/callproc/
// function calls) is usable with this configuration.
func (c StackConfig) HasStack() bool {
	return !c.Internal || c.Size > 0
}

// Backend returns the codegen backend implied by this configuration.
func (c StackConfig) Backend() Backend {
	if c.Internal {
		return BackendInternal
	}
	return BackendExternal
}

// InternalParams locates the synthesized push/pop/poke jump tables once the
// program's total instruction count is known.
type InternalParams struct {
	PushEntrySize  types.AddressDelta
	PopEntrySize   types.AddressDelta
	PokeEntrySize  types.AddressDelta
	PushTableStart types.Address
	PopTableStart  types.Address
	PokeTableStart types.Address
}

// ExternalParams names the memory cell backing the stack.
type ExternalParams struct {
	CellName string
}

// BackendParams holds exactly one of Internal or External, matching which
// Backend is in effect.
type BackendParams struct {
	Internal *InternalParams
	External *ExternalParams
}

const (
	internalPushEntrySize = 3
	internalPopEntrySize  = 2
	internalPokeEntrySize = 2
)

// NewInternalParams locates the push/pop/poke dispatch tables that codegen
// will append after the final ordinary instruction at instructionCount, for
// an internal stack of the given size.
func NewInternalParams(size int, instructionCount types.Address) *InternalParams {
	pushEntrySize := types.AddressDelta(internalPushEntrySize)
	popEntrySize := types.AddressDelta(internalPopEntrySize)
	pokeEntrySize := types.AddressDelta(internalPokeEntrySize)

	// +1 for the synthesized `end` separating ordinary code from the tables.
	pushTableStart := instructionCount.Add(1)
	popTableStart := pushTableStart.Add(pushEntrySize.Mul(size))
	pokeTableStart := popTableStart.Add(popEntrySize.Mul(size))

	return &InternalParams{
		PushEntrySize:  pushEntrySize,
		PopEntrySize:   popEntrySize,
		PokeEntrySize:  pokeEntrySize,
		PushTableStart: pushTableStart,
		PopTableStart:  popTableStart,
		PokeTableStart: pokeTableStart,
	}
}
