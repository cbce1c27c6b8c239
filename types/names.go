package types

import (
	"errors"
	"strings"
)

// LabelName identifies a jump target declared with `label:`.
type LabelName string

func (n LabelName) String() string { return string(n) }

// FunctionName identifies a function declared with `fn name ... {`.
type FunctionName string

func (n FunctionName) String() string { return string(n) }

// MindustryCommand is a Mindustry instruction passed through unchanged,
// tokenized. None of its tokens may start with `*`, since stack variables
// are not supported there.
type MindustryCommand []string

func (c MindustryCommand) String() string { return strings.Join(c, " ") }

// NewMindustryCommand validates a tokenized passthrough command.
func NewMindustryCommand(tokens []string) (MindustryCommand, error) {
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "*") {
			return nil, errStackVarInCommand
		}
	}
	return MindustryCommand(tokens), nil
}

var errStackVarInCommand = errors.New("Mindustry commands and their args may not start with * since stack vars are not supported there")
