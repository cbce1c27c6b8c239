// Package tools provides static analysis and listing-formatting utilities
// that operate on an already-lowered ir.IntermediateRepresentation: a
// cross-reference table (xref.go), a lint pass (lint.go), and an annotated-
// listing formatter (format.go).
package tools

import (
	"fmt"
	"sort"

	"github.com/calmofthestorm/routerbolt/ir"
)

// ReferenceType indicates how a symbol is used.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // Label or function defined here
	RefJump                           // Jump target
	RefCallProc                       // callproc target
	RefCall                           // Function call
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefJump:
		return "jump"
	case RefCallProc:
		return "callproc"
	case RefCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reference is a single use of a symbol at a given op index.
type Reference struct {
	Type    ReferenceType
	OpIndex int
}

// Symbol is a label or function and every reference to it.
type Symbol struct {
	Name       string
	IsFunction bool
	Definition *Reference
	References []*Reference
}

// CrossReference walks every op in program and returns one Symbol per label
// and function name, each carrying its definition site (if any, for a
// forward-referenced call) and every use site.
func CrossReference(program *ir.IntermediateRepresentation) map[string]*Symbol {
	symbols := make(map[string]*Symbol)

	get := func(name string, isFunction bool) *Symbol {
		s, ok := symbols[name]
		if !ok {
			s = &Symbol{Name: name, IsFunction: isFunction}
			symbols[name] = s
		}
		return s
	}

	for i, op := range program.Ops {
		switch o := op.(type) {
		case *ir.LabelOp:
			s := get(string(o.Target), false)
			s.Definition = &Reference{Type: RefDefinition, OpIndex: i}
		case *ir.JumpOp:
			s := get(string(o.Target), false)
			s.References = append(s.References, &Reference{Type: RefJump, OpIndex: i})
		case *ir.CallProcOp:
			s := get(string(o.Target), false)
			s.References = append(s.References, &Reference{Type: RefCallProc, OpIndex: i})
		case *ir.FunctionOp:
			s := get(string(o.Name), true)
			s.Definition = &Reference{Type: RefDefinition, OpIndex: i}
		case *ir.CallOp:
			s := get(string(o.TargetFunction), true)
			s.References = append(s.References, &Reference{Type: RefCall, OpIndex: i})
		}
	}

	return symbols
}

// SortedNames returns symbols' names in a stable, alphabetical order, useful
// for deterministic report output.
func SortedNames(symbols map[string]*Symbol) []string {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report renders a human-readable cross-reference listing.
func Report(symbols map[string]*Symbol) string {
	var out string
	for _, name := range SortedNames(symbols) {
		s := symbols[name]
		kind := "label"
		if s.IsFunction {
			kind = "function"
		}
		defLine := "undefined"
		if s.Definition != nil {
			defLine = fmt.Sprintf("op %d", s.Definition.OpIndex)
		}
		out += fmt.Sprintf("%s %s: defined at %s, %d reference(s)\n", kind, s.Name, defLine, len(s.References))
	}
	return out
}
