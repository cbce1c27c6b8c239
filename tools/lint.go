package tools

import (
	"fmt"

	"github.com/calmofthestorm/routerbolt/ir"
)

// LintLevel represents the severity of a lint issue.
type LintLevel int

const (
	LintError   LintLevel = iota // Undefined references, definite bugs.
	LintWarning                  // Best-practice violations, likely bugs.
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding, keyed by the op index it was found at.
type LintIssue struct {
	Level   LintLevel
	OpIndex int
	Message string
	Code    string // e.g. "UNDEF_REF", "UNREACHABLE_CODE", "UNUSED_LABEL"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("op %d: %s: %s [%s]", i.OpIndex, i.Level, i.Message, i.Code)
}

// Lint runs every static check against an already-parsed program and
// returns every issue found, in op order.
func Lint(program *ir.IntermediateRepresentation) []*LintIssue {
	var issues []*LintIssue
	issues = append(issues, lintUndefinedReferences(program)...)
	issues = append(issues, lintUnusedLabels(program)...)
	issues = append(issues, lintUnreachableCode(program)...)
	return issues
}

// lintUndefinedReferences flags jump/callproc/call targets with no matching
// definition. The parser rejects a call to an undefined function, so call
// targets only fire here on an IntermediateRepresentation assembled by hand;
// an undefined jump or callproc label passes parsing and is otherwise only
// rejected when codegen.Generate resolves it.
func lintUndefinedReferences(program *ir.IntermediateRepresentation) []*LintIssue {
	var issues []*LintIssue
	symbols := CrossReference(program)
	for _, name := range SortedNames(symbols) {
		s := symbols[name]
		if s.Definition == nil {
			for _, ref := range s.References {
				issues = append(issues, &LintIssue{
					Level:   LintError,
					OpIndex: ref.OpIndex,
					Message: fmt.Sprintf("reference to undefined %s %q", ref.Type, name),
					Code:    "UNDEF_REF",
				})
			}
		}
	}
	return issues
}

// lintUnusedLabels flags a label that is defined but never jumped to or
// called -- dead code a reader would otherwise assume is a branch target.
func lintUnusedLabels(program *ir.IntermediateRepresentation) []*LintIssue {
	var issues []*LintIssue
	symbols := CrossReference(program)
	for _, name := range SortedNames(symbols) {
		s := symbols[name]
		if s.IsFunction {
			continue
		}
		if s.Definition != nil && len(s.References) == 0 {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				OpIndex: s.Definition.OpIndex,
				Message: fmt.Sprintf("label %q is never jumped to", name),
				Code:    "UNUSED_LABEL",
			})
		}
	}
	return issues
}

// lintUnreachableCode flags an op immediately following an unconditional
// jump or return, within the same op list, with no intervening label -- an
// unconditional jump never falls through, so nothing between it and the next
// label can run.
func lintUnreachableCode(program *ir.IntermediateRepresentation) []*LintIssue {
	var issues []*LintIssue
	for i := 0; i+1 < len(program.Ops); i++ {
		if !isUnconditionalExit(program.Ops[i]) {
			continue
		}
		switch program.Ops[i+1].(type) {
		case *ir.LabelOp, *ir.FunctionOp, *ir.ElseOp, *ir.LoopEndOp:
			continue
		}
		issues = append(issues, &LintIssue{
			Level:   LintWarning,
			OpIndex: i + 1,
			Message: "unreachable: immediately follows an unconditional jump or return",
			Code:    "UNREACHABLE_CODE",
		})
	}
	return issues
}

func isUnconditionalExit(op ir.Operation) bool {
	switch o := op.(type) {
	case *ir.JumpOp:
		return o.Condition.Cond == "always"
	case *ir.ReturnOp, *ir.RetProcOp, *ir.BreakOp, *ir.ContinueOp:
		return true
	default:
		return false
	}
}
