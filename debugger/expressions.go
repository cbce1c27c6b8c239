package debugger

import (
	"fmt"
	"strings"

	"github.com/calmofthestorm/routerbolt/emulator"
)

// ExpressionEvaluator evaluates breakpoint conditions and watch expressions
// against a running emulator, and remembers past results for $1, $2, etc.
// references.
type ExpressionEvaluator struct {
	valueHistory []uint64
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, emu *emulator.Emulator) (uint64, error) {
	result, err := e.evaluate(expr, emu)
	if err != nil {
		return 0, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates expr as a boolean condition (nonzero is true).
func (e *ExpressionEvaluator) Evaluate(expr string, emu *emulator.Emulator) (bool, error) {
	result, err := e.evaluate(expr, emu)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the current value number.
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number ($1 is the first).
func (e *ExpressionEvaluator) GetValue(number int) (uint64, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

// evaluate lexes and parses expr, then evaluates it against emu.
func (e *ExpressionEvaluator) evaluate(expr string, emu *emulator.Emulator) (uint64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	parser := NewExprParser(tokens, emu, e)
	return parser.Parse()
}

// Reset clears the value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
