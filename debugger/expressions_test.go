package debugger

import (
	"testing"

	"github.com/calmofthestorm/routerbolt/emulator"
)

func TestExpressionEvaluatorNumbers(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	tests := []struct {
		name string
		expr string
		want uint64
	}{
		{"Decimal", "42", 42},
		{"Negative", "-1", 0xFFFFFFFFFFFFFFFF},
		{"Large", "1000000", 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, emu)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorVariables(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "set x 100\nset y 200\nend")
	emu.Run(10)

	tests := []struct {
		name string
		expr string
		want uint64
	}{
		{"x", "x", 100},
		{"y", "y", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, emu)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorCellSlot(t *testing.T) {
	eval := NewExpressionEvaluator()
	cell := emulator.NewCell("bank1")
	emu := mustEmulator(t, cell, "write 555 bank1 3\nend")
	emu.Run(10)

	got, err := eval.EvaluateExpression("@3", emu)
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if got != 555 {
		t.Errorf("EvaluateExpression(@3) = %d, want 555", got)
	}
}

func TestExpressionEvaluatorArithmetic(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	tests := []struct {
		name string
		expr string
		want uint64
	}{
		{"Addition", "10 + 20", 30},
		{"Subtraction", "50 - 20", 30},
		{"Multiplication", "5 * 6", 30},
		{"Division", "60 / 2", 30},
		{"Precedence", "2 + 3 * 4", 14},
		{"Parens", "(2 + 3) * 4", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, emu)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorComparisons(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "set x 5\nend")
	emu.Run(10)

	tests := []struct {
		name string
		expr string
		want uint64
	}{
		{"Equal true", "x == 5", 1},
		{"Equal false", "x == 6", 0},
		{"NotEqual", "x != 6", 1},
		{"LessThan", "x < 10", 1},
		{"GreaterThan", "x > 10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, emu)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorValueHistory(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	val1, _ := eval.EvaluateExpression("42", emu)
	val2, _ := eval.EvaluateExpression("100", emu)

	if eval.GetValueNumber() != 2 {
		t.Errorf("ValueNumber = %d, want 2", eval.GetValueNumber())
	}

	got1, err := eval.GetValue(1)
	if err != nil {
		t.Fatalf("GetValue(1) error = %v", err)
	}
	if got1 != val1 {
		t.Errorf("GetValue(1) = %d, want %d", got1, val1)
	}

	got2, err := eval.GetValue(2)
	if err != nil {
		t.Fatalf("GetValue(2) error = %v", err)
	}
	if got2 != val2 {
		t.Errorf("GetValue(2) = %d, want %d", got2, val2)
	}

	if _, err := eval.GetValue(999); err == nil {
		t.Error("Expected error for invalid value number")
	}
}

func TestExpressionEvaluatorValueRef(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	if _, err := eval.EvaluateExpression("42", emu); err != nil {
		t.Fatalf("EvaluateExpression(42): %v", err)
	}

	got, err := eval.EvaluateExpression("$1 + 8", emu)
	if err != nil {
		t.Fatalf("EvaluateExpression($1 + 8): %v", err)
	}
	if got != 50 {
		t.Errorf("EvaluateExpression($1 + 8) = %d, want 50", got)
	}
}

func TestExpressionEvaluatorBooleanEvaluation(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "set x 42\nend")
	emu.Run(10)

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"Zero is false", "0", false},
		{"Non-zero is true", "42", true},
		{"Variable non-zero", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr, emu)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorErrors(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	tests := []struct {
		name string
		expr string
	}{
		{"Empty expression", ""},
		{"Unknown variable", "unknown_var"},
		{"Division by zero", "10 / 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eval.EvaluateExpression(tt.expr, emu); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestExpressionEvaluatorReset(t *testing.T) {
	eval := NewExpressionEvaluator()
	emu := mustEmulator(t, nil, "end")

	eval.EvaluateExpression("42", emu)
	eval.EvaluateExpression("100", emu)

	if eval.GetValueNumber() != 2 {
		t.Error("Value number should be 2 before reset")
	}

	eval.Reset()

	if eval.GetValueNumber() != 0 {
		t.Error("Value number should be 0 after reset")
	}
	if len(eval.valueHistory) != 0 {
		t.Error("Value history should be empty after reset")
	}
}
