package parser

import (
	"strings"
	"testing"
)

func TestParseArrowEmpty(t *testing.T) {
	for _, text := range []string{"", "->", " ->", "-> "} {
		tok := strings.Fields(strings.TrimSpace(text))
		before, after, err := parseArrow(tok)
		if err != nil {
			t.Fatalf("parseArrow(%q): %v", text, err)
		}
		if len(before) != 0 || len(after) != 0 {
			t.Fatalf("parseArrow(%q) = %v, %v; want empty, empty", text, before, after)
		}
	}
}

func TestParseArrowMulti(t *testing.T) {
	text := "Do you recall how it came to that place"
	tok := strings.Fields(text)
	before, after, err := parseArrow(tok)
	if err != nil {
		t.Fatal(err)
	}
	if !equalSlices(before, tok) || len(after) != 0 {
		t.Fatalf("got %v, %v", before, after)
	}
}

func TestParseArrowMultiRight(t *testing.T) {
	text := "-> And they sang of their lightnings and shapeful disgrace"
	tok := strings.Fields(text)
	before, after, err := parseArrow(tok)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 0 || !equalSlices(after, tok[1:]) {
		t.Fatalf("got %v, %v", before, after)
	}
}

func TestParseArrowMultiLeft(t *testing.T) {
	text := "And It tilted Its vanes and ennobled Its spires ->"
	tok := strings.Fields(text)
	before, after, err := parseArrow(tok)
	if err != nil {
		t.Fatal(err)
	}
	if !equalSlices(before, tok[:len(tok)-1]) || len(after) != 0 {
		t.Fatalf("got %v, %v", before, after)
	}
}

func TestParseArrowMultiMiddle(t *testing.T) {
	text := "They welcomed It then -> and commingled all choirs."
	tok := strings.Fields(text)
	before, after, err := parseArrow(tok)
	if err != nil {
		t.Fatal(err)
	}
	if !equalSlices(before, []string{"They", "welcomed", "It", "then"}) {
		t.Fatalf("before = %v", before)
	}
	if !equalSlices(after, []string{"and", "commingled", "all", "choirs."}) {
		t.Fatalf("after = %v", after)
	}
}

func TestParseArrowSingleLeft(t *testing.T) {
	before, after, err := parseArrow([]string{"And", "->"})
	if err != nil {
		t.Fatal(err)
	}
	if !equalSlices(before, []string{"And"}) || len(after) != 0 {
		t.Fatalf("got %v, %v", before, after)
	}
}

func TestParseArrowSingleRight(t *testing.T) {
	before, after, err := parseArrow([]string{"->", "not"})
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 0 || !equalSlices(after, []string{"not"}) {
		t.Fatalf("got %v, %v", before, after)
	}
}

func TestParseArrowError(t *testing.T) {
	for _, text := range []string{
		"-> ->",
		"-> enough ->",
		"-> -> still",
		"not -> ->",
		"enough -> -> still",
		"-> it mourns ->",
	} {
		tok := strings.Fields(text)
		if _, _, err := parseArrow(tok); err == nil {
			t.Errorf("parseArrow(%q) succeeded, want error", text)
		}
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCleanLineTrimsSemicolons(t *testing.T) {
	cases := map[string]string{
		"set a b;":     "set a b",
		"set a b ;; ;": "set a b",
		"  push  ":     "push",
		"":              "",
	}
	for in, want := range cases {
		if got := cleanLine(in); got != want {
			t.Errorf("cleanLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSimpleProgram(t *testing.T) {
	src := strings.Join([]string{
		"set a 1",
		"op add a a 1",
		"print a",
	}, "\n")

	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program.Ops) == 0 {
		t.Fatal("expected at least one op")
	}
}

func TestParseStackDisabledRejectsPush(t *testing.T) {
	_, err := Parse("push\n")
	if err == nil {
		t.Fatal("expected error using push without a configured stack")
	}
}

func TestParseFunctionCallRoundTrip(t *testing.T) {
	src := strings.Join([]string{
		"stack_config size 8",
		"fn double *n -> *result {",
		"  let *result",
		"  op mul *result *n 2",
		"  return *result",
		"}",
		"call double 21 -> out",
		"print out",
	}, "\n")

	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := program.Functions["double"]; !ok {
		t.Fatal("expected function double to be registered")
	}
}

func TestParseUndefinedFunctionCall(t *testing.T) {
	src := strings.Join([]string{
		"stack_config size 4",
		"call missing 1 -> out",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected error calling an undefined function")
	}
}

func TestParseUnmatchedClosingBrace(t *testing.T) {
	if _, err := Parse("}\n"); err == nil {
		t.Fatal("expected error on unmatched closing brace")
	}
}

func TestParseMissingClosingBrace(t *testing.T) {
	src := strings.Join([]string{
		"stack_config size 4",
		"if equal a b {",
		"set a 1",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected error on missing closing brace")
	}
}

func TestParseIfElse(t *testing.T) {
	src := strings.Join([]string{
		"set a 1",
		"if equal a 1 {",
		"  set b 1",
		"} else {",
		"  set b 2",
		"}",
	}, "\n")
	if _, err := Parse(src); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseWhileLoopBreakContinue(t *testing.T) {
	src := strings.Join([]string{
		"set i 0",
		"while lessThan i 10 {",
		"  op add i i 1",
		"  if equal i 5 {",
		"    continue",
		"  }",
		"  if equal i 9 {",
		"    break",
		"  }",
		"}",
	}, "\n")
	if _, err := Parse(src); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseBreakOutsideLoopIsError(t *testing.T) {
	if _, err := Parse("break\n"); err == nil {
		t.Fatal("expected error using break outside a loop")
	}
}

func TestParseDoWhile(t *testing.T) {
	src := strings.Join([]string{
		"set i 0",
		"do {",
		"  op add i i 1",
		"} while lessThan i 10",
	}, "\n")
	if _, err := Parse(src); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseMindustryPassthrough(t *testing.T) {
	src := "sensor x reactor @copper\n"
	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program.Ops) != 1 {
		t.Fatalf("expected exactly one passthrough op, got %d", len(program.Ops))
	}
}
