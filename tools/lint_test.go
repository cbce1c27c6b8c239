package tools

import (
	"strings"
	"testing"

	"github.com/calmofthestorm/routerbolt/parser"
)

func TestLintUnusedLabel(t *testing.T) {
	src := strings.Join([]string{
		"set a 1",
		"unused:",
		"set a 2",
	}, "\n")

	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	issues := Lint(program)
	var found bool
	for _, issue := range issues {
		if issue.Code == "UNUSED_LABEL" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UNUSED_LABEL finding, got %v", issues)
	}
}

func TestLintNoIssuesForUsedLabel(t *testing.T) {
	src := strings.Join([]string{
		"jump skip always x false",
		"set a 1",
		"skip:",
		"set a 2",
	}, "\n")

	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, issue := range Lint(program) {
		if issue.Code == "UNUSED_LABEL" {
			t.Errorf("unexpected UNUSED_LABEL finding for a referenced label: %v", issue)
		}
	}
}

func TestLintUnreachableCodeAfterUnconditionalJump(t *testing.T) {
	src := strings.Join([]string{
		"jump skip always x false",
		"set a 1",
		"skip:",
		"set a 2",
	}, "\n")

	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var found bool
	for _, issue := range Lint(program) {
		if issue.Code == "UNREACHABLE_CODE" {
			found = true
		}
	}
	if !found {
		t.Error("expected an UNREACHABLE_CODE finding for the op right after the unconditional jump")
	}
}

func TestLintNoUnreachableAfterConditionalJump(t *testing.T) {
	src := strings.Join([]string{
		"set x 1",
		"jump skip equal x 1",
		"set a 1",
		"skip:",
	}, "\n")

	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, issue := range Lint(program) {
		if issue.Code == "UNREACHABLE_CODE" {
			t.Errorf("unexpected UNREACHABLE_CODE after a conditional jump: %v", issue)
		}
	}
}
