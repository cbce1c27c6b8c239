package tools

import (
	"strings"
	"testing"

	"github.com/calmofthestorm/routerbolt/codegen"
	"github.com/calmofthestorm/routerbolt/parser"
)

func TestFormatListingAlignsAddresses(t *testing.T) {
	program, err := parser.Parse("set a 1\nop add a a 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, annotated, err := codegen.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := FormatListing(annotated, DefaultFormatOptions())
	var sawAligned bool
	for _, line := range out {
		if strings.Contains(line, "set a 1") {
			sawAligned = true
			if !strings.HasPrefix(line, "0 ") && !strings.HasPrefix(line, "0     ") {
				t.Errorf("expected left-padded address column, got %q", line)
			}
		}
	}
	if !sawAligned {
		t.Fatal("expected to find the \"set a 1\" line in the formatted listing")
	}
}

func TestFormatListingCompactPassesBlankLinesThrough(t *testing.T) {
	program, err := parser.Parse("set a 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, annotated, err := codegen.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := FormatListing(annotated, CompactFormatOptions())
	if len(out) != len(annotated) {
		t.Fatalf("expected FormatListing to preserve line count: got %d, want %d", len(out), len(annotated))
	}
}
