package tools

import (
	"fmt"
	"strings"
)

// FormatStyle selects a column layout for FormatListing.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // Address and instruction in fixed columns.
	FormatCompact                     // Minimal whitespace.
	FormatExpanded                    // Extra whitespace for readability.
)

// FormatOptions controls FormatListing's column layout.
type FormatOptions struct {
	Style          FormatStyle
	AddressColumn  int // Width reserved for the address field.
	AlignAddresses bool
}

// DefaultFormatOptions returns the default layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:          FormatDefault,
		AddressColumn:  6,
		AlignAddresses: true,
	}
}

// CompactFormatOptions returns options with no column alignment.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact, AddressColumn: 0, AlignAddresses: false}
}

// ExpandedFormatOptions returns options with extra address padding.
func ExpandedFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatExpanded, AddressColumn: 10, AlignAddresses: true}
}

// FormatListing re-tabulates an annotated listing (as produced by
// codegen.Generate, each line shaped "address\tinstruction") into aligned
// columns according to opts. Lines that don't match that shape (blank
// separators, `// comment` annotations) pass through unchanged.
func FormatListing(annotated []string, opts *FormatOptions) []string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}

	out := make([]string, 0, len(annotated))
	for _, line := range annotated {
		address, instruction, ok := strings.Cut(line, "\t")
		if !ok {
			out = append(out, line)
			continue
		}

		if !opts.AlignAddresses {
			out = append(out, fmt.Sprintf("%s %s", address, instruction))
			continue
		}

		out = append(out, fmt.Sprintf("%-*s %s", opts.AddressColumn, address, instruction))
	}
	return out
}
