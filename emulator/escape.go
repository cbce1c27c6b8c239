package emulator

import "strings"

// unescapePrintLiteral unescapes the three sequences a double-quoted print
// argument supports. Anything else passes through unchanged -- there is no
// general string-literal syntax elsewhere in the generated program, so no
// other escapes are needed.
func unescapePrintLiteral(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

// isQuotedLiteral reports whether arg is a double-quoted string literal,
// e.g. `"hello"`, as opposed to a variable name or numeric literal.
func isQuotedLiteral(arg string) bool {
	return len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`)
}
