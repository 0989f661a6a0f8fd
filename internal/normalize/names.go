package normalize

import (
	"regexp"
	"strings"
)

var (
	lineBreaks = regexp.MustCompile(`\s*[\r\n]+\s*`)

	// spillover matches a school name followed by two or more spaces and a
	// run of digits. The PDF conversion of the case report leaks the
	// neighbouring numeric column into the name cell in exactly this shape.
	// It is a heuristic for this source, not a general name parser.
	spillover = regexp.MustCompile(`^([\w ]+?) {2,}\d+$`)
)

// CleanName collapses embedded line breaks into single spaces and trims.
func CleanName(s string) string {
	s = lineBreaks.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripSpillover truncates a name that carries digits leaked from an adjacent
// column. It reports whether the name was changed.
func StripSpillover(s string) (string, bool) {
	m := spillover.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}
	return strings.TrimSpace(m[1]), true
}

// JoinName space-joins two name fragments.
func JoinName(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// SplitLines splits a cell on line breaks, dropping blank lines.
func SplitLines(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasLineBreak reports whether s contains an embedded line break.
func HasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}
