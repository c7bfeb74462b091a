package parser

import "strings"

// Line is a normalized, non-empty input line.
type Line struct {
	Num  int // 1-based line number in the original input
	Text string
}

// Normalize strips // comments and surrounding whitespace from every line and
// drops the lines that end up empty. A // inside a double-quoted string is
// not a comment, so connection URLs survive.
func Normalize(src string) []Line {
	var lines []Line
	for i, raw := range strings.Split(src, "\n") {
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}
		lines = append(lines, Line{Num: i + 1, Text: text})
	}
	return lines
}

func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(s) && s[i+1] == '/' {
				return s[:i]
			}
		}
	}
	return s
}
