package parser

import (
	"strconv"
	"strings"
)

// scanner walks attribute and argument text while tracking quotes and
// bracket depth.
type scanner struct {
	src   string
	pos   int
	depth int
	quote bool
}

// step advances over one byte and reports whether that byte sat at the top
// level, outside quotes and brackets.
func (s *scanner) step() (byte, bool) {
	c := s.src[s.pos]
	s.pos++
	if s.quote {
		switch c {
		case '\\':
			if s.pos < len(s.src) {
				s.pos++
			}
		case '"':
			s.quote = false
		}
		return c, false
	}
	switch c {
	case '"':
		s.quote = true
		return c, false
	case '(', '[', '{':
		s.depth++
		return c, false
	case ')', ']', '}':
		if s.depth > 0 {
			s.depth--
		}
		return c, false
	}
	return c, s.depth == 0
}

// splitTopLevel splits s on sep where sep is not nested in brackets or
// quotes. Parts are trimmed and empty parts dropped.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	sc := &scanner{src: s}
	start := 0
	for sc.pos < len(sc.src) {
		at := sc.pos
		c, top := sc.step()
		if top && c == sep {
			if p := strings.TrimSpace(s[start:at]); p != "" {
				parts = append(parts, p)
			}
			start = sc.pos
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// splitNamed splits "key: value" at the first top-level colon. Positional
// arguments return ok == false.
func splitNamed(arg string) (key, value string, ok bool) {
	sc := &scanner{src: arg}
	for sc.pos < len(sc.src) {
		at := sc.pos
		c, top := sc.step()
		if top && c == ':' {
			key = strings.TrimSpace(arg[:at])
			if !isIdent(key) {
				return "", "", false
			}
			return key, strings.TrimSpace(arg[sc.pos:]), true
		}
	}
	return "", "", false
}

// matchClose returns the index just past the bracket closing the one at
// src[open], or -1 when it is unbalanced.
func matchClose(src string, open int) int {
	sc := &scanner{src: src, pos: open}
	for sc.pos < len(sc.src) {
		sc.step()
		if sc.depth == 0 && !sc.quote {
			return sc.pos
		}
	}
	return -1
}

// listItems returns the items of a "[a, b]" list, or the value itself when
// it is not bracketed.
func listItems(v string) []string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		return splitTopLevel(v[1:len(v)-1], ',')
	}
	if v == "" {
		return nil
	}
	return []string{v}
}

// unquote removes one level of double quotes if present.
func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
		return v[1 : len(v)-1]
	}
	return v
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}
