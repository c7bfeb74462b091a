package parser

import "fmt"

// Position tracks source location for error reporting.
type Position struct {
	File string
	Line int // 1-based line number in the original input
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// Error is implemented by every error returned from Parse.
type Error interface {
	error
	Position() Position
}

// baseError provides common error functionality.
type baseError struct {
	pos Position
	msg string
}

func (e *baseError) Position() Position { return e.pos }
func (e *baseError) Error() string      { return fmt.Sprintf("%s: %s", e.pos, e.msg) }

// SyntaxError reports input the parser cannot make sense of: malformed
// headers, fields or constraint calls, stray lines and unterminated blocks.
type SyntaxError struct {
	baseError
}

func newSyntaxError(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

// UnsupportedBlockAttributeError is returned for an @@-attribute other than
// @@index and @@unique.
type UnsupportedBlockAttributeError struct {
	baseError
	Attribute string
}

func newUnsupportedBlockAttributeError(pos Position, attr, line string) *UnsupportedBlockAttributeError {
	return &UnsupportedBlockAttributeError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("unsupported block attribute @@%s in %q", attr, line)},
		Attribute: attr,
	}
}

// UnsupportedFieldAttributeError is returned for a field attribute the
// parser does not understand.
type UnsupportedFieldAttributeError struct {
	baseError
	Field     string
	Attribute string
}

func newUnsupportedFieldAttributeError(pos Position, field, attr string) *UnsupportedFieldAttributeError {
	return &UnsupportedFieldAttributeError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("unsupported field attribute @%s on field %q", attr, field)},
		Field:     field,
		Attribute: attr,
	}
}

// UnknownRelationFieldError is returned when a block closes and a staged
// relation names a local field the block never declared.
type UnknownRelationFieldError struct {
	baseError
	Block string
	Field string
}

func newUnknownRelationFieldError(pos Position, block, field string) *UnknownRelationFieldError {
	return &UnknownRelationFieldError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("relation references unknown field %q in %q", field, block)},
		Block:     block,
		Field:     field,
	}
}
