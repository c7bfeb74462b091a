package drizzle

import "fmt"

// UnsupportedScalarTypeError is returned for a base type or storage override
// outside the fixed mapping tables.
type UnsupportedScalarTypeError struct {
	Table string
	Field string
	Type  string
}

func (e *UnsupportedScalarTypeError) Error() string {
	return fmt.Sprintf("unsupported type %q for field %s.%s", e.Type, e.Table, e.Field)
}

// UnsupportedProviderError is returned for a datasource provider that has no
// client mapping.
type UnsupportedProviderError struct {
	DataSource string
	Provider   string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %s for datasource %q", e.Provider, e.DataSource)
}

// UnsupportedActionWordError is returned for a referential action outside
// Cascade, SetNull, NoAction, Restrict and SetDefault.
type UnsupportedActionWordError struct {
	Table  string
	Field  string
	Action string // "onDelete" or "onUpdate"
	Word   string
}

func (e *UnsupportedActionWordError) Error() string {
	return fmt.Sprintf("unsupported %s action %q on field %s.%s", e.Action, e.Word, e.Table, e.Field)
}

// MissingURLError is returned for a datasource without a url property; the
// generated client would otherwise connect with driver defaults.
type MissingURLError struct {
	DataSource string
}

func (e *MissingURLError) Error() string {
	return fmt.Sprintf("datasource %q has no url", e.DataSource)
}
