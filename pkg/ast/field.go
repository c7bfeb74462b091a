package ast

import "strings"

// Cardinality describes how many values a field holds.
type Cardinality string

// Cardinality values. The zero value is a required, singular field.
const (
	Required Cardinality = ""
	Maybe    Cardinality = "maybe"
	Many     Cardinality = "many"
)

// DataType is a field's base type name plus its cardinality marker.
type DataType struct {
	Name        string      `json:"name" yaml:"name"`
	Cardinality Cardinality `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
}

// ParseDataType splits a type token such as "Int", "String?" or "Tag[]".
func ParseDataType(token string) DataType {
	switch {
	case strings.HasSuffix(token, "[]"):
		return DataType{Name: strings.TrimSuffix(token, "[]"), Cardinality: Many}
	case strings.HasSuffix(token, "?"):
		return DataType{Name: strings.TrimSuffix(token, "?"), Cardinality: Maybe}
	default:
		return DataType{Name: token}
	}
}

// Unsupported returns the raw type expression of an Unsupported("...") type.
func (t DataType) Unsupported() (string, bool) {
	if !strings.HasPrefix(t.Name, "Unsupported(") || !strings.HasSuffix(t.Name, ")") {
		return "", false
	}
	return t.Name[len("Unsupported(") : len(t.Name)-1], true
}

// Field is a single model or view field.
type Field struct {
	Name       string           `json:"name" yaml:"name"`
	DataType   DataType         `json:"dataType" yaml:"dataType"`
	Storage    string           `json:"storage,omitempty" yaml:"storage,omitempty"` // explicit storage type override, e.g. "SmallInt"
	Assertions []FieldAssertion `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// NewField creates a field from its name and raw type token.
func NewField(name, typeToken string) *Field {
	return &Field{Name: name, DataType: ParseDataType(typeToken)}
}

// Add appends an assertion, preserving declaration order.
func (f *Field) Add(a FieldAssertion) {
	f.Assertions = append(f.Assertions, a)
}

// AssertionKind identifies a field assertion.
type AssertionKind string

// AssertionKind values.
const (
	AssertPrimaryKey AssertionKind = "primaryKey"
	AssertDefault    AssertionKind = "default"
	AssertRelation   AssertionKind = "relation"
)

// FieldAssertion is implemented by *PrimaryKey, *Default and *Relation.
type FieldAssertion interface {
	AssertionKind() AssertionKind
}

// PrimaryKey marks a field as the table's primary key.
type PrimaryKey struct{}

// AssertionKind implements FieldAssertion.
func (*PrimaryKey) AssertionKind() AssertionKind { return AssertPrimaryKey }

// Default carries a raw default expression, kept verbatim.
type Default struct {
	Expr string `json:"expr" yaml:"expr"`
}

// AssertionKind implements FieldAssertion.
func (*Default) AssertionKind() AssertionKind { return AssertDefault }

// Relation points a scalar field at a column of another model.
type Relation struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Model      string `json:"model" yaml:"model"`
	References string `json:"references" yaml:"references"`
	OnDelete   string `json:"onDelete,omitempty" yaml:"onDelete,omitempty"`
	OnUpdate   string `json:"onUpdate,omitempty" yaml:"onUpdate,omitempty"`
}

// AssertionKind implements FieldAssertion.
func (*Relation) AssertionKind() AssertionKind { return AssertRelation }

// IndexKind distinguishes plain indexes from unique constraints.
type IndexKind string

// IndexKind values.
const (
	IndexPlain  IndexKind = "index"
	IndexUnique IndexKind = "unique"
)

// SortOrder is an optional per-column sort direction.
type SortOrder string

// SortOrder values.
const (
	SortAsc  SortOrder = "Asc"
	SortDesc SortOrder = "Desc"
)

// IndexField references one column of an index.
type IndexField struct {
	Name string    `json:"name" yaml:"name"`
	Sort SortOrder `json:"sort,omitempty" yaml:"sort,omitempty"`
	Ops  string    `json:"ops,omitempty" yaml:"ops,omitempty"`
}

// IndexAssertion is a block-level @@index or @@unique, or a field-level
// @unique lifted to the block.
type IndexAssertion struct {
	Kind   IndexKind    `json:"type" yaml:"type"`
	Fields []IndexField `json:"fields" yaml:"fields"`
	Using  string       `json:"using,omitempty" yaml:"using,omitempty"`
	Map    string       `json:"map,omitempty" yaml:"map,omitempty"`
}

// FieldNames returns the referenced column names in order.
func (a *IndexAssertion) FieldNames() []string {
	names := make([]string, len(a.Fields))
	for i, f := range a.Fields {
		names[i] = f.Name
	}
	return names
}
