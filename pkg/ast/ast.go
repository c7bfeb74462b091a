// Package ast defines the intermediate representation produced by the schema
// parser and consumed by the code generators.
//
// A schema is made of five independent, name-keyed collections: models,
// views, generators, datasources and enums. Field and enum value order is
// preserved because it drives the order of generated declarations.
package ast

// Kind identifies the kind of a top-level block.
type Kind int

// Kind constants for the closed set of block kinds.
const (
	KindModel Kind = iota
	KindView
	KindEnum
	KindGenerator
	KindDataSource
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindView:
		return "view"
	case KindEnum:
		return "enum"
	case KindGenerator:
		return "generator"
	case KindDataSource:
		return "datasource"
	default:
		return "unknown"
	}
}

// Block is implemented by every top-level entity. The set of implementations
// is closed: *Model, *View, *Enum, *Generator and *DataSource.
type Block interface {
	BlockName() string
	Kind() Kind
	block() // marker method to restrict implementation
}

// Schema is the root of the AST.
type Schema struct {
	Models      *OrderedMap[*Model]      `json:"models" yaml:"models"`
	Views       *OrderedMap[*View]       `json:"views" yaml:"views"`
	Generators  *OrderedMap[*Generator]  `json:"generators" yaml:"generators"`
	DataSources *OrderedMap[*DataSource] `json:"datasources" yaml:"datasources"`
	Enums       *OrderedMap[*Enum]       `json:"enums" yaml:"enums"`
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{
		Models:      NewOrderedMap[*Model](),
		Views:       NewOrderedMap[*View](),
		Generators:  NewOrderedMap[*Generator](),
		DataSources: NewOrderedMap[*DataSource](),
		Enums:       NewOrderedMap[*Enum](),
	}
}

// Add registers a block under its name in the matching collection.
func (s *Schema) Add(b Block) {
	switch b := b.(type) {
	case *Model:
		s.Models.Set(b.Name, b)
	case *View:
		s.Views.Set(b.Name, b)
	case *Enum:
		s.Enums.Set(b.Name, b)
	case *Generator:
		s.Generators.Set(b.Name, b)
	case *DataSource:
		s.DataSources.Set(b.Name, b)
	}
}

// IsEntity reports whether name is a declared model or view. Fields whose
// base type is an entity are relation fields.
func (s *Schema) IsEntity(name string) bool {
	return s.Models.Has(name) || s.Views.Has(name)
}

// IsEnum reports whether name is a declared enum.
func (s *Schema) IsEnum(name string) bool {
	return s.Enums.Has(name)
}

// Table holds what models and views have in common.
type Table struct {
	Name        string              `json:"name" yaml:"name"`
	Fields      *OrderedMap[*Field] `json:"fields" yaml:"fields"`
	Constraints []*IndexAssertion   `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

func newTable(name string) Table {
	return Table{Name: name, Fields: NewOrderedMap[*Field]()}
}

// BlockName returns the table name.
func (t *Table) BlockName() string { return t.Name }

// AddConstraint appends a block-level index or unique assertion.
func (t *Table) AddConstraint(a *IndexAssertion) {
	t.Constraints = append(t.Constraints, a)
}

// Model is a table-backed entity.
type Model struct {
	Table `yaml:",inline"`
}

// NewModel creates an empty model.
func NewModel(name string) *Model { return &Model{Table: newTable(name)} }

// Kind implements Block.
func (*Model) Kind() Kind { return KindModel }
func (*Model) block()     {}

// View has the same shape as a Model but is reference-only: it is never a
// column source when another field points at it.
type View struct {
	Table `yaml:",inline"`
}

// NewView creates an empty view.
func NewView(name string) *View { return &View{Table: newTable(name)} }

// Kind implements Block.
func (*View) Kind() Kind { return KindView }
func (*View) block()     {}

// Enum is a named, ordered list of literal values.
type Enum struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// NewEnum creates an empty enum.
func NewEnum(name string) *Enum { return &Enum{Name: name} }

// BlockName implements Block.
func (e *Enum) BlockName() string { return e.Name }

// Kind implements Block.
func (*Enum) Kind() Kind { return KindEnum }
func (*Enum) block()     {}

// Generator holds the raw properties of a generator block. They are kept for
// inspection only and never drive code generation.
type Generator struct {
	Name       string              `json:"name" yaml:"name"`
	Properties *OrderedMap[string] `json:"properties" yaml:"properties"`
}

// NewGenerator creates an empty generator.
func NewGenerator(name string) *Generator {
	return &Generator{Name: name, Properties: NewOrderedMap[string]()}
}

// BlockName implements Block.
func (g *Generator) BlockName() string { return g.Name }

// Kind implements Block.
func (*Generator) Kind() Kind { return KindGenerator }
func (*Generator) block()     {}

// DataSource describes a database connection. Provider and URL are raw
// expressions as written in the schema (quotes and env(...) included).
type DataSource struct {
	Name       string              `json:"name" yaml:"name"`
	Provider   string              `json:"provider" yaml:"provider"`
	URL        string              `json:"url" yaml:"url"`
	Properties *OrderedMap[string] `json:"properties" yaml:"properties"`
}

// NewDataSource creates an empty datasource.
func NewDataSource(name string) *DataSource {
	return &DataSource{Name: name, Properties: NewOrderedMap[string]()}
}

// Set stores a property. provider and url are lifted into their own fields;
// everything else is kept verbatim.
func (d *DataSource) Set(key, value string) {
	switch key {
	case "provider":
		d.Provider = value
	case "url":
		d.URL = value
	default:
		d.Properties.Set(key, value)
	}
}

// BlockName implements Block.
func (d *DataSource) BlockName() string { return d.Name }

// Kind implements Block.
func (*DataSource) Kind() Kind { return KindDataSource }
func (*DataSource) block()     {}
