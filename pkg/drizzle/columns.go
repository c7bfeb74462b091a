package drizzle

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// scalarColumns maps base type names to pg-core column constructors.
var scalarColumns = map[string]string{
	"String":   "text",
	"DateTime": "timestamp",
	"Json":     "json",
	"Int":      "integer",
	"Boolean":  "boolean",
	"SmallInt": "smallint",
}

type storageColumn struct {
	ctor    string
	options string
}

// storageColumns maps @db.<Type> overrides to column constructors. Type
// arguments such as the 6 in @db.Timestamptz(6) are not carried over.
var storageColumns = map[string]storageColumn{
	"Text":        {ctor: "text"},
	"Integer":     {ctor: "integer"},
	"SmallInt":    {ctor: "smallint"},
	"Boolean":     {ctor: "boolean"},
	"Json":        {ctor: "json"},
	"JsonB":       {ctor: "jsonb"},
	"Timestamp":   {ctor: "timestamp"},
	"Timestamptz": {ctor: "timestamp", options: "{ withTimezone: true }"},
}

// actionWords translates referential actions. The table is exhaustive.
var actionWords = map[string]string{
	"Cascade":    "cascade",
	"SetNull":    "set null",
	"NoAction":   "no action",
	"Restrict":   "restrict",
	"SetDefault": "set default",
}

// columns renders the table's columns in field order. Fields typed as a
// model or view are relation fields and produce no column.
func (g *generator) columns(table *ast.Table) ([]string, error) {
	var out []string
	for _, field := range table.Fields.Values() {
		if g.schema.IsEntity(field.DataType.Name) {
			continue
		}
		col, err := g.column(table.Name, field)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

func (g *generator) column(table string, field *ast.Field) (string, error) {
	base, err := g.columnType(table, field)
	if err != nil {
		return "", err
	}
	count, err := cardinality(field.DataType.Cardinality)
	if err != nil {
		return "", fmt.Errorf("field %s.%s: %w", table, field.Name, err)
	}
	asserts, err := assertions(table, field)
	if err != nil {
		return "", err
	}
	return field.Name + ": " + base + count + asserts, nil
}

// columnType picks the column constructor. A storage override wins over
// everything else, then enums, then Unsupported(...), then the scalar table.
func (g *generator) columnType(table string, field *ast.Field) (string, error) {
	name := quote(field.Name)

	if field.Storage != "" {
		storage, _, _ := strings.Cut(field.Storage, "(")
		sc, ok := storageColumns[storage]
		if !ok {
			return "", &UnsupportedScalarTypeError{Table: table, Field: field.Name, Type: "@db." + field.Storage}
		}
		if sc.options != "" {
			return "d." + sc.ctor + "(" + name + ", " + sc.options + ")", nil
		}
		return "d." + sc.ctor + "(" + name + ")", nil
	}

	if g.schema.IsEnum(field.DataType.Name) {
		return field.DataType.Name + "(" + name + ")", nil
	}

	if raw, ok := field.DataType.Unsupported(); ok {
		return "unsupported(" + name + ", { type: " + raw + " })", nil
	}

	ctor, ok := scalarColumns[field.DataType.Name]
	if !ok {
		return "", &UnsupportedScalarTypeError{Table: table, Field: field.Name, Type: field.DataType.Name}
	}
	return "d." + ctor + "(" + name + ")", nil
}

func cardinality(c ast.Cardinality) (string, error) {
	switch c {
	case ast.Many:
		return ".array()", nil
	case ast.Maybe:
		return "", nil
	case ast.Required:
		return ".notNull()", nil
	default:
		return "", fmt.Errorf("unknown cardinality %q", c)
	}
}

func assertions(table string, field *ast.Field) (string, error) {
	var b strings.Builder
	for _, a := range field.Assertions {
		switch a := a.(type) {
		case *ast.PrimaryKey:
			b.WriteString(".primaryKey()")
		case *ast.Default:
			b.WriteString(".default(sql`" + a.Expr + "`)")
		case *ast.Relation:
			ref, err := reference(table, field.Name, a)
			if err != nil {
				return "", err
			}
			b.WriteString(ref)
		default:
			return "", fmt.Errorf("field %s.%s: unknown assertion %T", table, field.Name, a)
		}
	}
	return b.String(), nil
}

func reference(table, field string, r *ast.Relation) (string, error) {
	var opts []string
	for _, action := range []struct{ key, word string }{
		{"onDelete", r.OnDelete},
		{"onUpdate", r.OnUpdate},
	} {
		if action.word == "" {
			continue
		}
		translated, ok := actionWords[action.word]
		if !ok {
			return "", &UnsupportedActionWordError{Table: table, Field: field, Action: action.key, Word: action.word}
		}
		opts = append(opts, action.key+": "+quote(translated))
	}

	target := "(): d.AnyPgColumn => " + r.Model + "." + r.References
	if len(opts) == 0 {
		return ".references(" + target + ")", nil
	}
	return ".references(" + target + ", { " + strings.Join(opts, ", ") + " })", nil
}

// constraint renders an index or unique constraint for the pgTable extra
// config callback, whose table parameter is named t.
func constraint(table string, idx *ast.IndexAssertion) string {
	ctor, suffix := "d.index", "idx"
	if idx.Kind == ast.IndexUnique {
		ctor, suffix = "d.uniqueIndex", "key"
	}
	name := idx.Map
	if name == "" {
		name = table + "_" + strings.Join(idx.FieldNames(), "_") + "_" + suffix
	}

	cols := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		col := "t." + f.Name
		switch f.Sort {
		case ast.SortAsc:
			col += ".asc()"
		case ast.SortDesc:
			col += ".desc()"
		}
		if f.Ops != "" {
			col += ".op(" + quote(f.Ops) + ")"
		}
		cols[i] = col
	}

	if idx.Using != "" {
		return ctor + "(" + quote(name) + ").using(" + quote(strings.ToLower(idx.Using)) + ", " + strings.Join(cols, ", ") + ")"
	}
	return ctor + "(" + quote(name) + ").on(" + strings.Join(cols, ", ") + ")"
}
