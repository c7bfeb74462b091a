package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/drizzleport/internal/cli/output"
	"github.com/leapstack-labs/drizzleport/pkg/ast"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [schema]",
		Short: "Show the parsed schema",
		Long: `Parse a Prisma schema and print what the parser understood: models, views,
enums, datasources and generators with their fields, assertions and constraints.

Output adapts to environment:
  - Terminal: Tables
  - Piped/Scripted: Markdown tables
  
Use --output json or --output yaml for the full AST.`,
		Example: `  # Summarize schema.prisma
  drizzleport inspect

  # Dump the AST as JSON
  drizzleport inspect prisma/schema.prisma --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args)
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	path := cmdCtx.SchemaPath(args)

	schema, err := parseSchemaFile(path, cmdCtx.Logger)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(schema)
	case output.ModeYAML:
		return r.YAML(schema)
	default:
		inspectTables(r, path, schema)
		return nil
	}
}

// inspectTables renders one table per non-empty block kind.
func inspectTables(r *output.Renderer, path string, schema *ast.Schema) {
	markdown := r.EffectiveMode() == output.ModeMarkdown
	titleCaser := cases.Title(language.English)

	r.Header(1, "Schema "+path)
	if markdown {
		r.Println(output.FormatKeyValue("Models", fmt.Sprintf("%d", schema.Models.Len())))
		r.Println(output.FormatKeyValue("Views", fmt.Sprintf("%d", schema.Views.Len())))
		r.Println(output.FormatKeyValue("Enums", fmt.Sprintf("%d", schema.Enums.Len())))
		r.Println()
	}

	renderTable := func(title string, header table.Row, rows []table.Row) {
		if len(rows) == 0 {
			return
		}
		r.Header(2, title)

		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(header)
		t.AppendRows(rows)
		if markdown {
			t.RenderMarkdown()
		} else {
			t.Render()
		}
		r.Println()
	}
	section := func(kind ast.Kind, header table.Row, rows []table.Row) {
		renderTable(titleCaser.String(kind.String()+"s"), header, rows)
	}

	var models, constraints []table.Row
	for _, m := range schema.Models.Values() {
		models = append(models, fieldRows(&m.Table)...)
		constraints = append(constraints, constraintRows(&m.Table)...)
	}
	section(ast.KindModel, table.Row{"Model", "Field", "Type", "Storage", "Assertions"}, models)

	var views []table.Row
	for _, v := range schema.Views.Values() {
		views = append(views, fieldRows(&v.Table)...)
	}
	section(ast.KindView, table.Row{"View", "Field", "Type", "Storage", "Assertions"}, views)

	renderTable("Constraints", table.Row{"Model", "Kind", "Fields", "Using", "Name"}, constraints)

	var enums []table.Row
	for _, e := range schema.Enums.Values() {
		enums = append(enums, table.Row{e.Name, strings.Join(e.Values, ", ")})
	}
	section(ast.KindEnum, table.Row{"Enum", "Values"}, enums)

	var sources []table.Row
	for _, ds := range schema.DataSources.Values() {
		sources = append(sources, table.Row{ds.Name, ds.Provider, ds.URL})
	}
	section(ast.KindDataSource, table.Row{"Datasource", "Provider", "URL"}, sources)

	var generators []table.Row
	for _, g := range schema.Generators.Values() {
		var props []string
		g.Properties.Each(func(k, v string) {
			props = append(props, k+" = "+v)
		})
		generators = append(generators, table.Row{g.Name, strings.Join(props, "; ")})
	}
	section(ast.KindGenerator, table.Row{"Generator", "Properties"}, generators)
}

func fieldRows(t *ast.Table) []table.Row {
	rows := make([]table.Row, 0, t.Fields.Len())
	for _, f := range t.Fields.Values() {
		asserts := make([]string, 0, len(f.Assertions))
		for _, a := range f.Assertions {
			if s, ok := a.(fmt.Stringer); ok {
				asserts = append(asserts, s.String())
			}
		}
		rows = append(rows, table.Row{t.Name, f.Name, typeString(f.DataType), f.Storage, strings.Join(asserts, " ")})
	}
	return rows
}

func constraintRows(t *ast.Table) []table.Row {
	rows := make([]table.Row, 0, len(t.Constraints))
	for _, c := range t.Constraints {
		fields := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			fields[i] = f.Name
			if f.Sort != "" {
				fields[i] += " " + strings.ToLower(string(f.Sort))
			}
			if f.Ops != "" {
				fields[i] += " (" + f.Ops + ")"
			}
		}
		rows = append(rows, table.Row{t.Name, string(c.Kind), strings.Join(fields, ", "), c.Using, c.Map})
	}
	return rows
}

func typeString(dt ast.DataType) string {
	switch dt.Cardinality {
	case ast.Many:
		return dt.Name + "[]"
	case ast.Maybe:
		return dt.Name + "?"
	default:
		return dt.Name
	}
}
