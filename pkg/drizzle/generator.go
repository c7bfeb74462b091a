// Package drizzle renders an ast.Schema as Drizzle ORM (drizzle-orm/pg-core)
// TypeScript declarations.
//
// Generation is a pure function of a complete schema. It never reads the
// environment: env("...") connection URLs become process.env lookups that
// are resolved when the generated code runs.
package drizzle

import (
	"strings"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// Banner is written at the top of generated files when enabled.
const Banner = "// Code generated by drizzleport. DO NOT EDIT."

// fixedImports are emitted by every generated file.
var fixedImports = []string{
	`import * as d from "drizzle-orm/pg-core";`,
	`import { sql } from "drizzle-orm";`,
}

// unsupportedType backs Unsupported("...") columns.
const unsupportedType = `const unsupported = d.customType({
  dataType(config) {
    if (
      config == null ||
      typeof config !== "object" ||
      !("type" in config) ||
      typeof config.type !== "string"
    ) {
      throw new Error("Unsupported was used without config");
    }
    return config.type;
  },
});`

// Option configures generation.
type Option func(*generator)

// WithBanner toggles the "Code generated" header comment.
func WithBanner(enabled bool) Option {
	return func(g *generator) { g.banner = enabled }
}

type generator struct {
	schema *ast.Schema
	banner bool
	p      *printer
}

// Generate renders schema. The schema must be complete (all blocks closed);
// Generate does not modify it. On error no output is returned.
func Generate(schema *ast.Schema, opts ...Option) (string, error) {
	g := &generator{schema: schema, p: newPrinter()}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.generate(); err != nil {
		return "", err
	}
	return g.p.String(), nil
}

func (g *generator) generate() error {
	if g.banner {
		g.p.line(Banner)
		g.p.blank()
	}

	clients, imports, err := g.dataSources()
	if err != nil {
		return err
	}
	for _, imp := range append(append([]string{}, fixedImports...), imports...) {
		g.p.line(imp)
	}
	g.p.blank()
	for _, c := range clients {
		for _, l := range strings.Split(c, "\n") {
			g.p.line(l)
		}
		g.p.blank()
	}

	for _, l := range strings.Split(unsupportedType, "\n") {
		g.p.line(l)
	}
	g.p.blank()

	g.p.section("Enums")
	for _, e := range g.schema.Enums.Values() {
		g.enum(e)
	}

	g.p.section("Models")
	for _, m := range g.schema.Models.Values() {
		if err := g.block(m); err != nil {
			return err
		}
	}

	if g.schema.Views.Len() > 0 {
		g.p.section("Views")
		for _, v := range g.schema.Views.Values() {
			if err := g.block(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) enum(e *ast.Enum) {
	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		values[i] = quote(v)
	}
	g.p.line("export const " + e.Name + " = d.pgEnum(" + quote(e.Name) + ", [" + strings.Join(values, ", ") + "]);")
	g.p.blank()
}

// block renders a model as a pgTable and a view as an existing pgView.
func (g *generator) block(b ast.Block) error {
	var table *ast.Table
	var ctor, suffix string
	switch b := b.(type) {
	case *ast.Model:
		table = &b.Table
		ctor, suffix = "d.pgTable(", ")"
	case *ast.View:
		table = &b.Table
		ctor, suffix = "d.pgView(", ").existing()"
	default:
		return nil
	}

	columns, err := g.columns(table)
	if err != nil {
		return err
	}

	g.p.line("export const " + table.Name + " = " + ctor + quote(table.Name) + ", {")
	g.p.indent()
	for _, c := range columns {
		g.p.line(c + ",")
	}
	g.p.dedent()

	if _, isModel := b.(*ast.Model); isModel && len(table.Constraints) > 0 {
		g.p.line("}, (t) => [")
		g.p.indent()
		for _, c := range table.Constraints {
			g.p.line(constraint(table.Name, c) + ",")
		}
		g.p.dedent()
		g.p.line("]" + suffix + ";")
	} else {
		g.p.line("}" + suffix + ";")
	}
	g.p.blank()
	return nil
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
