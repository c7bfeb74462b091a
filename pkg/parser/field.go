package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// attribute is one @name or @name(args) call from a field line.
type attribute struct {
	name    string
	args    string
	hasArgs bool
}

// parseField handles "name Type @attr @attr(args) ...".
func (p *Parser) parseField(table *ast.Table, line Line) error {
	pos := p.pos(line)
	name, typeToken, rest, err := splitFieldLine(line.Text)
	if err != nil {
		return newSyntaxError(pos, "%s in %q", err.Error(), line.Text)
	}
	if table.Fields.Has(name) {
		return newSyntaxError(pos, "duplicate field %q in %q", name, table.Name)
	}

	attrs, err := scanAttributes(rest)
	if err != nil {
		return newSyntaxError(pos, "%s in %q", err.Error(), line.Text)
	}

	field := ast.NewField(name, typeToken)
	virtual := false
	var unique *ast.IndexAssertion
	for _, attr := range attrs {
		switch {
		case attr.name == "id":
			field.Add(&ast.PrimaryKey{})
		case attr.name == "unique":
			unique = &ast.IndexAssertion{Kind: ast.IndexUnique, Fields: []ast.IndexField{{Name: name}}}
			for _, arg := range splitTopLevel(attr.args, ',') {
				if k, v, ok := splitNamed(arg); ok && k == "map" {
					unique.Map = unquote(v)
				}
			}
		case attr.name == "default":
			if !attr.hasArgs || strings.TrimSpace(attr.args) == "" {
				return newSyntaxError(pos, "@default on field %q needs an expression", name)
			}
			field.Add(&ast.Default{Expr: strings.TrimSpace(attr.args)})
		case strings.HasPrefix(attr.name, "db."):
			storage := strings.TrimPrefix(attr.name, "db.")
			if storage == "" {
				return newSyntaxError(pos, "empty storage type on field %q", name)
			}
			field.Storage = storage
		case attr.name == "relation":
			virtual = true
			staged, err := p.parseRelation(field, attr.args, pos)
			if err != nil {
				return err
			}
			p.staged = append(p.staged, staged...)
		default:
			return newUnsupportedFieldAttributeError(pos, name, attr.name)
		}
	}

	if virtual {
		// The field produces no column, so there is nothing to index.
		if unique != nil {
			return newSyntaxError(pos, "@unique on relation field %q; put it on the scalar field it references", name)
		}
		return nil
	}
	if unique != nil {
		table.AddConstraint(unique)
	}
	table.Fields.Set(name, field)
	return nil
}

// splitFieldLine separates the field name, its type token and the trailing
// attribute text. The type token may contain parenthesized, quoted text such
// as Unsupported("double precision").
func splitFieldLine(text string) (name, typeToken, rest string, err error) {
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return "", "", "", fmt.Errorf("field has no type")
	}
	name = text[:i]
	if !isIdent(name) {
		return "", "", "", fmt.Errorf("invalid field name %q", name)
	}

	remainder := strings.TrimLeft(text[i:], " \t")
	sc := &scanner{src: remainder}
	end := len(remainder)
	for sc.pos < len(sc.src) {
		at := sc.pos
		c, top := sc.step()
		if top && (c == ' ' || c == '\t') {
			end = at
			break
		}
	}
	if sc.quote || sc.depth > 0 {
		return "", "", "", fmt.Errorf("unbalanced type expression")
	}
	typeToken = remainder[:end]
	if strings.HasPrefix(typeToken, "@") {
		return "", "", "", fmt.Errorf("field %q has no type", name)
	}
	return name, typeToken, strings.TrimSpace(remainder[end:]), nil
}

// scanAttributes tokenizes attribute text into @name / @name(args) calls.
func scanAttributes(text string) ([]attribute, error) {
	var attrs []attribute
	i := 0
	for i < len(text) {
		switch c := text[i]; {
		case c == ' ' || c == '\t':
			i++
			continue
		case c != '@':
			return nil, fmt.Errorf("unexpected %q where an attribute was expected", text[i:])
		}

		start := i + 1
		i = start
		for i < len(text) && (isIdentByte(text[i]) || text[i] == '.') {
			i++
		}
		attr := attribute{name: text[start:i]}
		if attr.name == "" {
			return nil, fmt.Errorf("empty attribute name")
		}
		if i < len(text) && text[i] == '(' {
			end := matchClose(text, i)
			if end < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in @%s", attr.name)
			}
			attr.args = text[i+1 : end-1]
			attr.hasArgs = true
			i = end
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// parseRelation reads @relation arguments. When both fields and references
// are given, one relation per local field is staged, pairing the lists
// positionally. A @relation without them (the back-reference side, or one
// carrying only a name) stages nothing.
func (p *Parser) parseRelation(field *ast.Field, args string, pos Position) ([]stagedRelation, error) {
	rel := ast.Relation{Model: field.DataType.Name}
	var locals, refs []string

	for _, arg := range splitTopLevel(args, ',') {
		key, value, ok := splitNamed(arg)
		if !ok {
			rel.Name = unquote(arg)
			continue
		}
		switch key {
		case "name":
			rel.Name = unquote(value)
		case "fields":
			locals = listItems(value)
		case "references":
			refs = listItems(value)
		case "onDelete":
			rel.OnDelete = value
		case "onUpdate":
			rel.OnUpdate = value
		case "map":
			// constraint name only; the generated reference is unnamed
		default:
			return nil, newSyntaxError(pos, "unknown @relation argument %q on field %q", key, field.Name)
		}
	}

	if len(locals) == 0 && len(refs) == 0 {
		return nil, nil
	}
	if len(locals) != len(refs) {
		return nil, newSyntaxError(pos, "@relation on field %q has %d fields but %d references", field.Name, len(locals), len(refs))
	}

	staged := make([]stagedRelation, len(locals))
	for i, local := range locals {
		r := rel
		r.References = refs[i]
		staged[i] = stagedRelation{local: local, relation: &r, pos: pos}
	}
	return staged, nil
}
