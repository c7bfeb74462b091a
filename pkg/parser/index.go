package parser

import (
	"strings"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// parseBlockAttribute handles @@index(...) and @@unique(...). Any other
// @@-attribute aborts the parse.
func (p *Parser) parseBlockAttribute(line Line) (*ast.IndexAssertion, error) {
	pos := p.pos(line)
	text := strings.TrimPrefix(line.Text, "@@")

	i := 0
	for i < len(text) && isIdentByte(text[i]) {
		i++
	}
	name := text[:i]

	var kind ast.IndexKind
	switch name {
	case "index":
		kind = ast.IndexPlain
	case "unique":
		kind = ast.IndexUnique
	default:
		return nil, newUnsupportedBlockAttributeError(pos, name, line.Text)
	}

	if i >= len(text) || text[i] != '(' || matchClose(text, i) != len(text) {
		return nil, newSyntaxError(pos, "malformed @@%s call %q", name, line.Text)
	}
	args := splitTopLevel(text[i+1:len(text)-1], ',')

	idx := &ast.IndexAssertion{Kind: kind}
	for n, arg := range args {
		key, value, ok := splitNamed(arg)
		switch {
		case !ok && n == 0:
			idx.Fields = p.parseIndexFields(arg, pos)
		case !ok:
			return nil, newSyntaxError(pos, "unexpected positional argument %q in @@%s", arg, name)
		case key == "fields":
			idx.Fields = p.parseIndexFields(value, pos)
		case key == "type":
			idx.Using = value
		case key == "map":
			idx.Map = unquote(value)
		case key == "name":
			// client-side name, irrelevant to the generated table
		default:
			p.logger.Warn("ignoring unrecognized index argument",
				"argument", key, "attribute", "@@"+name, "position", pos.String())
		}
	}

	if len(idx.Fields) == 0 {
		return nil, newSyntaxError(pos, "@@%s declares no fields", name)
	}
	return idx, nil
}

// parseIndexFields accepts "[a, b(sort: Desc)]" or a single bare field.
func (p *Parser) parseIndexFields(spec string, pos Position) []ast.IndexField {
	items := listItems(spec)
	fields := make([]ast.IndexField, 0, len(items))
	for _, item := range items {
		fields = append(fields, p.parseIndexField(item, pos))
	}
	return fields
}

// parseIndexField reads one index entry with its optional modifier group.
// Unknown modifiers are logged and skipped rather than aborting the parse.
func (p *Parser) parseIndexField(item string, pos Position) ast.IndexField {
	name, mods, ok := strings.Cut(item, "(")
	field := ast.IndexField{Name: strings.TrimSpace(name)}
	if !ok {
		return field
	}
	mods = strings.TrimSuffix(strings.TrimSpace(mods), ")")

	for _, mod := range splitTopLevel(mods, ',') {
		key, value, _ := splitNamed(mod)
		switch {
		case key == "sort" && (value == string(ast.SortAsc) || value == string(ast.SortDesc)):
			field.Sort = ast.SortOrder(value)
		case key == "ops":
			field.Ops = parseOps(value)
		default:
			p.logger.Warn("could not understand index field modifier",
				"modifier", mod, "field", field.Name, "position", pos.String())
		}
	}
	return field
}

// parseOps unwraps raw("...") operator classes and passes bare tokens through.
func parseOps(value string) string {
	if inner, ok := strings.CutPrefix(value, "raw("); ok {
		return unquote(strings.TrimSuffix(inner, ")"))
	}
	return value
}
