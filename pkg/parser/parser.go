// Package parser turns a Prisma-style schema into an ast.Schema.
//
// Parsing is line driven. Input is normalized (comments stripped, blank
// lines dropped), then a small state machine walks the lines: a header such
// as "model User {" opens a block and registers an empty entity, lines inside
// the block mutate that entity, and a lone "}" closes it. Relation metadata
// found while a block is open is staged and merged into the owning scalar
// fields when the block closes, so @relation may appear before or after the
// field it points at.
package parser

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// state is the block the parser is currently inside.
type state int

const (
	stateIdle state = iota
	stateModel
	stateView
	stateEnum
	stateGenerator
	stateDataSource
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateModel:
		return "model"
	case stateView:
		return "view"
	case stateEnum:
		return "enum"
	case stateGenerator:
		return "generator"
	case stateDataSource:
		return "datasource"
	default:
		return "unknown"
	}
}

// headers maps block keywords to the state they open.
var headers = []struct {
	keyword string
	state   state
}{
	{"model", stateModel},
	{"view", stateView},
	{"enum", stateEnum},
	{"generator", stateGenerator},
	{"datasource", stateDataSource},
}

const blockTerminator = "}"

// stagedRelation is a relation assertion waiting for its block to close.
type stagedRelation struct {
	local    string
	relation *ast.Relation
	pos      Position
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for warnings and debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithFile sets the file name reported in error positions.
func WithFile(name string) Option {
	return func(p *Parser) { p.file = name }
}

// Parser parses schema text. A Parser may be reused; every call to Parse
// starts from a fresh state.
type Parser struct {
	file   string
	logger *slog.Logger

	schema  *ast.Schema
	state   state
	current ast.Block
	opened  Position
	staged  []stagedRelation
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a convenience wrapper around New(opts...).Parse(src).
func Parse(src string, opts ...Option) (*ast.Schema, error) {
	return New(opts...).Parse(src)
}

// Parse builds the AST for src. The returned schema is complete: every block
// has been closed and every staged relation merged. Any error aborts the
// parse and no schema is returned.
func (p *Parser) Parse(src string) (*ast.Schema, error) {
	p.schema = ast.NewSchema()
	p.state = stateIdle
	p.current = nil
	p.staged = nil

	for _, line := range Normalize(src) {
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}

	if p.state != stateIdle {
		return nil, newSyntaxError(p.opened, "%s %q is never closed", p.state, p.current.BlockName())
	}
	return p.schema, nil
}

func (p *Parser) pos(line Line) Position {
	return Position{File: p.file, Line: line.Num}
}

func (p *Parser) parseLine(line Line) error {
	if p.state == stateIdle {
		return p.openBlock(line)
	}
	if line.Text == blockTerminator {
		return p.closeBlock(line)
	}

	switch b := p.current.(type) {
	case *ast.Model:
		return p.parseTableLine(&b.Table, line)
	case *ast.View:
		return p.parseTableLine(&b.Table, line)
	case *ast.Enum:
		value, err := p.parseEnumValue(b, line)
		if err != nil {
			return err
		}
		b.Values = append(b.Values, value)
		return nil
	case *ast.Generator:
		key, value, err := p.parseProperty(line)
		if err != nil {
			return err
		}
		b.Properties.Set(key, value)
		return nil
	case *ast.DataSource:
		key, value, err := p.parseProperty(line)
		if err != nil {
			return err
		}
		b.Set(key, value)
		return nil
	default:
		return newSyntaxError(p.pos(line), "no open block for %q", line.Text)
	}
}

// openBlock recognizes a header line and registers the new, empty entity.
func (p *Parser) openBlock(line Line) error {
	for _, h := range headers {
		rest, ok := strings.CutPrefix(line.Text, h.keyword+" ")
		if !ok {
			continue
		}
		name, ok := strings.CutSuffix(rest, "{")
		name = strings.TrimSpace(name)
		if !ok || !isIdent(name) {
			return newSyntaxError(p.pos(line), "malformed %s header %q", h.keyword, line.Text)
		}

		var b ast.Block
		var exists bool
		switch h.state {
		case stateModel:
			b, exists = ast.NewModel(name), p.schema.Models.Has(name)
		case stateView:
			b, exists = ast.NewView(name), p.schema.Views.Has(name)
		case stateEnum:
			b, exists = ast.NewEnum(name), p.schema.Enums.Has(name)
		case stateGenerator:
			b, exists = ast.NewGenerator(name), p.schema.Generators.Has(name)
		case stateDataSource:
			b, exists = ast.NewDataSource(name), p.schema.DataSources.Has(name)
		}
		if exists {
			return newSyntaxError(p.pos(line), "duplicate %s %q", h.keyword, name)
		}

		p.schema.Add(b)
		p.current = b
		p.state = h.state
		p.opened = p.pos(line)
		p.logger.Debug("block opened", "kind", h.keyword, "name", name, "line", line.Num)
		return nil
	}
	return newSyntaxError(p.pos(line), "unexpected %q outside of a block", line.Text)
}

// isHeader reports whether text opens a block.
func isHeader(text string) bool {
	for _, h := range headers {
		if rest, ok := strings.CutPrefix(text, h.keyword+" "); ok && strings.HasSuffix(rest, "{") {
			return true
		}
	}
	return false
}

// parseEnumValue reads "VALUE" or "VALUE @map(\"label\")". The mapped label,
// when present, is the value stored in the database and replaces the name.
func (p *Parser) parseEnumValue(e *ast.Enum, line Line) (string, error) {
	pos := p.pos(line)
	if isHeader(line.Text) {
		return "", newSyntaxError(pos, "%q opens a block inside enum %q; is a closing } missing?", line.Text, e.Name)
	}

	name, rest := line.Text, ""
	if i := strings.IndexAny(line.Text, " \t"); i >= 0 {
		name, rest = line.Text[:i], line.Text[i:]
	}
	if !isIdent(name) {
		return "", newSyntaxError(pos, "invalid enum value %q in %q", line.Text, e.Name)
	}
	attrs, err := scanAttributes(strings.TrimSpace(rest))
	if err != nil {
		return "", newSyntaxError(pos, "%s in enum %q", err.Error(), e.Name)
	}

	value := name
	for _, attr := range attrs {
		if attr.name != "map" || !attr.hasArgs {
			return "", newUnsupportedFieldAttributeError(pos, name, attr.name)
		}
		label := strings.TrimSpace(attr.args)
		if k, v, ok := splitNamed(label); ok && k == "name" {
			label = v
		}
		value = unquote(label)
	}
	return value, nil
}

// closeBlock seals the current entity, merging staged relations first.
func (p *Parser) closeBlock(line Line) error {
	if err := p.flushRelations(); err != nil {
		return err
	}
	p.logger.Debug("block closed", "kind", p.state.String(), "name", p.current.BlockName(), "line", line.Num)
	p.state = stateIdle
	p.current = nil
	return nil
}

// flushRelations attaches every staged relation to the scalar field it was
// keyed by and clears the staging buffer.
func (p *Parser) flushRelations() error {
	defer func() { p.staged = nil }()
	if len(p.staged) == 0 {
		return nil
	}

	var table *ast.Table
	switch b := p.current.(type) {
	case *ast.Model:
		table = &b.Table
	case *ast.View:
		table = &b.Table
	default:
		return nil
	}

	for _, s := range p.staged {
		field, ok := table.Fields.Get(s.local)
		if !ok {
			return newUnknownRelationFieldError(s.pos, table.Name, s.local)
		}
		field.Add(s.relation)
	}
	return nil
}

// parseTableLine routes a model or view line to the constraint parser or the
// field parser.
func (p *Parser) parseTableLine(table *ast.Table, line Line) error {
	if strings.HasPrefix(line.Text, "@@") {
		idx, err := p.parseBlockAttribute(line)
		if err != nil {
			return err
		}
		table.AddConstraint(idx)
		return nil
	}
	return p.parseField(table, line)
}

// parseProperty splits a "key = value" generator or datasource line.
func (p *Parser) parseProperty(line Line) (string, string, error) {
	key, value, ok := strings.Cut(line.Text, "=")
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if !ok || !isIdent(key) {
		return "", "", newSyntaxError(p.pos(line), "expected key = value, got %q", line.Text)
	}
	return key, value, nil
}
