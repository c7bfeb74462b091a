package parser

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/drizzleport/internal/testutil"
	"github.com/leapstack-labs/drizzleport/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConstraint(t *testing.T, line string) (*ast.IndexAssertion, error) {
	t.Helper()
	p := New(WithLogger(testutil.NewTestLogger(t)))
	return p.parseBlockAttribute(Line{Num: 1, Text: line})
}

func TestParseBlockAttribute(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *ast.IndexAssertion
	}{
		{
			name: "bare field",
			line: "@@index(email)",
			want: &ast.IndexAssertion{Kind: ast.IndexPlain, Fields: []ast.IndexField{{Name: "email"}}},
		},
		{
			name: "field list",
			line: "@@unique([firstName, lastName])",
			want: &ast.IndexAssertion{Kind: ast.IndexUnique, Fields: []ast.IndexField{{Name: "firstName"}, {Name: "lastName"}}},
		},
		{
			name: "sort and access method",
			line: "@@index([createdAt(sort: Desc), id(sort: Asc)], type: BTree)",
			want: &ast.IndexAssertion{
				Kind:   ast.IndexPlain,
				Fields: []ast.IndexField{{Name: "createdAt", Sort: ast.SortDesc}, {Name: "id", Sort: ast.SortAsc}},
				Using:  "BTree",
			},
		},
		{
			name: "raw operator class",
			line: `@@index([title(ops: raw("gin_trgm_ops"))], type: Gin)`,
			want: &ast.IndexAssertion{
				Kind:   ast.IndexPlain,
				Fields: []ast.IndexField{{Name: "title", Ops: "gin_trgm_ops"}},
				Using:  "Gin",
			},
		},
		{
			name: "bare operator class with sort",
			line: "@@index([data(ops: JsonbPathOps, sort: Asc)], type: Gin)",
			want: &ast.IndexAssertion{
				Kind:   ast.IndexPlain,
				Fields: []ast.IndexField{{Name: "data", Ops: "JsonbPathOps", Sort: ast.SortAsc}},
				Using:  "Gin",
			},
		},
		{
			name: "named fields argument and map",
			line: `@@unique(fields: [a, b], map: "a_b_unique", name: "ab")`,
			want: &ast.IndexAssertion{
				Kind:   ast.IndexUnique,
				Fields: []ast.IndexField{{Name: "a"}, {Name: "b"}},
				Map:    "a_b_unique",
			},
		},
		{
			name: "unknown modifier skipped",
			line: "@@index([name(length: 10, sort: Desc)])",
			want: &ast.IndexAssertion{Kind: ast.IndexPlain, Fields: []ast.IndexField{{Name: "name", Sort: ast.SortDesc}}},
		},
		{
			name: "invalid sort value skipped",
			line: "@@index([name(sort: Sideways)])",
			want: &ast.IndexAssertion{Kind: ast.IndexPlain, Fields: []ast.IndexField{{Name: "name"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConstraint(t, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBlockAttribute_Errors(t *testing.T) {
	t.Run("unsupported keyword", func(t *testing.T) {
		_, err := parseConstraint(t, "@@id([a, b])")
		var target *UnsupportedBlockAttributeError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "id", target.Attribute)
	})

	t.Run("missing parentheses", func(t *testing.T) {
		_, err := parseConstraint(t, "@@index")
		var target *SyntaxError
		assert.True(t, errors.As(err, &target))
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := parseConstraint(t, "@@unique([])")
		var target *SyntaxError
		assert.True(t, errors.As(err, &target))
	})
}

func TestScanAttributes(t *testing.T) {
	attrs, err := scanAttributes(`@id @default(dbgenerated("now()")) @db.Timestamptz(6) @unique`)
	require.NoError(t, err)
	assert.Equal(t, []attribute{
		{name: "id"},
		{name: "default", args: `dbgenerated("now()")`, hasArgs: true},
		{name: "db.Timestamptz", args: "6", hasArgs: true},
		{name: "unique"},
	}, attrs)

	_, err = scanAttributes("@default(now()")
	assert.Error(t, err)

	_, err = scanAttributes("garbage")
	assert.Error(t, err)
}

func TestSplitTopLevel(t *testing.T) {
	got := splitTopLevel(`[a, b(sort: Desc)], type: Gin, map: "x, y"`, ',')
	assert.Equal(t, []string{"[a, b(sort: Desc)]", "type: Gin", `map: "x, y"`}, got)
}

func TestParseBlockAttribute_WarnsOnUnknownInput(t *testing.T) {
	logger, rec := testutil.NewRecordingLogger(t, slog.LevelWarn)
	p := New(WithLogger(logger))

	idx, err := p.parseBlockAttribute(Line{Num: 7, Text: "@@index([title(length: 10)], clustered: true)"})
	require.NoError(t, err)
	assert.Equal(t, []ast.IndexField{{Name: "title"}}, idx.Fields)

	assert.ElementsMatch(t, []string{
		"ignoring unrecognized index argument",
		"could not understand index field modifier",
	}, rec.Messages(slog.LevelWarn))

	arg, ok := rec.Attr("ignoring unrecognized index argument", "argument")
	require.True(t, ok)
	assert.Equal(t, "clustered", arg)
}
