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

const blogSchema = `
// Blog schema
generator client {
  provider = "prisma-client-js"
  previewFeatures = ["views"]
}

datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL") // resolved at runtime
  extensions = [pgcrypto]
}

enum Role {
  USER
  ADMIN
}

model Author {
  id    Int    @id @default(autoincrement())
  email String @unique
  role  Role   @default(USER)
  posts Post[]
}

model Post {
  id       Int      @id
  author   Author   @relation(fields: [authorId], references: [id], onDelete: Cascade)
  authorId Int
  tags     String[]
  body     String?

  @@index([authorId, id(sort: Desc)], type: BTree)
}

view PostCount {
  authorId Int
  total    Int
}
`

func parse(t *testing.T, src string) *ast.Schema {
	t.Helper()
	schema, err := Parse(src, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return schema
}

func TestParse_BlogSchema(t *testing.T) {
	s := parse(t, blogSchema)

	assert.Equal(t, []string{"Author", "Post"}, s.Models.Keys())
	assert.Equal(t, []string{"PostCount"}, s.Views.Keys())
	assert.Equal(t, []string{"Role"}, s.Enums.Keys())
	assert.Equal(t, []string{"client"}, s.Generators.Keys())
	assert.Equal(t, []string{"db"}, s.DataSources.Keys())
}

func TestParse_GeneratorAndDataSourceProperties(t *testing.T) {
	s := parse(t, blogSchema)

	gen, ok := s.Generators.Get("client")
	require.True(t, ok)
	assert.Equal(t, []string{"provider", "previewFeatures"}, gen.Properties.Keys())
	v, _ := gen.Properties.Get("provider")
	assert.Equal(t, `"prisma-client-js"`, v)

	ds, ok := s.DataSources.Get("db")
	require.True(t, ok)
	assert.Equal(t, `"postgresql"`, ds.Provider)
	assert.Equal(t, `env("DATABASE_URL")`, ds.URL)
	ext, _ := ds.Properties.Get("extensions")
	assert.Equal(t, "[pgcrypto]", ext)
}

func TestParse_EnumValuesInOrder(t *testing.T) {
	s := parse(t, blogSchema)
	role, ok := s.Enums.Get("Role")
	require.True(t, ok)
	assert.Equal(t, []string{"USER", "ADMIN"}, role.Values)
}

func TestParse_EnumValueMapping(t *testing.T) {
	s := parse(t, "enum Status {\n  DRAFT @map(\"draft\")\n  PUBLISHED\n  ARCHIVED\t@map(name: \"archived\")\n}")
	status, ok := s.Enums.Get("Status")
	require.True(t, ok)
	assert.Equal(t, []string{"draft", "PUBLISHED", "archived"}, status.Values)
}

func TestParse_FieldsAndAssertions(t *testing.T) {
	s := parse(t, blogSchema)
	author, _ := s.Models.Get("Author")

	assert.Equal(t, []string{"id", "email", "role", "posts"}, author.Fields.Keys())

	id, _ := author.Fields.Get("id")
	assert.Equal(t, ast.DataType{Name: "Int"}, id.DataType)
	require.Len(t, id.Assertions, 2)
	assert.IsType(t, &ast.PrimaryKey{}, id.Assertions[0])
	assert.Equal(t, &ast.Default{Expr: "autoincrement()"}, id.Assertions[1])

	posts, _ := author.Fields.Get("posts")
	assert.Equal(t, ast.DataType{Name: "Post", Cardinality: ast.Many}, posts.DataType)

	// @unique becomes a single-field block constraint, not a field assertion.
	email, _ := author.Fields.Get("email")
	assert.Empty(t, email.Assertions)
	require.Len(t, author.Constraints, 1)
	assert.Equal(t, &ast.IndexAssertion{Kind: ast.IndexUnique, Fields: []ast.IndexField{{Name: "email"}}}, author.Constraints[0])
}

func TestParse_RelationMergedAtBlockClose(t *testing.T) {
	s := parse(t, blogSchema)
	post, _ := s.Models.Get("Post")

	// The @relation field itself is virtual and not kept.
	assert.False(t, post.Fields.Has("author"))
	assert.Equal(t, []string{"id", "authorId", "tags", "body"}, post.Fields.Keys())

	authorID, _ := post.Fields.Get("authorId")
	require.Len(t, authorID.Assertions, 1)
	assert.Equal(t, &ast.Relation{Model: "Author", References: "id", OnDelete: "Cascade"}, authorID.Assertions[0])
}

func TestParse_RelationBeforeAndAfterField(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "relation first",
			src: `model Post {
  author   Author @relation(fields: [authorId], references: [id])
  authorId Int
}
model Author {
  id Int @id
}`,
		},
		{
			name: "relation last",
			src: `model Post {
  authorId Int
  author   Author @relation(fields: [authorId], references: [id])
}
model Author {
  id Int @id
}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parse(t, tt.src)
			post, _ := s.Models.Get("Post")
			f, ok := post.Fields.Get("authorId")
			require.True(t, ok)
			require.Len(t, f.Assertions, 1)
			assert.Equal(t, "Author", f.Assertions[0].(*ast.Relation).Model)
		})
	}
}

func TestParse_CompositeRelation(t *testing.T) {
	s := parse(t, `model Line {
  orderId  Int
  orderRev Int
  order    Order @relation("LineOrder", fields: [orderId, orderRev], references: [id, rev], onUpdate: NoAction)
}`)
	line, _ := s.Models.Get("Line")

	id, _ := line.Fields.Get("orderId")
	rev, _ := line.Fields.Get("orderRev")
	assert.Equal(t, &ast.Relation{Name: "LineOrder", Model: "Order", References: "id", OnUpdate: "NoAction"}, id.Assertions[0])
	assert.Equal(t, &ast.Relation{Name: "LineOrder", Model: "Order", References: "rev", OnUpdate: "NoAction"}, rev.Assertions[0])
}

func TestParse_RelationWithoutFieldsStagesNothing(t *testing.T) {
	s := parse(t, `model User {
  id      Int     @id
  profile Profile? @relation("UserProfile")
}`)
	user, _ := s.Models.Get("User")
	assert.Equal(t, []string{"id"}, user.Fields.Keys())
	id, _ := user.Fields.Get("id")
	assert.Len(t, id.Assertions, 1)
}

func TestParse_StorageOverrideKeepsCardinality(t *testing.T) {
	s := parse(t, `model Stat {
  hits    Int?     @db.SmallInt
  created DateTime @db.Timestamptz(6)
}`)
	stat, _ := s.Models.Get("Stat")

	hits, _ := stat.Fields.Get("hits")
	assert.Equal(t, "SmallInt", hits.Storage)
	assert.Equal(t, ast.Maybe, hits.DataType.Cardinality)

	created, _ := stat.Fields.Get("created")
	assert.Equal(t, "Timestamptz", created.Storage)
}

func TestParse_DefaultKeptVerbatim(t *testing.T) {
	s := parse(t, `model Doc {
  id   String @id @default(dbgenerated("gen_random_uuid()"))
  meta Json   @default("{\"a\": 1}")
}`)
	doc, _ := s.Models.Get("Doc")

	id, _ := doc.Fields.Get("id")
	assert.Equal(t, &ast.Default{Expr: `dbgenerated("gen_random_uuid()")`}, id.Assertions[1])

	meta, _ := doc.Fields.Get("meta")
	assert.Equal(t, &ast.Default{Expr: `"{\"a\": 1}"`}, meta.Assertions[0])
}

func TestParse_UnsupportedTypeWithSpaces(t *testing.T) {
	s := parse(t, `model Geo {
  point Unsupported("double precision")? @default(0)
}`)
	geo, _ := s.Models.Get("Geo")
	point, ok := geo.Fields.Get("point")
	require.True(t, ok)
	assert.Equal(t, ast.DataType{Name: `Unsupported("double precision")`, Cardinality: ast.Maybe}, point.DataType)
	assert.Len(t, point.Assertions, 1)
}

func TestParse_CommentInsideStringIsKept(t *testing.T) {
	s := parse(t, `datasource db {
  provider = "postgresql"
  url      = "postgresql://user@localhost/db" // local
}`)
	ds, _ := s.DataSources.Get("db")
	assert.Equal(t, `"postgresql://user@localhost/db"`, ds.URL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		target  any
		line    int
		errText string
	}{
		{
			name:    "unsupported block attribute",
			src:     "model A {\n  id Int\n  @@map(\"a\")\n}",
			target:  new(*UnsupportedBlockAttributeError),
			line:    3,
			errText: "@@map",
		},
		{
			name:    "unsupported field attribute",
			src:     "model A {\n  updated DateTime @updatedAt\n}",
			target:  new(*UnsupportedFieldAttributeError),
			line:    2,
			errText: "@updatedAt",
		},
		{
			name:    "relation to unknown local field",
			src:     "model A {\n  b B @relation(fields: [bId], references: [id])\n}",
			target:  new(*UnknownRelationFieldError),
			line:    2,
			errText: `"bId"`,
		},
		{
			name:    "unterminated block",
			src:     "enum Role {\n  USER\n",
			target:  new(*SyntaxError),
			line:    1,
			errText: "never closed",
		},
		{
			name:    "stray line",
			src:     "id Int\n",
			target:  new(*SyntaxError),
			line:    1,
			errText: "outside of a block",
		},
		{
			name:    "field without type",
			src:     "model A {\n  id\n}",
			target:  new(*SyntaxError),
			line:    2,
			errText: "no type",
		},
		{
			name:    "duplicate model",
			src:     "model A {\n}\nmodel A {\n}",
			target:  new(*SyntaxError),
			line:    3,
			errText: "duplicate model",
		},
		{
			name:    "mismatched relation lists",
			src:     "model A {\n  x Int\n  b B @relation(fields: [x], references: [id, rev])\n}",
			target:  new(*SyntaxError),
			line:    3,
			errText: "1 fields but 2 references",
		},
		{
			name:    "enum missing its closing brace",
			src:     "enum Role {\n  ADMIN\n  USER\n\nmodel User {\n  id Int @id\n  role Role\n}\n",
			target:  new(*SyntaxError),
			line:    5,
			errText: "closing } missing",
		},
		{
			name:    "enum value that is not an identifier",
			src:     "enum Role {\n  ADMIN = 1\n}",
			target:  new(*SyntaxError),
			line:    2,
			errText: "enum",
		},
		{
			name:    "unsupported enum value attribute",
			src:     "enum Role {\n  ADMIN @default\n}",
			target:  new(*UnsupportedFieldAttributeError),
			line:    2,
			errText: "@default",
		},
		{
			name:    "unique on relation field",
			src:     "model A {\n  bId Int\n  b B @relation(fields: [bId], references: [id]) @unique\n}",
			target:  new(*SyntaxError),
			line:    3,
			errText: "@unique on relation field",
		},
		{
			name:    "property without assignment",
			src:     "generator client {\n  provider\n}",
			target:  new(*SyntaxError),
			line:    2,
			errText: "key = value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := Parse(tt.src, WithFile("schema.prisma"))
			require.Error(t, err)
			assert.Nil(t, schema)
			assert.True(t, errors.As(err, tt.target), "unexpected error type %T", err)
			assert.Contains(t, err.Error(), tt.errText)

			var perr Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, Position{File: "schema.prisma", Line: tt.line}, perr.Position())
		})
	}
}

func TestParser_Reusable(t *testing.T) {
	p := New()
	_, err := p.Parse("model A {\n  x X @relation(fields: [y], references: [id])")
	require.Error(t, err)

	s, err := p.Parse("model B {\n  id Int\n}")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, s.Models.Keys())
}

func TestNormalize(t *testing.T) {
	lines := Normalize("// header\n\nmodel A { // open\n  id Int\n}\n")
	assert.Equal(t, []Line{
		{Num: 3, Text: "model A {"},
		{Num: 4, Text: "id Int"},
		{Num: 5, Text: "}"},
	}, lines)
}

func TestParse_LogsUnrecognizedIndexModifier(t *testing.T) {
	logger, rec := testutil.NewRecordingLogger(t, slog.LevelDebug)

	_, err := Parse("model A {\n  name String\n  @@index([name(length: 10)])\n}", WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, []string{"could not understand index field modifier"}, rec.Messages(slog.LevelWarn))

	mod, ok := rec.Attr("could not understand index field modifier", "modifier")
	require.True(t, ok)
	assert.Equal(t, "length: 10", mod)

	assert.Equal(t, []string{"block opened", "block closed"}, rec.Messages(slog.LevelDebug))
}
