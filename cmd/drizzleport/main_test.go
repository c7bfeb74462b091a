// Package main provides end-to-end tests for the drizzleport CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/drizzleport/internal/cli"
	"github.com/leapstack-labs/drizzleport/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

model User {
  id    Int    @id
  name  String
  age   Int?
  posts Post[]
}

model Post {
  id       Int  @id
  author   User @relation(fields: [authorId], references: [id], onDelete: Cascade)
  authorId Int
}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "drizzleport v")
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"convert", "inspect", "version", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "drizzleport")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("schema.prisma", []byte(schema), 0o600))

	_, err := run(t, "convert", "--output", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.ts"))
	require.NoError(t, err)
	code := string(data)

	assert.Contains(t, code, `  id: d.integer("id").notNull().primaryKey(),`)
	assert.Contains(t, code, `  name: d.text("name").notNull(),`)
	assert.Contains(t, code, `  age: d.integer("age"),`)
	assert.Contains(t, code,
		`  authorId: d.integer("authorId").notNull().references((): d.AnyPgColumn => User.id, { onDelete: "cascade" }),`)
	assert.Contains(t, code, `export const dbClient = postgres(process.env["DATABASE_URL"]!);`)
	assert.NotContains(t, code, "posts:")
}

func TestGenerateAliasWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prisma"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prisma", "schema.prisma"), []byte(schema), 0o600))
	require.NoError(t, os.WriteFile("drizzleport.yaml", []byte("schema: prisma/schema.prisma\nout: src/db.ts\nbanner: false\n"), 0o600))

	_, err := run(t, "generate", "-o", "markdown")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "src", "db.ts"))
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "// Code generated"))
	assert.Contains(t, string(data), `export const User = d.pgTable("User", {`)
}

func TestConvertReportsParseErrorPosition(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("schema.prisma", []byte("model A {\n  id Int @id\n  @@map(\"a\")\n}\n"), 0o600))

	_, err := run(t, "convert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema.prisma:3")
	assert.Contains(t, err.Error(), "@@map")

	_, statErr := os.Stat(filepath.Join(dir, "out.ts"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvalidOutputFormat(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "inspect", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
