package commands

import (
	"encoding/json"
	"testing"

	clitest "github.com/leapstack-labs/drizzleport/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInspect_JSON(t *testing.T) {
	t.Chdir(t.TempDir())
	schema := clitest.WriteSchema(t, clitest.BlogSchema)

	stdout, _, err := execute(t, NewInspectCommand(), schema, "--output", "json")
	require.NoError(t, err)

	var dump struct {
		Models map[string]struct {
			Fields map[string]json.RawMessage `json:"fields"`
		} `json:"models"`
		Enums       map[string]struct{ Values []string } `json:"enums"`
		DataSources map[string]struct{ Provider string } `json:"datasources"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))

	require.Contains(t, dump.Models, "Post")
	assert.Contains(t, dump.Models["Post"].Fields, "authorId")
	assert.NotContains(t, dump.Models["Post"].Fields, "author", "relation fields are merged, not kept")
	assert.Equal(t, []string{"USER", "ADMIN"}, dump.Enums["Role"].Values)
	assert.Equal(t, `"postgresql"`, dump.DataSources["db"].Provider)
}

func TestInspect_YAML(t *testing.T) {
	t.Chdir(t.TempDir())
	schema := clitest.WriteSchema(t, clitest.BlogSchema)

	stdout, _, err := execute(t, NewInspectCommand(), schema, "-o", "yaml")
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &node))
	require.Len(t, node.Content, 1)
	root := node.Content[0]
	require.Equal(t, yaml.MappingNode, root.Kind)
	assert.Equal(t, "models", root.Content[0].Value)

	models := root.Content[1]
	require.Equal(t, yaml.MappingNode, models.Kind)
	assert.Equal(t, "Author", models.Content[0].Value, "declaration order kept")
	assert.Equal(t, "Post", models.Content[2].Value)
}

func TestInspect_Markdown(t *testing.T) {
	t.Chdir(t.TempDir())
	schema := clitest.WriteSchema(t, clitest.BlogSchema)

	stdout, _, err := execute(t, NewInspectCommand(), schema, "-o", "markdown")
	require.NoError(t, err)

	clitest.AssertNoANSI(t, stdout)
	clitest.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "# Schema "+schema)
	assert.Contains(t, stdout, "- **Models:** 2")
	assert.Contains(t, stdout, "## Models")
	assert.Contains(t, stdout, "## Constraints")
	assert.Contains(t, stdout, "## Enums")
	assert.Contains(t, stdout, "## Datasources")
	assert.Contains(t, stdout, "## Generators")
	assert.NotContains(t, stdout, "## Views")
	assert.Contains(t, stdout, "| Model | Field | Type | Storage | Assertions |")
	assert.Contains(t, stdout, "-> Author.id onDelete:Cascade")
}

func TestInspect_Text(t *testing.T) {
	t.Chdir(t.TempDir())
	schema := clitest.WriteSchema(t, clitest.BlogSchema)

	stdout, _, err := execute(t, NewInspectCommand(), schema, "-o", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Models")
	assert.Contains(t, stdout, "┌")
	assert.Contains(t, stdout, "authorId")
	assert.Contains(t, stdout, "Role")
}

func TestInspect_ParseError(t *testing.T) {
	t.Chdir(t.TempDir())
	schema := clitest.WriteSchema(t, "model A {\n")

	_, _, err := execute(t, NewInspectCommand(), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never closed")
}
