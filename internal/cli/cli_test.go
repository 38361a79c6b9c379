package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInfer_Stdin(t *testing.T) {
	out, err := run(t, newInferCmd(), `{"nombre": "Juan", "tags": []}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  /** Property: nombre */\n  nombre: string;\n  /** Property: tags */\n  tags: any[];\n}\n", out)
}

func TestInfer_Declare(t *testing.T) {
	out, err := run(t, newInferCmd(), `[1, 2]`, "--declare", "--var", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "declare var ctx: number[];\n", out)
}

func TestInfer_YAMLFileAndSelect(t *testing.T) {
	path := writeFile(t, "ctx.yaml", "user:\n  id: 3\n  name: x\n")

	out, err := run(t, newInferCmd(), "", path, "--select", ".user.id")
	require.NoError(t, err)
	assert.Equal(t, "number\n", out)
}

func TestInfer_FormatOverride(t *testing.T) {
	out, err := run(t, newInferCmd(), "a: true\n", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "a: boolean;")
}

func TestInfer_Errors(t *testing.T) {
	_, err := run(t, newInferCmd(), `{"a": `)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	_, err = run(t, newInferCmd(), `{}`, "--format", "toml")
	require.Error(t, err)

	_, err = run(t, newInferCmd(), "", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestSchema_Closed(t *testing.T) {
	out, err := run(t, newSchemaCmd(), `{"id": 1}`, "--closed")
	require.NoError(t, err)
	assert.Contains(t, out, `"additionalProperties": false`)
	assert.Contains(t, out, `"type": "integer"`)
}

func TestSchema_Label(t *testing.T) {
	out, err := run(t, newSchemaCmd(), `{"id": 1}`, "--label", "Property")
	require.NoError(t, err)
	assert.Contains(t, out, `"description": "Property: id"`)
}

func TestValidate(t *testing.T) {
	schemaPath := writeFile(t, "schema.json", `{"type": "object", "properties": {"id": {"type": "integer"}}, "required": ["id"]}`)

	out, err := run(t, newValidateCmd(), `{"id": 1}`, "--schema", schemaPath)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = run(t, newValidateCmd(), `{"id": "x"}`, "--schema", schemaPath)
	require.Error(t, err)
	assert.Contains(t, out, "/id: ")
	assert.Equal(t, "1 validation error(s)", err.Error())
}

func TestRootCommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range RootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"infer", "schema", "validate", "serve"})
}
