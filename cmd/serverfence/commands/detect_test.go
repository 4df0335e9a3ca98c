package commands_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/cmd/serverfence/commands"
)

func runDetect(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := commands.NewDetectCommand()

	var out strings.Builder

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestDetect_Next(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"next":"^15.0.0"}}`)

	out, err := runDetect(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "next")
	assert.Contains(t, out, dir)
}

func TestDetect_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"@tanstack/react-start":"^1.0.0"}}`)

	out, err := runDetect(t, "--json", dir)
	require.NoError(t, err)

	var decoded struct {
		Framework           string   `json:"framework"`
		Root                string   `json:"root"`
		ServerFunctionNames []string `json:"serverFunctionNames"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "tanstack-start", decoded.Framework)
	assert.Equal(t, dir, decoded.Root)
	assert.Contains(t, decoded.ServerFunctionNames, "createServerFn")
}

func TestDetect_NoProject(t *testing.T) {
	out, err := runDetect(t, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "unknown")
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.yaml", "rule:\n  mode: client-only\n")
	bad := writeFile(t, dir, "bad.yaml", "rule:\n  mode: everything\n")

	cmd := commands.NewValidateConfigCommand()

	var out strings.Builder

	cmd.SetOut(&out)
	cmd.SetArgs([]string{good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "is valid")

	out.Reset()

	cmd = commands.NewValidateConfigCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{bad})
	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "issue")
}
