package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootHelpListsSubcommands(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "reindex", "search", "users", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, err = executeCommand(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestUsersCreateAndList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKMIND_DB_PATH", filepath.Join(dir, "test.db"))

	out, err := executeCommand(t, "users", "create", "admin", "--password", "pw", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, `Created user "admin"`)

	out, err = executeCommand(t, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "active")
}

func TestUsersCreateRequiresPassword(t *testing.T) {
	_, err := executeCommand(t, "users", "create", "bob")
	require.Error(t, err)
}

func TestSearchCommandEmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKMIND_DB_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("BOOKMIND_EMBEDDER", "static")

	out, err := executeCommand(t, "search", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No results.")
}
