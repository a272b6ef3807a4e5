package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommandSubcommands(t *testing.T) {
	migrateCmd, _, err := NewRootCmd().Find([]string{"migrate"})
	require.NoError(t, err)

	var names []string
	for _, child := range migrateCmd.Commands() {
		names = append(names, child.Name())
	}
	assert.ElementsMatch(t, []string{"up", "status"}, names)
}

func TestMigrateUpThenStatus(t *testing.T) {
	t.Setenv("PERSONA_DATABASE_PATH", filepath.Join(t.TempDir(), "persona.db"))

	run := func(args ...string) string {
		t.Helper()
		out, err := executeCommand(t, args...)
		require.NoError(t, err, "%v\n%s", args, out)
		return out
	}

	before := run("migrate", "status")
	assert.Contains(t, before, "3 of 3 table(s) pending")

	dry := run("migrate", "up", "--dry-run")
	assert.Contains(t, dry, "Dry run mode")
	assert.Contains(t, dry, "3 of 3 table(s) pending")

	up := run("migrate", "up", "--dry-run=false")
	assert.Contains(t, up, "Applied migrations for 3 table(s)")

	after := run("migrate", "status")
	for _, table := range []string{"creators", "entitlements", "chunk_documents"} {
		assert.Contains(t, after, table)
	}
	assert.Contains(t, after, "0 of 3 table(s) pending")
}
