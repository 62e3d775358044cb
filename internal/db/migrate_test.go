package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreEmbeddedInOrder(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestInitMigrationDeclaresUniqueIndexes(t *testing.T) {
	contents, err := migrationFS.ReadFile("migrations/0001_init.up.sql")
	require.NoError(t, err)
	sql := string(contents)

	for _, idx := range []string{
		"members_workspace_user_idx",
		"conversations_pair_idx",
		"reactions_message_member_value_idx",
	} {
		assert.True(t, strings.Contains(sql, "CREATE UNIQUE INDEX IF NOT EXISTS "+idx), "missing unique index %s", idx)
	}
}
