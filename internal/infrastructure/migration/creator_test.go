package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		pair, err := CreateMigration(dir, "Add deposit index", "index deposits by reference")
		require.NoError(t, err)

		assert.FileExists(t, pair.UpPath)
		assert.FileExists(t, pair.DownPath)
		assert.Contains(t, pair.UpPath, "add_deposit_index.up.sql")
		assert.Contains(t, pair.DownPath, "add_deposit_index.down.sql")
		assert.Len(t, pair.Version, 14)

		up, err := os.ReadFile(pair.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "Add deposit index (up)")
		assert.Contains(t, string(up), "index deposits by reference")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := t.TempDir() + "/nested/migrations"

		pair, err := CreateMigration(dir, "initial", "")
		require.NoError(t, err)
		assert.FileExists(t, pair.UpPath)
		assert.True(t, strings.HasPrefix(pair.UpPath, dir))
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists base names sorted by version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20240201000000_second.up.sql",
			"20240201000000_second.down.sql",
			"20240101000000_first.up.sql",
			"20240101000000_first.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(dir+"/"+name, nil, 0644))
		}

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20240101000000_first",
			"20240201000000_second",
		}, names)
	})

	t.Run("missing directory lists as empty", func(t *testing.T) {
		names, err := ListMigrations(t.TempDir() + "/absent")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add users table":        "add_users_table",
		"fix--double  spaces":    "fix_double_spaces",
		"UPPER and 123":          "upper_and_123",
		"trailing separator - ":  "trailing_separator",
		"symbols!@#in$the%^name": "symbolsinthename",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugify(input), input)
	}
}
