package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffold(t *testing.T) {
	t.Run("creates loadable skill", func(t *testing.T) {
		tmpDir := t.TempDir()

		dir, err := Scaffold(tmpDir, "my-skill", "A freshly scaffolded skill")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "my-skill"), dir)

		skill, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "my-skill", skill.Name)
		assert.Equal(t, "A freshly scaffolded skill", skill.Description)
		assert.Equal(t, []string{"references/overview.md"}, skill.References)
	})

	t.Run("default description", func(t *testing.T) {
		tmpDir := t.TempDir()

		dir, err := Scaffold(tmpDir, "no-desc-given", "")
		require.NoError(t, err)

		skill, err := Load(dir)
		require.NoError(t, err)
		assert.Contains(t, skill.Description, "TODO")
	})

	t.Run("rejects invalid name", func(t *testing.T) {
		_, err := Scaffold(t.TempDir(), "Not_Kebab", "desc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kebab-case")
	})

	t.Run("rejects existing directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "taken"), 0o755))

		_, err := Scaffold(tmpDir, "taken", "desc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}
