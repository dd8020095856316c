package lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeValidSkill(t *testing.T, root, name string) {
	t.Helper()
	writeFile(t, filepath.Join(root, name, "SKILL.md"), `---
name: `+name+`
description: A valid skill named `+name+`
---

# `+name+`

See [references/detail.md](references/detail.md) for more.
`)
	writeFile(t, filepath.Join(root, name, "references", "detail.md"), "# Detail\n")
}

func TestLintValidRepository(t *testing.T) {
	tmpDir := t.TempDir()
	writeValidSkill(t, tmpDir, "alpha")
	writeValidSkill(t, tmpDir, "beta")

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SkillCount)
	assert.Empty(t, result.Issues)
	assert.NoError(t, result.Err(true))
}

func TestLintUsesSkillsSubdirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeValidSkill(t, filepath.Join(tmpDir, "skills"), "alpha")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# Repo\n")

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "skills"), result.Root)
	assert.Equal(t, 1, result.SkillCount)
	assert.Empty(t, result.Issues)
}

func TestLintMissingSkillFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "empty-dir"), 0o755))

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0].Message, "missing SKILL.md")
}

func TestLintUnclosedFrontmatter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "broken", "SKILL.md"), `---
name: broken
description: Frontmatter never closes

# Content
`)

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0].Message, "not properly opened and closed")
}

func TestLintMissingFields(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "anon", "SKILL.md"), "---\ndescription: No name\n---\n\nBody.\n")

		result, err := New().Lint(tmpDir)
		require.NoError(t, err)
		require.Len(t, result.Errors(), 1)
		assert.Contains(t, result.Errors()[0].Message, "name is required")
	})

	t.Run("missing description", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "anon", "SKILL.md"), "---\nname: anon\n---\n\nBody.\n")

		result, err := New().Lint(tmpDir)
		require.NoError(t, err)
		require.Len(t, result.Errors(), 1)
		assert.Contains(t, result.Errors()[0].Message, "description is required")
	})
}

func TestLintNameRules(t *testing.T) {
	t.Run("non kebab-case name", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "bad", "SKILL.md"), "---\nname: Bad_Name\ndescription: Bad casing\n---\n\nBody.\n")

		result, err := New().Lint(tmpDir)
		require.NoError(t, err)
		errs := result.Errors()
		require.NotEmpty(t, errs)
		assert.Contains(t, errs[0].Message, "not kebab-case")
	})

	t.Run("name directory mismatch is a warning", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "dir-name", "SKILL.md"), "---\nname: other-name\ndescription: Mismatched\n---\n\nBody.\n")

		result, err := New().Lint(tmpDir)
		require.NoError(t, err)
		assert.Empty(t, result.Errors())
		require.Len(t, result.Warnings(), 1)
		assert.Contains(t, result.Warnings()[0].Message, "does not match directory")
	})

	t.Run("duplicate names across directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "first", "SKILL.md"), "---\nname: first\ndescription: Original\n---\n\nBody.\n")
		writeFile(t, filepath.Join(tmpDir, "second", "SKILL.md"), "---\nname: first\ndescription: Claims the same name\n---\n\nBody.\n")

		result, err := New().Lint(tmpDir)
		require.NoError(t, err)

		var found bool
		for _, issue := range result.Errors() {
			if strings.Contains(issue.Message, "duplicate skill name") {
				found = true
			}
		}
		assert.True(t, found, "expected a duplicate name error")
	})
}

func TestLintBrokenLink(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "links", "SKILL.md"), `---
name: links
description: Has a broken link
---

# links

See [missing](references/missing.md) and [web](https://example.com)
and [anchor](#section).
`)

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0].Message, `link target "references/missing.md" does not exist`)
}

func TestLintBrokenLinkInReference(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "refs", "SKILL.md"), `---
name: refs
description: Links into references
---

See [detail](references/detail.md).
`)
	writeFile(t, filepath.Join(tmpDir, "refs", "references", "detail.md"), "See [gone](gone.md).\n")

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0].Message, `link target "gone.md" does not exist`)
}

func TestLintOrphanReference(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "orphan", "SKILL.md"), `---
name: orphan
description: Never links its reference
---

# orphan
`)
	writeFile(t, filepath.Join(tmpDir, "orphan", "references", "lost.md"), "# Lost\n")

	result, err := New().Lint(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, result.Errors())
	require.Len(t, result.Warnings(), 1)
	assert.Contains(t, result.Warnings()[0].Message, "never linked")
}

func TestLintDescriptionLength(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "wordy", "SKILL.md"), "---\nname: wordy\ndescription: "+strings.Repeat("x", 60)+"\n---\n\nBody.\n")

	result, err := New(WithMaxDescriptionLen(50)).Lint(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, result.Errors())
	require.Len(t, result.Warnings(), 1)
	assert.Contains(t, result.Warnings()[0].Message, "60 characters")
}

func TestResultErr(t *testing.T) {
	result := &Result{Issues: []Issue{
		{Severity: SeverityWarning, Message: "just a warning"},
	}}

	assert.NoError(t, result.Err(false))
	assert.Error(t, result.Err(true))

	result.Issues = append(result.Issues, Issue{Severity: SeverityError, Message: "a real error"})
	err := result.Err(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a real error")
}

func TestExtractLinks(t *testing.T) {
	content := []byte(`---
name: test
description: test
---

A [link](references/a.md), an ![image](assets/pic.png), and
an [external](https://example.com/page).
`)

	links := ExtractLinks(content)
	assert.Contains(t, links, "references/a.md")
	assert.Contains(t, links, "assets/pic.png")
	assert.Contains(t, links, "https://example.com/page")
}

func TestIsLocalTarget(t *testing.T) {
	assert.True(t, isLocalTarget("references/a.md"))
	assert.True(t, isLocalTarget("references/a.md#section"))
	assert.False(t, isLocalTarget(""))
	assert.False(t, isLocalTarget("#anchor"))
	assert.False(t, isLocalTarget("https://example.com"))
	assert.False(t, isLocalTarget("mailto:someone@example.com"))
	assert.False(t, isLocalTarget("/absolute/path.md"))
}
