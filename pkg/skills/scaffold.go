package skills

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const skillTemplate = `---
name: %s
description: %s
---

# %s

## Overview

Describe when an agent should reach for this skill and what it covers.

## Instructions

Step-by-step guidance for the agent. Keep this file focused; move deep
detail into [references/overview.md](references/overview.md) so it is only
loaded when needed.
`

const referenceTemplate = `# %s reference

Supplementary detail for the %s skill, loaded on demand.
`

// Scaffold creates a new skill directory under baseDir with a valid SKILL.md
// and a starter reference document. It returns the created directory.
func Scaffold(baseDir, name, description string) (string, error) {
	if !IsValidName(name) {
		return "", errors.Errorf("invalid skill name %q: use kebab-case (lowercase letters, digits, hyphens)", name)
	}
	if description == "" {
		description = "TODO: describe when an agent should use this skill"
	}

	dir := filepath.Join(baseDir, name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("skill directory %s already exists", dir)
	}

	refsDir := filepath.Join(dir, "references")
	if err := os.MkdirAll(refsDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create skill directory")
	}

	content := fmt.Sprintf(skillTemplate, name, description, name)
	if err := os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write "+SkillFileName)
	}

	reference := fmt.Sprintf(referenceTemplate, name, name)
	if err := os.WriteFile(filepath.Join(refsDir, "overview.md"), []byte(reference), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write starter reference")
	}

	return dir, nil
}
