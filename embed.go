// Package skillsmd embeds the repository's curated skills catalog so the CLI
// can list and install bundled skills without network access.
package skillsmd

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/skillsmd/skillsmd/pkg/skills"
)

//go:embed skills
var bundledFS embed.FS

// BundledFS returns the embedded skills tree, rooted so each top-level entry
// is a skill directory.
func BundledFS() fs.FS {
	sub, err := fs.Sub(bundledFS, "skills")
	if err != nil {
		// The skills directory is embedded at build time; fs.Sub on it
		// cannot fail at runtime.
		panic(err)
	}
	return sub
}

// BundledNames returns the sorted names of the skills shipped in the binary.
func BundledNames() ([]string, error) {
	entries, err := fs.ReadDir(BundledFS(), ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bundled skills")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// BundledSkill loads the metadata and body of a bundled skill.
func BundledSkill(name string) (*skills.Skill, error) {
	content, err := fs.ReadFile(BundledFS(), name+"/"+skills.SkillFileName)
	if err != nil {
		return nil, errors.Errorf("bundled skill '%s' not found", name)
	}

	metadata, err := skills.ParseMetadata(content)
	if err != nil {
		return nil, errors.Wrapf(err, "bundled skill '%s' is invalid", name)
	}

	skill := &skills.Skill{
		Name:        metadata.Name,
		Description: metadata.Description,
		Version:     metadata.Version,
		License:     metadata.License,
		Content:     skills.ExtractBody(string(content)),
	}

	if refs, err := fs.Glob(BundledFS(), name+"/references/*.md"); err == nil {
		for _, ref := range refs {
			rel, err := filepath.Rel(name, ref)
			if err != nil {
				continue
			}
			skill.References = append(skill.References, filepath.ToSlash(rel))
		}
		sort.Strings(skill.References)
	}

	return skill, nil
}

// ExportBundled writes a bundled skill into destDir/<name>, preserving the
// bundle's directory layout.
func ExportBundled(name, destDir string) error {
	root := BundledFS()
	if _, err := fs.Stat(root, name+"/"+skills.SkillFileName); err != nil {
		return errors.Errorf("bundled skill '%s' not found", name)
	}

	return fs.WalkDir(root, name, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		destPath := filepath.Join(destDir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(destPath, 0o755)
		}

		content, err := fs.ReadFile(root, path)
		if err != nil {
			return errors.Wrapf(err, "failed to read bundled file %s", path)
		}
		return os.WriteFile(destPath, content, 0o644)
	})
}
