package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	// SkillFileName is the entry file every skill directory must contain
	SkillFileName = "SKILL.md"

	referencesPattern = "references/**/*.md"
	scriptsPattern    = "scripts/*"
)

// Discovery handles skill discovery from configured directories
type Discovery struct {
	skillDirs  []string
	bundleDirs []bundleDirConfig
}

// bundleDirConfig represents an installed bundle's skills directory with the
// org/repo prefix its skills are exposed under
type bundleDirConfig struct {
	dir    string
	prefix string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithDefaultDirs initializes with the default search path: the repository's
// own skills/ tree, the repo-local install dir, then the user-global one.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			"./skills",                              // Repo-authored skills (highest precedence)
			"./.agents/skills",                      // Repo-local installed
			filepath.Join(homeDir, ".agents", "skills"), // User-global installed
		}

		d.bundleDirs = nil
		d.addBundleDirs("./.agents/bundles")
		d.addBundleDirs(filepath.Join(homeDir, ".agents", "bundles"))

		return nil
	}
}

// addBundleDirs scans an installed-bundles directory. Bundles are stored as
// flat org@repo directories, each with a skills/ subdirectory; their skills
// are exposed as org/repo/<name>.
func (d *Discovery) addBundleDirs(bundlesDir string) {
	entries, err := os.ReadDir(bundlesDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		skillsDir := filepath.Join(bundlesDir, entry.Name(), "skills")
		if _, err := os.Stat(skillsDir); err != nil {
			continue
		}

		d.bundleDirs = append(d.bundleDirs, bundleDirConfig{
			dir:    skillsDir,
			prefix: strings.Replace(entry.Name(), "@", "/", 1) + "/",
		})
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
	} else {
		for _, opt := range opts {
			if err := opt(d); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// DiscoverSkills finds all available skills from configured directories.
// Earlier directories win on name collisions.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		d.discoverSkillsFromDir(dir, "", skills)
	}

	for _, bundleDir := range d.bundleDirs {
		d.discoverSkillsFromDir(bundleDir.dir, bundleDir.prefix, skills)
	}

	return skills, nil
}

// discoverSkillsFromDir discovers skills from a directory with an optional
// name prefix
func (d *Discovery) discoverSkillsFromDir(dir, prefix string, skills map[string]*Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// Stat rather than entry.IsDir so symlinked skill directories work
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skill, err := Load(entryPath)
		if err != nil {
			continue
		}

		skillName := skill.Name
		if prefix != "" {
			skillName = prefix + skill.Name
		}

		if _, exists := skills[skillName]; !exists {
			skill.Name = skillName
			skills[skillName] = skill
		}
	}
}

// GetSkill returns a specific skill by name
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	skill, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return skill, nil
}

// ListSkillNames returns the sorted names of all available skills
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// Load reads a skill bundle from its directory: SKILL.md frontmatter and
// body, plus any reference documents and scripts.
func Load(dir string) (*Skill, error) {
	skillPath := filepath.Join(dir, SkillFileName)

	content, err := os.ReadFile(skillPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	metadata, err := ParseMetadata(content)
	if err != nil {
		return nil, err
	}

	skill := &Skill{
		Name:        metadata.Name,
		Description: metadata.Description,
		Version:     metadata.Version,
		License:     metadata.License,
		Directory:   dir,
		Content:     ExtractBody(string(content)),
	}

	fsys := os.DirFS(dir)
	if refs, err := doublestar.Glob(fsys, referencesPattern); err == nil {
		sort.Strings(refs)
		skill.References = refs
	}
	if scripts, err := doublestar.Glob(fsys, scriptsPattern); err == nil {
		sort.Strings(scripts)
		skill.Scripts = scripts
	}

	return skill, nil
}

// ParseMetadata extracts and validates the YAML frontmatter of a SKILL.md file.
func ParseMetadata(content []byte) (*Metadata, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	var metadata Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &metadata,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create metadata decoder")
	}
	if err := decoder.Decode(metaData); err != nil {
		return nil, errors.Wrap(err, "failed to decode frontmatter")
	}

	if metadata.Name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if metadata.Description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &metadata, nil
}

// ExtractBody removes the YAML frontmatter block and returns the body.
// Content without a complete frontmatter block is returned unchanged.
func ExtractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}

// FilterByPatterns filters skills by a list of name patterns. Patterns use
// glob syntax ("payload*", "org/repo/*"); a plain name matches exactly. An
// empty pattern list returns all skills.
func FilterByPatterns(skills map[string]*Skill, patterns []string) map[string]*Skill {
	if len(patterns) == 0 {
		return skills
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}

	filtered := make(map[string]*Skill)
	for name, skill := range skills {
		for _, g := range globs {
			if g.Match(name) {
				filtered[name] = skill
				break
			}
		}
	}
	return filtered
}
