// Package lint validates the structure of a skills repository: every skill
// directory must carry a well-formed SKILL.md, names must be unique and
// kebab-case, and every relative link must resolve to a file on disk.
package lint

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skillsmd/skillsmd/pkg/skills"
)

// Severity classifies a lint finding
type Severity string

// Finding severities
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single lint finding
type Issue struct {
	Severity Severity
	Skill    string // Skill directory name, empty for repository-level findings
	Path     string // File the finding refers to, relative to the lint root
	Message  string
}

func (i Issue) String() string {
	if i.Path != "" {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Result aggregates the findings of a lint run
type Result struct {
	Root       string
	SkillCount int
	Issues     []Issue
}

// Errors returns the error-severity findings
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity findings
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Err returns all error-severity findings as a single aggregated error, or
// nil when the run found none. With strict set, warnings count as errors.
func (r *Result) Err(strict bool) error {
	var merr *multierror.Error
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError || strict {
			merr = multierror.Append(merr, errors.New(issue.String()))
		}
	}
	return merr.ErrorOrNil()
}

// Linter validates skill repositories
type Linter struct {
	maxDescriptionLen int
}

// LinterOption configures a Linter
type LinterOption func(*Linter)

// WithMaxDescriptionLen overrides the description length warning threshold
func WithMaxDescriptionLen(n int) LinterOption {
	return func(l *Linter) {
		l.maxDescriptionLen = n
	}
}

// New creates a Linter
func New(opts ...LinterOption) *Linter {
	l := &Linter{
		maxDescriptionLen: 500,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lint validates every skill directory under root. Root may either be a
// repository containing a skills/ directory or a skills directory itself.
func (l *Linter) Lint(root string) (*Result, error) {
	skillsRoot := root
	if _, err := os.Stat(filepath.Join(root, "skills")); err == nil {
		skillsRoot = filepath.Join(root, "skills")
	}

	entries, err := os.ReadDir(skillsRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills root %s", skillsRoot)
	}

	result := &Result{Root: skillsRoot}
	seenNames := make(map[string]string) // name -> directory that claimed it

	for _, entry := range entries {
		entryPath := filepath.Join(skillsRoot, entry.Name())
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		result.SkillCount++
		l.lintSkillDir(result, skillsRoot, entry.Name(), seenNames)
	}

	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].Skill != result.Issues[j].Skill {
			return result.Issues[i].Skill < result.Issues[j].Skill
		}
		return result.Issues[i].Path < result.Issues[j].Path
	})

	return result, nil
}

func (l *Linter) lintSkillDir(result *Result, root, dirName string, seenNames map[string]string) {
	dir := filepath.Join(root, dirName)
	skillPath := filepath.Join(dir, skills.SkillFileName)
	relSkillPath := filepath.Join(dirName, skills.SkillFileName)

	content, err := os.ReadFile(skillPath)
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Skill:    dirName,
			Path:     dirName,
			Message:  "missing " + skills.SkillFileName,
		})
		return
	}

	if !hasClosedFrontmatter(string(content)) {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  "frontmatter block is not properly opened and closed with ---",
		})
		return
	}

	metadata, err := skills.ParseMetadata(content)
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  err.Error(),
		})
		return
	}

	if !skills.IsValidName(metadata.Name) {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  fmt.Sprintf("name %q is not kebab-case", metadata.Name),
		})
	}

	if metadata.Name != dirName {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityWarning,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  fmt.Sprintf("name %q does not match directory %q", metadata.Name, dirName),
		})
	}

	if prev, taken := seenNames[metadata.Name]; taken {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  fmt.Sprintf("duplicate skill name %q (already used by %s)", metadata.Name, prev),
		})
	} else {
		seenNames[metadata.Name] = dirName
	}

	if len(metadata.Description) > l.maxDescriptionLen {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityWarning,
			Skill:    dirName,
			Path:     relSkillPath,
			Message:  fmt.Sprintf("description is %d characters (max %d); long descriptions consume prompt space", len(metadata.Description), l.maxDescriptionLen),
		})
	}

	linked := l.lintLinks(result, dirName, dir, relSkillPath, content)

	skill, err := skills.Load(dir)
	if err != nil {
		return
	}

	// References that SKILL.md never links to are unreachable via
	// progressive loading.
	for _, ref := range skill.References {
		if !linked[filepath.ToSlash(ref)] {
			result.Issues = append(result.Issues, Issue{
				Severity: SeverityWarning,
				Skill:    dirName,
				Path:     filepath.Join(dirName, ref),
				Message:  "reference document is never linked from " + skills.SkillFileName,
			})
		}
		l.lintReferenceLinks(result, dirName, dir, ref)
	}
}

// lintLinks checks that every relative link target in the document exists and
// returns the set of link destinations, normalized to slash-separated paths
// relative to the skill directory.
func (l *Linter) lintLinks(result *Result, skillName, dir, relPath string, content []byte) map[string]bool {
	linked := make(map[string]bool)

	for _, dest := range ExtractLinks(content) {
		if !isLocalTarget(dest) {
			continue
		}

		target := strings.SplitN(dest, "#", 2)[0]
		if target == "" {
			continue
		}

		linked[target] = true

		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(target))); err != nil {
			result.Issues = append(result.Issues, Issue{
				Severity: SeverityError,
				Skill:    skillName,
				Path:     relPath,
				Message:  fmt.Sprintf("link target %q does not exist", dest),
			})
		}
	}

	return linked
}

func (l *Linter) lintReferenceLinks(result *Result, skillName, dir, ref string) {
	refPath := filepath.Join(dir, filepath.FromSlash(ref))
	content, err := os.ReadFile(refPath)
	if err != nil {
		return
	}

	// Links inside a reference resolve relative to the reference's own
	// directory.
	refDir := filepath.Dir(refPath)
	relPath := filepath.Join(filepath.Base(dir), filepath.FromSlash(ref))
	l.lintLinks(result, skillName, refDir, relPath, content)
}

// isLocalTarget reports whether a link destination refers to a file in the
// repository rather than an external URL or in-page anchor.
func isLocalTarget(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return false
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return false
	}
	if strings.HasPrefix(dest, "/") {
		return false
	}
	return true
}

// hasClosedFrontmatter reports whether content opens with a --- delimiter
// line and closes it before the document ends.
func hasClosedFrontmatter(content string) bool {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return false
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "---" {
			return true
		}
	}
	return false
}
