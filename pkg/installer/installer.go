// Package installer copies skill bundles from GitHub repositories or local
// paths into an agent configuration directory. Installs are recorded in a
// lockfile so skills can be updated from their original source later.
package installer

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillsmd/skillsmd/pkg/logger"
	"github.com/skillsmd/skillsmd/pkg/skills"
	"github.com/skillsmd/skillsmd/pkg/telemetry"
)

const (
	agentsDir  = ".agents"
	skillsSub  = "skills"
	bundlesSub = "bundles"

	cloneAttempts = 3
)

// ValidateRepoName validates a GitHub repository locator.
// Expected format: "owner/repo".
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	if !strings.Contains(repo, "/") {
		return errors.Errorf("invalid repository format %q: expected 'owner/repo'", repo)
	}
	parts := strings.SplitN(repo, "/", 2)
	if parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: owner and repo cannot be empty", repo)
	}
	return nil
}

// repoToBundleName converts "owner/repo" to the on-disk bundle directory
// name "owner@repo". Only the first slash is replaced.
func repoToBundleName(repo string) string {
	if !strings.Contains(repo, "/") {
		return repo
	}
	return strings.Replace(repo, "/", "@", 1)
}

// Installer installs skills into a target directory
type Installer struct {
	global    bool
	force     bool
	bundle    bool
	selectors []string
	baseDir   string
}

// InstallerOption configures an Installer instance
type InstallerOption func(*Installer)

// WithGlobal targets the user-global ~/.agents directory
func WithGlobal(global bool) InstallerOption {
	return func(i *Installer) {
		i.global = global
	}
}

// WithForce overwrites already-installed skills
func WithForce(force bool) InstallerOption {
	return func(i *Installer) {
		i.force = force
	}
}

// WithBundle installs the repository as a named bundle under
// .agents/bundles/owner@repo instead of copying skills flat
func WithBundle(bundle bool) InstallerOption {
	return func(i *Installer) {
		i.bundle = bundle
	}
}

// WithSelectors restricts installation to skills whose names match one of
// the given glob patterns
func WithSelectors(patterns ...string) InstallerOption {
	return func(i *Installer) {
		i.selectors = append(i.selectors, patterns...)
	}
}

// WithBaseDir overrides the base directory (mainly for tests)
func WithBaseDir(dir string) InstallerOption {
	return func(i *Installer) {
		i.baseDir = dir
	}
}

// NewInstaller creates a new skill installer
func NewInstaller(opts ...InstallerOption) (*Installer, error) {
	i := &Installer{}

	for _, opt := range opts {
		opt(i)
	}

	if i.baseDir == "" {
		if i.global {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, "failed to get home directory")
			}
			i.baseDir = filepath.Join(homeDir, agentsDir)
		} else {
			i.baseDir = agentsDir
		}
	}

	return i, nil
}

// SkillsDir returns the directory flat skill installs are written to
func (i *Installer) SkillsDir() string {
	return filepath.Join(i.baseDir, skillsSub)
}

// InstallResult describes what an install did
type InstallResult struct {
	Source    string   // Repository locator or local path
	Ref       string   // Tag/branch/sha, empty for default branch
	Bundle    string   // Bundle directory name when installed as a bundle
	Installed []string // Names of installed skills
	Skipped   []string // Skills skipped because they already exist or failed to load
}

// Install copies skills from source into the target directory. Source is
// either a local path or a GitHub "owner/repo" locator with an optional ref.
func (i *Installer) Install(ctx context.Context, source, ref string) (*InstallResult, error) {
	srcDir, cleanup, err := i.resolveSource(ctx, source, ref)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	skillDirs, err := findSkillDirs(srcDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan repository for skills")
	}
	if len(skillDirs) == 0 {
		return nil, errors.Errorf("no skills found in %s (expected directories containing %s)", source, skills.SkillFileName)
	}

	selected, err := i.selectSkills(skillDirs)
	if err != nil {
		return nil, err
	}

	result := &InstallResult{Source: source, Ref: ref}

	if i.bundle {
		if err := i.installBundle(ctx, source, ref, selected, result); err != nil {
			return nil, err
		}
	} else {
		if err := i.installFlat(ctx, source, ref, selected, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type candidate struct {
	dir   string
	skill *skills.Skill
}

// selectSkills loads each candidate directory and applies the selector
// patterns. Directories that fail to load are dropped; a selector that
// matches nothing is an error.
func (i *Installer) selectSkills(skillDirs []string) ([]candidate, error) {
	var candidates []candidate
	for _, dir := range skillDirs {
		skill, err := skills.Load(dir)
		if err != nil {
			candidates = append(candidates, candidate{dir: dir})
			continue
		}
		candidates = append(candidates, candidate{dir: dir, skill: skill})
	}

	if len(i.selectors) == 0 {
		return candidates, nil
	}

	globs := make([]glob.Glob, 0, len(i.selectors))
	for _, pattern := range i.selectors {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid skill selector %q", pattern)
		}
		globs = append(globs, g)
	}

	var selected []candidate
	for _, c := range candidates {
		if c.skill == nil {
			continue
		}
		for _, g := range globs {
			if g.Match(c.skill.Name) {
				selected = append(selected, c)
				break
			}
		}
	}

	if len(selected) == 0 {
		return nil, errors.Errorf("no skill matches selector %s", strings.Join(i.selectors, ", "))
	}

	return selected, nil
}

func (i *Installer) installFlat(ctx context.Context, source, ref string, candidates []candidate, result *InstallResult) error {
	skillsDir := i.SkillsDir()
	if err := os.MkdirAll(skillsDir, 0o755); err != nil {
		return errors.Wrap(err, "destination not writable")
	}

	manifest, err := LoadManifest(skillsDir)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if c.skill == nil {
			result.Skipped = append(result.Skipped, filepath.Base(c.dir))
			logger.G(ctx).WithField("dir", c.dir).Warn("skipping directory with invalid SKILL.md")
			continue
		}

		destDir := filepath.Join(skillsDir, c.skill.Name)
		if _, err := os.Stat(destDir); err == nil && !i.force {
			result.Skipped = append(result.Skipped, c.skill.Name)
			continue
		}

		err := telemetry.WithSpan(ctx, "installer.copy_skill", func(context.Context) error {
			if i.force {
				os.RemoveAll(destDir)
			}
			return copyDir(c.dir, destDir)
		}, attribute.String("skill.name", c.skill.Name))
		if err != nil {
			return errors.Wrapf(err, "failed to install skill '%s'", c.skill.Name)
		}

		manifest.Record(c.skill.Name, source, ref)
		result.Installed = append(result.Installed, c.skill.Name)
	}

	sort.Strings(result.Installed)

	if len(result.Installed) > 0 {
		if err := manifest.Save(skillsDir); err != nil {
			return err
		}
	}

	return nil
}

func (i *Installer) installBundle(ctx context.Context, source, ref string, candidates []candidate, result *InstallResult) error {
	bundleName := repoToBundleName(source)
	bundleDir := filepath.Join(i.baseDir, bundlesSub, bundleName)

	if _, err := os.Stat(bundleDir); err == nil {
		if !i.force {
			return errors.Errorf("bundle already exists at %s (use --force to overwrite)", bundleDir)
		}
		if err := os.RemoveAll(bundleDir); err != nil {
			return errors.Wrap(err, "failed to remove existing bundle")
		}
	}

	destSkillsDir := filepath.Join(bundleDir, skillsSub)
	if err := os.MkdirAll(destSkillsDir, 0o755); err != nil {
		return errors.Wrap(err, "destination not writable")
	}

	for _, c := range candidates {
		if c.skill == nil {
			result.Skipped = append(result.Skipped, filepath.Base(c.dir))
			continue
		}
		err := telemetry.WithSpan(ctx, "installer.copy_skill", func(context.Context) error {
			return copyDir(c.dir, filepath.Join(destSkillsDir, c.skill.Name))
		}, attribute.String("skill.name", c.skill.Name))
		if err != nil {
			return errors.Wrapf(err, "failed to install skill '%s'", c.skill.Name)
		}
		result.Installed = append(result.Installed, c.skill.Name)
	}

	if len(result.Installed) == 0 {
		os.RemoveAll(bundleDir)
		return errors.Errorf("no installable skills found in %s", source)
	}

	sort.Strings(result.Installed)

	manifest := &Manifest{Skills: make(map[string]ManifestEntry)}
	for _, name := range result.Installed {
		manifest.Record(name, source, ref)
	}
	if err := manifest.Save(destSkillsDir); err != nil {
		return err
	}

	result.Bundle = bundleName
	return nil
}

// splitBundleName resolves an org/repo/<skill> name to the bundle's on-disk
// directory and the bare skill name. Flat skill names contain no slashes and
// never match.
func (i *Installer) splitBundleName(name string) (string, string, bool) {
	parts := strings.SplitN(name, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	bundleDir := filepath.Join(i.baseDir, bundlesSub, parts[0]+"@"+parts[1])
	return bundleDir, parts[2], true
}

// Remove deletes an installed skill and its manifest entry. Bundle-installed
// skills are addressed by their org/repo/<name> form. Missing skills are an
// error naming the scope searched.
func (i *Installer) Remove(name string) error {
	skillsDir := i.SkillsDir()
	skillName := name
	if bundleDir, bundleSkill, ok := i.splitBundleName(name); ok {
		skillsDir = filepath.Join(bundleDir, skillsSub)
		skillName = bundleSkill
	}
	skillDir := filepath.Join(skillsDir, skillName)

	if _, err := os.Stat(filepath.Join(skillDir, skills.SkillFileName)); os.IsNotExist(err) {
		scope := "local"
		if i.global {
			scope = "global"
		}
		return errors.Errorf("skill '%s' not found in %s skills directory", name, scope)
	}

	if err := os.RemoveAll(skillDir); err != nil {
		return errors.Wrapf(err, "failed to remove skill '%s'", name)
	}

	manifest, err := LoadManifest(skillsDir)
	if err != nil {
		return err
	}
	if manifest.Forget(skillName) {
		return manifest.Save(skillsDir)
	}

	return nil
}

// Update re-installs a skill from the source recorded at install time.
// Updating a bundle-installed skill (org/repo/<name>) refreshes the whole
// bundle from its recorded source.
func (i *Installer) Update(ctx context.Context, name string) (*InstallResult, error) {
	if bundleDir, bundleSkill, ok := i.splitBundleName(name); ok {
		manifest, err := LoadManifest(filepath.Join(bundleDir, skillsSub))
		if err != nil {
			return nil, err
		}
		entry, ok := manifest.Skills[bundleSkill]
		if !ok {
			return nil, errors.Errorf("skill '%s' has no recorded source; re-install it with 'skillsmd add'", name)
		}

		updater := &Installer{global: i.global, force: true, bundle: true, baseDir: i.baseDir}
		return updater.Install(ctx, entry.Source, entry.Ref)
	}

	manifest, err := LoadManifest(i.SkillsDir())
	if err != nil {
		return nil, err
	}

	entry, ok := manifest.Skills[name]
	if !ok {
		return nil, errors.Errorf("skill '%s' has no recorded source; re-install it with 'skillsmd add'", name)
	}

	updater := &Installer{
		global:    i.global,
		force:     true,
		selectors: []string{name},
		baseDir:   i.baseDir,
	}
	return updater.Install(ctx, entry.Source, entry.Ref)
}

// UpdateAll re-installs every skill recorded in the lockfile, in name order.
func (i *Installer) UpdateAll(ctx context.Context) ([]*InstallResult, error) {
	manifest, err := LoadManifest(i.SkillsDir())
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(manifest.Skills))
	for name := range manifest.Skills {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*InstallResult
	for _, name := range names {
		result, err := i.Update(ctx, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to update '%s'", name)
		}
		results = append(results, result)
	}

	return results, nil
}

// resolveSource returns a directory containing the skills to install. Local
// paths are used in place; repository locators are cloned into a temp
// directory removed by the returned cleanup function.
func (i *Installer) resolveSource(ctx context.Context, source, ref string) (string, func(), error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return source, func() {}, nil
	}

	if err := ValidateRepoName(source); err != nil {
		return "", nil, err
	}

	if err := validateGHCLI(); err != nil {
		return "", nil, err
	}

	tempDir, err := os.MkdirTemp("", "skillsmd-add-*")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create temp directory")
	}

	err = telemetry.WithSpan(ctx, "installer.clone", func(ctx context.Context) error {
		return retry.Do(
			func() error { return cloneRepo(ctx, source, ref, tempDir) },
			retry.Context(ctx),
			retry.Attempts(cloneAttempts),
			retry.Delay(time.Second),
			retry.OnRetry(func(n uint, err error) {
				logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying clone")
			}),
		)
	}, attribute.String("repo", source), attribute.String("ref", ref))
	if err != nil {
		os.RemoveAll(tempDir)
		return "", nil, errors.Wrapf(err, "failed to clone %s", source)
	}

	return tempDir, func() { os.RemoveAll(tempDir) }, nil
}

func cloneRepo(ctx context.Context, repo, ref, dest string) error {
	// Clean out any partial clone from a previous attempt
	entries, _ := os.ReadDir(dest)
	for _, entry := range entries {
		os.RemoveAll(filepath.Join(dest, entry.Name()))
	}

	args := []string{"repo", "clone", repo, dest}
	if ref != "" {
		args = append(args, "--", "--branch", ref, "--depth", "1")
	} else {
		args = append(args, "--", "--depth", "1")
	}

	cmd := exec.CommandContext(ctx, "gh", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "gh clone failed: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

func validateGHCLI() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return errors.New("gh CLI is not installed; see https://cli.github.com")
	}
	if err := exec.Command("gh", "auth", "status").Run(); err != nil {
		return errors.New("gh CLI is not authenticated; run 'gh auth login'")
	}
	return nil
}

// findSkillDirs walks root collecting every directory that contains a
// SKILL.md entry file.
func findSkillDirs(root string) ([]string, error) {
	var skillDirs []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && (info.Name() == ".git" || info.Name() == "node_modules") {
			return filepath.SkipDir
		}

		if !info.IsDir() && info.Name() == skills.SkillFileName {
			skillDirs = append(skillDirs, filepath.Dir(path))
		}

		return nil
	})

	return skillDirs, err
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
