package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd"
	"github.com/skillsmd/skillsmd/pkg/installer"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

// AddConfig holds the flag values for the add command
type AddConfig struct {
	Global  bool
	Force   bool
	Bundle  bool
	Bundled bool
	Skills  []string
}

// NewAddConfig returns the defaults for the add command
func NewAddConfig() *AddConfig {
	return &AddConfig{}
}

var addCmd = &cobra.Command{
	Use:   "add <owner/repo[@ref] | path>...",
	Short: "Install skills from a repository, local path, or the bundled catalog",
	Long: `Install skills into the agent configuration directory.

Sources can be GitHub repositories (cloned with the gh CLI), local paths, or
names from the catalog bundled into this binary (--bundled). A repository may
pin a tag, branch, or sha with @ref.

Examples:
  skillsmd add acme/frontend-skills              # all skills from a repo
  skillsmd add acme/frontend-skills --skill gsap # one skill only
  skillsmd add acme/frontend-skills@v1.2.0       # from a tag
  skillsmd add ../my-skills-repo                 # from a local checkout
  skillsmd add --bundled threejs nuqs            # from the bundled catalog
  skillsmd add acme/frontend-skills -g           # into ~/.agents/skills`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getAddConfigFromFlags(cmd)

		if config.Bundled {
			return addBundled(args, config)
		}

		opts := []installer.InstallerOption{
			installer.WithGlobal(config.Global),
			installer.WithForce(config.Force),
			installer.WithBundle(config.Bundle),
		}
		if len(config.Skills) > 0 {
			opts = append(opts, installer.WithSelectors(config.Skills...))
		}

		inst, err := installer.NewInstaller(opts...)
		if err != nil {
			return err
		}

		for _, arg := range args {
			source, ref := parseSourceRef(arg)
			presenter.Info(fmt.Sprintf("Installing skills from %s...", source))

			result, err := inst.Install(cmd.Context(), source, ref)
			if err != nil {
				return errors.Wrapf(err, "failed to install from %s", source)
			}

			reportInstall(result)
		}

		return nil
	},
}

func addBundled(names []string, config *AddConfig) error {
	inst, err := installer.NewInstaller(installer.WithGlobal(config.Global))
	if err != nil {
		return err
	}

	for _, name := range names {
		skill, err := skillsmd.BundledSkill(name)
		if err != nil {
			return err
		}

		if err := skillsmd.ExportBundled(name, inst.SkillsDir()); err != nil {
			return errors.Wrapf(err, "failed to install bundled skill '%s'", name)
		}
		presenter.Success(fmt.Sprintf("Installed bundled skill '%s' — %s", skill.Name, skill.Description))
	}

	return nil
}

func reportInstall(result *installer.InstallResult) {
	if len(result.Installed) > 0 {
		presenter.Success(fmt.Sprintf("Installed skills: %s", strings.Join(result.Installed, ", ")))
	}
	for _, skipped := range result.Skipped {
		presenter.Warning(fmt.Sprintf("Skipped '%s' (already installed or invalid; use --force to overwrite)", skipped))
	}
	if result.Bundle != "" {
		presenter.Info(fmt.Sprintf("Installed as bundle '%s'", result.Bundle))
	}
}

// parseSourceRef splits "owner/repo@ref" into source and ref. Local paths
// pass through unchanged, even when they contain an @ (installed bundle
// directories are named owner@repo).
func parseSourceRef(arg string) (string, string) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg, ""
	}
	if idx := strings.LastIndex(arg, "@"); idx != -1 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

func getAddConfigFromFlags(cmd *cobra.Command) *AddConfig {
	config := NewAddConfig()
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	if bundle, err := cmd.Flags().GetBool("as-bundle"); err == nil {
		config.Bundle = bundle
	}
	if bundled, err := cmd.Flags().GetBool("bundled"); err == nil {
		config.Bundled = bundled
	}
	if skillPatterns, err := cmd.Flags().GetStringSlice("skill"); err == nil {
		config.Skills = skillPatterns
	}
	return config
}

func init() {
	defaults := NewAddConfig()
	addCmd.Flags().BoolP("global", "g", defaults.Global, "Install to global ~/.agents directory instead of local ./.agents")
	addCmd.Flags().Bool("force", defaults.Force, "Overwrite already-installed skills")
	addCmd.Flags().Bool("as-bundle", defaults.Bundle, "Install the repository as a bundle under .agents/bundles/owner@repo")
	addCmd.Flags().Bool("bundled", defaults.Bundled, "Treat arguments as names from the bundled catalog")
	addCmd.Flags().StringSliceP("skill", "s", defaults.Skills, "Only install skills matching these name patterns")

	rootCmd.AddCommand(addCmd)
}
