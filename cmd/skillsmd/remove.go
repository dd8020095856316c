package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/installer"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

var removeCmd = &cobra.Command{
	Use:   "remove <skill-name>...",
	Short: "Remove installed skills",
	Long: `Remove one or more installed skills by name.

Examples:
  skillsmd remove threejs
  skillsmd remove threejs gsap -g`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		inst, err := installer.NewInstaller(installer.WithGlobal(global))
		if err != nil {
			return err
		}

		var removed []string
		for _, name := range args {
			if err := inst.Remove(name); err != nil {
				return errors.Wrapf(err, "failed to remove '%s'", name)
			}
			removed = append(removed, name)
		}

		presenter.Success(fmt.Sprintf("Removed skills: %s", strings.Join(removed, ", ")))
		return nil
	},
}

func init() {
	removeCmd.Flags().BoolP("global", "g", false, "Remove from global ~/.agents/skills directory")

	rootCmd.AddCommand(removeCmd)
}
