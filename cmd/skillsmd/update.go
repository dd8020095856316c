package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/installer"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

var updateCmd = &cobra.Command{
	Use:   "update [skill-name]...",
	Short: "Re-install skills from their recorded sources",
	Long: `Re-install skills from the source recorded in the lockfile at install
time. Skills installed from a pinned @ref are updated to that same ref.
Without arguments, every skill in the lockfile is updated.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		inst, err := installer.NewInstaller(installer.WithGlobal(global))
		if err != nil {
			return err
		}

		if len(args) == 0 {
			results, err := inst.UpdateAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				presenter.Info("No skills recorded in the lockfile")
				return nil
			}
			for _, result := range results {
				presenter.Success(fmt.Sprintf("Updated '%s' from %s", strings.Join(result.Installed, ", "), result.Source))
			}
			return nil
		}

		for _, name := range args {
			result, err := inst.Update(cmd.Context(), name)
			if err != nil {
				return errors.Wrapf(err, "failed to update '%s'", name)
			}
			presenter.Success(fmt.Sprintf("Updated '%s' from %s", name, result.Source))
		}

		return nil
	},
}

func init() {
	updateCmd.Flags().BoolP("global", "g", false, "Update in global ~/.agents/skills directory")

	rootCmd.AddCommand(updateCmd)
}
