package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

var bundledCmd = &cobra.Command{
	Use:   "bundled",
	Short: "List the skills bundled into this binary",
	Long: `List the curated skills shipped inside the skillsmd binary. Bundled
skills install offline with 'skillsmd add --bundled <name>'.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		names, err := skillsmd.BundledNames()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			presenter.Info("No bundled skills")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t-----------")

		for _, name := range names {
			skill, err := skillsmd.BundledSkill(name)
			if err != nil {
				presenter.Warning(fmt.Sprintf("skipping '%s': %v", name, err))
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\n", skill.Name, truncate(skill.Description, 80))
		}
		tw.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundledCmd)
}
