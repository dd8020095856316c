package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/presenter"
	"github.com/skillsmd/skillsmd/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discoverable skills",
	Long: `List every skill discoverable from the configured directories with its
name, directory, and description. Bundle-installed skills appear under their
org/repo/ prefix.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		patterns, _ := cmd.Flags().GetStringSlice("filter")

		discovery, err := skills.NewDiscovery()
		if err != nil {
			return err
		}

		allSkills, err := discovery.DiscoverSkills()
		if err != nil {
			return err
		}

		allSkills = skills.FilterByPatterns(allSkills, patterns)
		if len(allSkills) == 0 {
			presenter.Info("No skills found")
			return nil
		}

		names := make([]string, 0, len(allSkills))
		for name := range allSkills {
			names = append(names, name)
		}
		sort.Strings(names)

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t---------\t-----------")

		for _, name := range names {
			skill := allSkills[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, skill.Directory, truncate(skill.Description, 60))
		}
		tw.Flush()

		return nil
	},
}

// truncate shortens s to at most max runes, ellipsizing. Counting runes
// rather than bytes keeps multibyte descriptions intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	listCmd.Flags().StringSlice("filter", nil, "Only list skills matching these name patterns")

	rootCmd.AddCommand(listCmd)
}
