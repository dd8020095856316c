package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/presenter"
	"github.com/skillsmd/skillsmd/pkg/skills"
)

var showCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Print a skill's instructions",
	Long: `Print the body of a skill's SKILL.md. With --full, reference documents
are printed after the body, in the order they appear in the bundle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")

		discovery, err := skills.NewDiscovery()
		if err != nil {
			return err
		}

		skill, err := discovery.GetSkill(args[0])
		if err != nil {
			return err
		}

		presenter.Section(skill.Name)
		presenter.Info(skill.Description)
		presenter.Separator()
		fmt.Println(skill.Content)

		if !full {
			if len(skill.References) > 0 {
				presenter.Info(fmt.Sprintf("(%d reference document(s); use --full to include them)", len(skill.References)))
			}
			return nil
		}

		for _, ref := range skill.References {
			content, err := os.ReadFile(filepath.Join(skill.Directory, filepath.FromSlash(ref)))
			if err != nil {
				presenter.Warning(fmt.Sprintf("failed to read reference %s: %v", ref, err))
				continue
			}
			presenter.Section(ref)
			fmt.Println(string(content))
		}

		return nil
	},
}

func init() {
	showCmd.Flags().Bool("full", false, "Include reference documents")

	rootCmd.AddCommand(showCmd)
}
