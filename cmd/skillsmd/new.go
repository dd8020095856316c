package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/presenter"
	"github.com/skillsmd/skillsmd/pkg/skills"
)

var newCmd = &cobra.Command{
	Use:   "new <skill-name>",
	Short: "Scaffold a new skill directory",
	Long: `Create skills/<name>/SKILL.md with valid frontmatter and a starter
reference document. Names must be kebab-case.

Examples:
  skillsmd new framer-motion
  skillsmd new framer-motion --description "Framer Motion animation for React"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir, _ := cmd.Flags().GetString("dir")
		description, _ := cmd.Flags().GetString("description")

		dir, err := skills.Scaffold(baseDir, args[0], description)
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Created skill '%s' at %s", args[0], dir))
		presenter.Info("Edit SKILL.md, then run 'skillsmd lint' to validate")
		return nil
	},
}

func init() {
	newCmd.Flags().String("dir", "skills", "Directory to create the skill under")
	newCmd.Flags().String("description", "", "Skill description for the frontmatter")

	rootCmd.AddCommand(newCmd)
}
