package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/skills"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for SKILL.md frontmatter",
	RunE: func(_ *cobra.Command, _ []string) error {
		schema := skills.MetadataSchema()

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal schema")
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
