package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		short, _ := cmd.Flags().GetBool("short")
		asJSON, _ := cmd.Flags().GetBool("json")

		info := version.Get()

		switch {
		case short:
			fmt.Println(info.Version)
		case asJSON:
			out, err := info.JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
		default:
			fmt.Println(info.String())
		}

		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
	versionCmd.Flags().Bool("json", false, "Print version information as JSON")

	rootCmd.AddCommand(versionCmd)
}
