package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillsmd/skillsmd/pkg/logger"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "skillsmd",
	Short: "Manage Markdown skill bundles for AI coding agents",
	Long: `skillsmd curates and installs agent skills: directories containing a
SKILL.md entry file with YAML frontmatter plus optional reference documents.

Skills are discovered from ./skills, ./.agents/skills, and ~/.agents/skills,
and can be installed from GitHub repositories or from the catalog bundled
into this binary.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))

		ctx := logger.WithLogger(cmd.Context(), logger.L)
		cmd.SetContext(ctx)

		return startTracing(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return stopTracing(cmd.Context())
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("SKILLSMD")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./.agents")
	viper.AddConfigPath("$HOME/.agents")

	// Config file is optional
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
