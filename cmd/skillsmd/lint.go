package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/pkg/lint"
	"github.com/skillsmd/skillsmd/pkg/logger"
	"github.com/skillsmd/skillsmd/pkg/presenter"
)

// LintConfig holds the flag values for the lint command
type LintConfig struct {
	Strict bool
	Watch  bool
	MaxLen int
}

// NewLintConfig returns the defaults for the lint command
func NewLintConfig() *LintConfig {
	return &LintConfig{
		MaxLen: 500,
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint [root]",
	Short: "Validate the structure of a skills repository",
	Long: `Validate every skill under a repository root: SKILL.md presence, a
properly closed frontmatter block with non-empty name and description,
kebab-case and unique names, and relative links that resolve on disk.

Warnings do not fail the run unless --strict is set. With --watch, the
repository is re-linted whenever a file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getLintConfigFromFlags(cmd)

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		linter := lint.New(lint.WithMaxDescriptionLen(config.MaxLen))

		if config.Watch {
			return watchAndLint(cmd, linter, root, config.Strict)
		}

		result, err := runLint(linter, root, config.Strict)
		if err != nil {
			return err
		}
		return result.Err(config.Strict)
	},
}

func runLint(linter *lint.Linter, root string, strict bool) (*lint.Result, error) {
	result, err := linter.Lint(root)
	if err != nil {
		return nil, err
	}

	for _, issue := range result.Issues {
		switch issue.Severity {
		case lint.SeverityError:
			presenter.Error(errors.New(issue.Message), issue.Path)
		default:
			presenter.Warning(fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		}
	}

	errorCount := len(result.Errors())
	warningCount := len(result.Warnings())
	if errorCount == 0 && (warningCount == 0 || !strict) {
		presenter.Success(fmt.Sprintf("%d skill(s) OK (%d warning(s))", result.SkillCount, warningCount))
	} else {
		presenter.Info(fmt.Sprintf("%d skill(s) checked: %d error(s), %d warning(s)", result.SkillCount, errorCount, warningCount))
	}

	return result, nil
}

// watchAndLint re-lints the repository whenever a file under it changes.
// Events are debounced so editor save bursts produce one run.
func watchAndLint(cmd *cobra.Command, linter *lint.Linter, root string, strict bool) error {
	ctx := cmd.Context()

	if _, err := runLint(linter, root, strict); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	addWatches := func() {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if info.Name() == ".git" || info.Name() == "node_modules" {
					return filepath.SkipDir
				}
				watcher.Add(path)
			}
			return nil
		})
	}
	addWatches()

	presenter.Info(fmt.Sprintf("Watching %s for changes (ctrl-c to stop)...", root))

	var debounce *time.Timer
	relint := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.G(ctx).WithField("event", event.String()).Debug("file change detected")
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watches
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addWatches()
				}
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case relint <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("file watcher error")
		case <-relint:
			presenter.Separator()
			if _, err := runLint(linter, root, strict); err != nil {
				presenter.Error(err, "lint failed")
			}
		}
	}
}

func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}
	if maxLen, err := cmd.Flags().GetInt("max-description"); err == nil {
		config.MaxLen = maxLen
	}
	return config
}

func init() {
	defaults := NewLintConfig()
	lintCmd.Flags().Bool("strict", defaults.Strict, "Treat warnings as errors")
	lintCmd.Flags().BoolP("watch", "w", defaults.Watch, "Re-lint when files change")
	lintCmd.Flags().Int("max-description", defaults.MaxLen, "Description length warning threshold")

	rootCmd.AddCommand(lintCmd)
}
