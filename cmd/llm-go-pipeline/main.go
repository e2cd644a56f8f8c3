package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jt-f/dagger-experiments/internal/config"
	"github.com/jt-f/dagger-experiments/internal/logging"
)

var (
	debug       bool
	configPath  string
	envFile     string
	model       string
	maxAPICalls int
	baseImage   string
	workdir     string
	historyPath string

	// resolved in PersistentPreRunE
	settings config.Settings
	prompts  *config.Prompts
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "Show more information for debugging")
	flags.StringVar(&configPath, "config", "", "YAML settings file (default $XDG_CONFIG_HOME/llm-go-pipeline/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file consulted after the process environment")
	flags.StringVar(&model, "model", "", "LLM model to use (e.g., 'claude-sonnet-4-0', 'gpt-4o')")
	flags.IntVar(&maxAPICalls, "max-api-calls", 0, "Maximum LLM API calls per agent (0 for no limit)")
	flags.StringVar(&baseImage, "base-image", config.DefaultBaseImage, "Image the code-generation agent builds in")
	flags.StringVar(&workdir, "workdir", config.DefaultWorkdir, "Working directory inside the base image")
	flags.StringVar(&historyPath, "history-path", "", "Report history database (default $XDG_DATA_HOME/llm-go-pipeline/history.db)")

	rootCmd.AddCommand(
		generateCmd,
		interactCmd,
		runCmd,
		promptsCmd,
		historyCmd,
	)
}

var rootCmd = &cobra.Command{
	Use:   "llm-go-pipeline",
	Short: "Have one LLM agent write a Go program and another one use it",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// if we got this far, CLI parsing worked just fine; no
		// need to show usage for runtime errors
		cmd.SilenceUsage = true

		path := configPath
		if path == "" {
			path = config.DefaultSettingsPath()
		}
		var err error
		settings, err = config.LoadSettings(path)
		if err != nil {
			return err
		}
		applyFlags(cmd.Flags(), &settings)

		dotenv, err := config.DotEnvLookup(envFile)
		if err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		prompts = config.NewPrompts(config.Chain(config.EnvLookup(), dotenv))

		logger := logging.New(cmd.ErrOrStderr(), debug)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// applyFlags lets explicitly set flags win over the settings file.
func applyFlags(flags *pflag.FlagSet, s *config.Settings) {
	if flags.Changed("model") {
		s.Model = model
	}
	if flags.Changed("max-api-calls") {
		s.MaxAPICalls = maxAPICalls
	}
	if flags.Changed("base-image") {
		s.BaseImage = baseImage
	}
	if flags.Changed("workdir") {
		s.Workdir = workdir
	}
	if flags.Changed("history-path") {
		s.HistoryPath = historyPath
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
