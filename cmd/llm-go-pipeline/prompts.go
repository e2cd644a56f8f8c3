package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jt-f/dagger-experiments/internal/config"
	"github.com/jt-f/dagger-experiments/internal/logging"
)

type promptEntry struct {
	name         string
	env          string
	fallback     string
	placeholders []string
}

var promptEntries = []promptEntry{
	{
		name:         "generation",
		env:          config.GoGenerationPromptEnv,
		fallback:     config.DefaultGoGenerationPrompt,
		placeholders: []string{"assignment"},
	},
	{
		name:         "interaction",
		env:          config.InteractionPromptEnv,
		fallback:     config.DefaultInteractionPrompt,
		placeholders: []string{"task"},
	},
}

var promptsCmd = &cobra.Command{
	Use:       "prompts [generation|interaction]",
	Short:     "Print the prompts the agents will receive",
	Long:      "Print the prompts the agents will receive, after environment and .env overrides.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"generation", "interaction"},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.FromContext(cmd.Context())
		out := cmd.OutOrStdout()

		for i, entry := range promptEntries {
			if len(args) == 1 && args[0] != entry.name {
				continue
			}
			prompt, overridden := prompts.Resolve(entry.env, entry.fallback)
			if overridden {
				for _, name := range entry.placeholders {
					if !config.HasPlaceholder(prompt, name) {
						logger.Warn("prompt override does not reference a placeholder", "env", entry.env, "placeholder", "$"+name)
					}
				}
			}

			if len(args) == 1 {
				// raw, for piping
				fmt.Fprintln(out, prompt)
				return nil
			}
			source := "default"
			if overridden {
				source = "overridden by " + entry.env
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s (%s)\n%s\n", entry.name, source, prompt)
		}
		return nil
	},
}
