package main

import (
	"context"
	"fmt"

	"dagger.io/dagger"
	"github.com/spf13/cobra"

	"github.com/jt-f/dagger-experiments/internal/daggerllm"
	"github.com/jt-f/dagger-experiments/internal/pipeline"
)

var (
	interactContainerID string
	interactImport      string
	interactTask        string
)

func init() {
	flags := interactCmd.Flags()
	flags.StringVar(&interactContainerID, "container-id", "", "ID of a container printed by 'generate'")
	flags.StringVar(&interactImport, "import", "", "OCI tarball written by 'generate --export'")
	flags.StringVar(&interactTask, "task", pipeline.DefaultInteraction, "How the agent should use the program")
	interactCmd.MarkFlagsOneRequired("container-id", "import")
	interactCmd.MarkFlagsMutuallyExclusive("container-id", "import")
}

var interactCmd = &cobra.Command{
	Use:   "interact [options]",
	Short: "Have an agent run a generated program and report how it went",
	Example: `llm-go-pipeline interact --import program.tar --task "add two numbers"
llm-go-pipeline interact --container-id "$(llm-go-pipeline generate 'write a calculator')"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, f *daggerllm.Facility) error {
			var program *dagger.Container
			if interactImport != "" {
				program = f.ImportContainer(interactImport)
			} else {
				program = f.LoadContainer(interactContainerID)
			}
			log, err := newPipeline(f, cmd.ErrOrStderr()).RunAndInteract(ctx, program, pipeline.RunAndInteractOpts{
				InteractionDescription: interactTask,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), log)
			return nil
		})
	},
}
