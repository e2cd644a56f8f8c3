package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jt-f/dagger-experiments/internal/daggerllm"
	"github.com/jt-f/dagger-experiments/internal/logging"
)

var generateExport string

func init() {
	generateCmd.Flags().StringVar(&generateExport, "export", "", "Also write the resulting container to this path as an OCI tarball")
}

var generateCmd = &cobra.Command{
	Use:   "generate [options] <assignment>",
	Short: "Have an agent write and build a Go program",
	Long: "Have an agent write and build a Go program for the assignment. " +
		"Prints the ID of the resulting container, which can be passed to 'interact'.",
	Example: `llm-go-pipeline generate "write a simple calculator"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assignment := args[0]
		return withEngine(cmd.Context(), func(ctx context.Context, f *daggerllm.Facility) error {
			program, err := newPipeline(f, cmd.ErrOrStderr()).GenerateProgram(ctx, assignment)
			if err != nil {
				return err
			}
			if generateExport != "" {
				path, err := f.ExportContainer(ctx, program, generateExport)
				if err != nil {
					return err
				}
				logging.FromContext(ctx).Info("exported program", "path", path)
			}
			id, err := f.ContainerID(ctx, program)
			if err != nil {
				return fmt.Errorf("get container id: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}
