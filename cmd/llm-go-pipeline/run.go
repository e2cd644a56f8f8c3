package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/jt-f/dagger-experiments/internal/daggerllm"
	"github.com/jt-f/dagger-experiments/internal/history"
	"github.com/jt-f/dagger-experiments/internal/logging"
	"github.com/jt-f/dagger-experiments/internal/pipeline"
)

var (
	runTask      string
	runNoHistory bool
)

func init() {
	runCmd.Flags().StringVar(&runTask, "task", pipeline.DefaultPipelineInteraction, "How the second agent should use the program")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not store the report")
}

var runCmd = &cobra.Command{
	Use:     "run [options] <assignment>",
	Aliases: []string{"complete"},
	Short:   "Generate a Go program, have a second agent use it, and print a report",
	Example: `llm-go-pipeline run "write a calculator" --task "add two numbers"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		assignment := args[0]
		task := interactionTask(runTask)
		started := time.Now()

		var report string
		err := withEngine(ctx, func(ctx context.Context, f *daggerllm.Facility) (err error) {
			report, err = newPipeline(f, cmd.OutOrStdout()).CompletePipeline(ctx, assignment, pipeline.CompletePipelineOpts{
				InteractionDescription: task,
			})
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report)

		if runNoHistory {
			return nil
		}
		return saveReport(ctx, newRecord(assignment, task, report, started, time.Since(started)))
	},
}

// interactionTask is the description the second agent actually receives.
func interactionTask(task string) string {
	if task == "" {
		return pipeline.DefaultPipelineInteraction
	}
	return task
}

func newRecord(assignment, task, report string, started time.Time, took time.Duration) history.Record {
	return history.Record{
		Assignment:             assignment,
		InteractionDescription: interactionTask(task),
		Model:                  settings.Model,
		Report:                 report,
		StartedAt:              started.UTC(),
		Duration:               took,
	}
}

func saveReport(ctx context.Context, rec history.Record) (rerr error) {
	store, err := history.Open(settings.HistoryPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			rerr = multierror.Append(rerr, fmt.Errorf("close history: %w", err))
		}
	}()
	id, err := store.Put(rec)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("report saved", "id", id)
	return nil
}
