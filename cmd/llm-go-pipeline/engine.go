package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"dagger.io/dagger"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"

	"github.com/jt-f/dagger-experiments/internal/daggerllm"
	"github.com/jt-f/dagger-experiments/internal/pipeline"
)

type facilityCallback func(context.Context, *daggerllm.Facility) error

// withEngine connects to the Dagger engine for the duration of fn.
func withEngine(ctx context.Context, fn facilityCallback) (rerr error) {
	var opts []dagger.ClientOpt
	// engine progress is noise when piped
	if debug || isatty.IsTerminal(os.Stderr.Fd()) {
		opts = append(opts, dagger.WithLogOutput(os.Stderr))
	}

	dag, err := dagger.Connect(ctx, opts...)
	if err != nil {
		return fmt.Errorf("connect to engine: %w", err)
	}
	defer func() {
		if err := dag.Close(); err != nil {
			rerr = multierror.Append(rerr, fmt.Errorf("close engine: %w", err))
		}
	}()

	return fn(ctx, daggerllm.New(dag, daggerllm.Opts{
		Model:       settings.Model,
		MaxAPICalls: settings.MaxAPICalls,
	}))
}

func newPipeline(f pipeline.Facility, progress io.Writer) *pipeline.Pipeline {
	return pipeline.New(f, prompts, pipeline.Opts{
		BaseImage: settings.BaseImage,
		Workdir:   settings.Workdir,
		Progress:  progress,
	})
}
