package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"dagger.io/dagger"
	"dagger.io/dagger/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jt-f/dagger-experiments/internal/config"
	"github.com/jt-f/dagger-experiments/internal/logging"
)

// Input and output names shared with the agents.
const (
	InputAssignment = "assignment"
	InputBuilder    = "builder"
	OutputCompleted = "completed"

	InputProgram         = "program"
	InputTask            = "task"
	OutputInteractionLog = "interaction_log"
)

const (
	DefaultInteraction         = "Test the program as a curious user would"
	DefaultPipelineInteraction = "Test the program thoroughly as a real user"
)

// Prompts supplies the prompt templates. It is consulted on every call.
type Prompts interface {
	GoGenerationPrompt() string
	InteractionPrompt() string
}

// Opts configures a Pipeline. Zero values pick the defaults.
type Opts struct {
	// Image for the builder container handed to the generation agent.
	BaseImage string
	// Working directory inside the builder container.
	Workdir string
	// Where progress notices go. Defaults to os.Stdout.
	Progress io.Writer
}

// Pipeline asks one agent to write a Go program and another to use it.
type Pipeline struct {
	facility Facility
	prompts  Prompts

	baseImage string
	workdir   string
	progress  io.Writer
}

func New(facility Facility, prompts Prompts, opts Opts) *Pipeline {
	p := &Pipeline{
		facility:  facility,
		prompts:   prompts,
		baseImage: opts.BaseImage,
		workdir:   opts.Workdir,
		progress:  opts.Progress,
	}
	if p.prompts == nil {
		p.prompts = config.NewPrompts(nil)
	}
	if p.baseImage == "" {
		p.baseImage = config.DefaultBaseImage
	}
	if p.workdir == "" {
		p.workdir = config.DefaultWorkdir
	}
	if p.progress == nil {
		p.progress = os.Stdout
	}
	return p
}

// GenerateProgram has an agent write and build a Go program for assignment
// inside a fresh builder container, and returns the container it left
// behind. The container is not inspected.
func (p *Pipeline) GenerateProgram(ctx context.Context, assignment string) (_ *dagger.Container, rerr error) {
	ctx, span := Tracer(ctx).Start(ctx, "generate program",
		telemetry.ActorEmoji("📝"),
		trace.WithAttributes(attribute.String("pipeline.base_image", p.baseImage)))
	defer endSpan(span, &rerr)

	logger := logging.FromContext(ctx)
	logger.Debug("generating program", "image", p.baseImage, "workdir", p.workdir)

	res, err := p.facility.Evaluate(ctx, Request{
		Prompt: p.prompts.GoGenerationPrompt(),
		Inputs: []Binding{
			StringInput(InputAssignment, assignment,
				"the programming assignment to complete"),
			ContainerInput(InputBuilder, p.facility.Container(p.baseImage, p.workdir),
				"a Go container to use for building and running Go code"),
		},
		Outputs: []Binding{
			ContainerOutput(OutputCompleted,
				"the completed assignment in the Go container"),
		},
	})
	if err != nil {
		return nil, err
	}
	return res.AsContainer(OutputCompleted)
}

type RunAndInteractOpts struct {
	// How the agent should use the program. Defaults to DefaultInteraction.
	InteractionDescription string
}

// RunAndInteract has an agent run the program in the given container and
// returns its account of the session.
func (p *Pipeline) RunAndInteract(ctx context.Context, program *dagger.Container, opts ...RunAndInteractOpts) (_ string, rerr error) {
	description := DefaultInteraction
	for _, opt := range opts {
		if opt.InteractionDescription != "" {
			description = opt.InteractionDescription
		}
	}

	ctx, span := Tracer(ctx).Start(ctx, "run and interact", telemetry.ActorEmoji("🤖"))
	defer endSpan(span, &rerr)

	logging.FromContext(ctx).Debug("interacting with program", "task", description)

	res, err := p.facility.Evaluate(ctx, Request{
		Prompt: p.prompts.InteractionPrompt(),
		Inputs: []Binding{
			ContainerInput(InputProgram, program,
				"container with the Go program to run and interact with"),
			StringInput(InputTask, description,
				"description of how to interact with the program"),
		},
		Outputs: []Binding{
			StringOutput(OutputInteractionLog,
				"log of the interaction with the program"),
		},
	})
	if err != nil {
		return "", err
	}
	return res.AsString(OutputInteractionLog)
}

type CompletePipelineOpts struct {
	// How the second agent should use the program. Defaults to
	// DefaultPipelineInteraction.
	InteractionDescription string
}

// CompletePipeline generates a program for assignment, has a second agent
// use it, and returns the combined report. The first failure aborts the run
// and no report is produced.
func (p *Pipeline) CompletePipeline(ctx context.Context, assignment string, opts ...CompletePipelineOpts) (_ string, rerr error) {
	description := DefaultPipelineInteraction
	for _, opt := range opts {
		if opt.InteractionDescription != "" {
			description = opt.InteractionDescription
		}
	}

	ctx, span := Tracer(ctx).Start(ctx, "complete pipeline", telemetry.Reveal())
	defer endSpan(span, &rerr)

	logger := logging.FromContext(ctx)

	fmt.Fprintf(p.progress, "🚀 Starting pipeline with assignment: %s\n", assignment)

	fmt.Fprintln(p.progress, "📝 Step 1: Generating Go program with LLM...")
	program, err := p.GenerateProgram(ctx, assignment)
	if err != nil {
		return "", err
	}
	logger.Info("program generated")

	fmt.Fprintln(p.progress, "🤖 Step 2: Having second agent interact with the program...")
	interactionLog, err := p.RunAndInteract(ctx, program, RunAndInteractOpts{
		InteractionDescription: description,
	})
	if err != nil {
		return "", err
	}
	logger.Info("interaction finished", "log_bytes", len(interactionLog))

	return FormatReport(assignment, interactionLog), nil
}
