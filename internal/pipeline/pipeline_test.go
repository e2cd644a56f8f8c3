package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"dagger.io/dagger"
	"github.com/dagger/testctx"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jt-f/dagger-experiments/internal/config"
)

type PipelineSuite struct{}

func TestPipeline(t *testing.T) {
	testctx.New(t, Middleware()...).RunTests(PipelineSuite{})
}

// stubFacility answers call shape A with a fixed container and call shape B
// with a fixed log, recording every request.
type stubFacility struct {
	base      *dagger.Container
	completed *dagger.Container
	log       string

	generateErr error
	interactErr error

	images   []string
	requests []Request
}

func newStubFacility() *stubFacility {
	return &stubFacility{
		base:      &dagger.Container{},
		completed: &dagger.Container{},
		log:       "Used calc",
	}
}

func (f *stubFacility) Container(image, workdir string) *dagger.Container {
	f.images = append(f.images, image+":"+workdir)
	return f.base
}

func (f *stubFacility) Evaluate(ctx context.Context, req Request) (*Result, error) {
	f.requests = append(f.requests, req)
	for _, out := range req.Outputs {
		switch out.Name {
		case OutputCompleted:
			if f.generateErr != nil {
				return nil, f.generateErr
			}
			out.ContainerValue = f.completed
			return NewResult(out), nil
		case OutputInteractionLog:
			if f.interactErr != nil {
				return nil, f.interactErr
			}
			out.StringValue = f.log
			return NewResult(out), nil
		}
	}
	return NewResult(), nil
}

type fixedPrompts struct {
	generation  string
	interaction string
}

func (p *fixedPrompts) GoGenerationPrompt() string { return p.generation }
func (p *fixedPrompts) InteractionPrompt() string  { return p.interaction }

func input(t *testctx.T, req Request, name string) Binding {
	t.Helper()
	for _, b := range req.Inputs {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no input %q in %+v", name, req.Inputs)
	return Binding{}
}

func newTestPipeline(f Facility, prompts Prompts) (*Pipeline, *bytes.Buffer) {
	var progress bytes.Buffer
	return New(f, prompts, Opts{Progress: &progress}), &progress
}

func (PipelineSuite) TestGenerateProgram(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	p, _ := newTestPipeline(f, config.NewPrompts(config.MapLookup(nil)))

	ctr, err := p.GenerateProgram(ctx, "  write a calculator\n")
	require.NoError(t, err)
	require.Same(t, f.completed, ctr)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	require.Equal(t, config.DefaultGoGenerationPrompt, req.Prompt)

	require.Len(t, req.Inputs, 2)
	assignment := input(t, req, InputAssignment)
	require.Equal(t, StringKind, assignment.Kind)
	require.Equal(t, "  write a calculator\n", assignment.StringValue)

	builder := input(t, req, InputBuilder)
	require.Equal(t, ContainerKind, builder.Kind)
	require.Same(t, f.base, builder.ContainerValue)
	require.Equal(t, []string{"golang:1.21:/app"}, f.images)

	require.Len(t, req.Outputs, 1)
	require.Equal(t, OutputCompleted, req.Outputs[0].Name)
	require.Equal(t, ContainerKind, req.Outputs[0].Kind)
}

func (PipelineSuite) TestGenerateProgramCustomImage(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	p := New(f, nil, Opts{BaseImage: "golang:1.24", Workdir: "/src", Progress: &bytes.Buffer{}})

	_, err := p.GenerateProgram(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, []string{"golang:1.24:/src"}, f.images)
}

func (PipelineSuite) TestGenerateProgramRereadsPrompt(ctx context.Context, t *testctx.T) {
	values := map[string]string{}
	f := newStubFacility()
	p, _ := newTestPipeline(f, config.NewPrompts(config.MapLookup(values)))

	_, err := p.GenerateProgram(ctx, "a")
	require.NoError(t, err)
	values[config.GoGenerationPromptEnv] = "custom $assignment"
	_, err = p.GenerateProgram(ctx, "b")
	require.NoError(t, err)

	require.Equal(t, config.DefaultGoGenerationPrompt, f.requests[0].Prompt)
	require.Equal(t, "custom $assignment", f.requests[1].Prompt)
}

func (PipelineSuite) TestGenerateProgramError(ctx context.Context, t *testctx.T) {
	boom := errors.New("engine unreachable")
	f := newStubFacility()
	f.generateErr = boom
	p, _ := newTestPipeline(f, nil)

	ctr, err := p.GenerateProgram(ctx, "x")
	require.Nil(t, ctr)
	require.Same(t, boom, err)
}

func (PipelineSuite) TestRunAndInteract(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	prompts := &fixedPrompts{generation: "gen", interaction: "use $program for $task"}
	p, _ := newTestPipeline(f, prompts)
	program := &dagger.Container{}

	log, err := p.RunAndInteract(ctx, program, RunAndInteractOpts{
		InteractionDescription: "add two numbers",
	})
	require.NoError(t, err)
	require.Equal(t, "Used calc", log)

	req := f.requests[0]
	require.Equal(t, "use $program for $task", req.Prompt)
	require.Len(t, req.Inputs, 2)
	require.Same(t, program, input(t, req, InputProgram).ContainerValue)
	require.Equal(t, ContainerKind, input(t, req, InputProgram).Kind)
	require.Equal(t, "add two numbers", input(t, req, InputTask).StringValue)
	require.Equal(t, StringKind, input(t, req, InputTask).Kind)

	require.Len(t, req.Outputs, 1)
	require.Equal(t, OutputInteractionLog, req.Outputs[0].Name)
	require.Equal(t, StringKind, req.Outputs[0].Kind)

	// the program container is forwarded, never created here
	require.Empty(t, f.images)
}

func (PipelineSuite) TestRunAndInteractDefaultDescription(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	p, _ := newTestPipeline(f, nil)
	program := &dagger.Container{}

	_, err := p.RunAndInteract(ctx, program)
	require.NoError(t, err)
	_, err = p.RunAndInteract(ctx, program, RunAndInteractOpts{})
	require.NoError(t, err)
	_, err = p.RunAndInteract(ctx, program, RunAndInteractOpts{
		InteractionDescription: DefaultInteraction,
	})
	require.NoError(t, err)

	require.Len(t, f.requests, 3)
	for _, req := range f.requests {
		require.Equal(t, "Test the program as a curious user would", input(t, req, InputTask).StringValue)
		require.Equal(t, f.requests[0], req)
	}
}

func (PipelineSuite) TestRunAndInteractError(ctx context.Context, t *testctx.T) {
	boom := errors.New("agent gave up")
	f := newStubFacility()
	f.interactErr = boom
	p, _ := newTestPipeline(f, nil)

	log, err := p.RunAndInteract(ctx, &dagger.Container{})
	require.Empty(t, log)
	require.ErrorIs(t, err, boom)
}

func (PipelineSuite) TestRunAndInteractMissingOutput(ctx context.Context, t *testctx.T) {
	p, _ := newTestPipeline(emptyFacility{}, nil)

	_, err := p.RunAndInteract(ctx, &dagger.Container{})
	require.ErrorIs(t, err, ErrNoOutput)
}

type emptyFacility struct{}

func (emptyFacility) Container(string, string) *dagger.Container { return &dagger.Container{} }

func (emptyFacility) Evaluate(context.Context, Request) (*Result, error) {
	return NewResult(), nil
}

func (PipelineSuite) TestCompletePipeline(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	p, progress := newTestPipeline(f, nil)

	report, err := p.CompletePipeline(ctx, "write a calculator", CompletePipelineOpts{
		InteractionDescription: "add two numbers",
	})
	require.NoError(t, err)

	assignmentAt := strings.Index(report, "write a calculator")
	logAt := strings.Index(report, "Used calc")
	require.NotEqual(t, -1, assignmentAt)
	require.NotEqual(t, -1, logAt)
	require.Less(t, assignmentAt, logAt)
	require.Equal(t, FormatReport("write a calculator", "Used calc"), report)

	require.Len(t, f.requests, 2)
	require.Equal(t, "write a calculator", input(t, f.requests[0], InputAssignment).StringValue)
	// step 2 receives exactly what step 1 produced
	require.Same(t, f.completed, input(t, f.requests[1], InputProgram).ContainerValue)
	require.Equal(t, "add two numbers", input(t, f.requests[1], InputTask).StringValue)

	require.Equal(t,
		"🚀 Starting pipeline with assignment: write a calculator\n"+
			"📝 Step 1: Generating Go program with LLM...\n"+
			"🤖 Step 2: Having second agent interact with the program...\n",
		progress.String())
}

func (PipelineSuite) TestCompletePipelineDefaultDescription(ctx context.Context, t *testctx.T) {
	f := newStubFacility()
	p, _ := newTestPipeline(f, nil)

	_, err := p.CompletePipeline(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "Test the program thoroughly as a real user", input(t, f.requests[1], InputTask).StringValue)
}

func (PipelineSuite) TestCompletePipelineStopsOnGenerateFailure(ctx context.Context, t *testctx.T) {
	boom := errors.New("builder exploded")
	f := newStubFacility()
	f.generateErr = boom
	p, progress := newTestPipeline(f, nil)

	report, err := p.CompletePipeline(ctx, "x")
	require.Empty(t, report)
	require.Same(t, boom, err)
	require.Len(t, f.requests, 1)
	require.NotContains(t, progress.String(), "Step 2")
}

func (PipelineSuite) TestCompletePipelineStopsOnInteractFailure(ctx context.Context, t *testctx.T) {
	boom := errors.New("interaction failed")
	f := newStubFacility()
	f.interactErr = boom
	p, _ := newTestPipeline(f, nil)

	report, err := p.CompletePipeline(ctx, "x")
	require.Empty(t, report)
	require.Same(t, boom, err)
	require.Len(t, f.requests, 2)
}

func (PipelineSuite) TestCompletePipelineSpans(ctx context.Context, t *testctx.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, root := tp.Tracer("test").Start(context.Background(), "root")
	p, _ := newTestPipeline(newStubFacility(), nil)
	_, err := p.CompletePipeline(ctx, "x")
	require.NoError(t, err)
	root.End()

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	require.Equal(t, []string{"generate program", "run and interact", "complete pipeline", "root"}, names)
}
