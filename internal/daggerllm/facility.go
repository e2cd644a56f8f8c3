package daggerllm

import (
	"context"
	"errors"
	"fmt"

	"dagger.io/dagger"

	"github.com/jt-f/dagger-experiments/internal/pipeline"
)

type Opts struct {
	// Model to run agents with. Empty uses the engine default.
	Model string
	// Maximum LLM API calls per agent. Zero means no limit.
	MaxAPICalls int
}

// Facility runs pipeline requests as Dagger LLM calls.
type Facility struct {
	dag  *dagger.Client
	opts Opts
}

var _ pipeline.Facility = (*Facility)(nil)

func New(dag *dagger.Client, opts Opts) *Facility {
	return &Facility{dag: dag, opts: opts}
}

func (f *Facility) Container(image, workdir string) *dagger.Container {
	return f.dag.Container().From(image).WithWorkdir(workdir)
}

// Evaluate binds the request into a Dagger environment, prompts an LLM with
// it, and reads back every declared output. Container outputs are synced so
// a failed agent run surfaces here rather than in a later step.
func (f *Facility) Evaluate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	env := &daggerEnv{env: f.dag.Env()}
	bindRequest(env, req)

	work := f.dag.LLM(dagger.LLMOpts{
		Model:       f.opts.Model,
		MaxAPICalls: f.opts.MaxAPICalls,
	}).
		WithEnv(env.env).
		WithPrompt(req.Prompt)

	results := work.Env()
	outputs := make([]pipeline.Binding, 0, len(req.Outputs))
	for _, out := range req.Outputs {
		binding := results.Output(out.Name)
		switch out.Kind {
		case pipeline.StringKind:
			s, err := binding.AsString(ctx)
			if err != nil {
				return nil, err
			}
			out.StringValue = s
		case pipeline.ContainerKind:
			ctr, err := binding.AsContainer().Sync(ctx)
			if err != nil {
				return nil, err
			}
			out.ContainerValue = ctr
		}
		outputs = append(outputs, out)
	}
	return pipeline.NewResult(outputs...), nil
}

// envBinder is the part of a Dagger environment a request is bound into.
type envBinder interface {
	WithStringInput(name, value, description string)
	WithContainerInput(name string, value *dagger.Container, description string)
	WithStringOutput(name, description string)
	WithContainerOutput(name, description string)
}

// bindRequest declares every input, then every output, in request order.
func bindRequest(b envBinder, req pipeline.Request) {
	for _, in := range req.Inputs {
		switch in.Kind {
		case pipeline.StringKind:
			b.WithStringInput(in.Name, in.StringValue, in.Description)
		case pipeline.ContainerKind:
			b.WithContainerInput(in.Name, in.ContainerValue, in.Description)
		}
	}
	for _, out := range req.Outputs {
		switch out.Kind {
		case pipeline.StringKind:
			b.WithStringOutput(out.Name, out.Description)
		case pipeline.ContainerKind:
			b.WithContainerOutput(out.Name, out.Description)
		}
	}
}

type daggerEnv struct {
	env *dagger.Env
}

func (e *daggerEnv) WithStringInput(name, value, description string) {
	e.env = e.env.WithStringInput(name, value, description)
}

func (e *daggerEnv) WithContainerInput(name string, value *dagger.Container, description string) {
	e.env = e.env.WithContainerInput(name, value, description)
}

func (e *daggerEnv) WithStringOutput(name, description string) {
	e.env = e.env.WithStringOutput(name, description)
}

func (e *daggerEnv) WithContainerOutput(name, description string) {
	e.env = e.env.WithContainerOutput(name, description)
}

var errInvalidRequest = errors.New("invalid request")

func checkRequest(req pipeline.Request) error {
	seen := map[string]bool{}
	check := func(b pipeline.Binding, input bool) error {
		if b.Name == "" {
			return fmt.Errorf("%w: binding with empty name", errInvalidRequest)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate binding %q", errInvalidRequest, b.Name)
		}
		seen[b.Name] = true
		switch b.Kind {
		case pipeline.StringKind:
		case pipeline.ContainerKind:
			if input && b.ContainerValue == nil {
				return fmt.Errorf("%w: container input %q has no value", errInvalidRequest, b.Name)
			}
		default:
			return fmt.Errorf("%w: binding %q has unsupported kind %q", errInvalidRequest, b.Name, b.Kind)
		}
		return nil
	}
	for _, in := range req.Inputs {
		if err := check(in, true); err != nil {
			return err
		}
	}
	for _, out := range req.Outputs {
		if err := check(out, false); err != nil {
			return err
		}
	}
	return nil
}
