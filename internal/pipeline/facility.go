package pipeline

import (
	"context"
	"errors"
	"fmt"

	"dagger.io/dagger"
)

// Facility is the container and LLM runtime the pipeline drives. The
// pipeline only ever builds requests and forwards the values it gets back.
type Facility interface {
	// Container returns a fresh container from image with its working
	// directory set to workdir.
	Container(image, workdir string) *dagger.Container
	// Evaluate runs an agent with prompt over the request's inputs and
	// returns the declared outputs once the agent is done.
	Evaluate(ctx context.Context, req Request) (*Result, error)
}

type Kind string

const (
	StringKind    Kind = "string"
	ContainerKind Kind = "container"
)

// Binding is a named value handed to, or expected back from, an agent.
// Output declarations leave the value fields empty.
type Binding struct {
	Name        string
	Description string
	Kind        Kind

	StringValue    string
	ContainerValue *dagger.Container
}

func StringInput(name, value, description string) Binding {
	return Binding{Name: name, Description: description, Kind: StringKind, StringValue: value}
}

func ContainerInput(name string, value *dagger.Container, description string) Binding {
	return Binding{Name: name, Description: description, Kind: ContainerKind, ContainerValue: value}
}

func StringOutput(name, description string) Binding {
	return Binding{Name: name, Description: description, Kind: StringKind}
}

func ContainerOutput(name, description string) Binding {
	return Binding{Name: name, Description: description, Kind: ContainerKind}
}

// Request is a single agent invocation.
type Request struct {
	// Instructions for the agent. Placeholders are left for the runtime.
	Prompt  string
	Inputs  []Binding
	Outputs []Binding
}

// ErrNoOutput is returned when a result lacks a requested output.
var ErrNoOutput = errors.New("no such output")

// Result holds the outputs an agent produced.
type Result struct {
	outputs map[string]Binding
}

func NewResult(outputs ...Binding) *Result {
	r := &Result{outputs: make(map[string]Binding, len(outputs))}
	for _, b := range outputs {
		r.outputs[b.Name] = b
	}
	return r
}

func (r *Result) AsContainer(name string) (*dagger.Container, error) {
	b, err := r.output(name, ContainerKind)
	if err != nil {
		return nil, err
	}
	return b.ContainerValue, nil
}

func (r *Result) AsString(name string) (string, error) {
	b, err := r.output(name, StringKind)
	if err != nil {
		return "", err
	}
	return b.StringValue, nil
}

func (r *Result) output(name string, kind Kind) (Binding, error) {
	if r == nil {
		return Binding{}, fmt.Errorf("output %q: %w", name, ErrNoOutput)
	}
	b, ok := r.outputs[name]
	if !ok {
		return Binding{}, fmt.Errorf("output %q: %w", name, ErrNoOutput)
	}
	if b.Kind != kind {
		return Binding{}, fmt.Errorf("output %q is a %s, not a %s: %w", name, b.Kind, kind, ErrNoOutput)
	}
	return b, nil
}
