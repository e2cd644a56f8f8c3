package daggerllm

import (
	"context"
	"fmt"

	"dagger.io/dagger"
)

// LoadContainer rehydrates a container from an ID printed by an earlier run.
func (f *Facility) LoadContainer(id string) *dagger.Container {
	return f.dag.LoadContainerFromID(dagger.ContainerID(id))
}

// ImportContainer loads a container from an OCI tarball on the host.
func (f *Facility) ImportContainer(path string) *dagger.Container {
	return f.dag.Container().Import(f.dag.Host().File(path))
}

// ExportContainer writes ctr to the host as an OCI tarball.
func (f *Facility) ExportContainer(ctx context.Context, ctr *dagger.Container, path string) (string, error) {
	out, err := ctr.Export(ctx, path)
	if err != nil {
		return "", fmt.Errorf("export container: %w", err)
	}
	return out, nil
}

func (f *Facility) ContainerID(ctx context.Context, ctr *dagger.Container) (string, error) {
	id, err := ctr.ID(ctx)
	if err != nil {
		return "", err
	}
	return string(id), nil
}
