package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/docker"
)

func TestParseScarbVersion(t *testing.T) {
	version, err := ParseScarbVersion("scarb 2.6.4 (c4c7c0bac 2024-03-19)\ncairo: 2.6.3 (https://crates.io/crates/cairo-lang-compiler/2.6.3)\nsierra: 1.5.0\n")
	require.NoError(t, err)
	assert.Equal(t, "2.6.4", version)

	_, err = ParseScarbVersion("command not found")
	require.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	require.NoError(t, CheckVersion("2.6.4", "2.4.0"))
	require.NoError(t, CheckVersion("2.4.0", "2.4.0"))
	require.NoError(t, CheckVersion("0.1.0", ""))
	require.ErrorContains(t, CheckVersion("2.3.1", "2.4.0"), "older")
	require.Error(t, CheckVersion("nightly", "2.4.0"))
}

type fakeContainers struct {
	image     string
	buildArgs map[string]string
	runs      []docker.RunOptions
}

func (f *fakeContainers) EnsureImage(_ context.Context, tag string, dockerfile []byte, buildArgs map[string]string) error {
	f.image = tag
	f.buildArgs = buildArgs
	return nil
}

func (f *fakeContainers) Run(_ context.Context, opts docker.RunOptions) (string, error) {
	f.runs = append(f.runs, opts)
	return "", nil
}

func TestDockerRunner(t *testing.T) {
	containers := &fakeContainers{}
	runner := NewDockerRunner(containers, "2.6.4")

	version, err := runner.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.6.4", version)

	require.NoError(t, runner.Build(context.Background(), "/src/zklink-starknet"))

	assert.Equal(t, "zkdeploy-scarb:2.6.4", containers.image)
	assert.Equal(t, map[string]string{"SCARB_VERSION": "2.6.4"}, containers.buildArgs)
	require.Len(t, containers.runs, 1)
	assert.Equal(t, []string{"scarb", "--release", "build"}, containers.runs[0].Cmd)
	assert.Equal(t, []docker.Mount{{Source: "/src/zklink-starknet", Target: "/workspace"}}, containers.runs[0].Mounts)
	assert.Equal(t, "/workspace", containers.runs[0].WorkDir)
}

func TestEmbeddedDockerfile(t *testing.T) {
	assert.Contains(t, string(scarbDockerfile), "ARG SCARB_VERSION")
}
