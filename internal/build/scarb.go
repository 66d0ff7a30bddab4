package build

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/docker"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

//go:embed Dockerfile.scarb
var scarbDockerfile []byte

var scarbVersionPattern = regexp.MustCompile(`(?m)^scarb (\S+)`)

var buildArgs = []string{"--release", "build"}

const workspaceDir = "/workspace"

type (
	// Runner compiles a scarb package.
	Runner interface {
		Version(ctx context.Context) (string, error)
		Build(ctx context.Context, dir string) error
	}

	// LocalRunner uses the scarb binary on PATH.
	LocalRunner struct {
		binary string
		logger *slog.Logger
	}

	containerRunner interface {
		EnsureImage(ctx context.Context, tag string, dockerfile []byte, buildArgs map[string]string) error
		Run(ctx context.Context, opts docker.RunOptions) (string, error)
	}

	// DockerRunner compiles inside a locally built image pinned to one scarb release.
	DockerRunner struct {
		docker  containerRunner
		version string
		logger  *slog.Logger
	}
)

func NewLocalRunner() *LocalRunner {
	return &LocalRunner{binary: "scarb", logger: logger.Named("scarb")}
}

func (r *LocalRunner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", r.binary, err)
	}

	return ParseScarbVersion(string(out))
}

func (r *LocalRunner) Build(ctx context.Context, dir string) error {
	r.logger.With("dir", dir).Info("running scarb build")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, buildArgs...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("scarb build failed: %w, output: %s", err, stderr.String())
	}

	return nil
}

func NewDockerRunner(client containerRunner, version string) *DockerRunner {
	return &DockerRunner{docker: client, version: version, logger: logger.Named("scarb_docker")}
}

func (r *DockerRunner) image() string {
	return "zkdeploy-scarb:" + r.version
}

func (r *DockerRunner) Version(_ context.Context) (string, error) {
	return r.version, nil
}

func (r *DockerRunner) Build(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}

	if err := r.docker.EnsureImage(ctx, r.image(), scarbDockerfile, map[string]string{"SCARB_VERSION": r.version}); err != nil {
		return fmt.Errorf("failed to prepare scarb image: %w", err)
	}

	r.logger.With("dir", absDir, "image", r.image()).Info("running scarb build in container")

	_, err = r.docker.Run(ctx, docker.RunOptions{
		Image:   r.image(),
		Cmd:     append([]string{"scarb"}, buildArgs...),
		Mounts:  []docker.Mount{{Source: absDir, Target: workspaceDir}},
		WorkDir: workspaceDir,
		User:    fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		Output:  os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("scarb build failed: %w", err)
	}

	return nil
}

// ParseScarbVersion extracts the version from `scarb --version` output.
func ParseScarbVersion(output string) (string, error) {
	match := scarbVersionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("unrecognised scarb version output: %q", output)
	}

	return match[1], nil
}

// CheckVersion fails when version is older than minimum. An empty minimum
// accepts any version.
func CheckVersion(version, minimum string) error {
	if minimum == "" {
		return nil
	}

	got, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid scarb version '%s': %w", version, err)
	}

	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum scarb version '%s': %w", minimum, err)
	}

	if !constraint.Check(got) {
		return fmt.Errorf("scarb %s is older than the required %s", version, minimum)
	}

	return nil
}
