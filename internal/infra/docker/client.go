package docker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
	"github.com/moby/go-archive"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

const dockerfileName = "Dockerfile"

// Client runs the tool containers the build pipeline needs.
type Client struct {
	cli    *client.Client
	logger *slog.Logger
}

// New creates a new Docker client from the environment.
func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	return &Client{cli: cli, logger: logger.Named("docker")}, nil
}

// Close closes the Docker client connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// ImageExists checks if a Docker image exists locally.
func (c *Client) ImageExists(ctx context.Context, imageName string) (bool, error) {
	_, err := c.cli.ImageInspect(ctx, imageName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureImage builds tag from dockerfile unless it is already present locally.
// Build arguments are passed through to the Dockerfile.
func (c *Client) EnsureImage(ctx context.Context, tag string, dockerfile []byte, buildArgs map[string]string) error {
	exists, err := c.ImageExists(ctx, tag)
	if err != nil {
		return fmt.Errorf("failed to inspect image %s: %w", tag, err)
	}
	if exists {
		c.logger.With("tag", tag).Debug("docker image already present")
		return nil
	}

	contextDir, err := os.MkdirTemp("", "zkdeploy-image-")
	if err != nil {
		return fmt.Errorf("failed to create build context directory: %w", err)
	}
	defer os.RemoveAll(contextDir)

	if err := os.WriteFile(filepath.Join(contextDir, dockerfileName), dockerfile, 0644); err != nil {
		return fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	return c.buildImage(ctx, contextDir, tag, buildArgs)
}

// buildMessage is one line of the image build progress stream.
type buildMessage struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
}

// buildImage builds tag from the Dockerfile at the root of contextDir.
func (c *Client) buildImage(ctx context.Context, contextDir, tag string, buildArgs map[string]string) error {
	log := c.logger.With("tag", tag)
	log.Info("building docker image")

	buildContext, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer buildContext.Close()

	args := make(map[string]*string, len(buildArgs))
	for k, v := range buildArgs {
		args[k] = &v
	}

	resp, err := c.cli.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfileName,
		BuildArgs:  args,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to build image %s: %w", tag, err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var msg buildMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			log.Debug(scanner.Text())
			continue
		}
		if msg.Error != "" {
			return fmt.Errorf("failed to build image %s: %s", tag, msg.Error)
		}
		if line := strings.TrimSpace(msg.Stream); line != "" {
			log.Debug(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading build output: %w", err)
	}

	log.Info("docker image built")
	return nil
}
