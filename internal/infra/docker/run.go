package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
)

type (
	// Mount binds a host directory into the container.
	Mount struct {
		Source string
		Target string
	}

	// RunOptions describes a one-shot tool container.
	RunOptions struct {
		Image   string
		Cmd     []string
		Env     []string
		Mounts  []Mount
		WorkDir string
		User    string
		// Output receives the container's stdout and stderr while it runs.
		Output io.Writer
	}
)

// Run runs a container to completion and returns its stdout. The container is
// removed afterwards, also when ctx is cancelled.
func (c *Client) Run(ctx context.Context, opts RunOptions) (string, error) {
	hostConfig := &container.HostConfig{}
	for _, m := range opts.Mounts {
		hostConfig.Mounts = append(hostConfig.Mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: m.Source,
			Target: m.Target,
		})
	}

	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Cmd,
		Env:        opts.Env,
		WorkingDir: opts.WorkDir,
		User:       opts.User,
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container from '%s': %w", opts.Image, err)
	}

	id := resp.ID
	log := c.logger.With("container_id", id, "image", opts.Image)
	defer func() {
		if err := c.cli.ContainerRemove(context.WithoutCancel(ctx), id, container.RemoveOptions{Force: true}); err != nil {
			log.With("err", err.Error()).Warn("failed to remove container")
		}
	}()

	attached, err := c.cli.ContainerAttach(ctx, id, container.AttachOptions{Stream: true, Stdout: true, Stderr: true})
	if err != nil {
		return "", fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	outW, errW := io.Writer(&stdout), io.Writer(&stderr)
	if opts.Output != nil {
		outW, errW = io.MultiWriter(opts.Output, &stdout), io.MultiWriter(opts.Output, &stderr)
	}

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = stdcopy.StdCopy(outW, errW, attached.Reader)
	}()

	if err := c.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	log.Debug("container started")

	statusCh, errCh := c.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("error waiting for container: %w", err)
		}
	case status := <-statusCh:
		<-copied
		if status.StatusCode != 0 {
			return "", fmt.Errorf("container exited with code %d: %s", status.StatusCode, stderr.String())
		}
	}

	return stdout.String(), nil
}
