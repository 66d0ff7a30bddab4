package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/build"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/docker"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/git"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Replace the zkLink contract constants for the network and compile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		slog.With("macro", cfg.Macro, "build", cfg.Build).Info("starting build. Validating config")

		if err := cfg.Macro.Validate(); err != nil {
			return err
		}

		runner, closeRunner, err := scarbRunner(cfg.Build)
		if err != nil {
			return err
		}
		defer closeRunner()

		builder := build.NewBuilder(fsys, git.NewCloner(), runner, logger.NewConsole(cmd.OutOrStdout()))
		if err := builder.Execute(cmd.Context(), cfg.Build, cfg.Macro); err != nil {
			return fmt.Errorf("error occurred building zklink: %w", err)
		}

		return nil
	},
}

func scarbRunner(cfg configs.Build) (build.Runner, func(), error) {
	if cfg.Runner != configs.RunnerDocker {
		return build.NewLocalRunner(), func() {}, nil
	}

	client, err := docker.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return build.NewDockerRunner(client, cfg.ScarbVersion), func() { _ = client.Close() }, nil
}
