package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/commands"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

const appName = "zkdeploy"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Build, deploy and upgrade the zkLink Starknet contracts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(viper.GetString("runtime.log-level"))
		if err != nil {
			return err
		}
		logger.Initialize(level, logger.Format(viper.GetString("runtime.log-format")))

		net := viper.GetString("runtime.net")
		cfg, err := configs.Load(viper.GetViper(), afero.NewOsFs(), viper.GetString("runtime.config-dir"), net)
		if err != nil {
			if !errors.Is(err, configs.ErrConfigNotFound) || !commands.ConfigOptional(cmd) {
				const errMsg = "unable to load network config"
				slog.With("err", err.Error(), "net", net).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}

			slog.With("net", net).Debug("no network config file found, using flags only")
			cfg = configs.Config{}
			if err := viper.UnmarshalKey("runtime", &cfg.Runtime); err != nil {
				return errors.Join(err, errors.New("unable to decode runtime flags"))
			}
		}

		configs.Values = cfg
		slog.With("net", net, "network", cfg.Network.Name).Debug("configuration loaded")

		return nil
	},
}

func main() {
	if err := commands.Register(rootCmd, viper.GetViper()); err != nil {
		slog.With("err", err.Error()).Error("failed to declare flags")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.With("err", err.Error()).Error("failed to execute command")
		logger.NewConsole(os.Stdout).Failure("%v", err)
		stop()
		os.Exit(1)
	}
}
