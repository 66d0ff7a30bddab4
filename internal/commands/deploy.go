package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/deploy"
)

// withEnvironment connects to the configured network and runs fn.
func withEnvironment(cmd *cobra.Command, fn func(ctx context.Context, env *environment) error) error {
	env, err := newEnvironment(cmd.Context(), configs.Values, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer env.close()

	return fn(cmd.Context(), env)
}

var declareZklinkCmd = &cobra.Command{
	Use:   "declareZklink",
	Short: "Declare the gatekeeper, verifier and zkLink classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.Declare(ctx, deploy.AllClasses(force)); err != nil {
				return fmt.Errorf("failed to declare zklink classes: %w", err)
			}
			return nil
		})
	},
}

var deployZklinkCmd = &cobra.Command{
	Use:   "deployZklink",
	Short: "Deploy zkLink, its verifier and gatekeeper and hand control to the governor",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := deployZklinkOptions(cmd)
		if err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.DeployZklink(ctx, opts); err != nil {
				return fmt.Errorf("failed to deploy zklink: %w", err)
			}
			return nil
		})
	},
}

func deployZklinkOptions(cmd *cobra.Command) (deploy.DeployZklinkOptions, error) {
	var (
		opts deploy.DeployZklinkOptions
		err  error
	)

	if opts.Governor, err = feltFlag(cmd, "governor"); err != nil {
		return opts, err
	}
	if opts.Validator, err = feltFlag(cmd, "validator"); err != nil {
		return opts, err
	}
	if opts.FeeAccount, err = feltFlag(cmd, "fee-account"); err != nil {
		return opts, err
	}
	if opts.BlockNumber, err = cmd.Flags().GetUint64("block-number"); err != nil {
		return opts, err
	}
	if opts.Timestamp, err = cmd.Flags().GetUint64("timestamp"); err != nil {
		return opts, err
	}
	if opts.GenesisRoot, err = u256Flag(cmd, "genesis-root"); err != nil {
		return opts, err
	}
	if opts.Commitment, err = u256Flag(cmd, "commitment"); err != nil {
		return opts, err
	}
	if opts.SyncHash, err = u256Flag(cmd, "sync-hash"); err != nil {
		return opts, err
	}
	if opts.SkipVerify, err = cmd.Flags().GetBool("skip-verify"); err != nil {
		return opts, err
	}
	if opts.Force, err = cmd.Flags().GetBool("force"); err != nil {
		return opts, err
	}

	return opts, nil
}

var deployMulticallCmd = &cobra.Command{
	Use:   "deployMulticall",
	Short: "Deploy the multicall contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipVerify, err := cmd.Flags().GetBool("skip-verify")
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.DeployMulticall(ctx, deploy.DeployMulticallOptions{SkipVerify: skipVerify, Force: force}); err != nil {
				return fmt.Errorf("failed to deploy multicall: %w", err)
			}
			return nil
		})
	},
}

var deployFaucetTokenCmd = &cobra.Command{
	Use:   "deployFaucetToken",
	Short: "Deploy a faucet ERC20 token",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := deployFaucetTokenOptions(cmd)
		if err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.DeployFaucetToken(ctx, opts); err != nil {
				return fmt.Errorf("failed to deploy faucet token: %w", err)
			}
			return nil
		})
	},
}

func deployFaucetTokenOptions(cmd *cobra.Command) (deploy.DeployFaucetTokenOptions, error) {
	var (
		opts deploy.DeployFaucetTokenOptions
		err  error
	)

	if opts.Name, err = cmd.Flags().GetString("name"); err != nil {
		return opts, err
	}
	if opts.Symbol, err = cmd.Flags().GetString("symbol"); err != nil {
		return opts, err
	}
	if opts.Decimals, err = cmd.Flags().GetUint8("decimals"); err != nil {
		return opts, err
	}
	if opts.FromTransferFeeRatio, err = cmd.Flags().GetUint64("from-transfer-fee-ratio"); err != nil {
		return opts, err
	}
	if opts.ToTransferFeeRatio, err = cmd.Flags().GetUint64("to-transfer-fee-ratio"); err != nil {
		return opts, err
	}
	if opts.Force, err = cmd.Flags().GetBool("force"); err != nil {
		return opts, err
	}

	return opts, nil
}

var upgradeZklinkCmd = &cobra.Command{
	Use:   "upgradeZklink",
	Short: "Start or finish a gatekeeper upgrade of the verifier and/or zkLink",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			opts deploy.UpgradeOptions
			err  error
		)
		if opts.UpgradeVerifier, err = cmd.Flags().GetBool("upgrade-verifier"); err != nil {
			return err
		}
		if opts.UpgradeZklink, err = cmd.Flags().GetBool("upgrade-zklink"); err != nil {
			return err
		}
		if opts.SkipVerify, err = cmd.Flags().GetBool("skip-verify"); err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			result, err := env.orchestrator.Upgrade(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to upgrade zklink: %w", err)
			}
			env.console.Success("Upgrade status %s -> %s", result.Initial, result.Final)
			return nil
		})
	},
}

func init() {
	declareZklinkCmd.Flags().Bool("force", false, "Redeclare classes already in the deployment log")

	flags := deployZklinkCmd.Flags()
	flags.String("governor", "", "Governor address (default: configured governor account)")
	flags.String("validator", "", "Validator address (default: deployer)")
	flags.String("fee-account", "", "Fee account address (default: deployer)")
	flags.Uint64("block-number", 0, "Genesis block number")
	flags.Uint64("timestamp", 0, "Genesis timestamp")
	flags.String("genesis-root", "", "Genesis root hash")
	flags.String("commitment", "", "Genesis commitment (default: 0)")
	flags.String("sync-hash", "", "Genesis sync hash (default: 0)")
	flags.Bool("skip-verify", false, "Do not check deployed class hashes")
	flags.Bool("force", false, "Rerun every step, for test networks only")
	_ = deployZklinkCmd.MarkFlagRequired("genesis-root")

	deployMulticallCmd.Flags().Bool("skip-verify", false, "Do not check the deployed class hash")
	deployMulticallCmd.Flags().Bool("force", false, "Redeploy even when already deployed")

	flags = deployFaucetTokenCmd.Flags()
	flags.String("name", "", "Token name")
	flags.String("symbol", "", "Token symbol")
	flags.Uint8("decimals", 18, "Token decimals")
	flags.Uint64("from-transfer-fee-ratio", 0, "Transfer fee ratio charged to the sender")
	flags.Uint64("to-transfer-fee-ratio", 0, "Transfer fee ratio charged to the recipient")
	flags.Bool("force", false, "Redeploy even when the symbol is already deployed")
	_ = deployFaucetTokenCmd.MarkFlagRequired("name")
	_ = deployFaucetTokenCmd.MarkFlagRequired("symbol")

	flags = upgradeZklinkCmd.Flags()
	flags.Bool("upgrade-verifier", false, "Upgrade the verifier")
	flags.Bool("upgrade-zklink", false, "Upgrade zkLink")
	flags.Bool("skip-verify", false, "Do not check upgraded class hashes")
}
