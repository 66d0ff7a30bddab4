package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zklink-protocol/starknet-deployer/internal/deploy"
)

var addTokenCmd = &cobra.Command{
	Use:   "addToken",
	Short: "Register a token on zkLink as governor",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			opts deploy.AddTokenOptions
			err  error
		)
		if opts.Zklink, err = feltFlag(cmd, "zklink"); err != nil {
			return err
		}
		if opts.TokenID, err = cmd.Flags().GetUint16("token-id"); err != nil {
			return err
		}
		if opts.TokenAddress, err = feltFlag(cmd, "token-address"); err != nil {
			return err
		}
		if opts.Decimals, err = cmd.Flags().GetUint8("token-decimals"); err != nil {
			return err
		}
		if opts.Standard, err = cmd.Flags().GetBool("standard"); err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.AddToken(ctx, opts); err != nil {
				return fmt.Errorf("failed to add token: %w", err)
			}
			return nil
		})
	},
}

var addBridgeCmd = &cobra.Command{
	Use:   "addBridge",
	Short: "Allow a bridge on zkLink as governor",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			opts deploy.AddBridgeOptions
			err  error
		)
		if opts.Zklink, err = feltFlag(cmd, "zklink"); err != nil {
			return err
		}
		if opts.Bridge, err = feltFlag(cmd, "bridge"); err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.AddBridge(ctx, opts); err != nil {
				return fmt.Errorf("failed to add bridge: %w", err)
			}
			return nil
		})
	},
}

var mintFaucetTokenCmd = &cobra.Command{
	Use:   "mintFaucetToken",
	Short: "Mint faucet tokens to an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			opts deploy.MintFaucetTokenOptions
			err  error
		)
		if opts.Token, err = feltFlag(cmd, "token"); err != nil {
			return err
		}
		if opts.To, err = feltFlag(cmd, "to"); err != nil {
			return err
		}
		if opts.Amount, err = u256Flag(cmd, "amount"); err != nil {
			return err
		}
		if opts.Decimals, err = cmd.Flags().GetUint8("decimals"); err != nil {
			return err
		}

		return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
			if _, err := env.orchestrator.MintFaucetToken(ctx, opts); err != nil {
				return fmt.Errorf("failed to mint faucet token: %w", err)
			}
			return nil
		})
	},
}

func init() {
	flags := addTokenCmd.Flags()
	flags.String("zklink", "", "zkLink address (default: from the deployment log)")
	flags.Uint16("token-id", 0, "Token id")
	flags.String("token-address", "", "Token address")
	flags.Uint8("token-decimals", 18, "Token decimals")
	flags.Bool("standard", true, "Token follows the standard ERC20 transfer semantics")
	_ = addTokenCmd.MarkFlagRequired("token-id")
	_ = addTokenCmd.MarkFlagRequired("token-address")

	addBridgeCmd.Flags().String("zklink", "", "zkLink address (default: from the deployment log)")
	addBridgeCmd.Flags().String("bridge", "", "Bridge address")
	_ = addBridgeCmd.MarkFlagRequired("bridge")

	flags = mintFaucetTokenCmd.Flags()
	flags.String("token", "", "Faucet token address")
	flags.String("to", "", "Recipient address")
	flags.String("amount", "", "Amount in whole tokens")
	flags.Uint8("decimals", 18, "Token decimals")
	for _, name := range []string{"token", "to", "amount", "decimals"} {
		_ = mintFaucetTokenCmd.MarkFlagRequired(name)
	}
}
