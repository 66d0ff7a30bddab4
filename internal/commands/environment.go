package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/afero"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/deploy"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/filesystem/json"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/starknet"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

// fsys backs the deployment logs, artifacts and contract sources. Tests swap it
// for an in-memory filesystem.
var fsys afero.Fs = afero.NewOsFs()

// environment holds everything a chain-facing command needs.
type environment struct {
	orchestrator *deploy.Orchestrator
	console      *logger.Console
	close        func()
}

func newStore(cfg configs.Runtime) *ledger.FileStore {
	return ledger.NewFileStore(cfg.LogDir, cfg.Net, json.NewReader(fsys), json.NewWriter(fsys))
}

// cairoVersion maps the configured account version onto the transaction
// format starknet.go signs for: legacy accounts use 0, every Cairo 1 account 2.
func cairoVersion(configured int) int {
	if configured == 0 {
		return 0
	}
	return 2
}

func accountConfig(account configs.Account) starknet.AccountConfig {
	return starknet.AccountConfig{
		Address:      account.Address,
		PrivateKey:   account.PrivateKey,
		CairoVersion: cairoVersion(account.CairoVersion),
	}
}

func identities(accounts configs.Accounts) (deploy.Identities, error) {
	deployer, err := new(felt.Felt).SetString(accounts.Deployer.Address)
	if err != nil {
		return deploy.Identities{}, fmt.Errorf("invalid deployer address: %w", err)
	}
	governor, err := new(felt.Felt).SetString(accounts.Governor.Address)
	if err != nil {
		return deploy.Identities{}, fmt.Errorf("invalid governor address: %w", err)
	}

	return deploy.Identities{Deployer: deployer, Governor: governor}, nil
}

func newEnvironment(ctx context.Context, cfg configs.Config, out io.Writer) (*environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.With("net", cfg.Runtime.Net, "network", cfg.Network.Name, "url", cfg.Network.URL).Info("connecting to network")

	classifier, err := chain.NewClassifier(chain.Dialect(cfg.Network.DeclareErrorDialect))
	if err != nil {
		return nil, err
	}

	ids, err := identities(cfg.Network.Accounts)
	if err != nil {
		return nil, err
	}

	client, err := starknet.Dial(ctx, starknet.Config{
		URL:        cfg.Network.URL,
		DeployURL:  cfg.Network.DeployURL,
		DeclareURL: cfg.Network.DeclareURL,
		UDCAddress: cfg.Network.UDCAddress,
		Deployer:   accountConfig(cfg.Network.Accounts.Deployer),
		Governor:   accountConfig(cfg.Network.Accounts.Governor),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Network.Name, err)
	}

	console := logger.NewConsole(out)
	resolver := artifact.NewResolver(cfg.Runtime.ArtifactsManifest, json.NewReader(fsys))

	console.Info("deployer: %s", ids.Deployer)
	console.Info("governor: %s", ids.Governor)

	return &environment{
		orchestrator: deploy.NewOrchestrator(
			client,
			resolver,
			newStore(cfg.Runtime),
			classifier,
			ids,
			console,
			deploy.WithPendingRetryInterval(cfg.Runtime.PendingRetryInterval),
		),
		console: console,
		close:   client.Close,
	}, nil
}
