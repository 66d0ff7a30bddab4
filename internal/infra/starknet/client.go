package starknet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

type (
	Config struct {
		URL        string
		DeployURL  string
		DeclareURL string
		UDCAddress string
		Deployer   AccountConfig
		Governor   AccountConfig

		PollInterval    time.Duration
		MaxPollInterval time.Duration
	}

	declarer interface {
		Declare(ctx context.Context, class artifact.ContractClass) (chain.Declaration, error)
	}

	invoker interface {
		Invoke(ctx context.Context, call chain.Call) (*felt.Felt, error)
	}

	// Client is the chain.Gateway implementation for Starknet JSON-RPC nodes.
	Client struct {
		reader   *Reader
		declarer declarer
		deployer invoker
		signers  map[chain.Signer]invoker
		udc      *felt.Felt
		closer   func()
		logger   *slog.Logger
	}
)

var _ chain.Gateway = (*Client)(nil)

// Dial connects the reader and both signing accounts.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial '%s': %w", cfg.URL, err)
	}

	udc, err := new(felt.Felt).SetString(orDefault(cfg.UDCAddress, DefaultUDCAddress))
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("invalid universal deployer address: %w", err)
	}

	declareAccount, err := NewAccount(orDefault(cfg.DeclareURL, cfg.URL), cfg.Deployer)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to connect declare account: %w", err)
	}

	deployAccount, err := NewAccount(orDefault(cfg.DeployURL, cfg.URL), cfg.Deployer)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to connect deployer account: %w", err)
	}

	governorAccount, err := NewAccount(cfg.URL, cfg.Governor)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to connect governor account: %w", err)
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &Client{
		reader:   NewReader(rpcClient, pollInterval, cfg.MaxPollInterval),
		declarer: declareAccount,
		deployer: deployAccount,
		signers: map[chain.Signer]invoker{
			chain.SignerDeployer: deployAccount,
			chain.SignerGovernor: governorAccount,
		},
		udc:    udc,
		closer: rpcClient.Close,
		logger: logger.Named("starknet_client"),
	}, nil
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) DeclareClass(ctx context.Context, class artifact.ContractClass) (chain.Declaration, error) {
	c.logger.With("contract", class.Name).Info("declaring class")

	declaration, err := c.declarer.Declare(ctx, class)
	if err != nil {
		return chain.Declaration{}, fmt.Errorf("failed to declare '%s': %w", class.Name, err)
	}

	return declaration, nil
}

func (c *Client) DeployContract(ctx context.Context, classHash *felt.Felt, constructorArgs []*felt.Felt, salt *felt.Felt) (chain.Deployment, error) {
	if salt == nil {
		random, err := new(felt.Felt).SetRandom()
		if err != nil {
			return chain.Deployment{}, fmt.Errorf("failed to generate salt: %w", err)
		}
		salt = random
	}

	address := ContractAddress(&felt.Zero, classHash, salt, constructorArgs)
	c.logger.With("class_hash", classHash.String(), "salt", salt.String(), "address", address.String()).Info("deploying contract")

	txHash, err := c.deployer.Invoke(ctx, chain.Call{
		Address:    c.udc,
		EntryPoint: udcEntryPoint,
		Calldata:   udcCalldata(classHash, salt, constructorArgs),
	})
	if err != nil {
		return chain.Deployment{}, fmt.Errorf("failed to deploy class %s: %w", classHash, err)
	}

	return chain.Deployment{Address: address, TxHash: txHash}, nil
}

func (c *Client) Invoke(ctx context.Context, signer chain.Signer, call chain.Call) (*felt.Felt, error) {
	account, ok := c.signers[signer]
	if !ok {
		return nil, fmt.Errorf("no account configured for signer '%s'", signer)
	}

	c.logger.With("signer", signer, "contract", call.Address.String(), "entry_point", call.EntryPoint).Info("invoking")

	txHash, err := account.Invoke(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke '%s' on %s: %w", call.EntryPoint, call.Address, err)
	}

	return txHash, nil
}

func (c *Client) WaitForFinality(ctx context.Context, txHash *felt.Felt) (chain.Finality, error) {
	return c.reader.WaitForFinality(ctx, txHash)
}

func (c *Client) Read(ctx context.Context, call chain.Call) ([]*felt.Felt, error) {
	return c.reader.Read(ctx, call)
}

func (c *Client) ClassHashAt(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	return c.reader.ClassHashAt(ctx, address)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
