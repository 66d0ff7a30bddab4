package deploy

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

type (
	DeployMulticallOptions struct {
		SkipVerify bool
		Force      bool
	}

	DeployFaucetTokenOptions struct {
		Name                 string
		Symbol               string
		Decimals             uint8
		FromTransferFeeRatio uint64
		ToTransferFeeRatio   uint64
		Force                bool
	}

	MintFaucetTokenOptions struct {
		Token    *felt.Felt
		To       *felt.Felt
		Amount   *uint256.Int
		Decimals uint8
	}

	AddTokenOptions struct {
		// Zklink overrides the zklink address recorded in the deployment log.
		Zklink       *felt.Felt
		TokenID      uint16
		TokenAddress *felt.Felt
		Decimals     uint8
		Standard     bool
	}

	AddBridgeOptions struct {
		Zklink *felt.Felt
		Bridge *felt.Felt
	}
)

// DeployMulticall declares and deploys the multicall contract once per network.
func (o *Orchestrator) DeployMulticall(ctx context.Context, opts DeployMulticallOptions) (ledger.Record, error) {
	s, err := o.open(ledger.NameMulticall)
	if err != nil {
		return nil, err
	}

	classHash, err := o.declare(ctx, s, multicallComponent, false)
	if err != nil {
		return s.record, err
	}

	if s.record.Has(ledger.KeyMulticall) && !opts.Force {
		address, _ := s.record.String(ledger.KeyMulticall)
		o.console.Success("Multicall Contract already deployed at = %s", address)
	} else {
		deployment, finality, err := o.deploy(ctx, classHash, nil, nil)
		if err != nil {
			return s.record, fmt.Errorf("failed to deploy multicall: %w", err)
		}

		blockNumber, err := o.waitForBlock(ctx, deployment.TxHash, finality)
		if err != nil {
			return s.record, err
		}

		s.record.SetFelt(ledger.KeyMulticall, deployment.Address)
		s.record.SetFelt(ledger.KeyMulticallTxHash, deployment.TxHash)
		s.record.SetUint64(ledger.KeyMulticallBlockNumber, blockNumber)
		delete(s.record, ledger.KeyMulticallVerified)
		if err := s.save(); err != nil {
			return s.record, err
		}
		o.console.Success("Multicall Contract deployed at = %s in block %d", deployment.Address, blockNumber)
	}

	if opts.SkipVerify {
		return s.record, nil
	}

	address, err := s.mustFelt(ledger.KeyMulticall)
	if err != nil {
		return s.record, err
	}

	return s.record, o.verify(ctx, s, ledger.KeyMulticallVerified, address, classHash)
}

// DeployFaucetToken deploys a test ERC20 recorded under its symbol.
func (o *Orchestrator) DeployFaucetToken(ctx context.Context, opts DeployFaucetTokenOptions) (ledger.Record, error) {
	name, err := shortString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: token name: %w", ErrPrecondition, err)
	}
	symbol, err := shortString(opts.Symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: token symbol: %w", ErrPrecondition, err)
	}
	if opts.Symbol == "" {
		return nil, fmt.Errorf("%w: token symbol is required", ErrPrecondition)
	}

	s, err := o.open(ledger.NameFaucet)
	if err != nil {
		return nil, err
	}

	key := ledger.FaucetTokenKey(opts.Symbol)
	if s.record.Has(key) && !opts.Force {
		address, _ := s.record.String(key)
		o.console.Success("Faucet Token %s already deployed at = %s", opts.Symbol, address)
		return s.record, nil
	}

	classHash, err := o.classHash(ctx, s, faucetComponent)
	if err != nil {
		return s.record, err
	}

	args := []*felt.Felt{
		name,
		symbol,
		feltUint(uint64(opts.Decimals)),
		feltUint(opts.FromTransferFeeRatio),
		feltUint(opts.ToTransferFeeRatio),
	}

	deployment, _, err := o.deploy(ctx, classHash, args, nil)
	if err != nil {
		return s.record, fmt.Errorf("failed to deploy faucet token %s: %w", opts.Symbol, err)
	}

	s.record.SetFelt(key, deployment.Address)
	s.record.SetFelt(ledger.FaucetTokenTxHashKey(opts.Symbol), deployment.TxHash)
	if err := s.save(); err != nil {
		return s.record, err
	}
	o.console.Success("Faucet Token %s deployed at = %s", opts.Symbol, deployment.Address)

	return s.record, nil
}

// MintFaucetToken mints amount whole tokens to the recipient.
func (o *Orchestrator) MintFaucetToken(ctx context.Context, opts MintFaucetTokenOptions) (*felt.Felt, error) {
	if opts.Token == nil || opts.To == nil || opts.Amount == nil {
		return nil, fmt.Errorf("%w: token, recipient and amount are required", ErrPrecondition)
	}

	amount, err := scaleAmount(opts.Amount, opts.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	calldata := append([]*felt.Felt{opts.To}, u256(amount)...)

	txHash, err := o.submit(ctx, chain.SignerDeployer, chain.Call{
		Address:    opts.Token,
		EntryPoint: "mintTo",
		Calldata:   calldata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint %s: %w", opts.Token, err)
	}
	o.console.Success("Minted %s to %s, tx: %s", amount.Dec(), opts.To, txHash)

	return txHash, nil
}

// AddToken registers a token on zklink.
func (o *Orchestrator) AddToken(ctx context.Context, opts AddTokenOptions) (*felt.Felt, error) {
	if opts.TokenAddress == nil {
		return nil, fmt.Errorf("%w: token address is required", ErrPrecondition)
	}

	zklink, err := o.zklinkAddress(opts.Zklink)
	if err != nil {
		return nil, err
	}

	txHash, err := o.submit(ctx, chain.SignerGovernor, chain.Call{
		Address:    zklink,
		EntryPoint: "addToken",
		Calldata: []*felt.Felt{
			feltUint(uint64(opts.TokenID)),
			opts.TokenAddress,
			feltUint(uint64(opts.Decimals)),
			feltBool(opts.Standard),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add token %d: %w", opts.TokenID, err)
	}
	o.console.Success("zklink add new ERC20 token success, tx: %s", txHash)

	return txHash, nil
}

// AddBridge allows a bridge contract on zklink.
func (o *Orchestrator) AddBridge(ctx context.Context, opts AddBridgeOptions) (*felt.Felt, error) {
	if opts.Bridge == nil {
		return nil, fmt.Errorf("%w: bridge address is required", ErrPrecondition)
	}

	zklink, err := o.zklinkAddress(opts.Zklink)
	if err != nil {
		return nil, err
	}

	txHash, err := o.submit(ctx, chain.SignerGovernor, chain.Call{
		Address:    zklink,
		EntryPoint: "addBridge",
		Calldata:   []*felt.Felt{opts.Bridge},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add bridge %s: %w", opts.Bridge, err)
	}
	o.console.Success("zklink add bridge success, tx: %s", txHash)

	return txHash, nil
}

// zklinkAddress returns override or the zklink address from the deployment log.
func (o *Orchestrator) zklinkAddress(override *felt.Felt) (*felt.Felt, error) {
	if override != nil {
		return override, nil
	}

	s, err := o.open(ledger.NameZklink)
	if err != nil {
		return nil, err
	}

	return s.mustFelt(ledger.KeyZklink)
}

// submit invokes call and waits for it without recording anything.
func (o *Orchestrator) submit(ctx context.Context, signer chain.Signer, call chain.Call) (*felt.Felt, error) {
	txHash, err := o.gateway.Invoke(ctx, signer, call)
	if err != nil {
		return nil, err
	}

	if _, err := o.gateway.WaitForFinality(ctx, txHash); err != nil {
		return nil, err
	}

	o.logger.With("entry_point", call.EntryPoint, "tx_hash", txHash.String(), "signer", string(signer)).Info("call accepted")

	return txHash, nil
}
