package starknet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/url"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/contracts"
	"github.com/NethermindEth/starknet.go/curve"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
)

// Fee estimates are scaled by this factor before signing.
const feeMultiplier = 1.5

type (
	AccountConfig struct {
		Address      string
		PrivateKey   string
		CairoVersion int
	}

	// Account signs and submits transactions for one configured identity.
	Account struct {
		address *felt.Felt
		account *account.Account
	}
)

// NewAccount connects a signing account to the node at nodeURL.
func NewAccount(nodeURL string, cfg AccountConfig) (*Account, error) {
	address, err := new(felt.Felt).SetString(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid account address '%s': %w", cfg.Address, err)
	}

	privateKey, ok := new(big.Int).SetString(cfg.PrivateKey, 0)
	if !ok {
		return nil, errors.New("invalid account private key")
	}

	publicX, _, err := curve.Curve.PrivateToPoint(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}
	publicKey := "0x" + publicX.Text(16)

	provider, err := snrpc.NewProvider(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to '%s': %w", nodeURL, classifyTransport(err))
	}

	keystore := account.SetNewMemKeystore(publicKey, privateKey)
	acc, err := account.NewAccount(provider, address, publicKey, keystore, cfg.CairoVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", cfg.Address, err)
	}

	return &Account{address: address, account: acc}, nil
}

func (a *Account) Address() *felt.Felt {
	return a.address
}

// Declare submits a declare transaction for class.
func (a *Account) Declare(ctx context.Context, class artifact.ContractClass) (chain.Declaration, error) {
	var sierra contracts.ContractClass
	if err := json.Unmarshal(class.Sierra, &sierra); err != nil {
		return chain.Declaration{}, fmt.Errorf("failed to decode sierra class of '%s': %w", class.Name, err)
	}

	var casm contracts.CasmClass
	if err := json.Unmarshal(class.Casm, &casm); err != nil {
		return chain.Declaration{}, fmt.Errorf("failed to decode casm class of '%s': %w", class.Name, err)
	}

	resp, err := a.account.BuildAndSendDeclareTxn(ctx, &casm, &sierra, feeMultiplier)
	if err != nil {
		return chain.Declaration{}, classifyTransport(err)
	}

	return chain.Declaration{ClassHash: resp.ClassHash, TxHash: resp.TransactionHash}, nil
}

// Invoke submits a single call.
func (a *Account) Invoke(ctx context.Context, call chain.Call) (*felt.Felt, error) {
	resp, err := a.account.BuildAndSendInvokeTxn(ctx, []snrpc.InvokeFunctionCall{{
		ContractAddress: call.Address,
		FunctionName:    call.EntryPoint,
		CallData:        call.Calldata,
	}}, feeMultiplier)
	if err != nil {
		return nil, classifyTransport(err)
	}

	return resp.TransactionHash, nil
}

func classifyTransport(err error) error {
	var (
		netErr net.Error
		urlErr *url.Error
	)
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %w", chain.ErrTransient, err)
	}

	return err
}
