package chain

//go:generate mockgen -destination=./mocks/mock_gateway.go -package=mocks github.com/zklink-protocol/starknet-deployer/internal/chain Gateway

import (
	"context"
	"errors"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
)

var (
	// ErrTransient marks connectivity failures that are safe to retry.
	ErrTransient = errors.New("transient network error")
	// ErrReverted marks a transaction that was included but failed execution.
	ErrReverted = errors.New("transaction reverted")
)

// Signer selects which configured account signs a submission.
type Signer string

const (
	SignerDeployer Signer = "deployer"
	SignerGovernor Signer = "governor"
)

type (
	Declaration struct {
		ClassHash *felt.Felt
		TxHash    *felt.Felt
	}

	Deployment struct {
		Address *felt.Felt
		TxHash  *felt.Felt
	}

	Call struct {
		Address    *felt.Felt
		EntryPoint string
		Calldata   []*felt.Felt
	}

	// Finality is the outcome of waiting for a transaction. Pending is set when
	// the transaction was accepted but is not yet part of a block.
	Finality struct {
		BlockNumber uint64
		Pending     bool
	}

	// Gateway is the orchestrator's view of a Starknet network.
	Gateway interface {
		// DeclareClass submits a class declaration signed by the deployer. The
		// raw failure is returned so callers can detect redeclarations.
		DeclareClass(ctx context.Context, class artifact.ContractClass) (Declaration, error)
		// DeployContract instantiates classHash through the universal deployer.
		// A nil salt picks a random one.
		DeployContract(ctx context.Context, classHash *felt.Felt, constructorArgs []*felt.Felt, salt *felt.Felt) (Deployment, error)
		Invoke(ctx context.Context, signer Signer, call Call) (*felt.Felt, error)
		WaitForFinality(ctx context.Context, txHash *felt.Felt) (Finality, error)
		Read(ctx context.Context, call Call) ([]*felt.Felt, error)
		ClassHashAt(ctx context.Context, address *felt.Felt) (*felt.Felt, error)
	}
)
