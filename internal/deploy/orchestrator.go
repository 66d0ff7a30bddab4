package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

// DefaultPendingRetryInterval is how long to wait before asking again for the
// block of a transaction that is accepted but not yet in a block.
const DefaultPendingRetryInterval = time.Minute

type (
	resolver interface {
		Resolve(name artifact.ContractName) (artifact.ContractClass, error)
	}

	// Identities are the configured account addresses.
	Identities struct {
		Deployer *felt.Felt
		Governor *felt.Felt
	}

	/*
		Orchestrator drives declare, deploy, wire and upgrade steps against a
		network. Every step is guarded by a deployment log key:
		  - a present key means the step already succeeded and is skipped
		  - the key is written right after the chain confirms the step
		so a rerun after any failure resumes at the first unfinished step.
	*/
	Orchestrator struct {
		gateway              chain.Gateway
		artifacts            resolver
		store                ledger.Store
		classifier           chain.FailureClassifier
		identities           Identities
		console              *logger.Console
		pendingRetryInterval time.Duration
		logger               *slog.Logger
	}

	Option func(*Orchestrator)
)

func WithPendingRetryInterval(interval time.Duration) Option {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.pendingRetryInterval = interval
		}
	}
}

func NewOrchestrator(
	gateway chain.Gateway,
	artifacts resolver,
	store ledger.Store,
	classifier chain.FailureClassifier,
	identities Identities,
	console *logger.Console,
	opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:              gateway,
		artifacts:            artifacts,
		store:                store,
		classifier:           classifier,
		identities:           identities,
		console:              console,
		pendingRetryInterval: DefaultPendingRetryInterval,
		logger:               logger.Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// deploy instantiates classHash and waits until the deployment is accepted.
func (o *Orchestrator) deploy(ctx context.Context, classHash *felt.Felt, args []*felt.Felt, salt *felt.Felt) (chain.Deployment, chain.Finality, error) {
	deployment, err := o.gateway.DeployContract(ctx, classHash, args, salt)
	if err != nil {
		return chain.Deployment{}, chain.Finality{}, err
	}

	finality, err := o.gateway.WaitForFinality(ctx, deployment.TxHash)
	if err != nil {
		return chain.Deployment{}, chain.Finality{}, err
	}

	return deployment, finality, nil
}

// waitForBlock waits until txHash is part of a block, asking again every
// pendingRetryInterval while it is only pending. There is no attempt limit;
// cancelling ctx is the only way out.
func (o *Orchestrator) waitForBlock(ctx context.Context, txHash *felt.Felt, finality chain.Finality) (uint64, error) {
	for finality.Pending {
		o.logger.With("tx_hash", txHash.String(), "retry_in", o.pendingRetryInterval).Info("transaction pending, waiting for block number")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(o.pendingRetryInterval):
		}

		var err error
		finality, err = o.gateway.WaitForFinality(ctx, txHash)
		if err != nil {
			return 0, err
		}
	}

	return finality.BlockNumber, nil
}

// invoke submits call, waits for it and records its transaction hash under key.
func (o *Orchestrator) invoke(ctx context.Context, s *session, key string, signer chain.Signer, call chain.Call) error {
	txHash, err := o.submit(ctx, signer, call)
	if err != nil {
		return err
	}

	return s.putFelt(key, txHash)
}

// verify checks that address runs classHash and marks key in the log.
func (o *Orchestrator) verify(ctx context.Context, s *session, key string, address, classHash *felt.Felt) error {
	if s.record.Has(key) {
		return nil
	}

	deployed, err := o.gateway.ClassHashAt(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", address, err)
	}

	if !deployed.Equal(classHash) {
		return fmt.Errorf("%w: %s runs class %s, expected %s", ErrVerificationFailed, address, deployed, classHash)
	}

	s.record.SetBool(key, true)
	return s.save()
}
