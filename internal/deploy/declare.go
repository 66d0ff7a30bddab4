package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

// component is a declarable contract and where its class hash is recorded.
type component struct {
	label        string
	contract     artifact.ContractName
	classHashKey string
}

var (
	gatekeeperComponent = component{"Gatekeeper", artifact.ContractGatekeeper, ledger.KeyGatekeeperClassHash}
	verifierComponent   = component{"Verifier", artifact.ContractVerifier, ledger.KeyVerifierClassHash}
	zklinkComponent     = component{"zkLink", artifact.ContractZklink, ledger.KeyZklinkClassHash}
	multicallComponent  = component{"Multicall", artifact.ContractMulticall, ledger.KeyMulticallClassHash}
	faucetComponent     = component{"Faucet Token", artifact.ContractFaucet, ledger.KeyFaucetTokenClassHash}
)

// DeclareOptions selects which zklink classes to declare. Upgrade re-declares
// even when a class hash is already recorded.
type DeclareOptions struct {
	Gatekeeper bool
	Verifier   bool
	Zklink     bool
	Upgrade    bool
}

// AllClasses declares gatekeeper, verifier and zklink.
func AllClasses(upgrade bool) DeclareOptions {
	return DeclareOptions{Gatekeeper: true, Verifier: true, Zklink: true, Upgrade: upgrade}
}

// Declare declares the selected zklink classes in the order gatekeeper,
// verifier, zklink.
func (o *Orchestrator) Declare(ctx context.Context, opts DeclareOptions) (ledger.Record, error) {
	s, err := o.open(ledger.NameZklink)
	if err != nil {
		return nil, err
	}

	if err := o.declareZklink(ctx, s, opts); err != nil {
		return s.record, err
	}

	return s.record, nil
}

func (o *Orchestrator) declareZklink(ctx context.Context, s *session, opts DeclareOptions) error {
	selected := []struct {
		enabled bool
		c       component
	}{
		{opts.Gatekeeper, gatekeeperComponent},
		{opts.Verifier, verifierComponent},
		{opts.Zklink, zklinkComponent},
	}

	for _, item := range selected {
		if !item.enabled {
			continue
		}
		if _, err := o.declare(ctx, s, item.c, opts.Upgrade); err != nil {
			return err
		}
	}

	return nil
}

// declare makes sure c is declared and its class hash recorded. A rejected
// redeclaration is treated as success when the existing hash can be recovered
// from the failure text.
func (o *Orchestrator) declare(ctx context.Context, s *session, c component, force bool) (*felt.Felt, error) {
	log := o.logger.With("contract", c.contract, "force", force)

	if !force {
		hash, ok, err := s.felt(c.classHashKey)
		if err != nil {
			return nil, err
		}
		if ok {
			o.console.Success("%s Contract already declared with classHash = %s", c.label, hash)
			return hash, nil
		}
	}

	class, err := o.artifacts.Resolve(c.contract)
	if err != nil {
		return nil, err
	}

	var hash *felt.Felt

	declaration, err := o.gateway.DeclareClass(ctx, class)
	if err != nil {
		existing, declared := o.classifier.AlreadyDeclared(err.Error())
		if !declared {
			o.console.Failure("Cannot declare %s contract: %v", c.label, err)
			return nil, fmt.Errorf("failed to declare %s: %w", c.contract, err)
		}
		if existing == nil {
			o.console.Failure("Cannot recover %s contract class hash: %v", c.label, err)
			return nil, fmt.Errorf("%w: %s: %w", ErrClassHashUnrecoverable, c.contract, err)
		}

		hash = existing
		log.With("class_hash", hash.String()).Info("class already declared")
		o.console.Success("%s Contract already declared with classHash = %s", c.label, hash)
	} else {
		if _, err := o.gateway.WaitForFinality(ctx, declaration.TxHash); err != nil {
			return nil, fmt.Errorf("failed waiting for %s declaration: %w", c.contract, err)
		}

		hash = declaration.ClassHash
		log.With("class_hash", hash.String(), "tx_hash", declaration.TxHash.String()).Info("class declared")
		o.console.Success("%s Contract declared with classHash = %s", c.label, hash)
	}

	if err := s.putFelt(c.classHashKey, hash); err != nil {
		return nil, err
	}

	return hash, nil
}

// classHash returns the recorded class hash of c, declaring it first if needed.
func (o *Orchestrator) classHash(ctx context.Context, s *session, c component) (*felt.Felt, error) {
	hash, err := s.mustFelt(c.classHashKey)
	if err == nil {
		return hash, nil
	}
	if !errors.Is(err, ErrPrecondition) {
		return nil, err
	}

	return o.declare(ctx, s, c, false)
}
