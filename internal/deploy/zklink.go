package deploy

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

// DeployZklinkOptions configures the zklink deployment. Nil identities fall
// back to the configured governor (Governor) or deployer (Validator, FeeAccount).
type DeployZklinkOptions struct {
	Governor   *felt.Felt
	Validator  *felt.Felt
	FeeAccount *felt.Felt

	BlockNumber uint64
	Timestamp   uint64
	GenesisRoot *uint256.Int
	Commitment  *uint256.Int
	SyncHash    *uint256.Int

	SkipVerify bool
	// Force re-runs every step even when it is already recorded.
	Force bool
}

type zklinkStep struct {
	key string
	run func(ctx context.Context) error
}

// DeployZklink declares the zklink classes, deploys verifier, zklink and
// gatekeeper and hands control of the first two to the gatekeeper and of the
// gatekeeper to the governor.
func (o *Orchestrator) DeployZklink(ctx context.Context, opts DeployZklinkOptions) (ledger.Record, error) {
	if opts.GenesisRoot == nil {
		return nil, fmt.Errorf("%w: genesis root is required", ErrPrecondition)
	}
	if o.identities.Deployer == nil {
		return nil, fmt.Errorf("%w: deployer account is not configured", ErrPrecondition)
	}
	if opts.Governor == nil {
		opts.Governor = o.identities.Governor
	}
	if opts.Governor == nil {
		return nil, fmt.Errorf("%w: governor is neither configured nor given", ErrPrecondition)
	}
	if opts.Validator == nil {
		opts.Validator = o.identities.Deployer
	}
	if opts.FeeAccount == nil {
		opts.FeeAccount = o.identities.Deployer
	}
	if opts.Commitment == nil {
		opts.Commitment = new(uint256.Int)
	}
	if opts.SyncHash == nil {
		opts.SyncHash = new(uint256.Int)
	}

	s, err := o.open(ledger.NameZklink)
	if err != nil {
		return nil, err
	}

	if err := o.recordIdentities(s, opts); err != nil {
		return s.record, err
	}

	if err := o.declareZklink(ctx, s, AllClasses(opts.Force)); err != nil {
		return s.record, err
	}

	steps := []zklinkStep{
		{ledger.KeyVerifier, func(ctx context.Context) error { return o.deployVerifier(ctx, s) }},
		{ledger.KeyZklink, func(ctx context.Context) error { return o.deployZklinkContract(ctx, s, opts) }},
		{ledger.KeyGatekeeper, func(ctx context.Context) error { return o.deployGatekeeper(ctx, s) }},
		{ledger.KeyVerifierTransferMasterTxHash, func(ctx context.Context) error {
			return o.transferMastership(ctx, s, ledger.KeyVerifierTransferMasterTxHash, ledger.KeyVerifier, ledger.KeyGatekeeper)
		}},
		{ledger.KeyVerifierAddUpgradeableTxHash, func(ctx context.Context) error {
			return o.addUpgradeable(ctx, s, ledger.KeyVerifierAddUpgradeableTxHash, ledger.KeyVerifier)
		}},
		{ledger.KeyZklinkTransferMasterTxHash, func(ctx context.Context) error {
			return o.transferMastership(ctx, s, ledger.KeyZklinkTransferMasterTxHash, ledger.KeyZklink, ledger.KeyGatekeeper)
		}},
		{ledger.KeyZklinkAddUpgradeableTxHash, func(ctx context.Context) error {
			return o.addUpgradeable(ctx, s, ledger.KeyZklinkAddUpgradeableTxHash, ledger.KeyZklink)
		}},
		{ledger.KeyGatekeeperTransferMasterTxHash, func(ctx context.Context) error {
			return o.transferGatekeeperMastership(ctx, s, opts.Governor)
		}},
		{ledger.KeyZklinkSetValidatorTxHash, func(ctx context.Context) error {
			return o.setValidator(ctx, s, opts.Validator)
		}},
	}

	for _, step := range steps {
		if s.record.Has(step.key) && !opts.Force {
			value, _ := s.record.String(step.key)
			o.logger.With("key", step.key, "value", value).Debug("step already done, skipping")
			continue
		}

		if err := step.run(ctx); err != nil {
			o.console.Failure("Step '%s' failed: %v", step.key, err)
			return s.record, fmt.Errorf("step '%s' failed: %w", step.key, err)
		}
	}

	if !opts.SkipVerify {
		if err := o.verifyZklink(ctx, s); err != nil {
			return s.record, err
		}
	}

	o.console.Success("zkLink deployment complete, log saved to %s deployment log", s.name)

	return s.record, nil
}

// recordIdentities writes the accounts this deployment runs with. Once zklink
// is deployed its governor is fixed; a different one requires Force.
func (o *Orchestrator) recordIdentities(s *session, opts DeployZklinkOptions) error {
	if s.record.Has(ledger.KeyZklink) && !opts.Force {
		recorded, ok, err := s.felt(ledger.KeyGovernor)
		if err != nil {
			return err
		}
		if ok && !recorded.Equal(opts.Governor) {
			return fmt.Errorf("%w: zklink was deployed with governor %s, got %s", ErrPrecondition, recorded, opts.Governor)
		}
	}

	identities := map[string]*felt.Felt{
		ledger.KeyDeployer:   o.identities.Deployer,
		ledger.KeyGovernor:   opts.Governor,
		ledger.KeyValidator:  opts.Validator,
		ledger.KeyFeeAccount: opts.FeeAccount,
	}

	changed := false
	for key, value := range identities {
		recorded, ok, err := s.felt(key)
		if err != nil {
			return err
		}
		if ok && recorded.Equal(value) {
			continue
		}
		s.record.SetFelt(key, value)
		changed = true
	}

	if !changed {
		return nil
	}

	return s.save()
}

func (o *Orchestrator) deployVerifier(ctx context.Context, s *session) error {
	classHash, err := s.mustFelt(ledger.KeyVerifierClassHash)
	if err != nil {
		return err
	}

	deployment, _, err := o.deploy(ctx, classHash, []*felt.Felt{o.identities.Deployer}, nil)
	if err != nil {
		return err
	}

	delete(s.record, ledger.KeyVerifierVerified)
	if err := s.putFelt(ledger.KeyVerifier, deployment.Address); err != nil {
		return err
	}
	o.console.Success("Verifier Contract deployed at = %s", deployment.Address)

	return nil
}

func (o *Orchestrator) deployZklinkContract(ctx context.Context, s *session, opts DeployZklinkOptions) error {
	classHash, err := s.mustFelt(ledger.KeyZklinkClassHash)
	if err != nil {
		return err
	}
	verifier, err := s.mustFelt(ledger.KeyVerifier)
	if err != nil {
		return err
	}

	args := []*felt.Felt{
		o.identities.Deployer,
		verifier,
		opts.Governor,
		feltUint(opts.BlockNumber),
		feltUint(opts.Timestamp),
	}
	args = append(args, u256(opts.GenesisRoot)...)
	args = append(args, u256(opts.Commitment)...)
	args = append(args, u256(opts.SyncHash)...)

	deployment, finality, err := o.deploy(ctx, classHash, args, nil)
	if err != nil {
		return err
	}

	blockNumber, err := o.waitForBlock(ctx, deployment.TxHash, finality)
	if err != nil {
		return err
	}

	s.record.SetFelt(ledger.KeyZklink, deployment.Address)
	s.record.SetFelt(ledger.KeyZklinkTxHash, deployment.TxHash)
	s.record.SetUint64(ledger.KeyZklinkBlockNumber, blockNumber)
	delete(s.record, ledger.KeyZklinkVerified)
	if err := s.save(); err != nil {
		return err
	}
	o.console.Success("zkLink Contract deployed at = %s in block %d", deployment.Address, blockNumber)

	return nil
}

func (o *Orchestrator) deployGatekeeper(ctx context.Context, s *session) error {
	classHash, err := s.mustFelt(ledger.KeyGatekeeperClassHash)
	if err != nil {
		return err
	}
	zklink, err := s.mustFelt(ledger.KeyZklink)
	if err != nil {
		return err
	}

	deployment, _, err := o.deploy(ctx, classHash, []*felt.Felt{o.identities.Deployer, zklink}, new(felt.Felt))
	if err != nil {
		return err
	}

	delete(s.record, ledger.KeyGatekeeperVerified)
	if err := s.putFelt(ledger.KeyGatekeeper, deployment.Address); err != nil {
		return err
	}
	o.console.Success("Gatekeeper Contract deployed at = %s", deployment.Address)

	return nil
}

func (o *Orchestrator) transferMastership(ctx context.Context, s *session, key, contractKey, newMasterKey string) error {
	contract, err := s.mustFelt(contractKey)
	if err != nil {
		return err
	}
	newMaster, err := s.mustFelt(newMasterKey)
	if err != nil {
		return err
	}

	if err := o.invoke(ctx, s, key, chain.SignerDeployer, chain.Call{
		Address:    contract,
		EntryPoint: "transferMastership",
		Calldata:   []*felt.Felt{newMaster},
	}); err != nil {
		return err
	}
	o.console.Success("%s transferMastership to %s", contractKey, newMaster)

	return nil
}

func (o *Orchestrator) addUpgradeable(ctx context.Context, s *session, key, contractKey string) error {
	gatekeeper, err := s.mustFelt(ledger.KeyGatekeeper)
	if err != nil {
		return err
	}
	contract, err := s.mustFelt(contractKey)
	if err != nil {
		return err
	}

	if err := o.invoke(ctx, s, key, chain.SignerDeployer, chain.Call{
		Address:    gatekeeper,
		EntryPoint: "addUpgradeable",
		Calldata:   []*felt.Felt{contract},
	}); err != nil {
		return err
	}
	o.console.Success("Gatekeeper addUpgradeable %s", contractKey)

	return nil
}

func (o *Orchestrator) transferGatekeeperMastership(ctx context.Context, s *session, governor *felt.Felt) error {
	gatekeeper, err := s.mustFelt(ledger.KeyGatekeeper)
	if err != nil {
		return err
	}

	if err := o.invoke(ctx, s, ledger.KeyGatekeeperTransferMasterTxHash, chain.SignerDeployer, chain.Call{
		Address:    gatekeeper,
		EntryPoint: "transferMastership",
		Calldata:   []*felt.Felt{governor},
	}); err != nil {
		return err
	}
	o.console.Success("Gatekeeper transferMastership to governor %s", governor)

	return nil
}

func (o *Orchestrator) setValidator(ctx context.Context, s *session, validator *felt.Felt) error {
	zklink, err := s.mustFelt(ledger.KeyZklink)
	if err != nil {
		return err
	}

	if err := o.invoke(ctx, s, ledger.KeyZklinkSetValidatorTxHash, chain.SignerGovernor, chain.Call{
		Address:    zklink,
		EntryPoint: "setValidator",
		Calldata:   []*felt.Felt{validator, feltBool(true)},
	}); err != nil {
		return err
	}
	o.console.Success("zkLink setValidator %s", validator)

	return nil
}

func (o *Orchestrator) verifyZklink(ctx context.Context, s *session) error {
	targets := []struct {
		verifiedKey  string
		addressKey   string
		classHashKey string
	}{
		{ledger.KeyVerifierVerified, ledger.KeyVerifier, ledger.KeyVerifierClassHash},
		{ledger.KeyZklinkVerified, ledger.KeyZklink, ledger.KeyZklinkClassHash},
		{ledger.KeyGatekeeperVerified, ledger.KeyGatekeeper, ledger.KeyGatekeeperClassHash},
	}

	for _, target := range targets {
		address, err := s.mustFelt(target.addressKey)
		if err != nil {
			return err
		}
		classHash, err := s.mustFelt(target.classHashKey)
		if err != nil {
			return err
		}
		if err := o.verify(ctx, s, target.verifiedKey, address, classHash); err != nil {
			return err
		}
	}

	return nil
}
