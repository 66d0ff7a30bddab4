package deploy

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

// UpgradeStatus is the gatekeeper's upgrade state.
type UpgradeStatus uint64

const (
	UpgradeStatusIdle UpgradeStatus = iota
	UpgradeStatusNoticePeriod
)

func (s UpgradeStatus) String() string {
	switch s {
	case UpgradeStatusIdle:
		return "Idle"
	case UpgradeStatusNoticePeriod:
		return "NoticePeriod"
	default:
		return fmt.Sprintf("UpgradeStatus(%d)", uint64(s))
	}
}

type UpgradeOptions struct {
	UpgradeVerifier bool
	UpgradeZklink   bool
	SkipVerify      bool
}

// UpgradeResult reports the gatekeeper status before and after the run.
type UpgradeResult struct {
	Initial UpgradeStatus
	Final   UpgradeStatus
}

// Upgrade drives the gatekeeper through start and finish of an upgrade. An
// Idle gatekeeper gets fresh class declarations and startUpgrade; a
// gatekeeper in its notice period is finished. Rerunning after a failure
// between the two picks up at finishUpgrade.
func (o *Orchestrator) Upgrade(ctx context.Context, opts UpgradeOptions) (UpgradeResult, error) {
	log := o.logger.With("upgrade_verifier", opts.UpgradeVerifier, "upgrade_zklink", opts.UpgradeZklink)

	if !opts.UpgradeVerifier && !opts.UpgradeZklink {
		return UpgradeResult{}, fmt.Errorf("%w: nothing to upgrade", ErrPrecondition)
	}
	if o.identities.Governor == nil {
		return UpgradeResult{}, fmt.Errorf("%w: governor account is not configured", ErrPrecondition)
	}

	s, err := o.open(ledger.NameZklink)
	if err != nil {
		return UpgradeResult{}, err
	}

	gatekeeper, err := s.mustFelt(ledger.KeyGatekeeper)
	if err != nil {
		return UpgradeResult{}, err
	}
	zklink, err := s.mustFelt(ledger.KeyZklink)
	if err != nil {
		return UpgradeResult{}, err
	}

	noticePeriod, err := o.gateway.Read(ctx, chain.Call{Address: zklink, EntryPoint: "getNoticePeriod"})
	if err != nil {
		return UpgradeResult{}, fmt.Errorf("failed to read notice period: %w", err)
	}
	if !allZero(noticePeriod) {
		return UpgradeResult{}, fmt.Errorf("%w: notice period is not zero", ErrPrecondition)
	}

	status, err := o.upgradeStatus(ctx, gatekeeper)
	if err != nil {
		return UpgradeResult{}, err
	}
	result := UpgradeResult{Initial: status}
	log.With("status", status.String()).Info("upgrade status read")

	if status == UpgradeStatusIdle {
		if err := o.startUpgrade(ctx, s, gatekeeper, opts); err != nil {
			return result, err
		}

		status, err = o.upgradeStatus(ctx, gatekeeper)
		if err != nil {
			return result, err
		}
		if status != UpgradeStatusNoticePeriod {
			return result, fmt.Errorf("%w: expected %s after startUpgrade, got %s", ErrUnexpectedUpgradeStatus, UpgradeStatusNoticePeriod, status)
		}
	}

	if status != UpgradeStatusNoticePeriod {
		return result, fmt.Errorf("%w: %s", ErrUnexpectedUpgradeStatus, status)
	}

	txHash, err := o.gateway.Invoke(ctx, chain.SignerGovernor, chain.Call{Address: gatekeeper, EntryPoint: "finishUpgrade"})
	if err != nil {
		return result, fmt.Errorf("failed to finish upgrade: %w", err)
	}
	if _, err := o.gateway.WaitForFinality(ctx, txHash); err != nil {
		return result, fmt.Errorf("failed waiting for finishUpgrade: %w", err)
	}
	o.console.Success("Upgrade finished at tx %s", txHash)

	result.Final, err = o.upgradeStatus(ctx, gatekeeper)
	if err != nil {
		return result, err
	}
	log.With("status", result.Final.String()).Info("upgrade finished")

	if !opts.SkipVerify {
		if err := o.verifyUpgrade(ctx, s, opts); err != nil {
			return result, err
		}
	}

	delete(s.record, ledger.KeyVerifierUpgradeTarget)
	delete(s.record, ledger.KeyZklinkUpgradeTarget)

	return result, s.save()
}

func (o *Orchestrator) startUpgrade(ctx context.Context, s *session, gatekeeper *felt.Felt, opts UpgradeOptions) error {
	if err := o.declareZklink(ctx, s, DeclareOptions{
		Verifier: opts.UpgradeVerifier,
		Zklink:   opts.UpgradeZklink,
		Upgrade:  true,
	}); err != nil {
		return err
	}

	verifierHash := new(felt.Felt)
	zklinkHash := new(felt.Felt)
	if opts.UpgradeVerifier {
		hash, err := s.mustFelt(ledger.KeyVerifierClassHash)
		if err != nil {
			return err
		}
		verifierHash = hash
	}
	if opts.UpgradeZklink {
		hash, err := s.mustFelt(ledger.KeyZklinkClassHash)
		if err != nil {
			return err
		}
		zklinkHash = hash
	}

	txHash, err := o.gateway.Invoke(ctx, chain.SignerGovernor, chain.Call{
		Address:    gatekeeper,
		EntryPoint: "startUpgrade",
		Calldata:   []*felt.Felt{feltUint(2), verifierHash, zklinkHash},
	})
	if err != nil {
		return fmt.Errorf("failed to start upgrade: %w", err)
	}
	if _, err := o.gateway.WaitForFinality(ctx, txHash); err != nil {
		return fmt.Errorf("failed waiting for startUpgrade: %w", err)
	}
	o.console.Success("Upgrade started at tx %s", txHash)

	staged := map[string]*felt.Felt{
		ledger.KeyVerifierUpgradeTarget: verifierHash,
		ledger.KeyZklinkUpgradeTarget:   zklinkHash,
	}
	for key, classHash := range staged {
		if classHash.IsZero() {
			delete(s.record, key)
			continue
		}
		s.record.SetFelt(key, classHash)
	}

	return s.save()
}

func (o *Orchestrator) upgradeStatus(ctx context.Context, gatekeeper *felt.Felt) (UpgradeStatus, error) {
	out, err := o.gateway.Read(ctx, chain.Call{Address: gatekeeper, EntryPoint: "upgradeStatus"})
	if err != nil {
		return 0, fmt.Errorf("failed to read upgrade status: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("%w: empty upgradeStatus result", ErrUnexpectedUpgradeStatus)
	}

	for _, status := range []UpgradeStatus{UpgradeStatusIdle, UpgradeStatusNoticePeriod} {
		if out[0].Equal(feltUint(uint64(status))) {
			return status, nil
		}
	}

	return 0, fmt.Errorf("%w: variant %s", ErrUnexpectedUpgradeStatus, out[0])
}

// verifyUpgrade checks the upgraded contracts now run the staged classes.
// Components are taken from the targets recorded by startUpgrade, so a run
// resumed in the notice period checks what was started even when its flags
// differ. Without recorded targets the flags and declared class hashes apply.
func (o *Orchestrator) verifyUpgrade(ctx context.Context, s *session, opts UpgradeOptions) error {
	targets := []struct {
		enabled      bool
		addressKey   string
		classHashKey string
		stagedKey    string
	}{
		{opts.UpgradeVerifier, ledger.KeyVerifier, ledger.KeyVerifierClassHash, ledger.KeyVerifierUpgradeTarget},
		{opts.UpgradeZklink, ledger.KeyZklink, ledger.KeyZklinkClassHash, ledger.KeyZklinkUpgradeTarget},
	}

	recorded := s.record.Has(ledger.KeyVerifierUpgradeTarget) || s.record.Has(ledger.KeyZklinkUpgradeTarget)

	for _, target := range targets {
		classHashKey := target.classHashKey
		if recorded {
			if !s.record.Has(target.stagedKey) {
				continue
			}
			classHashKey = target.stagedKey
		} else if !target.enabled {
			continue
		}

		address, err := s.mustFelt(target.addressKey)
		if err != nil {
			return err
		}
		classHash, err := s.mustFelt(classHashKey)
		if err != nil {
			return err
		}

		deployed, err := o.gateway.ClassHashAt(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to verify %s: %w", target.addressKey, err)
		}
		if !deployed.Equal(classHash) {
			return fmt.Errorf("%w: %s runs class %s, expected %s", ErrVerificationFailed, target.addressKey, deployed, classHash)
		}
		o.console.Success("%s upgraded to class %s", target.addressKey, classHash)
	}

	return nil
}
