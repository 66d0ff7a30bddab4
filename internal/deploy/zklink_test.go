package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

var wiringEntryPoints = []string{
	"transferMastership",
	"addUpgradeable",
	"transferMastership",
	"addUpgradeable",
	"transferMastership",
	"setValidator",
}

func zklinkOptions() DeployZklinkOptions {
	return DeployZklinkOptions{
		BlockNumber: 7,
		Timestamp:   1700000000,
		GenesisRoot: new(uint256.Int).Add(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(9)),
	}
}

func TestDeployZklinkFullRun(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)

	record, err := h.orchestrator.DeployZklink(context.Background(), zklinkOptions())
	require.NoError(t, err)

	stored := h.record(t, ledger.NameZklink)
	for _, key := range []string{
		ledger.KeyDeployer, ledger.KeyGovernor, ledger.KeyValidator, ledger.KeyFeeAccount,
		ledger.KeyGatekeeperClassHash, ledger.KeyVerifierClassHash, ledger.KeyZklinkClassHash,
		ledger.KeyVerifier, ledger.KeyVerifierVerified,
		ledger.KeyZklink, ledger.KeyZklinkTxHash, ledger.KeyZklinkBlockNumber, ledger.KeyZklinkVerified,
		ledger.KeyGatekeeper, ledger.KeyGatekeeperVerified,
		ledger.KeyVerifierTransferMasterTxHash, ledger.KeyVerifierAddUpgradeableTxHash,
		ledger.KeyZklinkTransferMasterTxHash, ledger.KeyZklinkAddUpgradeableTxHash,
		ledger.KeyGatekeeperTransferMasterTxHash, ledger.KeyZklinkSetValidatorTxHash,
	} {
		assert.True(t, stored.Has(key), "missing %s", key)
		assert.True(t, record.Has(key), "missing %s in returned record", key)
	}

	governor, _, err := stored.Felt(ledger.KeyGovernor)
	require.NoError(t, err)
	assert.True(t, governor.Equal(testGovernor))
	validator, _, err := stored.Felt(ledger.KeyValidator)
	require.NoError(t, err)
	assert.True(t, validator.Equal(testDeployer))

	// three declarations, then the verifier and zklink deployments
	blockNumber, ok, err := stored.Uint64(ledger.KeyZklinkBlockNumber)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(105), blockNumber)
	assert.Equal(t, true, stored[ledger.KeyZklinkVerified])

	require.Len(t, h.node.deployments, 3)
	verifier, gatekeeper := h.node.deployments[0], h.node.deployments[2]
	zklink := h.node.deployments[1]

	assert.Equal(t, []*felt.Felt{testDeployer}, verifier.args)
	assert.Nil(t, verifier.salt)

	require.Len(t, zklink.args, 11)
	verifierAddress, _, _ := stored.Felt(ledger.KeyVerifier)
	assert.True(t, zklink.args[1].Equal(verifierAddress))
	assert.True(t, zklink.args[2].Equal(testGovernor))
	assert.True(t, zklink.args[3].Equal(feltUint(7)))
	assert.True(t, zklink.args[5].Equal(feltUint(9)), "genesis root low")
	assert.True(t, zklink.args[6].Equal(feltUint(1)), "genesis root high")
	assert.True(t, zklink.args[7].IsZero())

	require.NotNil(t, gatekeeper.salt)
	assert.True(t, gatekeeper.salt.IsZero())

	assert.Equal(t, wiringEntryPoints, h.node.entryPoints())
	for i, inv := range h.node.invocations {
		want := chain.SignerDeployer
		if inv.call.EntryPoint == "setValidator" {
			want = chain.SignerGovernor
		}
		assert.Equal(t, want, inv.signer, "invocation %d", i)
	}

	last := h.node.invocations[4]
	assert.True(t, last.call.Calldata[0].Equal(testGovernor), "gatekeeper mastership goes to the governor")
}

func TestDeployZklinkIsIdempotent(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.NoError(t, err)
	before := h.file(t, ledger.NameZklink)

	_, err = h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.NoError(t, err)

	assert.Len(t, h.node.declares, 3)
	assert.Len(t, h.node.deployments, 3)
	assert.Len(t, h.node.invocations, len(wiringEntryPoints))
	assert.Equal(t, before, h.file(t, ledger.NameZklink))
}

func TestDeployZklinkResumesAfterFailure(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	h.node.failOnce["addUpgradeable"] = errors.New("connection reset")

	_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ledger.KeyVerifierAddUpgradeableTxHash)

	stored := h.record(t, ledger.NameZklink)
	assert.True(t, stored.Has(ledger.KeyVerifierTransferMasterTxHash))
	assert.False(t, stored.Has(ledger.KeyVerifierAddUpgradeableTxHash))
	assert.False(t, stored.Has(ledger.KeyZklinkSetValidatorTxHash))

	_, err = h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.NoError(t, err)

	assert.Len(t, h.node.deployments, 3)
	assert.Equal(t, wiringEntryPoints, h.node.entryPoints())
	assert.True(t, h.record(t, ledger.NameZklink).Has(ledger.KeyZklinkSetValidatorTxHash))
}

func TestDeployZklinkForceRedeploys(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.NoError(t, err)
	first, _, _ := h.record(t, ledger.NameZklink).Felt(ledger.KeyZklink)

	opts := zklinkOptions()
	opts.Force = true
	_, err = h.orchestrator.DeployZklink(ctx, opts)
	require.NoError(t, err)

	assert.Len(t, h.node.declares, 6)
	assert.Len(t, h.node.deployments, 6)
	assert.Len(t, h.node.invocations, 2*len(wiringEntryPoints))

	second, _, _ := h.record(t, ledger.NameZklink).Felt(ledger.KeyZklink)
	assert.False(t, first.Equal(second))
}

func TestDeployZklinkPreconditions(t *testing.T) {
	t.Run("genesis root required", func(t *testing.T) {
		h := newHarness(t, chain.DialectRPC)
		opts := zklinkOptions()
		opts.GenesisRoot = nil

		_, err := h.orchestrator.DeployZklink(context.Background(), opts)
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Nil(t, h.file(t, ledger.NameZklink))
		assert.Empty(t, h.node.declares)
	})

	t.Run("governor cannot change after deployment", func(t *testing.T) {
		h := newHarness(t, chain.DialectRPC)
		ctx := context.Background()

		_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
		require.NoError(t, err)
		before := h.file(t, ledger.NameZklink)

		opts := zklinkOptions()
		opts.Governor = new(felt.Felt).SetUint64(0xbad)
		_, err = h.orchestrator.DeployZklink(ctx, opts)
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Equal(t, before, h.file(t, ledger.NameZklink))
	})
}

func TestDeployZklinkWaitsForBlockNumber(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	h.node.pendingPolls = 2

	_, err := h.orchestrator.DeployZklink(context.Background(), zklinkOptions())
	require.NoError(t, err)

	blockNumber, ok, err := h.record(t, ledger.NameZklink).Uint64(ledger.KeyZklinkBlockNumber)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, blockNumber)
}

func TestDeployZklinkPendingWaitStopsOnCancel(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	h.node.pendingPolls = 1 << 30

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	stored := h.record(t, ledger.NameZklink)
	assert.True(t, stored.Has(ledger.KeyVerifier))
	assert.False(t, stored.Has(ledger.KeyZklink))
}

func TestDeployZklinkVerificationMismatch(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	opts := zklinkOptions()
	opts.SkipVerify = true
	_, err := h.orchestrator.DeployZklink(ctx, opts)
	require.NoError(t, err)
	assert.False(t, h.record(t, ledger.NameZklink).Has(ledger.KeyVerifierVerified))

	verifier, _, err := h.record(t, ledger.NameZklink).Felt(ledger.KeyVerifier)
	require.NoError(t, err)
	h.node.overrides[verifier.String()] = new(felt.Felt).SetUint64(0xabc)

	_, err = h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.False(t, h.record(t, ledger.NameZklink).Has(ledger.KeyVerifierVerified))
}

func TestDeployZklinkForceVerifiesRedeployedContracts(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
	require.NoError(t, err)
	stored := h.record(t, ledger.NameZklink)
	require.True(t, stored.Has(ledger.KeyVerifierVerified))
	first, _, _ := stored.Felt(ledger.KeyVerifier)

	h.node.landedClass = new(felt.Felt).SetUint64(0xabc)

	opts := zklinkOptions()
	opts.Force = true
	_, err = h.orchestrator.DeployZklink(ctx, opts)
	require.ErrorIs(t, err, ErrVerificationFailed)

	stored = h.record(t, ledger.NameZklink)
	second, _, _ := stored.Felt(ledger.KeyVerifier)
	assert.False(t, first.Equal(second))
	assert.False(t, stored.Has(ledger.KeyVerifierVerified))
	assert.False(t, stored.Has(ledger.KeyZklinkVerified))
	assert.False(t, stored.Has(ledger.KeyGatekeeperVerified))
}
