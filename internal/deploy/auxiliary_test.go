package deploy

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

func TestDeployMulticall(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	record, err := h.orchestrator.DeployMulticall(ctx, DeployMulticallOptions{})
	require.NoError(t, err)
	for _, key := range []string{
		ledger.KeyMulticallClassHash, ledger.KeyMulticall, ledger.KeyMulticallTxHash,
		ledger.KeyMulticallBlockNumber, ledger.KeyMulticallVerified,
	} {
		assert.True(t, record.Has(key), "missing %s", key)
	}
	require.Len(t, h.node.deployments, 1)
	assert.Empty(t, h.node.deployments[0].args)

	_, err = h.orchestrator.DeployMulticall(ctx, DeployMulticallOptions{})
	require.NoError(t, err)
	assert.Len(t, h.node.declares, 1)
	assert.Len(t, h.node.deployments, 1)

	_, err = h.orchestrator.DeployMulticall(ctx, DeployMulticallOptions{Force: true})
	require.NoError(t, err)
	assert.Len(t, h.node.declares, 1, "the class is declared once")
	assert.Len(t, h.node.deployments, 2)
	assert.Equal(t, true, h.record(t, ledger.NameMulticall)[ledger.KeyMulticallVerified])

	assert.False(t, h.record(t, ledger.NameZklink).Has(ledger.KeyMulticallClassHash), "multicall keeps its own log")
}

func TestDeployFaucetToken(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	ctx := context.Background()

	opts := DeployFaucetTokenOptions{Name: "Test USDC", Symbol: "USDC", Decimals: 6, FromTransferFeeRatio: 1, ToTransferFeeRatio: 2}
	record, err := h.orchestrator.DeployFaucetToken(ctx, opts)
	require.NoError(t, err)
	assert.True(t, record.Has(ledger.KeyFaucetTokenClassHash))
	assert.True(t, record.Has("USDC"))
	assert.True(t, record.Has("USDCTxHash"))

	require.Len(t, h.node.deployments, 1)
	args := h.node.deployments[0].args
	require.Len(t, args, 5)
	assert.True(t, args[0].Equal(new(felt.Felt).SetBytes([]byte("Test USDC"))))
	assert.True(t, args[1].Equal(new(felt.Felt).SetBytes([]byte("USDC"))))
	assert.True(t, args[2].Equal(feltUint(6)))
	assert.True(t, args[4].Equal(feltUint(2)))

	_, err = h.orchestrator.DeployFaucetToken(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, h.node.deployments, 1, "same symbol is skipped")

	_, err = h.orchestrator.DeployFaucetToken(ctx, DeployFaucetTokenOptions{Name: "Test USDT", Symbol: "USDT", Decimals: 6})
	require.NoError(t, err)
	assert.Len(t, h.node.deployments, 2)
	assert.Equal(t, []artifact.ContractName{artifact.ContractFaucet}, h.node.declares)

	opts.Force = true
	_, err = h.orchestrator.DeployFaucetToken(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, h.node.deployments, 3)
}

func TestDeployFaucetTokenRejectsLongName(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)

	_, err := h.orchestrator.DeployFaucetToken(context.Background(), DeployFaucetTokenOptions{
		Name:   "a token name that does not fit one felt",
		Symbol: "LONG",
	})
	require.ErrorIs(t, err, ErrPrecondition)
	assert.Empty(t, h.node.declares)
}

func TestMintFaucetToken(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	token := new(felt.Felt).SetUint64(0x70c)
	to := new(felt.Felt).SetUint64(0x2)

	_, err := h.orchestrator.MintFaucetToken(context.Background(), MintFaucetTokenOptions{
		Token:    token,
		To:       to,
		Amount:   uint256.NewInt(5),
		Decimals: 6,
	})
	require.NoError(t, err)

	require.Len(t, h.node.invocations, 1)
	inv := h.node.invocations[0]
	assert.Equal(t, chain.SignerDeployer, inv.signer)
	assert.Equal(t, "mintTo", inv.call.EntryPoint)
	assert.True(t, inv.call.Address.Equal(token))
	require.Len(t, inv.call.Calldata, 3)
	assert.True(t, inv.call.Calldata[0].Equal(to))
	assert.True(t, inv.call.Calldata[1].Equal(feltUint(5_000_000)))
	assert.True(t, inv.call.Calldata[2].IsZero())
}

func TestAddToken(t *testing.T) {
	t.Run("zklink from the deployment log", func(t *testing.T) {
		h := newHarness(t, chain.DialectRPC)
		ctx := context.Background()

		_, err := h.orchestrator.DeployZklink(ctx, zklinkOptions())
		require.NoError(t, err)
		h.node.invocations = nil
		zklink, _, _ := h.record(t, ledger.NameZklink).Felt(ledger.KeyZklink)

		token := new(felt.Felt).SetUint64(0x70c)
		_, err = h.orchestrator.AddToken(ctx, AddTokenOptions{TokenID: 3, TokenAddress: token, Decimals: 18, Standard: true})
		require.NoError(t, err)

		require.Len(t, h.node.invocations, 1)
		inv := h.node.invocations[0]
		assert.Equal(t, chain.SignerGovernor, inv.signer)
		assert.True(t, inv.call.Address.Equal(zklink))
		assert.Equal(t, []*felt.Felt{feltUint(3), token, feltUint(18), feltUint(1)}, inv.call.Calldata)
	})

	t.Run("zklink unknown", func(t *testing.T) {
		h := newHarness(t, chain.DialectRPC)

		_, err := h.orchestrator.AddToken(context.Background(), AddTokenOptions{TokenID: 3, TokenAddress: feltUint(1)})
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Empty(t, h.node.invocations)
	})
}

func TestAddBridge(t *testing.T) {
	h := newHarness(t, chain.DialectRPC)
	zklink := new(felt.Felt).SetUint64(0x21)
	bridge := new(felt.Felt).SetUint64(0xb1)

	_, err := h.orchestrator.AddBridge(context.Background(), AddBridgeOptions{Zklink: zklink, Bridge: bridge})
	require.NoError(t, err)

	require.Len(t, h.node.invocations, 1)
	inv := h.node.invocations[0]
	assert.Equal(t, chain.SignerGovernor, inv.signer)
	assert.Equal(t, "addBridge", inv.call.EntryPoint)
	assert.True(t, inv.call.Address.Equal(zklink))
	assert.Equal(t, []*felt.Felt{bridge}, inv.call.Calldata)
}
