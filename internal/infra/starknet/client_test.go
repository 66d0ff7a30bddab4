package starknet

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

type recordingInvoker struct {
	calls []chain.Call
	hash  *felt.Felt
}

func (r *recordingInvoker) Invoke(_ context.Context, call chain.Call) (*felt.Felt, error) {
	r.calls = append(r.calls, call)
	return r.hash, nil
}

func newTestClient(deployer, governor *recordingInvoker) *Client {
	udc, _ := new(felt.Felt).SetString(DefaultUDCAddress)
	return &Client{
		deployer: deployer,
		signers: map[chain.Signer]invoker{
			chain.SignerDeployer: deployer,
			chain.SignerGovernor: governor,
		},
		udc:    udc,
		logger: logger.Named("test"),
	}
}

func TestDeployContractGoesThroughUDC(t *testing.T) {
	deployer := &recordingInvoker{hash: new(felt.Felt).SetUint64(0xdead)}
	client := newTestClient(deployer, &recordingInvoker{})

	classHash := new(felt.Felt).SetUint64(0x1234)
	salt := new(felt.Felt).SetUint64(0)
	args := []*felt.Felt{new(felt.Felt).SetUint64(7), new(felt.Felt).SetUint64(8)}

	deployment, err := client.DeployContract(context.Background(), classHash, args, salt)
	require.NoError(t, err)

	assert.Equal(t, "0xdead", deployment.TxHash.String())
	assert.True(t, deployment.Address.Equal(ContractAddress(&felt.Zero, classHash, salt, args)))

	require.Len(t, deployer.calls, 1)
	call := deployer.calls[0]
	assert.Equal(t, DefaultUDCAddress, "0x0"+call.Address.Text(16))
	assert.Equal(t, udcEntryPoint, call.EntryPoint)
	assert.Equal(t, []string{"0x1234", "0x0", "0x0", "0x2", "0x7", "0x8"}, hexes(call.Calldata))
}

func TestDeployContractRandomSalt(t *testing.T) {
	deployer := &recordingInvoker{hash: new(felt.Felt).SetUint64(1)}
	client := newTestClient(deployer, &recordingInvoker{})

	classHash := new(felt.Felt).SetUint64(0x1234)
	first, err := client.DeployContract(context.Background(), classHash, nil, nil)
	require.NoError(t, err)
	second, err := client.DeployContract(context.Background(), classHash, nil, nil)
	require.NoError(t, err)

	assert.False(t, first.Address.Equal(second.Address))
}

func TestInvokeRoutesBySigner(t *testing.T) {
	deployer := &recordingInvoker{hash: new(felt.Felt).SetUint64(1)}
	governor := &recordingInvoker{hash: new(felt.Felt).SetUint64(2)}
	client := newTestClient(deployer, governor)

	call := chain.Call{Address: new(felt.Felt).SetUint64(9), EntryPoint: "finishUpgrade"}
	hash, err := client.Invoke(context.Background(), chain.SignerGovernor, call)
	require.NoError(t, err)
	assert.Equal(t, "0x2", hash.String())
	assert.Empty(t, deployer.calls)
	assert.Len(t, governor.calls, 1)

	_, err = client.Invoke(context.Background(), chain.Signer("validator"), call)
	require.Error(t, err)
}
