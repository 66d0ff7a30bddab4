package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/filesystem/json"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

var (
	testDeployer = new(felt.Felt).SetUint64(0xde)
	testGovernor = new(felt.Felt).SetUint64(0x90)
)

type invocation struct {
	signer chain.Signer
	call   chain.Call
}

type deployment struct {
	classHash *felt.Felt
	args      []*felt.Felt
	salt      *felt.Felt
}

// fakeNode is an in-memory network that applies the effects of the zklink
// entry points the orchestrator uses.
type fakeNode struct {
	counter     uint64
	block       uint64
	declaredN   map[artifact.ContractName]int
	contracts   map[string]*felt.Felt
	deployments []deployment
	invocations []invocation
	declares    []artifact.ContractName
	waits       int

	declareErr   map[artifact.ContractName]error
	failOnce     map[string]error
	pendingPolls int
	pending      map[string]int
	overrides    map[string]*felt.Felt
	// landedClass, when set, is the class every later deployment runs.
	landedClass *felt.Felt

	upgradeables []*felt.Felt
	status       UpgradeStatus
	staged       []*felt.Felt
	noticePeriod uint64
	ignoreStart  bool
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		block:      100,
		declaredN:  map[artifact.ContractName]int{},
		contracts:  map[string]*felt.Felt{},
		declareErr: map[artifact.ContractName]error{},
		failOnce:   map[string]error{},
		pending:    map[string]int{},
		overrides:  map[string]*felt.Felt{},
	}
}

func (n *fakeNode) next() *felt.Felt {
	n.counter++
	return new(felt.Felt).SetUint64(0x1000 + n.counter)
}

// classHashOf is the hash the fake assigns to the i-th declaration of name.
func classHashOf(name artifact.ContractName, i int) *felt.Felt {
	return new(felt.Felt).SetBytes([]byte(fmt.Sprintf("%s#%d", name, i)))
}

func (n *fakeNode) fail(key string) error {
	err, ok := n.failOnce[key]
	if !ok {
		return nil
	}
	delete(n.failOnce, key)
	return err
}

func (n *fakeNode) DeclareClass(_ context.Context, class artifact.ContractClass) (chain.Declaration, error) {
	n.declares = append(n.declares, class.Name)
	if err, ok := n.declareErr[class.Name]; ok {
		return chain.Declaration{}, err
	}

	n.declaredN[class.Name]++
	return chain.Declaration{ClassHash: classHashOf(class.Name, n.declaredN[class.Name]), TxHash: n.next()}, nil
}

func (n *fakeNode) DeployContract(_ context.Context, classHash *felt.Felt, args []*felt.Felt, salt *felt.Felt) (chain.Deployment, error) {
	if err := n.fail("deploy"); err != nil {
		return chain.Deployment{}, err
	}

	n.deployments = append(n.deployments, deployment{classHash: classHash, args: args, salt: salt})
	address := n.next()
	n.contracts[address.String()] = classHash
	if n.landedClass != nil {
		n.contracts[address.String()] = n.landedClass
	}

	txHash := n.next()
	if n.pendingPolls > 0 {
		n.pending[txHash.String()] = n.pendingPolls
	}

	return chain.Deployment{Address: address, TxHash: txHash}, nil
}

func (n *fakeNode) Invoke(_ context.Context, signer chain.Signer, call chain.Call) (*felt.Felt, error) {
	if err := n.fail(call.EntryPoint); err != nil {
		return nil, err
	}
	n.invocations = append(n.invocations, invocation{signer: signer, call: call})

	switch call.EntryPoint {
	case "addUpgradeable":
		n.upgradeables = append(n.upgradeables, call.Calldata[0])
	case "startUpgrade":
		if !n.ignoreStart {
			n.staged = call.Calldata[1:]
			n.status = UpgradeStatusNoticePeriod
		}
	case "finishUpgrade":
		for i, classHash := range n.staged {
			if !classHash.IsZero() {
				n.contracts[n.upgradeables[i].String()] = classHash
			}
		}
		n.staged = nil
		n.status = UpgradeStatusIdle
	}

	return n.next(), nil
}

func (n *fakeNode) WaitForFinality(_ context.Context, txHash *felt.Felt) (chain.Finality, error) {
	n.waits++
	if left := n.pending[txHash.String()]; left > 0 {
		n.pending[txHash.String()] = left - 1
		return chain.Finality{Pending: true}, nil
	}

	n.block++
	return chain.Finality{BlockNumber: n.block}, nil
}

func (n *fakeNode) Read(_ context.Context, call chain.Call) ([]*felt.Felt, error) {
	if err := n.fail("read:" + call.EntryPoint); err != nil {
		return nil, err
	}

	switch call.EntryPoint {
	case "upgradeStatus":
		return []*felt.Felt{new(felt.Felt).SetUint64(uint64(n.status))}, nil
	case "getNoticePeriod":
		return []*felt.Felt{new(felt.Felt).SetUint64(n.noticePeriod)}, nil
	default:
		return nil, fmt.Errorf("entry point %s not found", call.EntryPoint)
	}
}

func (n *fakeNode) ClassHashAt(_ context.Context, address *felt.Felt) (*felt.Felt, error) {
	if override, ok := n.overrides[address.String()]; ok {
		return override, nil
	}
	classHash, ok := n.contracts[address.String()]
	if !ok {
		return nil, errors.New("contract not found")
	}
	return classHash, nil
}

func (n *fakeNode) entryPoints() []string {
	out := make([]string, 0, len(n.invocations))
	for _, inv := range n.invocations {
		out = append(out, inv.call.EntryPoint)
	}
	return out
}

type fakeResolver struct {
	missing map[artifact.ContractName]bool
}

func (r fakeResolver) Resolve(name artifact.ContractName) (artifact.ContractClass, error) {
	if r.missing[name] {
		return artifact.ContractClass{}, fmt.Errorf("%w: %s", artifact.ErrArtifactNotFound, name)
	}
	return artifact.ContractClass{Name: name, Sierra: []byte(`{}`), Casm: []byte(`{}`)}, nil
}

type harness struct {
	node         *fakeNode
	fs           afero.Fs
	store        *ledger.FileStore
	out          *bytes.Buffer
	orchestrator *Orchestrator
}

func newHarness(t *testing.T, dialect chain.Dialect) *harness {
	t.Helper()

	classifier, err := chain.NewClassifier(dialect)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	store := ledger.NewFileStore("log", "devnet", json.NewReader(fs), json.NewWriter(fs))
	node := newFakeNode()
	out := &bytes.Buffer{}

	return &harness{
		node:  node,
		fs:    fs,
		store: store,
		out:   out,
		orchestrator: NewOrchestrator(
			node,
			fakeResolver{},
			store,
			classifier,
			Identities{Deployer: testDeployer, Governor: testGovernor},
			logger.NewConsole(out),
			WithPendingRetryInterval(time.Millisecond),
		),
	}
}

func (h *harness) record(t *testing.T, name string) ledger.Record {
	t.Helper()
	record, err := h.store.Load(name)
	require.NoError(t, err)
	return record
}

func (h *harness) file(t *testing.T, name string) []byte {
	t.Helper()
	data, err := afero.ReadFile(h.fs, h.store.Path(name))
	if errors.Is(err, afero.ErrFileNotFound) {
		return nil
	}
	require.NoError(t, err)
	return data
}
