package starknet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/zklink-protocol/starknet-deployer/internal/chain"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

const (
	blockLatest = "latest"

	codeTxnHashNotFound = 29

	executionReverted = "REVERTED"
)

var errReceiptNotFound = errors.New("receipt not found")

type (
	rpcClient interface {
		CallContext(ctx context.Context, result any, method string, args ...any) error
	}

	functionCall struct {
		ContractAddress    string   `json:"contract_address"`
		EntryPointSelector string   `json:"entry_point_selector"`
		Calldata           []string `json:"calldata"`
	}

	receipt struct {
		TransactionHash *felt.Felt `json:"transaction_hash"`
		ExecutionStatus string     `json:"execution_status"`
		FinalityStatus  string     `json:"finality_status"`
		BlockNumber     *uint64    `json:"block_number"`
		RevertReason    string     `json:"revert_reason"`
	}

	// Reader performs unsigned JSON-RPC requests: contract calls, class hash
	// lookups and receipt polling.
	Reader struct {
		client          rpcClient
		pollInterval    time.Duration
		maxPollInterval time.Duration
		logger          *slog.Logger
	}
)

func NewReader(client rpcClient, pollInterval, maxPollInterval time.Duration) *Reader {
	return &Reader{
		client:          client,
		pollInterval:    pollInterval,
		maxPollInterval: max(pollInterval, maxPollInterval),
		logger:          logger.Named("starknet_reader"),
	}
}

// Read calls a view entry point against the latest block.
func (r *Reader) Read(ctx context.Context, call chain.Call) ([]*felt.Felt, error) {
	selector := Selector(call.EntryPoint)

	request := functionCall{
		ContractAddress:    call.Address.String(),
		EntryPointSelector: selector.String(),
		Calldata:           hexes(call.Calldata),
	}

	var result []*felt.Felt
	if err := r.client.CallContext(ctx, &result, "starknet_call", request, blockLatest); err != nil {
		return nil, fmt.Errorf("failed to call '%s' on %s: %w", call.EntryPoint, call.Address, classify(err))
	}

	return result, nil
}

func (r *Reader) ClassHashAt(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	var result felt.Felt
	if err := r.client.CallContext(ctx, &result, "starknet_getClassHashAt", blockLatest, address.String()); err != nil {
		return nil, fmt.Errorf("failed to get class hash at %s: %w", address, classify(err))
	}

	return &result, nil
}

// WaitForFinality polls the receipt of txHash with a doubling interval until
// it is available. Unknown hashes and transport failures keep the loop going.
func (r *Reader) WaitForFinality(ctx context.Context, txHash *felt.Felt) (chain.Finality, error) {
	log := r.logger.With("tx_hash", txHash.String())
	interval := r.pollInterval

	for {
		rec, err := r.receipt(ctx, txHash)
		switch {
		case err == nil:
			if rec.ExecutionStatus == executionReverted {
				return chain.Finality{}, fmt.Errorf("%w: tx %s: %s", chain.ErrReverted, txHash, rec.RevertReason)
			}
			if rec.BlockNumber == nil {
				log.Debug("transaction accepted, block pending")
				return chain.Finality{Pending: true}, nil
			}
			log.With("block_number", *rec.BlockNumber, "finality_status", rec.FinalityStatus).Debug("transaction included")
			return chain.Finality{BlockNumber: *rec.BlockNumber}, nil
		case errors.Is(err, errReceiptNotFound), errors.Is(err, chain.ErrTransient):
			log.With("err", err.Error(), "retry_in", interval).Debug("receipt not available yet")
		default:
			return chain.Finality{}, err
		}

		select {
		case <-ctx.Done():
			return chain.Finality{}, ctx.Err()
		case <-time.After(interval):
		}

		interval = min(interval*2, r.maxPollInterval)
	}
}

func (r *Reader) receipt(ctx context.Context, txHash *felt.Felt) (receipt, error) {
	var rec receipt
	if err := r.client.CallContext(ctx, &rec, "starknet_getTransactionReceipt", txHash.String()); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeTxnHashNotFound {
			return receipt{}, errReceiptNotFound
		}
		return receipt{}, fmt.Errorf("failed to get receipt of %s: %w", txHash, classify(err))
	}

	return rec, nil
}

// Selector returns the entry point selector of a function name.
func Selector(name string) *felt.Felt {
	return crypto.StarknetKeccak([]byte(name))
}

// classify marks errors that did not come back as a JSON-RPC error object as
// transient: the node was never reached or answered with a transport failure.
func classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", chain.ErrTransient, err)
}

func hexes(values []*felt.Felt) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
