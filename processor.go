package indexer1

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// Processor is invoked exactly once per tick that advances the cursor
// (an empty batch included; a tick that finds the cursor already at the
// head does not call it), inside the storage
// transaction that advances the cursor. T is the transaction handle type
// the chosen Storage implementation hands back (e.g. *sqlx.Tx).
//
// The transaction must outlive the call and is committed by the storage
// adapter, never by the Processor; a Processor that commits or otherwise
// closes tx early violates the contract. An error returned here aborts
// the transaction and the whole tick: last_observed_block is not advanced
// and the same batch is re-fetched and re-delivered on the next tick.
//
// Logs are ordered by (block number, log index) as returned by the RPC;
// the engine does not re-sort them.
type Processor[T any] interface {
	Process(ctx context.Context, logs []types.Log, tx T, prevBlock, newBlock uint64, chainID uint64) error
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc[T any] func(ctx context.Context, logs []types.Log, tx T, prevBlock, newBlock uint64, chainID uint64) error

func (f ProcessorFunc[T]) Process(ctx context.Context, logs []types.Log, tx T, prevBlock, newBlock uint64, chainID uint64) error {
	return f(ctx, logs, tx, prevBlock, newBlock, chainID)
}
