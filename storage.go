package indexer1

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// Storage is the transactional persistence port (C2 in SPEC_FULL.md). T is
// the transaction handle type threaded into Processor.Process; it lets the
// processor's writes join the same atomic unit as the cursor advance.
//
// Implementations must guarantee: at most one row per filterID; cursor
// advance and processor side effects commit or roll back together; and a
// transaction is rolled back if the caller's context is cancelled before
// commit.
type Storage[T any] interface {
	// GetOrCreateFilter ensures the cursor table exists, computes the
	// FilterID, and either returns the existing row's last_observed_block
	// or inserts a new row seeded at filter.EffectiveFromBlock(). Since
	// handleTick always fetches from lastObservedBlock+1, a virgin
	// filter's first tick starts at FromBlock+1 and FromBlock itself is
	// never indexed; this matches the engine's historical behavior and
	// must not be "fixed" by seeding at FromBlock-1.
	GetOrCreateFilter(ctx context.Context, filter Filter, chainID uint64) (lastObservedBlock uint64, filterID string, err error)

	// InsertLogs begins a transaction, advances the cursor by exactly
	// newBlock-prevBlock (never sets it absolutely — see DESIGN.md),
	// invokes processor.Process inside that transaction, re-reads the
	// cursor and aborts with ErrIntegrity if it doesn't equal newBlock,
	// then commits.
	InsertLogs(ctx context.Context, chainID uint64, logs []types.Log, filterID string, prevBlock, newBlock uint64, processor Processor[T]) error
}
