// Package indexer1 implements an EVM event-log indexing engine: a
// polling loop that advances a confirmed block-height cursor, an optional
// WebSocket push-stream that wakes the poller early, a chunked log-fetch
// procedure honoring an RPC range limit, and a transactional commit
// protocol that atomically writes both the fetched logs' side effects and
// the advanced cursor.
//
// One Indexer indexes one chain against one Filter. Restarting a process
// with the same Filter and Storage resumes exactly where the previous run
// stopped; it never re-delivers a block range that was already committed.
package indexer1

import (
	"log/slog"
	"time"
)

// Indexer is the assembled engine. Build one with Builder; do not
// construct it directly.
type Indexer[T any] struct {
	httpClient HTTPClient
	wsClient   WSClient

	filter    Filter
	processor Processor[T]
	storage   Storage[T]

	chainID  uint64
	filterID string

	lastObservedBlock uint64

	fetchInterval    time.Duration
	overtakeInterval time.Duration
	blockRangeLimit  *uint64
	finalityLevel    FinalityLevel

	log *slog.Logger
}

// LastObservedBlock returns the highest block number whose logs have been
// processed and committed, as of the last completed tick.
func (ix *Indexer[T]) LastObservedBlock() uint64 {
	return ix.lastObservedBlock
}

func (ix *Indexer[T]) ChainID() uint64 {
	return ix.chainID
}

func (ix *Indexer[T]) FilterID() string {
	return ix.filterID
}
