package indexer1

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

// HTTPClient is the engine's contract on the HTTP JSON-RPC transport. The
// default implementation (package rpcclient) wraps a go-ethereum
// *ethclient.Client; tests substitute a fake.
type HTTPClient interface {
	ChainID(ctx context.Context) (uint64, error)

	// HeadBlockNumber returns the block number at the given finality
	// level. It returns an error if the node has no such block yet (e.g.
	// no finalized block on a young chain); handleTick wraps any error
	// from it in ErrTransportHTTP.
	HeadBlockNumber(ctx context.Context, level FinalityLevel) (uint64, error)

	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// WSClient is the engine's contract on the optional WebSocket transport.
// Only the arrival of a push notification is used as a wakeup signal; log
// content delivered this way is discarded (the engine always re-fetches
// via HTTPClient.FilterLogs so it never double-counts ranges).
type WSClient interface {
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}
