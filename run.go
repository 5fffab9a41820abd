package indexer1

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goware/superr"
)

// Run consumes the Indexer and runs until the caller's context is
// cancelled or an error propagates. It multiplexes a periodic ticker with
// an optional WebSocket push-wakeup: either source triggers an inner
// catch-up loop that calls handleTick back-to-back (sleeping
// overtakeInterval between calls) until the cursor reaches the
// configured finality head.
//
// Run has no cancellation token of its own beyond ctx: the caller stops
// it by cancelling ctx. An in-flight RPC call or DB transaction observes
// cancellation at its next suspension point; a storage adapter must roll
// back any open transaction on cancellation.
func (ix *Indexer[T]) Run(ctx context.Context) error {
	ticker := time.NewTicker(ix.fetchInterval)
	defer ticker.Stop()

	wsLogs, wsErrs, unsubscribe, err := ix.subscribeWS(ctx)
	if err != nil {
		return err
	}
	if unsubscribe != nil {
		defer unsubscribe()
	}

	ix.log.Info("indexer1: run loop started", "filter_id", ix.filterID, "chain_id", ix.chainID)

	for {
		select {
		case <-ctx.Done():
			ix.log.Info("indexer1: run loop stopped", "filter_id", ix.filterID)
			return ctx.Err()

		case err := <-wsErrs:
			return superr.Wrap(ErrTransportWS, err)

		case <-wsLogs:
			// content is discarded; arrival is only a wakeup signal.

		case <-ticker.C:
		}

		if err := ix.catchUp(ctx); err != nil {
			return err
		}
	}
}

// catchUp calls handleTick repeatedly until it reports the cursor has
// reached the configured finality head.
func (ix *Indexer[T]) catchUp(ctx context.Context) error {
	for {
		ix.log.Debug("indexer1: starting to handle tick", "filter_id", ix.filterID)
		reachedLatest, err := ix.handleTick(ctx)
		if err != nil {
			return err
		}
		if reachedLatest {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ix.overtakeInterval):
		}
	}
}

// subscribeWS opens the push subscription if a WS client is configured. If
// not, it returns nil channels and a nil unsubscribe func; a select never
// receives from a nil channel, so the run loop never wakes from them.
func (ix *Indexer[T]) subscribeWS(ctx context.Context) (<-chan types.Log, <-chan error, func(), error) {
	if ix.wsClient == nil {
		return nil, nil, nil, nil
	}

	logCh := make(chan types.Log)
	sub, err := ix.wsClient.SubscribeFilterLogs(ctx, ix.filter.toSubscriptionQuery(), logCh)
	if err != nil {
		return nil, nil, nil, superr.Wrap(ErrTransportWS, fmt.Errorf("subscribing to logs: %w", err))
	}

	return logCh, sub.Err(), sub.Unsubscribe, nil
}
