package indexer1

import (
	"context"
	"fmt"

	"github.com/goware/superr"
)

// handleTick runs one fetch -> deliver -> commit pass and reports whether
// the cursor has caught up to the configured finality level's head.
//
// Catch-up is driven entirely by the return value: Run keeps calling
// handleTick (with overtakeInterval between calls) until it returns true,
// giving natural chunked replay against block_range_limit without a
// second scheduler.
func (ix *Indexer[T]) handleTick(ctx context.Context) (reachedLatest bool, err error) {
	from := ix.lastObservedBlock + 1

	head, err := ix.httpClient.HeadBlockNumber(ctx, ix.finalityLevel)
	if err != nil {
		return false, superr.Wrap(ErrTransportHTTP, fmt.Errorf("fetching %s head: %w", ix.finalityLevel, err))
	}

	if ix.lastObservedBlock == head {
		return true, nil
	}

	to := head
	if ix.blockRangeLimit != nil {
		if limit := from + *ix.blockRangeLimit; limit < to {
			to = limit
		}
	}

	query := ix.filter.toQuery(from, to)

	ix.log.Debug("indexer1: fetching logs", "from", from, "to", to, "filter_id", ix.filterID)
	logs, err := ix.httpClient.FilterLogs(ctx, query)
	if err != nil {
		return false, superr.Wrap(ErrTransportHTTP, fmt.Errorf("eth_getLogs(%d, %d): %w", from, to, err))
	}

	ix.log.Debug("indexer1: updating storage", "rows", len(logs), "from", from, "to", to)
	if err := ix.storage.InsertLogs(ctx, ix.chainID, logs, ix.filterID, ix.lastObservedBlock, to, ix.processor); err != nil {
		return false, err
	}

	ix.lastObservedBlock = to
	return to == head, nil
}
