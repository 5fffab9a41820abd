package indexer1

import "errors"

// Error kinds. Every error the engine returns, other than the context's
// own error when ctx is cancelled, wraps exactly one of these via
// superr.Wrap, so callers can classify failures with errors.Is regardless
// of the underlying cause.
var (
	// ErrConfigMissing means a required Builder input was never set.
	ErrConfigMissing = errors.New("indexer1: required configuration is missing")

	// ErrTransportHTTP means the HTTP RPC call failed, or returned no
	// data where data was required (e.g. no finalized block yet).
	ErrTransportHTTP = errors.New("indexer1: http transport error")

	// ErrTransportWS means the WebSocket subscription or connection failed.
	ErrTransportWS = errors.New("indexer1: websocket transport error")

	// ErrStorage means the database reported an error unrelated to the
	// integrity check below (connection, syntax, constraint, ...).
	ErrStorage = errors.New("indexer1: storage error")

	// ErrIntegrity means the cursor read back inside the transaction,
	// before commit, did not match the intended value, or a u64<->i64
	// conversion overflowed.
	ErrIntegrity = errors.New("indexer1: integrity error")

	// ErrProcessor means the user's Processor callback returned an error.
	ErrProcessor = errors.New("indexer1: processor error")
)
