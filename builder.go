package indexer1

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/0xsequence/indexer1/rpcclient"
	"github.com/goware/superr"
)

// Option configures a Builder. Apply in any order; Build validates once
// all options have been applied.
type Option[T any] func(*Builder[T])

// Builder assembles an Indexer from its required and optional inputs,
// materializing transports and resolving the initial cursor via Storage.
// Use indexer1.New to obtain one.
type Builder[T any] struct {
	httpURL    string
	httpClient HTTPClient

	wsURL    string
	wsClient WSClient

	filter    *Filter
	processor Processor[T]
	storage   Storage[T]

	fetchInterval    time.Duration
	overtakeInterval time.Duration
	blockRangeLimit  *uint64
	finalityLevel    FinalityLevel

	log *slog.Logger
}

// New starts a Builder with the teacher's documented defaults: a
// discarding logger and FinalityLevel Finalized.
func New[T any](opts ...Option[T]) *Builder[T] {
	b := &Builder[T]{
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		finalityLevel: Finalized,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func WithHTTPRPCURL[T any](url string) Option[T] {
	return func(b *Builder[T]) { b.httpURL = url }
}

func WithHTTPClient[T any](c HTTPClient) Option[T] {
	return func(b *Builder[T]) { b.httpClient = c }
}

func WithWSRPCURL[T any](url string) Option[T] {
	return func(b *Builder[T]) { b.wsURL = url }
}

func WithWSClient[T any](c WSClient) Option[T] {
	return func(b *Builder[T]) { b.wsClient = c }
}

func WithFilter[T any](filter Filter) Option[T] {
	return func(b *Builder[T]) { b.filter = &filter }
}

func WithProcessor[T any](p Processor[T]) Option[T] {
	return func(b *Builder[T]) { b.processor = p }
}

func WithStorage[T any](s Storage[T]) Option[T] {
	return func(b *Builder[T]) { b.storage = s }
}

func WithFetchInterval[T any](d time.Duration) Option[T] {
	return func(b *Builder[T]) { b.fetchInterval = d }
}

func WithOvertakeInterval[T any](d time.Duration) Option[T] {
	return func(b *Builder[T]) { b.overtakeInterval = d }
}

func WithBlockRangeLimit[T any](limit uint64) Option[T] {
	return func(b *Builder[T]) { b.blockRangeLimit = &limit }
}

func WithFinalityLevel[T any](level FinalityLevel) Option[T] {
	return func(b *Builder[T]) { b.finalityLevel = level }
}

func WithLogger[T any](log *slog.Logger) Option[T] {
	return func(b *Builder[T]) { b.log = log }
}

// Build validates the assembled inputs, dials any RPC URL that wasn't
// given as a pre-built client, resolves the chain ID, and resolves the
// initial cursor for the filter via storage.GetOrCreateFilter.
func (b *Builder[T]) Build(ctx context.Context) (*Indexer[T], error) {
	if b.httpClient == nil {
		if b.httpURL == "" {
			return nil, superr.Wrap(ErrConfigMissing, fmt.Errorf("http_rpc is missing"))
		}
		c, err := rpcclient.DialHTTP(b.httpURL, b.log)
		if err != nil {
			return nil, superr.Wrap(ErrTransportHTTP, err)
		}
		b.httpClient = c
	}

	if b.wsClient == nil && b.wsURL != "" {
		c, err := rpcclient.DialWS(ctx, b.wsURL, b.log)
		if err != nil {
			return nil, superr.Wrap(ErrTransportWS, err)
		}
		b.wsClient = c
	}

	if b.processor == nil {
		return nil, superr.Wrap(ErrConfigMissing, fmt.Errorf("processor is missing"))
	}
	if b.filter == nil {
		return nil, superr.Wrap(ErrConfigMissing, fmt.Errorf("filter is missing"))
	}
	if b.storage == nil {
		return nil, superr.Wrap(ErrConfigMissing, fmt.Errorf("storage is missing"))
	}
	if b.fetchInterval <= 0 {
		return nil, superr.Wrap(ErrConfigMissing, fmt.Errorf("fetch_interval is missing"))
	}

	overtakeInterval := b.overtakeInterval
	if overtakeInterval <= 0 {
		overtakeInterval = b.fetchInterval
	}

	chainID, err := b.httpClient.ChainID(ctx)
	if err != nil {
		return nil, superr.Wrap(ErrTransportHTTP, fmt.Errorf("fetching chain id: %w", err))
	}

	lastObservedBlock, filterID, err := b.storage.GetOrCreateFilter(ctx, *b.filter, chainID)
	if err != nil {
		return nil, superr.Wrap(ErrStorage, fmt.Errorf("resolving cursor: %w", err))
	}

	b.log.Info("indexer1: assembled indexer", "chain_id", chainID, "filter_id", filterID, "last_observed_block", lastObservedBlock)

	return &Indexer[T]{
		httpClient:        b.httpClient,
		wsClient:          b.wsClient,
		filter:            *b.filter,
		processor:         b.processor,
		storage:           b.storage,
		chainID:           chainID,
		filterID:          filterID,
		lastObservedBlock: lastObservedBlock,
		fetchInterval:     b.fetchInterval,
		overtakeInterval:  overtakeInterval,
		blockRangeLimit:   b.blockRangeLimit,
		finalityLevel:     b.finalityLevel,
		log:               b.log,
	}, nil
}
