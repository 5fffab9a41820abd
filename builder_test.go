package indexer1_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsequence/indexer1"
)

type stubHTTPClient struct{ chainID, head uint64 }

func (s *stubHTTPClient) ChainID(ctx context.Context) (uint64, error) { return s.chainID, nil }
func (s *stubHTTPClient) HeadBlockNumber(ctx context.Context, level indexer1.FinalityLevel) (uint64, error) {
	return s.head, nil
}
func (s *stubHTTPClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

type stubStorage struct{ lastObservedBlock uint64 }

func (s *stubStorage) GetOrCreateFilter(ctx context.Context, filter indexer1.Filter, chainID uint64) (uint64, string, error) {
	return s.lastObservedBlock, "stub-filter-id", nil
}
func (s *stubStorage) InsertLogs(ctx context.Context, chainID uint64, logs []types.Log, filterID string, prevBlock, newBlock uint64, processor indexer1.Processor[int]) error {
	return nil
}

func noopProcessor() indexer1.ProcessorFunc[int] {
	return func(ctx context.Context, logs []types.Log, tx int, prevBlock, newBlock, chainID uint64) error {
		return nil
	}
}

func TestBuilder_MissingProcessorFails(t *testing.T) {
	_, err := indexer1.New[int](
		indexer1.WithHTTPClient[int](&stubHTTPClient{}),
		indexer1.WithFilter[int](indexer1.Filter{}),
		indexer1.WithStorage[int](&stubStorage{}),
		indexer1.WithFetchInterval[int](time.Second),
	).Build(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, indexer1.ErrConfigMissing)
}

func TestBuilder_MissingFetchIntervalFails(t *testing.T) {
	_, err := indexer1.New[int](
		indexer1.WithHTTPClient[int](&stubHTTPClient{}),
		indexer1.WithFilter[int](indexer1.Filter{}),
		indexer1.WithStorage[int](&stubStorage{}),
		indexer1.WithProcessor[int](noopProcessor()),
	).Build(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, indexer1.ErrConfigMissing)
}

func TestBuilder_MissingHTTPTransportFails(t *testing.T) {
	_, err := indexer1.New[int](
		indexer1.WithFilter[int](indexer1.Filter{}),
		indexer1.WithStorage[int](&stubStorage{}),
		indexer1.WithProcessor[int](noopProcessor()),
		indexer1.WithFetchInterval[int](time.Second),
	).Build(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, indexer1.ErrConfigMissing)
}

func TestBuilder_ResolvesCursorAndChainIDFromStorageAndTransport(t *testing.T) {
	ix, err := indexer1.New[int](
		indexer1.WithHTTPClient[int](&stubHTTPClient{chainID: 137, head: 500}),
		indexer1.WithFilter[int](indexer1.Filter{FromBlock: 10}),
		indexer1.WithStorage[int](&stubStorage{lastObservedBlock: 42}),
		indexer1.WithProcessor[int](noopProcessor()),
		indexer1.WithFetchInterval[int](time.Second),
	).Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(137), ix.ChainID())
	assert.Equal(t, uint64(42), ix.LastObservedBlock())
	assert.Equal(t, "stub-filter-id", ix.FilterID())
}

func TestBuilder_BuildSucceedsWithoutOvertakeInterval(t *testing.T) {
	// overtakeInterval has no exported accessor, so this only checks that
	// Build accepts a configuration without WithOvertakeInterval; the
	// defaulting to fetchInterval itself is not observed here.
	ix, err := indexer1.New[int](
		indexer1.WithHTTPClient[int](&stubHTTPClient{chainID: 1, head: 1}),
		indexer1.WithFilter[int](indexer1.Filter{}),
		indexer1.WithStorage[int](&stubStorage{}),
		indexer1.WithProcessor[int](noopProcessor()),
		indexer1.WithFetchInterval[int](time.Second),
	).Build(context.Background())

	require.NoError(t, err)
	require.NotNil(t, ix)
}
