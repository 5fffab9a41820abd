package indexer1

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTPClient struct {
	chainID uint64
	head    uint64
	headErr error

	logsErr error
	// recorded FilterLogs calls, for range-limit assertions
	calls []ethereum.FilterQuery
}

func (f *fakeHTTPClient) ChainID(ctx context.Context) (uint64, error) { return f.chainID, nil }

func (f *fakeHTTPClient) HeadBlockNumber(ctx context.Context, level FinalityLevel) (uint64, error) {
	return f.head, f.headErr
}

func (f *fakeHTTPClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	f.calls = append(f.calls, query)
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return nil, nil
}

type fakeStorage struct {
	insertErr error
	calls     []struct{ prev, new uint64 }
}

func (s *fakeStorage) GetOrCreateFilter(ctx context.Context, filter Filter, chainID uint64) (uint64, string, error) {
	return 0, "fake", nil
}

func (s *fakeStorage) InsertLogs(ctx context.Context, chainID uint64, logs []types.Log, filterID string, prevBlock, newBlock uint64, processor Processor[int]) error {
	s.calls = append(s.calls, struct{ prev, new uint64 }{prevBlock, newBlock})
	return s.insertErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleTick_ReachesLatestWhenAlreadyAtHead(t *testing.T) {
	storage := &fakeStorage{}
	ix := &Indexer[int]{
		httpClient:        &fakeHTTPClient{head: 50},
		storage:           storage,
		lastObservedBlock: 50,
		filter:            Filter{},
		log:               testLogger(),
	}

	reachedLatest, err := ix.handleTick(context.Background())
	require.NoError(t, err)
	assert.True(t, reachedLatest)
	assert.Empty(t, storage.calls, "no fetch should happen when cursor already equals head")
}

func TestHandleTick_FetchesWholeRangeWithoutLimit(t *testing.T) {
	storage := &fakeStorage{}
	ix := &Indexer[int]{
		httpClient:        &fakeHTTPClient{head: 100},
		storage:           storage,
		lastObservedBlock: 50,
		filter:            Filter{},
		log:               testLogger(),
	}

	reachedLatest, err := ix.handleTick(context.Background())
	require.NoError(t, err)
	assert.True(t, reachedLatest)
	require.Len(t, storage.calls, 1)
	assert.Equal(t, uint64(50), storage.calls[0].prev)
	assert.Equal(t, uint64(100), storage.calls[0].new)
	assert.Equal(t, uint64(100), ix.lastObservedBlock)
}

func TestHandleTick_ChunksAtBlockRangeLimit(t *testing.T) {
	storage := &fakeStorage{}
	limit := uint64(10)
	ix := &Indexer[int]{
		httpClient:        &fakeHTTPClient{head: 100},
		storage:           storage,
		lastObservedBlock: 50,
		blockRangeLimit:   &limit,
		filter:            Filter{},
		log:               testLogger(),
	}

	reachedLatest, err := ix.handleTick(context.Background())
	require.NoError(t, err)
	assert.False(t, reachedLatest, "did not reach head in one chunked tick")
	require.Len(t, storage.calls, 1)
	assert.Equal(t, uint64(50), storage.calls[0].prev)
	assert.Equal(t, uint64(61), storage.calls[0].new)
	assert.Equal(t, uint64(61), ix.lastObservedBlock)
}

func TestHandleTick_MultiTickCatchUpIsContiguous(t *testing.T) {
	storage := &fakeStorage{}
	limit := uint64(10)
	httpClient := &fakeHTTPClient{head: 85}
	ix := &Indexer[int]{
		httpClient:        httpClient,
		storage:           storage,
		lastObservedBlock: 50,
		blockRangeLimit:   &limit,
		filter:            Filter{},
		log:               testLogger(),
	}

	for {
		reachedLatest, err := ix.handleTick(context.Background())
		require.NoError(t, err)
		if reachedLatest {
			break
		}
	}

	assert.Equal(t, uint64(85), ix.lastObservedBlock)
	require.Len(t, storage.calls, 4)
	for i := 1; i < len(storage.calls); i++ {
		assert.Equal(t, storage.calls[i-1].new, storage.calls[i].prev, "ranges must be contiguous with no gap or overlap")
	}
}

func TestHandleTick_HeadErrorWrapsTransportHTTP(t *testing.T) {
	storage := &fakeStorage{}
	ix := &Indexer[int]{
		httpClient:        &fakeHTTPClient{headErr: errors.New("boom")},
		storage:           storage,
		lastObservedBlock: 0,
		filter:            Filter{},
		log:               testLogger(),
	}

	_, err := ix.handleTick(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportHTTP)
}

func TestHandleTick_StorageErrorAbortsWithoutAdvancingCursor(t *testing.T) {
	storage := &fakeStorage{insertErr: ErrStorage}
	ix := &Indexer[int]{
		httpClient:        &fakeHTTPClient{head: 10},
		storage:           storage,
		lastObservedBlock: 0,
		filter:            Filter{},
		log:               testLogger(),
	}

	_, err := ix.handleTick(context.Background())
	require.Error(t, err)
	assert.Equal(t, uint64(0), ix.lastObservedBlock, "cursor must not advance in memory when storage fails")
}
