// Package sqlitestorage is the SQLite indexer1.Storage adapter, built on
// sqlx and mattn/go-sqlite3. It mirrors pgstorage's algorithm exactly;
// only placeholder syntax and column types differ between the two SQL
// trees.
package sqlitestorage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goware/superr"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" sqlx driver

	"github.com/0xsequence/indexer1"
	"github.com/0xsequence/indexer1/storage/sqlconv"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

func mustLoad(name string) string {
	b, err := sqlFiles.ReadFile("sql/" + name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

var (
	createFilterSQL    = mustLoad("create_filter.sql")
	getFilterSQL       = mustLoad("get_filter.sql")
	insertFilterSQL    = mustLoad("insert_filter.sql")
	incrementFilterSQL = mustLoad("increment_filter.sql")
)

// Storage implements indexer1.Storage[*sqlx.Tx] against SQLite.
type Storage struct {
	db *sqlx.DB
}

var _ indexer1.Storage[*sqlx.Tx] = (*Storage)(nil)

// New wraps an existing connection. Open one with sqlx.Connect("sqlite3", dsn).
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Open is a convenience constructor. dsn may be a file path or ":memory:".
//
// The pool is pinned to a single connection: SQLite's own locking doesn't
// compose with Go's connection pooling, and an in-memory dsn would
// otherwise hand back a distinct empty database per connection.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: connecting: %w", err))
	}
	db.SetMaxOpenConns(1)
	return New(db), nil
}

func (s *Storage) GetOrCreateFilter(ctx context.Context, filter indexer1.Filter, chainID uint64) (uint64, string, error) {
	if _, err := s.db.ExecContext(ctx, createFilterSQL); err != nil {
		return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: creating filters table: %w", err))
	}

	filterID := indexer1.FilterID(filter, chainID)

	var lastObservedBlock int64
	err := s.db.GetContext(ctx, &lastObservedBlock, getFilterSQL, filterID)
	switch {
	case err == nil:
		block, convErr := sqlconv.ToUint64(lastObservedBlock)
		if convErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("sqlitestorage: %w", convErr))
		}
		return block, filterID, nil

	case errors.Is(err, sql.ErrNoRows):
		fromBlock := filter.EffectiveFromBlock()
		seed, convErr := sqlconv.ToInt64(fromBlock)
		if convErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("sqlitestorage: %w", convErr))
		}
		filterJSON, jsonErr := json.Marshal(filter)
		if jsonErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: encoding filter: %w", jsonErr))
		}
		if _, err := s.db.ExecContext(ctx, insertFilterSQL, filterID, seed, filterJSON); err != nil {
			return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: inserting filter row: %w", err))
		}
		return fromBlock, filterID, nil

	default:
		return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: reading filter row: %w", err))
	}
}

func (s *Storage) InsertLogs(ctx context.Context, chainID uint64, logs []types.Log, filterID string, prevBlock, newBlock uint64, processor indexer1.Processor[*sqlx.Tx]) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: beginning transaction: %w", err))
	}
	defer tx.Rollback()

	delta, err := sqlconv.ToInt64(newBlock - prevBlock)
	if err != nil {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("sqlitestorage: %w", err))
	}

	if _, err := tx.ExecContext(ctx, incrementFilterSQL, delta, filterID); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: advancing cursor: %w", err))
	}

	if err := processor.Process(ctx, logs, tx, prevBlock, newBlock, chainID); err != nil {
		return superr.Wrap(indexer1.ErrProcessor, fmt.Errorf("sqlitestorage: processor: %w", err))
	}

	var committedBlock int64
	if err := tx.GetContext(ctx, &committedBlock, getFilterSQL, filterID); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: re-reading cursor: %w", err))
	}
	committed, err := sqlconv.ToUint64(committedBlock)
	if err != nil {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("sqlitestorage: %w", err))
	}
	if committed != newBlock {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("sqlitestorage: inconsistency in block commitment: want %d, got %d", newBlock, committed))
	}

	if err := tx.Commit(); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("sqlitestorage: committing: %w", err))
	}
	return nil
}
