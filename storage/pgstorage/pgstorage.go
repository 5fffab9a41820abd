// Package pgstorage is the Postgres indexer1.Storage adapter, built on
// sqlx and the pgx/v5 stdlib driver.
package pgstorage

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

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" sqlx driver

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

// Storage implements indexer1.Storage[*sqlx.Tx] against Postgres.
type Storage struct {
	db *sqlx.DB
}

var _ indexer1.Storage[*sqlx.Tx] = (*Storage)(nil)

// New wraps an existing connection pool. Open one with
// sqlx.Connect("pgx", dsn).
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Open is a convenience constructor equivalent to sqlx.Connect("pgx", dsn)
// followed by New.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: connecting: %w", err))
	}
	return New(db), nil
}

// GetOrCreateFilter ensures the filters table exists, then looks up the
// row for this filter's fingerprint. A virgin filter is seeded with its
// cursor at EffectiveFromBlock, matching get_or_create_filter's original
// semantics: the first tick fetches from FromBlock+1, so FromBlock itself
// is never fetched.
func (s *Storage) GetOrCreateFilter(ctx context.Context, filter indexer1.Filter, chainID uint64) (uint64, string, error) {
	if _, err := s.db.ExecContext(ctx, createFilterSQL); err != nil {
		return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: creating filters table: %w", err))
	}

	filterID := indexer1.FilterID(filter, chainID)

	var lastObservedBlock int64
	err := s.db.GetContext(ctx, &lastObservedBlock, getFilterSQL, filterID)
	switch {
	case err == nil:
		block, convErr := sqlconv.ToUint64(lastObservedBlock)
		if convErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("pgstorage: %w", convErr))
		}
		return block, filterID, nil

	case errors.Is(err, sql.ErrNoRows):
		fromBlock := filter.EffectiveFromBlock()
		seed, convErr := sqlconv.ToInt64(fromBlock)
		if convErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("pgstorage: %w", convErr))
		}
		filterJSON, jsonErr := json.Marshal(filter)
		if jsonErr != nil {
			return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: encoding filter: %w", jsonErr))
		}
		if _, err := s.db.ExecContext(ctx, insertFilterSQL, filterID, seed, filterJSON); err != nil {
			return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: inserting filter row: %w", err))
		}
		return fromBlock, filterID, nil

	default:
		return 0, "", superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: reading filter row: %w", err))
	}
}

// InsertLogs advances the cursor and runs the caller's processor inside a
// single transaction, then re-reads the cursor before committing as a
// safety net against a concurrent writer racing the same filter row: the
// cursor is moved by a delta rather than an absolute set so two
// overlapping transactions compose instead of clobbering one another, and
// the read-back catches the case where they still disagree.
func (s *Storage) InsertLogs(ctx context.Context, chainID uint64, logs []types.Log, filterID string, prevBlock, newBlock uint64, processor indexer1.Processor[*sqlx.Tx]) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: beginning transaction: %w", err))
	}
	defer tx.Rollback()

	delta, err := sqlconv.ToInt64(newBlock - prevBlock)
	if err != nil {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("pgstorage: %w", err))
	}

	if _, err := tx.ExecContext(ctx, incrementFilterSQL, delta, filterID); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: advancing cursor: %w", err))
	}

	if err := processor.Process(ctx, logs, tx, prevBlock, newBlock, chainID); err != nil {
		return superr.Wrap(indexer1.ErrProcessor, fmt.Errorf("pgstorage: processor: %w", err))
	}

	var committedBlock int64
	if err := tx.GetContext(ctx, &committedBlock, getFilterSQL, filterID); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: re-reading cursor: %w", err))
	}
	committed, err := sqlconv.ToUint64(committedBlock)
	if err != nil {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("pgstorage: %w", err))
	}
	if committed != newBlock {
		return superr.Wrap(indexer1.ErrIntegrity, fmt.Errorf("pgstorage: inconsistency in block commitment: want %d, got %d", newBlock, committed))
	}

	if err := tx.Commit(); err != nil {
		return superr.Wrap(indexer1.ErrStorage, fmt.Errorf("pgstorage: committing: %w", err))
	}
	return nil
}
