// Command indexer-watch runs a single indexer1.Indexer against a live RPC
// endpoint and logs every batch of matched logs to stderr. It exists to
// exercise the engine end-to-end against either storage backend; it is
// not part of the library's public surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/0xsequence/indexer1"
	"github.com/0xsequence/indexer1/storage/pgstorage"
	"github.com/0xsequence/indexer1/storage/sqlitestorage"
)

const VERSION = "v0.1"

var rootCmd = &cobra.Command{
	Use:   "indexer-watch",
	Short: "watch a contract's event logs and print them as they're indexed",
	RunE:  watch,
}

var flags struct {
	httpRPC    string
	wsRPC      string
	backend    string
	dsn        string
	addresses  []string
	topics     []string
	fromBlock  uint64
	blockRange uint64
	interval   time.Duration
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&flags.httpRPC, "http-rpc", os.Getenv("INDEXER_HTTP_RPC"), "http(s) JSON-RPC endpoint")
	rootCmd.Flags().StringVar(&flags.wsRPC, "ws-rpc", os.Getenv("INDEXER_WS_RPC"), "ws(s) JSON-RPC endpoint for live subscription (optional)")
	rootCmd.Flags().StringVar(&flags.backend, "backend", envOr("INDEXER_BACKEND", "sqlite"), "storage backend: postgres | sqlite")
	rootCmd.Flags().StringVar(&flags.dsn, "dsn", os.Getenv("INDEXER_DSN"), "storage DSN (defaults to a local file for sqlite)")
	rootCmd.Flags().StringSliceVar(&flags.addresses, "address", nil, "contract address to watch (repeatable)")
	rootCmd.Flags().StringSliceVar(&flags.topics, "topic0", nil, "topic0 event signature hash to watch (repeatable)")
	rootCmd.Flags().Uint64Var(&flags.fromBlock, "from-block", 0, "block the new cursor is seeded at; indexing starts at the block after it (0 = 1)")
	rootCmd.Flags().Uint64Var(&flags.blockRange, "block-range-limit", 2000, "per-tick range limit: a tick fetches at most this many blocks plus one")
	rootCmd.Flags().DurationVar(&flags.interval, "interval", 3*time.Second, "polling interval between ticks")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("indexer-watch", VERSION)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func watch(cmd *cobra.Command, args []string) error {
	if flags.httpRPC == "" {
		return fmt.Errorf("--http-rpc is required")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	storage, err := openStorage(ctx)
	if err != nil {
		return err
	}

	filter := indexer1.Filter{
		FromBlock: flags.fromBlock,
	}
	for _, a := range flags.addresses {
		filter.Addresses = append(filter.Addresses, common.HexToAddress(strings.TrimSpace(a)))
	}
	for _, t := range flags.topics {
		filter.Topics[0] = append(filter.Topics[0], common.HexToHash(strings.TrimSpace(t)))
	}

	processor := indexer1.ProcessorFunc[*sqlx.Tx](func(ctx context.Context, logs []types.Log, tx *sqlx.Tx, prevBlock, newBlock uint64, chainID uint64) error {
		for _, l := range logs {
			log.Info("indexer-watch: log", "block", l.BlockNumber, "address", l.Address, "tx", l.TxHash)
		}
		return nil
	})

	opts := []indexer1.Option[*sqlx.Tx]{
		indexer1.WithHTTPRPCURL[*sqlx.Tx](flags.httpRPC),
		indexer1.WithFilter[*sqlx.Tx](filter),
		indexer1.WithProcessor[*sqlx.Tx](processor),
		indexer1.WithStorage[*sqlx.Tx](storage),
		indexer1.WithFetchInterval[*sqlx.Tx](flags.interval),
		indexer1.WithBlockRangeLimit[*sqlx.Tx](flags.blockRange),
		indexer1.WithLogger[*sqlx.Tx](log),
	}
	if flags.wsRPC != "" {
		opts = append(opts, indexer1.WithWSRPCURL[*sqlx.Tx](flags.wsRPC))
	}

	ix, err := indexer1.New(opts...).Build(ctx)
	if err != nil {
		return fmt.Errorf("building indexer: %w", err)
	}

	log.Info("indexer-watch: starting", "chain_id", ix.ChainID(), "filter_id", ix.FilterID(), "last_observed_block", ix.LastObservedBlock())

	return ix.Run(ctx)
}

func openStorage(ctx context.Context) (indexer1.Storage[*sqlx.Tx], error) {
	switch flags.backend {
	case "postgres":
		dsn := flags.dsn
		if dsn == "" {
			return nil, fmt.Errorf("--dsn is required for the postgres backend")
		}
		return pgstorage.Open(ctx, dsn)

	case "sqlite":
		dsn := flags.dsn
		if dsn == "" {
			dsn = "indexer-watch.db"
		}
		return sqlitestorage.Open(ctx, dsn)

	default:
		return nil, fmt.Errorf("unknown --backend %q, want postgres or sqlite", flags.backend)
	}
}
