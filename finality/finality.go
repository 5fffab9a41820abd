// Package finality defines the chain-head finality tag shared between the
// engine (package indexer1) and its RPC adapters (package rpcclient),
// kept separate so neither needs to import the other just for this type.
package finality

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

// Level selects which view of the chain head a tick reads before
// computing the next fetch window.
type Level int

const (
	// Finalized is the default: canonical, consensus-final blocks only.
	Finalized Level = iota
	Safe
	Latest
	Pending
)

func (l Level) String() string {
	switch l {
	case Finalized:
		return "finalized"
	case Safe:
		return "safe"
	case Latest:
		return "latest"
	case Pending:
		return "pending"
	default:
		return "finalized"
	}
}

// BlockNumberArg renders the level as the *big.Int go-ethereum's ethclient
// expects for HeaderByNumber: the negative tag constants from package rpc
// map to "finalized"/"safe"/"latest"/"pending" on the wire.
func (l Level) BlockNumberArg() *big.Int {
	switch l {
	case Safe:
		return big.NewInt(rpc.SafeBlockNumber.Int64())
	case Latest:
		return big.NewInt(rpc.LatestBlockNumber.Int64())
	case Pending:
		return big.NewInt(rpc.PendingBlockNumber.Int64())
	default:
		return big.NewInt(rpc.FinalizedBlockNumber.Int64())
	}
}
