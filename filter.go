package indexer1

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xsequence/indexer1/finality"
)

// FinalityLevel selects which view of the chain head handleTick reads
// before computing the next fetch window. Defined in package finality so
// both this package and package rpcclient can reference it without an
// import cycle.
type FinalityLevel = finality.Level

const (
	Finalized = finality.Finalized
	Safe      = finality.Safe
	Latest    = finality.Latest
	Pending   = finality.Pending
)

// Filter is the user-supplied log predicate: a contract address set plus
// up to four topic-position sets. Immutable for the engine's lifetime.
type Filter struct {
	Addresses []common.Address
	Topics    [4][]common.Hash

	// FromBlock is the block a virgin cursor is seeded at; the first block
	// indexed is FromBlock+1, so FromBlock itself is not indexed. Zero
	// means unset and defaults to 1 (see effectiveFromBlock).
	FromBlock uint64
}

func (f Filter) effectiveFromBlock() uint64 {
	return f.EffectiveFromBlock()
}

// EffectiveFromBlock is FromBlock with the zero-value default applied.
// Storage adapters use this to seed a virgin filter's cursor.
func (f Filter) EffectiveFromBlock() uint64 {
	if f.FromBlock == 0 {
		return 1
	}
	return f.FromBlock
}

// toQuery builds the concrete, numeric-range go-ethereum filter query for
// one tick's eth_getLogs call.
func (f Filter) toQuery(from, to uint64) ethereum.FilterQuery {
	query := f.toSubscriptionQuery()
	query.FromBlock = new(big.Int).SetUint64(from)
	query.ToBlock = new(big.Int).SetUint64(to)
	return query
}

// toSubscriptionQuery builds the address/topic predicate used for the
// live eth_subscribe("logs", ...) push stream, which has no block range
// of its own.
func (f Filter) toSubscriptionQuery() ethereum.FilterQuery {
	topics := make([][]common.Hash, len(f.Topics))
	copy(topics, f.Topics[:])
	for len(topics) > 0 && topics[len(topics)-1] == nil {
		topics = topics[:len(topics)-1]
	}
	return ethereum.FilterQuery{
		Addresses: f.Addresses,
		Topics:    topics,
	}
}
