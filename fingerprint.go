package indexer1

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// FilterID computes the stable, canonical fingerprint of a (chainID, filter)
// pair: a SHA-256 of the filter's big-endian-256 encoded fields, run a
// second time through keccak256. The double hash is historical (it matches
// FilterIds already persisted by earlier versions of this engine) and must
// not be "simplified" away.
//
// It is invariant under permutations of the address set and of each
// topic-position set, since both are sorted before hashing. The topic sets
// are concatenated with no position marker, so the same topics placed at a
// different position yield the same ID.
func FilterID(filter Filter, chainID uint64) string {
	h := sha256.New()

	h.Write(common.BigToHash(new(big.Int).SetUint64(chainID)).Bytes())
	h.Write(common.BigToHash(new(big.Int).SetUint64(filter.effectiveFromBlock())).Bytes())

	for _, topicSet := range filter.Topics {
		sorted := make([]common.Hash, len(topicSet))
		copy(sorted, topicSet)
		sort.Slice(sorted, func(i, j int) bool {
			return bytes.Compare(sorted[i].Bytes(), sorted[j].Bytes()) < 0
		})
		for _, topic := range sorted {
			h.Write(topic.Bytes())
		}
	}

	addresses := make([]common.Address, len(filter.Addresses))
	copy(addresses, filter.Addresses)
	sort.Slice(addresses, func(i, j int) bool {
		return bytes.Compare(addresses[i].Bytes(), addresses[j].Bytes()) < 0
	})
	for _, addr := range addresses {
		h.Write(common.LeftPadBytes(addr.Bytes(), 32))
	}

	digest := h.Sum(nil)
	id := crypto.Keccak256(digest)
	return fmt.Sprintf("0x%x", id)
}
