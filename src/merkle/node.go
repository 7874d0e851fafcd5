package merkle

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// Node is a hash plus per-asset sum vector. For an internal node
// balances[i] = left.balances[i] + right.balances[i], and every sum must fit
// the shape's balance width; overflow is a construction error, never a wrap.
type Node struct {
	Hash     fr.Element
	Balances []fr.Element
}

func combineNodes(left, right Node, level int, shape utils.Shape) (Node, error) {
	max := shape.MaxBalance()
	balances := make([]fr.Element, shape.AssetCount)
	for i := 0; i < shape.AssetCount; i++ {
		sum := new(big.Int).Add(
			left.Balances[i].BigInt(new(big.Int)),
			right.Balances[i].BigInt(new(big.Int)),
		)
		if sum.Cmp(max) > 0 {
			return Node{}, fmt.Errorf("level %d asset %d: summed balance exceeds %d bytes", level, i, shape.BalanceBytes)
		}
		balances[i].SetBigInt(sum)
	}
	return Node{
		Hash:     utils.HashNode(left.Hash, right.Hash),
		Balances: balances,
	}, nil
}

// BalanceWords returns the sums as canonical big-endian integers, the form
// dispatched on chain.
func (n Node) BalanceWords() []*big.Int {
	words := make([]*big.Int, len(n.Balances))
	for i := range n.Balances {
		words[i] = n.Balances[i].BigInt(new(big.Int))
	}
	return words
}
