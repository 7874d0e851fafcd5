package merkle

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// Entry is one user's identity plus per-asset balance vector. Balances are
// validated against the shape's byte width at construction time.
type Entry struct {
	Account  string
	Balances []*big.Int
}

func NewEntry(account string, balances []*big.Int, shape utils.Shape) (Entry, error) {
	if len(account) > utils.MaxAccountBytes {
		return Entry{}, fmt.Errorf("entry %q: identifier exceeds %d bytes", account, utils.MaxAccountBytes)
	}
	if len(balances) != shape.AssetCount {
		return Entry{}, fmt.Errorf("entry %q: %d balances, shape requires %d", account, len(balances), shape.AssetCount)
	}
	max := shape.MaxBalance()
	for i, b := range balances {
		if b == nil || b.Sign() < 0 {
			return Entry{}, fmt.Errorf("entry %q: balance %d is negative or missing", account, i)
		}
		if b.Cmp(max) > 0 {
			return Entry{}, fmt.Errorf("entry %q: balance %d exceeds %d bytes", account, i, shape.BalanceBytes)
		}
	}
	return Entry{Account: account, Balances: balances}, nil
}

// EmptyEntry pads the tree up to its fixed 2^levels leaf capacity.
func EmptyEntry(shape utils.Shape) Entry {
	balances := make([]*big.Int, shape.AssetCount)
	for i := range balances {
		balances[i] = new(big.Int)
	}
	return Entry{Account: "", Balances: balances}
}

// BalanceElements converts the balance vector into field elements.
func (e Entry) BalanceElements() []fr.Element {
	elements := make([]fr.Element, len(e.Balances))
	for i, b := range e.Balances {
		elements[i].SetBigInt(b)
	}
	return elements
}

// ComputeLeaf derives the leaf node committed for this entry.
func (e Entry) ComputeLeaf() (Node, error) {
	account, err := utils.AccountToField(e.Account)
	if err != nil {
		return Node{}, err
	}
	balances := e.BalanceElements()
	return Node{
		Hash:     utils.HashLeaf(account, balances),
		Balances: balances,
	}, nil
}
