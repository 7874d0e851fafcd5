package utils

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Shape fixes the (levels, assets, balance width) triple of a deployment.
// Every construction boundary (tree build, circuit allocation, setup, CSV
// ingestion) validates against the same Shape and fails fast on mismatch.
type Shape struct {
	Levels       int `json:",default=4"`
	AssetCount   int `json:",default=2"`
	BalanceBytes int `json:",default=14"`
}

func DefaultShape() Shape {
	return Shape{
		Levels:       DefaultTreeLevels,
		AssetCount:   DefaultAssetCount,
		BalanceBytes: DefaultBalanceBytes,
	}
}

func (s Shape) Validate() error {
	if s.Levels <= 0 || s.Levels > 32 {
		return fmt.Errorf("shape: levels %d out of supported range [1, 32]", s.Levels)
	}
	if s.AssetCount <= 0 {
		return fmt.Errorf("shape: asset count %d must be positive", s.AssetCount)
	}
	// One extra bit of headroom keeps every per-level sum below the BN254
	// modulus, so an in-range sum can never alias a smaller field value.
	if s.BalanceBytes <= 0 || s.BalanceBytes*8 >= fr.Bits-1 {
		return fmt.Errorf("shape: balance width %d bytes does not fit the scalar field", s.BalanceBytes)
	}
	return nil
}

func (s Shape) Equal(other Shape) bool {
	return s == other
}

// MaxLeaves is 2^levels, the fixed leaf capacity of a tree of this shape.
func (s Shape) MaxLeaves() int {
	return 1 << uint(s.Levels)
}

// BalanceBits is the range-check width applied to every balance and every
// per-level sum.
func (s Shape) BalanceBits() int {
	return s.BalanceBytes * 8
}

// MaxBalance is 2^(8*BalanceBytes) - 1, the largest admissible balance or sum.
func (s Shape) MaxBalance() *big.Int {
	max := new(big.Int).Lsh(OneBigInt, uint(s.BalanceBits()))
	return max.Sub(max, OneBigInt)
}

// PublicInputCount is the fixed public instance length of the inclusion
// circuit: [leaf_hash, root_hash, root_balances[0..AssetCount]].
func (s Shape) PublicInputCount() int {
	return 2 + s.AssetCount
}

func (s Shape) String() string {
	return fmt.Sprintf("levels=%d assets=%d balance_bytes=%d", s.Levels, s.AssetCount, s.BalanceBytes)
}
