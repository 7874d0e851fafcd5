package circuit

import (
	"fmt"

	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/rangecheck"

	"github.com/openreserve/zk-proof-of-solvency/src/merkle"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// InclusionCircuit proves that one entry's leaf recomputes to the publicly
// committed sum-tree root with no additive overflow along the path. The public
// instance is exactly [LeafHash, RootHash, RootBalances[0..K]], in field
// declaration order.
type InclusionCircuit struct {
	LeafHash     Variable   `gnark:",public"`
	RootHash     Variable   `gnark:",public"`
	RootBalances []Variable `gnark:",public"`

	Account         Variable
	AccountBalances []Variable
	PathIndices     []Variable
	SiblingHashes   []Variable
	SiblingBalances [][]Variable

	// BalanceBits is a compile-time shape parameter, not a witness value.
	BalanceBits int
}

// NewInclusionCircuit allocates a circuit of the given shape, with all wires
// zeroed. Used for compilation and key generation, where only the dimensions
// matter.
func NewInclusionCircuit(shape utils.Shape) *InclusionCircuit {
	c := &InclusionCircuit{
		LeafHash:        0,
		RootHash:        0,
		RootBalances:    make([]Variable, shape.AssetCount),
		Account:         0,
		AccountBalances: make([]Variable, shape.AssetCount),
		PathIndices:     make([]Variable, shape.Levels),
		SiblingHashes:   make([]Variable, shape.Levels),
		SiblingBalances: make([][]Variable, shape.Levels),
		BalanceBits:     shape.BalanceBits(),
	}
	for i := 0; i < shape.AssetCount; i++ {
		c.RootBalances[i] = 0
		c.AccountBalances[i] = 0
	}
	for level := 0; level < shape.Levels; level++ {
		c.PathIndices[level] = 0
		c.SiblingHashes[level] = 0
		c.SiblingBalances[level] = make([]Variable, shape.AssetCount)
		for i := 0; i < shape.AssetCount; i++ {
			c.SiblingBalances[level][i] = 0
		}
	}
	return c
}

// NewInclusionWitness fills a full assignment from an entry and its Merkle
// proof. The entry is taken as-is: any inconsistency with the proof surfaces
// as a constraint violation, not as a construction error here.
func NewInclusionWitness(shape utils.Shape, entry merkle.Entry, proof merkle.Proof) (*InclusionCircuit, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(proof.Siblings) != shape.Levels || len(proof.PathIndices) != shape.Levels {
		return nil, fmt.Errorf("proof depth %d does not match shape (%s)", len(proof.Siblings), shape)
	}
	if len(proof.Root.Balances) != shape.AssetCount || len(entry.Balances) != shape.AssetCount {
		return nil, fmt.Errorf("balance vector does not match shape (%s)", shape)
	}
	account, err := utils.AccountToField(entry.Account)
	if err != nil {
		return nil, err
	}

	w := NewInclusionCircuit(shape)
	w.LeafHash = proof.Leaf.Hash
	w.RootHash = proof.Root.Hash
	for i := 0; i < shape.AssetCount; i++ {
		w.RootBalances[i] = proof.Root.Balances[i]
		w.AccountBalances[i] = entry.Balances[i]
	}
	w.Account = account
	for level := 0; level < shape.Levels; level++ {
		w.PathIndices[level] = proof.PathIndices[level]
		w.SiblingHashes[level] = proof.Siblings[level].Hash
		for i := 0; i < shape.AssetCount; i++ {
			w.SiblingBalances[level][i] = proof.Siblings[level].Balances[i]
		}
	}
	return w, nil
}

func (c *InclusionCircuit) Define(api API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	r := rangecheck.New(api)

	// Leaf binding: the witness entry must hash to the public leaf hash.
	leaf := HashEntryLeaf(&h, c.Account, c.AccountBalances)
	api.AssertIsEqual(leaf, c.LeafHash)

	for i := 0; i < len(c.AccountBalances); i++ {
		CheckValueInRange(r, c.AccountBalances[i], c.BalanceBits)
	}

	rootHash, rootBalances := ComputeMerkleSumRoot(api, &h, r,
		leaf, c.AccountBalances,
		c.SiblingHashes, c.SiblingBalances, c.PathIndices, c.BalanceBits)

	// Root binding.
	api.AssertIsEqual(rootHash, c.RootHash)
	for i := 0; i < len(rootBalances); i++ {
		api.AssertIsEqual(rootBalances[i], c.RootBalances[i])
	}
	return nil
}
