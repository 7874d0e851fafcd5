package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// HashEntryLeaf recomputes the leaf commitment MiMC(account, balances...)
// inside the circuit, matching utils.HashLeaf.
func HashEntryLeaf(h *mimc.MiMC, account Variable, balances []Variable) Variable {
	h.Reset()
	h.Write(account)
	h.Write(balances...)
	return h.Sum()
}

// ComputeMerkleSumRoot folds the running (hash, balances) pair with the proof
// siblings level by level, leaf to root. Every level asserts the path bit is
// boolean, routes the pair through the algebraic conditional swap (bit 0 keeps
// the running node on the left), hashes the ordered pair and sums the balance
// wires. Each sibling balance is range-checked before it enters the sum and
// each sum after, so both addends stay below 2^balanceBits and the sum below
// 2^(balanceBits+1), far under the modulus; a sibling balance near the field
// order cannot wrap the sum back into range.
func ComputeMerkleSumRoot(api API, h *mimc.MiMC, r frontend.Rangechecker,
	hash Variable, balances []Variable,
	siblingHashes []Variable, siblingBalances [][]Variable,
	pathIndices []Variable, balanceBits int) (Variable, []Variable) {

	current := make([]Variable, len(balances))
	copy(current, balances)

	for level := 0; level < len(pathIndices); level++ {
		bit := pathIndices[level]
		api.AssertIsBoolean(bit)

		left := api.Select(bit, siblingHashes[level], hash)
		right := api.Select(bit, hash, siblingHashes[level])
		h.Reset()
		h.Write(left, right)
		hash = h.Sum()

		for i := 0; i < len(current); i++ {
			r.Check(siblingBalances[level][i], balanceBits)
			leftBalance := api.Select(bit, siblingBalances[level][i], current[i])
			rightBalance := api.Select(bit, current[i], siblingBalances[level][i])
			sum := api.Add(leftBalance, rightBalance)
			r.Check(sum, balanceBits)
			current[i] = sum
		}
	}
	return hash, current
}

// CheckValueInRange constrains value to balanceBits bits via the lookup-backed
// range checker.
func CheckValueInRange(r frontend.Rangechecker, value Variable, balanceBits int) {
	r.Check(value, balanceBits)
}
