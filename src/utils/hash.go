package utils

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Native MiMC hashing, the out-of-circuit counterpart of the gnark
// std/hash/mimc gadget. Leaf and internal hashing share one parameterization;
// the differing arities keep the preimage spaces apart.

// AccountToField embeds an account identifier into a field element, big-endian
// over its utf-8 bytes. Identifiers longer than 31 bytes do not fit.
func AccountToField(account string) (fr.Element, error) {
	var e fr.Element
	if len(account) > MaxAccountBytes {
		return e, fmt.Errorf("account identifier %q exceeds %d bytes", account, MaxAccountBytes)
	}
	e.SetBytes([]byte(account))
	return e, nil
}

// HashLeaf computes MiMC(account, balances[0], ..., balances[K-1]).
func HashLeaf(account fr.Element, balances []fr.Element) fr.Element {
	h := mimc.NewMiMC()
	b := account.Bytes()
	h.Write(b[:])
	for i := range balances {
		bb := balances[i].Bytes()
		h.Write(bb[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// HashNode computes MiMC(left, right) for an internal node.
func HashNode(left, right fr.Element) fr.Element {
	h := mimc.NewMiMC()
	lb := left.Bytes()
	rb := right.Bytes()
	h.Write(lb[:])
	h.Write(rb[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}
