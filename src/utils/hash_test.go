package utils

import (
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
)

func TestAccountToField(t *testing.T) {
	a, err := AccountToField("alice")
	assert.NoError(t, err)
	b, err := AccountToField("bob")
	assert.NoError(t, err)
	assert.False(t, a.Equal(&b))

	again, err := AccountToField("alice")
	assert.NoError(t, err)
	assert.True(t, a.Equal(&again))

	_, err = AccountToField(strings.Repeat("x", MaxAccountBytes+1))
	assert.Error(t, err)
}

func TestHashNodeOrderMatters(t *testing.T) {
	var l, r fr.Element
	l.SetUint64(7)
	r.SetUint64(11)
	lr := HashNode(l, r)
	rl := HashNode(r, l)
	assert.False(t, lr.Equal(&rl))
}

func TestHashLeafBindsEveryInput(t *testing.T) {
	account, _ := AccountToField("alice")
	other, _ := AccountToField("bob")
	var b0, b1, b1x fr.Element
	b0.SetUint64(100)
	b1.SetUint64(200)
	b1x.SetUint64(201)

	base := HashLeaf(account, []fr.Element{b0, b1})
	diffAccount := HashLeaf(other, []fr.Element{b0, b1})
	diffBalance := HashLeaf(account, []fr.Element{b0, b1x})
	assert.False(t, base.Equal(&diffAccount))
	assert.False(t, base.Equal(&diffBalance))
}
