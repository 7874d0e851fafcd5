package prover

import (
	"path/filepath"
	"testing"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	kzg_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

func TestFileParamsSourceLogSize(t *testing.T) {
	source, err := NewFileParamsSource("/var/lib/por/ppot-radix2-11")
	require.NoError(t, err)
	assert.Equal(t, 11, source.DeclaredLogSize())

	source, err = NewFileParamsSource("srs-bn254-18.bin")
	require.NoError(t, err)
	assert.Equal(t, 18, source.DeclaredLogSize())

	_, err = NewFileParamsSource("params.bin")
	assert.Error(t, err)
	_, err = NewFileParamsSource("srs-0")
	assert.Error(t, err)
}

// The canonical SRS must carry three points beyond 2^logSize for the blinded
// setup commitments; a file with exactly 2^logSize points is rejected at the
// boundary instead of failing inside plonk.Setup.
func TestToLagrangeRequiresBlindingPoints(t *testing.T) {
	canonical := new(kzg_bn254.SRS)
	canonical.Pk.G1 = make([]bn254.G1Affine, 1<<4)
	_, err := toLagrange(canonical, 4)
	assert.Error(t, err)
}

func TestFileParamsSourceLoadRejectsOtherSize(t *testing.T) {
	source, err := NewFileParamsSource("ppot-radix2-11")
	require.NoError(t, err)
	_, _, err = source.Load(12)
	assert.ErrorIs(t, err, ErrParamsSizeMismatch)
}

// The declared size is compared against the compiled circuit before the
// params file is ever opened, so an undersized source fails setup even when
// the path does not exist.
func TestSetupRejectsMismatchedParams(t *testing.T) {
	shape := utils.Shape{Levels: 4, AssetCount: 2, BalanceBytes: 14}
	source, err := NewFileParamsSource(filepath.Join(t.TempDir(), "ppot-radix2-5"))
	require.NoError(t, err)

	_, err = NewPlonkSystem().Setup(source, shape)
	assert.ErrorIs(t, err, ErrParamsSizeMismatch)
}

func TestSetupLogSizeCoversCircuit(t *testing.T) {
	shape := utils.Shape{Levels: 4, AssetCount: 2, BalanceBytes: 14}
	artifacts, err := NewPlonkSystem().Setup(nil, shape)
	require.NoError(t, err)

	size := artifacts.CCS.GetNbConstraints() + artifacts.CCS.GetNbPublicVariables()
	assert.GreaterOrEqual(t, 1<<uint(artifacts.LogSize), size)
	assert.Less(t, 1<<uint(artifacts.LogSize-1), size)
	assert.True(t, artifacts.Shape.Equal(shape))
}
