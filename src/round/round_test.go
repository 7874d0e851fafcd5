package round_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreserve/zk-proof-of-solvency/circuit"
	"github.com/openreserve/zk-proof-of-solvency/src/merkle"
	"github.com/openreserve/zk-proof-of-solvency/src/round"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
	"github.com/openreserve/zk-proof-of-solvency/src/verifier"
)

const testTimestamp = uint64(1715000000)

type mockSigner struct {
	failures int
	calls    int

	rootHash  *big.Int
	rootSums  []*big.Int
	assets    []utils.AssetInfo
	timestamp uint64
}

func (m *mockSigner) SubmitCommitment(ctx context.Context, rootHash *big.Int, rootSums []*big.Int,
	assets []utils.AssetInfo, timestamp uint64) (common.Hash, error) {
	m.calls++
	if m.calls <= m.failures {
		return common.Hash{}, errors.New("rpc unreachable")
	}
	m.rootHash = rootHash
	m.rootSums = rootSums
	m.assets = assets
	m.timestamp = timestamp
	return common.HexToHash("0x01"), nil
}

func testShape() utils.Shape {
	return utils.Shape{Levels: 4, AssetCount: 2, BalanceBytes: 14}
}

func buildTestTree(t *testing.T) *merkle.InMemoryTree {
	t.Helper()
	shape := testShape()
	entries := make([]merkle.Entry, shape.MaxLeaves())
	for i := range entries {
		entry, err := merkle.NewEntry(
			fmt.Sprintf("user_%02d", i),
			[]*big.Int{
				big.NewInt(int64(11888 + 13*i)),
				big.NewInt(int64(41163 + 7*i)),
			},
			shape,
		)
		require.NoError(t, err)
		entries[i] = entry
	}
	tree, err := merkle.NewInMemoryTree(shape, entries)
	require.NoError(t, err)
	return tree
}

func writeAssetCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.csv")
	content := "chain,asset_name,amount\n" +
		"ethereum,ETH,1000000\n" +
		"ethereum,USDT,25000000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Setup is the dominant cost, so every test shares one round built over
// insecure in-process parameters.
var (
	buildOnce  sync.Once
	sharedTree *merkle.InMemoryTree
	sharedMock *mockSigner
	testRound  *round.Round
	buildErr   error
)

func sharedRound(t *testing.T) (*round.Round, *merkle.InMemoryTree, *mockSigner) {
	t.Helper()
	buildOnce.Do(func() {
		sharedTree = buildTestTree(t)
		sharedMock = &mockSigner{}
		testRound, buildErr = round.BuildRound(sharedMock, sharedTree, writeAssetCSV(t), nil, testTimestamp)
	})
	require.NoError(t, buildErr)
	return testRound, sharedTree, sharedMock
}

func TestDispatchCommitment(t *testing.T) {
	r, tree, mock := sharedRound(t)
	require.NoError(t, r.DispatchCommitment(context.Background()))

	root := tree.Root()
	assert.Equal(t, 0, root.Hash.BigInt(new(big.Int)).Cmp(mock.rootHash))
	require.Len(t, mock.rootSums, 2)
	for i, word := range root.BalanceWords() {
		assert.Equal(t, 0, word.Cmp(mock.rootSums[i]), "asset %d", i)
	}
	assert.Equal(t, testTimestamp, mock.timestamp)
	require.Len(t, mock.assets, 2)
	assert.Equal(t, "ETH", mock.assets[0].Name)
}

func TestProveInclusionPublicInputs(t *testing.T) {
	r, tree, _ := sharedRound(t)
	proof, err := r.ProveInclusion(0)
	require.NoError(t, err)
	require.Len(t, proof.PublicInputs, testShape().PublicInputCount())
	assert.NotEmpty(t, proof.ProofCalldata)

	entry, err := tree.GetEntry(0)
	require.NoError(t, err)
	leaf, err := entry.ComputeLeaf()
	require.NoError(t, err)
	root := tree.Root()

	assert.Equal(t, 0, leaf.Hash.BigInt(new(big.Int)).Cmp(proof.PublicInputs[0]), "leaf hash word")
	assert.Equal(t, 0, root.Hash.BigInt(new(big.Int)).Cmp(proof.PublicInputs[1]), "root hash word")
	for i, word := range root.BalanceWords() {
		assert.Equal(t, 0, word.Cmp(proof.PublicInputs[2+i]), "root sum word %d", i)
	}
}

func TestProveInclusionOutOfRange(t *testing.T) {
	r, tree, _ := sharedRound(t)
	_, err := r.ProveInclusion(tree.LeafCount())
	assert.ErrorIs(t, err, merkle.ErrIndexOutOfRange)
	_, err = r.ProveInclusion(-1)
	assert.ErrorIs(t, err, merkle.ErrIndexOutOfRange)

	// The snapshot stays valid after a bad request.
	_, err = r.ProveInclusion(1)
	assert.NoError(t, err)
}

func TestCheckAgainstCommitment(t *testing.T) {
	r, tree, _ := sharedRound(t)
	proof, err := r.ProveInclusion(3)
	require.NoError(t, err)

	root := tree.Root()
	commitment := verifier.Commitment{
		RootHash:  root.Hash.BigInt(new(big.Int)),
		RootSums:  root.BalanceWords(),
		Timestamp: testTimestamp,
	}
	assert.NoError(t, verifier.CheckAgainstCommitment(proof, commitment, testShape()))

	tampered := commitment
	tampered.RootHash = big.NewInt(1000)
	assert.Error(t, verifier.CheckAgainstCommitment(proof, tampered, testShape()))
}

func TestWireProofVerifies(t *testing.T) {
	r, tree, _ := sharedRound(t)
	snapshot := r.Snapshot()

	merkleProof, err := tree.GenerateProof(5)
	require.NoError(t, err)
	entry, err := tree.GetEntry(5)
	require.NoError(t, err)
	witness, err := circuit.NewInclusionWitness(testShape(), entry, merkleProof)
	require.NoError(t, err)

	proofBytes, err := snapshot.System().Prove(snapshot.Artifacts(), witness)
	require.NoError(t, err)

	leaf, err := entry.ComputeLeaf()
	require.NoError(t, err)
	root := tree.Root()
	publicInputs := append(
		[]*big.Int{leaf.Hash.BigInt(new(big.Int)), root.Hash.BigInt(new(big.Int))},
		root.BalanceWords()...,
	)
	assert.NoError(t, verifier.VerifyWireProof(snapshot.System(), snapshot.Artifacts(), proofBytes, publicInputs))

	// An arbitrary unrelated root hash in the instance must not verify.
	tampered := append([]*big.Int{}, publicInputs...)
	tampered[1] = big.NewInt(987654321)
	assert.Error(t, verifier.VerifyWireProof(snapshot.System(), snapshot.Artifacts(), proofBytes, tampered))

	short := publicInputs[:2]
	assert.Error(t, verifier.VerifyWireProof(snapshot.System(), snapshot.Artifacts(), proofBytes, short))
}

func TestDispatchFailureIsRetryable(t *testing.T) {
	tree := buildTestTree(t)
	mock := &mockSigner{failures: 1}
	r, err := round.BuildRound(mock, tree, writeAssetCSV(t), nil, testTimestamp)
	require.NoError(t, err)

	err = r.DispatchCommitment(context.Background())
	assert.ErrorIs(t, err, round.ErrDispatchFailed)

	// The snapshot survives a failed dispatch; a plain retry succeeds.
	require.NoError(t, r.DispatchCommitment(context.Background()))
	assert.Equal(t, testTimestamp, mock.timestamp)
}
