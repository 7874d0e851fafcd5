package round

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/openreserve/zk-proof-of-solvency/src/merkle"
	"github.com/openreserve/zk-proof-of-solvency/src/prover"
	"github.com/openreserve/zk-proof-of-solvency/src/signer"
)

// ErrDispatchFailed wraps network or contract rejection during commitment
// dispatch. The round's snapshot is untouched, so the caller may retry the
// dispatch without rebuilding anything.
var ErrDispatchFailed = errors.New("round: commitment dispatch failed")

// Round binds a snapshot to a caller-supplied timestamp and a chain signer.
// The timestamp is the round's sole identity; uniqueness and monotonicity
// across rounds are the caller's responsibility.
type Round struct {
	timestamp uint64
	snapshot  *Snapshot
	signer    signer.Signer
}

func BuildRound(sg signer.Signer, tree merkle.Tree, assetCSVPath string, params prover.ParamsSource, timestamp uint64) (*Round, error) {
	snapshot, err := BuildSnapshot(tree, assetCSVPath, params)
	if err != nil {
		return nil, err
	}
	return &Round{
		timestamp: timestamp,
		snapshot:  snapshot,
		signer:    sg,
	}, nil
}

func (r *Round) Timestamp() uint64 { return r.timestamp }

func (r *Round) Snapshot() *Snapshot { return r.snapshot }

// DispatchCommitment submits (root hash, per-asset sums, asset descriptors,
// timestamp) through the signer, with the field elements rendered as
// canonical big-endian integers. One outstanding chain call per invocation;
// cancellation rides on ctx.
func (r *Round) DispatchCommitment(ctx context.Context) error {
	root := r.snapshot.Tree().Root()
	rootHash := root.Hash.BigInt(new(big.Int))
	rootSums := root.BalanceWords()

	txHash, err := r.signer.SubmitCommitment(ctx, rootHash, rootSums, r.snapshot.Assets(), r.timestamp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	logx.Infof("round %d: commitment dispatched, root=%s tx=%s", r.timestamp, rootHash.Text(16), txHash.Hex())
	return nil
}

// ProveInclusion issues the portable proof the user at userIndex self-verifies
// against the commitment published for this round's timestamp.
func (r *Round) ProveInclusion(userIndex int) (*UserProof, error) {
	return r.snapshot.ProveInclusion(userIndex)
}
