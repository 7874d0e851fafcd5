package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// Signer is the chain-submission boundary: one operation, one outstanding
// call per invocation. Timeout and cancellation policy belong to the
// implementation and the caller's context, not to the round core.
type Signer interface {
	SubmitCommitment(ctx context.Context, rootHash *big.Int, rootSums []*big.Int,
		assets []utils.AssetInfo, timestamp uint64) (common.Hash, error)
}
