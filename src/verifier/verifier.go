// Package verifier implements the user-side check of a portable inclusion
// proof against the commitment published for a round.
package verifier

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/openreserve/zk-proof-of-solvency/src/prover"
	"github.com/openreserve/zk-proof-of-solvency/src/round"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// Commitment is the publicly posted tree commitment for one round timestamp.
type Commitment struct {
	RootHash  *big.Int
	RootSums  []*big.Int
	Timestamp uint64
}

// CheckAgainstCommitment validates a portable proof's public instance against
// the published commitment: the instance must carry exactly 2+K words with
// the committed root hash and per-asset sums in positions [1] and [2..]. The
// calldata itself is checked by the on-chain verifier contract.
func CheckAgainstCommitment(proof *round.UserProof, commitment Commitment, shape utils.Shape) error {
	if len(proof.PublicInputs) != shape.PublicInputCount() {
		return fmt.Errorf("public instance holds %d words, shape requires %d",
			len(proof.PublicInputs), shape.PublicInputCount())
	}
	if len(commitment.RootSums) != shape.AssetCount {
		return fmt.Errorf("commitment holds %d sums, shape requires %d",
			len(commitment.RootSums), shape.AssetCount)
	}
	if len(proof.ProofCalldata) == 0 {
		return errors.New("empty proof calldata")
	}
	if proof.PublicInputs[1].Cmp(commitment.RootHash) != 0 {
		return fmt.Errorf("root hash %s does not match committed root %s",
			proof.PublicInputs[1].Text(16), commitment.RootHash.Text(16))
	}
	for i := 0; i < shape.AssetCount; i++ {
		if proof.PublicInputs[2+i].Cmp(commitment.RootSums[i]) != 0 {
			return fmt.Errorf("root sum %d does not match committed sum", i)
		}
	}
	return nil
}

// VerifyWireProof cryptographically verifies a wire-format proof off chain,
// for deployments that hand users raw proof bytes next to the calldata.
func VerifyWireProof(system prover.ProofSystem, artifacts *prover.SetupArtifacts,
	proofBytes []byte, publicInputs []*big.Int) error {
	return system.Verify(artifacts, proofBytes, publicInputs)
}
