package round

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/openreserve/zk-proof-of-solvency/circuit"
	"github.com/openreserve/zk-proof-of-solvency/src/merkle"
	"github.com/openreserve/zk-proof-of-solvency/src/prover"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// UserProof is the portable inclusion artifact handed to one user, checked
// against the on-chain verifier and the commitment published for the matching
// round timestamp.
type UserProof struct {
	PublicInputs  []*big.Int    `json:"public_inputs"`
	ProofCalldata hexutil.Bytes `json:"proof_calldata"`
}

// Snapshot binds one sum tree to its attested asset descriptors and to one
// set of setup artifacts. Built once per round, read-only afterwards; the
// artifacts are shared by every ProveInclusion call to amortize setup.
type Snapshot struct {
	tree      merkle.Tree
	assets    []utils.AssetInfo
	artifacts *prover.SetupArtifacts
	system    prover.ProofSystem
}

// BuildSnapshot loads the attested reserves and generates the setup artifacts
// for the tree's shape. Any failure aborts: a partial snapshot is never
// returned. A nil params source generates insecure parameters (tests only).
func BuildSnapshot(tree merkle.Tree, assetCSVPath string, params prover.ParamsSource) (*Snapshot, error) {
	shape := tree.Shape()
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	assets, err := utils.ParseAssetCSV(assetCSVPath, shape)
	if err != nil {
		return nil, err
	}
	system := prover.NewPlonkSystem()
	artifacts, err := system.Setup(params, shape)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		tree:      tree,
		assets:    assets,
		artifacts: artifacts,
		system:    system,
	}, nil
}

// ProveInclusion generates the Merkle proof for one leaf, instantiates the
// inclusion circuit witness and renders on-chain calldata. An out-of-range
// index is a per-request error; the snapshot stays valid.
func (s *Snapshot) ProveInclusion(userIndex int) (*UserProof, error) {
	proof, err := s.tree.GenerateProof(userIndex)
	if err != nil {
		return nil, err
	}
	entry, err := s.tree.GetEntry(userIndex)
	if err != nil {
		return nil, err
	}
	witness, err := circuit.NewInclusionWitness(s.tree.Shape(), entry, proof)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userIndex, err)
	}
	calldata, publicInputs, err := s.system.RenderCalldata(s.artifacts, witness)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userIndex, err)
	}
	return &UserProof{
		PublicInputs:  publicInputs,
		ProofCalldata: calldata,
	}, nil
}

func (s *Snapshot) Tree() merkle.Tree { return s.tree }

func (s *Snapshot) Assets() []utils.AssetInfo { return s.assets }

func (s *Snapshot) Artifacts() *prover.SetupArtifacts { return s.artifacts }

func (s *Snapshot) System() prover.ProofSystem { return s.system }
