package prover

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/kzg"
	"github.com/consensys/gnark/backend/plonk"
	plonk_bn254 "github.com/consensys/gnark/backend/plonk/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"

	"github.com/openreserve/zk-proof-of-solvency/circuit"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// PlonkSystem implements ProofSystem on gnark PLONK over BN254 with KZG
// commitments, the universal-setup scheme the params sources feed.
type PlonkSystem struct{}

func NewPlonkSystem() *PlonkSystem { return &PlonkSystem{} }

func (p *PlonkSystem) Setup(source ParamsSource, shape utils.Shape) (*SetupArtifacts, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, circuit.NewInclusionCircuit(shape))
	if err != nil {
		return nil, fmt.Errorf("compile inclusion circuit (%s): %w", shape, err)
	}
	logSize := RequiredLogSize(ccs)

	var srs, srsLagrange kzg.SRS
	if source == nil {
		// Insecure in-process parameters: test and development path only.
		srs, srsLagrange, err = unsafekzg.NewSRS(ccs)
		if err != nil {
			return nil, fmt.Errorf("generate insecure srs: %w", err)
		}
	} else {
		if source.DeclaredLogSize() != logSize {
			return nil, fmt.Errorf("%w: source %q declares 2^%d, circuit requires 2^%d",
				ErrParamsSizeMismatch, source.Identifier(), source.DeclaredLogSize(), logSize)
		}
		srs, srsLagrange, err = source.Load(logSize)
		if err != nil {
			return nil, err
		}
	}

	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, fmt.Errorf("plonk setup: %w", err)
	}
	return &SetupArtifacts{
		Shape:        shape,
		LogSize:      logSize,
		CCS:          ccs,
		ProvingKey:   pk,
		VerifyingKey: vk,
	}, nil
}

func (p *PlonkSystem) Prove(artifacts *SetupArtifacts, assignment frontend.Circuit) ([]byte, error) {
	proof, err := p.prove(artifacts, assignment)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PlonkSystem) Verify(artifacts *SetupArtifacts, proofBytes []byte, publicInputs []*big.Int) error {
	if len(publicInputs) != artifacts.Shape.PublicInputCount() {
		return fmt.Errorf("public input vector holds %d words, circuit requires %d",
			len(publicInputs), artifacts.Shape.PublicInputCount())
	}
	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("deserialize proof: %w", err)
	}
	publicWitness, err := frontend.NewWitness(publicAssignment(artifacts.Shape, publicInputs),
		ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}
	return plonk.Verify(proof, artifacts.VerifyingKey, publicWitness)
}

func (p *PlonkSystem) RenderCalldata(artifacts *SetupArtifacts, assignment frontend.Circuit) ([]byte, []*big.Int, error) {
	proof, err := p.prove(artifacts, assignment)
	if err != nil {
		return nil, nil, err
	}
	bn254Proof, ok := proof.(*plonk_bn254.Proof)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected proof type %T", proof)
	}
	calldata := bn254Proof.MarshalSolidity()

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("build witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("extract public witness: %w", err)
	}
	vector, ok := publicWitness.Vector().(fr.Vector)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected witness vector type %T", publicWitness.Vector())
	}
	words := make([]*big.Int, len(vector))
	for i := range vector {
		words[i] = vector[i].BigInt(new(big.Int))
	}
	return calldata, words, nil
}

func (p *PlonkSystem) ExportVerifier(artifacts *SetupArtifacts, w io.Writer) error {
	return artifacts.VerifyingKey.ExportSolidity(w)
}

func (p *PlonkSystem) prove(artifacts *SetupArtifacts, assignment frontend.Circuit) (plonk.Proof, error) {
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := plonk.Prove(artifacts.CCS, artifacts.ProvingKey, witness)
	if err != nil {
		return nil, fmt.Errorf("plonk prove: %w", err)
	}
	return proof, nil
}

// publicAssignment rebuilds an assignment carrying only the public instance
// [leaf_hash, root_hash, root_balances...]; private wires stay zero, they are
// not collected for a public-only witness.
func publicAssignment(shape utils.Shape, publicInputs []*big.Int) *circuit.InclusionCircuit {
	a := circuit.NewInclusionCircuit(shape)
	a.LeafHash = publicInputs[0]
	a.RootHash = publicInputs[1]
	for i := 0; i < shape.AssetCount; i++ {
		a.RootBalances[i] = publicInputs[2+i]
	}
	return a
}
