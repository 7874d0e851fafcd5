package prover

import (
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

var (
	// ErrParamsSizeMismatch is fatal at setup time: the parameter source's
	// declared size does not match the circuit's requirement.
	ErrParamsSizeMismatch = errors.New("prover: universal params size mismatch")
)

// SetupArtifacts is the opaque proving/verifying material for one shape,
// built once per snapshot and shared read-only by every proof request.
type SetupArtifacts struct {
	Shape        utils.Shape
	LogSize      int
	CCS          constraint.ConstraintSystem
	ProvingKey   plonk.ProvingKey
	VerifyingKey plonk.VerifyingKey
}

// ProofSystem is the external proving-backend boundary: setup, proving,
// verification and on-chain calldata rendering for inclusion circuit
// instances.
type ProofSystem interface {
	// Setup compiles the shape's circuit and generates keys. A nil source
	// generates insecure in-process parameters, for tests and development
	// only; a real source's declared size must match the circuit's
	// requirement or setup fails with ErrParamsSizeMismatch.
	Setup(source ParamsSource, shape utils.Shape) (*SetupArtifacts, error)

	// Prove produces a wire-format proof for a full assignment.
	Prove(artifacts *SetupArtifacts, assignment frontend.Circuit) ([]byte, error)

	// Verify checks a wire-format proof against the 2+K public input words.
	Verify(artifacts *SetupArtifacts, proof []byte, publicInputs []*big.Int) error

	// RenderCalldata proves the assignment and renders the proof as
	// calldata for the on-chain verifier, together with the public inputs
	// as 256-bit words in circuit order.
	RenderCalldata(artifacts *SetupArtifacts, assignment frontend.Circuit) (calldata []byte, publicInputs []*big.Int, err error)

	// ExportVerifier writes the Solidity verifier contract bound to the
	// verifying key.
	ExportVerifier(artifacts *SetupArtifacts, w io.Writer) error
}

// RequiredLogSize is the row count, as a power-of-two exponent, the compiled
// circuit demands from the universal parameters.
func RequiredLogSize(ccs constraint.ConstraintSystem) int {
	size := ccs.GetNbConstraints() + ccs.GetNbPublicVariables()
	logSize := 0
	for 1<<uint(logSize) < size {
		logSize++
	}
	return logSize
}
