package prover

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kzg_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/consensys/gnark-crypto/kzg"
)

// ParamsSource is an addressable universal-parameter blob. The identifier
// encodes the supported circuit size as its trailing "-<log_size>" segment
// (e.g. "ppot-radix2-11"), which is compared against the compiled circuit's
// requirement before the blob is ever read.
type ParamsSource interface {
	Identifier() string
	DeclaredLogSize() int
	// Load returns the canonical and Lagrange-form SRS for 2^logSize rows.
	Load(logSize int) (srs kzg.SRS, srsLagrange kzg.SRS, err error)
}

// FileParamsSource reads a serialized BN254 KZG SRS from disk.
type FileParamsSource struct {
	path    string
	logSize int
}

func NewFileParamsSource(path string) (*FileParamsSource, error) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(name, "-")
	logSize, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || logSize <= 0 {
		return nil, fmt.Errorf("params file %q does not encode a log size", path)
	}
	return &FileParamsSource{path: path, logSize: logSize}, nil
}

func (s *FileParamsSource) Identifier() string { return s.path }

func (s *FileParamsSource) DeclaredLogSize() int { return s.logSize }

func (s *FileParamsSource) Load(logSize int) (kzg.SRS, kzg.SRS, error) {
	if logSize != s.logSize {
		return nil, nil, fmt.Errorf("%w: source %q declares 2^%d, requested 2^%d",
			ErrParamsSizeMismatch, s.Identifier(), s.logSize, logSize)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open params %s: %w", s.path, err)
	}
	defer f.Close()

	canonical := new(kzg_bn254.SRS)
	if _, err := canonical.ReadFrom(f); err != nil {
		return nil, nil, fmt.Errorf("read params %s: %w", s.path, err)
	}
	lagrange, err := toLagrange(canonical, logSize)
	if err != nil {
		return nil, nil, fmt.Errorf("params %s: %w", s.path, err)
	}
	return canonical, lagrange, nil
}

// toLagrange converts the first 2^logSize canonical powers into Lagrange
// basis, the second form plonk.Setup consumes. Setup commits to blinded
// polynomials of degree 2^logSize+2, so the canonical side must carry three
// points beyond the Lagrange size.
func toLagrange(canonical *kzg_bn254.SRS, logSize int) (*kzg_bn254.SRS, error) {
	size := 1 << uint(logSize)
	if len(canonical.Pk.G1) < size+3 {
		return nil, fmt.Errorf("srs holds %d points, need %d", len(canonical.Pk.G1), size+3)
	}
	points, err := kzg_bn254.ToLagrangeG1(canonical.Pk.G1[:size])
	if err != nil {
		return nil, err
	}
	lagrange := new(kzg_bn254.SRS)
	lagrange.Vk = canonical.Vk
	lagrange.Pk.G1 = points
	return lagrange, nil
}
