package merkle

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// ErrIndexOutOfRange is the request-scoped error for a user index that does
// not name a populated leaf. It never invalidates the tree.
var ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

// Tree is the abstract sum-tree capability. InMemoryTree is the canonical
// implementation; PersistedTree layers a MySQL archive behind the same
// interface.
type Tree interface {
	Shape() utils.Shape
	Root() Node
	LeafCount() int
	GetEntry(index int) (Entry, error)
	GenerateProof(index int) (Proof, error)
}

// InMemoryTree owns all nodes level by level, built once bottom-up and never
// mutated afterwards. A new commitment requires building a new tree.
type InMemoryTree struct {
	shape      utils.Shape
	entries    []Entry
	numEntries int
	// levels[0] holds the 2^L leaves, levels[L] the single root.
	levels [][]Node
}

func NewInMemoryTree(shape utils.Shape, entries []Entry) (*InMemoryTree, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("merkle: no entries")
	}
	if len(entries) > shape.MaxLeaves() {
		return nil, fmt.Errorf("merkle: %d entries exceed capacity %d", len(entries), shape.MaxLeaves())
	}
	for i := range entries {
		if len(entries[i].Balances) != shape.AssetCount {
			return nil, fmt.Errorf("merkle: entry %d does not match shape (%s)", i, shape)
		}
	}

	t := &InMemoryTree{
		shape:      shape,
		numEntries: len(entries),
		entries:    make([]Entry, shape.MaxLeaves()),
		levels:     make([][]Node, shape.Levels+1),
	}
	copy(t.entries, entries)
	for i := len(entries); i < shape.MaxLeaves(); i++ {
		t.entries[i] = EmptyEntry(shape)
	}

	if err := t.buildLeaves(); err != nil {
		return nil, err
	}
	if err := t.foldLevels(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *InMemoryTree) buildLeaves() error {
	leaves := make([]Node, t.shape.MaxLeaves())
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := range t.entries {
		i := i
		g.Go(func() error {
			leaf, err := t.entries[i].ComputeLeaf()
			if err != nil {
				return fmt.Errorf("leaf %d: %w", i, err)
			}
			leaves[i] = leaf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	t.levels[0] = leaves
	return nil
}

// foldLevels folds sibling pairs level by level. Pairs within a level are
// independent and computed in parallel; levels stay strictly sequential.
func (t *InMemoryTree) foldLevels() error {
	for level := 0; level < t.shape.Levels; level++ {
		current := t.levels[level]
		next := make([]Node, len(current)/2)
		g := new(errgroup.Group)
		g.SetLimit(runtime.NumCPU())
		for pair := 0; pair < len(next); pair++ {
			pair := pair
			g.Go(func() error {
				node, err := combineNodes(current[2*pair], current[2*pair+1], level, t.shape)
				if err != nil {
					return err
				}
				next[pair] = node
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		t.levels[level+1] = next
	}
	return nil
}

func (t *InMemoryTree) Shape() utils.Shape { return t.shape }

func (t *InMemoryTree) Root() Node { return t.levels[t.shape.Levels][0] }

// LeafCount is the number of populated (non-padding) leaves.
func (t *InMemoryTree) LeafCount() int { return t.numEntries }

func (t *InMemoryTree) GetEntry(index int) (Entry, error) {
	if index < 0 || index >= t.numEntries {
		return Entry{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, t.numEntries)
	}
	return t.entries[index], nil
}

// GenerateProof records the sibling node and the position bit at every level
// walking from the leaf at index up to the root.
func (t *InMemoryTree) GenerateProof(index int) (Proof, error) {
	if index < 0 || index >= t.numEntries {
		return Proof{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, t.numEntries)
	}
	siblings := make([]Node, t.shape.Levels)
	pathIndices := make([]uint8, t.shape.Levels)
	position := index
	for level := 0; level < t.shape.Levels; level++ {
		siblings[level] = t.levels[level][position^1]
		pathIndices[level] = uint8(position & 1)
		position >>= 1
	}
	return Proof{
		Leaf:        t.levels[0][index],
		Siblings:    siblings,
		PathIndices: pathIndices,
		Root:        t.Root(),
	}, nil
}
