package merkle

// Proof is an immutable inclusion path for one leaf index. PathIndices[i] is 0
// when the running node is the left child at level i, 1 when it is the right
// child.
type Proof struct {
	Leaf        Node
	Siblings    []Node
	PathIndices []uint8
	Root        Node
}
