/*
Package merkle builds bitcoin merkle trees over transaction ids and produces
and checks compact multi-leaf inclusion proofs.

A Tree keeps every layer, leaves first, with the last node of an odd-length
layer paired with itself. A MultiProof for a set of leaves carries the sibling
hashes the verifier can't compute on its own, and one Flag per combine step
saying where the operands of that step come from:

	tree, err := merkle.NewTreeFromBigEndianHex(txIDs)
	proof, err := tree.GenerateMultiProof([]int{1, 5})
	ok, err := merkle.VerifyMultiProof(proof.Root, proof.TargetLeaves, proof.Proof, proof.Flags)

Verification needs only the proof; the tree that produced it isn't involved.
*/
package merkle

import (
	"math/bits"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/util/hashes"
)

// Tree is a bitcoin merkle tree. layers[0] holds the leaves and the last
// layer holds the root.
type Tree struct {
	layers [][]endianbytes.EndianBytes
	depth  int

	// index maps each node value to its first coordinate, lowest layer
	// first.
	index map[endianbytes.EndianBytes]Coordinate
}

// NewTree builds a tree over leaves, which are already hashed. Each leaf's
// little-endian view is the internal byte order used when combining.
func NewTree(leaves []endianbytes.EndianBytes) (*Tree, error) {
	for i, leaf := range leaves {
		if leaf.Len() != hashes.HashSize {
			return nil, validationError("leaf %d is %d bytes, want %d", i, leaf.Len(), hashes.HashSize)
		}
	}

	tree := &Tree{
		depth: treeDepth(len(leaves)),
		index: make(map[endianbytes.EndianBytes]Coordinate, 2*len(leaves)),
	}
	layer := append([]endianbytes.EndianBytes(nil), leaves...)
	tree.addLayer(layer)
	for height := 0; height < tree.depth; height++ {
		next := make([]endianbytes.EndianBytes, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			left := layer[i]
			right := left
			if i+1 < len(layer) {
				right = layer[i+1]
			}
			next = append(next, HashMerkleBranches(left, right))
		}
		tree.addLayer(next)
		layer = next
	}

	log.Tracef("Built merkle tree over %d leaves with depth %d", len(leaves), tree.depth)
	return tree, nil
}

// NewTreeFromBigEndianHex builds a tree over transaction ids in their
// display form, as block records list them.
func NewTreeFromBigEndianHex(txIDs []string) (*Tree, error) {
	leaves := make([]endianbytes.EndianBytes, len(txIDs))
	for i, txID := range txIDs {
		leaf, err := endianbytes.FromBigEndianHex(txID)
		if err != nil {
			return nil, validationError("leaf %d: %s", i, err)
		}
		leaves[i] = leaf
	}
	return NewTree(leaves)
}

func (t *Tree) addLayer(layer []endianbytes.EndianBytes) {
	height := len(t.layers)
	t.layers = append(t.layers, layer)
	for i, node := range layer {
		if _, ok := t.index[node]; !ok {
			t.index[node] = Coordinate{Height: height, Index: i}
		}
	}
}

// treeDepth returns the number of combine layers above n leaves: the bit
// length of n-1, and 0 for at most one leaf.
func treeDepth(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// HashMerkleBranches combines two nodes into their parent: the double hash
// of both little-endian views concatenated.
func HashMerkleBranches(left, right endianbytes.EndianBytes) endianbytes.EndianBytes {
	writer := hashes.NewDoubleHashWriter()
	writer.InfallibleWrite(left.LittleEndianBytes())
	writer.InfallibleWrite(right.LittleEndianBytes())
	return writer.Finalize()
}

// Depth returns the number of combine layers. The root sits at this height.
func (t *Tree) Depth() int {
	return t.depth
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return len(t.layers[0])
}

// LayerSize returns the number of nodes at height, or 0 outside the tree.
func (t *Tree) LayerSize(height int) int {
	if height < 0 || height >= len(t.layers) {
		return 0
	}
	return len(t.layers[height])
}

// Root returns the root of the tree. An empty tree's root is the all-zero
// hash, and a single leaf is its own root.
func (t *Tree) Root() endianbytes.EndianBytes {
	top := t.layers[len(t.layers)-1]
	if len(top) == 0 {
		return endianbytes.Zero(hashes.HashSize)
	}
	return top[0]
}

// Leaf returns the leaf at index.
func (t *Tree) Leaf(index int) (endianbytes.EndianBytes, error) {
	return t.Node(Coordinate{Height: 0, Index: index})
}

// Node returns the node at c.
func (t *Tree) Node(c Coordinate) (endianbytes.EndianBytes, error) {
	if !t.contains(c) {
		return endianbytes.EndianBytes{}, boundsError(c, "outside a tree of depth %d over %d leaves",
			t.depth, t.LeafCount())
	}
	return t.layers[c.Height][c.Index], nil
}

// CoordinateOf returns the lowest coordinate holding node.
func (t *Tree) CoordinateOf(node endianbytes.EndianBytes) (Coordinate, bool) {
	c, ok := t.index[node]
	return c, ok
}

func (t *Tree) contains(c Coordinate) bool {
	return c.Height >= 0 && c.Height < len(t.layers) && c.Index >= 0 && c.Index < len(t.layers[c.Height])
}
