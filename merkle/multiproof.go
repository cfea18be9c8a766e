package merkle

import (
	"sort"

	"github.com/btcprim/btcprim/infrastructure/logger"
	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/util/hashes"
)

// Flag tells the verifier where the two operands of one combine step come
// from. "hash" is the next unconsumed entry of the verifier's growing hash
// list and "proof" the next entry of the proof.
type Flag uint8

// These constants define the combine orders a Flag can hold.
const (
	// FlagSelf combines the next hash with itself: the last node of an
	// odd-length layer.
	FlagSelf Flag = iota

	// FlagProofHash combines a proof entry on the left with the next hash.
	FlagProofHash

	// FlagHashProof combines the next hash with a proof entry on the right.
	FlagHashProof

	// FlagHashHash combines the next two hashes.
	FlagHashHash
)

var flagStrings = map[Flag]string{
	FlagSelf:      "hash||hash(self)",
	FlagProofHash: "proof||hash",
	FlagHashProof: "hash||proof",
	FlagHashHash:  "hash||hash",
}

func (f Flag) String() string {
	if s, ok := flagStrings[f]; ok {
		return s
	}
	return "unknown"
}

func flagFor(isLeft, pairIsHash bool) Flag {
	switch {
	case isLeft && pairIsHash:
		return FlagHashHash
	case isLeft:
		return FlagHashProof
	case !pairIsHash:
		return FlagProofHash
	default:
		return FlagSelf
	}
}

// MultiProof proves that the leaves at TargetIndices belong to the tree with
// Root. TargetIndices are ascending and TargetLeaves follows their order.
type MultiProof struct {
	Root          endianbytes.EndianBytes
	TargetIndices []int
	TargetLeaves  []endianbytes.EndianBytes
	Proof         []endianbytes.EndianBytes
	Flags         []Flag
}

// GenerateMultiProof builds the proof hashes and flags for the leaves at
// targetIndices. The indices may come in any order but must be distinct.
func (t *Tree) GenerateMultiProof(targetIndices []int) (*MultiProof, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "GenerateMultiProof")
	defer onEnd()

	targets, err := t.checkTargets(targetIndices)
	if err != nil {
		return nil, err
	}

	proofCoordinates := t.proofCoordinates(targets)
	flags, err := DeriveFlags(t.depth, targets, proofCoordinates)
	if err != nil {
		return nil, err
	}

	multiProof := &MultiProof{
		Root:          t.Root(),
		TargetIndices: targets,
		TargetLeaves:  make([]endianbytes.EndianBytes, len(targets)),
		Proof:         make([]endianbytes.EndianBytes, len(proofCoordinates)),
		Flags:         flags,
	}
	for i, index := range targets {
		multiProof.TargetLeaves[i] = t.layers[0][index]
	}
	for i, c := range proofCoordinates {
		multiProof.Proof[i] = t.layers[c.Height][c.Index]
	}

	log.Debugf("Generated a multiproof for %d of %d leaves: %d proof hashes, %d flags",
		len(targets), t.LeafCount(), len(multiProof.Proof), len(flags))
	return multiProof, nil
}

// ProofCoordinates returns the coordinates of the proof hashes for the leaves
// at targetIndices, in the order the verifier consumes them.
func (t *Tree) ProofCoordinates(targetIndices []int) ([]Coordinate, error) {
	targets, err := t.checkTargets(targetIndices)
	if err != nil {
		return nil, err
	}
	return t.proofCoordinates(targets), nil
}

// proofCoordinates walks up from the targets breadth first, collecting the
// sibling of every visited node. Siblings the walk itself visits are computed
// by the verifier, so they're dropped afterwards.
func (t *Tree) proofCoordinates(targets []int) []Coordinate {
	if t.depth == 0 {
		return nil
	}

	queue := newCoordinateQueue(leafCoordinates(targets))
	var siblings []Coordinate
	for {
		c, ok := queue.pop()
		if !ok {
			break
		}
		sibling := c.Sibling()
		if t.contains(sibling) {
			siblings = append(siblings, sibling)
		}
		parent := c.Parent()
		if parent.Height == t.depth {
			break
		}
		queue.push(parent)
	}

	proof := make([]Coordinate, 0, len(siblings))
	for _, sibling := range siblings {
		if !queue.contains(sibling) {
			proof = append(proof, sibling)
		}
	}
	return proof
}

// DeriveFlags replays the breadth-first walk from the targets of a tree of
// the given depth and returns one flag per combine step. proofCoordinates
// must be in consumption order, as ProofCoordinates returns them.
func DeriveFlags(depth int, targetIndices []int, proofCoordinates []Coordinate) ([]Flag, error) {
	if depth < 0 {
		return nil, validationError("negative tree depth %d", depth)
	}
	targets, err := sortTargets(targetIndices)
	if err != nil {
		return nil, err
	}

	hashQueue := newCoordinateQueue(leafCoordinates(targets))
	proofQueue := newCoordinateQueue(proofCoordinates)
	var flags []Flag
	for {
		c, ok := hashQueue.pop()
		if !ok {
			return nil, validationError("ran out of nodes below height %d", depth)
		}
		if c.Height == depth {
			break
		}

		isLeft := c.IsLeft()
		pairIsHash := true
		sibling := c.Sibling()
		switch {
		case proofQueue.contains(sibling):
			next, _ := proofQueue.peek()
			if next != sibling {
				return nil, validationError("proof coordinate %s is out of order, expected %s", next, sibling)
			}
			proofQueue.pop()
			pairIsHash = false
		case hashQueue.contains(sibling):
			next, _ := hashQueue.peek()
			if next != sibling {
				return nil, validationError("node %s is paired out of order with %s", sibling, c)
			}
			hashQueue.pop()
		default:
			// c is the last node of an odd-length layer.
			isLeft = false
		}

		hashQueue.push(c.Parent())
		flags = append(flags, flagFor(isLeft, pairIsHash))
	}
	return flags, nil
}

// VerifyMultiProof replays flags over targetLeaves and proof and reports
// whether the result is root. A proof that simply doesn't match, including
// one that runs out of hashes, returns false. Malformed input, such as a
// flag above FlagHashHash or a root of the wrong length, returns a
// ValidationError.
func VerifyMultiProof(root endianbytes.EndianBytes, targetLeaves []endianbytes.EndianBytes,
	proof []endianbytes.EndianBytes, flags []Flag) (bool, error) {

	if root.Len() != hashes.HashSize {
		return false, validationError("root is %d bytes, want %d", root.Len(), hashes.HashSize)
	}
	for i, flag := range flags {
		if flag > FlagHashHash {
			return false, validationError("flag %d has unknown value %d", i, flag)
		}
	}

	nodes := make([]endianbytes.EndianBytes, len(targetLeaves), len(targetLeaves)+len(flags))
	copy(nodes, targetLeaves)
	hashPos, proofPos := 0, 0
	nextHash := func() (endianbytes.EndianBytes, bool) {
		if hashPos >= len(nodes) {
			return endianbytes.EndianBytes{}, false
		}
		hashPos++
		return nodes[hashPos-1], true
	}
	nextProof := func() (endianbytes.EndianBytes, bool) {
		if proofPos >= len(proof) {
			return endianbytes.EndianBytes{}, false
		}
		proofPos++
		return proof[proofPos-1], true
	}

	for i, flag := range flags {
		var left, right endianbytes.EndianBytes
		var leftOK, rightOK bool
		switch flag {
		case FlagSelf:
			left, leftOK = nextHash()
			right, rightOK = left, leftOK
		case FlagProofHash:
			left, leftOK = nextProof()
			right, rightOK = nextHash()
		case FlagHashProof:
			left, leftOK = nextHash()
			right, rightOK = nextProof()
		case FlagHashHash:
			left, leftOK = nextHash()
			right, rightOK = nextHash()
		}
		if !leftOK || !rightOK {
			log.Debugf("Multiproof exhausted its hashes at flag %d (%s)", i, flag)
			return false, nil
		}
		nodes = append(nodes, HashMerkleBranches(left, right))
	}

	if len(nodes) == 0 {
		return false, nil
	}
	return nodes[len(nodes)-1] == root, nil
}

// Verify checks p against its own root.
func (p *MultiProof) Verify() (bool, error) {
	return VerifyMultiProof(p.Root, p.TargetLeaves, p.Proof, p.Flags)
}

// checkTargets sorts a copy of targetIndices and checks every index names a
// leaf.
func (t *Tree) checkTargets(targetIndices []int) ([]int, error) {
	targets, err := sortTargets(targetIndices)
	if err != nil {
		return nil, err
	}
	for _, index := range targets {
		if index < 0 || index >= t.LeafCount() {
			return nil, boundsError(Coordinate{Height: 0, Index: index},
				"no such leaf in a tree of %d leaves", t.LeafCount())
		}
	}
	return targets, nil
}

func sortTargets(targetIndices []int) ([]int, error) {
	if len(targetIndices) == 0 {
		return nil, validationError("no target leaves requested")
	}
	targets := append([]int(nil), targetIndices...)
	sort.Ints(targets)
	for i := 1; i < len(targets); i++ {
		if targets[i] == targets[i-1] {
			return nil, validationError("target leaf %d requested more than once", targets[i])
		}
	}
	return targets, nil
}

func leafCoordinates(indices []int) []Coordinate {
	coordinates := make([]Coordinate, len(indices))
	for i, index := range indices {
		coordinates[i] = Coordinate{Height: 0, Index: index}
	}
	return coordinates
}
