package merkle

import (
	"fmt"
)

// Coordinate addresses a node of a Tree. Height 0 is the leaf layer.
type Coordinate struct {
	Height int
	Index  int
}

// Parent returns the coordinate of the node c hashes into.
func (c Coordinate) Parent() Coordinate {
	return Coordinate{Height: c.Height + 1, Index: c.Index / 2}
}

// Sibling returns the coordinate c is paired with. It may lie outside the
// tree when c is the last node of an odd-length layer.
func (c Coordinate) Sibling() Coordinate {
	return Coordinate{Height: c.Height, Index: c.Index ^ 1}
}

// IsLeft returns true if c is the left operand of its pair.
func (c Coordinate) IsLeft() bool {
	return c.Index%2 == 0
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.Height, c.Index)
}

// coordinateQueue is a FIFO of coordinates where each coordinate can only
// ever be pushed once. Membership covers popped entries too.
type coordinateQueue struct {
	items  []Coordinate
	cursor int
	seen   map[Coordinate]struct{}
}

func newCoordinateQueue(initial []Coordinate) *coordinateQueue {
	q := &coordinateQueue{
		items: make([]Coordinate, 0, len(initial)),
		seen:  make(map[Coordinate]struct{}, len(initial)),
	}
	for _, c := range initial {
		q.push(c)
	}
	return q
}

// push appends c unless it was pushed before, and reports whether it did.
func (q *coordinateQueue) push(c Coordinate) bool {
	if q.contains(c) {
		return false
	}
	q.seen[c] = struct{}{}
	q.items = append(q.items, c)
	return true
}

func (q *coordinateQueue) pop() (Coordinate, bool) {
	if q.isEmpty() {
		return Coordinate{}, false
	}
	c := q.items[q.cursor]
	q.cursor++
	return c, true
}

func (q *coordinateQueue) peek() (Coordinate, bool) {
	if q.isEmpty() {
		return Coordinate{}, false
	}
	return q.items[q.cursor], true
}

func (q *coordinateQueue) contains(c Coordinate) bool {
	_, ok := q.seen[c]
	return ok
}

func (q *coordinateQueue) isEmpty() bool {
	return q.cursor == len(q.items)
}
