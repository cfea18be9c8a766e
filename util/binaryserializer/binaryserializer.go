// Package binaryserializer reads and writes the fixed-width little-endian
// fields used throughout the Bitcoin wire format.
//
// Integer readers borrow their scratch buffers from a small free list so that
// parsing a large block doesn't allocate per field.
package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/pkg/errors"
)

// maxItems is the number of scratch buffers kept in the free list.
const maxItems = 1024

// scratchSize is the capacity of each free-list buffer, enough for a uint64.
const scratchSize = 8

var freeList = make(chan []byte, maxItems)

// Borrow returns an 8-byte buffer from the free list, allocating a new one
// when the list is empty.
func Borrow() []byte {
	var buf []byte
	select {
	case buf = <-freeList:
	default:
		buf = make([]byte, scratchSize)
	}
	return buf[:scratchSize]
}

// Return hands a buffer obtained through Borrow back to the free list.
func Return(buf []byte) {
	select {
	case freeList <- buf:
	default:
	}
}

func readScratch(r io.Reader, size int) ([]byte, error) {
	buf := Borrow()[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		Return(buf)
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

// Uint8 reads a single byte.
func Uint8(r io.Reader) (uint8, error) {
	buf, err := readScratch(r, 1)
	if err != nil {
		return 0, err
	}
	rv := buf[0]
	Return(buf)
	return rv, nil
}

// Uint16 reads a little-endian uint16.
func Uint16(r io.Reader) (uint16, error) {
	buf, err := readScratch(r, 2)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint16(buf)
	Return(buf)
	return rv, nil
}

// Uint32 reads a little-endian uint32.
func Uint32(r io.Reader) (uint32, error) {
	buf, err := readScratch(r, 4)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint32(buf)
	Return(buf)
	return rv, nil
}

// Uint64 reads a little-endian uint64.
func Uint64(r io.Reader) (uint64, error) {
	buf, err := readScratch(r, 8)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint64(buf)
	Return(buf)
	return rv, nil
}

// Bytes reads exactly n bytes.
func Bytes(r io.Reader, n uint64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

// LittleEndian reads an n-byte wire field and returns it as an EndianBytes
// whose little-endian view is the bytes as they appeared on the wire.
func LittleEndian(r io.Reader, n uint64) (endianbytes.EndianBytes, error) {
	buf, err := Bytes(r, n)
	if err != nil {
		return endianbytes.EndianBytes{}, err
	}
	return endianbytes.FromLittleEndianBytes(buf), nil
}

// PutUint8 writes a single byte.
func PutUint8(w io.Writer, val uint8) error {
	buf := Borrow()[:1]
	buf[0] = val
	_, err := w.Write(buf)
	Return(buf)
	return errors.WithStack(err)
}

// PutUint16 writes val as two little-endian bytes.
func PutUint16(w io.Writer, val uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// PutUint32 writes val as four little-endian bytes.
func PutUint32(w io.Writer, val uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// PutUint64 writes val as eight little-endian bytes.
func PutUint64(w io.Writer, val uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// PutLittleEndian writes the little-endian view of v.
func PutLittleEndian(w io.Writer, v endianbytes.EndianBytes) error {
	_, err := w.Write(v.LittleEndianBytes())
	return errors.WithStack(err)
}
