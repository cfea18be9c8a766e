package merkle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/util/hashes"
	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

// maxMultiProofEntries bounds every count read by DeserializeMultiProof:
// targets, proof hashes and flags. A tree over a 4MB block can't need more.
const maxMultiProofEntries = 1 << 20

// Serialize writes p in its binary form:
//
//	root (32) | varint n | n * (varint index | leaf (32)) |
//	varint m | m * proof hash (32) | varint k | PackFlags(k flags)
//
// Hashes are written in their little-endian view.
func (p *MultiProof) Serialize(w io.Writer) error {
	if len(p.TargetIndices) != len(p.TargetLeaves) {
		return validationError("%d target indices for %d target leaves",
			len(p.TargetIndices), len(p.TargetLeaves))
	}
	for i, flag := range p.Flags {
		if flag > FlagHashHash {
			return validationError("flag %d has unknown value %d", i, flag)
		}
	}
	err := writeHash(w, p.Root)
	if err != nil {
		return err
	}

	err = wire.WriteVarInt(w, uint64(len(p.TargetLeaves)))
	if err != nil {
		return err
	}
	for i, leaf := range p.TargetLeaves {
		if p.TargetIndices[i] < 0 {
			return boundsError(Coordinate{Index: p.TargetIndices[i]}, "negative leaf index")
		}
		err = wire.WriteVarInt(w, uint64(p.TargetIndices[i]))
		if err != nil {
			return err
		}
		err = writeHash(w, leaf)
		if err != nil {
			return err
		}
	}

	err = wire.WriteVarInt(w, uint64(len(p.Proof)))
	if err != nil {
		return err
	}
	for _, node := range p.Proof {
		err = writeHash(w, node)
		if err != nil {
			return err
		}
	}

	err = wire.WriteVarInt(w, uint64(len(p.Flags)))
	if err != nil {
		return err
	}
	return wire.WriteElement(w, PackFlags(p.Flags))
}

// Bytes returns the binary form of p.
func (p *MultiProof) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := p.Serialize(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeMultiProof reads a multiproof in the form Serialize writes.
func DeserializeMultiProof(r io.Reader) (*MultiProof, error) {
	p := &MultiProof{}
	var err error
	p.Root, err = readHash(r, "root")
	if err != nil {
		return nil, err
	}

	count, err := readCount(r, "target leaves")
	if err != nil {
		return nil, err
	}
	p.TargetIndices = make([]int, count)
	p.TargetLeaves = make([]endianbytes.EndianBytes, count)
	for i := range p.TargetLeaves {
		index, err := wire.ReadVarInt(r)
		if err != nil {
			return nil, err
		}
		if index > maxMultiProofEntries {
			return nil, codecError(fmt.Sprintf("target index %d is out of range", index))
		}
		p.TargetIndices[i] = int(index)
		p.TargetLeaves[i], err = readHash(r, "target leaf")
		if err != nil {
			return nil, err
		}
	}

	count, err = readCount(r, "proof hashes")
	if err != nil {
		return nil, err
	}
	p.Proof = make([]endianbytes.EndianBytes, count)
	for i := range p.Proof {
		p.Proof[i], err = readHash(r, "proof hash")
		if err != nil {
			return nil, err
		}
	}

	count, err = readCount(r, "flags")
	if err != nil {
		return nil, err
	}
	packed := make([]byte, (count+flagsPerByte-1)/flagsPerByte)
	_, err = io.ReadFull(r, packed)
	if err != nil {
		return nil, truncated("flags", err)
	}
	p.Flags, err = UnpackFlags(packed, count)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ParseMultiProof decodes a multiproof from its binary form. Trailing bytes
// are an error.
func ParseMultiProof(b []byte) (*MultiProof, error) {
	r := bytes.NewReader(b)
	p, err := DeserializeMultiProof(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, codecError(fmt.Sprintf("%d trailing bytes after multiproof", r.Len()))
	}
	return p, nil
}

func writeHash(w io.Writer, hash endianbytes.EndianBytes) error {
	if hash.Len() != hashes.HashSize {
		return validationError("hash %s is %d bytes, want %d", hash, hash.Len(), hashes.HashSize)
	}
	return wire.WriteElement(w, hash.LittleEndianBytes())
}

func readHash(r io.Reader, field string) (endianbytes.EndianBytes, error) {
	var hash [hashes.HashSize]byte
	err := wire.ReadElement(r, &hash)
	if err != nil {
		return endianbytes.EndianBytes{}, truncated(field, err)
	}
	return endianbytes.FromLittleEndianBytes(hash[:]), nil
}

func readCount(r io.Reader, field string) (int, error) {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if count > maxMultiProofEntries {
		return 0, codecError(fmt.Sprintf("too many %s [count %d, max %d]",
			field, count, maxMultiProofEntries))
	}
	return int(count), nil
}

func codecError(desc string) *wire.FormatError {
	return &wire.FormatError{Func: "DeserializeMultiProof", Description: desc}
}

func truncated(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return codecError(fmt.Sprintf("insufficient bytes for %s", field))
	}
	return err
}
