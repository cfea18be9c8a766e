// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/util/hashes"
	"github.com/pkg/errors"
)

// BlockHeaderSize is the number of bytes a block header takes on the wire.
// Version 4 bytes + PrevBlock 32 bytes + MerkleRoot 32 bytes + Timestamp 4
// bytes + Bits 4 bytes + Nonce 4 bytes.
const BlockHeaderSize = 16 + (hashes.HashSize * 2)

// BlockHeaderWordSize is the width of the words returned by BlockHeader.Word.
const BlockHeaderWordSize = 16

// BlockHeader defines information about a block. It is an immutable value:
// every With* method returns a new header, and BlockHash is always derived
// from the current fields.
//
// Each field is held as an EndianBytes so both its display (big-endian) and
// wire (little-endian) orientation are available.
type BlockHeader struct {
	version    endianbytes.EndianBytes
	prevBlock  endianbytes.EndianBytes
	merkleRoot endianbytes.EndianBytes
	timestamp  endianbytes.EndianBytes
	bits       endianbytes.EndianBytes
	nonce      endianbytes.EndianBytes

	// height is carried alongside the header but is not part of the hashed
	// payload.
	height uint64
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, timestamp, difficulty bits and nonce.
// Both hashes must be 32 bytes long.
func NewBlockHeader(version int32, prevBlock, merkleRoot endianbytes.EndianBytes,
	timestamp uint32, bits uint32, nonce uint32) (BlockHeader, error) {

	if err := checkHashLength("prevBlock", prevBlock); err != nil {
		return BlockHeader{}, err
	}
	if err := checkHashLength("merkleRoot", merkleRoot); err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		version:    endianbytes.FromUint32(uint32(version)),
		prevBlock:  prevBlock,
		merkleRoot: merkleRoot,
		timestamp:  endianbytes.FromUint32(timestamp),
		bits:       endianbytes.FromUint32(bits),
		nonce:      endianbytes.FromUint32(nonce),
	}, nil
}

// NewBlockHeaderFromElements builds a header from the big-endian hex strings
// and integers a node reports for a block.
func NewBlockHeaderFromElements(versionHex, prevBlockHex, merkleRootHex, bitsHex string,
	nonce uint32, timestamp uint32, height uint64) (BlockHeader, error) {

	version, err := fixedFromBigEndianHex("versionHex", versionHex, 4)
	if err != nil {
		return BlockHeader{}, err
	}
	prevBlock := endianbytes.Zero(hashes.HashSize)
	if prevBlockHex != "" {
		prevBlock, err = fixedFromBigEndianHex("previousblockhash", prevBlockHex, hashes.HashSize)
		if err != nil {
			return BlockHeader{}, err
		}
	}
	merkleRoot, err := fixedFromBigEndianHex("merkleroot", merkleRootHex, hashes.HashSize)
	if err != nil {
		return BlockHeader{}, err
	}
	bits, err := fixedFromBigEndianHex("bits", bitsHex, 4)
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		version:    version,
		prevBlock:  prevBlock,
		merkleRoot: merkleRoot,
		timestamp:  endianbytes.FromUint32(timestamp),
		bits:       bits,
		nonce:      endianbytes.FromUint32(nonce),
		height:     height,
	}, nil
}

// ParseBlockHeader decodes the 80-byte wire form of a header given as hex.
// An optional "0x" prefix is accepted.
func ParseBlockHeader(headerHex string) (BlockHeader, error) {
	raw, err := endianbytes.FromBigEndianHex(headerHex)
	if err != nil {
		return BlockHeader{}, formatError("ParseBlockHeader", err.Error())
	}
	if raw.Len() != BlockHeaderSize {
		return BlockHeader{}, formatError("ParseBlockHeader", fmt.Sprintf(
			"header is %d bytes, want %d", raw.Len(), BlockHeaderSize))
	}
	return DeserializeBlockHeader(bytes.NewReader(raw.BigEndianBytes()))
}

// DeserializeBlockHeader reads a header in wire form from r.
func DeserializeBlockHeader(r io.Reader) (BlockHeader, error) {
	var version, timestamp, bits, nonce [4]byte
	var prevBlock, merkleRoot [32]byte
	fields := []struct {
		name    string
		element interface{}
	}{
		{"version", &version},
		{"prevBlock", &prevBlock},
		{"merkleRoot", &merkleRoot},
		{"timestamp", &timestamp},
		{"bits", &bits},
		{"nonce", &nonce},
	}
	for _, field := range fields {
		err := ReadElement(r, field.element)
		if err != nil {
			return BlockHeader{}, truncated("DeserializeBlockHeader", field.name, err)
		}
	}
	return BlockHeader{
		version:    endianbytes.FromLittleEndianBytes(version[:]),
		prevBlock:  endianbytes.FromLittleEndianBytes(prevBlock[:]),
		merkleRoot: endianbytes.FromLittleEndianBytes(merkleRoot[:]),
		timestamp:  endianbytes.FromLittleEndianBytes(timestamp[:]),
		bits:       endianbytes.FromLittleEndianBytes(bits[:]),
		nonce:      endianbytes.FromLittleEndianBytes(nonce[:]),
	}, nil
}

// Serialize writes the 80-byte wire form of h to w: the little-endian view
// of every field in order.
func (h BlockHeader) Serialize(w io.Writer) error {
	return writeElements(w,
		h.version.LittleEndianBytes(),
		h.prevBlock.LittleEndianBytes(),
		h.merkleRoot.LittleEndianBytes(),
		h.timestamp.LittleEndianBytes(),
		h.bits.LittleEndianBytes(),
		h.nonce.LittleEndianBytes())
}

// Bytes returns the 80-byte wire form of h.
func (h BlockHeader) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderSize))
	// Writing to a bytes.Buffer can't fail.
	_ = h.Serialize(buf)
	return buf.Bytes()
}

// Hex returns the wire form of h as lowercase hex.
func (h BlockHeader) Hex() string {
	return endianbytes.FromBigEndianBytes(h.Bytes()).BigEndianHex()
}

// BlockHash computes the block identifier hash for the given block header.
// Its String is the conventional display hash.
func (h BlockHeader) BlockHash() endianbytes.EndianBytes {
	writer := hashes.NewDoubleHashWriter()
	// DoubleHashWriter never fails.
	_ = h.Serialize(writer)
	return writer.Finalize()
}

// Word returns the i-th 16-byte slice of the wire form. A header has five
// words.
func (h BlockHeader) Word(i int) ([]byte, error) {
	if i < 0 || i >= BlockHeaderSize/BlockHeaderWordSize {
		return nil, errors.Errorf("word index %d out of range [0, %d)",
			i, BlockHeaderSize/BlockHeaderWordSize)
	}
	return h.Bytes()[i*BlockHeaderWordSize : (i+1)*BlockHeaderWordSize], nil
}

// Target decodes the compact bits field: the top byte is an exponent and the
// low three bytes a coefficient, target = coefficient * 256^(exponent-3).
// An exponent below 3 shifts the coefficient right instead.
func (h BlockHeader) Target() *big.Int {
	bits := h.Bits()
	exponent := uint(bits>>24) & 0xff
	coefficient := big.NewInt(int64(bits & 0x00ffffff))
	if exponent < 3 {
		return coefficient.Rsh(coefficient, 8*(3-exponent))
	}
	return coefficient.Lsh(coefficient, 8*(exponent-3))
}

// Version returns the block version.
func (h BlockHeader) Version() int32 {
	return int32(h.version.Uint32())
}

// VersionBytes returns the raw version field.
func (h BlockHeader) VersionBytes() endianbytes.EndianBytes {
	return h.version
}

// PrevBlock returns the hash of the previous block.
func (h BlockHeader) PrevBlock() endianbytes.EndianBytes {
	return h.prevBlock
}

// MerkleRoot returns the merkle root of the block's transactions.
func (h BlockHeader) MerkleRoot() endianbytes.EndianBytes {
	return h.merkleRoot
}

// Timestamp returns the block time as seconds since the unix epoch.
func (h BlockHeader) Timestamp() uint32 {
	return h.timestamp.Uint32()
}

// Bits returns the compact difficulty target.
func (h BlockHeader) Bits() uint32 {
	return h.bits.Uint32()
}

// Nonce returns the nonce used to generate the block.
func (h BlockHeader) Nonce() uint32 {
	return h.nonce.Uint32()
}

// Height returns the height h was tagged with. It is zero for headers
// parsed from the wire.
func (h BlockHeader) Height() uint64 {
	return h.height
}

// WithVersion returns a copy of h with the given version.
func (h BlockHeader) WithVersion(version int32) BlockHeader {
	h.version = endianbytes.FromUint32(uint32(version))
	return h
}

// WithPrevBlock returns a copy of h with the given previous block hash.
func (h BlockHeader) WithPrevBlock(prevBlock endianbytes.EndianBytes) (BlockHeader, error) {
	if err := checkHashLength("prevBlock", prevBlock); err != nil {
		return BlockHeader{}, err
	}
	h.prevBlock = prevBlock
	return h, nil
}

// WithMerkleRoot returns a copy of h with the given merkle root.
func (h BlockHeader) WithMerkleRoot(merkleRoot endianbytes.EndianBytes) (BlockHeader, error) {
	if err := checkHashLength("merkleRoot", merkleRoot); err != nil {
		return BlockHeader{}, err
	}
	h.merkleRoot = merkleRoot
	return h, nil
}

// WithTimestamp returns a copy of h with the given timestamp.
func (h BlockHeader) WithTimestamp(timestamp uint32) BlockHeader {
	h.timestamp = endianbytes.FromUint32(timestamp)
	return h
}

// WithBits returns a copy of h with the given compact target.
func (h BlockHeader) WithBits(bits uint32) BlockHeader {
	h.bits = endianbytes.FromUint32(bits)
	return h
}

// WithNonce returns a copy of h with the given nonce.
func (h BlockHeader) WithNonce(nonce uint32) BlockHeader {
	h.nonce = endianbytes.FromUint32(nonce)
	return h
}

// WithHeight returns a copy of h tagged with the given height.
func (h BlockHeader) WithHeight(height uint64) BlockHeader {
	h.height = height
	return h
}

// String returns the display hash of h.
func (h BlockHeader) String() string {
	return h.BlockHash().String()
}

func checkHashLength(field string, hash endianbytes.EndianBytes) error {
	if hash.Len() != hashes.HashSize {
		return errors.Errorf("%s is %d bytes, want %d", field, hash.Len(), hashes.HashSize)
	}
	return nil
}

// fixedFromBigEndianHex decodes the named header field. Short 4 byte fields
// are zero-padded since nodes don't always pad them, but hashes must be given
// in full.
func fixedFromBigEndianHex(field, s string, size int) (endianbytes.EndianBytes, error) {
	s = strings.TrimPrefix(s, "0x")
	if size < hashes.HashSize && len(s) < size*2 {
		s = strings.Repeat("0", size*2-len(s)) + s
	}
	value, err := endianbytes.FromBigEndianHex(s)
	if err != nil {
		return endianbytes.EndianBytes{}, formatError("NewBlockHeaderFromElements",
			fmt.Sprintf("invalid %s: %s", field, err))
	}
	if value.Len() != size {
		return endianbytes.EndianBytes{}, formatError("NewBlockHeaderFromElements",
			fmt.Sprintf("%s is %d bytes, want %d", field, value.Len(), size))
	}
	return value, nil
}
