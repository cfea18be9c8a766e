/*
Package endianbytes provides EndianBytes, an immutable fixed-length byte value
which keeps one canonical (big-endian) order internally and exposes both the
big-endian and the little-endian views of it.

Bitcoin displays hashes and most numeric fields in big-endian order while the
wire carries them little-endian. Every constructor in this package states which
orientation it is handed; nothing here guesses.

	txID, err := endianbytes.FromBigEndianHex("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	wireBytes := txID.LittleEndianBytes()
*/
package endianbytes

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// EndianBytes is an immutable byte sequence stored in big-endian order.
// The zero value is the empty sequence. Values are comparable with ==,
// which compares canonical bytes, and may be used as map keys.
type EndianBytes struct {
	bigEndian string
}

// FromBigEndianBytes returns the value whose big-endian view is b.
func FromBigEndianBytes(b []byte) EndianBytes {
	return EndianBytes{bigEndian: string(b)}
}

// FromLittleEndianBytes returns the value whose little-endian view is b.
func FromLittleEndianBytes(b []byte) EndianBytes {
	return EndianBytes{bigEndian: string(reversed(b))}
}

// FromBigEndianHex decodes a big-endian hex string. An optional "0x" prefix
// is accepted.
func FromBigEndianHex(s string) (EndianBytes, error) {
	b, err := decodeHex(s)
	if err != nil {
		return EndianBytes{}, err
	}
	return FromBigEndianBytes(b), nil
}

// FromLittleEndianHex decodes a little-endian hex string. An optional "0x"
// prefix is accepted.
func FromLittleEndianHex(s string) (EndianBytes, error) {
	b, err := decodeHex(s)
	if err != nil {
		return EndianBytes{}, err
	}
	return FromLittleEndianBytes(b), nil
}

// FromUint returns a size-byte value holding v. It returns an error if v
// doesn't fit in size bytes.
func FromUint(v uint64, size int) (EndianBytes, error) {
	if size <= 0 || size > 8 {
		return EndianBytes{}, errors.Errorf("unsupported integer width %d", size)
	}
	if size < 8 && v>>(uint(size)*8) != 0 {
		return EndianBytes{}, errors.Errorf("value %d overflows %d bytes", v, size)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return FromBigEndianBytes(buf[8-size:]), nil
}

// FromUint32 returns the 4-byte value holding v.
func FromUint32(v uint32) EndianBytes {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return FromBigEndianBytes(buf[:])
}

// Zero returns a size-byte value of all zeros.
func Zero(size int) EndianBytes {
	return EndianBytes{bigEndian: string(make([]byte, size))}
}

// Len returns the number of bytes in the value.
func (e EndianBytes) Len() int {
	return len(e.bigEndian)
}

// IsZero returns true if every byte of the value is zero. The empty value
// is zero.
func (e EndianBytes) IsZero() bool {
	for i := 0; i < len(e.bigEndian); i++ {
		if e.bigEndian[i] != 0 {
			return false
		}
	}
	return true
}

// BigEndianBytes returns a copy of the big-endian view.
func (e EndianBytes) BigEndianBytes() []byte {
	return []byte(e.bigEndian)
}

// LittleEndianBytes returns a copy of the little-endian view.
func (e EndianBytes) LittleEndianBytes() []byte {
	return reversed([]byte(e.bigEndian))
}

// BigEndianHex returns the big-endian view as a hex string without prefix.
func (e EndianBytes) BigEndianHex() string {
	return hex.EncodeToString(e.BigEndianBytes())
}

// LittleEndianHex returns the little-endian view as a hex string without prefix.
func (e EndianBytes) LittleEndianHex() string {
	return hex.EncodeToString(e.LittleEndianBytes())
}

// Uint64 returns the value read as a big-endian unsigned integer. It returns
// an error for values wider than 8 bytes; use BigInt for those.
func (e EndianBytes) Uint64() (uint64, error) {
	if len(e.bigEndian) > 8 {
		return 0, errors.Errorf("%d-byte value does not fit in a uint64", len(e.bigEndian))
	}
	var buf [8]byte
	copy(buf[8-len(e.bigEndian):], e.bigEndian)
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Uint32 returns the value read as a big-endian unsigned integer. It panics
// if the value is wider than 4 bytes, so it must only be used on fields
// whose width is fixed by construction.
func (e EndianBytes) Uint32() uint32 {
	if len(e.bigEndian) > 4 {
		panic(errors.Errorf("%d-byte value does not fit in a uint32", len(e.bigEndian)))
	}
	var buf [4]byte
	copy(buf[4-len(e.bigEndian):], e.bigEndian)
	return binary.BigEndian.Uint32(buf[:])
}

// BigInt returns the value read as a big-endian unsigned integer.
func (e EndianBytes) BigInt() *big.Int {
	return new(big.Int).SetBytes(e.BigEndianBytes())
}

// Equal reports whether both values hold the same canonical bytes.
func (e EndianBytes) Equal(other EndianBytes) bool {
	return e.bigEndian == other.bigEndian
}

// Compare orders values by their big-endian bytes.
func (e EndianBytes) Compare(other EndianBytes) int {
	return strings.Compare(e.bigEndian, other.bigEndian)
}

// Concat returns the value whose big-endian view is e's big-endian view
// followed by other's.
func (e EndianBytes) Concat(other EndianBytes) EndianBytes {
	return EndianBytes{bigEndian: e.bigEndian + other.bigEndian}
}

// ConcatBigEndian joins the big-endian views of values into one buffer.
func ConcatBigEndian(values ...EndianBytes) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(v.bigEndian)
	}
	return buf.Bytes()
}

// ConcatLittleEndian joins the little-endian views of values into one
// buffer, in the given order.
func ConcatLittleEndian(values ...EndianBytes) []byte {
	size := 0
	for _, v := range values {
		size += v.Len()
	}
	buf := make([]byte, 0, size)
	for _, v := range values {
		buf = append(buf, v.LittleEndianBytes()...)
	}
	return buf
}

// String returns the big-endian hex form, the conventional display of
// hashes.
func (e EndianBytes) String() string {
	return e.BigEndianHex()
}

// Strings converts a slice of values into their big-endian hex forms.
func Strings(values []EndianBytes) []string {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.String()
	}
	return strs
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't decode hex %q", s)
	}
	return b, nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
