package hashes

import (
	"crypto/sha256"
	"hash"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

// HashSize is the size in bytes of every double-SHA256 digest.
const HashSize = sha256.Size

// Hash160Size is the size in bytes of a HASH160 digest.
const Hash160Size = ripemd160.Size

// DoubleHashWriter is used to incrementally double hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// DoubleHashWriter.Write(slice).Finalize == DoubleHashH(slice)
type DoubleHashWriter struct {
	inner hash.Hash
}

// NewDoubleHashWriter returns a new DoubleHashWriter
func NewDoubleHashWriter() *DoubleHashWriter {
	return &DoubleHashWriter{sha256.New()}
}

// Write will always return (len(p), nil)
func (h *DoubleHashWriter) Write(p []byte) (n int, err error) {
	return h.inner.Write(p)
}

// InfallibleWrite is just like Write but doesn't return anything
func (h *DoubleHashWriter) InfallibleWrite(p []byte) {
	// hash.Hash promises Write never fails.
	_, err := h.inner.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting double hash. The digest bytes are the
// value's little-endian view, so its String is the conventional display
// order.
func (h *DoubleHashWriter) Finalize() endianbytes.EndianBytes {
	first := h.inner.Sum(nil)
	second := sha256.Sum256(first)
	return endianbytes.FromLittleEndianBytes(second[:])
}

// DoubleSHA256 returns sha256(sha256(b)) in digest byte order.
func DoubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH returns the double hash of b as a value whose little-endian
// view is the digest.
func DoubleHashH(b []byte) endianbytes.EndianBytes {
	return endianbytes.FromLittleEndianBytes(DoubleSHA256(b))
}

// Hash160 returns ripemd160(sha256(b)).
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	hasher := ripemd160.New()
	// ripemd160 never fails writing.
	_, _ = hasher.Write(sha[:])
	return hasher.Sum(nil)
}
