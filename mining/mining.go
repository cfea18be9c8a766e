// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"math"
	"math/big"
	"sync/atomic"

	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

// ErrNonceSpaceExhausted is returned when every nonce, and every permitted
// timestamp roll, was tried without meeting the target.
var ErrNonceSpaceExhausted = errors.New("nonce space exhausted")

// ctxCheckInterval is the number of hashes tried between checks of the
// search context.
const ctxCheckInterval = 1 << 12

// Miner holds the mutable state of a proof-of-work search over an immutable
// header template. Every attempt derives a new header value from the
// template; the template itself is never modified.
//
// A Miner is not safe for concurrent use, except for HashesTried.
type Miner struct {
	template wire.BlockHeader
	target   *big.Int

	// MaxNonce is the last nonce tried before the timestamp is rolled. The
	// search starts at the template's nonce.
	MaxNonce uint32

	// TimeRolls is the number of times the timestamp may be incremented by
	// one second, restarting the nonce at zero, once the nonce space is
	// exhausted.
	TimeRolls uint32

	hashesTried uint64
}

// NewMiner returns a miner searching for a nonce that satisfies the target
// encoded in the template's bits.
func NewMiner(template wire.BlockHeader) *Miner {
	return &Miner{
		template: template,
		target:   template.Target(),
		MaxNonce: math.MaxUint32,
	}
}

// Template returns the header the search starts from.
func (m *Miner) Template() wire.BlockHeader {
	return m.template
}

// Target returns the target a solved header's hash must not exceed.
func (m *Miner) Target() *big.Int {
	return new(big.Int).Set(m.target)
}

// HashesTried returns the number of headers hashed so far.
func (m *Miner) HashesTried() uint64 {
	return atomic.LoadUint64(&m.hashesTried)
}

// Solve searches for a header meeting the target. It returns the solved
// header, ErrNonceSpaceExhausted, or the context's error if ctx is done
// before either.
func (m *Miner) Solve(ctx context.Context) (wire.BlockHeader, error) {
	header := m.template
	nonce := header.Nonce()
	for roll := uint32(0); ; roll++ {
		for tries := 0; ; tries++ {
			if tries%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return wire.BlockHeader{}, err
				}
			}

			candidate := header.WithNonce(nonce)
			atomic.AddUint64(&m.hashesTried, 1)
			if CheckProofOfWork(candidate, m.target) {
				log.Debugf("Found nonce %d for header %s after %d hashes",
					nonce, candidate.BlockHash(), m.HashesTried())
				return candidate, nil
			}
			if nonce == m.MaxNonce {
				break
			}
			nonce++
		}

		if roll == m.TimeRolls {
			return wire.BlockHeader{}, errors.Wrapf(ErrNonceSpaceExhausted,
				"after %d hashes", m.HashesTried())
		}
		header = header.WithTimestamp(header.Timestamp() + 1)
		nonce = 0
		log.Tracef("Rolled timestamp to %d", header.Timestamp())
	}
}

// SolveHeader searches the full nonce space of header, without rolling its
// timestamp.
func SolveHeader(ctx context.Context, header wire.BlockHeader) (wire.BlockHeader, error) {
	return NewMiner(header).Solve(ctx)
}

// CheckProofOfWork reports whether the header's hash, read as a big-endian
// number, does not exceed target.
func CheckProofOfWork(header wire.BlockHeader, target *big.Int) bool {
	return header.BlockHash().BigInt().Cmp(target) <= 0
}
