// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"math/big"
	"testing"

	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

// regtestBits is the compact form of the regression test network's proof of
// work limit. About every other hash meets it.
const regtestBits = 0x207fffff

// unreachableBits encodes a target of zero.
const unreachableBits = 0x03000000

const genesisHeaderHex = "0100000000000000000000000000000000000000000000000000000000000000" +
	"000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa" +
	"4b1e5e4a29ab5f49ffff001d1dac2b7c"

func templateHeader(t *testing.T, bits uint32) wire.BlockHeader {
	merkleRoot, err := endianbytes.FromBigEndianHex(
		"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	if err != nil {
		t.Fatalf("FromBigEndianHex: %v", err)
	}
	header, err := wire.NewBlockHeader(1, endianbytes.Zero(32), merkleRoot, 1296688602, bits, 0)
	if err != nil {
		t.Fatalf("NewBlockHeader: %v", err)
	}
	return header
}

func TestCheckProofOfWork(t *testing.T) {
	genesis, err := wire.ParseBlockHeader(genesisHeaderHex)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}
	if !CheckProofOfWork(genesis, genesis.Target()) {
		t.Errorf("CheckProofOfWork: the genesis header does not meet its own target")
	}
	if CheckProofOfWork(genesis, big.NewInt(0)) {
		t.Errorf("CheckProofOfWork: a zero target was met")
	}
	if CheckProofOfWork(genesis.WithNonce(genesis.Nonce()+1), genesis.Target()) {
		t.Errorf("CheckProofOfWork: the genesis header with another nonce meets the target")
	}
}

func TestSolveHeader(t *testing.T) {
	template := templateHeader(t, regtestBits)
	solved, err := SolveHeader(context.Background(), template)
	if err != nil {
		t.Fatalf("SolveHeader: %v", err)
	}
	if !CheckProofOfWork(solved, template.Target()) {
		t.Errorf("SolveHeader: %s does not meet the target", solved)
	}
	if solved.WithNonce(template.Nonce()) != template {
		t.Errorf("SolveHeader: fields other than the nonce changed")
	}
	if template.Nonce() != 0 {
		t.Errorf("SolveHeader: the template was modified")
	}
}

func TestMinerExhaustion(t *testing.T) {
	template := templateHeader(t, unreachableBits)
	if template.Target().Sign() != 0 {
		t.Fatalf("Target: got %s, want 0", template.Target())
	}

	tests := []struct {
		maxNonce    uint32
		timeRolls   uint32
		hashesTried uint64
	}{
		{0, 0, 1},
		{99, 0, 100},
		{99, 2, 300},
	}
	for _, test := range tests {
		miner := NewMiner(template)
		miner.MaxNonce = test.maxNonce
		miner.TimeRolls = test.timeRolls
		_, err := miner.Solve(context.Background())
		if !errors.Is(err, ErrNonceSpaceExhausted) {
			t.Errorf("Solve(%d, %d): got %v, want ErrNonceSpaceExhausted",
				test.maxNonce, test.timeRolls, err)
		}
		if miner.HashesTried() != test.hashesTried {
			t.Errorf("HashesTried(%d, %d): got %d, want %d",
				test.maxNonce, test.timeRolls, miner.HashesTried(), test.hashesTried)
		}
		if miner.Template() != template {
			t.Errorf("Template: the template was modified")
		}
	}
}

func TestMinerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	miner := NewMiner(templateHeader(t, unreachableBits))
	_, err := miner.Solve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Solve: got %v, want context.Canceled", err)
	}
	if miner.HashesTried() != 0 {
		t.Errorf("HashesTried: got %d, want 0", miner.HashesTried())
	}
}

// TestMinerTimeRoll checks the solved header carries the rolled timestamp
// when the first nonce range holds no solution.
func TestMinerTimeRoll(t *testing.T) {
	template := templateHeader(t, regtestBits)

	// Find a nonce range of one that fails, forcing a roll.
	var start uint32
	for CheckProofOfWork(template.WithNonce(start), template.Target()) {
		start++
	}
	miner := NewMiner(template.WithNonce(start))
	miner.MaxNonce = start
	miner.TimeRolls = 64

	solved, err := miner.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if solved.Timestamp() <= template.Timestamp() {
		t.Errorf("Solve: timestamp %d was not rolled past %d", solved.Timestamp(), template.Timestamp())
	}
	if solved.Nonce() > start {
		t.Errorf("Solve: nonce %d is beyond MaxNonce %d", solved.Nonce(), start)
	}
	if !CheckProofOfWork(solved, miner.Target()) {
		t.Errorf("Solve: %s does not meet the target", solved)
	}
}
