// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"

	"github.com/btcprim/btcprim/merkle"
	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/wire"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// OutOfRangeError describes an error due to accessing an element that is out
// of range.
type OutOfRangeError string

const (
	// CoinbaseTransactionIndex is the index of the coinbase transaction in every block
	CoinbaseTransactionIndex = 0
)

// Error satisfies the error interface and prints human-readable errors.
func (e OutOfRangeError) Error() string {
	return string(e)
}

// Block pairs a header with the ids of the block's transactions. The
// header's merkle root always commits to those ids.
type Block struct {
	header wire.BlockHeader
	txIDs  []endianbytes.EndianBytes
	tree   *merkle.Tree
}

// BlockRecord is the interchange form of a block as reported by a node's
// getblock call: the header fields plus the transaction ids, all big-endian
// hex.
type BlockRecord struct {
	wire.BlockHeaderRecord
	Tx []string `json:"tx"`
}

// NewBlock builds a block from its header fields and transaction ids. The
// merkle root is computed from txIDs.
func NewBlock(version int32, prevBlock endianbytes.EndianBytes, timestamp, bits, nonce uint32,
	txIDs []endianbytes.EndianBytes) (*Block, error) {

	tree, err := merkle.NewTree(txIDs)
	if err != nil {
		return nil, err
	}
	header, err := wire.NewBlockHeader(version, prevBlock, tree.Root(), timestamp, bits, nonce)
	if err != nil {
		return nil, err
	}
	return &Block{
		header: header,
		txIDs:  append([]endianbytes.EndianBytes(nil), txIDs...),
		tree:   tree,
	}, nil
}

// NewBlockFromRecord builds a block from its interchange record. The merkle
// root is recomputed from the transaction ids and must match the record's,
// as must the block hash when the record carries one.
func NewBlockFromRecord(record *BlockRecord) (*Block, error) {
	tree, err := merkle.NewTreeFromBigEndianHex(record.Tx)
	if err != nil {
		return nil, errors.Wrap(err, "tx")
	}
	if record.MerkleRoot != "" && record.MerkleRoot != tree.Root().String() {
		return nil, errors.Errorf("merkle root of the transactions is %s, the record has %s",
			tree.Root(), record.MerkleRoot)
	}

	headerRecord := record.BlockHeaderRecord
	headerRecord.MerkleRoot = tree.Root().String()
	header, err := wire.BlockHeaderFromRecord(&headerRecord)
	if err != nil {
		return nil, err
	}
	if record.Hash != "" && header.BlockHash().String() != record.Hash {
		return nil, errors.Errorf("block hash is %s, the record has %s", header.BlockHash(), record.Hash)
	}

	txIDs := make([]endianbytes.EndianBytes, tree.LeafCount())
	for i := range txIDs {
		txIDs[i], _ = tree.Leaf(i)
	}
	return &Block{
		header: header,
		txIDs:  txIDs,
		tree:   tree,
	}, nil
}

// ParseBlockRecord decodes a JSON block record and builds the block.
func ParseBlockRecord(data []byte) (*Block, error) {
	record := &BlockRecord{}
	err := json.Unmarshal(data, record)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode block record")
	}
	return NewBlockFromRecord(record)
}

// Header returns the block header.
func (b *Block) Header() wire.BlockHeader {
	return b.header
}

// Hash returns the block hash.
func (b *Block) Hash() endianbytes.EndianBytes {
	return b.header.BlockHash()
}

// PrevHash returns the hash of the previous block.
func (b *Block) PrevHash() endianbytes.EndianBytes {
	return b.header.PrevBlock()
}

// MerkleRoot returns the merkle root of the block's transactions.
func (b *Block) MerkleRoot() endianbytes.EndianBytes {
	return b.header.MerkleRoot()
}

// Height returns the height the block was tagged with.
func (b *Block) Height() uint64 {
	return b.header.Height()
}

// TxIDs returns the ids of the block's transactions in block order.
func (b *Block) TxIDs() []endianbytes.EndianBytes {
	return append([]endianbytes.EndianBytes(nil), b.txIDs...)
}

// TxID returns the id of the transaction at txNum.
func (b *Block) TxID(txNum int) (endianbytes.EndianBytes, error) {
	if txNum < 0 || txNum >= len(b.txIDs) {
		str := fmt.Sprintf("transaction index %d is out of range - max %d",
			txNum, len(b.txIDs)-1)
		return endianbytes.EndianBytes{}, OutOfRangeError(str)
	}
	return b.txIDs[txNum], nil
}

// CoinbaseTxID returns the id of the block's first transaction.
func (b *Block) CoinbaseTxID() (endianbytes.EndianBytes, error) {
	return b.TxID(CoinbaseTransactionIndex)
}

// MerkleTree returns the merkle tree over the block's transactions.
func (b *Block) MerkleTree() *merkle.Tree {
	return b.tree
}

// MultiProof proves the inclusion of the transactions at txNums in the
// block.
func (b *Block) MultiProof(txNums ...int) (*merkle.MultiProof, error) {
	return b.tree.GenerateMultiProof(txNums)
}

// ToRecord returns the interchange record of the block.
func (b *Block) ToRecord() *BlockRecord {
	return &BlockRecord{
		BlockHeaderRecord: *b.header.ToRecord(),
		Tx:                endianbytes.Strings(b.txIDs),
	}
}
