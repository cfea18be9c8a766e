package wire

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// BlockHeaderRecord is the interchange form of a header as reported by a
// node's getblockheader/getblock calls. Hex fields are big-endian.
type BlockHeaderRecord struct {
	Hash              string `json:"hash,omitempty"`
	VersionHex        string `json:"versionHex"`
	PreviousBlockHash string `json:"previousblockhash,omitempty"`
	MerkleRoot        string `json:"merkleroot"`
	Time              uint32 `json:"time"`
	Bits              string `json:"bits"`
	Nonce             uint32 `json:"nonce"`
	Height            uint64 `json:"height"`
}

// BlockHeaderFromRecord builds a header from its interchange record. The
// genesis record has no previous block hash; it is taken as all zeros.
func BlockHeaderFromRecord(record *BlockHeaderRecord) (BlockHeader, error) {
	return NewBlockHeaderFromElements(record.VersionHex, record.PreviousBlockHash,
		record.MerkleRoot, record.Bits, record.Nonce, record.Time, record.Height)
}

// ParseBlockHeaderRecord decodes a JSON header record.
func ParseBlockHeaderRecord(data []byte) (BlockHeader, error) {
	record := &BlockHeaderRecord{}
	err := json.Unmarshal(data, record)
	if err != nil {
		return BlockHeader{}, errors.Wrap(err, "couldn't decode header record")
	}
	return BlockHeaderFromRecord(record)
}

// ToRecord returns the interchange record of h.
func (h BlockHeader) ToRecord() *BlockHeaderRecord {
	record := &BlockHeaderRecord{
		Hash:       h.BlockHash().String(),
		VersionHex: h.version.BigEndianHex(),
		MerkleRoot: h.merkleRoot.BigEndianHex(),
		Time:       h.Timestamp(),
		Bits:       h.bits.BigEndianHex(),
		Nonce:      h.Nonce(),
		Height:     h.height,
	}
	if !h.prevBlock.IsZero() {
		record.PreviousBlockHash = h.prevBlock.BigEndianHex()
	}
	return record
}

// MarshalJSON encodes h as its interchange record.
func (h BlockHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.ToRecord())
}
