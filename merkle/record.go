package merkle

import (
	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ProofRecord is the JSON interchange form of a MultiProof. Hashes are
// "0x" prefixed little-endian hex and Flags holds one byte per flag, as
// FlagsToHex renders them.
type ProofRecord struct {
	ExpectedRoot  string   `json:"expected_root"`
	TargetIndices []int    `json:"target_indices,omitempty"`
	TargetLeaves  []string `json:"target_leaves"`
	Proof         []string `json:"proof"`
	Flags         string   `json:"flags"`
}

// ToRecord converts p into its interchange record.
func (p *MultiProof) ToRecord() *ProofRecord {
	return &ProofRecord{
		ExpectedRoot:  littleEndianHex(p.Root),
		TargetIndices: append([]int(nil), p.TargetIndices...),
		TargetLeaves:  littleEndianHexes(p.TargetLeaves),
		Proof:         littleEndianHexes(p.Proof),
		Flags:         FlagsToHex(p.Flags),
	}
}

// MarshalJSON encodes p as its ProofRecord.
func (p *MultiProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToRecord())
}

// MultiProofFromRecord converts an interchange record into a MultiProof.
// Records without target indices are accepted; such a proof can still be
// verified but not re-serialized in binary form.
func MultiProofFromRecord(record *ProofRecord) (*MultiProof, error) {
	if len(record.TargetIndices) != 0 && len(record.TargetIndices) != len(record.TargetLeaves) {
		return nil, validationError("%d target indices for %d target leaves",
			len(record.TargetIndices), len(record.TargetLeaves))
	}

	root, err := endianbytes.FromLittleEndianHex(record.ExpectedRoot)
	if err != nil {
		return nil, errors.Wrap(err, "expected_root")
	}
	targetLeaves, err := fromLittleEndianHexes(record.TargetLeaves)
	if err != nil {
		return nil, errors.Wrap(err, "target_leaves")
	}
	proof, err := fromLittleEndianHexes(record.Proof)
	if err != nil {
		return nil, errors.Wrap(err, "proof")
	}
	flags, err := FlagsFromHex(record.Flags)
	if err != nil {
		return nil, err
	}

	return &MultiProof{
		Root:          root,
		TargetIndices: append([]int(nil), record.TargetIndices...),
		TargetLeaves:  targetLeaves,
		Proof:         proof,
		Flags:         flags,
	}, nil
}

// ParseProofRecord decodes a JSON proof record into a MultiProof.
func ParseProofRecord(data []byte) (*MultiProof, error) {
	record := &ProofRecord{}
	err := json.Unmarshal(data, record)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode proof record")
	}
	return MultiProofFromRecord(record)
}

func littleEndianHex(value endianbytes.EndianBytes) string {
	return "0x" + value.LittleEndianHex()
}

func littleEndianHexes(values []endianbytes.EndianBytes) []string {
	strs := make([]string, len(values))
	for i, value := range values {
		strs[i] = littleEndianHex(value)
	}
	return strs
}

func fromLittleEndianHexes(strs []string) ([]endianbytes.EndianBytes, error) {
	values := make([]endianbytes.EndianBytes, len(strs))
	for i, s := range strs {
		value, err := endianbytes.FromLittleEndianHex(s)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		values[i] = value
	}
	return values, nil
}
