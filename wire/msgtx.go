// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/btcprim/btcprim/util/binaryserializer"
	"github.com/btcprim/btcprim/util/endianbytes"
	"github.com/btcprim/btcprim/util/hashes"
	"github.com/pkg/errors"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 2

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be. A coinbase input spends this index of the all-zero
	// transaction id.
	MaxPrevOutIndex uint32 = 0xffffffff

	// maxTxPayload bounds the size of a serialized transaction. No
	// transaction can be larger than a block.
	maxTxPayload = 4000000

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.TxID + PreviousOutPoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + hashes.HashSize

	// maxTxInPerTx is the maximum number of transaction inputs that a
	// transaction can have without exceeding maxTxPayload.
	maxTxInPerTx = (maxTxPayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for PkScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerTx is the maximum number of transaction outputs that a
	// transaction can have without exceeding maxTxPayload.
	maxTxOutPerTx = (maxTxPayload / minTxOutPayload) + 1

	// maxWitnessItemsPerInput is the maximum number of witness items to be
	// read for the witness data of a single input. Each item takes at least
	// one byte.
	maxWitnessItemsPerInput = 500000

	// maxWitnessItemSize is the maximum allowed size for an item within an
	// input's witness data.
	maxWitnessItemSize = 11000

	// witnessMarker and witnessFlag follow the version of a transaction
	// carrying witness data.
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

// OutPoint defines a transaction output being spent. TxID is in display
// orientation; its little-endian view is what goes on the wire.
type OutPoint struct {
	TxID  endianbytes.EndianBytes
	Index uint32
}

// NewOutPoint returns a new transaction outpoint with the provided id and
// index.
func NewOutPoint(txID endianbytes.EndianBytes, index uint32) *OutPoint {
	return &OutPoint{
		TxID:  txID,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "txid:index".
func (o OutPoint) String() string {
	return o.TxID.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// IsCoinbase returns true if o is the all-zero id at MaxPrevOutIndex.
func (o OutPoint) IsCoinbase() bool {
	return o.Index == MaxPrevOutIndex && o.TxID.Len() == hashes.HashSize && o.TxID.IsZero()
}

// WitnessItem is one element of an input's witness stack. A zero-length
// element is an explicit empty marker rather than an empty payload.
type WitnessItem struct {
	data  []byte
	empty bool
}

// EmptyWitnessItem is the zero-length witness element.
var EmptyWitnessItem = WitnessItem{empty: true}

// NewWitnessItem returns a witness element holding data. Empty data gives
// EmptyWitnessItem.
func NewWitnessItem(data []byte) WitnessItem {
	if len(data) == 0 {
		return EmptyWitnessItem
	}
	return WitnessItem{data: append([]byte(nil), data...)}
}

// IsEmpty returns true for the empty marker.
func (w WitnessItem) IsEmpty() bool {
	return w.empty || len(w.data) == 0
}

// Data returns a copy of the element bytes; nil for the empty marker.
func (w WitnessItem) Data() []byte {
	if w.IsEmpty() {
		return nil
	}
	return append([]byte(nil), w.data...)
}

// TxWitness is the witness stack of a single input.
type TxWitness []WitnessItem

// SerializeSize returns the number of bytes it would take to serialize the
// witness stack.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item.data))) + len(item.data)
	}
	return n
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  *Script
	Sequence         uint32
	Witness          TxWitness
}

// NewTxIn returns a new transaction input with the provided previous outpoint
// and signature script with a default sequence of MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript *Script, witness TxWitness) *TxIn {
	if signatureScript == nil {
		signatureScript = &Script{}
	}
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
		Witness:          witness,
	}
}

// IsCoinbase returns true if the input spends the coinbase outpoint.
func (t *TxIn) IsCoinbase() bool {
	return t.PreviousOutPoint.IsCoinbase()
}

// Height returns the BIP34 block height embedded in a coinbase input. Any
// other input returns ErrNotCoinbase.
func (t *TxIn) Height() (uint64, error) {
	if !t.IsCoinbase() {
		return 0, errors.WithStack(ErrNotCoinbase)
	}
	return t.SignatureScript.CoinbaseHeight()
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input, without its witness.
func (t *TxIn) SerializeSize() int {
	// Outpoint ID 32 bytes + Outpoint index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + t.SignatureScript.SerializeSize()
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript *Script
}

// NewTxOut returns a new transaction output with the provided transaction
// value in satoshis and public key script.
func NewTxOut(value int64, pkScript *Script) *TxOut {
	if pkScript == nil {
		pkScript = &Script{}
	}
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + t.PkScript.SerializeSize()
}

// MsgTx is a bitcoin transaction.
//
// Segwit is set when the transaction was parsed with the segwit marker, and
// makes SerializeWithWitness emit the marker and the witness stacks.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
	Segwit   bool
}

// NewMsgTx returns a new transaction with the given version and no inputs or
// outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness returns true if any input carries witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// IsCoinbase determines whether or not a transaction is a coinbase: it has
// exactly one input, which spends the coinbase outpoint.
func (msg *MsgTx) IsCoinbase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].IsCoinbase()
}

// Height returns the block height a coinbase transaction commits to.
func (msg *MsgTx) Height() (uint64, error) {
	if !msg.IsCoinbase() {
		return 0, errors.WithStack(ErrNotCoinbase)
	}
	return msg.TxIn[0].Height()
}

// TxID computes the transaction id over the legacy serialization, so it's
// the same whether or not witness data is attached. Its String is the
// display form. It fails if msg can't be serialized, such as when an input's
// previous txid isn't 32 bytes.
func (msg *MsgTx) TxID() (endianbytes.EndianBytes, error) {
	writer := hashes.NewDoubleHashWriter()
	err := msg.SerializeLegacy(writer)
	if err != nil {
		return endianbytes.EndianBytes{}, errors.Wrap(err, "couldn't compute txid")
	}
	return writer.Finalize(), nil
}

// WitnessHash computes the wtxid: the hash of the serialization including
// the segwit marker and witnesses. It equals TxID for transactions without
// witness data.
func (msg *MsgTx) WitnessHash() (endianbytes.EndianBytes, error) {
	if !msg.Segwit && !msg.HasWitness() {
		return msg.TxID()
	}
	writer := hashes.NewDoubleHashWriter()
	err := msg.SerializeWithWitness(writer)
	if err != nil {
		return endianbytes.EndianBytes{}, errors.Wrap(err, "couldn't compute wtxid")
	}
	return writer.Finalize(), nil
}

// ParseTransaction decodes a transaction from its wire hex. An optional
// "0x" prefix is accepted.
func ParseTransaction(txHex string) (*MsgTx, error) {
	raw, err := endianbytes.FromBigEndianHex(txHex)
	if err != nil {
		return nil, formatError("ParseTransaction", err.Error())
	}
	r := bytes.NewReader(raw.BigEndianBytes())
	msg, err := DeserializeTx(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, formatError("ParseTransaction", fmt.Sprintf(
			"%d trailing bytes after transaction", r.Len()))
	}
	return msg, nil
}

// DeserializeTx reads a transaction in wire form from r. The segwit marker
// is detected and the witness stacks read when present.
func DeserializeTx(r io.Reader) (*MsgTx, error) {
	msg := &MsgTx{}
	err := ReadElement(r, &msg.Version)
	if err != nil {
		return nil, truncated("DeserializeTx", "version", err)
	}

	r, msg.Segwit, err = readWitnessMarker(r)
	if err != nil {
		return nil, err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxTxInPerTx {
		str := fmt.Sprintf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count, maxTxInPerTx)
		return nil, formatError("DeserializeTx", str)
	}
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		msg.TxIn[i], err = readTxIn(r)
		if err != nil {
			return nil, err
		}
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxTxOutPerTx {
		str := fmt.Sprintf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count, maxTxOutPerTx)
		return nil, formatError("DeserializeTx", str)
	}
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		msg.TxOut[i], err = readTxOut(r)
		if err != nil {
			return nil, err
		}
	}

	if msg.Segwit {
		for _, txIn := range msg.TxIn {
			txIn.Witness, err = readWitness(r)
			if err != nil {
				return nil, err
			}
		}
	}

	err = ReadElement(r, &msg.LockTime)
	if err != nil {
		return nil, truncated("DeserializeTx", "lockTime", err)
	}

	log.Tracef("Deserialized transaction with %d inputs, %d outputs (segwit: %t)",
		len(msg.TxIn), len(msg.TxOut), msg.Segwit)
	return msg, nil
}

// readWitnessMarker looks for the segwit marker and flag after the version.
// When they're absent the bytes read are handed back in front of r, since
// they start the input count.
func readWitnessMarker(r io.Reader) (io.Reader, bool, error) {
	marker, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, false, truncated("DeserializeTx", "input count", err)
	}
	if marker != witnessMarker {
		return io.MultiReader(bytes.NewReader([]byte{marker}), r), false, nil
	}
	flag, err := binaryserializer.Uint8(r)
	if err != nil {
		// A lone zero input count with nothing after it. Let the output
		// count read report the truncation.
		return bytes.NewReader([]byte{marker}), false, nil
	}
	if flag == witnessFlag {
		return r, true, nil
	}
	return io.MultiReader(bytes.NewReader([]byte{marker, flag}), r), false, nil
}

func readTxIn(r io.Reader) (*TxIn, error) {
	var txID [32]byte
	ti := &TxIn{}
	err := ReadElement(r, &txID)
	if err != nil {
		return nil, truncated("readTxIn", "previous txid", err)
	}
	ti.PreviousOutPoint.TxID = endianbytes.FromLittleEndianBytes(txID[:])
	err = ReadElement(r, &ti.PreviousOutPoint.Index)
	if err != nil {
		return nil, truncated("readTxIn", "previous index", err)
	}

	if ti.PreviousOutPoint.IsCoinbase() {
		ti.SignatureScript, err = ParseCoinbaseScript(r)
	} else {
		ti.SignatureScript, err = ParseScript(r)
	}
	if err != nil {
		return nil, err
	}

	err = ReadElement(r, &ti.Sequence)
	if err != nil {
		return nil, truncated("readTxIn", "sequence", err)
	}
	return ti, nil
}

func readTxOut(r io.Reader) (*TxOut, error) {
	to := &TxOut{}
	err := ReadElement(r, &to.Value)
	if err != nil {
		return nil, truncated("readTxOut", "value", err)
	}
	to.PkScript, err = ParseScript(r)
	if err != nil {
		return nil, err
	}
	return to, nil
}

func readWitness(r io.Reader) (TxWitness, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxWitnessItemsPerInput {
		str := fmt.Sprintf("too many witness items to fit "+
			"into max message size [count %d, max %d]",
			count, maxWitnessItemsPerInput)
		return nil, formatError("readWitness", str)
	}
	witness := make(TxWitness, count)
	for i := uint64(0); i < count; i++ {
		data, err := ReadVarBytes(r, maxWitnessItemSize, "script witness item")
		if err != nil {
			return nil, err
		}
		witness[i] = NewWitnessItem(data)
	}
	return witness, nil
}

// SerializeLegacy writes the witness-stripped form of msg to w. This is the
// form transaction ids commit to.
func (msg *MsgTx) SerializeLegacy(w io.Writer) error {
	return msg.serialize(w, false)
}

// SerializeWithWitness writes msg to w including the segwit marker and the
// witness stacks when msg is segwit or carries witness data, and the legacy
// form otherwise.
func (msg *MsgTx) SerializeWithWitness(w io.Writer) error {
	return msg.serialize(w, msg.Segwit || msg.HasWitness())
}

func (msg *MsgTx) serialize(w io.Writer, withWitness bool) error {
	err := WriteElement(w, msg.Version)
	if err != nil {
		return err
	}

	if withWitness {
		err = writeElements(w, uint8(witnessMarker), uint8(witnessFlag))
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		err = writeTxIn(w, ti)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		err = writeTxOut(w, to)
		if err != nil {
			return err
		}
	}

	if withWitness {
		for _, ti := range msg.TxIn {
			err = writeWitness(w, ti.Witness)
			if err != nil {
				return err
			}
		}
	}

	return WriteElement(w, msg.LockTime)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	txID := ti.PreviousOutPoint.TxID
	if txID.Len() != hashes.HashSize {
		return formatError("writeTxIn", fmt.Sprintf(
			"previous txid is %d bytes, want %d", txID.Len(), hashes.HashSize))
	}
	if ti.SignatureScript == nil {
		return formatError("writeTxIn", "missing signature script")
	}
	err := writeElements(w, txID.LittleEndianBytes(), ti.PreviousOutPoint.Index)
	if err != nil {
		return err
	}
	err = ti.SignatureScript.Serialize(w)
	if err != nil {
		return err
	}
	return WriteElement(w, ti.Sequence)
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if to.PkScript == nil {
		return formatError("writeTxOut", "missing public key script")
	}
	err := WriteElement(w, to.Value)
	if err != nil {
		return err
	}
	return to.PkScript.Serialize(w)
}

func writeWitness(w io.Writer, witness TxWitness) error {
	err := WriteVarInt(w, uint64(len(witness)))
	if err != nil {
		return err
	}
	for _, item := range witness {
		err = WriteVarBytes(w, item.data)
		if err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the legacy serialization of msg.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSizeStripped()))
	err := msg.SerializeLegacy(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSizeStripped returns the number of bytes it would take to
// serialize the transaction without witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// SerializeSize returns the number of bytes SerializeWithWitness would
// write.
func (msg *MsgTx) SerializeSize() int {
	n := msg.SerializeSizeStripped()
	if msg.Segwit || msg.HasWitness() {
		// The marker and flag fields take up two additional bytes.
		n += 2
		for _, txIn := range msg.TxIn {
			n += txIn.Witness.SerializeSize()
		}
	}
	return n
}
