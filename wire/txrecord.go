package wire

import (
	"encoding/hex"

	"github.com/btcsuite/btcutil"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// TransactionRecord is the verbose transaction form a node returns from
// getrawtransaction. Only Hex is needed to rebuild the transaction; the rest
// is used by VerifyRecord.
type TransactionRecord struct {
	Hex  string        `json:"hex"`
	TxID string        `json:"txid,omitempty"`
	Vin  []TxInRecord  `json:"vin,omitempty"`
	Vout []TxOutRecord `json:"vout,omitempty"`
}

// TxInRecord is one entry of TransactionRecord.Vin. Coinbase inputs carry
// Coinbase instead of TxID, Vout and ScriptSig.
type TxInRecord struct {
	Coinbase  string           `json:"coinbase,omitempty"`
	TxID      string           `json:"txid,omitempty"`
	Vout      uint32           `json:"vout"`
	ScriptSig *ScriptSigRecord `json:"scriptSig,omitempty"`
	Sequence  uint32           `json:"sequence"`
}

// ScriptSigRecord is the scriptSig of a TxInRecord.
type ScriptSigRecord struct {
	Asm string `json:"asm"`
	Hex string `json:"hex"`
}

// TxOutRecord is one entry of TransactionRecord.Vout. Value is in BTC.
type TxOutRecord struct {
	Value        float64            `json:"value"`
	N            uint32             `json:"n"`
	ScriptPubKey ScriptPubKeyRecord `json:"scriptPubKey"`
}

// ScriptPubKeyRecord is the scriptPubKey of a TxOutRecord.
type ScriptPubKeyRecord struct {
	Asm string `json:"asm,omitempty"`
	Hex string `json:"hex"`
}

// DecodeTransactionRecord decodes a JSON transaction record.
func DecodeTransactionRecord(data []byte) (*TransactionRecord, error) {
	record := &TransactionRecord{}
	err := json.Unmarshal(data, record)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode transaction record")
	}
	return record, nil
}

// ParseTransactionRecord decodes a JSON transaction record and parses the
// transaction from its hex field.
func ParseTransactionRecord(data []byte) (*MsgTx, error) {
	record, err := DecodeTransactionRecord(data)
	if err != nil {
		return nil, err
	}
	return ParseTransaction(record.Hex)
}

// VerifyRecord checks msg against the decoded fields of record and returns
// an error describing the first mismatch.
func VerifyRecord(msg *MsgTx, record *TransactionRecord) error {
	if record.TxID != "" {
		txID, err := msg.TxID()
		if err != nil {
			return err
		}
		if txID.String() != record.TxID {
			return errors.Errorf("txid: got %s, want %s", txID, record.TxID)
		}
	}

	if len(record.Vin) != len(msg.TxIn) {
		return errors.Errorf("vin: got %d inputs, want %d", len(msg.TxIn), len(record.Vin))
	}
	for i, txIn := range msg.TxIn {
		err := verifyTxIn(txIn, &record.Vin[i])
		if err != nil {
			return errors.Wrapf(err, "vin[%d]", i)
		}
	}

	if len(record.Vout) != len(msg.TxOut) {
		return errors.Errorf("vout: got %d outputs, want %d", len(msg.TxOut), len(record.Vout))
	}
	for i, txOut := range msg.TxOut {
		err := verifyTxOut(txOut, &record.Vout[i])
		if err != nil {
			return errors.Wrapf(err, "vout[%d]", i)
		}
	}
	return nil
}

func verifyTxIn(txIn *TxIn, record *TxInRecord) error {
	if txIn.Sequence != record.Sequence {
		return errors.Errorf("sequence: got %d, want %d", txIn.Sequence, record.Sequence)
	}

	if record.Coinbase != "" {
		if !txIn.IsCoinbase() {
			return errors.Errorf("expected a coinbase input, got %s", txIn.PreviousOutPoint)
		}
		payload, err := txIn.SignatureScript.Payload()
		if err != nil {
			return err
		}
		if got := hex.EncodeToString(payload); got != record.Coinbase {
			return errors.Errorf("coinbase: got %s, want %s", got, record.Coinbase)
		}
		return nil
	}

	if got := txIn.PreviousOutPoint.TxID.String(); got != record.TxID {
		return errors.Errorf("txid: got %s, want %s", got, record.TxID)
	}
	if txIn.PreviousOutPoint.Index != record.Vout {
		return errors.Errorf("vout: got %d, want %d", txIn.PreviousOutPoint.Index, record.Vout)
	}
	if record.ScriptSig != nil {
		if got := txIn.SignatureScript.Asm(true); got != record.ScriptSig.Asm {
			return errors.Errorf("scriptSig asm: got %q, want %q", got, record.ScriptSig.Asm)
		}
	}
	return nil
}

func verifyTxOut(txOut *TxOut, record *TxOutRecord) error {
	want, err := btcutil.NewAmount(record.Value)
	if err != nil {
		return errors.Wrapf(err, "invalid value %v", record.Value)
	}
	if got := btcutil.Amount(txOut.Value); got != want {
		return errors.Errorf("value: got %s, want %s", got, want)
	}
	payload, err := txOut.PkScript.Payload()
	if err != nil {
		return err
	}
	if got := hex.EncodeToString(payload); got != record.ScriptPubKey.Hex {
		return errors.Errorf("scriptPubKey: got %s, want %s", got, record.ScriptPubKey.Hex)
	}
	return nil
}
