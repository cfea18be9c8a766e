package main

import (
	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

type txInResult struct {
	PreviousOutPoint string   `json:"previousOutPoint"`
	ScriptSig        string   `json:"scriptSig"`
	Sequence         uint32   `json:"sequence"`
	Witness          []string `json:"witness,omitempty"`
}

type txOutResult struct {
	Value        float64 `json:"value"`
	ScriptPubKey string  `json:"scriptPubKey"`
}

type txResult struct {
	TxID     string        `json:"txid"`
	Hash     string        `json:"hash"`
	Version  int32         `json:"version"`
	Size     int           `json:"size"`
	Coinbase bool          `json:"coinbase"`
	Height   *uint64       `json:"height,omitempty"`
	Vin      []txInResult  `json:"vin"`
	Vout     []txOutResult `json:"vout"`
	LockTime uint32        `json:"locktime"`
}

func tx(conf *txConfig, p *printer) error {
	var msg *wire.MsgTx
	var err error
	switch {
	case conf.Hex != "" && conf.Record != "":
		return errors.New("only one of --hex and --record may be given")
	case conf.Hex != "":
		msg, err = wire.ParseTransaction(conf.Hex)
	case conf.Record != "":
		msg, err = parseCheckedRecord(conf.Record)
	default:
		return errors.New("one of --hex and --record is required")
	}
	if err != nil {
		return err
	}

	result, err := newTxResult(msg)
	if err != nil {
		return err
	}
	err = p.printJSON(result)
	if err != nil {
		return err
	}
	p.dump(msg)
	return nil
}

func parseCheckedRecord(arg string) (*wire.MsgTx, error) {
	data, err := readArgument(arg)
	if err != nil {
		return nil, err
	}
	record, err := wire.DecodeTransactionRecord(data)
	if err != nil {
		return nil, err
	}
	msg, err := wire.ParseTransaction(record.Hex)
	if err != nil {
		return nil, err
	}
	err = wire.VerifyRecord(msg, record)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func newTxResult(msg *wire.MsgTx) (*txResult, error) {
	txID, err := msg.TxID()
	if err != nil {
		return nil, err
	}
	wtxID, err := msg.WitnessHash()
	if err != nil {
		return nil, err
	}
	result := &txResult{
		TxID:     txID.String(),
		Hash:     wtxID.String(),
		Version:  msg.Version,
		Size:     msg.SerializeSize(),
		Coinbase: msg.IsCoinbase(),
		Vin:      make([]txInResult, len(msg.TxIn)),
		Vout:     make([]txOutResult, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}
	if height, err := msg.Height(); err == nil {
		result.Height = &height
	}
	for i, txIn := range msg.TxIn {
		result.Vin[i] = txInResult{
			PreviousOutPoint: txIn.PreviousOutPoint.String(),
			ScriptSig:        txIn.SignatureScript.String(),
			Sequence:         txIn.Sequence,
		}
		for _, item := range txIn.Witness {
			result.Vin[i].Witness = append(result.Vin[i].Witness, hexString(item.Data()))
		}
	}
	for i, txOut := range msg.TxOut {
		result.Vout[i] = txOutResult{
			Value:        btcValue(txOut.Value),
			ScriptPubKey: txOut.PkScript.Asm(false),
		}
	}
	return result, nil
}
