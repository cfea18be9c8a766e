package main

import (
	"github.com/btcprim/btcprim/util"
)

type blockResult struct {
	Hash       string `json:"hash"`
	MerkleRoot string `json:"merkleroot"`
	Height     uint64 `json:"height"`
	TxCount    int    `json:"nTx"`
	Coinbase   string `json:"coinbase,omitempty"`
}

func block(conf *blockConfig, p *printer) error {
	data, err := readArgument(conf.Record)
	if err != nil {
		return err
	}
	b, err := util.ParseBlockRecord(data)
	if err != nil {
		return err
	}

	result := &blockResult{
		Hash:       b.Hash().String(),
		MerkleRoot: b.MerkleRoot().String(),
		Height:     b.Height(),
		TxCount:    len(b.TxIDs()),
	}
	if coinbase, err := b.CoinbaseTxID(); err == nil {
		result.Coinbase = coinbase.String()
	}
	err = p.printJSON(result)
	if err != nil {
		return err
	}
	p.dump(b.Header())

	if len(conf.Indices) == 0 {
		return nil
	}
	proof, err := b.MultiProof(conf.Indices...)
	if err != nil {
		return err
	}
	return printProof(proof, false, p)
}
