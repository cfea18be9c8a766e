package main

import (
	"context"
	"time"

	"github.com/btcprim/btcprim/mining"
	"github.com/btcprim/btcprim/wire"
)

type mineResult struct {
	Hex         string `json:"hex"`
	Hash        string `json:"hash"`
	Nonce       uint32 `json:"nonce"`
	Time        uint32 `json:"time"`
	HashesTried uint64 `json:"hashesTried"`
}

func mine(conf *mineConfig, p *printer) error {
	template, err := wire.ParseBlockHeader(conf.Hex)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(conf.Timeout)*time.Second)
		defer cancel()
	}

	miner := mining.NewMiner(template)
	if conf.MaxNonce != 0 {
		miner.MaxNonce = conf.MaxNonce
	}
	miner.TimeRolls = conf.TimeRolls

	solved, err := miner.Solve(ctx)
	if err != nil {
		return err
	}
	err = p.printJSON(&mineResult{
		Hex:         solved.Hex(),
		Hash:        solved.BlockHash().String(),
		Nonce:       solved.Nonce(),
		Time:        solved.Timestamp(),
		HashesTried: miner.HashesTried(),
	})
	if err != nil {
		return err
	}
	p.dump(solved)
	return nil
}
