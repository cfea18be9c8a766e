package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/btcprim/btcprim/regtest"
	"github.com/pkg/errors"
)

func regtestNode(conf *regtestConfig, p *printer) error {
	if conf.SrcPath == "" {
		return errors.New("--srcpath is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	node := regtest.NewNode(&conf.Config)
	if conf.Shutdown {
		stopped, err := node.Shutdown(ctx)
		if err != nil {
			return err
		}
		p.printf("stopped: %t\n", stopped)
		return nil
	}

	coinbaseAddress, err := node.Up(ctx, conf.Reload)
	if err != nil {
		return err
	}
	p.printf("coinbase address: %s\n", coinbaseAddress)

	if conf.Generate <= 0 {
		return nil
	}
	hashes, err := node.MakeBlocks(ctx, conf.Generate)
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		p.printf("%s\n", hash)
	}
	if len(hashes) == 0 {
		return nil
	}
	tip, err := node.Block(ctx, hashes[len(hashes)-1])
	if err != nil {
		return err
	}
	p.dump(tip.Header())
	return nil
}
