package main

import (
	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

type headerResult struct {
	*wire.BlockHeaderRecord
	Hex    string `json:"hex"`
	Target string `json:"target"`
}

func header(conf *headerConfig, p *printer) error {
	var h wire.BlockHeader
	var err error
	switch {
	case conf.Hex != "" && conf.Record != "":
		return errors.New("only one of --hex and --record may be given")
	case conf.Hex != "":
		h, err = wire.ParseBlockHeader(conf.Hex)
	case conf.Record != "":
		var data []byte
		data, err = readArgument(conf.Record)
		if err == nil {
			h, err = wire.ParseBlockHeaderRecord(data)
		}
	default:
		return errors.New("one of --hex and --record is required")
	}
	if err != nil {
		return err
	}

	err = p.printJSON(&headerResult{
		BlockHeaderRecord: h.ToRecord(),
		Hex:               h.Hex(),
		Target:            h.Target().Text(16),
	})
	if err != nil {
		return err
	}
	p.dump(h)
	return nil
}
