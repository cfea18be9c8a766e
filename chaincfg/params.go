// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"bytes"

	btcchaincfg "github.com/btcsuite/btcd/chaincfg"
	"github.com/btcprim/btcprim/wire"
	"github.com/pkg/errors"
)

// Params defines a Bitcoin network by its parameters. The consensus and
// address parameters come from btcd; RPCPort is the port bitcoind listens
// on for RPC on that network, which differs from btcd's.
type Params struct {
	*btcchaincfg.Params

	// RPCPort is bitcoind's default RPC port.
	RPCPort string
}

// MainNetParams defines the network parameters for the main Bitcoin network.
var MainNetParams = Params{
	Params:  &btcchaincfg.MainNetParams,
	RPCPort: "8332",
}

// TestNet3Params defines the network parameters for the test Bitcoin network
// (version 3).
var TestNet3Params = Params{
	Params:  &btcchaincfg.TestNet3Params,
	RPCPort: "18332",
}

// RegressionNetParams defines the network parameters for the regression test
// Bitcoin network.
var RegressionNetParams = Params{
	Params:  &btcchaincfg.RegressionNetParams,
	RPCPort: "18443",
}

var registeredNets = []*Params{&MainNetParams, &TestNet3Params, &RegressionNetParams}

// ErrUnknownNet describes an error where a network name is not one of the
// known networks.
var ErrUnknownNet = errors.New("unknown network")

// ParamsForName returns the parameters of the network with the given name,
// as reported by a node's getblockchaininfo "chain" field or btcd's own
// naming ("main", "mainnet", "test", "testnet3", "regtest").
func ParamsForName(name string) (*Params, error) {
	switch name {
	case "main":
		return &MainNetParams, nil
	case "test":
		return &TestNet3Params, nil
	}
	for _, params := range registeredNets {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNet, "%q", name)
}

// GenesisHeader returns the network's genesis block header.
func (p *Params) GenesisHeader() (wire.BlockHeader, error) {
	var buf bytes.Buffer
	err := p.GenesisBlock.Header.Serialize(&buf)
	if err != nil {
		return wire.BlockHeader{}, err
	}
	header, err := wire.DeserializeBlockHeader(&buf)
	if err != nil {
		return wire.BlockHeader{}, err
	}
	return header.WithHeight(0), nil
}
