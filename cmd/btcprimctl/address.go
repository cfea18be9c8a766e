package main

import (
	"encoding/hex"

	"github.com/btcprim/btcprim/address"
	"github.com/pkg/errors"
)

func encodeAddress(conf *addressConfig, p *printer) error {
	addrType, err := address.ParseType(conf.Type)
	if err != nil {
		return err
	}

	var encoded string
	switch {
	case conf.PubKey != "" && conf.PubKeyHash != "":
		return errors.New("only one of --pubkey and --pubkey-hash may be given")
	case conf.PubKey != "":
		pubKey, err := hex.DecodeString(conf.PubKey)
		if err != nil {
			return errors.Wrap(err, "pubkey is not valid hex")
		}
		encoded, err = address.FromPublicKey(pubKey, addrType, conf.NetParams())
		if err != nil {
			return err
		}
	case conf.PubKeyHash != "":
		pubKeyHash, err := hex.DecodeString(conf.PubKeyHash)
		if err != nil {
			return errors.Wrap(err, "pubkey hash is not valid hex")
		}
		encoded, err = address.Encode(pubKeyHash, addrType, conf.NetParams())
		if err != nil {
			return err
		}
	default:
		return errors.New("one of --pubkey and --pubkey-hash is required")
	}

	p.printf("%s\n", encoded)
	return nil
}

type decodedAddressResult struct {
	Type         string `json:"type"`
	Hash         string `json:"hash"`
	Network      string `json:"network"`
	ScriptPubKey string `json:"scriptPubKey"`
}

func decodeAddress(conf *decodeAddressConfig, p *printer) error {
	decoded, err := address.Decode(conf.Address)
	if err != nil {
		return err
	}
	script, err := address.PayToAddrScript(decoded)
	if err != nil {
		return err
	}
	err = p.printJSON(&decodedAddressResult{
		Type:         string(decoded.Type),
		Hash:         hexString(decoded.Hash),
		Network:      decoded.Params.Name,
		ScriptPubKey: script.String(),
	})
	if err != nil {
		return err
	}
	p.dump(decoded)
	return nil
}
