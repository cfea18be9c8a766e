// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package address encodes and decodes the display form of Bitcoin addresses.

An address is derived from a 20-byte hash and an address type, for one of
the networks in chaincfg:

	legacy       base58check pay-to-pubkey-hash
	p2sh-segwit  base58check pay-to-script-hash of a version 0 witness program
	bech32       bech32 version 0 witness pubkey hash
*/
package address

import (
	"github.com/btcprim/btcprim/chaincfg"
	"github.com/btcprim/btcprim/util/hashes"
	"github.com/btcprim/btcprim/wire"
	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
)

// Type is the kind of script an address pays to.
type Type string

// The address types a node's getnewaddress call accepts.
const (
	TypeLegacy     Type = "legacy"
	TypeP2SHSegwit Type = "p2sh-segwit"
	TypeBech32     Type = "bech32"

	// TypeScriptHash is reported when decoding a pay-to-script-hash address,
	// since the display form doesn't tell what script it commits to.
	TypeScriptHash Type = "p2sh"
)

// DefaultType is the type used when none is given.
const DefaultType = TypeBech32

// ErrInvalidAddressType is returned for an unknown address type.
var ErrInvalidAddressType = errors.New("invalid address type")

// ErrUnknownNetwork is returned when an address belongs to none of the
// known networks.
var ErrUnknownNetwork = errors.New("address is not for a known network")

// ParseType returns the address type named s. An empty s is DefaultType.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "":
		return DefaultType, nil
	case TypeLegacy, TypeP2SHSegwit, TypeBech32:
		return Type(s), nil
	}
	return "", errors.Wrapf(ErrInvalidAddressType, "%q", s)
}

// Encode returns the display form of the address of the given type paying
// to pubKeyHash on the network described by params.
func Encode(pubKeyHash []byte, addrType Type, params *chaincfg.Params) (string, error) {
	addr, err := newAddress(pubKeyHash, addrType, params)
	if err != nil {
		return "", err
	}
	encoded := addr.EncodeAddress()
	log.Tracef("Encoded %x as %s address %s on %s", pubKeyHash, addrType, encoded, params.Name)
	return encoded, nil
}

// FromPublicKey returns the display form of the address of the given type
// paying to the serialized public key pubKey.
func FromPublicKey(pubKey []byte, addrType Type, params *chaincfg.Params) (string, error) {
	return Encode(hashes.Hash160(pubKey), addrType, params)
}

func newAddress(pubKeyHash []byte, addrType Type, params *chaincfg.Params) (btcutil.Address, error) {
	if len(pubKeyHash) != hashes.Hash160Size {
		return nil, errors.Errorf("pubkey hash must be %d bytes, got %d",
			hashes.Hash160Size, len(pubKeyHash))
	}
	switch addrType {
	case TypeLegacy:
		return btcutil.NewAddressPubKeyHash(pubKeyHash, params.Params)
	case TypeBech32:
		return btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params.Params)
	case TypeP2SHSegwit:
		redeemScript, err := WitnessProgram(pubKeyHash)
		if err != nil {
			return nil, err
		}
		payload, err := redeemScript.Payload()
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHashFromHash(hashes.Hash160(payload), params.Params)
	}
	return nil, errors.Wrapf(ErrInvalidAddressType, "%q", addrType)
}

// Decoded is an address broken into its parts.
type Decoded struct {
	Type Type

	// Hash is the pubkey hash for legacy and bech32 addresses, and the
	// script hash for pay-to-script-hash addresses.
	Hash []byte

	Params *chaincfg.Params
}

var knownNets = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
}

// Decode parses the display form of an address. Base58 addresses are shared
// by testnet3 and regtest; they decode as testnet3.
func Decode(encoded string) (*Decoded, error) {
	for _, params := range knownNets {
		addr, err := btcutil.DecodeAddress(encoded, params.Params)
		if err != nil || !addr.IsForNet(params.Params) {
			continue
		}
		decoded := &Decoded{Hash: addr.ScriptAddress(), Params: params}
		switch addr.(type) {
		case *btcutil.AddressPubKeyHash:
			decoded.Type = TypeLegacy
		case *btcutil.AddressWitnessPubKeyHash:
			decoded.Type = TypeBech32
		case *btcutil.AddressScriptHash:
			decoded.Type = TypeScriptHash
		default:
			return nil, errors.Wrapf(ErrInvalidAddressType, "%s is a %T", encoded, addr)
		}
		return decoded, nil
	}
	return nil, errors.Wrapf(ErrUnknownNetwork, "%q", encoded)
}

// WitnessProgram returns the version 0 witness program committing to
// pubKeyHash: OP_0 <pubKeyHash>.
func WitnessProgram(pubKeyHash []byte) (*wire.Script, error) {
	return scriptWithHash([]byte{wire.OpZero}, pubKeyHash, nil)
}

// PayToAddrScript returns the scriptPubKey paying to decoded.
func PayToAddrScript(decoded *Decoded) (*wire.Script, error) {
	switch decoded.Type {
	case TypeLegacy:
		return scriptWithHash([]byte{wire.OpDup, wire.OpHash160}, decoded.Hash,
			[]byte{wire.OpEqualVerify, wire.OpCheckSig})
	case TypeScriptHash, TypeP2SHSegwit:
		return scriptWithHash([]byte{wire.OpHash160}, decoded.Hash, []byte{wire.OpEqual})
	case TypeBech32:
		return WitnessProgram(decoded.Hash)
	}
	return nil, errors.Wrapf(ErrInvalidAddressType, "%q", decoded.Type)
}

// scriptWithHash parses the script made of the prefix opcodes, a push of
// hash and the suffix opcodes.
func scriptWithHash(prefix, hash, suffix []byte) (*wire.Script, error) {
	if len(hash) == 0 || len(hash) > wire.OpData75 {
		return nil, errors.Errorf("hash of %d bytes can't be pushed directly", len(hash))
	}
	payload := make([]byte, 0, len(prefix)+1+len(hash)+len(suffix))
	payload = append(payload, prefix...)
	payload = append(payload, byte(len(hash)))
	payload = append(payload, hash...)
	payload = append(payload, suffix...)
	return wire.ParseScriptBytes(payload)
}
