package address

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcprim/btcprim/chaincfg"
	"github.com/pkg/errors"
)

// generatorPubKey is the compressed secp256k1 generator point, the public key
// of private key 1.
const generatorPubKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

const generatorPubKeyHash = "751e76e8199196d454941c45d1b3a323f1433bd6"

func TestEncode(t *testing.T) {
	pubKeyHash, _ := hex.DecodeString(generatorPubKeyHash)
	tests := []struct {
		params   *chaincfg.Params
		addrType Type
		want     string
	}{
		{&chaincfg.MainNetParams, TypeLegacy, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"},
		{&chaincfg.MainNetParams, TypeP2SHSegwit, "3JvL6Ymt8MVWiCNHC7oWU6nLeHNJKLZGLN"},
		{&chaincfg.MainNetParams, TypeBech32, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"},
		{&chaincfg.TestNet3Params, TypeLegacy, "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"},
		{&chaincfg.TestNet3Params, TypeP2SHSegwit, "2NAUYAHhujozruyzpsFRP63mbrdaU5wnEpN"},
		{&chaincfg.TestNet3Params, TypeBech32, "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"},
		{&chaincfg.RegressionNetParams, TypeLegacy, "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"},
		{&chaincfg.RegressionNetParams, TypeBech32, "bcrt1qw508d6qejxtdg4y5r3zarvary0c5xw7kygt080"},
	}
	for _, test := range tests {
		got, err := Encode(pubKeyHash, test.addrType, test.params)
		if err != nil {
			t.Errorf("Encode(%s, %s): %v", test.addrType, test.params.Name, err)
			continue
		}
		if got != test.want {
			t.Errorf("Encode(%s, %s): got %s, want %s", test.addrType, test.params.Name, got, test.want)
		}
	}

	pubKey, _ := hex.DecodeString(generatorPubKey)
	got, err := FromPublicKey(pubKey, TypeBech32, &chaincfg.MainNetParams)
	if err != nil || got != "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4" {
		t.Errorf("FromPublicKey: got %s %v", got, err)
	}

	if _, err := Encode(pubKeyHash[:19], TypeLegacy, &chaincfg.MainNetParams); err == nil {
		t.Errorf("Encode with a short hash: unexpected success")
	}
	if _, err := Encode(pubKeyHash, "taproot", &chaincfg.MainNetParams); !errors.Is(err, ErrInvalidAddressType) {
		t.Errorf("Encode with an unknown type: got %v, want ErrInvalidAddressType", err)
	}
}

func TestDecode(t *testing.T) {
	pubKeyHash, _ := hex.DecodeString(generatorPubKeyHash)
	redeemHash, _ := hex.DecodeString("bcfeb728b584253d5f3f70bcb780e9ef218a68f4")
	tests := []struct {
		addr     string
		addrType Type
		hash     []byte
		params   *chaincfg.Params
	}{
		{"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", TypeLegacy, pubKeyHash, &chaincfg.MainNetParams},
		{"3JvL6Ymt8MVWiCNHC7oWU6nLeHNJKLZGLN", TypeScriptHash, redeemHash, &chaincfg.MainNetParams},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", TypeBech32, pubKeyHash, &chaincfg.MainNetParams},
		{"mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r", TypeLegacy, pubKeyHash, &chaincfg.TestNet3Params},
		{"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", TypeBech32, pubKeyHash, &chaincfg.TestNet3Params},
		{"bcrt1qw508d6qejxtdg4y5r3zarvary0c5xw7kygt080", TypeBech32, pubKeyHash, &chaincfg.RegressionNetParams},
	}
	for _, test := range tests {
		decoded, err := Decode(test.addr)
		if err != nil {
			t.Errorf("Decode(%s): %v", test.addr, err)
			continue
		}
		if decoded.Type != test.addrType || decoded.Params != test.params || !bytes.Equal(decoded.Hash, test.hash) {
			t.Errorf("Decode(%s): got %s %s %x, want %s %s %x", test.addr, decoded.Type,
				decoded.Params.Name, decoded.Hash, test.addrType, test.params.Name, test.hash)
		}
	}

	for _, bad := range []string{"", "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMI", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5"} {
		if _, err := Decode(bad); !errors.Is(err, ErrUnknownNetwork) {
			t.Errorf("Decode(%q): got %v, want ErrUnknownNetwork", bad, err)
		}
	}
}

func TestPayToAddrScript(t *testing.T) {
	tests := []struct {
		addr string
		asm  string
	}{
		{"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
			"OP_DUP OP_HASH160 751e76e8199196d454941c45d1b3a323f1433bd6 OP_EQUALVERIFY OP_CHECKSIG"},
		{"3JvL6Ymt8MVWiCNHC7oWU6nLeHNJKLZGLN",
			"OP_HASH160 bcfeb728b584253d5f3f70bcb780e9ef218a68f4 OP_EQUAL"},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			"0 751e76e8199196d454941c45d1b3a323f1433bd6"},
	}
	for _, test := range tests {
		decoded, err := Decode(test.addr)
		if err != nil {
			t.Fatalf("Decode(%s): %v", test.addr, err)
		}
		script, err := PayToAddrScript(decoded)
		if err != nil {
			t.Errorf("PayToAddrScript(%s): %v", test.addr, err)
			continue
		}
		if got := script.String(); got != test.asm {
			t.Errorf("PayToAddrScript(%s): got %q, want %q", test.addr, got, test.asm)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"legacy", "p2sh-segwit", "bech32"} {
		if got, err := ParseType(s); err != nil || string(got) != s {
			t.Errorf("ParseType(%s): got %s %v", s, got, err)
		}
	}
	if got, err := ParseType(""); err != nil || got != DefaultType {
		t.Errorf("ParseType(\"\"): got %s %v, want %s", got, err, DefaultType)
	}
	if _, err := ParseType("p2sh"); !errors.Is(err, ErrInvalidAddressType) {
		t.Errorf("ParseType(p2sh): got %v, want ErrInvalidAddressType", err)
	}
}
