package endianbytes

import (
	"bytes"
	"math/big"
	"reflect"
	"testing"
)

// mainNetGenesisHash is the hash of the first block in the block chain for the
// main network, in wire (little-endian) order.
var mainNetGenesisHash = []byte{
	0x6f, 0xe2, 0x8c, 0x0a, 0xb6, 0xf1, 0xb3, 0x72,
	0xc1, 0xa6, 0xa2, 0x46, 0xae, 0x63, 0xf7, 0x4f,
	0x93, 0x1e, 0x83, 0x65, 0xe1, 0x5a, 0x08, 0x9c,
	0x68, 0xd6, 0x19, 0x00, 0x00, 0x00, 0x00, 0x00,
}

const mainNetGenesisHashStr = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

// TestViews tests that both orientations of a value are projections of the
// same canonical bytes.
func TestViews(t *testing.T) {
	fromLittle := FromLittleEndianBytes(mainNetGenesisHash)
	fromHex, err := FromBigEndianHex(mainNetGenesisHashStr)
	if err != nil {
		t.Fatalf("FromBigEndianHex: %v", err)
	}
	if fromLittle != fromHex {
		t.Errorf("FromLittleEndianBytes and FromBigEndianHex disagree - got %v, want %v",
			fromLittle, fromHex)
	}
	if !bytes.Equal(fromHex.LittleEndianBytes(), mainNetGenesisHash) {
		t.Errorf("LittleEndianBytes: got %x, want %x", fromHex.LittleEndianBytes(), mainNetGenesisHash)
	}
	if fromLittle.BigEndianHex() != mainNetGenesisHashStr {
		t.Errorf("BigEndianHex: got %s, want %s", fromLittle.BigEndianHex(), mainNetGenesisHashStr)
	}
	if fromLittle.String() != mainNetGenesisHashStr {
		t.Errorf("String: got %s, want %s", fromLittle, mainNetGenesisHashStr)
	}

	prefixed, err := FromLittleEndianHex("0x" + fromLittle.LittleEndianHex())
	if err != nil {
		t.Fatalf("FromLittleEndianHex: %v", err)
	}
	if !prefixed.Equal(fromLittle) {
		t.Errorf("FromLittleEndianHex: got %v, want %v", prefixed, fromLittle)
	}
}

// TestViewsDontAlias makes sure callers can't mutate a value through a view.
func TestViewsDontAlias(t *testing.T) {
	source := []byte{0x01, 0x02, 0x03}
	value := FromBigEndianBytes(source)
	source[0] = 0xff
	view := value.BigEndianBytes()
	view[1] = 0xff
	if value.BigEndianHex() != "010203" {
		t.Errorf("value changed through an alias - got %s", value.BigEndianHex())
	}
}

func TestUintViews(t *testing.T) {
	tests := []struct {
		name   string
		value  EndianBytes
		want   uint64
		hasErr bool
	}{
		{"empty", EndianBytes{}, 0, false},
		{"one byte", FromBigEndianBytes([]byte{0x40}), 64, false},
		{"little endian height", FromLittleEndianBytes([]byte{0x40, 0x01}), 0x0140, false},
		{"eight bytes", FromBigEndianBytes([]byte{1, 0, 0, 0, 0, 0, 0, 0}), 1 << 56, false},
		{"too wide", Zero(9), 0, true},
	}
	for _, test := range tests {
		got, err := test.value.Uint64()
		if (err != nil) != test.hasErr {
			t.Errorf("Uint64 %s: unexpected error state %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("Uint64 %s: got %d, want %d", test.name, got, test.want)
		}
	}

	if got := FromUint32(0x1d00ffff).Uint32(); got != 0x1d00ffff {
		t.Errorf("Uint32: got %x, want %x", got, 0x1d00ffff)
	}
	if got := FromBigEndianBytes([]byte{0xff, 0xff}).BigInt(); got.Cmp(big.NewInt(0xffff)) != 0 {
		t.Errorf("BigInt: got %v, want %v", got, 0xffff)
	}
}

func TestFromUint(t *testing.T) {
	v, err := FromUint(0x1234, 4)
	if err != nil {
		t.Fatalf("FromUint: %v", err)
	}
	if v.BigEndianHex() != "00001234" || v.LittleEndianHex() != "34120000" {
		t.Errorf("FromUint: got be %s le %s", v.BigEndianHex(), v.LittleEndianHex())
	}
	if _, err := FromUint(0x1234, 1); err == nil {
		t.Errorf("FromUint: expected overflow error")
	}
	if _, err := FromUint(1, 9); err == nil {
		t.Errorf("FromUint: expected width error")
	}
}

func TestConcat(t *testing.T) {
	a := FromBigEndianBytes([]byte{0x01, 0x02})
	b := FromBigEndianBytes([]byte{0x03, 0x04})

	if got := a.Concat(b).BigEndianHex(); got != "01020304" {
		t.Errorf("Concat: got %s, want 01020304", got)
	}
	if got := ConcatBigEndian(a, b); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("ConcatBigEndian: got %x", got)
	}
	if got := ConcatLittleEndian(a, b); !bytes.Equal(got, []byte{2, 1, 4, 3}) {
		t.Errorf("ConcatLittleEndian: got %x", got)
	}
}

func TestEquality(t *testing.T) {
	a := FromBigEndianBytes([]byte{0x00, 0x01})
	b := FromLittleEndianBytes([]byte{0x01, 0x00})
	c := FromBigEndianBytes([]byte{0x01})
	if !a.Equal(b) || a != b {
		t.Errorf("Equal: %v and %v should match", a, b)
	}
	if a.Equal(c) {
		t.Errorf("Equal: values of different widths must differ")
	}
	if a.Compare(c) >= 0 {
		t.Errorf("Compare: %v should sort before %v", a, c)
	}
	set := map[EndianBytes]struct{}{a: {}}
	if _, ok := set[b]; !ok {
		t.Errorf("map lookup by equal value failed")
	}
	if !Zero(32).IsZero() || c.IsZero() {
		t.Errorf("IsZero: wrong result")
	}
}

func TestBadHex(t *testing.T) {
	if _, err := FromBigEndianHex("abcdefg"); err == nil {
		t.Errorf("FromBigEndianHex: expected error for non-hex input")
	}
	if _, err := FromLittleEndianHex("abc"); err == nil {
		t.Errorf("FromLittleEndianHex: expected error for odd-length input")
	}
}

func TestStrings(t *testing.T) {
	values := []EndianBytes{FromBigEndianBytes([]byte{0xab}), FromBigEndianBytes([]byte{0x01, 0x02})}
	want := []string{"ab", "0102"}
	if got := Strings(values); !reflect.DeepEqual(got, want) {
		t.Errorf("Strings: got %v, want %v", got, want)
	}
}
