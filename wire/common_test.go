// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"pgregory.net/rapid"
)

// TestVarIntWire tests wire encode and decode for variable length integers.
func TestVarIntWire(t *testing.T) {
	tests := []struct {
		in  uint64 // Value to encode
		out uint64 // Expected decoded value
		buf []byte // Wire encoding
	}{
		// Single byte
		{0, 0, []byte{0x00}},
		// Max single byte
		{0xfc, 0xfc, []byte{0xfc}},
		// Min 2-byte
		{0xfd, 0xfd, []byte{0xfd, 0x0fd, 0x00}},
		// Max 2-byte
		{0xffff, 0xffff, []byte{0xfd, 0xff, 0xff}},
		// Min 4-byte
		{0x10000, 0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		// Max 4-byte
		{0xffffffff, 0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		// Min 8-byte
		{
			0x100000000, 0x100000000,
			[]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
		},
		// Max 8-byte
		{
			0xffffffffffffffff, 0xffffffffffffffff,
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}

	for i, test := range tests {
		// Encode to wire format.
		var buf bytes.Buffer
		err := WriteVarInt(&buf, test.in)
		if err != nil {
			t.Errorf("WriteVarInt #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteVarInt #%d\n got: %s want: %s", i,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}
		if size := VarIntSerializeSize(test.in); size != len(test.buf) {
			t.Errorf("VarIntSerializeSize #%d: got %d, want %d", i, size, len(test.buf))
		}

		// Decode from wire format.
		rbuf := bytes.NewReader(test.buf)
		val, err := ReadVarInt(rbuf)
		if err != nil {
			t.Errorf("ReadVarInt #%d error %v", i, err)
			continue
		}
		if val != test.out {
			t.Errorf("ReadVarInt #%d\n got: %d want: %d", i,
				val, test.out)
			continue
		}
	}
}

// TestVarIntNonCanonical ensures variable length integers that are not encoded
// canonically return the expected error.
func TestVarIntNonCanonical(t *testing.T) {
	tests := []struct {
		name string // Test name for easier identification
		in   []byte // Value to decode
	}{
		{
			"0 encoded with 3 bytes", []byte{0xfd, 0x00, 0x00},
		},
		{
			"max single-byte value encoded with 3 bytes",
			[]byte{0xfd, 0xfc, 0x00},
		},
		{
			"0 encoded with 5 bytes",
			[]byte{0xfe, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"max three-byte value encoded with 5 bytes",
			[]byte{0xfe, 0xff, 0xff, 0x00, 0x00},
		},
		{
			"0 encoded with 9 bytes",
			[]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"max five-byte value encoded with 9 bytes",
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for i, test := range tests {
		_, err := ReadVarInt(bytes.NewReader(test.in))
		formatErr := &FormatError{}
		if !errors.As(err, &formatErr) {
			t.Errorf("ReadVarInt #%d (%s) unexpected error %v", i,
				test.name, err)
			continue
		}
	}
}

// TestVarIntTruncated ensures a varint cut short is reported as a
// FormatError.
func TestVarIntTruncated(t *testing.T) {
	tests := [][]byte{
		{},
		{0xfd, 0xff},
		{0xfe, 0xff, 0xff, 0xff},
		{0xff, 0x01},
	}
	for i, in := range tests {
		_, err := ReadVarInt(bytes.NewReader(in))
		formatErr := &FormatError{}
		if !errors.As(err, &formatErr) {
			t.Errorf("ReadVarInt #%d: got %v, want FormatError", i, err)
		}
	}
}

// TestVarBytesWire tests wire encode and decode for variable length byte
// arrays, including the max allowed size check.
func TestVarBytesWire(t *testing.T) {
	// bytes256 is a byte array that takes a 2-byte varint to encode.
	bytes256 := bytes.Repeat([]byte{0x01}, 256)

	tests := []struct {
		in  []byte // Byte Array to write
		buf []byte // Wire encoding
	}{
		// Empty byte array
		{[]byte{}, []byte{0x00}},
		// Single byte varint + byte array
		{[]byte{0x01}, []byte{0x01, 0x01}},
		// 2-byte varint + byte array
		{bytes256, append([]byte{0xfd, 0x00, 0x01}, bytes256...)},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		err := WriteVarBytes(&buf, test.in)
		if err != nil {
			t.Errorf("WriteVarBytes #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteVarBytes #%d\n got: %s want: %s", i,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}

		val, err := ReadVarBytes(bytes.NewReader(test.buf), MaxScriptElementSize, "test payload")
		if err != nil {
			t.Errorf("ReadVarBytes #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(val, test.in) {
			t.Errorf("ReadVarBytes #%d\n got: %s want: %s", i,
				spew.Sdump(val), spew.Sdump(test.in))
			continue
		}
	}

	_, err := ReadVarBytes(bytes.NewReader(tests[2].buf), 255, "test payload")
	formatErr := &FormatError{}
	if !errors.As(err, &formatErr) {
		t.Errorf("ReadVarBytes over max: got %v, want FormatError", err)
	}
}

// TestElementWire tests wire encode and decode for the element types used by
// the codecs.
func TestElementWire(t *testing.T) {
	tests := []struct {
		in  interface{} // Value to encode
		buf []byte      // Wire encoding
	}{
		{int32(1), []byte{0x01, 0x00, 0x00, 0x00}},
		{uint32(256), []byte{0x00, 0x01, 0x00, 0x00}},
		{
			int64(65536),
			[]byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			uint64(4294967296),
			[]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
		},
		{uint8(0xab), []byte{0xab}},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		err := WriteElement(&buf, test.in)
		if err != nil {
			t.Errorf("WriteElement #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteElement #%d\n got: %s want: %s", i,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}

		val := test.in
		rv := reflect.New(reflect.TypeOf(val))
		err = ReadElement(bytes.NewReader(test.buf), rv.Interface())
		if err != nil {
			t.Errorf("ReadElement #%d error %v", i, err)
			continue
		}
		if !reflect.DeepEqual(rv.Elem().Interface(), test.in) {
			t.Errorf("ReadElement #%d\n got: %s want: %s", i,
				spew.Sdump(rv.Elem().Interface()), spew.Sdump(test.in))
		}
	}

	var unsupported string
	if err := ReadElement(bytes.NewReader(nil), &unsupported); !errors.Is(err, errNoEncodingForType) {
		t.Errorf("ReadElement on string: got %v, want errNoEncodingForType", err)
	}
	if err := ReadElement(bytes.NewReader([]byte{1, 2}), new([4]byte)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadElement on short input: got %v, want ErrUnexpectedEOF", err)
	}
}

// TestVarIntProperty checks that every value survives a round trip and
// takes the advertised number of bytes.
func TestVarIntProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		val := rapid.Uint64().Draw(t, "val")

		var buf bytes.Buffer
		if err := WriteVarInt(&buf, val); err != nil {
			t.Fatalf("WriteVarInt: %v", err)
		}
		if buf.Len() != VarIntSerializeSize(val) {
			t.Fatalf("VarIntSerializeSize: got %d, want %d", VarIntSerializeSize(val), buf.Len())
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt: %v", err)
		}
		if got != val {
			t.Fatalf("ReadVarInt: got %d, want %d", got, val)
		}
	})
}
