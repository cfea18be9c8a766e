package hashes

import (
	"encoding/hex"
	"testing"
)

func TestDoubleSHA256(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"},
		{"hello", "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50"},
	}
	for _, test := range tests {
		got := hex.EncodeToString(DoubleSHA256([]byte(test.in)))
		if got != test.want {
			t.Errorf("DoubleSHA256(%q): got %s, want %s", test.in, got, test.want)
		}

		h := DoubleHashH([]byte(test.in))
		if h.LittleEndianHex() != test.want {
			t.Errorf("DoubleHashH(%q): little-endian view got %s, want %s",
				test.in, h.LittleEndianHex(), test.want)
		}
	}
}

func TestDoubleHashWriter(t *testing.T) {
	w := NewDoubleHashWriter()
	w.InfallibleWrite([]byte("hel"))
	if _, err := w.Write([]byte("lo")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := w.Finalize(), DoubleHashH([]byte("hello")); got != want {
		t.Errorf("Finalize: got %v, want %v", got, want)
	}
}

func TestHash160(t *testing.T) {
	got := hex.EncodeToString(Hash160(nil))
	want := "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb"
	if got != want {
		t.Errorf("Hash160: got %s, want %s", got, want)
	}
}
