package merkle

import (
	"encoding/hex"
	"strings"
)

// flagsPerByte is how many 2-bit flags PackFlags fits in a byte.
const flagsPerByte = 4

// PackFlags packs flags two bits each, four to a byte, starting from the low
// bits of the first byte.
func PackFlags(flags []Flag) []byte {
	packed := make([]byte, (len(flags)+flagsPerByte-1)/flagsPerByte)
	for i, flag := range flags {
		packed[i/flagsPerByte] |= byte(flag&0x03) << (2 * uint(i%flagsPerByte))
	}
	return packed
}

// UnpackFlags reverses PackFlags for count flags. Bits past the last flag
// must be zero.
func UnpackFlags(packed []byte, count int) ([]Flag, error) {
	if count < 0 || (count+flagsPerByte-1)/flagsPerByte != len(packed) {
		return nil, validationError("%d packed bytes can't hold exactly %d flags", len(packed), count)
	}
	flags := make([]Flag, count)
	for i := range flags {
		flags[i] = Flag(packed[i/flagsPerByte]>>(2*uint(i%flagsPerByte))) & 0x03
	}
	if count%flagsPerByte != 0 {
		padding := packed[len(packed)-1] >> (2 * uint(count%flagsPerByte))
		if padding != 0 {
			return nil, validationError("non-zero padding bits after flag %d", count-1)
		}
	}
	return flags, nil
}

// FlagsToHex renders flags one byte each as a "0x" prefixed hex string.
func FlagsToHex(flags []Flag) string {
	raw := make([]byte, len(flags))
	for i, flag := range flags {
		raw[i] = byte(flag)
	}
	return "0x" + hex.EncodeToString(raw)
}

// FlagsFromHex parses the form FlagsToHex produces. A byte above
// FlagHashHash is a ValidationError.
func FlagsFromHex(s string) ([]Flag, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, validationError("malformed flags %q: %s", s, err)
	}
	flags := make([]Flag, len(raw))
	for i, b := range raw {
		if Flag(b) > FlagHashHash {
			return nil, validationError("flag %d has unknown value %d", i, b)
		}
		flags[i] = Flag(b)
	}
	return flags, nil
}
