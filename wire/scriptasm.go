package wire

import (
	"encoding/hex"
	"strconv"
)

// sighashTypes names the hash types shown after a decoded signature.
var sighashTypes = map[byte]string{
	0x01: "ALL",
	0x02: "NONE",
	0x03: "SINGLE",
	0x81: "ALL|ANYONECANPAY",
	0x82: "NONE|ANYONECANPAY",
	0x83: "SINGLE|ANYONECANPAY",
}

func pushAsm(data []byte, decodeSighash bool) string {
	if len(data) <= 4 {
		return strconv.FormatInt(scriptNum(data), 10)
	}
	if decodeSighash && isStrictSignature(data) {
		if name, ok := sighashTypes[data[len(data)-1]]; ok {
			return hex.EncodeToString(data[:len(data)-1]) + "[" + name + "]"
		}
	}
	return hex.EncodeToString(data)
}

// scriptNum decodes a minimal little-endian sign-magnitude number of up to
// four bytes.
func scriptNum(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	var result int64
	for i, b := range data {
		result |= int64(b) << uint(8*i)
	}
	// The most significant bit of the last byte is the sign.
	last := data[len(data)-1]
	if last&0x80 != 0 {
		result &= ^(int64(0x80) << uint(8*(len(data)-1)))
		return -result
	}
	return result
}

// isStrictSignature reports whether sig is a strict DER signature followed
// by a defined sighash byte.
//
// Format: 0x30 [total-length] 0x02 [R-length] [R] 0x02 [S-length] [S] [sighash]
func isStrictSignature(sig []byte) bool {
	if len(sig) < 9 || len(sig) > 73 {
		return false
	}
	if sig[0] != 0x30 || int(sig[1]) != len(sig)-3 {
		return false
	}

	lenR := int(sig[3])
	if 5+lenR >= len(sig) {
		return false
	}
	lenS := int(sig[5+lenR])
	if lenR+lenS+7 != len(sig) {
		return false
	}

	if sig[2] != 0x02 || lenR == 0 || sig[4]&0x80 != 0 {
		return false
	}
	// No excess padding on R.
	if lenR > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return false
	}

	if sig[lenR+4] != 0x02 || lenS == 0 || sig[lenR+6]&0x80 != 0 {
		return false
	}
	if lenS > 1 && sig[lenR+6] == 0x00 && sig[lenR+7]&0x80 == 0 {
		return false
	}

	hashType := sig[len(sig)-1] &^ 0x80
	return hashType >= 0x01 && hashType <= 0x03
}
