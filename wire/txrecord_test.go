package wire

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

const legacyTxRecordJSON = `{
  "txid": "` + legacyTxID + `",
  "hex": "` + legacyTxHex + `",
  "vin": [
    {
      "txid": "` + genesisMerkleRoot + `",
      "vout": 0,
      "scriptSig": {
        "asm": "` + testSignatureHex + `[ALL] ` + testPubKeyHex + `",
        "hex": "47` + testSignatureHex + `0121` + testPubKeyHex + `"
      },
      "sequence": 4294967295
    }
  ],
  "vout": [
    {
      "value": 49.9999,
      "n": 0,
      "scriptPubKey": {
        "asm": "OP_DUP OP_HASH160 c8c9cacbcccdcecfd0d1d2d3d4d5d6d7d8d9dadb OP_EQUALVERIFY OP_CHECKSIG",
        "hex": "` + testP2PKHHex + `"
      }
    },
    {
      "value": 0.00012345,
      "n": 1,
      "scriptPubKey": {
        "asm": "OP_HASH160 000102030405060708090a0b0c0d0e0f10111213 OP_EQUAL",
        "hex": "a914000102030405060708090a0b0c0d0e0f1011121387"
      }
    }
  ]
}`

const genesisCoinbaseRecordJSON = `{
  "txid": "` + genesisMerkleRoot + `",
  "hex": "` + genesisCoinbaseHex + `",
  "vin": [
    {
      "coinbase": "04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f757420666f722062616e6b73",
      "sequence": 4294967295
    }
  ],
  "vout": [
    {
      "value": 50.00000000,
      "n": 0,
      "scriptPubKey": {
        "hex": "4104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac"
      }
    }
  ]
}`

func TestVerifyRecord(t *testing.T) {
	for _, data := range []string{legacyTxRecordJSON, genesisCoinbaseRecordJSON} {
		record, err := DecodeTransactionRecord([]byte(data))
		if err != nil {
			t.Fatalf("DecodeTransactionRecord: %v", err)
		}
		msg, err := ParseTransactionRecord([]byte(data))
		if err != nil {
			t.Fatalf("ParseTransactionRecord: %v", err)
		}
		if err := VerifyRecord(msg, record); err != nil {
			t.Errorf("VerifyRecord %s: %v", record.TxID, err)
		}
	}
}

func TestVerifyRecordMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(record *TransactionRecord)
		want   string
	}{
		{
			name:   "txid",
			mutate: func(record *TransactionRecord) { record.TxID = genesisMerkleRoot },
			want:   "txid",
		},
		{
			name:   "input count",
			mutate: func(record *TransactionRecord) { record.Vin = nil },
			want:   "vin",
		},
		{
			name:   "sequence",
			mutate: func(record *TransactionRecord) { record.Vin[0].Sequence = 0 },
			want:   "sequence",
		},
		{
			name:   "previous index",
			mutate: func(record *TransactionRecord) { record.Vin[0].Vout = 1 },
			want:   "vout",
		},
		{
			name: "scriptSig asm",
			mutate: func(record *TransactionRecord) {
				record.Vin[0].ScriptSig.Asm = strings.Replace(record.Vin[0].ScriptSig.Asm, "[ALL]", "01", 1)
			},
			want: "scriptSig asm",
		},
		{
			name:   "value",
			mutate: func(record *TransactionRecord) { record.Vout[0].Value = 50 },
			want:   "value",
		},
		{
			name:   "scriptPubKey",
			mutate: func(record *TransactionRecord) { record.Vout[1].ScriptPubKey.Hex = testP2PKHHex },
			want:   "scriptPubKey",
		},
		{
			name: "coinbase expected",
			mutate: func(record *TransactionRecord) {
				record.Vin[0] = TxInRecord{Coinbase: "00", Sequence: MaxTxInSequenceNum}
			},
			want: "coinbase",
		},
	}

	msg, err := ParseTransaction(legacyTxHex)
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	for _, test := range tests {
		record, err := DecodeTransactionRecord([]byte(legacyTxRecordJSON))
		if err != nil {
			t.Fatalf("DecodeTransactionRecord: %v", err)
		}
		test.mutate(record)
		err = VerifyRecord(msg, record)
		if err == nil {
			t.Errorf("VerifyRecord %s: unexpected success", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("VerifyRecord %s: error %q doesn't mention %q", test.name, err, test.want)
		}
	}
}

func TestTransactionRecordJSON(t *testing.T) {
	if _, err := DecodeTransactionRecord([]byte(`{"hex": 5}`)); err == nil {
		t.Errorf("DecodeTransactionRecord: unexpected success on a numeric hex field")
	}
	if _, err := ParseTransactionRecord([]byte(`{"hex": "0100"}`)); err == nil {
		t.Errorf("ParseTransactionRecord: unexpected success on a truncated transaction")
	}

	// Only the hex field is needed to rebuild a transaction.
	encoded, err := json.Marshal(TransactionRecord{Hex: legacyTxHex})
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	msg, err := ParseTransactionRecord(encoded)
	if err != nil {
		t.Fatalf("ParseTransactionRecord: %v", err)
	}
	if got := txIDOf(t, msg).String(); got != legacyTxID {
		t.Errorf("TxID: got %s, want %s", got, legacyTxID)
	}
}
