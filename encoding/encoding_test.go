package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hawala-wallet/signcore"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"with prefix", "0xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"without prefix", "deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"upper case", "0XDEADBEEF", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"empty", "0x", []byte{}, false},
		{"surrounding space", " 0x01 ", []byte{0x01}, false},
		{"odd length", "0xabc", nil, true},
		{"non hex", "0xzz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				if !errors.Is(err, signcore.ErrInvalidInput) {
					t.Errorf("expected InvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("DecodeHex() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestEncodeHex(t *testing.T) {
	if got := EncodeHex([]byte{0xAB, 0x01}); got != "0xab01" {
		t.Errorf("EncodeHex() = %q", got)
	}
	if got := EncodeHex(nil); got != "0x" {
		t.Errorf("EncodeHex(nil) = %q", got)
	}
}

func TestDecodeHexN(t *testing.T) {
	if _, err := DecodeHexN("0x0102", 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := DecodeHexN("0x0102", 32); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for wrong length, got %v", err)
	}
	key, err := Decode32("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	if err != nil {
		t.Fatalf("Decode32() error: %v", err)
	}
	if key[0] != 0xac || key[31] != 0x80 {
		t.Errorf("Decode32() = %x", key)
	}
}

func TestHexBytesJSON(t *testing.T) {
	type payload struct {
		Hash HexBytes `json:"hash"`
	}

	data, err := json.Marshal(payload{Hash: HexBytes{0x01, 0xff}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"hash":"0x01ff"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"hash":"01FF"}`), &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !bytes.Equal(p.Hash, []byte{0x01, 0xff}) {
		t.Errorf("Unmarshal() = %x", []byte(p.Hash))
	}

	err = json.Unmarshal([]byte(`{"hash":12}`), &p)
	if signcore.CodeOf(err) != signcore.ErrCodeBridgeError {
		t.Errorf("expected BridgeError for non-string, got %v", err)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("Zero() left %x", b)
	}
}
