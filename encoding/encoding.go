// Package encoding provides the byte codec shared by every signcore package.
// Bytes cross the boundary as lowercase hex with a 0x prefix; decoding accepts
// the prefix as optional and either case.
package encoding

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hawala-wallet/signcore"
)

// HexBytes is the JSON hex byte type used across requests and results.
type HexBytes = signcore.HexBytes

// EncodeHex renders b as lowercase hex with a 0x prefix.
// An empty or nil slice encodes to "0x".
func EncodeHex(b []byte) string {
	return hexutil.Encode(b)
}

// DecodeHex parses hex text with an optional 0x or 0X prefix.
//
// Returns an InvalidInput error for odd-length input or non-hex characters.
func DecodeHex(s string) ([]byte, error) {
	return signcore.ParseHex(s)
}

// DecodeHexN parses hex text that must decode to exactly n bytes.
func DecodeHexN(s string, n int) ([]byte, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "expected %d bytes, got %d", n, len(b))
	}
	return b, nil
}

// Decode32 parses a 32-byte value such as a private key or digest.
func Decode32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := DecodeHexN(s, 32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Zero overwrites b with zeros. Callers use it to scrub key buffers once a
// signing call returns.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
