package signcore

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexBytes is a byte slice that crosses the JSON boundary as lowercase hex
// with a 0x prefix. Decoding accepts the prefix as optional and either case,
// so every byte field in requests follows the same rule.
type HexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(h))
}

// UnmarshalJSON implements json.Unmarshaler. null leaves h unchanged.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewError(ErrCodeBridgeError, "hex field must be a string", err)
	}
	b, err := ParseHex(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

// String returns the 0x form.
func (h HexBytes) String() string {
	return hexutil.Encode(h)
}

// ParseHex decodes hex text with an optional 0x or 0X prefix. Odd lengths
// and non-hex characters fail with InvalidInput.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, Errorf(ErrInvalidInput, "hex string has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, NewError(ErrCodeInvalidInput, "malformed hex string", err)
	}
	return b, nil
}
