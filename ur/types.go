// Package ur encodes payloads as Uniform Resources (BC-UR) for transfer over
// QR codes between an online host and an air-gapped signer, and reassembles
// multi-part streams scanned in any order.
package ur

import (
	"strings"

	"github.com/hawala-wallet/signcore"
)

// Type is a registered UR type.
type Type string

// Supported UR types.
const (
	TypeBytes          Type = "bytes"
	TypeCryptoPSBT     Type = "crypto-psbt"
	TypeCryptoAccount  Type = "crypto-account"
	TypeCryptoHDKey    Type = "crypto-hdkey"
	TypeCryptoOutput   Type = "crypto-output"
	TypeCryptoSeed     Type = "crypto-seed"
	TypeEthSignRequest Type = "eth-sign-request"
	TypeEthSignature   Type = "eth-signature"
	TypeSolSignRequest Type = "sol-sign-request"
	TypeSolSignature   Type = "sol-signature"
)

var types = []Type{
	TypeBytes, TypeCryptoPSBT, TypeCryptoAccount, TypeCryptoHDKey, TypeCryptoOutput,
	TypeCryptoSeed, TypeEthSignRequest, TypeEthSignature, TypeSolSignRequest, TypeSolSignature,
}

// Alternate spellings some wallets emit.
var aliases = map[string]Type{
	"eth-sign-signature": TypeEthSignature,
	"sol-sign-signature": TypeSolSignature,
}

// ParseType resolves a UR type name, case-insensitively.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range types {
		if string(t) == s {
			return t, nil
		}
	}
	if t, ok := aliases[s]; ok {
		return t, nil
	}
	return "", signcore.Errorf(signcore.ErrUnknownURType, "unknown UR type %q", s)
}

// Types lists the supported UR types.
func Types() []Type {
	return append([]Type(nil), types...)
}
