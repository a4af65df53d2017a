package hd

import (
	"github.com/hawala-wallet/signcore"
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic generates a BIP-39 mnemonic from bits of entropy
// (128, 160, 192, 224 or 256).
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "invalid entropy size", err)
	}
	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic validates mnemonic and returns its 64-byte BIP-39 seed
// (PBKDF2-HMAC-SHA512, 2048 rounds, salt "mnemonic"+passphrase).
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "invalid mnemonic", err)
	}
	return seed, nil
}

// DeriveFromMnemonic derives the key at path straight from a mnemonic.
func DeriveFromMnemonic(scheme signcore.CurveType, mnemonic, passphrase, path string) (*DerivedKey, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed)
	return DerivePath(scheme, seed, path)
}
