package evm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/hd"
	"github.com/tyler-smith/go-bip39"
)

// WithKeystore loads the key from an encrypted V3 keystore file.
func WithKeystore(keystorePath, password string) SignerOption {
	return func(s *LocalSigner) error {
		key, err := LoadKeystore(keystorePath, password)
		if err != nil {
			return err
		}
		defer encoding.Zero(key)
		priv, err := crypto.ToECDSA(key)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "keystore holds an invalid key", ErrInvalidKeystore)
		}
		s.privateKey = priv
		return nil
	}
}

// LoadKeystore decrypts a V3 keystore file and returns the raw 32-byte key.
// The caller owns the returned buffer.
func LoadKeystore(keystorePath, password string) ([]byte, error) {
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, fmt.Sprintf("reading keystore: %v", err), ErrInvalidKeystore)
	}

	var keyJSON struct {
		Crypto keystore.CryptoJSON `json:"crypto"`
	}
	if err := json.Unmarshal(data, &keyJSON); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "keystore is not valid JSON", ErrInvalidKeystore)
	}

	key, err := keystore.DecryptDataV3(keyJSON.Crypto, password)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "keystore decryption failed", ErrInvalidKeystore)
	}
	return key, nil
}

// WithMnemonic derives the key at m/44'/60'/0'/0/{index} from a BIP-39
// mnemonic with an empty passphrase.
func WithMnemonic(mnemonic string, index uint32) SignerOption {
	return func(s *LocalSigner) error {
		key, err := KeyFromMnemonic(mnemonic, index)
		if err != nil {
			return err
		}
		defer encoding.Zero(key)
		priv, err := crypto.ToECDSA(key)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "derived key is invalid", ErrInvalidMnemonic)
		}
		s.privateKey = priv
		return nil
	}
}

// KeyFromMnemonic returns the raw key at the default Ethereum path for index.
func KeyFromMnemonic(mnemonic string, index uint32) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "mnemonic failed validation", ErrInvalidMnemonic)
	}
	path := signcore.EthereumMainnet.DerivationPath(0, index)
	key, err := hd.DeriveFromMnemonic(signcore.CurveSecp256k1, mnemonic, "", path)
	if err != nil {
		return nil, err
	}
	encoding.Zero(key.ChainCode)
	return key.PrivateKey, nil
}
