package evm

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/encoding"
)

var (
	// ErrInvalidKeystore indicates a keystore file that cannot be read or decrypted.
	ErrInvalidKeystore = errors.New("invalid keystore")

	// ErrInvalidMnemonic indicates a mnemonic that fails BIP-39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrNoKey indicates a LocalSigner built without a key source.
	ErrNoKey = errors.New("no private key configured")
)

// LocalSigner holds a key in process and produces the same ExternalSignature
// values a hardware or air-gapped signer would return.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// SignerOption configures a LocalSigner.
type SignerOption func(*LocalSigner) error

// NewLocalSigner creates a signer from exactly one key source option.
func NewLocalSigner(opts ...SignerOption) (*LocalSigner, error) {
	s := &LocalSigner{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.privateKey == nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "local signer needs a key", ErrNoKey)
	}
	s.address = crypto.PubkeyToAddress(s.privateKey.PublicKey)
	return s, nil
}

// WithPrivateKey sets the key from hex, with or without 0x.
func WithPrivateKey(hexKey string) SignerOption {
	return func(s *LocalSigner) error {
		raw, err := encoding.DecodeHex(strings.TrimSpace(hexKey))
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "private key is not hex", signcore.ErrInvalidPrivateKey)
		}
		defer encoding.Zero(raw)
		key, err := curve.ToECDSA(raw)
		if err != nil {
			return err
		}
		s.privateKey = key
		return nil
	}
}

// Address returns the signer's Ethereum address.
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// PublicKey returns the compressed public key.
func (s *LocalSigner) PublicKey() []byte {
	return crypto.CompressPubkey(&s.privateKey.PublicKey)
}

// SignPreImage signs a secp256k1 ECDSA pre-image and labels the result so
// MatchSignatures pairs it back with pre.
func (s *LocalSigner) SignPreImage(pre signcore.PreImageHash) (signcore.ExternalSignature, error) {
	if pre.Algorithm != signcore.AlgorithmECDSASecp256k1 {
		return signcore.ExternalSignature{}, signcore.Errorf(signcore.ErrUnsupportedCombination, "local EVM signer cannot produce %s signatures", pre.Algorithm)
	}
	sig, err := crypto.Sign(pre.Hash, s.privateKey)
	if err != nil {
		return signcore.ExternalSignature{}, signcore.NewError(signcore.ErrCodeSigningFailed, "signing pre-image", err)
	}
	return signcore.ExternalSignature{
		Signature:  sig[:64],
		RecoveryID: signcore.RecoveryID(sig[64]),
		InputIndex: pre.InputIndex,
		SignerID:   pre.SignerID,
		PublicKey:  s.PublicKey(),
	}, nil
}

// SignTransaction runs both phases with this key: authorizations first (for
// set-code transactions), then the transaction itself.
func (s *LocalSigner) SignTransaction(tx Transaction) (*signcore.EthereumTransaction, error) {
	var authSigs []signcore.ExternalSignature
	if tx.Type == TypeSetCode {
		pres, err := AuthorizationPreImages(tx)
		if err != nil {
			return nil, err
		}
		for _, pre := range pres {
			sig, err := s.SignPreImage(pre)
			if err != nil {
				return nil, err
			}
			authSigs = append(authSigs, sig)
		}
	}

	pre, err := PreImage(tx, authSigs)
	if err != nil {
		return nil, err
	}
	sig, err := s.SignPreImage(pre)
	if err != nil {
		return nil, err
	}
	return Compile(tx, sig, authSigs)
}
