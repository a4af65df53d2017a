package svm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

var (
	// ErrInvalidKeystore indicates a keygen file that cannot be read or parsed.
	ErrInvalidKeystore = errors.New("invalid keygen file")

	// ErrNoKey indicates a LocalSigner built without a key source.
	ErrNoKey = errors.New("no private key configured")
)

// LocalSigner holds an Ed25519 key in process and signs Solana pre-images.
type LocalSigner struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// SignerOption configures a LocalSigner.
type SignerOption func(*LocalSigner) error

// NewLocalSigner creates a signer from a key source option.
func NewLocalSigner(opts ...SignerOption) (*LocalSigner, error) {
	s := &LocalSigner{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if len(s.privateKey) == 0 {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "local signer needs a key", ErrNoKey)
	}
	s.publicKey = s.privateKey.PublicKey()
	return s, nil
}

// WithPrivateKey sets the 64-byte keypair from base58, the format the
// Solana CLI and most wallets export.
func WithPrivateKey(base58Key string) SignerOption {
	return func(s *LocalSigner) error {
		key, err := solana.PrivateKeyFromBase58(base58Key)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "private key is not base58", signcore.ErrInvalidPrivateKey)
		}
		return s.setKeypair(key)
	}
}

// WithSeed sets the key from a 32-byte Ed25519 seed, as produced by hd
// derivation.
func WithSeed(seed []byte) SignerOption {
	return func(s *LocalSigner) error {
		pub, err := curve.PublicKey(signcore.CurveEd25519, seed)
		if err != nil {
			return err
		}
		key := make(solana.PrivateKey, 0, 64)
		key = append(key, seed...)
		s.privateKey = append(key, pub...)
		return nil
	}
}

// WithKeygenFile loads a keypair from a Solana keygen JSON file, a JSON
// array of 64 byte values.
func WithKeygenFile(path string) SignerOption {
	return func(s *LocalSigner) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, fmt.Sprintf("reading %s", path), fmt.Errorf("%w: %v", ErrInvalidKeystore, err))
		}
		var keyBytes []byte
		if err := json.Unmarshal(data, &keyBytes); err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "keygen file is not a JSON byte array", ErrInvalidKeystore)
		}
		return s.setKeypair(solana.PrivateKey(keyBytes))
	}
}

func (s *LocalSigner) setKeypair(key solana.PrivateKey) error {
	if len(key) != 64 {
		return signcore.NewError(signcore.ErrCodeInvalidInput, fmt.Sprintf("keypair must be 64 bytes, got %d", len(key)), signcore.ErrInvalidPrivateKey)
	}
	pub, err := curve.PublicKey(signcore.CurveEd25519, key[:32])
	if err != nil {
		return err
	}
	if !bytes.Equal(pub, key[32:]) {
		return signcore.NewError(signcore.ErrCodeInvalidInput, "keypair public half does not match its seed", signcore.ErrInvalidPrivateKey)
	}
	s.privateKey = key
	return nil
}

// Address returns the base58 public key.
func (s *LocalSigner) Address() string {
	return s.publicKey.String()
}

// PublicKey returns the signer's public key.
func (s *LocalSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

// SignPreImage signs the message carried by pre. Pre-images addressed to
// another signer are rejected.
func (s *LocalSigner) SignPreImage(pre signcore.PreImageHash) (signcore.ExternalSignature, error) {
	if pre.Algorithm != signcore.AlgorithmEd25519 {
		return signcore.ExternalSignature{}, signcore.Errorf(signcore.ErrUnsupportedCombination, "local Solana signer cannot produce %s signatures", pre.Algorithm)
	}
	if pre.SignerID != "" && pre.SignerID != s.Address() {
		return signcore.ExternalSignature{}, signcore.Errorf(signcore.ErrInvalidInput, "pre-image is for %s, not %s", pre.SignerID, s.Address())
	}
	sig, err := s.privateKey.Sign(pre.Hash)
	if err != nil {
		return signcore.ExternalSignature{}, signcore.NewError(signcore.ErrCodeSigningFailed, "signing message", err)
	}
	return signcore.ExternalSignature{
		Signature: sig[:],
		SignerID:  s.Address(),
		PublicKey: s.publicKey[:],
	}, nil
}

// PartialSign signs every pre-image of tx that belongs to this key and
// skips the rest, leaving them to other signers.
func (s *LocalSigner) PartialSign(tx Transaction) ([]signcore.ExternalSignature, error) {
	pres, err := PreImages(tx)
	if err != nil {
		return nil, err
	}
	var out []signcore.ExternalSignature
	for _, pre := range pres {
		if pre.SignerID != s.Address() {
			continue
		}
		sig, err := s.SignPreImage(pre)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	if len(out) == 0 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "%s is not a signer of this transaction", s.Address())
	}
	return out, nil
}
