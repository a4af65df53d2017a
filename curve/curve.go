// Package curve implements per-curve key handling and raw signing.
//
// Supported curves are secp256k1 (ECDSA with recovery id, and BIP-340
// Schnorr), Ed25519, secp256r1 (NIST P-256) and sr25519. Every private key is
// a caller-owned 32-byte scalar or seed; functions in this package read it
// for the duration of the call and never retain it.
//
// Verification functions report a bad signature as false rather than as an
// error. Errors are reserved for unusable keys or unsupported curves.
package curve

import (
	"crypto/rand"
	"fmt"

	"github.com/hawala-wallet/signcore"
)

// PrivateKeySize is the size of every private key or seed handled here.
const PrivateKeySize = 32

// Keypair is a private key and its encoded public key.
type Keypair struct {
	Curve      signcore.CurveType
	PrivateKey []byte
	PublicKey  []byte
}

// Signature is a raw signature with an optional recovery id.
type Signature struct {
	// Bytes is 64 bytes for every curve: r||s for ECDSA, R||s for Schnorr,
	// Ed25519 and sr25519.
	Bytes []byte

	// RecoveryID is set for secp256k1 ECDSA signatures.
	RecoveryID *uint8
}

// GenerateKeypair creates a keypair on curve. A nil seed draws fresh
// randomness; otherwise the first 32 bytes of seed become the private key
// (the RFC 8032 seed for Ed25519, the mini secret key for sr25519).
func GenerateKeypair(curve signcore.CurveType, seed []byte) (*Keypair, error) {
	var priv []byte
	switch {
	case seed == nil:
		var err error
		priv, err = randomScalar(curve)
		if err != nil {
			return nil, err
		}
	case len(seed) < PrivateKeySize:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "seed must be at least %d bytes, got %d", PrivateKeySize, len(seed))
	default:
		priv = append([]byte(nil), seed[:PrivateKeySize]...)
	}

	pub, err := PublicKey(curve, priv)
	if err != nil {
		return nil, err
	}
	return &Keypair{Curve: curve, PrivateKey: priv, PublicKey: pub}, nil
}

// PublicKey derives the public key for privateKey. secp256k1 and secp256r1
// keys are returned SEC1-compressed (33 bytes); Ed25519 and sr25519 keys are
// 32 bytes.
func PublicKey(curve signcore.CurveType, privateKey []byte) ([]byte, error) {
	if err := checkKeySize(privateKey); err != nil {
		return nil, err
	}
	switch curve {
	case signcore.CurveSecp256k1:
		return secp256k1PublicKey(privateKey)
	case signcore.CurveEd25519:
		return ed25519PublicKey(privateKey), nil
	case signcore.CurveSecp256r1:
		return p256PublicKey(privateKey)
	case signcore.CurveSr25519:
		return sr25519PublicKey(privateKey)
	default:
		return nil, unsupported(curve)
	}
}

// Sign signs message with privateKey.
//
// secp256k1 signs message directly when it is a 32-byte digest and its
// SHA-256 otherwise, returning r||s plus a recovery id. secp256r1 always
// signs the SHA-256 of message. Ed25519 and sr25519 sign the raw bytes.
func Sign(curve signcore.CurveType, privateKey, message []byte) (*Signature, error) {
	if err := checkKeySize(privateKey); err != nil {
		return nil, err
	}
	switch curve {
	case signcore.CurveSecp256k1:
		sig, recID, err := SignECDSA(privateKey, digest(message))
		if err != nil {
			return nil, err
		}
		return &Signature{Bytes: sig, RecoveryID: &recID}, nil
	case signcore.CurveEd25519:
		return &Signature{Bytes: signEd25519(privateKey, message)}, nil
	case signcore.CurveSecp256r1:
		sig, err := signP256(privateKey, message)
		if err != nil {
			return nil, err
		}
		return &Signature{Bytes: sig}, nil
	case signcore.CurveSr25519:
		sig, err := signSr25519(privateKey, message)
		if err != nil {
			return nil, err
		}
		return &Signature{Bytes: sig}, nil
	default:
		return nil, unsupported(curve)
	}
}

// Verify reports whether signature is valid for message under publicKey,
// applying the same message handling as Sign.
func Verify(curve signcore.CurveType, publicKey, message, signature []byte) bool {
	switch curve {
	case signcore.CurveSecp256k1:
		return VerifyECDSA(publicKey, digest(message), signature)
	case signcore.CurveEd25519:
		return verifyEd25519(publicKey, message, signature)
	case signcore.CurveSecp256r1:
		return verifyP256(publicKey, message, signature)
	case signcore.CurveSr25519:
		return verifySr25519(publicKey, message, signature)
	default:
		return false
	}
}

func checkKeySize(privateKey []byte) error {
	if len(privateKey) != PrivateKeySize {
		return signcore.NewError(signcore.ErrCodeInvalidInput,
			fmt.Sprintf("private key must be %d bytes, got %d", PrivateKeySize, len(privateKey)),
			signcore.ErrInvalidPrivateKey)
	}
	return nil
}

func invalidKey(curve signcore.CurveType, err error) error {
	msg := fmt.Sprintf("not a valid %s private key", curve)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return signcore.NewError(signcore.ErrCodeInvalidInput, msg, signcore.ErrInvalidPrivateKey)
}

func unsupported(curve signcore.CurveType) error {
	return signcore.Errorf(signcore.ErrUnsupportedCombination, "unsupported curve %q", curve)
}

func randomScalar(curve signcore.CurveType) ([]byte, error) {
	buf := make([]byte, PrivateKeySize)
	for range 16 {
		if _, err := rand.Read(buf); err != nil {
			return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "entropy source failed", err)
		}
		if _, err := PublicKey(curve, buf); err == nil {
			return buf, nil
		} else if signcore.CodeOf(err) == signcore.ErrCodeUnsupportedCombination {
			return nil, err
		}
	}
	return nil, signcore.Errorf(signcore.ErrSigningFailed, "could not draw a valid %s scalar", curve)
}
