package curve

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
)

// ToECDSA validates a 32-byte secp256k1 scalar and returns it as an ECDSA key.
func ToECDSA(privateKey []byte) (*ecdsa.PrivateKey, error) {
	if err := checkKeySize(privateKey); err != nil {
		return nil, err
	}
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, invalidKey(signcore.CurveSecp256k1, err)
	}
	return key, nil
}

func secp256k1PublicKey(privateKey []byte) ([]byte, error) {
	key, err := ToECDSA(privateKey)
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(&key.PublicKey), nil
}

// SignECDSA signs a 32-byte digest with RFC 6979 deterministic nonces and
// returns the 64-byte low-S r||s signature and its recovery id (0 or 1).
func SignECDSA(privateKey, hash []byte) ([]byte, uint8, error) {
	if len(hash) != 32 {
		return nil, 0, signcore.Errorf(signcore.ErrInvalidInput, "digest must be 32 bytes, got %d", len(hash))
	}
	key, err := ToECDSA(privateKey)
	if err != nil {
		return nil, 0, err
	}
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, 0, signcore.NewError(signcore.ErrCodeSigningFailed, "secp256k1 signing failed", err)
	}
	return sig[:64], sig[64], nil
}

// VerifyECDSA checks a 64-byte r||s signature (a trailing recovery byte is
// ignored) over a 32-byte digest. The public key may be compressed or not.
// High-S signatures are rejected.
func VerifyECDSA(publicKey, hash, signature []byte) bool {
	if len(signature) == 65 {
		signature = signature[:64]
	}
	if len(signature) != 64 || len(hash) != 32 {
		return false
	}
	if len(publicKey) != 33 && len(publicKey) != 65 {
		return false
	}
	return crypto.VerifySignature(publicKey, hash, signature)
}

// RecoverPublicKey recovers the compressed public key that produced a 64-byte
// signature over hash. recoveryID may be 0, 1, 27 or 28.
func RecoverPublicKey(hash, signature []byte, recoveryID uint8) ([]byte, error) {
	pub, err := recoverECDSA(hash, signature, recoveryID)
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(pub), nil
}

// RecoverAddress recovers the Ethereum address (keccak256 of the
// uncompressed key, last 20 bytes) that produced signature over hash.
func RecoverAddress(hash, signature []byte, recoveryID uint8) ([20]byte, error) {
	pub, err := recoverECDSA(hash, signature, recoveryID)
	if err != nil {
		return [20]byte{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func recoverECDSA(hash, signature []byte, recoveryID uint8) (*ecdsa.PublicKey, error) {
	if len(hash) != 32 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "digest must be 32 bytes, got %d", len(hash))
	}
	if len(signature) != 64 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 64 bytes, got %d", len(signature))
	}
	v, err := NormalizeRecoveryID(recoveryID)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 65)
	copy(sig, signature)
	sig[64] = v
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeVerificationFailed, "public key recovery failed", err)
	}
	return pub, nil
}

// NormalizeRecoveryID maps v in {0,1,27,28} to {0,1}. Other values are malformed.
func NormalizeRecoveryID(v uint8) (uint8, error) {
	switch v {
	case 0, 1:
		return v, nil
	case 27, 28:
		return v - 27, nil
	default:
		return 0, signcore.Errorf(signcore.ErrInvalidInput, "recovery id %d is not one of 0, 1, 27, 28", v)
	}
}

// ParseSecp256k1PublicKey accepts a 33-byte compressed or 65-byte uncompressed key.
func ParseSecp256k1PublicKey(publicKey []byte) (*ecdsa.PublicKey, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	switch len(publicKey) {
	case 33:
		pub, err = crypto.DecompressPubkey(publicKey)
	case 65:
		pub, err = crypto.UnmarshalPubkey(publicKey)
	default:
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "secp256k1 public key must be 33 or 65 bytes", signcore.ErrInvalidPublicKey)
	}
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed secp256k1 public key", signcore.ErrInvalidPublicKey)
	}
	return pub, nil
}

// digest returns message unchanged when it is already 32 bytes and its
// SHA-256 otherwise.
func digest(message []byte) []byte {
	if len(message) == 32 {
		return message
	}
	h := sha256.Sum256(message)
	return h[:]
}
