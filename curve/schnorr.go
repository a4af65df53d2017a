package curve

import (
	"crypto/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/hawala-wallet/signcore"
)

// SchnorrPublicKey returns the 32-byte x-only public key for privateKey.
func SchnorrPublicKey(privateKey []byte) ([]byte, error) {
	priv, err := btcecPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return schnorr.SerializePubKey(priv.PubKey()), nil
}

// SignSchnorr produces a BIP-340 signature over a 32-byte hash. When aux is
// nil fresh randomness is drawn, so the result is valid but not reproducible.
func SignSchnorr(privateKey, hash []byte, aux *[32]byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "schnorr message must be 32 bytes, got %d", len(hash))
	}
	priv, err := btcecPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	var nonce [32]byte
	if aux != nil {
		nonce = *aux
	} else if _, err := rand.Read(nonce[:]); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "entropy source failed", err)
	}

	sig, err := schnorr.Sign(priv, hash, schnorr.CustomNonce(nonce))
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "schnorr signing failed", err)
	}
	return sig.Serialize(), nil
}

// VerifySchnorr checks a 64-byte BIP-340 signature against a 32-byte x-only
// key. A 33-byte compressed key is accepted and its x coordinate used.
func VerifySchnorr(publicKey, hash, signature []byte) bool {
	if len(publicKey) == 33 {
		publicKey = publicKey[1:]
	}
	if len(hash) != 32 || len(signature) != 64 {
		return false
	}
	pub, err := schnorr.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pub)
}

// btcecPrivateKey validates the scalar before handing it to btcec, which
// would otherwise reduce an out-of-range value silently.
func btcecPrivateKey(privateKey []byte) (*btcec.PrivateKey, error) {
	if _, err := ToECDSA(privateKey); err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	return priv, nil
}
