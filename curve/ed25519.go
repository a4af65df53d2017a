package curve

import (
	"crypto/ed25519"
)

func ed25519PublicKey(seed []byte) []byte {
	priv := ed25519.NewKeyFromSeed(seed)
	return append([]byte(nil), priv.Public().(ed25519.PublicKey)...)
}

func signEd25519(seed, message []byte) []byte {
	return ed25519.Sign(ed25519.NewKeyFromSeed(seed), message)
}

func verifyEd25519(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
