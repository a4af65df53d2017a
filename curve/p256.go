package curve

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/hawala-wallet/signcore"
)

func p256PrivateKey(privateKey []byte) (*ecdsa.PrivateKey, error) {
	c := elliptic.P256()
	d := new(big.Int).SetBytes(privateKey)
	if d.Sign() == 0 || d.Cmp(c.Params().N) >= 0 {
		return nil, invalidKey(signcore.CurveSecp256r1, nil)
	}
	key := &ecdsa.PrivateKey{PublicKey: ecdsa.PublicKey{Curve: c}, D: d}
	key.PublicKey.X, key.PublicKey.Y = c.ScalarBaseMult(privateKey)
	return key, nil
}

func p256PublicKey(privateKey []byte) ([]byte, error) {
	key, err := p256PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return elliptic.MarshalCompressed(elliptic.P256(), key.X, key.Y), nil
}

// signP256 signs SHA-256(message) and returns fixed-width r||s.
func signP256(privateKey, message []byte) ([]byte, error) {
	key, err := p256PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, key, h[:])
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "secp256r1 signing failed", err)
	}
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

func verifyP256(publicKey, message, signature []byte) bool {
	if len(signature) != 64 {
		return false
	}
	c := elliptic.P256()
	var x, y *big.Int
	switch len(publicKey) {
	case 33:
		x, y = elliptic.UnmarshalCompressed(c, publicKey)
	case 65:
		x, y = elliptic.Unmarshal(c, publicKey)
	}
	if x == nil {
		return false
	}
	h := sha256.Sum256(message)
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(&ecdsa.PublicKey{Curve: c, X: x, Y: y}, h[:], r, s)
}
