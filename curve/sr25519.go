package curve

import (
	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/hawala-wallet/signcore"
)

// substrateContext is the signing context Substrate chains use for sr25519.
var substrateContext = []byte("substrate")

func sr25519SecretKey(privateKey []byte) (*schnorrkel.SecretKey, error) {
	var raw [32]byte
	copy(raw[:], privateKey)
	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, invalidKey(signcore.CurveSr25519, err)
	}
	return mini.ExpandEd25519(), nil
}

func sr25519PublicKey(privateKey []byte) ([]byte, error) {
	sk, err := sr25519SecretKey(privateKey)
	if err != nil {
		return nil, err
	}
	pub, err := sk.Public()
	if err != nil {
		return nil, invalidKey(signcore.CurveSr25519, err)
	}
	enc := pub.Encode()
	return enc[:], nil
}

func signSr25519(privateKey, message []byte) ([]byte, error) {
	sk, err := sr25519SecretKey(privateKey)
	if err != nil {
		return nil, err
	}
	sig, err := sk.Sign(schnorrkel.NewSigningContext(substrateContext, message))
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "sr25519 signing failed", err)
	}
	enc := sig.Encode()
	return enc[:], nil
}

func verifySr25519(publicKey, message, signature []byte) bool {
	if len(publicKey) != 32 || len(signature) != 64 {
		return false
	}
	var pubRaw [32]byte
	copy(pubRaw[:], publicKey)
	pub := new(schnorrkel.PublicKey)
	if err := pub.Decode(pubRaw); err != nil {
		return false
	}
	var sigRaw [64]byte
	copy(sigRaw[:], signature)
	sig := new(schnorrkel.Signature)
	if err := sig.Decode(sigRaw); err != nil {
		return false
	}
	ok, err := pub.Verify(sig, schnorrkel.NewSigningContext(substrateContext, message))
	return err == nil && ok
}
