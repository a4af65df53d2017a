package message

import (
	"github.com/gagliardetto/solana-go"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/mr-tron/base58"
)

// Solana signs the raw message bytes with Ed25519, as wallets do for
// signMessage requests.
type Solana struct{}

var _ signcore.MessageSigner = Solana{}

// Chain implements signcore.MessageSigner.
func (Solana) Chain() signcore.Chain { return signcore.ChainSolana }

// Sign implements signcore.MessageSigner.
func (Solana) Sign(message, privateKey []byte) ([]byte, error) {
	sig, err := curve.Sign(signcore.CurveEd25519, privateKey, message)
	if err != nil {
		return nil, err
	}
	return sig.Bytes, nil
}

// Verify implements signcore.MessageSigner.
func (Solana) Verify(message, signature, publicKey []byte) (bool, error) {
	if len(publicKey) != 32 {
		return false, signcore.NewError(signcore.ErrCodeInvalidInput, "solana public key must be 32 bytes", signcore.ErrInvalidPublicKey)
	}
	return curve.Verify(signcore.CurveEd25519, publicKey, message, signature), nil
}

// EncodeSolanaSignature renders a signature in base58, the form wallets return.
func EncodeSolanaSignature(signature []byte) string {
	return base58.Encode(signature)
}

// DecodeSolanaSignature parses a base58 signature.
func DecodeSolanaSignature(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil || len(b) != 64 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "not a base58 Ed25519 signature")
	}
	return b, nil
}

// Address returns the base58 account address of an Ed25519 public key.
func Address(publicKey []byte) (string, error) {
	if len(publicKey) != 32 {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "solana public key must be 32 bytes", signcore.ErrInvalidPublicKey)
	}
	return solana.PublicKeyFromBytes(publicKey).String(), nil
}

// ParseAddress decodes a base58 account address into its public key.
func ParseAddress(address string) ([]byte, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed solana address", err)
	}
	return pk.Bytes(), nil
}
