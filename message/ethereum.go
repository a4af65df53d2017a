package message

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/encoding"
)

// Ethereum signs with EIP-191 personal_sign. Signatures are 65 bytes r||s||v
// with v in {27, 28}.
type Ethereum struct{}

var _ signcore.MessageSigner = Ethereum{}

// Chain implements signcore.MessageSigner.
func (Ethereum) Chain() signcore.Chain { return signcore.ChainEthereum }

// PersonalSignHash returns keccak256("\x19Ethereum Signed Message:\n" || len || message).
func PersonalSignHash(message []byte) []byte {
	return accounts.TextHash(message)
}

// ParseInput decodes 0x-prefixed hex input and treats anything else as UTF-8 text.
func ParseInput(s string) []byte {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if b, err := encoding.DecodeHex(s); err == nil {
			return b
		}
	}
	return []byte(s)
}

// Sign implements signcore.MessageSigner.
func (Ethereum) Sign(message, privateKey []byte) ([]byte, error) {
	sig, recID, err := curve.SignECDSA(privateKey, PersonalSignHash(message))
	if err != nil {
		return nil, err
	}
	return append(sig, recID+27), nil
}

// Verify implements signcore.MessageSigner. publicKey may be a 33 or 65 byte
// secp256k1 key or a 20-byte address.
func (Ethereum) Verify(message, signature, publicKey []byte) (bool, error) {
	if len(signature) != 65 {
		return false, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 65 bytes, got %d", len(signature))
	}
	want, err := addressOf(publicKey)
	if err != nil {
		return false, err
	}
	got, err := RecoverAddress(message, signature)
	if err != nil {
		return false, nil
	}
	return got == want, nil
}

// RecoverAddress returns the address that personal_signed message.
func RecoverAddress(message, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 65 bytes, got %d", len(signature))
	}
	addr, err := curve.RecoverAddress(PersonalSignHash(message), signature[:64], signature[64])
	if err != nil {
		return common.Address{}, err
	}
	return common.Address(addr), nil
}

func addressOf(publicKey []byte) (common.Address, error) {
	if len(publicKey) == common.AddressLength {
		return common.BytesToAddress(publicKey), nil
	}
	pub, err := curve.ParseSecp256k1PublicKey(publicKey)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
