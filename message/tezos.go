package message

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"golang.org/x/crypto/blake2b"
)

// Base58check prefixes.
var (
	prefixEdsig  = []byte{0x09, 0xf5, 0xcd, 0x86, 0x12}
	prefixSpsig1 = []byte{0x0d, 0x73, 0x65, 0x13, 0x3f}
	prefixEdpk   = []byte{0x0d, 0x0f, 0x25, 0xd9}
	prefixSppk   = []byte{0x03, 0xfe, 0xe2, 0x56}
	prefixTz1    = []byte{0x06, 0xa1, 0x9f}
	prefixTz2    = []byte{0x06, 0xa1, 0xa1}
)

const tezosMessagePrefix = "Tezos Signed Message:"

// Tezos signs the Micheline-packed "Tezos Signed Message" string used by
// Beacon-compatible dApps. Ed25519 keys produce edsig signatures and
// secp256k1 keys produce spsig1 signatures.
type Tezos struct {
	DappURL   string
	Timestamp string
	Curve     signcore.CurveType
}

var _ signcore.MessageSigner = Tezos{}

// Chain implements signcore.MessageSigner.
func (Tezos) Chain() signcore.Chain { return signcore.ChainTezos }

// FormatMessage returns "Tezos Signed Message: <dapp> [<timestamp>] <message>".
// The dApp segment is always present, so an empty DappURL leaves two spaces
// after the prefix.
func (t Tezos) FormatMessage(message string) string {
	parts := []string{tezosMessagePrefix, t.DappURL}
	if t.Timestamp != "" {
		parts = append(parts, t.Timestamp)
	}
	parts = append(parts, message)
	return strings.Join(parts, " ")
}

// Payload packs the formatted message as a Micheline string:
// 0x05 0x01 || uint32 big-endian length || bytes.
func (t Tezos) Payload(message []byte) []byte {
	text := t.FormatMessage(string(message))
	buf := bytes.NewBuffer(make([]byte, 0, 6+len(text)))
	buf.Write([]byte{0x05, 0x01})
	_ = binary.Write(buf, binary.BigEndian, uint32(len(text)))
	buf.WriteString(text)
	return buf.Bytes()
}

// Digest returns the Blake2b-256 of the packed payload, which is what gets signed.
func (t Tezos) Digest(message []byte) []byte {
	h := blake2b.Sum256(t.Payload(message))
	return h[:]
}

// Sign implements signcore.MessageSigner.
func (t Tezos) Sign(message, privateKey []byte) ([]byte, error) {
	digest := t.Digest(message)
	switch t.curve() {
	case signcore.CurveSecp256k1:
		sig, _, err := curve.SignECDSA(privateKey, digest)
		return sig, err
	default:
		sig, err := curve.Sign(signcore.CurveEd25519, privateKey, digest)
		if err != nil {
			return nil, err
		}
		return sig.Bytes, nil
	}
}

// Verify implements signcore.MessageSigner.
func (t Tezos) Verify(message, signature, publicKey []byte) (bool, error) {
	if len(signature) != 64 {
		return false, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 64 bytes, got %d", len(signature))
	}
	digest := t.Digest(message)
	switch t.curve() {
	case signcore.CurveSecp256k1:
		if _, err := curve.ParseSecp256k1PublicKey(publicKey); err != nil {
			return false, err
		}
		return curve.VerifyECDSA(publicKey, digest, signature), nil
	default:
		if len(publicKey) != 32 {
			return false, signcore.NewError(signcore.ErrCodeInvalidInput, "ed25519 public key must be 32 bytes", signcore.ErrInvalidPublicKey)
		}
		return curve.Verify(signcore.CurveEd25519, publicKey, digest, signature), nil
	}
}

func (t Tezos) curve() signcore.CurveType {
	if t.Curve == "" {
		return signcore.CurveEd25519
	}
	return t.Curve
}

// EncodeSignature renders a 64-byte signature as edsig... or spsig1...
func (t Tezos) EncodeSignature(signature []byte) (string, error) {
	if len(signature) != 64 {
		return "", signcore.Errorf(signcore.ErrInvalidInput, "signature must be 64 bytes, got %d", len(signature))
	}
	if t.curve() == signcore.CurveSecp256k1 {
		return base58CheckEncode(prefixSpsig1, signature), nil
	}
	return base58CheckEncode(prefixEdsig, signature), nil
}

// DecodeTezosSignature parses an edsig or spsig1 string.
func DecodeTezosSignature(s string) ([]byte, signcore.CurveType, error) {
	if sig, err := base58CheckDecode(s, prefixEdsig, 64); err == nil {
		return sig, signcore.CurveEd25519, nil
	}
	sig, err := base58CheckDecode(s, prefixSpsig1, 64)
	if err != nil {
		return nil, "", err
	}
	return sig, signcore.CurveSecp256k1, nil
}

// EncodeTezosPublicKey renders an edpk (32-byte Ed25519) or sppk (33-byte
// compressed secp256k1) public key.
func EncodeTezosPublicKey(publicKey []byte) (string, error) {
	switch len(publicKey) {
	case 32:
		return base58CheckEncode(prefixEdpk, publicKey), nil
	case 33:
		return base58CheckEncode(prefixSppk, publicKey), nil
	default:
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "tezos public key must be 32 or 33 bytes", signcore.ErrInvalidPublicKey)
	}
}

// TezosAddress returns the tz1 (Ed25519) or tz2 (secp256k1) address of a
// public key: base58check(prefix || blake2b-160(key)).
func TezosAddress(publicKey []byte) (string, error) {
	var prefix []byte
	switch len(publicKey) {
	case 32:
		prefix = prefixTz1
	case 33:
		prefix = prefixTz2
	default:
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "tezos public key must be 32 or 33 bytes", signcore.ErrInvalidPublicKey)
	}
	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", err
	}
	h.Write(publicKey)
	return base58CheckEncode(prefix, h.Sum(nil)), nil
}

// ParseTezosAddress decodes a tz1 or tz2 address into its key hash and the
// curve of the key behind it.
func ParseTezosAddress(address string) ([]byte, signcore.CurveType, error) {
	if hash, err := base58CheckDecode(address, prefixTz1, 20); err == nil {
		return hash, signcore.CurveEd25519, nil
	}
	hash, err := base58CheckDecode(address, prefixTz2, 20)
	if err != nil {
		return nil, "", err
	}
	return hash, signcore.CurveSecp256k1, nil
}

// Tezos prefixes are several bytes long; the first is passed to base58 as
// the version byte and the rest lead the payload.
func base58CheckEncode(prefix, payload []byte) string {
	data := make([]byte, 0, len(prefix)-1+len(payload))
	data = append(data, prefix[1:]...)
	data = append(data, payload...)
	return base58.CheckEncode(data, prefix[0])
}

func base58CheckDecode(s string, prefix []byte, size int) ([]byte, error) {
	body, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed base58check string", err)
	}
	if version != prefix[0] || !bytes.HasPrefix(body, prefix[1:]) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "unexpected base58 prefix")
	}
	if len(body) != len(prefix)-1+size {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "decoded length %d does not match prefix", len(body)+1)
	}
	return body[len(prefix)-1:], nil
}
