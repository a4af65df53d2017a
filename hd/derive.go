package hd

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/tyler-smith/go-bip32"
)

// DerivedKey is a child key together with the chain code needed to derive
// further children.
type DerivedKey struct {
	PrivateKey []byte
	PublicKey  []byte
	ChainCode  []byte
	Path       Path
	Curve      signcore.CurveType
}

// DeriveKey derives the key at path from seed. scheme selects BIP-32
// (secp256k1) or SLIP-0010 (ed25519). Seeds must be 16 to 64 bytes.
func DeriveKey(scheme signcore.CurveType, seed []byte, path Path) (*DerivedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "seed must be 16 to 64 bytes, got %d", len(seed))
	}
	switch scheme {
	case signcore.CurveSecp256k1:
		return deriveBIP32(seed, path)
	case signcore.CurveEd25519:
		return deriveSLIP10(seed, path)
	default:
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "no HD scheme for curve %q", scheme)
	}
}

// DerivePath parses path and derives the key at it.
func DerivePath(scheme signcore.CurveType, seed []byte, path string) (*DerivedKey, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return DeriveKey(scheme, seed, p)
}

func deriveBIP32(seed []byte, path Path) (*DerivedKey, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "cannot create BIP-32 master key", err)
	}
	for i, seg := range path {
		key, err = key.NewChildKey(seg.Raw())
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeInvalidInput,
				fmt.Sprintf("BIP-32 derivation failed at %s", path[:i+1]), err)
		}
	}

	priv := leftPad32(key.Key)
	pub, err := curve.PublicKey(signcore.CurveSecp256k1, priv)
	if err != nil {
		return nil, err
	}
	return &DerivedKey{
		PrivateKey: priv,
		PublicKey:  pub,
		ChainCode:  append([]byte(nil), key.ChainCode...),
		Path:       append(Path(nil), path...),
		Curve:      signcore.CurveSecp256k1,
	}, nil
}

var slip10Ed25519Key = []byte("ed25519 seed")

func deriveSLIP10(seed []byte, path Path) (*DerivedKey, error) {
	for _, seg := range path {
		if !seg.Hardened {
			return nil, signcore.NewError(signcore.ErrCodeUnsupportedCombination,
				fmt.Sprintf("ed25519 derivation requires hardened segments, %s is not", seg), signcore.ErrInvalidPath)
		}
	}

	mac := hmac.New(sha512.New, slip10Ed25519Key)
	mac.Write(seed)
	sum := mac.Sum(nil)
	priv, chain := sum[:32], sum[32:]

	data := make([]byte, 37)
	for _, seg := range path {
		data[0] = 0x00
		copy(data[1:33], priv)
		binary.BigEndian.PutUint32(data[33:], seg.Raw())

		mac = hmac.New(sha512.New, chain)
		mac.Write(data)
		sum = mac.Sum(nil)
		priv, chain = sum[:32], sum[32:]
	}
	clear(data)

	pub, err := curve.PublicKey(signcore.CurveEd25519, priv)
	if err != nil {
		return nil, err
	}
	return &DerivedKey{
		PrivateKey: priv,
		PublicKey:  pub,
		ChainCode:  chain,
		Path:       append(Path(nil), path...),
		Curve:      signcore.CurveEd25519,
	}, nil
}

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
