// Package api defines the request and response bodies of the signing service
// and the operations that serve them. The http handler, the http client and
// the MCP tool server all speak these types, so a request built for one
// transport works unchanged on the others.
//
// Every operation is a pure function of its request: no state is kept
// between calls and private keys in a request are only read for the
// duration of the call.
package api

import (
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/address"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/hd"
	"github.com/hawala-wallet/signcore/validation"
)

// DeriveKeyRequest derives a key from a mnemonic or raw seed.
type DeriveKeyRequest struct {
	Mnemonic   string            `json:"mnemonic,omitempty"`
	Passphrase string            `json:"passphrase,omitempty"`
	Seed       encoding.HexBytes `json:"seed,omitempty"`

	// Network selects the curve, the default path and the address format.
	Network string             `json:"network"`
	Curve   signcore.CurveType `json:"curve,omitempty"`

	// Path overrides the network's default path for Account and Index.
	Path    string `json:"path,omitempty"`
	Account uint32 `json:"account,omitempty"`
	Index   uint32 `json:"index,omitempty"`

	// IncludePrivateKey returns the derived private key. Off by default.
	IncludePrivateKey bool `json:"includePrivateKey,omitempty"`
}

// DeriveKeyResponse is the derived key and its address.
type DeriveKeyResponse struct {
	Network    string             `json:"network"`
	Curve      signcore.CurveType `json:"curve"`
	Path       string             `json:"path"`
	PublicKey  encoding.HexBytes  `json:"publicKey"`
	ChainCode  encoding.HexBytes  `json:"chainCode"`
	Address    string             `json:"address"`
	PrivateKey encoding.HexBytes  `json:"privateKey,omitempty"`
}

// DeriveKey derives the key at req.Path (or the network default) and
// renders its address.
func DeriveKey(req DeriveKeyRequest) (*DeriveKeyResponse, error) {
	network, err := validation.ValidateNetwork(req.Network, req.Curve)
	if err != nil {
		return nil, err
	}
	if req.Curve != "" {
		network.Curve = req.Curve
	}

	pathText := req.Path
	if pathText == "" {
		pathText = network.DerivationPath(req.Account, req.Index)
	}
	path, err := validation.ValidatePath(network, pathText)
	if err != nil {
		return nil, err
	}

	seed := []byte(req.Seed)
	switch {
	case req.Mnemonic != "" && len(seed) > 0:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "give either a mnemonic or a seed, not both")
	case req.Mnemonic != "":
		seed, err = hd.SeedFromMnemonic(req.Mnemonic, req.Passphrase)
		if err != nil {
			return nil, err
		}
		defer encoding.Zero(seed)
	case len(seed) == 0:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "a mnemonic or a seed is required")
	}

	key, err := hd.DeriveKey(network.Curve, seed, path)
	if err != nil {
		return nil, err
	}
	addr, err := address.FromPublicKey(network, key.PublicKey)
	if err != nil {
		encoding.Zero(key.PrivateKey)
		return nil, err
	}

	resp := &DeriveKeyResponse{
		Network:   network.NetworkID,
		Curve:     network.Curve,
		Path:      key.Path.String(),
		PublicKey: key.PublicKey,
		ChainCode: key.ChainCode,
		Address:   addr,
	}
	if req.IncludePrivateKey {
		resp.PrivateKey = key.PrivateKey
	} else {
		encoding.Zero(key.PrivateKey)
	}
	return resp, nil
}

// PublicKeyRequest derives the public key of a raw private key.
type PublicKeyRequest struct {
	Curve      signcore.CurveType `json:"curve"`
	PrivateKey encoding.HexBytes  `json:"privateKey"`
	// XOnly returns the 32-byte BIP-340 key for secp256k1.
	XOnly bool `json:"xOnly,omitempty"`
}

// PublicKeyResponse carries the encoded public key.
type PublicKeyResponse struct {
	Curve     signcore.CurveType `json:"curve"`
	PublicKey encoding.HexBytes  `json:"publicKey"`
}

// PublicKey derives the public key for req.PrivateKey.
func PublicKey(req PublicKeyRequest) (*PublicKeyResponse, error) {
	c, err := signcore.ParseCurveType(string(req.Curve))
	if err != nil {
		return nil, err
	}
	var pub []byte
	if req.XOnly {
		if c != signcore.CurveSecp256k1 {
			return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "x-only keys exist only for secp256k1")
		}
		pub, err = curve.SchnorrPublicKey(req.PrivateKey)
	} else {
		pub, err = curve.PublicKey(c, req.PrivateKey)
	}
	if err != nil {
		return nil, err
	}
	return &PublicKeyResponse{Curve: c, PublicKey: pub}, nil
}

// SignRequest signs raw bytes with a curve primitive.
type SignRequest struct {
	// Algorithm selects the scheme; it defaults to the curve's ECDSA or
	// EdDSA scheme. secp256k1-schnorr needs a 32-byte message.
	Algorithm  signcore.Algorithm `json:"algorithm"`
	PrivateKey encoding.HexBytes  `json:"privateKey"`
	Message    encoding.HexBytes  `json:"message"`
}

// SignResponse is a raw 64-byte signature.
type SignResponse struct {
	Signature  encoding.HexBytes `json:"signature"`
	RecoveryID *uint8            `json:"recoveryId,omitempty"`
}

// Sign signs req.Message under req.Algorithm.
func Sign(req SignRequest) (*SignResponse, error) {
	c := req.Algorithm.Curve()
	if c == "" {
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "unknown algorithm %q", req.Algorithm)
	}
	if req.Algorithm == signcore.AlgorithmSchnorrSecp256k1 {
		sig, err := curve.SignSchnorr(req.PrivateKey, req.Message, nil)
		if err != nil {
			return nil, err
		}
		return &SignResponse{Signature: sig}, nil
	}
	sig, err := curve.Sign(c, req.PrivateKey, req.Message)
	if err != nil {
		return nil, err
	}
	return &SignResponse{Signature: sig.Bytes, RecoveryID: sig.RecoveryID}, nil
}

// VerifyRequest checks a raw signature.
type VerifyRequest struct {
	Algorithm signcore.Algorithm `json:"algorithm"`
	PublicKey encoding.HexBytes  `json:"publicKey"`
	Message   encoding.HexBytes  `json:"message"`
	Signature encoding.HexBytes  `json:"signature"`
}

// VerifyResponse reports the verdict. A bad signature is Valid false, not an error.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// Verify checks req.Signature over req.Message.
func Verify(req VerifyRequest) (*VerifyResponse, error) {
	c := req.Algorithm.Curve()
	if c == "" {
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "unknown algorithm %q", req.Algorithm)
	}
	if req.Algorithm == signcore.AlgorithmSchnorrSecp256k1 {
		return &VerifyResponse{Valid: curve.VerifySchnorr(req.PublicKey, req.Message, req.Signature)}, nil
	}
	return &VerifyResponse{Valid: curve.Verify(c, req.PublicKey, req.Message, req.Signature)}, nil
}
