// Package taproot implements BIP-341 key tweaking, script trees and
// key-path signing on top of BIP-340 Schnorr signatures.
//
// A merkle root of 32 zero bytes, like a nil or empty root, means the output
// has no script tree and is spent by key path only.
package taproot

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// OutputKey is a tweaked x-only output key and the parity of its y coordinate.
type OutputKey struct {
	Key    [32]byte `json:"outputKey"`
	Parity byte     `json:"parity"`
}

// ParseInternalKey accepts a 32-byte x-only key or a 33-byte compressed key.
// Only the x coordinate is used, as BIP-341 lifts internal keys to even y.
func ParseInternalKey(internalKey []byte) (*btcec.PublicKey, error) {
	switch len(internalKey) {
	case 32:
	case 33:
		internalKey = internalKey[1:]
	default:
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "internal key must be 32 or 33 bytes", signcore.ErrInvalidPublicKey)
	}
	pub, err := schnorr.ParsePubKey(internalKey)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "internal key is not on the curve", signcore.ErrInvalidPublicKey)
	}
	return pub, nil
}

// TweakPublicKey computes internalKey + taggedHash("TapTweak", internalKey || merkleRoot)·G.
func TweakPublicKey(internalKey, merkleRoot []byte) (OutputKey, error) {
	root, err := normalizeRoot(merkleRoot)
	if err != nil {
		return OutputKey{}, err
	}
	pub, err := ParseInternalKey(internalKey)
	if err != nil {
		return OutputKey{}, err
	}
	return outputKeyOf(txscript.ComputeTaprootOutputKey(pub, root)), nil
}

// SignKeyPath tweaks privateKey by merkleRoot and Schnorr-signs sighash with
// the tweaked key. The signature verifies against the returned output key,
// not against the untweaked internal key. A nil aux draws fresh randomness.
func SignKeyPath(sighash, privateKey, merkleRoot []byte, aux *[32]byte) ([]byte, OutputKey, error) {
	root, err := normalizeRoot(merkleRoot)
	if err != nil {
		return nil, OutputKey{}, err
	}
	if _, err := curve.ToECDSA(privateKey); err != nil {
		return nil, OutputKey{}, err
	}
	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	tweaked := txscript.TweakTaprootPrivKey(*priv, root)
	tweakedBytes := tweaked.Serialize()
	defer clear(tweakedBytes)

	sig, err := curve.SignSchnorr(tweakedBytes, sighash, aux)
	if err != nil {
		return nil, OutputKey{}, err
	}
	return sig, outputKeyOf(tweaked.PubKey()), nil
}

// VerifyKeyPath checks a key-path signature against an output key.
func VerifyKeyPath(sighash, signature []byte, out OutputKey) bool {
	return curve.VerifySchnorr(out.Key[:], sighash, signature)
}

// OutputScript returns the segwit v1 scriptPubKey: OP_1 <32-byte key>.
func OutputScript(out OutputKey) []byte {
	script := make([]byte, 0, 34)
	script = append(script, txscript.OP_1, txscript.OP_DATA_32)
	return append(script, out.Key[:]...)
}

// Address renders the bech32m address of out for the given network.
func Address(out OutputKey, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.NewAddressTaproot(out.Key[:], params)
	if err != nil {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "cannot encode taproot address", err)
	}
	return addr.EncodeAddress(), nil
}

func outputKeyOf(pub *btcec.PublicKey) OutputKey {
	compressed := pub.SerializeCompressed()
	var out OutputKey
	copy(out.Key[:], compressed[1:])
	if compressed[0] == 0x03 {
		out.Parity = 1
	}
	return out
}

// normalizeRoot maps the absent-root encodings (nil, empty, 32 zero bytes) to nil.
func normalizeRoot(root []byte) ([]byte, error) {
	if len(root) == 0 {
		return nil, nil
	}
	if len(root) != 32 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "merkle root must be 32 bytes, got %d", len(root))
	}
	for _, b := range root {
		if b != 0 {
			return root, nil
		}
	}
	return nil, nil
}
