package evm

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// authorizationMagic prefixes the RLP of an EIP-7702 authorization tuple.
const authorizationMagic = 0x05

// PreImage returns the signing hash of tx. For set-code transactions the hash
// commits to the signed authorization list, so authSigs must hold one
// signature per authorization; other types ignore authSigs.
func PreImage(tx Transaction, authSigs []signcore.ExternalSignature) (signcore.PreImageHash, error) {
	var auths []types.SetCodeAuthorization
	if tx.Type == TypeSetCode {
		var err error
		auths, err = SignedAuthorizations(tx, authSigs)
		if err != nil {
			return signcore.PreImageHash{}, err
		}
	}
	ttx, err := tx.toTypes(auths)
	if err != nil {
		return signcore.PreImageHash{}, err
	}
	hash := tx.signer().Hash(ttx)
	return signcore.PreImageHash{
		Hash:        hash.Bytes(),
		Description: fmt.Sprintf("%s transaction nonce %d", tx.TypeName(), uint64(tx.Nonce)),
		Algorithm:   signcore.AlgorithmECDSASecp256k1,
	}, nil
}

// AuthorizationHash returns keccak256(0x05 || rlp([chainId, address, nonce])).
func AuthorizationHash(a Authorization) (common.Hash, error) {
	sa, err := a.toTypes()
	if err != nil {
		return common.Hash{}, err
	}
	return authorizationHash(sa)
}

func authorizationHash(a types.SetCodeAuthorization) (common.Hash, error) {
	var buf bytes.Buffer
	buf.WriteByte(authorizationMagic)
	if err := rlp.Encode(&buf, []any{&a.ChainID, a.Address, a.Nonce}); err != nil {
		return common.Hash{}, signcore.NewError(signcore.ErrCodeInvalidInput, "encoding authorization", err)
	}
	return crypto.Keccak256Hash(buf.Bytes()), nil
}

// AuthorizationPreImages returns one pre-image per authorization tuple of a
// set-code transaction. Each carries SignerID "authorization/<i>".
func AuthorizationPreImages(tx Transaction) ([]signcore.PreImageHash, error) {
	if tx.Type != TypeSetCode {
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "%s transactions carry no authorizations", tx.TypeName())
	}
	if len(tx.Authorizations) == 0 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "set-code transactions need at least one authorization")
	}
	out := make([]signcore.PreImageHash, len(tx.Authorizations))
	for i, a := range tx.Authorizations {
		hash, err := AuthorizationHash(a)
		if err != nil {
			return nil, fmt.Errorf("authorization %d: %w", i, err)
		}
		out[i] = signcore.PreImageHash{
			Hash:        hash.Bytes(),
			SignerID:    authorizationID(i),
			Description: fmt.Sprintf("delegate to %s nonce %d", a.Address.Hex(), uint64(a.Nonce)),
			Algorithm:   signcore.AlgorithmECDSASecp256k1,
		}
	}
	return out, nil
}

func authorizationID(i int) string {
	return fmt.Sprintf("authorization/%d", i)
}

// SignedAuthorizations pairs authSigs with the authorization tuples of tx and
// returns the signed list. Signatures that declare a public key must verify
// against it.
func SignedAuthorizations(tx Transaction, authSigs []signcore.ExternalSignature) ([]types.SetCodeAuthorization, error) {
	pre, err := AuthorizationPreImages(tx)
	if err != nil {
		return nil, err
	}
	matched, err := signcore.MatchSignatures(pre, authSigs, verifyDeclaredKey)
	if err != nil {
		return nil, err
	}

	out := make([]types.SetCodeAuthorization, len(pre))
	for i, sig := range matched {
		sa, err := tx.Authorizations[i].toTypes()
		if err != nil {
			return nil, err
		}
		full, err := recoverable(pre[i].Hash, sig)
		if err != nil {
			return nil, fmt.Errorf("authorization %d: %w", i, err)
		}
		sa.R.SetBytes(full[:32])
		sa.S.SetBytes(full[32:64])
		sa.V = full[64]
		out[i] = sa
	}
	return out, nil
}

// SignAuthorization signs a single authorization tuple with a local key.
func SignAuthorization(a Authorization, privateKey []byte) (types.SetCodeAuthorization, error) {
	sa, err := a.toTypes()
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	key, err := curve.ToECDSA(privateKey)
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	signed, err := types.SignSetCode(key, sa)
	if err != nil {
		return types.SetCodeAuthorization{}, signcore.NewError(signcore.ErrCodeSigningFailed, "signing authorization", err)
	}
	return signed, nil
}

// RecoverAuthorizationSigner returns the authority that signed a.
func RecoverAuthorizationSigner(a types.SetCodeAuthorization) (common.Address, error) {
	addr, err := a.Authority()
	if err != nil {
		return common.Address{}, signcore.NewError(signcore.ErrCodeVerificationFailed, "recovering authorization signer", err)
	}
	return addr, nil
}

// verifyDeclaredKey accepts a signature without a public key. Authorization
// signatures are recovery-only in that case: the recovered authority is the
// signer, as RecoverAuthorizationSigner reports.
func verifyDeclaredKey(pre signcore.PreImageHash, sig signcore.ExternalSignature) bool {
	if len(sig.PublicKey) == 0 {
		return true
	}
	return curve.VerifyECDSA(sig.PublicKey, pre.Hash, sig.Signature)
}

// recoverable returns r||s||v with v in {0, 1}. The recovery id comes from the
// signature's 65th byte, its RecoveryID field, or by trial recovery against
// its declared public key.
func recoverable(hash []byte, sig signcore.ExternalSignature) ([]byte, error) {
	raw := sig.Signature
	out := make([]byte, 65)
	switch {
	case len(raw) == 65:
		v, err := curve.NormalizeRecoveryID(raw[64])
		if err != nil {
			return nil, err
		}
		copy(out, raw[:64])
		out[64] = v
		return out, nil
	case len(raw) != 64:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "ECDSA signature must be 64 or 65 bytes, got %d", len(raw))
	}

	copy(out, raw)
	if sig.RecoveryID != nil {
		v, err := curve.NormalizeRecoveryID(*sig.RecoveryID)
		if err != nil {
			return nil, err
		}
		out[64] = v
		return out, nil
	}
	if len(sig.PublicKey) == 0 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "signature needs a recovery id or a public key")
	}
	want, err := curve.ParseSecp256k1PublicKey(sig.PublicKey)
	if err != nil {
		return nil, err
	}
	for v := uint8(0); v < 2; v++ {
		got, err := curve.RecoverPublicKey(hash, raw, v)
		if err == nil && bytes.Equal(got, crypto.CompressPubkey(want)) {
			out[64] = v
			return out, nil
		}
	}
	return nil, signcore.Errorf(signcore.ErrSignatureMismatch, "signature does not recover to the declared public key")
}
