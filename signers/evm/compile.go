package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// Compile attaches sig to tx and returns the broadcast-ready encoding. For
// set-code transactions authSigs signs the authorization list first.
//
// When sig declares a public key, the recovered sender must match it or
// Compile fails with SignatureMismatch. Without a public key the signature
// is compiled in recovery-only mode: the sender is whoever it recovers to,
// reported in From. A SignerID holding an address pins that sender.
func Compile(tx Transaction, sig signcore.ExternalSignature, authSigs []signcore.ExternalSignature) (*signcore.EthereumTransaction, error) {
	var auths []types.SetCodeAuthorization
	if tx.Type == TypeSetCode {
		var err error
		auths, err = SignedAuthorizations(tx, authSigs)
		if err != nil {
			return nil, err
		}
	}
	ttx, err := tx.toTypes(auths)
	if err != nil {
		return nil, err
	}
	signer := tx.signer()
	hash := signer.Hash(ttx)

	if len(sig.PublicKey) > 0 && !curve.VerifyECDSA(sig.PublicKey, hash.Bytes(), sig.Signature) {
		return nil, signcore.Errorf(signcore.ErrSignatureMismatch, "transaction signature does not verify against its public key")
	}
	full, err := recoverable(hash.Bytes(), sig)
	if err != nil {
		return nil, err
	}

	signed, err := ttx.WithSignature(signer, full)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "attaching signature", err)
	}
	from, err := types.Sender(signer, signed)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSignatureMismatch, "recovering sender", signcore.ErrSignatureMismatch)
	}
	if len(sig.PublicKey) > 0 {
		pub, err := curve.ParseSecp256k1PublicKey(sig.PublicKey)
		if err != nil {
			return nil, err
		}
		if crypto.PubkeyToAddress(*pub) != from {
			return nil, signcore.Errorf(signcore.ErrSignatureMismatch, "recovered sender %s does not match the declared key", from.Hex())
		}
	} else if common.IsHexAddress(sig.SignerID) && common.HexToAddress(sig.SignerID) != from {
		return nil, signcore.Errorf(signcore.ErrSignatureMismatch, "recovered sender %s is not %s", from.Hex(), sig.SignerID)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "encoding transaction", err)
	}
	return &signcore.EthereumTransaction{
		RawTx:  raw,
		TxHash: signed.Hash().Hex(),
		From:   from.Hex(),
	}, nil
}

// Decode parses a raw signed transaction and returns it with its sender.
func Decode(raw []byte) (*types.Transaction, common.Address, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, common.Address{}, signcore.NewError(signcore.ErrCodeInvalidInput, "decoding transaction", err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, common.Address{}, signcore.NewError(signcore.ErrCodeVerificationFailed, "recovering sender", err)
	}
	return tx, from, nil
}
