package svm

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// MessageBytes returns the serialized message, the exact bytes every
// required signer signs.
func MessageBytes(tx Transaction) ([]byte, error) {
	built, err := tx.build()
	if err != nil {
		return nil, err
	}
	return messageBytes(built)
}

func messageBytes(tx *solana.Transaction) ([]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "serializing message", err)
	}
	return msg, nil
}

// PreImages returns one pre-image per required signer, fee payer first.
// SignerID is the signer's base58 address.
func PreImages(tx Transaction) ([]signcore.PreImageHash, error) {
	built, err := tx.build()
	if err != nil {
		return nil, err
	}
	return preImages(built)
}

func preImages(tx *solana.Transaction) ([]signcore.PreImageHash, error) {
	msg, err := messageBytes(tx)
	if err != nil {
		return nil, err
	}
	version := "legacy"
	if tx.Message.IsVersioned() {
		version = "v0"
	}
	signers := tx.Message.Signers()
	pres := make([]signcore.PreImageHash, len(signers))
	for i, key := range signers {
		pres[i] = signcore.PreImageHash{
			Hash:        msg,
			SignerID:    key.String(),
			Description: fmt.Sprintf("solana %s message, signer %d of %d", version, i+1, len(signers)),
			Algorithm:   signcore.AlgorithmEd25519,
		}
	}
	return pres, nil
}

// Compile places each signer's signature in its slot, in the order of the
// message's signer keys, and serializes the transaction.
func Compile(tx Transaction, sigs []signcore.ExternalSignature) (*signcore.SolanaTransaction, error) {
	built, err := tx.build()
	if err != nil {
		return nil, err
	}
	pres, err := preImages(built)
	if err != nil {
		return nil, err
	}

	signers := built.Message.Signers()
	keyOf := make(map[string]solana.PublicKey, len(signers))
	for _, key := range signers {
		keyOf[key.String()] = key
	}
	verify := func(pre signcore.PreImageHash, sig signcore.ExternalSignature) bool {
		key := keyOf[pre.SignerID]
		if len(sig.PublicKey) > 0 && !bytes.Equal(sig.PublicKey, key[:]) {
			return false
		}
		return curve.Verify(signcore.CurveEd25519, key[:], pre.Hash, sig.Signature)
	}
	matched, err := signcore.MatchSignatures(pres, sigs, verify)
	if err != nil {
		return nil, err
	}

	built.Signatures = make([]solana.Signature, len(signers))
	for i, sig := range matched {
		built.Signatures[i] = solana.SignatureFromBytes(sig.Signature)
	}
	if err := built.VerifySignatures(); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSignatureMismatch, "compiled transaction does not verify", err)
	}

	raw, err := built.MarshalBinary()
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "serializing transaction", err)
	}
	return &signcore.SolanaTransaction{
		RawTx:     raw,
		Signature: built.Signatures[0].String(),
	}, nil
}

// Decode parses a serialized transaction, signed or not.
func Decode(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed solana transaction", err)
	}
	return tx, nil
}
