package cosmos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/message"
)

// SignBytes returns the bytes whose SHA-256 is signed in tx's sign mode.
func SignBytes(tx Transaction) ([]byte, error) {
	if err := tx.validate(); err != nil {
		return nil, err
	}
	if tx.mode() == SignModeDirect {
		return tx.DirectSignDoc(), nil
	}
	return tx.AminoSignDoc()
}

// Address returns the bech32 account address of the transaction's signer.
func (tx Transaction) Address() (string, error) {
	hrp := tx.HRP
	if hrp == "" {
		hrp = signcore.CosmosHub.Bech32HRP
		for _, n := range signcore.Networks {
			if n.Chain == signcore.ChainCosmos && n.ChainID == tx.ChainID {
				hrp = n.Bech32HRP
			}
		}
	}
	return message.Bech32Address(hrp, tx.PublicKey)
}

// PreImage returns SHA-256 of the sign bytes. SignerID is the signer's
// bech32 address.
func PreImage(tx Transaction) (signcore.PreImageHash, error) {
	doc, err := SignBytes(tx)
	if err != nil {
		return signcore.PreImageHash{}, err
	}
	addr, err := tx.Address()
	if err != nil {
		return signcore.PreImageHash{}, err
	}
	hash := sha256.Sum256(doc)
	return signcore.PreImageHash{
		Hash:        hash[:],
		SignerID:    addr,
		Description: fmt.Sprintf("%s %s transaction, %d message(s), sequence %d", tx.ChainID, tx.mode(), len(tx.Messages), tx.Sequence),
		Algorithm:   signcore.AlgorithmECDSASecp256k1,
	}, nil
}

// Compile verifies the signer's 64-byte compact signature and returns TxRaw.
// The tx hash is the upper-case hex SHA-256 of the TxRaw bytes.
func Compile(tx Transaction, sigs []signcore.ExternalSignature) (*signcore.CosmosTransaction, error) {
	pre, err := PreImage(tx)
	if err != nil {
		return nil, err
	}
	verify := func(pre signcore.PreImageHash, sig signcore.ExternalSignature) bool {
		pub := []byte(sig.PublicKey)
		if len(pub) == 0 {
			pub = tx.PublicKey
		}
		return curve.VerifyECDSA(pub, pre.Hash, sig.Signature) && curve.VerifyECDSA(tx.PublicKey, pre.Hash, sig.Signature)
	}
	matched, err := signcore.MatchSignatures([]signcore.PreImageHash{pre}, sigs, verify)
	if err != nil {
		return nil, err
	}

	sig := matched[0].Signature
	if len(sig) == 65 {
		sig = sig[:64]
	}
	raw := encodeTxRaw(tx.BodyBytes(), tx.AuthInfoBytes(), sig)
	hash := sha256.Sum256(raw)
	return &signcore.CosmosTransaction{
		RawTx:  raw,
		TxHash: strings.ToUpper(hex.EncodeToString(hash[:])),
	}, nil
}
