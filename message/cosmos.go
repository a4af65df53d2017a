package message

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// Cosmos signs arbitrary data as an ADR-036 amino sign doc.
type Cosmos struct {
	// HRP is the bech32 prefix used when the signer is derived from the key.
	HRP string
	// Signer, when set, is embedded verbatim instead of the derived address.
	Signer string
}

var _ signcore.MessageSigner = Cosmos{}

// Chain implements signcore.MessageSigner.
func (Cosmos) Chain() signcore.Chain { return signcore.ChainCosmos }

// Sign implements signcore.MessageSigner. The result is a 64-byte compact r||s
// signature over SHA-256 of the sign doc.
func (c Cosmos) Sign(message, privateKey []byte) ([]byte, error) {
	pub, err := curve.PublicKey(signcore.CurveSecp256k1, privateKey)
	if err != nil {
		return nil, err
	}
	doc, err := c.SignDoc(message, pub)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(doc)
	sig, _, err := curve.SignECDSA(privateKey, hash[:])
	return sig, err
}

// Verify implements signcore.MessageSigner. publicKey is a 33 or 65 byte
// secp256k1 key.
func (c Cosmos) Verify(message, signature, publicKey []byte) (bool, error) {
	if _, err := curve.ParseSecp256k1PublicKey(publicKey); err != nil {
		return false, err
	}
	if len(signature) != 64 {
		return false, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 64 bytes, got %d", len(signature))
	}
	doc, err := c.SignDoc(message, publicKey)
	if err != nil {
		return false, err
	}
	hash := sha256.Sum256(doc)
	return curve.VerifyECDSA(publicKey, hash[:], signature), nil
}

// SignDoc returns the sorted-key JSON ADR-036 document for data signed by the
// holder of publicKey.
func (c Cosmos) SignDoc(data, publicKey []byte) ([]byte, error) {
	signer := c.Signer
	if signer == "" {
		addr, err := Bech32Address(c.hrp(), publicKey)
		if err != nil {
			return nil, err
		}
		signer = addr
	}

	// Maps marshal with sorted keys, which is the amino canonical form.
	doc := map[string]any{
		"account_number": "0",
		"chain_id":       "",
		"fee": map[string]any{
			"amount": []any{},
			"gas":    "0",
		},
		"memo": "",
		"msgs": []any{
			map[string]any{
				"type": "sign/MsgSignData",
				"value": map[string]any{
					"data":   base64.StdEncoding.EncodeToString(data),
					"signer": signer,
				},
			},
		},
		"sequence": "0",
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "encoding sign doc", err)
	}
	return out, nil
}

func (c Cosmos) hrp() string {
	if c.HRP == "" {
		return signcore.CosmosHub.Bech32HRP
	}
	return c.HRP
}

// Bech32Address returns bech32(hrp, ripemd160(sha256(compressed pubkey))).
func Bech32Address(hrp string, publicKey []byte) (string, error) {
	pub, err := curve.ParseSecp256k1PublicKey(publicKey)
	if err != nil {
		return "", err
	}
	conv, err := bech32.ConvertBits(btcutil.Hash160(crypto.CompressPubkey(pub)), 8, 5, true)
	if err != nil {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "bech32 conversion", err)
	}
	addr, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "bech32 encoding", err)
	}
	return addr, nil
}

// StdSignature is the amino JSON signature object dApps expect back from
// signArbitrary.
type StdSignature struct {
	PubKey    StdPubKey `json:"pub_key"`
	Signature string    `json:"signature"`
}

// StdPubKey is the amino-typed public key inside a StdSignature.
type StdPubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewStdSignature wraps a signature and compressed public key.
func NewStdSignature(signature, publicKey []byte) StdSignature {
	return StdSignature{
		PubKey: StdPubKey{
			Type:  "tendermint/PubKeySecp256k1",
			Value: base64.StdEncoding.EncodeToString(publicKey),
		},
		Signature: base64.StdEncoding.EncodeToString(signature),
	}
}
