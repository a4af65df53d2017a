// Package cosmos builds sign bytes for Cosmos SDK transactions in either
// LEGACY_AMINO_JSON or DIRECT mode and compiles signatures into TxRaw.
//
// Protobuf messages are written field by field with protowire, omitting
// default values, which yields the canonical encoding the chain re-derives
// when it checks signatures.
package cosmos

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/validation"
)

// SignMode selects how sign bytes are produced.
type SignMode string

// Sign modes.
const (
	SignModeAminoJSON SignMode = "amino-json"
	SignModeDirect    SignMode = "direct"
)

// Protobuf enum values of cosmos.tx.signing.v1beta1.SignMode.
const (
	protoSignModeDirect    = 1
	protoSignModeAminoJSON = 127
)

const secp256k1PubKeyTypeURL = "/cosmos.crypto.secp256k1.PubKey"

// Coin is an amount of one denomination. Amounts are decimal strings.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Fee is the transaction fee and gas limit.
type Fee struct {
	Amount  []Coin `json:"amount"`
	Gas     uint64 `json:"gas,string"`
	Payer   string `json:"payer,omitempty"`
	Granter string `json:"granter,omitempty"`
}

// Message is one transaction message. Value is the protobuf encoding of the
// message, used in the TxBody. AminoJSON is its legacy {"type","value"}
// form, required for amino-json signing.
type Message struct {
	TypeURL   string            `json:"typeUrl"`
	Value     encoding.HexBytes `json:"value"`
	AminoJSON json.RawMessage   `json:"aminoJson,omitempty"`
}

// Transaction is an unsigned single-signer Cosmos SDK transaction.
type Transaction struct {
	ChainID       string    `json:"chainId"`
	AccountNumber uint64    `json:"accountNumber,string"`
	Sequence      uint64    `json:"sequence,string"`
	Messages      []Message `json:"messages"`
	Fee           Fee       `json:"fee"`
	Memo          string    `json:"memo,omitempty"`
	TimeoutHeight uint64    `json:"timeoutHeight,string,omitempty"`

	// SignMode defaults to amino-json.
	SignMode SignMode `json:"signMode,omitempty"`

	// PublicKey is the signer's compressed secp256k1 key, embedded in AuthInfo.
	PublicKey encoding.HexBytes `json:"publicKey"`

	// HRP is the bech32 prefix for the signer address; it defaults from the
	// chain registry.
	HRP string `json:"hrp,omitempty"`
}

func (tx Transaction) mode() SignMode {
	if tx.SignMode == "" {
		return SignModeAminoJSON
	}
	return tx.SignMode
}

func (tx Transaction) validate() error {
	if tx.ChainID == "" {
		return signcore.Errorf(signcore.ErrInvalidInput, "chainId is required")
	}
	if len(tx.Messages) == 0 {
		return signcore.Errorf(signcore.ErrInvalidInput, "transaction has no messages")
	}
	if len(tx.PublicKey) != 33 {
		return signcore.NewError(signcore.ErrCodeInvalidInput, "publicKey must be a 33-byte compressed secp256k1 key", signcore.ErrInvalidPublicKey)
	}
	for i, m := range tx.Messages {
		if m.TypeURL == "" {
			return signcore.Errorf(signcore.ErrInvalidInput, "message %d has no typeUrl", i)
		}
		if tx.mode() == SignModeAminoJSON && len(m.AminoJSON) == 0 {
			return signcore.Errorf(signcore.ErrInvalidInput, "message %d has no amino JSON for amino-json signing", i)
		}
	}
	for _, c := range tx.Fee.Amount {
		if c.Denom == "" {
			return signcore.Errorf(signcore.ErrInvalidInput, "fee coin without denom")
		}
		if err := validation.ValidateAmount(c.Amount); err != nil {
			return err
		}
	}
	switch tx.mode() {
	case SignModeAminoJSON, SignModeDirect:
	default:
		return signcore.Errorf(signcore.ErrUnsupportedCombination, "sign mode %q", tx.SignMode)
	}
	return nil
}

// AminoSignDoc returns the sorted, compact StdSignDoc JSON.
func (tx Transaction) AminoSignDoc() ([]byte, error) {
	msgs := make([]any, len(tx.Messages))
	for i, m := range tx.Messages {
		v, err := decodeOrdered(m.AminoJSON)
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "message "+strconv.Itoa(i)+" amino JSON", err)
		}
		msgs[i] = v
	}

	amount := make([]any, len(tx.Fee.Amount))
	for i, c := range tx.Fee.Amount {
		amount[i] = map[string]any{"amount": c.Amount, "denom": c.Denom}
	}
	fee := map[string]any{
		"amount": amount,
		"gas":    strconv.FormatUint(tx.Fee.Gas, 10),
	}
	if tx.Fee.Payer != "" {
		fee["payer"] = tx.Fee.Payer
	}
	if tx.Fee.Granter != "" {
		fee["granter"] = tx.Fee.Granter
	}

	doc := map[string]any{
		"account_number": strconv.FormatUint(tx.AccountNumber, 10),
		"chain_id":       tx.ChainID,
		"fee":            fee,
		"memo":           tx.Memo,
		"msgs":           msgs,
		"sequence":       strconv.FormatUint(tx.Sequence, 10),
	}
	if tx.TimeoutHeight != 0 {
		doc["timeout_height"] = strconv.FormatUint(tx.TimeoutHeight, 10)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "encoding sign doc", err)
	}
	return out, nil
}

// decodeOrdered parses JSON into maps so re-encoding sorts every object's
// keys. Numbers keep their original text.
func decodeOrdered(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
