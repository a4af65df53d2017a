// Package btc builds sighash pre-images for Bitcoin transactions and compiles
// external signatures into witness-bearing, broadcast-ready transactions.
//
// Supported inputs: P2PK, P2PKH, P2SH-P2WPKH, P2WPKH, single-key P2WSH and
// Taproot key-path and script-path spends. Sighashes come from btcd's
// txscript, so they match what consensus code checks.
package btc

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
)

// InputType names how an input is spent.
type InputType string

// Input types.
const (
	InputP2PK           InputType = "p2pk"
	InputP2PKH          InputType = "p2pkh"
	InputP2SHP2WPKH     InputType = "p2sh-p2wpkh"
	InputP2WPKH         InputType = "p2wpkh"
	InputP2WSH          InputType = "p2wsh"
	InputP2TRKeyPath    InputType = "p2tr"
	InputP2TRScriptPath InputType = "p2tr-script"
)

// Taproot reports whether the input is signed with BIP-340 Schnorr.
func (t InputType) Taproot() bool {
	return t == InputP2TRKeyPath || t == InputP2TRScriptPath
}

// Segwit reports whether the input uses the BIP-143 sighash.
func (t InputType) Segwit() bool {
	return t == InputP2SHP2WPKH || t == InputP2WPKH || t == InputP2WSH
}

func (t InputType) scriptClass() (txscript.ScriptClass, error) {
	switch t {
	case InputP2PK:
		return txscript.PubKeyTy, nil
	case InputP2PKH:
		return txscript.PubKeyHashTy, nil
	case InputP2SHP2WPKH:
		return txscript.ScriptHashTy, nil
	case InputP2WPKH:
		return txscript.WitnessV0PubKeyHashTy, nil
	case InputP2WSH:
		return txscript.WitnessV0ScriptHashTy, nil
	case InputP2TRKeyPath, InputP2TRScriptPath:
		return txscript.WitnessV1TaprootTy, nil
	default:
		return txscript.NonStandardTy, signcore.Errorf(signcore.ErrUnsupportedCombination, "input type %q", t)
	}
}

// Input is a previous output being spent.
type Input struct {
	// TxID is the previous transaction id in display (big-endian) hex.
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`

	// PrevScript is the scriptPubKey of the output being spent.
	PrevScript encoding.HexBytes `json:"prevScript"`
	Value      int64             `json:"value"`

	// Sequence defaults to 0xffffffff.
	Sequence *uint32   `json:"sequence,omitempty"`
	Type     InputType `json:"type"`

	// PublicKey is the spending key. It may instead be supplied with the
	// signature at compile time. P2SH-P2WPKH needs it (or RedeemScript)
	// to build the redeem script.
	PublicKey     encoding.HexBytes `json:"publicKey,omitempty"`
	RedeemScript  encoding.HexBytes `json:"redeemScript,omitempty"`
	WitnessScript encoding.HexBytes `json:"witnessScript,omitempty"`

	// TapLeafScript is the leaf spent by a script-path input. TapScripts
	// lists every leaf of the tree in order; when empty the spent leaf is
	// the only one.
	TapLeafScript  encoding.HexBytes   `json:"tapLeafScript,omitempty"`
	TapInternalKey encoding.HexBytes   `json:"tapInternalKey,omitempty"`
	TapScripts     []encoding.HexBytes `json:"tapScripts,omitempty"`

	// DerivationPath identifies the signing key; it becomes the pre-image SignerID.
	DerivationPath string `json:"derivationPath,omitempty"`

	// PrevTx is the full previous transaction. PSBT export needs it for
	// non-witness inputs.
	PrevTx encoding.HexBytes `json:"prevTx,omitempty"`
}

// Output pays Value satoshis to Address or to a raw Script.
type Output struct {
	Address string            `json:"address,omitempty"`
	Script  encoding.HexBytes `json:"script,omitempty"`
	Value   int64             `json:"value"`
}

// Transaction is an unsigned Bitcoin transaction.
type Transaction struct {
	// Version defaults to 2.
	Version  int32    `json:"version"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint32   `json:"locktime"`

	// Network selects address decoding: bitcoin (default), testnet, signet or regtest.
	Network string `json:"network,omitempty"`
}

// NetParams returns the chain parameters for a network name.
func NetParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "", "bitcoin", "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet", "bitcoin-testnet":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "unknown bitcoin network %q", network)
	}
}

// build returns the unsigned wire transaction and a fetcher over the spent outputs.
func (tx Transaction) build() (*wire.MsgTx, *txscript.MultiPrevOutFetcher, error) {
	if len(tx.Inputs) == 0 || len(tx.Outputs) == 0 {
		return nil, nil, signcore.Errorf(signcore.ErrInvalidInput, "transaction needs inputs and outputs")
	}
	params, err := NetParams(tx.Network)
	if err != nil {
		return nil, nil, err
	}

	version := tx.Version
	if version == 0 {
		version = 2
	}
	msg := wire.NewMsgTx(version)
	msg.LockTime = tx.LockTime
	fetcher := txscript.NewMultiPrevOutFetcher(nil)

	for i, in := range tx.Inputs {
		if err := in.validate(); err != nil {
			return nil, nil, fmt.Errorf("input %d: %w", i, err)
		}
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil || len(in.TxID) != 64 {
			return nil, nil, signcore.Errorf(signcore.ErrInvalidInput, "input %d: txid must be 64 hex characters", i)
		}
		op := wire.NewOutPoint(hash, in.Vout)
		txIn := wire.NewTxIn(op, nil, nil)
		if in.Sequence != nil {
			txIn.Sequence = *in.Sequence
		}
		msg.AddTxIn(txIn)
		fetcher.AddPrevOut(*op, wire.NewTxOut(in.Value, in.PrevScript))
	}

	for i, out := range tx.Outputs {
		if out.Value < 0 || out.Value > btcutil.MaxSatoshi {
			return nil, nil, signcore.Errorf(signcore.ErrInvalidInput, "output %d: value %d out of range", i, out.Value)
		}
		script := []byte(out.Script)
		if len(script) == 0 {
			script, err = addressScript(out.Address, params)
			if err != nil {
				return nil, nil, fmt.Errorf("output %d: %w", i, err)
			}
		}
		msg.AddTxOut(wire.NewTxOut(out.Value, script))
	}
	return msg, fetcher, nil
}

func addressScript(address string, params *chaincfg.Params) ([]byte, error) {
	if address == "" {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "output needs an address or a script")
	}
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, fmt.Sprintf("malformed address %q", address), err)
	}
	if !addr.IsForNet(params) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "address %q is not for %s", address, params.Name)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "building output script", err)
	}
	return script, nil
}

func (in Input) validate() error {
	if in.Value < 0 || in.Value > btcutil.MaxSatoshi {
		return signcore.Errorf(signcore.ErrInvalidInput, "value %d out of range", in.Value)
	}
	want, err := in.Type.scriptClass()
	if err != nil {
		return err
	}
	if got := txscript.GetScriptClass(in.PrevScript); got != want {
		return signcore.Errorf(signcore.ErrInvalidInput, "prevScript is %s, not %s", got, in.Type)
	}

	switch in.Type {
	case InputP2SHP2WPKH:
		redeem, err := in.redeemScript()
		if err != nil {
			return err
		}
		if !bytes.Equal(btcutil.Hash160(redeem), in.PrevScript[2:22]) {
			return signcore.Errorf(signcore.ErrInvalidInput, "redeem script does not match prevScript")
		}
	case InputP2WSH:
		if len(in.WitnessScript) == 0 {
			return signcore.Errorf(signcore.ErrInvalidInput, "p2wsh inputs need a witnessScript")
		}
		if sum := sha256.Sum256(in.WitnessScript); !bytes.Equal(sum[:], in.PrevScript[2:34]) {
			return signcore.Errorf(signcore.ErrInvalidInput, "witness script does not match prevScript")
		}
	case InputP2TRScriptPath:
		if len(in.TapLeafScript) == 0 || len(in.TapInternalKey) == 0 {
			return signcore.Errorf(signcore.ErrInvalidInput, "script-path inputs need tapLeafScript and tapInternalKey")
		}
	}
	return nil
}

// redeemScript returns the P2SH-P2WPKH redeem script, building it from the
// public key when not given.
func (in Input) redeemScript() ([]byte, error) {
	if len(in.RedeemScript) > 0 {
		return in.RedeemScript, nil
	}
	if len(in.PublicKey) != 33 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "p2sh-p2wpkh inputs need a redeemScript or a compressed publicKey")
	}
	return witnessPubKeyHashScript(in.PublicKey), nil
}

func witnessPubKeyHashScript(pub []byte) []byte {
	return append([]byte{txscript.OP_0, txscript.OP_DATA_20}, btcutil.Hash160(pub)...)
}

func (in Input) tapLeaf() txscript.TapLeaf {
	return txscript.NewBaseTapLeaf(in.TapLeafScript)
}

func (in Input) tapScripts() [][]byte {
	if len(in.TapScripts) == 0 {
		return [][]byte{in.TapLeafScript}
	}
	out := make([][]byte, len(in.TapScripts))
	for i, s := range in.TapScripts {
		out[i] = s
	}
	return out
}

func (in Input) signerID(i int) string {
	if in.DerivationPath != "" {
		return in.DerivationPath
	}
	return fmt.Sprintf("input/%d", i)
}
