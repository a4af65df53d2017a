package btc

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/taproot"
)

// Compile verifies one signature per input and assembles the signed
// transaction. ECDSA signatures may be 64-byte compact or DER; Schnorr
// signatures are 64 bytes, or 65 with a trailing sighash byte equal to
// hashType.
func Compile(tx Transaction, hashType txscript.SigHashType, sigs []signcore.ExternalSignature) (*signcore.BitcoinTransaction, error) {
	pres, err := PreImages(tx, hashType)
	if err != nil {
		return nil, err
	}
	verify := func(pre signcore.PreImageHash, sig signcore.ExternalSignature) bool {
		return verifyInput(tx.Inputs[*pre.InputIndex], pre.Hash, sig, hashType) == nil
	}
	matched, err := signcore.MatchSignatures(pres, sigs, verify)
	if err != nil {
		return nil, err
	}

	msg, _, err := tx.build()
	if err != nil {
		return nil, err
	}
	for i, in := range tx.Inputs {
		if err := finalize(msg.TxIn[i], in, matched[i], hashType); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "serializing transaction", err)
	}
	return &signcore.BitcoinTransaction{
		RawTx: buf.Bytes(),
		TxID:  msg.TxHash().String(),
		WTxID: msg.WitnessHash().String(),
		VSize: VirtualSize(msg),
	}, nil
}

// VirtualSize returns ceil(weight / 4) with weight = 3*stripped + total.
func VirtualSize(msg *wire.MsgTx) int64 {
	weight := int64(msg.SerializeSizeStripped())*3 + int64(msg.SerializeSize())
	return (weight + 3) / 4
}

// spendingKey returns the public key for an ECDSA input, preferring the key
// that came with the signature.
func spendingKey(in Input, sig signcore.ExternalSignature) ([]byte, *btcec.PublicKey, error) {
	raw := []byte(sig.PublicKey)
	if len(raw) == 0 {
		raw = in.PublicKey
	}
	if in.Type == InputP2PK && len(raw) == 0 {
		if pushes, err := txscript.PushedData(in.PrevScript); err == nil && len(pushes) == 1 {
			raw = pushes[0]
		}
	}
	if len(raw) == 0 {
		return nil, nil, signcore.Errorf(signcore.ErrInvalidInput, "no public key for %s input", in.Type)
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed public key", signcore.ErrInvalidPublicKey)
	}
	return raw, pub, nil
}

func parseECDSA(sig []byte) (*ecdsa.Signature, error) {
	if len(sig) == 64 {
		var r, s btcec.ModNScalar
		if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:]) || r.IsZero() || s.IsZero() {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "signature scalar out of range")
		}
		return ecdsa.NewSignature(&r, &s), nil
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "signature is neither compact nor DER", err)
	}
	return parsed, nil
}

func schnorrBytes(sig []byte, hashType txscript.SigHashType) ([]byte, error) {
	switch {
	case len(sig) == 64:
		return sig, nil
	case len(sig) == 65 && txscript.SigHashType(sig[64]) == hashType && hashType != txscript.SigHashDefault:
		return sig[:64], nil
	default:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "schnorr signature must be 64 bytes")
	}
}

// verifyInput checks sig against hash and that the key it verifies under is
// the one the output commits to.
func verifyInput(in Input, hash []byte, sig signcore.ExternalSignature, hashType txscript.SigHashType) error {
	switch in.Type {
	case InputP2TRKeyPath:
		raw, err := schnorrBytes(sig.Signature, hashType)
		if err != nil {
			return err
		}
		if !curve.VerifySchnorr(in.PrevScript[2:34], hash, raw) {
			return signcore.ErrSignatureMismatch
		}
		return nil

	case InputP2TRScriptPath:
		raw, err := schnorrBytes(sig.Signature, hashType)
		if err != nil {
			return err
		}
		key := []byte(sig.PublicKey)
		if len(key) == 0 {
			key = in.PublicKey
		}
		if len(key) == 0 || !bytes.Contains(in.TapLeafScript, xOnly(key)) {
			return signcore.Errorf(signcore.ErrInvalidInput, "script-path signature needs a key that appears in the leaf")
		}
		if !curve.VerifySchnorr(key, hash, raw) {
			return signcore.ErrSignatureMismatch
		}
		return nil
	}

	rawKey, pub, err := spendingKey(in, sig)
	if err != nil {
		return err
	}
	parsed, err := parseECDSA(sig.Signature)
	if err != nil {
		return err
	}
	if !parsed.Verify(hash, pub) {
		return signcore.ErrSignatureMismatch
	}

	switch in.Type {
	case InputP2PK:
		pushes, err := txscript.PushedData(in.PrevScript)
		if err != nil || len(pushes) != 1 || !bytes.Equal(pushes[0], rawKey) {
			return signcore.ErrSignatureMismatch
		}
	case InputP2PKH:
		if !bytes.Equal(btcutil.Hash160(rawKey), in.PrevScript[3:23]) {
			return signcore.ErrSignatureMismatch
		}
	case InputP2WPKH:
		if !bytes.Equal(btcutil.Hash160(rawKey), in.PrevScript[2:22]) {
			return signcore.ErrSignatureMismatch
		}
	case InputP2SHP2WPKH:
		redeem, err := in.redeemScript()
		if err != nil {
			return err
		}
		if !bytes.Equal(btcutil.Hash160(rawKey), redeem[2:22]) {
			return signcore.ErrSignatureMismatch
		}
	case InputP2WSH:
		if !bytes.Contains(in.WitnessScript, rawKey) {
			return signcore.ErrSignatureMismatch
		}
	}
	return nil
}

func xOnly(key []byte) []byte {
	if len(key) == 33 {
		return key[1:]
	}
	return key
}

// finalize writes the scriptSig and witness for a verified signature.
func finalize(txIn *wire.TxIn, in Input, sig signcore.ExternalSignature, hashType txscript.SigHashType) error {
	if in.Type.Taproot() {
		raw, err := schnorrBytes(sig.Signature, hashType)
		if err != nil {
			return err
		}
		if hashType != txscript.SigHashDefault {
			raw = append(append([]byte{}, raw...), byte(hashType))
		}
		if in.Type == InputP2TRKeyPath {
			txIn.Witness = wire.TxWitness{raw}
			return nil
		}
		tree, err := taproot.BuildTree(in.tapScripts(), nil)
		if err != nil {
			return err
		}
		leaf := -1
		for i, s := range in.tapScripts() {
			if bytes.Equal(s, in.TapLeafScript) {
				leaf = i
				break
			}
		}
		if leaf < 0 {
			return signcore.Errorf(signcore.ErrInvalidInput, "tapLeafScript is not among tapScripts")
		}
		out, err := tree.OutputKey(in.TapInternalKey)
		if err != nil {
			return err
		}
		if !bytes.Equal(out.Key[:], in.PrevScript[2:34]) {
			return signcore.Errorf(signcore.ErrInvalidInput, "internal key and scripts do not produce the spent output key")
		}
		cb, err := tree.ControlBlock(in.TapInternalKey, leaf)
		if err != nil {
			return err
		}
		txIn.Witness = wire.TxWitness{raw, in.TapLeafScript, cb}
		return nil
	}

	rawKey, _, err := spendingKey(in, sig)
	if err != nil {
		return err
	}
	parsed, err := parseECDSA(sig.Signature)
	if err != nil {
		return err
	}
	der := append(parsed.Serialize(), byte(ECDSAHashType(hashType)))

	switch in.Type {
	case InputP2PK:
		txIn.SignatureScript, err = txscript.NewScriptBuilder().AddData(der).Script()
	case InputP2PKH:
		txIn.SignatureScript, err = txscript.NewScriptBuilder().AddData(der).AddData(rawKey).Script()
	case InputP2WPKH:
		txIn.Witness = wire.TxWitness{der, rawKey}
	case InputP2SHP2WPKH:
		redeem, rerr := in.redeemScript()
		if rerr != nil {
			return rerr
		}
		txIn.SignatureScript, err = txscript.NewScriptBuilder().AddData(redeem).Script()
		txIn.Witness = wire.TxWitness{der, rawKey}
	case InputP2WSH:
		txIn.Witness = wire.TxWitness{der, in.WitnessScript}
	}
	if err != nil {
		return signcore.NewError(signcore.ErrCodeInvalidInput, "building scriptSig", err)
	}
	return nil
}

// DecodeTransaction parses a raw transaction, as produced by Compile.
func DecodeTransaction(raw []byte) (*wire.MsgTx, error) {
	msg := new(wire.MsgTx)
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "decoding transaction", err)
	}
	return msg, nil
}

// DecodeTransactionHex is DecodeTransaction for hex input.
func DecodeTransactionHex(s string) (*wire.MsgTx, error) {
	raw, err := encoding.DecodeHex(s)
	if err != nil {
		return nil, err
	}
	return DecodeTransaction(raw)
}
