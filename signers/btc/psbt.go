package btc

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/taproot"
)

// ToPSBT exports tx as an unsigned BIP-174 packet for an air-gapped signer.
// Witness inputs carry their spent output; non-witness inputs need PrevTx.
func ToPSBT(tx Transaction, hashType txscript.SigHashType) (*psbt.Packet, error) {
	if !validHashType(hashType) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "sighash type %#x", uint32(hashType))
	}
	msg, _, err := tx.build()
	if err != nil {
		return nil, err
	}
	p, err := psbt.NewFromUnsignedTx(msg)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "building psbt", err)
	}

	for i, in := range tx.Inputs {
		pin := &p.Inputs[i]
		if in.Type.Taproot() {
			pin.SighashType = hashType
		} else {
			pin.SighashType = ECDSAHashType(hashType)
		}

		switch in.Type {
		case InputP2PK, InputP2PKH:
			if len(in.PrevTx) == 0 {
				return nil, signcore.Errorf(signcore.ErrInvalidInput, "input %d: %s inputs need prevTx for psbt export", i, in.Type)
			}
			prev, err := DecodeTransaction(in.PrevTx)
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			if prev.TxHash() != msg.TxIn[i].PreviousOutPoint.Hash {
				return nil, signcore.Errorf(signcore.ErrInvalidInput, "input %d: prevTx does not hash to txid", i)
			}
			pin.NonWitnessUtxo = prev
		default:
			pin.WitnessUtxo = wire.NewTxOut(in.Value, in.PrevScript)
		}

		switch in.Type {
		case InputP2SHP2WPKH:
			pin.RedeemScript, err = in.redeemScript()
			if err != nil {
				return nil, err
			}
		case InputP2WSH:
			pin.WitnessScript = in.WitnessScript
		case InputP2TRKeyPath:
			if len(in.TapInternalKey) > 0 {
				pin.TaprootInternalKey = xOnly(in.TapInternalKey)
			}
		case InputP2TRScriptPath:
			pin.TaprootInternalKey = xOnly(in.TapInternalKey)
			tree, err := taproot.BuildTree(in.tapScripts(), nil)
			if err != nil {
				return nil, err
			}
			pin.TaprootMerkleRoot = tree.Root[:]
			for leaf, script := range in.tapScripts() {
				if !bytes.Equal(script, in.TapLeafScript) {
					continue
				}
				cb, err := tree.ControlBlock(in.TapInternalKey, leaf)
				if err != nil {
					return nil, err
				}
				pin.TaprootLeafScript = append(pin.TaprootLeafScript, &psbt.TaprootTapLeafScript{
					ControlBlock: cb,
					Script:       script,
					LeafVersion:  txscript.BaseLeafVersion,
				})
			}
		}
	}

	if err := p.SanityCheck(); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "psbt failed sanity check", err)
	}
	return p, nil
}

// EncodePSBT serializes a packet to its binary form, the payload of a
// crypto-psbt UR.
func EncodePSBT(p *psbt.Packet) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "serializing psbt", err)
	}
	return buf.Bytes(), nil
}

// DecodePSBT parses a binary or base64 packet.
func DecodePSBT(data []byte) (*psbt.Packet, error) {
	b64 := !bytes.HasPrefix(data, []byte("psbt\xff"))
	p, err := psbt.NewFromRawBytes(bytes.NewReader(data), b64)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "parsing psbt", err)
	}
	return p, nil
}

// SignaturesFromPSBT extracts the signatures a signer added to p, labelled
// with their input index and public key, ready for Compile.
func SignaturesFromPSBT(p *psbt.Packet) ([]signcore.ExternalSignature, error) {
	var out []signcore.ExternalSignature
	for i, in := range p.Inputs {
		for _, ps := range in.PartialSigs {
			if len(ps.Signature) < 2 {
				return nil, signcore.Errorf(signcore.ErrInvalidInput, "input %d: empty partial signature", i)
			}
			out = append(out, signcore.ExternalSignature{
				Signature:  ps.Signature[:len(ps.Signature)-1],
				InputIndex: signcore.Index(i),
				PublicKey:  ps.PubKey,
			})
		}
		if len(in.TaprootKeySpendSig) > 0 {
			out = append(out, signcore.ExternalSignature{
				Signature:  in.TaprootKeySpendSig,
				InputIndex: signcore.Index(i),
			})
		}
		for _, ss := range in.TaprootScriptSpendSig {
			out = append(out, signcore.ExternalSignature{
				Signature:  ss.Signature,
				InputIndex: signcore.Index(i),
				PublicKey:  ss.XOnlyPubKey,
			})
		}
	}
	if len(out) == 0 {
		return nil, signcore.Errorf(signcore.ErrIncompleteSignatureSet, "psbt carries no signatures")
	}
	return out, nil
}
