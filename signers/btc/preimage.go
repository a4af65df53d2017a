package btc

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/hawala-wallet/signcore"
)

// ECDSAHashType returns the sighash flag used for non-taproot inputs.
// SigHashDefault only exists for taproot, so it maps to SigHashAll.
func ECDSAHashType(hashType txscript.SigHashType) txscript.SigHashType {
	if hashType == txscript.SigHashDefault {
		return txscript.SigHashAll
	}
	return hashType
}

func validHashType(hashType txscript.SigHashType) bool {
	switch hashType &^ txscript.SigHashAnyOneCanPay {
	case txscript.SigHashAll, txscript.SigHashNone, txscript.SigHashSingle:
		return true
	case txscript.SigHashDefault:
		return hashType == txscript.SigHashDefault
	}
	return false
}

// PreImages returns one sighash per input, in input order, each carrying its
// InputIndex. hashType applies to every input; taproot inputs use it as is
// and other inputs read SigHashDefault as SigHashAll.
func PreImages(tx Transaction, hashType txscript.SigHashType) ([]signcore.PreImageHash, error) {
	if !validHashType(hashType) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "sighash type %#x", uint32(hashType))
	}
	msg, fetcher, err := tx.build()
	if err != nil {
		return nil, err
	}
	sigHashes := txscript.NewTxSigHashes(msg, fetcher)

	out := make([]signcore.PreImageHash, len(tx.Inputs))
	for i, in := range tx.Inputs {
		hash, err := sighash(msg, fetcher, sigHashes, i, in, hashType)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		alg := signcore.AlgorithmECDSASecp256k1
		if in.Type.Taproot() {
			alg = signcore.AlgorithmSchnorrSecp256k1
		}
		out[i] = signcore.PreImageHash{
			Hash:        hash,
			SignerID:    in.signerID(i),
			InputIndex:  signcore.Index(i),
			Description: fmt.Sprintf("%s input %d (%d sats)", in.Type, i, in.Value),
			Algorithm:   alg,
		}
	}
	return out, nil
}

func sighash(msg *wire.MsgTx, fetcher txscript.PrevOutputFetcher, sigHashes *txscript.TxSigHashes, i int, in Input, hashType txscript.SigHashType) ([]byte, error) {
	var (
		hash []byte
		err  error
	)
	switch in.Type {
	case InputP2PK, InputP2PKH:
		hash, err = txscript.CalcSignatureHash(in.PrevScript, ECDSAHashType(hashType), msg, i)
	case InputP2SHP2WPKH:
		redeem, rerr := in.redeemScript()
		if rerr != nil {
			return nil, rerr
		}
		hash, err = txscript.CalcWitnessSigHash(redeem, sigHashes, ECDSAHashType(hashType), msg, i, in.Value)
	case InputP2WPKH:
		hash, err = txscript.CalcWitnessSigHash(in.PrevScript, sigHashes, ECDSAHashType(hashType), msg, i, in.Value)
	case InputP2WSH:
		hash, err = txscript.CalcWitnessSigHash(in.WitnessScript, sigHashes, ECDSAHashType(hashType), msg, i, in.Value)
	case InputP2TRKeyPath:
		hash, err = txscript.CalcTaprootSignatureHash(sigHashes, hashType, msg, i, fetcher)
	case InputP2TRScriptPath:
		hash, err = txscript.CalcTapscriptSignaturehash(sigHashes, hashType, msg, i, fetcher, in.tapLeaf())
	default:
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "input type %q", in.Type)
	}
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "computing sighash", err)
	}
	return hash, nil
}
