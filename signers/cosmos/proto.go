package cosmos

import (
	"google.golang.org/protobuf/encoding/protowire"
)

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendMessage writes an embedded message even when it is empty, which
// matters for repeated fields.
func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func encodeAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	return appendBytes(b, 2, value)
}

// BodyBytes encodes cosmos.tx.v1beta1.TxBody.
func (tx Transaction) BodyBytes() []byte {
	var b []byte
	for _, m := range tx.Messages {
		b = appendMessage(b, 1, encodeAny(m.TypeURL, m.Value))
	}
	b = appendString(b, 2, tx.Memo)
	return appendUint(b, 3, tx.TimeoutHeight)
}

// AuthInfoBytes encodes cosmos.tx.v1beta1.AuthInfo with a single signer.
func (tx Transaction) AuthInfoBytes() []byte {
	mode := uint64(protoSignModeAminoJSON)
	if tx.mode() == SignModeDirect {
		mode = protoSignModeDirect
	}

	var pubKey []byte
	pubKey = appendBytes(pubKey, 1, tx.PublicKey)

	var single []byte
	single = appendUint(single, 1, mode)
	var modeInfo []byte
	modeInfo = appendMessage(modeInfo, 1, single)

	var signer []byte
	signer = appendMessage(signer, 1, encodeAny(secp256k1PubKeyTypeURL, pubKey))
	signer = appendMessage(signer, 2, modeInfo)
	signer = appendUint(signer, 3, tx.Sequence)

	var fee []byte
	for _, c := range tx.Fee.Amount {
		var coin []byte
		coin = appendString(coin, 1, c.Denom)
		coin = appendString(coin, 2, c.Amount)
		fee = appendMessage(fee, 1, coin)
	}
	fee = appendUint(fee, 2, tx.Fee.Gas)
	fee = appendString(fee, 3, tx.Fee.Payer)
	fee = appendString(fee, 4, tx.Fee.Granter)

	var b []byte
	b = appendMessage(b, 1, signer)
	return appendMessage(b, 2, fee)
}

// DirectSignDoc encodes cosmos.tx.v1beta1.SignDoc.
func (tx Transaction) DirectSignDoc() []byte {
	var b []byte
	b = appendBytes(b, 1, tx.BodyBytes())
	b = appendBytes(b, 2, tx.AuthInfoBytes())
	b = appendString(b, 3, tx.ChainID)
	return appendUint(b, 4, tx.AccountNumber)
}

// encodeTxRaw encodes cosmos.tx.v1beta1.TxRaw.
func encodeTxRaw(body, authInfo []byte, signatures ...[]byte) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	for _, sig := range signatures {
		b = appendMessage(b, 3, sig)
	}
	return b
}
