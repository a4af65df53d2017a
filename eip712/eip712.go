// Package eip712 hashes, signs and verifies EIP-712 typed structured data.
//
// Documents use go-ethereum's apitypes.TypedData, which reads the same JSON
// as eth_signTypedData_v4. When a document omits the EIP712Domain type it is
// synthesized from the domain fields that are actually present.
package eip712

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

// Document is an EIP-712 typed data document.
type Document = apitypes.TypedData

const domainType = "EIP712Domain"

// Hashes holds the final signing hash and its two components.
type Hashes struct {
	Hash            common.Hash `json:"hash"`
	DomainSeparator common.Hash `json:"domainSeparator"`
	StructHash      common.Hash `json:"structHash"`
}

// Signature is a secp256k1 signature with v in {27, 28}.
type Signature struct {
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
	V uint8       `json:"v"`
}

// Bytes returns the 65-byte r||s||v encoding used by wallets.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// MarshalJSON adds the concatenated signature next to its parts.
func (s Signature) MarshalJSON() ([]byte, error) {
	type parts Signature
	return json.Marshal(struct {
		parts
		Signature signcore.HexBytes `json:"signature"`
	}{parts(s), s.Bytes()})
}

// SignatureFromBytes splits a 65-byte signature. v may be 0, 1, 27 or 28.
func SignatureFromBytes(sig []byte) (Signature, error) {
	if len(sig) != 65 {
		return Signature{}, signcore.Errorf(signcore.ErrInvalidInput, "signature must be 65 bytes, got %d", len(sig))
	}
	v, err := curve.NormalizeRecoveryID(sig[64])
	if err != nil {
		return Signature{}, err
	}
	var s Signature
	copy(s.R[:], sig[:32])
	copy(s.S[:], sig[32:64])
	s.V = v + 27
	return s, nil
}

// ParseDocument decodes an eth_signTypedData_v4 JSON document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed typed data document", err)
	}
	return &doc, nil
}

// HashTypedData computes keccak256(0x1901 || domainSeparator || structHash).
func HashTypedData(doc Document) (*Hashes, error) {
	if doc.PrimaryType == "" {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "typed data has no primaryType")
	}
	if _, ok := doc.Types[doc.PrimaryType]; !ok {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "primary type %q is not defined", doc.PrimaryType)
	}
	doc, err := withDomainType(doc)
	if err != nil {
		return nil, err
	}

	domainSeparator, err := doc.HashStruct(domainType, doc.Domain.Map())
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "failed to hash domain", err)
	}
	structHash, err := doc.HashStruct(doc.PrimaryType, doc.Message)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "failed to hash message", err)
	}

	raw := make([]byte, 0, 66)
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, structHash...)

	return &Hashes{
		Hash:            crypto.Keccak256Hash(raw),
		DomainSeparator: common.BytesToHash(domainSeparator),
		StructHash:      common.BytesToHash(structHash),
	}, nil
}

// SignTypedData hashes doc and signs the result with privateKey.
func SignTypedData(doc Document, privateKey []byte) (*Signature, *Hashes, error) {
	h, err := HashTypedData(doc)
	if err != nil {
		return nil, nil, err
	}
	sig, recID, err := curve.SignECDSA(privateKey, h.Hash[:])
	if err != nil {
		return nil, nil, err
	}
	out := &Signature{V: recID + 27}
	copy(out.R[:], sig[:32])
	copy(out.S[:], sig[32:])
	return out, h, nil
}

// RecoverAddress recovers the signer address of hash. v must be in {27, 28}
// or the normalized {0, 1}; anything else is malformed.
func RecoverAddress(hash common.Hash, r, s common.Hash, v uint8) (common.Address, error) {
	sig := make([]byte, 64)
	copy(sig[:32], r[:])
	copy(sig[32:], s[:])
	addr, err := curve.RecoverAddress(hash[:], sig, v)
	if err != nil {
		return common.Address{}, err
	}
	return common.Address(addr), nil
}

// VerifyTypedData reports whether sig over doc was produced by address.
func VerifyTypedData(doc Document, sig Signature, address common.Address) (bool, error) {
	h, err := HashTypedData(doc)
	if err != nil {
		return false, err
	}
	if _, err := curve.NormalizeRecoveryID(sig.V); err != nil {
		return false, err
	}
	got, err := RecoverAddress(h.Hash, sig.R, sig.S, sig.V)
	if err != nil {
		// An unrecoverable signature is a failed verification, not a malformed request.
		return false, nil
	}
	return got == address, nil
}

// withDomainType returns doc with an EIP712Domain type covering exactly the
// domain fields that are present. The caller's type map is not modified.
func withDomainType(doc Document) (Document, error) {
	present := domainFields(doc.Domain)
	if len(present) == 0 {
		return doc, signcore.Errorf(signcore.ErrInvalidInput, "typed data domain has no fields")
	}
	if declared, ok := doc.Types[domainType]; ok {
		for _, f := range declared {
			if !hasField(present, f.Name) {
				return doc, signcore.Errorf(signcore.ErrInvalidInput, "EIP712Domain declares %q but the domain has no value for it", f.Name)
			}
		}
		return doc, nil
	}

	types := make(apitypes.Types, len(doc.Types)+1)
	for name, fields := range doc.Types {
		types[name] = fields
	}
	types[domainType] = present
	doc.Types = types
	return doc, nil
}

// domainFields lists present domain fields in the canonical EIP-712 order.
func domainFields(d apitypes.TypedDataDomain) []apitypes.Type {
	var fields []apitypes.Type
	if d.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if d.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if d.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if d.VerifyingContract != "" {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	if d.Salt != "" {
		fields = append(fields, apitypes.Type{Name: "salt", Type: "bytes32"})
	}
	return fields
}

func hasField(fields []apitypes.Type, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (h Hashes) String() string {
	return fmt.Sprintf("hash=%s domain=%s struct=%s", h.Hash.Hex(), h.DomainSeparator.Hex(), h.StructHash.Hex())
}
