package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/eip712"
	"github.com/hawala-wallet/signcore/encoding"
)

// TypedDataRequest carries an eth_signTypedData_v4 document.
type TypedDataRequest struct {
	TypedData eip712.Document `json:"typedData"`
}

// HashTypedData returns the EIP-712 signing hash and its parts.
func HashTypedData(req TypedDataRequest) (*eip712.Hashes, error) {
	return eip712.HashTypedData(req.TypedData)
}

// SignTypedDataRequest signs a typed data document.
type SignTypedDataRequest struct {
	TypedData  eip712.Document   `json:"typedData"`
	PrivateKey encoding.HexBytes `json:"privateKey"`
}

// SignTypedDataResponse is the signature with the hashes it commits to.
type SignTypedDataResponse struct {
	Signature eip712.Signature `json:"signature"`
	Hashes    eip712.Hashes    `json:"hashes"`
}

// SignTypedData hashes and signs req.TypedData.
func SignTypedData(req SignTypedDataRequest) (*SignTypedDataResponse, error) {
	sig, h, err := eip712.SignTypedData(req.TypedData, req.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &SignTypedDataResponse{Signature: *sig, Hashes: *h}, nil
}

// RecoverTypedDataRequest recovers the signer of a 65-byte r||s||v signature.
type RecoverTypedDataRequest struct {
	TypedData eip712.Document   `json:"typedData"`
	Signature encoding.HexBytes `json:"signature"`
	// Expected, when set, is compared with the recovered address.
	Expected *common.Address `json:"expected,omitempty"`
}

// RecoverTypedDataResponse is the recovered signer.
type RecoverTypedDataResponse struct {
	Address common.Address `json:"address"`
	Matches *bool          `json:"matches,omitempty"`
}

// RecoverTypedData recovers the address that signed req.TypedData.
func RecoverTypedData(req RecoverTypedDataRequest) (*RecoverTypedDataResponse, error) {
	sig, err := eip712.SignatureFromBytes(req.Signature)
	if err != nil {
		return nil, err
	}
	h, err := eip712.HashTypedData(req.TypedData)
	if err != nil {
		return nil, err
	}
	addr, err := eip712.RecoverAddress(h.Hash, sig.R, sig.S, sig.V)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeVerificationFailed, "cannot recover typed data signer", err)
	}
	resp := &RecoverTypedDataResponse{Address: addr}
	if req.Expected != nil {
		matches := *req.Expected == addr
		resp.Matches = &matches
	}
	return resp, nil
}
