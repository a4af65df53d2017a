package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/eip712"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/signers/evm"
	"github.com/hawala-wallet/signcore/validation"
)

// DefaultAuthorizationTimeout is the validity window, in seconds, used when a
// transfer authorization request sets neither bound.
const DefaultAuthorizationTimeout = 60

// TransferAuthorizationRequest describes an EIP-3009 transferWithAuthorization
// for a token such as USDC. Name and Version must match the token's EIP-712
// domain. Unset window bounds and nonce are filled in.
type TransferAuthorizationRequest struct {
	From    common.Address        `json:"from"`
	To      common.Address        `json:"to"`
	Value   string                `json:"value"`
	Token   common.Address        `json:"token"`
	ChainID *math.HexOrDecimal256 `json:"chainId"`
	Name    string                `json:"name"`
	Version string                `json:"version"`

	ValidAfter     *math.HexOrDecimal256 `json:"validAfter,omitempty"`
	ValidBefore    *math.HexOrDecimal256 `json:"validBefore,omitempty"`
	TimeoutSeconds int                   `json:"timeoutSeconds,omitempty"`
	Nonce          *common.Hash          `json:"nonce,omitempty"`

	// PrivateKey, when set, must belong to From and signs the document.
	PrivateKey encoding.HexBytes `json:"privateKey,omitempty"`
}

// TransferAuthorizationResponse is the document to sign, its hashes and,
// when a key was supplied, the signature.
type TransferAuthorizationResponse struct {
	TypedData eip712.Document   `json:"typedData"`
	Hashes    eip712.Hashes     `json:"hashes"`
	Signature *eip712.Signature `json:"signature,omitempty"`
}

// TransferAuthorization builds, hashes and optionally signs an EIP-3009
// transfer authorization.
func TransferAuthorization(req TransferAuthorizationRequest) (*TransferAuthorizationResponse, error) {
	switch {
	case req.ChainID == nil:
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "chainId is required")
	case req.Token == (common.Address{}):
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "token address is required")
	case req.Name == "" || req.Version == "":
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "token domain name and version are required")
	}
	if err := validation.ValidateAmount(req.Value); err != nil {
		return nil, err
	}
	value, _ := new(big.Int).SetString(req.Value, 10)

	timeout := req.TimeoutSeconds
	if timeout == 0 {
		timeout = DefaultAuthorizationTimeout
	}
	auth, err := evm.NewTransferAuthorization(req.From, req.To, value, timeout)
	if err != nil {
		return nil, err
	}
	if req.ValidAfter != nil {
		auth.ValidAfter = (*big.Int)(req.ValidAfter)
	}
	if req.ValidBefore != nil {
		auth.ValidBefore = (*big.Int)(req.ValidBefore)
	}
	if req.Nonce != nil {
		auth.Nonce = *req.Nonce
	}
	if err := auth.Validate(); err != nil {
		return nil, err
	}

	chainID := (*big.Int)(req.ChainID)
	doc := auth.TypedData(req.Token, chainID, req.Name, req.Version)
	h, err := eip712.HashTypedData(doc)
	if err != nil {
		return nil, err
	}
	resp := &TransferAuthorizationResponse{TypedData: doc, Hashes: *h}
	if len(req.PrivateKey) == 0 {
		return resp, nil
	}

	key, err := curve.ToECDSA(req.PrivateKey)
	if err != nil {
		return nil, err
	}
	if signer := gethcrypto.PubkeyToAddress(key.PublicKey); signer != req.From {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "private key belongs to %s, not %s", signer.Hex(), req.From.Hex())
	}
	sig, err := evm.SignTransferAuthorization(req.PrivateKey, req.Token, chainID, auth, req.Name, req.Version)
	if err != nil {
		return nil, err
	}
	resp.Signature = sig
	return resp, nil
}
