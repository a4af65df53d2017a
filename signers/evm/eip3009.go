package evm

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/eip712"
)

// TransferAuthorization holds the parameters of an EIP-3009
// transferWithAuthorization, the gasless token transfer USDC and similar
// tokens accept.
type TransferAuthorization struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       common.Hash
}

// NewTransferAuthorization fills in a random nonce and a validity window of
// timeoutSeconds starting 10 seconds in the past to tolerate clock drift.
func NewTransferAuthorization(from, to common.Address, value *big.Int, timeoutSeconds int) (*TransferAuthorization, error) {
	if timeoutSeconds <= 0 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "timeout must be positive, got %d", timeoutSeconds)
	}
	nonce, err := randomNonce()
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeSigningFailed, "cannot draw authorization nonce", err)
	}

	now := time.Now().Unix()
	return &TransferAuthorization{
		From:        from,
		To:          to,
		Value:       value,
		ValidAfter:  big.NewInt(now - 10),
		ValidBefore: big.NewInt(now + int64(timeoutSeconds)),
		Nonce:       nonce,
	}, nil
}

// Validate checks that every field is set and the window is not empty.
func (auth *TransferAuthorization) Validate() error {
	switch {
	case auth.Value == nil || auth.Value.Sign() < 0:
		return signcore.Errorf(signcore.ErrInvalidInput, "transfer value must be non-negative")
	case auth.ValidAfter == nil || auth.ValidBefore == nil:
		return signcore.Errorf(signcore.ErrInvalidInput, "validity window is incomplete")
	case auth.ValidBefore.Cmp(auth.ValidAfter) <= 0:
		return signcore.Errorf(signcore.ErrInvalidInput, "validBefore %s is not after validAfter %s", auth.ValidBefore, auth.ValidAfter)
	}
	return nil
}

// TypedData returns the EIP-712 document a wallet signs for auth against
// token. name and version must match the token's EIP-712 domain.
func (auth *TransferAuthorization) TypedData(token common.Address, chainID *big.Int, name, version string) eip712.Document {
	return eip712.Document{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"TransferWithAuthorization": []apitypes.Type{
				{Name: "from", Type: "address"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "validAfter", Type: "uint256"},
				{Name: "validBefore", Type: "uint256"},
				{Name: "nonce", Type: "bytes32"},
			},
		},
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           version,
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: token.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From.Hex(),
			"to":          auth.To.Hex(),
			"value":       (*math.HexOrDecimal256)(auth.Value),
			"validAfter":  (*math.HexOrDecimal256)(auth.ValidAfter),
			"validBefore": (*math.HexOrDecimal256)(auth.ValidBefore),
			"nonce":       auth.Nonce.Hex(),
		},
	}
}

// SignTransferAuthorization signs auth with a local key and returns the
// 65-byte signature with v in {27, 28}.
func SignTransferAuthorization(privateKey []byte, token common.Address, chainID *big.Int, auth *TransferAuthorization, name, version string) (*eip712.Signature, error) {
	if err := auth.Validate(); err != nil {
		return nil, err
	}
	sig, _, err := eip712.SignTypedData(auth.TypedData(token, chainID, name, version), privateKey)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

func randomNonce() (common.Hash, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(nonce[:]), nil
}
