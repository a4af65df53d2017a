// Package evm builds signing pre-images for Ethereum transactions and compiles
// externally produced signatures into broadcast-ready raw transactions.
//
// Legacy, EIP-2930, EIP-1559 and EIP-7702 transactions are supported. Signing
// hashes and encodings come from go-ethereum's core/types, so the bytes match
// what a node computes.
package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/holiman/uint256"
)

// Transaction envelope types.
const (
	TypeLegacy     = types.LegacyTxType
	TypeAccessList = types.AccessListTxType
	TypeDynamicFee = types.DynamicFeeTxType
	TypeSetCode    = types.SetCodeTxType
)

// Transaction is an unsigned Ethereum transaction. Quantities accept decimal
// or 0x-hex in JSON.
type Transaction struct {
	Type           uint8                 `json:"type"`
	ChainID        *math.HexOrDecimal256 `json:"chainId,omitempty"`
	Nonce          math.HexOrDecimal64   `json:"nonce"`
	GasPrice       *math.HexOrDecimal256 `json:"gasPrice,omitempty"`
	GasTipCap      *math.HexOrDecimal256 `json:"maxPriorityFeePerGas,omitempty"`
	GasFeeCap      *math.HexOrDecimal256 `json:"maxFeePerGas,omitempty"`
	Gas            math.HexOrDecimal64   `json:"gas"`
	To             *common.Address       `json:"to,omitempty"`
	Value          *math.HexOrDecimal256 `json:"value,omitempty"`
	Data           encoding.HexBytes     `json:"data,omitempty"`
	AccessList     types.AccessList      `json:"accessList,omitempty"`
	Authorizations []Authorization       `json:"authorizationList,omitempty"`
}

// Authorization is an unsigned EIP-7702 delegation tuple.
type Authorization struct {
	ChainID *math.HexOrDecimal256 `json:"chainId"`
	Address common.Address        `json:"address"`
	Nonce   math.HexOrDecimal64   `json:"nonce"`
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

func u256Of(name string, v *math.HexOrDecimal256) (*uint256.Int, error) {
	out, overflow := uint256.FromBig(bigOf(v))
	if overflow {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "%s does not fit in 256 bits", name)
	}
	return out, nil
}

func (tx Transaction) chainID() *big.Int {
	if tx.ChainID == nil {
		return nil
	}
	return (*big.Int)(tx.ChainID)
}

// signer returns the go-ethereum signer for tx. A legacy transaction without
// a chain id uses pre-EIP-155 Homestead signing.
func (tx Transaction) signer() types.Signer {
	id := tx.chainID()
	if id == nil || id.Sign() == 0 {
		return types.HomesteadSigner{}
	}
	return types.LatestSignerForChainID(id)
}

// toTypes builds the go-ethereum transaction for tx without signature values.
func (tx Transaction) toTypes(auths []types.SetCodeAuthorization) (*types.Transaction, error) {
	if tx.Type != TypeLegacy {
		if id := tx.chainID(); id == nil || id.Sign() <= 0 {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "typed transactions require a positive chainId")
		}
	}

	switch tx.Type {
	case TypeLegacy:
		return types.NewTx(&types.LegacyTx{
			Nonce:    uint64(tx.Nonce),
			GasPrice: bigOf(tx.GasPrice),
			Gas:      uint64(tx.Gas),
			To:       tx.To,
			Value:    bigOf(tx.Value),
			Data:     tx.Data,
		}), nil

	case TypeAccessList:
		return types.NewTx(&types.AccessListTx{
			ChainID:    tx.chainID(),
			Nonce:      uint64(tx.Nonce),
			GasPrice:   bigOf(tx.GasPrice),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      bigOf(tx.Value),
			Data:       tx.Data,
			AccessList: tx.AccessList,
		}), nil

	case TypeDynamicFee:
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:    tx.chainID(),
			Nonce:      uint64(tx.Nonce),
			GasTipCap:  bigOf(tx.GasTipCap),
			GasFeeCap:  bigOf(tx.GasFeeCap),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      bigOf(tx.Value),
			Data:       tx.Data,
			AccessList: tx.AccessList,
		}), nil

	case TypeSetCode:
		if tx.To == nil {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "set-code transactions cannot create contracts")
		}
		if len(tx.Authorizations) == 0 {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "set-code transactions need at least one authorization")
		}
		chainID, err := u256Of("chainId", tx.ChainID)
		if err != nil {
			return nil, err
		}
		tip, err := u256Of("maxPriorityFeePerGas", tx.GasTipCap)
		if err != nil {
			return nil, err
		}
		feeCap, err := u256Of("maxFeePerGas", tx.GasFeeCap)
		if err != nil {
			return nil, err
		}
		value, err := u256Of("value", tx.Value)
		if err != nil {
			return nil, err
		}
		if auths == nil {
			auths, err = tx.unsignedAuthorizations()
			if err != nil {
				return nil, err
			}
		}
		return types.NewTx(&types.SetCodeTx{
			ChainID:    chainID,
			Nonce:      uint64(tx.Nonce),
			GasTipCap:  tip,
			GasFeeCap:  feeCap,
			Gas:        uint64(tx.Gas),
			To:         *tx.To,
			Value:      value,
			Data:       tx.Data,
			AccessList: tx.AccessList,
			AuthList:   auths,
		}), nil

	default:
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "transaction type %d", tx.Type)
	}
}

func (tx Transaction) unsignedAuthorizations() ([]types.SetCodeAuthorization, error) {
	out := make([]types.SetCodeAuthorization, len(tx.Authorizations))
	for i, a := range tx.Authorizations {
		sa, err := a.toTypes()
		if err != nil {
			return nil, fmt.Errorf("authorization %d: %w", i, err)
		}
		out[i] = sa
	}
	return out, nil
}

func (a Authorization) toTypes() (types.SetCodeAuthorization, error) {
	chainID, err := u256Of("authorization chainId", a.ChainID)
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	return types.SetCodeAuthorization{
		ChainID: *chainID,
		Address: a.Address,
		Nonce:   uint64(a.Nonce),
	}, nil
}

// TypeName returns a short label for the envelope type.
func (tx Transaction) TypeName() string {
	switch tx.Type {
	case TypeLegacy:
		return "legacy"
	case TypeAccessList:
		return "eip2930"
	case TypeDynamicFee:
		return "eip1559"
	case TypeSetCode:
		return "eip7702"
	default:
		return fmt.Sprintf("type-%d", tx.Type)
	}
}
