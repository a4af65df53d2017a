// Package validation checks request fields at the service boundary before
// they reach the signing core: amounts, addresses, networks and derivation
// paths.
package validation

import (
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/address"
	"github.com/hawala-wallet/signcore/hd"
	"github.com/hawala-wallet/signcore/message"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ValidateAmount checks that amount is a non-negative decimal integer that
// fits in 256 bits.
func ValidateAmount(amount string) error {
	if amount == "" {
		return signcore.Errorf(signcore.ErrInvalidInput, "amount cannot be empty")
	}
	if strings.TrimLeft(amount, "0123456789") != "" {
		return signcore.Errorf(signcore.ErrInvalidInput, "invalid amount format: %s", amount)
	}
	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok || amt.Cmp(maxUint256) > 0 {
		return signcore.Errorf(signcore.ErrInvalidInput, "amount out of range: %s", amount)
	}
	return nil
}

// ValidateNetwork resolves a network id and checks that keys on curve can
// sign for it. An empty curve selects the network default.
func ValidateNetwork(network string, curve signcore.CurveType) (signcore.ChainConfig, error) {
	if network == "" {
		return signcore.ChainConfig{}, signcore.Errorf(signcore.ErrInvalidInput, "network cannot be empty")
	}
	cfg, err := signcore.LookupNetwork(network)
	if err != nil {
		return signcore.ChainConfig{}, err
	}
	if curve != "" && !cfg.SupportsCurve(curve) {
		return signcore.ChainConfig{}, signcore.Errorf(signcore.ErrUnsupportedCombination, "%s keys cannot sign for %s", curve, network)
	}
	return cfg, nil
}

// ValidatePath parses path and checks it can be derived on the network's
// curve: SLIP-0010 Ed25519 paths must be fully hardened.
func ValidatePath(network signcore.ChainConfig, path string) (hd.Path, error) {
	p, err := hd.ParsePath(path)
	if err != nil {
		return nil, err
	}
	if network.Curve == signcore.CurveEd25519 && !p.AllHardened() {
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "%s paths must be fully hardened, got %s", network.NetworkID, p)
	}
	return p, nil
}

// ValidateAddress checks address against the format of network.
func ValidateAddress(addr string, network string) error {
	if addr == "" {
		return signcore.Errorf(signcore.ErrInvalidInput, "address cannot be empty")
	}
	cfg, err := signcore.LookupNetwork(network)
	if err != nil {
		return err
	}

	switch cfg.Chain {
	case signcore.ChainEthereum:
		if !common.IsHexAddress(addr) || !strings.HasPrefix(addr, "0x") {
			return signcore.Errorf(signcore.ErrInvalidInput, "invalid EVM address format: %s (expected 0x followed by 40 hex characters)", addr)
		}
		// Mixed case must carry a valid EIP-55 checksum.
		body := addr[2:]
		if body != strings.ToLower(body) && body != strings.ToUpper(body) && common.HexToAddress(addr).Hex() != addr {
			return signcore.Errorf(signcore.ErrInvalidInput, "EVM address %s fails its EIP-55 checksum", addr)
		}
		return nil

	case signcore.ChainSolana:
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "invalid Solana address format: "+addr, err)
		}
		return nil

	case signcore.ChainBitcoin:
		params := address.Params(cfg)
		decoded, err := btcutil.DecodeAddress(addr, params)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "invalid Bitcoin address: "+addr, err)
		}
		if !decoded.IsForNet(params) {
			return signcore.Errorf(signcore.ErrInvalidInput, "address %s is not for %s", addr, params.Name)
		}
		return nil

	case signcore.ChainCosmos:
		hrp, data, err := bech32.Decode(addr)
		if err != nil {
			return signcore.NewError(signcore.ErrCodeInvalidInput, "invalid bech32 address: "+addr, err)
		}
		if hrp != cfg.Bech32HRP {
			return signcore.Errorf(signcore.ErrInvalidInput, "address prefix %q, want %q", hrp, cfg.Bech32HRP)
		}
		hash, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil || len(hash) != 20 {
			return signcore.Errorf(signcore.ErrInvalidInput, "address %s does not hold a 20-byte account hash", addr)
		}
		return nil

	case signcore.ChainTezos:
		_, _, err := message.ParseTezosAddress(addr)
		return err

	default:
		return signcore.Errorf(signcore.ErrUnsupportedCombination, "unsupported chain for address validation: %s", cfg.Chain)
	}
}
