// Package address renders account addresses from public keys for every
// network in the chain registry.
package address

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
	"github.com/hawala-wallet/signcore/message"
	"github.com/hawala-wallet/signcore/taproot"
)

// FromPublicKey returns the default address of publicKey on network.
//
// Bitcoin networks produce P2WPKH addresses, or BIP-86 key-path taproot
// addresses when the network signs with Schnorr.
func FromPublicKey(network signcore.ChainConfig, publicKey []byte) (string, error) {
	switch network.Chain {
	case signcore.ChainBitcoin:
		return bitcoin(network, publicKey)
	case signcore.ChainEthereum:
		pub, err := curve.ParseSecp256k1PublicKey(publicKey)
		if err != nil {
			return "", err
		}
		return crypto.PubkeyToAddress(*pub).Hex(), nil
	case signcore.ChainCosmos:
		return message.Bech32Address(network.Bech32HRP, publicKey)
	case signcore.ChainSolana:
		return message.Address(publicKey)
	case signcore.ChainTezos:
		return message.TezosAddress(publicKey)
	default:
		return "", signcore.Errorf(signcore.ErrUnsupportedCombination, "no address format for chain %q", network.Chain)
	}
}

// Params returns the btcd network parameters for a Bitcoin network.
func Params(network signcore.ChainConfig) *chaincfg.Params {
	if network.Bech32HRP == chaincfg.TestNet3Params.Bech32HRPSegwit {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

func bitcoin(network signcore.ChainConfig, publicKey []byte) (string, error) {
	pub, err := curve.ParseSecp256k1PublicKey(publicKey)
	if err != nil {
		return "", err
	}
	key := crypto.CompressPubkey(pub)
	params := Params(network)

	if network.Algorithm == signcore.AlgorithmSchnorrSecp256k1 {
		out, err := taproot.TweakPublicKey(key, nil)
		if err != nil {
			return "", err
		}
		return taproot.Address(out, params)
	}
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(key), params)
	if err != nil {
		return "", signcore.NewError(signcore.ErrCodeInvalidInput, "cannot encode P2WPKH address", err)
	}
	return addr.EncodeAddress(), nil
}
