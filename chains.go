package signcore

import (
	"fmt"
)

// ChainConfig describes how keys and signatures are produced for one network.
type ChainConfig struct {
	// NetworkID is the short identifier used at the boundary (e.g. "bitcoin", "cosmoshub-4").
	NetworkID string

	// Chain is the signing ecosystem the network belongs to.
	Chain Chain

	// Curve is the curve account keys live on.
	Curve CurveType

	// Algorithm is the default signature scheme for transaction pre-images.
	Algorithm Algorithm

	// CoinType is the SLIP-0044 coin type used in BIP-44 paths.
	CoinType uint32

	// PathTemplate is the BIP-44 style default path with %d placeholders
	// for account and address index.
	PathTemplate string

	// Bech32HRP is the human readable part for bech32 addresses (empty if unused).
	Bech32HRP string

	// ChainID is the numeric (EVM) or string (Cosmos) chain id, empty if unused.
	ChainID string
}

// Mainnet configurations
var (
	// BitcoinMainnet uses BIP-84 native segwit paths.
	BitcoinMainnet = ChainConfig{
		NetworkID:    "bitcoin",
		Chain:        ChainBitcoin,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     0,
		PathTemplate: "m/84'/0'/%d'/0/%d",
		Bech32HRP:    "bc",
	}

	// BitcoinTaproot uses BIP-86 key-path-only taproot paths.
	BitcoinTaproot = ChainConfig{
		NetworkID:    "bitcoin-taproot",
		Chain:        ChainBitcoin,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmSchnorrSecp256k1,
		CoinType:     0,
		PathTemplate: "m/86'/0'/%d'/0/%d",
		Bech32HRP:    "bc",
	}

	// EthereumMainnet is chain id 1.
	EthereumMainnet = ChainConfig{
		NetworkID:    "ethereum",
		Chain:        ChainEthereum,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     60,
		PathTemplate: "m/44'/60'/%d'/0/%d",
		ChainID:      "1",
	}

	// CosmosHub is the Cosmos Hub with the standard 118 coin type.
	CosmosHub = ChainConfig{
		NetworkID:    "cosmoshub-4",
		Chain:        ChainCosmos,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     118,
		PathTemplate: "m/44'/118'/%d'/0/%d",
		Bech32HRP:    "cosmos",
		ChainID:      "cosmoshub-4",
	}

	// Osmosis shares the Cosmos coin type with its own address prefix.
	Osmosis = ChainConfig{
		NetworkID:    "osmosis-1",
		Chain:        ChainCosmos,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     118,
		PathTemplate: "m/44'/118'/%d'/0/%d",
		Bech32HRP:    "osmo",
		ChainID:      "osmosis-1",
	}

	// SolanaMainnet uses fully hardened SLIP-0010 paths.
	SolanaMainnet = ChainConfig{
		NetworkID:    "solana",
		Chain:        ChainSolana,
		Curve:        CurveEd25519,
		Algorithm:    AlgorithmEd25519,
		CoinType:     501,
		PathTemplate: "m/44'/501'/%d'/%d'",
	}

	// TezosMainnet uses fully hardened SLIP-0010 paths with tz1 keys.
	TezosMainnet = ChainConfig{
		NetworkID:    "tezos",
		Chain:        ChainTezos,
		Curve:        CurveEd25519,
		Algorithm:    AlgorithmEd25519,
		CoinType:     1729,
		PathTemplate: "m/44'/1729'/%d'/%d'",
	}
)

// Testnet configurations
var (
	BitcoinTestnet = ChainConfig{
		NetworkID:    "bitcoin-testnet",
		Chain:        ChainBitcoin,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     1,
		PathTemplate: "m/84'/1'/%d'/0/%d",
		Bech32HRP:    "tb",
	}

	EthereumSepolia = ChainConfig{
		NetworkID:    "sepolia",
		Chain:        ChainEthereum,
		Curve:        CurveSecp256k1,
		Algorithm:    AlgorithmECDSASecp256k1,
		CoinType:     60,
		PathTemplate: "m/44'/60'/%d'/0/%d",
		ChainID:      "11155111",
	}

	SolanaDevnet = ChainConfig{
		NetworkID:    "solana-devnet",
		Chain:        ChainSolana,
		Curve:        CurveEd25519,
		Algorithm:    AlgorithmEd25519,
		CoinType:     501,
		PathTemplate: "m/44'/501'/%d'/%d'",
	}
)

// Networks lists every built-in configuration.
var Networks = []ChainConfig{
	BitcoinMainnet,
	BitcoinTaproot,
	BitcoinTestnet,
	EthereumMainnet,
	EthereumSepolia,
	CosmosHub,
	Osmosis,
	SolanaMainnet,
	SolanaDevnet,
	TezosMainnet,
}

// LookupNetwork returns the configuration registered under networkID.
func LookupNetwork(networkID string) (ChainConfig, error) {
	for _, n := range Networks {
		if n.NetworkID == networkID {
			return n, nil
		}
	}
	return ChainConfig{}, Errorf(ErrUnsupportedCombination, "unknown network %q", networkID)
}

// DerivationPath renders the default path for an account and address index.
func (c ChainConfig) DerivationPath(account, index uint32) string {
	return fmt.Sprintf(c.PathTemplate, account, index)
}

// SupportsCurve reports whether keys on curve can sign for this network.
func (c ChainConfig) SupportsCurve(curve CurveType) bool {
	if c.Curve == curve {
		return true
	}
	// Tezos also accepts tz2 (secp256k1) keys.
	return c.Chain == ChainTezos && curve == CurveSecp256k1
}
