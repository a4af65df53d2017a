// Package message signs and verifies off-chain messages for dApp requests.
//
// Each chain applies its own framing before signing:
//   - Ethereum: EIP-191 personal_sign
//   - Solana: raw Ed25519 over the message bytes
//   - Cosmos: an ADR-036 sign doc in sorted-key JSON, SHA-256, compact ECDSA
//   - Tezos: the "Tezos Signed Message" Micheline string, Blake2b-256
//
// Verification rebuilds the same framing, so a signature only verifies for
// the chain and parameters it was produced with.
package message

import (
	"github.com/hawala-wallet/signcore"
)

type config struct {
	chainID   string
	hrp       string
	signer    string
	dappURL   string
	timestamp string
	curve     signcore.CurveType
}

// Option configures a signer built by New.
type Option func(*config) error

// WithChainID selects the Cosmos chain, which determines the default bech32 prefix.
func WithChainID(chainID string) Option {
	return func(c *config) error {
		c.chainID = chainID
		return nil
	}
}

// WithHRP overrides the Cosmos bech32 human readable part.
func WithHRP(hrp string) Option {
	return func(c *config) error {
		if hrp == "" {
			return signcore.Errorf(signcore.ErrInvalidInput, "bech32 prefix cannot be empty")
		}
		c.hrp = hrp
		return nil
	}
}

// WithSigner fixes the Cosmos signer address instead of deriving it from the key.
func WithSigner(address string) Option {
	return func(c *config) error {
		c.signer = address
		return nil
	}
}

// WithDappURL sets the dApp URL embedded in Tezos messages.
func WithDappURL(url string) Option {
	return func(c *config) error {
		c.dappURL = url
		return nil
	}
}

// WithTimestamp adds the optional timestamp to Tezos messages.
func WithTimestamp(ts string) Option {
	return func(c *config) error {
		c.timestamp = ts
		return nil
	}
}

// WithCurve selects the Tezos key curve (ed25519 or secp256k1).
func WithCurve(curve signcore.CurveType) Option {
	return func(c *config) error {
		if curve != signcore.CurveEd25519 && curve != signcore.CurveSecp256k1 {
			return signcore.Errorf(signcore.ErrUnsupportedCombination, "tezos messages cannot be signed with %s", curve)
		}
		c.curve = curve
		return nil
	}
}

// New returns the message signer for chain.
func New(chain signcore.Chain, opts ...Option) (signcore.MessageSigner, error) {
	cfg := &config{curve: signcore.CurveEd25519}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	switch chain {
	case signcore.ChainEthereum:
		return Ethereum{}, nil
	case signcore.ChainSolana:
		return Solana{}, nil
	case signcore.ChainCosmos:
		hrp := cfg.hrp
		if hrp == "" {
			hrp = hrpForChain(cfg.chainID)
		}
		return Cosmos{HRP: hrp, Signer: cfg.signer}, nil
	case signcore.ChainTezos:
		return Tezos{DappURL: cfg.dappURL, Timestamp: cfg.timestamp, Curve: cfg.curve}, nil
	default:
		return nil, signcore.Errorf(signcore.ErrUnsupportedCombination, "no message signing for chain %q", chain)
	}
}

func hrpForChain(chainID string) string {
	for _, n := range signcore.Networks {
		if n.Chain == signcore.ChainCosmos && n.ChainID == chainID {
			return n.Bech32HRP
		}
	}
	return signcore.CosmosHub.Bech32HRP
}
