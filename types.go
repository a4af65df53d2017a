package signcore

import (
	"fmt"
)

// CurveType names an elliptic curve a key belongs to.
type CurveType string

const (
	CurveSecp256k1 CurveType = "secp256k1"
	CurveEd25519   CurveType = "ed25519"
	CurveSr25519   CurveType = "sr25519"
	CurveSecp256r1 CurveType = "secp256r1"
)

// ParseCurveType validates a curve name received at the boundary.
func ParseCurveType(s string) (CurveType, error) {
	switch c := CurveType(s); c {
	case CurveSecp256k1, CurveEd25519, CurveSr25519, CurveSecp256r1:
		return c, nil
	default:
		return "", Errorf(ErrUnsupportedCombination, "unknown curve %q", s)
	}
}

// Algorithm names the signature scheme a pre-image must be signed with.
type Algorithm string

const (
	AlgorithmECDSASecp256k1   Algorithm = "secp256k1-ecdsa"
	AlgorithmSchnorrSecp256k1 Algorithm = "secp256k1-schnorr"
	AlgorithmEd25519          Algorithm = "ed25519"
	AlgorithmECDSASecp256r1   Algorithm = "secp256r1-ecdsa"
	AlgorithmSr25519          Algorithm = "sr25519"
)

// Curve returns the curve the algorithm operates on.
func (a Algorithm) Curve() CurveType {
	switch a {
	case AlgorithmECDSASecp256k1, AlgorithmSchnorrSecp256k1:
		return CurveSecp256k1
	case AlgorithmEd25519:
		return CurveEd25519
	case AlgorithmECDSASecp256r1:
		return CurveSecp256r1
	case AlgorithmSr25519:
		return CurveSr25519
	}
	return ""
}

// Chain identifies a supported signing ecosystem.
type Chain string

const (
	ChainBitcoin  Chain = "bitcoin"
	ChainEthereum Chain = "ethereum"
	ChainCosmos   Chain = "cosmos"
	ChainSolana   Chain = "solana"
	ChainTezos    Chain = "tezos"
)

// ParseChain validates a chain name received at the boundary.
func ParseChain(s string) (Chain, error) {
	switch c := Chain(s); c {
	case ChainBitcoin, ChainEthereum, ChainCosmos, ChainSolana, ChainTezos:
		return c, nil
	default:
		return "", Errorf(ErrUnsupportedCombination, "unknown chain %q", s)
	}
}

// PreImageHash is one unit of data that must be signed for a transaction.
//
// For Bitcoin every input yields its own PreImageHash carrying InputIndex.
// For Solana, Hash carries the full serialized message rather than a digest
// because Ed25519 signs the raw bytes.
type PreImageHash struct {
	// Hash is the digest (or Solana message) to sign.
	Hash HexBytes `json:"hash"`

	// SignerID identifies the key expected to sign, usually a derivation
	// path or an address.
	SignerID string `json:"signerId"`

	// InputIndex is set only for multi-input UTXO transactions.
	InputIndex *int `json:"inputIndex,omitempty"`

	// Description is a human readable label for hardware signer screens.
	Description string `json:"description"`

	// Algorithm is the signature scheme to apply.
	Algorithm Algorithm `json:"algorithm"`
}

// ExternalSignature is a signature produced outside the core for a PreImageHash.
type ExternalSignature struct {
	// Signature is the raw signature: 64-byte r||s for ECDSA (DER also accepted
	// for Bitcoin), 64 bytes for Schnorr and Ed25519.
	Signature HexBytes `json:"signature"`

	// RecoveryID is required for Ethereum ECDSA signatures.
	RecoveryID *uint8 `json:"recoveryId,omitempty"`

	// InputIndex matches PreImageHash.InputIndex for UTXO inputs.
	InputIndex *int `json:"inputIndex,omitempty"`

	// SignerID optionally matches PreImageHash.SignerID for account-based chains.
	SignerID string `json:"signerId,omitempty"`

	// PublicKey is the key the signature must verify against.
	PublicKey HexBytes `json:"publicKey"`
}

// BitcoinTransaction is a compiled, broadcast-ready Bitcoin transaction.
type BitcoinTransaction struct {
	RawTx HexBytes `json:"rawTx"`
	TxID  string   `json:"txid"`
	WTxID string   `json:"wtxid,omitempty"`
	VSize int64    `json:"vsize"`
}

// EthereumTransaction is a compiled, broadcast-ready Ethereum transaction.
type EthereumTransaction struct {
	RawTx  HexBytes `json:"rawTx"`
	TxHash string   `json:"txHash"`
	From   string   `json:"from"`
}

// CosmosTransaction is a compiled TxRaw ready for broadcast.
type CosmosTransaction struct {
	RawTx  HexBytes `json:"rawTx"`
	TxHash string   `json:"txHash"`
}

// SolanaTransaction is a compiled, broadcast-ready Solana transaction.
type SolanaTransaction struct {
	RawTx HexBytes `json:"rawTx"`
	// Signature is the fee payer signature in base58, which is also the
	// transaction id on Solana.
	Signature string `json:"signature"`
}

// Index returns a pointer to i, for populating InputIndex fields.
func Index(i int) *int {
	return &i
}

// RecoveryID returns a pointer to v, for populating RecoveryID fields.
func RecoveryID(v uint8) *uint8 {
	return &v
}

// String implements fmt.Stringer.
func (p PreImageHash) String() string {
	if p.InputIndex != nil {
		return fmt.Sprintf("%s[%d] %s", p.Algorithm, *p.InputIndex, p.Description)
	}
	return fmt.Sprintf("%s %s", p.Algorithm, p.Description)
}
