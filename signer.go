package signcore

// MessageSigner signs and verifies off-chain messages for one chain.
// Implementations reconstruct the chain's framing in both directions so a
// signature produced by Sign verifies only through the same framing.
type MessageSigner interface {
	// Chain returns the chain the framing belongs to.
	Chain() Chain

	// Sign frames message and signs it with privateKey.
	// The private key is only read for the duration of the call.
	Sign(message, privateKey []byte) ([]byte, error)

	// Verify reports whether signature is valid for message under publicKey.
	// A malformed or wrong signature returns false, never an error; errors
	// are reserved for unusable inputs such as an unparsable public key.
	Verify(message, signature, publicKey []byte) (bool, error)
}

// SignatureVerifier checks a single external signature against a pre-image.
// Chain compilers supply one so that no signature reaches a transaction
// without passing local verification.
type SignatureVerifier func(pre PreImageHash, sig ExternalSignature) bool
