package api

import (
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/message"
)

// MessageOptions carry the chain-specific framing parameters.
type MessageOptions struct {
	ChainID   string             `json:"chainId,omitempty"`
	HRP       string             `json:"hrp,omitempty"`
	Signer    string             `json:"signer,omitempty"`
	DappURL   string             `json:"dappUrl,omitempty"`
	Timestamp string             `json:"timestamp,omitempty"`
	Curve     signcore.CurveType `json:"curve,omitempty"`
}

func (o MessageOptions) signer(chain signcore.Chain) (signcore.MessageSigner, error) {
	var opts []message.Option
	if o.ChainID != "" {
		opts = append(opts, message.WithChainID(o.ChainID))
	}
	if o.HRP != "" {
		opts = append(opts, message.WithHRP(o.HRP))
	}
	if o.Signer != "" {
		opts = append(opts, message.WithSigner(o.Signer))
	}
	if o.DappURL != "" {
		opts = append(opts, message.WithDappURL(o.DappURL))
	}
	if o.Timestamp != "" {
		opts = append(opts, message.WithTimestamp(o.Timestamp))
	}
	if o.Curve != "" {
		opts = append(opts, message.WithCurve(o.Curve))
	}
	return message.New(chain, opts...)
}

// SignMessageRequest signs an off-chain message. Message is text unless it
// starts with 0x, in which case it is decoded as hex.
type SignMessageRequest struct {
	Chain      signcore.Chain    `json:"chain"`
	Message    string            `json:"message"`
	PrivateKey encoding.HexBytes `json:"privateKey"`
	MessageOptions
}

// SignMessageResponse holds the raw signature and, for Solana and Tezos,
// the encoding wallets display.
type SignMessageResponse struct {
	Signature encoding.HexBytes `json:"signature"`
	Encoded   string            `json:"encoded,omitempty"`
}

// SignMessage frames and signs req.Message for req.Chain.
func SignMessage(req SignMessageRequest) (*SignMessageResponse, error) {
	chain, err := signcore.ParseChain(string(req.Chain))
	if err != nil {
		return nil, err
	}
	s, err := req.signer(chain)
	if err != nil {
		return nil, err
	}
	sig, err := s.Sign(message.ParseInput(req.Message), req.PrivateKey)
	if err != nil {
		return nil, err
	}

	resp := &SignMessageResponse{Signature: sig}
	switch signer := s.(type) {
	case message.Solana:
		resp.Encoded = message.EncodeSolanaSignature(sig)
	case message.Tezos:
		if resp.Encoded, err = signer.EncodeSignature(sig); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// VerifyMessageRequest checks an off-chain message signature. PublicKey may
// be a 20-byte address for Ethereum.
type VerifyMessageRequest struct {
	Chain     signcore.Chain    `json:"chain"`
	Message   string            `json:"message"`
	Signature encoding.HexBytes `json:"signature"`
	PublicKey encoding.HexBytes `json:"publicKey"`
	MessageOptions
}

// VerifyMessage rebuilds the framing of req.Chain and verifies.
func VerifyMessage(req VerifyMessageRequest) (*VerifyResponse, error) {
	chain, err := signcore.ParseChain(string(req.Chain))
	if err != nil {
		return nil, err
	}
	s, err := req.signer(chain)
	if err != nil {
		return nil, err
	}
	ok, err := s.Verify(message.ParseInput(req.Message), req.Signature, req.PublicKey)
	if err != nil {
		return nil, err
	}
	return &VerifyResponse{Valid: ok}, nil
}
