package server

import (
	"context"
	"errors"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/api"
	"github.com/hawala-wallet/signcore/mcp"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var messageChains = []string{
	string(signcore.ChainEthereum),
	string(signcore.ChainSolana),
	string(signcore.ChainCosmos),
	string(signcore.ChainTezos),
}

func messageOptions() []mcpproto.ToolOption {
	return []mcpproto.ToolOption{
		mcpproto.WithString("chainId", mcpproto.Description("Cosmos chain id or Tezos network, when the framing needs one")),
		mcpproto.WithString("hrp", mcpproto.Description("Bech32 prefix for the ADR-036 signer address")),
		mcpproto.WithString("signer", mcpproto.Description("Signer address embedded in ADR-036 documents")),
		mcpproto.WithString("dappUrl", mcpproto.Description("Dapp URL for the Tezos micheline expression")),
		mcpproto.WithString("timestamp", mcpproto.Description("Timestamp for the Tezos micheline expression")),
		mcpproto.WithString("curve", mcpproto.Description("Key curve when the chain accepts more than one")),
	}
}

func tools() []mcpserver.ServerTool {
	signOpts := append([]mcpproto.ToolOption{
		mcpproto.WithDescription("Sign an off-chain message with the framing the chain's wallets use"),
		mcpproto.WithString("chain", mcpproto.Required(), mcpproto.Enum(messageChains...)),
		mcpproto.WithString("message", mcpproto.Required(), mcpproto.Description("Text, or 0x-prefixed hex for raw bytes")),
		mcpproto.WithString("privateKey", mcpproto.Required(), mcpproto.Description("0x-prefixed 32-byte private key")),
	}, messageOptions()...)

	verifyOpts := append([]mcpproto.ToolOption{
		mcpproto.WithDescription("Verify an off-chain message signature"),
		mcpproto.WithString("chain", mcpproto.Required(), mcpproto.Enum(messageChains...)),
		mcpproto.WithString("message", mcpproto.Required(), mcpproto.Description("Text, or 0x-prefixed hex for raw bytes")),
		mcpproto.WithString("signature", mcpproto.Required(), mcpproto.Description("0x-prefixed signature")),
		mcpproto.WithString("publicKey", mcpproto.Required(), mcpproto.Description("0x-prefixed public key, or a 20-byte address for Ethereum")),
	}, messageOptions()...)

	return []mcpserver.ServerTool{
		{
			Tool: mcpproto.NewTool(mcp.ToolDeriveAddress,
				mcpproto.WithDescription("Derive the public key and address for a mnemonic on a network. Private keys are never returned."),
				mcpproto.WithString("mnemonic", mcpproto.Required(), mcpproto.Description("BIP-39 mnemonic")),
				mcpproto.WithString("passphrase", mcpproto.Description("Optional BIP-39 passphrase")),
				mcpproto.WithString("network", mcpproto.Required(), mcpproto.Description("Network id such as ethereum, bitcoin, solana or cosmoshub-4")),
				mcpproto.WithString("curve", mcpproto.Description("Override the network's default curve")),
				mcpproto.WithString("path", mcpproto.Description("Explicit derivation path such as m/44'/60'/0'/0/0")),
				mcpproto.WithNumber("account", mcpproto.Description("Account index for the default path"), mcpproto.Min(0)),
				mcpproto.WithNumber("index", mcpproto.Description("Address index for the default path"), mcpproto.Min(0)),
			),
			Handler: handle(deriveAddress),
		},
		{
			Tool:    mcpproto.NewTool(mcp.ToolSignMessage, signOpts...),
			Handler: handle(api.SignMessage),
		},
		{
			Tool:    mcpproto.NewTool(mcp.ToolVerifyMessage, verifyOpts...),
			Handler: handle(api.VerifyMessage),
		},
		{
			Tool: mcpproto.NewTool(mcp.ToolHashTypedData,
				mcpproto.WithDescription("Compute the EIP-712 signing hash of an eth_signTypedData_v4 document"),
				mcpproto.WithObject("typedData", mcpproto.Required(), mcpproto.Description("Document with types, primaryType, domain and message")),
			),
			Handler: handle(api.HashTypedData),
		},
		{
			Tool: mcpproto.NewTool(mcp.ToolEncodeUR,
				mcpproto.WithDescription("Encode a payload as animated-QR UR frames"),
				mcpproto.WithString("type", mcpproto.Required(), mcpproto.Description("UR type such as crypto-psbt or eth-sign-request")),
				mcpproto.WithString("payload", mcpproto.Required(), mcpproto.Description("0x-prefixed payload bytes")),
				mcpproto.WithNumber("maxFragmentSize", mcpproto.Description("Largest fragment per frame"), mcpproto.Min(1)),
			),
			Handler: handle(api.EncodeUR),
		},
		{
			Tool: mcpproto.NewTool(mcp.ToolDecodeUR,
				mcpproto.WithDescription("Reassemble a payload from scanned UR frames in any order"),
				mcpproto.WithArray("frames", mcpproto.Required(), mcpproto.WithStringItems()),
				mcpproto.WithBoolean("allowPartial", mcpproto.Description("Report progress instead of failing on an incomplete stream")),
			),
			Handler: handle(api.DecodeUR),
		},
	}
}

// deriveAddress is api.DeriveKey without the private key.
func deriveAddress(req api.DeriveKeyRequest) (*api.DeriveKeyResponse, error) {
	req.IncludePrivateKey = false
	return api.DeriveKey(req)
}

// handle binds the tool arguments to Req and wraps the outcome of op in an
// envelope.
func handle[Req, Resp any](op func(Req) (*Resp, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		var req Req
		if err := request.BindArguments(&req); err != nil {
			var coded *signcore.Error
			if !errors.As(err, &coded) {
				err = signcore.NewError(signcore.ErrCodeBridgeError, "malformed tool arguments", err)
			}
			return mcp.ErrorResult(err), nil
		}
		resp, err := op(req)
		if err != nil {
			return mcp.ErrorResult(err), nil
		}
		return mcp.SuccessResult(*resp), nil
	}
}
