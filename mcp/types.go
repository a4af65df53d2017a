package mcp

// Tool names registered by the server.
const (
	ToolDeriveAddress = "derive_address"
	ToolSignMessage   = "sign_message"
	ToolVerifyMessage = "verify_message"
	ToolHashTypedData = "hash_typed_data"
	ToolEncodeUR      = "encode_ur"
	ToolDecodeUR      = "decode_ur"
)

// Tools lists every tool name in registration order.
var Tools = []string{
	ToolDeriveAddress,
	ToolSignMessage,
	ToolVerifyMessage,
	ToolHashTypedData,
	ToolEncodeUR,
	ToolDecodeUR,
}
