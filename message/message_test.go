package message

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/curve"
)

var hardhatKey, _ = hex.DecodeString("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

var rfc8032Seed, _ = hex.DecodeString("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")

func TestNew(t *testing.T) {
	tests := []struct {
		chain   signcore.Chain
		opts    []Option
		wantErr error
	}{
		{signcore.ChainEthereum, nil, nil},
		{signcore.ChainSolana, nil, nil},
		{signcore.ChainCosmos, []Option{WithChainID("osmosis-1")}, nil},
		{signcore.ChainTezos, []Option{WithDappURL("https://example.com"), WithCurve(signcore.CurveSecp256k1)}, nil},
		{signcore.ChainTezos, []Option{WithCurve(signcore.CurveSr25519)}, signcore.ErrUnsupportedCombination},
		{signcore.ChainCosmos, []Option{WithHRP("")}, signcore.ErrInvalidInput},
		{signcore.ChainBitcoin, nil, signcore.ErrUnsupportedCombination},
	}

	for _, tt := range tests {
		t.Run(string(tt.chain), func(t *testing.T) {
			s, err := New(tt.chain, tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if s.Chain() != tt.chain {
				t.Errorf("Chain() = %s", s.Chain())
			}
		})
	}

	s, _ := New(signcore.ChainCosmos, WithChainID("osmosis-1"))
	if s.(Cosmos).HRP != "osmo" {
		t.Errorf("HRP = %q, want osmo", s.(Cosmos).HRP)
	}
}

func TestRoundTripAllChains(t *testing.T) {
	secpPub, _ := curve.PublicKey(signcore.CurveSecp256k1, hardhatKey)
	edPub, _ := curve.PublicKey(signcore.CurveEd25519, rfc8032Seed)

	tests := []struct {
		name   string
		signer signcore.MessageSigner
		priv   []byte
		pub    []byte
	}{
		{"ethereum", Ethereum{}, hardhatKey, secpPub},
		{"solana", Solana{}, rfc8032Seed, edPub},
		{"cosmos", Cosmos{HRP: "cosmos"}, hardhatKey, secpPub},
		{"tezos ed25519", Tezos{DappURL: "https://dapp.example"}, rfc8032Seed, edPub},
		{"tezos secp256k1", Tezos{DappURL: "https://dapp.example", Curve: signcore.CurveSecp256k1}, hardhatKey, secpPub},
	}

	msg := []byte("Hello, Hawala")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := tt.signer.Sign(msg, tt.priv)
			if err != nil {
				t.Fatalf("Sign() error: %v", err)
			}
			ok, err := tt.signer.Verify(msg, sig, tt.pub)
			if err != nil || !ok {
				t.Fatalf("Verify() = %v, %v", ok, err)
			}
			ok, err = tt.signer.Verify([]byte("Hello, Hawala!"), sig, tt.pub)
			if err != nil || ok {
				t.Errorf("Verify(altered message) = %v, %v", ok, err)
			}
			tampered := bytes.Clone(sig)
			tampered[5] ^= 0x01
			if ok, _ := tt.signer.Verify(msg, tampered, tt.pub); ok {
				t.Error("Verify(tampered signature) = true")
			}
		})
	}
}

func TestPersonalSignHash(t *testing.T) {
	got := common.BytesToHash(PersonalSignHash([]byte("Hello World")))
	want := common.HexToHash("0xa1de988600a42c4b4ab089b619297c17d53cffae5d5120d82d8a92d0bb3b78f2")
	if got != want {
		t.Errorf("PersonalSignHash() = %s, want %s", got, want)
	}
}

func TestEthereumRecover(t *testing.T) {
	sig, err := Ethereum{}.Sign([]byte("Hello, Hawala"), hardhatKey)
	if err != nil {
		t.Fatal(err)
	}
	// RFC 6979 nonces make the signature fixed for this key and message.
	const wantSig = "0xa6eeaf455cc34394a66bc2d403ce93f36c4d37facb6041e1391c85db67720c716940633e332b534fe87c3a0d1b1729c69253d996e605673c017d21b8ec4918191c"
	if got := "0x" + hex.EncodeToString(sig); got != wantSig {
		t.Fatalf("signature = %s, want %s", got, wantSig)
	}
	addr, err := RecoverAddress([]byte("Hello, Hawala"), sig)
	if err != nil {
		t.Fatal(err)
	}
	want := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	if addr != want {
		t.Errorf("RecoverAddress() = %s, want %s", addr, want)
	}

	ok, err := Ethereum{}.Verify([]byte("Hello, Hawala"), sig, want.Bytes())
	if err != nil || !ok {
		t.Errorf("Verify(address) = %v, %v", ok, err)
	}
	if _, err := (Ethereum{}).Verify([]byte("x"), sig[:64], want.Bytes()); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for 64-byte signature, got %v", err)
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"0x48656c6c6f", []byte("Hello")},
		{"Hello", []byte("Hello")},
		{"0xnot-hex", []byte("0xnot-hex")},
	}
	for _, tt := range tests {
		if got := ParseInput(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("ParseInput(%q) = %q", tt.in, got)
		}
	}
}

func TestSolanaRFC8032(t *testing.T) {
	sig, err := Solana{}.Sign(nil, rfc8032Seed)
	if err != nil {
		t.Fatal(err)
	}
	want := "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
	if hex.EncodeToString(sig) != want {
		t.Errorf("signature = %x", sig)
	}

	encoded := EncodeSolanaSignature(sig)
	decoded, err := DecodeSolanaSignature(encoded)
	if err != nil || !bytes.Equal(decoded, sig) {
		t.Errorf("DecodeSolanaSignature() = %x, %v", decoded, err)
	}
	if _, err := DecodeSolanaSignature("abc"); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}

func TestSolanaAddress(t *testing.T) {
	pub, _ := curve.PublicKey(signcore.CurveEd25519, rfc8032Seed)
	addr, err := Address(pub)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseAddress(addr)
	if err != nil || !bytes.Equal(back, pub) {
		t.Errorf("ParseAddress(%s) = %x, %v", addr, back, err)
	}
	if _, err := Address(pub[:31]); !errors.Is(err, signcore.ErrInvalidPublicKey) {
		t.Errorf("expected ErrInvalidPublicKey, got %v", err)
	}
}

func TestCosmosSignDoc(t *testing.T) {
	doc, err := Cosmos{Signer: "cosmos1signer"}.SignDoc([]byte("hello"), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"account_number":"0","chain_id":"","fee":{"amount":[],"gas":"0"},"memo":"",` +
		`"msgs":[{"type":"sign/MsgSignData","value":{"data":"aGVsbG8=","signer":"cosmos1signer"}}],"sequence":"0"}`
	if string(doc) != want {
		t.Errorf("SignDoc() =\n%s\nwant\n%s", doc, want)
	}
}

func TestBech32Address(t *testing.T) {
	pub, _ := curve.PublicKey(signcore.CurveSecp256k1, hardhatKey)
	addr, err := Bech32Address("cosmos", pub)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(addr, "cosmos1") || len(addr) != 45 {
		t.Errorf("address = %s", addr)
	}
	hrp, _, err := bech32.Decode(addr)
	if err != nil || hrp != "cosmos" {
		t.Errorf("bech32.Decode() = %q, %v", hrp, err)
	}

	osmo, _ := Bech32Address("osmo", pub)
	if osmo[len(osmo)-38:len(osmo)-6] != addr[len(addr)-38:len(addr)-6] {
		t.Errorf("same key should share the data part: %s vs %s", osmo, addr)
	}
}

func TestCosmosSignerBinding(t *testing.T) {
	pub, _ := curve.PublicKey(signcore.CurveSecp256k1, hardhatKey)
	sig, err := Cosmos{HRP: "cosmos"}.Sign([]byte("data"), hardhatKey)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := (Cosmos{HRP: "osmo"}).Verify([]byte("data"), sig, pub); ok {
		t.Error("signature over a cosmos signer verified for osmo")
	}
	std := NewStdSignature(sig, pub)
	if std.PubKey.Type != "tendermint/PubKeySecp256k1" || std.Signature == "" {
		t.Errorf("NewStdSignature() = %+v", std)
	}
}

func TestTezosFormat(t *testing.T) {
	tz := Tezos{DappURL: "https://dapp.example"}
	if got := tz.FormatMessage("hi"); got != "Tezos Signed Message: https://dapp.example hi" {
		t.Errorf("FormatMessage() = %q", got)
	}
	tz.Timestamp = "2024-01-01T00:00:00Z"
	if got := tz.FormatMessage("hi"); got != "Tezos Signed Message: https://dapp.example 2024-01-01T00:00:00Z hi" {
		t.Errorf("FormatMessage() = %q", got)
	}

	payload := Tezos{}.Payload([]byte("hi"))
	text := "Tezos Signed Message:  hi"
	if !bytes.Equal(payload[:6], []byte{0x05, 0x01, 0, 0, 0, byte(len(text))}) {
		t.Errorf("payload header = %x", payload[:6])
	}
	if string(payload[6:]) != text {
		t.Errorf("payload body = %q", payload[6:])
	}
	if len(tz.Digest([]byte("hi"))) != 32 {
		t.Error("digest is not 32 bytes")
	}
}

func TestTezosEncoding(t *testing.T) {
	edPub, _ := curve.PublicKey(signcore.CurveEd25519, rfc8032Seed)
	secpPub, _ := curve.PublicKey(signcore.CurveSecp256k1, hardhatKey)

	ed := Tezos{}
	sig, _ := ed.Sign([]byte("hi"), rfc8032Seed)
	s, err := ed.EncodeSignature(sig)
	if err != nil || !strings.HasPrefix(s, "edsig") || len(s) != 99 {
		t.Fatalf("EncodeSignature() = %q, %v", s, err)
	}
	back, c, err := DecodeTezosSignature(s)
	if err != nil || c != signcore.CurveEd25519 || !bytes.Equal(back, sig) {
		t.Errorf("DecodeTezosSignature() = %x, %s, %v", back, c, err)
	}

	sp := Tezos{Curve: signcore.CurveSecp256k1}
	sig, _ = sp.Sign([]byte("hi"), hardhatKey)
	s, _ = sp.EncodeSignature(sig)
	if !strings.HasPrefix(s, "spsig1") {
		t.Errorf("EncodeSignature() = %q", s)
	}
	if _, c, err := DecodeTezosSignature(s); err != nil || c != signcore.CurveSecp256k1 {
		t.Errorf("DecodeTezosSignature(spsig1) = %s, %v", c, err)
	}

	corrupt := []byte(s)
	corrupt[10] ^= 0x01
	if _, _, err := DecodeTezosSignature(string(corrupt)); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for corrupt signature, got %v", err)
	}

	pk, _ := EncodeTezosPublicKey(edPub)
	if !strings.HasPrefix(pk, "edpk") || len(pk) != 54 {
		t.Errorf("EncodeTezosPublicKey() = %q", pk)
	}
	pk, _ = EncodeTezosPublicKey(secpPub)
	if !strings.HasPrefix(pk, "sppk") {
		t.Errorf("EncodeTezosPublicKey() = %q", pk)
	}

	// Sandbox bootstrap1 account.
	bootstrap1, _ := hex.DecodeString("4798d2cc98473d7e250c898885718afd2e4efbcb1a1595ab9730761ed830de0f")
	if pk, _ := EncodeTezosPublicKey(bootstrap1); pk != "edpkuBknW28nW72KG6RoHtYW7p12T6GKc7nAbwYX5m8Wd9sDVC9yav" {
		t.Errorf("EncodeTezosPublicKey(bootstrap1) = %q", pk)
	}
	if addr, _ := TezosAddress(bootstrap1); addr != "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx" {
		t.Errorf("TezosAddress(bootstrap1) = %q", addr)
	}
	hash, c, err := ParseTezosAddress("tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx")
	if err != nil || c != signcore.CurveEd25519 || len(hash) != 20 {
		t.Errorf("ParseTezosAddress() = %x, %s, %v", hash, c, err)
	}

	tz1, _ := TezosAddress(edPub)
	tz2, _ := TezosAddress(secpPub)
	if !strings.HasPrefix(tz1, "tz1") || len(tz1) != 36 || !strings.HasPrefix(tz2, "tz2") {
		t.Errorf("addresses = %s, %s", tz1, tz2)
	}
}
