package client

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/hawala-wallet/signcore/api"
	"github.com/hawala-wallet/signcore/mcp/server"
)

func TestDialStreamableHTTP(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(server.NewServer(cfg).Handler())
	defer srv.Close()

	ctx := context.Background()
	c, err := Dial(ctx, srv.URL+"/mcp")
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer c.Close()

	resp, err := c.DeriveAddress(ctx, api.DeriveKeyRequest{
		Mnemonic: "test test test test test test test test test test test junk",
		Network:  "solana",
	})
	if err != nil {
		t.Fatalf("DeriveAddress() error: %v", err)
	}
	if resp.Path != "m/44'/501'/0'/0'" {
		t.Errorf("path = %s", resp.Path)
	}
	if resp.Address == "" || resp.PrivateKey != nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestDialUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	if _, err := Dial(context.Background(), url+"/mcp"); err == nil {
		t.Error("expected error for closed server")
	}
}
