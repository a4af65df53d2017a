package svm

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/hawala-wallet/signcore"
	"github.com/mr-tron/base58"
)

var testBlockhash = solana.Hash{1, 2, 3, 4, 5, 6, 7, 8}

func seed(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func newSigner(t *testing.T, b byte) *LocalSigner {
	t.Helper()
	s, err := NewLocalSigner(WithSeed(seed(b)))
	if err != nil {
		t.Fatalf("NewLocalSigner() error: %v", err)
	}
	return s
}

func systemTransfer(t *testing.T, from, to solana.PublicKey) Transaction {
	t.Helper()
	tx, err := FromInstructions(from, testBlockhash, system.NewTransferInstruction(1_000_000, from, to).Build())
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestSingleSignerRoundTrip(t *testing.T) {
	payer := newSigner(t, 1)
	recipient := newSigner(t, 2).PublicKey()
	tx := systemTransfer(t, payer.PublicKey(), recipient)

	pres, err := PreImages(tx)
	if err != nil {
		t.Fatalf("PreImages() error: %v", err)
	}
	if len(pres) != 1 || pres[0].SignerID != payer.Address() {
		t.Fatalf("pre-images = %v", pres)
	}
	msg, _ := MessageBytes(tx)
	if !bytes.Equal(pres[0].Hash, msg) {
		t.Error("pre-image does not carry the message bytes")
	}

	sig, err := payer.SignPreImage(pres[0])
	if err != nil {
		t.Fatal(err)
	}
	out, err := Compile(tx, []signcore.ExternalSignature{sig})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if out.Signature != base58.Encode(sig.Signature) {
		t.Errorf("Signature = %s", out.Signature)
	}

	decoded, err := Decode(out.RawTx)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if err := decoded.VerifySignatures(); err != nil {
		t.Errorf("VerifySignatures() = %v", err)
	}
	if !decoded.Message.AccountKeys[0].Equals(payer.PublicKey()) {
		t.Error("fee payer is not the first account")
	}
}

func TestMultiSignerOrdering(t *testing.T) {
	owner := newSigner(t, 1)
	payer := newSigner(t, 3)
	tx, err := NewTokenTransfer(TokenTransfer{
		Owner:     owner.PublicKey(),
		Recipient: newSigner(t, 2).PublicKey(),
		Mint:      solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Amount:    1_500_000,
		Decimals:  6,
		Blockhash: testBlockhash,
		FeePayer:  payer.PublicKey(),
	})
	if err != nil {
		t.Fatal(err)
	}

	pres, err := PreImages(tx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pres) != 2 || pres[0].SignerID != payer.Address() || pres[1].SignerID != owner.Address() {
		t.Fatalf("signer order = %v", pres)
	}
	payerSig, _ := payer.SignPreImage(pres[0])
	ownerSig, _ := owner.SignPreImage(pres[1])

	unlabelled := func(s signcore.ExternalSignature) signcore.ExternalSignature {
		return signcore.ExternalSignature{Signature: s.Signature}
	}

	tests := []struct {
		name    string
		sigs    []signcore.ExternalSignature
		wantErr error
	}{
		{"labelled in order", []signcore.ExternalSignature{payerSig, ownerSig}, nil},
		{"labelled out of order", []signcore.ExternalSignature{ownerSig, payerSig}, nil},
		{"unlabelled in order", []signcore.ExternalSignature{unlabelled(payerSig), unlabelled(ownerSig)}, nil},
		{"unlabelled out of order", []signcore.ExternalSignature{unlabelled(ownerSig), unlabelled(payerSig)}, signcore.ErrSignatureMismatch},
		{"missing owner", []signcore.ExternalSignature{payerSig}, signcore.ErrIncompleteSignatureSet},
		{"wrong declared key", []signcore.ExternalSignature{payerSig, {Signature: ownerSig.Signature, SignerID: owner.Address(), PublicKey: payer.PublicKey().Bytes()}}, signcore.ErrSignatureMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compile(tx, tt.sigs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			decoded, err := Decode(out.RawTx)
			if err != nil {
				t.Fatal(err)
			}
			if decoded.Signatures[0] != solana.SignatureFromBytes(payerSig.Signature) ||
				decoded.Signatures[1] != solana.SignatureFromBytes(ownerSig.Signature) {
				t.Error("signatures are not in signer order")
			}
		})
	}
}

func TestPartialSign(t *testing.T) {
	owner := newSigner(t, 1)
	payer := newSigner(t, 3)
	tx, err := NewTokenTransfer(TokenTransfer{
		Owner:     owner.PublicKey(),
		Recipient: newSigner(t, 2).PublicKey(),
		Mint:      solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Amount:    1,
		Blockhash: testBlockhash,
		FeePayer:  payer.PublicKey(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ownerSigs, err := owner.PartialSign(tx)
	if err != nil {
		t.Fatal(err)
	}
	payerSigs, err := payer.PartialSign(tx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(tx, append(ownerSigs, payerSigs...)); err != nil {
		t.Errorf("Compile() error: %v", err)
	}

	if _, err := newSigner(t, 9).PartialSign(tx); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for a non-signer, got %v", err)
	}
}

func TestVersionedMessage(t *testing.T) {
	payer := newSigner(t, 1)
	recipient := newSigner(t, 2).PublicKey()
	table := newSigner(t, 4).PublicKey()

	tx := systemTransfer(t, payer.PublicKey(), recipient)
	tx.AddressTables = []AddressTable{{Address: table.String(), Addresses: []string{recipient.String()}}}

	msg, err := MessageBytes(tx)
	if err != nil {
		t.Fatalf("MessageBytes() error: %v", err)
	}
	if msg[0] != 0x80 {
		t.Errorf("message prefix = %#x, want v0 marker 0x80", msg[0])
	}

	pres, _ := PreImages(tx)
	sig, _ := payer.SignPreImage(pres[0])
	out, err := Compile(tx, []signcore.ExternalSignature{sig})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	decoded, err := Decode(out.RawTx)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Message.IsVersioned() {
		t.Error("decoded message is not versioned")
	}
}

func TestNewTokenTransferLayout(t *testing.T) {
	owner := newSigner(t, 1).PublicKey()
	tx, err := NewTokenTransfer(TokenTransfer{
		Owner:     owner,
		Recipient: newSigner(t, 2).PublicKey(),
		Mint:      solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Amount:    5,
		Decimals:  6,
		Blockhash: testBlockhash,
	})
	if err != nil {
		t.Fatal(err)
	}
	if tx.FeePayer != owner.String() {
		t.Errorf("FeePayer = %s, want owner", tx.FeePayer)
	}
	if len(tx.Instructions) != 3 {
		t.Fatalf("got %d instructions", len(tx.Instructions))
	}
	if !bytes.Equal(tx.Instructions[0].Data, []byte{2, 0x40, 0x0d, 0x03, 0x00}) {
		t.Errorf("compute unit limit data = %x", []byte(tx.Instructions[0].Data))
	}
	if !bytes.Equal(tx.Instructions[1].Data, []byte{3, 0x10, 0x27, 0, 0, 0, 0, 0, 0}) {
		t.Errorf("compute unit price data = %x", []byte(tx.Instructions[1].Data))
	}
	if tx.Instructions[2].ProgramID != solana.TokenProgramID.String() {
		t.Errorf("transfer program = %s", tx.Instructions[2].ProgramID)
	}
	// TransferChecked: discriminator 12, u64 amount, u8 decimals.
	if data := tx.Instructions[2].Data; len(data) != 10 || data[0] != 12 || data[9] != 6 {
		t.Errorf("transfer data = %x", []byte(data))
	}
}

func TestBuildErrors(t *testing.T) {
	payer := newSigner(t, 1).PublicKey()
	valid := systemTransfer(t, payer, newSigner(t, 2).PublicKey())

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"no instructions", func(tx *Transaction) { tx.Instructions = nil }},
		{"bad fee payer", func(tx *Transaction) { tx.FeePayer = "not-base58-0OIl" }},
		{"bad blockhash", func(tx *Transaction) { tx.RecentBlockhash = "xyz" }},
		{"bad program id", func(tx *Transaction) { tx.Instructions[0].ProgramID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tx.Instructions = append([]Instruction(nil), valid.Instructions...)
			tt.mutate(&tx)
			if _, err := PreImages(tx); !errors.Is(err, signcore.ErrInvalidInput) {
				t.Errorf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestLocalSignerOptions(t *testing.T) {
	ref := newSigner(t, 7)
	keypair := append(append([]byte{}, seed(7)...), ref.PublicKey().Bytes()...)

	writeFile := func(t *testing.T, v any) string {
		t.Helper()
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "id.json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}
	ints := func(b []byte) []int {
		out := make([]int, len(b))
		for i, v := range b {
			out[i] = int(v)
		}
		return out
	}
	tampered := append([]byte{}, keypair...)
	tampered[63] ^= 1

	tests := []struct {
		name    string
		opt     SignerOption
		wantErr error
	}{
		{"base58 keypair", WithPrivateKey(base58.Encode(keypair)), nil},
		{"keygen file", WithKeygenFile(writeFile(t, ints(keypair))), nil},
		{"invalid base58", WithPrivateKey("invalid"), signcore.ErrInvalidPrivateKey},
		{"short keypair", WithKeygenFile(writeFile(t, ints(keypair[:32]))), signcore.ErrInvalidPrivateKey},
		{"mismatched public half", WithKeygenFile(writeFile(t, ints(tampered))), signcore.ErrInvalidPrivateKey},
		{"not an array", WithKeygenFile(writeFile(t, map[string]int{"a": 1})), ErrInvalidKeystore},
		{"missing file", WithKeygenFile(filepath.Join(t.TempDir(), "missing.json")), ErrInvalidKeystore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewLocalSigner(tt.opt)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Address() != ref.Address() {
				t.Errorf("Address() = %s, want %s", s.Address(), ref.Address())
			}
		})
	}

	if _, err := NewLocalSigner(); !errors.Is(err, ErrNoKey) {
		t.Errorf("expected ErrNoKey, got %v", err)
	}
}

func TestSignPreImageRejects(t *testing.T) {
	s := newSigner(t, 1)
	if _, err := s.SignPreImage(signcore.PreImageHash{Hash: []byte{1}, Algorithm: signcore.AlgorithmECDSASecp256k1}); !errors.Is(err, signcore.ErrUnsupportedCombination) {
		t.Errorf("expected UnsupportedCombination, got %v", err)
	}
	other := newSigner(t, 2).Address()
	if _, err := s.SignPreImage(signcore.PreImageHash{Hash: []byte{1}, SignerID: other, Algorithm: signcore.AlgorithmEd25519}); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}
