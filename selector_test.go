package signcore

import (
	"bytes"
	"errors"
	"testing"
)

func acceptAll(PreImageHash, ExternalSignature) bool { return true }

func TestMatchSignatures(t *testing.T) {
	utxo := []PreImageHash{
		{Hash: []byte{1}, InputIndex: Index(0), SignerID: "m/84'/0'/0'/0/0"},
		{Hash: []byte{2}, InputIndex: Index(1), SignerID: "m/84'/0'/0'/0/1"},
	}
	accounts := []PreImageHash{
		{Hash: []byte{9}, SignerID: "payer"},
		{Hash: []byte{9}, SignerID: "cosigner"},
	}

	tests := []struct {
		name     string
		pre      []PreImageHash
		sigs     []ExternalSignature
		wantErr  error
		wantSigs [][]byte
	}{
		{
			name: "input index out of order",
			pre:  utxo,
			sigs: []ExternalSignature{
				{Signature: []byte("b"), InputIndex: Index(1)},
				{Signature: []byte("a"), InputIndex: Index(0)},
			},
			wantSigs: [][]byte{[]byte("a"), []byte("b")},
		},
		{
			name: "withheld input signature",
			pre:  utxo,
			sigs: []ExternalSignature{
				{Signature: []byte("a"), InputIndex: Index(0)},
			},
			wantErr: ErrIncompleteSignatureSet,
		},
		{
			name: "unknown index does not count",
			pre:  utxo,
			sigs: []ExternalSignature{
				{Signature: []byte("a"), InputIndex: Index(0)},
				{Signature: []byte("c"), InputIndex: Index(7)},
			},
			wantErr: ErrIncompleteSignatureSet,
		},
		{
			name: "single input without index",
			pre:  utxo[:1],
			sigs: []ExternalSignature{
				{Signature: []byte("a")},
			},
			wantSigs: [][]byte{[]byte("a")},
		},
		{
			name: "signer id",
			pre:  accounts,
			sigs: []ExternalSignature{
				{Signature: []byte("co"), SignerID: "cosigner"},
				{Signature: []byte("pay"), SignerID: "payer"},
			},
			wantSigs: [][]byte{[]byte("pay"), []byte("co")},
		},
		{
			name: "positional fallback",
			pre:  accounts,
			sigs: []ExternalSignature{
				{Signature: []byte("pay")},
				{Signature: []byte("co")},
			},
			wantSigs: [][]byte{[]byte("pay"), []byte("co")},
		},
		{
			name:    "empty pre-image set",
			pre:     nil,
			sigs:    nil,
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchSignatures(tt.pre, tt.sigs, acceptAll)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("MatchSignatures() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MatchSignatures() unexpected error: %v", err)
			}
			if len(got) != len(tt.wantSigs) {
				t.Fatalf("got %d signatures, want %d", len(got), len(tt.wantSigs))
			}
			for i := range got {
				if !bytes.Equal(got[i].Signature, tt.wantSigs[i]) {
					t.Errorf("signature %d = %q, want %q", i, got[i].Signature, tt.wantSigs[i])
				}
			}
		})
	}
}

func TestMatchSignaturesVerifies(t *testing.T) {
	pre := []PreImageHash{{Hash: []byte{1}, InputIndex: Index(0)}}
	sigs := []ExternalSignature{{Signature: []byte("bad"), InputIndex: Index(0)}}

	reject := func(PreImageHash, ExternalSignature) bool { return false }
	_, err := MatchSignatures(pre, sigs, reject)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if CodeOf(err) != ErrCodeSignatureMismatch {
		t.Errorf("CodeOf() = %q", CodeOf(err))
	}
}
