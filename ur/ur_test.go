package ur

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/hawala-wallet/signcore"
)

func TestBytewords(t *testing.T) {
	input := []byte{0, 1, 2, 128, 255}
	tests := []struct {
		style Style
		want  string
	}{
		{Minimal, "aeadaolazmjendeoti"},
		{Standard, "able acid also lava zoom jade need echo taxi"},
		{URI, "able-acid-also-lava-zoom-jade-need-echo-taxi"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := EncodeBytewords(input, tt.style)
			if got != tt.want {
				t.Fatalf("EncodeBytewords() = %q, want %q", got, tt.want)
			}
			back, err := DecodeBytewords(strings.ToUpper(got), tt.style)
			if err != nil {
				t.Fatalf("DecodeBytewords() error: %v", err)
			}
			if !bytes.Equal(back, input) {
				t.Errorf("DecodeBytewords() = %x", back)
			}
		})
	}
}

func TestBytewordsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"odd length", "aeadaolazmjendeot"},
		{"bad checksum", "aeadaolazmjendeota"},
		{"unknown pair", "qqadaolazmjendeoti"},
		{"too short", "aead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBytewords(tt.input, Minimal); !errors.Is(err, signcore.ErrInvalidInput) {
				t.Errorf("expected InvalidInput, got %v", err)
			}
		})
	}
	if _, err := DecodeBytewords("able acid nope", Standard); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for unknown word, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"crypto-psbt", TypeCryptoPSBT, false},
		{"CRYPTO-PSBT", TypeCryptoPSBT, false},
		{"eth-sign-signature", TypeEthSignature, false},
		{"sol-sign-signature", TypeSolSignature, false},
		{"sol-sign-request", TypeSolSignRequest, false},
		{"crypto-unknown", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, signcore.ErrUnknownURType) {
					t.Fatalf("expected UnknownURType, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseType() = %q, %v", got, err)
			}
		})
	}
}

func TestSinglePart(t *testing.T) {
	frames, err := Encode(TypeBytes, []byte("Hello"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || frames[0] != "ur:bytes/fdihjzjzjlylttldlf" {
		t.Fatalf("Encode() = %v", frames)
	}

	got, err := Decode(Frame(strings.ToUpper(string(frames[0]))))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Type != TypeBytes || string(got.Data) != "Hello" || !got.Complete || got.Progress != 1 {
		t.Errorf("Decode() = %+v", got)
	}

	big := make([]byte, MaxSinglePartBytes)
	if frames, _ := Encode(TypeBytes, big, 100); len(frames) != 1 {
		t.Errorf("payload at the single-part ceiling produced %d frames", len(frames))
	}
}

func payload(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i*7) ^ seed
	}
	return out
}

func TestMultiPartShuffledWithDuplicatesAndForeignStream(t *testing.T) {
	data := payload(5000, 0x5a)
	frames, err := Encode(TypeCryptoPSBT, data, 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	for i, f := range frames {
		prefix := fmt.Sprintf("ur:crypto-psbt/%d-10/", i+1)
		if !strings.HasPrefix(string(f), prefix) {
			t.Fatalf("frame %d = %.40s..., want prefix %s", i, f, prefix)
		}
	}

	foreign, err := Encode(TypeCryptoPSBT, payload(4000, 0x11), 500)
	if err != nil {
		t.Fatal(err)
	}

	// The foreign stream only ever sees its first three parts.
	rng := rand.New(rand.NewSource(1))
	var stream []Frame
	for _, i := range rng.Perm(len(frames)) {
		stream = append(stream, frames[i], foreign[i%3])
		if i%3 == 0 {
			stream = append(stream, frames[i])
		}
	}

	d := NewDecoder()
	for _, f := range stream {
		if _, err := d.Receive(f); err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
	}
	got, err := d.Result()
	if err != nil {
		t.Fatalf("Result() error: %v", err)
	}
	if !bytes.Equal(got.Data, data) || got.Type != TypeCryptoPSBT {
		t.Error("reassembled payload differs")
	}
	if d.Ignored() != len(frames) {
		t.Errorf("Ignored() = %d, want %d", d.Ignored(), len(frames))
	}
}

func TestPartialProgress(t *testing.T) {
	frames, err := Encode(TypeBytes, payload(3000, 1), 1000)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDecoder()
	if _, err := d.Result(); !errors.Is(err, signcore.ErrIncompleteURStream) {
		t.Errorf("expected IncompleteURStream before any frame, got %v", err)
	}

	res, err := d.Receive(frames[2])
	if err != nil {
		t.Fatal(err)
	}
	res, _ = d.Receive(frames[2])
	if res.Complete || res.Progress < 0.33 || res.Progress > 0.34 {
		t.Errorf("after one part: %+v", res)
	}
	if _, err := d.Result(); !errors.Is(err, signcore.ErrIncompleteURStream) {
		t.Errorf("expected IncompleteURStream, got %v", err)
	}

	d.Receive(frames[0])
	res, _ = d.Receive(frames[1])
	if !res.Complete || res.Progress != 1 {
		t.Errorf("after all parts: complete=%v progress=%v", res.Complete, res.Progress)
	}

	d.Reset()
	if d.Ignored() != 0 {
		t.Error("Reset() kept the ignored count")
	}
}

func TestUnevenFragments(t *testing.T) {
	data := payload(MaxSinglePartBytes+1, 9)
	frames, err := Encode(TypeBytes, data, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames", len(frames))
	}
	got, err := Decode(frames[2], frames[0], frames[1])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, data) {
		t.Error("padding was not trimmed")
	}
}

func TestDecodeErrors(t *testing.T) {
	frames, _ := Encode(TypeBytes, payload(3000, 2), 1000)
	relabelled := Frame(strings.Replace(string(frames[0]), "/1-3/", "/2-3/", 1))

	tests := []struct {
		name    string
		frame   Frame
		wantErr error
	}{
		{"unknown type", "ur:crypto-foo/aeadaolazmjendeoti", signcore.ErrUnknownURType},
		{"missing scheme", "bytes/aeadaolazmjendeoti", signcore.ErrInvalidInput},
		{"too many segments", "ur:bytes/1-2/3/aeadaolazmjendeoti", signcore.ErrInvalidInput},
		{"bad sequence", "ur:bytes/x-3/aeadaolazmjendeoti", signcore.ErrInvalidInput},
		{"header disagrees with body", relabelled, signcore.ErrInvalidInput},
		{"body is not a part", "ur:bytes/1-1/aeadaolazmjendeoti", signcore.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDecoder().Receive(tt.frame); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := Encode("crypto-foo", []byte{1}, 0); !errors.Is(err, signcore.ErrUnknownURType) {
		t.Errorf("expected UnknownURType from Encode, got %v", err)
	}
}

func TestStaleStreamFrameArrivesFirst(t *testing.T) {
	stale, err := Encode(TypeBytes, payload(4000, 0x11), 500)
	if err != nil {
		t.Fatal(err)
	}
	data := payload(5000, 0x22)
	fresh, err := Encode(TypeBytes, data, 700)
	if err != nil {
		t.Fatal(err)
	}

	d := NewDecoder()
	if _, err := d.Receive(stale[3]); err != nil {
		t.Fatal(err)
	}
	var res DecodeResult
	for _, f := range fresh {
		if res, err = d.Receive(f); err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
	}
	if !res.Complete || !bytes.Equal(res.Data, data) {
		t.Fatalf("fresh stream did not complete: complete=%v progress=%v", res.Complete, res.Progress)
	}
	if d.Ignored() != 1 {
		t.Errorf("Ignored() = %d, want 1", d.Ignored())
	}

	// Once complete, parts of the stale stream are counted and dropped.
	if res, _ = d.Receive(stale[0]); !bytes.Equal(res.Data, data) {
		t.Error("late frame replaced the result")
	}
	if d.Ignored() != 2 {
		t.Errorf("Ignored() = %d, want 2", d.Ignored())
	}
}

func TestInterleavedStreamsFirstCompleteWins(t *testing.T) {
	a := payload(3000, 1)
	b := payload(4000, 2)
	framesA, _ := Encode(TypeBytes, a, 1000)
	framesB, _ := Encode(TypeBytes, b, 1000)

	got, err := Decode(framesB[0], framesA[0], framesB[1], framesA[1], framesA[2], framesB[2], framesB[3])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, a) {
		t.Error("expected the first stream to complete to win")
	}
}

func TestPendingStreamsAreBounded(t *testing.T) {
	d := NewDecoder()
	for i := 0; i < MaxPendingStreams+3; i++ {
		frames, err := Encode(TypeBytes, payload(3000, byte(i)), 1000)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Receive(frames[0]); err != nil {
			t.Fatal(err)
		}
	}
	if d.Pending() != MaxPendingStreams {
		t.Errorf("Pending() = %d, want %d", d.Pending(), MaxPendingStreams)
	}
	if d.Ignored() != MaxPendingStreams+2 {
		t.Errorf("Ignored() = %d, want %d", d.Ignored(), MaxPendingStreams+2)
	}

	// The most recent stream is still tracked and completes.
	data := payload(3000, byte(MaxPendingStreams+2))
	frames, _ := Encode(TypeBytes, data, 1000)
	d.Receive(frames[1])
	res, _ := d.Receive(frames[2])
	if !res.Complete || !bytes.Equal(res.Data, data) {
		t.Error("latest stream was evicted")
	}
}

func craftFrame(t *testing.T, p part) Frame {
	t.Helper()
	body, err := cbor.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	return Frame(fmt.Sprintf("ur:bytes/%d-%d/%s", p.Seq, p.Count, EncodeBytewords(body, Minimal)))
}

func TestMalformedPartHeaders(t *testing.T) {
	tests := []struct {
		name string
		part part
	}{
		{"huge count with empty message", part{Seq: 1, Count: 1 << 26, MessageLen: 0, Fragment: []byte{}}},
		{"count near the uint32 limit", part{Seq: 1, Count: 1<<32 - 1, MessageLen: 1 << 20, Fragment: []byte{1}}},
		{"empty message", part{Seq: 1, Count: 2, MessageLen: 0, Fragment: []byte{1}}},
		{"empty fragment", part{Seq: 1, Count: 2, MessageLen: 10, Fragment: []byte{}}},
		{"more parts than the message needs", part{Seq: 1, Count: 100, MessageLen: 10, Fragment: []byte{1, 2, 3, 4, 5}}},
		{"message too large", part{Seq: 1, Count: 2, MessageLen: MaxMessageBytes + 2, Fragment: []byte{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			if _, err := d.Receive(craftFrame(t, tt.part)); !errors.Is(err, signcore.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
			if d.Pending() != 0 {
				t.Errorf("rejected frame opened a stream")
			}
		})
	}
}

func TestEncodeLimits(t *testing.T) {
	if _, err := Encode(TypeBytes, make([]byte, MaxMessageBytes+1), 0); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for oversized payload, got %v", err)
	}
	if _, err := Encode(TypeBytes, make([]byte, MaxParts+1), 1); !errors.Is(err, signcore.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for too many parts, got %v", err)
	}

	// Every size Encode picks must pass the decoder's header checks.
	data := payload(MaxSinglePartBytes+1, 3)
	for _, size := range []int{1 << 10, 49, 50, 777, 1165} {
		frames, err := Encode(TypeBytes, data, size)
		if err != nil {
			t.Fatalf("Encode(%d) error: %v", size, err)
		}
		got, err := Decode(frames...)
		if err != nil || !bytes.Equal(got.Data, data) {
			t.Errorf("size %d: round trip failed: %v", size, err)
		}
	}
}
