package ur

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/hawala-wallet/signcore"
)

const (
	// MaxSinglePartBytes is the largest payload sent as one frame, the
	// binary capacity of a version 40 QR code at low error correction.
	MaxSinglePartBytes = 2331

	// DefaultMaxFragmentSize is used when Encode is given a size <= 0.
	DefaultMaxFragmentSize = 200

	// MaxMessageBytes is the largest multi-part message accepted.
	MaxMessageBytes = 1 << 20

	// MaxParts is the largest part count accepted.
	MaxParts = 1 << 16
)

// Frame is one UR string, the content of one QR code.
type Frame string

// part is the CBOR body of a multi-part frame:
// [seq, count, messageLen, checksum, fragment].
type part struct {
	_          struct{} `cbor:",toarray"`
	Seq        uint32
	Count      uint32
	MessageLen uint64
	Checksum   uint32
	Fragment   []byte
}

// Encode splits payload into frames. Payloads up to MaxSinglePartBytes
// yield one frame; larger ones are cut into equal fragments of at most
// maxFragmentSize bytes (the last zero-padded), numbered 1..count.
func Encode(t Type, payload []byte, maxFragmentSize int) ([]Frame, error) {
	t, err := ParseType(string(t))
	if err != nil {
		return nil, err
	}
	if len(payload) <= MaxSinglePartBytes {
		return []Frame{Frame(fmt.Sprintf("ur:%s/%s", t, EncodeBytewords(payload, Minimal)))}, nil
	}

	if len(payload) > MaxMessageBytes {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "payload of %d bytes exceeds %d", len(payload), MaxMessageBytes)
	}
	if maxFragmentSize <= 0 {
		maxFragmentSize = DefaultMaxFragmentSize
	}
	count := (len(payload) + maxFragmentSize - 1) / maxFragmentSize
	fragLen := (len(payload) + count - 1) / count
	count = (len(payload) + fragLen - 1) / fragLen
	if count > MaxParts {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "%d parts exceed %d, raise the fragment size", count, MaxParts)
	}
	padded := make([]byte, count*fragLen)
	copy(padded, payload)
	checksum := crc32.ChecksumIEEE(payload)

	frames := make([]Frame, count)
	for i := range frames {
		body, err := cbor.Marshal(part{
			Seq:        uint32(i + 1),
			Count:      uint32(count),
			MessageLen: uint64(len(payload)),
			Checksum:   checksum,
			Fragment:   padded[i*fragLen : (i+1)*fragLen],
		})
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "encoding UR part", err)
		}
		frames[i] = Frame(fmt.Sprintf("ur:%s/%d-%d/%s", t, i+1, count, EncodeBytewords(body, Minimal)))
	}
	return frames, nil
}

// parsed is a frame split into its fields. Single-part frames have
// Count 0 and carry the whole payload in Data.
type parsed struct {
	Type Type
	Data []byte
	Part part
}

func (p parsed) multi() bool {
	return p.Part.Count > 0
}

func parseFrame(f Frame) (parsed, error) {
	s := strings.ToLower(strings.TrimSpace(string(f)))
	rest, ok := strings.CutPrefix(s, "ur:")
	if !ok {
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "frame does not start with ur:")
	}
	fields := strings.Split(rest, "/")
	if len(fields) != 2 && len(fields) != 3 {
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "malformed UR frame")
	}
	t, err := ParseType(fields[0])
	if err != nil {
		return parsed{}, err
	}

	data, err := DecodeBytewords(fields[len(fields)-1], Minimal)
	if err != nil {
		return parsed{}, err
	}
	if len(fields) == 2 {
		return parsed{Type: t, Data: data}, nil
	}

	seq, count, err := parseSequence(fields[1])
	if err != nil {
		return parsed{}, err
	}
	var p part
	if err := cbor.Unmarshal(data, &p); err != nil {
		return parsed{}, signcore.NewError(signcore.ErrCodeInvalidInput, "malformed UR part body", err)
	}
	switch {
	case p.Seq != seq || p.Count != count:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "part header %d-%d disagrees with body %d-%d", seq, count, p.Seq, p.Count)
	case p.Seq == 0 || p.Seq > p.Count:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "part %d of %d out of range", p.Seq, p.Count)
	case p.Count > MaxParts:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "part count %d exceeds %d", p.Count, MaxParts)
	case p.MessageLen == 0 || len(p.Fragment) == 0:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "empty multi-part message")
	case p.MessageLen > MaxMessageBytes:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "message of %d bytes exceeds %d", p.MessageLen, MaxMessageBytes)
	case uint64(len(p.Fragment))*uint64(p.Count) < p.MessageLen:
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "fragments too short for a %d byte message", p.MessageLen)
	case uint64(p.Count) > (p.MessageLen+uint64(len(p.Fragment))-1)/uint64(len(p.Fragment)):
		return parsed{}, signcore.Errorf(signcore.ErrInvalidInput, "%d parts is more than a %d byte message needs", p.Count, p.MessageLen)
	}
	return parsed{Type: t, Part: p}, nil
}

func parseSequence(s string) (uint32, uint32, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, signcore.Errorf(signcore.ErrInvalidInput, "malformed sequence %q", s)
	}
	seq, err1 := strconv.ParseUint(a, 10, 32)
	count, err2 := strconv.ParseUint(b, 10, 32)
	if err1 != nil || err2 != nil || count == 0 {
		return 0, 0, signcore.Errorf(signcore.ErrInvalidInput, "malformed sequence %q", s)
	}
	return uint32(seq), uint32(count), nil
}
