// Package hd derives child keys from a seed along a derivation path.
//
// secp256k1 keys follow BIP-32 and Ed25519 keys follow SLIP-0010, which only
// defines hardened derivation. Seeds come from a BIP-39 mnemonic.
package hd

import (
	"strconv"
	"strings"

	"github.com/hawala-wallet/signcore"
)

// HardenedOffset is added to a segment index to mark hardened derivation.
const HardenedOffset uint32 = 0x80000000

// Segment is one level of a derivation path.
type Segment struct {
	Index    uint32
	Hardened bool
}

// Raw returns the BIP-32 child number, with the hardened bit applied.
func (s Segment) Raw() uint32 {
	if s.Hardened {
		return s.Index + HardenedOffset
	}
	return s.Index
}

// String renders the segment with an apostrophe for hardened indexes.
func (s Segment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// Path is a parsed derivation path. The zero value is the master key path "m".
type Path []Segment

// ParsePath parses paths such as m/44'/60'/0'/0/0. Hardened segments may be
// marked with ', h or H.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if parts[0] != "m" {
		return nil, pathError(s, "path must start with m")
	}

	path := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		seg := Segment{}
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			seg.Hardened = true
			part = part[:n-1]
		}
		if part == "" {
			return nil, pathError(s, "empty segment")
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, pathError(s, "segment "+strconv.Quote(part)+" is not a number")
		}
		if uint32(v) >= HardenedOffset {
			return nil, pathError(s, "segment "+part+" exceeds 2^31-1")
		}
		seg.Index = uint32(v)
		path = append(path, seg)
	}
	return path, nil
}

// MustParsePath is ParsePath for constant paths; it panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in m/44'/0' form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(seg.String())
	}
	return b.String()
}

// AllHardened reports whether every segment is hardened.
func (p Path) AllHardened() bool {
	for _, seg := range p {
		if !seg.Hardened {
			return false
		}
	}
	return true
}

func pathError(path, reason string) error {
	return signcore.NewError(signcore.ErrCodeInvalidInput, strconv.Quote(path)+": "+reason, signcore.ErrInvalidPath)
}
