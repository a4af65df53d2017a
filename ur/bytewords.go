package ur

import (
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/hawala-wallet/signcore"
)

// Style selects how bytewords are rendered.
type Style int

// Bytewords styles.
const (
	// Minimal uses the first and last letter of each word with no separator.
	// UR frames always use it.
	Minimal Style = iota
	// Standard separates full words with spaces.
	Standard
	// URI separates full words with dashes.
	URI
)

var wordlist = strings.Fields("" +
	"able acid also apex aqua arch atom aunt away axis back bald barn belt beta bias " +
	"blue body brag brew bulb buzz calm cash cats chef city claw code cola cook cost " +
	"crux curl cusp cyan dark data days deli dice diet door down draw drop drum dull " +
	"duty each easy echo edge epic even exam exit eyes fact fair fern figs film fish " +
	"fizz flap flew flux foxy free frog fuel fund gala game gear gems gift girl glow " +
	"good gray grim guru gush gyro half hang hard hawk heat help high hill holy hope " +
	"horn huts iced idea idle inch inky into iris iron item jade jazz join jolt jowl " +
	"judo jugs jump junk jury keep keno kept keys kick kiln king kite kiwi knob lamb " +
	"lava lazy leaf legs liar limp lion list logo loud love luau luck lung main many " +
	"math maze memo menu meow mild mint miss monk nail navy need news next noon note " +
	"numb obey oboe omit onyx open oval owls paid part peck play plus poem pool pose " +
	"puff puma purr quad quiz race ramp real redo rich road rock roof ruby ruin runs " +
	"rust safe saga scar sets silk skew slot soap solo song stub surf swan taco task " +
	"taxi tent tied time tiny toil tomb toys trip tuna twin ugly undo unit urge user " +
	"vast very veto vial vibe view visa void vows wall wand warm wasp wave waxy webs " +
	"what when whiz wolf work yank yawn yell yoga yurt zaps zero zest zinc zone zoom")

var (
	wordIndex    = make(map[string]byte, 256)
	minimalIndex = make(map[string]byte, 256)
)

func init() {
	for i, w := range wordlist {
		wordIndex[w] = byte(i)
		minimalIndex[w[:1]+w[3:]] = byte(i)
	}
}

// EncodeBytewords renders data followed by its big-endian CRC-32.
func EncodeBytewords(data []byte, style Style) string {
	full := binary.BigEndian.AppendUint32(append([]byte(nil), data...), crc32.ChecksumIEEE(data))

	var sb strings.Builder
	for i, b := range full {
		w := wordlist[b]
		switch style {
		case Minimal:
			sb.WriteByte(w[0])
			sb.WriteByte(w[3])
		default:
			if i > 0 {
				sb.WriteByte(separator(style))
			}
			sb.WriteString(w)
		}
	}
	return sb.String()
}

func separator(style Style) byte {
	if style == URI {
		return '-'
	}
	return ' '
}

// DecodeBytewords parses bytewords in the given style and verifies and
// strips the CRC-32 trailer.
func DecodeBytewords(s string, style Style) ([]byte, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	var raw []byte
	if style == Minimal {
		if len(s)%2 != 0 {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "minimal bytewords has odd length %d", len(s))
		}
		raw = make([]byte, 0, len(s)/2)
		for i := 0; i < len(s); i += 2 {
			b, ok := minimalIndex[s[i:i+2]]
			if !ok {
				return nil, signcore.Errorf(signcore.ErrInvalidInput, "unknown byteword %q", s[i:i+2])
			}
			raw = append(raw, b)
		}
	} else {
		for _, w := range strings.Split(s, string(separator(style))) {
			b, ok := wordIndex[w]
			if !ok {
				return nil, signcore.Errorf(signcore.ErrInvalidInput, "unknown byteword %q", w)
			}
			raw = append(raw, b)
		}
	}

	if len(raw) < 4 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "bytewords too short for a checksum")
	}
	data, trailer := raw[:len(raw)-4], raw[len(raw)-4:]
	if binary.BigEndian.Uint32(trailer) != crc32.ChecksumIEEE(data) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "bytewords checksum mismatch")
	}
	return data, nil
}
