package ur

import (
	"hash/crc32"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
)

// MaxPendingStreams bounds how many incomplete streams a Decoder tracks at
// once. Receiving a part of a new stream beyond that evicts the stream that
// has been idle longest.
const MaxPendingStreams = 4

// DecodeResult is the state of a decode. Data is set once Complete.
type DecodeResult struct {
	Type     Type              `json:"type"`
	Data     encoding.HexBytes `json:"data,omitempty"`
	Complete bool              `json:"complete"`
	Progress float64           `json:"progress"`
}

type streamKey struct {
	typ        Type
	messageLen uint64
	checksum   uint32
	count      uint32
}

type stream struct {
	key       streamKey
	fragments map[uint32][]byte
	frames    int
	touched   uint64
}

func (s *stream) progress() float64 {
	return float64(len(s.fragments)) / float64(s.key.count)
}

// Decoder reassembles UR streams. Parts are grouped by stream identity
// (type, message length, checksum and part count), so frames of several
// streams may be interleaved in any order; the first stream to complete is
// the result. Duplicates are dropped.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	streams map[streamKey]*stream
	current *stream
	tick    uint64
	dropped int
	result  DecodeResult
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{streams: make(map[streamKey]*stream)}
}

// Receive consumes one frame and returns the decoder state after it. Until a
// stream completes the state describes the stream the frame belongs to.
// Malformed frames and unknown types return an error and leave the state
// unchanged.
func (d *Decoder) Receive(f Frame) (DecodeResult, error) {
	p, err := parseFrame(f)
	if err != nil {
		return d.result, err
	}
	if d.streams == nil {
		d.streams = make(map[streamKey]*stream)
	}

	if !p.multi() {
		if d.result.Complete {
			d.dropped++
			return d.result, nil
		}
		d.current = nil
		d.result = DecodeResult{Type: p.Type, Data: p.Data, Complete: true, Progress: 1}
		return d.result, nil
	}

	key := streamKey{typ: p.Type, messageLen: p.Part.MessageLen, checksum: p.Part.Checksum, count: p.Part.Count}
	if d.result.Complete {
		if d.current == nil || d.current.key != key {
			d.dropped++
		}
		return d.result, nil
	}

	s, ok := d.streams[key]
	if !ok {
		if len(d.streams) >= MaxPendingStreams {
			d.evict()
		}
		s = &stream{key: key, fragments: make(map[uint32][]byte)}
		d.streams[key] = s
	}
	d.tick++
	s.touched = d.tick
	s.frames++
	d.current = s

	if _, dup := s.fragments[p.Part.Seq]; !dup {
		s.fragments[p.Part.Seq] = p.Part.Fragment
	}
	if len(s.fragments) < int(key.count) {
		d.result = DecodeResult{Type: key.typ, Progress: s.progress()}
		return d.result, nil
	}

	data, err := s.assemble()
	if err != nil {
		d.dropped += s.frames
		delete(d.streams, key)
		d.current = nil
		d.result = DecodeResult{}
		return d.result, err
	}
	d.result = DecodeResult{Type: key.typ, Data: data, Complete: true, Progress: 1}
	return d.result, nil
}

// evict drops the least recently updated pending stream.
func (d *Decoder) evict() {
	var oldest *stream
	for _, s := range d.streams {
		if oldest == nil || s.touched < oldest.touched {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	d.dropped += oldest.frames
	delete(d.streams, oldest.key)
	if d.current == oldest {
		d.current = nil
	}
}

func (s *stream) assemble() ([]byte, error) {
	var msg []byte
	for seq := uint32(1); seq <= s.key.count; seq++ {
		msg = append(msg, s.fragments[seq]...)
	}
	if uint64(len(msg)) < s.key.messageLen {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "reassembled %d bytes, want %d", len(msg), s.key.messageLen)
	}
	msg = msg[:s.key.messageLen]
	if crc32.ChecksumIEEE(msg) != s.key.checksum {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "reassembled message fails its checksum")
	}
	return msg, nil
}

// Result returns the decoded payload, or an IncompleteURStream error while
// parts are missing.
func (d *Decoder) Result() (DecodeResult, error) {
	if d.result.Complete {
		return d.result, nil
	}
	if d.current == nil {
		return d.result, signcore.Errorf(signcore.ErrIncompleteURStream, "no frames received")
	}
	return d.result, signcore.Errorf(signcore.ErrIncompleteURStream, "received %d of %d parts", len(d.current.fragments), d.current.key.count)
}

// Ignored reports how many frames fell outside the stream the result
// describes: parts of other streams, evicted streams and frames arriving
// after completion.
func (d *Decoder) Ignored() int {
	n := d.dropped
	for _, s := range d.streams {
		if s != d.current {
			n += s.frames
		}
	}
	return n
}

// Pending reports how many multi-part streams are being tracked.
func (d *Decoder) Pending() int {
	return len(d.streams)
}

// Reset clears the decoder so it can accept a new stream.
func (d *Decoder) Reset() {
	*d = Decoder{streams: make(map[streamKey]*stream)}
}

// Decode feeds frames to a fresh decoder and returns its result.
func Decode(frames ...Frame) (DecodeResult, error) {
	d := NewDecoder()
	for _, f := range frames {
		if _, err := d.Receive(f); err != nil {
			return DecodeResult{}, err
		}
	}
	return d.Result()
}
