package api

import (
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/ur"
)

// EncodeURRequest splits a payload into UR frames.
type EncodeURRequest struct {
	Type    string            `json:"type"`
	Payload encoding.HexBytes `json:"payload"`
	// MaxFragmentSize defaults to ur.DefaultMaxFragmentSize.
	MaxFragmentSize int `json:"maxFragmentSize,omitempty"`
}

// EncodeURResponse lists the frames in sequence order.
type EncodeURResponse struct {
	Frames []ur.Frame `json:"frames"`
}

// EncodeUR encodes req.Payload as one or more UR frames.
func EncodeUR(req EncodeURRequest) (*EncodeURResponse, error) {
	t, err := ur.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	size := req.MaxFragmentSize
	if size == 0 {
		size = ur.DefaultMaxFragmentSize
	}
	frames, err := ur.Encode(t, req.Payload, size)
	if err != nil {
		return nil, err
	}
	return &EncodeURResponse{Frames: frames}, nil
}

// DecodeURRequest carries scanned frames in any order.
type DecodeURRequest struct {
	Frames []ur.Frame `json:"frames"`
	// AllowPartial returns the progress of an incomplete stream instead of
	// an IncompleteURStream error.
	AllowPartial bool `json:"allowPartial,omitempty"`
}

// DecodeURResponse is the reassembled payload or the progress so far.
type DecodeURResponse struct {
	ur.DecodeResult
	Ignored int `json:"ignored"`
}

// DecodeUR reassembles the first stream to complete among req.Frames.
func DecodeUR(req DecodeURRequest) (*DecodeURResponse, error) {
	if len(req.Frames) == 0 {
		return nil, signcore.Errorf(signcore.ErrIncompleteURStream, "no frames received")
	}
	d := ur.NewDecoder()
	for _, f := range req.Frames {
		if _, err := d.Receive(f); err != nil {
			return nil, err
		}
	}
	res, err := d.Result()
	if err != nil && !(req.AllowPartial && signcore.CodeOf(err) == signcore.ErrCodeIncompleteURStream) {
		return nil, err
	}
	return &DecodeURResponse{DecodeResult: res, Ignored: d.Ignored()}, nil
}
