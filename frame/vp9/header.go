/*
NAME
  header.go

DESCRIPTION
  header.go parses the VP9 uncompressed frame header (6.2) far enough to
  recover frame type, dimensions and show_frame, and splits a VP9
  superframe (Annex B) into its constituent frames.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package vp9

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
	"github.com/hawk90/bitvue-sub000/frame"
)

// superframeMarkerMask matches the top 3 bits of a superframe index marker
// byte (0b110xxxxx).
const superframeMarkerMask = 0xE0
const superframeMarkerValue = 0xC0

// SplitSuperframe returns the individual frame payloads packed into buf. If
// buf does not end with a valid superframe index, buf is returned as a
// single frame.
func SplitSuperframe(buf []byte) [][]byte {
	if len(buf) < 1 {
		return [][]byte{buf}
	}
	marker := buf[len(buf)-1]
	if marker&superframeMarkerMask != superframeMarkerValue {
		return [][]byte{buf}
	}
	bytesPerFrameSize := int((marker>>3)&0x3) + 1
	framesInSuperframe := int(marker&0x7) + 1
	indexSize := 2 + bytesPerFrameSize*framesInSuperframe
	if len(buf) < indexSize || buf[len(buf)-indexSize] != marker {
		return [][]byte{buf}
	}

	sizes := make([]int, framesInSuperframe)
	pos := len(buf) - indexSize + 1
	for i := 0; i < framesInSuperframe; i++ {
		sz := 0
		for b := 0; b < bytesPerFrameSize; b++ {
			sz |= int(buf[pos]) << (8 * b)
			pos++
		}
		sizes[i] = sz
	}

	frames := make([][]byte, 0, framesInSuperframe)
	off := 0
	for _, sz := range sizes {
		if off+sz > len(buf)-indexSize {
			return [][]byte{buf}
		}
		frames = append(frames, buf[off:off+sz])
		off += sz
	}
	return frames
}

// frame_type values.
const (
	KeyFrame    = 0
	NonKeyFrame = 1
)

// FrameHeader is the leading subset of uncompressed_header fields.
type FrameHeader struct {
	FrameType  int
	ShowFrame  bool
	Width      int
	Height     int
}

// ParseFrameHeader parses one VP9 frame's uncompressed header.
func ParseFrameHeader(buf []byte) (*frame.FrameRecord, error) {
	r := bits.NewReader(buf)

	if _, err := r.ReadU(2); err != nil { // frame_marker
		return nil, errors.Wrap(err, "vp9: reading frame_marker")
	}
	if _, err := r.ReadU(1); err != nil { // profile_low_bit
		return nil, errors.Wrap(err, "vp9: reading profile_low_bit")
	}
	if _, err := r.ReadU(1); err != nil { // profile_high_bit
		return nil, errors.Wrap(err, "vp9: reading profile_high_bit")
	}
	if _, err := r.ReadU(1); err != nil { // show_existing_frame
		return nil, errors.Wrap(err, "vp9: reading show_existing_frame")
	}

	ft, err := r.ReadU(1)
	if err != nil {
		return nil, errors.Wrap(err, "vp9: reading frame_type")
	}

	showFrame, err := r.ReadFlag()
	if err != nil {
		return nil, errors.Wrap(err, "vp9: reading show_frame")
	}
	if _, err := r.ReadFlag(); err != nil { // error_resilient_mode
		return nil, errors.Wrap(err, "vp9: reading error_resilient_mode")
	}

	h := &FrameHeader{FrameType: int(ft), ShowFrame: showFrame}

	if h.FrameType == KeyFrame {
		if _, err := r.ReadU(24); err != nil { // frame_sync_code
			return nil, errors.Wrap(err, "vp9: reading frame_sync_code")
		}
		// color_config: skipped, bit_depth/subsampling not surfaced.
		w, err := r.ReadU(16)
		if err != nil {
			return nil, errors.Wrap(err, "vp9: reading frame_width_minus_1")
		}
		hh, err := r.ReadU(16)
		if err != nil {
			return nil, errors.Wrap(err, "vp9: reading frame_height_minus_1")
		}
		h.Width = int(w) + 1
		h.Height = int(hh) + 1
	}

	rec := &frame.FrameRecord{
		Codec:      "vp9",
		IsKeyframe: h.FrameType == KeyFrame,
		Width:      h.Width,
		Height:     h.Height,
		ByteLength: len(buf),
	}
	if h.FrameType == KeyFrame {
		rec.Type = frame.PictureI
	} else {
		rec.Type = frame.PictureP
	}
	return rec, nil
}
