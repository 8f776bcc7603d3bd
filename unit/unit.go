/*
NAME
  unit.go

DESCRIPTION
  unit.go defines Unit, the codec-agnostic record describing a single coded
  unit (OBU for AV1; NAL unit for H.264/H.265/H.266; frame/superframe for
  VP9) with absolute byte offsets into its ElementaryStream.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package unit defines the codec-agnostic coded-unit record shared by the
// NAL and OBU framers.
package unit

// Codec identifies which bitstream syntax a Unit's Type is interpreted
// against.
type Codec int

// Supported codecs.
const (
	CodecUnknown Codec = iota
	CodecAV1
	CodecH264
	CodecH265
	CodecH266
	CodecVP9
)

// String returns the codec's common name.
func (c Codec) String() string {
	switch c {
	case CodecAV1:
		return "av1"
	case CodecH264:
		return "h264"
	case CodecH265:
		return "h265"
	case CodecH266:
		return "h266"
	case CodecVP9:
		return "vp9"
	default:
		return "unknown"
	}
}

// Unit is a single coded unit: an OBU, a NAL unit, or a VP9 frame within a
// superframe. Offsets are absolute byte positions in the owning
// ElementaryStream.
//
// Invariant: ByteOffset+ByteLength is the first byte of the next Unit, or
// the stream end, except for NAL units: their ByteOffset is the first
// header byte after the start code, so ByteOffset+ByteLength is where the
// next unit's start code begins. PayloadOffset/PayloadLength lie within
// [ByteOffset, ByteOffset+ByteLength).
type Unit struct {
	Codec          Codec
	Type           int
	ByteOffset     int
	ByteLength     int
	PayloadOffset  int
	PayloadLength  int
	TemporalID     int
	LayerID        int
}

// End returns ByteOffset+ByteLength, the offset one past the unit.
func (u Unit) End() int { return u.ByteOffset + u.ByteLength }

// Payload returns the unit's payload bytes from the given elementary
// stream, which must be the same stream the Unit's offsets were computed
// against.
func (u Unit) Payload(stream []byte) []byte {
	return stream[u.PayloadOffset : u.PayloadOffset+u.PayloadLength]
}

// Bytes returns the unit's full byte range (including any header) from the
// given elementary stream.
func (u Unit) Bytes(stream []byte) []byte {
	return stream[u.ByteOffset:u.End()]
}
