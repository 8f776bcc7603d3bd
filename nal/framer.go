/*
NAME
  framer.go

DESCRIPTION
  framer.go splits an Annex-B byte stream (00 00 01 or 00 00 00 01 start
  codes) into NAL units, parsing the 1-byte H.264 header or the 2-byte
  H.265/H.266 header for each, and recording absolute byte offsets so a hex
  view can round trip to any unit. It never aborts on a malformed unit
  header; it records the unit with an error and keeps scanning, matching
  the resilience policy of the wider driver (see package driver).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package nal

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/unit"
	"github.com/hawk90/bitvue-sub000/xerrors"
)

// Unit extends unit.Unit with the decoded NAL header fields and any
// per-unit parse error, so ResilientDriver can log a diagnostic without
// discarding the unit's position.
type Unit struct {
	unit.Unit
	RefIDC   uint8 // nal_ref_idc (H.264 only; 0 for H.265/H.266)
	Err      error
}

// startCode finds the next Annex-B start code (00 00 01 or 00 00 00 01) in
// buf at or after off, returning the index of the first 0x01 byte of the
// start code and the number of leading zero bytes (2 or 3), or -1 if none
// is found.
func startCode(buf []byte, off int) (oneAt int, zeros int) {
	for i := off; i+2 < len(buf); i++ {
		if buf[i] != 0x00 || buf[i+1] != 0x00 {
			continue
		}
		if buf[i+2] == 0x01 {
			// Prefer the 4-byte form if a third leading zero is present.
			if i > 0 && buf[i-1] == 0x00 {
				return i + 2, 3
			}
			return i + 2, 2
		}
	}
	return -1, 0
}

// Split splits buf (codec H.264, H.265 or H.266) into NAL units delimited
// by Annex-B start codes. Offsets in the returned units are absolute within
// buf. A header that fails to parse is still emitted, with Err set, so
// callers can resynchronize rather than abort the whole stream. Type/RefIDC
// stay at their zero values only when the header bytes are missing or the
// codec is not a NAL codec; a header with the forbidden bit set still has
// them decoded.
func Split(buf []byte, codec unit.Codec) []Unit {
	var units []Unit
	oneAt, zeros := startCode(buf, 0)
	for oneAt >= 0 {
		unitStart := oneAt + 1
		nextOneAt, nextZeros := startCode(buf, unitStart)
		var unitEnd int
		if nextOneAt < 0 {
			unitEnd = len(buf)
		} else {
			unitEnd = nextOneAt - nextZeros
		}
		if unitEnd > unitStart {
			units = append(units, parseHeader(buf, unitStart, unitEnd, codec))
		}
		oneAt, zeros = nextOneAt, nextZeros
		_ = zeros
	}
	return units
}

func parseHeader(buf []byte, start, end int, codec unit.Codec) Unit {
	u := Unit{Unit: unit.Unit{
		Codec:      codec,
		ByteOffset: start,
		ByteLength: end - start,
	}}

	switch codec {
	case unit.CodecH264:
		if end-start < 1 {
			u.Err = errors.Wrapf(xerrors.ErrMalformedNalHeader, "nal: h264 unit at %d has no header byte", start)
			return u
		}
		b0 := buf[start]
		forbidden := b0 >> 7
		u.RefIDC = (b0 >> 5) & 0x03
		u.Type = int(b0 & 0x1f)
		u.PayloadOffset = start + 1
		u.PayloadLength = end - u.PayloadOffset
		if forbidden != 0 {
			u.Err = errors.Wrapf(xerrors.ErrMalformedNalHeader,
				"nal: h264 unit at %d has forbidden_zero_bit set", start)
		}
	case unit.CodecH265, unit.CodecH266:
		if end-start < 2 {
			u.Err = errors.Wrapf(xerrors.ErrMalformedNalHeader, "nal: unit at %d has incomplete header", start)
			return u
		}
		b0, b1 := buf[start], buf[start+1]
		forbidden := b0 >> 7
		u.Type = int((b0 >> 1) & 0x3f)
		u.LayerID = int((uint16(b0&0x01)<<5 | uint16(b1>>3)) & 0x3f)
		temporalIDPlus1 := b1 & 0x07
		u.TemporalID = int(temporalIDPlus1) - 1
		u.PayloadOffset = start + 2
		u.PayloadLength = end - u.PayloadOffset
		if forbidden != 0 || temporalIDPlus1 == 0 {
			u.Err = errors.Wrapf(xerrors.ErrMalformedNalHeader,
				"nal: unit at %d has forbidden_zero_bit set or temporal_id_plus1 == 0", start)
		}
	default:
		u.Err = errors.Errorf("nal: unsupported codec %v for Annex-B framing", codec)
	}
	return u
}
