/*
NAME
  framer.go

DESCRIPTION
  framer.go splits an AV1 low-overhead bitstream into Open Bitstream Units
  (OBUs). Each OBU header byte encodes obu_type, obu_extension_flag and
  obu_has_size_field; when the size field is present it is a LEB128 varint
  giving the payload length. Framing never aborts on a malformed header; it
  records the error on the unit and the caller (ResilientDriver) decides how
  to resynchronize.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package obu splits an AV1 bitstream into Open Bitstream Units and
// classifies them by type.
package obu

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
	"github.com/hawk90/bitvue-sub000/unit"
	"github.com/hawk90/bitvue-sub000/xerrors"
)

// OBU types, per the AV1 bitstream specification section 6.2.2.
const (
	TypeReserved0          = 0
	TypeSequenceHeader     = 1
	TypeTemporalDelimiter  = 2
	TypeFrameHeader        = 3
	TypeTileGroup          = 4
	TypeMetadata           = 5
	TypeFrame              = 6
	TypeRedundantFrameHdr  = 7
	TypeTileList           = 8
	TypePadding            = 15
)

// Unit extends unit.Unit with the decoded OBU header fields and any
// per-unit parse error.
type Unit struct {
	unit.Unit
	HasSizeField bool
	Err          error
}

// Split splits buf into AV1 OBUs. Offsets are absolute within buf.
func Split(buf []byte) []Unit {
	var units []Unit
	off := 0
	for off < len(buf) {
		u, consumed := parseOne(buf, off)
		units = append(units, u)
		if consumed <= 0 {
			break
		}
		off += consumed
	}
	return units
}

func parseOne(buf []byte, off int) (Unit, int) {
	u := Unit{Unit: unit.Unit{Codec: unit.CodecAV1, ByteOffset: off}}
	if off >= len(buf) {
		u.Err = errors.Wrap(xerrors.ErrUnexpectedEndOfStream, "obu: no header byte available")
		return u, 0
	}

	b0 := buf[off]
	obuForbidden := b0 >> 7
	u.Type = int((b0 >> 3) & 0x0f)
	extFlag := (b0 >> 2) & 0x01
	hasSize := (b0 >> 1) & 0x01
	u.HasSizeField = hasSize == 1

	headerLen := 1
	if extFlag == 1 {
		if off+1 >= len(buf) {
			u.Err = errors.Wrap(xerrors.ErrMalformedObuHeader, "obu: extension flag set but extension byte missing")
			u.ByteLength = len(buf) - off
			return u, u.ByteLength
		}
		u.TemporalID = int(buf[off+1] >> 5)
		u.LayerID = int((buf[off+1] >> 3) & 0x03)
		headerLen = 2
	}

	if obuForbidden != 0 {
		u.Err = errors.Wrap(xerrors.ErrMalformedObuHeader, "obu: obu_forbidden_bit set")
	}

	if !u.HasSizeField {
		// Only valid in Annex-B/length-delimited framing modes which this
		// engine does not need to support standalone; treat the remainder
		// of the buffer as this OBU's payload so scanning still makes
		// forward progress.
		u.PayloadOffset = off + headerLen
		u.PayloadLength = len(buf) - u.PayloadOffset
		u.ByteLength = len(buf) - off
		return u, u.ByteLength
	}

	sizeReader := bits.NewReader(buf[off+headerLen:])
	size, sizeLen, err := sizeReader.ReadLEB128()
	if err != nil {
		u.Err = errors.Wrap(err, "obu: reading obu_size leb128")
		u.ByteLength = len(buf) - off
		return u, u.ByteLength
	}

	u.PayloadOffset = off + headerLen + sizeLen
	u.PayloadLength = int(size)
	u.ByteLength = headerLen + sizeLen + int(size)

	if u.PayloadOffset+u.PayloadLength > len(buf) {
		u.Err = errors.Wrap(xerrors.ErrUnexpectedEndOfStream, "obu: declared size exceeds remaining buffer")
		u.PayloadLength = len(buf) - u.PayloadOffset
		u.ByteLength = len(buf) - off
	}

	return u, u.ByteLength
}

// TypeName returns a human-readable name for an OBU type, for diagnostics.
func TypeName(t int) string {
	switch t {
	case TypeSequenceHeader:
		return "sequence_header"
	case TypeTemporalDelimiter:
		return "temporal_delimiter"
	case TypeFrameHeader:
		return "frame_header"
	case TypeTileGroup:
		return "tile_group"
	case TypeMetadata:
		return "metadata"
	case TypeFrame:
		return "frame"
	case TypeRedundantFrameHdr:
		return "redundant_frame_header"
	case TypeTileList:
		return "tile_list"
	case TypePadding:
		return "padding"
	default:
		return "reserved"
	}
}
