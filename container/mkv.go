/*
NAME
  mkv.go

DESCRIPTION
  mkv.go demuxes a Matroska/WebM (EBML) container by walking its element
  tree down through Segment/Cluster to SimpleBlock (and BlockGroup/Block)
  elements, stripping each block's track-number/timecode/flags header to
  recover the coded frame payload.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package container

// EBML element IDs relevant to locating coded frame payloads.
const (
	idSegment     = 0x18538067
	idCluster     = 0x1F43B675
	idSimpleBlock = 0xA3
	idBlockGroup  = 0xA0
	idBlock       = 0xA1
)

// readVint reads an EBML variable-length integer starting at off, returning
// the value with its length-marker bit masked off (or kept, when
// keepMarker is set, as EBML element IDs are written), and the number of
// bytes consumed. It returns consumed=0 if the encoding is invalid or
// truncated.
func readVint(buf []byte, off int, keepMarker bool) (uint64, int) {
	if off >= len(buf) {
		return 0, 0
	}
	first := buf[off]
	if first == 0 {
		return 0, 0
	}
	length := 1
	mask := byte(0x80)
	for mask != 0 && first&mask == 0 {
		mask >>= 1
		length++
	}
	if off+length > len(buf) {
		return 0, 0
	}
	var v uint64
	if keepMarker {
		v = uint64(first)
	} else {
		v = uint64(first &^ mask)
	}
	for i := 1; i < length; i++ {
		v = v<<8 | uint64(buf[off+i])
	}
	return v, length
}

func demuxMKV(blob []byte) (*ElementaryStream, error) {
	es := &ElementaryStream{Format: FormatMKV}

	var walk func(start, end int, wantChildren bool)
	walk = func(start, end int, wantChildren bool) {
		off := start
		for off < end && off < len(blob) {
			id, idLen := readVint(blob, off, true)
			if idLen == 0 {
				return
			}
			size, sizeLen := readVint(blob, off+idLen, false)
			if sizeLen == 0 {
				return
			}
			bodyStart := off + idLen + sizeLen
			bodyEnd := bodyStart + int(size)
			if bodyEnd > end || bodyEnd > len(blob) || bodyEnd <= bodyStart {
				return
			}

			switch id {
			case idSegment, idCluster:
				walk(bodyStart, bodyEnd, true)
			case idBlockGroup:
				walk(bodyStart, bodyEnd, true)
			case idSimpleBlock, idBlock:
				extractBlock(es, blob, bodyStart, bodyEnd)
			}
			off = bodyEnd
		}
	}
	walk(0, len(blob), true)
	return es, nil
}

// extractBlock strips a (Simple)Block's track-number vint, 2-byte relative
// timecode and 1-byte flags to recover the frame payload, appending it as
// one Sample. Lacing is not expanded; a laced block is kept as one opaque
// sample, which is sufficient for this engine's NAL/OBU framers to then
// split internally.
func extractBlock(es *ElementaryStream, blob []byte, start, end int) {
	_, trackLen := readVint(blob, start, false)
	if trackLen == 0 {
		return
	}
	headerLen := trackLen + 3 // + 2 bytes timecode + 1 byte flags
	payloadStart := start + headerLen
	if payloadStart >= end {
		return
	}
	demuxedOff := len(es.Bytes)
	es.Bytes = append(es.Bytes, blob[payloadStart:end]...)
	es.Samples = append(es.Samples, Sample{Offset: demuxedOff, Length: end - payloadStart})
	es.Offsets = append(es.Offsets, OffsetMapping{SourceOffset: payloadStart, DemuxedOffset: demuxedOff})
}
