/*
NAME
  ivf.go

DESCRIPTION
  ivf.go demuxes an IVF container: a 32-byte file header (signature, codec
  FourCC, dimensions, frame count) followed by a sequence of
  (4-byte little-endian size, 8-byte PTS, frame payload) records.

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

import "encoding/binary"

const ivfHeaderSize = 32
const ivfFrameHeaderSize = 12

// FourCC returns the 4-byte codec FourCC field from an IVF header (e.g.
// AV01, VP09, H264, H265, H266), or "" if buf is too short to contain one.
func FourCC(buf []byte) string {
	if len(buf) < 12 {
		return ""
	}
	return string(buf[8:12])
}

// demuxIVF walks the IVF frame records, concatenating payloads into one
// ElementaryStream and recording one Sample per frame. A truncated final
// frame record is dropped rather than causing an error, matching the
// engine's resilience policy for malformed/partial input.
func demuxIVF(blob []byte) (*ElementaryStream, error) {
	es := &ElementaryStream{Format: FormatIVF}
	if len(blob) < ivfHeaderSize {
		return es, nil
	}

	off := ivfHeaderSize
	for off+ivfFrameHeaderSize <= len(blob) {
		frameSize := int(binary.LittleEndian.Uint32(blob[off : off+4]))
		pts := int64(binary.LittleEndian.Uint64(blob[off+4 : off+12]))
		payloadStart := off + ivfFrameHeaderSize
		if frameSize < 0 || payloadStart+frameSize > len(blob) {
			break
		}

		sampleOffset := len(es.Bytes)
		es.Bytes = append(es.Bytes, blob[payloadStart:payloadStart+frameSize]...)
		es.Samples = append(es.Samples, Sample{
			Offset: sampleOffset,
			Length: frameSize,
			PTS:    pts,
			HasPTS: true,
		})
		es.Offsets = append(es.Offsets, OffsetMapping{SourceOffset: payloadStart, DemuxedOffset: sampleOffset})

		off = payloadStart + frameSize
	}
	return es, nil
}
