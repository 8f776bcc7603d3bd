/*
NAME
  ts.go

DESCRIPTION
  ts.go adapts the mts package's PES-reassembling MPEG-TS extractor (see
  container/mts) to the generic container.Demux interface, turning its
  frame list into ElementaryStream samples.

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

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/container/mts"
	"github.com/hawk90/bitvue-sub000/unit"
)

// demuxTS extracts media frames from an MPEG-TS blob via mts.Extract and
// flattens them into one ElementaryStream, one Sample per PES frame. The TS
// demuxer requires the blob to contain only complete 188-byte packets; a
// trailing partial packet is dropped by trimming to the nearest packet
// boundary before handing off to mts.Extract.
//
// It also consults the PMT (mts.FindPSI/FirstMediaPID) for one media PID's
// PTS span (mts.GetPTSRange); with several streams in the PMT, which PID is
// used is not defined. The span is recorded in the returned
// ElementaryStream as an independent cross-check of the per-Sample PTS
// values derived from Extract's own PES reassembly.
func demuxTS(blob []byte) (*ElementaryStream, error) {
	trimmed := blob[:len(blob)-(len(blob)%mts.PacketSize)]
	clip, err := mts.Extract(trimmed)
	if err != nil {
		return nil, errors.Wrap(err, "container: mpeg-ts extraction failed")
	}

	es := &ElementaryStream{Format: FormatMPEGTS, Bytes: clip.Bytes()}
	off := 0
	for _, f := range clip.Frames() {
		es.Samples = append(es.Samples, Sample{
			Offset: off,
			Length: len(f.Media),
			PTS:    int64(f.PTS),
			HasPTS: true,
		})
		off += len(f.Media)
	}

	if _, streamMap, _, err := mts.FindPSI(trimmed); err == nil {
		if pid, _, err := mts.FirstMediaPID(streamMap); err == nil {
			if ptsRange, err := mts.GetPTSRange(trimmed, pid); err == nil {
				es.HasPTSRange = true
				es.PTSRange = [2]int64{int64(ptsRange[0]), int64(ptsRange[1])}
			}
		}
	}

	return es, nil
}

// SniffTSCodec inspects an MPEG-TS blob's PMT to determine which codec a
// media stream carries, via the stream_type byte mts.FindPSI reports for the
// PID mts.FirstMediaPID picks; with several streams in the PMT, which one is
// used is not defined. Unlike demuxTS's PTS-range lookup, a PMT read
// failure here is returned rather than ignored, since a caller using this
// function has no other source to fall back on for the codec.
func SniffTSCodec(blob []byte) (unit.Codec, error) {
	trimmed := blob[:len(blob)-(len(blob)%mts.PacketSize)]
	_, streamMap, _, err := mts.FindPSI(trimmed)
	if err != nil {
		return unit.CodecUnknown, errors.Wrap(err, "container: could not read PMT")
	}
	_, streamType, err := mts.FirstMediaPID(streamMap)
	if err != nil {
		return unit.CodecUnknown, errors.Wrap(err, "container: no media stream found in PMT")
	}
	return codecForStreamType(streamType), nil
}

// codecForStreamType maps an MPEG-TS PMT stream_type byte (ISO/IEC 13818-1
// Table 2-34, plus later registry amendments) to the unit.Codec it carries.
// AV1 and VP9 have no stream_type of their own in that registry; a stream
// carrying either is conventionally marked with a private-data stream_type
// (0x06) alongside a registration descriptor this package does not parse,
// so unmapped types fall back to AV1 to match guessCodec's IVF fallback.
func codecForStreamType(t uint8) unit.Codec {
	switch t {
	case 0x1B:
		return unit.CodecH264
	case 0x24:
		return unit.CodecH265
	case 0x33:
		return unit.CodecH266
	default:
		return unit.CodecAV1
	}
}
