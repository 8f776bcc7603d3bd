/*
NAME
  stream.go

DESCRIPTION
  stream.go defines ElementaryStream, the demuxed byte sequence every
  downstream framer/parser operates on, along with the Sample boundaries and
  offset-mapping table a demuxer produces alongside it.

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

// Sample is one access unit's byte range within the demuxed
// ElementaryStream, with optional presentation/decode timestamps when the
// container carries them.
type Sample struct {
	Offset int
	Length int
	PTS    int64
	DTS    int64
	HasPTS bool
	HasDTS bool
}

// OffsetMapping records that a demuxed-stream offset corresponds to a given
// offset in the original source blob, so a hex view over the
// ElementaryStream can be related back to the container file. Entries are
// monotonically increasing in both fields.
type OffsetMapping struct {
	SourceOffset  int
	DemuxedOffset int
}

// ElementaryStream is the concatenated codec payload bytes produced by a
// demuxer (or the raw input itself, for FormatRaw), plus the sample
// boundaries and source-offset mapping alongside it.
type ElementaryStream struct {
	Format  Format
	Bytes   []byte
	Samples []Sample
	Offsets []OffsetMapping

	// HasPTSRange and PTSRange report the container-level first/last PTS
	// the demuxer observed, independently of any per-Sample PTS; only
	// demuxTS populates this today, by scanning the MPEG-TS clip's PES PTS
	// values directly rather than deriving it from Samples.
	HasPTSRange bool
	PTSRange    [2]int64
}

// SourceOffset maps a demuxed-stream offset back to the original blob's
// offset using the monotonically increasing Offsets table, returning the
// mapping entry at or before demuxedOffset. If Offsets is empty the demuxed
// stream is assumed to be a direct (unshifted) view of the source, so the
// offset is returned unchanged.
func (es *ElementaryStream) SourceOffset(demuxedOffset int) int {
	if len(es.Offsets) == 0 {
		return demuxedOffset
	}
	best := es.Offsets[0]
	for _, m := range es.Offsets {
		if m.DemuxedOffset > demuxedOffset {
			break
		}
		best = m
	}
	return best.SourceOffset + (demuxedOffset - best.DemuxedOffset)
}

// Demux produces an ElementaryStream from a raw container blob. Raw
// (unrecognized) input always demuxes to a single sample spanning the
// entire input.
func Demux(blob []byte) (*ElementaryStream, error) {
	format := Sniff(blob)
	switch format {
	case FormatIVF:
		return demuxIVF(blob)
	case FormatMP4:
		return demuxMP4(blob)
	case FormatMKV:
		return demuxMKV(blob)
	case FormatMPEGTS:
		return demuxTS(blob)
	default:
		return &ElementaryStream{
			Format: FormatRaw,
			Bytes:  blob,
			Samples: []Sample{{Offset: 0, Length: len(blob)}},
		}, nil
	}
}
