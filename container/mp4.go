/*
NAME
  mp4.go

DESCRIPTION
  mp4.go demuxes an ISO-BMFF (MP4/MOV) container by walking its hierarchical
  box tree down to the sample tables (stsz/stsc/stco/co64) under moov, and
  uses them to slice the mdat payload into per-sample byte ranges. If no
  sample table is found (fragmented or unusual files), the whole of the
  first mdat box is treated as a single sample so the demuxer still makes
  forward progress.

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

type box struct {
	typ       string
	start     int // offset of box start (size field)
	bodyStart int // offset of box body (after size+type, and largesize if present)
	end       int // offset one past the box
}

// iterBoxes walks sibling boxes within [start,end) of blob, calling fn for
// each. It stops early if fn returns false, and never panics on a
// truncated trailing box.
func iterBoxes(blob []byte, start, end int, fn func(box) bool) {
	off := start
	for off+8 <= end && off+8 <= len(blob) {
		size := int(binary.BigEndian.Uint32(blob[off : off+4]))
		typ := string(blob[off+4 : off+8])
		bodyStart := off + 8
		boxEnd := off + size
		if size == 1 {
			if off+16 > len(blob) {
				return
			}
			largeSize := binary.BigEndian.Uint64(blob[off+8 : off+16])
			bodyStart = off + 16
			boxEnd = off + int(largeSize)
		} else if size == 0 {
			boxEnd = end
		}
		if boxEnd > end || boxEnd <= off {
			return
		}
		if !fn(box{typ: typ, start: off, bodyStart: bodyStart, end: boxEnd}) {
			return
		}
		off = boxEnd
	}
}

// containerBoxTypes holds box types whose body is itself a sequence of
// boxes, matching the ISO-BMFF box hierarchy down to stbl.
var containerBoxTypes = map[string]bool{
	"moov": true, "trak": true, "mdia": true,
	"minf": true, "stbl": true, "udta": true, "edts": true,
}

func demuxMP4(blob []byte) (*ElementaryStream, error) {
	es := &ElementaryStream{Format: FormatMP4}

	var (
		sampleSizes  []int
		chunkOffsets []int
		samplesPerChunk []stscEntry
		mdatStart, mdatEnd int
		foundStbl bool
	)

	var walk func(start, end int)
	walk = func(start, end int) {
		iterBoxes(blob, start, end, func(b box) bool {
			switch b.typ {
			case "mdat":
				if mdatStart == 0 && mdatEnd == 0 {
					mdatStart, mdatEnd = b.bodyStart, b.end
				}
			case "stsz":
				sampleSizes = parseStsz(blob, b.bodyStart, b.end)
				foundStbl = true
			case "stco":
				chunkOffsets = parseStco(blob, b.bodyStart, b.end, false)
			case "co64":
				chunkOffsets = parseStco(blob, b.bodyStart, b.end, true)
			case "stsc":
				samplesPerChunk = parseStsc(blob, b.bodyStart, b.end)
			default:
				if containerBoxTypes[b.typ] {
					walk(b.bodyStart, b.end)
				}
			}
			return true
		})
	}
	walk(0, len(blob))

	if !foundStbl || len(chunkOffsets) == 0 {
		if mdatEnd > mdatStart {
			es.Bytes = append([]byte(nil), blob[mdatStart:mdatEnd]...)
			es.Samples = []Sample{{Offset: 0, Length: len(es.Bytes)}}
			es.Offsets = []OffsetMapping{{SourceOffset: mdatStart, DemuxedOffset: 0}}
		}
		return es, nil
	}

	offsets := sampleOffsetsFromChunks(chunkOffsets, samplesPerChunk, sampleSizes)
	for i, sz := range sampleSizes {
		if i >= len(offsets) {
			break
		}
		off := offsets[i]
		if off < 0 || off+sz > len(blob) {
			break
		}
		demuxedOff := len(es.Bytes)
		es.Bytes = append(es.Bytes, blob[off:off+sz]...)
		es.Samples = append(es.Samples, Sample{Offset: demuxedOff, Length: sz})
		es.Offsets = append(es.Offsets, OffsetMapping{SourceOffset: off, DemuxedOffset: demuxedOff})
	}
	return es, nil
}

type stscEntry struct {
	firstChunk      int
	samplesPerChunk int
}

func parseStsz(blob []byte, start, end int) []int {
	if start+12 > end || start+12 > len(blob) {
		return nil
	}
	sampleSize := binary.BigEndian.Uint32(blob[start+4 : start+8])
	count := int(binary.BigEndian.Uint32(blob[start+8 : start+12]))
	if sampleSize != 0 {
		sizes := make([]int, count)
		for i := range sizes {
			sizes[i] = int(sampleSize)
		}
		return sizes
	}
	sizes := make([]int, 0, count)
	off := start + 12
	for i := 0; i < count && off+4 <= end && off+4 <= len(blob); i++ {
		sizes = append(sizes, int(binary.BigEndian.Uint32(blob[off:off+4])))
		off += 4
	}
	return sizes
}

func parseStco(blob []byte, start, end int, wide bool) []int {
	if start+8 > end || start+8 > len(blob) {
		return nil
	}
	count := int(binary.BigEndian.Uint32(blob[start+4 : start+8]))
	entrySize := 4
	if wide {
		entrySize = 8
	}
	offs := make([]int, 0, count)
	off := start + 8
	for i := 0; i < count && off+entrySize <= end && off+entrySize <= len(blob); i++ {
		if wide {
			offs = append(offs, int(binary.BigEndian.Uint64(blob[off:off+8])))
		} else {
			offs = append(offs, int(binary.BigEndian.Uint32(blob[off:off+4])))
		}
		off += entrySize
	}
	return offs
}

func parseStsc(blob []byte, start, end int) []stscEntry {
	if start+8 > end || start+8 > len(blob) {
		return nil
	}
	count := int(binary.BigEndian.Uint32(blob[start+4 : start+8]))
	entries := make([]stscEntry, 0, count)
	off := start + 8
	for i := 0; i < count && off+12 <= end && off+12 <= len(blob); i++ {
		entries = append(entries, stscEntry{
			firstChunk:      int(binary.BigEndian.Uint32(blob[off : off+4])),
			samplesPerChunk: int(binary.BigEndian.Uint32(blob[off+4 : off+8])),
		})
		off += 12
	}
	return entries
}

// sampleOffsetsFromChunks expands the stsc run-length table against the
// chunk-offset table to produce one byte offset per sample, in sample
// order, using each sample's size to advance within a chunk.
func sampleOffsetsFromChunks(chunkOffsets []int, stsc []stscEntry, sizes []int) []int {
	if len(stsc) == 0 {
		return nil
	}
	offsets := make([]int, 0, len(sizes))
	sampleIdx := 0
	for chunkIdx := 0; chunkIdx < len(chunkOffsets) && sampleIdx < len(sizes); chunkIdx++ {
		chunkNumber := chunkIdx + 1
		perChunk := stsc[len(stsc)-1].samplesPerChunk
		for i, e := range stsc {
			if chunkNumber < e.firstChunk {
				break
			}
			if i == len(stsc)-1 || chunkNumber < stsc[i+1].firstChunk {
				perChunk = e.samplesPerChunk
			}
		}
		pos := chunkOffsets[chunkIdx]
		for i := 0; i < perChunk && sampleIdx < len(sizes); i++ {
			offsets = append(offsets, pos)
			pos += sizes[sampleIdx]
			sampleIdx++
		}
	}
	return offsets
}
