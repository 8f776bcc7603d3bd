/*
NAME
  record.go

DESCRIPTION
  record.go defines FrameRecord, the codec-agnostic per-frame header
  projection described in section 3.3 of the engine specification, built
  by each codec's frame package from its own slice/frame/tile-group
  header syntax.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame provides the codec-agnostic FrameRecord type and the
// per-codec header parsers (frame/h264, frame/h265, frame/h266, frame/av1,
// frame/vp9) that populate it from a parameter-set-backed bitstream unit.
package frame

// PictureType enumerates the coding type of a frame/slice.
type PictureType int

// Recognized picture types.
const (
	PictureUnknown PictureType = iota
	PictureI
	PictureP
	PictureB
)

func (p PictureType) String() string {
	switch p {
	case PictureI:
		return "I"
	case PictureP:
		return "P"
	case PictureB:
		return "B"
	default:
		return "unknown"
	}
}

// FrameRecord is the codec-agnostic per-frame header projection: the fields
// every codec's frame/slice header carries in some form, normalized so
// downstream consumers (overlay, index) don't need per-codec knowledge.
type FrameRecord struct {
	Codec          string
	Type           PictureType
	IsKeyframe     bool
	FrameNum       int
	PicOrderCnt    int
	SPSID          int
	PPSID          int
	Width          int
	Height         int
	QPBase         int
	TemporalID     int
	LayerID        int
	SliceQPDelta   int
	ByteOffset     int
	ByteLength     int
}
