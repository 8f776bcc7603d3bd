/*
NAME
  frame_header.go

DESCRIPTION
  frame_header.go parses the leading fields of an AV1 uncompressed_header
  (5.9.2): frame type, show_existing_frame and show_frame, enough to
  populate a frame.FrameRecord. The full header (reference frame
  management, quantization_params, tile_info, loop filter, cdef, etc.) is
  not walked -- QPBase is left at its zero value (see DESIGN.md).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package av1

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
	"github.com/hawk90/bitvue-sub000/frame"
)

// Frame types (6.8.2).
const (
	KeyFrame        = 0
	InterFrame      = 1
	IntraOnlyFrame  = 2
	SwitchFrame     = 3
)

func picType(t int) frame.PictureType {
	switch t {
	case KeyFrame, IntraOnlyFrame:
		return frame.PictureI
	case InterFrame, SwitchFrame:
		return frame.PictureP
	default:
		return frame.PictureUnknown
	}
}

// ParseFrameHeader parses the leading fields of an uncompressed_header
// payload against seq, producing a frame.FrameRecord.
func ParseFrameHeader(payload []byte, seq *SequenceHeader, byteOffset int) (*frame.FrameRecord, error) {
	r := bits.NewReader(payload)

	if seq.FrameIDNumbersPresent {
		// idLen computation and display_frame_id handling for
		// show_existing_frame require state not retained by
		// ParseSequenceHeader's scope; streams using frame id numbers with
		// show_existing_frame are reported with frame type only.
	}

	if !seq.ReducedStillPictureHeader {
		showExisting, err := r.ReadFlag()
		if err != nil {
			return nil, errors.Wrap(err, "av1: reading show_existing_frame")
		}
		if showExisting {
			return &frame.FrameRecord{
				Codec:      "av1",
				Type:       frame.PictureI,
				IsKeyframe: true,
				Width:      seq.Width(),
				Height:     seq.Height(),
				ByteOffset: byteOffset,
				ByteLength: len(payload),
			}, nil
		}
	}

	frameType := KeyFrame
	if !seq.ReducedStillPictureHeader {
		ft, err := r.ReadU(2)
		if err != nil {
			return nil, errors.Wrap(err, "av1: reading frame_type")
		}
		frameType = int(ft)
	}

	if !seq.ReducedStillPictureHeader {
		if _, err := r.ReadFlag(); err != nil { // show_frame
			return nil, errors.Wrap(err, "av1: reading show_frame")
		}
	}

	rec := &frame.FrameRecord{
		Codec:      "av1",
		Type:       picType(frameType),
		IsKeyframe: frameType == KeyFrame,
		Width:      seq.Width(),
		Height:     seq.Height(),
		ByteOffset: byteOffset,
		ByteLength: len(payload),
	}
	return rec, nil
}
