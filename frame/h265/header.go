/*
NAME
  header.go

DESCRIPTION
  header.go parses the H.265 sequence parameter set and slice segment
  header fields needed to populate a frame.FrameRecord: picture dimensions,
  slice type and IRAP classification. Fields not consumed downstream
  (short-term/long-term reference picture sets, scaling lists, VUI) are
  skipped rather than fully walked -- see DESIGN.md.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h265

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
	"github.com/hawk90/bitvue-sub000/frame"
	"github.com/hawk90/bitvue-sub000/nal"
)

// SPS is the subset of seq_parameter_set_rbsp fields needed for frame
// geometry.
type SPS struct {
	ID                     int
	ChromaFormatIDC        int
	PicWidthInLumaSamples  int
	PicHeightInLumaSamples int
}

// ParseSPS parses an H.265 sequence parameter set RBSP.
func ParseSPS(rbsp []byte) (*SPS, error) {
	r := bits.NewReader(rbsp)
	s := &SPS{}

	if _, err := r.ReadU(4); err != nil { // sps_video_parameter_set_id
		return nil, errors.Wrap(err, "h265: reading sps_video_parameter_set_id")
	}
	if _, err := r.ReadU(3); err != nil { // sps_max_sub_layers_minus1
		return nil, errors.Wrap(err, "h265: reading sps_max_sub_layers_minus1")
	}
	if _, err := r.ReadFlag(); err != nil { // sps_temporal_id_nesting_flag
		return nil, errors.Wrap(err, "h265: reading sps_temporal_id_nesting_flag")
	}
	// profile_tier_level(1, sps_max_sub_layers_minus1): fixed 12-byte
	// general profile/tier/level block; per-sub-layer fields are skipped
	// since the engine does not surface profile/tier details. Read as
	// three 32-bit words since ReadU caps at 32 bits.
	for i := 0; i < 3; i++ {
		if _, err := r.ReadU(32); err != nil {
			return nil, errors.Wrap(err, "h265: reading profile_tier_level")
		}
	}

	id, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading sps_seq_parameter_set_id")
	}
	s.ID = int(id)

	cf, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading chroma_format_idc")
	}
	s.ChromaFormatIDC = int(cf)
	if s.ChromaFormatIDC == 3 {
		if _, err := r.ReadFlag(); err != nil { // separate_colour_plane_flag
			return nil, errors.Wrap(err, "h265: reading separate_colour_plane_flag")
		}
	}

	w, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading pic_width_in_luma_samples")
	}
	s.PicWidthInLumaSamples = int(w)

	h, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading pic_height_in_luma_samples")
	}
	s.PicHeightInLumaSamples = int(h)

	return s, nil
}

// SliceSegmentHeader is the leading subset of slice_segment_header fields.
type SliceSegmentHeader struct {
	FirstSliceSegmentInPicFlag bool
	SliceType                  int
	IsIRAP                     bool
}

// Slice types (7.4.7.1).
const (
	sliceB = 0
	sliceP = 1
	sliceI = 2
)

func picType(t int) frame.PictureType {
	switch t {
	case sliceI:
		return frame.PictureI
	case sliceP:
		return frame.PictureP
	case sliceB:
		return frame.PictureB
	default:
		return frame.PictureUnknown
	}
}

// ParseSliceSegmentHeader parses the leading fields of a slice_segment_header
// and, together with sps, produces a frame.FrameRecord. nalUnitType is the
// NAL header's nal_unit_type, used for IRAP classification.
func ParseSliceSegmentHeader(rbsp []byte, nalUnitType int, sps *SPS, byteOffset int) (*frame.FrameRecord, error) {
	r := bits.NewReader(rbsp)
	h := &SliceSegmentHeader{IsIRAP: nal.IsH265IRAP(nalUnitType)}

	first, err := r.ReadFlag()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading first_slice_segment_in_pic_flag")
	}
	h.FirstSliceSegmentInPicFlag = first

	if h.IsIRAP {
		if _, err := r.ReadFlag(); err != nil { // no_output_of_prior_pics_flag
			return nil, errors.Wrap(err, "h265: reading no_output_of_prior_pics_flag")
		}
	}
	if _, err := r.ReadUE(); err != nil { // slice_pic_parameter_set_id
		return nil, errors.Wrap(err, "h265: reading slice_pic_parameter_set_id")
	}

	if !h.FirstSliceSegmentInPicFlag {
		// dependent_slice_segments_enabled_flag and slice_segment_address
		// require the PPS and CtbAddr derivation; the engine only reports
		// FrameRecord for the first slice segment of a picture, so later
		// segments are not walked further.
		return &frame.FrameRecord{
			Codec:      "h265",
			ByteOffset: byteOffset,
			ByteLength: len(rbsp),
		}, nil
	}

	st, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h265: reading slice_type")
	}
	h.SliceType = int(st)

	rec := &frame.FrameRecord{
		Codec:      "h265",
		Type:       picType(h.SliceType),
		IsKeyframe: h.IsIRAP,
		SPSID:      sps.ID,
		Width:      sps.PicWidthInLumaSamples,
		Height:     sps.PicHeightInLumaSamples,
		ByteOffset: byteOffset,
		ByteLength: len(rbsp),
	}
	return rec, nil
}
