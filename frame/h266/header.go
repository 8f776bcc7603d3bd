/*
NAME
  header.go

DESCRIPTION
  header.go parses the H.266 sequence parameter set and picture header
  fields needed to populate a frame.FrameRecord. As with frame/h265, only
  the fields the engine surfaces downstream are walked.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h266

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
	MaxPicWidthInLumaSamples  int
	MaxPicHeightInLumaSamples int
}

// ParseSPS parses an H.266 sequence parameter set RBSP.
func ParseSPS(rbsp []byte) (*SPS, error) {
	r := bits.NewReader(rbsp)
	s := &SPS{}

	id, err := r.ReadU(4)
	if err != nil {
		return nil, errors.Wrap(err, "h266: reading sps_seq_parameter_set_id")
	}
	s.ID = int(id)

	if _, err := r.ReadU(4); err != nil { // sps_video_parameter_set_id
		return nil, errors.Wrap(err, "h266: reading sps_video_parameter_set_id")
	}
	if _, err := r.ReadU(3); err != nil { // sps_max_sublayers_minus1
		return nil, errors.Wrap(err, "h266: reading sps_max_sublayers_minus1")
	}
	if _, err := r.ReadU(2); err != nil { // sps_chroma_format_idc
		return nil, errors.Wrap(err, "h266: reading sps_chroma_format_idc")
	}
	if _, err := r.ReadU(2); err != nil { // sps_log2_ctu_size_minus5
		return nil, errors.Wrap(err, "h266: reading sps_log2_ctu_size_minus5")
	}
	if _, err := r.ReadFlag(); err != nil { // sps_ptl_dpb_hrd_params_present_flag
		return nil, errors.Wrap(err, "h266: reading sps_ptl_dpb_hrd_params_present_flag")
	}

	w, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h266: reading sps_pic_width_max_in_luma_samples")
	}
	s.MaxPicWidthInLumaSamples = int(w)

	h, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h266: reading sps_pic_height_max_in_luma_samples")
	}
	s.MaxPicHeightInLumaSamples = int(h)

	return s, nil
}

// PictureHeader is the leading subset of picture_header_structure fields.
type PictureHeader struct {
	GDRPicFlag bool
	IsIRAP     bool
}

// ParsePictureHeader parses the leading fields of a picture header and,
// together with sps, produces a frame.FrameRecord. nalUnitType is the NAL
// header's nal_unit_type. A GDR picture (nal.H266TypeGDRNUT) is not
// classified as a keyframe: gradual decoder refresh pictures only become
// fully correct after the recovery point, unlike an IDR/CRA picture.
func ParsePictureHeader(rbsp []byte, nalUnitType int, sps *SPS, byteOffset int) (*frame.FrameRecord, error) {
	r := bits.NewReader(rbsp)
	h := &PictureHeader{IsIRAP: nal.IsH266IRAP(nalUnitType)}
	h.GDRPicFlag = nalUnitType == nal.H266TypeGDRNUT

	if _, err := r.ReadFlag(); err != nil { // gdr_or_irap_pic_flag
		return nil, errors.Wrap(err, "h266: reading gdr_or_irap_pic_flag")
	}
	if _, err := r.ReadFlag(); err != nil { // non_ref_pic_flag
		return nil, errors.Wrap(err, "h266: reading non_ref_pic_flag")
	}

	rec := &frame.FrameRecord{
		Codec:      "h266",
		IsKeyframe: h.IsIRAP && !h.GDRPicFlag,
		SPSID:      sps.ID,
		Width:      sps.MaxPicWidthInLumaSamples,
		Height:     sps.MaxPicHeightInLumaSamples,
		ByteOffset: byteOffset,
		ByteLength: len(rbsp),
	}
	return rec, nil
}
