/*
NAME
  sps.go

DESCRIPTION
  sps.go parses the H.264 sequence parameter set RBSP, grounded on the
  syntax walked by codec/h264/h264dec's NewSPS, but read directly against
  the engine's own bits.Reader so the result can be stored in a generic
  paramset.Store alongside every other codec's parameter sets.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
)

// Chroma formats as used by chroma_format_idc (7.4.2.1.1).
const (
	ChromaMonochrome = 0
	Chroma420        = 1
	Chroma422        = 2
	Chroma444        = 3
)

// SPS is the subset of sequence_parameter_set_rbsp fields needed to parse
// slice headers and compute picture order count.
type SPS struct {
	ID                                int
	ProfileIDC                        int
	LevelIDC                          int
	ChromaFormatIDC                   int
	SeparateColorPlaneFlag            bool
	Log2MaxFrameNumMinus4             int
	PicOrderCntType                   int
	Log2MaxPicOrderCntLsbMinus4       int
	DeltaPicOrderAlwaysZeroFlag       bool
	OffsetForNonRefPic                int
	OffsetForTopToBottomField         int
	NumRefFramesInPicOrderCntCycle    int
	OffsetForRefFrame                []int
	FrameMbsOnlyFlag                  bool
	PicWidthInMbsMinus1               int
	PicHeightInMapUnitsMinus1         int
}

// Width returns the coded picture width in luma samples.
func (s *SPS) Width() int { return (s.PicWidthInMbsMinus1 + 1) * 16 }

// Height returns the coded frame height in luma samples: map units are
// doubled when frame_mbs_only_flag is 0. Cropping is not applied.
func (s *SPS) Height() int {
	mul := 1
	if !s.FrameMbsOnlyFlag {
		mul = 2
	}
	return mul * (s.PicHeightInMapUnitsMinus1 + 1) * 16
}

// MaxFrameNum returns MaxFrameNum as defined in 7.4.2.1.1.
func (s *SPS) MaxFrameNum() int { return 1 << uint(s.Log2MaxFrameNumMinus4+4) }

// MaxPicOrderCntLsb returns MaxPicOrderCntLsb as defined in 7.4.2.1.1.
func (s *SPS) MaxPicOrderCntLsb() int { return 1 << uint(s.Log2MaxPicOrderCntLsbMinus4+4) }

// ParseSPS parses a sequence_parameter_set_rbsp (with emulation prevention
// already removed) into an SPS.
func ParseSPS(rbsp []byte) (*SPS, error) {
	r := bits.NewReader(rbsp)
	s := &SPS{}

	profile, err := r.ReadU(8)
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading profile_idc")
	}
	s.ProfileIDC = int(profile)

	if _, err := r.ReadU(8); err != nil { // constraint flags + reserved
		return nil, errors.Wrap(err, "h264: reading constraint flags")
	}
	level, err := r.ReadU(8)
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading level_idc")
	}
	s.LevelIDC = int(level)

	id, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading seq_parameter_set_id")
	}
	s.ID = int(id)

	s.ChromaFormatIDC = Chroma420
	switch s.ProfileIDC {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135:
		cf, err := r.ReadUE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading chroma_format_idc")
		}
		s.ChromaFormatIDC = int(cf)
		if s.ChromaFormatIDC == Chroma444 {
			flag, err := r.ReadFlag()
			if err != nil {
				return nil, errors.Wrap(err, "h264: reading separate_colour_plane_flag")
			}
			s.SeparateColorPlaneFlag = flag
		}
		if _, err := r.ReadUE(); err != nil { // bit_depth_luma_minus8
			return nil, errors.Wrap(err, "h264: reading bit_depth_luma_minus8")
		}
		if _, err := r.ReadUE(); err != nil { // bit_depth_chroma_minus8
			return nil, errors.Wrap(err, "h264: reading bit_depth_chroma_minus8")
		}
		if _, err := r.ReadFlag(); err != nil { // qpprime_y_zero_transform_bypass_flag
			return nil, errors.Wrap(err, "h264: reading qpprime_y_zero_transform_bypass_flag")
		}
		scaling, err := r.ReadFlag()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading seq_scaling_matrix_present_flag")
		}
		if scaling {
			n := 8
			if s.ChromaFormatIDC == Chroma444 {
				n = 12
			}
			if err := skipScalingLists(r, n); err != nil {
				return nil, err
			}
		}
	}

	log2FrameNum, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading log2_max_frame_num_minus4")
	}
	s.Log2MaxFrameNumMinus4 = int(log2FrameNum)

	pocType, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_order_cnt_type")
	}
	s.PicOrderCntType = int(pocType)

	switch s.PicOrderCntType {
	case 0:
		v, err := r.ReadUE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading log2_max_pic_order_cnt_lsb_minus4")
		}
		s.Log2MaxPicOrderCntLsbMinus4 = int(v)
	case 1:
		flag, err := r.ReadFlag()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading delta_pic_order_always_zero_flag")
		}
		s.DeltaPicOrderAlwaysZeroFlag = flag

		off, err := r.ReadSE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading offset_for_non_ref_pic")
		}
		s.OffsetForNonRefPic = int(off)

		off, err = r.ReadSE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading offset_for_top_to_bottom_field")
		}
		s.OffsetForTopToBottomField = int(off)

		n, err := r.ReadUE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading num_ref_frames_in_pic_order_cnt_cycle")
		}
		s.NumRefFramesInPicOrderCntCycle = int(n)
		s.OffsetForRefFrame = make([]int, s.NumRefFramesInPicOrderCntCycle)
		for i := range s.OffsetForRefFrame {
			v, err := r.ReadSE()
			if err != nil {
				return nil, errors.Wrap(err, "h264: reading offset_for_ref_frame")
			}
			s.OffsetForRefFrame[i] = int(v)
		}
	}

	if _, err := r.ReadUE(); err != nil { // max_num_ref_frames
		return nil, errors.Wrap(err, "h264: reading max_num_ref_frames")
	}
	if _, err := r.ReadFlag(); err != nil { // gaps_in_frame_num_value_allowed_flag
		return nil, errors.Wrap(err, "h264: reading gaps_in_frame_num_value_allowed_flag")
	}

	w, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_width_in_mbs_minus1")
	}
	s.PicWidthInMbsMinus1 = int(w)

	h, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_height_in_map_units_minus1")
	}
	s.PicHeightInMapUnitsMinus1 = int(h)

	frameMbsOnly, err := r.ReadFlag()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading frame_mbs_only_flag")
	}
	s.FrameMbsOnlyFlag = frameMbsOnly

	return s, nil
}

// skipScalingLists discards n scaling list entries; the engine does not
// currently surface scaling-matrix contents (see DESIGN.md).
func skipScalingLists(r *bits.Reader, n int) error {
	for i := 0; i < n; i++ {
		present, err := r.ReadFlag()
		if err != nil {
			return errors.Wrap(err, "h264: reading scaling_list_present_flag")
		}
		if !present {
			continue
		}
		size := 16
		if i >= 6 {
			size = 64
		}
		lastScale, nextScale := 8, 8
		for j := 0; j < size; j++ {
			if nextScale != 0 {
				delta, err := r.ReadSE()
				if err != nil {
					return errors.Wrap(err, "h264: reading delta_scale")
				}
				nextScale = (lastScale + int(delta) + 256) % 256
			}
			if nextScale != 0 {
				lastScale = nextScale
			}
		}
	}
	return nil
}
