/*
NAME
  header.go

DESCRIPTION
  header.go parses the leading fields of an H.264 slice_header (7.3.3) --
  up to and including the picture-order-count fields -- against an SPS/PPS
  pair resolved from a paramset.Store, and produces a frame.FrameRecord.
  Slice-header fields after picture order count (ref_pic_list_modification,
  pred_weight_table, dec_ref_pic_marking, slice_qp_delta) are not walked:
  QPBase is reported from the PPS's pic_init_qp_minus26 only (see
  DESIGN.md).

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
	"github.com/hawk90/bitvue-sub000/frame"
	"github.com/hawk90/bitvue-sub000/paramset"
)

// sliceType values from table 7-6, reduced to their base five (the +5
// "all slices of this type" variants map onto the same base).
const (
	sliceTypeP  = 0
	sliceTypeB  = 1
	sliceTypeI  = 2
	sliceTypeSP = 3
	sliceTypeSI = 4
)

// SliceHeader holds the slice_header fields parsed up to picture order
// count, sufficient to drive Picture Order Count derivation and to
// populate a frame.FrameRecord.
type SliceHeader struct {
	FirstMbInSlice         int
	SliceType              int
	PPSID                  int
	FrameNum               int
	FieldPic               bool
	BottomField            bool
	IDRPicFlag             bool
	IDRPicID               int
	PicOrderCntLsb         int
	DeltaPicOrderCntBottom int
	DeltaPicOrderCnt       [2]int
}

// IsIDR reports whether this slice belongs to an IDR picture.
func (h *SliceHeader) IsIDR() bool { return h.IDRPicFlag }

func picTypeFromSliceType(t int) frame.PictureType {
	switch t % 5 {
	case sliceTypeI, sliceTypeSI:
		return frame.PictureI
	case sliceTypeP, sliceTypeSP:
		return frame.PictureP
	case sliceTypeB:
		return frame.PictureB
	default:
		return frame.PictureUnknown
	}
}

// ParseSliceHeader parses a slice_header from a NAL unit's RBSP (emulation
// prevention already removed). nalUnitType is the NAL header's nal_unit_type
// and is used only to determine IDR status: only type 5 marks an IDR slice;
// SVC/MVC types such as 19 and 20 are not treated as IDR.
func ParseSliceHeader(rbsp []byte, nalUnitType int, store *paramset.Store, byteOffset int, poc *POCTracker) (*frame.FrameRecord, error) {
	r := bits.NewReader(rbsp)
	h := &SliceHeader{IDRPicFlag: nalUnitType == 5}

	v, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading first_mb_in_slice")
	}
	h.FirstMbInSlice = int(v)

	v, err = r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading slice_type")
	}
	h.SliceType = int(v)

	v, err = r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_parameter_set_id")
	}
	h.PPSID = int(v)

	ppsVal, err := store.Lookup(paramset.KindPPS, h.PPSID, byteOffset)
	if err != nil {
		return nil, errors.Wrap(err, "h264: resolving PPS")
	}
	pps := ppsVal.(*PPS)

	spsVal, err := store.Lookup(paramset.KindSPS, pps.SPSID, byteOffset)
	if err != nil {
		return nil, errors.Wrap(err, "h264: resolving SPS")
	}
	sps := spsVal.(*SPS)

	if sps.SeparateColorPlaneFlag {
		if _, err := r.ReadU(2); err != nil { // colour_plane_id
			return nil, errors.Wrap(err, "h264: reading colour_plane_id")
		}
	}

	fn, err := r.ReadU(sps.Log2MaxFrameNumMinus4 + 4)
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading frame_num")
	}
	h.FrameNum = int(fn)

	if !sps.FrameMbsOnlyFlag {
		fieldPic, err := r.ReadFlag()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading field_pic_flag")
		}
		h.FieldPic = fieldPic
		if h.FieldPic {
			bottom, err := r.ReadFlag()
			if err != nil {
				return nil, errors.Wrap(err, "h264: reading bottom_field_flag")
			}
			h.BottomField = bottom
		}
	}

	if h.IDRPicFlag {
		id, err := r.ReadUE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading idr_pic_id")
		}
		h.IDRPicID = int(id)
	}

	if sps.PicOrderCntType == 0 {
		lsb, err := r.ReadU(sps.Log2MaxPicOrderCntLsbMinus4 + 4)
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading pic_order_cnt_lsb")
		}
		h.PicOrderCntLsb = int(lsb)

		if pps.BottomFieldPicOrderInFramePresentFlag && !h.FieldPic {
			d, err := r.ReadSE()
			if err != nil {
				return nil, errors.Wrap(err, "h264: reading delta_pic_order_cnt_bottom")
			}
			h.DeltaPicOrderCntBottom = int(d)
		}
	} else if sps.PicOrderCntType == 1 && !sps.DeltaPicOrderAlwaysZeroFlag {
		d0, err := r.ReadSE()
		if err != nil {
			return nil, errors.Wrap(err, "h264: reading delta_pic_order_cnt[0]")
		}
		h.DeltaPicOrderCnt[0] = int(d0)

		if pps.BottomFieldPicOrderInFramePresentFlag && !h.FieldPic {
			d1, err := r.ReadSE()
			if err != nil {
				return nil, errors.Wrap(err, "h264: reading delta_pic_order_cnt[1]")
			}
			h.DeltaPicOrderCnt[1] = int(d1)
		}
	}

	picOrderCnt := 0
	if poc != nil {
		picOrderCnt, _, _ = poc.Derive(sps, h)
	}

	rec := &frame.FrameRecord{
		Codec:       "h264",
		Type:        picTypeFromSliceType(h.SliceType),
		IsKeyframe:  h.IDRPicFlag,
		FrameNum:    h.FrameNum,
		PicOrderCnt: picOrderCnt,
		SPSID:       pps.SPSID,
		PPSID:       h.PPSID,
		Width:       sps.Width(),
		Height:      sps.Height(),
		QPBase:      pps.PicInitQPMinus26 + 26,
		ByteOffset:  byteOffset,
		ByteLength:  len(rbsp),
	}
	return rec, nil
}
