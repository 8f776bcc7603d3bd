/*
NAME
  pps.go

DESCRIPTION
  pps.go parses the H.264 picture parameter set RBSP fields needed to
  resolve a slice header's base QP.

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

// PPS is the subset of pic_parameter_set_rbsp fields used by slice header
// parsing and QP resolution.
type PPS struct {
	ID                          int
	SPSID                       int
	EntropyCodingModeFlag       bool
	BottomFieldPicOrderInFramePresentFlag bool
	NumSliceGroupsMinus1        int
	PicInitQPMinus26            int
}

// ParsePPS parses a pic_parameter_set_rbsp.
func ParsePPS(rbsp []byte) (*PPS, error) {
	r := bits.NewReader(rbsp)
	p := &PPS{}

	id, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_parameter_set_id")
	}
	p.ID = int(id)

	spsID, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading seq_parameter_set_id")
	}
	p.SPSID = int(spsID)

	ecm, err := r.ReadFlag()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading entropy_coding_mode_flag")
	}
	p.EntropyCodingModeFlag = ecm

	bf, err := r.ReadFlag()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading bottom_field_pic_order_in_frame_present_flag")
	}
	p.BottomFieldPicOrderInFramePresentFlag = bf

	n, err := r.ReadUE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading num_slice_groups_minus1")
	}
	p.NumSliceGroupsMinus1 = int(n)
	// Slice group mapping syntax (present only when NumSliceGroupsMinus1 > 0)
	// is not walked: the engine has no slice-group-map consumer, and the
	// fields after it (num_ref_idx_l0/l1, weighted_pred, pic_init_qp) are
	// read positionally below only when NumSliceGroupsMinus1 == 0.
	if p.NumSliceGroupsMinus1 > 0 {
		return p, nil
	}

	if _, err := r.ReadUE(); err != nil { // num_ref_idx_l0_default_active_minus1
		return nil, errors.Wrap(err, "h264: reading num_ref_idx_l0_default_active_minus1")
	}
	if _, err := r.ReadUE(); err != nil { // num_ref_idx_l1_default_active_minus1
		return nil, errors.Wrap(err, "h264: reading num_ref_idx_l1_default_active_minus1")
	}
	if _, err := r.ReadFlag(); err != nil { // weighted_pred_flag
		return nil, errors.Wrap(err, "h264: reading weighted_pred_flag")
	}
	if _, err := r.ReadU(2); err != nil { // weighted_bipred_idc
		return nil, errors.Wrap(err, "h264: reading weighted_bipred_idc")
	}

	qp, err := r.ReadSE()
	if err != nil {
		return nil, errors.Wrap(err, "h264: reading pic_init_qp_minus26")
	}
	p.PicInitQPMinus26 = int(qp)

	return p, nil
}
