/*
NAME
  block.go

DESCRIPTION
  block.go defines CodingUnit, the per-block record described in section
  3.4 of the engine specification, and MvPredictorContext, the small
  neighbor-cache used while walking a frame's coding tree.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package block defines CodingUnit, the common per-block record walked
// out of a frame's coding tree by a codec-specific BlockTreeWalker, and
// the small per-frame context a walker needs for motion vector prediction.
package block

import "github.com/hawk90/bitvue-sub000/inline"

// PredictionMode is a codec-agnostic classification of a block's
// prediction mode, coarse enough to be meaningful across H.264/H.265/
// H.266 intra+inter mode sets and AV1/VP9 mode sets.
type PredictionMode int

// Recognized prediction modes.
const (
	PredictionUnknown PredictionMode = iota
	PredictionIntra
	PredictionInter
	PredictionSkip
)

// MVMissing is the sentinel motion vector component value reported when a
// prediction list entry has no candidate (an intra block's mv_l1, or a
// uni-predicted block's second list), mirroring the missing-marker used by
// the engine's QP/MV grid sentinels (-1 for QP, this for MV).
const MVMissing = -1 << 30

// MotionVector is a quarter-pel (H.264/H.265/H.266) or eighth-pel (AV1)
// motion vector, reported in the codec's native precision; Overlay
// builders normalize scale when sampling. X/Y hold MVMissing when the
// list entry is unused.
type MotionVector struct {
	X, Y int
}

// Missing reports whether v is the MVMissing sentinel.
func (v MotionVector) Missing() bool { return v.X == MVMissing && v.Y == MVMissing }

// MissingMV is a ready-made missing-sentinel MotionVector.
var MissingMV = MotionVector{X: MVMissing, Y: MVMissing}

// CodingUnit is the common per-block record produced while walking a
// frame's coding tree: a coding unit (H.264/H.265/H.266 macroblock/CU) or
// an AV1/VP9 superblock partition leaf.
//
// MV and RefFrame each carry two prediction-list slots (L0, L1) to record
// bi-prediction; an unused slot holds MissingMV / RefFrame -1. TxSize is
// the side length in luma samples of the block's largest transform unit,
// which may be smaller than Width/Height when a coding unit splits its
// residual into multiple transform blocks.
type CodingUnit struct {
	X, Y          int // top-left position in luma samples
	Width, Height int
	QP            int // effective QP: the tile/slice base QP plus QPDelta
	QPDelta       int
	TxSize        int
	Depth         int // partition-tree recursion depth at which this leaf was produced
	Mode          PredictionMode
	MV            [2]MotionVector
	RefFrame      [2]int
}

// EffectiveQP returns the coding unit's effective QP: base plus QPDelta.
// It exists alongside the QP field (which already stores the resolved
// value) so callers who only have a base QP and a delta can compute the
// same thing without constructing a CodingUnit.
func EffectiveQP(baseQP, qpDelta int) int { return baseQP + qpDelta }

// IsIntra reports whether cu was coded in intra prediction mode.
func (cu *CodingUnit) IsIntra() bool { return cu.Mode == PredictionIntra }

// IsInter reports whether cu was coded in inter prediction mode (including
// skip, which is always inter-predicted).
func (cu *CodingUnit) IsInter() bool { return cu.Mode == PredictionInter || cu.Mode == PredictionSkip }

// IsSkip reports whether cu was coded as a skip block (no residual).
func (cu *CodingUnit) IsSkip() bool { return cu.Mode == PredictionSkip }

// IsBiPredicted reports whether both prediction list slots carry a usable
// motion vector.
func (cu *CodingUnit) IsBiPredicted() bool {
	return cu.IsInter() && !cu.MV[0].Missing() && !cu.MV[1].Missing()
}

// MvPredictorContext caches the left and above neighbor CodingUnits for
// motion vector prediction while a BlockTreeWalker proceeds in raster
// order over a frame.
type MvPredictorContext struct {
	frameWidth, frameHeight int
	aboveRow                []*CodingUnit // indexed by x / minimum block size
	left                    *CodingUnit
	granularity             int
}

// NewMvPredictorContext returns a context for a frame of the given
// dimensions, tracking neighbors at the given minimum block granularity
// (e.g. 4 for H.264/H.265/H.266, 4 for AV1/VP9 as well since both encode
// down to 4x4 partitions).
func NewMvPredictorContext(frameWidth, frameHeight, granularity int) *MvPredictorContext {
	if granularity <= 0 {
		granularity = 4
	}
	cols := (frameWidth + granularity - 1) / granularity
	return &MvPredictorContext{
		frameWidth:  frameWidth,
		frameHeight: frameHeight,
		aboveRow:    make([]*CodingUnit, cols),
		granularity: granularity,
	}
}

// Above returns the neighbor CodingUnit directly above x, or nil if none
// has been recorded yet (top row of the frame).
func (c *MvPredictorContext) Above(x int) *CodingUnit {
	i := x / c.granularity
	if i < 0 || i >= len(c.aboveRow) {
		return nil
	}
	return c.aboveRow[i]
}

// Left returns the most recently recorded left neighbor.
func (c *MvPredictorContext) Left() *CodingUnit { return c.left }

// Observe records cu as the new left neighbor and as the above neighbor
// for every column it spans, so later blocks in the same row and the row
// below see it.
func (c *MvPredictorContext) Observe(cu *CodingUnit) {
	c.left = cu
	startCol := cu.X / c.granularity
	endCol := (cu.X + cu.Width) / c.granularity
	for i := startCol; i < endCol && i < len(c.aboveRow); i++ {
		if i >= 0 {
			c.aboveRow[i] = cu
		}
	}
}

// NewRow clears the left neighbor at the start of a new row of blocks;
// the above-row cache is left intact since it still reflects the row just
// finished.
func (c *MvPredictorContext) NewRow() { c.left = nil }

// CandidateMVs returns the ordered list of spatial motion vector
// candidates for a block starting at x (above, left, in that order, each
// only if inter-predicted and non-missing), used to seed a BlockTreeWalker's
// MV predictor. The common case is zero, one or two candidates, which fits
// inline.Buffer's Cap4 marker without any heap allocation; only a
// pathological frame with more candidate sources than that would spill.
func (c *MvPredictorContext) CandidateMVs(x int) []MotionVector {
	buf := inline.New[MotionVector, inline.Cap4]()
	if above := c.Above(x); above != nil && above.IsInter() && !above.MV[0].Missing() {
		buf.Push(above.MV[0])
	}
	if c.left != nil && c.left.IsInter() && !c.left.MV[0].Missing() {
		buf.Push(c.left.MV[0])
	}
	return buf.Slice()
}
