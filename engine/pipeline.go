/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go assembles the pieces index.IndexExtractor, block/av1.Walker,
  framecache.FrameCache and the overlay package's grid builders into one
  end-to-end path: an AV1 elementary stream in, one overlay.FrameGrids set
  per decodable frame OBU out. This is the real per-frame grid production
  path section 4.10 of the engine specification describes; index.FullIndex
  alone only recovers frame headers, not per-block data.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package engine composes the codec, block-walking, caching and overlay
// packages into the full frame-to-grids pipeline bvprobe's -grids mode
// drives. Only AV1 is wired so far (see DESIGN.md for the other codecs'
// status); the shape generalizes to H.264/H.265/H.266/VP9 once each gets
// its own block.BlockTreeWalker.
package engine

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/block"
	blockav1 "github.com/hawk90/bitvue-sub000/block/av1"
	"github.com/hawk90/bitvue-sub000/frame"
	frameav1 "github.com/hawk90/bitvue-sub000/frame/av1"
	"github.com/hawk90/bitvue-sub000/framecache"
	"github.com/hawk90/bitvue-sub000/obu"
	"github.com/hawk90/bitvue-sub000/overlay"
)

// Block sizes for each grid type, per the overlay builder contracts (4.10):
// QP and MV sample at superblock granularity, prediction mode and
// transform size at a finer granularity that shows intra-superblock
// partition structure.
const (
	qpBlockSize     = 64
	mvBlockSize     = 64
	modeBlockSize   = 16
	transformBlockSize = 16

	// mvGranularity is the MvPredictorContext neighbor-tracking granularity;
	// AV1's minimum partition leaf this walker produces is 8x8 (see
	// block/av1.minBlockSize), so neighbors never need finer resolution.
	mvGranularity = 8

	// fallbackBaseQP is used only when a sequence/frame header does not
	// carry a usable base QP. frame/av1.ParseFrameHeader does not walk as
	// far as quantization_params (see its doc comment), so every AV1 frame
	// currently falls back to this value; DESIGN.md tracks completing that
	// parse as the way to remove this constant.
	fallbackBaseQP = 32
)

// FrameGrids bundles every overlay grid built for one decoded frame,
// alongside the frame.FrameRecord header it was built from.
type FrameGrids struct {
	Record    *frame.FrameRecord
	QP        *overlay.QPGrid
	MV        *overlay.MVGrid
	Partition *overlay.PartitionGrid
	Mode      *overlay.PredictionModeGrid
	Transform *overlay.TransformGrid
}

// AV1GridPipeline decodes each AV1 frame's tile data into CodingUnits with
// block/av1.Walker, caching the result in Cache keyed on the tile payload
// bytes, then builds the overlay package's grids from the resulting
// CodingUnit list.
type AV1GridPipeline struct {
	Cache *framecache.FrameCache
}

// NewAV1GridPipeline returns a pipeline backed by a default-capacity
// FrameCache.
func NewAV1GridPipeline() *AV1GridPipeline {
	return &AV1GridPipeline{Cache: framecache.New(framecache.DefaultCapacity)}
}

// Run walks stream's OBUs, decoding each OBU_FRAME against the most
// recently seen sequence header and returning one FrameGrids per frame it
// could decode. A frame OBU seen before any sequence header, or one whose
// header fails to parse, is skipped rather than aborting the whole stream.
func (p *AV1GridPipeline) Run(stream []byte) ([]*FrameGrids, error) {
	units := obu.Split(stream)

	var seq *frameav1.SequenceHeader
	var out []*FrameGrids

	for _, u := range units {
		if u.Err != nil {
			continue
		}
		if u.PayloadOffset+u.PayloadLength > len(stream) {
			continue
		}
		payload := stream[u.PayloadOffset : u.PayloadOffset+u.PayloadLength]

		switch u.Type {
		case obu.TypeSequenceHeader:
			parsed, err := frameav1.ParseSequenceHeader(payload)
			if err != nil {
				continue
			}
			seq = parsed

		case obu.TypeFrame:
			if seq == nil {
				continue
			}
			rec, err := frameav1.ParseFrameHeader(payload, seq, u.ByteOffset)
			if err != nil {
				continue
			}
			grids, err := p.gridsForFrame(rec, payload)
			if err != nil {
				continue
			}
			out = append(out, grids)
		}
	}

	if len(out) == 0 {
		return nil, errors.New("engine: no AV1 frames produced grids")
	}
	return out, nil
}

// gridsForFrame returns the cached CodingUnit list for payload if present,
// otherwise walks it with block/av1.Walker and populates the cache before
// building grids. A walker error poisons the cache: a corrupt tile payload
// should not leave a partially-built entry other callers might read.
func (p *AV1GridPipeline) gridsForFrame(rec *frame.FrameRecord, payload []byte) (*FrameGrids, error) {
	key := framecache.HashKey(payload)

	var units []*block.CodingUnit
	if entry, ok := p.Cache.Get(key); ok {
		units = entry.Units
	} else {
		mvCtx := block.NewMvPredictorContext(rec.Width, rec.Height, mvGranularity)
		w := &blockav1.Walker{
			TileData:    payload,
			FrameWidth:  rec.Width,
			FrameHeight: rec.Height,
			BaseQP:      fallbackBaseQP,
			IsKeyFrame:  rec.IsKeyframe,
			MvCtx:       mvCtx,
		}
		if err := w.Walk(func(cu *block.CodingUnit) { units = append(units, cu) }); err != nil {
			p.Cache.Poison()
			return nil, errors.Wrap(err, "engine: walking AV1 tile data")
		}
		p.Cache.Put(key, framecache.Entry{Record: rec, Units: units})
	}

	return &FrameGrids{
		Record:    rec,
		QP:        overlay.NewQPGrid(rec.Width, rec.Height, qpBlockSize, qpBlockSize, units, fallbackBaseQP),
		MV:        overlay.NewMVGrid(rec.Width, rec.Height, mvBlockSize, mvBlockSize, units, rec.IsKeyframe),
		Partition: overlay.NewPartitionGrid(rec.Width, rec.Height, units),
		Mode:      overlay.NewPredictionModeGrid(rec.Width, rec.Height, modeBlockSize, modeBlockSize, units),
		Transform: overlay.NewTransformGrid(rec.Width, rec.Height, transformBlockSize, transformBlockSize, units),
	}, nil
}
