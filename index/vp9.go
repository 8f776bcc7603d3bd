/*
NAME
  vp9.go

DESCRIPTION
  vp9.go registers the VP9 IndexExtractor. Unlike H.264/H.265/H.266 (NAL
  start codes) and AV1 (self-delimiting OBUs), VP9 has no in-band unit
  framing: a VP9 bitstream is only ever frame-delimited by its container
  (IVF's per-frame size header, or WebM/MKV block boundaries). This
  extractor therefore treats the buffer it is given as a single VP9
  superframe -- the unit a container sample boundary actually delimits --
  and splits it with frame.vp9.SplitSuperframe rather than scanning for
  in-band markers across a multi-sample concatenation. QuickIndex stops
  once QuickKeyframeCutoff keyframes have been seen; FullIndex drives each
  constituent frame through a driver.ResilientDriver.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package index

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/driver"
	"github.com/hawk90/bitvue-sub000/frame"
	"github.com/hawk90/bitvue-sub000/frame/vp9"
	"github.com/hawk90/bitvue-sub000/unit"
)

type vp9Extractor struct{}

func init() { Register(unit.CodecVP9, vp9Extractor{}) }

func (vp9Extractor) QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error) {
	frames := vp9.SplitSuperframe(stream)
	entries := make([]QuickEntry, 0, len(frames))
	keyframes := 0
	off := 0
	for _, f := range frames {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		rec, err := vp9.ParseFrameHeader(f)
		isKeyframe := err == nil && rec.IsKeyframe
		entries = append(entries, QuickEntry{
			ByteOffset: off,
			ByteLength: len(f),
			IsKeyframe: isKeyframe,
		})
		off += len(f)
		if progress != nil {
			progress(off, len(stream))
		}
		if isKeyframe {
			keyframes++
			if keyframes >= QuickKeyframeCutoff {
				break
			}
		}
	}
	return finishQuickIndex(entries, len(stream))
}

func (vp9Extractor) FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error) {
	frames := vp9.SplitSuperframe(stream)
	var records []*frame.FrameRecord
	d := driver.NewResilientDriver()
	off := 0
	for _, f := range frames {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		byteOffset := off
		payload := f
		d.HandleUnit(byteOffset, payload, func(byteOffset int, payload []byte) error {
			rec, err := vp9.ParseFrameHeader(payload)
			if err != nil {
				return err
			}
			rec.ByteOffset = byteOffset
			records = append(records, rec)
			return nil
		})
		off += len(f)
		if progress != nil {
			progress(off, len(stream))
		}
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.New("no frames parsed"), "index: vp9 full index")
	}
	return &FullIndexResult{Records: records, Diagnostics: d.Diagnostics()}, nil
}
