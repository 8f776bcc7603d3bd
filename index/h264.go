/*
NAME
  h264.go

DESCRIPTION
  h264.go registers the H.264 IndexExtractor: QuickIndex scans NAL framing
  only, stopping once QuickKeyframeCutoff keyframes have been seen;
  FullIndex additionally feeds SPS/PPS into a paramset.Store and parses
  each slice header into a frame.FrameRecord through a
  driver.ResilientDriver, tracking picture order count across the whole
  stream.

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

	"github.com/hawk90/bitvue-sub000/bits"
	"github.com/hawk90/bitvue-sub000/driver"
	"github.com/hawk90/bitvue-sub000/frame"
	"github.com/hawk90/bitvue-sub000/frame/h264"
	"github.com/hawk90/bitvue-sub000/nal"
	"github.com/hawk90/bitvue-sub000/paramset"
	"github.com/hawk90/bitvue-sub000/unit"
)

type h264Extractor struct{}

func init() { Register(unit.CodecH264, h264Extractor{}) }

func (h264Extractor) QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error) {
	units := nal.Split(stream, unit.CodecH264)
	entries := make([]QuickEntry, 0, len(units))
	keyframes := 0
	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		isKeyframe := u.Type == nal.H264TypeIDR
		entries = append(entries, QuickEntry{
			ByteOffset: u.ByteOffset,
			ByteLength: u.ByteLength,
			IsKeyframe: isKeyframe,
		})
		if progress != nil {
			progress(u.End(), len(stream))
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

func (h264Extractor) FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error) {
	units := nal.Split(stream, unit.CodecH264)
	store := paramset.NewStore()
	poc := h264.NewPOCTracker()

	var records []*frame.FrameRecord
	d := driver.NewResilientDriver()

	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}

		rbsp := bits.RemoveEmulationPrevention(u.Payload(stream))
		nalType := u.Type

		d.HandleUnit(u.ByteOffset, rbsp, func(byteOffset int, rbsp []byte) error {
			switch nalType {
			case nal.H264TypeSPS:
				sps, err := h264.ParseSPS(rbsp)
				if err != nil {
					return err
				}
				store.Put(paramset.KindSPS, sps.ID, byteOffset, sps)
			case nal.H264TypePPS:
				pps, err := h264.ParsePPS(rbsp)
				if err != nil {
					return err
				}
				store.Put(paramset.KindPPS, pps.ID, byteOffset, pps)
			case nal.H264TypeIDR, nal.H264TypeNonIDR:
				rec, err := h264.ParseSliceHeader(rbsp, nalType, store, byteOffset, poc)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}
			return nil
		})

		if progress != nil {
			progress(u.End(), len(stream))
		}
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.New("no slices parsed"), "index: h264 full index")
	}
	return &FullIndexResult{Records: records, Diagnostics: d.Diagnostics()}, nil
}
