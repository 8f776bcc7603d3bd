/*
NAME
  h265.go

DESCRIPTION
  h265.go registers the H.265 IndexExtractor: QuickIndex scans NAL framing
  and flags IRAP units as keyframes, stopping once QuickKeyframeCutoff have
  been seen; FullIndex additionally parses SPS into a paramset.Store and
  each slice segment header into a frame.FrameRecord, driving each unit
  through a driver.ResilientDriver.

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
	"github.com/hawk90/bitvue-sub000/frame/h265"
	"github.com/hawk90/bitvue-sub000/nal"
	"github.com/hawk90/bitvue-sub000/paramset"
	"github.com/hawk90/bitvue-sub000/unit"
)

type h265Extractor struct{}

func init() { Register(unit.CodecH265, h265Extractor{}) }

func (h265Extractor) QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error) {
	units := nal.Split(stream, unit.CodecH265)
	entries := make([]QuickEntry, 0, len(units))
	keyframes := 0
	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		isKeyframe := nal.IsH265IRAP(u.Type)
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

func (h265Extractor) FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error) {
	units := nal.Split(stream, unit.CodecH265)
	store := paramset.NewStore()

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
			case nal.H265TypeSPS:
				sps, err := h265.ParseSPS(rbsp)
				if err != nil {
					return err
				}
				store.Put(paramset.KindSPS, sps.ID, byteOffset, sps)
			case nal.H265TypeVPS, nal.H265TypePPS, nal.H265TypeAUD,
				nal.H265TypeEOS, nal.H265TypeEOB, nal.H265TypeFD,
				nal.H265TypePrefixSEI, nal.H265TypeSuffixSEI:
				// Not a picture unit; nothing to derive a FrameRecord from.
			default:
				// Looks up SPS id 0: sufficient for the common single-SPS
				// stream; a multi-SPS stream would need the id carried in
				// the slice segment header extension, which is not parsed.
				val, err := store.Lookup(paramset.KindSPS, 0, byteOffset)
				if err != nil {
					return err // no active SPS yet; cannot derive frame geometry
				}
				sps, ok := val.(*h265.SPS)
				if !ok {
					return errors.New("paramset store returned unexpected type for SPS")
				}
				rec, err := h265.ParseSliceSegmentHeader(rbsp, nalType, sps, byteOffset)
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
		return nil, errors.Wrap(errors.New("no slices parsed"), "index: h265 full index")
	}
	return &FullIndexResult{Records: records, Diagnostics: d.Diagnostics()}, nil
}
