/*
NAME
  h266.go

DESCRIPTION
  h266.go registers the H.266 IndexExtractor: QuickIndex scans NAL framing
  and flags IRAP units as keyframes, stopping once QuickKeyframeCutoff have
  been seen; FullIndex additionally parses SPS into a paramset.Store and
  each picture header into a frame.FrameRecord, driving each unit through a
  driver.ResilientDriver.

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
	"github.com/hawk90/bitvue-sub000/frame/h266"
	"github.com/hawk90/bitvue-sub000/nal"
	"github.com/hawk90/bitvue-sub000/paramset"
	"github.com/hawk90/bitvue-sub000/unit"
)

type h266Extractor struct{}

func init() { Register(unit.CodecH266, h266Extractor{}) }

func (h266Extractor) QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error) {
	units := nal.Split(stream, unit.CodecH266)
	entries := make([]QuickEntry, 0, len(units))
	keyframes := 0
	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		isKeyframe := nal.IsH266IRAP(u.Type) && u.Type != nal.H266TypeGDRNUT
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

func (h266Extractor) FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error) {
	units := nal.Split(stream, unit.CodecH266)
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
			case nal.H266TypeSPSNUT:
				sps, err := h266.ParseSPS(rbsp)
				if err != nil {
					return err
				}
				store.Put(paramset.KindSPS, sps.ID, byteOffset, sps)
			case nal.H266TypeVPSNUT, nal.H266TypePPSNUT, nal.H266TypeAPSNUT,
				nal.H266TypeAUDNUT, nal.H266TypeEOSNUT, nal.H266TypeEOBNUT,
				nal.H266TypePrefixSEI, nal.H266TypeSuffixSEI, nal.H266TypeOPINUT,
				nal.H266TypeDCINUT:
				// Not a picture unit; nothing to derive a FrameRecord from.
			default:
				val, err := store.Lookup(paramset.KindSPS, 0, byteOffset)
				if err != nil {
					return err // no active SPS yet; cannot derive frame geometry
				}
				sps, ok := val.(*h266.SPS)
				if !ok {
					return errors.New("paramset store returned unexpected type for SPS")
				}
				rec, err := h266.ParsePictureHeader(rbsp, nalType, sps, byteOffset)
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
		return nil, errors.Wrap(errors.New("no slices parsed"), "index: h266 full index")
	}
	return &FullIndexResult{Records: records, Diagnostics: d.Diagnostics()}, nil
}
