/*
NAME
  av1.go

DESCRIPTION
  av1.go registers the AV1 IndexExtractor: QuickIndex scans OBU framing
  and flags key frames, stopping once QuickKeyframeCutoff have been seen;
  FullIndex tracks the active sequence header OBU and parses each
  frame/frame-header OBU into a frame.FrameRecord, driving each unit
  through a driver.ResilientDriver so a malformed OBU contributes a
  Diagnostic instead of aborting the whole parse.

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
	"github.com/hawk90/bitvue-sub000/frame/av1"
	"github.com/hawk90/bitvue-sub000/obu"
	"github.com/hawk90/bitvue-sub000/unit"
)

type av1Extractor struct{}

func init() { Register(unit.CodecAV1, av1Extractor{}) }

// QuickIndex flags a sequence_header OBU's position as a keyframe
// boundary: a key frame is always preceded by (or carries) a sequence
// header in a conformant low-overhead bitstream, and QuickIndex does not
// parse frame headers to check frame_type directly.
func (av1Extractor) QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error) {
	units := obu.Split(stream)
	entries := make([]QuickEntry, 0, len(units))
	keyframes := 0
	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		isKeyframe := u.Type == obu.TypeSequenceHeader
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

func (av1Extractor) FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error) {
	units := obu.Split(stream)

	var seq *av1.SequenceHeader
	var records []*frame.FrameRecord
	d := driver.NewResilientDriver()

	for _, u := range units {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		if u.Err != nil {
			d.Warn(u.ByteOffset, u.Err.Error())
			continue
		}
		if u.PayloadOffset+u.PayloadLength > len(stream) {
			d.Warn(u.ByteOffset, "obu payload exceeds stream bounds")
			continue
		}
		payload := stream[u.PayloadOffset : u.PayloadOffset+u.PayloadLength]
		obuType := u.Type

		d.HandleUnit(u.ByteOffset, payload, func(byteOffset int, payload []byte) error {
			switch obuType {
			case obu.TypeSequenceHeader:
				parsed, err := av1.ParseSequenceHeader(payload)
				if err != nil {
					return err
				}
				seq = parsed
			case obu.TypeFrameHeader, obu.TypeFrame:
				if seq == nil {
					return errors.New("no sequence header seen yet")
				}
				rec, err := av1.ParseFrameHeader(payload, seq, byteOffset)
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
		return nil, errors.Wrap(errors.New("no frames parsed"), "index: av1 full index")
	}
	return &FullIndexResult{Records: records, Diagnostics: d.Diagnostics()}, nil
}
