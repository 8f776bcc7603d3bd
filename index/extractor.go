/*
NAME
  extractor.go

DESCRIPTION
  extractor.go defines IndexExtractor, the codec-agnostic quick/full
  indexing interface described in section 4.11 of the engine
  specification, dispatching by codec name with progress reporting and
  cancellation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package index provides codec-dispatching frame indexing: a quick index
// (keyframe positions and counts, from NAL/OBU framing alone) and a full
// index (complete per-frame FrameRecord list, parsing every parameter set
// and slice/frame header).
package index

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/driver"
	"github.com/hawk90/bitvue-sub000/frame"
	"github.com/hawk90/bitvue-sub000/unit"
	"github.com/hawk90/bitvue-sub000/xerrors"
)

// Progress is called periodically during indexing with the number of
// bytes processed so far and the stream's total length.
type Progress func(processed, total int)

// QuickKeyframeCutoff is the number of keyframes a quick index stops
// scanning after, per the quick-mode policy: a quick index exists to find
// seek points fast, not to enumerate every frame.
const QuickKeyframeCutoff = 5

// QuickEntry is one entry of a quick index: a unit's position and whether
// it starts a keyframe, without parsing any parameter sets.
type QuickEntry struct {
	ByteOffset int
	ByteLength int
	IsKeyframe bool
	PTS        int64 // presentation timestamp, in container time units; 0 if unknown
}

// QuickIndexResult is a quick index's full return shape: seek points plus
// the stream-level summary a caller needs before deciding whether to run
// a full index.
type QuickIndexResult struct {
	Entries             []QuickEntry
	FileSize            int
	EstimatedFrameCount int
}

// FullIndexResult is a full index's return shape: every parsed frame plus
// the diagnostics ResilientDriver collected for units it could not parse.
type FullIndexResult struct {
	Records     []*frame.FrameRecord
	Diagnostics []driver.Diagnostic
}

// IndexExtractor builds quick and full indexes for one codec's elementary
// stream.
type IndexExtractor interface {
	// QuickIndex scans unit framing only (NAL/OBU headers) to report
	// keyframe positions without parsing parameter sets or slice headers;
	// for VP9, which has no such framing, it reads each frame's
	// uncompressed header.
	// It stops once QuickKeyframeCutoff keyframes have been found, and
	// fails with xerrors.ErrNoKeyframes if the whole stream yields none.
	QuickIndex(ctx context.Context, stream []byte, progress Progress) (*QuickIndexResult, error)

	// FullIndex parses every parameter set and frame/slice header to
	// produce a complete FrameRecord per frame, via a driver.ResilientDriver
	// so a malformed unit contributes a Diagnostic instead of aborting the
	// whole parse.
	FullIndex(ctx context.Context, stream []byte, progress Progress) (*FullIndexResult, error)
}

// ForCodec returns the IndexExtractor registered for codec, or an
// UnsupportedCodec error if none is registered.
func ForCodec(codec unit.Codec) (IndexExtractor, error) {
	e, ok := registry[codec]
	if !ok {
		return nil, errors.WithStack(xerrors.NewUnsupportedCodec(codec.String()))
	}
	return e, nil
}

var registry = map[unit.Codec]IndexExtractor{}

// Register installs an IndexExtractor for codec. Codec packages call this
// from an init function so ForCodec can dispatch without the index
// package importing every codec package directly.
func Register(codec unit.Codec, e IndexExtractor) {
	registry[codec] = e
}

// estimateFrameCount extrapolates a whole-stream frame count from the
// average byte distance between the keyframes a quick index actually
// scanned, once at least two have been found; otherwise the estimate is
// unknown (0).
func estimateFrameCount(entries []QuickEntry, fileSize int) int {
	var first, last, n int
	first, last, n = -1, -1, 0
	for _, e := range entries {
		if !e.IsKeyframe {
			continue
		}
		if first < 0 {
			first = e.ByteOffset
		}
		last = e.ByteOffset
		n++
	}
	if n < 2 || fileSize <= 0 {
		return 0
	}
	avgInterval := (last - first) / (n - 1)
	if avgInterval <= 0 {
		return 0
	}
	return fileSize / avgInterval
}

// finishQuickIndex wraps a completed (or cutoff-terminated) scan's entries
// into a QuickIndexResult, failing with xerrors.ErrNoKeyframes if the scan
// found none at all.
func finishQuickIndex(entries []QuickEntry, fileSize int) (*QuickIndexResult, error) {
	hasKeyframe := false
	for _, e := range entries {
		if e.IsKeyframe {
			hasKeyframe = true
			break
		}
	}
	if !hasKeyframe {
		return nil, errors.WithStack(xerrors.ErrNoKeyframes)
	}
	return &QuickIndexResult{
		Entries:             entries,
		FileSize:            fileSize,
		EstimatedFrameCount: estimateFrameCount(entries, fileSize),
	}, nil
}

// checkCancelled returns xerrors.ErrCancelled wrapped with ctx.Err()'s
// message if ctx has been cancelled, else nil.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(xerrors.ErrCancelled, ctx.Err().Error())
	default:
		return nil
	}
}
