/*
NAME
  errors.go

DESCRIPTION
  errors.go declares the typed error taxonomy surfaced at the engine's public
  boundary, per section 6.5 of the engine specification. Internal code wraps
  these sentinels with github.com/pkg/errors to attach byte-offset context;
  callers can still recover the sentinel with errors.Is.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package xerrors declares the engine's public error taxonomy.
package xerrors

import "errors"

// Sentinel errors forming the public taxonomy. Internal code wraps these
// with errors.Wrap/Wrapf (github.com/pkg/errors) to attach position and
// enclosing-record context without losing errors.Is compatibility.
var (
	ErrUnexpectedEndOfStream    = errors.New("unexpected end of stream")
	ErrMalformedExpGolomb       = errors.New("malformed exp-golomb code")
	ErrMalformedLeb128          = errors.New("malformed leb128 varint")
	ErrMalformedNalHeader       = errors.New("malformed NAL unit header")
	ErrMalformedObuHeader       = errors.New("malformed OBU header")
	ErrInvalidParameterSetRef   = errors.New("reference to unknown parameter set id")
	ErrTruncatedSymbolStream    = errors.New("symbol stream truncated mid-decode")
	ErrNoKeyframes              = errors.New("no keyframes found")
	ErrCancelled                = errors.New("operation cancelled")
	ErrCachePoisoned            = errors.New("coding-unit cache poisoned")
	ErrAllocationFailed         = errors.New("allocation failed")
	ErrCapacityOverflow         = errors.New("capacity overflow")
)

// UnsupportedCodec is returned when a codec name or extension cannot be
// mapped to an IndexExtractor. It carries the unrecognized name so callers
// can report it.
type UnsupportedCodec struct {
	Name string
}

func (e *UnsupportedCodec) Error() string {
	return "unsupported codec: " + e.Name
}

// NewUnsupportedCodec returns an UnsupportedCodec error for name.
func NewUnsupportedCodec(name string) error {
	return &UnsupportedCodec{Name: name}
}
