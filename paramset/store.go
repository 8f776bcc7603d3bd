/*
NAME
  store.go

DESCRIPTION
  store.go provides Store, which maintains the active
  VPS/SPS/PPS/APS and AV1 sequence header for one codec's stream, keyed by
  (kind, id), with last-writer-wins update semantics and
  at-or-before-offset lookup during frame parsing.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package paramset maintains the active parameter sets (VPS/SPS/PPS/APS,
// and the AV1 sequence header) referenced by id during frame header
// parsing.
package paramset

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/xerrors"
)

// Kind distinguishes the parameter-set role.
type Kind int

// Recognized parameter-set kinds.
const (
	KindSPS Kind = iota
	KindPPS
	KindVPS
	KindAPS
	KindSequenceHeader // AV1
)

// ChromaFormat enumerates the chroma subsampling of a SequenceParameters.
type ChromaFormat int

// Recognized chroma formats.
const (
	ChromaMonochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

// SequenceParameters is the common, codec-agnostic projection of an
// SPS/VPS/AV1 sequence header described in section 3.2 of the engine
// specification.
type SequenceParameters struct {
	ID               int
	Profile          int
	Level            int
	Tier             int
	MaxWidth         int
	MaxHeight        int
	BitDepthLuma     int
	BitDepthChroma   int
	ChromaFormat     ChromaFormat
	SuperblockSize   int // AV1 only: 64 or 128
	Features         map[string]bool
}

// PictureParameters is the smaller per-picture config referenced by id
// (H.264/H.265 PPS, H.266 APS variants).
type PictureParameters struct {
	ID             int
	SPSID          int
	Fields         map[string]int
}

type key struct {
	kind Kind
	id   int
}

type entry struct {
	offset int
	value  interface{}
}

// Store maps (kind, id) to the value most recently written at or before a
// given stream offset. A single Store instance is scoped to one codec/one
// stream; the H.264/H.265/H.266 full indexes each create one per parse. Update is last-writer-wins
// per id: a later write at a larger offset replaces the lookup result for
// offsets at or after it, but earlier entries remain addressable by id
// for downstream inspection via History.
type Store struct {
	entries map[key][]entry // in Put order; Lookup assumes ascending offsets
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[key][]entry)}
}

// Put records value as the parameter set of the given kind and id, created
// at byteOffset. Subsequent lookups at or after byteOffset (until a later
// Put for the same kind/id) return this value.
func (s *Store) Put(kind Kind, id int, byteOffset int, value interface{}) {
	k := key{kind, id}
	s.entries[k] = append(s.entries[k], entry{offset: byteOffset, value: value})
}

// Lookup returns the value of the given kind/id most recently written at or
// before byteOffset. It fails with ErrInvalidParameterSetRef if no such
// entry exists.
func (s *Store) Lookup(kind Kind, id int, byteOffset int) (interface{}, error) {
	k := key{kind, id}
	list := s.entries[k]
	var best *entry
	for i := range list {
		if list[i].offset > byteOffset {
			break
		}
		best = &list[i]
	}
	if best == nil {
		return nil, errors.Wrapf(xerrors.ErrInvalidParameterSetRef,
			"paramset: no %s found for id %d at or before offset %d", kindName(kind), id, byteOffset)
	}
	return best.value, nil
}

// History returns every value ever written for kind/id, oldest first,
// regardless of the current lookup offset, so downstream consumers can
// still address superseded parameter sets by id.
func (s *Store) History(kind Kind, id int) []interface{} {
	list := s.entries[key{kind, id}]
	out := make([]interface{}, len(list))
	for i, e := range list {
		out[i] = e.value
	}
	return out
}

func kindName(k Kind) string {
	switch k {
	case KindSPS:
		return "SPS"
	case KindPPS:
		return "PPS"
	case KindVPS:
		return "VPS"
	case KindAPS:
		return "APS"
	case KindSequenceHeader:
		return "sequence header"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}
