/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements the AV1 symbol decoding process (8.2): a
  multi-symbol arithmetic decoder initialized from a byte-aligned
  compressed header or tile payload, using a CDF table per symbol.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package av1ec implements the AV1 bitstream's multi-symbol arithmetic
// decoder (8.2), used to decode tile and compressed-header syntax.
package av1ec

import "errors"

// ErrUnderflow is returned when the decoder runs out of input bits.
var ErrUnderflow = errors.New("av1ec: symbol decoder underflow")

// Decoder is an AV1 symbol decoder (8.2.2 init_symbol).
type Decoder struct {
	buf      []byte
	bitPos   int // absolute bit position consumed so far
	rng      uint32
	dif      uint32
	cnt      int
}

// NewDecoder initializes a symbol decoder over buf, per 8.2.2.
func NewDecoder(buf []byte) *Decoder {
	d := &Decoder{buf: buf, rng: 0x8000}
	numBits := min(15, len(buf)*8)
	buf15 := d.readBits(numBits)
	d.dif = (uint32(1)<<15 - 1) ^ (buf15 << uint(15-numBits))
	d.cnt = numBits - 15
	d.refill()
	return d
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (d *Decoder) readBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		bytePos := d.bitPos / 8
		var bit uint32
		if bytePos < len(d.buf) {
			shift := 7 - uint(d.bitPos%8)
			bit = uint32((d.buf[bytePos] >> shift) & 1)
		}
		v = (v << 1) | bit
		d.bitPos++
	}
	return v
}

func (d *Decoder) refill() {
	for d.cnt < 0 {
		d.dif ^= d.readBits(1)
		d.cnt++
	}
}

// DecodeSymbol decodes one symbol given its cumulative distribution
// function cdf (N+1 entries: for i < N, cdf[i] is the probability that
// the symbol is > i, scaled to 1<<15, strictly decreasing down to
// cdf[N-1] == 0; cdf[N] is the adaptation counter). It returns the decoded symbol index and
// updates cdf in place per the adaptation rule (8.2.6), unless
// adapt is false.
func (d *Decoder) DecodeSymbol(cdf []uint16, adapt bool) int {
	n := len(cdf) - 1
	cur := d.rng
	symbol := -1
	var prev uint32 = d.rng

	for i := 0; i < n; i++ {
		f := uint32(cdf[i])
		v := ((cur >> 8) * (f >> 6))>>1 + 4*uint32(n-i)
		if d.dif>>16 < v {
			prev = v
			continue
		}
		symbol = i
		cur = prev - v
		d.dif -= v << 16
		break
	}
	if symbol == -1 {
		symbol = n - 1
		cur = prev
	}

	d.rng = cur
	d.normalize()

	if adapt {
		adaptCDF(cdf, symbol)
	}
	return symbol
}

// normalize renormalizes rng/dif per 8.2.4.
func (d *Decoder) normalize() {
	for d.rng < 0x8000 {
		d.rng <<= 1
		d.dif = (d.dif << 1) & 0xFFFFFFFF
		d.cnt--
		if d.cnt < 0 {
			bit := d.readBits(1)
			d.dif |= bit
			d.cnt = 0
		}
	}
}

// adaptCDF applies the CDF update rule (8.2.6) after decoding symbol.
func adaptCDF(cdf []uint16, symbol int) {
	n := len(cdf) - 1
	count := cdf[n]
	rate := 3 + boolToInt(count > 15) + boolToInt(count > 31) + min(2, ilog(uint32(n)))
	for i := 0; i < n-1; i++ {
		if i < symbol {
			cdf[i] += (32768 - cdf[i]) >> uint(rate)
		} else {
			cdf[i] -= cdf[i] >> uint(rate)
		}
	}
	if count < 32 {
		cdf[n] = count + 1
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ilog(v uint32) int {
	n := 0
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}
