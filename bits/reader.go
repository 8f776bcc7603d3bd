/*
NAME
  reader.go

DESCRIPTION
  reader.go provides a big-endian, bit-granular reader over an immutable
  byte slice, with byte-tracked offset, unsigned/signed Exp-Golomb codes,
  fixed-width unsigned reads and LEB128 varints. It generalizes the
  io.Reader-backed bits.BitReader used by the H.264 decoder so that every
  codec parser in this engine shares one reader implementation and so that
  higher layers can recover the exact byte offset of any syntax element for
  a hex-view round trip.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a big-endian bit reader over a byte slice, used by
// every codec parser in the engine to consume fixed-width fields, Exp-Golomb
// codes and LEB128 varints while tracking an exact byte offset.
package bits

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/xerrors"
)

// Reader reads bits big-endian from an immutable byte slice. The zero value
// is not usable; construct with NewReader.
type Reader struct {
	buf     []byte
	bytePos int // index of the next unread byte in buf
	bitPos  int // bit offset within the byte at bytePos, in [0, 8)
}

// NewReader returns a Reader positioned at the start of buf. buf is not
// copied; the caller must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// BytePos returns the byte offset of the reader's current position. If
// bitPos is non-zero, the current byte is only partially consumed.
func (r *Reader) BytePos() int { return r.bytePos }

// BitPos returns the bit offset within the current byte, in [0, 8).
func (r *Reader) BitPos() int { return r.bitPos }

// BitsRemaining returns the number of bits left to read.
func (r *Reader) BitsRemaining() int {
	return (len(r.buf)-r.bytePos)*8 - r.bitPos
}

// ReadU consumes n bits, n in [0, 32], big-endian, returning them
// zero-extended in a uint32 (n == 0 consumes nothing and returns 0). It fails with ErrUnexpectedEndOfStream if
// insufficient bits remain.
func (r *Reader) ReadU(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, errors.Errorf("bits: ReadU: n=%d out of range [0,32]", n)
	}
	if r.BitsRemaining() < n {
		return 0, errors.Wrapf(xerrors.ErrUnexpectedEndOfStream,
			"bits: need %d bits, have %d at byte %d", n, r.BitsRemaining(), r.bytePos)
	}
	var v uint32
	remaining := n
	for remaining > 0 {
		avail := 8 - r.bitPos
		take := avail
		if take > remaining {
			take = remaining
		}
		cur := r.buf[r.bytePos]
		shift := avail - take
		mask := byte((1 << uint(take)) - 1)
		bitsVal := (cur >> uint(shift)) & mask
		v = (v << uint(take)) | uint32(bitsVal)
		r.bitPos += take
		remaining -= take
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return v, nil
}

// ReadFlag reads a single bit and returns it as a bool.
func (r *Reader) ReadFlag() (bool, error) {
	v, err := r.ReadU(1)
	return v == 1, err
}

// ReadUE reads an unsigned Exp-Golomb coded value: count k leading zero
// bits, then read k+1 bits and return value-1, i.e. 2^k - 1 + read(k). k is
// bounded to 32; exceeding that bound fails with ErrMalformedExpGolomb.
func (r *Reader) ReadUE() (uint32, error) {
	var k int
	for {
		b, err := r.ReadU(1)
		if err != nil {
			return 0, errors.Wrap(err, "bits: ReadUE: counting leading zeros")
		}
		if b == 1 {
			break
		}
		k++
		if k > 32 {
			return 0, errors.Wrapf(xerrors.ErrMalformedExpGolomb,
				"bits: ReadUE: leading-zero run exceeds 32 bits at byte %d", r.bytePos)
		}
	}
	if k == 0 {
		return 0, nil
	}
	rem, err := r.ReadU(k)
	if err != nil {
		return 0, errors.Wrap(err, "bits: ReadUE: reading remainder bits")
	}
	return (uint32(1)<<uint(k) - 1) + rem, nil
}

// ReadSE reads a signed Exp-Golomb coded value by reading an unsigned
// Exp-Golomb value v and mapping v to (-1)^(v+1) * ceil(v/2).
func (r *Reader) ReadSE() (int32, error) {
	v, err := r.ReadUE()
	if err != nil {
		return 0, errors.Wrap(err, "bits: ReadSE")
	}
	if v&1 == 1 {
		return int32((v + 1) / 2), nil
	}
	return -int32(v / 2), nil
}

// ByteAlign advances the reader to the next byte boundary, discarding any
// partially read bits. It is a no-op if already byte aligned.
func (r *Reader) ByteAlign() {
	if r.bitPos != 0 {
		r.bitPos = 0
		r.bytePos++
	}
}

// ByteAligned reports whether the reader sits exactly on a byte boundary.
func (r *Reader) ByteAligned() bool { return r.bitPos == 0 }

// MoreRBSPData reports whether there are more RBSP syntax elements to read,
// i.e. whether anything other than the rbsp_trailing_bits pattern (a single
// 1 bit followed by zero or more 0 bits to the next byte boundary) remains.
func (r *Reader) MoreRBSPData() bool {
	if r.BitsRemaining() <= 0 {
		return false
	}
	// Find the last set bit in the remaining buffer; if it is the very
	// next bit and nothing but zero bits follow it, we are at the
	// trailing-bits pattern.
	save := *r
	defer func() { *r = save }()

	lastByte := len(r.buf) - 1
	for lastByte > r.bytePos && r.buf[lastByte] == 0 {
		lastByte--
	}
	if lastByte < r.bytePos {
		return false
	}
	b := r.buf[lastByte]
	trailingOneBit := 0
	for i := 0; i < 8; i++ {
		if b&(1<<uint(i)) != 0 {
			trailingOneBit = i
			break
		}
	}
	lastSetBitPos := lastByte*8 + (7 - trailingOneBit)
	curBitPos := r.bytePos*8 + r.bitPos
	return curBitPos < lastSetBitPos
}
