/*
NAME
  leb128.go

DESCRIPTION
  leb128.go provides LEB128 varint encode/decode as used for AV1 OBU size
  fields: 7 payload bits per byte, MSB set as a continuation flag, at most
  8 bytes, yielding a value of at most 56 bits.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/xerrors"
)

const leb128MaxBytes = 8

// leb128MaxValue is the largest value representable in 8*7 = 56 bits.
const leb128MaxValue = (uint64(1) << 56) - 1

// ReadLEB128 reads a LEB128-encoded varint, 7 bits per byte with the MSB as
// a continuation flag, at most 8 bytes. It fails with ErrMalformedLeb128 on
// an over-long encoding (a 9th continuation byte, or a value that would
// exceed 56 bits).
func (r *Reader) ReadLEB128() (uint64, int, error) {
	if !r.ByteAligned() {
		return 0, 0, errors.New("bits: ReadLEB128: reader is not byte aligned")
	}
	var v uint64
	var n int
	for i := 0; i < leb128MaxBytes; i++ {
		b, err := r.ReadU(8)
		if err != nil {
			return 0, 0, errors.Wrap(err, "bits: ReadLEB128")
		}
		n++
		v |= uint64(b&0x7f) << uint(i*7)
		if b&0x80 == 0 {
			if v > leb128MaxValue {
				return 0, 0, errors.Wrapf(xerrors.ErrMalformedLeb128, "bits: ReadLEB128: value exceeds 56 bits")
			}
			return v, n, nil
		}
	}
	return 0, 0, errors.Wrapf(xerrors.ErrMalformedLeb128, "bits: ReadLEB128: more than %d continuation bytes", leb128MaxBytes)
}

// DecodeLEB128 decodes a LEB128 varint from the start of buf, returning the
// value and the number of bytes consumed.
func DecodeLEB128(buf []byte) (uint64, int, error) {
	r := NewReader(buf)
	return r.ReadLEB128()
}

// EncodeLEB128 appends the LEB128 encoding of v to dst and returns the
// extended slice. v must be less than 2^56.
func EncodeLEB128(dst []byte, v uint64) ([]byte, error) {
	if v > leb128MaxValue {
		return nil, errors.Wrapf(xerrors.ErrMalformedLeb128, "bits: EncodeLEB128: value %d exceeds 56 bits", v)
	}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		dst = append(dst, b)
		return dst, nil
	}
}

// LEB128Size returns the number of bytes EncodeLEB128 would produce for v.
func LEB128Size(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}
