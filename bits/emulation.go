/*
NAME
  emulation.go

DESCRIPTION
  emulation.go removes H.264/H.265/H.266 emulation-prevention bytes from a
  NAL unit payload, turning it into the Raw Byte Sequence Payload (RBSP)
  that bit-level parsing actually operates on. Every 00 00 03 triplet has
  its trailing 03 dropped; this is idempotent on already-clean input.

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

// RemoveEmulationPrevention returns a copy of buf with every 00 00 03
// triplet's trailing 03 byte dropped, per ITU-T H.264 section 7.4.1.1 (and
// the equivalent clauses in H.265/H.266). Input containing no 00 00 03
// sequence is returned unchanged, so a second call is a no-op copy
// whenever the first call's result contains no such sequence.
func RemoveEmulationPrevention(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	zeros := 0
	for _, b := range buf {
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
		out = append(out, b)
	}
	return out
}

// InsertEmulationPrevention returns a copy of buf with a 0x03 byte inserted
// after every 00 00 run immediately before a byte <= 0x03, the inverse
// operation used when constructing Annex-B streams. Provided for round-trip
// testing of RemoveEmulationPrevention.
func InsertEmulationPrevention(buf []byte) []byte {
	out := make([]byte, 0, len(buf)+len(buf)/2+1)
	zeros := 0
	for _, b := range buf {
		if zeros >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
