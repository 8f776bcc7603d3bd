/*
NAME
  sniff.go

DESCRIPTION
  sniff.go identifies a container format from its leading bytes, applying
  the byte-exact rules of section 6.1 of the engine specification in order,
  first match wins.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package container provides container-format sniffing and the
// ElementaryStream/Sample types shared by the per-format demuxers.
package container

import "bytes"

// Format identifies a recognized container, or FormatRaw if the input is
// treated as a raw elementary stream.
type Format int

// Recognized container formats.
const (
	FormatRaw Format = iota
	FormatIVF
	FormatMPEGTS
	FormatMP4
	FormatMKV
)

// String returns the format's common name.
func (f Format) String() string {
	switch f {
	case FormatIVF:
		return "ivf"
	case FormatMPEGTS:
		return "mpegts"
	case FormatMP4:
		return "mp4"
	case FormatMKV:
		return "mkv"
	default:
		return "raw"
	}
}

var (
	ivfSignature = []byte("DKIF")
	mkvSignature = []byte{0x1A, 0x45, 0xDF, 0xA3}
)

var mp4Brands = [][]byte{
	[]byte("ftyp"), []byte("moov"), []byte("mdat"),
	[]byte("free"), []byte("skip"), []byte("wide"),
}

// tsPacketSize is the fixed MPEG-TS packet size used by the 0x47-at-188
// sniffing rule.
const tsPacketSize = 188

// Sniff identifies the container format of buf by inspecting its leading
// bytes, applying the rules in order; the first match wins. An empty or
// too-short buf yields FormatRaw, never an error or panic.
func Sniff(buf []byte) Format {
	if IsIVF(buf) {
		return FormatIVF
	}
	if IsMPEGTS(buf) {
		return FormatMPEGTS
	}
	if IsMP4(buf) {
		return FormatMP4
	}
	if IsMKV(buf) {
		return FormatMKV
	}
	return FormatRaw
}

// IsIVF reports whether buf begins with the IVF "DKIF" signature.
func IsIVF(buf []byte) bool {
	return len(buf) >= 4 && bytes.Equal(buf[:4], ivfSignature)
}

// IsMPEGTS reports whether buf looks like an MPEG-TS stream: byte 0 and
// byte 188 are both the sync byte 0x47.
func IsMPEGTS(buf []byte) bool {
	return len(buf) > tsPacketSize && buf[0] == 0x47 && buf[tsPacketSize] == 0x47
}

// IsMP4 reports whether bytes 4..8 of buf equal one of the recognized
// ISO-BMFF box types (ftyp, moov, mdat, free, skip, wide).
func IsMP4(buf []byte) bool {
	if len(buf) < 8 {
		return false
	}
	brand := buf[4:8]
	for _, b := range mp4Brands {
		if bytes.Equal(brand, b) {
			return true
		}
	}
	return false
}

// IsMKV reports whether buf begins with the EBML signature used by
// Matroska/WebM.
func IsMKV(buf []byte) bool {
	return len(buf) >= 4 && bytes.Equal(buf[:4], mkvSignature)
}
