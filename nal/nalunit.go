/*
NAME
  nalunit.go

DESCRIPTION
  nalunit.go declares the NAL unit type constants (ITU-T H.264 Table 7-1,
  and the equivalent H.265/H.266 tables) used to classify units emitted by
  the framer.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nal provides an Annex-B NAL unit framer shared by the
// H.264/H.265/H.266 parsers: it splits a byte stream into NAL units and
// classifies their type. Emulation-prevention bytes are left in place;
// bits.RemoveEmulationPrevention strips them.
package nal

// H264Type enumerates nal_unit_type values for H.264/AVC (ITU-T H.264
// Table 7-1).
const (
	H264TypeUnspecified0 = 0
	H264TypeNonIDR       = 1
	H264TypeDataPartA    = 2
	H264TypeDataPartB    = 3
	H264TypeDataPartC    = 4
	H264TypeIDR          = 5
	H264TypeSEI          = 6
	H264TypeSPS          = 7
	H264TypePPS          = 8
	H264TypeAUD          = 9
	H264TypeEndSequence  = 10
	H264TypeEndStream    = 11
	H264TypeFiller       = 12
	H264TypeSPSExt       = 13
	H264TypePrefix       = 14
	H264TypeSubsetSPS    = 15
)

// H265Type enumerates nal_unit_type values for H.265/HEVC (ITU-T H.265
// Table 7-1).
const (
	H265TypeTrailN    = 0
	H265TypeTrailR    = 1
	H265TypeTSAN      = 2
	H265TypeTSAR      = 3
	H265TypeSTSAN     = 4
	H265TypeSTSAR     = 5
	H265TypeRADLN     = 6
	H265TypeRADLR     = 7
	H265TypeRASLN     = 8
	H265TypeRASLR     = 9
	H265TypeBLAWLP    = 16
	H265TypeBLAWRADL  = 17
	H265TypeBLANLP    = 18
	H265TypeIDRWRADL  = 19
	H265TypeIDRNLP    = 20
	H265TypeCRA       = 21
	H265TypeVPS       = 32
	H265TypeSPS       = 33
	H265TypePPS       = 34
	H265TypeAUD       = 35
	H265TypeEOS       = 36
	H265TypeEOB       = 37
	H265TypeFD        = 38
	H265TypePrefixSEI = 39
	H265TypeSuffixSEI = 40
)

// H266Type enumerates nal_unit_type values for H.266/VVC (ITU-T H.266
// Table 5), including GDR, which is new relative to H.265.
const (
	H266TypeTrailNUT  = 0
	H266TypeSTSANUT   = 2
	H266TypeRADLNUT   = 4
	H266TypeRASLNUT   = 6
	H266TypeIDRWRADL  = 7
	H266TypeIDRNLP    = 8
	H266TypeCRANUT    = 9
	H266TypeGDRNUT    = 10
	H266TypeOPINUT    = 12
	H266TypeDCINUT    = 13
	H266TypeVPSNUT    = 14
	H266TypeSPSNUT    = 15
	H266TypePPSNUT    = 16
	H266TypeAPSNUT    = 17
	H266TypeAUDNUT    = 18
	H266TypeEOSNUT    = 19
	H266TypeEOBNUT    = 20
	H266TypePrefixSEI = 23
	H266TypeSuffixSEI = 24
)

// IsH265IRAP reports whether t is an Intra Random Access Point NAL type for
// H.265 (BLA/CRA/IDR family, values 16..23).
func IsH265IRAP(t int) bool { return t >= 16 && t <= 23 }

// IsH266IRAP reports whether t is an IRAP-class NAL type for H.266,
// including GDR which VVC treats as IRAP-class for random access purposes.
func IsH266IRAP(t int) bool {
	switch t {
	case H266TypeIDRWRADL, H266TypeIDRNLP, H266TypeCRANUT, H266TypeGDRNUT:
		return true
	default:
		return false
	}
}
