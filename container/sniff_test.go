package container

import "testing"

func ivfHeader() []byte {
	h := make([]byte, 32)
	copy(h[0:4], "DKIF")
	h[8], h[9] = 'A', 'V'
	copy(h[8:12], "AV01")
	return h
}

func TestSniffIVF(t *testing.T) {
	buf := ivfHeader()
	if !IsIVF(buf) {
		t.Fatal("expected IsIVF true")
	}
	if IsMPEGTS(buf) || IsMP4(buf) || IsMKV(buf) {
		t.Fatal("IVF sample matched another sniffer")
	}
	if Sniff(buf) != FormatIVF {
		t.Fatalf("Sniff = %v, want FormatIVF", Sniff(buf))
	}
}

func TestSniffMPEGTS(t *testing.T) {
	buf := make([]byte, 189)
	buf[0] = 0x47
	buf[188] = 0x47
	if !IsMPEGTS(buf) {
		t.Fatal("expected IsMPEGTS true")
	}
	if Sniff(buf) != FormatMPEGTS {
		t.Fatalf("Sniff = %v, want FormatMPEGTS", Sniff(buf))
	}
}

func TestSniffMP4(t *testing.T) {
	buf := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	if !IsMP4(buf) {
		t.Fatal("expected IsMP4 true")
	}
	if Sniff(buf) != FormatMP4 {
		t.Fatalf("Sniff = %v, want FormatMP4", Sniff(buf))
	}
}

func TestSniffMKV(t *testing.T) {
	buf := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01, 0x02}
	if !IsMKV(buf) {
		t.Fatal("expected IsMKV true")
	}
	if Sniff(buf) != FormatMKV {
		t.Fatalf("Sniff = %v, want FormatMKV", Sniff(buf))
	}
}

func TestSniffRawFallback(t *testing.T) {
	if Sniff([]byte{0x01, 0x02}) != FormatRaw {
		t.Fatal("expected FormatRaw for unrecognized short input")
	}
	if Sniff(nil) != FormatRaw {
		t.Fatal("expected FormatRaw for empty input")
	}
}

func TestSniffExclusivity(t *testing.T) {
	samples := [][]byte{ivfHeader()}
	tsBuf := make([]byte, 189)
	tsBuf[0], tsBuf[188] = 0x47, 0x47
	samples = append(samples, tsBuf)
	samples = append(samples, []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p'})
	samples = append(samples, []byte{0x1A, 0x45, 0xDF, 0xA3})

	for _, s := range samples {
		n := 0
		for _, f := range []bool{IsIVF(s), IsMPEGTS(s), IsMP4(s), IsMKV(s)} {
			if f {
				n++
			}
		}
		if n > 1 {
			t.Errorf("sample matched %d sniffers, want at most 1: %x", n, s)
		}
	}
}
