package container

import (
	"encoding/binary"
	"testing"
)

func buildIVF(frames [][]byte) []byte {
	buf := make([]byte, ivfHeaderSize)
	copy(buf[0:4], "DKIF")
	copy(buf[8:12], "AV01")
	for i, f := range frames {
		hdr := make([]byte, ivfFrameHeaderSize)
		binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(f)))
		binary.LittleEndian.PutUint64(hdr[4:12], uint64(i))
		buf = append(buf, hdr...)
		buf = append(buf, f...)
	}
	return buf
}

func TestDemuxIVF(t *testing.T) {
	frames := [][]byte{{0x12, 0x00}, {0xAA, 0xBB, 0xCC}}
	blob := buildIVF(frames)

	es, err := Demux(blob)
	if err != nil {
		t.Fatal(err)
	}
	if es.Format != FormatIVF {
		t.Fatalf("format = %v, want FormatIVF", es.Format)
	}
	if len(es.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(es.Samples))
	}
	if es.Samples[0].Length != 2 || es.Samples[1].Length != 3 {
		t.Errorf("unexpected sample lengths: %+v", es.Samples)
	}
	want := append(append([]byte{}, frames[0]...), frames[1]...)
	if len(es.Bytes) != len(want) {
		t.Fatalf("bytes len = %d, want %d", len(es.Bytes), len(want))
	}
}

func TestDemuxIVFEmptyInput(t *testing.T) {
	es, err := Demux(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(es.Samples) != 0 && es.Format == FormatIVF {
		t.Fatal("expected no samples for empty input")
	}
}
