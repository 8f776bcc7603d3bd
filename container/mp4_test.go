package container

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func mp4Box(typ string, body []byte) []byte {
	buf := new(bytes.Buffer)
	buf.Write(u32(uint32(8 + len(body))))
	buf.WriteString(typ)
	buf.Write(body)
	return buf.Bytes()
}

// buildMoov assembles a minimal moov/trak/mdia/minf/stbl tree describing two
// samples whose sizes come from sample1/sample2, all in a single chunk at
// chunkOffset.
func buildMoov(sample1, sample2 []byte, chunkOffset uint32) []byte {
	stsz := mp4Box("stsz", bytes.Join([][]byte{
		u32(0), u32(0), u32(2), u32(uint32(len(sample1))), u32(uint32(len(sample2))),
	}, nil))
	stco := mp4Box("stco", bytes.Join([][]byte{u32(0), u32(1), u32(chunkOffset)}, nil))
	stsc := mp4Box("stsc", bytes.Join([][]byte{u32(0), u32(1), u32(1), u32(2), u32(1)}, nil))
	stbl := mp4Box("stbl", bytes.Join([][]byte{stsz, stco, stsc}, nil))
	minf := mp4Box("minf", stbl)
	mdia := mp4Box("mdia", minf)
	trak := mp4Box("trak", mdia)
	return mp4Box("moov", trak)
}

// buildMP4 builds a moov box with chunkOffset pointing at the mdat body
// that follows it, regardless of chunkOffset's value (fields are fixed
// width), so the offset can point at itself: build once, measure, rebuild.
func buildMP4(sample1, sample2 []byte) []byte {
	probe := buildMoov(sample1, sample2, 0)
	moov := buildMoov(sample1, sample2, uint32(len(probe)+8))
	mdat := mp4Box("mdat", append(append([]byte(nil), sample1...), sample2...))
	return append(append([]byte(nil), moov...), mdat...)
}

func TestDemuxMP4SplitsSamplesFromSampleTable(t *testing.T) {
	sample1 := bytes.Repeat([]byte{0x41}, 5)
	sample2 := bytes.Repeat([]byte{0x42}, 3)
	blob := buildMP4(sample1, sample2)

	es, err := demuxMP4(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(es.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(es.Samples))
	}
	if es.Samples[0].Length != 5 || es.Samples[1].Length != 3 {
		t.Errorf("got lengths (%d, %d), want (5, 3)", es.Samples[0].Length, es.Samples[1].Length)
	}
	got0 := es.Bytes[es.Samples[0].Offset : es.Samples[0].Offset+es.Samples[0].Length]
	got1 := es.Bytes[es.Samples[1].Offset : es.Samples[1].Offset+es.Samples[1].Length]
	if !bytes.Equal(got0, sample1) {
		t.Errorf("sample 0 = %x, want %x", got0, sample1)
	}
	if !bytes.Equal(got1, sample2) {
		t.Errorf("sample 1 = %x, want %x", got1, sample2)
	}
}

func TestDemuxMP4FallsBackToWholeMdatWithoutSampleTable(t *testing.T) {
	body := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	blob := mp4Box("mdat", body)

	es, err := demuxMP4(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(es.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(es.Samples))
	}
	if !bytes.Equal(es.Bytes, body) {
		t.Errorf("Bytes = %x, want %x", es.Bytes, body)
	}
}
