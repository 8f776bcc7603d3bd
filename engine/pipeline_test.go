package engine

import "testing"

// seqHeaderOBU and frameOBU below reuse the reduced_still_picture_header
// fixture from frame/av1's own sequence_header_test.go (profile 0, 16x10),
// wrapped in OBU framing: header byte (type<<3)|0x02 for obu_has_size_field,
// one-byte LEB128 size.
var (
	seqHeaderPayload = []byte{0x18, 0x0C, 0xFE, 0x40}
	tileDataPayload  = []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22}
)

func buildOBUStream() []byte {
	var buf []byte
	buf = append(buf, 0x0A, byte(len(seqHeaderPayload)))
	buf = append(buf, seqHeaderPayload...)
	buf = append(buf, 0x32, byte(len(tileDataPayload)))
	buf = append(buf, tileDataPayload...)
	return buf
}

func TestRunProducesOneFrameGridsSetAfterSequenceHeader(t *testing.T) {
	p := NewAV1GridPipeline()
	grids, err := p.Run(buildOBUStream())
	if err != nil {
		t.Fatal(err)
	}
	if len(grids) != 1 {
		t.Fatalf("got %d FrameGrids, want 1", len(grids))
	}
	g := grids[0]
	if g.QP == nil || g.MV == nil || g.Partition == nil || g.Mode == nil || g.Transform == nil {
		t.Fatal("expected every grid type to be populated")
	}
	if g.QP.GridW != 1 || g.QP.GridH != 1 {
		t.Errorf("QP grid dims = (%d, %d), want (1, 1) for a 16x10 frame at 64x64 blocks", g.QP.GridW, g.QP.GridH)
	}
	if len(g.Partition.Blocks) == 0 {
		t.Error("expected at least one partition leaf")
	}
}

func TestRunCachesByTilePayloadHash(t *testing.T) {
	p := NewAV1GridPipeline()
	stream := buildOBUStream()
	if _, err := p.Run(stream); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(stream); err != nil {
		t.Fatal(err)
	}
	if p.Cache.Len() != 1 {
		t.Errorf("Cache.Len() = %d, want 1 (second Run should hit the cache)", p.Cache.Len())
	}
}

func TestRunWithNoSequenceHeaderFails(t *testing.T) {
	p := NewAV1GridPipeline()
	buf := append([]byte{0x32, byte(len(tileDataPayload))}, tileDataPayload...)
	if _, err := p.Run(buf); err == nil {
		t.Fatal("expected an error when no sequence header precedes the frame OBU")
	}
}
