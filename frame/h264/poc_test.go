package h264

import "testing"

func baseSPS() *SPS {
	return &SPS{
		Log2MaxFrameNumMinus4:       4, // MaxFrameNum = 256
		PicOrderCntType:             0,
		Log2MaxPicOrderCntLsbMinus4: 0, // MaxPicOrderCntLsb = 16
		FrameMbsOnlyFlag:            true,
	}
}

func TestPOCType0IDRStartsAtZeroOffset(t *testing.T) {
	sps := baseSPS()
	tr := NewPOCTracker()

	h := &SliceHeader{IDRPicFlag: true, PicOrderCntLsb: 0}
	poc, top, bottom := tr.Derive(sps, h)
	if poc != 0 || top != 0 || bottom != 0 {
		t.Fatalf("IDR poc = (%d, %d, %d), want all 0", poc, top, bottom)
	}
}

func TestPOCType0AdvancesAcrossNonIDRPictures(t *testing.T) {
	sps := baseSPS()
	tr := NewPOCTracker()

	tr.Derive(sps, &SliceHeader{IDRPicFlag: true, PicOrderCntLsb: 0})

	poc, _, _ := tr.Derive(sps, &SliceHeader{FrameNum: 1, PicOrderCntLsb: 2})
	if poc != 2 {
		t.Fatalf("poc = %d, want 2", poc)
	}

	poc, _, _ = tr.Derive(sps, &SliceHeader{FrameNum: 2, PicOrderCntLsb: 4})
	if poc != 4 {
		t.Fatalf("poc = %d, want 4", poc)
	}
}

func TestPOCType0WrapsMsbOnLsbWraparound(t *testing.T) {
	sps := baseSPS() // MaxPicOrderCntLsb = 16
	tr := NewPOCTracker()

	tr.Derive(sps, &SliceHeader{IDRPicFlag: true, PicOrderCntLsb: 0})
	for lsb := 1; lsb <= 15; lsb++ {
		poc, _, _ := tr.Derive(sps, &SliceHeader{FrameNum: lsb, PicOrderCntLsb: lsb})
		if poc != lsb {
			t.Fatalf("poc at lsb=%d = %d, want %d", lsb, poc, lsb)
		}
	}
	// Lsb wraps back to 0: a 15-unit drop (>= maxLsb/2) rolls MSB forward
	// by MaxPicOrderCntLsb, keeping POC monotonically increasing.
	poc, _, _ := tr.Derive(sps, &SliceHeader{FrameNum: 16, PicOrderCntLsb: 0})
	if poc != 16 {
		t.Fatalf("poc after wrap = %d, want 16", poc)
	}
	poc, _, _ = tr.Derive(sps, &SliceHeader{FrameNum: 17, PicOrderCntLsb: 1})
	if poc != 17 {
		t.Fatalf("poc = %d, want 17", poc)
	}
}

func TestPOCUnknownTypeReturnsZero(t *testing.T) {
	sps := baseSPS()
	sps.PicOrderCntType = 3
	tr := NewPOCTracker()
	poc, top, bottom := tr.Derive(sps, &SliceHeader{IDRPicFlag: true})
	if poc != 0 || top != 0 || bottom != 0 {
		t.Fatalf("poc = (%d,%d,%d), want all 0 for unrecognized pic_order_cnt_type", poc, top, bottom)
	}
}

func TestPOCType2EvenSpacing(t *testing.T) {
	sps := baseSPS()
	sps.PicOrderCntType = 2
	tr := NewPOCTracker()

	tr.Derive(sps, &SliceHeader{IDRPicFlag: true})
	poc, _, _ := tr.Derive(sps, &SliceHeader{FrameNum: 1})
	if poc != 2 {
		t.Fatalf("poc = %d, want 2", poc)
	}
	poc, _, _ = tr.Derive(sps, &SliceHeader{FrameNum: 2})
	if poc != 4 {
		t.Fatalf("poc = %d, want 4", poc)
	}
}
