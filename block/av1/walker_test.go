package av1

import (
	"testing"

	"github.com/hawk90/bitvue-sub000/block"
)

func TestWalkProducesLeavesCoveringTheFrame(t *testing.T) {
	tile := make([]byte, 64)
	for i := range tile {
		tile[i] = byte(i * 37)
	}
	w := &Walker{
		TileData: tile, FrameWidth: 32, FrameHeight: 16, SuperblockSize: 64,
		BaseQP: 20, IsKeyFrame: true,
		MvCtx: block.NewMvPredictorContext(32, 16, 8),
	}
	var units []*block.CodingUnit
	if err := w.Walk(func(cu *block.CodingUnit) { units = append(units, cu) }); err != nil {
		t.Fatal(err)
	}
	if len(units) == 0 {
		t.Fatal("expected at least one CodingUnit")
	}
	for _, u := range units {
		if u.X+u.Width > 32 || u.Y+u.Height > 16 {
			t.Errorf("unit %+v exceeds frame bounds", u)
		}
		if u.Mode != block.PredictionIntra {
			t.Errorf("key frame unit %+v should be intra", u)
		}
		if !u.MV[0].Missing() {
			t.Errorf("intra unit %+v should have a missing MV", u)
		}
	}
}

func TestWalkEmptyTileDataIsUnderflow(t *testing.T) {
	w := &Walker{FrameWidth: 16, FrameHeight: 16}
	if err := w.Walk(func(*block.CodingUnit) {}); err == nil {
		t.Fatal("expected an error for empty tile data")
	}
}

func TestUniformCDFIsMonotonicallyDecreasing(t *testing.T) {
	cdf := uniformCDF(5)
	if len(cdf) != 6 {
		t.Fatalf("len(cdf) = %d, want 6", len(cdf))
	}
	for i := 1; i < 4; i++ {
		if cdf[i] > cdf[i-1] {
			t.Errorf("cdf not decreasing at %d: %v", i, cdf)
		}
	}
	if cdf[4] != 0 {
		t.Errorf("last threshold = %d, want 0", cdf[4])
	}
}
