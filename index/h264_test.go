package index

import (
	"context"
	"testing"

	"github.com/hawk90/bitvue-sub000/unit"
)

func TestQuickIndexH264FindsKeyframe(t *testing.T) {
	buf := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0xAA, // fake SPS
		0x00, 0x00, 0x00, 0x01, 0x68, 0xBB, // fake PPS
		0x00, 0x00, 0x00, 0x01, 0x65, 0xCC, // fake IDR
	}
	e, err := ForCodec(unit.CodecH264)
	if err != nil {
		t.Fatal(err)
	}
	result, err := e.QuickIndex(context.Background(), buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	entries := result.Entries
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if !entries[2].IsKeyframe {
		t.Error("expected third NAL (IDR) to be flagged as keyframe")
	}
	if entries[0].IsKeyframe || entries[1].IsKeyframe {
		t.Error("SPS/PPS should not be flagged as keyframes")
	}
}

func TestForCodecUnsupported(t *testing.T) {
	if _, err := ForCodec(unit.CodecUnknown); err == nil {
		t.Fatal("expected error for unregistered codec")
	}
}

func TestQuickIndexRespectsCancellation(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0xAA, 0x00, 0x00, 0x00, 0x01, 0x65, 0xCC}
	e, _ := ForCodec(unit.CodecH264)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.QuickIndex(ctx, buf, nil); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
