package cavlc

import (
	"testing"

	"github.com/hawk90/bitvue-sub000/bits"
)

func TestParseLevelPrefixCountsLeadingZeros(t *testing.T) {
	r := bits.NewReader([]byte{0b00010000})
	n, err := ParseLevelPrefix(r)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("level_prefix = %d, want 3", n)
	}
}

func TestParseCoeffTokenZeroZero(t *testing.T) {
	r := bits.NewReader([]byte{0b10000000})
	t1, tc, err := ParseCoeffToken(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if t1 != 0 || tc != 0 {
		t.Fatalf("got (%d, %d), want (0, 0)", t1, tc)
	}
}

func TestParseCoeffTokenUnsupportedNC(t *testing.T) {
	r := bits.NewReader([]byte{0xFF})
	if _, _, err := ParseCoeffToken(r, 8); err == nil {
		t.Fatal("expected error for unsupported nC range")
	}
}

func TestLevelSuffixSize(t *testing.T) {
	if got := LevelSuffixSize(14, 0); got != 4 {
		t.Errorf("got %d, want 4", got)
	}
	if got := LevelSuffixSize(16, 0); got != 13 {
		t.Errorf("got %d, want 13", got)
	}
	if got := LevelSuffixSize(5, 2); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}
