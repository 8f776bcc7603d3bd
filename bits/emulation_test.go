package bits

import "bytes"

import "testing"

func TestEmulationPreventionRoundTrip(t *testing.T) {
	rbsp := []byte{0x00, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x01}
	inserted := InsertEmulationPrevention(rbsp)
	stripped := RemoveEmulationPrevention(inserted)
	if !bytes.Equal(stripped, rbsp) {
		t.Fatalf("strip(insert(x)) = %#v, want %#v", stripped, rbsp)
	}
}

func TestEmulationPreventionIdempotent(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x03, 0x01, 0x00, 0x00, 0x03, 0x02}
	once := RemoveEmulationPrevention(buf)
	twice := RemoveEmulationPrevention(once)
	if !bytes.Equal(once, twice) {
		t.Fatalf("strip is not idempotent: once=%#v twice=%#v", once, twice)
	}
}

func TestEmulationPreventionCleanInputUnchanged(t *testing.T) {
	clean := []byte{0x01, 0x02, 0x03, 0x04}
	out := RemoveEmulationPrevention(clean)
	if !bytes.Equal(out, clean) {
		t.Fatalf("stripping clean input changed it: %#v", out)
	}
}
