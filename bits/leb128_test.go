package bits

import "testing"

func TestLEB128RoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 255, 1024, 65535, 1_000_000, (1 << 56) - 1}
	for _, v := range vals {
		enc, err := EncodeLEB128(nil, v)
		if err != nil {
			t.Fatalf("encode(%d): %v", v, err)
		}
		if len(enc) != LEB128Size(v) {
			t.Errorf("encode(%d): len = %d, want %d", v, len(enc), LEB128Size(v))
		}
		got, n, err := DecodeLEB128(enc)
		if err != nil {
			t.Fatalf("decode(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("decode(encode(%d)) = %d", v, got)
		}
		if n != len(enc) {
			t.Errorf("decode(%d): consumed %d bytes, want %d", v, n, len(enc))
		}
	}
}

func TestLEB128Overlong(t *testing.T) {
	// Nine continuation bytes: always invalid regardless of payload.
	buf := make([]byte, 9)
	for i := range buf {
		buf[i] = 0x80
	}
	if _, _, err := DecodeLEB128(buf); err == nil {
		t.Fatal("expected error decoding over-long leb128")
	}
}

func TestLEB128EmptyInput(t *testing.T) {
	if _, _, err := DecodeLEB128(nil); err == nil {
		t.Fatal("expected error decoding empty input")
	}
}
