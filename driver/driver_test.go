package driver

import (
	"errors"
	"testing"
)

func TestRunRecordsDiagnosticAndContinues(t *testing.T) {
	d := NewResilientDriver()
	units := []UnitOffset{
		{ByteOffset: 0, Payload: []byte{1}},
		{ByteOffset: 10, Payload: []byte{2}}, // this one fails
		{ByteOffset: 20, Payload: []byte{3}},
	}
	var seen []int
	d.Run(units, func(offset int, payload []byte) error {
		seen = append(seen, offset)
		if offset == 10 {
			return errors.New("malformed unit")
		}
		return nil
	})

	if len(seen) != 3 {
		t.Fatalf("handler called %d times, want 3 (should not stop at the bad unit)", len(seen))
	}
	if d.Processed() != 2 {
		t.Errorf("Processed() = %d, want 2", d.Processed())
	}
	if len(d.Diagnostics()) != 1 || d.Diagnostics()[0].ByteOffset != 10 {
		t.Fatalf("unexpected diagnostics: %+v", d.Diagnostics())
	}
	if d.State() != StateDone {
		t.Errorf("State() = %v, want StateDone", d.State())
	}
}

func TestHandleUnitRecordsDiagnosticOnError(t *testing.T) {
	d := NewResilientDriver()
	err := d.HandleUnit(5, []byte{1, 2}, func(offset int, payload []byte) error {
		return errors.New("bad unit")
	})
	if err == nil {
		t.Fatal("expected the handler's error back")
	}
	if d.Processed() != 0 {
		t.Errorf("Processed() = %d, want 0", d.Processed())
	}
	if len(d.Diagnostics()) != 1 || d.Diagnostics()[0].ByteOffset != 5 {
		t.Fatalf("unexpected diagnostics: %+v", d.Diagnostics())
	}
	if d.State() != StateScanning {
		t.Errorf("State() = %v, want StateScanning after a failed unit", d.State())
	}
}

func TestHandleUnitMarksProcessedOnSuccess(t *testing.T) {
	d := NewResilientDriver()
	if err := d.HandleUnit(0, nil, func(int, []byte) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if d.Processed() != 1 {
		t.Errorf("Processed() = %d, want 1", d.Processed())
	}
}
