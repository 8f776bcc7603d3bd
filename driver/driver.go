/*
NAME
  driver.go

DESCRIPTION
  driver.go implements ResilientDriver, the scanning/in-unit state machine
  described in section 4.12 of the engine specification: it walks a
  stream's framed units end to end, recording a Diagnostic rather than
  aborting the whole parse whenever one unit fails, and resynchronizes at
  the next unit boundary already discovered by the framer.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package driver provides ResilientDriver, which walks a stream's units
// recording per-unit diagnostics instead of aborting on the first
// malformed unit.
package driver

// State is the driver's current scanning state.
type State int

// Recognized states.
const (
	StateScanning State = iota // looking for the next unit boundary
	StateInUnit                // currently processing a unit's payload
	StateDone
)

// Severity classifies a Diagnostic.
type Severity int

// Recognized severities.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Diagnostic records one non-fatal problem encountered while parsing a
// unit, keyed by the unit's byte offset so a caller can correlate it
// with the framed unit list.
type Diagnostic struct {
	ByteOffset int
	Severity   Severity
	Message    string
}

// UnitHandler processes one unit's payload, returning an error if the
// unit is malformed. ResilientDriver records the error as a Diagnostic
// and continues with the next unit rather than propagating it.
type UnitHandler func(byteOffset int, payload []byte) error

// ResilientDriver drives a sequence of (offset, payload) units through a
// UnitHandler, collecting Diagnostics for any unit the handler rejects.
type ResilientDriver struct {
	state       State
	diagnostics []Diagnostic
	processed   int
}

// NewResilientDriver returns a driver ready to scan.
func NewResilientDriver() *ResilientDriver {
	return &ResilientDriver{state: StateScanning}
}

// State returns the driver's current state.
func (d *ResilientDriver) State() State { return d.state }

// Diagnostics returns every diagnostic recorded so far.
func (d *ResilientDriver) Diagnostics() []Diagnostic { return d.diagnostics }

// Processed returns the number of units successfully handled (i.e. that
// did not produce a diagnostic).
func (d *ResilientDriver) Processed() int { return d.processed }

// UnitOffset pairs a unit's byte offset with its payload, the minimal
// shape ResilientDriver.Run needs from any codec's framer output.
type UnitOffset struct {
	ByteOffset int
	Payload    []byte
}

// Run drives handler over every unit in units. A unit whose handler call
// returns an error contributes a SeverityError Diagnostic and is skipped;
// scanning resumes at the next unit, since unit boundaries were already
// established by the framer independently of payload validity.
func (d *ResilientDriver) Run(units []UnitOffset, handler UnitHandler) {
	d.state = StateScanning
	for _, u := range units {
		d.HandleUnit(u.ByteOffset, u.Payload, handler)
	}
	d.state = StateDone
}

// HandleUnit drives handler over a single unit, recording a SeverityError
// Diagnostic (and returning to StateScanning) if it fails. It is Run's
// per-unit step, exposed separately so a caller that needs to interleave
// its own per-unit work -- polling a cancellation predicate or reporting
// progress between units, per the engine's suspension/cancellation model
// -- can drive the same resynchronize-on-error behavior one unit at a
// time instead of handing ResilientDriver the whole unit list up front.
func (d *ResilientDriver) HandleUnit(byteOffset int, payload []byte, handler UnitHandler) error {
	d.state = StateInUnit
	if err := handler(byteOffset, payload); err != nil {
		d.diagnostics = append(d.diagnostics, Diagnostic{
			ByteOffset: byteOffset,
			Severity:   SeverityError,
			Message:    err.Error(),
		})
		d.state = StateScanning
		return err
	}
	d.processed++
	d.state = StateScanning
	return nil
}

// Warn records a SeverityWarning diagnostic without treating the unit as
// failed; used by handlers that can recover from a suspicious but
// non-fatal field value (e.g. a reserved bit set).
func (d *ResilientDriver) Warn(byteOffset int, message string) {
	d.diagnostics = append(d.diagnostics, Diagnostic{
		ByteOffset: byteOffset,
		Severity:   SeverityWarning,
		Message:    message,
	})
}
