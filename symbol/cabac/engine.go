/*
NAME
  engine.go

DESCRIPTION
  engine.go implements the binary arithmetic decoding engine shared by
  H.264 (9.3.3.2), H.265 and H.266 CABAC: initialization, DecodeDecision,
  DecodeBypass, DecodeTerminate and the state transition process. It is
  grounded on codec/h264/h264dec/cabac.go, rangetablps.go and
  statetransxtab.go, completing the renormalization and state-transition
  wiring that file leaves as a "TODO: Do StateTransition and then RenormD
  happen here?" in BinaryDecision.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cabac implements the context-adaptive binary arithmetic coding
// engine used to decode syntax element bins in H.264, H.265 and H.266.
package cabac

import (
	"github.com/pkg/errors"

	"github.com/hawk90/bitvue-sub000/bits"
)

// ContextModel is one entry of a codec's context model array: a
// probability state index and the value currently considered "most
// probable".
type ContextModel struct {
	PStateIdx int
	ValMPS    int
}

// StateTransition advances the context model after observing binVal, per
// 9.3.3.2.1.1.
func (c *ContextModel) StateTransition(binVal int) {
	if binVal == c.ValMPS {
		c.PStateIdx = stateTransTab[c.PStateIdx].transIdxMPS
	} else {
		if c.PStateIdx == 0 {
			c.ValMPS = 1 - c.ValMPS
		}
		c.PStateIdx = stateTransTab[c.PStateIdx].transIdxLPS
	}
}

// Engine is a binary arithmetic decoding engine bound to a bit reader.
type Engine struct {
	r         *bits.Reader
	codIRange int
	codIOffset int
}

// NewEngine initializes the decoding engine per 9.3.1.2: codIRange is set
// to 510 and codIOffset is read as the next 9 bits.
func NewEngine(r *bits.Reader) (*Engine, error) {
	off, err := r.ReadU(9)
	if err != nil {
		return nil, errors.Wrap(err, "cabac: reading codIOffset")
	}
	return &Engine{r: r, codIRange: 510, codIOffset: int(off)}, nil
}

// DecodeDecision decodes one bin using ctx per 9.3.3.2.1, updating ctx's
// state in place.
func (e *Engine) DecodeDecision(ctx *ContextModel) (int, error) {
	qIdx := (e.codIRange >> 6) & 3
	lps := rangeTabLPS[ctx.PStateIdx][qIdx]
	e.codIRange -= lps

	var binVal int
	if e.codIOffset >= e.codIRange {
		binVal = 1 - ctx.ValMPS
		e.codIOffset -= e.codIRange
		e.codIRange = lps
	} else {
		binVal = ctx.ValMPS
	}

	ctx.StateTransition(binVal)

	if err := e.renorm(); err != nil {
		return 0, errors.Wrap(err, "cabac: renormalizing after DecodeDecision")
	}
	return binVal, nil
}

// DecodeBypass decodes one bypass-coded bin per 9.3.3.2.3.
func (e *Engine) DecodeBypass() (int, error) {
	e.codIOffset <<= 1
	bit, err := e.r.ReadU(1)
	if err != nil {
		return 0, errors.Wrap(err, "cabac: reading bypass bit")
	}
	e.codIOffset |= int(bit)

	if e.codIOffset >= e.codIRange {
		e.codIOffset -= e.codIRange
		return 1, nil
	}
	return 0, nil
}

// DecodeTerminate decodes end_of_slice_flag / pcm_alignment_zero_bit
// termination per 9.3.3.2.4. When it returns binVal == 1, decoding has
// reached the rbsp_stop_one_bit and the engine must not be used further.
func (e *Engine) DecodeTerminate() (int, error) {
	e.codIRange -= 2
	if e.codIOffset >= e.codIRange {
		return 1, nil
	}
	if err := e.renorm(); err != nil {
		return 0, errors.Wrap(err, "cabac: renormalizing after DecodeTerminate")
	}
	return 0, nil
}

// renorm implements the renormalization process, 9.3.3.2.2.
func (e *Engine) renorm() error {
	for e.codIRange < 256 {
		e.codIRange <<= 1
		e.codIOffset <<= 1
		bit, err := e.r.ReadU(1)
		if err != nil {
			return errors.Wrap(err, "cabac: reading renormalization bit")
		}
		e.codIOffset |= int(bit)
	}
	return nil
}
