/*
NAME
  meta.go

DESCRIPTION
  meta.go carries the PMT metadata-descriptor staging this package's own
  tests use to build PMT fixtures carrying sensor/location metadata
  (Meta.Add/Delete followed by updateMeta to bake it into PSI bytes), split
  out of the teacher's encoder.go so it survives without the rest of that
  file's packet-encoding machinery.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"github.com/ausocean/utils/logging"

	"github.com/hawk90/bitvue-sub000/container/mts/meta"
	"github.com/hawk90/bitvue-sub000/container/mts/psi"
)

// Meta holds the metadata key/value pairs this package's tests stage into a
// PMT's metadata descriptor via updateMeta. There is no live sensor feed to
// populate it from on the read-only analysis path this package now serves,
// so callers set it directly with Add/Delete before building or parsing a
// fixture.
var Meta = meta.New()

// updateMeta encodes Meta into b's metadata descriptor, returning the
// updated PSI bytes.
func updateMeta(b []byte, log logging.Logger) ([]byte, error) {
	p := psi.PSIBytes(b)
	err := p.AddDescriptor(psi.MetadataTag, Meta.Encode())
	log.Debug("updated psi meta descriptor")
	return []byte(p), err
}
