/*
NAME
  walker.go

DESCRIPTION
  walker.go provides BlockTreeWalker, the per-codec coding-tree traversal
  interface described in section 4.8 of the engine specification, along
  with a UniformGridWalker fallback that emits one CodingUnit per fixed-size
  grid cell when a codec's full partition tree is not decoded. The index
  package does not use it.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package block

// BlockTreeWalker walks one frame's coding tree, calling visit once per
// leaf CodingUnit in raster (left-to-right, top-to-bottom) order.
type BlockTreeWalker interface {
	Walk(visit func(*CodingUnit)) error
}

// UniformGridWalker emits a CodingUnit for every cell of a fixed-size grid
// covering a frame, with a caller-supplied per-cell QP. It is used as a
// placeholder block tree for codecs/paths where the full coding tree is
// not decoded, so overlay grids still have block-resolution data to
// sample from.
type UniformGridWalker struct {
	FrameWidth, FrameHeight int
	CellSize                int
	QPAt                    func(x, y int) int
}

// Walk implements BlockTreeWalker.
func (w *UniformGridWalker) Walk(visit func(*CodingUnit)) error {
	cell := w.CellSize
	if cell <= 0 {
		cell = 16
	}
	for y := 0; y < w.FrameHeight; y += cell {
		for x := 0; x < w.FrameWidth; x += cell {
			width := cell
			if x+width > w.FrameWidth {
				width = w.FrameWidth - x
			}
			height := cell
			if y+height > w.FrameHeight {
				height = w.FrameHeight - y
			}
			qp := 0
			if w.QPAt != nil {
				qp = w.QPAt(x, y)
			}
			txSize := width
			if height < txSize {
				txSize = height
			}
			visit(&CodingUnit{
				X: x, Y: y, Width: width, Height: height, QP: qp,
				TxSize:   txSize,
				MV:       [2]MotionVector{MissingMV, MissingMV},
				RefFrame: [2]int{-1, -1},
			})
		}
	}
	return nil
}
