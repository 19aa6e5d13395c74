package engine

import (
	"math"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// MergeBoundingBox widens acc to include other. Invalid boxes are ignored.
//
// Fields are merged independently and a zero field in acc counts as unset,
// so a box touching an axis can be overridden by a later contribution.
func MergeBoundingBox(acc *document.Box, other document.Box) {
	if !other.Valid() {
		return
	}
	acc.MinX = mergeField(math.Min, acc.MinX, other.MinX)
	acc.MaxX = mergeField(math.Max, acc.MaxX, other.MaxX)
	acc.MinY = mergeField(math.Min, acc.MinY, other.MinY)
	acc.MaxY = mergeField(math.Max, acc.MaxY, other.MaxY)
}

func mergeField(op func(a, b float64) float64, current, next float64) float64 {
	if current == 0 {
		return next
	}
	return op(current, next)
}
