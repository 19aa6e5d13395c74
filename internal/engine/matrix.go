package engine

import (
	"math"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// DefaultViewportWidth is the output width documents are scaled to.
const DefaultViewportWidth = 800

// Matrix2D is a 2D affine transform stored column-major as [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m * other, which applies other first.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// Viewport maps document space onto a fixed-width output area.
type Viewport struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Transform Matrix2D `json:"transform"`
}

// NewViewport scales box to the given output width, keeping its aspect
// ratio, and flips the Y axis: document Y grows upwards, output Y grows
// downwards. Empty or inverted boxes are treated as 1 unit across so the
// result stays finite.
func NewViewport(box document.Box, width float64) Viewport {
	w := math.Max(box.MaxX-box.MinX, 1)
	h := math.Max(box.MaxY-box.MinY, 1)

	height := h * width / w
	sx := width / w
	sy := height / h

	// Equivalent to Translate(0, sy*maxY) * Scale(sx, -sy) * Translate(-minX, 0).
	return Viewport{
		Width:     width,
		Height:    height,
		Transform: Matrix2D{sx, 0, 0, -sy, -sx * box.MinX, sy * box.MaxY},
	}
}
