package engine

import "github.com/RichardBrown384/riscos-artworks-viewer/internal/paint"

// DefaultStrokeWidth is in document units (millipoints).
const DefaultStrokeWidth = 160

// Line caps indexed by the cap style code of a line cap record.
var lineCaps = [...]string{"butt", "round", "square", "butt"}

// RenderState holds the style the next path record is drawn with.
type RenderState struct {
	Fill          paint.Paint `json:"fill"`
	FillRule      string      `json:"fillRule"`
	Stroke        paint.Paint `json:"stroke"`
	StrokeWidth   float64     `json:"strokeWidth"`
	StrokeLinecap string      `json:"strokeLinecap"`
}

// DefaultRenderState is the style in effect at the start of a document and
// after every path.
func DefaultRenderState() RenderState {
	return RenderState{
		Fill:          paint.None,
		FillRule:      "nonzero",
		Stroke:        paint.Black,
		StrokeWidth:   DefaultStrokeWidth,
		StrokeLinecap: "butt",
	}
}

// LineCap maps a cap style code to its SVG name. Unknown codes fall back
// to butt.
func LineCap(code int) string {
	if code < 0 || code >= len(lineCaps) {
		return lineCaps[0]
	}
	return lineCaps[code]
}
