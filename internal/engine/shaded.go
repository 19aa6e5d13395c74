package engine

import (
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/paint"
)

// PathPrimitive is one styled path, ready to draw.
type PathPrimitive struct {
	D string `json:"d"`
	RenderState
	// Pointer is the source record's file offset, for diagnostics.
	Pointer int `json:"pointer"`
}

// Shaded is the styled geometry of a document in painter's order.
type Shaded struct {
	BoundingBox     document.Box           `json:"boundingBox"`
	LinearGradients []paint.LinearGradient `json:"linearGradients"`
	RadialGradients []paint.RadialGradient `json:"radialGradients"`
	Paths           []PathPrimitive        `json:"paths"`
}

// ExtractShaded replays the document's drawing instructions and returns
// every path with the style in effect when it was drawn.
//
// The loader nests records in a tree whose child order is reversed on
// every other level relative to the file's instruction stream. Walking
// the tree with alternating direction, starting reversed below each
// top-level record, recovers that stream. Style records update the render
// state for the paths that follow; each path resets it.
func ExtractShaded(records []*document.Record, palette document.Palette) *Shaded {
	s := newShader(palette)
	for _, rec := range records {
		s.walk(rec, true)
	}
	return s.result()
}

// shader holds the mutable state of one ExtractShaded call.
type shader struct {
	palette   document.Palette
	state     RenderState
	gradients *paint.Gradients
	bounds    document.Box
	paths     []PathPrimitive

	// onVisit, when set, observes every record in walk order.
	onVisit func(rec *document.Record)
}

func newShader(palette document.Palette) *shader {
	return &shader{
		palette:   palette,
		state:     DefaultRenderState(),
		gradients: paint.NewGradients(palette),
		paths:     []PathPrimitive{},
	}
}

func (s *shader) walk(rec *document.Record, reverseChildren bool) {
	if s.onVisit != nil {
		s.onVisit(rec)
	}

	switch rec.Kind() {
	case document.KindPath:
		// Nested geometry is drawn before (underneath) the enclosing path.
		s.walkChildren(rec, reverseChildren)
		s.emit(rec)
	case document.KindStrokeColour:
		s.state.Stroke = paint.ResolveColour(rec.StrokeColour, s.palette)
	case document.KindStrokeWidth:
		s.state.StrokeWidth = rec.StrokeWidth
	case document.KindFillColour:
		s.state.Fill = s.gradients.ResolveFill(rec)
	case document.KindLineCapStart, document.KindLineCapEnd:
		s.state.StrokeLinecap = LineCap(rec.CapStyle)
	default:
		s.walkChildren(rec, reverseChildren)
	}
}

func (s *shader) walkChildren(rec *document.Record, reverse bool) {
	if reverse {
		for i := len(rec.Children) - 1; i >= 0; i-- {
			s.walk(rec.Children[i], false)
		}
		return
	}
	for _, child := range rec.Children {
		s.walk(child, true)
	}
}

func (s *shader) emit(rec *document.Record) {
	MergeBoundingBox(&s.bounds, rec.BoundingBox)
	s.paths = append(s.paths, PathPrimitive{
		D:           SerializePath(rec.Path),
		RenderState: s.state,
		Pointer:     rec.Pointer,
	})
	s.state = DefaultRenderState()
}

func (s *shader) result() *Shaded {
	return &Shaded{
		BoundingBox:     s.bounds,
		LinearGradients: s.gradients.Linear,
		RadialGradients: s.gradients.Radial,
		Paths:           s.paths,
	}
}
