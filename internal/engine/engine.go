package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// Mode selects how a document is rendered.
type Mode string

const (
	ModeShaded  Mode = "shaded"
	ModeOutline Mode = "outline"
)

// ErrUnknownMode is returned by Render for modes other than shaded and outline.
var ErrUnknownMode = errors.New("unknown render mode")

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeShaded, ModeOutline:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Scene is a shaded document placed in the output viewport.
type Scene struct {
	Viewport Viewport `json:"viewport"`
	Shaded
}

// OutlineScene is a document's bare geometry placed in the output viewport,
// with the single style every outline is drawn with.
type OutlineScene struct {
	Viewport Viewport    `json:"viewport"`
	Style    RenderState `json:"style"`
	Outlines
}

// Engine turns loaded documents into scenes. It holds no per-document
// state, so one Engine may serve concurrent callers.
type Engine struct {
	viewportWidth float64
}

// New creates an engine producing viewports of the given width. A
// non-positive width selects DefaultViewportWidth.
func New(viewportWidth float64) *Engine {
	if viewportWidth <= 0 {
		viewportWidth = DefaultViewportWidth
	}
	return &Engine{viewportWidth: viewportWidth}
}

// ViewportWidth returns the output width scenes are scaled to.
func (e *Engine) ViewportWidth() float64 {
	return e.viewportWidth
}

// Shaded renders doc with full styling. Documents carrying a load error are
// rejected before any record is visited.
func (e *Engine) Shaded(doc *document.Document) (*Scene, error) {
	if err := doc.Err(); err != nil {
		return nil, err
	}
	shaded := ExtractShaded(doc.Records, doc.Palette)
	return &Scene{
		Viewport: NewViewport(shaded.BoundingBox, e.viewportWidth),
		Shaded:   *shaded,
	}, nil
}

// Outline renders the geometry of doc only.
func (e *Engine) Outline(doc *document.Document) (*OutlineScene, error) {
	if err := doc.Err(); err != nil {
		return nil, err
	}
	outlines := ExtractOutlines(doc.Records)
	return &OutlineScene{
		Viewport: NewViewport(outlines.BoundingBox, e.viewportWidth),
		Style:    OutlineStyle(),
		Outlines: *outlines,
	}, nil
}

// Render dispatches on mode.
func (e *Engine) Render(doc *document.Document, mode Mode) (interface{}, error) {
	switch mode {
	case ModeShaded:
		return e.Shaded(doc)
	case ModeOutline:
		return e.Outline(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// OutlineStyle is the style outlines are drawn with.
func OutlineStyle() RenderState {
	state := DefaultRenderState()
	state.Fill = OutlineFill
	state.Stroke = OutlineStroke
	return state
}

// ToJSON serializes a scene for the frontend.
func ToJSON(scene interface{}) (string, error) {
	data, err := json.Marshal(scene)
	if err != nil {
		return "", fmt.Errorf("marshal scene: %w", err)
	}
	return string(data), nil
}
