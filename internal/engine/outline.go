package engine

import (
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/paint"
)

// Outline paths are drawn with a fixed style.
const (
	OutlineFill   = paint.None
	OutlineStroke = paint.Black
)

// Outlines is the bare geometry of a document.
type Outlines struct {
	BoundingBox document.Box `json:"boundingBox"`
	Paths       []string     `json:"paths"`
}

// ExtractOutlines collects the geometry of every path record in a plain
// pre-order walk. Style records are ignored.
func ExtractOutlines(records []*document.Record) *Outlines {
	out := &Outlines{Paths: []string{}}
	var visit func(rec *document.Record)
	visit = func(rec *document.Record) {
		if rec.Kind() == document.KindPath {
			MergeBoundingBox(&out.BoundingBox, rec.BoundingBox)
			out.Paths = append(out.Paths, SerializePath(rec.Path))
		}
		for _, child := range rec.Children {
			visit(child)
		}
	}
	for _, rec := range records {
		visit(rec)
	}
	return out
}
