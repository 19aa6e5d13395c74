// Package paint resolves palette indices and fill records into paint values
// a vector renderer understands.
package paint

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// Paint is a CSS paint value: a colour, a url(#id) gradient reference or
// one of the keyword sentinels.
type Paint string

const (
	None  Paint = "none"
	Black Paint = "black"
)

// unsetColour stands in for palette entries the file left empty. Magenta
// makes them stand out instead of passing for black.
var unsetColour = colornames.Magenta

// ResolveColour maps a palette index to an rgb() paint. Indices outside the
// palette resolve to None.
func ResolveColour(index int, palette document.Palette) Paint {
	if index < 0 || index >= len(palette.Colours) {
		return None
	}
	c := unpack(palette.Colours[index])
	return Paint(fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B))
}

// unpack splits a packed palette entry: bits 0-7 red, 8-15 green, 16-23 blue.
func unpack(entry document.PaletteEntry) color.RGBA {
	if entry.Colour == nil {
		return unsetColour
	}
	v := *entry.Colour
	return color.RGBA{
		R: uint8(v & 0xFF),
		G: uint8((v >> 8) & 0xFF),
		B: uint8((v >> 16) & 0xFF),
		A: 0xFF,
	}
}

// Ref returns the paint referencing a gradient by id.
func Ref(id string) Paint {
	return Paint("url(#" + id + ")")
}
