package engine

import (
	"strconv"
	"strings"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// SerializePath renders path elements as SVG-style path data, e.g.
// "M 0,0 L 100,0 Z". Tags are copied verbatim; the renderer rejects
// anything it does not understand.
func SerializePath(path []document.PathElement) string {
	var sb strings.Builder
	for i, el := range path {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(el.Tag)
		for j, p := range el.Points {
			if j == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte(',')
			}
			sb.WriteString(formatCoord(p.X))
			sb.WriteByte(',')
			sb.WriteString(formatCoord(p.Y))
		}
	}
	return sb.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
