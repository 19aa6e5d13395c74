package paint

import (
	"fmt"
	"math"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
)

// UserSpaceOnUse places gradient geometry in document coordinates.
const UserSpaceOnUse = "userSpaceOnUse"

// Stop is one colour stop of a gradient.
type Stop struct {
	Offset    string `json:"offset"`
	StopColor Paint  `json:"stopColor"`
}

// LinearGradient runs from (X1, Y1) to (X2, Y2).
type LinearGradient struct {
	ID            string  `json:"id"`
	GradientUnits string  `json:"gradientUnits"`
	X1            float64 `json:"x1"`
	Y1            float64 `json:"y1"`
	X2            float64 `json:"x2"`
	Y2            float64 `json:"y2"`
	Stops         []Stop  `json:"stops"`
}

// RadialGradient spreads from a single focus at its centre out to radius R.
type RadialGradient struct {
	ID            string  `json:"id"`
	GradientUnits string  `json:"gradientUnits"`
	CX            float64 `json:"cx"`
	CY            float64 `json:"cy"`
	FX            float64 `json:"fx"`
	FY            float64 `json:"fy"`
	R             float64 `json:"r"`
	Stops         []Stop  `json:"stops"`
}

// Gradients collects the gradients defined while resolving fills. Ids are
// numbered per kind in definition order, so one Gradients value must not
// outlive a single extraction.
type Gradients struct {
	palette document.Palette
	Linear  []LinearGradient
	Radial  []RadialGradient
}

// NewGradients returns an empty registry resolving colours against palette.
func NewGradients(palette document.Palette) *Gradients {
	return &Gradients{
		palette: palette,
		Linear:  []LinearGradient{},
		Radial:  []RadialGradient{},
	}
}

// ResolveFill turns a fill colour record into a paint, registering a new
// gradient for linear and radial fills. Unknown fill types resolve to None.
func (g *Gradients) ResolveFill(rec *document.Record) Paint {
	switch rec.FillType {
	case document.FillFlat:
		return ResolveColour(rec.Colour, g.palette)
	case document.FillLinear:
		return g.addLinear(rec)
	case document.FillRadial:
		return g.addRadial(rec)
	default:
		return None
	}
}

func (g *Gradients) addLinear(rec *document.Record) Paint {
	id := fmt.Sprintf("linear-gradient-%d", len(g.Linear))
	p1, p2 := endpoints(rec.GradientLine)
	g.Linear = append(g.Linear, LinearGradient{
		ID:            id,
		GradientUnits: UserSpaceOnUse,
		X1:            p1.X,
		Y1:            p1.Y,
		X2:            p2.X,
		Y2:            p2.Y,
		Stops:         g.stops(rec),
	})
	return Ref(id)
}

func (g *Gradients) addRadial(rec *document.Record) Paint {
	id := fmt.Sprintf("radial-gradient-%d", len(g.Radial))
	p1, p2 := endpoints(rec.GradientLine)
	g.Radial = append(g.Radial, RadialGradient{
		ID:            id,
		GradientUnits: UserSpaceOnUse,
		CX:            p1.X,
		CY:            p1.Y,
		FX:            p1.X,
		FY:            p1.Y,
		R:             Radius(p1, p2),
		Stops:         g.stops(rec),
	})
	return Ref(id)
}

func (g *Gradients) stops(rec *document.Record) []Stop {
	return []Stop{
		{Offset: "0%", StopColor: ResolveColour(rec.StartColour, g.palette)},
		{Offset: "100%", StopColor: ResolveColour(rec.EndColour, g.palette)},
	}
}

// Radius is the Euclidean distance between the two gradient endpoints.
func Radius(p1, p2 document.Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// endpoints returns the first two points of a gradient line; missing points
// sit at the origin.
func endpoints(line []document.Point) (p1, p2 document.Point) {
	if len(line) > 0 {
		p1 = line[0]
	}
	if len(line) > 1 {
		p2 = line[1]
	}
	return p1, p2
}
