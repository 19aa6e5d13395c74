package document

// Record tags as emitted by the ArtWorks loader. Only the low byte of
// Record.Type selects the kind; the high bits carry loader flags.
const (
	RecordPath         = 0x02
	RecordGroup        = 0x06
	RecordLayer        = 0x2A
	RecordStrokeColour = 0x22
	RecordStrokeWidth  = 0x23
	RecordFillColour   = 0x24
	RecordLineCapStart = 0x26
	RecordLineCapEnd   = 0x27
	Record2C           = 0x2C
	Record34           = 0x34
	Record35           = 0x35
	Record38           = 0x38
	Record3D           = 0x3D
	recordKindMask     = 0xFF
)

// Fill types carried by fill colour records.
const (
	FillFlat   = 0x00
	FillLinear = 0x01
	FillRadial = 0x02
)

// Kind is the closed set of record kinds the renderer distinguishes.
type Kind int

const (
	// KindContainer covers every tag without a dedicated kind. Such records
	// are walked through but never drawn.
	KindContainer Kind = iota
	KindPath
	KindGroup
	KindLayer
	KindStrokeColour
	KindStrokeWidth
	KindFillColour
	KindLineCapStart
	KindLineCapEnd
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindGroup:
		return "group"
	case KindLayer:
		return "layer"
	case KindStrokeColour:
		return "strokeColour"
	case KindStrokeWidth:
		return "strokeWidth"
	case KindFillColour:
		return "fillColour"
	case KindLineCapStart:
		return "lineCapStart"
	case KindLineCapEnd:
		return "lineCapEnd"
	default:
		return "container"
	}
}

// Point is a position in document space (millipoints, Y up).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathElement is one drawing command: a short tag ("M", "L", "C", "Z", ...)
// followed by its points.
type PathElement struct {
	Tag    string  `json:"tag"`
	Points []Point `json:"points,omitempty"`
}

// Box is an axis-aligned rectangle. A zero field means "unset".
type Box struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Valid reports whether the box encloses a non-empty area.
func (b Box) Valid() bool {
	return b.MinX < b.MaxX && b.MinY < b.MaxY
}

// Record is one node of the parsed document tree. Which payload fields are
// meaningful depends on Kind.
type Record struct {
	Type     int       `json:"type"`
	Pointer  int       `json:"pointer"`
	Children []*Record `json:"children,omitempty"`

	// Path kinds
	Path        []PathElement `json:"path,omitempty"`
	BoundingBox Box           `json:"boundingBox"`

	// Stroke records
	StrokeColour int     `json:"strokeColour,omitempty"`
	StrokeWidth  float64 `json:"strokeWidth,omitempty"`
	CapStyle     int     `json:"capStyle,omitempty"`

	// Fill colour records
	FillType     int     `json:"fillType,omitempty"`
	Colour       int     `json:"colour,omitempty"`
	GradientLine []Point `json:"gradientLine,omitempty"`
	StartColour  int     `json:"startColour,omitempty"`
	EndColour    int     `json:"endColour,omitempty"`
}

// Kind maps the low byte of the record type onto a Kind.
func (r *Record) Kind() Kind {
	switch r.Type & recordKindMask {
	case RecordPath, Record2C, Record34, Record35, Record38, Record3D:
		return KindPath
	case RecordGroup:
		return KindGroup
	case RecordLayer:
		return KindLayer
	case RecordStrokeColour:
		return KindStrokeColour
	case RecordStrokeWidth:
		return KindStrokeWidth
	case RecordFillColour:
		return KindFillColour
	case RecordLineCapStart:
		return KindLineCapStart
	case RecordLineCapEnd:
		return KindLineCapEnd
	default:
		return KindContainer
	}
}

// PaletteEntry holds a packed 24-bit colour: bits 0-7 red, 8-15 green,
// 16-23 blue. Colour is nil when the file left the entry unset.
type PaletteEntry struct {
	Colour *uint32 `json:"colour,omitempty"`
}

// Palette is the document's indexed colour table.
type Palette struct {
	Colours []PaletteEntry `json:"colours"`
}

// Document is the loader's output: the top-level records and the palette,
// or a load error in their place.
type Document struct {
	Records []*Record  `json:"records"`
	Palette Palette    `json:"palette"`
	Error   *LoadError `json:"error,omitempty"`
}

// Entry returns a palette entry holding the packed value v.
func Entry(v uint32) PaletteEntry {
	return PaletteEntry{Colour: &v}
}
