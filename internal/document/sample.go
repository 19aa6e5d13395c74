package document

// Sample palette indices.
const (
	SampleBlack = iota
	SampleWhite
	SampleRed
	SampleBlue
	SampleYellow
	SampleUnset
)

// NewSampleDocument returns a small document exercising every record kind
// the renderer understands: stroke and fill records, flat, linear and radial
// fills, nested groups and a record with an unknown tag.
//
// The layer stores its children in reverse instruction order, as the loader
// does for alternate nesting levels. Read back in instruction order it is:
//
//	stroke red, width 320, path A          (outlined square)
//	stroke blue, fill yellow, path B       (filled square)
//	group { linear fill, path C, radial fill, path D }
func NewSampleDocument() *Document {
	pathA := rectRecord(RecordPath, 0x100, 10000, 10000, 46000, 46000)
	pathB := rectRecord(RecordPath, 0x200, 28000, 28000, 64000, 64000)
	pathC := rectRecord(Record2C, 0x300, 50000, 10000, 82000, 34000)
	pathD := rectRecord(Record3D, 0x400, 10000, 50000, 40000, 82000)

	group := &Record{
		Type:    RecordGroup,
		Pointer: 0x280,
		Children: []*Record{
			{
				Type:         RecordFillColour,
				Pointer:      0x2A0,
				FillType:     FillLinear,
				GradientLine: []Point{{X: 50000, Y: 10000}, {X: 82000, Y: 34000}},
				StartColour:  SampleRed,
				EndColour:    SampleBlue,
			},
			pathC,
			{
				Type:         RecordFillColour,
				Pointer:      0x3A0,
				FillType:     FillRadial,
				GradientLine: []Point{{X: 25000, Y: 66000}, {X: 40000, Y: 82000}},
				StartColour:  SampleWhite,
				EndColour:    SampleUnset,
			},
			pathD,
			// Unknown tags are walked through but never drawn.
			{Type: 0x7F, Pointer: 0x480},
		},
	}

	layer := &Record{
		Type:    RecordLayer,
		Pointer: 0x40,
		Children: []*Record{
			group,
			pathB,
			{Type: RecordFillColour, Pointer: 0x1C0, FillType: FillFlat, Colour: SampleYellow},
			{Type: RecordStrokeColour, Pointer: 0x180, StrokeColour: SampleBlue},
			pathA,
			{Type: RecordStrokeWidth, Pointer: 0x0C0, StrokeWidth: 320},
			{Type: RecordStrokeColour, Pointer: 0x080, StrokeColour: SampleRed},
		},
	}

	return &Document{
		Records: []*Record{layer},
		Palette: Palette{
			Colours: []PaletteEntry{
				Entry(0x000000),
				Entry(0xFFFFFF),
				Entry(0x0000FF),
				Entry(0xFF0000),
				Entry(0x00FFFF),
				{},
			},
		},
	}
}

func rectRecord(tag, pointer int, minX, minY, maxX, maxY float64) *Record {
	return &Record{
		Type:    tag,
		Pointer: pointer,
		Path: []PathElement{
			{Tag: "M", Points: []Point{{X: minX, Y: minY}}},
			{Tag: "L", Points: []Point{{X: maxX, Y: minY}}},
			{Tag: "L", Points: []Point{{X: maxX, Y: maxY}}},
			{Tag: "L", Points: []Point{{X: minX, Y: maxY}}},
			{Tag: "Z"},
		},
		BoundingBox: Box{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY},
	}
}
