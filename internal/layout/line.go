package layout

// Point is a single vertex of a baseline polyline.
type Point struct {
	X int
	Y int
}

// LineRecord is one recognized text line from an OCR'd page, together with
// the baseline geometry the layout stage needs. Records are produced by the
// PAGE XML reader and are not modified afterwards.
type LineRecord struct {
	Text     string  // Recognized transcription (may be empty).
	RegionID int     // Index of the enclosing text region on the page.
	LineID   string  // Line id from the source markup.
	Baseline []Point // Baseline polyline, at least start and end point.
}

// Page holds all line records of one source page.
type Page struct {
	Filename string
	Lines    []LineRecord
}

// Center returns the mid-range point of all baseline vertices on the page:
// (max+min)/2 for x and y independently. It is the discriminant for the
// left/right column split, not a true geometric centroid.
func (p *Page) Center() (float64, float64) {
	first := true
	var minX, maxX, minY, maxY int
	for _, line := range p.Lines {
		for _, pt := range line.Baseline {
			if first {
				minX, maxX = pt.X, pt.X
				minY, maxY = pt.Y, pt.Y
				first = false
				continue
			}
			if pt.X < minX {
				minX = pt.X
			}
			if pt.X > maxX {
				maxX = pt.X
			}
			if pt.Y < minY {
				minY = pt.Y
			}
			if pt.Y > maxY {
				maxY = pt.Y
			}
		}
	}
	return float64(minX+maxX) / 2, float64(minY+maxY) / 2
}

// Column identifies which physical column a line belongs to.
type Column int

const (
	ColumnLeft Column = iota
	ColumnRight
)

func (c Column) String() string {
	if c == ColumnRight {
		return "right"
	}
	return "left"
}

// OrderedLine is a LineRecord placed into single-column reading order.
type OrderedLine struct {
	LineRecord

	Column Column
	X0     int     // x of the first baseline point
	Y0     int     // y of the first baseline point
	Y1     int     // y of the second baseline point
	Ym     float64 // (Y0+Y1)/2, the vertical sort key

	// DY0 is the next line's Y0 minus this line's Y0 in reading order.
	// Nil for the last line of the page.
	DY0 *int
}
