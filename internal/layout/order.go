package layout

import "sort"

// Order assigns each line of a two-column page to its column and returns the
// lines in single-column reading order: the whole left column first, then the
// whole right column, each sorted by vertical midpoint with the horizontal
// start as tie-break. Lines without a transcription are dropped, since an
// empty line cannot anchor a segment. The returned lines carry the DY0 gap
// to their successor in reading order.
//
// The left-before-right rule assumes the source lays out the left column
// fully above the right column in reading terms, which holds for the
// directory books this targets; it is not a general column solver.
func Order(p *Page) []OrderedLine {
	centerX, _ := p.Center()

	ordered := make([]OrderedLine, 0, len(p.Lines))
	for _, line := range p.Lines {
		if line.Text == "" || len(line.Baseline) < 2 {
			continue
		}
		col := ColumnLeft
		if float64(line.Baseline[0].X) > centerX {
			col = ColumnRight
		}
		ordered = append(ordered, OrderedLine{
			LineRecord: line,
			Column:     col,
			X0:         line.Baseline[0].X,
			Y0:         line.Baseline[0].Y,
			Y1:         line.Baseline[1].Y,
			Ym:         float64(line.Baseline[0].Y+line.Baseline[1].Y) / 2,
		})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Ym != b.Ym {
			return a.Ym < b.Ym
		}
		return a.X0 < b.X0
	})

	for i := range ordered {
		if i+1 < len(ordered) {
			d := ordered[i+1].Y0 - ordered[i].Y0
			ordered[i].DY0 = &d
		}
	}
	return ordered
}
