package layout

import "testing"

// hline builds a horizontal baseline starting at (x, y).
func hline(text, id string, region, x, y int) LineRecord {
	return LineRecord{
		Text:     text,
		RegionID: region,
		LineID:   id,
		Baseline: []Point{{X: x, Y: y}, {X: x + 350, Y: y}},
	}
}

func twoColumnPage() *Page {
	return &Page{
		Filename: "p_0001.xml",
		Lines: []LineRecord{
			// Deliberately out of reading order.
			hline("R2", "r2", 1, 600, 150),
			hline("L1", "l1", 0, 100, 100),
			hline("R1", "r1", 1, 600, 100),
			hline("L3", "l3", 0, 100, 200),
			hline("L2", "l2", 0, 100, 150),
		},
	}
}

func TestCenterIsMidRangeOfBaselinePoints(t *testing.T) {
	p := twoColumnPage()
	x, y := p.Center()
	// x spans 100..950 (left start to right end), y spans 100..200.
	if x != 525 {
		t.Errorf("expected center x 525, got %v", x)
	}
	if y != 150 {
		t.Errorf("expected center y 150, got %v", y)
	}
}

func TestOrderLeftColumnPrecedesRight(t *testing.T) {
	ordered := Order(twoColumnPage())
	if len(ordered) != 5 {
		t.Fatalf("expected 5 ordered lines, got %d", len(ordered))
	}
	want := []string{"L1", "L2", "L3", "R1", "R2"}
	for i, w := range want {
		if ordered[i].Text != w {
			t.Errorf("position %d: expected %q, got %q", i, w, ordered[i].Text)
		}
	}
	for i, l := range ordered {
		if i < 3 && l.Column != ColumnLeft {
			t.Errorf("line %q: expected left column", l.Text)
		}
		if i >= 3 && l.Column != ColumnRight {
			t.Errorf("line %q: expected right column", l.Text)
		}
	}
}

func TestOrderDropsEmptyLines(t *testing.T) {
	p := twoColumnPage()
	p.Lines = append(p.Lines, hline("", "empty", 0, 100, 120))
	ordered := Order(p)
	if len(ordered) != 5 {
		t.Fatalf("expected empty line to be dropped, got %d lines", len(ordered))
	}
}

func TestOrderComputesDY0(t *testing.T) {
	ordered := Order(twoColumnPage())
	// L1 (y=100) -> L2 (y=150)
	if ordered[0].DY0 == nil || *ordered[0].DY0 != 50 {
		t.Errorf("expected dY0=50 for first line, got %v", ordered[0].DY0)
	}
	// L3 (y=200) -> R1 (y=100): the seam jump is negative.
	if ordered[2].DY0 == nil || *ordered[2].DY0 != -100 {
		t.Errorf("expected dY0=-100 at the seam, got %v", ordered[2].DY0)
	}
	if ordered[4].DY0 != nil {
		t.Errorf("expected nil dY0 for the last line, got %v", *ordered[4].DY0)
	}
}

func TestOrderTieBreakByX0(t *testing.T) {
	p := &Page{
		Filename: "p.xml",
		Lines: []LineRecord{
			hline("B", "b", 0, 300, 100),
			hline("A", "a", 0, 100, 100),
		},
	}
	ordered := Order(p)
	if ordered[0].Text != "A" || ordered[1].Text != "B" {
		t.Errorf("expected x0 tie-break to put A first, got %q then %q", ordered[0].Text, ordered[1].Text)
	}
}
