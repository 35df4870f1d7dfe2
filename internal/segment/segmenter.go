package segment

import (
	"slices"
	"strings"
	"unicode"

	"github.com/blattlab/blatt/internal/config"
	"github.com/blattlab/blatt/internal/layout"
)

// Segmenter detects segment boundaries within a page's reading-order lines.
// Boundary detection is a single vertical-gap predicate; everything else is
// a fixed sequence of correction passes repairing what the gap heuristic
// gets wrong on real pages (running headers, page numbers, the column seam).
type Segmenter struct {
	minDY0 int
	maxDY0 int
	rules  config.Segmenter
}

func New(cfg config.Config) *Segmenter {
	return &Segmenter{
		minDY0: cfg.MinDY0,
		maxDY0: cfg.MaxDY0,
		rules:  cfg.Segmenter,
	}
}

// row is the mutable working form of one line while corrections run.
type row struct {
	text     string
	lineID   string
	regionID int
	column   layout.Column
	dY0      *int
	boundary bool // this line is the last line of its segment
	segID    int
}

// Page segments one page. The returned segments carry contiguous ids
// starting at 0.
func (s *Segmenter) Page(pageIndex int, filename string, lines []layout.OrderedLine) []*Segment {
	rows := make([]row, len(lines))
	for i, l := range lines {
		rows[i] = row{
			text:     l.Text,
			lineID:   l.LineID,
			regionID: l.RegionID,
			column:   l.Column,
			dY0:      l.DY0,
		}
	}

	passes := []func([]row) []row{
		s.flagBoundaries,
		s.suppressPageTopBoundaries,
		s.forceContinuations,
		assignIDs,
		collapseDuplicateBoundaries,
		s.normalizeColons,
		dropPageHeaders,
		s.dropGarbageSegments,
		dropTrailingGarbage,
		s.mergeColumnSeam,
		renumberIDs,
	}
	for _, pass := range passes {
		rows = pass(rows)
	}

	return build(pageIndex, filename, rows)
}

// flagBoundaries marks a line as segment-final when the vertical gap to its
// successor reaches the split threshold. The last line of the page has no
// successor and is never flagged here.
func (s *Segmenter) flagBoundaries(rows []row) []row {
	for i := range rows {
		d := rows[i].dY0
		rows[i].boundary = d != nil && abs(*d) >= s.minDY0
	}
	return rows
}

// suppressPageTopBoundaries clears boundary flags on the first two lines of
// the page when they contain a colon: a colon that early almost always means
// mid-entry continuation text from the previous page, flagged only because
// the page-top gap measurement is unreliable. Configured exception lines
// keep their flag.
func (s *Segmenter) suppressPageTopBoundaries(rows []row) []row {
	for i := 0; i < 2 && i < len(rows); i++ {
		if rows[i].boundary && strings.Contains(rows[i].text, ":") &&
			!slices.Contains(s.rules.ContinuationExceptions, rows[i].text) {
			rows[i].boundary = false
		}
	}
	return rows
}

// forceContinuations clears the boundary flag on configured literal lines,
// layout artifacts of a particular book's typesetting.
func (s *Segmenter) forceContinuations(rows []row) []row {
	if len(s.rules.ForcedContinuations) == 0 {
		return rows
	}
	for i := range rows {
		if rows[i].boundary && slices.Contains(s.rules.ForcedContinuations, rows[i].text) {
			rows[i].boundary = false
		}
	}
	return rows
}

// assignIDs numbers segments from the boundary flags: each line carries the
// running id, and a flagged line closes its segment.
func assignIDs(rows []row) []row {
	id := 0
	for i := range rows {
		rows[i].segID = id
		if rows[i].boundary {
			id++
		}
	}
	return rows
}

// collapseDuplicateBoundaries drops the second of two consecutive boundary
// lines. A one-line "segment" squeezed between two boundaries is a running
// header reprinted mid-column, not an entry.
func collapseDuplicateBoundaries(rows []row) []row {
	out := rows[:0]
	for i := range rows {
		if i > 0 && rows[i].boundary && rows[i-1].boundary {
			continue
		}
		out = append(out, rows[i])
	}
	return out
}

// normalizeColons repairs OCR colon artifacts and strips colons from
// configured phrases where the glyph is noise rather than a delimiter.
func (s *Segmenter) normalizeColons(rows []row) []row {
	for i := range rows {
		for _, r := range s.rules.ColonArtifacts {
			rows[i].text = strings.ReplaceAll(rows[i].text, r.From, r.To)
		}
		for _, phrase := range s.rules.ColonStripPhrases {
			if strings.Contains(rows[i].text, phrase) {
				rows[i].text = strings.ReplaceAll(rows[i].text, phrase, strings.ReplaceAll(phrase, ":", ""))
			}
		}
	}
	return rows
}

// headerMarker is an em-dash flanked by spaces, the separator printed in
// page headers ("Firmenname — 123").
const headerMarker = " — "

// dropPageHeaders removes the page-header line reprinted at the top of the
// page or at the top of the right column, and a stray first line whose
// source region differs from the line below it.
func dropPageHeaders(rows []row) []row {
	if rc := seamIndex(rows); rc >= 0 && strings.Contains(rows[rc].text, headerMarker) {
		rows = slices.Delete(rows, rc, rc+1)
	}
	if len(rows) > 0 && strings.Contains(rows[0].text, headerMarker) {
		rows = slices.Delete(rows, 0, 1)
	} else if len(rows) > 1 && rows[0].regionID != rows[1].regionID {
		rows = slices.Delete(rows, 0, 1)
	}
	return rows
}

// dropGarbageSegments removes the page's last segment when it contains a
// configured artifact line.
func (s *Segmenter) dropGarbageSegments(rows []row) []row {
	if len(rows) == 0 || len(s.rules.GarbageMarkers) == 0 {
		return rows
	}
	last := maxSegID(rows)
	for _, r := range rows {
		if r.segID == last && slices.Contains(s.rules.GarbageMarkers, r.text) {
			return deleteSegID(rows, last)
		}
	}
	return rows
}

// dropTrailingGarbage removes the page's last segment when it holds only
// numeric tokens (page numbers) or only very short lines.
func dropTrailingGarbage(rows []row) []row {
	if len(rows) == 0 {
		return rows
	}
	last := maxSegID(rows)
	allNumeric, allShort := true, true
	for _, r := range rows {
		if r.segID != last {
			continue
		}
		if !isNumeric(r.text) {
			allNumeric = false
		}
		if len([]rune(r.text)) >= 4 {
			allShort = false
		}
	}
	if allNumeric || allShort {
		return deleteSegID(rows, last)
	}
	return rows
}

// mergeColumnSeam joins the segment at the bottom of the left column with
// the one at the top of the right column. The jump across the seam is
// geometrically large but semantically usually not a new entry: merge when
// the measured seam gap is small, or when both seam-adjacent lines carry a
// colon and the attribute list plainly continues into the next column.
func (s *Segmenter) mergeColumnSeam(rows []row) []row {
	rc := seamIndex(rows)
	if rc <= 0 {
		return rows
	}
	if slices.Contains(s.rules.SeamExceptions, rows[rc].text) {
		return rows
	}
	left, right := rows[rc-1], rows[rc]
	gapOK := left.dY0 != nil && abs(*left.dY0) <= s.maxDY0
	colonOK := strings.Contains(left.text, ":") && strings.Contains(right.text, ":")
	if !gapOK && !colonOK {
		return rows
	}
	target, source := left.segID, right.segID
	if target == source {
		return rows
	}
	for i := range rows {
		if rows[i].segID == source {
			rows[i].segID = target
		}
	}
	return rows
}

// renumberIDs remaps segment ids to a contiguous 0..n sequence in order of
// first appearance, closing the gaps the removal passes leave behind.
func renumberIDs(rows []row) []row {
	next := 0
	mapping := map[int]int{}
	for i := range rows {
		id, ok := mapping[rows[i].segID]
		if !ok {
			id = next
			mapping[rows[i].segID] = id
			next++
		}
		rows[i].segID = id
	}
	return rows
}

func build(pageIndex int, filename string, rows []row) []*Segment {
	var segs []*Segment
	for _, r := range rows {
		if len(segs) == 0 || segs[len(segs)-1].Ref.Index != r.segID {
			segs = append(segs, &Segment{
				Ref:      Ref{Page: pageIndex, Index: r.segID},
				Filename: filename,
			})
		}
		cur := segs[len(segs)-1]
		cur.Lines = append(cur.Lines, Line{Text: r.text, LineID: r.lineID, DY0: r.dY0})
	}
	return segs
}

// seamIndex returns the index of the first right-column line that follows a
// left-column line, or -1 when the page has no such seam.
func seamIndex(rows []row) int {
	for i := 1; i < len(rows); i++ {
		if rows[i].column == layout.ColumnRight && rows[i-1].column == layout.ColumnLeft {
			return i
		}
	}
	return -1
}

func maxSegID(rows []row) int {
	m := 0
	for _, r := range rows {
		if r.segID > m {
			m = r.segID
		}
	}
	return m
}

func deleteSegID(rows []row, id int) []row {
	out := rows[:0]
	for _, r := range rows {
		if r.segID != id {
			out = append(out, r)
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
