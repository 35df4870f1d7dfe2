// Package segment turns the reading-order lines of a page into logical
// segments, one segment per directory entry, and stitches entries that
// continue across page boundaries.
package segment

import "strconv"

// Ref identifies a segment structurally: position of its page in the
// processed sequence plus the segment index within that page.
type Ref struct {
	Page  int `json:"page"`
	Index int `json:"index"`
}

// Line is one reading-order line owned by a segment.
type Line struct {
	Text   string
	LineID string
	// DY0 is the vertical gap to the next line in the page's reading
	// order; nil for the last line of a page.
	DY0 *int
}

// Segment is a contiguous run of reading-order lines believed to form one
// directory entry. After cross-page merging a segment may carry lines from
// more than one page; Ref and Key always point at the page the entry
// started on.
type Segment struct {
	Ref      Ref
	Filename string
	Lines    []Line
}

// Key is the provenance key "<filename>_<segment index>" used in exports.
func (s *Segment) Key() string {
	return s.Filename + "_" + strconv.Itoa(s.Ref.Index)
}

// Texts returns the line texts in order.
func (s *Segment) Texts() []string {
	out := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = l.Text
	}
	return out
}

// PageSegments is the ordered segmentation result of one page.
type PageSegments struct {
	PageIndex int
	Filename  string
	Segments  []*Segment
}
