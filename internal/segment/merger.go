package segment

import (
	"fmt"
	"strings"

	"github.com/blattlab/blatt/internal/diag"
)

// Merger stitches a page's first segment onto the previous page's last
// emitted segment when it is evidently the continuation of an entry that ran
// over the page break. It needs the full page sequence: the continuation
// evidence spans a page boundary and cannot be judged while a single page is
// processed.
type Merger struct {
	maxDY0    int
	collector *diag.Collector
}

func NewMerger(maxDY0 int, collector *diag.Collector) *Merger {
	return &Merger{maxDY0: maxDY0, collector: collector}
}

// Merge flattens the per-page segments into document order and applies the
// continuation rule at every page boundary. Merging appends the incoming
// segment's lines to the previous segment, so an entry spanning several
// pages chains naturally: repeating the pass finds nothing further to merge.
func (m *Merger) Merge(pages []PageSegments) []*Segment {
	var out []*Segment
	for _, page := range pages {
		for i, seg := range page.Segments {
			if i == 0 && len(out) > 0 && m.continues(out[len(out)-1], seg) {
				prev := out[len(out)-1]
				prev.Lines = append(prev.Lines, seg.Lines...)
				continue
			}
			out = append(out, seg)
		}
	}
	return out
}

// continues reports whether incoming carries on the entry that prev ends
// with: either the incoming segment's first two lines sit tight against
// their successors (no entry-sized gap anywhere near the page top), or both
// sides of the page break look like attribute continuations.
func (m *Merger) continues(prev, incoming *Segment) bool {
	if len(incoming.Lines) < 2 {
		if m.collector != nil {
			m.collector.Report(diag.Diagnostic{
				Kind:   diag.KindMergeSkipped,
				Source: incoming.Key(),
				Detail: fmt.Sprintf("segment has %d line(s), need 2 for the gap check", len(incoming.Lines)),
			})
		}
		return false
	}
	gapOK := withinGap(incoming.Lines[0].DY0, m.maxDY0) && withinGap(incoming.Lines[1].DY0, m.maxDY0)
	colonOK := len(prev.Lines) > 0 &&
		strings.Contains(prev.Lines[len(prev.Lines)-1].Text, ":") &&
		strings.Contains(incoming.Lines[0].Text, ":")
	return gapOK || colonOK
}

func withinGap(d *int, max int) bool {
	return d != nil && *d <= max
}
