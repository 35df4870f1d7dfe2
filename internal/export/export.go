// Package export renders pipeline output as plain text, TSV and JSON for
// downstream curation tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/blattlab/blatt/internal/entity"
	"github.com/blattlab/blatt/internal/hyphen"
	"github.com/blattlab/blatt/internal/layout"
	"github.com/blattlab/blatt/internal/pipeline"
)

// PageText returns the plain-text view of a page in source order. With
// linebreaks the lines are joined verbatim; without, soft hyphenation is
// resolved and the page becomes one continuous line of text.
func PageText(p *layout.Page, linebreaks bool) string {
	lines := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = l.Text
	}
	if linebreaks {
		return strings.Join(lines, "\n")
	}
	return hyphen.Join(lines)
}

// WriteLinesTSV dumps a page's line records as TSV: text, region id, line id
// and the baseline points.
func WriteLinesTSV(w io.Writer, p *layout.Page) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	for _, l := range p.Lines {
		points := make([]string, len(l.Baseline))
		for i, pt := range l.Baseline {
			points[i] = fmt.Sprintf("%d,%d", pt.X, pt.Y)
		}
		rec := []string{
			l.Text,
			fmt.Sprintf("%d", l.RegionID),
			l.LineID,
			strings.Join(points, " "),
		}
		if err := tsv.Write(rec); err != nil {
			return fmt.Errorf("write tsv record: %w", err)
		}
	}
	tsv.Flush()
	return tsv.Error()
}

// WriteEntitiesJSON writes the full run result, entities with provenance
// plus text views and diagnostics, as indented JSON.
func WriteEntitiesJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode entities: %w", err)
	}
	return nil
}

// WriteEntitiesTSV writes one row per entity: name, provenance, the length
// diagnostic and the attributes flattened to "key: value" pairs in sorted
// key order.
func WriteEntitiesTSV(w io.Writer, entities []entity.Entity) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	if err := tsv.Write([]string{"name", "source_segment", "attrs_found", "raw_entries", "attributes"}); err != nil {
		return fmt.Errorf("write tsv header: %w", err)
	}
	for _, e := range entities {
		keys := make([]string, 0, len(e.Attributes))
		for k := range e.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + ": " + e.Attributes[k]
		}
		rec := []string{
			e.Name,
			e.SourceSegment,
			fmt.Sprintf("%d", e.AttrsFound),
			fmt.Sprintf("%d", e.RawEntries),
			strings.Join(pairs, "; "),
		}
		if err := tsv.Write(rec); err != nil {
			return fmt.Errorf("write tsv record: %w", err)
		}
	}
	tsv.Flush()
	return tsv.Error()
}
