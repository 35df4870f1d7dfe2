package entity

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/blattlab/blatt/internal/config"
	"github.com/blattlab/blatt/internal/diag"
	"github.com/blattlab/blatt/internal/hyphen"
	"github.com/blattlab/blatt/internal/segment"
)

// Extractor turns a segment's text lines into an Entity. Extraction is
// total: every non-empty segment yields exactly one entity, falling back to
// the cross-reference and unclassified paths when no attribute line is
// found.
type Extractor struct {
	rules     config.Extractor
	collector *diag.Collector
}

func NewExtractor(rules config.Extractor, collector *diag.Collector) *Extractor {
	return &Extractor{rules: rules, collector: collector}
}

// Extract builds the entity for one merged segment.
func (e *Extractor) Extract(seg *segment.Segment) Entity {
	lines := hyphen.Merge(seg.Texts())
	v := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.ReplaceAll(line, "::", ":")
		if line != "" {
			v = append(v, line)
		}
	}

	ent := Entity{
		Attributes:    map[string]string{},
		SourceSegment: seg.Key(),
		Ref:           seg.Ref,
		RawEntries:    1, // the provenance record itself
	}
	if len(v) == 0 {
		ent.AttrsFound = 0
		return ent
	}

	sis := e.attributeIndices(v)

	// An entry heading sometimes carries the owner directly after the key
	// ("Müller & Co., Inhaber: Hans Müller."). That first hit is part of
	// the name, not an attribute.
	if len(sis) > 0 && strings.HasPrefix(v[sis[0]], e.rules.OwnerKey+":") {
		sis = sis[1:]
	}

	if len(sis) == 0 {
		e.fallback(&ent, v)
	} else {
		e.assign(&ent, v, sis)
	}

	ent.AttrsFound = len(ent.Attributes)
	if ent.AttrsFound+1 != ent.RawEntries {
		e.collector.Report(diag.Diagnostic{
			Kind:   diag.KindLengthMismatch,
			Source: ent.SourceSegment,
			Detail: fmt.Sprintf("%d attributes from %d raw entries: duplicate keys collapsed", ent.AttrsFound, ent.RawEntries),
		})
	}
	return ent
}

// attributeIndices returns the indices of the attribute-delimiter lines.
// A line qualifies when it contains a colon whose left side is a plausible
// key: non-empty, no digits, not a deputy continuation, not a configured
// artifact phrase.
func (e *Extractor) attributeIndices(v []string) []int {
	var sis []int
	for i, line := range v {
		if e.isAttributeLine(line) {
			sis = append(sis, i)
		}
	}
	return sis
}

func (e *Extractor) isAttributeLine(line string) bool {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return false
	}
	key := line[:idx]
	if key == "" {
		return false
	}
	if e.rules.DeputyMarker != "" && strings.Contains(strings.ToLower(key), e.rules.DeputyMarker) {
		return false
	}
	for _, r := range key {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return !slices.Contains(e.rules.ExcludedKeys, key)
}

// assign splits the segment at the attribute lines: everything before the
// first one is the name, and each attribute value runs from its key line to
// the next key line (or the end of the segment).
func (e *Extractor) assign(ent *Entity, v []string, sis []int) {
	ent.Name = joinSpace(v[:sis[0]])
	for i, si := range sis {
		key, rest := splitKey(v[si])
		parts := []string{rest}
		end := len(v)
		if i < len(sis)-1 {
			end = sis[i+1]
		}
		parts = append(parts, v[si+1:end]...)
		ent.Attributes[key] = joinSpace(parts)
		ent.RawEntries++
	}
}

// fallback handles segments without any attribute line. Cross-reference
// entries ("Acme Zweigwerk / siehe Acme GmbH") become a single synthetic
// attribute under the marker word, after repairing the marker's common OCR
// misreadings on the second line. Anything else follows the configured
// no-marker policy.
func (e *Extractor) fallback(ent *Entity, v []string) {
	if len(v) >= 2 {
		for _, fix := range e.rules.MarkerFixes {
			v[1] = strings.ReplaceAll(v[1], fix.From, fix.To)
		}
	}
	marker := e.rules.Marker + " "
	for i, line := range v {
		if strings.Contains(line, marker) {
			full := joinSpace(v)
			_, after, _ := strings.Cut(full, marker)
			ent.Name = joinSpace(v[:i])
			ent.Attributes[e.rules.Marker] = after
			ent.RawEntries++
			return
		}
	}
	switch e.rules.Fallback {
	case config.FallbackNameOnly:
		ent.Name = v[0]
	default:
		full := joinSpace(v)
		ent.Name = full
		ent.Attributes[e.rules.UnclassifiedKey] = full
		ent.RawEntries++
	}
}

// splitKey splits an attribute line at its first colon. A single space after
// the colon belongs to the delimiter, not the value.
func splitKey(line string) (key, rest string) {
	key, rest, _ = strings.Cut(line, ":")
	return key, strings.TrimPrefix(rest, " ")
}

func joinSpace(parts []string) string {
	out := strings.Join(parts, " ")
	return strings.TrimSpace(out)
}
