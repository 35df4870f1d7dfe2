// Package entity converts merged segments into structured directory records.
package entity

import "github.com/blattlab/blatt/internal/segment"

// Entity is the structured record extracted from one (possibly page-spanning)
// segment: the entry's name and its attribute mapping, with provenance back
// to the source segment.
type Entity struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`

	// SourceSegment is the "<filename>_<segment id>" provenance key.
	SourceSegment string      `json:"source_segment"`
	Ref           segment.Ref `json:"ref"`

	// AttrsFound and RawEntries form the length-consistency diagnostic:
	// AttrsFound counts distinct attribute keys, RawEntries counts the
	// provenance record plus every raw key/value pair produced. When
	// AttrsFound+1 < RawEntries, duplicate keys collapsed during map
	// construction and the record deserves manual review.
	AttrsFound int `json:"attrs_found"`
	RawEntries int `json:"raw_entries"`
}
