// Package diag collects heuristic-ambiguity diagnostics. The pipeline never
// fails on these; they are retained for manual review of the affected
// segments alongside the structured output.
package diag

import (
	"log/slog"
	"sync"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindMergeSkipped: a cross-page merge precondition was not met and
	// the segment was left unmerged.
	KindMergeSkipped Kind = "merge_skipped"
	// KindLengthMismatch: an entity's attribute count does not match the
	// number of raw entries, i.e. duplicate keys collapsed.
	KindLengthMismatch Kind = "length_mismatch"
	// KindLineSkipped: a transcribed line was excluded during loading.
	KindLineSkipped Kind = "line_skipped"
)

// Diagnostic is one recorded condition with provenance.
type Diagnostic struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source"` // segment key or filename/line id
	Detail string `json:"detail"`
}

// Collector is a concurrency-safe diagnostic sink. Reported diagnostics are
// logged immediately and retained for the run result.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
	log   *slog.Logger
}

func NewCollector(log *slog.Logger) *Collector {
	return &Collector{log: log}
}

// Report records a diagnostic. A nil collector discards it.
func (c *Collector) Report(d Diagnostic) {
	if c == nil {
		return
	}
	if c.log != nil {
		c.log.Warn("diagnostic", "kind", string(d.Kind), "source", d.Source, "detail", d.Detail)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Items returns a copy of all diagnostics reported so far.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}
