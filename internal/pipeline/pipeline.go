// Package pipeline runs the full reconstruction: load pages, order columns,
// segment, merge across page breaks, extract entities.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/blattlab/blatt/internal/config"
	"github.com/blattlab/blatt/internal/diag"
	"github.com/blattlab/blatt/internal/entity"
	"github.com/blattlab/blatt/internal/hyphen"
	"github.com/blattlab/blatt/internal/layout"
	"github.com/blattlab/blatt/internal/pagexml"
	"github.com/blattlab/blatt/internal/segment"
)

// SegmentText is the pair of auxiliary plain-text views of one segment:
// the line-break-preserving join and the hyphen-repaired single line.
type SegmentText struct {
	Key        string `json:"key"`
	Text       string `json:"text"`
	TextJoined string `json:"text_joined"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID       string                 `json:"run_id"`
	Pages       int                    `json:"pages"`
	Segments    []*segment.Segment     `json:"-"`
	Texts       map[string]SegmentText `json:"texts"`
	Entities    []entity.Entity        `json:"entities"`
	Diagnostics []diag.Diagnostic      `json:"diagnostics"`
}

// Pipeline wires the stages together. Per-page segmentation and per-segment
// extraction run concurrently under a worker bound; the cross-page merge is
// the single sequential step in between, since it needs all pages in page
// order.
type Pipeline struct {
	cfg config.Config
	log *slog.Logger
}

func New(cfg config.Config, log *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run processes the given PAGE XML files, which must already be in page
// order. A fatal input error on any page stops the run.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no page files to process")
	}
	collector := diag.NewCollector(p.log)
	seg := segment.New(p.cfg)

	// Stage 1: load + order + segment, concurrently, joined in page order.
	type pageResult struct {
		segs *segment.PageSegments
		err  error
	}
	results := make([]pageResult, len(paths))
	sem := make(chan struct{}, p.cfg.Workers)
	done := make(chan int, len(paths))

	for i, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		go func(i int, path string) {
			defer func() { <-sem }()
			page, err := pagexml.ReadFile(path, collector)
			if err != nil {
				results[i] = pageResult{err: err}
				done <- i
				return
			}
			ordered := layout.Order(page)
			results[i] = pageResult{segs: &segment.PageSegments{
				PageIndex: i,
				Filename:  page.Filename,
				Segments:  seg.Page(i, page.Filename, ordered),
			}}
			done <- i
		}(i, path)
	}
	for range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
		}
	}

	pages := make([]segment.PageSegments, 0, len(paths))
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", i, paths[i], r.err)
		}
		pages = append(pages, *r.segs)
	}

	// Stage 2: sequential cross-page merge.
	merged := segment.NewMerger(p.cfg.MaxDY0, collector).Merge(pages)
	p.log.Info("segmentation complete", "pages", len(pages), "segments", len(merged))

	// Stage 3: per-segment extraction, concurrently, joined in order.
	extractor := entity.NewExtractor(p.cfg.Extractor, collector)
	entities := make([]entity.Entity, len(merged))
	extractDone := make(chan struct{}, len(merged))
	for i, s := range merged {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		go func(i int, s *segment.Segment) {
			defer func() { <-sem }()
			entities[i] = extractor.Extract(s)
			extractDone <- struct{}{}
		}(i, s)
	}
	for range merged {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-extractDone:
		}
	}

	texts := make(map[string]SegmentText, len(merged))
	for _, s := range merged {
		lines := s.Texts()
		texts[s.Key()] = SegmentText{
			Key:        s.Key(),
			Text:       strings.Join(lines, "\n"),
			TextJoined: hyphen.Join(lines),
		}
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Pages:       len(pages),
		Segments:    merged,
		Texts:       texts,
		Entities:    entities,
		Diagnostics: collector.Items(),
	}
	p.log.Info("extraction complete",
		"run_id", res.RunID, "entities", len(res.Entities), "diagnostics", len(res.Diagnostics))
	return res, nil
}
