// Package pagexml loads PAGE XML files (the PRImA pagecontent dialect
// produced by Transkribus and OCR-D tooling) into line records for the
// layout stage.
package pagexml

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/blattlab/blatt/internal/diag"
	"github.com/blattlab/blatt/internal/layout"
)

// Namespace is the required PAGE XML namespace prefix. Files from other
// markup dialects are rejected outright rather than half-parsed.
const Namespace = "http://schema.primaresearch.org/PAGE/gts/pagecontent/"

type pcGTS struct {
	XMLName xml.Name `xml:"PcGts"`
	Page    struct {
		Regions []struct {
			Lines []struct {
				ID       string `xml:"id,attr"`
				Baseline *struct {
					Points string `xml:"points,attr"`
				} `xml:"Baseline"`
				TextEquivs []struct {
					Unicode string `xml:"Unicode"`
				} `xml:"TextEquiv"`
			} `xml:"TextLine"`
		} `xml:"TextRegion"`
	} `xml:"Page"`
}

// ReadFile parses one PAGE XML file into a Page. Lines without baseline
// geometry are reported as line_skipped diagnostics and excluded; a file
// outside the PAGE namespace or with only untranscribed lines is a fatal
// input error.
func ReadFile(path string, diags *diag.Collector) (*layout.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page file: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.CharsetReader = charset.NewReaderLabel

	var doc pcGTS
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if !strings.Contains(doc.XMLName.Space, Namespace) {
		return nil, fmt.Errorf("%s: not a PAGE XML file (namespace %q)", filepath.Base(path), doc.XMLName.Space)
	}

	page := &layout.Page{Filename: filepath.Base(path)}
	hasText := false
	for regionID, region := range doc.Page.Regions {
		for _, line := range region.Lines {
			if line.Baseline == nil || line.Baseline.Points == "" {
				skipLine(diags, page.Filename, line.ID, "no baseline points")
				continue
			}
			baseline, err := parsePoints(line.Baseline.Points)
			if err != nil {
				skipLine(diags, page.Filename, line.ID, err.Error())
				continue
			}
			if len(baseline) < 2 {
				skipLine(diags, page.Filename, line.ID, "baseline has fewer than two points")
				continue
			}
			var text string
			if len(line.TextEquivs) > 0 {
				text = line.TextEquivs[0].Unicode
			}
			if text != "" {
				hasText = true
			}
			page.Lines = append(page.Lines, layout.LineRecord{
				Text:     text,
				RegionID: regionID,
				LineID:   line.ID,
				Baseline: baseline,
			})
		}
	}
	if !hasText {
		return nil, fmt.Errorf("%s: page contains only empty text lines", page.Filename)
	}
	return page, nil
}

func skipLine(diags *diag.Collector, filename, lineID, reason string) {
	diags.Report(diag.Diagnostic{
		Kind:   diag.KindLineSkipped,
		Source: filename + "/" + lineID,
		Detail: reason,
	})
}

// parsePoints parses the PAGE points attribute: "x1,y1 x2,y2 ...".
func parsePoints(s string) ([]layout.Point, error) {
	fields := strings.Fields(s)
	points := make([]layout.Point, 0, len(fields))
	for _, field := range fields {
		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("malformed point %q", field)
		}
		x, err := strconv.Atoi(xs)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", field, err)
		}
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", field, err)
		}
		points = append(points, layout.Point{X: x, Y: y})
	}
	return points, nil
}

// Files lists the PAGE XML files of a directory in lexical (page-number)
// order.
func Files(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("list page files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
