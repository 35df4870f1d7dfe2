package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blattlab/blatt/internal/config"
)

type testLine struct {
	text string
	x, y int
}

// writePageXML renders a minimal single-region PAGE XML page from line
// geometry and drops it into dir.
func writePageXML(t *testing.T, dir, name string, lines []testLine) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15">` + "\n")
	b.WriteString("  <Page>\n    <TextRegion id=\"r0\">\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "      <TextLine id=\"l%d\">\n", i+1)
		fmt.Fprintf(&b, "        <Baseline points=\"%d,%d %d,%d\"/>\n", l.x, l.y, l.x+350, l.y)
		fmt.Fprintf(&b, "        <TextEquiv><Unicode>%s</Unicode></TextEquiv>\n", l.text)
		b.WriteString("      </TextLine>\n")
	}
	b.WriteString("    </TextRegion>\n  </Page>\n</PcGts>\n")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	p1 := writePageXML(t, dir, "p_0001.xml", []testLine{
		{"Acme GmbH", 100, 100},
		{"Kapital: 500000 RM", 100, 150},
		{"Gegründet 1880.", 100, 200},
		{"Beta Werke", 100, 350},
		{"Sitz: Berlin", 100, 400},
	})
	// The first entry of this page continues the last entry of the
	// previous page: the page-top gaps are tight.
	p2 := writePageXML(t, dir, "p_0002.xml", []testLine{
		{"Gründung: 1890", 100, 100},
		{"Fernruf: 123", 100, 150},
		{"Lager: Hamburg", 100, 200},
		{"Gamma AG", 100, 350},
		{"siehe Acme GmbH", 100, 400},
	})

	res, err := New(config.Default(), discard()).Run(context.Background(), []string{p1, p2})
	if err != nil {
		t.Fatal(err)
	}

	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", res.Pages)
	}
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments after the cross-page merge, got %d", len(res.Segments))
	}
	if len(res.Entities) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(res.Entities))
	}

	acme := res.Entities[0]
	if acme.Name != "Acme GmbH" || acme.Attributes["Kapital"] != "500000 RM Gegründet 1880." {
		t.Errorf("unexpected first entity %+v", acme)
	}

	beta := res.Entities[1]
	if beta.Name != "Beta Werke" {
		t.Errorf("unexpected second entity name %q", beta.Name)
	}
	for key, want := range map[string]string{
		"Sitz":     "Berlin",
		"Gründung": "1890",
		"Fernruf":  "123",
		"Lager":    "Hamburg",
	} {
		if got := beta.Attributes[key]; got != want {
			t.Errorf("expected %s=%q across the page break, got %q", key, want, got)
		}
	}
	if beta.SourceSegment != "p_0001.xml_1" {
		t.Errorf("merged entity must keep the opening page's key, got %q", beta.SourceSegment)
	}

	gamma := res.Entities[2]
	if gamma.Name != "Gamma AG" || gamma.Attributes["siehe"] != "Acme GmbH" {
		t.Errorf("unexpected third entity %+v", gamma)
	}
}

func TestRunTextViews(t *testing.T) {
	dir := t.TempDir()
	p1 := writePageXML(t, dir, "p_0001.xml", []testLine{
		{"Maschinen-", 100, 100},
		{"fabrik Huber", 100, 150},
		{"Sitz: Ulm", 100, 200},
	})
	res, err := New(config.Default(), discard()).Run(context.Background(), []string{p1})
	if err != nil {
		t.Fatal(err)
	}
	txt, ok := res.Texts["p_0001.xml_0"]
	if !ok {
		t.Fatalf("missing text view, have %v", res.Texts)
	}
	if txt.Text != "Maschinen-\nfabrik Huber\nSitz: Ulm" {
		t.Errorf("unexpected line-break view %q", txt.Text)
	}
	if txt.TextJoined != "Maschinenfabrik Huber Sitz: Ulm" {
		t.Errorf("unexpected joined view %q", txt.TextJoined)
	}
}

func TestRunFailsOnBadPage(t *testing.T) {
	dir := t.TempDir()
	good := writePageXML(t, dir, "p_0001.xml", []testLine{
		{"Acme GmbH", 100, 100},
		{"Sitz: Berlin", 100, 150},
	})
	bad := filepath.Join(dir, "p_0002.xml")
	if err := os.WriteFile(bad, []byte("<broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(config.Default(), discard()).Run(context.Background(), []string{good, bad}); err == nil {
		t.Fatal("expected the run to fail on the malformed page")
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	if _, err := New(config.Default(), discard()).Run(context.Background(), nil); err == nil {
		t.Fatal("expected an error for an empty file list")
	}
}
