package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blattlab/blatt/internal/config"
	"github.com/blattlab/blatt/internal/diag"
	"github.com/blattlab/blatt/internal/entity"
	"github.com/blattlab/blatt/internal/pipeline"
	"github.com/blattlab/blatt/internal/segment"
)

func testResult() *pipeline.Result {
	return &pipeline.Result{
		RunID: "test-run",
		Pages: 2,
		Texts: map[string]pipeline.SegmentText{
			"p_0001.xml_0": {Key: "p_0001.xml_0", Text: "Acme GmbH\nSitz: Berlin", TextJoined: "Acme GmbH Sitz: Berlin"},
		},
		Entities: []entity.Entity{
			{
				Name:          "Acme GmbH",
				SourceSegment: "p_0001.xml_0",
				Ref:           segment.Ref{Page: 0, Index: 0},
				Attributes:    map[string]string{"Sitz": "Berlin"},
				AttrsFound:    1,
				RawEntries:    2,
			},
			{
				Name:          "Beta Werke",
				SourceSegment: "p_0002.xml_0",
				Ref:           segment.Ref{Page: 1, Index: 0},
				Attributes:    map[string]string{"Sitz": "Ulm"},
				AttrsFound:    1,
				RawEntries:    2,
			},
		},
		Diagnostics: []diag.Diagnostic{
			{Kind: diag.KindMergeSkipped, Source: "p_0002.xml_0", Detail: "segment has 1 line(s), need 2 for the gap check"},
		},
	}
}

func testServer(apiKey string) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(testResult(), log, config.Serve{Addr: ":0", APIKey: apiKey})
}

func doRequest(t *testing.T, s *Server, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRunMetadata(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		RunID       string `json:"run_id"`
		Pages       int    `json:"pages"`
		Entities    int    `json:"entities"`
		Diagnostics int    `json:"diagnostics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RunID != "test-run" || body.Pages != 2 || body.Entities != 2 || body.Diagnostics != 1 {
		t.Errorf("unexpected metadata %+v", body)
	}
}

func TestListEntities(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/entities", nil)
	var body struct {
		Count    int             `json:"count"`
		Entities []entity.Entity `json:"entities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Entities) != 2 {
		t.Errorf("expected both entities, got %+v", body)
	}
}

func TestListEntitiesFiltered(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/entities?q=beta", nil)
	var body struct {
		Count    int             `json:"count"`
		Entities []entity.Entity `json:"entities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Entities[0].Name != "Beta Werke" {
		t.Errorf("unexpected filter result %+v", body)
	}
}

func TestGetEntityWithSourceText(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/entities/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Entity     entity.Entity        `json:"entity"`
		SourceText pipeline.SegmentText `json:"source_text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Entity.Name != "Acme GmbH" {
		t.Errorf("unexpected entity %+v", body.Entity)
	}
	if body.SourceText.TextJoined != "Acme GmbH Sitz: Berlin" {
		t.Errorf("unexpected source text %+v", body.SourceText)
	}
}

func TestGetEntityNotFound(t *testing.T) {
	for _, target := range []string{"/api/entities/99", "/api/entities/abc"} {
		rec := doRequest(t, testServer(""), http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
	}
}

func TestGetSegment(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/segments/p_0001.xml_0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body pipeline.SegmentText
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Text != "Acme GmbH\nSitz: Berlin" {
		t.Errorf("unexpected segment text %+v", body)
	}
}

func TestGetSegmentNotFound(t *testing.T) {
	rec := doRequest(t, testServer(""), http.MethodGet, "/api/segments/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := testServer("secret")

	rec := doRequest(t, s, http.MethodGet, "/api/run", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON error body, got %q", rec.Body.String())
	}
	if body["error"] == "" {
		t.Errorf("expected an error field, got %v", body)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/run", http.Header{"Authorization": {"Bearer wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong token, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/run", http.Header{"Authorization": {"Bearer secret"}})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the right token, got %d", rec.Code)
	}

	// Health stays open.
	rec = doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", rec.Code)
	}
}
