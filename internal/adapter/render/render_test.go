package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"clausecheck/internal/domain"
)

func sampleView(result domain.ReviewResult) View {
	return View{
		DocPath: "lease.txt",
		Model:   "test-model",
		Retrieved: []domain.ScoredChunk{
			{Chunk: domain.Chunk{Index: 4, Start: 10, End: 40, Text: "The landlord may enter at any time."}, Score: 0.82},
			{Chunk: domain.Chunk{Index: 1, Start: 0, End: 12, Text: "Rent is due."}, Score: 0.41},
		},
		Result: result,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"MD", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{" html ", FormatHTML, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMarkdown_Success(t *testing.T) {
	v := sampleView(domain.ResultFrom("Clause 1 is **unfair**.", nil))
	v.Echo = true
	v.Document = "full contract text"

	md := Markdown(v)
	for _, want := range []string{
		"## Uploaded Contract",
		"full contract text",
		"# Contract Analysis and Suggested Revisions",
		"Clause 1 is **unfair**.",
		"**Clause chunk 1** (chunk #4, similarity 0.820)",
		"> The landlord may enter at any time.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "Uploaded Contract") > strings.Index(md, ReviewTitle) {
		t.Error("echoed document should precede the review")
	}
}

func TestMarkdown_Failure(t *testing.T) {
	err := &domain.ReviewError{Kind: domain.FailureTimeout, Err: errors.New("deadline")}
	md := Markdown(sampleView(domain.ResultFrom("", err)))
	if !strings.Contains(md, "Review request timed out. Please try again later.") {
		t.Errorf("markdown should carry the failure message:\n%s", md)
	}
}

func TestHTML(t *testing.T) {
	v := sampleView(domain.ResultFrom("1. **Clause 3** is unfair.\n\n<script>alert(1)</script>", nil))
	out, err := HTML(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Contract Analysis and Suggested Revisions</title>",
		"<h1>Contract Analysis and Suggested Revisions</h1>",
		"<strong>Clause 3</strong>",
		"<blockquote>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("raw HTML from the model must not be passed through")
	}
}

func TestJSON(t *testing.T) {
	err := &domain.ReviewError{Kind: domain.FailureRequest, Err: errors.New("status 500")}
	data, jerr := JSON(sampleView(domain.ResultFrom("", err)))
	if jerr != nil {
		t.Fatal(jerr)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "failed" || got["error_kind"] != "RequestError" {
		t.Errorf("status fields = %v, %v", got["status"], got["error_kind"])
	}
	if got["error"] != "Review request error: status 500" {
		t.Errorf("error = %v", got["error"])
	}
	if _, ok := got["review"]; ok {
		t.Error("failed review should omit review text")
	}
	retrieved, _ := got["retrieved"].([]any)
	if len(retrieved) != 2 {
		t.Fatalf("retrieved = %v", got["retrieved"])
	}
	first := retrieved[0].(map[string]any)
	if first["index"] != float64(4) {
		t.Errorf("first retrieved index = %v", first["index"])
	}
}

func TestTerminal(t *testing.T) {
	out := Terminal(sampleView(domain.ResultFrom("All clauses are fair.", nil)), 0)
	for _, want := range []string{ReviewTitle, "lease.txt", "test-model", "2 clause chunk(s) reviewed", "All clauses are fair."} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, DocumentTitle) {
		t.Error("document should only be shown with Echo")
	}

	out = Terminal(sampleView(domain.ResultFrom("", &domain.ReviewError{Kind: domain.FailureMalformedResponse, Err: errors.New("no choices in response")})), 80)
	if !strings.Contains(out, "Review service returned a malformed response: no choices in response") {
		t.Errorf("terminal output missing failure message:\n%s", out)
	}
}

func TestChunksAndRetrieved(t *testing.T) {
	v := sampleView(domain.ResultFrom("", nil))
	out := Retrieved(v.Retrieved, 60)
	if !strings.Contains(out, "1. chunk #4") || !strings.Contains(out, "score=0.8200") {
		t.Errorf("retrieved listing:\n%s", out)
	}

	out = Chunks([]domain.Chunk{{Index: 0, Start: 0, End: 5, Text: "hello"}}, 0)
	if !strings.Contains(out, "#0  runes 0-5") || !strings.Contains(out, "hello") {
		t.Errorf("chunk listing:\n%s", out)
	}
}

func TestRender_Dispatch(t *testing.T) {
	v := sampleView(domain.ResultFrom("ok", nil))
	for _, f := range []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON} {
		var buf bytes.Buffer
		if err := Render(&buf, f, v, 80); err != nil {
			t.Errorf("Render(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Render(%s) wrote nothing", f)
		}
	}
	if err := Render(&bytes.Buffer{}, Format("yaml"), v, 80); err == nil {
		t.Error("expected error for unknown format")
	}
}
