package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"clausecheck/internal/domain"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: url + "/api/v1/",
		Model:   "test-model",
		Timeout: timeout,
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClient_Review(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("Path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		if body["model"] != "test-model" {
			t.Errorf("model = %v", body["model"])
		}
		if body["stream"] != false {
			t.Errorf("stream = %v, want false", body["stream"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 1 {
			t.Errorf("messages = %v", body["messages"])
			return
		}
		msg := msgs[0].(map[string]any)
		if msg["role"] != "user" || msg["content"] != "review this" {
			t.Errorf("message = %v", msg)
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Clause 2 is unfair."}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Second)
	if c.State() != StateIdle {
		t.Errorf("initial state = %s", c.State())
	}

	text, err := c.Review(context.Background(), "review this")
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if text != "Clause 2 is unfair." {
		t.Errorf("text = %q", text)
	}
	if c.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", c.State())
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Millisecond)
	_, err := c.Review(context.Background(), "p")
	if !domain.IsTimeout(err) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if c.State() != StateTimedOut {
		t.Errorf("state = %s, want timed_out", c.State())
	}

	res := domain.ResultFrom("", err)
	if res.Status != domain.StatusTimedOut {
		t.Errorf("status = %s", res.Status)
	}
	if res.Message() != "Review request timed out. Please try again later." {
		t.Errorf("message = %q", res.Message())
	}
}

func TestClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	c := newTestClient(t, server.URL, time.Minute)
	if _, err := c.Review(ctx, "p"); !domain.IsTimeout(err) {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"upstream exploded"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Second)
	_, err := c.Review(context.Background(), "p")
	if domain.Classify(err) != domain.FailureRequest {
		t.Fatalf("kind = %s, want RequestError (err=%v)", domain.Classify(err), err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 500 {
		t.Fatalf("expected StatusError with 500, got %v", err)
	}
	if !strings.Contains(statusErr.Body, "upstream exploded") {
		t.Errorf("body excerpt = %q", statusErr.Body)
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s, want failed", c.State())
	}
	msg := domain.ResultFrom("", err).Message()
	if !strings.HasPrefix(msg, "Review request error: ") || !strings.Contains(msg, "500") {
		t.Errorf("message = %q", msg)
	}
}

func TestClient_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty choices", `{"choices":[]}`},
		{"missing message", `{"choices":[{}]}`},
		{"missing content", `{"choices":[{"message":{"role":"assistant"}}]}`},
		{"not json", `<html>gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, time.Second)
			_, err := c.Review(context.Background(), "p")
			if domain.Classify(err) != domain.FailureMalformedResponse {
				t.Errorf("kind = %s, want MalformedResponse (err=%v)", domain.Classify(err), err)
			}
			if c.State() != StateFailed {
				t.Errorf("state = %s, want failed", c.State())
			}
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url, time.Second)
	_, err := c.Review(context.Background(), "p")
	if domain.Classify(err) != domain.FailureRequest {
		t.Errorf("kind = %s, want RequestError (err=%v)", domain.Classify(err), err)
	}
}

func TestClient_SingleShot(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Second)
	c.Review(context.Background(), "p")
	if _, err := c.Review(context.Background(), "p"); !errors.Is(err, ErrClientSpent) {
		t.Errorf("second Review error = %v, want ErrClientSpent", err)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry)", calls)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	if _, err := NewClient(Config{}, zerolog.Nop()); err == nil {
		t.Error("expected error without API key")
	}

	c, err := NewClient(Config{APIKey: "k"}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if c.Endpoint() != "https://openrouter.ai/api/v1/chat/completions" {
		t.Errorf("Endpoint = %q", c.Endpoint())
	}
	if c.ModelName() != DefaultModel {
		t.Errorf("ModelName = %q", c.ModelName())
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s", c.http.Timeout)
	}
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	for _, base := range []string{"http://host/v1", "http://host/v1/", "http://host/v1//"} {
		c, err := NewClient(Config{APIKey: "k", BaseURL: base}, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		if c.Endpoint() != "http://host/v1/chat/completions" {
			t.Errorf("base %q gave endpoint %q", base, c.Endpoint())
		}
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("a", maxErrorBody-1) + "ü" + "tail"
	got := excerpt([]byte(long))
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune: %q", got[len(got)-8:])
	}
	if want := strings.Repeat("a", maxErrorBody-1) + "..."; got != want {
		t.Errorf("excerpt kept %d bytes, want the rune dropped", len(got))
	}

	if got := excerpt([]byte("  short body \n")); got != "short body" {
		t.Errorf("excerpt = %q", got)
	}
}
