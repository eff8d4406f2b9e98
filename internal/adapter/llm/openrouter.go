// Package llm holds the chat-completion client that produces contract reviews.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"clausecheck/internal/domain"
)

const (
	DefaultModel   = "deepseek/deepseek-r1-0528:free"
	DefaultBaseURL = "https://openrouter.ai/api/v1/"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 512
)

// ErrClientSpent is returned when Review is called on a client that has
// already sent its request.
var ErrClientSpent = errors.New("review client already used")

// State tracks the single request a Client may send.
type State int

const (
	StateIdle State = iota
	StateSent
	StateSucceeded
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateSucceeded:
		return "succeeded"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config configures a Client. Empty fields take the package defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client sends one prompt to an OpenAI-compatible chat completions endpoint
// and classifies the outcome. It is single-shot and never retries.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	http     *http.Client
	logger   zerolog.Logger

	mu    sync.Mutex
	state State
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("review client requires an API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:    cfg.Model,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}, nil
}

func (c *Client) ModelName() string { return c.model }

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Review sends prompt as a single user message and returns the first
// choice's content. Every failure is a *domain.ReviewError.
func (c *Client) Review(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrClientSpent
	}
	c.state = StateSent
	c.mu.Unlock()

	start := time.Now()
	text, err := c.send(ctx, prompt)

	final := StateSucceeded
	if err != nil {
		final = StateFailed
		if domain.IsTimeout(err) {
			final = StateTimedOut
		}
	}
	c.mu.Lock()
	c.state = final
	c.mu.Unlock()

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.Str("model", c.model).Str("state", final.String()).Dur("elapsed", time.Since(start)).Msg("review request finished")

	return text, err
}

func (c *Client) send(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", requestError(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", requestError(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("endpoint", c.endpoint).Int("prompt_bytes", len(prompt)).Msg("sending review request")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", requestError(&StatusError{StatusCode: resp.StatusCode, Body: excerpt(body)})
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", malformed(fmt.Errorf("parsing response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", malformed(errors.New("no choices in response"))
	}
	msg := result.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", malformed(errors.New("missing message content in first choice"))
	}
	return *msg.Content, nil
}

// StatusError is the cause of a request error for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func classifyTransport(err error) error {
	if isTimeout(err) {
		return &domain.ReviewError{Kind: domain.FailureTimeout, Err: err}
	}
	return requestError(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func requestError(err error) error {
	return &domain.ReviewError{Kind: domain.FailureRequest, Err: err}
}

func malformed(err error) error {
	return &domain.ReviewError{Kind: domain.FailureMalformedResponse, Err: err}
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message *responseMessage `json:"message"`
}

type responseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}
