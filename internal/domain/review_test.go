package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestResultFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status ReviewStatus
		kind   FailureKind
		msg    string
	}{
		{"success", nil, StatusSucceeded, 0, ""},
		{"timeout", &ReviewError{Kind: FailureTimeout, Err: errors.New("deadline")}, StatusTimedOut, FailureTimeout, "timed out"},
		{"request", &ReviewError{Kind: FailureRequest, Err: errors.New("connection refused")}, StatusFailed, FailureRequest, "Review request error: connection refused"},
		{"malformed", &ReviewError{Kind: FailureMalformedResponse, Err: errors.New("no choices")}, StatusFailed, FailureMalformedResponse, "malformed response: no choices"},
		{"wrapped", fmt.Errorf("review: %w", &ReviewError{Kind: FailureTimeout}), StatusTimedOut, FailureTimeout, "timed out"},
		{"foreign", errors.New("boom"), StatusFailed, FailureRequest, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResultFrom("text", tt.err)
			if r.Status != tt.status {
				t.Errorf("Status = %s, want %s", r.Status, tt.status)
			}
			if r.Kind() != tt.kind {
				t.Errorf("Kind = %s, want %s", r.Kind(), tt.kind)
			}
			if r.Succeeded() != (tt.err == nil) {
				t.Errorf("Succeeded = %v", r.Succeeded())
			}
			if !strings.Contains(r.Message(), tt.msg) {
				t.Errorf("Message = %q, want it to contain %q", r.Message(), tt.msg)
			}
			if tt.err == nil && r.Text != "text" {
				t.Errorf("Text = %q", r.Text)
			}
			if tt.err != nil && r.Text != "" {
				t.Errorf("failed result carries text %q", r.Text)
			}
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	for k, want := range map[FailureKind]string{
		FailureTimeout:           "Timeout",
		FailureRequest:           "RequestError",
		FailureMalformedResponse: "MalformedResponse",
		0:                        "Unknown",
	} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}

func TestChunkLen(t *testing.T) {
	if n := (Chunk{Start: 3, End: 10}).Len(); n != 7 {
		t.Errorf("Len = %d, want 7", n)
	}
}
