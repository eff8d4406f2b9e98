package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a review call did not produce text.
type FailureKind int

const (
	FailureTimeout FailureKind = iota + 1
	FailureRequest
	FailureMalformedResponse
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "Timeout"
	case FailureRequest:
		return "RequestError"
	case FailureMalformedResponse:
		return "MalformedResponse"
	default:
		return "Unknown"
	}
}

// ReviewError is returned by review clients for every failed call.
type ReviewError struct {
	Kind FailureKind
	Err  error
}

func (e *ReviewError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ReviewError) Unwrap() error { return e.Err }

// Classify returns the failure kind carried by err. Errors that were not
// produced by a review client count as request errors.
func Classify(err error) FailureKind {
	var re *ReviewError
	if errors.As(err, &re) {
		return re.Kind
	}
	return FailureRequest
}

// IsTimeout reports whether err is a review timeout.
func IsTimeout(err error) bool {
	var re *ReviewError
	return errors.As(err, &re) && re.Kind == FailureTimeout
}

// ReviewStatus is the terminal state of a review call.
type ReviewStatus string

const (
	StatusSucceeded ReviewStatus = "succeeded"
	StatusTimedOut  ReviewStatus = "timed_out"
	StatusFailed    ReviewStatus = "failed"
)

// ReviewResult is either generated review text or a classified failure.
type ReviewResult struct {
	Status ReviewStatus
	Text   string
	Err    error
}

// ResultFrom converts the outcome of a review call into a ReviewResult.
func ResultFrom(text string, err error) ReviewResult {
	if err == nil {
		return ReviewResult{Status: StatusSucceeded, Text: text}
	}
	if IsTimeout(err) {
		return ReviewResult{Status: StatusTimedOut, Err: err}
	}
	return ReviewResult{Status: StatusFailed, Err: err}
}

func (r ReviewResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Kind returns the failure kind, or zero on success.
func (r ReviewResult) Kind() FailureKind {
	if r.Err == nil {
		return 0
	}
	return Classify(r.Err)
}

// Message is the single user-visible line shown for a failed review.
func (r ReviewResult) Message() string {
	if r.Err == nil {
		return ""
	}
	cause := r.Err
	var re *ReviewError
	if errors.As(r.Err, &re) && re.Err != nil {
		cause = re.Err
	}
	switch r.Kind() {
	case FailureTimeout:
		return "Review request timed out. Please try again later."
	case FailureMalformedResponse:
		return fmt.Sprintf("Review service returned a malformed response: %v", cause)
	default:
		return fmt.Sprintf("Review request error: %v", cause)
	}
}
