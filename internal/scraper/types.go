// internal/scraper/types.go
package scraper

import (
	"fmt"
	"time"
)

// FetchMode selects how a page is retrieved.
type FetchMode string

const (
	// ModeStatic issues a plain HTTP GET and reads the served document.
	ModeStatic FetchMode = "static"
	// ModeRendered drives a headless browser and reads the markup after
	// page scripts have run.
	ModeRendered FetchMode = "rendered"
)

// FetchStatus is the outcome of a single fetch attempt.
type FetchStatus string

const (
	StatusSuccess FetchStatus = "success"
	StatusFailed  FetchStatus = "failed"
	// StatusPartial marks a social profile that yielded contact signals
	// but no email addresses.
	StatusPartial FetchStatus = "partial"
)

// SourceType records where a page sits in the discovery chain.
type SourceType string

const (
	SourceMain     SourceType = "main"
	SourceInternal SourceType = "internal"
	SourceSocial   SourceType = "social"
)

// PageResult is the outcome of one fetch attempt. It is created once by the
// fetcher, never mutated afterwards, and consumed by the aggregator.
type PageResult struct {
	URL        string      `json:"url"`
	Status     FetchStatus `json:"status"`
	Method     FetchMode   `json:"method"`
	Emails     []string    `json:"emails"`
	Title      string      `json:"title,omitempty"`
	RawText    string      `json:"-"`
	HTML       string      `json:"-"`
	Links      []string    `json:"links,omitempty"`
	SourceType SourceType  `json:"source_type"`
	Platform   string      `json:"platform,omitempty"`
	// ContactSignals carries loosely-structured contact hints (bio text,
	// external website links) for social profiles that exposed no email.
	ContactSignals []string      `json:"contact_signals,omitempty"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
	FetchedAt      time.Time     `json:"fetched_at"`
}

// NetworkError wraps a transient static-fetch failure with attempt context.
type NetworkError struct {
	URL     string
	Attempt int
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s failed (attempt %d): %v", e.URL, e.Attempt, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Retryable reports whether the status code warrants another attempt.
func (e *HTTPStatusError) Retryable() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 504, 520, 521, 522, 523, 524:
		return true
	}
	return false
}
