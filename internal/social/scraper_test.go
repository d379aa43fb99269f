// internal/social/scraper_test.go
package social

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/leadgrep/leadgrep/internal/extractor"
	"github.com/leadgrep/leadgrep/internal/scraper"
)

func newTestScraper() *Scraper {
	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		RetryBase:  time.Millisecond,
	})
	fetcher := scraper.NewFetcher(client, nil, nil, "", extractor.New())
	return NewScraper(fetcher, rate.NewLimiter(rate.Inf, 1))
}

func TestScrape_EmailsFromProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Business inquiries: press@acme.io</body></html>`)
	}))
	defer server.Close()

	s := newTestScraper()
	classified := map[Platform][]string{
		PlatformTwitter: {server.URL + "/acme"},
	}

	results := s.Scrape(context.Background(), classified, 3, scraper.ModeStatic)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Status != scraper.StatusSuccess {
		t.Fatalf("Expected success, got %s", r.Status)
	}
	if r.Platform != string(PlatformTwitter) {
		t.Fatalf("Expected twitter platform tag, got %q", r.Platform)
	}
	if len(r.Emails) != 1 || r.Emails[0] != "press@acme.io" {
		t.Fatalf("Expected press@acme.io, got %v", r.Emails)
	}
}

func TestScrape_PartialWithContactSignals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta name="description" content="Acme widgets. Visit https://acme.io for support.">
		</head><body>profile</body></html>`)
	}))
	defer server.Close()

	s := newTestScraper()
	classified := map[Platform][]string{
		PlatformTwitter: {server.URL + "/acme"},
	}

	results := s.Scrape(context.Background(), classified, 3, scraper.ModeStatic)
	if len(results) != 1 {
		t.Fatalf("Expected 1 partial result, got %d", len(results))
	}
	r := results[0]
	if r.Status != scraper.StatusPartial {
		t.Fatalf("Expected partial status, got %s", r.Status)
	}
	if len(r.ContactSignals) == 0 {
		t.Fatal("Expected contact signals")
	}
	foundURL := false
	for _, signal := range r.ContactSignals {
		if signal == "https://acme.io" {
			foundURL = true
		}
	}
	if !foundURL {
		t.Fatalf("Expected the bio URL among signals, got %v", r.ContactSignals)
	}
}

func TestScrape_ResultCopiesFetchFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acme on Twitter</title></head>
			<body>Business inquiries: press@acme.io</body></html>`)
	}))
	defer server.Close()

	s := newTestScraper()
	profileURL := server.URL + "/acme"
	classified := map[Platform][]string{
		PlatformTwitter: {profileURL},
	}

	results := s.Scrape(context.Background(), classified, 3, scraper.ModeStatic)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.URL != profileURL {
		t.Fatalf("Expected the profile URL to carry over, got %q", r.URL)
	}
	if r.Title != "Acme on Twitter" {
		t.Fatalf("Expected the fetched title to carry over, got %q", r.Title)
	}
	if r.Method != scraper.ModeStatic {
		t.Fatalf("Expected the fetch method to carry over, got %s", r.Method)
	}
	if r.SourceType != scraper.SourceSocial {
		t.Fatalf("Expected the social source tag, got %s", r.SourceType)
	}
	if r.Platform != string(PlatformTwitter) {
		t.Fatalf("Expected the platform attribution, got %q", r.Platform)
	}
}

func TestScrape_NoSignalsNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing useful</body></html>`)
	}))
	defer server.Close()

	s := newTestScraper()
	classified := map[Platform][]string{
		PlatformTwitter: {server.URL + "/acme"},
	}

	results := s.Scrape(context.Background(), classified, 3, scraper.ModeStatic)
	if len(results) != 0 {
		t.Fatalf("Expected no results for a profile without emails or signals, got %v", results)
	}
}

func TestScrape_UnreachableProfileSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dead" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `<html><body>pr@acme.io</body></html>`)
	}))
	defer server.Close()

	s := newTestScraper()
	classified := map[Platform][]string{
		PlatformTwitter: {server.URL + "/dead", server.URL + "/alive"},
	}

	results := s.Scrape(context.Background(), classified, 3, scraper.ModeStatic)
	if len(results) != 1 {
		t.Fatalf("Expected only the reachable profile, got %d results", len(results))
	}
	if results[0].URL != server.URL+"/alive" {
		t.Fatalf("Unexpected result URL %s", results[0].URL)
	}
}

func TestScrape_MaxPerPlatformCap(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `<html><body>user%d@acme.io</body></html>`, n)
	}))
	defer server.Close()

	s := newTestScraper()
	classified := map[Platform][]string{
		PlatformTwitter: {
			server.URL + "/one",
			server.URL + "/two",
			server.URL + "/three",
			server.URL + "/four",
		},
	}

	results := s.Scrape(context.Background(), classified, 2, scraper.ModeStatic)
	if len(results) != 2 {
		t.Fatalf("Expected the cap to keep 2 profiles, got %d", len(results))
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("Expected 2 fetches, got %d", got)
	}
}
