// internal/crawler/explorer_test.go
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leadgrep/leadgrep/internal/extractor"
	"github.com/leadgrep/leadgrep/internal/scraper"
)

// newSiteServer serves a small site: the root links to internal pages, an
// off-site page, and a deeper layer reachable only through /about.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><body>
			<a href="/about">About</a>
			<a href="/contact">Contact</a>
			<a href="/pricing">Pricing</a>
			<a href="https://elsewhere.invalid/contact">Partner</a>
		</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><a href="%s/team">Team</a></body></html>`, server.URL)
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>info@acme.io</body></html>`)
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>plans</body></html>`)
	})
	mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>the team</body></html>`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestExplorer() *Explorer {
	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		RetryBase:  time.Millisecond,
	})
	fetcher := scraper.NewFetcher(client, nil, nil, "", extractor.New())
	return NewExplorer(fetcher)
}

func TestExplore_DepthOne(t *testing.T) {
	server := newSiteServer(t)
	e := newTestExplorer()

	got := e.Explore(context.Background(), server.URL+"/", 1, 10)

	// Depth 1 reaches the root's direct links; /team sits at depth 2 and
	// /pricing fails the relevance filter.
	want := map[string]bool{
		server.URL + "/about":   true,
		server.URL + "/contact": true,
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d relevant pages, got %v", len(want), got)
	}
	for _, u := range got {
		if !want[u] {
			t.Errorf("Unexpected page %s", u)
		}
	}
}

func TestExplore_DepthTwoReachesDeepPages(t *testing.T) {
	server := newSiteServer(t)
	e := newTestExplorer()

	got := e.Explore(context.Background(), server.URL+"/", 2, 10)

	found := false
	for _, u := range got {
		if u == server.URL+"/team" {
			found = true
		}
		if u == "https://elsewhere.invalid/contact" {
			t.Error("Off-site pages must never be traversed")
		}
	}
	if !found {
		t.Fatalf("Expected /team at depth 2, got %v", got)
	}
}

func TestExplore_MaxPagesCap(t *testing.T) {
	server := newSiteServer(t)
	e := newTestExplorer()

	got := e.Explore(context.Background(), server.URL+"/", 2, 1)
	if len(got) != 1 {
		t.Fatalf("Expected the cap to keep 1 page, got %v", got)
	}
}

func TestExplore_SeedExcluded(t *testing.T) {
	server := newSiteServer(t)
	e := newTestExplorer()

	// A seed URL that itself matches a relevance keyword must still be
	// excluded from the result.
	got := e.Explore(context.Background(), server.URL+"/contact", 1, 10)
	for _, u := range got {
		if u == server.URL+"/contact" {
			t.Fatalf("Seed URL must not appear in results: %v", got)
		}
	}
}

func TestExplore_FetchFailureSkipsNode(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/about">About</a>
			<a href="/broken-contact">Broken</a>
		</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>hello</body></html>`)
	})
	mux.HandleFunc("/broken-contact", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	e := newTestExplorer()
	got := e.Explore(context.Background(), server.URL+"/", 1, 10)

	if len(got) != 1 || got[0] != server.URL+"/about" {
		t.Fatalf("Expected only /about after the broken page is skipped, got %v", got)
	}
}

func TestExplore_BadSeed(t *testing.T) {
	e := newTestExplorer()
	if got := e.Explore(context.Background(), "::not a url::", 1, 10); got != nil {
		t.Fatalf("Expected nil for an unusable seed, got %v", got)
	}
}
