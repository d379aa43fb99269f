// internal/crawler/explorer.go

// Package crawler discovers same-domain internal pages reachable from a seed
// URL, bounded by depth and page count.
package crawler

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/scraper"
)

// relevanceKeywords selects internal pages worth visiting for contact
// information. The filter is a plain case-insensitive substring match over
// the whole URL.
var relevanceKeywords = []string{
	"contact", "about", "team", "company", "business",
	"services", "products", "careers", "jobs", "career",
	"staff", "people", "leadership", "management",
}

// Explorer walks the internal link graph of a site.
type Explorer struct {
	fetcher  *scraper.Fetcher
	keywords []string
	log      *logrus.Entry
}

// NewExplorer creates an Explorer that fetches through the given fetcher.
func NewExplorer(fetcher *scraper.Fetcher) *Explorer {
	return &Explorer{
		fetcher:  fetcher,
		keywords: relevanceKeywords,
		log:      logrus.WithField("component", "explorer"),
	}
}

// Explore walks breadth-first from seedURL, fetching each visited node, and
// returns up to maxPages relevant internal URLs in discovery order. Only
// URLs on the seed's scheme://host are traversed. A fetch failure drops that
// node's outgoing edges but never aborts the traversal.
func (e *Explorer) Explore(ctx context.Context, seedURL string, maxDepth, maxPages int) []string {
	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		e.log.Warnf("unusable seed URL %q: %v", seedURL, err)
		return nil
	}

	type node struct {
		url   string
		depth int
	}

	visited := make(map[string]struct{})
	queue := []node{{url: seedURL, depth: 0}}
	var discovered []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, done := visited[current.url]; done {
			continue
		}
		visited[current.url] = struct{}{}

		result := e.fetcher.Fetch(ctx, current.url, scraper.ModeStatic, scraper.SourceInternal)
		if result.Status != scraper.StatusSuccess {
			e.log.WithFields(logrus.Fields{
				"url":   current.url,
				"depth": current.depth,
			}).Warnf("traversal fetch failed: %s", result.Error)
			continue
		}

		discovered = append(discovered, current.url)

		if current.depth >= maxDepth {
			continue
		}
		for _, link := range result.Links {
			if !sameSite(seed, link) {
				continue
			}
			if _, done := visited[link]; done {
				continue
			}
			queue = append(queue, node{url: link, depth: current.depth + 1})
		}
	}

	// The relevance filter runs once over the full discovered set before the
	// hard maxPages cap is applied.
	var relevant []string
	for _, u := range discovered {
		if u == seedURL {
			continue
		}
		if e.relevant(u) {
			relevant = append(relevant, u)
		}
	}
	if len(relevant) > maxPages {
		relevant = relevant[:maxPages]
	}

	e.log.WithField("seed", seedURL).Infof("explored %d pages, %d relevant", len(discovered), len(relevant))
	return relevant
}

func (e *Explorer) relevant(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// sameSite reports whether link lives on the seed's scheme://host. The match
// is exact, not subdomain-aware.
func sameSite(seed *url.URL, link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return parsed.Scheme == seed.Scheme && parsed.Host == seed.Host
}
