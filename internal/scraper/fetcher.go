// internal/scraper/fetcher.go

// Package scraper retrieves a page's content in static or rendered mode and
// turns it into an immutable PageResult.
package scraper

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/browser"
	"github.com/leadgrep/leadgrep/internal/extractor"
	"github.com/leadgrep/leadgrep/internal/monitoring"
	"github.com/leadgrep/leadgrep/internal/proxy"
)

// Renderer is the rendered-fetch capability. *browser.Client satisfies it.
type Renderer interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Fetcher retrieves pages and assembles PageResults. A nil renderer degrades
// rendered requests to static fetches; a nil proxy manager means direct
// connections.
type Fetcher struct {
	client    *Client
	renderer  Renderer
	proxies   *proxy.Manager
	strategy  proxy.Strategy
	extractor *extractor.Extractor
	log       *logrus.Entry
}

// NewFetcher assembles a Fetcher from its collaborators.
func NewFetcher(client *Client, renderer Renderer, proxies *proxy.Manager, strategy proxy.Strategy, ext *extractor.Extractor) *Fetcher {
	return &Fetcher{
		client:    client,
		renderer:  renderer,
		proxies:   proxies,
		strategy:  strategy,
		extractor: ext,
		log:       logrus.WithField("component", "fetcher"),
	}
}

// Fetch retrieves rawURL in the given mode and returns the fetch outcome.
// Failures never propagate as errors past this boundary; they are captured
// in the result's Status and Error fields.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, mode FetchMode, source SourceType) *PageResult {
	start := time.Now()

	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return f.failed(rawURL, mode, source, "invalid URL: must be absolute http/https", start)
	}

	var html string
	usedMode := mode
	switch {
	case mode == ModeRendered && f.renderer != nil:
		html, err = f.renderer.FetchHTML(ctx, rawURL)
		if err != nil {
			f.log.WithFields(logrus.Fields{"url": rawURL, "mode": usedMode}).Warnf("rendered fetch failed: %v", err)
			monitoring.FetchesTotal.WithLabelValues(string(usedMode), string(StatusFailed)).Inc()
			return f.failed(rawURL, usedMode, source, renderedErrorString(err), start)
		}
	default:
		usedMode = ModeStatic
		html, err = f.staticFetch(ctx, rawURL)
		if err != nil {
			f.log.WithFields(logrus.Fields{"url": rawURL, "mode": usedMode}).Warnf("static fetch failed: %v", err)
			monitoring.FetchesTotal.WithLabelValues(string(usedMode), string(StatusFailed)).Inc()
			return f.failed(rawURL, usedMode, source, err.Error(), start)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return f.failed(rawURL, usedMode, source, "parse markup: "+err.Error(), start)
	}

	emails := make([]string, 0)
	for _, found := range f.extractor.ExtractFromHTML(html, rawURL) {
		emails = append(emails, found.Email)
	}

	elapsed := time.Since(start)
	monitoring.FetchesTotal.WithLabelValues(string(usedMode), string(StatusSuccess)).Inc()
	monitoring.FetchDuration.WithLabelValues(string(usedMode)).Observe(elapsed.Seconds())

	return &PageResult{
		URL:        rawURL,
		Status:     StatusSuccess,
		Method:     usedMode,
		Emails:     emails,
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		RawText:    doc.Text(),
		HTML:       html,
		Links:      extractLinks(doc, parsed),
		SourceType: source,
		Duration:   elapsed,
		FetchedAt:  time.Now(),
	}
}

// staticFetch runs one retried HTTP GET, routing through the next pool proxy
// when rotation is enabled, and reports the outcome to the proxy manager.
func (f *Fetcher) staticFetch(ctx context.Context, rawURL string) (string, error) {
	var proxyURL *url.URL
	var proxyAddr string
	if f.proxies != nil {
		if addr, ok := f.proxies.Next(f.strategy); ok {
			if parsed, err := f.proxies.URL(addr); err == nil {
				proxyURL = parsed
				proxyAddr = addr
			}
		}
	}

	resp, err := f.client.Get(ctx, rawURL, proxyURL)
	if proxyAddr != "" {
		if err != nil {
			f.proxies.RecordOutcome(proxyAddr, false, 0)
		} else {
			f.proxies.RecordOutcome(proxyAddr, true, resp.Duration)
		}
	}
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func (f *Fetcher) failed(rawURL string, mode FetchMode, source SourceType, errMsg string, start time.Time) *PageResult {
	return &PageResult{
		URL:        rawURL,
		Status:     StatusFailed,
		Method:     mode,
		Emails:     []string{},
		SourceType: source,
		Error:      errMsg,
		Duration:   time.Since(start),
		FetchedAt:  time.Now(),
	}
}

func renderedErrorString(err error) string {
	switch {
	case errors.Is(err, browser.ErrPageLoadTimeout):
		return "page load timeout"
	default:
		return "browser error: " + err.Error()
	}
}

// extractLinks resolves every anchor href against the page base URL and
// keeps absolute http/https results, deduplicated in document order.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}
