// internal/extractor/extractor.go

// Package extractor scans text and markup for candidate email addresses and
// filters out placeholder and malformed tokens.
package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/monitoring"
)

// Context labels where an address was found, so downstream consumers can
// weight confidence.
type Context string

const (
	ContextText   Context = "text_content"
	ContextMailto Context = "mailto_link"
)

// ContextDataAttribute labels an address found inside a data-* attribute.
func ContextDataAttribute(attr string) Context {
	return Context("data_attribute_" + attr)
}

// Found is one extracted address with its source context.
type Found struct {
	Email   string
	Context Context
}

// Extractor owns the compiled pattern tables. Construct once and reuse; the
// pattern state is immutable after New.
type Extractor struct {
	pattern      *regexp.Regexp
	strict       *regexp.Regexp
	placeholders []*regexp.Regexp
	trusted      map[string]struct{}
	log          *logrus.Entry
}

// New creates an Extractor with the default pattern tables.
func New() *Extractor {
	return &Extractor{
		// Loose scan pattern: deliberately over-matches, the validation
		// pipeline cleans up afterwards.
		pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		// Anchored grammar used to re-validate loose matches.
		strict: regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`),
		placeholders: []*regexp.Regexp{
			regexp.MustCompile(`example\.com$`),
			regexp.MustCompile(`test\.com$`),
			regexp.MustCompile(`domain\.com$`),
			regexp.MustCompile(`email\.com$`),
			regexp.MustCompile(`@localhost\b`),
		},
		trusted: map[string]struct{}{
			"gmail.com":      {},
			"yahoo.com":      {},
			"hotmail.com":    {},
			"outlook.com":    {},
			"aol.com":        {},
			"icloud.com":     {},
			"protonmail.com": {},
			"zoho.com":       {},
		},
		log: logrus.WithField("component", "extractor"),
	}
}

// ExtractFromText returns the valid, lower-cased addresses found in plain
// text, deduplicated in first-occurrence order.
func (e *Extractor) ExtractFromText(text, sourceURL string) []string {
	if text == "" {
		return nil
	}

	matches := e.pattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var valid []string
	for _, m := range matches {
		email := strings.ToLower(strings.TrimSpace(m))
		if _, dup := seen[email]; dup {
			continue
		}
		if e.isValid(email, sourceURL) {
			seen[email] = struct{}{}
			valid = append(valid, email)
		}
	}
	if len(valid) > 0 {
		monitoring.EmailsExtracted.Add(float64(len(valid)))
		e.log.WithField("source", sourceURL).Debugf("extracted %d unique emails from text", len(valid))
	}
	return valid
}

// ExtractFromHTML returns addresses found in markup together with their
// source context: visible text, mailto links, and data-* attributes.
// Duplicates are collapsed per call, first occurrence wins.
func (e *Extractor) ExtractFromHTML(html, baseURL string) []Found {
	if html == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.log.WithField("source", baseURL).Warnf("unparseable markup: %v", err)
		return nil
	}

	var found []Found
	for _, email := range e.ExtractFromText(doc.Text(), baseURL) {
		found = append(found, Found{Email: email, Context: ContextText})
	}
	found = append(found, e.extractMailto(doc, baseURL)...)
	found = append(found, e.extractDataAttributes(doc, baseURL)...)

	seen := make(map[string]struct{}, len(found))
	unique := found[:0]
	for _, f := range found {
		if _, dup := seen[f.Email]; dup {
			continue
		}
		seen[f.Email] = struct{}{}
		unique = append(unique, f)
	}
	return unique
}

// extractMailto pulls addresses out of mailto: hrefs, dropping any query
// suffix (subject, body).
func (e *Extractor) extractMailto(doc *goquery.Document, baseURL string) []Found {
	var found []Found
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "mailto:") {
			return
		}
		email := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(email, '?'); i >= 0 {
			email = email[:i]
		}
		email = strings.ToLower(strings.TrimSpace(email))
		if e.isValid(email, baseURL) {
			found = append(found, Found{Email: email, Context: ContextMailto})
		}
	})
	return found
}

func (e *Extractor) extractDataAttributes(doc *goquery.Document, baseURL string) []Found {
	var found []Found
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		for _, attr := range node.Attr {
			if !strings.HasPrefix(attr.Key, "data-") {
				continue
			}
			for _, email := range e.ExtractFromText(attr.Val, baseURL) {
				found = append(found, Found{Email: email, Context: ContextDataAttribute(attr.Key)})
			}
		}
	})
	return found
}

// isValid runs the validation pipeline. Rules are checked in order and the
// first failing rule rejects the candidate. Once gross placeholders are
// removed the extractor is intentionally permissive.
func (e *Extractor) isValid(email, sourceURL string) bool {
	if len(email) < 5 {
		return false
	}
	for _, p := range e.placeholders {
		if p.MatchString(email) {
			return false
		}
	}
	if !e.strict.MatchString(email) {
		return false
	}

	domain := domainOf(email)
	if _, ok := e.trusted[domain]; ok {
		return true
	}

	// Domain affinity with the source page raises confidence but is not a
	// hard requirement.
	if sourceURL != "" {
		if parsed, err := url.Parse(sourceURL); err == nil {
			host := strings.ToLower(parsed.Hostname())
			if domain == host || strings.HasSuffix(domain, "."+host) {
				return true
			}
		}
	}

	return true
}

// FilterByDomain keeps only addresses whose domain is in the given set.
// An empty set is a no-op and returns the input unchanged.
func (e *Extractor) FilterByDomain(emails []string, domains map[string]struct{}) []string {
	if len(domains) == 0 {
		return emails
	}
	var filtered []string
	for _, email := range emails {
		if _, ok := domains[domainOf(email)]; ok {
			filtered = append(filtered, email)
		}
	}
	return filtered
}

func domainOf(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
