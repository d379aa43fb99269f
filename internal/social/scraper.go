// internal/social/scraper.go
package social

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/leadgrep/leadgrep/internal/scraper"
)

var bioURLPattern = regexp.MustCompile(`https?://[^\s]+`)

// Scraper fetches classified profile pages and extracts whatever contact
// information they expose.
type Scraper struct {
	fetcher *scraper.Fetcher
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewScraper creates a profile scraper. The limiter enforces the politeness
// delay between profile fetches.
func NewScraper(fetcher *scraper.Fetcher, limiter *rate.Limiter) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		limiter: limiter,
		log:     logrus.WithField("component", "social_scraper"),
	}
}

// Scrape visits at most maxPerPlatform profiles per platform. Profiles that
// cannot be fetched contribute no result. A profile with no extractable
// emails but some contact signals is reported with StatusPartial.
func (s *Scraper) Scrape(ctx context.Context, classified map[Platform][]string, maxPerPlatform int, mode scraper.FetchMode) []*scraper.PageResult {
	var results []*scraper.PageResult

	for _, platform := range platformOrder {
		links := classified[platform]
		if len(links) == 0 {
			continue
		}
		if len(links) > maxPerPlatform {
			links = links[:maxPerPlatform]
		}
		s.log.Infof("scraping %d %s profiles", len(links), platform)

		for _, link := range links {
			if err := s.limiter.Wait(ctx); err != nil {
				return results
			}

			fetched := s.fetcher.Fetch(ctx, link, mode, scraper.SourceSocial)
			if fetched.Status != scraper.StatusSuccess {
				// Unreachable profiles are skipped, not reported as
				// pipeline failures.
				s.log.WithField("url", link).Debugf("profile fetch skipped: %s", fetched.Error)
				continue
			}

			// The fetched result stays untouched; the profile result is a
			// new value carrying the platform attribution.
			profile := *fetched
			profile.Platform = string(platform)
			if len(profile.Emails) == 0 {
				signals := extractContactSignals(fetched.HTML, platform)
				if len(signals) == 0 {
					continue
				}
				profile.Status = scraper.StatusPartial
				profile.ContactSignals = signals
			}
			results = append(results, &profile)
		}
	}

	return results
}

// extractContactSignals applies a per-platform heuristic for contact hints:
// bio text and declared external website links.
func extractContactSignals(html string, platform Platform) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	switch platform {
	case PlatformLinkedIn:
		return linkedInSignals(doc)
	case PlatformInstagram:
		return bioSignals(doc, `meta[property="og:description"]`, ".bio", ".profile-bio")
	case PlatformFacebook:
		return facebookSignals(doc)
	case PlatformTwitter:
		return twitterSignals(doc)
	}
	return nil
}

func linkedInSignals(doc *goquery.Document) []string {
	var signals []string
	for _, sel := range []string{`[data-control-name="contact_see_more"]`, ".contact-info", ".contact-details", `[data-section="contact-info"]`} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			signals = append(signals, text)
			break
		}
	}
	signals = append(signals, externalWebsites(doc, "linkedin.com")...)
	return signals
}

func facebookSignals(doc *goquery.Document) []string {
	var signals []string
	for _, sel := range []string{`[data-testid="contact_info"]`, ".contact-info", ".page_contact_info"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			signals = append(signals, text)
			break
		}
	}
	signals = append(signals, externalWebsites(doc, "facebook.com")...)
	return signals
}

func twitterSignals(doc *goquery.Document) []string {
	signals := bioSignals(doc, `meta[name="description"]`, ".profile-bio", `[data-testid="UserDescription"]`)
	for _, sel := range []string{`a[data-testid="UserUrl"]`, ".profile-website", `a[rel="me"]`} {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.HasPrefix(href, "http") {
			signals = append(signals, href)
			break
		}
	}
	return signals
}

// bioSignals reads the first non-empty bio text from the given selectors and
// any URLs embedded in it.
func bioSignals(doc *goquery.Document, selectors ...string) []string {
	var bio string
	for _, sel := range selectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if content, ok := found.Attr("content"); ok {
			bio = strings.TrimSpace(content)
		} else {
			bio = strings.TrimSpace(found.Text())
		}
		if bio != "" {
			break
		}
	}
	if bio == "" {
		return nil
	}
	signals := []string{bio}
	signals = append(signals, bioURLPattern.FindAllString(bio, -1)...)
	return signals
}

// externalWebsites collects href targets that point off the platform.
func externalWebsites(doc *goquery.Document, platformDomain string) []string {
	var sites []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(href, platformDomain) {
			sites = append(sites, href)
		}
	})
	return sites
}
