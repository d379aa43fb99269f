// internal/social/detector.go

// Package social classifies discovered links by social-media platform and
// drives bounded scraping of profile pages.
package social

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Platform identifies a supported social-media platform.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
)

// platformOrder fixes the classification order. A link is attributed to the
// first platform whose pattern matches and to no other.
var platformOrder = []Platform{
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformFacebook,
	PlatformTwitter,
	PlatformYouTube,
}

// Detector holds the compiled per-platform pattern tables. Construct once;
// the tables are immutable afterwards.
type Detector struct {
	patterns map[Platform][]*regexp.Regexp
	log      *logrus.Entry
}

// NewDetector compiles the default platform pattern tables.
func NewDetector() *Detector {
	return &Detector{
		patterns: map[Platform][]*regexp.Regexp{
			PlatformLinkedIn: {
				regexp.MustCompile(`linkedin\.com/company/[^/\s]+`),
				regexp.MustCompile(`linkedin\.com/in/[^/\s]+`),
				regexp.MustCompile(`linkedin\.com/showcase/[^/\s]+`),
			},
			PlatformInstagram: {
				regexp.MustCompile(`instagram\.com/[^/\s]+`),
				regexp.MustCompile(`instagr\.am/[^/\s]+`),
			},
			PlatformFacebook: {
				regexp.MustCompile(`facebook\.com/[^/\s]+`),
				regexp.MustCompile(`fb\.com/[^/\s]+`),
			},
			PlatformTwitter: {
				regexp.MustCompile(`twitter\.com/[^/\s]+`),
				regexp.MustCompile(`//(?:www\.)?x\.com/[^/\s]+`),
			},
			PlatformYouTube: {
				regexp.MustCompile(`youtube\.com/channel/[^/\s]+`),
				regexp.MustCompile(`youtube\.com/c/[^/\s]+`),
				regexp.MustCompile(`youtube\.com/user/[^/\s]+`),
			},
		},
		log: logrus.WithField("component", "social_detector"),
	}
}

// Classify buckets links by platform. Each link lands in exactly one bucket
// (first matching platform wins); links matching no platform are excluded
// from the mapping entirely.
func (d *Detector) Classify(links []string) map[Platform][]string {
	classified := make(map[Platform][]string)

	for _, link := range links {
		lower := strings.ToLower(link)
		for _, platform := range platformOrder {
			if matchesAny(d.patterns[platform], lower) {
				classified[platform] = append(classified[platform], link)
				break
			}
		}
	}

	total := 0
	for _, urls := range classified {
		total += len(urls)
	}
	if total > 0 {
		d.log.Infof("detected %d social media links across %d platforms", total, len(classified))
	}
	return classified
}

func matchesAny(patterns []*regexp.Regexp, link string) bool {
	for _, p := range patterns {
		if p.MatchString(link) {
			return true
		}
	}
	return false
}
