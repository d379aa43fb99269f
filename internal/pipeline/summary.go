// internal/pipeline/summary.go
package pipeline

import (
	"time"

	"github.com/leadgrep/leadgrep/internal/scraper"
)

// Summary aggregates every PageResult of a batch run. It is derived state,
// recomputed from the records and never persisted on its own.
type Summary struct {
	TotalURLs      int                        `json:"total_urls_processed"`
	SuccessfulURLs int                        `json:"successful_scrapes"`
	FailedURLs     int                        `json:"failed_scrapes"`
	SuccessRate    float64                    `json:"success_rate"`
	TotalEmails    int                        `json:"total_emails_found"`
	UniqueEmails   int                        `json:"unique_emails_found"`
	BySourceType   map[scraper.SourceType]int `json:"emails_by_source"`
	Records        []*scraper.PageResult      `json:"-"`
	FinishedAt     time.Time                  `json:"timestamp"`
	Elapsed        time.Duration              `json:"elapsed"`
}

// Summarize computes batch statistics over the full record set. The unique
// email count is the size of the union of all per-page email sets; the
// success rate is success/total*100 and defined as 0 for an empty batch.
func Summarize(records []*scraper.PageResult, elapsed time.Duration) *Summary {
	s := &Summary{
		TotalURLs:    len(records),
		BySourceType: make(map[scraper.SourceType]int),
		Records:      records,
		FinishedAt:   time.Now(),
		Elapsed:      elapsed,
	}

	union := make(map[string]struct{})
	for _, r := range records {
		switch r.Status {
		case scraper.StatusSuccess:
			s.SuccessfulURLs++
		case scraper.StatusFailed:
			s.FailedURLs++
		}
		s.BySourceType[r.SourceType]++
		s.TotalEmails += len(r.Emails)
		for _, email := range r.Emails {
			union[email] = struct{}{}
		}
	}
	s.UniqueEmails = len(union)

	if s.TotalURLs > 0 {
		s.SuccessRate = float64(s.SuccessfulURLs) / float64(s.TotalURLs) * 100
	}
	return s
}
