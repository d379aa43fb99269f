// internal/output/rows.go
package output

import (
	"sort"
	"strings"
	"time"

	"github.com/leadgrep/leadgrep/internal/scraper"
)

// resultHeader is the fixed column order for tabular output. CSV and the
// Results sheet of the Excel workbook share it.
var resultHeader = []string{
	"URL", "Email", "Source_Type", "Status", "Scraping_Method", "Error", "Timestamp",
}

// Row is one line of tabular output. A page that yielded emails produces one
// row per email; a page that yielded none still produces a single row with an
// empty Email column, so every processed URL appears in the file.
type Row struct {
	URL        string
	Email      string
	SourceType string
	Status     string
	Method     string
	Error      string
	Timestamp  string
}

func (r Row) fields() []string {
	return []string{r.URL, r.Email, r.SourceType, r.Status, r.Method, r.Error, r.Timestamp}
}

// ResultRows flattens page results into output rows, one per email.
func ResultRows(records []*scraper.PageResult) []Row {
	var rows []Row
	for _, rec := range records {
		base := Row{
			URL:        rec.URL,
			SourceType: string(rec.SourceType),
			Status:     string(rec.Status),
			Method:     string(rec.Method),
			Error:      rec.Error,
			Timestamp:  rec.FetchedAt.Format(time.RFC3339),
		}
		if len(rec.Emails) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, email := range rec.Emails {
			row := base
			row.Email = email
			rows = append(rows, row)
		}
	}
	return rows
}

// uniqueEmails returns the sorted union of all per-page email sets.
func uniqueEmails(records []*scraper.PageResult) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		for _, email := range rec.Emails {
			set[email] = struct{}{}
		}
	}
	emails := make([]string, 0, len(set))
	for email := range set {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// domainCount is a tally of unique emails per mail domain.
type domainCount struct {
	Domain string
	Count  int
}

// topDomains ranks mail domains of the unique email set by descending count,
// truncated to max entries.
func topDomains(records []*scraper.PageResult, max int) []domainCount {
	tally := make(map[string]int)
	for _, email := range uniqueEmails(records) {
		if at := strings.LastIndex(email, "@"); at >= 0 {
			tally[email[at+1:]]++
		}
	}
	counts := make([]domainCount, 0, len(tally))
	for domain, n := range tally {
		counts = append(counts, domainCount{Domain: domain, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Domain < counts[j].Domain
	})
	if len(counts) > max {
		counts = counts[:max]
	}
	return counts
}
