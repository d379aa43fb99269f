// internal/input/loader.go

// Package input reads URL candidate lists out of CSV, Excel, plain-text,
// and DOCX files and normalizes them for the pipeline.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat marks an input file whose extension is not
// recognized. It is fatal for that file.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// urlColumnNames are header names that designate a URL column.
var urlColumnNames = map[string]struct{}{
	"url": {}, "website": {}, "link": {}, "site": {}, "domain": {},
	"webpage": {}, "address": {}, "web": {}, "page": {}, "homepage": {},
	"home_page": {},
}

var urlPattern = regexp.MustCompile(`https?://[^\s",]+`)

// Loader extracts URL candidates from input files.
type Loader struct {
	log *logrus.Entry
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{log: logrus.WithField("component", "input")}
}

// Load reads the file and returns normalized, deduplicated URLs in file
// order. Unknown extensions yield ErrUnsupportedFormat.
func (l *Loader) Load(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}

	var candidates []string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		candidates, err = l.parseCSV(path)
	case ".xlsx", ".xls":
		candidates, err = l.parseExcel(path)
	case ".txt":
		candidates, err = l.parseText(path)
	case ".docx":
		candidates, err = l.parseDocx(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	urls := NormalizeURLs(candidates)
	l.log.Infof("extracted %d unique valid URLs from %s", len(urls), filepath.Base(path))
	return urls, nil
}

func (l *Loader) parseCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return candidatesFromRows(rows), nil
}

func (l *Loader) parseExcel(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var candidates []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.log.Warnf("skipping sheet %s: %v", sheet, err)
			continue
		}
		candidates = append(candidates, candidatesFromRows(rows)...)
	}
	return candidates, nil
}

func (l *Loader) parseText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, line := range strings.Split(string(data), "\n") {
		candidates = append(candidates, extractCandidates(line)...)
	}
	return candidates, nil
}

// candidatesFromRows prefers a designated URL column identified by its
// header name; without one, every cell is scanned.
func candidatesFromRows(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	urlCol := -1
	for i, header := range rows[0] {
		if _, ok := urlColumnNames[strings.ToLower(strings.TrimSpace(header))]; ok {
			urlCol = i
			break
		}
	}

	var candidates []string
	if urlCol >= 0 {
		for _, row := range rows[1:] {
			if urlCol < len(row) {
				candidates = append(candidates, extractCandidates(row[urlCol])...)
			}
		}
		return candidates
	}
	for _, row := range rows {
		for _, cell := range row {
			candidates = append(candidates, extractCandidates(cell)...)
		}
	}
	return candidates
}

// extractCandidates pulls URL candidates out of a text fragment: explicit
// http(s) tokens when present, otherwise the fragment itself if it could be
// a bare host.
func extractCandidates(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if matches := urlPattern.FindAllString(text, -1); len(matches) > 0 {
		return matches
	}
	if !strings.ContainsAny(text, " \t") && strings.Contains(text, ".") {
		return []string{text}
	}
	return nil
}

// NormalizeURLs trims, defaults missing schemes to https://, validates, and
// deduplicates, preserving first-occurrence order. The normal form is
// scheme+host+path+query.
func NormalizeURLs(candidates []string) []string {
	seen := make(map[string]struct{})
	var urls []string

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		raw = strings.TrimRight(raw, ".,;:!?")
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			raw = "https://" + raw
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
		if parsed.RawQuery != "" {
			normalized += "?" + parsed.RawQuery
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		urls = append(urls, normalized)
	}
	return urls
}
