// internal/proxy/sources.go
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Source supplies proxy addresses from an external listing. Sources are
// capability-equivalent and are polled in order until the pool target is met.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]string, error)
}

// DefaultSources returns the built-in free-proxy listings in polling order.
func DefaultSources() []Source {
	return []Source{
		&PlainTextSource{
			SourceName: "proxy-list.download",
			URL:        "https://www.proxy-list.download/api/v1/get?type=http",
			Scheme:     "http",
		},
		&HTMLTableSource{
			SourceName: "free-proxy-list.net",
			URL:        "https://free-proxy-list.net/",
		},
		&GeonodeSource{
			SourceName: "geonode",
			URL:        "https://proxylist.geonode.com/api/proxy-list?limit=100&page=1&sort_by=lastChecked&sort_type=desc&protocols=http%2Chttps",
		},
	}
}

func fetchBody(ctx context.Context, rawURL string) ([]byte, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// PlainTextSource reads a newline-separated host:port listing.
type PlainTextSource struct {
	SourceName string
	URL        string
	Scheme     string
}

func (s *PlainTextSource) Name() string { return s.SourceName }

func (s *PlainTextSource) Fetch(ctx context.Context) ([]string, error) {
	body, err := fetchBody(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	var proxies []string
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			proxies = append(proxies, s.Scheme+"://"+line)
		}
	}
	return proxies, nil
}

// HTMLTableSource scrapes an HTML proxy table (ip, port columns, an https
// flag in column 7).
type HTMLTableSource struct {
	SourceName string
	URL        string
}

func (s *HTMLTableSource) Name() string { return s.SourceName }

func (s *HTMLTableSource) Fetch(ctx context.Context) ([]string, error) {
	body, err := fetchBody(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse proxy table: %w", err)
	}

	var proxies []string
	doc.Find("table.table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 8 {
			return
		}
		ip := strings.TrimSpace(cols.Eq(0).Text())
		port := strings.TrimSpace(cols.Eq(1).Text())
		https := strings.TrimSpace(cols.Eq(6).Text())
		if ip == "" || port == "" {
			return
		}
		if https == "yes" {
			proxies = append(proxies, "https://"+ip+":"+port)
		}
	})
	return proxies, nil
}

// GeonodeSource reads the geonode JSON proxy API.
type GeonodeSource struct {
	SourceName string
	URL        string
}

type geonodeResponse struct {
	Data []struct {
		IP        string   `json:"ip"`
		Port      string   `json:"port"`
		Protocols []string `json:"protocols"`
	} `json:"data"`
}

func (s *GeonodeSource) Name() string { return s.SourceName }

func (s *GeonodeSource) Fetch(ctx context.Context) ([]string, error) {
	body, err := fetchBody(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	var parsed geonodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode geonode response: %w", err)
	}
	var proxies []string
	for _, entry := range parsed.Data {
		if entry.IP == "" || entry.Port == "" {
			continue
		}
		protocol := "http"
		if len(entry.Protocols) > 0 {
			protocol = entry.Protocols[0]
		}
		proxies = append(proxies, protocol+"://"+entry.IP+":"+entry.Port)
	}
	return proxies, nil
}
