// internal/proxy/manager.go

// Package proxy manages a pool of outbound proxy addresses with rotation
// strategies and per-proxy usage statistics.
package proxy

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/monitoring"
)

const defaultCanaryURL = "http://httpbin.org/ip"

// Manager owns the proxy pool. All state access is mutex-guarded so that the
// pool can be shared if the pipeline ever runs fetches concurrently;
// statistics updates are atomic per probe.
type Manager struct {
	mu        sync.Mutex
	proxies   []string
	stats     map[string]*Stats
	cursor    int
	rng       *rand.Rand
	canaryURL string
	timeout   time.Duration
	log       *logrus.Entry
}

// NewManager creates an empty pool. Proxies are added explicitly via Add,
// LoadFromFile, or Gather.
func NewManager(cfg Config) *Manager {
	canary := cfg.CanaryURL
	if canary == "" {
		canary = defaultCanaryURL
	}
	timeout := cfg.ProbeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Manager{
		stats:     make(map[string]*Stats),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		canaryURL: canary,
		timeout:   timeout,
		log:       logrus.WithField("component", "proxy_manager"),
	}
}

// Add validates and appends proxy addresses (scheme://host:port). Invalid
// entries are skipped. Already known addresses keep their statistics.
func (m *Manager) Add(addresses []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if !validAddress(addr) {
			m.log.Warnf("skipping malformed proxy address %q", addr)
			continue
		}
		if _, known := m.stats[addr]; known {
			continue
		}
		m.proxies = append(m.proxies, addr)
		m.stats[addr] = &Stats{}
		added++
	}
	if added > 0 {
		m.log.Infof("added %d proxies (pool size %d)", added, len(m.proxies))
	}
	return added
}

// LoadFromFile reads one proxy address per line; blank lines and #-comments
// are ignored.
func (m *Manager) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var addresses []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read proxy file: %w", err)
	}
	m.Add(addresses)
	return nil
}

// Gather polls the given sources in order, stopping early once the pool has
// at least max proxies. A failing source is logged and the next one is tried.
func (m *Manager) Gather(ctx context.Context, sources []Source, max int) {
	for _, src := range sources {
		room := max - m.Len()
		if room <= 0 {
			break
		}
		addresses, err := src.Fetch(ctx)
		if err != nil {
			m.log.Warnf("proxy source %s failed: %v", src.Name(), err)
			continue
		}
		if len(addresses) > room {
			addresses = addresses[:room]
		}
		m.Add(addresses)
	}
	m.log.Infof("gathered %d proxies from free sources", m.Len())
}

// Next returns the next proxy address under the given strategy. The second
// return is false when the pool is empty; callers fall back to a direct
// connection.
func (m *Manager) Next(strategy Strategy) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.proxies) == 0 {
		return "", false
	}

	var addr string
	switch strategy {
	case StrategyRandom:
		addr = m.proxies[m.rng.Intn(len(m.proxies))]
	case StrategyBestPerformance:
		addr = m.bestPerforming()
	default: // round robin
		addr = m.proxies[m.cursor]
		m.cursor = (m.cursor + 1) % len(m.proxies)
	}
	return addr, true
}

// bestPerforming sorts by successCount-failCount descending, ties broken by
// lower average response time. Caller holds the lock.
func (m *Manager) bestPerforming() string {
	sorted := make([]string, len(m.proxies))
	copy(sorted, m.proxies)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := m.stats[sorted[i]], m.stats[sorted[j]]
		scoreI := si.SuccessCount - si.FailCount
		scoreJ := sj.SuccessCount - sj.FailCount
		if scoreI != scoreJ {
			return scoreI > scoreJ
		}
		return si.AvgResponseTime < sj.AvgResponseTime
	})
	return sorted[0]
}

// RecordOutcome updates the statistics for one use or probe of a proxy.
// A success advances the incremental response-time mean; a failure only
// increments the fail counter.
func (m *Manager) RecordOutcome(address string, success bool, responseTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[address]
	if !ok {
		return
	}
	if success {
		st.SuccessCount++
		st.LastUsedAt = time.Now()
		n := time.Duration(st.SuccessCount)
		st.AvgResponseTime = (st.AvgResponseTime*(n-1) + responseTime) / n
	} else {
		st.FailCount++
	}
}

// Test probes a single proxy against the canary endpoint and records the
// outcome.
func (m *Manager) Test(ctx context.Context, address string) bool {
	proxyURL, err := url.Parse(address)
	if err != nil {
		m.RecordOutcome(address, false, 0)
		return false
	}

	client := &http.Client{
		Timeout:   m.timeout,
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.canaryURL, nil)
	if err != nil {
		m.RecordOutcome(address, false, 0)
		return false
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		monitoring.ProxyProbes.WithLabelValues("failure").Inc()
		m.RecordOutcome(address, false, 0)
		m.log.Debugf("proxy %s probe failed: %v", address, err)
		return false
	}
	resp.Body.Close()

	monitoring.ProxyProbes.WithLabelValues("success").Inc()
	m.RecordOutcome(address, true, elapsed)
	m.log.Debugf("proxy %s probe ok in %s", address, elapsed)
	return true
}

// TestAll probes every proxy in the pool and returns the working addresses.
func (m *Manager) TestAll(ctx context.Context) []string {
	m.mu.Lock()
	pool := make([]string, len(m.proxies))
	copy(pool, m.proxies)
	m.mu.Unlock()

	var working []string
	for _, addr := range pool {
		if m.Test(ctx, addr) {
			working = append(working, addr)
		}
	}
	m.log.Infof("%d of %d proxies passed the canary probe", len(working), len(pool))
	return working
}

// Remove deletes a proxy and its statistics. Removal is always explicit; no
// proxy is retired automatically.
func (m *Manager) Remove(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, addr := range m.proxies {
		if addr == address {
			m.proxies = append(m.proxies[:i], m.proxies[i+1:]...)
			break
		}
	}
	delete(m.stats, address)
	if m.cursor >= len(m.proxies) {
		m.cursor = 0
	}
}

// URL parses a pool address into a *url.URL for use as an HTTP transport
// proxy.
func (m *Manager) URL(address string) (*url.URL, error) {
	return url.Parse(address)
}

// Records returns a snapshot of every proxy with its statistics, in pool
// order.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]Record, 0, len(m.proxies))
	for _, addr := range m.proxies {
		records = append(records, Record{Address: addr, Stats: *m.stats[addr]})
	}
	return records
}

// Len returns the pool size.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.proxies)
}

func validAddress(addr string) bool {
	parsed, err := url.Parse(addr)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
