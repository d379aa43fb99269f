// internal/proxy/manager_test.go
package proxy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T, addresses ...string) *Manager {
	t.Helper()
	m := NewManager(Config{})
	if added := m.Add(addresses); added != len(addresses) {
		t.Fatalf("Expected %d proxies added, got %d", len(addresses), added)
	}
	return m
}

func TestAdd_ValidatesAddresses(t *testing.T) {
	m := NewManager(Config{})

	added := m.Add([]string{
		"http://1.2.3.4:8080",
		"https://5.6.7.8:3128",
		"not a proxy",
		"ftp://9.9.9.9:21",
		"http://1.2.3.4:8080", // duplicate
	})
	if added != 2 {
		t.Fatalf("Expected 2 valid new proxies, got %d", added)
	}
	if m.Len() != 2 {
		t.Fatalf("Expected pool of 2, got %d", m.Len())
	}
}

func TestNext_EmptyPool(t *testing.T) {
	m := NewManager(Config{})

	if _, ok := m.Next(StrategyRoundRobin); ok {
		t.Fatal("Expected no proxy from an empty pool")
	}
}

func TestNext_RoundRobinCycles(t *testing.T) {
	pool := []string{"http://a:1", "http://b:2", "http://c:3"}
	m := newTestManager(t, pool...)

	for i := 0; i < 6; i++ {
		addr, ok := m.Next(StrategyRoundRobin)
		if !ok {
			t.Fatalf("Call %d: expected a proxy", i)
		}
		if want := pool[i%len(pool)]; addr != want {
			t.Fatalf("Call %d: expected %s, got %s", i, want, addr)
		}
	}
}

func TestNext_RandomStaysInPool(t *testing.T) {
	pool := map[string]bool{"http://a:1": true, "http://b:2": true, "http://c:3": true}
	m := newTestManager(t, "http://a:1", "http://b:2", "http://c:3")

	for i := 0; i < 20; i++ {
		addr, ok := m.Next(StrategyRandom)
		if !ok || !pool[addr] {
			t.Fatalf("Call %d: got %q (ok=%v), not a pool member", i, addr, ok)
		}
	}
}

func TestNext_BestPerformance(t *testing.T) {
	m := newTestManager(t, "http://slow:1", "http://fast:2", "http://flaky:3")

	// fast: 2 successes, quick responses.
	m.RecordOutcome("http://fast:2", true, 100*time.Millisecond)
	m.RecordOutcome("http://fast:2", true, 100*time.Millisecond)
	// slow: 2 successes, slower responses.
	m.RecordOutcome("http://slow:1", true, 2*time.Second)
	m.RecordOutcome("http://slow:1", true, 2*time.Second)
	// flaky: one success, three failures.
	m.RecordOutcome("http://flaky:3", true, 50*time.Millisecond)
	m.RecordOutcome("http://flaky:3", false, 0)
	m.RecordOutcome("http://flaky:3", false, 0)
	m.RecordOutcome("http://flaky:3", false, 0)

	addr, ok := m.Next(StrategyBestPerformance)
	if !ok {
		t.Fatal("Expected a proxy")
	}
	// fast and slow tie on success-fail score; fast wins on response time.
	if addr != "http://fast:2" {
		t.Fatalf("Expected the fastest high-scoring proxy, got %s", addr)
	}
}

func TestRecordOutcome_IncrementalMean(t *testing.T) {
	m := newTestManager(t, "http://a:1")

	m.RecordOutcome("http://a:1", true, 100*time.Millisecond)
	m.RecordOutcome("http://a:1", true, 300*time.Millisecond)

	records := m.Records()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	stats := records[0].Stats
	if stats.SuccessCount != 2 {
		t.Fatalf("Expected 2 successes, got %d", stats.SuccessCount)
	}
	if stats.AvgResponseTime != 200*time.Millisecond {
		t.Fatalf("Expected mean of 200ms, got %v", stats.AvgResponseTime)
	}
}

func TestRecordOutcome_FailureKeepsMean(t *testing.T) {
	m := newTestManager(t, "http://a:1")

	m.RecordOutcome("http://a:1", true, 100*time.Millisecond)
	m.RecordOutcome("http://a:1", false, 5*time.Second)

	stats := m.Records()[0].Stats
	if stats.FailCount != 1 {
		t.Fatalf("Expected 1 failure, got %d", stats.FailCount)
	}
	if stats.AvgResponseTime != 100*time.Millisecond {
		t.Fatalf("Failures must not move the mean: got %v", stats.AvgResponseTime)
	}
}

func TestRemove(t *testing.T) {
	m := newTestManager(t, "http://a:1", "http://b:2")

	m.Remove("http://a:1")
	if m.Len() != 1 {
		t.Fatalf("Expected pool of 1 after removal, got %d", m.Len())
	}
	addr, ok := m.Next(StrategyRoundRobin)
	if !ok || addr != "http://b:2" {
		t.Fatalf("Expected remaining proxy, got %q (ok=%v)", addr, ok)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxies.txt")
	content := "# free pool\nhttp://a:1\n\nhttp://b:2\n# trailing comment\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	m := NewManager(Config{})
	if err := m.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Expected 2 proxies (comments and blanks skipped), got %d", m.Len())
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		ok   bool
	}{
		{"round_robin", StrategyRoundRobin, true},
		{"random", StrategyRandom, true},
		{"best_performance", StrategyBestPerformance, true},
		{"", StrategyRoundRobin, true},
		{"fastest", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseStrategy(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
