// internal/proxy/types.go
package proxy

import "time"

// Strategy selects how the next proxy is chosen from the pool.
type Strategy string

const (
	StrategyRoundRobin      Strategy = "round_robin"
	StrategyRandom          Strategy = "random"
	StrategyBestPerformance Strategy = "best_performance"
)

// ParseStrategy converts a config string to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "round_robin", "":
		return StrategyRoundRobin, true
	case "random":
		return StrategyRandom, true
	case "best_performance":
		return StrategyBestPerformance, true
	}
	return "", false
}

// Stats accumulates per-proxy usage counters. Counters are monotonic; the
// average response time is an incremental mean updated on success only.
type Stats struct {
	SuccessCount    int           `json:"success_count"`
	FailCount       int           `json:"fail_count"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	LastUsedAt      time.Time     `json:"last_used_at"`
}

// Record pairs a proxy address with its accumulated statistics.
type Record struct {
	Address string `json:"address"`
	Stats   Stats  `json:"stats"`
}

// Config defines the proxy pool configuration surface.
type Config struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Strategy       string        `yaml:"strategy" json:"strategy"`
	Proxies        []string      `yaml:"proxies,omitempty" json:"proxies,omitempty"`
	ProxyFile      string        `yaml:"proxy_file,omitempty" json:"proxy_file,omitempty"`
	UseFreeSources bool          `yaml:"use_free_sources" json:"use_free_sources"`
	MaxProxies     int           `yaml:"max_proxies" json:"max_proxies"`
	CanaryURL      string        `yaml:"canary_url,omitempty" json:"canary_url,omitempty"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
}
