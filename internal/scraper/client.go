// internal/scraper/client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/monitoring"
)

// Client is the static-fetch HTTP client. Every request goes out with a
// pseudo-randomly chosen user agent; transient failures are retried with
// exponential backoff (delay = base * 2^attempt).
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	userAgents []string
	maxRetries int
	retryBase  time.Duration
	rng        *rand.Rand
	rngMu      sync.Mutex
	// proxyTransports caches one transport per proxy address so repeated
	// proxied requests share a connection pool.
	proxyTransports map[string]*http.Transport
	proxyMu         sync.Mutex
	log             *logrus.Entry
}

// ClientConfig defines configuration options for the HTTP client.
type ClientConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
	UserAgents []string
}

// NewClient creates a static-fetch client with the given configuration.
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryBase == 0 {
		config.RetryBase = time.Second
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = defaultUserAgents()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		transport:       transport,
		userAgents:      config.UserAgents,
		maxRetries:      config.MaxRetries,
		retryBase:       config.RetryBase,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		proxyTransports: make(map[string]*http.Transport),
		log:             logrus.WithField("component", "http_client"),
	}
}

// Response carries the body of a successful GET.
type Response struct {
	StatusCode int
	Body       []byte
	FinalURL   string
	Duration   time.Duration
}

// Get performs an HTTP GET with retry. A non-nil proxyURL routes the request
// through that proxy; nil means a direct connection. The returned error after
// the final attempt is the last failure observed.
func (c *Client) Get(ctx context.Context, targetURL string, proxyURL *url.URL) (*Response, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL %q: must be absolute http/https", targetURL)
	}

	client := c.httpClient
	if proxyURL != nil {
		client = c.proxiedClient(proxyURL)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt - 1)
			c.log.WithFields(logrus.Fields{
				"url":     targetURL,
				"attempt": attempt + 1,
				"delay":   delay,
			}).Warnf("retrying after failure: %v", lastErr)
			monitoring.FetchRetries.Inc()

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		attempts++
		resp, err := c.doRequest(ctx, client, targetURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if statusErr, ok := err.(*HTTPStatusError); ok && !statusErr.Retryable() {
			break
		}
	}

	return nil, &NetworkError{URL: targetURL, Attempt: attempts, Err: lastErr}
}

// proxiedClient returns a client routing through proxyURL, reusing the
// cached transport for that proxy address.
func (c *Client) proxiedClient(proxyURL *url.URL) *http.Client {
	key := proxyURL.String()

	c.proxyMu.Lock()
	transport, ok := c.proxyTransports[key]
	if !ok {
		transport = c.transport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		c.proxyTransports[key] = transport
	}
	c.proxyMu.Unlock()

	return &http.Client{Timeout: c.httpClient.Timeout, Transport: transport}
}

func (c *Client) doRequest(ctx context.Context, client *http.Client, targetURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{URL: targetURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
		Duration:   time.Since(start),
	}, nil
}

// setHeaders applies browser-like headers with a rotated user agent.
// Accept-Encoding is left to the transport: setting it by hand disables
// net/http's transparent gzip decompression and would hand compressed bytes
// to the parser.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func (c *Client) nextUserAgent() string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.userAgents[c.rng.Intn(len(c.userAgents))]
}

// backoffDelay returns base * 2^attempt, capped at 30 seconds.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<uint(attempt))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0",
	}
}
