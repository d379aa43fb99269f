// internal/browser/browser.go

// Package browser provides the rendered-fetch path: a headless Chrome
// session driven through chromedp. The session is an owned resource; callers
// must Close it on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Error kinds for rendered fetches. Rendered fetches are never retried.
var (
	// ErrPageLoadTimeout means the document-ready wait ran out of time.
	ErrPageLoadTimeout = errors.New("page load timeout")
	// ErrBrowserFault covers every other browser-automation failure.
	ErrBrowserFault = errors.New("browser error")
)

// Config defines browser session options.
type Config struct {
	Headless      bool          `yaml:"headless" json:"headless"`
	UserAgent     string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	DisableImages bool          `yaml:"disable_images" json:"disable_images"`
	ProxyServer   string        `yaml:"proxy_server,omitempty" json:"proxy_server,omitempty"`
}

// DefaultConfig returns a headless session with a 30 second load timeout.
func DefaultConfig() *Config {
	return &Config{
		Headless:      true,
		Timeout:       30 * time.Second,
		DisableImages: true,
	}
}

// Client is a live Chrome session.
type Client struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	config      *Config
	log         *logrus.Entry
}

// New starts a Chrome session. The returned client holds the allocator and
// browser contexts open until Close is called.
func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if config.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(config.ProxyServer))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	client := &Client{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		config:      config,
		log:         logrus.WithField("component", "browser"),
	}

	// Launch the browser eagerly so a broken Chrome install surfaces here
	// instead of on the first fetch.
	if err := chromedp.Run(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: start session: %v", ErrBrowserFault, err)
	}

	return client, nil
}

// FetchHTML navigates to url, waits for the document-ready signal bounded by
// the configured timeout, and returns the fully rendered markup.
func (c *Client) FetchHTML(ctx context.Context, url string) (string, error) {
	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrPageLoadTimeout, url)
		}
		return "", fmt.Errorf("%w: %v", ErrBrowserFault, err)
	}

	c.log.WithField("url", url).Debug("rendered fetch complete")
	return html, nil
}

// Close tears down the browser and allocator contexts.
func (c *Client) Close() error {
	if c.cancelCtx != nil {
		c.cancelCtx()
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
	}
	return nil
}
