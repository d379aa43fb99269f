// internal/pipeline/pipeline.go

// Package pipeline sequences the crawl-and-extraction stages for a batch of
// seed URLs and aggregates the results.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/leadgrep/leadgrep/internal/browser"
	"github.com/leadgrep/leadgrep/internal/config"
	"github.com/leadgrep/leadgrep/internal/crawler"
	"github.com/leadgrep/leadgrep/internal/extractor"
	"github.com/leadgrep/leadgrep/internal/proxy"
	"github.com/leadgrep/leadgrep/internal/scraper"
	"github.com/leadgrep/leadgrep/internal/social"
)

// Pipeline owns the fetcher, explorer, and social scraper for one batch run.
// Execution is single-threaded and synchronous; at most one network
// operation is in flight at a time.
type Pipeline struct {
	cfg           *config.Config
	fetcher       *scraper.Fetcher
	explorer      *crawler.Explorer
	detector      *social.Detector
	socialScraper *social.Scraper
	browserClient *browser.Client
	proxies       *proxy.Manager
	strategy      proxy.Strategy
	mainLimiter   *rate.Limiter
	internalLimit *rate.Limiter
	log           *logrus.Entry
}

// New wires the pipeline from configuration. A browser that fails to start
// degrades rendered fetches to static ones instead of failing the run.
func New(cfg *config.Config) (*Pipeline, error) {
	log := logrus.WithField("component", "pipeline")

	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.MaxRetries,
		RetryBase:  cfg.RetryBase(),
	})

	var proxies *proxy.Manager
	strategy := proxy.StrategyRoundRobin
	if cfg.UseProxyRotation {
		strategy, _ = proxy.ParseStrategy(cfg.Proxy.Strategy)
		proxies = proxy.NewManager(cfg.Proxy)
		if len(cfg.Proxy.Proxies) > 0 {
			proxies.Add(cfg.Proxy.Proxies)
		}
		if cfg.Proxy.ProxyFile != "" {
			if err := proxies.LoadFromFile(cfg.Proxy.ProxyFile); err != nil {
				return nil, err
			}
		}
	}

	var renderer scraper.Renderer
	var browserClient *browser.Client
	if cfg.UseRenderedFetch {
		bc, err := browser.New(cfg.Browser)
		if err != nil {
			log.Warnf("browser unavailable, falling back to static fetches: %v", err)
		} else {
			browserClient = bc
			renderer = bc
		}
	}

	fetcher := scraper.NewFetcher(client, renderer, proxies, strategy, extractor.New())

	return &Pipeline{
		cfg:           cfg,
		fetcher:       fetcher,
		explorer:      crawler.NewExplorer(fetcher),
		detector:      social.NewDetector(),
		socialScraper: social.NewScraper(fetcher, limiterFor(cfg.SocialDelay())),
		browserClient: browserClient,
		proxies:       proxies,
		strategy:      strategy,
		mainLimiter:   limiterFor(cfg.MainDelay()),
		internalLimit: limiterFor(cfg.InternalDelay()),
		log:           log,
	}, nil
}

// limiterFor converts a fixed politeness delay into a pacing limiter. A zero
// delay imposes no pacing.
func limiterFor(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Run processes the batch. Per-URL failures are recorded and never abort the
// run; only context cancellation stops it early.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*Summary, error) {
	start := time.Now()

	if p.proxies != nil && p.cfg.Proxy.UseFreeSources && p.proxies.Len() == 0 {
		p.proxies.Gather(ctx, proxy.DefaultSources(), p.cfg.Proxy.MaxProxies)
	}

	mode := scraper.ModeStatic
	if p.cfg.UseRenderedFetch {
		mode = scraper.ModeRendered
	}

	var records []*scraper.PageResult
	for i, seedURL := range urls {
		if err := p.mainLimiter.Wait(ctx); err != nil {
			return Summarize(records, time.Since(start)), err
		}

		p.log.Infof("processing URL %d/%d: %s", i+1, len(urls), seedURL)
		main := p.fetcher.Fetch(ctx, seedURL, mode, scraper.SourceMain)
		records = append(records, main)

		if main.Status != scraper.StatusSuccess {
			continue
		}

		// Internal pages never spawn further internal fetches; depth is
		// bounded inside the explorer's own traversal.
		internal := p.explorer.Explore(ctx, seedURL, p.cfg.MaxCrawlDepth, p.cfg.MaxInternalPages)
		for _, pageURL := range internal {
			if err := p.internalLimit.Wait(ctx); err != nil {
				return Summarize(records, time.Since(start)), err
			}
			records = append(records, p.fetcher.Fetch(ctx, pageURL, mode, scraper.SourceInternal))
		}
	}

	// Social links are pooled across the whole batch, classified, and
	// scraped once.
	if p.cfg.ScrapeSocialLinks {
		var allLinks []string
		for _, r := range records {
			allLinks = append(allLinks, r.Links...)
		}
		classified := p.detector.Classify(allLinks)
		if len(classified) > 0 {
			records = append(records, p.socialScraper.Scrape(ctx, classified, p.cfg.MaxSocialPerPlatform, mode)...)
		}
	}

	summary := Summarize(records, time.Since(start))
	p.log.Infof("batch complete: %d records, %d unique emails, %.1f%% success",
		summary.TotalURLs, summary.UniqueEmails, summary.SuccessRate)
	return summary, nil
}

// ProxyRecords exposes a snapshot of proxy statistics for reporting. Nil
// when rotation is disabled.
func (p *Pipeline) ProxyRecords() []proxy.Record {
	if p.proxies == nil {
		return nil
	}
	return p.proxies.Records()
}

// Close releases the browser session if one was started.
func (p *Pipeline) Close() error {
	if p.browserClient != nil {
		return p.browserClient.Close()
	}
	return nil
}
