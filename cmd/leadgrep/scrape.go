package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadgrep/leadgrep/internal/config"
	"github.com/leadgrep/leadgrep/internal/input"
	"github.com/leadgrep/leadgrep/internal/output"
	"github.com/leadgrep/leadgrep/internal/pipeline"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Scrape websites for contact email addresses",
		Long: `Scrape fetches each target website, explores its contact-relevant
internal pages, optionally visits linked social media profiles, and
extracts validated email addresses.

Examples:
  # Scrape URLs given on the command line
  leadgrep scrape https://example.com https://example.org

  # Load targets from a file (csv, xlsx, txt, or docx)
  leadgrep scrape --input companies.xlsx

  # Use the rendered fetcher for JavaScript-heavy sites
  leadgrep scrape --rendered --input urls.csv

  # Rotate through proxies loaded from a file
  leadgrep scrape --proxy-file proxies.txt --input urls.csv

  # Write both CSV and Excel into a custom directory
  leadgrep scrape -f both -o results/ https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Input file with target URLs (csv, xlsx, xls, txt, docx)")
	cmd.Flags().StringP("config", "c", "", "Configuration file path (YAML)")

	cmd.Flags().Bool("rendered", false, "Render pages in a headless browser before extraction")
	cmd.Flags().Bool("no-social", false, "Skip social media profile scraping")
	cmd.Flags().Int("max-pages", 0, "Maximum internal pages to visit per site")
	cmd.Flags().Int("depth", 0, "Maximum link exploration depth")
	cmd.Flags().Int("max-social", 0, "Maximum profiles to visit per social platform")
	cmd.Flags().Int("timeout", 0, "Per-request timeout in seconds")
	cmd.Flags().Float64("delay", -1, "Delay between requests in seconds")
	cmd.Flags().Int("retries", -1, "Retry attempts for transient failures")

	cmd.Flags().Bool("proxies", false, "Enable proxy rotation")
	cmd.Flags().String("proxy-file", "", "File with proxy addresses, one per line")
	cmd.Flags().Bool("free-proxies", false, "Gather proxies from free public sources")
	cmd.Flags().String("proxy-strategy", "", "Proxy selection strategy (round_robin, random, best_performance)")

	cmd.Flags().StringP("format", "f", "", "Output format (csv, excel, both)")
	cmd.Flags().StringP("output-dir", "o", "", "Directory for output files")
	cmd.Flags().String("sqlite", "", "SQLite database path for persisting runs")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	setupLogging(getVerboseFlag(cmd))

	urls, err := collectURLs(cmd, args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no target URLs: pass them as arguments or via --input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Close()

	summary, err := p.Run(ctx, urls)
	if err != nil {
		return err
	}

	manager := output.NewManager(cfg.OutputDir, cfg.OutputFormat, cfg.SQLitePath)
	paths, err := manager.Write(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printSummary(cmd, summary, paths)
	return nil
}

// buildConfig loads the configuration file (or defaults) and applies flag
// overrides. Only flags the user actually set override file values.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("rendered") {
		cfg.UseRenderedFetch, _ = flags.GetBool("rendered")
	}
	if flags.Changed("no-social") {
		noSocial, _ := flags.GetBool("no-social")
		cfg.ScrapeSocialLinks = !noSocial
	}
	if flags.Changed("max-pages") {
		cfg.MaxInternalPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("depth") {
		cfg.MaxCrawlDepth, _ = flags.GetInt("depth")
	}
	if flags.Changed("max-social") {
		cfg.MaxSocialPerPlatform, _ = flags.GetInt("max-social")
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("delay") {
		cfg.InterRequestDelaySeconds, _ = flags.GetFloat64("delay")
	}
	if flags.Changed("retries") {
		cfg.MaxRetries, _ = flags.GetInt("retries")
	}
	if flags.Changed("proxies") {
		cfg.UseProxyRotation, _ = flags.GetBool("proxies")
	}
	if flags.Changed("proxy-file") {
		cfg.Proxy.ProxyFile, _ = flags.GetString("proxy-file")
		cfg.UseProxyRotation = true
	}
	if flags.Changed("free-proxies") {
		cfg.Proxy.UseFreeSources, _ = flags.GetBool("free-proxies")
		cfg.UseProxyRotation = true
	}
	if flags.Changed("proxy-strategy") {
		cfg.Proxy.Strategy, _ = flags.GetString("proxy-strategy")
	}
	if flags.Changed("format") {
		cfg.OutputFormat, _ = flags.GetString("format")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath, _ = flags.GetString("sqlite")
	}
	return cfg, nil
}

// collectURLs merges command-line arguments with URLs loaded from the input
// file, normalizing and deduplicating the combined list.
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	candidates := append([]string{}, args...)
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		loaded, err := input.NewLoader().Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load input file: %w", err)
		}
		candidates = append(candidates, loaded...)
	}
	return input.NormalizeURLs(candidates), nil
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary, paths map[string]string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Processed %d URLs in %s\n", summary.TotalURLs, summary.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  successful: %d  failed: %d  success rate: %.2f%%\n",
		summary.SuccessfulURLs, summary.FailedURLs, summary.SuccessRate)
	fmt.Fprintf(out, "  emails: %d total, %d unique\n", summary.TotalEmails, summary.UniqueEmails)
	for kind, path := range paths {
		fmt.Fprintf(out, "  %s: %s\n", kind, path)
	}
}
