package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out.String(), "leadgrep version") {
		t.Fatalf("Unexpected version output: %q", out.String())
	}
}

func TestScrapeCommand_NoTargets(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"scrape"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error without targets")
	}
	if !strings.Contains(err.Error(), "no target URLs") {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestScrapeCommand_BadFormat(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"scrape", "-f", "pdf", "https://example.org"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "output_format") {
		t.Fatalf("Expected a format validation error, got %v", err)
	}
}

func TestBuildConfig_FlagOverrides(t *testing.T) {
	cmd := NewScrapeCmd()
	if err := cmd.Flags().Parse([]string{
		"--rendered", "--no-social", "--max-pages", "8", "--delay", "0.25",
		"--format", "csv",
	}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}

	if !cfg.UseRenderedFetch {
		t.Error("Expected rendered fetch enabled")
	}
	if cfg.ScrapeSocialLinks {
		t.Error("Expected social scraping disabled")
	}
	if cfg.MaxInternalPages != 8 {
		t.Errorf("Expected 8 internal pages, got %d", cfg.MaxInternalPages)
	}
	if cfg.InterRequestDelaySeconds != 0.25 {
		t.Errorf("Expected delay 0.25, got %g", cfg.InterRequestDelaySeconds)
	}
	if cfg.OutputFormat != "csv" {
		t.Errorf("Expected csv format, got %q", cfg.OutputFormat)
	}
	// Untouched fields keep their defaults.
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected default retries, got %d", cfg.MaxRetries)
	}
}

func TestBuildConfig_ProxyFileImpliesRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	if err := os.WriteFile(path, []byte("http://1.2.3.4:8080\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	cmd := NewScrapeCmd()
	if err := cmd.Flags().Parse([]string{"--proxy-file", path}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if !cfg.UseProxyRotation {
		t.Error("A proxy file must enable rotation")
	}
	if cfg.Proxy.ProxyFile != path {
		t.Errorf("Expected proxy file %s, got %s", path, cfg.Proxy.ProxyFile)
	}
}

func TestCollectURLs_MergesArgsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	if err := os.WriteFile(path, []byte("https://beta.net\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	cmd := NewScrapeCmd()
	if err := cmd.Flags().Parse([]string{"--input", path}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	urls, err := collectURLs(cmd, []string{"acme.io"})
	if err != nil {
		t.Fatalf("collectURLs failed: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://acme.io" || urls[1] != "https://beta.net" {
		t.Fatalf("Unexpected URLs: %v", urls)
	}
}
