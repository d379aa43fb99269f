// Package main provides the entry point for the leadgrep CLI.
//
// leadgrep crawls company websites and their social media profiles to
// collect contact email addresses, writing results to CSV, Excel, or both.
//
// Usage:
//
//	leadgrep scrape --input urls.csv
//	leadgrep scrape https://example.com https://example.org
//
// See --help for all available options.
package main

// main is the entry point for leadgrep.
func main() {
	Execute()
}
