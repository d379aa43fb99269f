package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadgrep/leadgrep/internal/proxy"
)

// NewProxiesCmd creates the proxies command.
func NewProxiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxies",
		Short: "Gather and probe proxies for later scraping runs",
		Long: `Proxies builds a proxy pool from a file and/or free public sources,
probes every entry against a canary URL, and prints the working ones
with their response times.

Examples:
  # Probe proxies from a file
  leadgrep proxies --file proxies.txt

  # Gather from free sources and keep the first 50
  leadgrep proxies --free --limit 50`,
		RunE: runProxiesCmd,
	}

	cmd.Flags().String("file", "", "File with proxy addresses, one per line")
	cmd.Flags().Bool("free", false, "Gather proxies from free public sources")
	cmd.Flags().Int("limit", 50, "Maximum number of proxies to gather")
	cmd.Flags().Duration("probe-timeout", 10*time.Second, "Timeout for each canary probe")
	cmd.Flags().String("canary", "", "Canary URL for probing (default http://httpbin.org/ip)")

	return cmd
}

// runProxiesCmd executes the proxies command.
func runProxiesCmd(cmd *cobra.Command, _ []string) error {
	setupLogging(getVerboseFlag(cmd))

	file, _ := cmd.Flags().GetString("file")
	free, _ := cmd.Flags().GetBool("free")
	if file == "" && !free {
		return fmt.Errorf("nothing to probe: pass --file and/or --free")
	}

	limit, _ := cmd.Flags().GetInt("limit")
	probeTimeout, _ := cmd.Flags().GetDuration("probe-timeout")
	canary, _ := cmd.Flags().GetString("canary")

	manager := proxy.NewManager(proxy.Config{
		CanaryURL:    canary,
		ProbeTimeout: probeTimeout,
	})
	if file != "" {
		if err := manager.LoadFromFile(file); err != nil {
			return fmt.Errorf("failed to load proxy file: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if free {
		manager.Gather(ctx, proxy.DefaultSources(), limit)
	}
	if manager.Len() == 0 {
		return fmt.Errorf("proxy pool is empty")
	}

	working := manager.TestAll(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d of %d proxies passed the probe\n\n", len(working), manager.Len())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROXY\tOK\tFAIL\tAVG RESPONSE")
	for _, rec := range manager.Records() {
		avg := "-"
		if rec.Stats.SuccessCount > 0 {
			avg = rec.Stats.AvgResponseTime.Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
			rec.Address, rec.Stats.SuccessCount, rec.Stats.FailCount, avg)
	}
	return w.Flush()
}
