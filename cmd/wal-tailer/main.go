// Command wal-tailer drives one or more WAL-group reader loops from a YAML
// config, using the reference FramedFileReader adapter and a shipper
// stand-in that logs each batch. Both file discovery and shipping are explicit
// non-goals of the core; this command exists to demo it end-to-end and
// for manual operation against a real WAL directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/pkg/walreplicate"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("wal-tailer %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to wal-tailer configuration file")
	pollInterval := fs.Duration("poll", time.Second, "Directory poll interval for discovering new WAL files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := walreplicate.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := flow.Config()

	rt, err := flow.StreamOUT()
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen := make(map[string]map[string]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		names, err := scanDir(g.Dir)
		if err != nil {
			return fmt.Errorf("scan group %q dir %q: %w", g.Name, g.Dir, err)
		}
		seen[g.Name] = make(map[string]bool, len(names))
		for _, name := range names {
			path := filepath.Join(g.Dir, name)
			if err := rt.NotifyRoll(g.Name, domain.LogPath(path)); err != nil {
				return err
			}
			seen[g.Name][name] = true
		}
		go shipGroup(ctx, rt, g.Name)
	}

	go watchDirs(ctx, rt, cfg.Groups, seen, *pollInterval)

	return rt.Run(ctx)
}

// scanDir lists regular files in dir in name order, a reasonable default
// ordering for sequentially-numbered WAL segments; production deployments
// plug their own EntryReaderFactory and roll notifications instead of
// relying on directory scanning.
func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func watchDirs(ctx context.Context, rt *walreplicate.Runtime, groups []walreplicate.GroupConfig, seen map[string]map[string]bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, g := range groups {
				names, err := scanDir(g.Dir)
				if err != nil {
					continue
				}
				for _, name := range names {
					if seen[g.Name][name] {
						continue
					}
					seen[g.Name][name] = true
					_ = rt.NotifyRoll(g.Name, domain.LogPath(filepath.Join(g.Dir, name)))
				}
			}
		}
	}
}

// shipGroup is the stand-in shipper: it drains ready batches, logs them,
// and releases their quota bytes, as a real shipper would after a
// successful remote transmission.
func shipGroup(ctx context.Context, rt *walreplicate.Runtime, group string) {
	ready, err := rt.Ready(group)
	if err != nil {
		return
	}
	quota := rt.Quota()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		b, ok := ready.TryTake()
		if !ok {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		var quotaBytes int64
		for _, se := range b.Entries {
			quotaBytes += se.Entry.QuotaSize()
		}
		log.Printf("group=%s shipped entries=%d row_keys=%d end=%s more=%v",
			group, b.NbEntries, b.NbRowKeys, b.EndPosition, b.MoreEntries)
		quota.Release(quotaBytes)
		if !b.MoreEntries {
			return
		}
	}
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := walreplicate.Conf(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	prefixes := []string{"size_of_log_queue", "log_edits_read", "log_edits_filtered", "completed_wal"}
	var lines []string

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				lines = append(lines, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("--- %s ---\n", time.Now().Format(time.RFC3339))
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

func printUsage() {
	fmt.Print(`wal-tailer CLI

Usage:
  wal-tailer <command> [flags]

Commands:
  run        Start tailing every configured WAL group
  validate   Load and validate a config file without starting anything
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  wal-tailer run -config ./data/config.yaml
  wal-tailer validate -config ./data/config.yaml
  wal-tailer stats -url http://localhost:9100/metrics -interval 1s
`)
}
