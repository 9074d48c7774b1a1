package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsdesk/internal/config"
	"github.com/ppiankov/newsdesk/internal/source"
)

const doctorProbeTimeout = 15 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config and provider reachability",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true
	out := cmd.OutOrStdout()
	check := func(pass bool, format string, args ...any) {
		printCheck(out, pass, format, args...)
		if !pass {
			ok = false
		}
	}

	// Config dir
	info, err := os.Stat(configDir)
	check(err == nil && info.IsDir(), "config directory %s", configDir)

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		check(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	check(true, "config.yaml (%d keywords, provider %s, mode %s)",
		len(cfg.Keywords), cfg.Provider.Kind, cfg.Digest.Mode)

	// Provider
	client, err := source.New(cfg.Provider.Kind, cfg.SourceOptions())
	if err != nil {
		check(false, "%s provider: %v", cfg.Provider.Kind, err)
		return fmt.Errorf("some checks failed")
	}
	check(true, "%s provider", client.Name())

	// One-item probe with the first keyword.
	ctx, cancel := context.WithTimeout(cmd.Context(), doctorProbeTimeout)
	defer cancel()
	kw := cfg.Keywords[0]
	start := time.Now()
	items, err := client.Fetch(ctx, source.Query{Keyword: kw, Limit: 1, Sort: cfg.Query.Sort})
	if err != nil {
		check(false, "probe %q: %v", kw, err)
	} else {
		check(true, "probe %q (%d items in %s)", kw, len(items), time.Since(start).Round(time.Millisecond))
		if len(items) == 0 {
			printInfo(out, "probe %q returned no items; the keyword may be too narrow", kw)
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
