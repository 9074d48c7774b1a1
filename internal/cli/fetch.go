package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsdesk/internal/config"
	"github.com/ppiankov/newsdesk/internal/digest"
	"github.com/ppiankov/newsdesk/internal/metrics"
)

var (
	fetchMode       string
	fetchSampleSize int
	fetchFormat     string
	fetchKeywords   []string
	noColor         bool
	metricsTextfile string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Query every keyword once and print a digest",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchMode, "mode", "", "display mode: full, sample")
	fetchCmd.Flags().IntVar(&fetchSampleSize, "sample-size", 0, "number of items in sample mode")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "", "output format: terminal, json, markdown")
	fetchCmd.Flags().StringArrayVar(&fetchKeywords, "keyword", nil, "keyword to query instead of the configured list (repeatable)")
	fetchCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	fetchCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	formatter, err := digest.ByName(cfg.Digest.Format, !noColor && stdoutIsTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	// Failed queries are part of the digest, not an error exit.
	input := p.runDigest(cmd.Context())
	if err := formatter.Format(cmd.OutOrStdout(), input); err != nil {
		return fmt.Errorf("format digest: %w", err)
	}

	if metricsTextfile != "" {
		if err := metrics.WriteTextfile(metricsTextfile, p.registry); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig loads the config directory and applies fetch flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(fetchKeywords) > 0 {
		cfg.Keywords = cfg.Keywords[:0:0]
		for _, kw := range fetchKeywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				cfg.Keywords = append(cfg.Keywords, kw)
			}
		}
	}
	if fetchMode != "" {
		cfg.Digest.Mode = fetchMode
	}
	if fetchSampleSize != 0 {
		cfg.Digest.SampleSize = fetchSampleSize
	}
	if fetchFormat != "" {
		cfg.Digest.Format = fetchFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// stdoutIsTerminal reports whether w is a character device.
func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
