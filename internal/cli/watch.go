package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsdesk/internal/digest"
	"github.com/ppiankov/newsdesk/internal/metrics"
	"github.com/ppiankov/newsdesk/internal/scheduler"
)

var (
	watchCron     string
	watchTextfile string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Fetch and print a digest on a cron schedule",
	Long:  "watch runs fetch immediately and then on every tick of the cron schedule until interrupted. A tick that fires while a run is still in progress is skipped.",
	RunE:  watchAction,
}

func init() {
	watchCmd.Flags().StringVar(&watchCron, "cron", "", "cron schedule (default from config, e.g. \"*/30 * * * *\")")
	watchCmd.Flags().StringVar(&watchTextfile, "metrics-textfile", "", "rewrite Prometheus metrics to this file after every run")
	watchCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
}

func watchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchCron != "" {
		cfg.Watch.Cron = watchCron
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	formatter, err := digest.ByName(cfg.Digest.Format, !noColor && stdoutIsTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	sched, err := scheduler.New(cmd.Context(), cfg.Watch.Cron, watchJob(p, formatter, cmd.OutOrStdout(), watchTextfile), p.log)
	if err != nil {
		return err
	}

	p.log.WithField("cron", cfg.Watch.Cron).Info("watching")
	runWatch(cmd.Context(), sched)
	return nil
}

// watchJob prints one digest per run. Errors are logged so the schedule
// keeps going.
func watchJob(p *pipeline, f digest.Formatter, out io.Writer, textfile string) scheduler.Job {
	return func(ctx context.Context) {
		input := p.runDigest(ctx)
		if err := f.Format(out, input); err != nil {
			p.log.WithError(err).Error("format digest")
		}
		if textfile != "" {
			if err := metrics.WriteTextfile(textfile, p.registry); err != nil {
				p.log.WithError(err).Error("write metrics textfile")
			}
		}
	}
}

// ticker is the part of a scheduler runWatch drives.
type ticker interface {
	RunOnce()
	Start()
	Stop()
}

// runWatch runs once immediately, then on schedule until ctx is done.
func runWatch(ctx context.Context, t ticker) {
	t.RunOnce()
	if ctx.Err() != nil {
		return
	}
	t.Start()
	<-ctx.Done()
	t.Stop()
}
