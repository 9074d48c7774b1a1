package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/config"
	"github.com/ppiankov/newsdesk/internal/digest"
	"github.com/ppiankov/newsdesk/internal/logger"
	"github.com/ppiankov/newsdesk/internal/metrics"
	"github.com/ppiankov/newsdesk/internal/selector"
	"github.com/ppiankov/newsdesk/internal/source"
)

// pipeline is everything one process needs to run aggregations.
type pipeline struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   source.Client
	agg      *aggregate.Aggregator
	sampler  *selector.Sampler
}

// newPipeline wires logger, metrics, client and aggregator from cfg. Logs go
// to logOut. Any error here is a configuration error and aborts before the
// first query.
func newPipeline(cfg *config.Config, logOut io.Writer) (*pipeline, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	client, err := source.New(cfg.Provider.Kind, cfg.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("create %s source: %w", cfg.Provider.Kind, err)
	}

	agg, err := aggregate.New(client, aggregate.Options{
		Limit:        cfg.Query.Limit,
		Sort:         cfg.Query.Sort,
		QueryTimeout: cfg.Query.Timeout.Duration,
		Concurrency:  cfg.Query.Concurrency,
		Logger:       log,
		Recorder:     m,
	})
	if err != nil {
		return nil, fmt.Errorf("create aggregator: %w", err)
	}

	return &pipeline{
		cfg:      cfg,
		log:      log,
		registry: reg,
		metrics:  m,
		client:   client,
		agg:      agg,
		sampler:  selector.NewSampler(nil),
	}, nil
}

// runDigest runs one aggregation over the configured keywords and prepares it
// for display in the configured mode.
func (p *pipeline) runDigest(ctx context.Context) digest.Input {
	if d := p.cfg.Query.RunTimeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	run := p.agg.Run(ctx, p.cfg.Keywords)
	pool := run.Pool()

	if p.cfg.Digest.Mode == selector.ModeSample {
		return digest.Build(run, selector.ModeSample, nil, p.sampler.Sample(pool, p.cfg.Digest.SampleSize))
	}
	return digest.Build(run, selector.ModeFull, selector.Partition(pool), nil)
}
