// Package aggregate fans one query per keyword out to a source.Client and
// joins the outcomes into a single run.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/newsdesk/internal/logger"
	"github.com/ppiankov/newsdesk/internal/source"
)

// Entry is a pooled item together with the keyword it was fetched under.
type Entry struct {
	Keyword string
	source.Item
}

// Pool is the flattened set of items from all successful queries of a run.
type Pool []Entry

// Result is the outcome of one keyword query. Exactly one of Items and Err
// is meaningful: Err is nil on success and a *source.Error otherwise.
type Result struct {
	Keyword  string
	Items    []source.Item
	Err      error
	Duration time.Duration
}

// Failure attributes a failed query to its keyword.
type Failure struct {
	Keyword string
	Kind    source.Kind
	Message string
}

// Run holds every result of one aggregation, in keyword submission order.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// Pool flattens successful results in submission order, keeping each
// keyword's item order. Items returned under several keywords appear once
// per keyword.
func (r *Run) Pool() Pool {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n += len(res.Items)
		}
	}
	pool := make(Pool, 0, n)
	for _, res := range r.Results {
		if res.Err != nil {
			continue
		}
		for _, it := range res.Items {
			pool = append(pool, Entry{Keyword: res.Keyword, Item: it})
		}
	}
	return pool
}

// Failures lists failed queries in submission order.
func (r *Run) Failures() []Failure {
	var out []Failure
	for _, res := range r.Results {
		if res.Err == nil {
			continue
		}
		msg := res.Err.Error()
		var se *source.Error
		if errors.As(res.Err, &se) && se.Err != nil {
			msg = se.Err.Error()
		}
		out = append(out, Failure{
			Keyword: res.Keyword,
			Kind:    source.KindOf(res.Err),
			Message: msg,
		})
	}
	return out
}

// Recorder receives query and run outcomes, e.g. for metrics.
type Recorder interface {
	ObserveQuery(err error, items int, d time.Duration)
	ObserveRun(poolSize, failures int, d time.Duration)
}

// Options tunes an Aggregator.
type Options struct {
	Limit        int           // per-query item limit, required
	Sort         string        // passed through to the client
	QueryTimeout time.Duration // per-query deadline; 0 means none
	Concurrency  int           // max in-flight queries; 0 means one per keyword
	Logger       logrus.FieldLogger
	Recorder     Recorder
}

// Aggregator runs keyword queries concurrently against one client.
type Aggregator struct {
	client source.Client
	opts   Options
	log    logrus.FieldLogger
}

// New validates opts and returns an Aggregator.
func New(client source.Client, opts Options) (*Aggregator, error) {
	if client == nil {
		return nil, errors.New("aggregate: client is required")
	}
	if opts.Limit < 1 {
		return nil, fmt.Errorf("aggregate: limit must be at least 1, got %d", opts.Limit)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("aggregate: concurrency must not be negative, got %d", opts.Concurrency)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Aggregator{client: client, opts: opts, log: log}, nil
}

// Run issues one query per keyword, all at once (or at most Concurrency at a
// time), and returns after every query has succeeded or failed. A failed
// query never cancels the others. Cancelling ctx fails the queries still in
// flight with source.KindTransport.
func (a *Aggregator) Run(ctx context.Context, keywords []string) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]Result, len(keywords)),
	}
	log := a.log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"provider": a.client.Name(),
	})

	var sem chan struct{}
	if a.opts.Concurrency > 0 {
		sem = make(chan struct{}, a.opts.Concurrency)
	}

	// Each goroutine owns run.Results[i]; nothing else is shared until Wait.
	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					run.Results[i] = a.finish(log, Result{
						Keyword: kw,
						Err:     &source.Error{Kind: source.KindTransport, Err: ctx.Err()},
					})
					return
				}
			}
			run.Results[i] = a.finish(log, a.query(ctx, kw))
		}()
	}
	wg.Wait()

	run.Duration = time.Since(run.StartedAt)
	pool := run.Pool()
	failures := len(run.Failures())
	if a.opts.Recorder != nil {
		a.opts.Recorder.ObserveRun(len(pool), failures, run.Duration)
	}
	log.WithFields(logrus.Fields{
		"keywords": len(keywords),
		"items":    len(pool),
		"failures": failures,
		"duration": run.Duration.Round(time.Millisecond).String(),
	}).Info("aggregation complete")

	return run
}

// query runs a single Fetch under its own timeout.
func (a *Aggregator) query(ctx context.Context, keyword string) (res Result) {
	res.Keyword = keyword
	start := time.Now()

	qctx := ctx
	if a.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, a.opts.QueryTimeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			res.Items = nil
			res.Err = &source.Error{Kind: source.KindResponse, Err: fmt.Errorf("client panic: %v", p)}
		}
		res.Duration = time.Since(start)
	}()

	items, err := a.client.Fetch(qctx, source.Query{
		Keyword: keyword,
		Limit:   a.opts.Limit,
		Sort:    a.opts.Sort,
	})
	if err != nil {
		res.Err = classify(err)
		return res
	}
	if len(items) > a.opts.Limit {
		items = items[:a.opts.Limit]
	}
	res.Items = items
	return res
}

// finish logs and records one terminal result.
func (a *Aggregator) finish(log logrus.FieldLogger, res Result) Result {
	if a.opts.Recorder != nil {
		a.opts.Recorder.ObserveQuery(res.Err, len(res.Items), res.Duration)
	}
	entry := log.WithFields(logrus.Fields{
		"keyword":  res.Keyword,
		"duration": res.Duration.Round(time.Millisecond).String(),
	})
	if res.Err != nil {
		entry.WithField("kind", source.KindOf(res.Err).String()).
			WithError(res.Err).Warn("query failed")
	} else {
		entry.WithField("items", len(res.Items)).Debug("query done")
	}
	return res
}

// classify makes sure every failure carries a kind. Errors from clients
// outside this module are transport failures when a deadline or
// cancellation caused them, response failures otherwise.
func classify(err error) error {
	if source.KindOf(err) != source.KindUnknown {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &source.Error{Kind: source.KindTransport, Err: err}
	}
	return &source.Error{Kind: source.KindResponse, Err: err}
}
