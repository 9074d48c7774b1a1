// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/newsdesk/internal/logger"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler runs a Job on a standard five-field cron spec. A run that is
// still going when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
	log    logrus.FieldLogger
}

// New validates spec and returns a stopped Scheduler. Jobs run with a
// context derived from ctx, so cancelling ctx also cancels a run started by
// RunOnce before Start is ever called.
func New(ctx context.Context, spec string, job Job, log logrus.FieldLogger) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler: job is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{job: job, ctx: ctx, cancel: cancel, log: log}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("scheduler: cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule, cancels the running job and waits for it to
// return.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
}

// RunOnce runs the job immediately in the caller's goroutine.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}
	s.log.Debug("scheduled run start")
	s.job(s.ctx)
	s.log.Debug("scheduled run done")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
