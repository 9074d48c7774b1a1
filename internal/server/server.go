// Package server exposes aggregation runs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/digest"
	"github.com/ppiankov/newsdesk/internal/logger"
	"github.com/ppiankov/newsdesk/internal/selector"
)

const (
	// RequestIDHeader carries the request ID in and out.
	RequestIDHeader = "X-Request-ID"

	maxKeywords = 20
)

// Runner runs one aggregation over keywords.
type Runner interface {
	Run(ctx context.Context, keywords []string) *aggregate.Run
}

// Options configures a Server.
type Options struct {
	Runner     Runner
	Keywords   []string // used when a request names none
	Mode       string   // default display mode
	SampleSize int      // default sample size
	RunTimeout time.Duration
	Sampler    *selector.Sampler
	Gatherer   prometheus.Gatherer
	Logger     logrus.FieldLogger
}

// Server serves digests as JSON.
type Server struct {
	opts Options
	log  logrus.FieldLogger

	mu      sync.Mutex // guards sampler
	sampler *selector.Sampler
}

// New returns a Server. Runner is required.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if opts.Mode == "" {
		opts.Mode = selector.ModeFull
	}
	if opts.SampleSize < 1 {
		opts.SampleSize = 20
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = selector.NewSampler(nil)
	}
	return &Server{opts: opts, log: log, sampler: sampler}, nil
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.logging())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the API routes to r.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/news", s.news)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) news(c *gin.Context) {
	mode := c.DefaultQuery("mode", s.opts.Mode)
	if mode != selector.ModeFull && mode != selector.ModeSample {
		badRequest(c, fmt.Sprintf("mode must be %s or %s", selector.ModeFull, selector.ModeSample))
		return
	}

	k := s.opts.SampleSize
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "k must be a positive integer")
			return
		}
		k = n
	}

	keywords := s.opts.Keywords
	if requested := c.QueryArray("keyword"); len(requested) > 0 {
		keywords = keywords[:0:0]
		for _, kw := range requested {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}
	if len(keywords) == 0 {
		badRequest(c, "at least one keyword is required")
		return
	}
	if len(keywords) > maxKeywords {
		badRequest(c, fmt.Sprintf("at most %d keywords per request", maxKeywords))
		return
	}

	ctx := c.Request.Context()
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	run := s.opts.Runner.Run(ctx, keywords)
	pool := run.Pool()

	var in digest.Input
	if mode == selector.ModeSample {
		s.mu.Lock()
		sample := s.sampler.Sample(pool, k)
		s.mu.Unlock()
		in = digest.Build(run, mode, nil, sample)
	} else {
		in = digest.Build(run, mode, selector.Partition(pool), nil)
	}

	c.JSON(http.StatusOK, digest.NewDocument(in))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":    "bad_request",
		"message": msg,
	})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration":    time.Since(start).Round(time.Millisecond).String(),
			"request_id":  c.GetString("request_id"),
			"remote_addr": c.ClientIP(),
		}).Info("request processed")
	}
}
