package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/newsdesk/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve digests and metrics over HTTP",
	RunE:  serveAction,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, e.g. :8080)")
}

func serveAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if !p.log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := newServer(p)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
}

func newServer(p *pipeline) (*server.Server, error) {
	return server.New(server.Options{
		Runner:     p.agg,
		Keywords:   p.cfg.Keywords,
		Mode:       p.cfg.Digest.Mode,
		SampleSize: p.cfg.Digest.SampleSize,
		RunTimeout: p.cfg.Query.RunTimeout.Duration,
		Sampler:    p.sampler,
		Gatherer:   p.registry,
		Logger:     p.log,
	})
}
