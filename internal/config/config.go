package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/newsdesk/internal/source"
)

const (
	DefaultConfigFile      = "config.yaml"
	DefaultProvider        = source.ProviderRSS
	DefaultClientIDEnv     = "NAVER_CLIENT_ID"
	DefaultClientSecretEnv = "NAVER_CLIENT_SECRET"
	DefaultLimit           = 10
	MaxLimit               = 100
	DefaultSort            = "date"
	DefaultQueryTimeout    = 10 * time.Second
	DefaultRunTimeout      = 60 * time.Second
	DefaultMode            = "full"
	DefaultSampleSize      = 20
	DefaultFormat          = "terminal"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultCron            = "*/30 * * * *"
	DefaultAddr            = ":8080"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "10s".
// An explicit "0" is kept and disables the setting instead of taking the
// default.
type Duration struct {
	time.Duration
	set bool
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	d.set = true
	return nil
}

type Config struct {
	Keywords []string       `yaml:"keywords"`
	Provider ProviderConfig `yaml:"provider"`
	Query    QueryConfig    `yaml:"query"`
	Digest   DigestConfig   `yaml:"digest"`
	Log      LogConfig      `yaml:"log"`
	Watch    WatchConfig    `yaml:"watch"`
	Serve    ServeConfig    `yaml:"serve"`
}

type ProviderConfig struct {
	Kind            string        `yaml:"kind"`
	Endpoint        string        `yaml:"endpoint"`
	UserAgent       string        `yaml:"user_agent"`
	Locale          source.Locale `yaml:"locale"`
	ClientIDEnv     string        `yaml:"client_id_env"`
	ClientSecretEnv string        `yaml:"client_secret_env"`

	// Resolved from env vars at load time.
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

type QueryConfig struct {
	Limit       int      `yaml:"limit"`
	Sort        string   `yaml:"sort"`
	Timeout     Duration `yaml:"timeout"`
	RunTimeout  Duration `yaml:"run_timeout"`
	Concurrency int      `yaml:"concurrency"`
}

type DigestConfig struct {
	Mode       string `yaml:"mode"`
	SampleSize int    `yaml:"sample_size"`
	Format     string `yaml:"format"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Cron string `yaml:"cron"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// SourceOptions returns the client options for the configured provider.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Endpoint:     c.Provider.Endpoint,
		UserAgent:    c.Provider.UserAgent,
		Locale:       c.Provider.Locale,
		ClientID:     c.Provider.ClientID,
		ClientSecret: c.Provider.ClientSecret,
	}
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	keywords := cfg.Keywords[:0]
	for _, kw := range cfg.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	cfg.Keywords = keywords

	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = DefaultProvider
	}
	if cfg.Provider.Locale == (source.Locale{}) {
		cfg.Provider.Locale = source.DefaultLocale
	}
	if cfg.Provider.ClientIDEnv == "" {
		cfg.Provider.ClientIDEnv = DefaultClientIDEnv
	}
	if cfg.Provider.ClientSecretEnv == "" {
		cfg.Provider.ClientSecretEnv = DefaultClientSecretEnv
	}
	if cfg.Query.Limit == 0 {
		cfg.Query.Limit = DefaultLimit
	}
	if cfg.Query.Sort == "" {
		cfg.Query.Sort = DefaultSort
	}
	if !cfg.Query.Timeout.set {
		cfg.Query.Timeout.Duration = DefaultQueryTimeout
	}
	if !cfg.Query.RunTimeout.set {
		cfg.Query.RunTimeout.Duration = DefaultRunTimeout
	}
	if cfg.Digest.Mode == "" {
		cfg.Digest.Mode = DefaultMode
	}
	if cfg.Digest.SampleSize == 0 {
		cfg.Digest.SampleSize = DefaultSampleSize
	}
	if cfg.Digest.Format == "" {
		cfg.Digest.Format = DefaultFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = DefaultCron
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultAddr
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Provider.ClientIDEnv != "" {
		cfg.Provider.ClientID = os.Getenv(cfg.Provider.ClientIDEnv)
	}
	if cfg.Provider.ClientSecretEnv != "" {
		cfg.Provider.ClientSecret = os.Getenv(cfg.Provider.ClientSecretEnv)
	}
}

// Validate checks a loaded config. Callers that override fields after Load
// (CLI flags) validate again.
func Validate(cfg *Config) error {
	if len(cfg.Keywords) == 0 {
		return errors.New("keywords: at least one keyword must be configured")
	}

	switch cfg.Provider.Kind {
	case source.ProviderRSS:
		// valid
	case source.ProviderSearch:
		if cfg.Provider.ClientID == "" || cfg.Provider.ClientSecret == "" {
			return fmt.Errorf("provider: search requires credentials in $%s and $%s",
				cfg.Provider.ClientIDEnv, cfg.Provider.ClientSecretEnv)
		}
	default:
		return fmt.Errorf("provider.kind: unknown provider %q (want rss or search)", cfg.Provider.Kind)
	}

	if cfg.Query.Limit < 1 || cfg.Query.Limit > MaxLimit {
		return fmt.Errorf("query.limit: %d out of range 1..%d", cfg.Query.Limit, MaxLimit)
	}
	switch cfg.Query.Sort {
	case "date", "sim":
		// valid
	default:
		return fmt.Errorf("query.sort: unknown sort %q (want date or sim)", cfg.Query.Sort)
	}
	if cfg.Query.Timeout.Duration < 0 || cfg.Query.RunTimeout.Duration < 0 {
		return errors.New("query: timeouts must not be negative")
	}
	if cfg.Query.Concurrency < 0 {
		return fmt.Errorf("query.concurrency: must not be negative, got %d", cfg.Query.Concurrency)
	}

	switch cfg.Digest.Mode {
	case "full", "sample":
		// valid
	default:
		return fmt.Errorf("digest.mode: unknown mode %q (want full or sample)", cfg.Digest.Mode)
	}
	if cfg.Digest.SampleSize < 1 {
		return fmt.Errorf("digest.sample_size: must be at least 1, got %d", cfg.Digest.SampleSize)
	}
	switch cfg.Digest.Format {
	case "terminal", "json", "markdown":
		// valid
	default:
		return fmt.Errorf("digest.format: unknown format %q (want terminal, json or markdown)", cfg.Digest.Format)
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("log.format: unknown format %q (want text or json)", cfg.Log.Format)
	}

	if _, err := cron.ParseStandard(cfg.Watch.Cron); err != nil {
		return fmt.Errorf("watch.cron: %w", err)
	}

	return nil
}
