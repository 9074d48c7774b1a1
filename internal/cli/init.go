package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func initAction(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	out := cmd.OutOrStdout()
	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", configPath)
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
		return nil
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}
	fmt.Fprintf(out, "  created: %s\n", configPath)
	fmt.Fprintf(out, "Initialized %s. Edit keywords in %s, then run: newsdesk fetch\n", configDir, config.DefaultConfigFile)
	return nil
}

const exampleConfig = `# newsdesk configuration

keywords:
  - "해운"
  - "물류"
  - "항만"

provider:
  # rss: Google News RSS search (no credentials)
  # search: Naver news search API (needs client id and secret)
  kind: rss
  # endpoint: "https://news.google.com/rss"
  locale:
    hl: ko
    gl: KR
    ceid: "KR:ko"
  client_id_env: NAVER_CLIENT_ID
  client_secret_env: NAVER_CLIENT_SECRET

query:
  limit: 10
  sort: date
  timeout: 10s
  run_timeout: 60s
  concurrency: 0

digest:
  mode: full
  sample_size: 20
  format: terminal

log:
  level: info
  format: text

watch:
  cron: "*/30 * * * *"

serve:
  addr: ":8080"
`
