package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/stockbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // sin .env

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.Ledger.StartingBalance)
	assert.Equal(t, "exact", cfg.Ledger.SellMode)
	assert.Equal(t, "incremental", cfg.Ledger.RefreshMode)
	assert.Equal(t, "stockbot.db", cfg.Storage.DSN)
	assert.Equal(t, "yahoo", cfg.Feed.Kind)
	assert.Equal(t, 25, cfg.Acquisition.TopN)
	assert.Equal(t, 1, cfg.Acquisition.DefaultQuantity)
	assert.Equal(t, "@every 15m", cfg.Schedule.Reconcile)
	assert.Equal(t, "10s", cfg.FeedTimeout().String())
	assert.Equal(t, "720h0m0s", cfg.HistoryWindow().String())
}

func TestLoad_YAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
ledger:
  starting_balance: 500
  sell_mode: all
  refresh_mode: cumulative
feed:
  kind: sheet
  sheet_path: prices.yaml
acquisition:
  top_n: 3
  watchlist: [AAPL, MSFT]
log:
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Ledger.StartingBalance)
	assert.Equal(t, "all", cfg.Ledger.SellMode)
	assert.Equal(t, "cumulative", cfg.Ledger.RefreshMode)
	assert.Equal(t, "sheet", cfg.Feed.Kind)
	assert.Equal(t, 3, cfg.Acquisition.TopN)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Acquisition.Watchlist)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOCKBOT_DSN", ":memory:")
	t.Setenv("STOCKBOT_STARTING_BALANCE", "2500.5")
	t.Setenv("STOCKBOT_FEED_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(writeConfig(t, "storage:\n  dsn: other.db\n"))
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, 2500.5, cfg.Ledger.StartingBalance)
	assert.Equal(t, 3, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	cases := map[string]string{
		"sell mode":      "ledger:\n  sell_mode: some\n",
		"refresh mode":   "ledger:\n  refresh_mode: daily\n",
		"feed kind":      "feed:\n  kind: bloomberg\n",
		"sheet path":     "feed:\n  kind: sheet\n",
		"feature source": "acquisition:\n  feature_source: magic\n",
		"csv paths":      "acquisition:\n  feature_source: csv\n",
		"log format":     "log:\n  format: xml\n",
		"bad yaml":       "ledger: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	t.Run("bad balance env", func(t *testing.T) {
		t.Setenv("STOCKBOT_STARTING_BALANCE", "lots")
		_, err := config.Load("")
		assert.Error(t, err)
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
