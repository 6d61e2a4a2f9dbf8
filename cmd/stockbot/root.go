package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/stockbot/config"
	"github.com/alejandrodnm/stockbot/internal/adapters/notify"
	"github.com/alejandrodnm/stockbot/internal/adapters/pricesheet"
	"github.com/alejandrodnm/stockbot/internal/adapters/storage"
	"github.com/alejandrodnm/stockbot/internal/adapters/yahoo"
	"github.com/alejandrodnm/stockbot/internal/application/ledger"
	"github.com/alejandrodnm/stockbot/internal/domain"
	"github.com/alejandrodnm/stockbot/internal/ports"
)

// app agrupa las dependencias compartidas por todos los subcomandos.
type app struct {
	configPath string
	verbose    bool
	logFormat  string
	compact    bool

	cfg     *config.Config
	store   *storage.SQLiteStorage
	ledger  *ledger.Ledger
	feed    ports.PriceFeed
	console *notify.Console
}

// newRootCmd arma el árbol de comandos. El caller cierra a cuando Execute
// termina, también si el subcomando falló.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockbot",
		Short: "Paper stock trading simulator",
		Long: `stockbot keeps a simulated position ledger and cash balance, marks it to
market against a price feed and buys the candidates a ridge model ranks highest.

Examples:
  stockbot buy AAPL 187.50 2
  stockbot reconcile
  stockbot summary
  stockbot acquire --top 5 --qty NVDA=3`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "config/config.yaml", "path to config file")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "set log level to debug")
	cmd.PersistentFlags().StringVar(&a.logFormat, "format", "", "log format: text|json (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.compact, "compact", false, "one line per item instead of tables")

	cmd.AddCommand(
		newBuyCmd(a),
		newSellCmd(a),
		newPositionsCmd(a),
		newSummaryCmd(a),
		newReconcileCmd(a),
		newWatchCmd(a),
		newQuotesCmd(a),
		newHistoryCmd(a),
		newAcquireCmd(a),
	)
	return cmd
}

// setup carga config, logger, storage, feed y ledger antes de cada subcomando.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	setupLogger(cmd.ErrOrStderr(), cfg.Log)
	a.cfg = cfg

	a.store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}

	a.feed, err = newFeed(cfg)
	if err != nil {
		return err
	}

	l, result, err := ledger.LoadOrInitialize(cmd.Context(), a.store, ledger.Config{
		StartingBalance: cfg.Ledger.StartingBalance,
		SellMode:        domain.SellMode(cfg.Ledger.SellMode),
		RefreshMode:     domain.RefreshMode(cfg.Ledger.RefreshMode),
	})
	if err != nil {
		return err
	}
	a.ledger = l

	slog.Debug("stockbot ready",
		"config", a.configPath,
		"dsn", cfg.Storage.DSN,
		"feed", cfg.Feed.Kind,
		"ledger", result,
		"balance", l.Balance(),
	)

	a.console = notify.NewConsoleWriter(cmd.OutOrStdout(), a.compact)
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("close storage", "err", err)
	}
	a.store = nil
}

func newFeed(cfg *config.Config) (ports.PriceFeed, error) {
	switch cfg.Feed.Kind {
	case "sheet":
		sheet, err := pricesheet.Load(cfg.Feed.SheetPath)
		if err != nil {
			return nil, err
		}
		return sheet, nil
	default:
		return yahoo.NewClient(yahoo.Options{
			BaseURL:       cfg.Feed.BaseURL,
			RatePerSecond: cfg.Feed.RatePerSecond,
			Burst:         cfg.Feed.Burst,
			Timeout:       cfg.FeedTimeout(),
		}), nil
	}
}

func setupLogger(w io.Writer, cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
