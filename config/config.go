package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// Config es la configuración completa del simulador.
type Config struct {
	Ledger      LedgerConfig      `yaml:"ledger"`
	Storage     StorageConfig     `yaml:"storage"`
	Feed        FeedConfig        `yaml:"feed"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Log         LogConfig         `yaml:"log"`
}

// LedgerConfig controla el comportamiento del ledger.
type LedgerConfig struct {
	StartingBalance float64 `yaml:"starting_balance"`
	SellMode        string  `yaml:"sell_mode"`    // exact | all
	RefreshMode     string  `yaml:"refresh_mode"` // incremental | cumulative
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// FeedConfig elige y configura la fuente de precios.
type FeedConfig struct {
	Kind           string  `yaml:"kind"` // yahoo | sheet
	BaseURL        string  `yaml:"base_url"`
	SheetPath      string  `yaml:"sheet_path"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

// AcquisitionConfig controla el pipeline de adquisición.
type AcquisitionConfig struct {
	TopN            int      `yaml:"top_n"`
	DefaultQuantity int      `yaml:"default_quantity"`
	RidgeLambda     float64  `yaml:"ridge_lambda"`
	FeatureSource   string   `yaml:"feature_source"` // history | csv
	Watchlist       []string `yaml:"watchlist"`
	Candidates      []string `yaml:"candidates"`
	WatchlistCSV    string   `yaml:"watchlist_csv"`
	CandidatesCSV   string   `yaml:"candidates_csv"`
	HistoryDays     int      `yaml:"history_days"`
}

// ScheduleConfig controla el comando watch.
type ScheduleConfig struct {
	Reconcile string `yaml:"reconcile"` // spec de cron, ej. "@every 15m"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un path vacío o inexistente devuelve la configuración por defecto.
// Los valores del entorno sobreescriben los del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// FeedTimeout devuelve el timeout por llamada al feed como time.Duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// HistoryWindow devuelve la ventana de historia usada para features.
func (c *Config) HistoryWindow() time.Duration {
	return time.Duration(c.Acquisition.HistoryDays) * 24 * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STOCKBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("STOCKBOT_STARTING_BALANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STOCKBOT_STARTING_BALANCE=%q: %w", v, err)
		}
		cfg.Ledger.StartingBalance = f
	}
	if v := os.Getenv("STOCKBOT_FEED_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOCKBOT_FEED_TIMEOUT=%q: %w", v, err)
		}
		cfg.Feed.TimeoutSeconds = int(d.Round(time.Second) / time.Second)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Ledger.StartingBalance <= 0 {
		cfg.Ledger.StartingBalance = domain.DefaultStartingBalance
	}
	if cfg.Ledger.SellMode == "" {
		cfg.Ledger.SellMode = string(domain.SellExact)
	}
	if cfg.Ledger.RefreshMode == "" {
		cfg.Ledger.RefreshMode = string(domain.RefreshIncremental)
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "stockbot.db"
	}
	if cfg.Feed.Kind == "" {
		cfg.Feed.Kind = "yahoo"
	}
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Feed.TimeoutSeconds <= 0 {
		cfg.Feed.TimeoutSeconds = 10
	}
	if cfg.Feed.RatePerSecond <= 0 {
		cfg.Feed.RatePerSecond = 5
	}
	if cfg.Feed.Burst <= 0 {
		cfg.Feed.Burst = 2
	}
	if cfg.Acquisition.TopN <= 0 {
		cfg.Acquisition.TopN = 25
	}
	if cfg.Acquisition.DefaultQuantity <= 0 {
		cfg.Acquisition.DefaultQuantity = 1
	}
	if cfg.Acquisition.RidgeLambda <= 0 {
		cfg.Acquisition.RidgeLambda = 1.0
	}
	if cfg.Acquisition.FeatureSource == "" {
		cfg.Acquisition.FeatureSource = "history"
	}
	if cfg.Acquisition.HistoryDays <= 0 {
		cfg.Acquisition.HistoryDays = 30
	}
	if cfg.Schedule.Reconcile == "" {
		cfg.Schedule.Reconcile = "@every 15m"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza valores desconocidos en los campos enumerados.
func (c *Config) validate() error {
	switch domain.SellMode(c.Ledger.SellMode) {
	case domain.SellExact, domain.SellAll:
	default:
		return fmt.Errorf("ledger.sell_mode %q: want exact or all", c.Ledger.SellMode)
	}
	switch domain.RefreshMode(c.Ledger.RefreshMode) {
	case domain.RefreshIncremental, domain.RefreshCumulative:
	default:
		return fmt.Errorf("ledger.refresh_mode %q: want incremental or cumulative", c.Ledger.RefreshMode)
	}
	switch c.Feed.Kind {
	case "yahoo":
	case "sheet":
		if c.Feed.SheetPath == "" {
			return fmt.Errorf("feed.sheet_path is required when feed.kind is sheet")
		}
	default:
		return fmt.Errorf("feed.kind %q: want yahoo or sheet", c.Feed.Kind)
	}
	switch c.Acquisition.FeatureSource {
	case "history":
	case "csv":
		if c.Acquisition.WatchlistCSV == "" || c.Acquisition.CandidatesCSV == "" {
			return fmt.Errorf("acquisition.watchlist_csv and candidates_csv are required when feature_source is csv")
		}
	default:
		return fmt.Errorf("acquisition.feature_source %q: want history or csv", c.Acquisition.FeatureSource)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	return nil
}
