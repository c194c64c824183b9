package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/marketdata"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/storage"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty = built-in defaults)")
	source := flag.String("source", "sim", "series source: csv|sim|sqlite")
	seriesKey := flag.String("series", "", "series key: CSV path, sim profile or stored key (overrides config)")
	label := flag.String("label", "", "free-form label stored with -save")
	save := flag.Bool("save", false, "persist the run and print its ID")
	output := flag.String("output", "table", "report output: table|yaml")
	showTrades := flag.Bool("trades", false, "print the trade blotter")
	export := flag.String("export", "", "export results to a .csv or .xlsx file")
	stress := flag.String("stress", "", "comma-separated relative shocks (\"\" = config shocks)")
	regimes := flag.Bool("regimes", false, "compare the config-defined regime windows")
	riskOnly := flag.Bool("risk", false, "recompute the risk report of a stored run (requires -run)")
	runID := flag.String("run", "", "run ID for -risk")
	list := flag.Bool("list", false, "list stored runs")
	replay := flag.Bool("replay", false, "replay the series with live-style signal logging")
	replayRate := flag.Float64("rate", 20, "replay speed in observations per second")
	ratesMode := flag.Bool("rates", false, "simulate the Hull-White short-rate forecast")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	// -stress "" es válido: usa los shocks de la config.
	stressMode := *stress != ""
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "stress" {
			stressMode = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("bondarb starting",
		"config", *configPath,
		"source", *source,
		"series", *seriesKey,
		"stress", stressMode,
		"regimes", *regimes,
		"replay", *replay,
		"rates", *ratesMode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// El forecast de tipos no toca series ni storage.
	if *ratesMode {
		runRates(cfg, *export)
		return
	}

	needStore := *source == "sqlite" || *save || *riskOnly || *list
	var store *storage.SQLiteStorage
	if needStore {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *list {
		runList(ctx, store)
		return
	}
	if *riskOnly {
		runRisk(ctx, cfg, store, *runID, *output, *export)
		return
	}

	provider, key := newProvider(cfg, store, *source, *seriesKey)
	series, err := provider.FetchSeries(ctx, key)
	if err != nil {
		slog.Error("failed to load series", "err", err, "source", *source, "key", key)
		os.Exit(1)
	}
	slog.Info("series loaded",
		"key", key,
		"observations", series.Len(),
		"from", series.First().Time.Format("2006-01-02"),
		"to", series.Last().Time.Format("2006-01-02"),
	)

	switch {
	case *replay:
		runReplay(ctx, cfg, series, *replayRate)
	case stressMode:
		runStress(ctx, cfg, series, *stress, *output, *export)
	case *regimes:
		runRegimes(ctx, cfg, series, *output, *export)
	default:
		runBacktest(ctx, cfg, store, series, key, backtestOpts{
			Label:      *label,
			Save:       *save,
			Output:     *output,
			ShowTrades: *showTrades,
			Export:     *export,
		})
	}
}

// newProvider resuelve la fuente de datos y la clave efectiva de la serie.
func newProvider(cfg *config.Config, store *storage.SQLiteStorage, source, key string) (ports.SeriesProvider, string) {
	switch source {
	case "csv":
		if key == "" {
			key = cfg.Data.SeriesKey
		}
		return marketdata.NewCSVProvider(cfg.Data.Dir), key
	case "sim":
		if key == "" {
			key = cfg.Sim.Profile
		}
		provider, err := marketdata.NewSimProvider(cfg.Sim.ProfilesPath)
		if err != nil {
			slog.Error("failed to load sim profiles", "err", err, "path", cfg.Sim.ProfilesPath)
			os.Exit(1)
		}
		return provider, key
	case "sqlite":
		if key == "" {
			key = cfg.Data.SeriesKey
		}
		return storeProvider{store}, key
	default:
		slog.Error("unknown source", "source", source, "want", "csv|sim|sqlite")
		os.Exit(1)
		return nil, ""
	}
}

// storeProvider adapta el storage al puerto de proveedor de series.
type storeProvider struct {
	store *storage.SQLiteStorage
}

func (p storeProvider) FetchSeries(ctx context.Context, key string) (domain.SpreadSeries, error) {
	return p.store.LoadSeries(ctx, key)
}

func setupLogger(cfg config.LogConfig) {
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

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
