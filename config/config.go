package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/backtest"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/risk"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/scenario"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/strategy"
)

// regimeDateLayout es el formato de fecha de las ventanas de régimen.
const regimeDateLayout = "2006-01-02"

// Config es la configuración completa del backtester.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Scenario ScenarioConfig `yaml:"scenario"`
	Data     DataConfig     `yaml:"data"`
	Sim      SimConfig      `yaml:"sim"`
	Rates    RatesConfig    `yaml:"rates"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig controla la señal bayesiana y el motor de ejecución.
type StrategyConfig struct {
	WindowSize      int     `yaml:"window_size"`
	PriorWindow     int     `yaml:"prior_window"`
	EntryThreshold  float64 `yaml:"entry_threshold"`
	ExitTolerance   float64 `yaml:"exit_tolerance"`
	MaxPositions    int     `yaml:"max_positions"`
	Size            float64 `yaml:"size"`
	TransactionCost float64 `yaml:"transaction_cost"` // coste de ida y vuelta por unidad de tamaño
}

// RiskConfig controla el análisis de riesgo del informe.
type RiskConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	Confidence     float64 `yaml:"confidence"`
	Haircut        float64 `yaml:"haircut"`
	MinHistorical  int     `yaml:"min_historical"`
}

// ScenarioConfig controla los escenarios de estrés y las comparativas de
// régimen.
type ScenarioConfig struct {
	Workers int            `yaml:"workers"` // <= 0 usa todos los núcleos
	Shocks  []float64      `yaml:"shocks"`  // desplazamientos relativos del spread
	Regimes []RegimeConfig `yaml:"regimes"`
}

// RegimeConfig es una ventana temporal etiquetada [from, to) en formato
// YYYY-MM-DD.
type RegimeConfig struct {
	Label string `yaml:"label"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// DataConfig controla de dónde se cargan las series históricas.
type DataConfig struct {
	Dir       string `yaml:"dir"`        // base para claves CSV relativas
	SeriesKey string `yaml:"series_key"` // clave por defecto del proveedor
}

// SimConfig controla el generador sintético de spreads.
type SimConfig struct {
	ProfilesPath string `yaml:"profiles_path"` // YAML de perfiles; vacío = solo "default"
	Profile      string `yaml:"profile"`
}

// RatesConfig controla el modelo Hull-White y su simulación.
type RatesConfig struct {
	CurveCSV     string  `yaml:"curve_csv"` // curva cupón cero; vacío = θ constante
	A            float64 `yaml:"a"`
	Sigma        float64 `yaml:"sigma"`
	Theta        float64 `yaml:"theta"`
	R0           float64 `yaml:"r0"`
	HorizonYears float64 `yaml:"horizon_years"`
	Dt           float64 `yaml:"dt"`
	Paths        int     `yaml:"paths"`
	Seed         int64   `yaml:"seed"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// DefaultConfig devuelve la configuración de producción completa. Los valores
// de cada sección salen de los defaults del componente correspondiente.
func DefaultConfig() *Config {
	sig := strategy.DefaultConfig()
	eng := backtest.DefaultConfig()
	opts := risk.DefaultOptions()
	model := rates.DefaultModel()
	sim := rates.DefaultSimConfig()
	return &Config{
		Strategy: StrategyConfig{
			WindowSize:      sig.WindowSize,
			PriorWindow:     sig.PriorWindow,
			EntryThreshold:  sig.EntryThreshold,
			ExitTolerance:   sig.ExitTolerance,
			MaxPositions:    eng.MaxPositions,
			Size:            eng.Size,
			TransactionCost: eng.TransactionCost,
		},
		Risk: RiskConfig{
			InitialCapital: opts.InitialCapital,
			Confidence:     opts.Confidence,
			Haircut:        opts.Haircut,
			MinHistorical:  opts.MinHistorical,
		},
		Scenario: ScenarioConfig{
			Shocks: []float64{0.05, -0.05, 0.10, -0.10},
		},
		Sim: SimConfig{
			Profile: "default",
		},
		Rates: RatesConfig{
			A:            model.A,
			Sigma:        model.Sigma,
			Theta:        model.Theta,
			R0:           sim.R0,
			HorizonYears: sim.Horizon,
			Dt:           sim.Dt,
			Paths:        sim.Paths,
			Seed:         sim.Seed,
		},
		Storage: StorageConfig{DSN: "bondarb.db"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. El YAML se aplica sobre DefaultConfig, así que los perfiles
// parciales heredan los defaults; con path vacío devuelve los defaults.
// Los valores del .env sobreescriben los del YAML para las keys que
// correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Validate comprueba los campos propios y delega cada sección en el Validate
// del componente que la consume.
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if err := c.RiskOptions().Validate(); err != nil {
		return err
	}
	if err := c.RatesModel().Validate(); err != nil {
		return err
	}
	if err := c.RatesSimConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.RegimeWindows(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return domain.InvalidConfigError{Field: "log.level", Reason: "must be debug|info|warn|error"}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return domain.InvalidConfigError{Field: "log.format", Reason: "must be text|json"}
	}
	return nil
}

// YAML serializa la configuración efectiva, para dejar constancia de con
// qué parámetros se generó un run persistido.
func (c *Config) YAML() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// SignalConfig devuelve la sección de señal como configuración del modelo.
func (c *Config) SignalConfig() strategy.Config {
	return strategy.Config{
		WindowSize:     c.Strategy.WindowSize,
		PriorWindow:    c.Strategy.PriorWindow,
		EntryThreshold: c.Strategy.EntryThreshold,
		ExitTolerance:  c.Strategy.ExitTolerance,
	}
}

// EngineConfig devuelve la sección de estrategia como configuración del motor.
func (c *Config) EngineConfig() backtest.Config {
	return backtest.Config{
		Signal:          c.SignalConfig(),
		MaxPositions:    c.Strategy.MaxPositions,
		Size:            c.Strategy.Size,
		TransactionCost: c.Strategy.TransactionCost,
	}
}

// RiskOptions devuelve la sección de riesgo como opciones del análisis.
func (c *Config) RiskOptions() risk.Options {
	return risk.Options{
		InitialCapital: c.Risk.InitialCapital,
		Confidence:     c.Risk.Confidence,
		Haircut:        c.Risk.Haircut,
		MinHistorical:  c.Risk.MinHistorical,
	}
}

// RatesModel devuelve la sección de tipos como modelo Hull-White. La curva,
// si hay curve_csv, se acopla después de cargarla.
func (c *Config) RatesModel() rates.Model {
	return rates.Model{A: c.Rates.A, Sigma: c.Rates.Sigma, Theta: c.Rates.Theta}
}

// RatesSimConfig devuelve la sección de tipos como simulación Hull-White.
func (c *Config) RatesSimConfig() rates.SimConfig {
	return rates.SimConfig{
		R0:      c.Rates.R0,
		Horizon: c.Rates.HorizonYears,
		Dt:      c.Rates.Dt,
		Paths:   c.Rates.Paths,
		Seed:    c.Rates.Seed,
	}
}

// RegimeWindows convierte las ventanas de régimen configuradas a ventanas
// del orquestador.
func (c *Config) RegimeWindows() ([]scenario.RegimeWindow, error) {
	windows := make([]scenario.RegimeWindow, 0, len(c.Scenario.Regimes))
	for i, r := range c.Scenario.Regimes {
		w, err := r.Window()
		if err != nil {
			return nil, fmt.Errorf("config: regime %d (%s): %w", i, r.Label, err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// Window convierte el régimen a una ventana [From, To) del orquestador.
func (r RegimeConfig) Window() (scenario.RegimeWindow, error) {
	if r.Label == "" {
		return scenario.RegimeWindow{}, domain.InvalidConfigError{Field: "regimes.label", Reason: "must not be empty"}
	}
	from, err := time.Parse(regimeDateLayout, r.From)
	if err != nil {
		return scenario.RegimeWindow{}, domain.InvalidConfigError{Field: "regimes.from", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", r.From)}
	}
	to, err := time.Parse(regimeDateLayout, r.To)
	if err != nil {
		return scenario.RegimeWindow{}, domain.InvalidConfigError{Field: "regimes.to", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", r.To)}
	}
	if !from.Before(to) {
		return scenario.RegimeWindow{}, domain.InvalidConfigError{Field: "regimes", Reason: "from must be before to"}
	}
	return scenario.RegimeWindow{Label: r.Label, From: from.UTC(), To: to.UTC()}, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BONDARB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}
