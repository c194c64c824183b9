package strategy

import (
	"time"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// Signal es la decisión del modelo para una observación.
type Signal int

const (
	SignalHold       Signal = iota // sin acción
	SignalEnterLong                // spread muy por debajo del posterior
	SignalEnterShort               // spread muy por encima del posterior
	SignalExit                     // spread de vuelta en la zona del posterior
)

func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "hold"
	case SignalEnterLong:
		return "enter_long"
	case SignalEnterShort:
		return "enter_short"
	case SignalExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Config son los parámetros del modelo de señal.
type Config struct {
	WindowSize     int     // ventana de observación del posterior
	PriorWindow    int     // observaciones que entrenan el prior adaptativo
	EntryThreshold float64 // entrada en |z| >= threshold (desviaciones posteriores)
	ExitTolerance  float64 // salida en |z| <= tolerancia
}

// DefaultConfig devuelve los parámetros de producción de la estrategia.
func DefaultConfig() Config {
	return Config{
		WindowSize:     40,
		PriorWindow:    120,
		EntryThreshold: 2.0,
		ExitTolerance:  0.5,
	}
}

// Validate comprueba los parámetros.
func (c Config) Validate() error {
	if c.WindowSize < 2 {
		return domain.InvalidConfigError{Field: "window_size", Reason: "must be >= 2"}
	}
	if c.PriorWindow < 1 {
		return domain.InvalidConfigError{Field: "prior_window", Reason: "must be >= 1"}
	}
	if c.EntryThreshold <= 0 {
		return domain.InvalidConfigError{Field: "entry_threshold", Reason: "must be > 0"}
	}
	if c.ExitTolerance < 0 {
		return domain.InvalidConfigError{Field: "exit_tolerance", Reason: "must be >= 0"}
	}
	if c.ExitTolerance >= c.EntryThreshold {
		return domain.InvalidConfigError{Field: "exit_tolerance", Reason: "must be < entry_threshold"}
	}
	return nil
}

// SignalPoint es la señal emitida para una observación, con el posterior que
// la justifica para que el motor y el replay puedan razonar sobre ella.
type SignalPoint struct {
	Time          time.Time
	Signal        Signal
	Z             float64
	PosteriorMean float64
	PosteriorStd  float64
}

// GenerateSignals recorre la serie en orden temporal y emite una señal por
// observación. Estrictamente causal: la señal en t depende solo de
// observaciones con timestamp <= t; perturbar el futuro no cambia el pasado.
func GenerateSignals(series domain.SpreadSeries, cfg Config) ([]SignalPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model := NewModel(cfg.WindowSize, cfg.PriorWindow)
	if series.Len() < model.WarmUp() {
		return nil, domain.InsufficientDataError{
			Op:   "strategy.GenerateSignals",
			Need: model.WarmUp(),
			Got:  series.Len(),
		}
	}

	out := make([]SignalPoint, 0, series.Len())
	var st State
	for i := 0; i < series.Len(); i++ {
		obs := series.At(i)

		var post Posterior
		st, post = model.Step(st, obs.Spread)

		point := SignalPoint{Time: obs.Time, Signal: SignalHold}
		if post.Ready {
			point.Z = post.Z
			point.PosteriorMean = post.Mean
			point.PosteriorStd = post.Std
			point.Signal = classify(post.Z, cfg)
		}
		out = append(out, point)
	}
	return out, nil
}

// classify mapea el z-score a señal. Las entradas tienen prioridad sobre la
// salida; con exit_tolerance < entry_threshold las zonas no se solapan.
func classify(z float64, cfg Config) Signal {
	switch {
	case z <= -cfg.EntryThreshold:
		return SignalEnterLong
	case z >= cfg.EntryThreshold:
		return SignalEnterShort
	case z >= -cfg.ExitTolerance && z <= cfg.ExitTolerance:
		return SignalExit
	default:
		return SignalHold
	}
}
