package backtest

// engine.go — motor de backtest del spread de bonos.
//
// Recorre la serie una sola vez en orden temporal:
// 1. Genera la señal bayesiana de cada observación (estrictamente causal)
// 2. Cierra posiciones cuando el spread revierte hacia el posterior
// 3. Abre posiciones en enter_long/enter_short respetando MaxPositions
// 4. Fuerza el cierre de lo que quede abierto en la última observación
//
// Determinista: sin aleatoriedad ni reloj de pared; la misma serie con la
// misma config produce bit a bit la misma TradeSequence.

import (
	"fmt"
	"time"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/strategy"
)

// Config son los parámetros del motor.
type Config struct {
	Signal          strategy.Config
	MaxPositions    int     // posiciones simultáneas; 1 = sin piramidar
	Size            float64 // tamaño por trade
	TransactionCost float64 // coste de ida y vuelta por unidad de tamaño
}

// DefaultConfig devuelve los parámetros de producción del motor.
func DefaultConfig() Config {
	return Config{
		Signal:          strategy.DefaultConfig(),
		MaxPositions:    1,
		Size:            1.0,
		TransactionCost: 0.004,
	}
}

// Validate comprueba los parámetros del motor y de la señal.
func (c Config) Validate() error {
	if err := c.Signal.Validate(); err != nil {
		return err
	}
	if c.MaxPositions < 1 {
		return domain.InvalidConfigError{Field: "max_positions", Reason: "must be >= 1"}
	}
	if c.Size <= 0 {
		return domain.InvalidConfigError{Field: "size", Reason: "must be > 0"}
	}
	if c.TransactionCost < 0 {
		return domain.InvalidConfigError{Field: "transaction_cost", Reason: "must be >= 0"}
	}
	return nil
}

// openPosition es una posición viva durante el recorrido.
type openPosition struct {
	entryTime   time.Time
	entrySpread float64
	dir         domain.Direction
}

// Run ejecuta el backtest y devuelve los trades cerrados en orden de cierre.
// Pura: no muta la serie de entrada.
func Run(series domain.SpreadSeries, cfg Config) (domain.TradeSequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	points, err := strategy.GenerateSignals(series, cfg.Signal)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: generate signals: %w", err)
	}

	var (
		trades domain.TradeSequence
		open   []openPosition
	)
	last := series.Len() - 1
	for i, p := range points {
		obs := series.At(i)

		// Cierres primero: el hueco liberado puede reutilizarse en la
		// misma observación (salir de un long y entrar corto en el tick
		// que cruza el umbral contrario).
		if len(open) > 0 {
			kept := open[:0]
			for _, pos := range open {
				if reverted(pos.dir, p.Z, cfg.Signal.ExitTolerance) {
					trades = append(trades, closeTrade(pos, obs, domain.ExitSignal, cfg))
				} else {
					kept = append(kept, pos)
				}
			}
			open = kept
		}

		// Una entrada en la última observación no puede realizarse: se omite.
		if i == last || len(open) >= cfg.MaxPositions {
			continue
		}
		switch p.Signal {
		case strategy.SignalEnterLong:
			open = append(open, openPosition{entryTime: obs.Time, entrySpread: obs.Spread, dir: domain.Long})
		case strategy.SignalEnterShort:
			open = append(open, openPosition{entryTime: obs.Time, entrySpread: obs.Spread, dir: domain.Short})
		}
	}

	// Cierre forzado de lo que siga abierto, marcado para poder excluirlo.
	if len(open) > 0 {
		lastObs := series.At(last)
		for _, pos := range open {
			trades = append(trades, closeTrade(pos, lastObs, domain.ExitEndOfData, cfg))
		}
	}
	return trades, nil
}

// reverted decide el cierre por reversión: un long sale cuando el spread ha
// vuelto a la zona del posterior o la cruza (z >= -tol); un short, simétrico.
func reverted(dir domain.Direction, z, tol float64) bool {
	if dir == domain.Long {
		return z >= -tol
	}
	return z <= tol
}

// closeTrade construye el trade cerrado aplicando el invariante del PnL:
// long gana si el spread sube, short si baja, menos el coste por round trip.
func closeTrade(pos openPosition, exit domain.SpreadObservation, reason domain.ExitReason, cfg Config) domain.Trade {
	gross := (exit.Spread - pos.entrySpread) * cfg.Size
	if pos.dir == domain.Short {
		gross = -gross
	}
	return domain.Trade{
		EntryTime:   pos.entryTime,
		EntrySpread: pos.entrySpread,
		Direction:   pos.dir,
		Size:        cfg.Size,
		ExitTime:    exit.Time,
		ExitSpread:  exit.Spread,
		PnL:         gross - cfg.TransactionCost*cfg.Size,
		ExitReason:  reason,
	}
}
