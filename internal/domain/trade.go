package domain

import "time"

// Direction es el sentido de un trade sobre el spread.
type Direction int

const (
	Long  Direction = iota // gana si el spread sube hacia la media
	Short                  // gana si el spread baja hacia la media
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// ParseDirection es la inversa de Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return 0, InvalidParameterError{Name: "direction", Reason: "unknown direction " + s}
	}
}

// ExitReason distingue cierres por señal de cierres forzados a fin de serie,
// para que el llamador pueda excluir los forzados de las estadísticas.
type ExitReason int

const (
	ExitSignal    ExitReason = iota // la señal pidió cerrar
	ExitEndOfData                   // cierre forzado en la última observación
)

func (r ExitReason) String() string {
	switch r {
	case ExitSignal:
		return "signal"
	case ExitEndOfData:
		return "end_of_data"
	default:
		return "unknown"
	}
}

// ParseExitReason es la inversa de ExitReason.String.
func ParseExitReason(s string) (ExitReason, error) {
	switch s {
	case "signal":
		return ExitSignal, nil
	case "end_of_data":
		return ExitEndOfData, nil
	default:
		return 0, InvalidParameterError{Name: "exit_reason", Reason: "unknown exit reason " + s}
	}
}

// Trade es un trade cerrado producido por el backtest. El motor cierra toda
// posición abierta al final de la serie, así que una Trade siempre tiene
// salida.
//
// Invariante de signo del PnL:
//
//	long:  (exit - entry) × size - coste
//	short: (entry - exit) × size - coste
type Trade struct {
	EntryTime   time.Time
	EntrySpread float64
	Direction   Direction
	Size        float64
	ExitTime    time.Time
	ExitSpread  float64
	PnL         float64
	ExitReason  ExitReason
}

// Duration devuelve el tiempo entre entrada y salida.
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// TradeSequence es la secuencia de trades cerrados, ordenada por cierre.
type TradeSequence []Trade

// PnLs devuelve los PnL realizados en orden de cierre.
func (ts TradeSequence) PnLs() []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.PnL
	}
	return out
}

// TotalPnL devuelve la suma de PnL realizados.
func (ts TradeSequence) TotalPnL() float64 {
	var total float64
	for _, t := range ts {
		total += t.PnL
	}
	return total
}

// ExcludingForced devuelve solo los trades cerrados por señal.
func (ts TradeSequence) ExcludingForced() TradeSequence {
	out := make(TradeSequence, 0, len(ts))
	for _, t := range ts {
		if t.ExitReason == ExitSignal {
			out = append(out, t)
		}
	}
	return out
}

// Wins devuelve los trades con PnL > 0.
func (ts TradeSequence) Wins() TradeSequence {
	out := make(TradeSequence, 0, len(ts))
	for _, t := range ts {
		if t.PnL > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Losses devuelve los trades con PnL <= 0.
func (ts TradeSequence) Losses() TradeSequence {
	out := make(TradeSequence, 0, len(ts))
	for _, t := range ts {
		if t.PnL <= 0 {
			out = append(out, t)
		}
	}
	return out
}
