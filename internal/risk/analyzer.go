package risk

// analyzer.go — análisis de riesgo de una secuencia de trades.
//
// El analizador precalcula una sola vez los retornos por trade
// (PnL / capital inicial) y la curva de equity ordenada por cierre, y sobre
// ellos expone VaR con tres estimadores, CVaR, drawdowns y el informe
// agregado. Todo es puro y determinista: mismos trades, mismos números.

import (
	"fmt"
	"math"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// tradingDays es el número de días de trading en un año.
const tradingDays = 252

// Options son los parámetros del análisis.
type Options struct {
	InitialCapital float64 // capital base de los retornos
	Confidence     float64 // nivel de confianza del informe
	Haircut        float64 // haircut de liquidez del informe, en [0,1]
	MinHistorical  int     // mínimo de trades para el VaR histórico
}

// DefaultOptions devuelve los parámetros de producción del análisis.
func DefaultOptions() Options {
	return Options{
		InitialCapital: 1e6,
		Confidence:     0.95,
		Haircut:        0.5,
		MinHistorical:  20,
	}
}

// Validate comprueba los parámetros de análisis.
func (o Options) Validate() error {
	if o.InitialCapital <= 0 {
		return domain.InvalidParameterError{Name: "initial_capital", Value: o.InitialCapital, Reason: "must be > 0"}
	}
	if o.Confidence <= 0 || o.Confidence >= 1 {
		return domain.InvalidParameterError{Name: "confidence", Value: o.Confidence, Reason: "must be in (0,1)"}
	}
	if o.Haircut < 0 || o.Haircut > 1 {
		return domain.InvalidParameterError{Name: "haircut", Value: o.Haircut, Reason: "must be in [0,1]"}
	}
	if o.MinHistorical < 1 {
		return domain.InvalidParameterError{Name: "min_historical", Value: float64(o.MinHistorical), Reason: "must be >= 1"}
	}
	return nil
}

// Analyzer calcula métricas de riesgo sobre una TradeSequence.
type Analyzer struct {
	trades  domain.TradeSequence
	opts    Options
	returns []float64 // PnL / capital, en orden de cierre
	equity  []float64 // capital + PnL acumulado, con punto de origen
}

// NewAnalyzer construye el analizador y precalcula retornos y equity.
// No exige trades: las operaciones que requieran muestras fallarán con
// InsufficientDataError al pedirlas.
func NewAnalyzer(trades domain.TradeSequence, opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("risk.NewAnalyzer: %w", err)
	}

	returns := make([]float64, len(trades))
	equity := make([]float64, len(trades)+1)
	equity[0] = opts.InitialCapital
	cum := opts.InitialCapital
	for i, t := range trades {
		returns[i] = t.PnL / opts.InitialCapital
		cum += t.PnL
		equity[i+1] = cum
	}

	return &Analyzer{trades: trades, opts: opts, returns: returns, equity: equity}, nil
}

// TradeCount devuelve el número de trades analizados.
func (a *Analyzer) TradeCount() int { return len(a.trades) }

// Returns devuelve una copia de los retornos por trade.
func (a *Analyzer) Returns() []float64 {
	out := make([]float64, len(a.returns))
	copy(out, a.returns)
	return out
}

// Report agrega todas las métricas en un RiskReport. Agregación pura: cada
// valor sale de los métodos de este paquete, aquí no hay lógica de riesgo
// nueva. Falla si alguna métrica no puede calcularse con los trades dados.
func (a *Analyzer) Report() (domain.RiskReport, error) {
	conf := a.opts.Confidence

	hist, err := a.VaR(Historical, conf)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("risk.Report: historical var: %w", err)
	}
	gauss, err := a.VaR(Gaussian, conf)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("risk.Report: gaussian var: %w", err)
	}
	cf, err := a.VaR(CornishFisher, conf)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("risk.Report: cornish-fisher var: %w", err)
	}
	cvar, err := a.CVaR(conf)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("risk.Report: cvar: %w", err)
	}

	dd := a.Drawdowns()
	lvar, err := LiquidityAdjust(hist, dd.MaxDrawdown, a.opts.Haircut)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("risk.Report: liquidity adjust: %w", err)
	}

	return domain.RiskReport{
		VaRHistorical:    hist,
		VaRGaussian:      gauss,
		VaRCornishFisher: cf,
		CVaR:             cvar,
		MaxDrawdown:      dd.MaxDrawdown,
		DrawdownDuration: dd.AvgDuration,
		TimeInDrawdown:   dd.TimeInDrawdown,
		LiquidityVaR:     lvar,
		VaRPctCapital:    hist * 100, // los retornos ya son fracción del capital
		ProfitFactor:     a.ProfitFactor(),
		WinRate:          a.WinRate(),
		Sharpe:           a.Sharpe(),
		TotalPnL:         a.trades.TotalPnL(),
		TradeCount:       len(a.trades),
		Confidence:       conf,
		InitialCapital:   a.opts.InitialCapital,
	}, nil
}

// ProfitFactor devuelve ganancia bruta / pérdida bruta. +Inf si no hay
// trades perdedores con ganancia positiva; 0 sin trades.
func (a *Analyzer) ProfitFactor() float64 {
	var grossWin, grossLoss float64
	for _, t := range a.trades {
		if t.PnL > 0 {
			grossWin += t.PnL
		} else {
			grossLoss -= t.PnL
		}
	}
	if grossLoss == 0 {
		if grossWin == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return grossWin / grossLoss
}

// WinRate devuelve la fracción de trades con PnL > 0. 0 sin trades.
func (a *Analyzer) WinRate() float64 {
	if len(a.trades) == 0 {
		return 0
	}
	return float64(len(a.trades.Wins())) / float64(len(a.trades))
}

// Sharpe devuelve el ratio de Sharpe de los retornos por trade anualizado
// con √252 (cadencia diaria asumida). 0 si la desviación es nula.
func (a *Analyzer) Sharpe() float64 {
	if len(a.returns) < 2 {
		return 0
	}
	mu := mean(a.returns)
	sd := sampleStd(a.returns)
	if sd == 0 {
		return 0
	}
	return mu / sd * math.Sqrt(tradingDays)
}
