package rates

// hullwhite.go — modelo Hull-White de un factor para el tipo corto.
//
//	dr(t) = (θ(t) − a·r(t)) dt + σ dW(t)
//
// Con curva de tipos, θ se calibra al forward implícito:
//
//	θ(t) = ∂f(0,t)/∂t + a·f(0,t) + σ²/(2a)·(1 − e^(−2at))
//
// con la derivada por diferencia central sobre la curva interpolada. Sin
// curva, θ es la constante del modelo. La simulación es Euler con un
// generador sembrado: misma semilla, mismos caminos.

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// thetaEps es el paso de la diferencia central de ∂f/∂t.
const thetaEps = 1e-4

// Model son los parámetros del proceso Hull-White.
type Model struct {
	A     float64    // velocidad de reversión a la media
	Sigma float64    // volatilidad del tipo corto
	Theta float64    // θ constante cuando no hay curva
	Curve YieldCurve // curva para calibrar θ(t); vacía = θ constante
}

// DefaultModel devuelve los parámetros de producción del modelo.
func DefaultModel() Model {
	return Model{A: 0.1, Sigma: 0.01, Theta: 0.05}
}

// Validate comprueba los parámetros del proceso.
func (m Model) Validate() error {
	if m.A <= 0 {
		return domain.InvalidParameterError{Name: "a", Value: m.A, Reason: "mean reversion speed must be > 0"}
	}
	if m.Sigma < 0 {
		return domain.InvalidParameterError{Name: "sigma", Value: m.Sigma, Reason: "volatility must be >= 0"}
	}
	return nil
}

// ThetaAt devuelve θ(t): calibrado a la curva si hay curva, constante si no.
func (m Model) ThetaAt(t float64) float64 {
	if m.Curve.Empty() {
		return m.Theta
	}
	f0 := m.Curve.Yield(t)
	tMinus := math.Max(t-thetaEps, 0)
	dfdt := (m.Curve.Yield(t+thetaEps) - m.Curve.Yield(tMinus)) / (2 * thetaEps)
	return dfdt + m.A*f0 + m.Sigma*m.Sigma/(2*m.A)*(1-math.Exp(-2*m.A*t))
}

// SimConfig son los parámetros de una simulación.
type SimConfig struct {
	R0      float64 // tipo corto inicial
	Horizon float64 // horizonte en años
	Dt      float64 // paso temporal en años
	Paths   int     // número de caminos
	Seed    int64   // semilla del generador
}

// DefaultSimConfig devuelve la simulación de producción: 5 años a paso
// diario con 10000 caminos.
func DefaultSimConfig() SimConfig {
	return SimConfig{R0: 0.04, Horizon: 5, Dt: 1.0 / 252, Paths: 10000, Seed: 42}
}

// Validate comprueba los parámetros de simulación.
func (c SimConfig) Validate() error {
	if c.Horizon <= 0 {
		return domain.InvalidParameterError{Name: "horizon", Value: c.Horizon, Reason: "must be > 0"}
	}
	if c.Dt <= 0 || c.Dt > c.Horizon {
		return domain.InvalidParameterError{Name: "dt", Value: c.Dt, Reason: "must be in (0, horizon]"}
	}
	if c.Paths < 1 {
		return domain.InvalidParameterError{Name: "paths", Value: float64(c.Paths), Reason: "must be >= 1"}
	}
	return nil
}

// Forecast es el resultado agregado de la simulación: por instante, media y
// envolvente percentil 5-95 sobre los caminos.
type Forecast struct {
	Times    []float64 // instantes en años, Times[0] = 0
	Mean     []float64
	P5       []float64
	P95      []float64
	Terminal float64 // media del tipo corto en el horizonte
}

// Steps devuelve el número de pasos simulados (len(Times) - 1).
func (f Forecast) Steps() int { return len(f.Times) - 1 }

// Simulate evoluciona cfg.Paths caminos con el esquema de Euler y agrega por
// paso. Solo guarda el corte transversal del paso actual: la envolvente se
// calcula al vuelo, sin materializar la matriz caminos×pasos.
func (m Model) Simulate(cfg SimConfig) (Forecast, error) {
	if err := m.Validate(); err != nil {
		return Forecast{}, fmt.Errorf("rates.Simulate: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Forecast{}, fmt.Errorf("rates.Simulate: %w", err)
	}

	// Round evita perder el último paso cuando horizon/dt no es exacto en
	// coma flotante (5 años a 1/252 debe dar 1260 pasos, no 1259).
	steps := int(math.Round(cfg.Horizon / cfg.Dt))
	rng := rand.New(rand.NewSource(cfg.Seed))

	rcur := make([]float64, cfg.Paths)
	for i := range rcur {
		rcur[i] = cfg.R0
	}

	fc := Forecast{
		Times: make([]float64, steps+1),
		Mean:  make([]float64, steps+1),
		P5:    make([]float64, steps+1),
		P95:   make([]float64, steps+1),
	}
	recordStep(&fc, 0, 0, rcur)

	sqrtDt := math.Sqrt(cfg.Dt)
	for i := 1; i <= steps; i++ {
		t := float64(i-1) * cfg.Dt
		theta := m.ThetaAt(t)
		for p := range rcur {
			dW := rng.NormFloat64() * sqrtDt
			rcur[p] += (theta-m.A*rcur[p])*cfg.Dt + m.Sigma*dW
		}
		recordStep(&fc, i, float64(i)*cfg.Dt, rcur)
	}

	fc.Terminal = fc.Mean[steps]
	return fc, nil
}

// recordStep agrega el corte transversal de un paso en el índice i.
func recordStep(fc *Forecast, i int, t float64, rates []float64) {
	fc.Times[i] = t

	var sum float64
	for _, r := range rates {
		sum += r
	}
	fc.Mean[i] = sum / float64(len(rates))

	sorted := make([]float64, len(rates))
	copy(sorted, rates)
	sort.Float64s(sorted)
	fc.P5[i] = percentileSorted(sorted, 0.05)
	fc.P95[i] = percentileSorted(sorted, 0.95)
}

// percentileSorted interpola linealmente el percentil q ∈ [0,1] sobre una
// muestra ya ordenada.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
