package strategy

import "math"

// Suelo para varianzas casi nulas: mantiene el posterior finito en series
// planas (z = 0, sin señal) en vez de degenerar en NaN.
const varianceFloor = 1e-8

// Model realiza la actualización bayesiana normal-normal del nivel "justo"
// del spread. El prior se re-estima de forma adaptativa con la ventana que
// precede a la ventana de observación, así el modelo sigue regímenes lentos
// sin perder sensibilidad a desviaciones cortas.
type Model struct {
	windowSize  int
	priorWindow int
}

// NewModel crea el modelo. windowSize es la ventana de observación (n del
// posterior) y priorWindow cuántas observaciones anteriores entrenan el prior.
func NewModel(windowSize, priorWindow int) Model {
	return Model{windowSize: windowSize, priorWindow: priorWindow}
}

// WarmUp devuelve el número mínimo de observaciones antes de emitir posterior.
func (m Model) WarmUp() int { return m.windowSize + 2 }

// State es el estado inmutable del modelo: el histórico acotado que las dos
// ventanas necesitan. Step devuelve siempre un estado nuevo; el receptor no
// se muta, lo que hace el modelo trivialmente replayable.
type State struct {
	history []float64
}

// Posterior es la creencia del modelo tras incorporar una observación.
type Posterior struct {
	Ready bool    // false durante el warm-up
	Mean  float64 // media posterior del spread justo
	Std   float64 // desviación típica posterior
	Z     float64 // z-score de la observación frente al posterior
}

// Step incorpora la observación x y devuelve el estado nuevo y el posterior.
//
// Conjugación normal-normal con prior adaptativo:
//
//	mu0   = media(prior)            tau²  = var(prior)      (poblacional)
//	X̄     = media(ventana)          s²    = var(ventana)    (muestral)
//	sigma² = 1 / (n/s² + 1/tau²)
//	mu     = sigma² × (n×X̄/s² + mu0/tau²)
//	z      = (x - mu) / sigma
func (m Model) Step(st State, x float64) (State, Posterior) {
	maxLen := m.windowSize + m.priorWindow
	next := make([]float64, 0, maxLen)
	if keep := len(st.history); keep > 0 {
		if keep >= maxLen {
			next = append(next, st.history[keep-maxLen+1:]...)
		} else {
			next = append(next, st.history...)
		}
	}
	next = append(next, x)
	out := State{history: next}

	if len(next) < m.WarmUp() {
		return out, Posterior{}
	}

	prior := m.priorSlice(next)
	mu0 := mean(prior)
	tau2 := math.Max(popVariance(prior), varianceFloor)

	window := next[len(next)-m.windowSize:]
	n := float64(len(window))
	xBar := mean(window)
	s2 := math.Max(sampleVariance(window), varianceFloor)

	sigma2 := 1.0 / (n/s2 + 1.0/tau2)
	mu := sigma2 * (n*xBar/s2 + mu0/tau2)
	sigma := math.Sqrt(sigma2)

	return out, Posterior{
		Ready: true,
		Mean:  mu,
		Std:   sigma,
		Z:     (x - mu) / sigma,
	}
}

// priorSlice devuelve las observaciones que entrenan el prior: hasta
// priorWindow muestras inmediatamente anteriores a la ventana de observación.
func (m Model) priorSlice(history []float64) []float64 {
	end := len(history) - m.windowSize
	start := end - m.priorWindow
	if start < 0 {
		start = 0
	}
	return history[start:end]
}

// --- estadística básica ---

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popVariance es la varianza poblacional (divide por n).
func popVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return sum / float64(len(xs))
}

// sampleVariance es la varianza muestral (divide por n-1).
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}
