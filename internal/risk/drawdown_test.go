package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// hundredOptions usa capital 100 para curvas de equity fáciles de seguir.
func hundredOptions() Options {
	return Options{InitialCapital: 100, Confidence: 0.95, Haircut: 0.5, MinHistorical: 20}
}

func TestDrawdowns_NonDecreasingCurveIsZero(t *testing.T) {
	a := analyzerOf(t, []float64{1, 2, 3}, hundredOptions())

	dd := a.Drawdowns()
	assert.Equal(t, DrawdownStats{}, dd)
}

func TestDrawdowns_HandComputedEpisode(t *testing.T) {
	// Equity: 100, 110, 88, 100, 130, 115.
	// Episodio completado: {88, 100} bajo el pico 110, duración 2.
	// MaxDD = (110-88)/110 = 0.2. El tramo final {115} queda abierto.
	a := analyzerOf(t, []float64{10, -22, 12, 30, -15}, hundredOptions())

	dd := a.Drawdowns()
	assert.InDelta(t, 0.2, dd.MaxDrawdown, 1e-12)
	assert.Equal(t, 1, dd.Episodes)
	assert.InDelta(t, 2.0, dd.AvgDuration, 1e-12)
	assert.InDelta(t, 3.0/5.0, dd.TimeInDrawdown, 1e-12)
}

func TestDrawdowns_OpenEpisodeExcludedFromDuration(t *testing.T) {
	// Equity: 100, 110, 105, 100. Nunca recupera el pico 110: sin episodios
	// completados, pero el drawdown máximo y el tiempo bajo el pico cuentan.
	a := analyzerOf(t, []float64{10, -5, -5}, hundredOptions())

	dd := a.Drawdowns()
	assert.Equal(t, 0, dd.Episodes)
	assert.Equal(t, 0.0, dd.AvgDuration)
	assert.InDelta(t, 10.0/110.0, dd.MaxDrawdown, 1e-12)
	assert.InDelta(t, 2.0/3.0, dd.TimeInDrawdown, 1e-12)
}

func TestDrawdowns_MultipleEpisodes(t *testing.T) {
	// Equity: 100, 90, 110, 105, 115: dos episodios de duración 1.
	a := analyzerOf(t, []float64{-10, 20, -5, 10}, hundredOptions())

	dd := a.Drawdowns()
	assert.Equal(t, 2, dd.Episodes)
	assert.InDelta(t, 1.0, dd.AvgDuration, 1e-12)
	assert.InDelta(t, 0.1, dd.MaxDrawdown, 1e-12)
	assert.InDelta(t, 0.5, dd.TimeInDrawdown, 1e-12)
}

func TestDrawdowns_RecoveryToExactPeakCompletes(t *testing.T) {
	// Equity: 100, 90, 100: volver exactamente al pico cierra el episodio.
	a := analyzerOf(t, []float64{-10, 10}, hundredOptions())

	dd := a.Drawdowns()
	assert.Equal(t, 1, dd.Episodes)
	assert.InDelta(t, 1.0, dd.AvgDuration, 1e-12)
}

func TestDrawdowns_NoTrades(t *testing.T) {
	a := analyzerOf(t, nil, hundredOptions())
	assert.Equal(t, DrawdownStats{}, a.Drawdowns())
}

func TestDrawdowns_DeepDeclineStaysRelative(t *testing.T) {
	// Equity: 100, 40, 20: caída relativa 0.8 sobre el pico inicial.
	a := analyzerOf(t, []float64{-60, -20}, hundredOptions())

	dd := a.Drawdowns()
	assert.InDelta(t, 0.8, dd.MaxDrawdown, 1e-12)
	assert.InDelta(t, 1.0, dd.TimeInDrawdown, 1e-12)
	assert.Equal(t, 0, dd.Episodes)
}
