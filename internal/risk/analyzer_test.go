package risk

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	cases := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"capital cero", func(o *Options) { o.InitialCapital = 0 }, "initial_capital"},
		{"capital negativo", func(o *Options) { o.InitialCapital = -1 }, "initial_capital"},
		{"confianza cero", func(o *Options) { o.Confidence = 0 }, "confidence"},
		{"confianza uno", func(o *Options) { o.Confidence = 1 }, "confidence"},
		{"haircut negativo", func(o *Options) { o.Haircut = -0.1 }, "haircut"},
		{"haircut mayor que uno", func(o *Options) { o.Haircut = 1.1 }, "haircut"},
		{"min historico cero", func(o *Options) { o.MinHistorical = 0 }, "min_historical"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			err := opts.Validate()
			var perr domain.InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.field, perr.Name)
		})
	}
}

func TestNewAnalyzer_RejectsInvalidOptions(t *testing.T) {
	_, err := NewAnalyzer(nil, Options{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "risk.NewAnalyzer:"))
	var perr domain.InvalidParameterError
	assert.ErrorAs(t, err, &perr)
}

func TestNewAnalyzer_ReturnsAndEquityCurve(t *testing.T) {
	opts := unitOptions()
	opts.InitialCapital = 1000
	a := analyzerOf(t, []float64{10, -20}, opts)

	assert.Equal(t, 2, a.TradeCount())
	assert.InDeltaSlice(t, []float64{0.01, -0.02}, a.Returns(), 1e-12)

	// Returns devuelve una copia: mutarla no toca el estado interno.
	r := a.Returns()
	r[0] = 99
	assert.InDelta(t, 0.01, a.Returns()[0], 1e-12)
}

func TestReport_AllMetricsFinite(t *testing.T) {
	a := analyzerOf(t, twentyMixed(), unitOptions())

	rep, err := a.Report()
	require.NoError(t, err)

	for _, m := range rep.Metrics() {
		assert.Falsef(t, math.IsNaN(m.Value), "métrica %s es NaN", m.Name)
		assert.Falsef(t, math.IsInf(m.Value, 0), "métrica %s es Inf", m.Name)
	}
	assert.Equal(t, 20, rep.TradeCount)
	assert.Equal(t, 0.95, rep.Confidence)
	assert.Equal(t, 1.0, rep.InitialCapital)
	assert.InDelta(t, 0.03, rep.TotalPnL, 1e-12)
	assert.InDelta(t, rep.VaRHistorical*100, rep.VaRPctCapital, 1e-12)
	assert.InDelta(t, 0.18/0.15, rep.ProfitFactor, 1e-12)
	assert.InDelta(t, 0.9, rep.WinRate, 1e-12)
}

func TestReport_LiquidityVaRWithinBounds(t *testing.T) {
	a := analyzerOf(t, twentyMixed(), unitOptions())

	rep, err := a.Report()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rep.LiquidityVaR, rep.VaRHistorical)
	assert.LessOrEqual(t, rep.LiquidityVaR, rep.VaRHistorical+rep.MaxDrawdown)
}

func TestReport_FailsBelowHistoricalMinimum(t *testing.T) {
	a := analyzerOf(t, []float64{0.01, -0.01, 0.02}, unitOptions())

	_, err := a.Report()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "historical var")
	var derr domain.InsufficientDataError
	assert.ErrorAs(t, err, &derr)
}

func TestProfitFactor(t *testing.T) {
	assert.InDelta(t, 2.0, analyzerOf(t, []float64{2, -1}, unitOptions()).ProfitFactor(), 1e-12)
	assert.InDelta(t, 3.0, analyzerOf(t, []float64{3, -1, 0}, unitOptions()).ProfitFactor(), 1e-12)
	assert.True(t, math.IsInf(analyzerOf(t, []float64{1, 2}, unitOptions()).ProfitFactor(), 1))
	assert.Equal(t, 0.0, analyzerOf(t, nil, unitOptions()).ProfitFactor())
}

func TestWinRate(t *testing.T) {
	// PnL cero cuenta como no ganador.
	assert.InDelta(t, 0.5, analyzerOf(t, []float64{1, -1, 1, 0}, unitOptions()).WinRate(), 1e-12)
	assert.Equal(t, 0.0, analyzerOf(t, nil, unitOptions()).WinRate())
}

func TestSharpe(t *testing.T) {
	// Retornos {0.01, 0.03}: mu=0.02, sd muestral=0.0141421.
	// Sharpe = 0.02/0.0141421 × √252 = 22.4499.
	a := analyzerOf(t, []float64{0.01, 0.03}, unitOptions())
	assert.InDelta(t, 22.4499, a.Sharpe(), 1e-3)

	// Desviación nula y muestras insuficientes devuelven 0.
	assert.Equal(t, 0.0, analyzerOf(t, []float64{0.02, 0.02}, unitOptions()).Sharpe())
	assert.Equal(t, 0.0, analyzerOf(t, []float64{0.02}, unitOptions()).Sharpe())
}

func TestLiquidityAdjust(t *testing.T) {
	v, err := LiquidityAdjust(0.05, 0.2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, v, 1e-12)

	v, err = LiquidityAdjust(0.05, 0.2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-12)

	// Monótono en el haircut.
	prev := -1.0
	for _, h := range []float64{0, 0.25, 0.5, 0.75, 1} {
		v, err := LiquidityAdjust(0.05, 0.2, h)
		require.NoError(t, err)
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestLiquidityAdjust_InvalidParameters(t *testing.T) {
	var perr domain.InvalidParameterError

	_, err := LiquidityAdjust(0.05, 0.2, -0.1)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "haircut", perr.Name)

	_, err = LiquidityAdjust(0.05, 0.2, 1.5)
	assert.ErrorAs(t, err, &perr)

	_, err = LiquidityAdjust(0.05, -0.2, 0.5)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "max_drawdown", perr.Name)
}

func TestLiquidityAdjustedVaR_ComposesHistoricalBase(t *testing.T) {
	a := analyzerOf(t, twentyMixed(), unitOptions())

	base, err := a.VaR(Historical, 0.95)
	require.NoError(t, err)
	mdd := a.Drawdowns().MaxDrawdown

	v, err := a.LiquidityAdjustedVaR(0.5)
	require.NoError(t, err)
	assert.InDelta(t, base+0.5*mdd, v, 1e-12)

	v0, err := a.LiquidityAdjustedVaR(0)
	require.NoError(t, err)
	assert.InDelta(t, base, v0, 1e-12)
}
