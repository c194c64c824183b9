package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/backtest"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/risk"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/strategy"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func seriesOf(t *testing.T, values []float64) domain.SpreadSeries {
	t.Helper()
	s, err := domain.SeriesFromValues(t0, time.Hour, values)
	require.NoError(t, err)
	return s
}

// alternating genera n observaciones oscilando lo, hi, lo, hi...
func alternating(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = lo
		} else {
			out[i] = hi
		}
	}
	return out
}

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	engineCfg := backtest.Config{
		Signal: strategy.Config{
			WindowSize:     5,
			PriorWindow:    120,
			EntryThreshold: 1.0,
			ExitTolerance:  0.5,
		},
		MaxPositions:    1,
		Size:            1.0,
		TransactionCost: 0.004,
	}
	riskOpts := risk.Options{
		InitialCapital: 1000,
		Confidence:     0.95,
		Haircut:        0.5,
		MinHistorical:  20,
	}
	o, err := New(engineCfg, riskOpts, 4)
	require.NoError(t, err)
	return o
}

func TestNew_ValidatesConfigs(t *testing.T) {
	_, err := New(backtest.Config{}, risk.DefaultOptions(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine config")

	_, err = New(backtest.DefaultConfig(), risk.Options{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk options")

	// workers <= 0 cae al número de CPUs, no es un error.
	_, err = New(backtest.DefaultConfig(), risk.DefaultOptions(), 0)
	assert.NoError(t, err)
}

func TestRunPipeline_OscillatingSeries(t *testing.T) {
	// Serie oscilando 1.0↔1.2: el pipeline completo produce trades en ambas
	// direcciones y un informe con los tres VaR finitos y no NaN.
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	trades, report, err := o.RunPipeline(series)
	require.NoError(t, err)
	require.NotEmpty(t, trades)

	var longs, shorts int
	for _, tr := range trades {
		if tr.Direction == domain.Long {
			longs++
		} else {
			shorts++
		}
	}
	assert.Greater(t, longs, 0)
	assert.Greater(t, shorts, 0)

	for _, v := range []float64{report.VaRHistorical, report.VaRGaussian, report.VaRCornishFisher} {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	assert.Equal(t, len(trades), report.TradeCount)
}

func TestRunStressScenarios_LabelsFollowSubmissionOrder(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	cmp := o.RunStressScenarios(context.Background(), series, []float64{-0.05, 0, 0.05, 0.10})

	assert.Equal(t, []string{"-5%", "+0%", "+5%", "+10%"}, cmp.Labels())
	assert.Empty(t, cmp.Failed())
}

func TestRunStressScenarios_Deterministic(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))
	shocks := []float64{-0.10, -0.05, 0.05, 0.10}

	first := o.RunStressScenarios(context.Background(), series, shocks)
	second := o.RunStressScenarios(context.Background(), series, shocks)

	assert.Equal(t, first.Results(), second.Results())
}

func TestRunStressScenarios_WiderShockNeverImprovesVaR(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	cmp := o.RunStressScenarios(context.Background(), series, []float64{0.05, 0.10})

	at5, ok := cmp.Get("+5%")
	require.True(t, ok)
	require.NoError(t, at5.Err)
	at10, ok := cmp.Get("+10%")
	require.True(t, ok)
	require.NoError(t, at10.Err)

	assert.GreaterOrEqual(t, at10.Report.VaRHistorical, at5.Report.VaRHistorical)
}

func TestRunStressScenarios_RecordsFailuresAndContinues(t *testing.T) {
	// Un shock de -100% aplana la serie a cero: sin trades, el informe falla
	// por muestras insuficientes. El resto de escenarios no se ve afectado.
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	cmp := o.RunStressScenarios(context.Background(), series, []float64{0.05, -1.0})

	assert.Equal(t, 2, cmp.Len())
	assert.Len(t, cmp.OK(), 1)

	failed := cmp.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "-100%", failed[0].Label)
	var derr domain.InsufficientDataError
	assert.ErrorAs(t, failed[0].Err, &derr)
}

func TestRunStressScenarios_NoShocks(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	cmp := o.RunStressScenarios(context.Background(), series, nil)
	assert.Equal(t, 0, cmp.Len())
}

func TestCompareRegimes(t *testing.T) {
	// Primera mitad tranquila (1.0↔1.2), segunda mitad agitada (1.0↔1.4).
	values := append(alternating(50, 1.0, 1.2), alternating(50, 1.0, 1.4)...)
	o := testOrchestrator(t)
	series := seriesOf(t, values)

	cmp := o.CompareRegimes(context.Background(), series, []RegimeWindow{
		{Label: "calm", From: t0, To: t0.Add(50 * time.Hour)},
		{Label: "storm", From: t0.Add(50 * time.Hour), To: t0.Add(100 * time.Hour)},
		{Label: "full", From: t0, To: t0.Add(100 * time.Hour)}, // solape permitido
	})

	assert.Equal(t, []string{"calm", "storm", "full"}, cmp.Labels())
	require.Empty(t, cmp.Failed())

	calm, _ := cmp.Get("calm")
	storm, _ := cmp.Get("storm")
	assert.Greater(t, storm.Report.TotalPnL, calm.Report.TotalPnL)
}

func TestCompareRegimes_EmptyWindow(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	cmp := o.CompareRegimes(context.Background(), series, []RegimeWindow{
		{Label: "ok", From: t0, To: t0.Add(100 * time.Hour)},
		{Label: "hueco", From: t0.Add(500 * time.Hour), To: t0.Add(600 * time.Hour)},
	})

	require.Len(t, cmp.Failed(), 1)
	res, ok := cmp.Get("hueco")
	require.True(t, ok)
	var werr domain.EmptyWindowError
	require.ErrorAs(t, res.Err, &werr)
	assert.Equal(t, "hueco", werr.Label)

	okRes, _ := cmp.Get("ok")
	assert.NoError(t, okRes.Err)
}

func TestScenarios_CancelledContextMarksAll(t *testing.T) {
	o := testOrchestrator(t)
	series := seriesOf(t, alternating(100, 1.0, 1.2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmp := o.RunStressScenarios(ctx, series, []float64{0.05, 0.10})
	require.Equal(t, 2, cmp.Len())
	for _, res := range cmp.Results() {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestShockLabel(t *testing.T) {
	cases := []struct {
		shock float64
		want  string
	}{
		{0.05, "+5%"},
		{-0.05, "-5%"},
		{0, "+0%"},
		{0.10, "+10%"},
		{-0.25, "-25%"},
		{0.125, "+12.5%"},
		{-1.0, "-100%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, shockLabel(tc.shock), "shock %v", tc.shock)
	}
}
