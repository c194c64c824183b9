package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(t *testing.T, values []float64) domain.SpreadSeries {
	t.Helper()
	s, err := domain.SeriesFromValues(start, time.Minute, values)
	require.NoError(t, err)
	return s
}

func testConfig() Config {
	return Config{WindowSize: 5, PriorWindow: 120, EntryThreshold: 2.0, ExitTolerance: 0.5}
}

func countSignal(points []SignalPoint, sig Signal) int {
	n := 0
	for _, p := range points {
		if p.Signal == sig {
			n++
		}
	}
	return n
}

func TestGenerateSignals_InsufficientData(t *testing.T) {
	cfg := testConfig()
	_, err := GenerateSignals(seriesOf(t, []float64{1, 2, 3}), cfg)

	var derr domain.InsufficientDataError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 7, derr.Need)
	assert.Equal(t, 3, derr.Got)
}

func TestGenerateSignals_InvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero entry threshold", func(c *Config) { c.EntryThreshold = 0 }},
		{"negative entry threshold", func(c *Config) { c.EntryThreshold = -1 }},
		{"window too small", func(c *Config) { c.WindowSize = 1 }},
		{"zero prior window", func(c *Config) { c.PriorWindow = 0 }},
		{"negative exit tolerance", func(c *Config) { c.ExitTolerance = -0.1 }},
		{"exit tolerance above entry", func(c *Config) { c.ExitTolerance = 3.0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := GenerateSignals(seriesOf(t, make([]float64, 50)), cfg)
			var cerr domain.InvalidConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestGenerateSignals_FlatSeriesNeverEnters(t *testing.T) {
	points, err := GenerateSignals(seriesOf(t, make([]float64, 50)), testConfig())
	require.NoError(t, err)
	require.Len(t, points, 50)

	assert.Equal(t, 0, countSignal(points, SignalEnterLong))
	assert.Equal(t, 0, countSignal(points, SignalEnterShort))
}

func TestGenerateSignals_SharpDropEntersLong(t *testing.T) {
	// 10 planos, caída a -3, recuperación a 1: la caída dispara enter_long.
	values := append(make([]float64, 10), -3.0)
	for i := 0; i < 10; i++ {
		values = append(values, 1.0)
	}
	points, err := GenerateSignals(seriesOf(t, values), testConfig())
	require.NoError(t, err)

	assert.Equal(t, SignalEnterLong, points[10].Signal)
	assert.Less(t, points[10].Z, -2.0)
}

func TestGenerateSignals_SharpSpikeEntersShort(t *testing.T) {
	values := append(make([]float64, 10), 3.0)
	for i := 0; i < 10; i++ {
		values = append(values, -1.0)
	}
	points, err := GenerateSignals(seriesOf(t, values), testConfig())
	require.NoError(t, err)

	assert.Equal(t, SignalEnterShort, points[10].Signal)
	assert.Greater(t, points[10].Z, 2.0)
}

func TestGenerateSignals_WarmUpHolds(t *testing.T) {
	values := []float64{5, -5, 5, -5, 5, -5, 5, -5, 5, -5}
	points, err := GenerateSignals(seriesOf(t, values), testConfig())
	require.NoError(t, err)

	for i := 0; i < 6; i++ { // warm-up = window+2 = 7 observaciones
		assert.Equal(t, SignalHold, points[i].Signal, "observación %d", i)
		assert.Equal(t, 0.0, points[i].Z)
	}
}

func TestGenerateSignals_Causal(t *testing.T) {
	base := make([]float64, 60)
	for i := range base {
		base[i] = 1.0 + 0.01*float64(i%7)
	}
	perturbed := make([]float64, len(base))
	copy(perturbed, base)
	for i := 41; i < len(perturbed); i++ {
		perturbed[i] += 5.0 // solo el futuro cambia
	}

	a, err := GenerateSignals(seriesOf(t, base), testConfig())
	require.NoError(t, err)
	b, err := GenerateSignals(seriesOf(t, perturbed), testConfig())
	require.NoError(t, err)

	for i := 0; i <= 40; i++ {
		assert.Equal(t, a[i], b[i], "la señal en %d no puede depender del futuro", i)
	}
}

func TestGenerateSignals_DoesNotMutateSeries(t *testing.T) {
	s := seriesOf(t, []float64{1, 1, 1, 1, 1, 1, 1, 1, 4, 1})
	before := s.Spreads()

	_, err := GenerateSignals(s, testConfig())
	require.NoError(t, err)
	assert.Equal(t, before, s.Spreads())
}

// --- classify ---

func TestClassify_Zones(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, SignalEnterLong, classify(-2.5, cfg))
	assert.Equal(t, SignalEnterLong, classify(-2.0, cfg))
	assert.Equal(t, SignalEnterShort, classify(2.5, cfg))
	assert.Equal(t, SignalExit, classify(0.0, cfg))
	assert.Equal(t, SignalExit, classify(-0.5, cfg))
	assert.Equal(t, SignalHold, classify(1.2, cfg))
	assert.Equal(t, SignalHold, classify(-1.2, cfg))
}
