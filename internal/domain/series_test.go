package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestNewSeries_Valid(t *testing.T) {
	s, err := NewSeries([]SpreadObservation{
		{Time: t0, Spread: 1.0},
		{Time: t0.Add(time.Hour), Spread: 1.1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1.0, s.First().Spread)
	assert.Equal(t, 1.1, s.Last().Spread)
}

func TestNewSeries_RejectsUnordered(t *testing.T) {
	_, err := NewSeries([]SpreadObservation{
		{Time: t0.Add(time.Hour), Spread: 1.0},
		{Time: t0, Spread: 1.1},
	})
	var perr InvalidParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "observations", perr.Name)
}

func TestNewSeries_RejectsDuplicateTimestamp(t *testing.T) {
	_, err := NewSeries([]SpreadObservation{
		{Time: t0, Spread: 1.0},
		{Time: t0, Spread: 1.1},
	})
	assert.Error(t, err)
}

func TestNewSeries_RejectsNaN(t *testing.T) {
	_, err := NewSeries([]SpreadObservation{{Time: t0, Spread: math.NaN()}})
	var perr InvalidParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "spread", perr.Name)
}

func TestNewSeries_CopiesInput(t *testing.T) {
	obs := []SpreadObservation{{Time: t0, Spread: 1.0}}
	s, err := NewSeries(obs)
	require.NoError(t, err)

	obs[0].Spread = 99.0 // mutar el slice original no debe tocar la serie
	assert.Equal(t, 1.0, s.At(0).Spread)
}

func TestSeriesFromValues_RegularSpacing(t *testing.T) {
	s, err := SeriesFromValues(t0, time.Minute, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, t0.Add(2*time.Minute), s.At(2).Time)
}

// --- Window ---

func TestWindow_HalfOpen(t *testing.T) {
	s, err := SeriesFromValues(t0, time.Hour, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	w := s.Window(t0.Add(time.Hour), t0.Add(3*time.Hour))
	require.Equal(t, 2, w.Len())
	assert.Equal(t, 2.0, w.At(0).Spread)
	assert.Equal(t, 3.0, w.At(1).Spread) // t0+3h queda fuera
}

func TestWindow_Empty(t *testing.T) {
	s, err := SeriesFromValues(t0, time.Hour, []float64{1, 2, 3})
	require.NoError(t, err)

	w := s.Window(t0.Add(24*time.Hour), t0.Add(48*time.Hour))
	assert.Equal(t, 0, w.Len())
}

// --- Scale ---

func TestScale_DoesNotMutateOriginal(t *testing.T) {
	s, err := SeriesFromValues(t0, time.Hour, []float64{1.0, 2.0})
	require.NoError(t, err)

	shocked := s.Scale(1.10)
	assert.InDelta(t, 1.10, shocked.At(0).Spread, 1e-12)
	assert.InDelta(t, 2.20, shocked.At(1).Spread, 1e-12)
	assert.Equal(t, 1.0, s.At(0).Spread)
}

func TestSpreads_ReturnsCopy(t *testing.T) {
	s, err := SeriesFromValues(t0, time.Hour, []float64{1.0, 2.0})
	require.NoError(t, err)

	vals := s.Spreads()
	vals[0] = 99
	assert.Equal(t, 1.0, s.At(0).Spread)
}
