package marketdata_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/marketdata"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

func TestParseSeries_SpreadColumn(t *testing.T) {
	// Filas desordenadas y columna extra: debe ordenar e ignorar lo demás.
	csv := "date,spread,regime_volatility\n" +
		"2024-01-03,0.30,0.1\n" +
		"2024-01-01,0.10,0.1\n" +
		"2024-01-02,-0.20,0.2\n"

	series, err := marketdata.ParseSeries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())

	assert.Equal(t, []float64{0.10, -0.20, 0.30}, series.Spreads())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.First().Time)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), series.Last().Time)
}

func TestParseSeries_TwoPriceColumns(t *testing.T) {
	csv := "date,bond1_price,bond2_price\n" +
		"2024-01-01,101.50,100.25\n" +
		"2024-01-02,99.00,100.00\n"

	series, err := marketdata.ParseSeries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())

	assert.InDelta(t, 1.25, series.At(0).Spread, 1e-9)
	assert.InDelta(t, -1.00, series.At(1).Spread, 1e-9)
}

func TestParseSeries_HeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"sin columna date", "spread\n0.1\n"},
		{"sin spread ni precios", "date,close\n2024-01-01,0.1\n"},
		{"solo un precio", "date,bond1_price\n2024-01-01,101.5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := marketdata.ParseSeries(strings.NewReader(tc.csv))
			var perr domain.InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "header", perr.Name)
		})
	}
}

func TestParseSeries_BadValues(t *testing.T) {
	t.Run("spread no numérico", func(t *testing.T) {
		csv := "date,spread\n2024-01-01,0.1\n2024-01-02,n/a\n"
		_, err := marketdata.ParseSeries(strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("fecha irreconocible", func(t *testing.T) {
		csv := "date,spread\nayer,0.1\n"
		_, err := marketdata.ParseSeries(strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized date")
	})

	t.Run("timestamp duplicado", func(t *testing.T) {
		csv := "date,spread\n2024-01-01,0.1\n2024-01-01,0.2\n"
		_, err := marketdata.ParseSeries(strings.NewReader(csv))
		var perr domain.InvalidParameterError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "strictly increasing")
	})
}

func TestParseSeries_NoRows(t *testing.T) {
	_, err := marketdata.ParseSeries(strings.NewReader("date,spread\n"))
	var derr domain.InsufficientDataError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, derr.Got)
}

func TestCSVProvider_FetchSeries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spreads.csv")
	data := "date,spread\n2024-01-01,0.1\n2024-01-02,0.2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	t.Run("key relativa al directorio base", func(t *testing.T) {
		p := marketdata.NewCSVProvider(dir)
		series, err := p.FetchSeries(context.Background(), "spreads.csv")
		require.NoError(t, err)
		assert.Equal(t, 2, series.Len())
	})

	t.Run("key absoluta sin directorio base", func(t *testing.T) {
		p := marketdata.NewCSVProvider("")
		series, err := p.FetchSeries(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 2, series.Len())
	})

	t.Run("fichero inexistente", func(t *testing.T) {
		p := marketdata.NewCSVProvider(dir)
		_, err := p.FetchSeries(context.Background(), "no-existe.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no-existe.csv")
	})

	t.Run("contexto cancelado", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := marketdata.NewCSVProvider(dir)
		_, err := p.FetchSeries(ctx, "spreads.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
