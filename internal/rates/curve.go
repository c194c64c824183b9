package rates

// curve.go — curva de tipos del Tesoro desde CSV de par yields.
//
// El CSV trae una columna de fecha (NEW_DATE o Date) y columnas BC_1MONTH …
// BC_10YEAR en porcentaje. Se toma la fila más reciente, se pasa a decimal y
// se interpola linealmente por madurez; fuera de rango se extrapola con la
// pendiente del tramo extremo. Valores ausentes o no numéricos descartan esa
// madurez, no la curva entera.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// tenorColumns mapea columna del CSV → madurez en años, en orden.
var tenorColumns = []struct {
	name     string
	maturity float64
}{
	{"BC_1MONTH", 1.0 / 12},
	{"BC_3MONTH", 3.0 / 12},
	{"BC_6MONTH", 6.0 / 12},
	{"BC_1YEAR", 1},
	{"BC_2YEAR", 2},
	{"BC_3YEAR", 3},
	{"BC_5YEAR", 5},
	{"BC_7YEAR", 7},
	{"BC_10YEAR", 10},
}

// dateLayouts son los formatos de fecha aceptados en la columna de fecha.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", time.RFC3339}

// YieldCurve es una curva de tipos por madurez, inmutable tras construirse.
type YieldCurve struct {
	maturities []float64 // años, estrictamente crecientes
	yields     []float64 // decimales (0.04 = 4%)
}

// NewCurve construye una curva desde pares (madurez, yield) ya en decimal.
// Exige al menos dos puntos y madureces estrictamente crecientes.
func NewCurve(maturities, yields []float64) (YieldCurve, error) {
	if len(maturities) != len(yields) {
		return YieldCurve{}, domain.InvalidParameterError{
			Name:   "maturities",
			Value:  float64(len(maturities)),
			Reason: fmt.Sprintf("got %d maturities for %d yields", len(maturities), len(yields)),
		}
	}
	if len(maturities) < 2 {
		return YieldCurve{}, domain.InsufficientDataError{Op: "rates.NewCurve", Need: 2, Got: len(maturities)}
	}
	for i := 1; i < len(maturities); i++ {
		if maturities[i] <= maturities[i-1] {
			return YieldCurve{}, domain.InvalidParameterError{
				Name:   "maturities",
				Value:  maturities[i],
				Reason: "must be strictly increasing",
			}
		}
	}
	ms := make([]float64, len(maturities))
	ys := make([]float64, len(yields))
	copy(ms, maturities)
	copy(ys, yields)
	return YieldCurve{maturities: ms, yields: ys}, nil
}

// LoadCurveCSV lee el CSV de la curva y construye la YieldCurve con la fila
// más reciente.
func LoadCurveCSV(path string) (YieldCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return YieldCurve{}, fmt.Errorf("rates.LoadCurveCSV: %w", err)
	}
	defer f.Close()
	return ParseCurve(f)
}

// ParseCurve parsea el CSV de par yields y devuelve la curva de la fila más
// reciente según la columna de fecha; sin columna de fecha usa la última fila.
func ParseCurve(r io.Reader) (YieldCurve, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return YieldCurve{}, fmt.Errorf("rates.ParseCurve: reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	dateIdx := -1
	for _, name := range []string{"NEW_DATE", "Date"} {
		if i, ok := cols[name]; ok {
			dateIdx = i
			break
		}
	}

	var (
		latest     []string
		latestDate time.Time
		rows       int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return YieldCurve{}, fmt.Errorf("rates.ParseCurve: reading row %d: %w", rows+1, err)
		}
		rows++
		if dateIdx < 0 || dateIdx >= len(record) {
			latest = record // sin fecha: gana la última fila
			continue
		}
		d, ok := parseDate(record[dateIdx])
		if !ok {
			continue
		}
		if latest == nil || !d.Before(latestDate) {
			latest, latestDate = record, d
		}
	}
	if latest == nil {
		return YieldCurve{}, domain.InsufficientDataError{Op: "rates.ParseCurve", Need: 1, Got: 0}
	}

	maturities := make([]float64, 0, len(tenorColumns))
	yields := make([]float64, 0, len(tenorColumns))
	for _, tc := range tenorColumns {
		idx, ok := cols[tc.name]
		if !ok || idx >= len(latest) {
			continue
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(latest[idx]), 64)
		if err != nil {
			continue
		}
		maturities = append(maturities, tc.maturity)
		yields = append(yields, y/100)
	}

	curve, err := NewCurve(maturities, yields)
	if err != nil {
		return YieldCurve{}, fmt.Errorf("rates.ParseCurve: %w", err)
	}
	return curve, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Empty devuelve true si la curva no tiene puntos (valor cero del tipo).
func (c YieldCurve) Empty() bool { return len(c.maturities) == 0 }

// Tenors devuelve las madureces de la curva en años.
func (c YieldCurve) Tenors() []float64 {
	out := make([]float64, len(c.maturities))
	copy(out, c.maturities)
	return out
}

// Yield interpola linealmente el yield a la madurez t. Fuera del rango de
// madureces extrapola con la pendiente del primer o último tramo.
func (c YieldCurve) Yield(t float64) float64 {
	n := len(c.maturities)
	if t <= c.maturities[0] {
		return c.yields[0] + slope(c, 0)*(t-c.maturities[0])
	}
	if t >= c.maturities[n-1] {
		return c.yields[n-1] + slope(c, n-2)*(t-c.maturities[n-1])
	}
	i := sort.SearchFloat64s(c.maturities, t)
	// c.maturities[i-1] < t <= c.maturities[i]
	return c.yields[i-1] + slope(c, i-1)*(t-c.maturities[i-1])
}

// slope devuelve la pendiente del tramo [i, i+1].
func slope(c YieldCurve, i int) float64 {
	return (c.yields[i+1] - c.yields[i]) / (c.maturities[i+1] - c.maturities[i])
}
