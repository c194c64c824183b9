package marketdata

// csv.go — carga de series de spreads desde ficheros CSV.
//
// Acepta dos formatos de columnas (cabecera obligatoria, columnas extra
// ignoradas):
//   date,spread                    — spread ya calculado
//   date,bond1_price,bond2_price   — spread = bond1_price - bond2_price

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// csvDateLayouts son los formatos de fecha aceptados, probados en orden.
var csvDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// CSVProvider implementa ports.SeriesProvider leyendo ficheros CSV.
// La key es una ruta de fichero: absoluta, o relativa al directorio base.
type CSVProvider struct {
	dir string
}

// NewCSVProvider crea un provider que resuelve keys relativas contra dir.
// Con dir vacío, las keys se usan tal cual.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// FetchSeries lee el fichero, detecta el formato por cabecera y devuelve la
// serie ordenada por fecha ascendente.
func (p *CSVProvider) FetchSeries(ctx context.Context, key string) (domain.SpreadSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.SpreadSeries{}, err
	}

	path := key
	if p.dir != "" && !filepath.IsAbs(key) {
		path = filepath.Join(p.dir, key)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("marketdata.CSVProvider.FetchSeries: open %q: %w", path, err)
	}
	defer f.Close()

	series, err := ParseSeries(f)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("marketdata.CSVProvider.FetchSeries: %q: %w", path, err)
	}
	return series, nil
}

// ParseSeries parsea un CSV de spreads desde cualquier reader.
func ParseSeries(r io.Reader) (domain.SpreadSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dateIdx, ok := cols["date"]
	if !ok {
		return domain.SpreadSeries{}, domain.InvalidParameterError{
			Name:   "header",
			Reason: "missing date column",
		}
	}

	// Formato A: columna spread directa. Formato B: dos precios.
	spreadIdx, direct := cols["spread"]
	p1Idx, hasP1 := cols["bond1_price"]
	p2Idx, hasP2 := cols["bond2_price"]
	if !direct && !(hasP1 && hasP2) {
		return domain.SpreadSeries{}, domain.InvalidParameterError{
			Name:   "header",
			Reason: "need a spread column or bond1_price and bond2_price",
		}
	}

	var obs []domain.SpreadObservation
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.SpreadSeries{}, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseCSVDate(record[dateIdx])
		if err != nil {
			return domain.SpreadSeries{}, fmt.Errorf("line %d: %w", line, err)
		}

		var spread float64
		if direct {
			spread, err = strconv.ParseFloat(strings.TrimSpace(record[spreadIdx]), 64)
			if err != nil {
				return domain.SpreadSeries{}, fmt.Errorf("line %d: parse spread: %w", line, err)
			}
		} else {
			p1, err := strconv.ParseFloat(strings.TrimSpace(record[p1Idx]), 64)
			if err != nil {
				return domain.SpreadSeries{}, fmt.Errorf("line %d: parse bond1_price: %w", line, err)
			}
			p2, err := strconv.ParseFloat(strings.TrimSpace(record[p2Idx]), 64)
			if err != nil {
				return domain.SpreadSeries{}, fmt.Errorf("line %d: parse bond2_price: %w", line, err)
			}
			spread = p1 - p2
		}

		obs = append(obs, domain.SpreadObservation{Time: ts, Spread: spread})
	}

	if len(obs) == 0 {
		return domain.SpreadSeries{}, domain.InsufficientDataError{
			Op: "marketdata.ParseSeries", Need: 1, Got: 0,
		}
	}

	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Time.Before(obs[j].Time) })

	series, err := domain.NewSeries(obs)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("build series: %w", err)
	}
	return series, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
