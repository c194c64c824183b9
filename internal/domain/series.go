package domain

import (
	"math"
	"sort"
	"time"
)

// SpreadObservation es una muestra del spread entre dos bonos en un instante.
type SpreadObservation struct {
	Time   time.Time
	Spread float64
}

// SpreadSeries es una serie temporal de spreads con timestamps estrictamente
// crecientes. Inmutable una vez construida: los métodos devuelven copias o
// series nuevas, nunca exponen el slice interno.
type SpreadSeries struct {
	obs []SpreadObservation
}

// NewSeries construye una serie validando orden y valores.
// Copia la entrada: mutar el slice original no afecta a la serie.
func NewSeries(obs []SpreadObservation) (SpreadSeries, error) {
	out := make([]SpreadObservation, len(obs))
	copy(out, obs)
	for i, o := range out {
		if math.IsNaN(o.Spread) || math.IsInf(o.Spread, 0) {
			return SpreadSeries{}, InvalidParameterError{
				Name:   "spread",
				Value:  o.Spread,
				Reason: "non-finite observation",
			}
		}
		if i > 0 && !out[i-1].Time.Before(o.Time) {
			return SpreadSeries{}, InvalidParameterError{
				Name:   "observations",
				Value:  float64(i),
				Reason: "timestamps not strictly increasing",
			}
		}
	}
	return SpreadSeries{obs: out}, nil
}

// SeriesFromValues construye una serie regular: values[i] en start + i×step.
// Útil para simuladores y fixtures donde solo importa el orden relativo.
func SeriesFromValues(start time.Time, step time.Duration, values []float64) (SpreadSeries, error) {
	obs := make([]SpreadObservation, len(values))
	for i, v := range values {
		obs[i] = SpreadObservation{Time: start.Add(time.Duration(i) * step), Spread: v}
	}
	return NewSeries(obs)
}

// Len devuelve el número de observaciones.
func (s SpreadSeries) Len() int { return len(s.obs) }

// At devuelve la observación i-ésima.
func (s SpreadSeries) At(i int) SpreadObservation { return s.obs[i] }

// First devuelve la primera observación. Panics si la serie está vacía.
func (s SpreadSeries) First() SpreadObservation { return s.obs[0] }

// Last devuelve la última observación. Panics si la serie está vacía.
func (s SpreadSeries) Last() SpreadObservation { return s.obs[len(s.obs)-1] }

// Spreads devuelve una copia de los valores del spread en orden temporal.
func (s SpreadSeries) Spreads() []float64 {
	out := make([]float64, len(s.obs))
	for i, o := range s.obs {
		out[i] = o.Spread
	}
	return out
}

// Observations devuelve una copia de las observaciones.
func (s SpreadSeries) Observations() []SpreadObservation {
	out := make([]SpreadObservation, len(s.obs))
	copy(out, s.obs)
	return out
}

// Window devuelve la sub-serie con timestamps en [from, to).
func (s SpreadSeries) Window(from, to time.Time) SpreadSeries {
	lo := sort.Search(len(s.obs), func(i int) bool { return !s.obs[i].Time.Before(from) })
	hi := sort.Search(len(s.obs), func(i int) bool { return !s.obs[i].Time.Before(to) })
	out := make([]SpreadObservation, hi-lo)
	copy(out, s.obs[lo:hi])
	return SpreadSeries{obs: out}
}

// Scale devuelve una serie nueva con cada spread multiplicado por factor.
// Los shocks de estrés usan factor = 1 + shock.
func (s SpreadSeries) Scale(factor float64) SpreadSeries {
	out := make([]SpreadObservation, len(s.obs))
	for i, o := range s.obs {
		out[i] = SpreadObservation{Time: o.Time, Spread: o.Spread * factor}
	}
	return SpreadSeries{obs: out}
}
